package routes

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/cppla/schoolsite/config"
	"github.com/cppla/schoolsite/models"
	"github.com/cppla/schoolsite/services"
	"github.com/cppla/schoolsite/storage"
)

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")

type pageObject struct {
	Component string          `json:"component"`
	Props     json.RawMessage `json:"props"`
	URL       string          `json:"url"`
}

type envelope struct {
	Code    int               `json:"code"`
	Message string            `json:"message"`
	Data    json.RawMessage   `json:"data"`
	Errors  map[string]string `json:"errors"`
}

type testApp struct {
	t       *testing.T
	db      *gorm.DB
	handler http.Handler
	token   string
}

func TestMain(m *testing.M) {
	cfg := config.Defaults()
	cfg.JWTSecret = "router-test-secret"
	cfg.AppURL = "http://school.test"
	cfg.GinMode = "test"
	cfg.GinPath = ""
	cfg.RedisHost = ""
	cfg.RateLimitPerMinute = 600
	config.Set(cfg)
	os.Exit(m.Run())
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:"), config.GormConfig("silent"))
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, config.Migrate(db, models.All()...))

	_, err = services.NewUserService(db).EnsureAdmin(context.Background(), "Admin", "admin@school.test", "admin-password")
	require.NoError(t, err)

	return &testApp{t: t, db: db, handler: SetupRouter(db, storage.NewLocal(t.TempDir()))}
}

func (a *testApp) do(req *http.Request) *httptest.ResponseRecorder {
	if a.token != "" {
		req.Header.Set("Authorization", "Bearer "+a.token)
	}
	rec := httptest.NewRecorder()
	a.handler.ServeHTTP(rec, req)
	return rec
}

func (a *testApp) getJSON(path string, dst interface{}) *httptest.ResponseRecorder {
	rec := a.do(httptest.NewRequest(http.MethodGet, path, nil))
	if dst != nil && rec.Code == http.StatusOK {
		require.NoError(a.t, json.Unmarshal(rec.Body.Bytes(), dst))
	}
	return rec
}

func (a *testApp) postJSON(path string, body interface{}) *httptest.ResponseRecorder {
	b, err := json.Marshal(body)
	require.NoError(a.t, err)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(b))
	req.Header.Set("Content-Type", "application/json")
	return a.do(req)
}

func (a *testApp) postMultipart(path string, fields map[string]string, fileField, fileName string, size int) *httptest.ResponseRecorder {
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	for k, v := range fields {
		require.NoError(a.t, w.WriteField(k, v))
	}
	if fileField != "" {
		part, err := w.CreateFormFile(fileField, fileName)
		require.NoError(a.t, err)
		content := make([]byte, size)
		copy(content, pngHeader)
		_, err = part.Write(content)
		require.NoError(a.t, err)
	}
	require.NoError(a.t, w.Close())
	req := httptest.NewRequest(http.MethodPost, path, &body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return a.do(req)
}

func (a *testApp) login() {
	rec := a.postJSON("/admin-login", map[string]string{"email": "admin@school.test", "password": "admin-password"})
	require.Equal(a.t, http.StatusOK, rec.Code, rec.Body.String())
	var env envelope
	require.NoError(a.t, json.Unmarshal(rec.Body.Bytes(), &env))
	var data struct {
		Token string `json:"token"`
	}
	require.NoError(a.t, json.Unmarshal(env.Data, &data))
	require.NotEmpty(a.t, data.Token)
	a.token = data.Token
}

func (a *testApp) seedPost(id uint, title string, status int, createdAt time.Time) {
	post := models.Post{
		ID:          id,
		Title:       title,
		Description: "<p>" + title + "</p>",
		BannerImg:   "/storage/uploads/posts/b.png",
		Status:      status,
		PostTypeID:  models.PostTypeNews,
		CreatedAt:   createdAt,
	}
	require.NoError(a.t, a.db.Omit("CategoryTags", "CreatedUser", "UpdatedUser").Create(&post).Error)
}

func TestHomeExcludesCurrentPost(t *testing.T) {
	app := newTestApp(t)
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i, id := range []uint{5, 6, 7, 8} {
		app.seedPost(id, "post "+strconv.Itoa(int(id)), models.StatusActive, base.Add(time.Duration(i)*time.Hour))
	}
	for _, tag := range []models.CategoryTag{
		{Title: "Sports", Type: models.TagTypePost, Status: models.StatusActive},
		{Title: "Science staff", Type: models.TagTypeTeacher, Status: models.StatusActive},
	} {
		require.NoError(t, app.db.Omit("CreatedUser").Create(&tag).Error)
	}

	var page pageObject
	rec := app.getJSON("/?current_post=5", &page)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "welcome", page.Component)
	assert.Equal(t, "/?current_post=5", page.URL)

	var props struct {
		CanRegister bool `json:"canRegister"`
		Posts       []struct {
			ID uint `json:"id"`
		} `json:"posts"`
		CategoryTags []struct {
			Title string `json:"title"`
			Type  string `json:"type"`
		} `json:"category_tags"`
	}
	require.NoError(t, json.Unmarshal(page.Props, &props))
	ids := []uint{}
	for _, p := range props.Posts {
		ids = append(ids, p.ID)
	}
	assert.Equal(t, []uint{8, 7, 6}, ids)
	assert.False(t, props.CanRegister)
	require.Len(t, props.CategoryTags, 1)
	assert.Equal(t, "Sports", props.CategoryTags[0].Title)
}

func TestPostDetailAndStaticPages(t *testing.T) {
	app := newTestApp(t)
	app.seedPost(1, "Open day", models.StatusActive, time.Now())
	app.seedPost(2, "Draft", models.StatusInactive, time.Now())

	var page pageObject
	rec := app.getJSON("/post-detail/1", &page)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "frontend/PostDetail", page.Component)
	assert.Contains(t, string(page.Props), `"related_posts":[]`)

	assert.Equal(t, http.StatusNotFound, app.getJSON("/post-detail/2", nil).Code)
	assert.Equal(t, http.StatusNotFound, app.getJSON("/post-detail/abc", nil).Code)

	rec = app.getJSON("/our-history", &page)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "frontend/OurHistory", page.Component)

	rec = app.getJSON("/events-and-news", &page)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, string(page.Props), `"url":"http://school.test/events-and-news?page=1"`)

	var views int64
	require.NoError(t, app.db.Model(&models.PageView{}).Where("path = ?", "/our-history").Count(&views).Error)
	assert.EqualValues(t, 1, views)
}

func TestCommentEndpoint(t *testing.T) {
	app := newTestApp(t)
	app.seedPost(1, "Open day", models.StatusActive, time.Now())

	rec := app.postJSON("/api/post-comment/store", map[string]interface{}{
		"name": "Parent", "email": "not-an-email", "description": "See you there", "post_id": 1,
	})
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	assert.Contains(t, env.Errors, "email")

	var n int64
	require.NoError(t, app.db.Model(&models.Comment{}).Count(&n).Error)
	assert.Zero(t, n)

	rec = app.postJSON("/api/post-comment/store", map[string]interface{}{
		"name": "Parent", "email": "parent@example.com", "description": "See you there", "post_id": 1,
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var comment models.Comment
	require.NoError(t, app.db.First(&comment).Error)
	assert.EqualValues(t, 1, comment.PostID)
	assert.Equal(t, models.CommentPending, comment.Status)

	req := httptest.NewRequest(http.MethodPost, "/api/post-comment/store", strings.NewReader("{"))
	req.Header.Set("Content-Type", "application/json")
	assert.Equal(t, http.StatusBadRequest, app.do(req).Code)
}

func TestCommentEndpointMistypedJSON(t *testing.T) {
	app := newTestApp(t)
	app.seedPost(1, "Open day", models.StatusActive, time.Now())

	for _, postID := range []interface{}{"", "abc", true, nil, map[string]int{"id": 1}} {
		rec := app.postJSON("/api/post-comment/store", map[string]interface{}{
			"name": "Parent", "email": "parent@example.com", "description": "See you there", "post_id": postID,
		})
		require.Equal(t, http.StatusUnprocessableEntity, rec.Code, "post_id %v: %s", postID, rec.Body.String())
		var env envelope
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
		assert.Contains(t, env.Errors, "post_id")
	}

	rec := app.postJSON("/api/post-comment/store", map[string]interface{}{
		"name": 5, "email": "parent@example.com", "description": "See you there", "post_id": "1",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = app.postJSON("/api/post-comment/store", map[string]interface{}{
		"name": "Parent", "email": false, "description": "See you there", "post_id": 1,
	})
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	assert.Contains(t, env.Errors, "email")
}

func TestAdminFormPagesAreTyped(t *testing.T) {
	app := newTestApp(t)
	app.login()

	var page pageObject
	rec := app.getJSON("/admin/teachers/create", &page)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "admin/teachers/Create", page.Component)
	assert.JSONEq(t, `{"categories":[]}`, string(page.Props))

	rec = app.getJSON("/admin/galleries/create", &page)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{}`, string(page.Props))

	rec = app.getJSON("/admin/users/create", &page)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{}`, string(page.Props))

	rec = app.getJSON("/admin/users/1/edit", &page)
	require.Equal(t, http.StatusOK, rec.Code)
	var props struct {
		User models.User `json:"user"`
	}
	require.NoError(t, json.Unmarshal(page.Props, &props))
	assert.Equal(t, "admin@school.test", props.User.Email)
}

func TestAdminRequiresLogin(t *testing.T) {
	app := newTestApp(t)

	assert.Equal(t, http.StatusUnauthorized, app.getJSON("/admin/dashboard", nil).Code)

	rec := app.postJSON("/admin-login", map[string]string{"email": "admin@school.test", "password": "nope"})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	app.login()
	var page pageObject
	rec = app.getJSON("/admin/dashboard", &page)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Dashboard", page.Component)

	assert.Equal(t, http.StatusOK, app.do(httptest.NewRequest(http.MethodPost, "/logout", nil)).Code)
	assert.Equal(t, http.StatusUnauthorized, app.getJSON("/admin/dashboard", nil).Code)
}

func TestGalleryCRUDOverHTTP(t *testing.T) {
	app := newTestApp(t)
	app.login()

	rec := app.postMultipart("/admin/galleries", map[string]string{"alt": "Sports day"}, "", "", 0)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	assert.Equal(t, "You need to add a photo.", env.Errors["src"])

	rec = app.postMultipart("/admin/galleries", map[string]string{"alt": "Sports day"}, "src", "day.png", 1024)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	var created models.Gallery
	require.NoError(t, json.Unmarshal(env.Data, &created))
	assert.True(t, strings.HasPrefix(created.Src, "/storage/uploads/galleries/"))

	served := app.do(httptest.NewRequest(http.MethodGet, created.Src, nil))
	assert.Equal(t, http.StatusOK, served.Code)

	path := "/admin/galleries/" + strconv.Itoa(int(created.ID))
	rec = app.postMultipart(path, map[string]string{"_method": "PUT", "alt": "Sports day 2024"}, "", "", 0)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var updated models.Gallery
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	require.NoError(t, json.Unmarshal(env.Data, &updated))
	assert.Equal(t, created.Src, updated.Src)
	assert.Equal(t, "Sports day 2024", updated.Alt)

	rec = app.postMultipart(path, map[string]string{"_method": "PUT", "alt": "Too big"}, "src", "big.png", 2<<20)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	assert.Equal(t, "Image must not be greater than 1MB.", env.Errors["src"])

	rec = app.postMultipart(path, map[string]string{"_method": "DELETE"}, "", "", 0)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var page pageObject
	rec = app.getJSON("/admin/galleries", &page)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, string(page.Props), `"data":[]`)
	assert.Equal(t, http.StatusNotFound, app.getJSON(path+"/edit", nil).Code)
}

func TestUnknownRoutes(t *testing.T) {
	app := newTestApp(t)

	rec := app.getJSON("/api/nothing", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "api route not found")

	rec = app.getJSON("/health", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}
