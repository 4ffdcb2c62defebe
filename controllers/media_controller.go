package controllers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/cppla/schoolsite/models"
	"github.com/cppla/schoolsite/services"
	"github.com/cppla/schoolsite/utils"
)

type mediaService[T any] interface {
	List(ctx context.Context, req services.PageRequest) (services.Page[T], error)
	Find(ctx context.Context, id uint) (T, error)
	Create(ctx context.Context, actor services.Actor, in services.MediaInput) (T, error)
	Update(ctx context.Context, actor services.Actor, id uint, in services.MediaInput) (T, error)
	Delete(ctx context.Context, actor services.Actor, id uint) error
}

// MediaController serves the admin screens of a photo entity.
type MediaController[T any] struct {
	svc      mediaService[T]
	tags     *services.CategoryTagService
	plural   string // route name, e.g. "teachers"
	singular string
	tagType  string // category options offered by the form, empty for none
	index    func(page services.Page[T]) interface{}
	form     func(row *T, categories []models.CategoryTag) interface{}
}

// NewTeacherController creates the admin teacher controller.
func NewTeacherController(svc *services.TeacherService, tags *services.CategoryTagService) *MediaController[models.Teacher] {
	return &MediaController[models.Teacher]{
		svc: svc, tags: tags, plural: "teachers", singular: "teacher", tagType: models.TagTypeTeacher,
		index: func(page services.Page[models.Teacher]) interface{} {
			return TeacherIndexProps{Teachers: page}
		},
		form: func(row *models.Teacher, categories []models.CategoryTag) interface{} {
			return TeacherFormProps{Teacher: row, Categories: categories}
		},
	}
}

// NewFacilityController creates the admin facility controller.
func NewFacilityController(svc *services.FacilityService, tags *services.CategoryTagService) *MediaController[models.Facility] {
	return &MediaController[models.Facility]{
		svc: svc, tags: tags, plural: "facilities", singular: "facility", tagType: models.TagTypeFacility,
		index: func(page services.Page[models.Facility]) interface{} {
			return FacilityIndexProps{Facilities: page}
		},
		form: func(row *models.Facility, categories []models.CategoryTag) interface{} {
			return FacilityFormProps{Facility: row, Categories: categories}
		},
	}
}

// NewGalleryController creates the admin gallery controller.
func NewGalleryController(svc *services.GalleryService) *MediaController[models.Gallery] {
	return &MediaController[models.Gallery]{
		svc: svc, plural: "galleries", singular: "gallery",
		index: func(page services.Page[models.Gallery]) interface{} {
			return GalleryIndexProps{Galleries: page}
		},
		form: func(row *models.Gallery, _ []models.CategoryTag) interface{} {
			return GalleryFormProps{Gallery: row}
		},
	}
}

func (m *MediaController[T]) component(view string) string {
	return "admin/" + m.plural + "/" + view
}

// Index lists rows newest first.
func (m *MediaController[T]) Index(ctx *gin.Context) {
	page, err := m.svc.List(ctx.Request.Context(), pageRequest(ctx))
	if err != nil {
		respondError(ctx, "list "+m.plural, err)
		return
	}
	utils.Page(ctx, m.component("Index"), m.index(page))
}

// Create returns the empty form with category options.
func (m *MediaController[T]) Create(ctx *gin.Context) {
	categories, ok := m.categories(ctx)
	if !ok {
		return
	}
	utils.Page(ctx, m.component("Create"), m.form(nil, categories))
}

// Edit returns one row with category options.
func (m *MediaController[T]) Edit(ctx *gin.Context) {
	id, ok := parseID(ctx)
	if !ok {
		return
	}
	row, err := m.svc.Find(ctx.Request.Context(), id)
	if err != nil {
		respondError(ctx, "find "+m.singular, err)
		return
	}
	categories, ok := m.categories(ctx)
	if !ok {
		return
	}
	utils.Page(ctx, m.component("Edit"), m.form(&row, categories))
}

// Store creates a row from a multipart form.
func (m *MediaController[T]) Store(ctx *gin.Context) {
	var in services.MediaInput
	if !bindForm(ctx, &in) {
		return
	}
	row, err := m.svc.Create(ctx.Request.Context(), actor(ctx), in)
	if err != nil {
		respondError(ctx, "create "+m.singular, err)
		return
	}
	utils.Respond(ctx, http.StatusCreated, 0, m.singular+" created", row)
}

// Update changes a row; without a new src the stored image stays.
func (m *MediaController[T]) Update(ctx *gin.Context) {
	id, ok := parseID(ctx)
	if !ok {
		return
	}
	var in services.MediaInput
	if !bindForm(ctx, &in) {
		return
	}
	row, err := m.svc.Update(ctx.Request.Context(), actor(ctx), id, in)
	if err != nil {
		respondError(ctx, "update "+m.singular, err)
		return
	}
	utils.Respond(ctx, http.StatusOK, 0, m.singular+" updated", row)
}

// Destroy deletes a row.
func (m *MediaController[T]) Destroy(ctx *gin.Context) {
	id, ok := parseID(ctx)
	if !ok {
		return
	}
	if err := m.svc.Delete(ctx.Request.Context(), actor(ctx), id); err != nil {
		respondError(ctx, "delete "+m.singular, err)
		return
	}
	utils.Respond(ctx, http.StatusOK, 0, m.singular+" deleted", nil)
}

// categories loads the select options for the form; nil when the entity has none.
func (m *MediaController[T]) categories(ctx *gin.Context) ([]models.CategoryTag, bool) {
	if m.tagType == "" {
		return nil, true
	}
	cats, err := m.tags.Options(ctx.Request.Context(), m.tagType)
	if err != nil {
		respondError(ctx, m.singular+" category options", err)
		return nil, false
	}
	return cats, true
}
