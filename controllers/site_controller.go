package controllers

import (
	"github.com/gin-gonic/gin"

	"github.com/cppla/schoolsite/config"
	"github.com/cppla/schoolsite/models"
	"github.com/cppla/schoolsite/services"
	"github.com/cppla/schoolsite/utils"
)

// SiteController renders the public pages.
type SiteController struct {
	posts      *services.PostService
	tags       *services.CategoryTagService
	teachers   *services.TeacherService
	facilities *services.FacilityService
	galleries  *services.GalleryService
}

// NewSiteController creates a SiteController.
func NewSiteController(posts *services.PostService, tags *services.CategoryTagService, teachers *services.TeacherService, facilities *services.FacilityService, galleries *services.GalleryService) *SiteController {
	return &SiteController{posts: posts, tags: tags, teachers: teachers, facilities: facilities, galleries: galleries}
}

// Home renders the welcome page. ?current_post= drops that post from the list.
func (s *SiteController) Home(ctx *gin.Context) {
	posts, err := s.posts.HomePosts(ctx.Request.Context(), optionalUint(ctx, "current_post"))
	if err != nil {
		respondError(ctx, "home posts", err)
		return
	}
	tags, err := s.tags.ListWithCounts(ctx.Request.Context(), models.TagTypePost)
	if err != nil {
		respondError(ctx, "home tags", err)
		return
	}
	utils.Page(ctx, "welcome", WelcomeProps{
		CanRegister:  config.Get().RegistrationEnabled,
		Posts:        posts,
		CategoryTags: tags,
	})
}

// PostDetail renders one published post.
func (s *SiteController) PostDetail(ctx *gin.Context) {
	id, ok := parseID(ctx)
	if !ok {
		return
	}
	detail, err := s.posts.Detail(ctx.Request.Context(), id)
	if err != nil {
		respondError(ctx, "post detail", err)
		return
	}
	utils.Page(ctx, "frontend/PostDetail", PostDetailProps{
		Post:         detail.Post,
		RelatedPosts: detail.RelatedPosts,
		Comments:     detail.Comments,
		CaptchaOn:    config.Get().CommentCaptchaEnabled,
	})
}

// Static renders an informational page that needs no data.
func (s *SiteController) Static(component string) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		utils.Page(ctx, component, StaticProps{CanRegister: config.Get().RegistrationEnabled})
	}
}

// EventsAndNews lists published posts, optionally by ?category= and ?type=.
func (s *SiteController) EventsAndNews(ctx *gin.Context) {
	filter := services.PostFilter{
		CategoryTagID: optionalUint(ctx, "category"),
		PostTypeID:    optionalUint(ctx, "type"),
		Search:        ctx.Query("search"),
	}
	page, err := s.posts.List(ctx.Request.Context(), filter, pageRequest(ctx))
	if err != nil {
		respondError(ctx, "events and news", err)
		return
	}
	tags, err := s.tags.ListWithCounts(ctx.Request.Context(), models.TagTypePost)
	if err != nil {
		respondError(ctx, "events and news tags", err)
		return
	}
	utils.Page(ctx, "frontend/EventsAndNews", EventsAndNewsProps{Posts: page, CategoryTags: tags})
}

// OurTeachers lists teacher photos with their categories.
func (s *SiteController) OurTeachers(ctx *gin.Context) {
	page, err := s.teachers.List(ctx.Request.Context(), pageRequest(ctx))
	if err != nil {
		respondError(ctx, "our teachers", err)
		return
	}
	cats, err := s.tags.Options(ctx.Request.Context(), models.TagTypeTeacher)
	if err != nil {
		respondError(ctx, "teacher categories", err)
		return
	}
	utils.Page(ctx, "frontend/OurTeachers", TeachersPageProps{Teachers: page, Categories: cats})
}

// Facilities lists facility photos.
func (s *SiteController) Facilities(ctx *gin.Context) {
	page, err := s.facilities.List(ctx.Request.Context(), pageRequest(ctx))
	if err != nil {
		respondError(ctx, "facilities", err)
		return
	}
	cats, err := s.tags.Options(ctx.Request.Context(), models.TagTypeFacility)
	if err != nil {
		respondError(ctx, "facility categories", err)
		return
	}
	utils.Page(ctx, "frontend/Facilities", FacilitiesPageProps{Facilities: page, Categories: cats})
}

// Gallery lists gallery photos.
func (s *SiteController) Gallery(ctx *gin.Context) {
	page, err := s.galleries.List(ctx.Request.Context(), pageRequest(ctx))
	if err != nil {
		respondError(ctx, "gallery", err)
		return
	}
	utils.Page(ctx, "frontend/Gallery", GalleryPageProps{Galleries: page})
}
