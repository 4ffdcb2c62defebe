package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/cppla/schoolsite/models"
	"github.com/cppla/schoolsite/services"
	"github.com/cppla/schoolsite/utils"
)

// PostController handles admin post management.
type PostController struct {
	posts *services.PostService
	tags  *services.CategoryTagService
}

// NewPostController creates a PostController.
func NewPostController(posts *services.PostService, tags *services.CategoryTagService) *PostController {
	return &PostController{posts: posts, tags: tags}
}

// Index lists posts including drafts, filtered by ?category=, ?type= and ?search=.
func (p *PostController) Index(ctx *gin.Context) {
	filter := services.PostFilter{
		CategoryTagID: optionalUint(ctx, "category"),
		PostTypeID:    optionalUint(ctx, "type"),
		Search:        ctx.Query("search"),
		IncludeDrafts: true,
	}
	page, err := p.posts.List(ctx.Request.Context(), filter, pageRequest(ctx))
	if err != nil {
		respondError(ctx, "list posts", err)
		return
	}
	utils.Page(ctx, "admin/posts/Index", PostIndexProps{Posts: page})
}

// Create returns the empty form with its select options.
func (p *PostController) Create(ctx *gin.Context) {
	props, ok := p.formProps(ctx, nil)
	if !ok {
		return
	}
	utils.Page(ctx, "admin/posts/Create", props)
}

// Edit returns the form for an existing post.
func (p *PostController) Edit(ctx *gin.Context) {
	id, ok := parseID(ctx)
	if !ok {
		return
	}
	post, err := p.posts.Find(ctx.Request.Context(), id)
	if err != nil {
		respondError(ctx, "find post", err)
		return
	}
	props, ok := p.formProps(ctx, &post)
	if !ok {
		return
	}
	utils.Page(ctx, "admin/posts/Edit", props)
}

// Store creates a post from a multipart form.
func (p *PostController) Store(ctx *gin.Context) {
	var in services.PostInput
	if !bindForm(ctx, &in) {
		return
	}
	post, err := p.posts.Create(ctx.Request.Context(), actor(ctx), in)
	if err != nil {
		respondError(ctx, "create post", err)
		return
	}
	utils.Respond(ctx, http.StatusCreated, 0, "post created", post)
}

// Update changes a post. Images not sent are kept.
func (p *PostController) Update(ctx *gin.Context) {
	id, ok := parseID(ctx)
	if !ok {
		return
	}
	var in services.PostInput
	if !bindForm(ctx, &in) {
		return
	}
	post, err := p.posts.Update(ctx.Request.Context(), actor(ctx), id, in)
	if err != nil {
		respondError(ctx, "update post", err)
		return
	}
	utils.Respond(ctx, http.StatusOK, 0, "post updated", post)
}

// Destroy deletes a post with its tag links and comments.
func (p *PostController) Destroy(ctx *gin.Context) {
	id, ok := parseID(ctx)
	if !ok {
		return
	}
	if err := p.posts.Delete(ctx.Request.Context(), actor(ctx), id); err != nil {
		respondError(ctx, "delete post", err)
		return
	}
	utils.Respond(ctx, http.StatusOK, 0, "post deleted", nil)
}

func (p *PostController) formProps(ctx *gin.Context, post *models.Post) (PostFormProps, bool) {
	tags, err := p.tags.Options(ctx.Request.Context(), models.TagTypePost)
	if err != nil {
		respondError(ctx, "post tag options", err)
		return PostFormProps{}, false
	}
	return PostFormProps{Post: post, CategoryTags: tags, PostTypes: postTypes}, true
}
