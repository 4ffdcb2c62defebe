package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/cppla/schoolsite/models"
	"github.com/cppla/schoolsite/services"
	"github.com/cppla/schoolsite/utils"
)

var tagTypes = []string{models.TagTypePost, models.TagTypeTeacher, models.TagTypeFacility}

// CategoryTagController handles admin tag management.
type CategoryTagController struct {
	tags *services.CategoryTagService
}

// NewCategoryTagController creates a CategoryTagController.
func NewCategoryTagController(tags *services.CategoryTagService) *CategoryTagController {
	return &CategoryTagController{tags: tags}
}

// Index lists tags with their post counts, optionally one ?type= only.
func (c *CategoryTagController) Index(ctx *gin.Context) {
	page, err := c.tags.Page(ctx.Request.Context(), ctx.Query("type"), pageRequest(ctx))
	if err != nil {
		respondError(ctx, "list category tags", err)
		return
	}
	utils.Page(ctx, "admin/category-tags/Index", CategoryTagIndexProps{CategoryTags: page, Types: tagTypes})
}

// Create returns the empty form.
func (c *CategoryTagController) Create(ctx *gin.Context) {
	utils.Page(ctx, "admin/category-tags/Create", CategoryTagFormProps{Types: tagTypes})
}

// Edit returns one tag.
func (c *CategoryTagController) Edit(ctx *gin.Context) {
	id, ok := parseID(ctx)
	if !ok {
		return
	}
	tag, err := c.tags.Find(ctx.Request.Context(), id)
	if err != nil {
		respondError(ctx, "find category tag", err)
		return
	}
	utils.Page(ctx, "admin/category-tags/Edit", CategoryTagFormProps{CategoryTag: &tag, Types: tagTypes})
}

// Store creates a tag.
func (c *CategoryTagController) Store(ctx *gin.Context) {
	var in services.CategoryTagInput
	if !bindForm(ctx, &in) {
		return
	}
	tag, err := c.tags.Create(ctx.Request.Context(), actor(ctx), in)
	if err != nil {
		respondError(ctx, "create category tag", err)
		return
	}
	utils.Respond(ctx, http.StatusCreated, 0, "category tag created", tag)
}

// Update changes a tag.
func (c *CategoryTagController) Update(ctx *gin.Context) {
	id, ok := parseID(ctx)
	if !ok {
		return
	}
	var in services.CategoryTagInput
	if !bindForm(ctx, &in) {
		return
	}
	tag, err := c.tags.Update(ctx.Request.Context(), actor(ctx), id, in)
	if err != nil {
		respondError(ctx, "update category tag", err)
		return
	}
	utils.Respond(ctx, http.StatusOK, 0, "category tag updated", tag)
}

// Destroy deletes a tag.
func (c *CategoryTagController) Destroy(ctx *gin.Context) {
	id, ok := parseID(ctx)
	if !ok {
		return
	}
	if err := c.tags.Delete(ctx.Request.Context(), actor(ctx), id); err != nil {
		respondError(ctx, "delete category tag", err)
		return
	}
	utils.Respond(ctx, http.StatusOK, 0, "category tag deleted", nil)
}
