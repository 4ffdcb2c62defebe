package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/cppla/schoolsite/config"
	"github.com/cppla/schoolsite/services"
	"github.com/cppla/schoolsite/utils"
)

// CommentController accepts public comments and serves comment moderation.
type CommentController struct {
	comments *services.CommentService
}

// NewCommentController creates a CommentController.
func NewCommentController(comments *services.CommentService) *CommentController {
	return &CommentController{comments: comments}
}

type commentRequest struct {
	services.CommentInput
	CaptchaID     string `form:"captcha_id" json:"captcha_id"`
	CaptchaAnswer string `form:"captcha_answer" json:"captcha_answer"`
}

// Store accepts a visitor comment. It answers 422 with field errors or 200 with the pending comment.
func (c *CommentController) Store(ctx *gin.Context) {
	var req commentRequest
	if !bindForm(ctx, &req) {
		return
	}
	if config.Get().CommentCaptchaEnabled && !utils.VerifyCaptcha(req.CaptchaID, req.CaptchaAnswer) {
		utils.ValidationFailed(ctx, map[string]string{"captcha": "The captcha is incorrect."})
		return
	}
	comment, err := c.comments.Create(ctx.Request.Context(), req.CommentInput)
	if err != nil {
		respondError(ctx, "create comment", err)
		return
	}
	utils.Respond(ctx, http.StatusOK, 0, "comment submitted", comment)
}

// Index lists comments, optionally with one ?status=.
func (c *CommentController) Index(ctx *gin.Context) {
	var status *int
	if v, err := strconv.Atoi(ctx.Query("status")); err == nil {
		status = &v
	}
	page, err := c.comments.List(ctx.Request.Context(), status, pageRequest(ctx))
	if err != nil {
		respondError(ctx, "list comments", err)
		return
	}
	utils.Page(ctx, "admin/comments/Index", CommentIndexProps{Comments: page})
}

// Edit returns one comment for moderation.
func (c *CommentController) Edit(ctx *gin.Context) {
	id, ok := parseID(ctx)
	if !ok {
		return
	}
	comment, err := c.comments.Find(ctx.Request.Context(), id)
	if err != nil {
		respondError(ctx, "find comment", err)
		return
	}
	utils.Page(ctx, "admin/comments/Edit", CommentEditProps{Comment: comment})
}

// Update approves, rejects or resets a comment through its status field.
func (c *CommentController) Update(ctx *gin.Context) {
	id, ok := parseID(ctx)
	if !ok {
		return
	}
	var in struct {
		Status string `form:"status" json:"status"`
	}
	if !bindForm(ctx, &in) {
		return
	}
	comment, err := c.comments.Moderate(ctx.Request.Context(), actor(ctx), id, in.Status)
	if err != nil {
		respondError(ctx, "moderate comment", err)
		return
	}
	utils.Respond(ctx, http.StatusOK, 0, "comment updated", comment)
}

// Destroy deletes a comment.
func (c *CommentController) Destroy(ctx *gin.Context) {
	id, ok := parseID(ctx)
	if !ok {
		return
	}
	if err := c.comments.Delete(ctx.Request.Context(), actor(ctx), id); err != nil {
		respondError(ctx, "delete comment", err)
		return
	}
	utils.Respond(ctx, http.StatusOK, 0, "comment deleted", nil)
}
