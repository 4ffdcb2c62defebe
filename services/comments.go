package services

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/cppla/schoolsite/models"
	"github.com/cppla/schoolsite/utils"
)

// CommentNotifier is told about every new comment. Implementations must not block.
type CommentNotifier interface {
	NotifyNewComment(postTitle, author, email, text string)
}

// CommentService stores visitor comments and moderates them.
type CommentService struct {
	db       *gorm.DB
	notifier CommentNotifier
}

// NewCommentService creates a CommentService; notifier may be nil.
func NewCommentService(db *gorm.DB, notifier CommentNotifier) *CommentService {
	return &CommentService{db: db, notifier: notifier}
}

// CommentInput is the public comment form. Fields decode from any JSON scalar so
// type mistakes surface as field errors.
type CommentInput struct {
	Name        utils.FormValue `form:"name" json:"name" validate:"required,max=255"`
	Email       utils.FormValue `form:"email" json:"email" validate:"required,email,max=255"`
	Description utils.FormValue `form:"description" json:"description" validate:"required,max=5000"`
	PostID      utils.FormValue `form:"post_id" json:"post_id" validate:"required,number"`
}

// Create validates in and stores a pending comment on a published post.
func (s *CommentService) Create(ctx context.Context, in CommentInput) (models.Comment, error) {
	in.Name = in.Name.Trim()
	in.Email = in.Email.Trim()
	in.Description = in.Description.Trim()
	in.PostID = in.PostID.Trim()

	verr := newValidationError(utils.ValidateStruct(in, nil))
	var post models.Post
	if _, bad := verr.Fields["post_id"]; !bad {
		id, err := strconv.ParseUint(in.PostID.String(), 10, 64)
		if err != nil {
			verr.Add("post_id", "The post id field must be an integer.")
		} else if err := s.db.WithContext(ctx).
			Where("status = ?", models.StatusActive).
			First(&post, uint(id)).Error; err != nil {
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				return models.Comment{}, storeErr("find commented post", err)
			}
			verr.Add("post_id", "The selected post id is invalid.")
		}
	}
	if err := verr.OrNil(); err != nil {
		return models.Comment{}, err
	}

	comment := models.Comment{
		Name:        utils.PlainText(in.Name.String()),
		Email:       in.Email.String(),
		Description: utils.PlainText(in.Description.String()),
		PostID:      post.ID,
		Status:      models.CommentPending,
	}
	if comment.Name == "" || comment.Description == "" {
		if comment.Name == "" {
			verr.Add("name", requiredMessage(nil, "name"))
		}
		if comment.Description == "" {
			verr.Add("description", requiredMessage(nil, "description"))
		}
		return models.Comment{}, verr
	}
	if err := s.db.WithContext(ctx).Omit(clause.Associations).Create(&comment).Error; err != nil {
		return models.Comment{}, storeErr("create comment", err)
	}

	if s.notifier != nil {
		s.notifier.NotifyNewComment(post.Title, comment.Name, comment.Email, comment.Description)
	}
	utils.Sugar.Infow("comment received", "comment_id", comment.ID, "post_id", post.ID)
	return comment, nil
}

// List returns one page of comments with their post, optionally filtered by status.
func (s *CommentService) List(ctx context.Context, status *int, req PageRequest) (Page[models.Comment], error) {
	q := s.db.WithContext(ctx).Model(&models.Comment{})
	if status != nil {
		q = q.Where("status = ?", *status)
	}
	page, err := paginate[models.Comment](q, req, preload("Post"))
	if err != nil {
		return Page[models.Comment]{}, storeErr("list comments", err)
	}
	return page, nil
}

// Find loads one comment with its post.
func (s *CommentService) Find(ctx context.Context, id uint) (models.Comment, error) {
	var c models.Comment
	if err := s.db.WithContext(ctx).Preload("Post").First(&c, id).Error; err != nil {
		return models.Comment{}, storeErr("find comment", err)
	}
	return c, nil
}

// Moderate sets the status of a comment to approved, rejected or back to pending.
func (s *CommentService) Moderate(ctx context.Context, actor Actor, id uint, status string) (models.Comment, error) {
	if !actor.valid() {
		return models.Comment{}, ErrForbidden
	}
	in := struct {
		Status string `form:"status" validate:"required,oneof=0 1 2"`
	}{Status: strings.TrimSpace(status)}
	if fields := utils.ValidateStruct(in, nil); fields != nil {
		return models.Comment{}, &ValidationError{Fields: fields}
	}
	c, err := s.Find(ctx, id)
	if err != nil {
		return models.Comment{}, err
	}
	c.Status, _ = strconv.Atoi(in.Status)
	if err := s.db.WithContext(ctx).Model(&models.Comment{}).Where("id = ?", id).Update("status", c.Status).Error; err != nil {
		return models.Comment{}, storeErr("moderate comment", err)
	}
	utils.CacheDelete(ctx, detailCachePrefix+strconv.FormatUint(uint64(c.PostID), 10))
	utils.Sugar.Infow("comment moderated", "comment_id", id, "status", c.Status, "user_id", actor.UserID)
	return s.Find(ctx, id)
}

// Delete removes a comment.
func (s *CommentService) Delete(ctx context.Context, actor Actor, id uint) error {
	if !actor.valid() {
		return ErrForbidden
	}
	c, err := s.Find(ctx, id)
	if err != nil {
		return err
	}
	if err := s.db.WithContext(ctx).Delete(&models.Comment{}, id).Error; err != nil {
		return storeErr("delete comment", err)
	}
	utils.CacheDelete(ctx, detailCachePrefix+strconv.FormatUint(uint64(c.PostID), 10))
	return nil
}
