package services

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/cppla/schoolsite/models"
	"github.com/cppla/schoolsite/utils"
)

// relatedPostsCount is evaluated per row so the number always reflects the current links.
const relatedPostsCount = "(SELECT COUNT(DISTINCT pct.post_id) FROM post_category_tags pct WHERE pct.category_tag_id = category_tags.id) AS related_posts_count"

// CategoryTagService reads and writes category tags.
type CategoryTagService struct {
	db *gorm.DB
}

// NewCategoryTagService creates a CategoryTagService.
func NewCategoryTagService(db *gorm.DB) *CategoryTagService {
	return &CategoryTagService{db: db}
}

// CategoryTagInput is the admin tag form.
type CategoryTagInput struct {
	Title  string `form:"title" json:"title" validate:"required,max=255"`
	Type   string `form:"type" json:"type" validate:"required,oneof=post teacher facility"`
	Status string `form:"status" json:"status" validate:"required,oneof=0 1"`
}

func withRelatedCount(db *gorm.DB) *gorm.DB {
	return db.Select("category_tags.*, " + relatedPostsCount)
}

// ListWithCounts returns every tag of tagType (all types when empty), newest first,
// each with the number of posts linked to it.
func (s *CategoryTagService) ListWithCounts(ctx context.Context, tagType string) ([]models.CategoryTag, error) {
	q := s.db.WithContext(ctx).Model(&models.CategoryTag{}).Scopes(withRelatedCount)
	if tagType != "" {
		q = q.Where("type = ?", tagType)
	}
	tags := []models.CategoryTag{}
	if err := q.Order("created_at DESC").Order("id DESC").Find(&tags).Error; err != nil {
		return nil, storeErr("list category tags", err)
	}
	return tags, nil
}

// Page returns one page of tags with counts for the admin list.
func (s *CategoryTagService) Page(ctx context.Context, tagType string, req PageRequest) (Page[models.CategoryTag], error) {
	q := s.db.WithContext(ctx).Model(&models.CategoryTag{})
	if tagType != "" {
		q = q.Where("type = ?", tagType)
	}
	page, err := paginate[models.CategoryTag](q, req, withRelatedCount, preload("CreatedUser"))
	if err != nil {
		return Page[models.CategoryTag]{}, storeErr("page category tags", err)
	}
	return page, nil
}

// Options returns active tags of tagType for select inputs, alphabetically.
func (s *CategoryTagService) Options(ctx context.Context, tagType string) ([]models.CategoryTag, error) {
	tags := []models.CategoryTag{}
	err := s.db.WithContext(ctx).
		Where("type = ? AND status = ?", tagType, models.StatusActive).
		Order("title ASC").
		Find(&tags).Error
	if err != nil {
		return nil, storeErr("category tag options", err)
	}
	return tags, nil
}

// Find loads one tag with its post count.
func (s *CategoryTagService) Find(ctx context.Context, id uint) (models.CategoryTag, error) {
	var tag models.CategoryTag
	err := s.db.WithContext(ctx).Model(&models.CategoryTag{}).Scopes(withRelatedCount).
		Where("category_tags.id = ?", id).
		Take(&tag).Error
	if err != nil {
		return models.CategoryTag{}, storeErr("find category tag", err)
	}
	return tag, nil
}

// Create inserts a tag.
func (s *CategoryTagService) Create(ctx context.Context, actor Actor, in CategoryTagInput) (models.CategoryTag, error) {
	if !actor.valid() {
		return models.CategoryTag{}, ErrForbidden
	}
	status, err := validateTag(&in)
	if err != nil {
		return models.CategoryTag{}, err
	}
	tag := models.CategoryTag{Title: utils.PlainText(in.Title), Type: in.Type, Status: status}
	tag.StampCreate(actor.UserID)
	if err := s.db.WithContext(ctx).Omit(clause.Associations).Create(&tag).Error; err != nil {
		return models.CategoryTag{}, storeErr("create category tag", err)
	}
	utils.InvalidateByPrefix(ctx, detailCachePrefix)
	return s.Find(ctx, tag.ID)
}

// Update changes a tag. Its type may only change while nothing references it.
func (s *CategoryTagService) Update(ctx context.Context, actor Actor, id uint, in CategoryTagInput) (models.CategoryTag, error) {
	if !actor.valid() {
		return models.CategoryTag{}, ErrForbidden
	}
	tag, err := s.Find(ctx, id)
	if err != nil {
		return models.CategoryTag{}, err
	}
	status, err := validateTag(&in)
	if err != nil {
		return models.CategoryTag{}, err
	}
	if in.Type != tag.Type {
		if n, err := s.references(ctx, tag); err != nil {
			return models.CategoryTag{}, err
		} else if n > 0 {
			return models.CategoryTag{}, &ValidationError{Fields: map[string]string{
				"type": fmt.Sprintf("The type cannot change while %d records use this tag.", n),
			}}
		}
	}

	tag.Title = utils.PlainText(in.Title)
	tag.Type = in.Type
	tag.Status = status
	tag.StampUpdate(actor.UserID)
	if err := s.db.WithContext(ctx).Omit(clause.Associations).Save(&tag).Error; err != nil {
		return models.CategoryTag{}, storeErr("update category tag", err)
	}
	utils.InvalidateByPrefix(ctx, detailCachePrefix)
	return s.Find(ctx, tag.ID)
}

// Delete removes a tag and its post links. Tags still grouping teachers cannot be deleted;
// facilities fall back to no category.
func (s *CategoryTagService) Delete(ctx context.Context, actor Actor, id uint) error {
	if !actor.valid() {
		return ErrForbidden
	}
	tag, err := s.Find(ctx, id)
	if err != nil {
		return err
	}
	if tag.Type == models.TagTypeTeacher {
		var n int64
		if err := s.db.WithContext(ctx).Model(&models.Teacher{}).Where("teacher_category_id = ?", id).Count(&n).Error; err != nil {
			return storeErr("count teachers", err)
		}
		if n > 0 {
			return &ValidationError{Fields: map[string]string{
				"category_tag": fmt.Sprintf("This category is still assigned to %d teachers.", n),
			}}
		}
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("category_tag_id = ?", id).Delete(&models.PostCategoryTag{}).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.Facility{}).Where("facility_category_id = ?", id).
			Update("facility_category_id", nil).Error; err != nil {
			return err
		}
		return tx.Delete(&models.CategoryTag{}, id).Error
	})
	if err != nil {
		return storeErr("delete category tag", err)
	}
	utils.InvalidateByPrefix(ctx, detailCachePrefix)
	return nil
}

// references counts rows linked to tag through its current type.
func (s *CategoryTagService) references(ctx context.Context, tag models.CategoryTag) (int64, error) {
	db := s.db.WithContext(ctx)
	var n int64
	var err error
	switch tag.Type {
	case models.TagTypeTeacher:
		err = db.Model(&models.Teacher{}).Where("teacher_category_id = ?", tag.ID).Count(&n).Error
	case models.TagTypeFacility:
		err = db.Model(&models.Facility{}).Where("facility_category_id = ?", tag.ID).Count(&n).Error
	default:
		n = tag.RelatedPostsCount
	}
	if err != nil {
		return 0, storeErr("count tag references", err)
	}
	return n, nil
}

// categoryExists reports whether id names a tag of tagType.
func categoryExists(ctx context.Context, db *gorm.DB, id uint, tagType string) (bool, error) {
	var n int64
	err := db.WithContext(ctx).Model(&models.CategoryTag{}).
		Where("id = ? AND type = ?", id, tagType).
		Count(&n).Error
	return n > 0, err
}

func validateTag(in *CategoryTagInput) (int, error) {
	in.Title = strings.TrimSpace(in.Title)
	in.Type = strings.TrimSpace(in.Type)
	in.Status = strings.TrimSpace(in.Status)
	if fields := utils.ValidateStruct(in, nil); fields != nil {
		return 0, &ValidationError{Fields: fields}
	}
	status, _ := strconv.Atoi(in.Status)
	return status, nil
}
