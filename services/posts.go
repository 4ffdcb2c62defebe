package services

import (
	"context"
	"fmt"
	"mime/multipart"
	"strconv"
	"strings"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/cppla/schoolsite/models"
	"github.com/cppla/schoolsite/storage"
	"github.com/cppla/schoolsite/utils"
)

const (
	// HomePostLimit is how many posts the home page shows.
	HomePostLimit = 3
	// RelatedPostLimit is how many related posts a detail page shows.
	RelatedPostLimit = 3

	detailCachePrefix = "cache:post:detail:"
	dateLayout        = "2006-01-02"
)

// PostService reads and writes posts.
type PostService struct {
	db    *gorm.DB
	files ImageStore
}

// NewPostService creates a PostService.
func NewPostService(db *gorm.DB, files ImageStore) *PostService {
	return &PostService{db: db, files: files}
}

// PostDetail is everything the public detail page shows.
type PostDetail struct {
	Post         models.Post      `json:"post"`
	RelatedPosts []models.Post    `json:"related_posts"`
	Comments     []models.Comment `json:"comments"`
}

// PostFilter narrows a post listing.
type PostFilter struct {
	CategoryTagID *uint
	PostTypeID    *uint
	Search        string
	IncludeDrafts bool
}

// PostInput is the admin post form.
type PostInput struct {
	Title             string                  `form:"title" validate:"required,max=255"`
	Subtitle          string                  `form:"subtitle" validate:"max=255"`
	Description       string                  `form:"description" validate:"required"`
	FooterDescription string                  `form:"footer_description"`
	StartDate         string                  `form:"start_date" validate:"omitempty,datetime=2006-01-02"`
	EndDate           string                  `form:"end_date" validate:"omitempty,datetime=2006-01-02"`
	RegistrationFee   string                  `form:"registration_fee" validate:"max=64"`
	AwardDescription  string                  `form:"award_description"`
	VideoURL          string                  `form:"video_url" validate:"omitempty,url,max=512"`
	Location          string                  `form:"location" validate:"max=255"`
	Status            string                  `form:"status" validate:"required,oneof=0 1"`
	PostTypeID        string                  `form:"post_type_id" validate:"required,oneof=1 2 3"`
	CategoryTagIDs    []string                `form:"category_tag_ids"`
	RemoveImages      []string                `form:"remove_images"`
	BannerImg         *multipart.FileHeader   `form:"banner_img"`
	Images            []*multipart.FileHeader `form:"images"`
}

func (in *PostInput) trim() {
	in.Title = strings.TrimSpace(in.Title)
	in.Subtitle = strings.TrimSpace(in.Subtitle)
	in.Description = strings.TrimSpace(in.Description)
	in.FooterDescription = strings.TrimSpace(in.FooterDescription)
	in.StartDate = strings.TrimSpace(in.StartDate)
	in.EndDate = strings.TrimSpace(in.EndDate)
	in.RegistrationFee = strings.TrimSpace(in.RegistrationFee)
	in.AwardDescription = strings.TrimSpace(in.AwardDescription)
	in.VideoURL = strings.TrimSpace(in.VideoURL)
	in.Location = strings.TrimSpace(in.Location)
	in.Status = strings.TrimSpace(in.Status)
	in.PostTypeID = strings.TrimSpace(in.PostTypeID)
}

// parsedPost holds the validated scalar values of a PostInput.
type parsedPost struct {
	status     int
	postTypeID uint
	startDate  *time.Time
	endDate    *time.Time
	tagIDs     []uint
}

// HomePosts returns the newest published posts with their tags, skipping excludeID when set.
func (s *PostService) HomePosts(ctx context.Context, excludeID *uint) ([]models.Post, error) {
	q := s.db.WithContext(ctx).
		Preload("CategoryTags.CategoryTag").
		Where("status = ?", models.StatusActive)
	if excludeID != nil {
		q = q.Where("id <> ?", *excludeID)
	}
	posts := []models.Post{}
	if err := q.Order("created_at DESC").Order("id DESC").Limit(HomePostLimit).Find(&posts).Error; err != nil {
		return nil, storeErr("home posts", err)
	}
	return posts, nil
}

// Detail returns a published post with related posts and approved comments.
func (s *PostService) Detail(ctx context.Context, id uint) (PostDetail, error) {
	key := detailCachePrefix + strconv.FormatUint(uint64(id), 10)
	var detail PostDetail
	if utils.CacheGetJSON(ctx, key, &detail) {
		return detail, nil
	}

	db := s.db.WithContext(ctx)
	if err := db.Preload("CategoryTags.CategoryTag").
		Where("status = ?", models.StatusActive).
		First(&detail.Post, id).Error; err != nil {
		return PostDetail{}, storeErr("post detail", err)
	}
	detail.Post.Description = utils.SanitizeHTML(detail.Post.Description)

	detail.RelatedPosts = []models.Post{}
	if err := db.Preload("CategoryTags.CategoryTag").
		Where("status = ? AND post_type_id = ? AND id <> ?", models.StatusActive, detail.Post.PostTypeID, id).
		Order("created_at DESC").Order("id DESC").
		Limit(RelatedPostLimit).
		Find(&detail.RelatedPosts).Error; err != nil {
		return PostDetail{}, storeErr("related posts", err)
	}

	detail.Comments = []models.Comment{}
	if err := db.Where("post_id = ? AND status = ?", id, models.CommentApproved).
		Order("created_at ASC").Order("id ASC").
		Find(&detail.Comments).Error; err != nil {
		return PostDetail{}, storeErr("post comments", err)
	}

	utils.CacheSetJSON(ctx, key, detail, 0)
	return detail, nil
}

// List returns one page of posts. Drafts are only included when the filter asks for them.
func (s *PostService) List(ctx context.Context, filter PostFilter, req PageRequest) (Page[models.Post], error) {
	q := s.db.WithContext(ctx).Model(&models.Post{})
	if !filter.IncludeDrafts {
		q = q.Where("status = ?", models.StatusActive)
	}
	if filter.PostTypeID != nil {
		q = q.Where("post_type_id = ?", *filter.PostTypeID)
	}
	if filter.CategoryTagID != nil {
		q = q.Where("id IN (?)", s.db.Model(&models.PostCategoryTag{}).
			Select("post_id").Where("category_tag_id = ?", *filter.CategoryTagID))
	}
	if search := strings.TrimSpace(filter.Search); search != "" {
		q = q.Where("title LIKE ?", "%"+search+"%")
	}
	page, err := paginate[models.Post](q, req, preload("CategoryTags.CategoryTag", "CreatedUser"))
	if err != nil {
		return Page[models.Post]{}, storeErr("list posts", err)
	}
	return page, nil
}

// Calendar returns event posts whose date window overlaps [from, to).
func (s *PostService) Calendar(ctx context.Context, from, to time.Time) ([]models.Post, error) {
	events := []models.Post{}
	err := s.db.WithContext(ctx).
		Where("post_type_id = ? AND start_date IS NOT NULL", models.PostTypeEvent).
		Where("start_date < ? AND COALESCE(end_date, start_date) >= ?", to, from).
		Order("start_date ASC").Order("id ASC").
		Find(&events).Error
	if err != nil {
		return nil, storeErr("calendar", err)
	}
	return events, nil
}

// Find loads any post, drafts included, for the admin editor.
func (s *PostService) Find(ctx context.Context, id uint) (models.Post, error) {
	var post models.Post
	if err := s.db.WithContext(ctx).Preload("CategoryTags.CategoryTag").First(&post, id).Error; err != nil {
		return models.Post{}, storeErr("find post", err)
	}
	return post, nil
}

// Create validates in, stores the uploaded images and inserts the post with its tags.
func (s *PostService) Create(ctx context.Context, actor Actor, in PostInput) (models.Post, error) {
	if !actor.valid() {
		return models.Post{}, ErrForbidden
	}
	parsed, verr := s.validate(ctx, &in)
	if in.BannerImg == nil {
		verr.Add("banner_img", requiredMessage(nil, "banner_img"))
	}
	if err := verr.OrNil(); err != nil {
		return models.Post{}, err
	}

	saved := []string{}
	banner, err := saveImage(s.files, in.BannerImg, "banner_img", "posts", storage.MaxPostImageBytes, nil, verr)
	if err != nil {
		return models.Post{}, fmt.Errorf("store banner: %w", err)
	}
	saved = append(saved, banner)
	images, err := s.saveGallery(in.Images, verr)
	saved = append(saved, images...)
	if err != nil || verr.OrNil() != nil {
		removeAll(s.files, saved)
		if err != nil {
			return models.Post{}, fmt.Errorf("store images: %w", err)
		}
		return models.Post{}, verr
	}

	post := models.Post{BannerImg: banner, Images: models.StringList(images)}
	applyPostInput(&post, in, parsed)
	post.StampCreate(actor.UserID)

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(&post).Error; err != nil {
			return err
		}
		return syncPostTags(tx, post.ID, parsed.tagIDs)
	})
	if err != nil {
		removeAll(s.files, saved)
		return models.Post{}, storeErr("create post", err)
	}

	s.invalidate(ctx)
	utils.Sugar.Infow("post created", "post_id", post.ID, "user_id", actor.UserID)
	return s.Find(ctx, post.ID)
}

// Update applies in to post id. Images are optional; when absent the stored ones are kept.
func (s *PostService) Update(ctx context.Context, actor Actor, id uint, in PostInput) (models.Post, error) {
	if !actor.valid() {
		return models.Post{}, ErrForbidden
	}
	post, err := s.Find(ctx, id)
	if err != nil {
		return models.Post{}, err
	}
	parsed, verr := s.validate(ctx, &in)
	if err := verr.OrNil(); err != nil {
		return models.Post{}, err
	}

	saved := []string{}
	banner := post.BannerImg
	if in.BannerImg != nil {
		url, err := saveImage(s.files, in.BannerImg, "banner_img", "posts", storage.MaxPostImageBytes, nil, verr)
		if err != nil {
			return models.Post{}, fmt.Errorf("store banner: %w", err)
		}
		if url != "" {
			banner = url
			saved = append(saved, url)
		}
	}
	added, err := s.saveGallery(in.Images, verr)
	saved = append(saved, added...)
	if err != nil || verr.OrNil() != nil {
		removeAll(s.files, saved)
		if err != nil {
			return models.Post{}, fmt.Errorf("store images: %w", err)
		}
		return models.Post{}, verr
	}

	released := []string{}
	if banner != post.BannerImg {
		released = append(released, post.BannerImg)
	}
	kept := []string{}
	drop := map[string]bool{}
	for _, u := range in.RemoveImages {
		drop[strings.TrimSpace(u)] = true
	}
	for _, u := range post.Images {
		if drop[u] {
			released = append(released, u)
			continue
		}
		kept = append(kept, u)
	}

	post.BannerImg = banner
	post.Images = models.StringList(append(kept, added...))
	applyPostInput(&post, in, parsed)
	post.StampUpdate(actor.UserID)
	post.CategoryTags = nil

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Save(&post).Error; err != nil {
			return err
		}
		if err := syncPostTags(tx, post.ID, parsed.tagIDs); err != nil {
			return err
		}
		return s.files.Release(tx, released...)
	})
	if err != nil {
		removeAll(s.files, saved)
		return models.Post{}, storeErr("update post", err)
	}

	s.invalidate(ctx)
	utils.Sugar.Infow("post updated", "post_id", post.ID, "user_id", actor.UserID)
	return s.Find(ctx, post.ID)
}

// Delete removes a post with its tag links and comments, and releases its images.
func (s *PostService) Delete(ctx context.Context, actor Actor, id uint) error {
	if !actor.valid() {
		return ErrForbidden
	}
	post, err := s.Find(ctx, id)
	if err != nil {
		return err
	}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("post_id = ?", id).Delete(&models.PostCategoryTag{}).Error; err != nil {
			return err
		}
		if err := tx.Where("post_id = ?", id).Delete(&models.Comment{}).Error; err != nil {
			return err
		}
		if err := tx.Delete(&models.Post{}, id).Error; err != nil {
			return err
		}
		return s.files.Release(tx, append([]string{post.BannerImg}, post.Images...)...)
	})
	if err != nil {
		return storeErr("delete post", err)
	}
	s.invalidate(ctx)
	utils.Sugar.Infow("post deleted", "post_id", id, "user_id", actor.UserID)
	return nil
}

// invalidate drops cached detail payloads; related posts and tag titles appear in every one of them.
func (s *PostService) invalidate(ctx context.Context) {
	utils.InvalidateByPrefix(ctx, detailCachePrefix)
}

func (s *PostService) saveGallery(files []*multipart.FileHeader, verr *ValidationError) ([]string, error) {
	urls := []string{}
	for _, fh := range files {
		if fh == nil {
			continue
		}
		url, err := saveImage(s.files, fh, "images", "posts", storage.MaxPostImageBytes, nil, verr)
		if err != nil {
			return urls, err
		}
		if url != "" {
			urls = append(urls, url)
		}
	}
	return urls, nil
}

// validate checks in and returns the parsed values. The returned *ValidationError is never nil; use OrNil.
func (s *PostService) validate(ctx context.Context, in *PostInput) (parsedPost, *ValidationError) {
	in.trim()
	verr := newValidationError(utils.ValidateStruct(in, nil))
	var parsed parsedPost

	if _, bad := verr.Fields["status"]; !bad {
		parsed.status, _ = strconv.Atoi(in.Status)
	}
	if _, bad := verr.Fields["post_type_id"]; !bad {
		v, _ := strconv.ParseUint(in.PostTypeID, 10, 64)
		parsed.postTypeID = uint(v)
	}
	if in.StartDate != "" {
		if t, err := time.ParseInLocation(dateLayout, in.StartDate, time.Local); err == nil {
			parsed.startDate = &t
		}
	}
	if in.EndDate != "" {
		if t, err := time.ParseInLocation(dateLayout, in.EndDate, time.Local); err == nil {
			parsed.endDate = &t
		}
	}
	if parsed.startDate != nil && parsed.endDate != nil && parsed.endDate.Before(*parsed.startDate) {
		verr.Add("end_date", "The end date field must be a date after or equal to start date.")
	}

	ids, ok := parseIDs(in.CategoryTagIDs)
	if !ok {
		verr.Add("category_tag_ids", "The selected category tag ids is invalid.")
	} else if len(ids) > 0 {
		var n int64
		if err := s.db.WithContext(ctx).Model(&models.CategoryTag{}).
			Where("id IN ? AND type = ?", ids, models.TagTypePost).
			Count(&n).Error; err != nil || int(n) != len(ids) {
			verr.Add("category_tag_ids", "The selected category tag ids is invalid.")
		}
	}
	parsed.tagIDs = ids
	return parsed, verr
}

func applyPostInput(post *models.Post, in PostInput, parsed parsedPost) {
	post.Title = utils.PlainText(in.Title)
	post.Subtitle = utils.PlainTextPtr(&in.Subtitle)
	post.Description = utils.SanitizeHTML(in.Description)
	post.FooterDescription = optionalHTML(in.FooterDescription)
	post.StartDate = parsed.startDate
	post.EndDate = parsed.endDate
	post.RegistrationFee = utils.PlainTextPtr(&in.RegistrationFee)
	post.AwardDescription = optionalHTML(in.AwardDescription)
	post.VideoURL = optionalString(in.VideoURL)
	post.Location = utils.PlainTextPtr(&in.Location)
	post.Status = parsed.status
	post.PostTypeID = parsed.postTypeID
}

// syncPostTags makes the post's tag links equal to ids.
func syncPostTags(tx *gorm.DB, postID uint, ids []uint) error {
	var current []uint
	if err := tx.Model(&models.PostCategoryTag{}).Where("post_id = ?", postID).Pluck("category_tag_id", &current).Error; err != nil {
		return err
	}
	if stale := utils.DiffUint(current, ids); len(stale) > 0 {
		if err := tx.Where("post_id = ? AND category_tag_id IN ?", postID, stale).Delete(&models.PostCategoryTag{}).Error; err != nil {
			return err
		}
	}
	for _, tagID := range utils.DiffUint(ids, current) {
		if err := tx.Create(&models.PostCategoryTag{PostID: postID, CategoryTagID: tagID}).Error; err != nil {
			return err
		}
	}
	return nil
}

// parseIDs parses unique positive ids; blank entries are skipped.
func parseIDs(raw []string) ([]uint, bool) {
	ids := []uint{}
	for _, r := range raw {
		for _, part := range strings.Split(r, ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			v, err := strconv.ParseUint(part, 10, 64)
			if err != nil || v == 0 {
				return nil, false
			}
			ids = append(ids, uint(v))
		}
	}
	return utils.UniqueUint(ids), true
}

func optionalString(v string) *string {
	if v == "" {
		return nil
	}
	return &v
}

func optionalHTML(v string) *string {
	if v == "" {
		return nil
	}
	clean := utils.SanitizeHTML(v)
	return &clean
}
