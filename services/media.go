package services

import (
	"context"
	"fmt"
	"mime/multipart"
	"strconv"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/cppla/schoolsite/models"
	"github.com/cppla/schoolsite/storage"
	"github.com/cppla/schoolsite/utils"
)

// MediaInput is the photo form shared by teachers, facilities and galleries.
// Only the category field that belongs to the entity is read.
type MediaInput struct {
	Alt                string                `form:"alt" validate:"required,max=255"`
	TeacherCategoryID  string                `form:"teacher_category_id"`
	FacilityCategoryID string                `form:"facility_category_id"`
	Src                *multipart.FileHeader `form:"src"`
}

// photo is the pointer constraint for entities handled by MediaService.
type photo[T any] interface {
	*T
	GetID() uint
	ImageFields() (alt, src *string)
	StampCreate(userID uint)
	StampUpdate(userID uint)
}

// MediaService implements list and CRUD for a photo entity with a single image.
type MediaService[T any, P photo[T]] struct {
	db       *gorm.DB
	files    ImageStore
	kind     string
	messages map[string]string
	preloads []string
	// assign validates and copies the entity specific fields of in onto row.
	assign func(ctx context.Context, db *gorm.DB, row P, in MediaInput, verr *ValidationError) error
}

// TeacherService manages teacher photos.
type TeacherService = MediaService[models.Teacher, *models.Teacher]

// FacilityService manages facility photos.
type FacilityService = MediaService[models.Facility, *models.Facility]

// GalleryService manages gallery photos.
type GalleryService = MediaService[models.Gallery, *models.Gallery]

// NewTeacherService creates the teacher photo service.
func NewTeacherService(db *gorm.DB, files ImageStore) *TeacherService {
	return &TeacherService{
		db:    db,
		files: files,
		kind:  "teachers",
		messages: map[string]string{
			"src.required": "You need to add a teacher photo.",
			"src.max":      "Image must not be greater than 1MB.",
			"alt.required": "Title is required.",
		},
		preloads: []string{"TeacherCategory"},
		assign: func(ctx context.Context, db *gorm.DB, row *models.Teacher, in MediaInput, verr *ValidationError) error {
			raw := strings.TrimSpace(in.TeacherCategoryID)
			if raw == "" {
				verr.Add("teacher_category_id", "The teacher category id field is required.")
				return nil
			}
			id, err := strconv.ParseUint(raw, 10, 64)
			if err != nil {
				verr.Add("teacher_category_id", "The teacher category id field must be an integer.")
				return nil
			}
			ok, err := categoryExists(ctx, db, uint(id), models.TagTypeTeacher)
			if err != nil {
				return err
			}
			if !ok {
				verr.Add("teacher_category_id", "The selected teacher category id is invalid.")
				return nil
			}
			row.TeacherCategoryID = uint(id)
			row.TeacherCategory = nil
			return nil
		},
	}
}

// NewFacilityService creates the facility photo service.
func NewFacilityService(db *gorm.DB, files ImageStore) *FacilityService {
	return &FacilityService{
		db:    db,
		files: files,
		kind:  "facilities",
		messages: map[string]string{
			"src.required": "You need to add a facility photo.",
			"src.max":      "Image must not be greater than 1MB.",
			"alt.required": "Title is required.",
		},
		preloads: []string{"FacilityCategory"},
		assign: func(ctx context.Context, db *gorm.DB, row *models.Facility, in MediaInput, verr *ValidationError) error {
			raw := strings.TrimSpace(in.FacilityCategoryID)
			row.FacilityCategory = nil
			if raw == "" {
				row.FacilityCategoryID = nil
				return nil
			}
			id, err := strconv.ParseUint(raw, 10, 64)
			if err != nil {
				verr.Add("facility_category_id", "The facility category id field must be an integer.")
				return nil
			}
			ok, err := categoryExists(ctx, db, uint(id), models.TagTypeFacility)
			if err != nil {
				return err
			}
			if !ok {
				verr.Add("facility_category_id", "The selected facility category id is invalid.")
				return nil
			}
			v := uint(id)
			row.FacilityCategoryID = &v
			return nil
		},
	}
}

// NewGalleryService creates the gallery photo service.
func NewGalleryService(db *gorm.DB, files ImageStore) *GalleryService {
	return &GalleryService{
		db:    db,
		files: files,
		kind:  "galleries",
		messages: map[string]string{
			"src.required": "You need to add a photo.",
			"src.max":      "Image must not be greater than 1MB.",
			"alt.required": "Title is required.",
		},
		assign: func(context.Context, *gorm.DB, *models.Gallery, MediaInput, *ValidationError) error { return nil },
	}
}

// List returns one page of rows, newest first.
func (s *MediaService[T, P]) List(ctx context.Context, req PageRequest) (Page[T], error) {
	page, err := paginate[T](s.db.WithContext(ctx).Model(P(new(T))), req, preload(s.preloads...))
	if err != nil {
		return Page[T]{}, storeErr("list "+s.kind, err)
	}
	return page, nil
}

// Find loads one row.
func (s *MediaService[T, P]) Find(ctx context.Context, id uint) (T, error) {
	var row T
	q := s.db.WithContext(ctx)
	for _, p := range s.preloads {
		q = q.Preload(p)
	}
	if err := q.First(P(&row), id).Error; err != nil {
		return row, storeErr("find "+s.kind, err)
	}
	return row, nil
}

// Create validates in, stores the image and inserts the row. The image is required.
func (s *MediaService[T, P]) Create(ctx context.Context, actor Actor, in MediaInput) (T, error) {
	var row T
	if !actor.valid() {
		return row, ErrForbidden
	}
	p := P(&row)
	verr, err := s.validate(ctx, p, &in)
	if err != nil {
		return row, storeErr("validate "+s.kind, err)
	}
	if in.Src == nil {
		verr.Add("src", requiredMessage(s.messages, "src"))
	}
	if err := verr.OrNil(); err != nil {
		return row, err
	}

	url, err := saveImage(s.files, in.Src, "src", s.kind, storage.MaxMediaImageBytes, s.messages, verr)
	if err != nil {
		return row, fmt.Errorf("store %s image: %w", s.kind, err)
	}
	if err := verr.OrNil(); err != nil {
		return row, err
	}

	alt, src := p.ImageFields()
	*alt = utils.PlainText(in.Alt)
	*src = url
	p.StampCreate(actor.UserID)
	if err := s.db.WithContext(ctx).Omit(clause.Associations).Create(p).Error; err != nil {
		s.files.Remove(url)
		return row, storeErr("create "+s.kind, err)
	}
	utils.Sugar.Infow(s.kind+" created", "id", p.GetID(), "user_id", actor.UserID)
	return s.Find(ctx, p.GetID())
}

// Update changes row id. Without a new image the stored one is kept; a replaced image is released.
func (s *MediaService[T, P]) Update(ctx context.Context, actor Actor, id uint, in MediaInput) (T, error) {
	if !actor.valid() {
		var zero T
		return zero, ErrForbidden
	}
	row, err := s.Find(ctx, id)
	if err != nil {
		return row, err
	}
	p := P(&row)
	verr, err := s.validate(ctx, p, &in)
	if err != nil {
		return row, storeErr("validate "+s.kind, err)
	}
	if err := verr.OrNil(); err != nil {
		return row, err
	}

	alt, src := p.ImageFields()
	previous := *src
	if in.Src != nil {
		url, err := saveImage(s.files, in.Src, "src", s.kind, storage.MaxMediaImageBytes, s.messages, verr)
		if err != nil {
			return row, fmt.Errorf("store %s image: %w", s.kind, err)
		}
		if err := verr.OrNil(); err != nil {
			return row, err
		}
		*src = url
	}
	*alt = utils.PlainText(in.Alt)
	p.StampUpdate(actor.UserID)

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Save(p).Error; err != nil {
			return err
		}
		if *src != previous {
			return s.files.Release(tx, previous)
		}
		return nil
	})
	if err != nil {
		if *src != previous {
			s.files.Remove(*src)
		}
		return row, storeErr("update "+s.kind, err)
	}
	utils.Sugar.Infow(s.kind+" updated", "id", id, "user_id", actor.UserID)
	return s.Find(ctx, id)
}

// Delete removes row id and releases its image.
func (s *MediaService[T, P]) Delete(ctx context.Context, actor Actor, id uint) error {
	if !actor.valid() {
		return ErrForbidden
	}
	row, err := s.Find(ctx, id)
	if err != nil {
		return err
	}
	p := P(&row)
	_, src := p.ImageFields()
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(P(new(T)), id).Error; err != nil {
			return err
		}
		return s.files.Release(tx, *src)
	})
	if err != nil {
		return storeErr("delete "+s.kind, err)
	}
	utils.Sugar.Infow(s.kind+" deleted", "id", id, "user_id", actor.UserID)
	return nil
}

func (s *MediaService[T, P]) validate(ctx context.Context, row P, in *MediaInput) (*ValidationError, error) {
	in.Alt = strings.TrimSpace(in.Alt)
	verr := newValidationError(utils.ValidateStruct(in, s.messages))
	if err := s.assign(ctx, s.db, row, *in, verr); err != nil {
		return verr, err
	}
	return verr, nil
}
