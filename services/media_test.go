package services

import (
	"context"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cppla/schoolsite/models"
)

func TestTeacherCreateValidation(t *testing.T) {
	db := newTestDB(t)
	svc := NewTeacherService(db, newTestStore(t))

	_, err := svc.Create(context.Background(), admin, MediaInput{})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "You need to add a teacher photo.", verr.Fields["src"])
	assert.Equal(t, "Title is required.", verr.Fields["alt"])
	assert.Equal(t, "The teacher category id field is required.", verr.Fields["teacher_category_id"])

	facilityTag := seedTag(t, db, "Labs", models.TagTypeFacility)
	_, err = svc.Create(context.Background(), admin, MediaInput{
		Alt:               "Ms Smith",
		TeacherCategoryID: strconv.Itoa(int(facilityTag.ID)),
		Src:               imageUpload(t, "smith.png", 256),
	})
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "The selected teacher category id is invalid.", verr.Fields["teacher_category_id"])

	_, err = svc.Create(context.Background(), admin, MediaInput{Alt: "Ms Smith", TeacherCategoryID: "abc", Src: imageUpload(t, "smith.png", 256)})
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "The teacher category id field must be an integer.", verr.Fields["teacher_category_id"])
}

func TestTeacherImageLifecycle(t *testing.T) {
	db := newTestDB(t)
	store := newTestStore(t)
	svc := NewTeacherService(db, store)
	ctx := context.Background()
	science := seedTag(t, db, "Science", models.TagTypeTeacher)
	catID := strconv.Itoa(int(science.ID))

	teacher, err := svc.Create(ctx, admin, MediaInput{Alt: "Ms Smith", TeacherCategoryID: catID, Src: imageUpload(t, "smith.png", 1024)})
	require.NoError(t, err)
	require.NotNil(t, teacher.TeacherCategory)
	assert.Equal(t, "Science", teacher.TeacherCategory.Title)
	original := teacher.Src

	// no new image keeps the stored one
	kept, err := svc.Update(ctx, admin, teacher.ID, MediaInput{Alt: "Mrs Smith", TeacherCategoryID: catID})
	require.NoError(t, err)
	assert.Equal(t, original, kept.Src)
	assert.Equal(t, "Mrs Smith", kept.Alt)

	// an oversized image is rejected and the stored one survives
	_, err = svc.Update(ctx, admin, teacher.ID, MediaInput{Alt: "Mrs Smith", TeacherCategoryID: catID, Src: imageUpload(t, "huge.png", 2<<20)})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "Image must not be greater than 1MB.", verr.Fields["src"])
	reloaded, err := svc.Find(ctx, teacher.ID)
	require.NoError(t, err)
	assert.Equal(t, original, reloaded.Src)

	// a wrong type is rejected as well
	_, err = svc.Update(ctx, admin, teacher.ID, MediaInput{Alt: "Mrs Smith", TeacherCategoryID: catID, Src: imageUpload(t, "cv.gif", 64)})
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "The src field must be a file of type: jpg, jpeg, png, webp.", verr.Fields["src"])

	// a valid image replaces it and the old file is queued for removal
	replaced, err := svc.Update(ctx, admin, teacher.ID, MediaInput{Alt: "Mrs Smith", TeacherCategoryID: catID, Src: imageUpload(t, "new.png", 2048)})
	require.NoError(t, err)
	assert.NotEqual(t, original, replaced.Src)
	var queued []models.StoredFile
	require.NoError(t, db.Find(&queued).Error)
	require.Len(t, queued, 1)
	assert.Equal(t, original, queued[0].URL)

	require.NoError(t, svc.Delete(ctx, admin, teacher.ID))
	page, err := svc.List(ctx, PageRequest{})
	require.NoError(t, err)
	assert.Empty(t, page.Data)
	_, err = svc.Find(ctx, teacher.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestFacilityCategoryIsOptional(t *testing.T) {
	db := newTestDB(t)
	svc := NewFacilityService(db, newTestStore(t))

	facility, err := svc.Create(context.Background(), admin, MediaInput{Alt: "Library", Src: imageUpload(t, "library.png", 128)})
	require.NoError(t, err)
	assert.Nil(t, facility.FacilityCategoryID)
}

func TestGalleryListNewestFirst(t *testing.T) {
	db := newTestDB(t)
	svc := NewGalleryService(db, newTestStore(t))
	ctx := context.Background()

	var ids []uint
	for i := 0; i < 3; i++ {
		g, err := svc.Create(ctx, admin, MediaInput{Alt: "photo " + strconv.Itoa(i), Src: imageUpload(t, "p.png", 128)})
		require.NoError(t, err)
		ids = append(ids, g.ID)
	}

	page, err := svc.List(ctx, PageRequest{BaseURL: "http://school.test/gallery"})
	require.NoError(t, err)
	require.Len(t, page.Data, 3)
	assert.Equal(t, ids[2], page.Data[0].ID)
	assert.Equal(t, ids[0], page.Data[2].ID)
	assert.EqualValues(t, 3, page.Total)
	assert.Equal(t, admin.UserID, page.Data[0].CreatedUserID)
}
