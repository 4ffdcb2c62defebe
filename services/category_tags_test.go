package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cppla/schoolsite/models"
)

func tagCount(t *testing.T, svc *CategoryTagService, id uint) int64 {
	t.Helper()
	tags, err := svc.ListWithCounts(context.Background(), models.TagTypePost)
	require.NoError(t, err)
	for _, tag := range tags {
		if tag.ID == id {
			return tag.RelatedPostsCount
		}
	}
	t.Fatalf("tag %d not listed", id)
	return 0
}

func TestRelatedPostsCountFollowsAssociations(t *testing.T) {
	db := newTestDB(t)
	tag := seedTag(t, db, "Arts", models.TagTypePost)
	p1 := seedPost(t, db, "one", models.StatusActive, models.PostTypeNews, time.Now())
	p2 := seedPost(t, db, "two", models.StatusInactive, models.PostTypeNews, time.Now())
	svc := NewCategoryTagService(db)

	assert.Zero(t, tagCount(t, svc, tag.ID))

	linkTag(t, db, p1.ID, tag.ID)
	assert.EqualValues(t, 1, tagCount(t, svc, tag.ID))

	linkTag(t, db, p2.ID, tag.ID)
	assert.EqualValues(t, 2, tagCount(t, svc, tag.ID))

	require.NoError(t, db.Where("post_id = ? AND category_tag_id = ?", p1.ID, tag.ID).Delete(&models.PostCategoryTag{}).Error)
	assert.EqualValues(t, 1, tagCount(t, svc, tag.ID))

	found, err := svc.Find(context.Background(), tag.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, found.RelatedPostsCount)
}

func TestListWithCountsNewestFirst(t *testing.T) {
	db := newTestDB(t)
	older := models.CategoryTag{Title: "older", Type: models.TagTypePost, Status: 1, CreatedAt: time.Now().Add(-time.Hour)}
	newer := models.CategoryTag{Title: "newer", Type: models.TagTypePost, Status: 1, CreatedAt: time.Now()}
	require.NoError(t, db.Create(&older).Error)
	require.NoError(t, db.Create(&newer).Error)
	seedTag(t, db, "teachers", models.TagTypeTeacher)
	svc := NewCategoryTagService(db)

	tags, err := svc.ListWithCounts(context.Background(), models.TagTypePost)
	require.NoError(t, err)
	require.Len(t, tags, 2)
	assert.Equal(t, "newer", tags[0].Title)

	all, err := svc.ListWithCounts(context.Background(), "")
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestCategoryTagCreateAndValidate(t *testing.T) {
	db := newTestDB(t)
	svc := NewCategoryTagService(db)
	ctx := context.Background()

	_, err := svc.Create(ctx, admin, CategoryTagInput{Title: " ", Type: "club", Status: "1"})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "title")
	assert.Equal(t, "The selected type is invalid.", verr.Fields["type"])

	tag, err := svc.Create(ctx, admin, CategoryTagInput{Title: "Robotics", Type: "post", Status: "0"})
	require.NoError(t, err)
	assert.Equal(t, models.StatusInactive, tag.Status)

	_, err = svc.Create(ctx, Actor{}, CategoryTagInput{Title: "x", Type: "post", Status: "1"})
	assert.ErrorIs(t, err, ErrForbidden)

	options, err := svc.Options(ctx, models.TagTypePost)
	require.NoError(t, err)
	assert.Empty(t, options)
}

func TestCategoryTagTypeLockedWhileReferenced(t *testing.T) {
	db := newTestDB(t)
	tag := seedTag(t, db, "Arts", models.TagTypePost)
	post := seedPost(t, db, "one", models.StatusActive, models.PostTypeNews, time.Now())
	linkTag(t, db, post.ID, tag.ID)
	svc := NewCategoryTagService(db)

	_, err := svc.Update(context.Background(), admin, tag.ID, CategoryTagInput{Title: "Arts", Type: "teacher", Status: "1"})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "type")

	updated, err := svc.Update(context.Background(), admin, tag.ID, CategoryTagInput{Title: "Fine arts", Type: "post", Status: "1"})
	require.NoError(t, err)
	assert.Equal(t, "Fine arts", updated.Title)
}

func TestCategoryTagDelete(t *testing.T) {
	db := newTestDB(t)
	svc := NewCategoryTagService(db)
	ctx := context.Background()

	teacherTag := seedTag(t, db, "Maths", models.TagTypeTeacher)
	require.NoError(t, db.Create(&models.Teacher{Alt: "Ms A", Src: "/storage/a.png", TeacherCategoryID: teacherTag.ID}).Error)
	err := svc.Delete(ctx, admin, teacherTag.ID)
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)

	facilityTag := seedTag(t, db, "Labs", models.TagTypeFacility)
	facility := models.Facility{Alt: "Lab", Src: "/storage/l.png", FacilityCategoryID: &facilityTag.ID}
	require.NoError(t, db.Create(&facility).Error)
	require.NoError(t, svc.Delete(ctx, admin, facilityTag.ID))

	var reloaded models.Facility
	require.NoError(t, db.First(&reloaded, facility.ID).Error)
	assert.Nil(t, reloaded.FacilityCategoryID)

	_, err = svc.Find(ctx, facilityTag.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}
