package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cppla/schoolsite/models"
)

func TestDashboardCounts(t *testing.T) {
	db := newTestDB(t)
	now := time.Date(2024, 6, 3, 15, 0, 0, 0, time.Local)
	seedPost(t, db, "news", models.StatusActive, models.PostTypeNews, now)
	event := seedPost(t, db, "event", models.StatusInactive, models.PostTypeEvent, now.Add(time.Minute))
	seedTag(t, db, "Arts", models.TagTypePost)
	require.NoError(t, db.Create(&models.Comment{Name: "n", Email: "e@x.y", Description: "d", PostID: event.ID}).Error)
	require.NoError(t, db.Create(&models.Gallery{Alt: "a", Src: "/storage/g.png"}).Error)

	require.NoError(t, models.IncrementPageView(db, "/", now))
	require.NoError(t, models.IncrementPageView(db, "/", now.Add(time.Minute)))
	require.NoError(t, models.IncrementPageView(db, "/gallery", now))
	require.NoError(t, models.IncrementPageView(db, "/", now.AddDate(0, 0, -1)))

	svc := NewStatsService(db)
	svc.now = func() time.Time { return now }
	stats, err := svc.Dashboard(context.Background())
	require.NoError(t, err)

	assert.EqualValues(t, 2, stats.Posts)
	assert.EqualValues(t, 1, stats.PublishedPosts)
	assert.EqualValues(t, 1, stats.Events)
	assert.EqualValues(t, 1, stats.CategoryTags)
	assert.EqualValues(t, 1, stats.Galleries)
	assert.EqualValues(t, 1, stats.PendingComments)
	assert.EqualValues(t, 3, stats.TodayViews)
	require.Len(t, stats.RecentPosts, 2)
	assert.Equal(t, event.ID, stats.RecentPosts[0].ID)
}
