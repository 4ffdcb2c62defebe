package services

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/cppla/schoolsite/models"
)

// DashboardStats are the numbers on the admin landing page.
type DashboardStats struct {
	Posts           int64         `json:"posts"`
	PublishedPosts  int64         `json:"published_posts"`
	Events          int64         `json:"events"`
	CategoryTags    int64         `json:"category_tags"`
	Teachers        int64         `json:"teachers"`
	Facilities      int64         `json:"facilities"`
	Galleries       int64         `json:"galleries"`
	Comments        int64         `json:"comments"`
	PendingComments int64         `json:"pending_comments"`
	Users           int64         `json:"users"`
	TodayViews      int64         `json:"today_views"`
	RecentPosts     []models.Post `json:"recent_posts"`
}

// StatsService aggregates counts for the dashboard.
type StatsService struct {
	db  *gorm.DB
	now func() time.Time
}

// NewStatsService creates a StatsService.
func NewStatsService(db *gorm.DB) *StatsService {
	return &StatsService{db: db, now: time.Now}
}

// Dashboard collects entity counts, pending comments and today's page views.
func (s *StatsService) Dashboard(ctx context.Context) (DashboardStats, error) {
	db := s.db.WithContext(ctx)
	var st DashboardStats
	counts := []struct {
		dst   *int64
		model interface{}
		where []interface{}
	}{
		{&st.Posts, &models.Post{}, nil},
		{&st.PublishedPosts, &models.Post{}, []interface{}{"status = ?", models.StatusActive}},
		{&st.Events, &models.Post{}, []interface{}{"post_type_id = ?", models.PostTypeEvent}},
		{&st.CategoryTags, &models.CategoryTag{}, nil},
		{&st.Teachers, &models.Teacher{}, nil},
		{&st.Facilities, &models.Facility{}, nil},
		{&st.Galleries, &models.Gallery{}, nil},
		{&st.Comments, &models.Comment{}, nil},
		{&st.PendingComments, &models.Comment{}, []interface{}{"status = ?", models.CommentPending}},
		{&st.Users, &models.User{}, nil},
	}
	for _, c := range counts {
		q := db.Model(c.model)
		if len(c.where) > 0 {
			q = q.Where(c.where[0], c.where[1:]...)
		}
		if err := q.Count(c.dst).Error; err != nil {
			return DashboardStats{}, storeErr("dashboard counts", err)
		}
	}

	day := models.DayStart(s.now())
	if err := db.Model(&models.PageView{}).
		Where("date >= ? AND date < ?", day, day.AddDate(0, 0, 1)).
		Select("COALESCE(SUM(count), 0)").
		Scan(&st.TodayViews).Error; err != nil {
		return DashboardStats{}, storeErr("today views", err)
	}

	st.RecentPosts = []models.Post{}
	if err := db.Order("created_at DESC").Order("id DESC").Limit(5).Find(&st.RecentPosts).Error; err != nil {
		return DashboardStats{}, storeErr("recent posts", err)
	}
	return st, nil
}
