package controllers

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/cppla/schoolsite/services"
	"github.com/cppla/schoolsite/utils"
)

const monthLayout = "2006-01"

// DashboardController serves the admin landing page and the event calendar.
type DashboardController struct {
	stats *services.StatsService
	posts *services.PostService
}

// NewDashboardController creates a DashboardController.
func NewDashboardController(stats *services.StatsService, posts *services.PostService) *DashboardController {
	return &DashboardController{stats: stats, posts: posts}
}

// Dashboard returns site counts and today's page views.
func (d *DashboardController) Dashboard(ctx *gin.Context) {
	stats, err := d.stats.Dashboard(ctx.Request.Context())
	if err != nil {
		respondError(ctx, "dashboard", err)
		return
	}
	utils.Page(ctx, "Dashboard", DashboardProps{Stats: stats})
}

// Calendar returns the events overlapping ?month=YYYY-MM, the current month by default.
func (d *DashboardController) Calendar(ctx *gin.Context) {
	month := time.Now()
	if v := ctx.Query("month"); v != "" {
		parsed, err := time.ParseInLocation(monthLayout, v, time.Local)
		if err != nil {
			utils.ValidationFailed(ctx, map[string]string{"month": "The month field must match the format YYYY-MM."})
			return
		}
		month = parsed
	}
	from := time.Date(month.Year(), month.Month(), 1, 0, 0, 0, 0, time.Local)
	to := from.AddDate(0, 1, 0)

	events, err := d.posts.Calendar(ctx.Request.Context(), from, to)
	if err != nil {
		respondError(ctx, "calendar", err)
		return
	}
	utils.Page(ctx, "admin/Calendar", CalendarProps{Month: from.Format(monthLayout), Events: events})
}
