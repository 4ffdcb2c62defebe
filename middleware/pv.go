package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/cppla/schoolsite/models"
	"github.com/cppla/schoolsite/utils"
)

var untrackedPrefixes = []string{"/admin", "/api/", "/storage/", "/logout"}

// PageViewRecorder counts successful public page views per day and path.
func PageViewRecorder(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if c.Request.Method != http.MethodGet {
			return
		}
		status := c.Writer.Status()
		if status < 200 || status >= 400 {
			return
		}

		path := c.Request.URL.Path
		if path == "/health" {
			return
		}
		for _, p := range untrackedPrefixes {
			if strings.HasPrefix(path, p) {
				return
			}
		}

		if err := models.IncrementPageView(db.WithContext(c.Request.Context()), path, time.Now()); err != nil {
			utils.Sugar.Warnw("page view not recorded", "path", path, "error", err)
		}
	}
}
