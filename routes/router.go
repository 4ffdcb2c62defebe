package routes

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/cppla/schoolsite/config"
	"github.com/cppla/schoolsite/controllers"
	"github.com/cppla/schoolsite/middleware"
	"github.com/cppla/schoolsite/services"
	"github.com/cppla/schoolsite/storage"
	"github.com/cppla/schoolsite/utils"
)

// staticPages maps public informational paths to their frontend components.
var staticPages = map[string]string{
	"/our-history":            "frontend/OurHistory",
	"/our-mission-and-vision": "frontend/OurMissionAndVision",
	"/studentadmission":       "frontend/StudentAdmission",
	"/admission-process":      "frontend/AdmissionProcess",
	"/contact-us":             "frontend/ContactUs",
	"/student-life":           "frontend/StudentLife",
	"/education":              "frontend/Education",
}

// crud is implemented by every admin resource controller.
type crud interface {
	Index(*gin.Context)
	Create(*gin.Context)
	Store(*gin.Context)
	Edit(*gin.Context)
	Update(*gin.Context)
	Destroy(*gin.Context)
}

// SetupRouter wires routes, middlewares, and controllers. The engine is wrapped so
// HTML forms can reach PUT, PATCH and DELETE routes through _method.
func SetupRouter(db *gorm.DB, files *storage.Local) http.Handler {
	cfg := config.Get()
	switch strings.ToLower(cfg.GinMode) {
	case "debug":
		gin.SetMode(gin.DebugMode)
	case "test":
		gin.SetMode(gin.TestMode)
	default:
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.MaxMultipartMemory = middleware.MultipartMemory
	accessLog := utils.Logger
	if gl, err := utils.NewRollingFileLogger(cfg.GinPath, cfg.LogLevel, cfg.LogMaxSizeMB, cfg.LogMaxBackups, cfg.LogMaxAgeDays, cfg.LogCompress); err == nil {
		accessLog = gl
	}
	r.Use(utils.Ginzap(accessLog, time.RFC3339, true))
	r.Use(utils.RecoveryWithZap(accessLog, false))

	corsCfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type", middleware.MethodOverrideHeader},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(cfg.AllowedOrigins) == 0 || (len(cfg.AllowedOrigins) == 1 && cfg.AllowedOrigins[0] == "*") {
		corsCfg.AllowAllOrigins = true
		corsCfg.AllowCredentials = false
	} else {
		corsCfg.AllowOrigins = cfg.AllowedOrigins
	}
	r.Use(cors.New(corsCfg))
	r.Use(middleware.PageViewRecorder(db))

	r.Static(storage.URLPrefix, files.Root())
	r.GET("/health", func(ctx *gin.Context) {
		utils.Success(ctx, gin.H{"status": "ok"})
	})

	postService := services.NewPostService(db, files)
	tagService := services.NewCategoryTagService(db)
	teacherService := services.NewTeacherService(db, files)
	facilityService := services.NewFacilityService(db, files)
	galleryService := services.NewGalleryService(db, files)
	commentService := services.NewCommentService(db, utils.CommentMailer{})
	userService := services.NewUserService(db)
	statsService := services.NewStatsService(db)

	site := controllers.NewSiteController(postService, tagService, teacherService, facilityService, galleryService)
	authController := controllers.NewAuthController(userService)
	commentController := controllers.NewCommentController(commentService)
	configController := controllers.NewConfigController()
	dashboard := controllers.NewDashboardController(statsService, postService)

	r.GET("/", site.Home)
	r.GET("/post-detail/:id", site.PostDetail)
	for path, component := range staticPages {
		r.GET(path, site.Static(component))
	}
	r.GET("/events-and-news", site.EventsAndNews)
	r.GET("/our-teachers", site.OurTeachers)
	r.GET("/facilities", site.Facilities)
	r.GET("/gallery", site.Gallery)

	loginLimit := middleware.RateLimit(cfg.RateLimitPerMinute)
	r.GET("/admin-login", authController.LoginPage)
	r.POST("/admin-login", loginLimit, authController.Login)
	r.POST("/logout", middleware.AuthRequired(), authController.Logout)

	api := r.Group("/api")
	api.POST("/post-comment/store", middleware.RateLimit(cfg.RateLimitPerMinute), commentController.Store)
	api.GET("/captcha", authController.Captcha)
	api.GET("/config/footer", configController.GetFooter)
	api.GET("/config/notice", configController.GetNotice)

	admin := r.Group("/admin")
	admin.Use(middleware.AuthRequired())
	admin.GET("/dashboard", dashboard.Dashboard)
	admin.GET("/calendar", dashboard.Calendar)
	resources := map[string]crud{
		"posts":         controllers.NewPostController(postService, tagService),
		"category-tags": controllers.NewCategoryTagController(tagService),
		"teachers":      controllers.NewTeacherController(teacherService, tagService),
		"facilities":    controllers.NewFacilityController(facilityService, tagService),
		"galleries":     controllers.NewGalleryController(galleryService),
		"comments":      commentResource{commentController},
		"users":         controllers.NewUserController(userService),
	}
	for name, c := range resources {
		resource(admin.Group("/"+name), c)
	}

	r.NoRoute(func(ctx *gin.Context) {
		if strings.HasPrefix(ctx.Request.URL.Path, "/api/") {
			utils.Error(ctx, http.StatusNotFound, 40400, "api route not found")
			return
		}
		utils.Error(ctx, http.StatusNotFound, 40400, "page not found")
	})

	return middleware.MethodOverride(r, int64(cfg.MaxBodyMB)<<20)
}

// resource registers the conventional admin routes for c.
func resource(g *gin.RouterGroup, c crud) {
	g.GET("", c.Index)
	g.GET("/create", c.Create)
	g.POST("", c.Store)
	g.GET("/:id/edit", c.Edit)
	g.PUT("/:id", c.Update)
	g.PATCH("/:id", c.Update)
	g.DELETE("/:id", c.Destroy)
}

// commentResource adapts comments, which are created publicly, to the admin routes.
type commentResource struct {
	*controllers.CommentController
}

func (commentResource) Create(ctx *gin.Context) {
	utils.Error(ctx, http.StatusNotFound, 40400, "comments are created from the post page")
}

func (commentResource) Store(ctx *gin.Context) {
	utils.Error(ctx, http.StatusMethodNotAllowed, 40500, "comments are created from the post page")
}
