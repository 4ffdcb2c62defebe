package config

import (
	"errors"
	"io/fs"
	"log"
	"path/filepath"
	"strings"
	"sync"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// AppConfig holds environment driven configuration values.
// Sensitive data should never have defaults inside code and must be provided via env files or the environment.
type AppConfig struct {
	AppName   string
	AppURL    string
	AppPort   string
	JWTSecret string
	// TokenTTLHours controls how long an admin session token stays valid.
	TokenTTLHours       int
	RateLimitPerMinute  int
	AllowedOrigins      []string
	RegistrationEnabled bool
	// MaxBodyMB caps request bodies, uploads included.
	MaxBodyMB int
	// PublicDir is the filesystem root served under /storage.
	PublicDir             string
	CommentCaptchaEnabled bool
	// Bootstrap admin, only used when the users table is empty
	AdminName     string
	AdminEmail    string
	AdminPassword string
	// Gin framework configuration
	GinMode string
	GinPath string
	// Database
	DatabaseURI string
	DBHost      string
	DBPort      string
	DBUser      string
	DBPassword  string
	DBName      string
	// Redis for caching, token revocation and captcha
	RedisHost       string
	RedisPort       int
	RedisDB         int
	RedisPassword   string
	CacheTTLSeconds int
	// Logging configuration
	LogLevel      string
	LogPath       string
	LogMaxSizeMB  int
	LogMaxBackups int
	LogMaxAgeDays int
	LogCompress   bool
	// SMTP for comment notifications
	SMTPHost     string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string
	SMTPFrom     string
	SMTPFromName string
	SMTPTLS      bool
	NotifyEmail  string
	// Footer configuration
	FooterAbout    string
	FooterAddress  string
	FooterPhone    string
	FooterEmail    string
	FooterFacebook string
	FooterYoutube  string
	// Notice bar configuration
	NoticeTitle string
	NoticeHTML  string
	// Minutes between sweeps of released upload files
	FileCleanupMinutes int
	// HTTP server timeouts, in seconds
	ReadTimeoutSeconds     int
	WriteTimeoutSeconds    int
	ShutdownTimeoutSeconds int
}

var (
	cfg    AppConfig
	loaded bool
	mu     sync.RWMutex
)

// Load loads the application configuration. It should be called once during boot.
// Precedence: defaults -> config/config.json -> .env -> environment variables.
func Load() AppConfig {
	mu.Lock()
	defer mu.Unlock()
	if loaded {
		return cfg
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Fatalf("config.godotenv: %v", err)
	}

	v := newViper()
	v.SetConfigFile(filepath.Join("config", "config.json"))
	if err := v.ReadInConfig(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Fatalf("config: invalid config/config.json: %v", err)
	}

	cfg = fromViper(v)
	if cfg.JWTSecret == "" {
		log.Fatal("JWT_SECRET must be set in environment variables")
	}

	loaded = true
	return cfg
}

// Get returns the cached configuration, loading it if necessary.
func Get() AppConfig {
	mu.RLock()
	if loaded {
		defer mu.RUnlock()
		return cfg
	}
	mu.RUnlock()
	return Load()
}

// Set replaces the active configuration. Used by tests and tooling.
func Set(c AppConfig) {
	mu.Lock()
	cfg = c
	loaded = true
	mu.Unlock()
}

// Defaults returns a configuration populated only with built-in defaults.
func Defaults() AppConfig {
	return fromViper(newViper())
}

// newViper maps nested keys onto env names, e.g. db.host -> DB_HOST.
func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("json")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("app.name", "Greenfield School")
	v.SetDefault("app.url", "http://localhost:8080")
	v.SetDefault("app.port", "8080")
	v.SetDefault("app.public_dir", "public")
	v.SetDefault("app.max_body_mb", 16)
	v.SetDefault("app.registration_enabled", false)
	v.SetDefault("app.comment_captcha", false)
	v.SetDefault("app.allowed_origins", []string{"*"})
	v.SetDefault("jwt.secret", "")
	v.SetDefault("jwt.ttl_hours", 72)
	v.SetDefault("rate.limit_per_minute", 60)
	v.SetDefault("admin.name", "Administrator")
	v.SetDefault("gin.mode", "release")
	v.SetDefault("gin.path", "logs/go_gin.log")
	v.SetDefault("db.host", "127.0.0.1")
	v.SetDefault("db.port", "3306")
	v.SetDefault("db.user", "root")
	v.SetDefault("db.name", "school")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("cache.ttl_seconds", 3600)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.max_size_mb", 100)
	v.SetDefault("log.max_backups", 3)
	v.SetDefault("log.max_age_days", 7)
	v.SetDefault("smtp.port", 587)
	v.SetDefault("notice.title", "Notice")
	v.SetDefault("notice.html", "Admissions for the new academic year are open.")
	v.SetDefault("files.cleanup_minutes", 5)
	v.SetDefault("server.read_timeout", 60)
	v.SetDefault("server.write_timeout", 120)
	v.SetDefault("server.shutdown_timeout", 30)
	// Keys without a default must still be registered for AutomaticEnv lookups.
	for _, key := range []string{
		"admin.email", "admin.password",
		"db.uri", "db.password",
		"redis.host", "redis.db", "redis.password",
		"log.path", "log.compress",
		"smtp.host", "smtp.username", "smtp.password", "smtp.from", "smtp.from_name", "smtp.tls", "smtp.notify",
		"footer.about", "footer.address", "footer.phone", "footer.email", "footer.facebook", "footer.youtube",
	} {
		_ = v.BindEnv(key)
	}
	return v
}

func fromViper(v *viper.Viper) AppConfig {
	return AppConfig{
		AppName:                v.GetString("app.name"),
		AppURL:                 strings.TrimRight(v.GetString("app.url"), "/"),
		AppPort:                v.GetString("app.port"),
		JWTSecret:              v.GetString("jwt.secret"),
		TokenTTLHours:          v.GetInt("jwt.ttl_hours"),
		RateLimitPerMinute:     v.GetInt("rate.limit_per_minute"),
		AllowedOrigins:         readList(v, "app.allowed_origins"),
		RegistrationEnabled:    v.GetBool("app.registration_enabled"),
		PublicDir:              v.GetString("app.public_dir"),
		MaxBodyMB:              v.GetInt("app.max_body_mb"),
		CommentCaptchaEnabled:  v.GetBool("app.comment_captcha"),
		AdminName:              v.GetString("admin.name"),
		AdminEmail:             v.GetString("admin.email"),
		AdminPassword:          v.GetString("admin.password"),
		GinMode:                v.GetString("gin.mode"),
		GinPath:                v.GetString("gin.path"),
		DatabaseURI:            v.GetString("db.uri"),
		DBHost:                 v.GetString("db.host"),
		DBPort:                 v.GetString("db.port"),
		DBUser:                 v.GetString("db.user"),
		DBPassword:             v.GetString("db.password"),
		DBName:                 v.GetString("db.name"),
		RedisHost:              v.GetString("redis.host"),
		RedisPort:              v.GetInt("redis.port"),
		RedisDB:                v.GetInt("redis.db"),
		RedisPassword:          v.GetString("redis.password"),
		CacheTTLSeconds:        v.GetInt("cache.ttl_seconds"),
		LogLevel:               v.GetString("log.level"),
		LogPath:                v.GetString("log.path"),
		LogMaxSizeMB:           v.GetInt("log.max_size_mb"),
		LogMaxBackups:          v.GetInt("log.max_backups"),
		LogMaxAgeDays:          v.GetInt("log.max_age_days"),
		LogCompress:            v.GetBool("log.compress"),
		SMTPHost:               v.GetString("smtp.host"),
		SMTPPort:               v.GetInt("smtp.port"),
		SMTPUsername:           v.GetString("smtp.username"),
		SMTPPassword:           v.GetString("smtp.password"),
		SMTPFrom:               v.GetString("smtp.from"),
		SMTPFromName:           v.GetString("smtp.from_name"),
		SMTPTLS:                v.GetBool("smtp.tls"),
		NotifyEmail:            v.GetString("smtp.notify"),
		FooterAbout:            v.GetString("footer.about"),
		FooterAddress:          v.GetString("footer.address"),
		FooterPhone:            v.GetString("footer.phone"),
		FooterEmail:            v.GetString("footer.email"),
		FooterFacebook:         v.GetString("footer.facebook"),
		FooterYoutube:          v.GetString("footer.youtube"),
		NoticeTitle:            v.GetString("notice.title"),
		NoticeHTML:             v.GetString("notice.html"),
		FileCleanupMinutes:     v.GetInt("files.cleanup_minutes"),
		ReadTimeoutSeconds:     v.GetInt("server.read_timeout"),
		WriteTimeoutSeconds:    v.GetInt("server.write_timeout"),
		ShutdownTimeoutSeconds: v.GetInt("server.shutdown_timeout"),
	}
}

// readList accepts either a JSON array or a comma separated env value.
func readList(v *viper.Viper, key string) []string {
	raw := v.GetStringSlice(key)
	items := []string{}
	for _, entry := range raw {
		for _, item := range strings.Split(entry, ",") {
			if trimmed := strings.TrimSpace(item); trimmed != "" {
				items = append(items, trimmed)
			}
		}
	}
	return items
}
