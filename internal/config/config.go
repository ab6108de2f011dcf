package config

import (
	"time"

	"github.com/spf13/viper"
)

type PasswordScheme string

const (
	PasswordSchemeSHA256 PasswordScheme = "sha256" // Fixed-salt digest (default)
	PasswordSchemeBcrypt PasswordScheme = "bcrypt" // Per-user salt, slow hash
)

type (
	Config struct {
		HTTP
		Database
		Auth
		RememberMe
		Subscription
		Tasks
		Sessions
		Audit
		Global
	}

	HTTP struct {
		Port int32
		Host string
	}
	Database struct {
		Path        string
		BusyTimeout time.Duration
	}
	Auth struct {
		PasswordScheme PasswordScheme
		PasswordSalt   string
		BcryptCost     int
		CSRFSecret     string // Auto-generated if empty
		SecureCookies  bool   // Set to false for local dev without HTTPS

		// Rate limiting configuration
		MaxLoginAttempts int           // Max failed attempts before lockout (default: 5)
		RateLimitWindow  time.Duration // Time window for counting attempts (default: 15m)
		LockoutDuration  time.Duration // How long to lock out (default: 30m)
	}
	RememberMe struct {
		Path string
	}
	Subscription struct {
		APIURL        string // Empty disables the remote check; every user is on the free tier
		FreeBookLimit int
		Timeout       time.Duration
	}
	Tasks struct {
		Enabled         bool
		Workers         int
		ReleaseAfter    time.Duration
		CleanupInterval time.Duration
	}
	Sessions struct {
		PurgeEnabled  bool
		PurgeSchedule string // Cron format: "0 3 * * *" = daily at 03:00
	}
	Audit struct {
		Dir             string
		RetentionDays   int    // Days to keep saved import payloads (default: 30)
		CleanupSchedule string // Cron format, empty disables cleanup
	}
	Global struct {
		ShutdownTimeoutInSeconds int
	}
)

func NewConfig() *Config {
	v := viper.New()
	v.AutomaticEnv()
	v.SetDefault("port", 8188)
	v.SetDefault("host", "127.0.0.1")
	v.SetDefault("shutdown_timeout_in_seconds", 2)
	v.SetDefault("database_path", DefaultDatabasePath)
	v.SetDefault("database_busy_timeout", "5s")
	v.SetDefault("remember_me_path", DefaultRememberMePath)
	v.SetDefault("audit_dir", "")
	v.SetDefault("audit_retention_days", 30)
	v.SetDefault("audit_cleanup_schedule", "30 3 * * *")

	// Auth defaults
	v.SetDefault("auth_password_scheme", string(PasswordSchemeSHA256))
	v.SetDefault("auth_password_salt", DefaultPasswordSalt)
	v.SetDefault("auth_bcrypt_cost", 12)
	v.SetDefault("auth_csrf_secret", "")
	v.SetDefault("auth_secure_cookies", false) // Local API, plain HTTP
	v.SetDefault("auth_max_login_attempts", 5)
	v.SetDefault("auth_rate_limit_window", "15m")
	v.SetDefault("auth_lockout_duration", "30m")

	// Subscription defaults
	v.SetDefault("subscription_api_url", "")
	v.SetDefault("subscription_free_book_limit", 5)
	v.SetDefault("subscription_timeout", "10s")

	// Session purge defaults
	v.SetDefault("session_purge_enabled", true)
	v.SetDefault("session_purge_schedule", "0 3 * * *")

	// Task queue defaults
	v.SetDefault("tasks_enabled", true)
	v.SetDefault("task_workers", 1)
	v.SetDefault("task_release_after", "15m")
	v.SetDefault("task_cleanup_interval", "1h")

	return &Config{
		HTTP: HTTP{
			Port: v.GetInt32("PORT"),
			Host: v.GetString("HOST"),
		},
		Database: Database{
			Path:        v.GetString("DATABASE_PATH"),
			BusyTimeout: v.GetDuration("DATABASE_BUSY_TIMEOUT"),
		},
		Auth: Auth{
			PasswordScheme:   PasswordScheme(v.GetString("AUTH_PASSWORD_SCHEME")),
			PasswordSalt:     v.GetString("AUTH_PASSWORD_SALT"),
			BcryptCost:       v.GetInt("AUTH_BCRYPT_COST"),
			CSRFSecret:       v.GetString("AUTH_CSRF_SECRET"),
			SecureCookies:    v.GetBool("AUTH_SECURE_COOKIES"),
			MaxLoginAttempts: v.GetInt("AUTH_MAX_LOGIN_ATTEMPTS"),
			RateLimitWindow:  v.GetDuration("AUTH_RATE_LIMIT_WINDOW"),
			LockoutDuration:  v.GetDuration("AUTH_LOCKOUT_DURATION"),
		},
		RememberMe: RememberMe{
			Path: v.GetString("REMEMBER_ME_PATH"),
		},
		Subscription: Subscription{
			APIURL:        v.GetString("SUBSCRIPTION_API_URL"),
			FreeBookLimit: v.GetInt("SUBSCRIPTION_FREE_BOOK_LIMIT"),
			Timeout:       v.GetDuration("SUBSCRIPTION_TIMEOUT"),
		},
		Tasks: Tasks{
			Enabled:         v.GetBool("TASKS_ENABLED"),
			Workers:         v.GetInt("TASK_WORKERS"),
			ReleaseAfter:    v.GetDuration("TASK_RELEASE_AFTER"),
			CleanupInterval: v.GetDuration("TASK_CLEANUP_INTERVAL"),
		},
		Sessions: Sessions{
			PurgeEnabled:  v.GetBool("SESSION_PURGE_ENABLED"),
			PurgeSchedule: v.GetString("SESSION_PURGE_SCHEDULE"),
		},
		Audit: Audit{
			Dir:             v.GetString("AUDIT_DIR"),
			RetentionDays:   v.GetInt("AUDIT_RETENTION_DAYS"),
			CleanupSchedule: v.GetString("AUDIT_CLEANUP_SCHEDULE"),
		},
		Global: Global{
			ShutdownTimeoutInSeconds: v.GetInt("SHUTDOWN_TIMEOUT_IN_SECONDS"),
		},
	}
}
