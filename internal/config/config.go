package config

import (
	"time"

	"github.com/spf13/viper"
)

type (
	Config struct {
		HTTP
		Global
		Database
		IDGeneration
		Lending
		Audit
		OverdueReport
		Tasks
		Log
	}

	HTTP struct {
		Port int32
		Host string
	}
	Global struct {
		ShutdownTimeoutInSeconds int
	}
	Database struct {
		Path string
	}
	IDGeneration struct {
		Strategy string // DIGIT_SUFFIX_TIMESTAMP or TIMESTAMP_DIGIT_SUFFIX
	}
	Lending struct {
		DurationInDays         int
		FineValuePerDayInCents int
		MaxOutstanding         int
	}
	Audit struct {
		Dir             string // Archive of imported payloads
		RetentionDays   int    // Days to keep audit events (default: 30)
		CleanupSchedule string // Cron format, empty disables the cleanup
	}
	OverdueReport struct {
		Enabled  bool
		Schedule string // Cron format: "0 6 * * *" = daily at 06:00
	}
	Tasks struct {
		Enabled         bool
		Workers         int
		ReleaseAfter    time.Duration
		CleanupInterval time.Duration
	}
	Log struct {
		Level  string
		Format string // console or json
	}
)

func NewConfig() *Config {
	return load(viper.New())
}

func load(v *viper.Viper) *Config {
	v.AutomaticEnv()
	v.SetDefault("port", 8190)
	v.SetDefault("host", "0.0.0.0")
	v.SetDefault("shutdown_timeout_in_seconds", 2)
	v.SetDefault("database_path", DefaultDatabasePath)
	v.SetDefault("id_generation_strategy", DefaultIDGenerationStrategy)

	// Lending defaults
	v.SetDefault("lending_duration_in_days", 15)
	v.SetDefault("fine_value_per_day_in_cents", 50)
	v.SetDefault("lending_max_outstanding", 3)

	v.SetDefault("audit_dir", "./audit")
	v.SetDefault("audit_retention_days", 30)
	v.SetDefault("audit_cleanup_schedule", "30 3 * * *")
	v.SetDefault("overdue_report_enabled", true)
	v.SetDefault("overdue_report_schedule", "0 6 * * *")

	// Task queue defaults
	v.SetDefault("tasks_enabled", true)
	v.SetDefault("task_workers", 2)
	v.SetDefault("task_release_after", "15m")
	v.SetDefault("task_cleanup_interval", "1h")

	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "console")

	return &Config{
		HTTP: HTTP{
			Port: v.GetInt32("PORT"),
			Host: v.GetString("HOST"),
		},
		Global: Global{
			ShutdownTimeoutInSeconds: v.GetInt("SHUTDOWN_TIMEOUT_IN_SECONDS"),
		},
		Database: Database{
			Path: v.GetString("DATABASE_PATH"),
		},
		IDGeneration: IDGeneration{
			Strategy: v.GetString("ID_GENERATION_STRATEGY"),
		},
		Lending: Lending{
			DurationInDays:         v.GetInt("LENDING_DURATION_IN_DAYS"),
			FineValuePerDayInCents: v.GetInt("FINE_VALUE_PER_DAY_IN_CENTS"),
			MaxOutstanding:         v.GetInt("LENDING_MAX_OUTSTANDING"),
		},
		Audit: Audit{
			Dir:             v.GetString("AUDIT_DIR"),
			RetentionDays:   v.GetInt("AUDIT_RETENTION_DAYS"),
			CleanupSchedule: v.GetString("AUDIT_CLEANUP_SCHEDULE"),
		},
		OverdueReport: OverdueReport{
			Enabled:  v.GetBool("OVERDUE_REPORT_ENABLED"),
			Schedule: v.GetString("OVERDUE_REPORT_SCHEDULE"),
		},
		Tasks: Tasks{
			Enabled:         v.GetBool("TASKS_ENABLED"),
			Workers:         v.GetInt("TASK_WORKERS"),
			ReleaseAfter:    v.GetDuration("TASK_RELEASE_AFTER"),
			CleanupInterval: v.GetDuration("TASK_CLEANUP_INTERVAL"),
		},
		Log: Log{
			Level:  v.GetString("LOG_LEVEL"),
			Format: v.GetString("LOG_FORMAT"),
		},
	}
}
