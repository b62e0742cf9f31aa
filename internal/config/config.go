package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

type StoreBackend string

const (
	StoreBackendSheets StoreBackend = "sheets" // Google Sheets spreadsheet (default)
	StoreBackendSQLite StoreBackend = "sqlite" // Local SQLite cell store
	StoreBackendMemory StoreBackend = "memory" // In-process, lost on exit
)

type (
	Config struct {
		Store
		Sheets
		Database
		Library
		Console
		Logging
		Audit
		Reminders
		Tasks
	}

	Store struct {
		Backend StoreBackend
	}
	Sheets struct {
		SpreadsheetID   string
		CredentialsFile string // Service-account JSON
	}
	Database struct {
		Path string
	}
	Library struct {
		AvailableTable string
		LoanedTable    string
		LoanPeriod     time.Duration
		DueWindow      time.Duration
		Capacity       int
	}
	Console struct {
		MaxBatch     int
		MenuDelay    time.Duration
		StartupDelay time.Duration
		ExitDelay    time.Duration // Pause before exiting when the store is unreachable
	}
	Logging struct {
		Level string
		File  string // Empty logs to stderr
	}
	Audit struct {
		Enabled       bool
		RetentionDays int // Days to keep audit events (default: 90)
	}
	Reminders struct {
		Schedule string // Cron format: "0 9 * * *" = daily at 09:00
	}
	Tasks struct {
		Workers           int
		MaxRetries        int
		RetryDelay        time.Duration
		TaskTimeout       time.Duration
		ReleaseAfter      time.Duration
		CleanupInterval   time.Duration
		RetentionDuration time.Duration
	}
)

func newViper() *viper.Viper {
	v := viper.New()
	v.AutomaticEnv()
	v.SetDefault("store_backend", string(StoreBackendSheets))
	v.SetDefault("spreadsheet_id", "")
	v.SetDefault("google_credentials_file", DefaultCredentialsFile)
	v.SetDefault("database_path", DefaultDatabasePath)

	// Library defaults
	v.SetDefault("available_table", "available")
	v.SetDefault("loaned_table", "loaned")
	v.SetDefault("loan_period", "504h") // 21 days
	v.SetDefault("due_window", "480h")  // 20 days
	v.SetDefault("capacity", 1000)

	// Console pacing
	v.SetDefault("max_batch", 100)
	v.SetDefault("menu_delay", "200ms")
	v.SetDefault("startup_delay", "1s")
	v.SetDefault("exit_delay", "3s")

	v.SetDefault("log_level", "warn")
	v.SetDefault("log_file", "")

	v.SetDefault("audit_enabled", true)
	v.SetDefault("audit_retention_days", 90)
	v.SetDefault("reminder_schedule", "0 9 * * *")

	// Task queue defaults
	v.SetDefault("task_workers", 1)
	v.SetDefault("task_max_retries", 3)
	v.SetDefault("task_retry_delay", "1m")
	v.SetDefault("task_timeout", "5m")
	v.SetDefault("task_release_after", "15m")
	v.SetDefault("task_cleanup_interval", "1h")
	v.SetDefault("task_retention_duration", "24h")
	return v
}

// NewConfig reads configuration from the environment.
func NewConfig() *Config {
	return fromViper(newViper())
}

// Load reads configuration from the environment and, when path is set, from
// a config file. Environment variables win over the file.
func Load(path string) (*Config, error) {
	v := newViper()
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
	}
	cfg := fromViper(v)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func fromViper(v *viper.Viper) *Config {
	return &Config{
		Store: Store{
			Backend: StoreBackend(v.GetString("STORE_BACKEND")),
		},
		Sheets: Sheets{
			SpreadsheetID:   v.GetString("SPREADSHEET_ID"),
			CredentialsFile: v.GetString("GOOGLE_CREDENTIALS_FILE"),
		},
		Database: Database{
			Path: v.GetString("DATABASE_PATH"),
		},
		Library: Library{
			AvailableTable: v.GetString("AVAILABLE_TABLE"),
			LoanedTable:    v.GetString("LOANED_TABLE"),
			LoanPeriod:     v.GetDuration("LOAN_PERIOD"),
			DueWindow:      v.GetDuration("DUE_WINDOW"),
			Capacity:       v.GetInt("CAPACITY"),
		},
		Console: Console{
			MaxBatch:     v.GetInt("MAX_BATCH"),
			MenuDelay:    v.GetDuration("MENU_DELAY"),
			StartupDelay: v.GetDuration("STARTUP_DELAY"),
			ExitDelay:    v.GetDuration("EXIT_DELAY"),
		},
		Logging: Logging{
			Level: v.GetString("LOG_LEVEL"),
			File:  v.GetString("LOG_FILE"),
		},
		Audit: Audit{
			Enabled:       v.GetBool("AUDIT_ENABLED"),
			RetentionDays: v.GetInt("AUDIT_RETENTION_DAYS"),
		},
		Reminders: Reminders{
			Schedule: v.GetString("REMINDER_SCHEDULE"),
		},
		Tasks: Tasks{
			Workers:           v.GetInt("TASK_WORKERS"),
			MaxRetries:        v.GetInt("TASK_MAX_RETRIES"),
			RetryDelay:        v.GetDuration("TASK_RETRY_DELAY"),
			TaskTimeout:       v.GetDuration("TASK_TIMEOUT"),
			ReleaseAfter:      v.GetDuration("TASK_RELEASE_AFTER"),
			CleanupInterval:   v.GetDuration("TASK_CLEANUP_INTERVAL"),
			RetentionDuration: v.GetDuration("TASK_RETENTION_DURATION"),
		},
	}
}

// Validate rejects settings the library cannot run with.
func (c *Config) Validate() error {
	switch c.Store.Backend {
	case StoreBackendSheets, StoreBackendSQLite, StoreBackendMemory:
	default:
		return fmt.Errorf("unknown store backend %q", c.Store.Backend)
	}
	if c.Library.AvailableTable == "" || c.Library.LoanedTable == "" {
		return fmt.Errorf("table names must not be empty")
	}
	if c.Library.AvailableTable == c.Library.LoanedTable {
		return fmt.Errorf("available and loaned tables must differ, both are %q", c.Library.AvailableTable)
	}
	if c.Library.LoanPeriod <= 0 {
		return fmt.Errorf("loan period must be positive, got %s", c.Library.LoanPeriod)
	}
	if c.Library.Capacity <= 0 {
		return fmt.Errorf("capacity must be positive, got %d", c.Library.Capacity)
	}
	if c.Console.MaxBatch <= 0 {
		return fmt.Errorf("max batch must be positive, got %d", c.Console.MaxBatch)
	}
	return nil
}
