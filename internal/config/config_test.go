package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConfig_Defaults(t *testing.T) {
	cfg := NewConfig()

	assert.Equal(t, StoreBackendSheets, cfg.Store.Backend)
	assert.Equal(t, DefaultCredentialsFile, cfg.Sheets.CredentialsFile)
	assert.Equal(t, DefaultDatabasePath, cfg.Database.Path)
	assert.Equal(t, "available", cfg.Library.AvailableTable)
	assert.Equal(t, "loaned", cfg.Library.LoanedTable)
	assert.Equal(t, 21*24*time.Hour, cfg.Library.LoanPeriod)
	assert.Equal(t, 20*24*time.Hour, cfg.Library.DueWindow)
	assert.Equal(t, 1000, cfg.Library.Capacity)
	assert.Equal(t, 100, cfg.Console.MaxBatch)
	assert.Equal(t, 3*time.Second, cfg.Console.ExitDelay)
	assert.Equal(t, "warn", cfg.Logging.Level)
	assert.True(t, cfg.Audit.Enabled)
	assert.Equal(t, 90, cfg.Audit.RetentionDays)
	assert.Equal(t, "0 9 * * *", cfg.Reminders.Schedule)
	assert.Equal(t, 1, cfg.Tasks.Workers)
	assert.NoError(t, cfg.Validate())
}

func TestNewConfig_Environment(t *testing.T) {
	t.Setenv("STORE_BACKEND", "sqlite")
	t.Setenv("LOAN_PERIOD", "168h")
	t.Setenv("CAPACITY", "50")

	cfg := NewConfig()

	assert.Equal(t, StoreBackendSQLite, cfg.Store.Backend)
	assert.Equal(t, 7*24*time.Hour, cfg.Library.LoanPeriod)
	assert.Equal(t, 50, cfg.Library.Capacity)
}

func TestLoad_ConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "librarian.yaml")
	content := "store_backend: memory\nloaned_table: lent\nmax_batch: 10\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, StoreBackendMemory, cfg.Store.Backend)
	assert.Equal(t, "lent", cfg.Library.LoanedTable)
	assert.Equal(t, 10, cfg.Console.MaxBatch)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"unknown backend", func(c *Config) { c.Store.Backend = "excel" }},
		{"same tables", func(c *Config) { c.Library.LoanedTable = c.Library.AvailableTable }},
		{"empty table", func(c *Config) { c.Library.AvailableTable = "" }},
		{"zero loan period", func(c *Config) { c.Library.LoanPeriod = 0 }},
		{"zero capacity", func(c *Config) { c.Library.Capacity = 0 }},
		{"zero batch", func(c *Config) { c.Console.MaxBatch = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := NewConfig()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}
