package config

// Default paths
const (
	// DefaultDatabasePath is the default path for the SQLite database holding
	// the audit trail, the task queue and the sqlite store backend
	DefaultDatabasePath = "./librarian.db"

	// DefaultCredentialsFile is the default Google service-account key file
	DefaultCredentialsFile = "config.json"
)
