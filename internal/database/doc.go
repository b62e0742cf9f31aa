// Package database provides the local SQLite layer for the application.
//
// # Architecture
//
//	database/
//	├── database.go      # Connection setup and migrations
//	└── audit/           # Audit event persistence
//
// The sqlite store backend (internal/sheet/providers/sqlite) shares the same
// connection and keeps its cells in the sheet_cells table.
//
// # Using Sub-packages
//
//	// Initialize database connection
//	db, err := database.NewDatabase("./librarian.db", logger)
//
//	// Create domain-specific repositories
//	auditRepo := audit.NewRepository(db.DB)
//
//	// Use repositories
//	events, total, err := auditRepo.GetEvents(50, 0)
package database
