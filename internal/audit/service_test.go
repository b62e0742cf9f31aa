package audit

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/mrlokans/librarian/internal/catalog"
	auditRepo "github.com/mrlokans/librarian/internal/database/audit"
	"github.com/mrlokans/librarian/internal/entities"
	"github.com/mrlokans/librarian/internal/sheet"
)

func setupTestService(t *testing.T) (*Service, *gorm.DB) {
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "audit.db")), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	err = db.AutoMigrate(&entities.AuditEvent{})
	require.NoError(t, err)

	repo := auditRepo.NewRepository(db)
	svc := NewService(repo, nil)

	return svc, db
}

func TestService_Log(t *testing.T) {
	svc, db := setupTestService(t)

	event := &entities.AuditEvent{
		EventType:   entities.AuditEventAdd,
		Action:      "book_add",
		Description: "Test add event",
		Status:      entities.AuditStatusSuccess,
	}

	err := svc.Log(event)
	require.NoError(t, err)

	var saved entities.AuditEvent
	err = db.First(&saved, event.ID).Error
	require.NoError(t, err)
	assert.Equal(t, "book_add", saved.Action)
}

func TestService_LogAdd(t *testing.T) {
	svc, db := setupTestService(t)

	t.Run("successful add", func(t *testing.T) {
		svc.LogAdd([]catalog.Book{
			{Title: "dune", Category: catalog.Fiction},
			{Title: "cosmos", Category: catalog.NonFiction},
		}, 1, nil)
		svc.Wait()

		var events []entities.AuditEvent
		require.NoError(t, db.Where("action = ?", "book_add").Order("id").Find(&events).Error)
		require.Len(t, events, 2)
		assert.Equal(t, "dune", events[0].Title)
		assert.Equal(t, events[0].BatchID, events[1].BatchID)
		assert.NotEmpty(t, events[0].BatchID)
		assert.Contains(t, events[0].Metadata, `"skipped_count":1`)
		assert.Equal(t, entities.AuditStatusSuccess, events[1].Status)
	})

	t.Run("failed add", func(t *testing.T) {
		svc.LogAdd(nil, 5, catalog.ErrCapacityExceeded)
		svc.Wait()

		var event entities.AuditEvent
		require.NoError(t, db.Where("status = ?", entities.AuditStatusFailed).First(&event).Error)
		assert.Equal(t, entities.AuditEventAdd, event.EventType)
		assert.Contains(t, event.ErrorMsg, catalog.ErrCapacityExceeded.Error())
	})

	t.Run("nothing added writes nothing", func(t *testing.T) {
		var before int64
		db.Model(&entities.AuditEvent{}).Count(&before)

		svc.LogAdd(nil, 2, nil)
		svc.Wait()

		var after int64
		db.Model(&entities.AuditEvent{}).Count(&after)
		assert.Equal(t, before, after)
	})
}

func TestService_LogLoanAndReturn(t *testing.T) {
	svc, db := setupTestService(t)
	due := time.Unix(1_700_000_000, 0)

	svc.LogLoan([]catalog.Loan{{
		Book:     catalog.Book{Title: "dune", Category: catalog.Fiction},
		Borrower: "alex",
		DueAt:    due,
	}}, nil)
	svc.LogReturn([]catalog.Book{{Title: "dune", Category: catalog.Fiction}}, nil)
	svc.LogReturn(nil, errors.New("sheet offline"))
	svc.Wait()

	var loan entities.AuditEvent
	require.NoError(t, db.Where("event_type = ?", entities.AuditEventLoan).First(&loan).Error)
	assert.Equal(t, "alex", loan.Borrower)
	require.NotNil(t, loan.DueAt)
	assert.Equal(t, due.Unix(), loan.DueAt.Unix())

	events, total, err := svc.GetEventsByType(entities.AuditEventReturn, 10, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Len(t, events, 2)

	history, total, err := svc.GetEventsForTitle("  DUNE ", 10, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Len(t, history, 2)
}

func TestService_LogReminder(t *testing.T) {
	svc, db := setupTestService(t)

	svc.LogReminder([]catalog.DueLoan{{
		Loan:     catalog.Loan{Book: catalog.Book{Title: "dune"}, Borrower: "alex", DueAt: time.Now()},
		DaysLeft: 0.5,
	}}, nil)
	svc.LogReminder(nil, nil)
	svc.Wait()

	var summaries []entities.AuditEvent
	require.NoError(t, db.Where("action = ?", "due_check").Find(&summaries).Error)
	assert.Len(t, summaries, 2)

	var due entities.AuditEvent
	require.NoError(t, db.Where("action = ?", "book_due").First(&due).Error)
	assert.Equal(t, "dune", due.Title)
	assert.Contains(t, due.Description, "0.5")
}

func TestService_LogExport(t *testing.T) {
	svc, db := setupTestService(t)

	svc.LogExport("abc.json", nil)
	svc.Wait()

	var event entities.AuditEvent
	require.NoError(t, db.Where("event_type = ?", entities.AuditEventExport).First(&event).Error)
	assert.Contains(t, event.Description, "abc.json")
}

func TestService_AsCatalogAuditor(t *testing.T) {
	svc, _ := setupTestService(t)
	store := sheet.NewMemoryStore(catalog.DefaultAvailableTable, catalog.DefaultLoanedTable)
	m := catalog.New(store, catalog.WithAuditor(svc))
	ctx := context.Background()

	_, err := m.Add(ctx, []catalog.Book{{Title: "dune", Category: catalog.Fiction}})
	require.NoError(t, err)
	_, err = m.Loan(ctx, []catalog.LoanRequest{{Title: "dune", Borrower: "alex"}})
	require.NoError(t, err)
	_, err = m.Return(ctx, []string{"dune"})
	require.NoError(t, err)
	svc.Wait()

	events, total, err := svc.GetEvents(10, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	types := map[entities.AuditEventType]bool{}
	for _, e := range events {
		types[e.EventType] = true
	}
	assert.True(t, types[entities.AuditEventAdd])
	assert.True(t, types[entities.AuditEventLoan])
	assert.True(t, types[entities.AuditEventReturn])
}

func TestService_DeleteOldEvents(t *testing.T) {
	svc, db := setupTestService(t)

	oldEvent := &entities.AuditEvent{
		EventType: entities.AuditEventAdd,
		Action:    "old",
		Status:    entities.AuditStatusSuccess,
		CreatedAt: time.Now().Add(-48 * time.Hour),
	}
	require.NoError(t, db.Create(oldEvent).Error)

	newEvent := &entities.AuditEvent{
		EventType: entities.AuditEventReturn,
		Action:    "new",
		Status:    entities.AuditStatusSuccess,
		CreatedAt: time.Now(),
	}
	require.NoError(t, db.Create(newEvent).Error)

	// Delete events older than 24 hours
	deleted, err := svc.DeleteOldEvents(24 * time.Hour)
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)

	var remaining []entities.AuditEvent
	db.Find(&remaining)
	assert.Len(t, remaining, 1)
	assert.Equal(t, "new", remaining[0].Action)
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		input    string
		maxLen   int
		expected string
	}{
		{"short", 10, "short"},
		{"exactly10c", 10, "exactly10c"},
		{"this is a very long string", 10, "this is..."},
		{"", 5, ""},
	}

	for _, tc := range tests {
		result := truncate(tc.input, tc.maxLen)
		assert.Equal(t, tc.expected, result)
	}
}
