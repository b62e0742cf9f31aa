package audit

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mrlokans/librarian/internal/catalog"
	"github.com/mrlokans/librarian/internal/database/audit"
	"github.com/mrlokans/librarian/internal/entities"
)

var _ catalog.Auditor = (*Service)(nil)

// Service provides high-level audit logging functionality.
type Service struct {
	repo   *audit.Repository
	logger *zap.Logger
	wg     sync.WaitGroup
}

// NewService creates a new audit service.
func NewService(repo *audit.Repository, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{repo: repo, logger: logger}
}

// Log records a generic audit event.
func (s *Service) Log(event *entities.AuditEvent) error {
	return s.repo.LogEvent(event)
}

// LogAsync records a batch of audit events in the background (non-blocking).
// Wait blocks until every pending batch is written.
func (s *Service) LogAsync(events []*entities.AuditEvent) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		if err := s.repo.LogEvents(events); err != nil {
			s.logger.Error("failed to log audit events", zap.Int("count", len(events)), zap.Error(err))
		}
	}()
}

// Wait blocks until background writes have finished.
func (s *Service) Wait() {
	s.wg.Wait()
}

// LogAdd records the books added by one Add call.
func (s *Service) LogAdd(added []catalog.Book, skipped int, err error) {
	batch := uuid.NewString()
	metadata := marshalMetadata(map[string]any{
		"added_count":   len(added),
		"skipped_count": skipped,
	})

	if err != nil {
		s.LogAsync([]*entities.AuditEvent{
			failed(batch, entities.AuditEventAdd, "book_add", fmt.Sprintf("Adding %d books failed", skipped), metadata, err),
		})
		return
	}

	events := make([]*entities.AuditEvent, 0, len(added))
	for _, book := range added {
		events = append(events, &entities.AuditEvent{
			BatchID:     batch,
			EventType:   entities.AuditEventAdd,
			Action:      "book_add",
			Description: fmt.Sprintf("Added %s (%s)", book.Title, book.Category),
			Title:       book.Title,
			Metadata:    metadata,
			Status:      entities.AuditStatusSuccess,
		})
	}
	if len(events) > 0 {
		s.LogAsync(events)
	}
}

// LogLoan records the books loaned by one Loan call.
func (s *Service) LogLoan(loans []catalog.Loan, err error) {
	batch := uuid.NewString()
	if err != nil {
		s.LogAsync([]*entities.AuditEvent{
			failed(batch, entities.AuditEventLoan, "book_loan", "Loaning books failed", "", err),
		})
		return
	}

	events := make([]*entities.AuditEvent, 0, len(loans))
	for _, loan := range loans {
		due := loan.DueAt
		events = append(events, &entities.AuditEvent{
			BatchID:     batch,
			EventType:   entities.AuditEventLoan,
			Action:      "book_loan",
			Description: fmt.Sprintf("Loaned %s to %s", loan.Title, loan.Borrower),
			Title:       loan.Title,
			Borrower:    loan.Borrower,
			DueAt:       &due,
			Status:      entities.AuditStatusSuccess,
		})
	}
	if len(events) > 0 {
		s.LogAsync(events)
	}
}

// LogReturn records the books returned by one Return call.
func (s *Service) LogReturn(returned []catalog.Book, err error) {
	batch := uuid.NewString()
	if err != nil {
		s.LogAsync([]*entities.AuditEvent{
			failed(batch, entities.AuditEventReturn, "book_return", "Returning books failed", "", err),
		})
		return
	}

	events := make([]*entities.AuditEvent, 0, len(returned))
	for _, book := range returned {
		events = append(events, &entities.AuditEvent{
			BatchID:     batch,
			EventType:   entities.AuditEventReturn,
			Action:      "book_return",
			Description: "Returned " + book.Title,
			Title:       book.Title,
			Status:      entities.AuditStatusSuccess,
		})
	}
	if len(events) > 0 {
		s.LogAsync(events)
	}
}

// LogReminder records one run of the due-reminder check.
func (s *Service) LogReminder(due []catalog.DueLoan, err error) {
	batch := uuid.NewString()
	if err != nil {
		s.LogAsync([]*entities.AuditEvent{
			failed(batch, entities.AuditEventReminder, "due_check", "Due check failed", "", err),
		})
		return
	}

	events := []*entities.AuditEvent{{
		BatchID:     batch,
		EventType:   entities.AuditEventReminder,
		Action:      "due_check",
		Description: fmt.Sprintf("%d books due soon", len(due)),
		Metadata:    marshalMetadata(map[string]any{"due_count": len(due)}),
		Status:      entities.AuditStatusSuccess,
	}}
	for _, d := range due {
		dueAt := d.DueAt
		events = append(events, &entities.AuditEvent{
			BatchID:     batch,
			EventType:   entities.AuditEventReminder,
			Action:      "book_due",
			Description: fmt.Sprintf("%s due in %.1f days", d.Title, d.DaysLeft),
			Title:       d.Title,
			Borrower:    d.Borrower,
			DueAt:       &dueAt,
			Status:      entities.AuditStatusSuccess,
		})
	}
	s.LogAsync(events)
}

// LogExport records a catalog snapshot written to disk.
func (s *Service) LogExport(filename string, err error) {
	event := &entities.AuditEvent{
		BatchID:     uuid.NewString(),
		EventType:   entities.AuditEventExport,
		Action:      "catalog_export",
		Description: "Exported catalog to " + filename,
		Status:      entities.AuditStatusSuccess,
	}
	if err != nil {
		event.Status = entities.AuditStatusFailed
		event.ErrorMsg = truncate(err.Error(), 500)
	}
	s.LogAsync([]*entities.AuditEvent{event})
}

// GetEvents retrieves paginated audit events.
func (s *Service) GetEvents(limit, offset int) ([]entities.AuditEvent, int64, error) {
	return s.repo.GetEvents(limit, offset)
}

// GetEventsByType retrieves audit events filtered by type.
func (s *Service) GetEventsByType(eventType entities.AuditEventType, limit, offset int) ([]entities.AuditEvent, int64, error) {
	return s.repo.GetEventsByType(eventType, limit, offset)
}

// GetEventsForTitle retrieves the history of one book.
func (s *Service) GetEventsForTitle(title string, limit, offset int) ([]entities.AuditEvent, int64, error) {
	return s.repo.GetEventsForTitle(catalog.NormalizeTitle(title), limit, offset)
}

// DeleteOldEvents removes events older than the specified duration.
func (s *Service) DeleteOldEvents(retention time.Duration) (int64, error) {
	cutoff := time.Now().Add(-retention)
	return s.repo.DeleteOldEvents(cutoff)
}

func failed(batch string, eventType entities.AuditEventType, action, description, metadata string, err error) *entities.AuditEvent {
	return &entities.AuditEvent{
		BatchID:     batch,
		EventType:   eventType,
		Action:      action,
		Description: description,
		Metadata:    metadata,
		Status:      entities.AuditStatusFailed,
		ErrorMsg:    truncate(err.Error(), 500),
	}
}

func marshalMetadata(metadata map[string]any) string {
	mdBytes, err := json.Marshal(metadata)
	if err != nil {
		return ""
	}
	return string(mdBytes)
}

// truncate shortens a string to max length.
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}
