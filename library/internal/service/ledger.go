package service

import (
	"context"
	"time"

	"github.com/Astemirdum/perpustakaan/library/internal/errs"
	"github.com/Astemirdum/perpustakaan/library/internal/events"
	"github.com/Astemirdum/perpustakaan/library/internal/metrics"
	"github.com/Astemirdum/perpustakaan/library/internal/model"
	"github.com/Astemirdum/perpustakaan/library/internal/repository"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

type Ledger struct {
	log       *zap.Logger
	repo      repository.LedgerRepository
	now       func() time.Time
	publisher events.Publisher
	metrics   *metrics.Ledger
	restore   bool
}

type LedgerOption func(*Ledger)

func WithClock(now func() time.Time) LedgerOption {
	return func(l *Ledger) { l.now = now }
}

func WithPublisher(p events.Publisher) LedgerOption {
	return func(l *Ledger) { l.publisher = p }
}

func WithMetrics(m *metrics.Ledger) LedgerOption {
	return func(l *Ledger) { l.metrics = m }
}

// WithRestoreOnReturn makes Return flip the book back to available.
func WithRestoreOnReturn(restore bool) LedgerOption {
	return func(l *Ledger) { l.restore = restore }
}

func NewLedger(repo repository.LedgerRepository, log *zap.Logger, opts ...LedgerOption) *Ledger {
	l := &Ledger{
		log:       log.Named("ledger"),
		repo:      repo,
		now:       time.Now,
		publisher: events.Nop{},
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

func (s *Ledger) Borrow(ctx context.Context, userID, bookID string) (model.BorrowRecord, error) {
	now := s.now().UTC()
	rec, err := s.repo.CreateBorrow(ctx, model.BorrowRecord{
		ID:         uuid.NewString(),
		UserID:     userID,
		BookID:     bookID,
		BorrowedAt: now,
		DueAt:      now.Add(LoanPeriod),
		Status:     model.StatusActive,
	})
	if err != nil {
		s.metrics.Rejected(rejectReason(err))
		return model.BorrowRecord{}, err
	}
	s.metrics.Borrowed()
	s.publish(ctx, events.Borrowed, rec, now)
	s.log.Info("book borrowed",
		zap.String("borrowId", rec.ID),
		zap.String("userId", userID),
		zap.String("bookId", bookID),
		zap.Time("due", rec.DueAt))
	return rec, nil
}

// Return closes the record and fixes its fine. A returned record is never
// touched again.
func (s *Ledger) Return(ctx context.Context, borrowID string) (model.BorrowRecord, error) {
	rec, err := s.repo.GetBorrow(ctx, borrowID)
	if err != nil {
		return model.BorrowRecord{}, err
	}
	if !rec.Status.Open() {
		return model.BorrowRecord{}, errs.ErrAlreadyReturned
	}
	now := s.now().UTC()
	fine := Fine(rec.DueAt, now)
	rec, err = s.repo.ReturnBorrow(ctx, borrowID, now, fine, s.restore)
	if err != nil {
		return model.BorrowRecord{}, err
	}
	s.metrics.Returned(fine)
	s.publish(ctx, events.Returned, rec, now)
	s.log.Info("book returned",
		zap.String("borrowId", rec.ID),
		zap.String("bookId", rec.BookID),
		zap.Int64("fine", fine))
	return rec, nil
}

func (s *Ledger) Get(ctx context.Context, borrowID string) (model.BorrowRecord, error) {
	return s.repo.GetBorrow(ctx, borrowID)
}

func (s *Ledger) ListByUser(ctx context.Context, userID string) ([]model.BorrowRecord, error) {
	return s.repo.ListBorrowsByUser(ctx, userID)
}

// ListActiveByUser returns the records the user still holds, overdue ones included.
func (s *Ledger) ListActiveByUser(ctx context.Context, userID string) ([]model.BorrowRecord, error) {
	return s.repo.ListBorrowsByUser(ctx, userID, model.StatusActive, model.StatusOverdue)
}

// SweepOverdue marks every open record past its due date as overdue and
// recomputes its fine against the current time. It returns how many records
// were updated.
func (s *Ledger) SweepOverdue(ctx context.Context) (int, error) {
	now := s.now().UTC()
	open, err := s.repo.ListBorrowsByStatus(ctx, model.StatusActive, model.StatusOverdue)
	if err != nil {
		return 0, err
	}
	updated := 0
	for _, rec := range open {
		if !now.After(rec.DueAt) {
			continue
		}
		fine := Fine(rec.DueAt, now)
		if err := s.repo.MarkOverdue(ctx, rec.ID, fine); err != nil {
			if errors.Is(err, errs.ErrAlreadyReturned) || errors.Is(err, errs.ErrNotFound) {
				continue
			}
			return updated, err
		}
		updated++
		if rec.Status == model.StatusActive {
			rec.Status, rec.Fine = model.StatusOverdue, fine
			s.publish(ctx, events.Overdue, rec, now)
		}
	}
	s.metrics.MarkedOverdue(updated)
	if updated > 0 {
		s.log.Info("overdue sweep", zap.Int("updated", updated))
	}
	return updated, nil
}

// RunSweeper sweeps on every tick until ctx is done.
func (s *Ledger) RunSweeper(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if _, err := s.SweepOverdue(ctx); err != nil && ctx.Err() == nil {
				s.log.Error("overdue sweep", zap.Error(err))
			}
		}
	}
}

func (s *Ledger) publish(ctx context.Context, t events.Type, rec model.BorrowRecord, at time.Time) {
	if err := s.publisher.Publish(ctx, events.FromRecord(t, rec, at)); err != nil {
		s.log.Warn("publish ledger event", zap.String("type", string(t)), zap.Error(err))
	}
}

func rejectReason(err error) string {
	switch {
	case errors.Is(err, errs.ErrNotFound):
		return "not_found"
	case errors.Is(err, errs.ErrConflict):
		return "already_borrowed"
	case errors.Is(err, errs.ErrInvalidState):
		return "unavailable"
	default:
		return "error"
	}
}
