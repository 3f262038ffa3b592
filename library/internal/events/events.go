// Package events carries ledger activity to the outside world.
package events

import (
	"context"
	"time"

	"github.com/Astemirdum/perpustakaan/library/internal/model"
	"github.com/google/uuid"
)

type Type string

const (
	Borrowed Type = "borrowed"
	Returned Type = "returned"
	Overdue  Type = "overdue"
)

type Event struct {
	ID        string       `json:"id"`
	Type      Type         `json:"type"`
	BorrowID  string       `json:"borrowId"`
	UserID    string       `json:"userId"`
	BookID    string       `json:"bookId"`
	Fine      int64        `json:"fine"`
	Status    model.Status `json:"status"`
	Timestamp time.Time    `json:"timestamp"`
}

func FromRecord(t Type, rec model.BorrowRecord, at time.Time) Event {
	return Event{
		ID:        uuid.NewString(),
		Type:      t,
		BorrowID:  rec.ID,
		UserID:    rec.UserID,
		BookID:    rec.BookID,
		Fine:      rec.Fine,
		Status:    rec.Status,
		Timestamp: at.UTC(),
	}
}

type Publisher interface {
	Publish(ctx context.Context, e Event) error
}

// Nop drops every event.
type Nop struct{}

func (Nop) Publish(context.Context, Event) error { return nil }
