package repository

import (
	"context"
	"time"

	"github.com/Astemirdum/perpustakaan/library/internal/model"
)

type CatalogRepository interface {
	ListBooks(ctx context.Context) ([]model.Book, error)
	GetBook(ctx context.Context, id string) (model.Book, error)
	CreateBook(ctx context.Context, book model.Book) (model.Book, error)
	UpdateBook(ctx context.Context, id string, req model.UpdateBookRequest) (model.Book, error)
	DeleteBook(ctx context.Context, id string) error
	SearchBooks(ctx context.Context, keyword string) ([]model.Book, error)
}

type AccountRepository interface {
	CreateUser(ctx context.Context, user model.User) (model.User, error)
	GetUser(ctx context.Context, id string) (model.User, error)
	GetUserByUsername(ctx context.Context, username string) (model.User, error)
	UpdateUser(ctx context.Context, id string, req model.ProfileUpdateRequest) (model.User, error)
	UpdatePassword(ctx context.Context, id, passwordHash string) error
}

// LedgerRepository owns borrow records. CreateBorrow and ReturnBorrow touch
// the availability flag of the book in the same atomic step.
type LedgerRepository interface {
	CreateBorrow(ctx context.Context, rec model.BorrowRecord) (model.BorrowRecord, error)
	GetBorrow(ctx context.Context, id string) (model.BorrowRecord, error)
	ReturnBorrow(ctx context.Context, id string, returnedAt time.Time, fine int64, restoreAvailability bool) (model.BorrowRecord, error)
	MarkOverdue(ctx context.Context, id string, fine int64) error
	ListBorrowsByUser(ctx context.Context, userID string, statuses ...model.Status) ([]model.BorrowRecord, error)
	ListBorrowsByStatus(ctx context.Context, statuses ...model.Status) ([]model.BorrowRecord, error)
}

type SessionRepository interface {
	SaveSession(ctx context.Context, s model.Session) error
	GetSession(ctx context.Context, id string) (model.Session, error)
	DeleteSession(ctx context.Context, id string) error
}

type Repository interface {
	CatalogRepository
	AccountRepository
	LedgerRepository
	SessionRepository
	Close() error
}
