package handler

import (
	"context"

	"github.com/Astemirdum/perpustakaan/library/internal/model"
	"github.com/Astemirdum/perpustakaan/library/internal/service"
	"github.com/Astemirdum/perpustakaan/library/internal/session"
)

//go:generate go run github.com/golang/mock/mockgen -source=service.go -destination=mocks/mock.go

type CatalogService interface {
	List(ctx context.Context) ([]model.Book, error)
	Get(ctx context.Context, id string) (model.Book, error)
	Create(ctx context.Context, req model.CreateBookRequest) (model.Book, error)
	Update(ctx context.Context, id string, req model.UpdateBookRequest) (model.Book, bool, error)
	Delete(ctx context.Context, id string) (bool, error)
	Search(ctx context.Context, keyword string) ([]model.Book, error)
	IsBorrowedByUser(ctx context.Context, userID, bookID string) (bool, error)
}

type AccountService interface {
	Register(ctx context.Context, req model.UserCreateRequest) (model.User, error)
	GetByID(ctx context.Context, id string) (model.User, error)
	UpdateProfile(ctx context.Context, id string, req model.ProfileUpdateRequest) (model.User, error)
	ChangePassword(ctx context.Context, id, current, next string) (bool, error)
}

type LedgerService interface {
	Borrow(ctx context.Context, userID, bookID string) (model.BorrowRecord, error)
	Return(ctx context.Context, borrowID string) (model.BorrowRecord, error)
	Get(ctx context.Context, borrowID string) (model.BorrowRecord, error)
	ListByUser(ctx context.Context, userID string) ([]model.BorrowRecord, error)
	ListActiveByUser(ctx context.Context, userID string) ([]model.BorrowRecord, error)
	SweepOverdue(ctx context.Context) (int, error)
}

type SessionService interface {
	Login(ctx context.Context, username, password string) (model.AuthResponse, error)
	Restore(ctx context.Context, token string) (model.User, error)
	Logout(ctx context.Context, token string) error
}

var (
	_ CatalogService = (*service.Catalog)(nil)
	_ AccountService = (*service.Account)(nil)
	_ LedgerService  = (*service.Ledger)(nil)
	_ SessionService = (*session.Manager)(nil)
)
