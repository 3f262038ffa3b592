package service

import (
	"context"

	"github.com/Astemirdum/perpustakaan/library/internal/errs"
	"github.com/Astemirdum/perpustakaan/library/internal/model"
	"github.com/Astemirdum/perpustakaan/library/internal/repository"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

type CatalogStore interface {
	repository.CatalogRepository
	ListBorrowsByUser(ctx context.Context, userID string, statuses ...model.Status) ([]model.BorrowRecord, error)
}

type Catalog struct {
	log  *zap.Logger
	repo CatalogStore
}

func NewCatalog(repo CatalogStore, log *zap.Logger) *Catalog {
	return &Catalog{
		log:  log.Named("catalog"),
		repo: repo,
	}
}

func (s *Catalog) List(ctx context.Context) ([]model.Book, error) {
	return s.repo.ListBooks(ctx)
}

func (s *Catalog) Get(ctx context.Context, id string) (model.Book, error) {
	return s.repo.GetBook(ctx, id)
}

// Create stores a new book under a fresh id. New books are always available.
func (s *Catalog) Create(ctx context.Context, req model.CreateBookRequest) (model.Book, error) {
	book := req.Book()
	book.ID = uuid.NewString()
	book.Available = true
	created, err := s.repo.CreateBook(ctx, book)
	if err != nil {
		return model.Book{}, err
	}
	s.log.Info("book added", zap.String("id", created.ID), zap.String("title", created.Title))
	return created, nil
}

// Update merges req into the book. found is false when no book has the id.
func (s *Catalog) Update(ctx context.Context, id string, req model.UpdateBookRequest) (book model.Book, found bool, err error) {
	book, err = s.repo.UpdateBook(ctx, id, req)
	if errors.Is(err, errs.ErrBookNotFound) {
		return model.Book{}, false, nil
	}
	if err != nil {
		return model.Book{}, false, err
	}
	return book, true, nil
}

// Delete removes the book. Borrow records that point at it are left as they are.
func (s *Catalog) Delete(ctx context.Context, id string) (bool, error) {
	err := s.repo.DeleteBook(ctx, id)
	if errors.Is(err, errs.ErrBookNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	s.log.Info("book deleted", zap.String("id", id))
	return true, nil
}

// Search matches keyword as given. Only an empty keyword lists everything.
func (s *Catalog) Search(ctx context.Context, keyword string) ([]model.Book, error) {
	if keyword == "" {
		return s.repo.ListBooks(ctx)
	}
	return s.repo.SearchBooks(ctx, keyword)
}

func (s *Catalog) IsBorrowedByUser(ctx context.Context, userID, bookID string) (bool, error) {
	open, err := s.repo.ListBorrowsByUser(ctx, userID, model.StatusActive, model.StatusOverdue)
	if err != nil {
		return false, err
	}
	for _, rec := range open {
		if rec.BookID == bookID {
			return true, nil
		}
	}
	return false, nil
}
