package memory_test

import (
	"context"
	"testing"
	"time"

	"github.com/Astemirdum/perpustakaan/library/internal/errs"
	"github.com/Astemirdum/perpustakaan/library/internal/model"
	"github.com/Astemirdum/perpustakaan/library/internal/repository/memory"
	"github.com/stretchr/testify/require"
)

func seeded(t *testing.T) *memory.Store {
	t.Helper()
	s := memory.New()
	require.NoError(t, s.Seed(context.Background()))
	return s
}

func TestStore_Search(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := seeded(t)

	tests := []struct {
		keyword string
		want    []string
	}{
		{keyword: "laskar", want: []string{"Laskar Pelangi"}},
		{keyword: "PRAMOEDYA", want: []string{"Bumi Manusia"}},
		{keyword: "filsafat", want: []string{"Filosofi Teras"}},
		{keyword: "novel", want: []string{"Laskar Pelangi", "Bumi Manusia", "Perahu Kertas"}},
		{keyword: "tolkien", want: []string{}},
	}
	for _, tt := range tests {
		books, err := s.SearchBooks(ctx, tt.keyword)
		require.NoError(t, err)
		titles := make([]string, 0, len(books))
		for _, b := range books {
			titles = append(titles, b.Title)
		}
		require.Equal(t, tt.want, titles, tt.keyword)
	}
}

func TestStore_ListReturnsCopies(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := seeded(t)

	books, err := s.ListBooks(ctx)
	require.NoError(t, err)
	require.Len(t, books, 4)
	books[0].Title = "changed"

	got, err := s.GetBook(ctx, memory.StarterCatalog()[0].ID)
	require.NoError(t, err)
	require.Equal(t, "Laskar Pelangi", got.Title)

	_, err = s.CreateBook(ctx, got)
	require.ErrorIs(t, err, errs.ErrConflict)
}

func TestStore_BorrowLifecycle(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := seeded(t)
	bookID := memory.StarterCatalog()[1].ID
	now := time.Date(2024, time.February, 1, 0, 0, 0, 0, time.UTC)

	for _, u := range []model.User{
		{ID: "u1", Username: "budi", Email: "budi@mail.id"},
		{ID: "u2", Username: "sari", Email: "sari@mail.id"},
	} {
		_, err := s.CreateUser(ctx, u)
		require.NoError(t, err)
	}
	_, err := s.CreateUser(ctx, model.User{ID: "u3", Username: "budi", Email: "x@mail.id"})
	require.ErrorIs(t, err, errs.ErrUsernameTaken)

	rec := model.BorrowRecord{ID: "r1", UserID: "u1", BookID: bookID, BorrowedAt: now, DueAt: now.Add(time.Hour), Status: model.StatusActive}
	_, err = s.CreateBorrow(ctx, rec)
	require.NoError(t, err)

	dup := rec
	dup.ID = "r2"
	_, err = s.CreateBorrow(ctx, dup)
	require.ErrorIs(t, err, errs.ErrAlreadyBorrowed)

	dup.UserID = "u2"
	_, err = s.CreateBorrow(ctx, dup)
	require.ErrorIs(t, err, errs.ErrBookUnavailable)

	require.NoError(t, s.MarkOverdue(ctx, "r1", 5000))
	overdue, err := s.ListBorrowsByStatus(ctx, model.StatusOverdue)
	require.NoError(t, err)
	require.Len(t, overdue, 1)

	require.NoError(t, s.DeleteBook(ctx, bookID))
	returned, err := s.ReturnBorrow(ctx, "r1", now.Add(2*time.Hour), 5000, true)
	require.NoError(t, err)
	require.Equal(t, model.StatusReturned, returned.Status)
	require.Equal(t, bookID, returned.BookID)

	_, err = s.ReturnBorrow(ctx, "r1", now, 0, true)
	require.ErrorIs(t, err, errs.ErrAlreadyReturned)
	require.ErrorIs(t, s.MarkOverdue(ctx, "r1", 1), errs.ErrAlreadyReturned)

	all, err := s.ListBorrowsByUser(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, all, 1)
	open, err := s.ListBorrowsByUser(ctx, "u1", model.StatusActive, model.StatusOverdue)
	require.NoError(t, err)
	require.Empty(t, open)
}
