package sqlrepo_test

import (
	"context"
	"testing"
	"time"

	"github.com/Astemirdum/perpustakaan/library/internal/errs"
	"github.com/Astemirdum/perpustakaan/library/internal/model"
	"github.com/Astemirdum/perpustakaan/library/internal/repository/sqlrepo"
	"github.com/Astemirdum/perpustakaan/library/migrations"
	"github.com/Astemirdum/perpustakaan/pkg/sqlite"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const (
	laskarPelangiID = "6f1c1a52-6a0e-4b8e-9a51-2d8b9b0c0001"
	bumiManusiaID   = "6f1c1a52-6a0e-4b8e-9a51-2d8b9b0c0002"
)

var t0 = time.Date(2024, time.March, 1, 10, 0, 0, 0, time.UTC)

func newRepo(t *testing.T) *sqlrepo.Repository {
	t.Helper()
	db, err := sqlite.NewSQLiteDB(context.Background(), sqlite.MemoryPath(uuid.NewString()), migrations.MigrationFiles)
	require.NoError(t, err)
	repo, err := sqlrepo.NewRepository(db, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = repo.Close() })
	return repo
}

func newUser(t *testing.T, repo *sqlrepo.Repository, username string) model.User {
	t.Helper()
	u, err := repo.CreateUser(context.Background(), model.User{
		ID:           uuid.NewString(),
		Username:     username,
		PasswordHash: "hash",
		Name:         username,
		Email:        username + "@example.com",
		Role:         model.RoleUser,
		CreatedAt:    t0,
	})
	require.NoError(t, err)
	return u
}

func newBorrow(userID, bookID string) model.BorrowRecord {
	return model.BorrowRecord{
		ID:         uuid.NewString(),
		UserID:     userID,
		BookID:     bookID,
		BorrowedAt: t0,
		DueAt:      t0.Add(14 * 24 * time.Hour),
		Status:     model.StatusActive,
	}
}

func TestRepository_SeededCatalog(t *testing.T) {
	repo := newRepo(t)
	ctx := context.Background()

	books, err := repo.ListBooks(ctx)
	require.NoError(t, err)
	require.Len(t, books, 4)
	require.Equal(t, "Laskar Pelangi", books[0].Title)
	for _, b := range books {
		require.True(t, b.Available)
	}

	found, err := repo.SearchBooks(ctx, "laskar")
	require.NoError(t, err)
	require.Len(t, found, 1)
	require.Equal(t, laskarPelangiID, found[0].ID)

	found, err = repo.SearchBooks(ctx, "NOVEL")
	require.NoError(t, err)
	titles := make([]string, 0, len(found))
	for _, b := range found {
		titles = append(titles, b.Title)
	}
	require.Equal(t, []string{"Laskar Pelangi", "Bumi Manusia", "Perahu Kertas"}, titles)

	found, err = repo.SearchBooks(ctx, "100%")
	require.NoError(t, err)
	require.Empty(t, found)
}

func TestRepository_BookCRUD(t *testing.T) {
	repo := newRepo(t)
	ctx := context.Background()

	in := model.Book{
		ID:              uuid.NewString(),
		Title:           "Cantik Itu Luka",
		Author:          "Eka Kurniawan",
		PublicationYear: 2002,
		Category:        "Novel",
		PageCount:       537,
		Available:       true,
	}
	_, err := repo.CreateBook(ctx, in)
	require.NoError(t, err)

	got, err := repo.GetBook(ctx, in.ID)
	require.NoError(t, err)
	require.Equal(t, in, got)

	title := "Cantik Itu Luka (cet. 2)"
	updated, err := repo.UpdateBook(ctx, in.ID, model.UpdateBookRequest{Title: &title})
	require.NoError(t, err)
	require.Equal(t, title, updated.Title)
	require.Equal(t, in.Author, updated.Author)

	_, err = repo.UpdateBook(ctx, "missing", model.UpdateBookRequest{Title: &title})
	require.ErrorIs(t, err, errs.ErrNotFound)

	require.NoError(t, repo.DeleteBook(ctx, in.ID))
	require.ErrorIs(t, repo.DeleteBook(ctx, in.ID), errs.ErrBookNotFound)
	_, err = repo.GetBook(ctx, in.ID)
	require.ErrorIs(t, err, errs.ErrBookNotFound)
}

func TestRepository_Users(t *testing.T) {
	repo := newRepo(t)
	ctx := context.Background()

	alice := newUser(t, repo, "alice")
	bob := newUser(t, repo, "bob")

	_, err := repo.CreateUser(ctx, model.User{
		ID: uuid.NewString(), Username: "alice", Email: "other@example.com", Role: model.RoleUser, CreatedAt: t0,
	})
	require.ErrorIs(t, err, errs.ErrUsernameTaken)

	_, err = repo.CreateUser(ctx, model.User{
		ID: uuid.NewString(), Username: "carol", Email: "alice@example.com", Role: model.RoleUser, CreatedAt: t0,
	})
	require.ErrorIs(t, err, errs.ErrEmailTaken)

	got, err := repo.GetUserByUsername(ctx, "alice")
	require.NoError(t, err)
	require.Equal(t, alice.ID, got.ID)
	require.True(t, alice.CreatedAt.Equal(got.CreatedAt))

	taken := "bob"
	_, err = repo.UpdateUser(ctx, alice.ID, model.ProfileUpdateRequest{Username: &taken})
	require.ErrorIs(t, err, errs.ErrUsernameTaken)

	same, addr := "alice", "Jl. Merdeka 1"
	got, err = repo.UpdateUser(ctx, alice.ID, model.ProfileUpdateRequest{Username: &same, Address: &addr})
	require.NoError(t, err)
	require.Equal(t, addr, got.Address)

	require.NoError(t, repo.UpdatePassword(ctx, bob.ID, "new-hash"))
	got, err = repo.GetUser(ctx, bob.ID)
	require.NoError(t, err)
	require.Equal(t, "new-hash", got.PasswordHash)

	require.ErrorIs(t, repo.UpdatePassword(ctx, "missing", "x"), errs.ErrUserNotFound)
}

func TestRepository_BorrowAndReturn(t *testing.T) {
	repo := newRepo(t)
	ctx := context.Background()
	alice := newUser(t, repo, "alice")
	bob := newUser(t, repo, "bob")

	rec, err := repo.CreateBorrow(ctx, newBorrow(alice.ID, laskarPelangiID))
	require.NoError(t, err)

	book, err := repo.GetBook(ctx, laskarPelangiID)
	require.NoError(t, err)
	require.False(t, book.Available)

	_, err = repo.CreateBorrow(ctx, newBorrow(alice.ID, laskarPelangiID))
	require.ErrorIs(t, err, errs.ErrAlreadyBorrowed)
	_, err = repo.CreateBorrow(ctx, newBorrow(bob.ID, laskarPelangiID))
	require.ErrorIs(t, err, errs.ErrBookUnavailable)
	_, err = repo.CreateBorrow(ctx, newBorrow(bob.ID, "missing"))
	require.ErrorIs(t, err, errs.ErrBookNotFound)
	_, err = repo.CreateBorrow(ctx, newBorrow("missing", bumiManusiaID))
	require.ErrorIs(t, err, errs.ErrUserNotFound)

	active, err := repo.ListBorrowsByUser(ctx, alice.ID, model.StatusActive, model.StatusOverdue)
	require.NoError(t, err)
	require.Len(t, active, 1)
	require.Equal(t, rec.ID, active[0].ID)
	require.Nil(t, active[0].ReturnedAt)
	require.True(t, rec.DueAt.Equal(active[0].DueAt))

	require.NoError(t, repo.MarkOverdue(ctx, rec.ID, 5000))
	got, err := repo.GetBorrow(ctx, rec.ID)
	require.NoError(t, err)
	require.Equal(t, model.StatusOverdue, got.Status)
	require.Equal(t, int64(5000), got.Fine)

	returnedAt := t0.Add(16 * 24 * time.Hour)
	returned, err := repo.ReturnBorrow(ctx, rec.ID, returnedAt, 10000, false)
	require.NoError(t, err)
	require.Equal(t, model.StatusReturned, returned.Status)
	require.Equal(t, int64(10000), returned.Fine)

	got, err = repo.GetBorrow(ctx, rec.ID)
	require.NoError(t, err)
	require.NotNil(t, got.ReturnedAt)
	require.True(t, returnedAt.Equal(*got.ReturnedAt))

	book, err = repo.GetBook(ctx, laskarPelangiID)
	require.NoError(t, err)
	require.False(t, book.Available, "availability is kept unless restore is requested")

	_, err = repo.ReturnBorrow(ctx, rec.ID, returnedAt, 0, false)
	require.ErrorIs(t, err, errs.ErrAlreadyReturned)
	require.ErrorIs(t, repo.MarkOverdue(ctx, rec.ID, 1), errs.ErrAlreadyReturned)
	require.ErrorIs(t, repo.MarkOverdue(ctx, "missing", 1), errs.ErrBorrowNotFound)

	all, err := repo.ListBorrowsByUser(ctx, alice.ID)
	require.NoError(t, err)
	require.Len(t, all, 1)
}

func TestRepository_ReturnRestoresAvailability(t *testing.T) {
	repo := newRepo(t)
	ctx := context.Background()
	alice := newUser(t, repo, "alice")
	bob := newUser(t, repo, "bob")

	rec, err := repo.CreateBorrow(ctx, newBorrow(alice.ID, bumiManusiaID))
	require.NoError(t, err)
	_, err = repo.ReturnBorrow(ctx, rec.ID, t0.Add(time.Hour), 0, true)
	require.NoError(t, err)

	book, err := repo.GetBook(ctx, bumiManusiaID)
	require.NoError(t, err)
	require.True(t, book.Available)

	_, err = repo.CreateBorrow(ctx, newBorrow(bob.ID, bumiManusiaID))
	require.NoError(t, err)

	open, err := repo.ListBorrowsByStatus(ctx, model.StatusActive)
	require.NoError(t, err)
	require.Len(t, open, 1)
	require.Equal(t, bob.ID, open[0].UserID)
}

func TestRepository_Sessions(t *testing.T) {
	repo := newRepo(t)
	ctx := context.Background()

	s := model.Session{ID: uuid.NewString(), UserID: "u1", CreatedAt: t0, ExpiresAt: t0.Add(time.Hour)}
	require.NoError(t, repo.SaveSession(ctx, s))

	got, err := repo.GetSession(ctx, s.ID)
	require.NoError(t, err)
	require.Equal(t, s.UserID, got.UserID)
	require.True(t, s.ExpiresAt.Equal(got.ExpiresAt))

	require.NoError(t, repo.DeleteSession(ctx, s.ID))
	_, err = repo.GetSession(ctx, s.ID)
	require.ErrorIs(t, err, errs.ErrSessionClosed)
}
