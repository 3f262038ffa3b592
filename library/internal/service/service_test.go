package service_test

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/Astemirdum/perpustakaan/library/internal/errs"
	"github.com/Astemirdum/perpustakaan/library/internal/events"
	"github.com/Astemirdum/perpustakaan/library/internal/model"
	"github.com/Astemirdum/perpustakaan/library/internal/repository/memory"
	"github.com/Astemirdum/perpustakaan/library/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

var t0 = time.Date(2024, time.January, 10, 9, 0, 0, 0, time.UTC)

type clock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}

type recorder struct {
	mu     sync.Mutex
	events []events.Event
}

func (r *recorder) Publish(_ context.Context, e events.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
	return nil
}

func (r *recorder) types() []events.Type {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]events.Type, 0, len(r.events))
	for _, e := range r.events {
		out = append(out, e.Type)
	}
	return out
}

type fixture struct {
	store   *memory.Store
	clock   *clock
	pub     *recorder
	catalog *service.Catalog
	account *service.Account
	ledger  *service.Ledger
}

func newFixture(t *testing.T, opts ...service.LedgerOption) *fixture {
	t.Helper()
	log := zap.NewExample().Named("test")
	f := &fixture{
		store: memory.New(),
		clock: &clock{now: t0},
		pub:   &recorder{},
	}
	f.catalog = service.NewCatalog(f.store, log)
	f.account = service.NewAccount(f.store, log,
		service.WithAccountClock(f.clock.Now),
		service.WithBcryptCost(bcrypt.MinCost))
	opts = append([]service.LedgerOption{
		service.WithClock(f.clock.Now),
		service.WithPublisher(f.pub),
	}, opts...)
	f.ledger = service.NewLedger(f.store, log, opts...)
	return f
}

func (f *fixture) book(t *testing.T, title string) model.Book {
	t.Helper()
	b, err := f.catalog.Create(context.Background(), model.CreateBookRequest{Title: title, Author: "Andrea Hirata", Category: "Novel"})
	require.NoError(t, err)
	return b
}

func (f *fixture) user(t *testing.T, username string) model.User {
	t.Helper()
	u, err := f.account.Register(context.Background(), model.UserCreateRequest{
		Username: username,
		Password: "secret1",
		Name:     username,
		Email:    username + "@mail.id",
	})
	require.NoError(t, err)
	return u
}

func TestFine(t *testing.T) {
	t.Parallel()
	day := 24 * time.Hour
	tests := []struct {
		name string
		now  time.Time
		want int64
	}{
		{name: "before due", now: t0.Add(-time.Hour), want: 0},
		{name: "exactly due", now: t0, want: 0},
		{name: "one millisecond late", now: t0.Add(time.Millisecond), want: 5000},
		{name: "one day late", now: t0.Add(day), want: 5000},
		{name: "just over one day", now: t0.Add(day + time.Second), want: 10000},
		{name: "two days late", now: t0.Add(2 * day), want: 10000},
		{name: "ten and a half days", now: t0.Add(10*day + 12*time.Hour), want: 55000},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			require.Equal(t, tt.want, service.Fine(t0, tt.now))
		})
	}
}

func TestLedger_BorrowAndReturn(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newFixture(t)
	book := f.book(t, "Laskar Pelangi")
	alice := f.user(t, "alice")
	bob := f.user(t, "bob")

	rec, err := f.ledger.Borrow(ctx, alice.ID, book.ID)
	require.NoError(t, err)
	require.Equal(t, model.StatusActive, rec.Status)
	require.Equal(t, t0, rec.BorrowedAt)
	require.Equal(t, t0.Add(service.LoanPeriod), rec.DueAt)
	require.Nil(t, rec.ReturnedAt)

	got, err := f.catalog.Get(ctx, book.ID)
	require.NoError(t, err)
	require.False(t, got.Available)

	active, err := f.ledger.ListActiveByUser(ctx, alice.ID)
	require.NoError(t, err)
	require.Len(t, active, 1)

	_, err = f.ledger.Borrow(ctx, alice.ID, book.ID)
	require.ErrorIs(t, err, errs.ErrConflict)
	_, err = f.ledger.Borrow(ctx, bob.ID, book.ID)
	require.ErrorIs(t, err, errs.ErrInvalidState)

	f.clock.Set(t0.Add(16 * 24 * time.Hour))
	returned, err := f.ledger.Return(ctx, rec.ID)
	require.NoError(t, err)
	require.Equal(t, model.StatusReturned, returned.Status)
	require.Equal(t, int64(10000), returned.Fine)
	require.NotNil(t, returned.ReturnedAt)
	require.Equal(t, t0.Add(16*24*time.Hour), *returned.ReturnedAt)

	_, err = f.ledger.Return(ctx, rec.ID)
	require.ErrorIs(t, err, errs.ErrAlreadyReturned)

	got, err = f.catalog.Get(ctx, book.ID)
	require.NoError(t, err)
	require.False(t, got.Available)

	active, err = f.ledger.ListActiveByUser(ctx, alice.ID)
	require.NoError(t, err)
	require.Empty(t, active)
	all, err := f.ledger.ListByUser(ctx, alice.ID)
	require.NoError(t, err)
	require.Len(t, all, 1)

	require.Equal(t, []events.Type{events.Borrowed, events.Returned}, f.pub.types())
}

func TestLedger_ReturnBeforeDue(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newFixture(t, service.WithRestoreOnReturn(true))
	book := f.book(t, "Bumi Manusia")
	alice := f.user(t, "alice")
	bob := f.user(t, "bob")

	rec, err := f.ledger.Borrow(ctx, alice.ID, book.ID)
	require.NoError(t, err)

	f.clock.Set(rec.DueAt)
	returned, err := f.ledger.Return(ctx, rec.ID)
	require.NoError(t, err)
	require.Zero(t, returned.Fine)

	got, err := f.catalog.Get(ctx, book.ID)
	require.NoError(t, err)
	require.True(t, got.Available)

	_, err = f.ledger.Borrow(ctx, bob.ID, book.ID)
	require.NoError(t, err)
}

func TestLedger_NotFound(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newFixture(t)
	book := f.book(t, "Filosofi Teras")
	alice := f.user(t, "alice")

	_, err := f.ledger.Borrow(ctx, alice.ID, "missing")
	require.ErrorIs(t, err, errs.ErrBookNotFound)
	_, err = f.ledger.Borrow(ctx, "missing", book.ID)
	require.ErrorIs(t, err, errs.ErrUserNotFound)
	_, err = f.ledger.Return(ctx, "missing")
	require.ErrorIs(t, err, errs.ErrBorrowNotFound)
	_, err = f.ledger.Get(ctx, "missing")
	require.ErrorIs(t, err, errs.ErrNotFound)

	require.Empty(t, f.pub.types())
}

func TestLedger_SweepOverdue(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newFixture(t)
	late := f.book(t, "Perahu Kertas")
	fresh := f.book(t, "Laskar Pelangi")
	alice := f.user(t, "alice")

	lateRec, err := f.ledger.Borrow(ctx, alice.ID, late.ID)
	require.NoError(t, err)

	f.clock.Set(t0.Add(10 * 24 * time.Hour))
	freshRec, err := f.ledger.Borrow(ctx, alice.ID, fresh.ID)
	require.NoError(t, err)

	f.clock.Set(t0.Add(15*24*time.Hour + time.Hour))
	n, err := f.ledger.SweepOverdue(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, n)

	rec, err := f.ledger.Get(ctx, lateRec.ID)
	require.NoError(t, err)
	require.Equal(t, model.StatusOverdue, rec.Status)
	require.Equal(t, int64(10000), rec.Fine)

	n, err = f.ledger.SweepOverdue(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, n)
	again, err := f.ledger.Get(ctx, lateRec.ID)
	require.NoError(t, err)
	require.Equal(t, rec, again)

	rec, err = f.ledger.Get(ctx, freshRec.ID)
	require.NoError(t, err)
	require.Equal(t, model.StatusActive, rec.Status)
	require.Zero(t, rec.Fine)

	active, err := f.ledger.ListActiveByUser(ctx, alice.ID)
	require.NoError(t, err)
	require.Len(t, active, 2)

	returned, err := f.ledger.Return(ctx, lateRec.ID)
	require.NoError(t, err)
	require.Equal(t, int64(10000), returned.Fine)

	f.clock.Set(t0.Add(40 * 24 * time.Hour))
	n, err = f.ledger.SweepOverdue(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, n)
	rec, err = f.ledger.Get(ctx, lateRec.ID)
	require.NoError(t, err)
	require.Equal(t, int64(10000), rec.Fine, "a returned record keeps its fine")

	require.Equal(t, []events.Type{
		events.Borrowed, events.Borrowed, events.Overdue, events.Returned, events.Overdue,
	}, f.pub.types())
}

func TestLedger_ConcurrentBorrow(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newFixture(t)
	book := f.book(t, "Laskar Pelangi")

	const readers = 16
	users := make([]model.User, readers)
	for i := range users {
		users[i] = f.user(t, "reader"+string(rune('a'+i)))
	}

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		success int
	)
	for _, u := range users {
		wg.Add(1)
		go func(userID string) {
			defer wg.Done()
			_, err := f.ledger.Borrow(ctx, userID, book.ID)
			if err == nil {
				mu.Lock()
				success++
				mu.Unlock()
				return
			}
			assert.ErrorIs(t, err, errs.ErrBookUnavailable)
		}(u.ID)
	}
	wg.Wait()
	require.Equal(t, 1, success)
}

func TestCatalog(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newFixture(t)

	laskar := f.book(t, "Laskar Pelangi")
	require.NotEmpty(t, laskar.ID)
	require.True(t, laskar.Available)
	f.book(t, "Bumi Manusia")

	got, err := f.catalog.Get(ctx, laskar.ID)
	require.NoError(t, err)
	require.Equal(t, laskar, got)

	found, err := f.catalog.Search(ctx, "laskar")
	require.NoError(t, err)
	require.Len(t, found, 1)
	require.Equal(t, laskar.ID, found[0].ID)

	all, err := f.catalog.Search(ctx, "")
	require.NoError(t, err)
	require.Len(t, all, 2)

	none, err := f.catalog.Search(ctx, "  ")
	require.NoError(t, err)
	require.Empty(t, none)

	pages := 529
	updated, ok, err := f.catalog.Update(ctx, laskar.ID, model.UpdateBookRequest{PageCount: &pages})
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, 529, updated.PageCount)
	require.Equal(t, laskar.Title, updated.Title)

	_, ok, err = f.catalog.Update(ctx, "missing", model.UpdateBookRequest{PageCount: &pages})
	require.NoError(t, err)
	require.False(t, ok)

	ok, err = f.catalog.Delete(ctx, laskar.ID)
	require.NoError(t, err)
	require.True(t, ok)
	ok, err = f.catalog.Delete(ctx, laskar.ID)
	require.NoError(t, err)
	require.False(t, ok)

	_, err = f.catalog.Get(ctx, laskar.ID)
	require.ErrorIs(t, err, errs.ErrBookNotFound)
}

func TestCatalog_SearchKeepsKeyword(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newFixture(t)
	laskar := f.book(t, "Laskar Pelangi")
	f.book(t, "Pelangi di Mars")

	found, err := f.catalog.Search(ctx, " pelangi")
	require.NoError(t, err)
	require.Len(t, found, 1)
	require.Equal(t, laskar.ID, found[0].ID)

	found, err = f.catalog.Search(ctx, "pelangi")
	require.NoError(t, err)
	require.Len(t, found, 2)
}

func TestCatalog_IsBorrowedByUser(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newFixture(t)
	book := f.book(t, "Filosofi Teras")
	alice := f.user(t, "alice")
	bob := f.user(t, "bob")

	rec, err := f.ledger.Borrow(ctx, alice.ID, book.ID)
	require.NoError(t, err)

	borrowed, err := f.catalog.IsBorrowedByUser(ctx, alice.ID, book.ID)
	require.NoError(t, err)
	require.True(t, borrowed)
	borrowed, err = f.catalog.IsBorrowedByUser(ctx, bob.ID, book.ID)
	require.NoError(t, err)
	require.False(t, borrowed)

	_, err = f.ledger.Return(ctx, rec.ID)
	require.NoError(t, err)
	borrowed, err = f.catalog.IsBorrowedByUser(ctx, alice.ID, book.ID)
	require.NoError(t, err)
	require.False(t, borrowed)
}

func TestAccount_Register(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newFixture(t)

	alice := f.user(t, "alice")
	require.Equal(t, model.RoleUser, alice.Role)
	require.Equal(t, t0, alice.CreatedAt)
	require.NotEqual(t, "secret1", alice.PasswordHash)

	_, err := f.account.Register(ctx, model.UserCreateRequest{
		Username: "alice", Password: "secret1", Name: "A", Email: "other@mail.id",
	})
	require.ErrorIs(t, err, errs.ErrUsernameTaken)

	_, err = f.account.Register(ctx, model.UserCreateRequest{
		Username: "alicia", Password: "secret1", Name: "A", Email: "alice@mail.id",
	})
	require.ErrorIs(t, err, errs.ErrEmailTaken)

	admin, err := f.account.CreateAdmin(ctx, model.UserCreateRequest{
		Username: "admin", Password: "admin123", Name: "Admin", Email: "admin@mail.id",
	})
	require.NoError(t, err)
	require.True(t, admin.IsAdmin())
}

func TestAccount_Authenticate(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newFixture(t)
	alice := f.user(t, "alice")

	got, err := f.account.Authenticate(ctx, "alice", "secret1")
	require.NoError(t, err)
	require.Equal(t, alice.ID, got.ID)

	_, err = f.account.Authenticate(ctx, "alice", "wrong")
	require.ErrorIs(t, err, errs.ErrInvalidCredentials)
	_, err = f.account.Authenticate(ctx, "nobody", "secret1")
	require.ErrorIs(t, err, errs.ErrInvalidCredentials)
}

func TestAccount_ProfileAndPassword(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newFixture(t)
	alice := f.user(t, "alice")
	f.user(t, "bob")

	taken := "bob"
	_, err := f.account.UpdateProfile(ctx, alice.ID, model.ProfileUpdateRequest{Username: &taken})
	require.ErrorIs(t, err, errs.ErrConflict)

	phone := "08123456789"
	updated, err := f.account.UpdateProfile(ctx, alice.ID, model.ProfileUpdateRequest{Phone: &phone})
	require.NoError(t, err)
	require.Equal(t, phone, updated.Phone)
	require.Equal(t, "alice", updated.Username)

	ok, err := f.account.ChangePassword(ctx, alice.ID, "wrong", "newsecret")
	require.ErrorIs(t, err, errs.ErrInvalidCredentials)
	require.False(t, ok)

	ok, err = f.account.ChangePassword(ctx, alice.ID, "secret1", "newsecret")
	require.NoError(t, err)
	require.True(t, ok)

	_, err = f.account.Authenticate(ctx, "alice", "secret1")
	require.ErrorIs(t, err, errs.ErrInvalidCredentials)
	_, err = f.account.Authenticate(ctx, "alice", "newsecret")
	require.NoError(t, err)

	_, err = f.account.ChangePassword(ctx, "missing", "a", "b")
	require.ErrorIs(t, err, errs.ErrUserNotFound)
}

func TestAccount_PasswordLength(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newFixture(t)

	_, err := f.account.Register(ctx, model.UserCreateRequest{
		Username: "alice", Password: strings.Repeat("p", 80), Name: "A", Email: "alice@mail.id",
	})
	require.ErrorIs(t, err, errs.ErrPasswordTooLong)
	require.ErrorIs(t, err, errs.ErrInvalidArgument)
	_, err = f.account.Authenticate(ctx, "alice", strings.Repeat("p", 80))
	require.ErrorIs(t, err, errs.ErrInvalidCredentials)

	longest := strings.Repeat("p", 72)
	alice, err := f.account.Register(ctx, model.UserCreateRequest{
		Username: "alice", Password: longest, Name: "A", Email: "alice@mail.id",
	})
	require.NoError(t, err)

	ok, err := f.account.ChangePassword(ctx, alice.ID, longest, strings.Repeat("q", 73))
	require.ErrorIs(t, err, errs.ErrPasswordTooLong)
	require.False(t, ok)
	_, err = f.account.Authenticate(ctx, "alice", longest)
	require.NoError(t, err)
}
