// Package memory keeps the whole library in process memory. It is the
// default storage and the reference behaviour for the SQL store.
package memory

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/Astemirdum/perpustakaan/library/internal/errs"
	"github.com/Astemirdum/perpustakaan/library/internal/model"
	"github.com/Astemirdum/perpustakaan/library/internal/repository"
)

var _ repository.Repository = (*Store)(nil)

// Store guards all collections with one lock so that a borrow updates the
// catalog and the ledger as a single step.
type Store struct {
	mu       sync.RWMutex
	books    []model.Book
	users    []model.User
	borrows  []model.BorrowRecord
	sessions map[string]model.Session
}

func New() *Store {
	return &Store{
		sessions: make(map[string]model.Session),
	}
}

func (s *Store) Close() error { return nil }

func (s *Store) ListBooks(_ context.Context) ([]model.Book, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.Book, len(s.books))
	copy(out, s.books)
	return out, nil
}

func (s *Store) GetBook(_ context.Context, id string) (model.Book, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i := s.bookIndex(id)
	if i < 0 {
		return model.Book{}, errs.ErrBookNotFound
	}
	return s.books[i], nil
}

func (s *Store) CreateBook(_ context.Context, book model.Book) (model.Book, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.bookIndex(book.ID) >= 0 {
		return model.Book{}, errs.ErrConflict
	}
	s.books = append(s.books, book)
	return book, nil
}

func (s *Store) UpdateBook(_ context.Context, id string, req model.UpdateBookRequest) (model.Book, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.bookIndex(id)
	if i < 0 {
		return model.Book{}, errs.ErrBookNotFound
	}
	s.books[i] = req.Apply(s.books[i])
	return s.books[i], nil
}

func (s *Store) DeleteBook(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.bookIndex(id)
	if i < 0 {
		return errs.ErrBookNotFound
	}
	s.books = append(s.books[:i], s.books[i+1:]...)
	return nil
}

func (s *Store) SearchBooks(_ context.Context, keyword string) ([]model.Book, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	kw := strings.ToLower(keyword)
	out := make([]model.Book, 0)
	for _, b := range s.books {
		if containsFold(b.Title, kw) ||
			containsFold(b.Author, kw) ||
			containsFold(b.Description, kw) ||
			containsFold(b.Category, kw) {
			out = append(out, b)
		}
	}
	return out, nil
}

func (s *Store) CreateUser(_ context.Context, user model.User) (model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkUnique("", user.Username, user.Email); err != nil {
		return model.User{}, err
	}
	s.users = append(s.users, user)
	return user, nil
}

func (s *Store) GetUser(_ context.Context, id string) (model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i := s.userIndex(id)
	if i < 0 {
		return model.User{}, errs.ErrUserNotFound
	}
	return s.users[i], nil
}

func (s *Store) GetUserByUsername(_ context.Context, username string) (model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.users {
		if u.Username == username {
			return u, nil
		}
	}
	return model.User{}, errs.ErrUserNotFound
}

func (s *Store) UpdateUser(_ context.Context, id string, req model.ProfileUpdateRequest) (model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.userIndex(id)
	if i < 0 {
		return model.User{}, errs.ErrUserNotFound
	}
	updated := req.Apply(s.users[i])
	if err := s.checkUnique(id, updated.Username, updated.Email); err != nil {
		return model.User{}, err
	}
	s.users[i] = updated
	return updated, nil
}

func (s *Store) UpdatePassword(_ context.Context, id, passwordHash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.userIndex(id)
	if i < 0 {
		return errs.ErrUserNotFound
	}
	s.users[i].PasswordHash = passwordHash
	return nil
}

func (s *Store) CreateBorrow(_ context.Context, rec model.BorrowRecord) (model.BorrowRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	bi := s.bookIndex(rec.BookID)
	if bi < 0 {
		return model.BorrowRecord{}, errs.ErrBookNotFound
	}
	if s.userIndex(rec.UserID) < 0 {
		return model.BorrowRecord{}, errs.ErrUserNotFound
	}
	for _, r := range s.borrows {
		if r.UserID == rec.UserID && r.BookID == rec.BookID && r.Status.Open() {
			return model.BorrowRecord{}, errs.ErrAlreadyBorrowed
		}
	}
	if !s.books[bi].Available {
		return model.BorrowRecord{}, errs.ErrBookUnavailable
	}
	s.books[bi].Available = false
	s.borrows = append(s.borrows, rec)
	return rec, nil
}

func (s *Store) GetBorrow(_ context.Context, id string) (model.BorrowRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i := s.borrowIndex(id)
	if i < 0 {
		return model.BorrowRecord{}, errs.ErrBorrowNotFound
	}
	return s.borrows[i], nil
}

func (s *Store) ReturnBorrow(_ context.Context, id string, returnedAt time.Time, fine int64, restoreAvailability bool) (model.BorrowRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.borrowIndex(id)
	if i < 0 {
		return model.BorrowRecord{}, errs.ErrBorrowNotFound
	}
	rec := &s.borrows[i]
	if !rec.Status.Open() {
		return model.BorrowRecord{}, errs.ErrAlreadyReturned
	}
	rec.ReturnedAt = &returnedAt
	rec.Fine = fine
	rec.Status = model.StatusReturned
	if restoreAvailability {
		// the book may have been deleted while lent out
		if bi := s.bookIndex(rec.BookID); bi >= 0 {
			s.books[bi].Available = true
		}
	}
	return *rec, nil
}

func (s *Store) MarkOverdue(_ context.Context, id string, fine int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.borrowIndex(id)
	if i < 0 {
		return errs.ErrBorrowNotFound
	}
	if !s.borrows[i].Status.Open() {
		return errs.ErrAlreadyReturned
	}
	s.borrows[i].Status = model.StatusOverdue
	s.borrows[i].Fine = fine
	return nil
}

func (s *Store) ListBorrowsByUser(_ context.Context, userID string, statuses ...model.Status) ([]model.BorrowRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.BorrowRecord, 0)
	for _, r := range s.borrows {
		if r.UserID == userID && hasStatus(r.Status, statuses) {
			out = append(out, r)
		}
	}
	return out, nil
}

func (s *Store) ListBorrowsByStatus(_ context.Context, statuses ...model.Status) ([]model.BorrowRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.BorrowRecord, 0)
	for _, r := range s.borrows {
		if hasStatus(r.Status, statuses) {
			out = append(out, r)
		}
	}
	return out, nil
}

func (s *Store) SaveSession(_ context.Context, sess model.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[sess.ID] = sess
	return nil
}

func (s *Store) GetSession(_ context.Context, id string) (model.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sess, ok := s.sessions[id]
	if !ok {
		return model.Session{}, errs.ErrSessionClosed
	}
	return sess, nil
}

func (s *Store) DeleteSession(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, id)
	return nil
}

func (s *Store) bookIndex(id string) int {
	for i := range s.books {
		if s.books[i].ID == id {
			return i
		}
	}
	return -1
}

func (s *Store) userIndex(id string) int {
	for i := range s.users {
		if s.users[i].ID == id {
			return i
		}
	}
	return -1
}

func (s *Store) borrowIndex(id string) int {
	for i := range s.borrows {
		if s.borrows[i].ID == id {
			return i
		}
	}
	return -1
}

// checkUnique must be called with the write lock held. selfID excludes the
// account being updated.
func (s *Store) checkUnique(selfID, username, email string) error {
	for _, u := range s.users {
		if u.ID == selfID {
			continue
		}
		if u.Username == username {
			return errs.ErrUsernameTaken
		}
	}
	for _, u := range s.users {
		if u.ID == selfID {
			continue
		}
		if u.Email == email {
			return errs.ErrEmailTaken
		}
	}
	return nil
}

func containsFold(s, lowerSub string) bool {
	return strings.Contains(strings.ToLower(s), lowerSub)
}

func hasStatus(st model.Status, statuses []model.Status) bool {
	if len(statuses) == 0 {
		return true
	}
	for _, want := range statuses {
		if st == want {
			return true
		}
	}
	return false
}
