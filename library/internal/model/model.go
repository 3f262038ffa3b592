package model

import (
	"time"
)

type Book struct {
	ID              string `json:"id" db:"id"`
	Title           string `json:"title" db:"title"`
	Author          string `json:"author" db:"author"`
	Description     string `json:"description" db:"description"`
	PublicationYear int    `json:"publicationYear" db:"publication_year"`
	Publisher       string `json:"publisher" db:"publisher"`
	ISBN            string `json:"isbn" db:"isbn"`
	Category        string `json:"category" db:"category"`
	Language        string `json:"language" db:"language"`
	PageCount       int    `json:"pageCount" db:"page_count"`
	CoverURL        string `json:"coverUrl,omitempty" db:"cover_url"`
	Available       bool   `json:"available" db:"available"`
}

// CreateBookRequest carries every book field except the ones the store assigns.
type CreateBookRequest struct {
	Title           string `json:"title" validate:"required"`
	Author          string `json:"author" validate:"required"`
	Description     string `json:"description"`
	PublicationYear int    `json:"publicationYear" validate:"gte=0"`
	Publisher       string `json:"publisher"`
	ISBN            string `json:"isbn"`
	Category        string `json:"category"`
	Language        string `json:"language"`
	PageCount       int    `json:"pageCount" validate:"gte=0"`
	CoverURL        string `json:"coverUrl" validate:"omitempty,url"`
}

func (r CreateBookRequest) Book() Book {
	return Book{
		Title:           r.Title,
		Author:          r.Author,
		Description:     r.Description,
		PublicationYear: r.PublicationYear,
		Publisher:       r.Publisher,
		ISBN:            r.ISBN,
		Category:        r.Category,
		Language:        r.Language,
		PageCount:       r.PageCount,
		CoverURL:        r.CoverURL,
	}
}

// UpdateBookRequest is a partial update: nil fields are left untouched.
// Availability is owned by the ledger and cannot be set here.
type UpdateBookRequest struct {
	Title           *string `json:"title" validate:"omitempty,min=1"`
	Author          *string `json:"author" validate:"omitempty,min=1"`
	Description     *string `json:"description"`
	PublicationYear *int    `json:"publicationYear" validate:"omitempty,gte=0"`
	Publisher       *string `json:"publisher"`
	ISBN            *string `json:"isbn"`
	Category        *string `json:"category"`
	Language        *string `json:"language"`
	PageCount       *int    `json:"pageCount" validate:"omitempty,gte=0"`
	CoverURL        *string `json:"coverUrl" validate:"omitempty,url"`
}

func (r UpdateBookRequest) Apply(b Book) Book {
	if r.Title != nil {
		b.Title = *r.Title
	}
	if r.Author != nil {
		b.Author = *r.Author
	}
	if r.Description != nil {
		b.Description = *r.Description
	}
	if r.PublicationYear != nil {
		b.PublicationYear = *r.PublicationYear
	}
	if r.Publisher != nil {
		b.Publisher = *r.Publisher
	}
	if r.ISBN != nil {
		b.ISBN = *r.ISBN
	}
	if r.Category != nil {
		b.Category = *r.Category
	}
	if r.Language != nil {
		b.Language = *r.Language
	}
	if r.PageCount != nil {
		b.PageCount = *r.PageCount
	}
	if r.CoverURL != nil {
		b.CoverURL = *r.CoverURL
	}
	return b
}

type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

type User struct {
	ID           string    `json:"id" db:"id"`
	Username     string    `json:"username" db:"username"`
	PasswordHash string    `json:"-" db:"password_hash"`
	Name         string    `json:"name" db:"name"`
	Email        string    `json:"email" db:"email"`
	Phone        string    `json:"phoneNumber" db:"phone"`
	Address      string    `json:"address" db:"address"`
	Role         Role      `json:"role" db:"role"`
	CreatedAt    time.Time `json:"createdAt" db:"created_at"`
}

func (u User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

type UserCreateRequest struct {
	Username string `json:"username" validate:"required,min=3,max=64"`
	Password string `json:"password" validate:"required,min=6,max=72"`
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Phone    string `json:"phoneNumber"`
	Address  string `json:"address"`
}

// ProfileUpdateRequest is a partial update of the account profile.
type ProfileUpdateRequest struct {
	Username *string `json:"username" validate:"omitempty,min=3,max=64"`
	Name     *string `json:"name" validate:"omitempty,min=1"`
	Email    *string `json:"email" validate:"omitempty,email"`
	Phone    *string `json:"phoneNumber"`
	Address  *string `json:"address"`
}

func (r ProfileUpdateRequest) Apply(u User) User {
	if r.Username != nil {
		u.Username = *r.Username
	}
	if r.Name != nil {
		u.Name = *r.Name
	}
	if r.Email != nil {
		u.Email = *r.Email
	}
	if r.Phone != nil {
		u.Phone = *r.Phone
	}
	if r.Address != nil {
		u.Address = *r.Address
	}
	return u
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword" validate:"required"`
	NewPassword     string `json:"newPassword" validate:"required,min=6,max=72,nefield=CurrentPassword"`
}

type AuthRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type AuthResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int    `json:"expires_in"`
	User        User   `json:"user"`
}

type Status string

const (
	StatusActive   Status = "active"
	StatusOverdue  Status = "overdue"
	StatusReturned Status = "returned"
)

// Open reports whether the record still holds the book.
func (s Status) Open() bool {
	return s == StatusActive || s == StatusOverdue
}

type BorrowRecord struct {
	ID         string     `json:"id" db:"id"`
	UserID     string     `json:"userId" db:"user_id"`
	BookID     string     `json:"bookId" db:"book_id"`
	BorrowedAt time.Time  `json:"borrowDate" db:"borrowed_at"`
	DueAt      time.Time  `json:"dueDate" db:"due_at"`
	ReturnedAt *time.Time `json:"returnDate" db:"returned_at"`
	Fine       int64      `json:"fine" db:"fine"`
	Status     Status     `json:"status" db:"status"`
}

type BorrowRequest struct {
	BookID string `json:"bookId" validate:"required"`
}

type BorrowedResponse struct {
	Borrowed bool `json:"borrowed"`
}

type SweepResponse struct {
	Updated int `json:"updated"`
}

type Session struct {
	ID        string    `db:"id"`
	UserID    string    `db:"user_id"`
	CreatedAt time.Time `db:"created_at"`
	ExpiresAt time.Time `db:"expires_at"`
}
