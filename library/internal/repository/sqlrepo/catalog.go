package sqlrepo

import (
	"context"
	"strings"

	"github.com/Astemirdum/perpustakaan/library/internal/errs"
	"github.com/Astemirdum/perpustakaan/library/internal/model"
	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
)

var bookColumns = []string{
	"id", "title", "author", "description", "publication_year", "publisher",
	"isbn", "category", "language", "page_count", "cover_url", "available",
}

func (r *Repository) ListBooks(ctx context.Context) ([]model.Book, error) {
	books := make([]model.Book, 0)
	q := r.qb.Select(bookColumns...).From(booksTableName).OrderBy("seq")
	if err := r.selectAll(ctx, r.db, &books, q); err != nil {
		return nil, err
	}
	return books, nil
}

func (r *Repository) GetBook(ctx context.Context, id string) (model.Book, error) {
	return r.getBook(ctx, r.db, id)
}

func (r *Repository) getBook(ctx context.Context, q sqlx.QueryerContext, id string) (model.Book, error) {
	var book model.Book
	err := r.get(ctx, q, &book,
		r.qb.Select(bookColumns...).From(booksTableName).Where(sq.Eq{"id": id}).Limit(1),
		errs.ErrBookNotFound)
	return book, err
}

func (r *Repository) CreateBook(ctx context.Context, b model.Book) (model.Book, error) {
	q := r.qb.Insert(booksTableName).
		Columns(bookColumns...).
		Values(b.ID, b.Title, b.Author, b.Description, b.PublicationYear, b.Publisher,
			b.ISBN, b.Category, b.Language, b.PageCount, b.CoverURL, b.Available)
	if _, err := r.exec(ctx, r.db, q); err != nil {
		return model.Book{}, uniqueViolation(err)
	}
	return b, nil
}

func (r *Repository) UpdateBook(ctx context.Context, id string, req model.UpdateBookRequest) (model.Book, error) {
	var book model.Book
	err := r.inTx(ctx, func(tx *sqlx.Tx) error {
		cur, err := r.getBook(ctx, tx, id)
		if err != nil {
			return err
		}
		book = req.Apply(cur)
		_, err = r.exec(ctx, tx, r.qb.Update(booksTableName).
			SetMap(map[string]any{
				"title":            book.Title,
				"author":           book.Author,
				"description":      book.Description,
				"publication_year": book.PublicationYear,
				"publisher":        book.Publisher,
				"isbn":             book.ISBN,
				"category":         book.Category,
				"language":         book.Language,
				"page_count":       book.PageCount,
				"cover_url":        book.CoverURL,
			}).
			Where(sq.Eq{"id": id}))
		return err
	})
	if err != nil {
		return model.Book{}, err
	}
	return book, nil
}

func (r *Repository) DeleteBook(ctx context.Context, id string) error {
	n, err := r.exec(ctx, r.db, r.qb.Delete(booksTableName).Where(sq.Eq{"id": id}))
	if err != nil {
		return err
	}
	if n == 0 {
		return errs.ErrBookNotFound
	}
	return nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func (r *Repository) SearchBooks(ctx context.Context, keyword string) ([]model.Book, error) {
	pattern := "%" + likeEscaper.Replace(strings.ToLower(keyword)) + "%"
	cond := sq.Or{}
	for _, col := range []string{"title", "author", "description", "category"} {
		cond = append(cond, sq.Expr("lower("+col+") like ? escape '\\'", pattern))
	}
	books := make([]model.Book, 0)
	q := r.qb.Select(bookColumns...).From(booksTableName).Where(cond).OrderBy("seq")
	if err := r.selectAll(ctx, r.db, &books, q); err != nil {
		return nil, err
	}
	return books, nil
}
