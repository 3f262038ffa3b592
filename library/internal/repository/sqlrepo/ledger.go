package sqlrepo

import (
	"context"
	"time"

	"github.com/Astemirdum/perpustakaan/library/internal/errs"
	"github.com/Astemirdum/perpustakaan/library/internal/model"
	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
)

var borrowColumns = []string{
	"id", "user_id", "book_id", "borrowed_at", "due_at", "returned_at", "fine", "status",
}

var openStatuses = []string{string(model.StatusActive), string(model.StatusOverdue)}

// CreateBorrow checks the borrow preconditions and flips the availability
// flag with a conditional update inside one transaction, so two concurrent
// borrows of the same book cannot both succeed.
func (r *Repository) CreateBorrow(ctx context.Context, rec model.BorrowRecord) (model.BorrowRecord, error) {
	err := r.inTx(ctx, func(tx *sqlx.Tx) error {
		if _, err := r.getBook(ctx, tx, rec.BookID); err != nil {
			return err
		}
		if _, err := r.getUser(ctx, tx, sq.Eq{"id": rec.UserID}); err != nil {
			return err
		}

		var open int
		if err := r.get(ctx, tx, &open,
			r.qb.Select("count(*)").From(borrowsTableName).Where(sq.Eq{
				"user_id": rec.UserID,
				"book_id": rec.BookID,
				"status":  openStatuses,
			}), nil); err != nil {
			return err
		}
		if open > 0 {
			return errs.ErrAlreadyBorrowed
		}

		n, err := r.exec(ctx, tx, r.qb.Update(booksTableName).
			Set("available", false).
			Where(sq.Eq{"id": rec.BookID, "available": true}))
		if err != nil {
			return err
		}
		if n == 0 {
			return errs.ErrBookUnavailable
		}

		_, err = r.exec(ctx, tx, r.qb.Insert(borrowsTableName).
			Columns(borrowColumns...).
			Values(rec.ID, rec.UserID, rec.BookID, rec.BorrowedAt, rec.DueAt, rec.ReturnedAt, rec.Fine, string(rec.Status)))
		return uniqueViolation(err)
	})
	if err != nil {
		return model.BorrowRecord{}, err
	}
	return rec, nil
}

func (r *Repository) GetBorrow(ctx context.Context, id string) (model.BorrowRecord, error) {
	return r.getBorrow(ctx, r.db, id)
}

func (r *Repository) getBorrow(ctx context.Context, q sqlx.QueryerContext, id string) (model.BorrowRecord, error) {
	var rec model.BorrowRecord
	err := r.get(ctx, q, &rec,
		r.qb.Select(borrowColumns...).From(borrowsTableName).Where(sq.Eq{"id": id}).Limit(1),
		errs.ErrBorrowNotFound)
	return rec, err
}

func (r *Repository) ReturnBorrow(ctx context.Context, id string, returnedAt time.Time, fine int64, restoreAvailability bool) (model.BorrowRecord, error) {
	var rec model.BorrowRecord
	err := r.inTx(ctx, func(tx *sqlx.Tx) error {
		var err error
		if rec, err = r.getBorrow(ctx, tx, id); err != nil {
			return err
		}
		if !rec.Status.Open() {
			return errs.ErrAlreadyReturned
		}
		n, err := r.exec(ctx, tx, r.qb.Update(borrowsTableName).
			SetMap(map[string]any{
				"status":      string(model.StatusReturned),
				"returned_at": returnedAt,
				"fine":        fine,
			}).
			Where(sq.Eq{"id": id, "status": openStatuses}))
		if err != nil {
			return err
		}
		if n == 0 {
			return errs.ErrAlreadyReturned
		}
		if restoreAvailability {
			if _, err := r.exec(ctx, tx, r.qb.Update(booksTableName).
				Set("available", true).
				Where(sq.Eq{"id": rec.BookID})); err != nil {
				return err
			}
		}
		rec.Status = model.StatusReturned
		rec.ReturnedAt = &returnedAt
		rec.Fine = fine
		return nil
	})
	if err != nil {
		return model.BorrowRecord{}, err
	}
	return rec, nil
}

func (r *Repository) MarkOverdue(ctx context.Context, id string, fine int64) error {
	n, err := r.exec(ctx, r.db, r.qb.Update(borrowsTableName).
		SetMap(map[string]any{
			"status": string(model.StatusOverdue),
			"fine":   fine,
		}).
		Where(sq.Eq{"id": id, "status": openStatuses}))
	if err != nil {
		return err
	}
	if n > 0 {
		return nil
	}
	if _, err := r.GetBorrow(ctx, id); err != nil {
		return err
	}
	return errs.ErrAlreadyReturned
}

func (r *Repository) ListBorrowsByUser(ctx context.Context, userID string, statuses ...model.Status) ([]model.BorrowRecord, error) {
	where := sq.Eq{"user_id": userID}
	if len(statuses) > 0 {
		where["status"] = statusStrings(statuses)
	}
	return r.listBorrows(ctx, where)
}

func (r *Repository) ListBorrowsByStatus(ctx context.Context, statuses ...model.Status) ([]model.BorrowRecord, error) {
	where := sq.Eq{}
	if len(statuses) > 0 {
		where["status"] = statusStrings(statuses)
	}
	return r.listBorrows(ctx, where)
}

func (r *Repository) listBorrows(ctx context.Context, where sq.Eq) ([]model.BorrowRecord, error) {
	records := make([]model.BorrowRecord, 0)
	q := r.qb.Select(borrowColumns...).From(borrowsTableName).Where(where).OrderBy("seq")
	if err := r.selectAll(ctx, r.db, &records, q); err != nil {
		return nil, err
	}
	return records, nil
}

func statusStrings(statuses []model.Status) []string {
	out := make([]string, 0, len(statuses))
	for _, s := range statuses {
		out = append(out, string(s))
	}
	return out
}
