package sqlrepo

import (
	"context"

	"github.com/Astemirdum/perpustakaan/library/internal/errs"
	"github.com/Astemirdum/perpustakaan/library/internal/model"
	sq "github.com/Masterminds/squirrel"
)

func (r *Repository) SaveSession(ctx context.Context, s model.Session) error {
	_, err := r.exec(ctx, r.db, r.qb.Insert(sessionsTableName).
		Columns("id", "user_id", "created_at", "expires_at").
		Values(s.ID, s.UserID, s.CreatedAt, s.ExpiresAt))
	return err
}

func (r *Repository) GetSession(ctx context.Context, id string) (model.Session, error) {
	var s model.Session
	err := r.get(ctx, r.db, &s,
		r.qb.Select("id", "user_id", "created_at", "expires_at").
			From(sessionsTableName).
			Where(sq.Eq{"id": id}),
		errs.ErrSessionClosed)
	return s, err
}

func (r *Repository) DeleteSession(ctx context.Context, id string) error {
	_, err := r.exec(ctx, r.db, r.qb.Delete(sessionsTableName).Where(sq.Eq{"id": id}))
	return err
}
