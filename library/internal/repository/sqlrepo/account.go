package sqlrepo

import (
	"context"

	"github.com/Astemirdum/perpustakaan/library/internal/errs"
	"github.com/Astemirdum/perpustakaan/library/internal/model"
	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
)

var userColumns = []string{
	"id", "username", "password_hash", "name", "email", "phone", "address", "role", "created_at",
}

func (r *Repository) CreateUser(ctx context.Context, u model.User) (model.User, error) {
	q := r.qb.Insert(usersTableName).
		Columns(userColumns...).
		Values(u.ID, u.Username, u.PasswordHash, u.Name, u.Email, u.Phone, u.Address, string(u.Role), u.CreatedAt)
	if _, err := r.exec(ctx, r.db, q); err != nil {
		return model.User{}, uniqueViolation(err)
	}
	return u, nil
}

func (r *Repository) GetUser(ctx context.Context, id string) (model.User, error) {
	return r.getUser(ctx, r.db, sq.Eq{"id": id})
}

func (r *Repository) GetUserByUsername(ctx context.Context, username string) (model.User, error) {
	return r.getUser(ctx, r.db, sq.Eq{"username": username})
}

func (r *Repository) getUser(ctx context.Context, q sqlx.QueryerContext, where sq.Eq) (model.User, error) {
	var u model.User
	err := r.get(ctx, q, &u,
		r.qb.Select(userColumns...).From(usersTableName).Where(where).Limit(1),
		errs.ErrUserNotFound)
	return u, err
}

func (r *Repository) UpdateUser(ctx context.Context, id string, req model.ProfileUpdateRequest) (model.User, error) {
	var user model.User
	err := r.inTx(ctx, func(tx *sqlx.Tx) error {
		cur, err := r.getUser(ctx, tx, sq.Eq{"id": id})
		if err != nil {
			return err
		}
		user = req.Apply(cur)
		_, err = r.exec(ctx, tx, r.qb.Update(usersTableName).
			SetMap(map[string]any{
				"username": user.Username,
				"name":     user.Name,
				"email":    user.Email,
				"phone":    user.Phone,
				"address":  user.Address,
			}).
			Where(sq.Eq{"id": id}))
		return uniqueViolation(err)
	})
	if err != nil {
		return model.User{}, err
	}
	return user, nil
}

func (r *Repository) UpdatePassword(ctx context.Context, id, passwordHash string) error {
	n, err := r.exec(ctx, r.db, r.qb.Update(usersTableName).
		Set("password_hash", passwordHash).
		Where(sq.Eq{"id": id}))
	if err != nil {
		return err
	}
	if n == 0 {
		return errs.ErrUserNotFound
	}
	return nil
}
