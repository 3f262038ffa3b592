// Package sqlrepo implements the repositories on top of sqlx. The same
// queries run on postgres (pgx driver) and sqlite3; only the placeholder
// format differs.
package sqlrepo

import (
	"context"
	"database/sql"
	"strings"

	"github.com/Astemirdum/perpustakaan/library/internal/errs"
	"github.com/Astemirdum/perpustakaan/library/internal/repository"
	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jmoiron/sqlx"
	"github.com/mattn/go-sqlite3"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

var _ repository.Repository = (*Repository)(nil)

type Repository struct {
	db  *sqlx.DB
	qb  sq.StatementBuilderType
	log *zap.Logger
}

func NewRepository(db *sqlx.DB, log *zap.Logger) (*Repository, error) {
	if db == nil {
		return nil, errors.New("nil db")
	}
	return &Repository{
		db:  db,
		qb:  sq.StatementBuilder.PlaceholderFormat(placeholder(db.DriverName())),
		log: log.Named("repo"),
	}, nil
}

func (r *Repository) Close() error {
	return r.db.Close()
}

const (
	booksTableName    = `books`
	usersTableName    = `users`
	borrowsTableName  = `borrow_records`
	sessionsTableName = `sessions`
)

func placeholder(driver string) sq.PlaceholderFormat {
	if sqlx.BindType(driver) == sqlx.DOLLAR {
		return sq.Dollar
	}
	return sq.Question
}

// inTx runs fn in a transaction and commits when fn returns nil.
func (r *Repository) inTx(ctx context.Context, fn func(tx *sqlx.Tx) error) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "begin tx")
	}
	defer tx.Rollback() //nolint:errcheck

	if err := fn(tx); err != nil {
		return err
	}
	return errors.Wrap(tx.Commit(), "commit tx")
}

func (r *Repository) get(ctx context.Context, q sqlx.QueryerContext, dest any, b sq.Sqlizer, notFound error) error {
	query, args, err := b.ToSql()
	if err != nil {
		return err
	}
	if err := sqlx.GetContext(ctx, q, dest, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return notFound
		}
		r.log.Error("get", zap.String("q", query), zap.Any("args", args), zap.Error(err))
		return err
	}
	return nil
}

func (r *Repository) selectAll(ctx context.Context, q sqlx.QueryerContext, dest any, b sq.Sqlizer) error {
	query, args, err := b.ToSql()
	if err != nil {
		return err
	}
	r.log.Debug("select", zap.String("query", query), zap.Any("args", args))
	if err := sqlx.SelectContext(ctx, q, dest, query, args...); err != nil {
		r.log.Error("select", zap.String("q", query), zap.Any("args", args), zap.Error(err))
		return err
	}
	return nil
}

// exec returns the number of affected rows.
func (r *Repository) exec(ctx context.Context, e sqlx.ExecerContext, b sq.Sqlizer) (int64, error) {
	query, args, err := b.ToSql()
	if err != nil {
		return 0, err
	}
	res, err := e.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// uniqueViolation maps a unique constraint error of either driver onto the
// domain conflict it stands for.
func uniqueViolation(err error) error {
	var target string
	var pgErr *pgconn.PgError
	var liteErr sqlite3.Error
	switch {
	case errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation:
		target = pgErr.ConstraintName
	case errors.As(err, &liteErr) && liteErr.ExtendedCode == sqlite3.ErrConstraintUnique:
		target = liteErr.Error()
	default:
		return err
	}
	switch {
	case strings.Contains(target, "username"):
		return errs.ErrUsernameTaken
	case strings.Contains(target, "email"):
		return errs.ErrEmailTaken
	case strings.Contains(target, borrowsTableName):
		return errs.ErrAlreadyBorrowed
	default:
		return errs.ErrConflict
	}
}
