package sqlite

import (
	"context"
	"fmt"
	"io/fs"
	"strings"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3" // sqlite3 database/sql driver
	"github.com/pkg/errors"
	"github.com/pressly/goose/v3"
)

const driverName = "sqlite3"

// NewSQLiteDB opens the database file at path and applies the goose
// migrations found under the "sqlite" directory of migrations.
// Use MemoryPath for a throwaway database.
func NewSQLiteDB(ctx context.Context, path string, migrations fs.FS) (*sqlx.DB, error) {
	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	db, err := sqlx.ConnectContext(ctx, driverName, path+sep+"_busy_timeout=5000")
	if err != nil {
		return nil, errors.Wrap(err, "sqlx.Connect")
	}
	// sqlite allows a single writer; one connection keeps transactions serialized.
	db.SetMaxOpenConns(1)

	goose.SetBaseFS(migrations)
	if err := goose.SetDialect("sqlite3"); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "goose.SetDialect")
	}
	if err := goose.Up(db.DB, "sqlite"); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "goose.Up")
	}
	return db, nil
}

// MemoryPath returns a path of a private in-memory database.
func MemoryPath(name string) string {
	return fmt.Sprintf("file:%s?mode=memory&cache=shared", name)
}
