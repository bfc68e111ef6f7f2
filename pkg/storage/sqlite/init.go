package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	pkgerrors "github.com/absmach/fedlearn/pkg/errors"
	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
	migrate "github.com/rubenv/sql-migrate"
)

var (
	ErrDBConnection = errors.New("database connection error")
	ErrDBQuery      = errors.New("database query error")
	ErrUpdate       = errors.New("update error")
	ErrDelete       = errors.New("delete error")
)

type Database struct {
	*sqlx.DB
}

func NewDatabase(path string) (*Database, error) {
	db, err := sqlx.Connect("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDBConnection, err)
	}

	// SQLite serialises writers; a single connection avoids SQLITE_BUSY.
	db.SetMaxOpenConns(1)
	db.SetConnMaxLifetime(5 * time.Minute)

	database := &Database{DB: db}

	if err := database.Migrate(); err != nil {
		return nil, err
	}

	return database, nil
}

func (db *Database) Migrate() error {
	migrations := &migrate.MemoryMigrationSource{
		Migrations: []*migrate.Migration{
			{
				Id: "1_create_snapshots",
				Up: []string{
					`CREATE TABLE IF NOT EXISTS snapshots (
						key TEXT PRIMARY KEY,
						data BLOB NOT NULL,
						updated_at TIMESTAMP NOT NULL
					)`,
				},
				Down: []string{
					`DROP TABLE IF EXISTS snapshots`,
				},
			},
		},
	}

	if _, err := migrate.Exec(db.DB.DB, "sqlite3", migrations, migrate.Up); err != nil {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}

	return nil
}

func (db *Database) Save(ctx context.Context, key string, data []byte) error {
	if key == "" {
		return pkgerrors.ErrEmptyKey
	}

	q := `INSERT INTO snapshots (key, data, updated_at) VALUES (:key, :data, :updated_at)
		ON CONFLICT(key) DO UPDATE SET data = excluded.data, updated_at = excluded.updated_at`
	row := dbSnapshot{Key: key, Data: data, UpdatedAt: time.Now().UTC()}
	if _, err := db.NamedExecContext(ctx, q, row); err != nil {
		return fmt.Errorf("%w: %w", ErrUpdate, err)
	}

	return nil
}

func (db *Database) Load(ctx context.Context, key string) ([]byte, error) {
	if key == "" {
		return nil, pkgerrors.ErrEmptyKey
	}

	var row dbSnapshot
	err := db.GetContext(ctx, &row, `SELECT key, data, updated_at FROM snapshots WHERE key = ?`, key)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return nil, pkgerrors.ErrNotFound
	case err != nil:
		return nil, fmt.Errorf("%w: %w", ErrDBQuery, err)
	}

	return row.Data, nil
}

func (db *Database) Delete(ctx context.Context, key string) error {
	if key == "" {
		return pkgerrors.ErrEmptyKey
	}

	res, err := db.ExecContext(ctx, `DELETE FROM snapshots WHERE key = ?`, key)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrDelete, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return pkgerrors.ErrNotFound
	}

	return nil
}

func (db *Database) List(ctx context.Context) ([]string, error) {
	var keys []string
	if err := db.SelectContext(ctx, &keys, `SELECT key FROM snapshots ORDER BY key`); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDBQuery, err)
	}

	return keys, nil
}

type dbSnapshot struct {
	Key       string    `db:"key"`
	Data      []byte    `db:"data"`
	UpdatedAt time.Time `db:"updated_at"`
}
