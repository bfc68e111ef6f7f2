package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	pkgerrors "github.com/absmach/fedlearn/pkg/errors"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
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

func NewDatabase(host, port, user, pass, name, sslMode string) (*Database, error) {
	dsn := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s", host, port, user, pass, name, sslMode)
	db, err := sqlx.Connect("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDBConnection, err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)
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
						data BYTEA NOT NULL,
						updated_at TIMESTAMPTZ NOT NULL
					)`,
				},
				Down: []string{
					`DROP TABLE IF EXISTS snapshots`,
				},
			},
		},
	}

	if _, err := migrate.Exec(db.DB.DB, "postgres", migrations, migrate.Up); err != nil {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}

	return nil
}

func (db *Database) Save(ctx context.Context, key string, data []byte) error {
	if key == "" {
		return pkgerrors.ErrEmptyKey
	}

	q := `INSERT INTO snapshots (key, data, updated_at) VALUES (:key, :data, :updated_at)
		ON CONFLICT (key) DO UPDATE SET data = EXCLUDED.data, updated_at = EXCLUDED.updated_at`
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
	err := db.GetContext(ctx, &row, `SELECT key, data, updated_at FROM snapshots WHERE key = $1`, key)
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

	res, err := db.ExecContext(ctx, `DELETE FROM snapshots WHERE key = $1`, key)
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
