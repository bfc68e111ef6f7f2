package storage

import (
	"fmt"

	"github.com/absmach/fedlearn/pkg/crypto"
	"github.com/absmach/fedlearn/pkg/storage/badger"
	"github.com/absmach/fedlearn/pkg/storage/postgres"
	"github.com/absmach/fedlearn/pkg/storage/sqlite"
)

type Config struct {
	Type string `env:"TYPE" envDefault:"file"`

	// EncryptionKey is a hex encoded AES-256 key. Snapshots are stored in
	// plaintext when it is empty.
	EncryptionKey string `env:"ENCRYPTION_KEY"`

	FileDir string `env:"FILE_DIR" envDefault:"./data/snapshots"`

	PostgresHost    string `env:"POSTGRES_HOST"    envDefault:"localhost"`
	PostgresPort    string `env:"POSTGRES_PORT"    envDefault:"5432"`
	PostgresUser    string `env:"POSTGRES_USER"    envDefault:"fedlearn"`
	PostgresPass    string `env:"POSTGRES_PASS"    envDefault:"fedlearn"`
	PostgresDB      string `env:"POSTGRES_DB"      envDefault:"fedlearn"`
	PostgresSSLMode string `env:"POSTGRES_SSLMODE" envDefault:"disable"`

	SQLitePath string `env:"SQLITE_PATH" envDefault:"./data/fedlearn.db"`

	BadgerPath string `env:"BADGER_PATH" envDefault:"./data/badger"`
}

func NewRepository(cfg Config) (Repository, error) {
	repo, err := newBackend(cfg)
	if err != nil {
		return nil, err
	}

	if cfg.EncryptionKey == "" {
		return repo, nil
	}

	key, err := crypto.ParseKey(cfg.EncryptionKey)
	if err != nil {
		repo.Close()

		return nil, err
	}

	return NewEncryptedStorage(key, repo)
}

func newBackend(cfg Config) (Repository, error) {
	switch cfg.Type {
	case "postgres":
		return postgres.NewDatabase(
			cfg.PostgresHost,
			cfg.PostgresPort,
			cfg.PostgresUser,
			cfg.PostgresPass,
			cfg.PostgresDB,
			cfg.PostgresSSLMode,
		)
	case "sqlite":
		return sqlite.NewDatabase(cfg.SQLitePath)
	case "badger":
		return badger.NewDatabase(cfg.BadgerPath)
	case "file":
		return NewFileStorage(cfg.FileDir)
	case "memory":
		return NewInMemoryStorage(), nil
	default:
		return nil, fmt.Errorf("unsupported storage type: %s", cfg.Type)
	}
}
