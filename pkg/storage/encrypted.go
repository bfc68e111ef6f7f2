package storage

import (
	"context"
	"fmt"

	"github.com/absmach/fedlearn/pkg/crypto"
)

var _ Repository = (*encryptedStorage)(nil)

type encryptedStorage struct {
	key  []byte
	repo Repository
}

// NewEncryptedStorage seals values with AES-256-GCM before handing them to
// repo. Keys are stored in the clear.
func NewEncryptedStorage(key []byte, repo Repository) (Repository, error) {
	if len(key) != crypto.KeySize {
		return nil, crypto.ErrKeySize
	}

	return &encryptedStorage{key: key, repo: repo}, nil
}

func (es *encryptedStorage) Save(ctx context.Context, key string, data []byte) error {
	sealed, err := crypto.Encrypt(data, es.key)
	if err != nil {
		return fmt.Errorf("failed to encrypt snapshot: %w", err)
	}

	return es.repo.Save(ctx, key, sealed)
}

func (es *encryptedStorage) Load(ctx context.Context, key string) ([]byte, error) {
	sealed, err := es.repo.Load(ctx, key)
	if err != nil {
		return nil, err
	}

	data, err := crypto.Decrypt(sealed, es.key)
	if err != nil {
		return nil, fmt.Errorf("failed to decrypt snapshot: %w", err)
	}

	return data, nil
}

func (es *encryptedStorage) Delete(ctx context.Context, key string) error {
	return es.repo.Delete(ctx, key)
}

func (es *encryptedStorage) List(ctx context.Context) ([]string, error) {
	return es.repo.List(ctx)
}

func (es *encryptedStorage) Close() error {
	return es.repo.Close()
}
