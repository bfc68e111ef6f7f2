package badger_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	pkgerrors "github.com/absmach/fedlearn/pkg/errors"
	"github.com/absmach/fedlearn/pkg/storage/badger"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testDB *badger.Database

func TestMain(m *testing.M) {
	dbPath := filepath.Join(os.TempDir(), "badger_test_"+uuid.NewString())

	var err error
	testDB, err = badger.NewDatabase(dbPath)
	if err != nil {
		panic(err)
	}

	code := m.Run()

	testDB.Close()
	os.RemoveAll(dbPath)

	os.Exit(code)
}

func TestSaveLoad(t *testing.T) {
	ctx := context.Background()
	key := uuid.NewString()

	cases := []struct {
		desc string
		key  string
		data []byte
		err  error
	}{
		{
			desc: "save new snapshot",
			key:  key,
			data: []byte("first"),
		},
		{
			desc: "overwrite snapshot",
			key:  key,
			data: []byte("second"),
		},
		{
			desc: "empty key",
			key:  "",
			data: []byte("x"),
			err:  pkgerrors.ErrEmptyKey,
		},
	}

	for _, tc := range cases {
		t.Run(tc.desc, func(t *testing.T) {
			err := testDB.Save(ctx, tc.key, tc.data)
			assert.ErrorIs(t, err, tc.err)
			if tc.err != nil {
				return
			}

			got, err := testDB.Load(ctx, tc.key)
			require.NoError(t, err)
			assert.Equal(t, tc.data, got)
		})
	}
}

func TestLoadMissing(t *testing.T) {
	_, err := testDB.Load(context.Background(), "invalid-id-that-does-not-exist")
	assert.ErrorIs(t, err, pkgerrors.ErrNotFound)
}

func TestDeleteAndList(t *testing.T) {
	ctx := context.Background()
	key := "list-" + uuid.NewString()

	require.NoError(t, testDB.Save(ctx, key, []byte("x")))

	keys, err := testDB.List(ctx)
	require.NoError(t, err)
	assert.Contains(t, keys, key)

	require.NoError(t, testDB.Delete(ctx, key))
	assert.ErrorIs(t, testDB.Delete(ctx, key), pkgerrors.ErrNotFound)

	keys, err = testDB.List(ctx)
	require.NoError(t, err)
	assert.NotContains(t, keys, key)
}
