package registry_test

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/absmach/fedlearn/pkg/registry"
	ocispec "github.com/opencontainers/image-spec/specs-go/v1"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"oras.land/oras-go/v2/content"
	"oras.land/oras-go/v2/content/memory"
)

const wasmMediaType = "application/wasm"

func push(t *testing.T, store *memory.Store, mediaType string, data []byte) ocispec.Descriptor {
	t.Helper()

	desc := content.NewDescriptorFromBytes(mediaType, data)
	require.NoError(t, store.Push(context.Background(), desc, bytes.NewReader(data)))

	return desc
}

func tagManifest(t *testing.T, store *memory.Store, tag string, layers ...ocispec.Descriptor) {
	t.Helper()

	manifest := ocispec.Manifest{
		MediaType: ocispec.MediaTypeImageManifest,
		Config:    ocispec.DescriptorEmptyJSON,
		Layers:    layers,
	}
	manifest.SchemaVersion = 2
	data, err := json.Marshal(manifest)
	require.NoError(t, err)

	desc := push(t, store, ocispec.MediaTypeImageManifest, data)
	require.NoError(t, store.Tag(context.Background(), desc, tag))
}

func TestFetch(t *testing.T) {
	t.Parallel()

	program := bytes.Repeat([]byte{0x00, 0x61, 0x73, 0x6d}, 64)

	store := memory.New()
	readme := push(t, store, "text/markdown", []byte("# mnist"))
	module := push(t, store, wasmMediaType, program)
	tagManifest(t, store, "v1", readme, module)
	tagManifest(t, store, "empty")

	cases := []struct {
		desc string
		tag  string
		data []byte
		err  error
	}{
		{
			desc: "largest layer",
			tag:  "v1",
			data: program,
		},
		{
			desc: "manifest without layers",
			tag:  "empty",
			err:  registry.ErrNoLayers,
		},
		{
			desc: "unknown tag",
			tag:  "v2",
			err:  assert.AnError,
		},
	}

	for _, tc := range cases {
		t.Run(tc.desc, func(t *testing.T) {
			t.Parallel()
			data, err := registry.Fetch(context.Background(), store, tc.tag)
			switch tc.err {
			case nil:
				require.NoError(t, err)
				assert.Equal(t, tc.data, data)
			case assert.AnError:
				assert.Error(t, err)
			default:
				assert.ErrorIs(t, err, tc.err)
			}
		})
	}
}

func TestNewClient(t *testing.T) {
	t.Parallel()

	cases := []struct {
		desc string
		cfg  registry.Config
		err  error
	}{
		{
			desc: "anonymous",
			cfg:  registry.Config{},
		},
		{
			desc: "token",
			cfg:  registry.Config{Authenticate: true, Token: "pat"},
		},
		{
			desc: "username and password",
			cfg:  registry.Config{Authenticate: true, Username: "user", Password: "pass"},
		},
		{
			desc: "missing credentials",
			cfg:  registry.Config{Authenticate: true, Username: "user"},
			err:  registry.ErrMissingCreds,
		},
	}

	for _, tc := range cases {
		t.Run(tc.desc, func(t *testing.T) {
			t.Parallel()
			_, err := registry.NewClient(tc.cfg, slog.Default())
			assert.ErrorIs(t, err, tc.err)
		})
	}
}

func TestPullInvalidReference(t *testing.T) {
	t.Parallel()

	c, err := registry.NewClient(registry.Config{}, slog.Default())
	require.NoError(t, err)

	_, err = c.Pull(context.Background(), "not a reference")
	assert.Error(t, err)
}
