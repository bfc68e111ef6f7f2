package cli

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/absmach/fedlearn"
	"github.com/absmach/fedlearn/participant"
	"github.com/absmach/fedlearn/pkg/coordinator"
	"github.com/absmach/fedlearn/pkg/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplyTrainerTarget(t *testing.T) {
	cases := []struct {
		desc   string
		kind   string
		target string
		want   fedlearn.TrainerConfig
	}{
		{
			desc:   "host command",
			kind:   "host",
			target: "python3",
			want:   fedlearn.TrainerConfig{Kind: "host", Command: "python3"},
		},
		{
			desc:   "local wasm module",
			kind:   "wasm",
			target: "./build/train.wasm",
			want:   fedlearn.TrainerConfig{Kind: "wasm", ModulePath: "./build/train.wasm"},
		},
		{
			desc:   "absolute wasm module",
			kind:   "wasm",
			target: "/opt/trainers/mnist",
			want:   fedlearn.TrainerConfig{Kind: "wasm", ModulePath: "/opt/trainers/mnist"},
		},
		{
			desc:   "oci image",
			kind:   "wasm",
			target: "localhost:5000/trainers/mnist:v1",
			want:   fedlearn.TrainerConfig{Kind: "wasm", ImageURL: "localhost:5000/trainers/mnist:v1"},
		},
	}

	for _, tc := range cases {
		t.Run(tc.desc, func(t *testing.T) {
			c := fedlearn.Config{Trainer: fedlearn.TrainerConfig{Kind: tc.kind}}
			applyTrainerTarget(&c, tc.target)
			assert.Equal(t, tc.want, c.Trainer)
		})
	}
}

func TestSnapshotsCmd(t *testing.T) {
	dir := t.TempDir()
	c := fedlearn.DefaultConfig()
	c.Storage.Type = "file"
	c.Storage.FileDir = dir
	SetConfig(c)
	t.Cleanup(func() { SetConfig(fedlearn.DefaultConfig()) })

	session, err := coordinator.NewSession("token", 2)
	require.NoError(t, err)
	sessionData, err := session.Marshal()
	require.NoError(t, err)
	data, err := participant.Snapshot{
		Version: 1,
		State:   participant.PostTraining,
		Round:   4,
		Session: sessionData,
		SavedAt: time.Now().UTC(),
	}.Encode()
	require.NoError(t, err)

	repo, err := storage.NewFileStorage(dir)
	require.NoError(t, err)
	require.NoError(t, repo.Save(context.Background(), "participant", data))
	require.NoError(t, repo.Close())

	run := func(args ...string) (string, string) {
		var stdout, stderr bytes.Buffer
		cmd := NewSnapshotsCmd()
		cmd.SetOut(&stdout)
		cmd.SetErr(&stderr)
		cmd.SetArgs(args)
		require.NoError(t, cmd.Execute())

		return stdout.String(), stderr.String()
	}

	out, errOut := run("list")
	assert.Empty(t, errOut)
	assert.Contains(t, out, "participant")

	out, errOut = run("show", "participant")
	assert.Empty(t, errOut)
	assert.Contains(t, out, session.ParticipantID)
	assert.Contains(t, out, "post_training")
	assert.NotContains(t, out, "private")

	out, errOut = run("delete", "participant")
	assert.Empty(t, errOut)
	assert.Contains(t, out, "ok")

	_, errOut = run("show", "participant")
	assert.Contains(t, errOut, "not found")

	_, errOut = run("show")
	assert.Empty(t, errOut)
	assert.NoFileExists(t, filepath.Join(dir, "participant.snapshot"))
}
