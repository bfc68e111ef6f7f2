package fedlearn_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/absmach/fedlearn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigSaveLoad(t *testing.T) {
	t.Parallel()

	cfg := fedlearn.DefaultConfig()
	cfg.Participant.Name = "brave-turing"
	cfg.Trainer.Command = "python3"
	cfg.Trainer.Args = []string{"train.py", "--epochs=2"}
	cfg.Storage.Type = "sqlite"

	path := filepath.Join(t.TempDir(), "fedlearn.toml")
	require.NoError(t, cfg.Save(path))

	loaded, err := fedlearn.LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, *loaded)
}

func TestLoadConfigDefaults(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "fedlearn.toml")
	require.NoError(t, os.WriteFile(path, []byte("[participant]\nname = \"calm-hopper\"\n"), 0o600))

	cfg, err := fedlearn.LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "calm-hopper", cfg.Participant.Name)
	assert.Equal(t, "http", cfg.Coordinator.Kind)
	assert.Equal(t, "file", cfg.Storage.Type)
}

func TestLoadConfigErrors(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	_, err := fedlearn.LoadConfig(filepath.Join(dir, "missing.toml"))
	assert.Error(t, err)

	path := filepath.Join(dir, "broken.toml")
	require.NoError(t, os.WriteFile(path, []byte("[participant\n"), 0o600))
	_, err = fedlearn.LoadConfig(path)
	assert.Error(t, err)
}

func TestConfigEnv(t *testing.T) {
	t.Parallel()

	cases := []struct {
		desc    string
		mutate  func(*fedlearn.Config)
		present map[string]string
		absent  []string
	}{
		{
			desc: "http coordinator",
			mutate: func(c *fedlearn.Config) {
				c.Trainer.Command = "python3"
				c.Trainer.Args = []string{"train.py", "-v"}
			},
			present: map[string]string{
				"FL_COORDINATOR_URL":          "http://localhost:8081",
				"FL_PARTICIPANT_COORDINATOR":  "http",
				"FL_PARTICIPANT_SCALAR":       "1",
				"FL_TRAINER_HOST_COMMAND":     "python3",
				"FL_TRAINER_HOST_ARGS":        "train.py,-v",
				"FL_PARTICIPANT_STORAGE_TYPE": "file",
			},
			absent: []string{"FL_MQTT_URL", "FL_PARTICIPANT_TOKEN", "FL_TRAINER_WASM_IMAGE_URL"},
		},
		{
			desc: "mqtt coordinator",
			mutate: func(c *fedlearn.Config) {
				c.Coordinator.Kind = "mqtt"
				c.Coordinator.URL = "tcp://broker:1883"
				c.Coordinator.DomainID = "d1"
				c.Coordinator.ChannelID = "c1"
				c.Participant.Scalar = 0.5
			},
			present: map[string]string{
				"FL_MQTT_URL":           "tcp://broker:1883",
				"FL_MQTT_DOMAIN_ID":     "d1",
				"FL_MQTT_CHANNEL_ID":    "c1",
				"FL_PARTICIPANT_SCALAR": "0.5",
			},
			absent: []string{"FL_COORDINATOR_URL", "FL_MQTT_PASSWORD"},
		},
	}

	for _, tc := range cases {
		t.Run(tc.desc, func(t *testing.T) {
			t.Parallel()
			cfg := fedlearn.DefaultConfig()
			tc.mutate(&cfg)

			vars := cfg.Env()
			for k, v := range tc.present {
				assert.Equal(t, v, vars[k], k)
			}
			for _, k := range tc.absent {
				assert.NotContains(t, vars, k)
			}
		})
	}
}
