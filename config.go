package fedlearn

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/pelletier/go-toml"
)

const filePermission = 0o600

// Config is the participant configuration written by the CLI init command.
type Config struct {
	Participant ParticipantConfig `toml:"participant"`
	Coordinator CoordinatorConfig `toml:"coordinator"`
	Trainer     TrainerConfig     `toml:"trainer"`
	Storage     StorageConfig     `toml:"storage"`
}

type ParticipantConfig struct {
	Name     string  `toml:"name"`
	Mode     string  `toml:"mode"`
	Token    string  `toml:"token"`
	Scalar   float64 `toml:"scalar"`
	HTTPPort string  `toml:"http_port"`
	URL      string  `toml:"url"`
}

type CoordinatorConfig struct {
	Kind      string `toml:"kind"`
	URL       string `toml:"url"`
	Script    string `toml:"script"`
	DomainID  string `toml:"domain_id"`
	ChannelID string `toml:"channel_id"`
	Username  string `toml:"username"`
	Password  string `toml:"password"`
}

type TrainerConfig struct {
	Kind       string   `toml:"kind"`
	Command    string   `toml:"command"`
	Args       []string `toml:"args"`
	ModulePath string   `toml:"module_path"`
	ImageURL   string   `toml:"image_url"`
}

type StorageConfig struct {
	Type          string `toml:"type"`
	EncryptionKey string `toml:"encryption_key"`
	FileDir       string `toml:"file_dir"`
	SQLitePath    string `toml:"sqlite_path"`
	BadgerPath    string `toml:"badger_path"`
	PostgresHost  string `toml:"postgres_host"`
	PostgresPort  string `toml:"postgres_port"`
	PostgresUser  string `toml:"postgres_user"`
	PostgresPass  string `toml:"postgres_pass"`
	PostgresDB    string `toml:"postgres_db"`
}

func DefaultConfig() Config {
	return Config{
		Participant: ParticipantConfig{
			Mode:     "sync",
			Scalar:   1,
			HTTPPort: "7080",
			URL:      "http://localhost:7080",
		},
		Coordinator: CoordinatorConfig{
			Kind: "http",
			URL:  "http://localhost:8081",
		},
		Trainer: TrainerConfig{
			Kind: "host",
		},
		Storage: StorageConfig{
			Type:         "file",
			FileDir:      "./data/snapshots",
			SQLitePath:   "./data/fedlearn.db",
			BadgerPath:   "./data/badger",
			PostgresHost: "localhost",
			PostgresPort: "5432",
			PostgresUser: "fedlearn",
			PostgresPass: "fedlearn",
			PostgresDB:   "fedlearn",
		},
	}
}

func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	tree, err := toml.Load(string(data))
	if err != nil {
		return nil, fmt.Errorf("error parsing config file: %w", err)
	}

	cfg := DefaultConfig()
	if err := tree.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	return &cfg, nil
}

func (c Config) Save(path string) error {
	data, err := toml.Marshal(c)
	if err != nil {
		return fmt.Errorf("error marshaling config: %w", err)
	}

	if err := os.WriteFile(path, data, filePermission); err != nil {
		return fmt.Errorf("error writing config file: %w", err)
	}

	return nil
}

// Env returns the environment the participant service reads its
// configuration from. Empty values are left out.
func (c Config) Env() map[string]string {
	vars := map[string]string{
		"FL_PARTICIPANT_INSTANCE_ID":  c.Participant.Name,
		"FL_PARTICIPANT_MODE":         c.Participant.Mode,
		"FL_PARTICIPANT_TOKEN":        c.Participant.Token,
		"FL_PARTICIPANT_HTTP_PORT":    c.Participant.HTTPPort,
		"FL_PARTICIPANT_COORDINATOR":  c.Coordinator.Kind,
		"FL_PARTICIPANT_SCRIPT":       c.Coordinator.Script,
		"FL_PARTICIPANT_TRAINER":      c.Trainer.Kind,
		"FL_TRAINER_HOST_COMMAND":     c.Trainer.Command,
		"FL_TRAINER_HOST_ARGS":        strings.Join(c.Trainer.Args, ","),
		"FL_TRAINER_WASM_MODULE_PATH": c.Trainer.ModulePath,
		"FL_TRAINER_WASM_IMAGE_URL":   c.Trainer.ImageURL,
		"FL_TRAINER_WASM_ARGS":        strings.Join(c.Trainer.Args, ","),

		"FL_PARTICIPANT_STORAGE_TYPE":           c.Storage.Type,
		"FL_PARTICIPANT_STORAGE_ENCRYPTION_KEY": c.Storage.EncryptionKey,
		"FL_PARTICIPANT_STORAGE_FILE_DIR":       c.Storage.FileDir,
		"FL_PARTICIPANT_STORAGE_SQLITE_PATH":    c.Storage.SQLitePath,
		"FL_PARTICIPANT_STORAGE_BADGER_PATH":    c.Storage.BadgerPath,
		"FL_PARTICIPANT_STORAGE_POSTGRES_HOST":  c.Storage.PostgresHost,
		"FL_PARTICIPANT_STORAGE_POSTGRES_PORT":  c.Storage.PostgresPort,
		"FL_PARTICIPANT_STORAGE_POSTGRES_USER":  c.Storage.PostgresUser,
		"FL_PARTICIPANT_STORAGE_POSTGRES_PASS":  c.Storage.PostgresPass,
		"FL_PARTICIPANT_STORAGE_POSTGRES_DB":    c.Storage.PostgresDB,
	}
	if c.Participant.Scalar > 0 {
		vars["FL_PARTICIPANT_SCALAR"] = strconv.FormatFloat(c.Participant.Scalar, 'f', -1, 64)
	}

	switch c.Coordinator.Kind {
	case "mqtt":
		vars["FL_MQTT_URL"] = c.Coordinator.URL
		vars["FL_MQTT_DOMAIN_ID"] = c.Coordinator.DomainID
		vars["FL_MQTT_CHANNEL_ID"] = c.Coordinator.ChannelID
		vars["FL_MQTT_USERNAME"] = c.Coordinator.Username
		vars["FL_MQTT_PASSWORD"] = c.Coordinator.Password
	default:
		vars["FL_COORDINATOR_URL"] = c.Coordinator.URL
	}

	for k, v := range vars {
		if v == "" {
			delete(vars, k)
		}
	}

	return vars
}
