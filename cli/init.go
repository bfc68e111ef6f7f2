package cli

import (
	"errors"
	"net/url"
	"strings"

	"github.com/0x6flab/namegenerator"
	"github.com/absmach/fedlearn"
	smqerrors "github.com/absmach/supermq/pkg/errors"
	"github.com/charmbracelet/huh"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var (
	errFailedForm   = smqerrors.New("failed to read participant configuration")
	errWriteConfig  = smqerrors.New("failed to write configuration file")
	errWriteEnv     = smqerrors.New("failed to write .env file")
	errEmptyValue   = errors.New("value is required")
	errTrainerEmpty = errors.New("a training command, wasm module or image is required")

	configPath     = "fedlearn.toml"
	envPath        = ".env"
	nonInteractive bool
)

func SetConfigPath(path string) {
	configPath = path
}

func NewInitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize participant",
		Long: `Write the participant configuration file and the .env file read by the participant service.

Examples:
  # Answer the prompts
  fedlearn-cli init

  # Keep the defaults
  fedlearn-cli init --yes`,
		Run: func(cmd *cobra.Command, args []string) {
			if len(args) != 0 {
				logUsageCmd(*cmd, cmd.Use)

				return
			}

			c := cfg
			if c.Participant.Name == "" {
				c.Participant.Name = namegenerator.NewGenerator().Generate()
			}

			if !nonInteractive {
				if err := newInitForm(&c).Run(); err != nil {
					logErrorCmd(*cmd, smqerrors.Wrap(errFailedForm, err))

					return
				}
			}

			if err := c.Save(configPath); err != nil {
				logErrorCmd(*cmd, smqerrors.Wrap(errWriteConfig, err))

				return
			}
			logSuccessCmd(*cmd, "Successfully created "+configPath)

			if err := godotenv.Write(c.Env(), envPath); err != nil {
				logErrorCmd(*cmd, smqerrors.Wrap(errWriteEnv, err))

				return
			}
			logSuccessCmd(*cmd, "Successfully created "+envPath)

			logJSONCmd(*cmd, c)
		},
	}

	cmd.Flags().StringVar(&envPath, "env", envPath, "Path of the generated .env file")
	cmd.Flags().BoolVarP(&nonInteractive, "yes", "y", false, "Skip the prompts and keep the current values")

	return cmd
}

func newInitForm(c *fedlearn.Config) *huh.Form {
	trainerTarget := c.Trainer.Command
	if c.Trainer.Kind == "wasm" {
		trainerTarget = c.Trainer.ModulePath
	}

	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Participant name").
				Value(&c.Participant.Name).
				Validate(required),
			huh.NewSelect[string]().
				Title("Training mode").
				Options(huh.NewOptions("sync", "async")...).
				Value(&c.Participant.Mode),
		),
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Coordinator transport").
				Options(huh.NewOptions("http", "mqtt", "memory")...).
				Value(&c.Coordinator.Kind),
			huh.NewInput().
				Title("Coordinator URL").
				Value(&c.Coordinator.URL).
				Validate(validURL),
			huh.NewInput().
				Title("Access token").
				EchoMode(huh.EchoModePassword).
				Value(&c.Participant.Token),
		),
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Trainer").
				Options(huh.NewOptions("host", "wasm")...).
				Value(&c.Trainer.Kind),
			huh.NewInput().
				Title("Training command, wasm module path or OCI image").
				Value(&trainerTarget).
				Validate(func(s string) error {
					if s == "" {
						return errTrainerEmpty
					}
					applyTrainerTarget(c, s)

					return nil
				}),
		),
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Snapshot storage").
				Options(huh.NewOptions("file", "badger", "sqlite", "postgres")...).
				Value(&c.Storage.Type),
		),
	)
}

// applyTrainerTarget routes the trainer answer to the field matching the
// chosen trainer kind.
func applyTrainerTarget(c *fedlearn.Config, target string) {
	switch {
	case c.Trainer.Kind != "wasm":
		c.Trainer.Command = target
	case isImageReference(target):
		c.Trainer.ImageURL = target
	default:
		c.Trainer.ModulePath = target
	}
}

func isImageReference(s string) bool {
	u, err := url.Parse("oci://" + s)

	return err == nil && u.Host != "" && u.Path != "" && !strings.HasSuffix(s, ".wasm")
}

func required(s string) error {
	if s == "" {
		return errEmptyValue
	}

	return nil
}

func validURL(s string) error {
	if s == "" {
		return errEmptyValue
	}
	_, err := url.Parse(s)

	return err
}
