package main

import (
	"errors"
	"io/fs"
	"log"

	"github.com/absmach/fedlearn"
	"github.com/absmach/fedlearn/cli"
	"github.com/absmach/fedlearn/pkg/sdk"
	"github.com/spf13/cobra"
)

const defConfigPath = "fedlearn.toml"

func main() {
	var (
		configPath      string
		participantURL  string
		tlsVerification bool
	)

	rootCmd := &cobra.Command{
		Use:   "fedlearn-cli",
		Short: "Federated learning participant CLI",
		Long:  `fedlearn-cli is a command line interface for configuring and inspecting federated learning participants.`,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg := fedlearn.DefaultConfig()
			loaded, err := fedlearn.LoadConfig(configPath)
			switch {
			case err == nil:
				cfg = *loaded
			case !errors.Is(err, fs.ErrNotExist):
				return err
			}
			if cmd.Flags().Changed("participant-url") || cfg.Participant.URL == "" {
				cfg.Participant.URL = participantURL
			}

			cli.SetConfig(cfg)
			cli.SetConfigPath(configPath)
			cli.SetParticipantSDK(sdk.NewSDK(sdk.Config{
				ParticipantURL:  cfg.Participant.URL,
				TLSVerification: tlsVerification,
			}))

			return nil
		},
	}

	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", defConfigPath, "Participant configuration file")
	rootCmd.PersistentFlags().StringVarP(&participantURL, "participant-url", "u", "http://localhost:7080", "Participant HTTP API URL")
	rootCmd.PersistentFlags().BoolVar(&tlsVerification, "tls-verification", true, "Verify the participant TLS certificate")

	rootCmd.AddCommand(cli.NewInitCmd())
	rootCmd.AddCommand(cli.NewStatusCmd())
	rootCmd.AddCommand(cli.NewModelCmd())
	rootCmd.AddCommand(cli.NewStopCmd())
	rootCmd.AddCommand(cli.NewHealthCmd())
	rootCmd.AddCommand(cli.NewSnapshotsCmd())

	if err := rootCmd.Execute(); err != nil {
		log.Fatal(err)
	}
}
