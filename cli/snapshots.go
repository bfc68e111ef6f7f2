package cli

import (
	"context"
	"encoding/hex"
	"time"

	"github.com/absmach/fedlearn"
	"github.com/absmach/fedlearn/participant"
	"github.com/absmach/fedlearn/pkg/coordinator"
	"github.com/absmach/fedlearn/pkg/storage"
	"github.com/absmach/supermq/pkg/errors"
	"github.com/spf13/cobra"
)

var (
	errOpenStorage    = errors.New("failed to open snapshot storage")
	errDecodeSnapshot = errors.New("failed to decode snapshot")

	cfg = fedlearn.DefaultConfig()
)

func SetConfig(c fedlearn.Config) {
	cfg = c
}

// snapshotView leaves out the private key held by the session.
type snapshotView struct {
	Key           string    `json:"key"`
	State         string    `json:"state"`
	Round         uint64    `json:"round"`
	SavedAt       time.Time `json:"saved_at"`
	ParticipantID string    `json:"participant_id,omitempty"`
	PublicKey     string    `json:"public_key,omitempty"`
	Scalar        float64   `json:"scalar,omitempty"`
}

func storageConfig(c fedlearn.StorageConfig) storage.Config {
	return storage.Config{
		Type:            c.Type,
		EncryptionKey:   c.EncryptionKey,
		FileDir:         c.FileDir,
		PostgresHost:    c.PostgresHost,
		PostgresPort:    c.PostgresPort,
		PostgresUser:    c.PostgresUser,
		PostgresPass:    c.PostgresPass,
		PostgresDB:      c.PostgresDB,
		PostgresSSLMode: "disable",
		SQLitePath:      c.SQLitePath,
		BadgerPath:      c.BadgerPath,
	}
}

func withRepository(cmd *cobra.Command, fn func(context.Context, storage.Repository) error) {
	repo, err := storage.NewRepository(storageConfig(cfg.Storage))
	if err != nil {
		logErrorCmd(*cmd, errors.Wrap(errOpenStorage, err))

		return
	}
	defer repo.Close()

	if err := fn(cmd.Context(), repo); err != nil {
		logErrorCmd(*cmd, err)
	}
}

func viewSnapshot(key string, data []byte) (snapshotView, error) {
	snap, err := participant.DecodeSnapshot(data)
	if err != nil {
		return snapshotView{}, errors.Wrap(errDecodeSnapshot, err)
	}

	view := snapshotView{
		Key:     key,
		State:   snap.State.String(),
		Round:   snap.Round,
		SavedAt: snap.SavedAt,
	}
	if session, err := coordinator.RestoreSession(snap.Session); err == nil {
		view.ParticipantID = session.ParticipantID
		view.PublicKey = hex.EncodeToString(session.PublicKey)
		view.Scalar = session.Scalar
	}

	return view, nil
}

func NewSnapshotsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "snapshots [list|show|delete]",
		Short: "Participant snapshots",
		Long:  `List, show and delete the snapshots saved by stopped participants.`,
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List snapshots",
		Long:  `List snapshot keys.`,
		Run: func(cmd *cobra.Command, args []string) {
			if len(args) != 0 {
				logUsageCmd(*cmd, cmd.Use)

				return
			}

			withRepository(cmd, func(ctx context.Context, repo storage.Repository) error {
				keys, err := repo.List(ctx)
				if err != nil {
					return err
				}
				logJSONCmd(*cmd, keys)

				return nil
			})
		},
	}

	showCmd := &cobra.Command{
		Use:   "show <key>",
		Short: "Show snapshot",
		Long:  `Show a snapshot without its key material.`,
		Run: func(cmd *cobra.Command, args []string) {
			if len(args) != 1 {
				logUsageCmd(*cmd, cmd.Use)

				return
			}

			withRepository(cmd, func(ctx context.Context, repo storage.Repository) error {
				data, err := repo.Load(ctx, args[0])
				if err != nil {
					return err
				}
				view, err := viewSnapshot(args[0], data)
				if err != nil {
					return err
				}
				logJSONCmd(*cmd, view)

				return nil
			})
		},
	}

	deleteCmd := &cobra.Command{
		Use:   "delete <key>",
		Short: "Delete snapshot",
		Long:  `Delete a snapshot. The participant starts with a new identity afterwards.`,
		Run: func(cmd *cobra.Command, args []string) {
			if len(args) != 1 {
				logUsageCmd(*cmd, cmd.Use)

				return
			}

			withRepository(cmd, func(ctx context.Context, repo storage.Repository) error {
				if err := repo.Delete(ctx, args[0]); err != nil {
					return err
				}
				logOKCmd(*cmd)

				return nil
			})
		},
	}

	cmd.AddCommand(listCmd)
	cmd.AddCommand(showCmd)
	cmd.AddCommand(deleteCmd)

	return cmd
}
