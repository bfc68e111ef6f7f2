package participant

import (
	"errors"

	pkgerrors "github.com/absmach/fedlearn/pkg/errors"
)

var (
	ErrModelMismatch = pkgerrors.ErrModelMismatch
	ErrStopped       = pkgerrors.ErrStopped

	// ErrTrainerFailed wraps failures of the training hook. They are fatal to
	// the worker.
	ErrTrainerFailed = errors.New("training hook failed")

	ErrAlreadyActive = errors.New("participant worker already started")
	ErrNotSelected   = errors.New("participant is not selected for training")
	ErrHeartbeat     = errors.New("failed to obtain heartbeat")
	ErrUnknownState  = errors.New("unknown participant state")
	ErrInvalidMode   = errors.New("invalid participant mode")
)
