// Package coordinator holds the state shared by the coordinator clients: the
// participant identity and signing keys that make up a resumable session.
package coordinator

import (
	"crypto/ed25519"
	"crypto/rand"
	"errors"
	"fmt"
	"time"

	"github.com/absmach/fedlearn/pkg/fl"
	"github.com/google/uuid"
)

const DefaultScalar = 1.0

var (
	ErrInvalidSession = errors.New("invalid coordinator session")
	ErrInvalidScalar  = errors.New("scalar must be positive")
)

// Session identifies a participant towards a coordinator. It is persisted in
// participant snapshots, so a restored participant keeps its identity and
// keys.
type Session struct {
	ParticipantID string             `cbor:"participant_id"`
	PublicKey     ed25519.PublicKey  `cbor:"public_key"`
	PrivateKey    ed25519.PrivateKey `cbor:"private_key"`
	Token         string             `cbor:"token,omitempty"`
	Scalar        float64            `cbor:"scalar"`
}

// NewSession creates a session with a random participant id and a fresh key
// pair.
func NewSession(token string, scalar float64) (Session, error) {
	if scalar <= 0 {
		return Session{}, ErrInvalidScalar
	}

	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return Session{}, fmt.Errorf("failed to generate signing keys: %w", err)
	}

	return Session{
		ParticipantID: uuid.NewString(),
		PublicKey:     pub,
		PrivateKey:    priv,
		Token:         token,
		Scalar:        scalar,
	}, nil
}

func (s Session) Validate() error {
	if _, err := uuid.Parse(s.ParticipantID); err != nil {
		return fmt.Errorf("%w: participant id: %w", ErrInvalidSession, err)
	}
	if len(s.PublicKey) != ed25519.PublicKeySize || len(s.PrivateKey) != ed25519.PrivateKeySize {
		return fmt.Errorf("%w: malformed signing keys", ErrInvalidSession)
	}
	if !s.PublicKey.Equal(s.PrivateKey.Public()) {
		return fmt.Errorf("%w: signing keys do not match", ErrInvalidSession)
	}
	if s.Scalar <= 0 {
		return ErrInvalidScalar
	}

	return nil
}

func (s Session) Marshal() ([]byte, error) {
	return fl.EncodeCBOR(s)
}

// RestoreSession decodes a session produced by Marshal.
func RestoreSession(data []byte) (Session, error) {
	var s Session
	if err := fl.DecodeCBOR(data, &s); err != nil {
		return Session{}, fmt.Errorf("%w: %w", ErrInvalidSession, err)
	}
	if err := s.Validate(); err != nil {
		return Session{}, err
	}

	return s, nil
}

// NewUpdate builds and signs the submission envelope of a local model.
func (s Session) NewUpdate(round uint64, model fl.Model) (fl.Update, error) {
	u := fl.Update{
		ParticipantID: s.ParticipantID,
		Round:         round,
		Scalar:        s.Scalar,
		Model:         model,
		SubmittedAt:   time.Now(),
	}
	if err := u.Sign(s.PrivateKey); err != nil {
		return fl.Update{}, err
	}

	return u, nil
}
