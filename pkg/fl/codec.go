package fl

import (
	"crypto/ed25519"
	"fmt"
	"io"

	"github.com/fxamacker/cbor/v2"
)

const CBORContentType = "application/cbor"

var (
	encMode cbor.EncMode
	decMode cbor.DecMode
)

func init() {
	opts := cbor.CanonicalEncOptions()
	opts.Time = cbor.TimeRFC3339Nano

	var err error
	if encMode, err = opts.EncMode(); err != nil {
		panic(fmt.Sprintf("failed to build CBOR encoding mode: %s", err))
	}
	if decMode, err = (cbor.DecOptions{}).DecMode(); err != nil {
		panic(fmt.Sprintf("failed to build CBOR decoding mode: %s", err))
	}
}

// EncodeCBOR encodes v deterministically, so equal values always produce
// equal bytes.
func EncodeCBOR(v any) ([]byte, error) {
	return encMode.Marshal(v)
}

func DecodeCBOR(data []byte, v any) error {
	return decMode.Unmarshal(data, v)
}

func NewCBORDecoder(r io.Reader) *cbor.Decoder {
	return decMode.NewDecoder(r)
}

func (u Update) signingPayload() ([]byte, error) {
	u.Signature = nil
	u.SubmittedAt = u.SubmittedAt.UTC()

	return EncodeCBOR(u)
}

func (u *Update) Sign(key ed25519.PrivateKey) error {
	payload, err := u.signingPayload()
	if err != nil {
		return fmt.Errorf("failed to encode update for signing: %w", err)
	}
	u.Signature = ed25519.Sign(key, payload)

	return nil
}

func (u Update) Verify(key ed25519.PublicKey) error {
	payload, err := u.signingPayload()
	if err != nil {
		return fmt.Errorf("failed to encode update for verification: %w", err)
	}
	if !ed25519.Verify(key, payload, u.Signature) {
		return ErrSignature
	}

	return nil
}
