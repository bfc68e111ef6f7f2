// Package trainer holds the process protocol shared by the out of process
// trainers. A training program reads one Request as JSON on stdin and writes
// the trained model as JSON on stdout.
package trainer

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/absmach/fedlearn/pkg/fl"
)

var (
	ErrEmptyOutput  = errors.New("training program produced no output")
	ErrInvalidModel = errors.New("training program produced an invalid model")
	ErrResultType   = errors.New("training result is not a model")
)

type Request struct {
	Round  uint64    `json:"round"`
	Global *fl.Model `json:"global,omitempty"`
}

// NewRequest builds the request for round. The global model, when present,
// must be the value produced by Deserialize.
func NewRequest(round uint64, global any) (Request, error) {
	req := Request{Round: round}

	switch g := global.(type) {
	case nil:
	case fl.Model:
		req.Global = &g
	case *fl.Model:
		req.Global = g
	default:
		return Request{}, fmt.Errorf("%w: global model of type %T", ErrResultType, global)
	}

	return req, nil
}

func (r Request) Encode() ([]byte, error) {
	return json.Marshal(r)
}

// DecodeResult parses the program's stdout into a model.
func DecodeResult(out []byte) (fl.Model, error) {
	out = bytes.TrimSpace(out)
	if len(out) == 0 {
		return fl.Model{}, ErrEmptyOutput
	}

	var model fl.Model
	if err := json.Unmarshal(out, &model); err != nil {
		return fl.Model{}, errors.Join(ErrInvalidModel, err)
	}
	if err := model.Validate(); err != nil {
		return fl.Model{}, errors.Join(ErrInvalidModel, err)
	}

	return model, nil
}

// Codec implements the Serialize and Deserialize halves of a trainer whose
// training results are already models.
type Codec struct{}

func (Codec) Serialize(result any) (fl.Model, error) {
	switch m := result.(type) {
	case fl.Model:
		return m, nil
	case *fl.Model:
		if m != nil {
			return *m, nil
		}
	}

	return fl.Model{}, fmt.Errorf("%w: %T", ErrResultType, result)
}

func (Codec) Deserialize(model fl.Model) (any, error) {
	return model, nil
}
