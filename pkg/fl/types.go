package fl

import (
	"math"
	"time"
)

type DataType string

const (
	F32 DataType = "f32"
	F64 DataType = "f64"
	I32 DataType = "i32"
	I64 DataType = "i64"
)

func (dt DataType) Validate() error {
	switch dt {
	case F32, F64, I32, I64:
		return nil
	default:
		return ErrDataType
	}
}

// Model is the flat parameter vector exchanged with a coordinator. Values are
// carried as float64 regardless of DataType; integer types must hold integral
// values inside their range.
type Model struct {
	DataType DataType  `json:"data_type" cbor:"data_type"`
	Values   []float64 `json:"values"    cbor:"values"`
}

func (m Model) Len() int {
	return len(m.Values)
}

func (m Model) Validate() error {
	if err := m.DataType.Validate(); err != nil {
		return err
	}

	for _, v := range m.Values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return ErrInvalidValue
		}

		switch m.DataType {
		case F32:
			if math.Abs(v) > math.MaxFloat32 {
				return ErrInvalidValue
			}
		case I32:
			if v != math.Trunc(v) || v > math.MaxInt32 || v < math.MinInt32 {
				return ErrInvalidValue
			}
		case I64:
			if v != math.Trunc(v) || v >= math.MaxInt64 || v < math.MinInt64 {
				return ErrInvalidValue
			}
		}
	}

	return nil
}

// RoundParams are the expectations a coordinator announces for a round's
// submissions.
type RoundParams struct {
	Round       uint64   `json:"round"        cbor:"round"`
	ModelLength int      `json:"model_length" cbor:"model_length"`
	DataType    DataType `json:"data_type"    cbor:"data_type"`
}

// Check reports whether m satisfies the announced length and data type.
// Zero-valued fields are not enforced.
func (p RoundParams) Check(m Model) error {
	if p.ModelLength > 0 && m.Len() != p.ModelLength {
		return ErrModelLength
	}
	if p.DataType != "" && m.DataType != p.DataType {
		return ErrDataType
	}

	return m.Validate()
}

// Update is the envelope a participant submits for a round.
type Update struct {
	ParticipantID string    `json:"participant_id" cbor:"participant_id"`
	Round         uint64    `json:"round"          cbor:"round"`
	Scalar        float64   `json:"scalar"         cbor:"scalar"`
	Model         Model     `json:"model"          cbor:"model"`
	Signature     []byte    `json:"signature"      cbor:"signature,omitempty"`
	SubmittedAt   time.Time `json:"submitted_at"   cbor:"submitted_at"`
}

// RoundStatus is the coordinator's answer to a heartbeat.
type RoundStatus struct {
	Phase  Phase        `json:"phase"            cbor:"phase"`
	Round  uint64       `json:"round"            cbor:"round"`
	Params *RoundParams `json:"params,omitempty" cbor:"params,omitempty"`
}

type Phase string

const (
	PhaseStandby  Phase = "standby"
	PhaseRound    Phase = "round"
	PhaseFinished Phase = "finished"
)
