package participant

import (
	"fmt"

	"github.com/absmach/fedlearn/pkg/fl"
)

type HeartbeatKind uint8

const (
	Standby HeartbeatKind = iota
	RoundOpen
	Finished
)

func (k HeartbeatKind) String() string {
	switch k {
	case Standby:
		return "standby"
	case RoundOpen:
		return "round"
	case Finished:
		return "finished"
	default:
		return "unknown"
	}
}

// Heartbeat is a coordinator's reply describing the current round status.
// Params is optional and carries the submission expectations for Round.
type Heartbeat struct {
	Kind   HeartbeatKind
	Round  uint64
	Params *fl.RoundParams
}

func StandbyHeartbeat() Heartbeat {
	return Heartbeat{Kind: Standby}
}

func RoundHeartbeat(round uint64) Heartbeat {
	return Heartbeat{Kind: RoundOpen, Round: round}
}

func FinishedHeartbeat() Heartbeat {
	return Heartbeat{Kind: Finished}
}

// HeartbeatFromStatus converts a coordinator round status into a Heartbeat.
func HeartbeatFromStatus(rs fl.RoundStatus) (Heartbeat, error) {
	switch rs.Phase {
	case fl.PhaseStandby:
		return StandbyHeartbeat(), nil
	case fl.PhaseRound:
		hb := RoundHeartbeat(rs.Round)
		if rs.Params != nil {
			params := *rs.Params
			params.Round = rs.Round
			hb.Params = &params
		}

		return hb, nil
	case fl.PhaseFinished:
		return FinishedHeartbeat(), nil
	default:
		return Heartbeat{}, fmt.Errorf("%w: %q", fl.ErrUnknownPhase, rs.Phase)
	}
}
