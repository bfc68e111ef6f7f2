package participant

type WorkerState uint32

const (
	Idle WorkerState = iota
	Running
	Stopping
	Stopped
)

func (ws WorkerState) String() string {
	switch ws {
	case Idle:
		return "idle"
	case Running:
		return "running"
	case Stopping:
		return "stopping"
	case Stopped:
		return "stopped"
	default:
		return "unknown"
	}
}

func (ws WorkerState) MarshalText() ([]byte, error) {
	return []byte(ws.String()), nil
}
