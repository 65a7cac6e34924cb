package client

// State is the lifecycle state of a session.
type State int32

const (
	StateDisconnected State = iota
	StateConnecting
	StateReady
	StateInTransaction
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateDisconnected:
		return "disconnected"
	case StateConnecting:
		return "connecting"
	case StateReady:
		return "ready"
	case StateInTransaction:
		return "in_transaction"
	case StateClosed:
		return "closed"
	default:
		return "unknown"
	}
}
