package models

// ConnectionState is the backend connectivity as last observed by the client
type ConnectionState int

const (
	StateUnknown ConnectionState = iota
	StateConnected
	StateError
)

// String returns the state name
func (s ConnectionState) String() string {
	switch s {
	case StateConnected:
		return "connected"
	case StateError:
		return "error"
	default:
		return "unknown"
	}
}

// Status labels shown by the status indicator
const (
	LabelChecking        = "Checking..."
	LabelConnected       = "Connected"
	LabelBackendError    = "Backend Error"
	LabelDisconnected    = "Disconnected"
	LabelConnectionError = "Connection Error"
)

// Status pairs a connection state with the label describing how it was reached
type Status struct {
	State ConnectionState
	Label string
}

// UnknownStatus is the status before any health check completes
func UnknownStatus() Status {
	return Status{State: StateUnknown, Label: LabelChecking}
}
