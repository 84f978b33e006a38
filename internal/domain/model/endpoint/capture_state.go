package model

// CaptureState is the process-wide capture switch.
type CaptureState struct {
	Enabled bool `json:"enabled" yaml:"enabled"`
}

// DefaultCaptureState applies when no state has been stored.
var DefaultCaptureState = CaptureState{Enabled: true}

// EnabledOrDefault collapses a lookup result to a boolean.
func EnabledOrDefault(state CaptureState, ok bool) bool {
	if !ok {
		return DefaultCaptureState.Enabled
	}
	return state.Enabled
}
