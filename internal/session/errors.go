package session

import "errors"

var (
	// ErrUnsupported means no transcription engine is available on this host.
	ErrUnsupported = errors.New("speech recognition not available")

	// ErrSaveInFlight is returned by a commit while another one is pending.
	ErrSaveInFlight = errors.New("save already in progress")

	// ErrNotEditing is returned by operations that need the Editing state.
	ErrNotEditing = errors.New("note is not being edited")

	// ErrClosed is returned once the session has been torn down.
	ErrClosed = errors.New("editing session closed")

	// ErrDiscarded reports an async result that arrived after the session
	// moved on (closed, cancelled or retargeted) and was therefore dropped.
	ErrDiscarded = errors.New("result discarded")
)

// RecognitionError reports a failed recording span. Code is the engine's
// categorical error code.
type RecognitionError struct {
	Code string
}

func (e *RecognitionError) Error() string {
	switch e.Code {
	case "no-speech":
		return "no speech detected"
	case "audio-capture":
		return "microphone error"
	case "not-allowed":
		return "microphone access denied"
	case "network":
		return "network error during recognition"
	default:
		return "speech recognition error"
	}
}
