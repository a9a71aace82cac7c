package session

import "context"

// Locale is the recognition language requested for every recording span.
const Locale = "en-US"

// StartOptions configures a recording span.
type StartOptions struct {
	Continuous bool
	Interim    bool
	Locale     string
}

// EventKind distinguishes engine events.
type EventKind int

const (
	EventResult EventKind = iota
	EventError
	EventEnd
)

func (k EventKind) String() string {
	switch k {
	case EventResult:
		return "result"
	case EventError:
		return "error"
	case EventEnd:
		return "end"
	default:
		return "unknown"
	}
}

// Segment is one recognized piece of speech. Interim segments are guesses
// that later results may revise.
type Segment struct {
	Text  string
	Final bool
}

// EngineEvent is delivered by an Engine on its event channel, in
// recognition order.
type EngineEvent struct {
	Kind     EventKind
	Segments []Segment // EventResult
	Code     string    // EventError
}

// Engine is a speech transcription engine. A single Engine belongs to one
// session at a time.
type Engine interface {
	// Available reports whether the host can transcribe at all.
	Available() bool
	// Start begins a recording span.
	Start(ctx context.Context, opts StartOptions) error
	// Stop ends the current span, letting pending results drain.
	Stop() error
	// Abort ends the current span and discards pending results. It is safe
	// to call when nothing is recording.
	Abort() error
	// Events returns the channel on which results, errors and end
	// notifications arrive.
	Events() <-chan EngineEvent
}
