// Package daemon provides the client and protocol types for talking to the
// speech transcription daemon over a Unix socket using NDJSON, and an
// Engine that adapts it to the editing session.
package daemon

// Command is sent from a client to the daemon.
type Command struct {
	Cmd        string   `json:"cmd"`
	Locale     string   `json:"locale,omitempty"`
	Continuous *bool    `json:"continuous,omitempty"`
	Interim    *bool    `json:"interim,omitempty"`
	Events     []string `json:"events,omitempty"`
}

// Response is returned by the daemon after processing a command.
type Response struct {
	OK        bool   `json:"ok"`
	SessionID string `json:"sessionId,omitempty"`
	Recording *bool  `json:"recording,omitempty"`
	Error     string `json:"error,omitempty"`
	Status    string `json:"status,omitempty"`
}

// Segment is one recognized piece of a "result" event.
type Segment struct {
	Text  string `json:"text"`
	Final bool   `json:"final"`
}

// Event is streamed from the daemon to subscribed clients.
//
//	partial  interim text
//	segment  final text
//	result   several segments at once
//	error    code and message; the span is over
//	end      the span finished
type Event struct {
	Event          string    `json:"event"`
	Text           string    `json:"text,omitempty"`
	Segments       []Segment `json:"segments,omitempty"`
	SessionID      string    `json:"sessionId,omitempty"`
	SequenceNumber *int      `json:"sequenceNumber,omitempty"`
	Code           string    `json:"code,omitempty"`
	Message        string    `json:"message,omitempty"`
}

// Event names.
const (
	EventPartial = "partial"
	EventSegment = "segment"
	EventResult  = "result"
	EventError   = "error"
	EventEnd     = "end"
)

// subscribedEvents is what the engine asks the daemon to stream.
var subscribedEvents = []string{EventPartial, EventSegment, EventResult, EventError, EventEnd}

// BoolPtr returns a pointer to a bool value. Convenience for building commands.
func BoolPtr(b bool) *bool { return &b }
