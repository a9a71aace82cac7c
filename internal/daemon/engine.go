package daemon

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"sync/atomic"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/Vinw199/Voice-note/internal/session"
)

// CodeDisconnected is reported when the daemon drops an active span.
const CodeDisconnected = "disconnected"

// stopGrace is how long results may keep draining after a stop.
const stopGrace = 2 * time.Second

// commandTimeout bounds each command round trip.
const commandTimeout = 2 * time.Second

const eventBuffer = 64

// Engine is a session.Engine backed by the speech daemon. Each recording
// span uses its own command and event connections.
type Engine struct {
	path   string
	log    *log.Logger
	events chan session.EngineEvent

	mu    sync.Mutex
	cur   *recording
	spans map[*recording]struct{} // every span whose pump is still running
}

// recording is one span: a command connection and the event subscription
// feeding the pump goroutine.
type recording struct {
	cmd *Client
	ev  *Client

	stopping  atomic.Bool
	aborted   chan struct{}
	abortOnce sync.Once
	done      chan struct{}

	sendMu sync.Mutex // held while the pump hands an event to the engine
}

// abort stops the span from delivering anything further. Once it returns
// no event of this span can reach the engine's channel.
func (r *recording) abort() {
	r.abortOnce.Do(func() { close(r.aborted) })
	r.sendMu.Lock()
	r.sendMu.Unlock()
}

func (r *recording) close() {
	r.cmd.Close()
	r.ev.Close()
}

// NewEngine creates an engine for the daemon listening on socketPath.
func NewEngine(socketPath string, logger *log.Logger) *Engine {
	if logger == nil {
		logger = log.StandardLogger()
	}
	return &Engine{
		path:   socketPath,
		log:    logger,
		events: make(chan session.EngineEvent, eventBuffer),
		spans:  make(map[*recording]struct{}),
	}
}

// Available reports whether the daemon socket exists.
func (e *Engine) Available() bool {
	_, err := os.Stat(e.path)
	return err == nil
}

// Events returns the channel all spans deliver to. It is never closed.
func (e *Engine) Events() <-chan session.EngineEvent { return e.events }

// Start subscribes to the daemon's events and starts a span. Spans still
// draining from an earlier Stop are aborted first, so only the new span
// delivers events from here on.
func (e *Engine) Start(ctx context.Context, opts session.StartOptions) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	for rec := range e.spans {
		e.abortLocked(rec)
	}

	cmd, err := ConnectContext(ctx, e.path)
	if err != nil {
		return err
	}
	ev, err := ConnectContext(ctx, e.path)
	if err != nil {
		cmd.Close()
		return err
	}
	rec := &recording{cmd: cmd, ev: ev, aborted: make(chan struct{}), done: make(chan struct{})}

	if err := ev.Subscribe(subscribedEvents...); err != nil {
		rec.close()
		return err
	}
	resp, err := cmd.SendCommand(Command{
		Cmd:        "start",
		Locale:     opts.Locale,
		Continuous: BoolPtr(opts.Continuous),
		Interim:    BoolPtr(opts.Interim),
	})
	if err != nil {
		rec.close()
		return fmt.Errorf("start: %w", err)
	}
	if !resp.OK {
		rec.close()
		return errors.New(resp.Error)
	}

	e.cur = rec
	e.spans[rec] = struct{}{}
	go e.pump(rec)
	e.log.WithFields(log.Fields{"session": resp.SessionID, "locale": opts.Locale}).Debug("speech span started")
	return nil
}

// Stop asks the daemon to finish the current span. Results keep flowing
// until the daemon ends the span or the grace period runs out.
func (e *Engine) Stop() error {
	e.mu.Lock()
	rec := e.cur
	e.cur = nil
	e.mu.Unlock()
	if rec == nil {
		return nil
	}

	rec.stopping.Store(true)
	rec.ev.SetReadDeadline(time.Now().Add(stopGrace))
	rec.cmd.SetDeadline(time.Now().Add(commandTimeout))
	resp, err := rec.cmd.SendCommand(Command{Cmd: "stop"})
	if err != nil {
		return fmt.Errorf("stop: %w", err)
	}
	if !resp.OK {
		return errors.New(resp.Error)
	}
	return nil
}

// Abort ends the current span immediately and drops anything still in
// flight, including spans still draining after Stop. It is a no-op when
// nothing is recording.
func (e *Engine) Abort() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	for rec := range e.spans {
		e.abortLocked(rec)
	}
	return nil
}

func (e *Engine) abortLocked(rec *recording) {
	rec.abort()
	if !rec.stopping.Load() {
		rec.cmd.SetDeadline(time.Now().Add(commandTimeout))
		if _, err := rec.cmd.SendCommand(Command{Cmd: "abort"}); err != nil {
			e.log.WithError(err).Debug("abort span")
		}
	}
	rec.close()
	delete(e.spans, rec)
	if e.cur == rec {
		e.cur = nil
	}
}

// pump reads daemon events for one span and forwards them until the span
// ends, errors or is aborted.
func (e *Engine) pump(rec *recording) {
	defer close(rec.done)
	defer func() {
		rec.close()
		e.mu.Lock()
		delete(e.spans, rec)
		if e.cur == rec {
			e.cur = nil
		}
		e.mu.Unlock()
	}()

	for {
		wire, err := rec.ev.ReadEvent()
		if err != nil {
			select {
			case <-rec.aborted:
				return
			default:
			}
			if rec.stopping.Load() {
				// Grace period over or the daemon closed after stopping.
				e.emit(rec, session.EngineEvent{Kind: session.EventEnd})
				return
			}
			e.log.WithError(err).Warn("speech daemon connection lost")
			e.emit(rec, session.EngineEvent{Kind: session.EventError, Code: CodeDisconnected})
			return
		}

		ev, ok := translate(wire)
		if !ok {
			continue
		}
		if ev.Kind == session.EventError && rec.stopping.Load() {
			// The span was already stopped; its failure is not a recognition error.
			e.log.WithField("code", ev.Code).Debug("error after stop")
			ev = session.EngineEvent{Kind: session.EventEnd}
		}
		if !e.emit(rec, ev) {
			return
		}
		if ev.Kind == session.EventError || ev.Kind == session.EventEnd {
			return
		}
	}
}

func (e *Engine) emit(rec *recording, ev session.EngineEvent) bool {
	rec.sendMu.Lock()
	defer rec.sendMu.Unlock()
	select {
	case <-rec.aborted:
		return false
	default:
	}
	select {
	case e.events <- ev:
		return true
	case <-rec.aborted:
		return false
	}
}

// translate maps a wire event to a session event. Events the session does
// not care about report false.
func translate(wire Event) (session.EngineEvent, bool) {
	switch wire.Event {
	case EventPartial:
		return session.EngineEvent{
			Kind:     session.EventResult,
			Segments: []session.Segment{{Text: wire.Text}},
		}, true
	case EventSegment:
		return session.EngineEvent{
			Kind:     session.EventResult,
			Segments: []session.Segment{{Text: wire.Text, Final: true}},
		}, true
	case EventResult:
		segs := make([]session.Segment, 0, len(wire.Segments))
		for _, s := range wire.Segments {
			segs = append(segs, session.Segment{Text: s.Text, Final: s.Final})
		}
		return session.EngineEvent{Kind: session.EventResult, Segments: segs}, true
	case EventError:
		return session.EngineEvent{Kind: session.EventError, Code: wire.Code}, true
	case EventEnd:
		return session.EngineEvent{Kind: session.EventEnd}, true
	default:
		return session.EngineEvent{}, false
	}
}
