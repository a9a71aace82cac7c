package session

import (
	"context"
	"errors"
	"sync"

	"github.com/Vinw199/Voice-note/internal/note"
)

type fakeEngine struct {
	available bool
	startErr  error

	starts []StartOptions
	stops  int
	aborts int
	events chan EngineEvent
}

func newFakeEngine() *fakeEngine {
	return &fakeEngine{available: true, events: make(chan EngineEvent, 16)}
}

func (e *fakeEngine) Available() bool { return e.available }

func (e *fakeEngine) Start(_ context.Context, opts StartOptions) error {
	if e.startErr != nil {
		return e.startErr
	}
	e.starts = append(e.starts, opts)
	return nil
}

func (e *fakeEngine) Stop() error {
	e.stops++
	return nil
}

func (e *fakeEngine) Abort() error {
	e.aborts++
	return nil
}

func (e *fakeEngine) Events() <-chan EngineEvent { return e.events }

type updateCall struct {
	id, owner string
	fields    note.Fields
}

// fakeStore records every mutation. A non-nil block channel makes Create
// and Update wait until it is closed.
type fakeStore struct {
	mu      sync.Mutex
	creates []note.NewNote
	updates []updateCall
	deletes int
	reads   int

	createID string
	err      error
	block    chan struct{}
}

func (s *fakeStore) wait() {
	if s.block != nil {
		<-s.block
	}
}

func (s *fakeStore) mutations() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.creates) + len(s.updates) + s.deletes
}

func (s *fakeStore) calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.creates) + len(s.updates) + s.deletes + s.reads
}

func (s *fakeStore) Create(_ context.Context, n note.NewNote) (string, error) {
	s.wait()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.creates = append(s.creates, n)
	if s.err != nil {
		return "", s.err
	}
	return s.createID, nil
}

func (s *fakeStore) Update(_ context.Context, id, owner string, f note.Fields) error {
	s.wait()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.updates = append(s.updates, updateCall{id: id, owner: owner, fields: f})
	return s.err
}

func (s *fakeStore) Delete(context.Context, string, string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deletes++
	return s.err
}

func (s *fakeStore) Get(context.Context, string, string) (note.Note, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reads++
	return note.Note{}, errors.New("not used")
}

func (s *fakeStore) List(context.Context, string, note.ListOptions) ([]note.Summary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reads++
	return nil, nil
}
