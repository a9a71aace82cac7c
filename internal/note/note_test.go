package note

import (
	"errors"
	"fmt"
	"testing"
	"time"
)

func TestPreview(t *testing.T) {
	tests := []struct {
		name string
		in   string
		max  int
		want string
	}{
		{name: "short", in: "milk", max: 10, want: "milk"},
		{name: "exact", in: "milk, eggs", max: 10, want: "milk, eggs"},
		{name: "cut", in: "milk, eggs, bread", max: 10, want: "milk, eggs..."},
		{name: "empty", in: "", max: 10, want: ""},
		{name: "runes", in: "café au lait", max: 4, want: "café..."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Preview(tt.in, tt.max); got != tt.want {
				t.Errorf("Preview(%q, %d) = %q, want %q", tt.in, tt.max, got, tt.want)
			}
		})
	}
}

func TestShortDate(t *testing.T) {
	if got := ShortDate(time.Time{}); got != "" {
		t.Errorf("zero time = %q, want empty", got)
	}
	d := time.Date(2026, time.March, 4, 12, 0, 0, 0, time.Local)
	if got := ShortDate(d); got != "Mar 4, 2026" {
		t.Errorf("ShortDate = %q, want %q", got, "Mar 4, 2026")
	}
}

func TestFailureKeepsMessageVerbatim(t *testing.T) {
	base := errors.New("permission denied for table notes")
	err := Failure("update", base)

	if err.Error() != base.Error() {
		t.Errorf("message = %q, want %q", err.Error(), base.Error())
	}
	var se *StoreError
	if !errors.As(err, &se) {
		t.Fatal("expected StoreError")
	}
	if se.Op != "update" {
		t.Errorf("op = %q, want update", se.Op)
	}
	if !errors.Is(err, base) {
		t.Error("StoreError should unwrap to the original error")
	}
}

func TestFailureDoesNotDoubleWrap(t *testing.T) {
	first := Failure("create", ErrNotFound)
	second := Failure("update", fmt.Errorf("retry: %w", first))

	var se *StoreError
	if !errors.As(second, &se) || se.Op != "create" {
		t.Errorf("expected original StoreError to be kept, got %#v", se)
	}
	if Failure("get", nil) != nil {
		t.Error("Failure(nil) should be nil")
	}
}

func TestSummarize(t *testing.T) {
	now := time.Now()
	n := Note{ID: "n1", Owner: "u1", Title: "T", Content: "C", CreatedAt: now, UpdatedAt: now}
	s := n.Summarize()
	if s.ID != "n1" || s.Title != "T" || s.Content != "C" || !s.UpdatedAt.Equal(now) {
		t.Errorf("summary = %+v", s)
	}
}
