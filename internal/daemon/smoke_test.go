package daemon

import (
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/Vinw199/Voice-note/internal/session"
)

// TestLiveDaemonSpan starts and stops a short recording span against a
// running daemon and prints whatever it transcribed.
// Skipped if the daemon socket doesn't exist.
func TestLiveDaemonSpan(t *testing.T) {
	sockPath := SocketPath()
	if _, err := os.Stat(sockPath); os.IsNotExist(err) {
		t.Skip("daemon not running (no socket at", sockPath, ")")
	}

	e := NewEngine(sockPath, nil)
	defer e.Abort()

	if err := e.Start(t.Context(), defaultStart); err != nil {
		t.Fatalf("start: %v", err)
	}
	fmt.Println("Recording for 3 seconds...")

	deadline := time.After(3 * time.Second)
	stopped := false
	for {
		select {
		case ev := <-e.Events():
			switch ev.Kind {
			case session.EventResult:
				for _, seg := range ev.Segments {
					fmt.Printf("  final=%v %q\n", seg.Final, seg.Text)
				}
			case session.EventError:
				t.Fatalf("recognition error: %s", ev.Code)
			case session.EventEnd:
				fmt.Println("Span ended")
				return
			}
		case <-deadline:
			if stopped {
				t.Fatal("daemon never ended the span after stop")
			}
			if err := e.Stop(); err != nil {
				t.Fatalf("stop: %v", err)
			}
			stopped = true
			deadline = time.After(stopGrace + time.Second)
		}
	}
}
