package progress

import (
	"bytes"
	"errors"
	"sync"
	"testing"
)

func TestNewTracker(t *testing.T) {
	tests := []struct {
		name  string
		label string
		total int
	}{
		{name: "standard tracker", label: "Parsing", total: 100},
		{name: "zero total", label: "Empty", total: 0},
		{name: "single item", label: "One file", total: 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			tracker := NewTracker(tt.label, tt.total, WithWriter(&buf))
			if !tracker.Enabled() {
				t.Fatal("tracker should draw by default")
			}
			if tracker.label != tt.label {
				t.Errorf("tracker.label = %q, want %q", tracker.label, tt.label)
			}
			tracker.FinishSuccess()
		})
	}
}

func TestTracker_ConcurrentTicks(t *testing.T) {
	var buf bytes.Buffer
	tracker := NewTracker("Parsing", 200, WithWriter(&buf))

	var wg sync.WaitGroup
	for i := 0; i < 200; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			tracker.Tick()
		}()
	}
	wg.Wait()
	tracker.FinishSuccess()
}

func TestTracker_FinishMessages(t *testing.T) {
	var buf bytes.Buffer
	NewTracker("Coverage", 1, WithWriter(&buf)).FinishSkipped("no reports")
	if !bytes.Contains(buf.Bytes(), []byte("Coverage skipped (no reports)")) {
		t.Errorf("missing skip message in %q", buf.String())
	}

	buf.Reset()
	NewSpinner("Graph", WithWriter(&buf)).FinishError(errors.New("boom"))
	if !bytes.Contains(buf.Bytes(), []byte("Graph error: boom")) {
		t.Errorf("missing error message in %q", buf.String())
	}
}

func TestTracker_Disabled(t *testing.T) {
	var buf bytes.Buffer
	tracker := NewTracker("Parsing", 10, WithWriter(&buf), WithEnabled(false))
	if tracker.Enabled() {
		t.Fatal("tracker should be disabled")
	}
	tracker.Tick()
	tracker.FinishSkipped("x")
	tracker.FinishError(errors.New("y"))
	tracker.FinishSuccess()
	if buf.Len() != 0 {
		t.Errorf("disabled tracker wrote %q", buf.String())
	}
}
