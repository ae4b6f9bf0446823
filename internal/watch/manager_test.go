package watch

import (
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"
)

func TestManager_StatesWithoutDevMode(t *testing.T) {
	m := NewManager(ManagerConfig{DevMode: false})

	if m.State() != StateIdle {
		t.Errorf("initial state: got %s, want %s", m.State(), StateIdle)
	}

	// Start outside dev mode is a logged no-op
	if err := m.Start(); err != nil {
		t.Fatalf("Start without dev mode: %v", err)
	}
	if m.State() != StateIdle {
		t.Errorf("state after no-op start: got %s, want %s", m.State(), StateIdle)
	}
}

func TestManager_Lifecycle(t *testing.T) {
	dir := t.TempDir()
	m := NewManager(ManagerConfig{DevMode: true, Roots: []string{dir}})

	if err := m.Start(); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	if m.State() != StateWatching {
		t.Errorf("state after start: got %s, want %s", m.State(), StateWatching)
	}

	// Double start is an error
	if err := m.Start(); err == nil {
		t.Error("expected error starting an already-watching manager")
	}

	if err := m.Stop(); err != nil {
		t.Fatalf("Stop failed: %v", err)
	}
	if m.State() != StateStopped {
		t.Errorf("state after stop: got %s, want %s", m.State(), StateStopped)
	}

	// Stop is idempotent; restart is an error
	if err := m.Stop(); err != nil {
		t.Errorf("second Stop: %v", err)
	}
	if err := m.Start(); err == nil {
		t.Error("expected error starting a stopped manager")
	}
}

func TestManager_EmitsTrackedWidgetEvent(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "clock.tsx")
	if err := os.WriteFile(file, []byte("export const C = <div/>"), 0644); err != nil {
		t.Fatal(err)
	}

	m := NewManager(ManagerConfig{DevMode: true, Roots: []string{dir}})
	m.Track("dashboard-clock", file)

	var mu sync.Mutex
	var events []Event
	m.Subscribe(func(ev Event) {
		mu.Lock()
		events = append(events, ev)
		mu.Unlock()
	})

	if err := m.Start(); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	defer m.Stop()

	// Rapid successive writes debounce into one event
	for i := 0; i < 3; i++ {
		if err := os.WriteFile(file, []byte("export const C = <span/>"), 0644); err != nil {
			t.Fatal(err)
		}
		time.Sleep(10 * time.Millisecond)
	}

	deadline := time.After(2 * time.Second)
	for {
		mu.Lock()
		n := len(events)
		mu.Unlock()
		if n > 0 {
			break
		}
		select {
		case <-deadline:
			t.Fatal("timed out waiting for reload event")
		case <-time.After(20 * time.Millisecond):
		}
	}

	mu.Lock()
	defer mu.Unlock()
	if len(events) != 1 {
		t.Errorf("expected one debounced event, got %d", len(events))
	}
	if events[0].WidgetID != "dashboard-clock" {
		t.Errorf("WidgetID: got %s, want dashboard-clock", events[0].WidgetID)
	}
	if events[0].Reason != "source-change" {
		t.Errorf("Reason: got %s", events[0].Reason)
	}
}

func TestManager_UntrackedFileUsesStem(t *testing.T) {
	m := NewManager(ManagerConfig{DevMode: true})

	var got []Event
	m.Subscribe(func(ev Event) { got = append(got, ev) })

	if err := m.handleChanges([]string{"widgets/ticker.jsx"}); err != nil {
		t.Fatalf("handleChanges: %v", err)
	}
	if len(got) != 1 || got[0].WidgetID != "ticker" {
		t.Errorf("events: got %+v", got)
	}
}

func TestManager_Untrack(t *testing.T) {
	m := NewManager(ManagerConfig{DevMode: true})
	m.Track("w1", "widgets/a.tsx")
	m.Untrack("widgets/a.tsx")

	var got []Event
	m.Subscribe(func(ev Event) { got = append(got, ev) })

	if err := m.handleChanges([]string{"widgets/a.tsx"}); err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0].WidgetID != "a" {
		t.Errorf("untracked change should fall back to file stem, got %+v", got)
	}
}

func TestWidgetIDForPath(t *testing.T) {
	cases := map[string]string{
		"widgets/clock.tsx": "clock",
		"a/b/c/status.jsx":  "status",
		"plain.tsx":         "plain",
		"widgets/no-ext":    "no-ext",
	}
	for path, want := range cases {
		if got := widgetIDForPath(path); got != want {
			t.Errorf("widgetIDForPath(%q): got %q, want %q", path, got, want)
		}
	}
}
