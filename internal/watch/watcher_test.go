package watch

import (
	"sync"
	"testing"
	"time"
)

func TestDebouncer_CollapsesRapidChanges(t *testing.T) {
	d := NewDebouncer(30 * time.Millisecond)
	defer d.Stop()

	var mu sync.Mutex
	var batches [][]string
	d.SetCallback(func(files []string) {
		mu.Lock()
		batches = append(batches, files)
		mu.Unlock()
	})

	d.Add("a.tsx")
	d.Add("a.tsx")
	d.Add("b.tsx")

	time.Sleep(100 * time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	if len(batches) != 1 {
		t.Fatalf("expected one batch, got %d", len(batches))
	}
	if len(batches[0]) != 2 {
		t.Errorf("expected two unique files, got %v", batches[0])
	}
}

func TestDebouncer_TimerResetsOnNewChange(t *testing.T) {
	d := NewDebouncer(50 * time.Millisecond)
	defer d.Stop()

	var mu sync.Mutex
	fired := 0
	d.SetCallback(func([]string) {
		mu.Lock()
		fired++
		mu.Unlock()
	})

	d.Add("a.tsx")
	time.Sleep(30 * time.Millisecond)
	d.Add("a.tsx")
	time.Sleep(30 * time.Millisecond)

	mu.Lock()
	if fired != 0 {
		t.Errorf("callback fired before quiet period elapsed")
	}
	mu.Unlock()

	time.Sleep(60 * time.Millisecond)
	mu.Lock()
	defer mu.Unlock()
	if fired != 1 {
		t.Errorf("expected exactly one callback, got %d", fired)
	}
}

func TestDebouncer_StoppedIgnoresAdds(t *testing.T) {
	d := NewDebouncer(10 * time.Millisecond)

	fired := false
	d.SetCallback(func([]string) { fired = true })

	d.Stop()
	d.Add("a.tsx")
	time.Sleep(50 * time.Millisecond)

	if fired {
		t.Error("stopped debouncer must not fire")
	}
}

func TestFileWatcher_MatchesPattern(t *testing.T) {
	fw := &FileWatcher{patterns: []string{"*.jsx", "*.tsx"}}

	cases := map[string]bool{
		"widgets/clock.tsx": true,
		"widgets/nav.jsx":   true,
		"widgets/style.css": false,
		"README.md":         false,
	}
	for path, want := range cases {
		if got := fw.matchesPattern(path); got != want {
			t.Errorf("matchesPattern(%q): got %v, want %v", path, got, want)
		}
	}

	empty := &FileWatcher{}
	if !empty.matchesPattern("anything.txt") {
		t.Error("empty pattern list should match everything")
	}
}

func TestFileWatcher_ShouldIgnore(t *testing.T) {
	fw := &FileWatcher{ignored: []string{"*.tmp"}}

	cases := map[string]bool{
		".git":                    true,
		"widgets/.hidden.tsx":     true,
		"node_modules/react/x.js": true,
		"widgets/scratch.tmp":     true,
		"widgets/clock.tsx":       false,
	}
	for path, want := range cases {
		if got := fw.shouldIgnore(path); got != want {
			t.Errorf("shouldIgnore(%q): got %v, want %v", path, got, want)
		}
	}
}

func TestFileWatcher_StopIdempotent(t *testing.T) {
	fw, err := NewFileWatcher([]string{"*.tsx"}, nil, func([]string) error { return nil })
	if err != nil {
		t.Fatalf("NewFileWatcher: %v", err)
	}
	if err := fw.Start([]string{t.TempDir()}); err != nil {
		t.Fatalf("Start: %v", err)
	}

	if err := fw.Stop(); err != nil {
		t.Fatalf("Stop: %v", err)
	}
	if err := fw.Stop(); err != nil {
		t.Errorf("second Stop: %v", err)
	}
}
