package watch

import (
	"fmt"
	"log"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// State is the hot reload manager's lifecycle state.
type State string

const (
	// StateIdle means the manager exists but is not watching
	StateIdle State = "idle"
	// StateWatching means source changes are being tracked
	StateWatching State = "watching"
	// StateStopped is terminal; a stopped manager cannot be restarted
	StateStopped State = "stopped"
)

// Event is one hot reload notification. Ephemeral: produced on a debounced
// source change, consumed once by the recompile trigger.
type Event struct {
	WidgetID  string
	ChangedAt time.Time
	Reason    string
}

// ManagerConfig configures a hot reload manager.
type ManagerConfig struct {
	// DevMode gates watching entirely; Start is a logged no-op without it.
	DevMode bool
	// Roots are the directories to watch.
	Roots []string
	// Patterns are the file patterns treated as widget sources.
	// Defaults to *.jsx and *.tsx.
	Patterns []string
	// Ignore are file patterns to skip.
	Ignore []string
}

// Manager tracks widget source identifiers, watches their files for changes,
// and emits reload events. Rapid changes to the same widget collapse into one
// event through the watcher's debounce window.
type Manager struct {
	config ManagerConfig

	mu          sync.Mutex
	state       State
	watcher     *FileWatcher
	widgetByKey map[string]string // normalized path -> widget id
	subscribers []func(Event)
}

// NewManager creates an idle hot reload manager.
func NewManager(config ManagerConfig) *Manager {
	if len(config.Patterns) == 0 {
		config.Patterns = []string{"*.jsx", "*.tsx"}
	}
	return &Manager{
		config:      config,
		state:       StateIdle,
		widgetByKey: make(map[string]string),
	}
}

// State returns the current lifecycle state.
func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Track associates a widget identifier with its source file. Changes to the
// file emit events carrying the identifier.
func (m *Manager) Track(widgetID, path string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.widgetByKey[pathKey(path)] = widgetID
}

// Untrack removes a widget's source association.
func (m *Manager) Untrack(path string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.widgetByKey, pathKey(path))
}

// Subscribe registers an event consumer. Subscribers are invoked in
// registration order for every emitted event.
func (m *Manager) Subscribe(fn func(Event)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.subscribers = append(m.subscribers, fn)
}

// Start begins watching. Outside dev mode this is a logged no-op: the manager
// stays idle. Starting an already-watching or stopped manager is an error.
func (m *Manager) Start() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.config.DevMode {
		log.Printf("[Watch] Hot reload disabled (dev mode off)")
		return nil
	}

	switch m.state {
	case StateWatching:
		return fmt.Errorf("hot reload already watching")
	case StateStopped:
		return fmt.Errorf("hot reload manager is stopped")
	}

	watcher, err := NewFileWatcher(m.config.Patterns, m.config.Ignore, m.handleChanges)
	if err != nil {
		return err
	}
	roots := m.config.Roots
	if len(roots) == 0 {
		roots = []string{"."}
	}
	if err := watcher.Start(roots); err != nil {
		watcher.Stop()
		return err
	}

	m.watcher = watcher
	m.state = StateWatching
	return nil
}

// Stop moves the manager to its terminal state. Idempotent.
func (m *Manager) Stop() error {
	m.mu.Lock()
	watcher := m.watcher
	m.watcher = nil
	alreadyStopped := m.state == StateStopped
	m.state = StateStopped
	m.mu.Unlock()

	if alreadyStopped || watcher == nil {
		return nil
	}
	return watcher.Stop()
}

// handleChanges maps debounced file changes to widget events. A failed
// downstream cycle never stops watching: subscriber errors are the
// subscriber's problem by contract.
func (m *Manager) handleChanges(files []string) error {
	now := time.Now()

	m.mu.Lock()
	subs := make([]func(Event), len(m.subscribers))
	copy(subs, m.subscribers)

	events := make([]Event, 0, len(files))
	for _, file := range files {
		widgetID, ok := m.widgetByKey[pathKey(file)]
		if !ok {
			// Untracked source files reload under their file stem
			widgetID = widgetIDForPath(file)
		}
		events = append(events, Event{
			WidgetID:  widgetID,
			ChangedAt: now,
			Reason:    "source-change",
		})
	}
	m.mu.Unlock()

	for _, ev := range events {
		log.Printf("[Watch] Widget changed: %s", ev.WidgetID)
		for _, fn := range subs {
			fn(ev)
		}
	}
	return nil
}

func pathKey(path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		return filepath.Clean(path)
	}
	return abs
}

// widgetIDForPath derives a widget identifier from a source file name:
// "widgets/clock.tsx" -> "clock".
func widgetIDForPath(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
