// Package service provides named procedure-call backends usable by mounted
// widgets, plus the registry that dispatches calls to them. Errors are values:
// nothing crosses the service boundary as a panic or a thrown error.
package service

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Result is the outcome of a single service call. DurationMs is always
// populated, including on the error path.
type Result struct {
	Success    bool    `json:"success"`
	Data       any     `json:"data,omitempty"`
	Error      string  `json:"error,omitempty"`
	DurationMs float64 `json:"duration_ms"`
}

// Backend is a named procedure-call target. The set of valid procedures is
// backend-defined; the registry only routes by name and procedure string.
type Backend interface {
	Name() string
	Call(ctx context.Context, procedure string, args []any) Result
	Dispose() error
}

// ProcFunc handles one procedure. Returning an error produces a
// {Success:false} result; it is never propagated as a Go error to the caller.
type ProcFunc func(ctx context.Context, args []any) (any, error)

// TableBackend implements Backend with an explicit procedure table.
type TableBackend struct {
	name    string
	procs   map[string]ProcFunc
	cleanup []func() error

	disposeOnce sync.Once
	disposeErr  error
}

// NewTableBackend creates a backend dispatching over the given procedure
// table.
func NewTableBackend(name string, procs map[string]ProcFunc) *TableBackend {
	return &TableBackend{name: name, procs: procs}
}

// OnDispose registers a cleanup function run exactly once at Dispose.
func (b *TableBackend) OnDispose(fn func() error) {
	b.cleanup = append(b.cleanup, fn)
}

// Name returns the backend name.
func (b *TableBackend) Name() string {
	return b.name
}

// Procedures returns the sorted procedure vocabulary.
func (b *TableBackend) Procedures() []string {
	names := make([]string, 0, len(b.procs))
	for name := range b.procs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Call dispatches one procedure. Unknown procedures and handler errors are
// value-level failures; handler panics are recovered.
func (b *TableBackend) Call(ctx context.Context, procedure string, args []any) Result {
	start := time.Now()
	done := func(r Result) Result {
		r.DurationMs = float64(time.Since(start).Microseconds()) / 1000.0
		return r
	}

	proc, ok := b.procs[procedure]
	if !ok {
		return done(Result{Success: false, Error: fmt.Sprintf("Unknown procedure: %s", procedure)})
	}

	var data any
	var err error
	func() {
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("procedure %s panicked: %v", procedure, r)
			}
		}()
		data, err = proc(ctx, args)
	}()

	if err != nil {
		return done(Result{Success: false, Error: err.Error()})
	}
	return done(Result{Success: true, Data: data})
}

// Dispose runs the registered cleanup functions. Exactly-once: a second call
// is a no-op returning the first call's error.
func (b *TableBackend) Dispose() error {
	b.disposeOnce.Do(func() {
		for _, fn := range b.cleanup {
			if err := fn(); err != nil && b.disposeErr == nil {
				b.disposeErr = err
			}
		}
	})
	return b.disposeErr
}

// Registry routes service calls to registered backends. It is an injected
// instance, not an ambient singleton, so tests construct isolated registries.
type Registry struct {
	mu       sync.RWMutex
	backends map[string]Backend
	logger   *zap.Logger
}

// NewRegistry creates an empty service registry.
func NewRegistry(logger *zap.Logger) *Registry {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Registry{
		backends: make(map[string]Backend),
		logger:   logger,
	}
}

// Register adds or replaces a backend under its name.
func (r *Registry) Register(backend Backend) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.backends[backend.Name()] = backend
	r.logger.Debug("service backend registered", zap.String("service", backend.Name()))
}

// Lookup returns the backend registered under name.
func (r *Registry) Lookup(name string) (Backend, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	b, ok := r.backends[name]
	return b, ok
}

// Names returns the sorted registered backend names.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.backends))
	for name := range r.backends {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Dispatch routes one call. Elapsed time is measured on every path, unknown
// backends included.
func (r *Registry) Dispatch(ctx context.Context, name, procedure string, args []any) Result {
	start := time.Now()

	backend, ok := r.Lookup(name)
	if !ok {
		return Result{
			Success:    false,
			Error:      fmt.Sprintf("Unknown service: %s", name),
			DurationMs: float64(time.Since(start).Microseconds()) / 1000.0,
		}
	}
	return backend.Call(ctx, procedure, args)
}

// Dispose tears down one backend and removes it from the registry.
func (r *Registry) Dispose(name string) error {
	r.mu.Lock()
	backend, ok := r.backends[name]
	delete(r.backends, name)
	r.mu.Unlock()

	if !ok {
		return nil
	}
	if err := backend.Dispose(); err != nil {
		return fmt.Errorf("failed to dispose service %s: %w", name, err)
	}
	return nil
}

// DisposeAll tears down every backend. The first error is returned; teardown
// continues regardless.
func (r *Registry) DisposeAll() error {
	r.mu.Lock()
	backends := make([]Backend, 0, len(r.backends))
	for _, b := range r.backends {
		backends = append(backends, b)
	}
	r.backends = make(map[string]Backend)
	r.mu.Unlock()

	var first error
	for _, b := range backends {
		if err := b.Dispose(); err != nil && first == nil {
			first = err
		}
	}
	return first
}
