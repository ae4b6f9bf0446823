package mount

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/weft-ui/weft/internal/compiler"
	"github.com/weft-ui/weft/internal/service"
)

// MountOptions describes where and how an artifact is mounted.
type MountOptions struct {
	// Target is the opaque render-target handle; nil is a MountError.
	Target Target
	// Mode is embedded or fullscreen.
	Mode Mode
	// Container is the logical container identity the at-most-one-mounted
	// invariant applies to.
	Container string
	// Platform selects the render backend.
	Platform compiler.Platform
}

// MountedWidget is the opaque handle for one live widget instance. Owned
// exclusively by the Mounter that created it.
type MountedWidget struct {
	id        string
	container string
	instance  Instance
	proxy     *ServiceProxy
	mounter   *Mounter

	unmounted atomic.Bool
}

// ID returns the instance id.
func (w *MountedWidget) ID() string {
	return w.id
}

// Container returns the logical container the widget is mounted in.
func (w *MountedWidget) Container() string {
	return w.container
}

// Proxy returns the widget's bound service proxy.
func (w *MountedWidget) Proxy() *ServiceProxy {
	return w.proxy
}

// containerState serializes mount cycles for one container. generation is the
// latest requested cycle; a cycle that observes a newer generation after any
// suspension point must not touch current.
type containerState struct {
	generation uint64
	current    *MountedWidget
}

// Mounter mounts compiled artifacts into render targets. All methods are safe
// for concurrent use; per-container ordering follows the generation counter.
type Mounter struct {
	mu         sync.Mutex
	backends   map[compiler.Platform]RenderBackend
	containers map[string]*containerState
	services   *service.Registry
	logger     *zap.Logger
}

// NewMounter creates a mounter dispatching to the given backends.
func NewMounter(services *service.Registry, logger *zap.Logger, backends ...RenderBackend) *Mounter {
	if logger == nil {
		logger = zap.NewNop()
	}
	m := &Mounter{
		backends:   make(map[compiler.Platform]RenderBackend),
		containers: make(map[string]*containerState),
		services:   services,
		logger:     logger,
	}
	for _, b := range backends {
		m.backends[b.Platform()] = b
	}
	return m
}

// RegisterBackend adds or replaces the backend for a platform.
func (m *Mounter) RegisterBackend(b RenderBackend) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.backends[b.Platform()] = b
}

// Mount instantiates the artifact against its target and attaches it to the
// container, unmounting any previously attached widget first. Mount is
// compare-and-replace, not blind attach: if a newer Mount for the same
// container starts while this one is suspended, this one tears its own
// instance down and reports a superseded MountError without touching the
// container.
func (m *Mounter) Mount(ctx context.Context, artifact *compiler.CompilationResult, opts MountOptions) (*MountedWidget, error) {
	if opts.Target == nil {
		return nil, &MountError{Reason: reasonNoTarget, Container: opts.Container}
	}
	if artifact == nil || !artifact.OK() {
		return nil, &MountError{Reason: reasonBadArtifact, Container: opts.Container}
	}

	m.mu.Lock()
	backend, ok := m.backends[opts.Platform]
	if !ok {
		m.mu.Unlock()
		return nil, &MountError{Reason: reasonNoBackend, Container: opts.Container}
	}
	cs := m.containers[opts.Container]
	if cs == nil {
		cs = &containerState{}
		m.containers[opts.Container] = cs
	}
	cs.generation++
	gen := cs.generation
	m.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return nil, &MountError{Reason: reasonCancelled, Container: opts.Container, Err: err}
	}

	proxy := NewServiceProxy(m.services)

	// Suspension point: backend instantiation may block on I/O.
	instance, err := backend.Instantiate(ctx, artifact, opts.Target, opts.Mode, proxy)
	if err != nil {
		proxy.Release()
		return nil, &MountError{Reason: reasonInstantiation, Container: opts.Container, Err: err}
	}

	handle := &MountedWidget{
		id:        uuid.NewString(),
		container: opts.Container,
		instance:  instance,
		proxy:     proxy,
		mounter:   m,
	}

	// Detach the previous widget only if this cycle is still the latest.
	m.mu.Lock()
	if cs.generation != gen || ctx.Err() != nil {
		m.mu.Unlock()
		m.teardown(handle)
		return nil, &MountError{Reason: reasonSuperseded, Container: opts.Container}
	}
	prev := cs.current
	cs.current = nil
	m.mu.Unlock()

	// Suspension point: prior teardown must fully resolve before attach.
	if prev != nil {
		m.unmountHandle(prev)
	}

	m.mu.Lock()
	if cs.generation != gen || ctx.Err() != nil {
		m.mu.Unlock()
		m.teardown(handle)
		return nil, &MountError{Reason: reasonSuperseded, Container: opts.Container}
	}
	cs.current = handle
	m.mu.Unlock()

	m.logger.Debug("widget mounted",
		zap.String("container", opts.Container),
		zap.String("instance", handle.id),
		zap.String("hash", shortHash(artifact.Hash)))
	return handle, nil
}

// Unmount tears down a mounted widget. Safe on nil and already-unmounted
// handles: both are no-ops.
func (m *Mounter) Unmount(handle *MountedWidget) {
	if handle == nil {
		return
	}
	m.mu.Lock()
	if cs, ok := m.containers[handle.container]; ok && cs.current == handle {
		cs.current = nil
	}
	m.mu.Unlock()
	m.unmountHandle(handle)
}

// Current returns the widget currently attached to the container, or nil.
func (m *Mounter) Current(container string) *MountedWidget {
	m.mu.Lock()
	defer m.mu.Unlock()
	if cs, ok := m.containers[container]; ok {
		return cs.current
	}
	return nil
}

// UnmountAll tears down every mounted widget.
func (m *Mounter) UnmountAll() {
	m.mu.Lock()
	var handles []*MountedWidget
	for _, cs := range m.containers {
		if cs.current != nil {
			handles = append(handles, cs.current)
			cs.current = nil
		}
	}
	m.mu.Unlock()

	for _, h := range handles {
		m.unmountHandle(h)
	}
}

// unmountHandle performs the idempotent teardown of one handle.
func (m *Mounter) unmountHandle(handle *MountedWidget) {
	if !handle.unmounted.CompareAndSwap(false, true) {
		return
	}
	if err := handle.instance.Teardown(); err != nil {
		m.logger.Warn("widget teardown failed",
			zap.String("container", handle.container),
			zap.String("instance", handle.id),
			zap.Error(err))
	}
	handle.proxy.Release()
	m.logger.Debug("widget unmounted",
		zap.String("container", handle.container),
		zap.String("instance", handle.id))
}

// teardown discards a handle that never got attached.
func (m *Mounter) teardown(handle *MountedWidget) {
	m.unmountHandle(handle)
}

func shortHash(hash string) string {
	if len(hash) > 12 {
		return hash[:12]
	}
	return hash
}
