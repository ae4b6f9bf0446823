// Package compositor orchestrates named slots for a render target: it takes
// a layout preset, compiles the widgets assigned to each slot, and mounts
// them into the discovered slot elements. It also drives the
// recompile-and-remount cycle for hot reload events.
package compositor

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/weft-ui/weft/internal/compiler"
	"github.com/weft-ui/weft/internal/layout"
	"github.com/weft-ui/weft/internal/mount"
	"github.com/weft-ui/weft/internal/slot"
	"github.com/weft-ui/weft/internal/watch"
)

// SourceProvider returns the current source for a widget identity. Used by
// hot reload to fetch the post-change source text.
type SourceProvider func(ctx context.Context, widgetID string) (compiler.WidgetSource, error)

// ApplyRequest assigns widgets to a preset's slots on one host surface.
type ApplyRequest struct {
	Preset   string
	Platform compiler.Platform
	Image    string
	Mode     mount.Mode
	// Root is the host tree to discover slots from; built by the caller with
	// the target's render backend.
	Root slot.Element
	// Assignments maps slot name -> widget source.
	Assignments map[string]compiler.WidgetSource
}

// Applied reports the outcome per slot. A slot either mounted or carries its
// failure diagnostics; a failed slot keeps whatever it showed before.
type Applied struct {
	Preset   string
	Mounted  map[string]*mount.MountedWidget
	Failures map[string][]string
}

// binding remembers where a widget identity is mounted so a reload event can
// re-run its compile-and-mount cycle against the same container.
type binding struct {
	widgetID  string
	container string
	target    mount.Target
	platform  compiler.Platform
	image     string
	mode      mount.Mode
	source    compiler.WidgetSource
	provider  SourceProvider
}

// Compositor composes compiled widgets into slots and services reload events.
type Compositor struct {
	compiler *compiler.Compiler
	mounter  *mount.Mounter
	slots    *slot.Registry
	logger   *zap.Logger

	// reload, when set, receives building/reload/error notifications for
	// browser surfaces.
	reload *watch.ReloadServer

	mu       sync.Mutex
	bindings map[string]*binding
}

// New creates a compositor over the given pipeline pieces.
func New(c *compiler.Compiler, m *mount.Mounter, slots *slot.Registry, logger *zap.Logger) *Compositor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Compositor{
		compiler: c,
		mounter:  m,
		slots:    slots,
		logger:   logger,
		bindings: make(map[string]*binding),
	}
}

// SetReloadServer attaches a reload push server. Optional.
func (c *Compositor) SetReloadServer(rs *watch.ReloadServer) {
	c.reload = rs
}

// BindSource registers a provider for a widget identity so reload cycles can
// fetch its fresh source. Without a provider, reloads re-use the source seen
// at Apply time.
func (c *Compositor) BindSource(widgetID string, provider SourceProvider) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if b, ok := c.bindings[widgetID]; ok {
		b.provider = provider
		return
	}
	c.bindings[widgetID] = &binding{widgetID: widgetID, provider: provider}
}

// Apply looks up the preset, discovers the host tree's slots, then compiles
// and mounts each assigned widget. Per-slot failures leave that slot's
// previous content intact and are reported in Applied.Failures.
func (c *Compositor) Apply(ctx context.Context, req ApplyRequest) (*Applied, error) {
	preset, ok := layout.GetPreset(req.Preset)
	if !ok {
		return nil, fmt.Errorf("unknown layout preset %q", req.Preset)
	}
	if req.Root == nil {
		return nil, fmt.Errorf("apply requires a host root")
	}
	if req.Mode == "" {
		req.Mode = mount.ModeEmbedded
	}

	c.slots.DiscoverSlots(req.Root)

	applied := &Applied{
		Preset:   req.Preset,
		Mounted:  make(map[string]*mount.MountedWidget),
		Failures: make(map[string][]string),
	}

	for _, slotName := range preset.SlotNames() {
		src, assigned := req.Assignments[slotName]
		if !assigned {
			continue
		}

		el, found := c.slots.Lookup(slotName)
		if !found {
			c.logger.Warn("assigned slot missing from host tree",
				zap.String("preset", req.Preset),
				zap.String("slot", slotName))
			applied.Failures[slotName] = []string{fmt.Sprintf("slot %q not present in host tree", slotName)}
			continue
		}

		container := containerKey(req.Preset, slotName)
		handle, errs := c.compileAndMount(ctx, src, mountSpec{
			container: container,
			target:    el,
			platform:  req.Platform,
			image:     req.Image,
			mode:      req.Mode,
		})
		if len(errs) > 0 {
			applied.Failures[slotName] = errs
			continue
		}
		applied.Mounted[slotName] = handle

		if src.Name != "" {
			c.remember(src, mountSpec{
				container: container,
				target:    el,
				platform:  req.Platform,
				image:     req.Image,
				mode:      req.Mode,
			})
		}
	}

	return applied, nil
}

type mountSpec struct {
	container string
	target    mount.Target
	platform  compiler.Platform
	image     string
	mode      mount.Mode
}

// compileAndMount runs one compile-and-mount cycle. The previous widget in
// the container survives any failure: compile errors never reach the mounter,
// and the mounter only swaps after successful instantiation.
func (c *Compositor) compileAndMount(ctx context.Context, src compiler.WidgetSource, spec mountSpec) (*mount.MountedWidget, []string) {
	result := c.compiler.Compile(src, compiler.TargetOptions{
		Platform: spec.platform,
		Image:    spec.image,
	})
	if !result.OK() {
		return nil, result.Errors
	}

	handle, err := c.mounter.Mount(ctx, &result, mount.MountOptions{
		Target:    spec.target,
		Mode:      spec.mode,
		Container: spec.container,
		Platform:  spec.platform,
	})
	if err != nil {
		return nil, []string{err.Error()}
	}
	return handle, nil
}

func (c *Compositor) remember(src compiler.WidgetSource, spec mountSpec) {
	c.mu.Lock()
	defer c.mu.Unlock()
	b, ok := c.bindings[src.Name]
	if !ok {
		b = &binding{widgetID: src.Name}
		c.bindings[src.Name] = b
	}
	b.container = spec.container
	b.target = spec.target
	b.platform = spec.platform
	b.image = spec.image
	b.mode = spec.mode
	b.source = src
}

// HandleReload runs exactly one recompile-and-remount cycle for the widget
// named by the event. Cycles for the same container are serialized by the
// mounter's generation discipline; a superseded cycle drops out silently.
// Failures surface through the normal compile/mount error paths and never
// stop subsequent watching.
func (c *Compositor) HandleReload(ctx context.Context, ev watch.Event) {
	c.mu.Lock()
	b, ok := c.bindings[ev.WidgetID]
	var spec mountSpec
	var provider SourceProvider
	var src compiler.WidgetSource
	if ok {
		spec = mountSpec{
			container: b.container,
			target:    b.target,
			platform:  b.platform,
			image:     b.image,
			mode:      b.mode,
		}
		provider = b.provider
		src = b.source
	}
	c.mu.Unlock()

	if !ok || spec.target == nil {
		c.logger.Debug("reload event for unbound widget", zap.String("widget", ev.WidgetID))
		return
	}

	if c.reload != nil {
		c.reload.NotifyBuilding(ev.WidgetID)
	}
	start := time.Now()

	if provider != nil {
		fresh, err := provider(ctx, ev.WidgetID)
		if err != nil {
			c.logger.Warn("reload source fetch failed",
				zap.String("widget", ev.WidgetID),
				zap.Error(err))
			if c.reload != nil {
				c.reload.NotifyErrors(ev.WidgetID, []string{err.Error()})
			}
			return
		}
		src = fresh
		c.mu.Lock()
		b.source = fresh
		c.mu.Unlock()
	}

	if _, errs := c.compileAndMount(ctx, src, spec); len(errs) > 0 {
		for _, msg := range errs {
			c.logger.Warn("reload cycle failed",
				zap.String("widget", ev.WidgetID),
				zap.String("error", msg))
		}
		if c.reload != nil {
			c.reload.NotifyErrors(ev.WidgetID, errs)
		}
		return
	}

	if c.reload != nil {
		c.reload.NotifyReload(ev.WidgetID, time.Since(start))
	}
	c.logger.Info("widget reloaded",
		zap.String("widget", ev.WidgetID),
		zap.Duration("took", time.Since(start)))
}

// Teardown unmounts everything and clears bindings.
func (c *Compositor) Teardown() {
	c.mounter.UnmountAll()
	c.mu.Lock()
	c.bindings = make(map[string]*binding)
	c.mu.Unlock()
}

func containerKey(preset, slotName string) string {
	return preset + ":" + slotName
}
