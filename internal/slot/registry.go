// Package slot tracks named mount points within a host layout. The registry
// maps slot names to host element handles; it never owns an element's
// lifetime — the embedding render backend does.
package slot

import (
	"sort"
	"sync"

	"go.uber.org/zap"
)

// MarkerAttribute is the attribute DiscoverSlots scans for on host elements.
const MarkerAttribute = "data-weft-slot"

// Element is a weak handle to a host element. Implementations belong to the
// render backends.
type Element interface {
	// Attribute returns the named attribute and whether it is present.
	Attribute(name string) (string, bool)
	// Children returns the element's child elements.
	Children() []Element
	// Content returns the element's current rendered content.
	Content() string
	// SetContent replaces the element's rendered content.
	SetContent(content string)
}

// RestoreFunc puts a slot's captured prior content back verbatim.
type RestoreFunc func()

// Registry maps slot names to host elements. Registration is last-write-wins;
// construct one registry per host surface.
type Registry struct {
	mu     sync.RWMutex
	slots  map[string]Element
	logger *zap.Logger
}

// NewRegistry creates an empty slot registry.
func NewRegistry(logger *zap.Logger) *Registry {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Registry{
		slots:  make(map[string]Element),
		logger: logger,
	}
}

// Register associates a slot name with a host element. A later registration
// for the same name overwrites the earlier one.
func (r *Registry) Register(name string, el Element) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.slots[name] = el
}

// Unregister removes a slot by name.
func (r *Registry) Unregister(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.slots, name)
}

// Lookup returns the element registered under name.
func (r *Registry) Lookup(name string) (Element, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	el, ok := r.slots[name]
	return el, ok
}

// Names returns the sorted registered slot names.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.slots))
	for name := range r.slots {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// DiscoverSlots walks the host tree depth-first and registers every element
// carrying the slot marker attribute under its declared name. Re-running
// refreshes the registry: last-discovered wins. Returns how many slots were
// found.
func (r *Registry) DiscoverSlots(root Element) int {
	if root == nil {
		return 0
	}
	count := 0
	var walk func(el Element)
	walk = func(el Element) {
		if name, ok := el.Attribute(MarkerAttribute); ok && name != "" {
			r.Register(name, el)
			count++
		}
		for _, child := range el.Children() {
			walk(child)
		}
	}
	walk(root)
	r.logger.Debug("discovered slots", zap.Int("count", count))
	return count
}

// MountToSlot replaces the named slot's content, capturing the prior content
// first. The returned restore function puts the captured content back
// verbatim, so nested mounts can be undone in reverse order.
//
// An unknown slot name is a reported no-op: the mount is skipped, a warning is
// logged, and the returned restore does nothing. The bool return makes the
// degraded path explicit — false means the content was not applied.
func (r *Registry) MountToSlot(name, content string) (RestoreFunc, bool) {
	el, ok := r.Lookup(name)
	if !ok {
		r.logger.Warn("slot not found, skipping mount", zap.String("slot", name))
		return func() {}, false
	}

	prior := el.Content()
	el.SetContent(content)
	return func() {
		el.SetContent(prior)
	}, true
}

// ClearSlots empties the registry.
func (r *Registry) ClearSlots() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.slots = make(map[string]Element)
}
