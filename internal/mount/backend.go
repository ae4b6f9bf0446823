// Package mount owns the lifecycle of live widget instances. It drives
// opaque render backends (browser DOM, terminal) and guarantees at most one
// mounted widget per logical container, with overlapping mount cycles
// serialized through a per-container generation counter.
package mount

import (
	"context"
	"fmt"

	"github.com/weft-ui/weft/internal/compiler"
)

// Mode selects how a widget occupies its target.
type Mode string

const (
	// ModeEmbedded mounts the widget inside a host region
	ModeEmbedded Mode = "embedded"
	// ModeFullscreen gives the widget the entire surface
	ModeFullscreen Mode = "fullscreen"
)

// Target is an opaque render-target handle. Its concrete type belongs to the
// render backend (a DOM element handle, a terminal region).
type Target any

// Instance is a live widget created by a render backend.
type Instance interface {
	// Teardown destroys the instance and releases backend resources.
	Teardown() error
}

// RenderBackend instantiates compiled widgets against one render platform.
// Backends are opaque to the mounter: instantiation is the only contract.
type RenderBackend interface {
	Platform() compiler.Platform
	Instantiate(ctx context.Context, artifact *compiler.CompilationResult, target Target, mode Mode, services *ServiceProxy) (Instance, error)
}

// MountError reports a failed or superseded mount. It always leaves the
// container in a consistent state: either the previous widget, or nothing.
type MountError struct {
	Reason    string
	Container string
	Err       error
}

func (e *MountError) Error() string {
	msg := fmt.Sprintf("mount failed for container %q: %s", e.Container, e.Reason)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *MountError) Unwrap() error {
	return e.Err
}

// Superseded reports whether the mount lost to a newer cycle for the same
// container rather than failing outright.
func (e *MountError) Superseded() bool {
	return e.Reason == reasonSuperseded
}

const (
	reasonNoTarget      = "target unavailable"
	reasonNoBackend     = "no render backend for platform"
	reasonBadArtifact   = "artifact has compile errors"
	reasonInstantiation = "render backend instantiation failed"
	reasonSuperseded    = "superseded by a newer mount cycle"
	reasonCancelled     = "mount cancelled"
)
