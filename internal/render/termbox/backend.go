package termbox

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/weft-ui/weft/internal/compiler"
	"github.com/weft-ui/weft/internal/mount"
)

// Backend instantiates compiled widgets into terminal regions. The terminal
// surface cannot execute the compiled module; it draws the widget's identity
// and metadata, and the embedding terminal host drives the module through the
// service proxy.
type Backend struct {
	mu sync.Mutex
	// priors holds each occupied region's pre-mount content. The entry is made
	// when a region first becomes occupied and restored by whichever instance
	// owns the region's content at teardown, so replacing a widget keeps the
	// original content as the restore point.
	priors map[*Region]string
}

// NewBackend creates a terminal backend.
func NewBackend() *Backend {
	return &Backend{priors: make(map[*Region]string)}
}

// Platform returns the platform this backend serves.
func (b *Backend) Platform() compiler.Platform {
	return compiler.PlatformTerminal
}

// Instantiate draws the widget into the target region. The target must be a
// *Region; the region's pre-mount content is restored when its occupying
// instance tears down.
func (b *Backend) Instantiate(ctx context.Context, artifact *compiler.CompilationResult, target mount.Target, mode mount.Mode, services *mount.ServiceProxy) (mount.Instance, error) {
	region, ok := target.(*Region)
	if !ok {
		return nil, fmt.Errorf("terminal backend requires a *termbox.Region target, got %T", target)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	inst := &instance{
		backend: b,
		region:  region,
		drawn:   widgetContent(artifact, mode),
	}

	b.mu.Lock()
	if _, occupied := b.priors[region]; !occupied {
		b.priors[region] = region.Content()
	}
	region.SetContent(inst.drawn)
	b.mu.Unlock()
	return inst, nil
}

func widgetContent(artifact *compiler.CompilationResult, mode mount.Mode) string {
	name := artifact.Meta.Name
	if name == "" {
		name = "widget " + artifact.Hash[:12]
	}
	lines := []string{name}
	if artifact.Meta.Description != "" {
		lines = append(lines, artifact.Meta.Description)
	}
	if mode == mount.ModeFullscreen {
		lines = append(lines, "[fullscreen]")
	}
	return strings.Join(lines, "\n")
}

// instance is one live terminal widget.
type instance struct {
	backend *Backend
	region  *Region
	drawn   string
}

// Teardown restores the region's pre-mount content, but only while the region
// still shows this instance's drawing. A replaced instance leaves the
// successor's drawing in place; the successor inherits the restore point.
func (i *instance) Teardown() error {
	b := i.backend
	b.mu.Lock()
	defer b.mu.Unlock()
	if i.region.Content() == i.drawn {
		i.region.SetContent(b.priors[i.region])
		delete(b.priors, i.region)
	}
	return nil
}
