package browserdom

import (
	"context"
	"fmt"
	"html"
	"sync"

	"github.com/weft-ui/weft/internal/compiler"
	"github.com/weft-ui/weft/internal/mount"
)

// Backend instantiates compiled widgets into browser DOM nodes. The compiled
// module itself executes in the browser; this side produces the bootstrap
// markup (a widget root plus its module script) and writes it into the target
// node.
type Backend struct {
	// ArtifactURL renders the URL the browser loads a compiled module from.
	// Defaults to the dev server's artifact route.
	ArtifactURL func(hash string) string

	mu sync.Mutex
	// priors holds each occupied node's pre-mount content. The entry is made
	// when a node first becomes occupied and restored by whichever instance
	// owns the node's content at teardown, so replacing a widget keeps the
	// original content as the restore point.
	priors map[*Node]string
}

// NewBackend creates a browser backend with the default artifact route.
func NewBackend() *Backend {
	return &Backend{
		ArtifactURL: func(hash string) string {
			return "/artifacts/" + hash + ".mjs"
		},
		priors: make(map[*Node]string),
	}
}

// Platform returns the platform this backend serves.
func (b *Backend) Platform() compiler.Platform {
	return compiler.PlatformBrowser
}

// Instantiate writes the widget bootstrap markup into the target node. The
// target must be a *Node; the node's pre-mount content is restored when its
// occupying instance tears down.
func (b *Backend) Instantiate(ctx context.Context, artifact *compiler.CompilationResult, target mount.Target, mode mount.Mode, services *mount.ServiceProxy) (mount.Instance, error) {
	node, ok := target.(*Node)
	if !ok {
		return nil, fmt.Errorf("browser backend requires a *browserdom.Node target, got %T", target)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	inst := &instance{
		backend: b,
		node:    node,
		markup:  b.bootstrapMarkup(artifact, mode),
	}

	b.mu.Lock()
	if _, occupied := b.priors[node]; !occupied {
		b.priors[node] = node.Content()
	}
	node.SetContent(inst.markup)
	b.mu.Unlock()
	return inst, nil
}

func (b *Backend) bootstrapMarkup(artifact *compiler.CompilationResult, mode mount.Mode) string {
	class := "weft-widget"
	if mode == mount.ModeFullscreen {
		class += " weft-widget--fullscreen"
	}
	name := artifact.Meta.Name
	if name == "" {
		name = artifact.Hash[:12]
	}
	return fmt.Sprintf(
		`<div class=%q data-weft-widget=%q></div><script type="module" src=%q></script>`,
		class, html.EscapeString(name), b.ArtifactURL(artifact.Hash))
}

// instance is one live browser widget.
type instance struct {
	backend *Backend
	node    *Node
	markup  string
}

// Teardown restores the node's pre-mount content, but only while the node
// still shows this instance's markup. A replaced instance leaves the
// successor's markup in place; the successor inherits the restore point.
func (i *instance) Teardown() error {
	b := i.backend
	b.mu.Lock()
	defer b.mu.Unlock()
	if i.node.Content() == i.markup {
		i.node.SetContent(b.priors[i.node])
		delete(b.priors, i.node)
	}
	return nil
}
