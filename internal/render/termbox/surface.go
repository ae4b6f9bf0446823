// Package termbox is the terminal render backend. It maintains a cell
// surface carved into bordered regions by a layout preset and instantiates
// compiled widgets by drawing into those regions.
package termbox

import (
	"strings"
	"sync"

	"github.com/weft-ui/weft/internal/layout"
	"github.com/weft-ui/weft/internal/slot"
)

// Surface is a terminal cell buffer hosting a rendered layout. It implements
// slot.Element as the discovery root: its children are the layout regions.
type Surface struct {
	mu      sync.RWMutex
	width   int
	height  int
	lines   []string
	regions []*Region
	manager *layout.TerminalLayoutManager
}

// NewLayoutSurface renders a preset's frame onto a fresh surface and returns
// it with one region per slot.
func NewLayoutSurface(preset *layout.Preset, opts layout.TerminalOptions) *Surface {
	mgr := layout.NewTerminalLayoutManager(preset, opts)
	lines := mgr.Render()

	s := &Surface{
		width:   len([]rune(lines[0])),
		height:  len(lines),
		lines:   lines,
		manager: mgr,
	}
	for name, rect := range mgr.Regions() {
		s.regions = append(s.regions, &Region{surface: s, name: name, rect: rect})
	}
	return s
}

// Lines returns the current frame, one string per terminal row.
func (s *Surface) Lines() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, len(s.lines))
	copy(out, s.lines)
	return out
}

// String returns the frame as a single newline-joined string.
func (s *Surface) String() string {
	return strings.Join(s.Lines(), "\n")
}

// Region returns the named region, or nil.
func (s *Surface) Region(name string) *Region {
	for _, r := range s.regions {
		if r.name == name {
			return r
		}
	}
	return nil
}

// Attribute implements slot.Element; the surface root carries no marker.
func (s *Surface) Attribute(string) (string, bool) {
	return "", false
}

// Children returns the layout regions.
func (s *Surface) Children() []slot.Element {
	out := make([]slot.Element, len(s.regions))
	for i, r := range s.regions {
		out[i] = r
	}
	return out
}

// Content returns the full rendered frame.
func (s *Surface) Content() string {
	return s.String()
}

// SetContent is a no-op on the root surface; content lives in regions.
func (s *Surface) SetContent(string) {}

// fillRegion writes content lines into a region's interior, clipping to fit
// and blanking cells the content does not cover.
func (s *Surface) fillRegion(rect layout.Rect, content string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	in := rect.Interior()
	contentLines := strings.Split(content, "\n")
	for row := 0; row < in.H; row++ {
		line := []rune(s.lines[in.Y+row])
		var text []rune
		if row < len(contentLines) {
			text = []rune(contentLines[row])
		}
		for col := 0; col < in.W; col++ {
			c := ' '
			if col < len(text) {
				c = text[col]
			}
			line[in.X+col] = c
		}
		s.lines[in.Y+row] = string(line)
	}
}

// Region is one slot-backed rectangle of the surface. It implements
// slot.Element so slot discovery and mounting treat terminal regions like
// browser nodes.
type Region struct {
	surface *Surface
	name    string
	rect    layout.Rect

	mu      sync.RWMutex
	content string
}

// Name returns the region's slot name.
func (r *Region) Name() string {
	return r.name
}

// Rect returns the region's cell rectangle, border included.
func (r *Region) Rect() layout.Rect {
	return r.rect
}

// Attribute implements slot.Element: regions carry the slot marker.
func (r *Region) Attribute(name string) (string, bool) {
	if name == slot.MarkerAttribute {
		return r.name, true
	}
	return "", false
}

// Children implements slot.Element; regions are leaves.
func (r *Region) Children() []slot.Element {
	return nil
}

// Content returns the region's logical content.
func (r *Region) Content() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.content
}

// SetContent replaces the region's content and redraws its cells.
func (r *Region) SetContent(content string) {
	r.mu.Lock()
	r.content = content
	r.mu.Unlock()
	r.surface.fillRegion(r.rect, content)
}
