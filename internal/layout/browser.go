package layout

import (
	"fmt"
	"html"
	"strings"
)

// BrowserOptions configures browser layout rendering.
type BrowserOptions struct {
	// ContainerID is the id of the generated root element.
	ContainerID string
	// Gap is the CSS grid gap, e.g. "8px".
	Gap string
}

// BrowserLayoutManager renders a preset as an HTML/CSS grid whose regions
// carry the slot marker attribute, ready for slot discovery.
type BrowserLayoutManager struct {
	preset *Preset
	opts   BrowserOptions
}

// NewBrowserLayoutManager creates a manager for the given preset.
func NewBrowserLayoutManager(preset *Preset, opts BrowserOptions) *BrowserLayoutManager {
	if opts.ContainerID == "" {
		opts.ContainerID = "weft-layout"
	}
	if opts.Gap == "" {
		opts.Gap = "8px"
	}
	return &BrowserLayoutManager{preset: preset, opts: opts}
}

// SlotNames returns the slot names the preset declares.
func (m *BrowserLayoutManager) SlotNames() []string {
	return m.preset.SlotNames()
}

// Render produces the layout markup. Each slot region is an empty div the
// compositor fills after mounting.
func (m *BrowserLayoutManager) Render() string {
	var b strings.Builder

	fmt.Fprintf(&b, `<div id=%q class="weft-layout" data-weft-preset=%q style=%q>`,
		m.opts.ContainerID, m.preset.Name, m.containerStyle())
	b.WriteString("\n")

	for _, s := range m.preset.Slots {
		style := fmt.Sprintf("grid-row: %d / span %d; grid-column: %d / span %d; overflow: auto;",
			s.Row+1, s.rowSpan(), s.Col+1, s.colSpan())
		label := s.Title
		if label == "" {
			label = s.Name
		}
		fmt.Fprintf(&b, `  <div data-weft-slot=%q aria-label=%q style=%q></div>`,
			html.EscapeString(s.Name), html.EscapeString(label), style)
		b.WriteString("\n")
	}

	b.WriteString("</div>")
	return b.String()
}

func (m *BrowserLayoutManager) containerStyle() string {
	return fmt.Sprintf(
		"display: grid; grid-template-rows: repeat(%d, 1fr); grid-template-columns: repeat(%d, 1fr); gap: %s; width: 100%%; height: 100%%;",
		m.preset.Rows, m.preset.Cols, m.opts.Gap)
}
