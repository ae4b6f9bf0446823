// Package layout defines named, versioned layout presets and the per-target
// managers that turn a preset into concrete render directives: CSS/HTML for
// the browser surface, box-drawing directives for the terminal surface.
package layout

import "sync"

// SlotSpec places one named slot on the preset's abstract grid.
type SlotSpec struct {
	Name    string `json:"name"`
	Row     int    `json:"row"`
	Col     int    `json:"col"`
	RowSpan int    `json:"row_span,omitempty"`
	ColSpan int    `json:"col_span,omitempty"`
	// Title is drawn on the terminal border and used as an aria-label in the
	// browser.
	Title string `json:"title,omitempty"`
}

// Preset is a named, versioned layout template. Read-only after definition.
type Preset struct {
	Name    string     `json:"name"`
	Version string     `json:"version"`
	Rows    int        `json:"rows"`
	Cols    int        `json:"cols"`
	Slots   []SlotSpec `json:"slots"`
}

// SlotNames returns the slot names the preset declares, in definition order.
func (p *Preset) SlotNames() []string {
	names := make([]string, len(p.Slots))
	for i, s := range p.Slots {
		names[i] = s.Name
	}
	return names
}

func (s SlotSpec) rowSpan() int {
	if s.RowSpan < 1 {
		return 1
	}
	return s.RowSpan
}

func (s SlotSpec) colSpan() int {
	if s.ColSpan < 1 {
		return 1
	}
	return s.ColSpan
}

// Built-in presets. Registration and lookup may run concurrently (server
// handlers resolve presets while startup code extends the set).
var presetMu sync.RWMutex

var presets = map[string]*Preset{
	"single": {
		Name:    "single",
		Version: "1.0",
		Rows:    1,
		Cols:    1,
		Slots: []SlotSpec{
			{Name: "main", Row: 0, Col: 0, Title: "Main"},
		},
	},
	"split": {
		Name:    "split",
		Version: "1.0",
		Rows:    1,
		Cols:    2,
		Slots: []SlotSpec{
			{Name: "left", Row: 0, Col: 0, Title: "Left"},
			{Name: "right", Row: 0, Col: 1, Title: "Right"},
		},
	},
	"sidebar": {
		Name:    "sidebar",
		Version: "1.0",
		Rows:    1,
		Cols:    4,
		Slots: []SlotSpec{
			{Name: "nav", Row: 0, Col: 0, Title: "Navigation"},
			{Name: "main", Row: 0, Col: 1, ColSpan: 3, Title: "Main"},
		},
	},
	"dashboard": {
		Name:    "dashboard",
		Version: "1.0",
		Rows:    3,
		Cols:    2,
		Slots: []SlotSpec{
			{Name: "header", Row: 0, Col: 0, ColSpan: 2, Title: "Header"},
			{Name: "main", Row: 1, Col: 0, Title: "Main"},
			{Name: "aside", Row: 1, Col: 1, Title: "Aside"},
			{Name: "footer", Row: 2, Col: 0, ColSpan: 2, Title: "Footer"},
		},
	},
}

// GetPreset looks up a preset by name.
func GetPreset(name string) (*Preset, bool) {
	presetMu.RLock()
	defer presetMu.RUnlock()
	p, ok := presets[name]
	return p, ok
}

// RegisterPreset adds a preset to the lookup table. Presets are immutable
// once registered.
func RegisterPreset(p *Preset) {
	presetMu.Lock()
	defer presetMu.Unlock()
	presets[p.Name] = p
}

// PresetNames returns the names of all registered presets.
func PresetNames() []string {
	presetMu.RLock()
	defer presetMu.RUnlock()
	names := make([]string, 0, len(presets))
	for name := range presets {
		names = append(names, name)
	}
	return names
}
