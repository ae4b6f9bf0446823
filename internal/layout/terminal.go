package layout

import "strings"

// Rect is a region of terminal cells. X/Y are zero-based; the rect includes
// its border cells.
type Rect struct {
	X, Y, W, H int
}

// Interior returns the drawable region inside the border.
func (r Rect) Interior() Rect {
	return Rect{X: r.X + 1, Y: r.Y + 1, W: r.W - 2, H: r.H - 2}
}

// TerminalOptions configures terminal layout rendering.
type TerminalOptions struct {
	Width  int
	Height int
}

// TerminalLayoutManager renders a preset as bordered boxes over a terminal
// cell grid. Region geometry is computed from the preset's abstract grid by
// integer division; remainders go to the last row/column.
type TerminalLayoutManager struct {
	preset  *Preset
	opts    TerminalOptions
	regions map[string]Rect
}

// NewTerminalLayoutManager creates a manager for the given preset and
// terminal size.
func NewTerminalLayoutManager(preset *Preset, opts TerminalOptions) *TerminalLayoutManager {
	if opts.Width < preset.Cols*4 {
		opts.Width = preset.Cols * 4
	}
	if opts.Height < preset.Rows*3 {
		opts.Height = preset.Rows * 3
	}
	m := &TerminalLayoutManager{preset: preset, opts: opts}
	m.computeRegions()
	return m
}

// SlotNames returns the slot names the preset declares.
func (m *TerminalLayoutManager) SlotNames() []string {
	return m.preset.SlotNames()
}

// Regions returns the computed cell rectangle for every slot.
func (m *TerminalLayoutManager) Regions() map[string]Rect {
	out := make(map[string]Rect, len(m.regions))
	for k, v := range m.regions {
		out[k] = v
	}
	return out
}

func (m *TerminalLayoutManager) computeRegions() {
	m.regions = make(map[string]Rect, len(m.preset.Slots))

	colW := m.opts.Width / m.preset.Cols
	rowH := m.opts.Height / m.preset.Rows

	for _, s := range m.preset.Slots {
		x := s.Col * colW
		y := s.Row * rowH
		w := s.colSpan() * colW
		h := s.rowSpan() * rowH
		// Absorb the integer-division remainder at the grid edge
		if s.Col+s.colSpan() == m.preset.Cols {
			w = m.opts.Width - x
		}
		if s.Row+s.rowSpan() == m.preset.Rows {
			h = m.opts.Height - y
		}
		m.regions[s.Name] = Rect{X: x, Y: y, W: w, H: h}
	}
}

// Render draws the empty layout frame: one bordered box per slot with its
// title on the top border. Returns one string per terminal row.
func (m *TerminalLayoutManager) Render() []string {
	grid := make([][]rune, m.opts.Height)
	for y := range grid {
		grid[y] = make([]rune, m.opts.Width)
		for x := range grid[y] {
			grid[y][x] = ' '
		}
	}

	for _, s := range m.preset.Slots {
		r := m.regions[s.Name]
		drawBox(grid, r, s.Title)
	}

	lines := make([]string, m.opts.Height)
	for y := range grid {
		lines[y] = string(grid[y])
	}
	return lines
}

// FillRegion writes content lines into a slot's interior on an existing
// frame, clipping to the region. Unknown slot names are ignored.
func (m *TerminalLayoutManager) FillRegion(lines []string, name string, content []string) []string {
	r, ok := m.regions[name]
	if !ok {
		return lines
	}
	in := r.Interior()
	for i := 0; i < len(content) && i < in.H; i++ {
		row := []rune(lines[in.Y+i])
		text := []rune(content[i])
		for j := 0; j < len(text) && j < in.W; j++ {
			row[in.X+j] = text[j]
		}
		lines[in.Y+i] = string(row)
	}
	return lines
}

func drawBox(grid [][]rune, r Rect, title string) {
	if r.W < 2 || r.H < 2 {
		return
	}
	right := r.X + r.W - 1
	bottom := r.Y + r.H - 1

	for x := r.X + 1; x < right; x++ {
		grid[r.Y][x] = '─'
		grid[bottom][x] = '─'
	}
	for y := r.Y + 1; y < bottom; y++ {
		grid[y][r.X] = '│'
		grid[y][right] = '│'
	}
	grid[r.Y][r.X] = '┌'
	grid[r.Y][right] = '┐'
	grid[bottom][r.X] = '└'
	grid[bottom][right] = '┘'

	if title != "" {
		label := " " + title + " "
		max := r.W - 4
		if max > 0 {
			runes := []rune(label)
			if len(runes) > max {
				runes = runes[:max]
			}
			for i, c := range runes {
				grid[r.Y][r.X+2+i] = c
			}
		}
	}
}

// RenderString joins rendered rows with newlines.
func RenderString(lines []string) string {
	return strings.Join(lines, "\n")
}
