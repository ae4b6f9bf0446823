// Package compiler turns widget source text (JSX/TSX fragments) into
// mountable render artifacts. It performs syntax-level transformation and
// module resolution only; compiled results are content-addressed by a hash of
// their inputs and cached. Static type checking of widget source is an
// explicit non-goal: type errors pass through this pipeline undetected.
package compiler

// Platform identifies a render target.
type Platform string

const (
	// PlatformBrowser targets the DOM-based browser surface
	PlatformBrowser Platform = "browser"
	// PlatformTerminal targets the terminal surface
	PlatformTerminal Platform = "terminal"
)

// WidgetSource is an immutable compile request: the widget code plus optional
// metadata. The core never persists it.
type WidgetSource struct {
	Code        string   `json:"code"`
	Name        string   `json:"name,omitempty"`
	Description string   `json:"description,omitempty"`
	Packages    []string `json:"packages,omitempty"`
	Services    []string `json:"services,omitempty"`
}

// TargetOptions selects the render target and package-set identity for a
// compile request.
type TargetOptions struct {
	Name     string   `json:"name,omitempty"`
	Version  string   `json:"version,omitempty"`
	Platform Platform `json:"platform"`
	Image    string   `json:"image,omitempty"`
}

// WidgetMeta is the metadata carried alongside a compiled artifact.
type WidgetMeta struct {
	Name        string   `json:"name,omitempty"`
	Description string   `json:"description,omitempty"`
	Packages    []string `json:"packages,omitempty"`
	Services    []string `json:"services,omitempty"`
}

// CompilationResult is the outcome of a compile invocation. Exactly one of
// {non-empty Code, non-empty Errors} holds: usable code and failure are
// mutually exclusive. Immutable once returned.
type CompilationResult struct {
	Code              string     `json:"code"`
	Hash              string     `json:"hash"`
	CompilationTimeMs float64    `json:"compilation_time_ms"`
	FromCache         bool       `json:"from_cache"`
	Meta              WidgetMeta `json:"meta"`
	Errors            []string   `json:"errors,omitempty"`
}

// OK reports whether the compilation produced usable code.
func (r *CompilationResult) OK() bool {
	return len(r.Errors) == 0 && r.Code != ""
}
