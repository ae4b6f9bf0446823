// Package browserdom is the browser render backend. It models the host DOM
// as a lightweight node tree the embedding browser surface mirrors, and
// instantiates compiled widgets by writing their bootstrap markup into target
// nodes.
package browserdom

import (
	"fmt"
	"html"
	"sort"
	"strings"
	"sync"

	"github.com/weft-ui/weft/internal/layout"
	"github.com/weft-ui/weft/internal/slot"
)

// Node is a host DOM element handle. It implements slot.Element so slot
// discovery and mounting work over browser trees.
type Node struct {
	mu       sync.RWMutex
	tag      string
	attrs    map[string]string
	children []*Node
	content  string
}

// NewNode creates an element node.
func NewNode(tag string, attrs map[string]string) *Node {
	if attrs == nil {
		attrs = make(map[string]string)
	}
	return &Node{tag: tag, attrs: attrs}
}

// Tag returns the element tag name.
func (n *Node) Tag() string {
	return n.tag
}

// Attribute returns the named attribute and whether it is present.
func (n *Node) Attribute(name string) (string, bool) {
	n.mu.RLock()
	defer n.mu.RUnlock()
	v, ok := n.attrs[name]
	return v, ok
}

// SetAttribute sets an attribute.
func (n *Node) SetAttribute(name, value string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.attrs[name] = value
}

// Append adds a child node.
func (n *Node) Append(child *Node) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.children = append(n.children, child)
}

// Children returns the child elements.
func (n *Node) Children() []slot.Element {
	n.mu.RLock()
	defer n.mu.RUnlock()
	out := make([]slot.Element, len(n.children))
	for i, c := range n.children {
		out[i] = c
	}
	return out
}

// Content returns the node's inner content.
func (n *Node) Content() string {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.content
}

// SetContent replaces the node's inner content.
func (n *Node) SetContent(content string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.content = content
}

// OuterHTML serializes the node for transport to the browser surface.
func (n *Node) OuterHTML() string {
	n.mu.RLock()
	defer n.mu.RUnlock()

	var b strings.Builder
	fmt.Fprintf(&b, "<%s", n.tag)
	names := make([]string, 0, len(n.attrs))
	for name := range n.attrs {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(&b, " %s=%q", name, html.EscapeString(n.attrs[name]))
	}
	b.WriteString(">")
	b.WriteString(n.content)
	for _, c := range n.children {
		b.WriteString(c.OuterHTML())
	}
	fmt.Fprintf(&b, "</%s>", n.tag)
	return b.String()
}

// NewLayoutTree builds the host tree for a preset: a root container with one
// child region per slot, each carrying the slot marker attribute. The tree is
// what slot discovery scans.
func NewLayoutTree(preset *layout.Preset) *Node {
	root := NewNode("div", map[string]string{
		"class":            "weft-layout",
		"data-weft-preset": preset.Name,
	})
	for _, s := range preset.Slots {
		root.Append(NewNode("div", map[string]string{
			slot.MarkerAttribute: s.Name,
		}))
	}
	return root
}
