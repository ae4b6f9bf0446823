package diag

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
)

// Format returns a human-readable diagnostic report for terminal output,
// including a source snippet around the diagnostic position when the source
// text is provided.
func Format(d *Diagnostic, source string) string {
	var b strings.Builder

	header := color.New(color.FgRed, color.Bold)
	if d.Severity == SeverityWarning {
		header = color.New(color.FgYellow, color.Bold)
	}

	fmt.Fprintf(&b, "%s %s: %s\n", header.Sprintf("%s[%s]", d.Severity, d.Code), d.Category, d.Message)

	if d.Line > 0 && source != "" {
		lines := strings.Split(source, "\n")
		if d.Line <= len(lines) {
			// Show the offending line with one line of context on each side
			start := d.Line - 2
			if start < 0 {
				start = 0
			}
			end := d.Line + 1
			if end > len(lines) {
				end = len(lines)
			}
			for i := start; i < end; i++ {
				marker := "  "
				if i == d.Line-1 {
					marker = color.RedString("→ ")
				}
				fmt.Fprintf(&b, "%s%4d | %s\n", marker, i+1, lines[i])
				if i == d.Line-1 && d.Column > 0 {
					fmt.Fprintf(&b, "  %4s | %s%s\n", "", strings.Repeat(" ", d.Column-1), color.RedString("^"))
				}
			}
		}
	}

	return b.String()
}

// FormatList formats every diagnostic in order, separated by blank lines.
func FormatList(diags []*Diagnostic, source string) string {
	if len(diags) == 0 {
		return "no diagnostics"
	}
	parts := make([]string, len(diags))
	for i, d := range diags {
		parts[i] = Format(d, source)
	}
	return strings.Join(parts, "\n")
}
