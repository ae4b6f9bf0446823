package compiler

import (
	"regexp"
	"strings"

	"github.com/weft-ui/weft/internal/compiler/diag"
)

// importPattern matches ES module import statements:
//
//	import "pkg"
//	import X from "pkg"
//	import { a, b } from "pkg"
//	import * as X from "pkg"
//	import X, { a } from "pkg"
var importPattern = regexp.MustCompile(`(?m)^[ \t]*import\s+(?:type\s+)?(?:(?:[\w$]+|\*\s*as\s+[\w$]+|\{[^}]*\})(?:\s*,\s*(?:[\w$]+|\{[^}]*\}))?\s+from\s+)?["']([^"']+)["']`)

// runtimeImportPattern detects an existing import of the widget runtime so the
// compiler does not inject a duplicate h/Fragment binding.
var runtimeImportPattern = regexp.MustCompile(`(?m)^[ \t]*import\s+[^"']*["']@weft/runtime["']`)

// collectImports returns every import specifier in source order.
func collectImports(source string) []string {
	matches := importPattern.FindAllStringSubmatch(source, -1)
	specs := make([]string, 0, len(matches))
	for _, m := range matches {
		specs = append(specs, m[1])
	}
	return specs
}

// resolveImports checks every non-relative import specifier against the
// image's package set. Relative imports are the widget author's own files and
// pass through untouched.
func resolveImports(source string, img *Image) []*diag.Diagnostic {
	var diags []*diag.Diagnostic
	for _, spec := range collectImports(source) {
		if strings.HasPrefix(spec, "./") || strings.HasPrefix(spec, "../") {
			continue
		}
		pkg := packageOf(spec)
		if !img.Has(pkg) {
			diags = append(diags, diag.Errorf(diag.ModuleUnknownPackage, 0, 0,
				"package %q is not available in image %q", pkg, img.Name))
		}
	}
	return diags
}

// packageOf reduces an import specifier to its package identity:
// "react-dom/client" -> "react-dom", "@weft/widgets/button" -> "@weft/widgets".
func packageOf(spec string) string {
	parts := strings.Split(spec, "/")
	if strings.HasPrefix(spec, "@") && len(parts) >= 2 {
		return parts[0] + "/" + parts[1]
	}
	return parts[0]
}

// hasRuntimeImport reports whether source already imports the widget runtime.
func hasRuntimeImport(source string) bool {
	return runtimeImportPattern.MatchString(source)
}
