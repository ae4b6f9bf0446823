package compiler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompile_Success(t *testing.T) {
	c := New()

	result := c.Compile(
		WidgetSource{Code: `export function C(){ return <div>{1+1}</div> }`, Name: "calc"},
		TargetOptions{Platform: PlatformBrowser},
	)

	require.Empty(t, result.Errors)
	assert.NotEmpty(t, result.Code)
	assert.NotEmpty(t, result.Hash)
	assert.False(t, result.FromCache)
	assert.NotContains(t, result.Code, "<div>")
	assert.Contains(t, result.Code, `import { h, Fragment } from "@weft/runtime";`)
	assert.Equal(t, "calc", result.Meta.Name)
}

func TestCompile_CacheHit(t *testing.T) {
	c := New()
	src := WidgetSource{Code: `export const V = <span>hi</span>`}
	opts := TargetOptions{Platform: PlatformBrowser}

	first := c.Compile(src, opts)
	second := c.Compile(src, opts)

	require.Empty(t, first.Errors)
	assert.False(t, first.FromCache)
	assert.True(t, second.FromCache)
	assert.Equal(t, first.Code, second.Code)
	assert.Equal(t, first.Hash, second.Hash)
	assert.Zero(t, second.CompilationTimeMs)
}

func TestCompile_OneByteChangeMisses(t *testing.T) {
	c := New()
	opts := TargetOptions{Platform: PlatformBrowser}

	a := c.Compile(WidgetSource{Code: `export const V = <span>aa</span>`}, opts)
	b := c.Compile(WidgetSource{Code: `export const V = <span>ab</span>`}, opts)

	assert.NotEqual(t, a.Hash, b.Hash)
	assert.False(t, b.FromCache)
}

func TestCompile_NameDoesNotAffectHash(t *testing.T) {
	c := New()
	opts := TargetOptions{Platform: PlatformBrowser}
	code := `export const V = <span>same</span>`

	a := c.Compile(WidgetSource{Code: code, Name: "alpha"}, opts)
	b := c.Compile(WidgetSource{Code: code, Name: "beta"}, opts)

	// Same content, different human names: one cache entry, no collision
	assert.Equal(t, a.Hash, b.Hash)
	assert.True(t, b.FromCache)
}

func TestCompile_PlatformChangesHash(t *testing.T) {
	c := New()
	code := `export const V = <span>x</span>`

	browser := c.Compile(WidgetSource{Code: code}, TargetOptions{Platform: PlatformBrowser})
	terminal := c.Compile(WidgetSource{Code: code}, TargetOptions{Platform: PlatformTerminal})

	assert.NotEqual(t, browser.Hash, terminal.Hash)
	assert.False(t, terminal.FromCache)
}

func TestCompile_SyntaxErrorReported(t *testing.T) {
	c := New()

	result := c.Compile(
		WidgetSource{Code: `export const V = <div><span>broken</div>`},
		TargetOptions{Platform: PlatformBrowser},
	)

	require.NotEmpty(t, result.Errors)
	assert.Empty(t, result.Code)
	assert.Contains(t, result.Errors[0], "SYN")
}

func TestCompile_FailuresNotCached(t *testing.T) {
	c := New()
	src := WidgetSource{Code: `export const V = <div>`}
	opts := TargetOptions{Platform: PlatformBrowser}

	first := c.Compile(src, opts)
	second := c.Compile(src, opts)

	require.NotEmpty(t, first.Errors)
	assert.False(t, second.FromCache)
	assert.Equal(t, 0, c.Cache().Size())
}

func TestCompile_UnknownPackage(t *testing.T) {
	c := New()

	result := c.Compile(
		WidgetSource{Code: "import { chart } from \"vega-lite\"\nexport const V = <div/>"},
		TargetOptions{Platform: PlatformBrowser},
	)

	require.NotEmpty(t, result.Errors)
	assert.Contains(t, result.Errors[0], "vega-lite")
	assert.Contains(t, result.Errors[0], "MOD101")
}

func TestCompile_KnownAndRelativeImports(t *testing.T) {
	c := New()

	result := c.Compile(
		WidgetSource{Code: "import { useState } from \"react\"\nimport { helper } from \"./util\"\nexport const V = <div/>"},
		TargetOptions{Platform: PlatformBrowser},
	)

	assert.Empty(t, result.Errors)
}

func TestCompile_UnknownImage(t *testing.T) {
	c := New()

	result := c.Compile(
		WidgetSource{Code: `export const V = <div/>`},
		TargetOptions{Platform: PlatformBrowser, Image: "nonexistent"},
	)

	require.NotEmpty(t, result.Errors)
	assert.Contains(t, result.Errors[0], "MOD103")
}

func TestCompile_CustomImage(t *testing.T) {
	c := New()
	c.Images().Register(&Image{
		Name:     "charts",
		Packages: map[string]string{"vega-lite": "5.0.0", "@weft/runtime": "1.0.0"},
	})

	result := c.Compile(
		WidgetSource{Code: "import { chart } from \"vega-lite\"\nexport const V = <div/>"},
		TargetOptions{Platform: PlatformBrowser, Image: "charts"},
	)

	assert.Empty(t, result.Errors)
}

func TestCompile_TypeErrorsPassThrough(t *testing.T) {
	c := New()

	// Deliberately wrong types: the pipeline only does syntax and module
	// transformation, so this compiles cleanly.
	result := c.Compile(
		WidgetSource{Code: `const n: number = "not a number"; export const V = <div>{n}</div>`},
		TargetOptions{Platform: PlatformBrowser},
	)

	assert.Empty(t, result.Errors)
	assert.NotEmpty(t, result.Code)
}

func TestCompile_MeasuresTime(t *testing.T) {
	c := New()

	result := c.Compile(
		WidgetSource{Code: `export const V = <div>x</div>`},
		TargetOptions{Platform: PlatformBrowser},
	)

	assert.GreaterOrEqual(t, result.CompilationTimeMs, 0.0)
}

func TestNormalizeSource(t *testing.T) {
	assert.Equal(t, NormalizeSource("a  \nb\t\n"), NormalizeSource("a\r\nb\r\n"))
	assert.NotEqual(t, NormalizeSource("a\nb"), NormalizeSource("a\nc"))
}
