package compiler

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/weft-ui/weft/internal/compiler/diag"
)

// runtimePrelude binds the h/Fragment factories the transform emits calls to.
const runtimePrelude = `import { h, Fragment } from "@weft/runtime";` + "\n"

// Compiler compiles widget source into mountable artifacts. Results are
// content-addressed: the cache key is a hash of the normalized source and the
// cache-relevant target options, never the widget's declared name.
//
// Compile never returns an error and never panics across the boundary; all
// failure is reported through CompilationResult.Errors.
type Compiler struct {
	cache  *ResultCache
	hasher *Hasher
	images *ImageRegistry
	logger *zap.Logger
}

// Option configures a Compiler.
type Option func(*Compiler)

// WithImages replaces the default image registry.
func WithImages(images *ImageRegistry) Option {
	return func(c *Compiler) { c.images = images }
}

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) Option {
	return func(c *Compiler) { c.logger = logger }
}

// New creates a compiler with its own cache and the built-in image registry.
func New(opts ...Option) *Compiler {
	c := &Compiler{
		cache:  NewResultCache(),
		hasher: NewHasher(),
		images: NewImageRegistry(),
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Images exposes the compiler's image registry.
func (c *Compiler) Images() *ImageRegistry {
	return c.images
}

// Cache exposes the compiler's result cache.
func (c *Compiler) Cache() *ResultCache {
	return c.cache
}

// Compile transforms widget source for the given target. On a cache hit the
// stored result is returned with FromCache set and no transformation work.
// Only module/syntax-level problems are diagnosed; type errors in the source
// pass through undetected by design.
func (c *Compiler) Compile(src WidgetSource, opts TargetOptions) (result CompilationResult) {
	hash := c.hasher.HashInputs(src.Code, opts)

	if cached, ok := c.cache.Get(hash); ok {
		c.logger.Debug("compile cache hit", zap.String("hash", hash[:12]))
		return cached
	}

	defer func() {
		if r := recover(); r != nil {
			c.logger.Error("compiler panic", zap.Any("panic", r))
			result = CompilationResult{
				Hash:   hash,
				Meta:   metaOf(src),
				Errors: []string{fmt.Sprintf("error [SYN000]: internal compiler failure: %v", r)},
			}
		}
	}()

	start := time.Now()
	result = c.compile(src, opts, hash)
	result.CompilationTimeMs = float64(time.Since(start).Microseconds()) / 1000.0

	if result.OK() {
		c.cache.Set(hash, result)
		c.logger.Debug("compiled widget",
			zap.String("name", src.Name),
			zap.String("hash", hash[:12]),
			zap.Float64("ms", result.CompilationTimeMs))
	} else {
		c.logger.Warn("widget compilation failed",
			zap.String("name", src.Name),
			zap.Strings("errors", result.Errors))
	}
	return result
}

func (c *Compiler) compile(src WidgetSource, opts TargetOptions, hash string) CompilationResult {
	result := CompilationResult{
		Hash: hash,
		Meta: metaOf(src),
	}

	img, ok := c.images.Get(opts.Image)
	if !ok {
		d := diag.Errorf(diag.ModuleUnknownImage, 0, 0, "unknown image %q", opts.Image)
		result.Errors = []string{d.String()}
		return result
	}

	if diags := resolveImports(src.Code, img); len(diags) > 0 {
		result.Errors = diag.Strings(diags)
		return result
	}

	code, derr := transformJSX(src.Code)
	if derr != nil {
		result.Errors = []string{derr.String()}
		return result
	}

	if !hasRuntimeImport(code) {
		code = runtimePrelude + code
	}
	result.Code = code
	return result
}

func metaOf(src WidgetSource) WidgetMeta {
	return WidgetMeta{
		Name:        src.Name,
		Description: src.Description,
		Packages:    src.Packages,
		Services:    src.Services,
	}
}
