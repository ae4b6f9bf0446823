package compiler

import (
	"sort"
	"sync"
)

// Image is a named package set an artifact's imports are resolved against.
// Images are read-only after registration.
type Image struct {
	Name     string            `json:"name"`
	Packages map[string]string `json:"packages"` // import specifier -> version
}

// Has reports whether the image provides the given package.
func (img *Image) Has(pkg string) bool {
	_, ok := img.Packages[pkg]
	return ok
}

// ImageRegistry maps image names to package sets. A default image backs
// requests that do not name one.
type ImageRegistry struct {
	mu     sync.RWMutex
	images map[string]*Image
}

// DefaultImageName is used when TargetOptions.Image is empty.
const DefaultImageName = "base"

// NewImageRegistry creates a registry pre-populated with the built-in base
// image.
func NewImageRegistry() *ImageRegistry {
	reg := &ImageRegistry{
		images: make(map[string]*Image),
	}
	reg.Register(&Image{
		Name: DefaultImageName,
		Packages: map[string]string{
			"react":         "18.3.1",
			"react-dom":     "18.3.1",
			"@weft/runtime": "1.0.0",
			"@weft/widgets": "1.0.0",
		},
	})
	return reg
}

// Register adds or replaces an image by name.
func (ir *ImageRegistry) Register(img *Image) {
	ir.mu.Lock()
	defer ir.mu.Unlock()
	ir.images[img.Name] = img
}

// Names returns the sorted registered image names.
func (ir *ImageRegistry) Names() []string {
	ir.mu.RLock()
	defer ir.mu.RUnlock()
	names := make([]string, 0, len(ir.images))
	for name := range ir.images {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Get looks up an image by name. An empty name resolves to the default image.
func (ir *ImageRegistry) Get(name string) (*Image, bool) {
	if name == "" {
		name = DefaultImageName
	}
	ir.mu.RLock()
	defer ir.mu.RUnlock()
	img, ok := ir.images[name]
	return img, ok
}
