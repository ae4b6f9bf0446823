package compiler

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// Hasher computes content hashes for compile cache keys. The key is derived
// purely from source content and target options, never from a human-supplied
// widget name, so distinct sources sharing a name cannot collide.
type Hasher struct{}

// NewHasher creates a new hasher
func NewHasher() *Hasher {
	return &Hasher{}
}

// HashInputs computes a SHA-256 hash over the normalized source text and the
// cache-relevant subset of target options (platform and image identity).
func (h *Hasher) HashInputs(source string, opts TargetOptions) string {
	hasher := sha256.New()
	hasher.Write([]byte(NormalizeSource(source)))
	hasher.Write([]byte{0})
	hasher.Write([]byte(opts.Platform))
	hasher.Write([]byte{0})
	hasher.Write([]byte(opts.Image))
	return hex.EncodeToString(hasher.Sum(nil))
}

// HashContent computes a SHA-256 hash of the given content
func (h *Hasher) HashContent(content []byte) string {
	sum := sha256.Sum256(content)
	return hex.EncodeToString(sum[:])
}

// NormalizeSource canonicalizes source text for hashing: CRLF becomes LF and
// trailing whitespace is stripped per line. Formatting-only differences that
// survive normalization still produce distinct hashes.
func NormalizeSource(source string) string {
	source = strings.ReplaceAll(source, "\r\n", "\n")
	lines := strings.Split(source, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimRight(line, " \t")
	}
	return strings.Join(lines, "\n")
}
