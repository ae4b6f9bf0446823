package compiler

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// ArtifactStore persists compiled artifacts to a directory, keyed by hash:
// <hash>.mjs holds the executable code, <hash>.json the result metadata.
// Eviction policy is left to the embedding application.
type ArtifactStore struct {
	dir string
}

// NewArtifactStore creates the store directory if needed.
func NewArtifactStore(dir string) (*ArtifactStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create artifact dir: %w", err)
	}
	return &ArtifactStore{dir: dir}, nil
}

// Dir returns the store directory.
func (s *ArtifactStore) Dir() string {
	return s.dir
}

// Save writes a successful compilation result to disk. Failed results are not
// persisted.
func (s *ArtifactStore) Save(result CompilationResult) error {
	if !result.OK() {
		return fmt.Errorf("refusing to persist failed compilation %s", result.Hash)
	}

	codePath := filepath.Join(s.dir, result.Hash+".mjs")
	if err := os.WriteFile(codePath, []byte(result.Code), 0o644); err != nil {
		return fmt.Errorf("failed to write artifact code: %w", err)
	}

	meta, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal artifact metadata: %w", err)
	}
	metaPath := filepath.Join(s.dir, result.Hash+".json")
	if err := os.WriteFile(metaPath, meta, 0o644); err != nil {
		return fmt.Errorf("failed to write artifact metadata: %w", err)
	}
	return nil
}

// Load rehydrates a compilation result by hash.
func (s *ArtifactStore) Load(hash string) (CompilationResult, error) {
	metaPath := filepath.Join(s.dir, hash+".json")
	data, err := os.ReadFile(metaPath)
	if err != nil {
		return CompilationResult{}, fmt.Errorf("artifact %s not found: %w", hash, err)
	}

	var result CompilationResult
	if err := json.Unmarshal(data, &result); err != nil {
		return CompilationResult{}, fmt.Errorf("corrupt artifact metadata %s: %w", hash, err)
	}
	result.FromCache = true
	result.CompilationTimeMs = 0
	return result, nil
}

// Code returns just the executable text for a stored artifact.
func (s *ArtifactStore) Code(hash string) ([]byte, error) {
	data, err := os.ReadFile(filepath.Join(s.dir, hash+".mjs"))
	if err != nil {
		return nil, fmt.Errorf("artifact %s not found: %w", hash, err)
	}
	return data, nil
}

// Has reports whether an artifact with the given hash is stored.
func (s *ArtifactStore) Has(hash string) bool {
	_, err := os.Stat(filepath.Join(s.dir, hash+".json"))
	return err == nil
}
