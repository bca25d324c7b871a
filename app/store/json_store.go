package store

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/lysyi3m/release-radar/app/release"
)

// JSONStore keeps the release collection as one indented JSON array,
// newest first. Writes replace the whole file.
type JSONStore struct {
	path string
}

func NewJSONStore(path string) *JSONStore {
	return &JSONStore{path: path}
}

func (s *JSONStore) Path() string {
	return s.path
}

// Load reads the collection. A missing file is an empty collection.
func (s *JSONStore) Load() ([]release.Release, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return []release.Release{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read store file: %w", err)
	}

	if len(bytes.TrimSpace(data)) == 0 {
		return []release.Release{}, nil
	}

	var releases []release.Release
	if err := json.Unmarshal(data, &releases); err != nil {
		return nil, fmt.Errorf("failed to decode store file %s: %w", s.path, err)
	}

	return normalize(releases), nil
}

// Save overwrites the collection through a temporary file in the same
// directory so readers never see a partial write.
func (s *JSONStore) Save(releases []release.Release) error {
	data, err := Encode(releases)
	if err != nil {
		return err
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create store directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		return fmt.Errorf("failed to set store file mode: %w", err)
	}

	if err := os.Rename(tmpName, s.path); err != nil {
		return fmt.Errorf("failed to replace store file: %w", err)
	}

	return nil
}

// Encode renders releases in the store file format.
func Encode(releases []release.Release) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "    ")

	if err := enc.Encode(normalize(releases)); err != nil {
		return nil, fmt.Errorf("failed to encode releases: %w", err)
	}

	return buf.Bytes(), nil
}

// normalize returns a copy without nil genre lists so the file never
// contains null where a list is expected.
func normalize(releases []release.Release) []release.Release {
	out := make([]release.Release, len(releases))
	copy(out, releases)
	for i := range out {
		if out[i].Genres == nil {
			out[i].Genres = []string{}
		}
	}
	return out
}
