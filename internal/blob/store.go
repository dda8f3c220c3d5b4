// Package blob stores generated portrait images on durable storage.
package blob

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/google/uuid"
)

// Store persists portrait bytes and resolves stored file names back to
// readable paths.
type Store interface {
	// SavePortrait writes data under a name derived from characterName plus
	// a uniqueness token and returns the stored file name.
	SavePortrait(characterName string, data []byte) (string, error)
	// FilePath resolves a stored file name to an absolute path, rejecting
	// anything that escapes the storage directory.
	FilePath(fileName string) (string, error)
}

var unsafeNameChars = regexp.MustCompile(`[^a-zA-Z0-9]`)

// FileStore keeps portraits as PNG files in a single directory.
type FileStore struct {
	dir string
}

// NewFileStore creates the storage directory if needed.
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create portrait directory: %w", err)
	}
	return &FileStore{dir: dir}, nil
}

func (s *FileStore) SavePortrait(characterName string, data []byte) (string, error) {
	safeName := unsafeNameChars.ReplaceAllString(characterName, "_")
	// uuid suffix rather than a timestamp: two creations in the same
	// instant must not collide
	fileName := fmt.Sprintf("character_%s_%s.png", safeName, uuid.NewString())

	path := filepath.Join(s.dir, fileName)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write portrait: %w", err)
	}
	return fileName, nil
}

func (s *FileStore) FilePath(fileName string) (string, error) {
	if fileName != filepath.Base(fileName) || strings.HasPrefix(fileName, ".") {
		return "", fmt.Errorf("invalid portrait file name %q", fileName)
	}
	path := filepath.Join(s.dir, fileName)
	if _, err := os.Stat(path); err != nil {
		return "", err
	}
	return path, nil
}
