// Package userid manages the identifier of this installation.
package userid

import (
	"errors"
	"fmt"
	"log"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// FileName is the name of the id file inside the data directory
const FileName = "user_id"

// generate is swapped in tests
var generate = func() (string, error) {
	id, err := uuid.NewRandom()
	if err != nil {
		return "", err
	}
	return id.String(), nil
}

// Load returns the id stored at path, creating and persisting one on first use
func Load(path string) string {
	data, err := os.ReadFile(path)
	if err == nil {
		if id := strings.TrimSpace(string(data)); id != "" {
			return id
		}
	} else if !errors.Is(err, os.ErrNotExist) {
		log.Printf("Failed to read user id from %s: %v", path, err)
	}

	id, err := generate()
	if err != nil {
		log.Printf("Failed to generate user id, using fallback: %v", err)
		id = Fallback(time.Now())
	}

	if err := save(path, id); err != nil {
		log.Printf("Failed to persist user id: %v", err)
	}

	return id
}

// Fallback builds an id from a timestamp and a random suffix
func Fallback(now time.Time) string {
	return fmt.Sprintf("fallback-%d-%d", now.UnixMilli(), rand.Intn(1_000_000))
}

func save(path, id string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(id), 0o600); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
