// Package cache stores producer responses on disk so that re-running an
// analysis of the same document with the same model is free and
// deterministic.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"time"
)

// ErrNoDir is returned when the cache has no directory configured.
var ErrNoDir = errors.New("cache dir not configured")

// Entry is one cached producer response.
type Entry struct {
	Model string `json:"model"`
	// Kind names the prompt family ("analysis", "compare", ...).
	Kind    string    `json:"kind"`
	Text    string    `json:"text"`
	SavedAt time.Time `json:"saved_at"`
}

// LLMCache stores responses keyed by a digest of model and prompt.
type LLMCache struct {
	Dir string
	// StrictPerms enforces 0700 on the directory and 0600 on files.
	StrictPerms bool
}

// KeyFrom builds a cache key from model and prompt.
func KeyFrom(model string, prompt string) string {
	h := sha256.Sum256([]byte(model + "\n\n" + prompt))
	return hex.EncodeToString(h[:])
}

func (c *LLMCache) ensureDir() error {
	if c == nil || c.Dir == "" {
		return ErrNoDir
	}
	perm := os.FileMode(0o755)
	if c.StrictPerms {
		perm = 0o700
	}
	if err := os.MkdirAll(c.Dir, perm); err != nil {
		return err
	}
	if c.StrictPerms {
		if info, err := os.Stat(c.Dir); err == nil && info.Mode()&0o777 != 0o700 {
			_ = os.Chmod(c.Dir, 0o700)
		}
	}
	return nil
}

func (c *LLMCache) pathFor(key string) string {
	return filepath.Join(c.Dir, key+".json")
}

// Get returns the cached entry for key. A missing or unreadable entry is a
// miss, not an error. Hits refresh the file's mtime for LRU eviction.
func (c *LLMCache) Get(_ context.Context, key string) (Entry, bool, error) {
	if err := c.ensureDir(); err != nil {
		return Entry{}, false, err
	}
	p := c.pathFor(key)
	b, err := os.ReadFile(p)
	if err != nil {
		return Entry{}, false, nil
	}
	var e Entry
	if err := json.Unmarshal(b, &e); err != nil || e.Text == "" {
		return Entry{}, false, nil
	}
	now := time.Now()
	_ = os.Chtimes(p, now, now)
	return e, true, nil
}

// Save writes an entry under key, stamping SavedAt when unset.
func (c *LLMCache) Save(_ context.Context, key string, e Entry) error {
	if err := c.ensureDir(); err != nil {
		return err
	}
	if e.SavedAt.IsZero() {
		e.SavedAt = time.Now().UTC()
	}
	b, err := json.Marshal(e)
	if err != nil {
		return err
	}
	mode := os.FileMode(0o644)
	if c.StrictPerms {
		mode = 0o600
	}
	return os.WriteFile(c.pathFor(key), b, mode)
}
