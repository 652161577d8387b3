package cache

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// ClearDir removes the directory and all contents, then recreates it empty.
func ClearDir(dir string) error {
	if strings.TrimSpace(dir) == "" {
		return errors.New("empty dir")
	}
	if err := os.RemoveAll(dir); err != nil {
		return err
	}
	return os.MkdirAll(dir, 0o755)
}

type cacheFile struct {
	path string
	mod  time.Time
}

func listEntries(dir string) ([]cacheFile, error) {
	var out []cacheFile
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(d.Name(), ".json") {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return nil
		}
		out = append(out, cacheFile{path: path, mod: info.ModTime().UTC()})
		return nil
	})
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	return out, err
}

// PurgeByAge removes entries not used for longer than maxAge. A non-positive
// maxAge removes nothing.
func PurgeByAge(dir string, maxAge time.Duration) (int, error) {
	if maxAge <= 0 {
		return 0, nil
	}
	files, err := listEntries(dir)
	if err != nil {
		return 0, err
	}
	now := time.Now().UTC()
	removed := 0
	for _, f := range files {
		if now.Sub(f.mod) > maxAge {
			if os.Remove(f.path) == nil {
				removed++
			}
		}
	}
	return removed, nil
}

// EnforceLimits evicts least recently used entries until at most maxCount
// remain. maxAge is applied first when positive. maxCount <= 0 means no
// count limit.
func EnforceLimits(dir string, maxAge time.Duration, maxCount int) (int, error) {
	removed, err := PurgeByAge(dir, maxAge)
	if err != nil || maxCount <= 0 {
		return removed, err
	}
	files, err := listEntries(dir)
	if err != nil {
		return removed, err
	}
	if len(files) <= maxCount {
		return removed, nil
	}
	sort.Slice(files, func(i, j int) bool { return files[i].mod.Before(files[j].mod) })
	for _, f := range files[:len(files)-maxCount] {
		if os.Remove(f.path) == nil {
			removed++
		}
	}
	return removed, nil
}
