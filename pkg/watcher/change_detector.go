package watcher

import (
	"encoding/hex"
	"errors"
	"io"
	"io/fs"
	"os"
	"sync"

	"github.com/zeebo/xxh3"
)

// ChangeDetector remembers a content hash per file so that saves which
// don't change a patch can be ignored
type ChangeDetector struct {
	mu     sync.Mutex
	hashes map[string]string
}

// NewChangeDetector creates an empty change detector
func NewChangeDetector() *ChangeDetector {
	return &ChangeDetector{hashes: make(map[string]string)}
}

// Changed hashes the file and reports whether the content differs from the
// last call. A file seen for the first time counts as changed, so does a
// file that has disappeared since it was last seen.
func (cd *ChangeDetector) Changed(path string) (bool, error) {
	hash, err := fileHash(path)
	if errors.Is(err, fs.ErrNotExist) {
		cd.mu.Lock()
		defer cd.mu.Unlock()
		_, known := cd.hashes[path]
		delete(cd.hashes, path)
		return known, nil
	}
	if err != nil {
		return false, err
	}

	cd.mu.Lock()
	defer cd.mu.Unlock()
	if prev, ok := cd.hashes[path]; ok && prev == hash {
		return false, nil
	}
	cd.hashes[path] = hash
	return true, nil
}

// Forget drops the stored hash of a file
func (cd *ChangeDetector) Forget(path string) {
	cd.mu.Lock()
	defer cd.mu.Unlock()
	delete(cd.hashes, path)
}

// Filter returns the paths of an event whose content actually changed.
// Paths that can't be read are kept so the caller sees the read error.
func (cd *ChangeDetector) Filter(event ChangeEvent) []string {
	var changed []string
	for _, path := range event.Paths {
		if event.Type == ChangeTypeRemoved {
			cd.Forget(path)
			changed = append(changed, path)
			continue
		}
		ok, err := cd.Changed(path)
		if err != nil || ok {
			changed = append(changed, path)
		}
	}
	return changed
}

func fileHash(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h := xxh3.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
