package draft

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/bryanpdl/briefly/internal/apperr"
	"github.com/bryanpdl/briefly/internal/checksum"
)

const (
	fileExt    = ".json"
	tmpPattern = ".briefly-tmp-*"
	removedTag = "removed"
)

// FS is a Store that keeps one JSON file per draft under a directory.
type FS struct {
	root string // absolute path to drafts directory

	mu      sync.Mutex
	written map[string]string // id -> checksum of the last bytes this store wrote
}

// NewFS creates a file-backed store rooted at dir, creating it if needed.
func NewFS(dir string) (*FS, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("drafts: resolve root: %w", err)
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, fmt.Errorf("drafts: mkdir root: %w", err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("drafts: stat root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("drafts: root is not a directory: %s", abs)
	}
	return &FS{root: abs, written: make(map[string]string)}, nil
}

// Root returns the absolute drafts directory.
func (f *FS) Root() string { return f.root }

// pathFor maps a draft id to its file and rejects ids that would escape root.
func (f *FS) pathFor(id string) (string, error) {
	if id == "" || strings.ContainsAny(id, `/\`) || strings.HasPrefix(id, ".") {
		return "", fmt.Errorf("drafts: invalid id %q: %w", id, apperr.ErrInvalidInput)
	}
	abs := filepath.Join(f.root, id+fileExt)
	if filepath.Dir(abs) != f.root {
		return "", fmt.Errorf("drafts: id escapes root: %q: %w", id, apperr.ErrInvalidInput)
	}
	return abs, nil
}

func (f *FS) Create(_ context.Context, d *Draft) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, err := f.pathFor(d.ID)
	if err != nil {
		return err
	}
	if _, err := os.Stat(p); err == nil {
		return fmt.Errorf("draft %s: %w", d.ID, apperr.ErrAlreadyExists)
	}
	return f.write(p, d)
}

func (f *FS) Load(_ context.Context, id string) (*Draft, error) {
	p, err := f.pathFor(id)
	if err != nil {
		return nil, err
	}
	return f.read(id, p)
}

func (f *FS) Update(_ context.Context, id string, fn func(*Draft) error) (*Draft, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, err := f.pathFor(id)
	if err != nil {
		return nil, err
	}
	d, err := f.read(id, p)
	if err != nil {
		return nil, err
	}
	if err := fn(d); err != nil {
		return nil, err
	}
	if err := f.write(p, d); err != nil {
		return nil, err
	}
	return d.Clone(), nil
}

func (f *FS) Delete(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, err := f.pathFor(id)
	if err != nil {
		return err
	}
	if err := os.Remove(p); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("draft %s: %w", id, apperr.ErrNotFound)
		}
		return fmt.Errorf("drafts: delete %s: %w", id, err)
	}
	f.written[id] = removedTag
	return nil
}

func (f *FS) List(_ context.Context) ([]*Draft, error) {
	entries, err := os.ReadDir(f.root)
	if err != nil {
		return nil, fmt.Errorf("drafts: list: %w", err)
	}
	var out []*Draft
	for _, e := range entries {
		id, ok := idFromName(e.Name())
		if e.IsDir() || !ok {
			continue
		}
		d, err := f.read(id, filepath.Join(f.root, e.Name()))
		if err != nil {
			// Removed between ReadDir and read.
			if errors.Is(err, apperr.ErrNotFound) {
				continue
			}
			return nil, err
		}
		out = append(out, d)
	}
	sortNewestFirst(out)
	return out, nil
}

func (f *FS) read(id, p string) (*Draft, error) {
	data, err := os.ReadFile(p)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("draft %s: %w", id, apperr.ErrNotFound)
		}
		return nil, fmt.Errorf("drafts: read %s: %w", id, err)
	}
	var d Draft
	if err := json.Unmarshal(data, &d); err != nil {
		return nil, fmt.Errorf("drafts: decode %s: %w", id, err)
	}
	d.ID = id
	return &d, nil
}

// write atomically replaces p: tmp file → fsync → rename. Callers hold f.mu.
func (f *FS) write(p string, d *Draft) error {
	data, err := json.MarshalIndent(d, "", "  ")
	if err != nil {
		return fmt.Errorf("drafts: encode %s: %w", d.ID, err)
	}

	tmp, err := os.CreateTemp(f.root, tmpPattern)
	if err != nil {
		return fmt.Errorf("drafts: create temp: %w", err)
	}
	tmpName := tmp.Name()

	success := false
	defer func() {
		if !success {
			_ = tmp.Close()
			_ = os.Remove(tmpName)
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		return fmt.Errorf("drafts: write temp: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("drafts: fsync: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("drafts: close temp: %w", err)
	}
	if err := os.Rename(tmpName, p); err != nil {
		return fmt.Errorf("drafts: rename: %w", err)
	}
	success = true
	f.written[d.ID] = checksum.Of(string(data))
	return nil
}

// ownRemove reports whether id was last deleted through this store and forgets it.
func (f *FS) ownRemove(id string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	own := f.written[id] == removedTag
	delete(f.written, id)
	return own
}

// ownWrite reports whether data is exactly what this store last wrote for id.
func (f *FS) ownWrite(id string, data []byte) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.written[id] == checksum.Of(string(data))
}

func idFromName(name string) (string, bool) {
	if strings.HasPrefix(name, ".") || !strings.HasSuffix(name, fileExt) {
		return "", false
	}
	return strings.TrimSuffix(name, fileExt), true
}
