// Package upload stores reference images on local disk and hands back the public
// URL that goes into the brief prompt.
package upload

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/bryanpdl/briefly/internal/apperr"
)

// DefaultMaxBytes caps a single upload.
const DefaultMaxBytes = 10 << 20 // 10 MB

// RoutePrefix is where saved files are served.
const RoutePrefix = "/uploads/"

var (
	mimeToExt = map[string]string{
		"image/png":  ".png",
		"image/jpeg": ".jpg",
		"image/gif":  ".gif",
		"image/bmp":  ".bmp",
		"image/webp": ".webp",
	}

	safeStemRe = regexp.MustCompile(`[^a-zA-Z0-9_-]+`)
)

// Store saves uploads under a single directory.
type Store struct {
	dir      string
	baseURL  string
	maxBytes int64
}

// NewStore creates a Store writing to dir. baseURL is prefixed to every returned
// URL so the link is usable from outside the service.
func NewStore(dir, baseURL string, maxBytes int64) (*Store, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("uploads: resolve dir: %w", err)
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, fmt.Errorf("uploads: mkdir: %w", err)
	}
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}
	return &Store{dir: abs, baseURL: strings.TrimRight(baseURL, "/"), maxBytes: maxBytes}, nil
}

// MaxBytes returns the upload size cap.
func (s *Store) MaxBytes() int64 { return s.maxBytes }

// Saved describes a stored upload.
type Saved struct {
	Filename string `json:"filename"`
	URL      string `json:"url"`
	Size     int    `json:"size"`
	MIMEType string `json:"mime_type"`
}

// Save reads r, checks that it really is an image, and stores it under a fresh
// name derived from the original one.
func (s *Store) Save(name string, r io.Reader) (*Saved, error) {
	data, err := io.ReadAll(io.LimitReader(r, s.maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("uploads: read: %w", err)
	}
	if int64(len(data)) > s.maxBytes {
		return nil, fmt.Errorf("%w: file too large (max %d bytes)", apperr.ErrInvalidInput, s.maxBytes)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty file", apperr.ErrInvalidInput)
	}

	mime := strings.Split(http.DetectContentType(data), ";")[0]
	ext, ok := mimeToExt[mime]
	if !ok {
		return nil, fmt.Errorf("%w: unsupported content type %s (allowed: png, jpg, gif, bmp, webp)", apperr.ErrInvalidInput, mime)
	}

	filename := storedName(name, ext, time.Now())
	if err := s.write(filename, data); err != nil {
		return nil, err
	}
	return &Saved{
		Filename: filename,
		URL:      s.baseURL + RoutePrefix + filename,
		Size:     len(data),
		MIMEType: mime,
	}, nil
}

// SaveDataURI stores a base64 data URI.
func (s *Store) SaveDataURI(name, uri string) (*Saved, error) {
	data, err := decodeDataURI(uri)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperr.ErrInvalidInput, err)
	}
	return s.Save(name, bytes.NewReader(data))
}

// Path returns the absolute path of a saved file. Names with path separators or
// traversal are rejected.
func (s *Store) Path(filename string) (string, error) {
	if filename == "" {
		return "", fmt.Errorf("%w: filename is required", apperr.ErrInvalidInput)
	}
	cleaned := filepath.Clean(filename)
	if cleaned != filepath.Base(cleaned) || strings.Contains(cleaned, "..") || strings.HasPrefix(cleaned, ".") {
		return "", fmt.Errorf("%w: invalid filename: %s", apperr.ErrInvalidInput, filename)
	}
	abs := filepath.Join(s.dir, cleaned)
	if _, err := os.Stat(abs); err != nil {
		return "", fmt.Errorf("upload %s: %w", filename, apperr.ErrNotFound)
	}
	return abs, nil
}

func (s *Store) write(filename string, data []byte) error {
	tmp, err := os.CreateTemp(s.dir, ".briefly-upload-*")
	if err != nil {
		return fmt.Errorf("uploads: create temp: %w", err)
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
		return fmt.Errorf("uploads: write temp: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("uploads: close temp: %w", err)
	}
	if err := os.Rename(tmpName, filepath.Join(s.dir, filename)); err != nil {
		return fmt.Errorf("uploads: rename: %w", err)
	}
	success = true
	return nil
}

// storedName builds "<unix millis>_<8 hex>_<stem><ext>". The extension always
// follows the sniffed type, never the client's.
func storedName(original, ext string, now time.Time) string {
	stem := strings.TrimSuffix(filepath.Base(original), filepath.Ext(original))
	stem = strings.Trim(safeStemRe.ReplaceAllString(stem, "_"), "_")
	if len(stem) > 40 {
		stem = stem[:40]
	}
	if stem == "" {
		stem = "image"
	}
	id := strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	return fmt.Sprintf("%d_%s_%s%s", now.UnixMilli(), id, stem, ext)
}

// decodeDataURI parses a data:[<mediatype>];base64,<data> URI.
func decodeDataURI(uri string) ([]byte, error) {
	rest, ok := strings.CutPrefix(uri, "data:")
	if !ok {
		return nil, fmt.Errorf("not a data URI")
	}
	meta, encoded, found := strings.Cut(rest, ",")
	if !found {
		return nil, fmt.Errorf("invalid data URI: missing comma separator")
	}
	if !strings.Contains(meta, ";base64") {
		return nil, fmt.Errorf("only base64 data URIs are supported")
	}
	data, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		data, err = base64.RawStdEncoding.DecodeString(encoded)
		if err != nil {
			return nil, fmt.Errorf("invalid base64 data: %w", err)
		}
	}
	return data, nil
}
