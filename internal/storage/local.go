package storage

import (
	"fmt"
	"io"
	"mime"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	apperrors "github.com/nxzen/ticketdesk/pkg/util"
)

// StoredFile describes a file after it has been written to storage.
type StoredFile struct {
	Key      string
	Filename string
	MimeType string
	Size     int64
}

// LocalStore writes attachments under a date-partitioned directory tree,
// attachments/YYYY/MM/<uuid><ext>. Keys are relative paths within the root
// and never contain caller-supplied names.
type LocalStore struct {
	root     string
	maxBytes int64
}

// NewLocalStore builds a store rooted at dir.
func NewLocalStore(dir string, maxSizeMB int) (*LocalStore, error) {
	if maxSizeMB <= 0 {
		maxSizeMB = 20
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create uploads dir: %w", err)
	}
	return &LocalStore{root: dir, maxBytes: int64(maxSizeMB) << 20}, nil
}

// Save streams an upload to disk and returns its descriptor. The mime type
// is derived from the filename extension, falling back to a binary type.
func (s *LocalStore) Save(filename string, r io.Reader) (*StoredFile, error) {
	name := filepath.Base(filename)
	if name == "." || name == "/" || name == "" {
		name = "attachment"
	}

	ext := strings.ToLower(filepath.Ext(name))
	mimeType := mime.TypeByExtension(ext)
	if mimeType == "" {
		mimeType = "application/octet-stream"
	}

	now := time.Now().UTC()
	relDir := filepath.Join("attachments", now.Format("2006"), now.Format("01"))
	if err := os.MkdirAll(filepath.Join(s.root, relDir), 0o755); err != nil {
		return nil, err
	}

	key := filepath.Join(relDir, uuid.NewString()+ext)
	dst, err := os.Create(filepath.Join(s.root, key))
	if err != nil {
		return nil, err
	}

	written, err := io.Copy(dst, io.LimitReader(r, s.maxBytes+1))
	if cerr := dst.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		_ = os.Remove(filepath.Join(s.root, key))
		return nil, err
	}
	if written > s.maxBytes {
		_ = os.Remove(filepath.Join(s.root, key))
		return nil, apperrors.NewValidationError("attachment exceeds size limit", map[string]any{
			"max_bytes": s.maxBytes,
		})
	}

	return &StoredFile{Key: key, Filename: name, MimeType: mimeType, Size: written}, nil
}

// Open returns a reader for a stored file. Keys that escape the root are
// rejected.
func (s *LocalStore) Open(key string) (io.ReadCloser, error) {
	clean := filepath.Clean(key)
	if strings.HasPrefix(clean, "..") || filepath.IsAbs(clean) {
		return nil, apperrors.NewValidationError("invalid storage key", nil)
	}
	f, err := os.Open(filepath.Join(s.root, clean))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, apperrors.NewNotFound("attachment", map[string]any{"key": key})
		}
		return nil, err
	}
	return f, nil
}

// Remove deletes a stored file. Missing files are not an error.
func (s *LocalStore) Remove(key string) error {
	clean := filepath.Clean(key)
	if strings.HasPrefix(clean, "..") || filepath.IsAbs(clean) {
		return apperrors.NewValidationError("invalid storage key", nil)
	}
	err := os.Remove(filepath.Join(s.root, clean))
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
