package storage

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"landrecords/internal/config"
)

// ErrInvalidPath is returned for stored paths that escape the root.
var ErrInvalidPath = errors.New("invalid storage path")

// Storage persists uploaded document bytes outside the record store.
type Storage interface {
	// Create opens a new, uniquely named object under landID. Nothing is
	// visible at Path until Commit succeeds.
	Create(landID uuid.UUID, ext string) (Object, error)
	Open(path string) (io.ReadCloser, error)
	Remove(path string) error
}

// Object is an in-progress write.
type Object interface {
	io.Writer
	Path() string
	Commit() error
	Abort() error
}

// Local stores files on the local filesystem under a root directory.
type Local struct {
	root string
}

// NewLocal creates the root directory if needed.
func NewLocal(cfg config.StorageConfig) (*Local, error) {
	root := cfg.UploadDir
	if root == "" {
		root = "uploads"
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &Local{root: root}, nil
}

func (l *Local) Create(landID uuid.UUID, ext string) (Object, error) {
	dir := filepath.Join(l.root, landID.String())
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create land dir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".upload-*")
	if err != nil {
		return nil, fmt.Errorf("create temp file: %w", err)
	}
	rel := filepath.ToSlash(filepath.Join(landID.String(), uuid.NewString()+SanitizeExt(ext)))
	return &localObject{file: tmp, final: filepath.Join(l.root, filepath.FromSlash(rel)), rel: rel}, nil
}

func (l *Local) Open(path string) (io.ReadCloser, error) {
	full, err := l.resolve(path)
	if err != nil {
		return nil, err
	}
	return os.Open(full)
}

func (l *Local) Remove(path string) error {
	full, err := l.resolve(path)
	if err != nil {
		return err
	}
	if err := os.Remove(full); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

func (l *Local) resolve(path string) (string, error) {
	clean := filepath.Clean(filepath.FromSlash(path))
	if path == "" || filepath.IsAbs(clean) || clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) {
		return "", ErrInvalidPath
	}
	return filepath.Join(l.root, clean), nil
}

type localObject struct {
	file  *os.File
	final string
	rel   string
	done  bool
}

func (o *localObject) Write(p []byte) (int, error) { return o.file.Write(p) }

// Path is relative to the storage root.
func (o *localObject) Path() string { return o.rel }

func (o *localObject) Commit() error {
	if o.done {
		return nil
	}
	o.done = true
	if err := o.file.Sync(); err != nil {
		o.cleanup()
		return err
	}
	if err := o.file.Close(); err != nil {
		_ = os.Remove(o.file.Name())
		return err
	}
	if err := os.Rename(o.file.Name(), o.final); err != nil {
		_ = os.Remove(o.file.Name())
		return err
	}
	return nil
}

// Abort discards the temp file. Safe to call after Commit.
func (o *localObject) Abort() error {
	if o.done {
		return nil
	}
	o.done = true
	o.cleanup()
	return nil
}

func (o *localObject) cleanup() {
	_ = o.file.Close()
	_ = os.Remove(o.file.Name())
}

// SanitizeExt keeps a short alphanumeric extension from a client filename
// and drops everything else.
func SanitizeExt(name string) string {
	ext := strings.ToLower(filepath.Ext(filepath.Base(name)))
	if len(ext) < 2 || len(ext) > 10 {
		return ""
	}
	for _, r := range ext[1:] {
		if (r < 'a' || r > 'z') && (r < '0' || r > '9') {
			return ""
		}
	}
	return ext
}
