package temple

import (
	"bytes"
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/natefinch/atomic"
)

// FilesystemSource reads templates from plain files below a root directory.
// Dotted names map to sub-directories:
//
//	<root>/
//	  mail/
//	    greeting.tpl   # "mail.greeting"
//	  footer.tpl       # "footer"
//
// Writes are atomic. The record ID is derived from the name, so it is
// stable across process restarts.
type FilesystemSource struct {
	mu     sync.RWMutex
	root   string
	closed bool
}

// FilesystemSourceDriver is the driver for creating FilesystemSource instances.
type FilesystemSourceDriver struct{}

func init() {
	RegisterSourceDriver(SourceDriverFilesystem, &FilesystemSourceDriver{})
}

// Open creates a FilesystemSource. The DSN is the root directory.
func (d *FilesystemSourceDriver) Open(dsn string) (TemplateSource, error) {
	return NewFilesystemSource(dsn)
}

// NewFilesystemSource creates a source rooted at root, creating the
// directory if needed.
func NewFilesystemSource(root string) (*FilesystemSource, error) {
	if root == "" {
		return nil, NewSourceError(ErrMsgSourceEmptyDSN, SourceDriverFilesystem, nil)
	}
	if err := os.MkdirAll(root, FilesystemDirPerm); err != nil {
		return nil, NewSourceError(ErrMsgSourceConnectFailed, root, err)
	}
	return &FilesystemSource{root: root}, nil
}

// Root returns the root directory.
func (s *FilesystemSource) Root() string {
	return s.root
}

func (s *FilesystemSource) path(name string) string {
	parts := strings.Split(name, TemplateNameSeparator)
	parts[len(parts)-1] += FilesystemTemplateExt
	return filepath.Join(append([]string{s.root}, parts...)...)
}

func (s *FilesystemSource) nameOf(path string) (string, bool) {
	rel, err := filepath.Rel(s.root, path)
	if err != nil || !strings.HasSuffix(rel, FilesystemTemplateExt) {
		return "", false
	}
	rel = strings.TrimSuffix(rel, FilesystemTemplateExt)
	return strings.Join(strings.Split(filepath.ToSlash(rel), "/"), TemplateNameSeparator), true
}

// Get reads a template by name.
func (s *FilesystemSource) Get(ctx context.Context, name string) (*SourceRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if !validTemplateName(name) {
		return nil, NewSourceError(ErrMsgInvalidTemplateName, name, nil)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, NewSourceClosedError()
	}

	path := s.path(name)
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, NewSourceNotFoundError(name)
		}
		return nil, NewSourceError(ErrMsgSourceReadFailed, name, err)
	}
	info, err := os.Stat(path)
	if err != nil {
		return nil, NewSourceError(ErrMsgSourceReadFailed, name, err)
	}

	return &SourceRecord{
		ID:        uuid.NewSHA1(uuid.NameSpaceURL, []byte(name)).String(),
		Name:      name,
		Body:      string(data),
		UpdatedAt: info.ModTime(),
	}, nil
}

// Save writes a template atomically, creating module directories as needed.
func (s *FilesystemSource) Save(ctx context.Context, rec *SourceRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if !validTemplateName(rec.Name) {
		return NewSourceError(ErrMsgInvalidTemplateName, rec.Name, nil)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return NewSourceClosedError()
	}

	path := s.path(rec.Name)
	if err := os.MkdirAll(filepath.Dir(path), FilesystemDirPerm); err != nil {
		return NewSourceError(ErrMsgSourceWriteFailed, rec.Name, err)
	}
	if err := atomic.WriteFile(path, bytes.NewReader([]byte(rec.Body))); err != nil {
		return NewSourceError(ErrMsgSourceWriteFailed, rec.Name, err)
	}

	info, err := os.Stat(path)
	if err != nil {
		return NewSourceError(ErrMsgSourceWriteFailed, rec.Name, err)
	}
	rec.ID = uuid.NewSHA1(uuid.NameSpaceURL, []byte(rec.Name)).String()
	rec.UpdatedAt = info.ModTime()
	return nil
}

// Delete removes a template file.
func (s *FilesystemSource) Delete(ctx context.Context, name string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if !validTemplateName(name) {
		return NewSourceError(ErrMsgInvalidTemplateName, name, nil)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return NewSourceClosedError()
	}

	if err := os.Remove(s.path(name)); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return NewSourceNotFoundError(name)
		}
		return NewSourceError(ErrMsgSourceWriteFailed, name, err)
	}
	return nil
}

// List walks the root and returns every template name in sorted order.
func (s *FilesystemSource) List(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, NewSourceClosedError()
	}

	var names []string
	err := filepath.WalkDir(s.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if name, ok := s.nameOf(path); ok {
			names = append(names, name)
		}
		return nil
	})
	if err != nil {
		return nil, NewSourceError(ErrMsgSourceListFailed, s.root, err)
	}
	sort.Strings(names)
	return names, nil
}

// Close marks the source closed. Files are left untouched.
func (s *FilesystemSource) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.closed = true
	return nil
}
