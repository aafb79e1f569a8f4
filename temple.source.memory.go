package temple

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemorySource is an in-memory TemplateSource.
// It is primarily intended for tests and hosts that compile templates in.
// All data is lost when the process terminates.
type MemorySource struct {
	mu        sync.RWMutex
	templates map[string]*SourceRecord
	closed    bool
}

// MemorySourceDriver is the driver for creating MemorySource instances.
type MemorySourceDriver struct{}

func init() {
	RegisterSourceDriver(SourceDriverMemory, &MemorySourceDriver{})
}

// Open creates a new MemorySource. The DSN is ignored.
func (d *MemorySourceDriver) Open(dsn string) (TemplateSource, error) {
	return NewMemorySource(), nil
}

// NewMemorySource creates an empty in-memory source.
func NewMemorySource() *MemorySource {
	return &MemorySource{
		templates: make(map[string]*SourceRecord),
	}
}

// NewMemorySourceFrom creates a source holding name -> body pairs.
func NewMemorySourceFrom(bodies map[string]string) *MemorySource {
	s := NewMemorySource()
	now := time.Now()
	for name, body := range bodies {
		s.templates[name] = &SourceRecord{
			ID:        uuid.NewString(),
			Name:      name,
			Body:      body,
			UpdatedAt: now,
		}
	}
	return s
}

// Get retrieves a template by name.
func (s *MemorySource) Get(ctx context.Context, name string) (*SourceRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, NewSourceClosedError()
	}

	rec, ok := s.templates[name]
	if !ok {
		return nil, NewSourceNotFoundError(name)
	}
	return copyRecord(rec), nil
}

// Save creates or replaces a template. The ID is kept across saves.
func (s *MemorySource) Save(ctx context.Context, rec *SourceRecord) error {
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

	id := uuid.NewString()
	if existing, ok := s.templates[rec.Name]; ok {
		id = existing.ID
	}
	rec.ID = id
	rec.UpdatedAt = time.Now()
	s.templates[rec.Name] = copyRecord(rec)
	return nil
}

// Delete removes a template by name.
func (s *MemorySource) Delete(ctx context.Context, name string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return NewSourceClosedError()
	}
	if _, ok := s.templates[name]; !ok {
		return NewSourceNotFoundError(name)
	}
	delete(s.templates, name)
	return nil
}

// List returns all template names in sorted order.
func (s *MemorySource) List(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, NewSourceClosedError()
	}

	names := make([]string, 0, len(s.templates))
	for name := range s.templates {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

// Close marks the source closed and drops its templates.
func (s *MemorySource) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.closed = true
	s.templates = nil
	return nil
}
