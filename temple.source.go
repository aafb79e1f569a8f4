package temple

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"
)

// SourceRecord is one named template held by a TemplateSource.
type SourceRecord struct {
	// ID is assigned by the source on first save.
	ID string `json:"id"`

	// Name is the dotted template name, "module.name" or "name".
	Name string `json:"name"`

	// Body is the raw template text.
	Body string `json:"body"`

	// UpdatedAt is set by the source on every save.
	UpdatedAt time.Time `json:"updated_at"`
}

// TemplateSource is the interface for pluggable template backends used by
// sub-template forwarding and RenderTemplate.
// Implementations must be safe for concurrent use.
type TemplateSource interface {
	// Get retrieves a template by name.
	// Returns an error matching IsNotFound if the template doesn't exist.
	Get(ctx context.Context, name string) (*SourceRecord, error)

	// Save creates or replaces a template. ID and UpdatedAt are set by
	// the source.
	Save(ctx context.Context, rec *SourceRecord) error

	// Delete removes a template by name.
	Delete(ctx context.Context, name string) error

	// List returns all template names in sorted order.
	List(ctx context.Context) ([]string, error)

	// Close releases any resources held by the source.
	Close() error
}

// SourceDriver is a factory for template sources.
// Drivers register themselves during init().
type SourceDriver interface {
	// Open creates a source from a driver-specific DSN.
	Open(dsn string) (TemplateSource, error)
}

// Source driver registry
var (
	sourceDriversMu sync.RWMutex
	sourceDrivers   = make(map[string]SourceDriver)
)

// RegisterSourceDriver registers a source driver by name.
// Panics if a driver with the same name is already registered.
func RegisterSourceDriver(name string, driver SourceDriver) {
	sourceDriversMu.Lock()
	defer sourceDriversMu.Unlock()

	if driver == nil {
		panic(ErrMsgNilSourceDriver)
	}
	if _, exists := sourceDrivers[name]; exists {
		panic(ErrMsgDriverAlreadyExists + ": " + name)
	}
	sourceDrivers[name] = driver
}

// OpenSource opens a template source using the named driver.
//
// Example:
//
//	src, err := temple.OpenSource("memory", "")
//	src, err := temple.OpenSource("filesystem", "/srv/templates")
//	src, err := temple.OpenSource("sqlite", "file:templates.db")
func OpenSource(driverName, dsn string) (TemplateSource, error) {
	sourceDriversMu.RLock()
	driver, ok := sourceDrivers[driverName]
	sourceDriversMu.RUnlock()

	if !ok {
		return nil, NewSourceDriverNotFoundError(driverName)
	}
	return driver.Open(dsn)
}

// ListSourceDrivers returns the names of all registered drivers in sorted order.
func ListSourceDrivers() []string {
	sourceDriversMu.RLock()
	defer sourceDriversMu.RUnlock()

	names := make([]string, 0, len(sourceDrivers))
	for name := range sourceDrivers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// SourceError represents a template source error.
type SourceError struct {
	Message string
	Name    string
	Cause   error
}

// Error implements the error interface.
func (e *SourceError) Error() string {
	msg := e.Message
	if e.Name != "" {
		msg += ": " + e.Name
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

// Unwrap returns the underlying cause.
func (e *SourceError) Unwrap() error {
	return e.Cause
}

// NewSourceError creates a source error for name with an optional cause
func NewSourceError(msg, name string, cause error) error {
	return &SourceError{Message: msg, Name: name, Cause: cause}
}

// NewSourceDriverNotFoundError creates an error for a missing driver.
func NewSourceDriverNotFoundError(name string) error {
	return &SourceError{Message: ErrMsgSourceDriverNotFound, Name: name}
}

// NewSourceClosedError creates an error for operations on a closed source.
func NewSourceClosedError() error {
	return &SourceError{Message: ErrMsgSourceClosed}
}

// NewSourceNotFoundError creates a not-found error for name.
func NewSourceNotFoundError(name string) error {
	return &SourceError{Message: ErrMsgTemplateNotFound, Name: name}
}

// IsNotFound reports whether err is a missing-template error of a source
func IsNotFound(err error) bool {
	for err != nil {
		if se, ok := err.(*SourceError); ok && se.Message == ErrMsgTemplateNotFound {
			return true
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return false
		}
		err = u.Unwrap()
	}
	return false
}

// validTemplateName rejects empty names and path-like segments
func validTemplateName(name string) bool {
	if name == "" || strings.ContainsAny(name, `/\`) {
		return false
	}
	for _, part := range strings.Split(name, TemplateNameSeparator) {
		if part == "" || part == ".." {
			return false
		}
	}
	return true
}

func copyRecord(rec *SourceRecord) *SourceRecord {
	if rec == nil {
		return nil
	}
	c := *rec
	return &c
}
