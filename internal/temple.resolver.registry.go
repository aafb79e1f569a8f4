package internal

import (
	"fmt"
	"sort"
	"sync"

	"go.uber.org/zap"
)

// ContextHandler mirrors the public ContextResolver interface for internal
// use. This allows the internal package to dispatch custom contexts
// without import cycles.
type ContextHandler interface {
	Keyword() string
	Handle(env *Env, pathWithModifiers string) (string, error)
}

// Registry manages custom context registration with first-come-wins
// semantics. It is thread-safe for concurrent read/write access.
type Registry struct {
	handlers map[string]ContextHandler
	mu       sync.RWMutex
	logger   *zap.Logger
}

// NewRegistry creates a new context registry.
func NewRegistry(logger *zap.Logger) *Registry {
	if logger == nil {
		logger = zap.NewNop()
	}
	logger.Debug(LogMsgRegistryCreated)
	return &Registry{
		handlers: make(map[string]ContextHandler),
		logger:   logger,
	}
}

// Register adds a handler to the registry.
// Built-in keywords cannot be claimed. If a handler for the same keyword
// already exists, an error is returned and the first one stays.
func (r *Registry) Register(handler ContextHandler) error {
	if handler == nil {
		return NewRegistryError(ErrMsgNilResolver, "")
	}

	keyword := handler.Keyword()
	if keyword == "" {
		return NewRegistryError(ErrMsgEmptyKeyword, "")
	}
	if IsBuiltinContext(keyword) {
		return NewRegistryError(ErrMsgBuiltinKeyword, keyword)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, exists := r.handlers[keyword]; exists {
		r.logger.Warn(LogMsgResolverCollision,
			zap.String(LogFieldKeyword, keyword),
			zap.String(LogFieldExisting, existing.Keyword()),
		)
		return NewRegistryError(ErrMsgResolverAlreadyExists, keyword)
	}

	r.handlers[keyword] = handler
	r.logger.Debug(LogMsgResolverRegistered, zap.String(LogFieldKeyword, keyword))
	return nil
}

// MustRegister adds a handler and panics if registration fails.
// Use this for built-in contexts that must always be available.
func (r *Registry) MustRegister(handler ContextHandler) {
	if err := r.Register(handler); err != nil {
		panic(err)
	}
}

// Get retrieves a handler by keyword.
func (r *Registry) Get(keyword string) (ContextHandler, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	handler, exists := r.handlers[keyword]
	return handler, exists
}

// Has checks if a handler is registered for the given keyword.
func (r *Registry) Has(keyword string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, exists := r.handlers[keyword]
	return exists
}

// List returns all registered keywords in sorted order.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	keywords := make([]string, 0, len(r.handlers))
	for keyword := range r.handlers {
		keywords = append(keywords, keyword)
	}
	sort.Strings(keywords)
	return keywords
}

// Count returns the number of registered handlers.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.handlers)
}

// IsBuiltinContext reports whether keyword is handled by the dispatcher itself
func IsBuiltinContext(keyword string) bool {
	switch keyword {
	case ContextPass, ContextNone, ContextValue,
		ContextSrv, ContextServer, ContextReq, ContextRequest,
		ContextSess, ContextSession, ContextCookie:
		return true
	}
	return false
}

// RegistryError represents a registry operation error
type RegistryError struct {
	Message string
	Keyword string
}

// NewRegistryError creates a new registry error
func NewRegistryError(message, keyword string) *RegistryError {
	return &RegistryError{
		Message: message,
		Keyword: keyword,
	}
}

// Error implements the error interface
func (e *RegistryError) Error() string {
	if e.Keyword != StringValueEmpty {
		return fmt.Sprintf(ErrFmtKeywordMessage, e.Message, e.Keyword)
	}
	return e.Message
}

// Registry error message constants
const (
	ErrMsgNilResolver           = "context resolver cannot be nil"
	ErrMsgEmptyKeyword          = "context keyword cannot be empty"
	ErrMsgBuiltinKeyword        = "context keyword is reserved"
	ErrMsgResolverAlreadyExists = "context resolver already registered for keyword"
	ErrFmtKeywordMessage        = "%s: %s"
)
