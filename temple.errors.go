package temple

import (
	"errors"
	"strconv"

	"github.com/itsatony/go-cuserr"
)

// Error message constants - ALL error messages must be constants (NO MAGIC STRINGS)
const (
	// Render errors
	ErrMsgDepthExceeded  = "template forward depth exceeded"
	ErrMsgInvalidMarks   = "start and end marks must be non-empty and distinct"
	ErrMsgInvalidDepth   = "max depth must be positive"
	ErrMsgResolverFailed = "context resolver failed"

	// Registry errors
	ErrMsgResolverExists = "context resolver already registered"
	ErrMsgNilResolver    = "context resolver cannot be nil"
	ErrMsgNilModifier    = "modifier cannot be nil"
	ErrMsgModifierExists = "modifier already registered"

	// Source errors
	ErrMsgTemplateNotFound      = "template not found"
	ErrMsgInvalidTemplateName   = "invalid template name"
	ErrMsgNilSourceDriver       = "template source driver is nil"
	ErrMsgDriverAlreadyExists   = "template source driver already registered"
	ErrMsgSourceDriverNotFound  = "template source driver not found"
	ErrMsgSourceClosed          = "template source is closed"
	ErrMsgSourceEmptyDSN        = "template source DSN cannot be empty"
	ErrMsgSourceConnectFailed   = "failed to connect template source"
	ErrMsgSourceQueryFailed     = "template source query failed"
	ErrMsgSourceMigrationFailed = "template source migration failed"
	ErrMsgSourceReadFailed      = "failed to read template"
	ErrMsgSourceWriteFailed     = "failed to write template"
	ErrMsgSourceListFailed      = "failed to list templates"

	// Config errors
	ErrMsgConfigRead  = "failed to read config file"
	ErrMsgConfigParse = "failed to parse config file"
)

// Error code constants for categorization
const (
	ErrCodeDepth    = "TEMPLE_DEPTH"
	ErrCodeConfig   = "TEMPLE_CONFIG"
	ErrCodeRegistry = "TEMPLE_REGISTRY"
	ErrCodeSource   = "TEMPLE_SOURCE"
	ErrCodeResolver = "TEMPLE_RESOLVER"
)

// ErrDepthExceeded is the cause of every depth error, for use with errors.Is
var ErrDepthExceeded = errors.New(ErrMsgDepthExceeded)

// NewDepthExceededError reports a forward beyond the configured depth
func NewDepthExceededError(name string, depth, maxDepth int) error {
	return cuserr.WrapStdError(ErrDepthExceeded, ErrCodeDepth, ErrMsgDepthExceeded).
		WithMetadata(MetaKeyTemplateName, name).
		WithMetadata(MetaKeyCurrentDepth, strconv.Itoa(depth)).
		WithMetadata(MetaKeyMaxDepth, strconv.Itoa(maxDepth))
}

// IsDepthExceeded reports whether err came from the forward depth limit
func IsDepthExceeded(err error) bool {
	return errors.Is(err, ErrDepthExceeded)
}

// NewInvalidMarksError creates an error for unusable tag marks
func NewInvalidMarksError(start, end string) error {
	return cuserr.NewValidationError(ErrCodeConfig, ErrMsgInvalidMarks).
		WithMetadata(MetaKeyStartMark, start).
		WithMetadata(MetaKeyEndMark, end)
}

// NewInvalidDepthError creates an error for a non-positive depth limit
func NewInvalidDepthError(depth int) error {
	return cuserr.NewValidationError(ErrCodeConfig, ErrMsgInvalidDepth).
		WithMetadata(MetaKeyMaxDepth, strconv.Itoa(depth))
}

// NewResolverExistsError creates a context resolver collision error
func NewResolverExistsError(keyword string) error {
	return cuserr.NewValidationError(ErrCodeRegistry, ErrMsgResolverExists).
		WithMetadata(MetaKeyKeyword, keyword)
}

// NewRegistryError wraps a registry failure
func NewRegistryError(keyword string, cause error) error {
	return cuserr.WrapStdError(cause, ErrCodeRegistry, cause.Error()).
		WithMetadata(MetaKeyKeyword, keyword)
}

// NewResolverError wraps a failure of a custom context resolver
func NewResolverError(keyword string, cause error) error {
	return cuserr.WrapStdError(cause, ErrCodeResolver, ErrMsgResolverFailed).
		WithMetadata(MetaKeyKeyword, keyword)
}

// ErrTemplateNotFound is the cause of RenderTemplate's missing-template errors
var ErrTemplateNotFound = errors.New(ErrMsgTemplateNotFound)

// NewTemplateNotFoundError creates an error for a missing template
func NewTemplateNotFoundError(name string) error {
	return cuserr.WrapStdError(ErrTemplateNotFound, ErrCodeSource, ErrMsgTemplateNotFound).
		WithMetadata(MetaKeyTemplateName, name)
}

// IsTemplateNotFound reports whether err names a missing template, either
// from RenderTemplate or from a TemplateSource
func IsTemplateNotFound(err error) bool {
	return errors.Is(err, ErrTemplateNotFound) || IsNotFound(err)
}

// NewConfigError wraps a config file failure
func NewConfigError(msg, path string, cause error) error {
	return cuserr.WrapStdError(cause, ErrCodeConfig, msg).
		WithMetadata(MetaKeyConfigPath, path)
}
