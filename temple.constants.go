package temple

import (
	"time"

	"github.com/itsatony/go-temple/internal"
)

// Mark constants - the {{ }} syntax of the tag language
const (
	DefaultStartMark = internal.DefaultStartMark
	DefaultEndMark   = internal.DefaultEndMark
)

// Built-in context keywords
const (
	ContextPass     = internal.ContextPass
	ContextNone     = internal.ContextNone
	ContextValue    = internal.ContextValue
	ContextSrv      = internal.ContextSrv
	ContextServer   = internal.ContextServer
	ContextReq      = internal.ContextReq
	ContextRequest  = internal.ContextRequest
	ContextSess     = internal.ContextSess
	ContextSession  = internal.ContextSession
	ContextCookie   = internal.ContextCookie
	ContextTemplate = "tpl" // registered by New, renders a named template
)

// Engine defaults
const (
	DefaultMaxDepth = 16
)

// Template source driver names
const (
	SourceDriverMemory     = "memory"
	SourceDriverFilesystem = "filesystem"
	SourceDriverPostgres   = "postgres"
	SourceDriverSQLite     = "sqlite"
	SourceDriverRedis      = "redis"
)

// Filesystem source constants
const (
	FilesystemTemplateExt = ".tpl"
	FilesystemDirPerm     = 0o755
	TemplateNameSeparator = "."
)

// SQL source constants
const (
	SQLTableName              = "temple_templates"
	SQLDefaultMaxOpenConns    = 10
	SQLDefaultMaxIdleConns    = 2
	SQLDefaultConnMaxLifetime = 5 * time.Minute
	SQLDefaultQueryTimeout    = 30 * time.Second
	SQLDriverPostgres         = "postgres"
)

// Redis source constants
const (
	RedisDefaultPrefix = "temple:tpl:"
	RedisFieldID       = "id"
	RedisFieldBody     = "body"
	RedisFieldUpdated  = "updated_at"
	// RedisIndexSuffix can never be a valid template name
	RedisIndexSuffix   = "..index"
)

// Cache defaults
const (
	DefaultCacheTTL         = 5 * time.Minute
	DefaultCacheMaxEntries  = 1000
	DefaultNegativeCacheTTL = 30 * time.Second
)

// Metric names
const (
	MetricNamespace      = "temple"
	MetricRendersTotal   = "renders_total"
	MetricTagsTotal      = "tags_total"
	MetricDepthExceeded  = "forward_depth_exceeded_total"
	MetricRenderDuration = "render_duration_seconds"
	MetricLabelResult    = "result"
	MetricLabelContext   = "context"
	MetricResultOK       = "ok"
	MetricResultError    = "error"
)

// Metadata keys for error context
const (
	MetaKeyTemplateName = "template_name"
	MetaKeyCurrentDepth = "current_depth"
	MetaKeyMaxDepth     = "max_depth"
	MetaKeyKeyword      = "keyword"
	MetaKeyDriverName   = "driver"
	MetaKeyStartMark    = "start_mark"
	MetaKeyEndMark      = "end_mark"
	MetaKeyConfigPath   = "config_path"
)

// Log message constants
const (
	LogMsgEngineCreated      = "temple engine created"
	LogMsgRenderStarted      = "render started"
	LogMsgRenderFinished     = "render finished"
	LogMsgRenderFailed       = "render failed"
	LogMsgResolverRegistered = "context resolver registered"
	LogMsgResolverFailed     = "context resolver failed"
	LogMsgUnknownContext     = "unknown context keyword"
	LogMsgForward            = "forwarding to template"
	LogMsgForwardMissing     = "forward target not found"
	LogMsgForwardNoSource    = "forward without template source"
	LogMsgDepthExceeded      = "forward depth exceeded"
	LogMsgModifierRejected   = "modifier already registered"
	LogMsgSourceOpened       = "template source opened"
)

// Log field constants
const (
	LogFieldTemplate = "template"
	LogFieldKeyword  = "keyword"
	LogFieldDepth    = "depth"
	LogFieldMaxDepth = "max_depth"
	LogFieldLength   = "length"
	LogFieldDuration = "duration"
	LogFieldFamily   = "family"
	LogFieldModifier = "modifier"
	LogFieldDriver   = "driver"
	LogFieldRows     = "rows"
	LogFieldSource   = "source"
	LogFieldCached   = "cached"
)
