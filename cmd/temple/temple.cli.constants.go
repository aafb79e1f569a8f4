package main

import "time"

// Command names
const (
	CmdNameRender  = "render"
	CmdNameServe   = "serve"
	CmdNameVersion = "version"
	CmdNameHelp    = "help"
)

// Flag names - long form
const (
	FlagTemplate = "template"
	FlagName     = "name"
	FlagData     = "data"
	FlagDataFile = "data-file"
	FlagRows     = "rows"
	FlagSession  = "session"
	FlagServer   = "server"
	FlagCookie   = "cookie"
	FlagRequest  = "request"
	FlagConfig   = "config"
	FlagOutput   = "output"
	FlagVerbose  = "verbose"
	FlagFormat   = "format"
	FlagAddr     = "addr"
)

// Flag names - short form
const (
	FlagTemplateShort = "t"
	FlagNameShort     = "n"
	FlagDataShort     = "d"
	FlagDataFileShort = "f"
	FlagRowsShort     = "r"
	FlagConfigShort   = "c"
	FlagOutputShort   = "o"
	FlagVerboseShort  = "v"
	FlagFormatShort   = "F"
	FlagAddrShort     = "a"
)

// Flag default values
const (
	FlagDefaultOutput = "-" // stdout
	FlagDefaultFormat = "text"
	FlagDefaultAddr   = ":8080"
)

// Output formats
const (
	OutputFormatText = "text"
	OutputFormatJSON = "json"
)

// Exit codes
const (
	ExitCodeSuccess    = 0
	ExitCodeError      = 1
	ExitCodeUsageError = 2
	ExitCodeInputError = 4
	ExitCodeDepthError = 5
)

// Input source indicators
const (
	InputSourceStdin = "-"
)

// HTTP routes and parameters of the serve command
const (
	RouteRender    = "/render/{name}"
	RouteTemplates = "/templates"
	RouteMetrics   = "/metrics"
	RouteHealth    = "/healthz"
	URLParamName   = "name"

	HeaderContentType = "Content-Type"
	ContentTypeText   = "text/plain; charset=utf-8"
	ContentTypeJSON   = "application/json"

	// AmbientKeyHost and AmbientKeyRemoteAddr are the srv keys set per request
	AmbientKeyHost       = "host"
	AmbientKeyRemoteAddr = "remote_addr"
	AmbientKeyMethod     = "method"
	AmbientKeyPath       = "path"

	ServeReadHeaderTimeout = 10 * time.Second
	ServeShutdownTimeout   = 15 * time.Second
)

// Error messages - ALL must be constants
const (
	ErrMsgUnknownCommand      = "unknown command"
	ErrMsgMissingTemplate     = "template file or template name required"
	ErrMsgTemplateAndName     = "template file and template name are exclusive"
	ErrMsgNameNeedsSource     = "template name requires a configured source"
	ErrMsgServeNeedsSource    = "serve requires a configured source"
	ErrMsgInvalidFlags        = "invalid flags"
	ErrMsgInvalidJSON         = "invalid JSON data"
	ErrMsgInvalidRows         = "invalid JSON rows"
	ErrMsgInvalidAmbient      = "invalid ambient context file"
	ErrMsgReadFileFailed      = "failed to read file"
	ErrMsgWriteOutputFailed   = "failed to write output"
	ErrMsgRenderFailed        = "render failed"
	ErrMsgConfigFailed        = "failed to load config"
	ErrMsgSourceFailed        = "failed to open template source"
	ErrMsgEngineFailed        = "failed to create engine"
	ErrMsgMetricsFailed       = "failed to register metrics"
	ErrMsgServeFailed         = "server stopped"
	ErrMsgInvalidFormat       = "invalid output format"
	ErrMsgListTemplatesFailed = "failed to list templates"
)

// Log messages of the serve command
const (
	LogMsgServeStarted  = "serving templates"
	LogMsgServeStopping = "shutting down"
	LogMsgServeRequest  = "render request"
	LogMsgServeFailed   = "render request failed"
)

// Log field names of the serve command
const (
	LogFieldAddr   = "addr"
	LogFieldName   = "name"
	LogFieldStatus = "status"
	LogFieldError  = "error"
)

// Help text templates
const (
	HelpMainUsage = `go-temple - Lightweight text templating CLI

Usage:
    temple <command> [options]

Commands:
    render      Render a template with data
    serve       Serve templates from a source over HTTP
    version     Show version information
    help        Show help for a command

Use "temple help <command>" for more information about a command.`

	HelpRenderUsage = `Render a template with data

Usage:
    temple render [options]

Options:
    -t, --template <file>   Template file (use "-" for stdin)
    -n, --name <name>       Template name from the configured source
    -d, --data <json>       JSON params string
    -f, --data-file <file>  JSON params file
    -r, --rows <file>       JSON array of rows, renders the template once per row
    --session <file>        JSON file for the session context
    --server <file>         JSON file for the server context
    --cookie <file>         JSON file for the cookie context
    --request <file>        JSON file for the request context
    -c, --config <file>     YAML config file
    -o, --output <file>     Output file, written atomically (default: stdout)
    -v, --verbose           Log to stderr

Examples:
    temple render -t page.tpl -d '{"name": "Alice"}'
    temple render -t row.tpl -r users.json -o users.html
    temple render -c temple.yaml -n mail.greeting -f data.json
    cat page.tpl | temple render -t - --session session.json`

	HelpServeUsage = `Serve templates from a source over HTTP

Usage:
    temple serve -c <config> [options]

Options:
    -c, --config <file>     YAML config file with a source section
    -a, --addr <addr>       Listen address (default: :8080)
    --session <file>        JSON file for the session context of every request
    -v, --verbose           Log debug output

Routes:
    GET /render/{name}      Render a template; query values fill req and v,
                            cookies fill cookie, headers and host fill srv
    GET /templates          List template names
    GET /metrics            Prometheus metrics
    GET /healthz            Liveness`

	HelpVersionUsage = `Show version information

Usage:
    temple version [options]

Options:
    -F, --format <format>   Output format: text, json (default: text)`

	HelpHelpUsage = `Show help for a command

Usage:
    temple help [command]

Commands:
    render      Show help for render command
    serve       Show help for serve command
    version     Show help for version command`
)

// Version output format templates
const (
	VersionTextTemplate = "go-temple version %s\nCommit: %s\nBranch: %s\nBuilt: %s\nGo: %s"
	VersionUnknown      = "unknown"
)

// CLI metadata
const (
	CLIName        = "temple"
	CLIDescription = "Lightweight text templating CLI"
)

// File permission constant
const (
	FilePermissions = 0644
)

// Format string constants
const (
	FmtErrorWithDetail = "%s: %s\n"
	FmtErrorWithCause  = "%s: %v\n"
	FmtNewline         = "\n"
)
