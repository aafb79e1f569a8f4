package internal

// Context keywords recognised by the tag dispatcher
const (
	ContextPass    = "pass"
	ContextNone    = "_"
	ContextValue   = "v"
	ContextSrv     = "srv"
	ContextServer  = "server"
	ContextReq     = "req"
	ContextRequest = "request"
	ContextSess    = "sess"
	ContextSession = "session"
	ContextCookie  = "cookie"
)

// Template syntax separators
const (
	PathSeparator     = "."
	ModifierSeparator = "|"
	ContextSeparator  = ":"
	ArgsSeparator     = "?"
)

// Default tag marks
const (
	DefaultStartMark = "{{"
	DefaultEndMark   = "}}"
)

// Literal markers produced when a sequence or an object has to become a string
const (
	MarkerArray  = "Array"
	MarkerObject = "Object"
)

// String values used for boolean rendering
const (
	StringValueEmpty = ""
	StringValueTrue  = "1"
	StringValueFalse = "0"
)

// Float formatting
const (
	FloatBitSize64     = 64
	FloatSignificant   = 14
	FloatFormatFlag    = 'f'
	FloatFormatGeneral = 'g'
	FloatPrecisionAll  = -1
	IntBase10          = 10
)

// Baseline modifier names shared by several families
const (
	ModIfTrue        = "iftrue"
	ModStopIfFalse   = "stopiffalse"
	ModIfFalse       = "iffalse"
	ModStopIfTrue    = "stopiftrue"
	ModIfNull        = "ifnull"
	ModStopIfNotNull = "stopifnotnull"
	ModIfNotNull     = "ifnotnull"
	ModStopIfNull    = "stopifnull"
	ModIfEmpty       = "ifempty"
	ModIfNotEmpty    = "ifnotempty"
	ModReplace       = "replace"
	ModDump          = "dump"
	ModHTMLComment   = "htmlcomment"
	ModFwdTemplate   = "fwdtemplate"
	ModFwdT          = "fwdt"
)

// Scalar modifier names
const (
	ModTag          = "tag"
	ModLowercase    = "lowercase"
	ModUppercase    = "uppercase"
	ModTrim         = "trim"
	ModLength       = "length"
	ModWordCount    = "wordcount"
	ModHTMLEntities = "htmlentities"
	ModRound        = "round"
	ModZero         = "zero"
	ModShortener    = "shortener"
	ModSplit        = "split"
	ModChecked      = "checked"
	ModDBSafe       = "dbsafe"
	ModJSSafe       = "jssafe"
	ModHTMLSafe     = "htmlsafe"
	ModURLEncode    = "urlencode"
	ModFixFloat     = "fixfloat"
	ModFixInt       = "fixint"
	ModFixBool      = "fixbool"
	ModURLName      = "urlname"
	ModRSSTime      = "rsstime"
	ModDBDate       = "dbdate"
	ModDate         = "date"
	ModTime         = "time"
	ModDateTime     = "datetime"
	ModTimestamp    = "timestamp"
	ModFixURL       = "fixurl"
	ModSetLang      = "setlang"
	ModNoHTML       = "nohtml"
	ModUnserialize  = "unserialize"
	ModLoremIpsum   = "loremipsum"
	ModGravatar     = "gravatar"
	ModGravatarHash = "gravatarhash"
	ModTranslate    = "translate"
)

// Numeric modifier names
const (
	ModMoney         = "money"
	ModThousands     = "thousands"
	ModCheckboxValue = "checkboxvalue"
)

// Array modifier names
const (
	ModStopIfEmpty      = "stopifempty"
	ModStopIfNotEmpty   = "stopifnotempty"
	ModFirst            = "first"
	ModLast             = "last"
	ModField            = "field"
	ModJoin             = "join"
	ModSort             = "sort"
	ModASort            = "asort"
	ModKSort            = "ksort"
	ModJSON             = "json"
	ModBuildQueryString = "buildquerystring"
	ModCutColumn        = "cutcolumn"
	ModJoinColumn       = "joincolumn"
)

// Object modifier names
const (
	ModFields = "fields"
	ModString = "string"
)

// Modifier argument names
const (
	ArgDefault   = "default"
	ArgFallback  = "fallback"
	ArgDigits    = "digits"
	ArgWords     = "words"
	ArgChars     = "chars"
	ArgDelimiter = "delimiter"
	ArgGlue      = "glue"
	ArgName      = "name"
	ArgModule    = "module"
	ArgTime      = "time"
	ArgLang      = "lang"
	ArgLangVar   = "langvar"
	ArgSize      = "size"
	ArgPre       = "pre"
	ArgField     = "field"
	ArgColumn    = "column"
	ArgValue     = "value"
)

// Modifier argument defaults
const (
	DefaultGravatarSize = "50"
	DefaultLanguage     = "en"
	DefaultTimeOption   = "now"
	MoneyDigits         = 2
	LangPrefixLength    = 3
)

// Glue codes understood by DecodeGlue
const (
	GlueNone       = "none"
	GlueSpace      = "space"
	GlueComma      = "comma"
	GlueQuoteComma = "quotecomma"
	GlueColon      = "colon"
	GlueSemicolon  = "semicolon"
	GlueNewline    = "newline"
)

// Value output fragments
const (
	HTMLCommentOpen  = "<!--"
	HTMLCommentClose = "-->"
	PreOpen          = "<pre>"
	PreClose         = "</pre>"
	CheckedValue     = "checked"
	CheckboxValue    = `checked="checked"`
	FixURLEmpty      = "#"
	FixURLScheme     = "http://"
	FixURLPrefix     = "http"
	GravatarURLFmt   = "https://www.gravatar.com/avatar/%s?s=%s"
	QueryStringStart = "?"
	QueryPairSep     = "&"
	QueryKeyValueSep = "="
	SlugSeparator    = "-"
	LangPathPrefix   = "/"
)

// Session keys consulted by date and language modifiers
const (
	SessionKeyLanguageCode = "language.code"
)

// Log message constants
const (
	LogMsgTagResolved        = "tag resolved"
	LogMsgCustomContext      = "delegating to custom context"
	LogMsgUnknownModifier    = "unknown modifier, passing value through"
	LogMsgModifierApplied    = "modifier applied"
	LogMsgChainStopped       = "modifier chain short-circuited"
	LogMsgFamilyMismatch     = "value does not belong to modifier family"
	LogMsgBoundsEmpty        = "sequence is empty, index access failed closed"
	LogMsgDateParseFallback  = "storage datetime parse failed, using loose parse"
	LogMsgDateParseFailed    = "datetime could not be parsed, value kept"
	LogMsgJSONFailed         = "json conversion failed"
	LogMsgFieldsFailed       = "object field extraction failed"
	LogMsgSessionFormats     = "session formats could not be decoded"
	LogMsgRegistryCreated    = "context registry created"
	LogMsgResolverRegistered = "context resolver registered"
	LogMsgResolverCollision  = "context resolver registration collision - first-come-wins"
	LogMsgModifierRegistered = "modifier registered"
	LogMsgRenderAborted      = "render aborted"
)

// Log field names
const (
	LogFieldContext  = "context"
	LogFieldPath     = "path"
	LogFieldModifier = "modifier"
	LogFieldFamily   = "family"
	LogFieldValue    = "value"
	LogFieldKeyword  = "keyword"
	LogFieldExisting = "existing"
	LogFieldDepth    = "depth"
	LogFieldError    = "error"
)

// Error messages
const (
	ErrMsgNotStruct = "value is not a struct"
)
