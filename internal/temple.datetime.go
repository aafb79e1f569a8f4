package internal

import (
	"strconv"
	"strings"
	"time"

	"github.com/mitchellh/mapstructure"
	"go.uber.org/zap"
)

// StorageLayout is the canonical datetime format values are stored in
const StorageLayout = "2006-01-02 15:04:05"

// Default display layouts
const (
	DefaultDateLayout     = "02.01.2006"
	DefaultTimeLayout     = "15:04"
	DefaultDateTimeLayout = "02.01.2006 15:04"
	DefaultEpochLayout    = "02.01.2006 15:04:05"
	RSSLayout             = time.RFC1123Z
	StorageDateLayout     = "2006-01-02"
	dayStartSuffix        = " 00:00:00"
	dayEndSuffix          = " 23:59:59"
)

// Keywords understood by the loose datetime parser
const (
	timeWordNow       = "now"
	timeWordToday     = "today"
	timeWordTomorrow  = "tomorrow"
	timeWordYesterday = "yesterday"
)

// dbdate time options
const (
	TimeOptionNow   = "now"
	TimeOptionFirst = "first"
	TimeOptionLast  = "last"
	TimeOptionDate  = "date"
	TimeOptionNone  = "none"
)

// Session keys holding per-user display preferences
const (
	SessionKeyFormats        = "formats"
	SessionKeyTimezoneOffset = "timezoneOffset"
)

// Formats holds the display layouts used by date modifiers.
// OffsetMinutes shifts stored UTC datetimes into local time.
type Formats struct {
	Date          string `yaml:"date" mapstructure:"date"`
	Time          string `yaml:"time" mapstructure:"time"`
	DateTime      string `yaml:"datetime" mapstructure:"datetime"`
	Epoch         string `yaml:"epoch" mapstructure:"epoch"`
	OffsetMinutes int    `yaml:"timezoneOffset" mapstructure:"timezoneOffset"`
}

// DefaultFormats returns the built-in display layouts
func DefaultFormats() Formats {
	return Formats{
		Date:     DefaultDateLayout,
		Time:     DefaultTimeLayout,
		DateTime: DefaultDateTimeLayout,
		Epoch:    DefaultEpochLayout,
	}
}

// Merge fills empty layouts of f from base
func (f Formats) Merge(base Formats) Formats {
	if f.Date == "" {
		f.Date = base.Date
	}
	if f.Time == "" {
		f.Time = base.Time
	}
	if f.DateTime == "" {
		f.DateTime = base.DateTime
	}
	if f.Epoch == "" {
		f.Epoch = base.Epoch
	}
	return f
}

type sessionPrefs struct {
	Formats        Formats `mapstructure:"formats"`
	TimezoneOffset *int    `mapstructure:"timezoneOffset"`
}

// EffectiveFormats merges the session's display preferences over the
// engine formats. The result is computed once per Env.
func (e *Env) EffectiveFormats() Formats {
	e.formatsOnce.Do(func() {
		base := e.Formats.Merge(DefaultFormats())
		e.effective = base
		if len(e.Ambient.Session) == 0 {
			return
		}
		_, hasFormats := e.Ambient.Session[SessionKeyFormats]
		_, hasOffset := e.Ambient.Session[SessionKeyTimezoneOffset]
		if !hasFormats && !hasOffset {
			return
		}
		var prefs sessionPrefs
		if err := mapstructure.WeakDecode(e.Ambient.Session, &prefs); err != nil {
			e.Log().Warn(LogMsgSessionFormats, zap.Error(err))
			return
		}
		merged := prefs.Formats.Merge(base)
		merged.OffsetMinutes = base.OffsetMinutes
		if prefs.TimezoneOffset != nil {
			merged.OffsetMinutes = *prefs.TimezoneOffset
		}
		e.effective = merged
	})
	return e.effective
}

// AsTime converts time values, unix epochs and parseable strings
func AsTime(v any) (time.Time, bool) {
	switch t := v.(type) {
	case time.Time:
		return t, true
	case *time.Time:
		if t == nil {
			return time.Time{}, false
		}
		return *t, true
	}
	if KindOf(v) == KindNumber {
		f, _ := ToFloat(v)
		return time.Unix(int64(f), 0).UTC(), true
	}
	return ParseLoose(Stringify(v), time.Now())
}

// ParseStorage parses the canonical storage layout as UTC
func ParseStorage(s string) (time.Time, bool) {
	t, err := time.ParseInLocation(StorageLayout, strings.TrimSpace(s), time.UTC)
	return t, err == nil
}

var looseLayouts = []string{
	time.RFC3339,
	time.RFC3339Nano,
	StorageLayout,
	StorageDateLayout,
	time.RFC1123,
	time.RFC1123Z,
	time.RFC822,
	time.RFC822Z,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
	"2006/01/02",
	"01/02/2006",
	DefaultEpochLayout,
	DefaultDateTimeLayout,
	DefaultDateLayout,
	"Jan 2, 2006",
	"January 2, 2006",
}

// ParseLoose is the best-effort fallback parser. It understands unix
// epochs, a few relative words and a list of common layouts.
func ParseLoose(s string, now time.Time) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	if epoch, err := strconv.ParseInt(strings.TrimPrefix(s, "@"), IntBase10, 64); err == nil {
		return time.Unix(epoch, 0).UTC(), true
	}
	day := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	switch strings.ToLower(s) {
	case timeWordNow:
		return now, true
	case timeWordToday:
		return day, true
	case timeWordTomorrow:
		return day.AddDate(0, 0, 1), true
	case timeWordYesterday:
		return day.AddDate(0, 0, -1), true
	}
	for _, layout := range looseLayouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// formatStored renders a stored datetime with layout. Storage values are
// shifted by the offset; anything else goes through the loose parser.
func formatStored(env *Env, value any, layout string) (string, bool) {
	if t, ok := value.(time.Time); ok {
		return t.Add(time.Duration(env.EffectiveFormats().OffsetMinutes) * time.Minute).Format(layout), true
	}
	s := Stringify(value)
	if t, ok := ParseStorage(s); ok {
		return t.Add(time.Duration(env.EffectiveFormats().OffsetMinutes) * time.Minute).Format(layout), true
	}
	env.Log().Warn(LogMsgDateParseFallback, zap.String(LogFieldValue, s))
	if t, ok := ParseLoose(s, env.Clock()); ok {
		return t.Format(layout), true
	}
	env.Log().Warn(LogMsgDateParseFailed, zap.String(LogFieldValue, s))
	return s, false
}

// toStorage converts a display datetime into the storage layout,
// defaulting to now when it cannot be parsed.
func toStorage(env *Env, s, option string) string {
	formats := env.EffectiveFormats()
	t, err := time.ParseInLocation(formats.DateTime, strings.TrimSpace(s), time.UTC)
	if err != nil {
		t = env.Clock()
	}
	switch option {
	case TimeOptionDate, TimeOptionNone, "":
		return t.Format(StorageDateLayout)
	case TimeOptionFirst:
		return t.Format(StorageDateLayout) + dayStartSuffix
	case TimeOptionLast:
		return t.Format(StorageDateLayout) + dayEndSuffix
	default:
		return t.Format(StorageLayout)
	}
}
