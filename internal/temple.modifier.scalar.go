package internal

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"net/url"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"
)

// scalarOps builds the operation table for strings, booleans, times and null
func scalarOps() map[string]Modifier {
	ops := map[string]Modifier{
		ModIfTrue: func(_ *Env, v any, _ Args) (any, bool) {
			if !IsTruthy(v) {
				return halt(StringValueEmpty)
			}
			return keep(true)
		},
		ModIfFalse: func(_ *Env, v any, _ Args) (any, bool) {
			if IsTruthy(v) {
				return halt(StringValueEmpty)
			}
			return keep(false)
		},
		ModIfNull: func(_ *Env, v any, _ Args) (any, bool) {
			if v != nil && IsTruthy(v) {
				return halt(StringValueEmpty)
			}
			return keep(v)
		},
		ModIfNotNull: func(_ *Env, v any, _ Args) (any, bool) {
			if v == nil || !IsTruthy(v) {
				return halt(StringValueEmpty)
			}
			return keep(v)
		},
		ModTag: func(env *Env, v any, _ Args) (any, bool) {
			start, end := env.Marks()
			return halt(start + Stringify(v) + end)
		},
		ModLowercase: stringOp(strings.ToLower),
		ModUppercase: stringOp(strings.ToUpper),
		ModTrim: stringOp(func(s string) string {
			return strings.Trim(s, trimCutset)
		}),
		ModLength: func(_ *Env, v any, _ Args) (any, bool) {
			return keep(utf8.RuneCountInString(Stringify(v)))
		},
		ModWordCount: func(_ *Env, v any, _ Args) (any, bool) {
			return keep(wordCount(Stringify(v)))
		},
		ModHTMLEntities: stringOp(htmlEntities),
		ModRound: func(_ *Env, v any, args Args) (any, bool) {
			f, ok := ToFloat(v)
			if !ok {
				return keep(0)
			}
			return keep(roundHalfUp(f, args.Int(ArgDigits, 0)))
		},
		ModZero: func(_ *Env, v any, _ Args) (any, bool) {
			if IsBlank(v) {
				return keep(0)
			}
			return keep(v)
		},
		ModShortener: func(_ *Env, v any, args Args) (any, bool) {
			return keep(shorten(Stringify(v), args.Int(ArgWords, 0), args.Int(ArgChars, 0)))
		},
		ModSplit: func(_ *Env, v any, args Args) (any, bool) {
			s := Stringify(v)
			delimiter := DecodeGlue(args.String(ArgDelimiter, StringValueEmpty))
			if delimiter == "" {
				return keep([]any{s})
			}
			parts := strings.Split(s, delimiter)
			out := make([]any, len(parts))
			for i, p := range parts {
				out[i] = p
			}
			return keep(out)
		},
		ModIfEmpty: func(env *Env, v any, args Args) (any, bool) {
			if !IsBlank(v) {
				return halt(v)
			}
			return halt(fallbackValue(env, args))
		},
		ModIfNotEmpty: func(_ *Env, v any, _ Args) (any, bool) {
			if IsBlank(v) {
				return halt(StringValueEmpty)
			}
			return keep(v)
		},
		ModReplace: func(env *Env, _ any, args Args) (any, bool) {
			return keep(fallbackValue(env, args))
		},
		ModChecked:   checked,
		ModDBSafe:    stringOp(dbSafe),
		ModJSSafe:    stringOp(jsSafe),
		ModHTMLSafe:  stringOp(htmlSafe),
		ModURLEncode: stringOp(url.QueryEscape),
		ModFixFloat: func(_ *Env, v any, _ Args) (any, bool) {
			return keep(LeadingFloat(v))
		},
		ModFixInt: func(_ *Env, v any, _ Args) (any, bool) {
			f := LeadingFloat(v)
			if math.IsNaN(f) || math.IsInf(f, 0) {
				return keep(0)
			}
			return keep(int64(f))
		},
		ModFixBool: fixBool,
		ModURLName: stringOp(urlName),
		ModRSSTime: func(env *Env, v any, _ Args) (any, bool) {
			t, ok := ParseLoose(Stringify(v), env.Clock())
			if !ok {
				return keep(v)
			}
			return keep(t.Format(RSSLayout))
		},
		ModDBDate: func(env *Env, v any, args Args) (any, bool) {
			if IsBlank(v) {
				return keep(v)
			}
			return keep(toStorage(env, Stringify(v), args.String(ArgTime, DefaultTimeOption)))
		},
		ModDate:     displayDate(func(f Formats) string { return f.Date }),
		ModTime:     displayDate(func(f Formats) string { return f.Time }),
		ModDateTime: displayDate(func(f Formats) string { return f.DateTime }),
		ModTimestamp: func(env *Env, v any, _ Args) (any, bool) {
			if IsBlank(v) {
				return keep(v)
			}
			if t, ok := ParseStorage(Stringify(v)); ok {
				return keep(t.Unix())
			}
			if t, ok := ParseLoose(Stringify(v), env.Clock()); ok {
				return keep(t.Unix())
			}
			return keep(StringValueEmpty)
		},
		ModFixURL: stringOp(fixURL),
		ModSetLang: func(env *Env, v any, args Args) (any, bool) {
			lang := args.String(ArgLang, DefaultLanguage)
			if args.Has(ArgLangVar) {
				if found, ok := Lookup(args[ArgLangVar], env.Params); ok && !IsBlank(found) {
					lang = Stringify(found)
				}
			}
			return keep(setLang(Stringify(v), lang))
		},
		ModNoHTML:      stringOp(stripTags),
		ModHTMLComment: stringOp(htmlComment),
		ModUnserialize: func(env *Env, v any, _ Args) (any, bool) {
			s := Stringify(v)
			if s == "" {
				return keep([]any{})
			}
			decoded, err := decodeJSON(s)
			if err != nil {
				env.Log().Debug(LogMsgJSONFailed, zap.Error(err))
				return keep(nil)
			}
			return keep(decoded)
		},
		ModLoremIpsum: func(_ *Env, v any, _ Args) (any, bool) {
			if IsBlank(v) {
				return keep(loremIpsumText)
			}
			return keep(v)
		},
		ModGravatar: func(_ *Env, v any, args Args) (any, bool) {
			size := args.String(ArgSize, DefaultGravatarSize)
			return keep(fmt.Sprintf(GravatarURLFmt, gravatarHash(Stringify(v)), size))
		},
		ModGravatarHash: stringOp(gravatarHash),
		ModTranslate:    translate,
		ModFwdTemplate: func(env *Env, _ any, args Args) (any, bool) {
			return keep(forward(env, args, env.Params))
		},
		ModDump: func(_ *Env, v any, args Args) (any, bool) {
			return keep(dump(v, args))
		},
	}
	return withAliases(ops, baselineAliases())
}

func baselineAliases() map[string]string {
	return map[string]string{
		ModStopIfFalse:   ModIfTrue,
		ModStopIfTrue:    ModIfFalse,
		ModStopIfNotNull: ModIfNull,
		ModStopIfNull:    ModIfNotNull,
		ModFwdT:          ModFwdTemplate,
	}
}

func stringOp(fn func(string) string) Modifier {
	return func(_ *Env, v any, _ Args) (any, bool) {
		return keep(fn(Stringify(v)))
	}
}

func checked(_ *Env, v any, _ Args) (any, bool) {
	if Stringify(v) == StringValueTrue {
		return keep(CheckedValue)
	}
	return keep(StringValueEmpty)
}

func fixBool(_ *Env, v any, _ Args) (any, bool) {
	return keep(IsTruthy(v))
}

func dump(v any, args Args) string {
	out := Dump(v)
	if args.Has(ArgPre) {
		return PreOpen + out + PreClose
	}
	return out
}

func displayDate(layout func(Formats) string) Modifier {
	return func(env *Env, v any, _ Args) (any, bool) {
		if IsBlank(v) {
			return keep(v)
		}
		out, _ := formatStored(env, v, layout(env.EffectiveFormats()))
		return keep(out)
	}
}

// translate reads a JSON object keyed by language code and returns the
// field for the session language, or the fallback param.
func translate(env *Env, v any, args Args) (any, bool) {
	field := args.String(ArgField, StringValueEmpty)
	translation := StringValueEmpty
	if fallback := args.String(ArgFallback, StringValueEmpty); fallback != "" {
		if found, ok := Lookup(fallback, env.Params); ok {
			translation = Stringify(found)
		}
	}
	lang := Stringify(ResolvePath(SessionKeyLanguageCode, env.Ambient.Session))
	decoded, err := decodeJSON(Stringify(v))
	if err != nil {
		return keep(translation)
	}
	if found, ok := Lookup(lang+PathSeparator+field, decoded); ok && field != "" && lang != "" {
		return keep(Stringify(found))
	}
	return keep(translation)
}

// roundHalfUp rounds away from zero at the given number of decimals.
// Precisions beyond float range leave the value unchanged.
func roundHalfUp(f float64, digits int) float64 {
	pow := math.Pow(10, float64(digits))
	if pow == 0 {
		return 0
	}
	scaled := f * pow
	if math.IsInf(scaled, 0) || math.IsNaN(scaled) {
		return f
	}
	return math.Round(scaled) / pow
}

// decodeJSON decodes objects into *OrderedMap in document order and
// arrays into []any, keeping numbers exact
func decodeJSON(s string) (any, error) {
	dec := json.NewDecoder(bytes.NewReader([]byte(s)))
	dec.UseNumber()
	return decodeJSONValue(dec)
}

func decodeJSONValue(dec *json.Decoder) (any, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	delim, ok := tok.(json.Delim)
	if !ok {
		return tok, nil
	}

	if delim == '{' {
		out := NewOrderedMap()
		for dec.More() {
			key, err := dec.Token()
			if err != nil {
				return nil, err
			}
			value, err := decodeJSONValue(dec)
			if err != nil {
				return nil, err
			}
			out.Set(fmt.Sprint(key), value)
		}
		_, err := dec.Token()
		return out, err
	}

	out := make([]any, 0)
	for dec.More() {
		value, err := decodeJSONValue(dec)
		if err != nil {
			return nil, err
		}
		out = append(out, value)
	}
	_, err = dec.Token()
	return out, err
}
