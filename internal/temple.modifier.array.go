package internal

import (
	"bytes"
	"encoding/json"
	"net/url"
	"sort"
	"strings"

	"go.uber.org/zap"
)

// Query string encoding of booleans
const (
	queryTrue  = "1"
	queryFalse = "0"
)

// arrayOps builds the operation table for sequences and mappings
func arrayOps() map[string]Modifier {
	ops := map[string]Modifier{
		ModIfNull: func(_ *Env, v any, _ Args) (any, bool) {
			return halt(StringValueEmpty)
		},
		ModIfNotNull: func(_ *Env, v any, _ Args) (any, bool) {
			return keep(v)
		},
		ModIfNotEmpty: func(_ *Env, v any, _ Args) (any, bool) {
			if Len(v) == 0 {
				return halt(StringValueEmpty)
			}
			return keep(v)
		},
		ModIfEmpty: func(env *Env, v any, args Args) (any, bool) {
			if Len(v) > 0 {
				return halt(v)
			}
			return halt(fallbackValue(env, args))
		},
		ModStopIfNotEmpty: func(_ *Env, v any, args Args) (any, bool) {
			if Len(v) != 0 {
				return halt(StringValueEmpty)
			}
			if def := args.String(ArgDefault, StringValueEmpty); def != "" {
				return halt(def)
			}
			return keep(v)
		},
		ModLength: func(_ *Env, v any, _ Args) (any, bool) {
			return keep(Len(v))
		},
		ModFirst: func(env *Env, v any, _ Args) (any, bool) {
			values := Values(v)
			if len(values) == 0 {
				env.Log().Warn(LogMsgBoundsEmpty, zap.String(LogFieldModifier, ModFirst))
				return keep(StringValueEmpty)
			}
			return keep(values[0])
		},
		ModLast: func(env *Env, v any, _ Args) (any, bool) {
			values := Values(v)
			if len(values) == 0 {
				env.Log().Warn(LogMsgBoundsEmpty, zap.String(LogFieldModifier, ModLast))
				return keep(StringValueEmpty)
			}
			return keep(values[len(values)-1])
		},
		ModField: func(_ *Env, v any, args Args) (any, bool) {
			name := args.String(ArgName, StringValueEmpty)
			found, ok := child(v, name)
			if !ok || found == nil {
				return keep(StringValueEmpty)
			}
			return keep(found)
		},
		ModJoin: func(_ *Env, v any, args Args) (any, bool) {
			return keep(joinValues(Values(v), DecodeGlue(args.String(ArgGlue, StringValueEmpty))))
		},
		ModSort: func(_ *Env, v any, _ Args) (any, bool) {
			values := Values(v)
			sort.SliceStable(values, func(i, j int) bool { return compare(values[i], values[j]) < 0 })
			return keep(values)
		},
		ModASort: func(_ *Env, v any, _ Args) (any, bool) {
			entries := Entries(v)
			sort.SliceStable(entries, func(i, j int) bool { return compare(entries[i].Value, entries[j].Value) < 0 })
			return keep(toOrdered(entries))
		},
		ModKSort: func(_ *Env, v any, _ Args) (any, bool) {
			entries := Entries(v)
			sort.SliceStable(entries, func(i, j int) bool { return compare(entries[i].Key, entries[j].Key) < 0 })
			return keep(toOrdered(entries))
		},
		ModJSON: func(env *Env, v any, _ Args) (any, bool) {
			out, err := encodeJSON(v)
			if err != nil {
				env.Log().Debug(LogMsgJSONFailed, zap.Error(err))
				return keep(StringValueEmpty)
			}
			return keep(out)
		},
		ModBuildQueryString: func(_ *Env, v any, _ Args) (any, bool) {
			return keep(QueryStringStart + buildQuery(v))
		},
		ModCutColumn: func(env *Env, v any, args Args) (any, bool) {
			column := args.String(ArgColumn, StringValueEmpty)
			out := NewOrderedMap()
			for _, row := range Values(v) {
				found, ok := child(row, column)
				if !ok || IsBlank(found) {
					continue
				}
				key := Stringify(found)
				out.Set(key, found)
			}
			return keep(out)
		},
		ModJoinColumn: func(_ *Env, v any, args Args) (any, bool) {
			field := args.String(ArgField, StringValueEmpty)
			var picked []any
			for _, row := range Values(v) {
				found, ok := child(row, field)
				if !ok || IsBlank(found) {
					continue
				}
				picked = append(picked, found)
			}
			return keep(joinValues(picked, DecodeGlue(args.String(ArgGlue, StringValueEmpty))))
		},
		ModReplace: func(env *Env, _ any, args Args) (any, bool) {
			return keep(fallbackValue(env, args))
		},
		ModHTMLComment: func(_ *Env, v any, _ Args) (any, bool) {
			return keep(htmlComment(Dump(v)))
		},
		ModDump: func(_ *Env, v any, args Args) (any, bool) {
			return keep(dump(v, args))
		},
		ModFwdTemplate: func(env *Env, v any, args Args) (any, bool) {
			var b strings.Builder
			for _, row := range Values(v) {
				if env.Err() != nil {
					break
				}
				b.WriteString(forward(env, args, rowParams(row)))
			}
			return keep(b.String())
		},
	}
	ops[ModStopIfEmpty] = ops[ModIfNotEmpty]
	return withAliases(ops, baselineAliases())
}

func joinValues(values []any, glue string) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = Stringify(v)
	}
	return strings.Join(parts, glue)
}

func toOrdered(entries []Entry) *OrderedMap {
	out := NewOrderedMap()
	for _, e := range entries {
		out.Set(e.Key, e.Value)
	}
	return out
}

// compare orders two values numerically when both are numeric and as
// strings otherwise.
func compare(a, b any) int {
	fa, okA := ToFloat(a)
	fb, okB := ToFloat(b)
	if okA && okB && IsNumeric(a) && IsNumeric(b) {
		switch {
		case fa < fb:
			return -1
		case fa > fb:
			return 1
		}
		return 0
	}
	return strings.Compare(Stringify(a), Stringify(b))
}

// encodeJSON serialises without HTML escaping and without the trailing newline
func encodeJSON(v any) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return "", err
	}
	return strings.TrimRight(buf.String(), "\n"), nil
}

// buildQuery encodes a mapping as a query string; nested values use
// bracketed keys.
func buildQuery(v any) string {
	var pairs []string
	appendQuery(&pairs, "", v)
	return strings.Join(pairs, QueryPairSep)
}

func appendQuery(pairs *[]string, prefix string, v any) {
	for _, e := range Entries(v) {
		key := e.Key
		if prefix != "" {
			key = prefix + "[" + e.Key + "]"
		}
		switch KindOf(e.Value) {
		case KindNull:
			continue
		case KindList, KindMap:
			appendQuery(pairs, key, e.Value)
			continue
		case KindBool:
			val := queryFalse
			if IsTruthy(e.Value) {
				val = queryTrue
			}
			*pairs = append(*pairs, url.QueryEscape(key)+QueryKeyValueSep+val)
			continue
		}
		*pairs = append(*pairs, url.QueryEscape(key)+QueryKeyValueSep+url.QueryEscape(Stringify(e.Value)))
	}
}

// rowParams turns one row of a sequence into render params. Scalar rows
// are exposed as "value".
func rowParams(row any) map[string]any {
	switch r := row.(type) {
	case map[string]any:
		return r
	}
	if KindOf(row) == KindMap {
		out := make(map[string]any, Len(row))
		for _, e := range Entries(row) {
			out[e.Key] = e.Value
		}
		return out
	}
	return map[string]any{ArgValue: row}
}
