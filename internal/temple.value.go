package internal

import (
	"encoding/json"
	"math"
	"reflect"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"
)

// Kind is the runtime variant of a pipeline value
type Kind int

const (
	KindNull Kind = iota
	KindBool
	KindNumber
	KindString
	KindTime
	KindList
	KindMap
	KindObject
)

// Family identifies the modifier family that handles a value
type Family int

const (
	FamilyScalar Family = iota
	FamilyNumeric
	FamilyArray
	FamilyObject
)

// Family names used in logs
const (
	FamilyNameScalar  = "scalar"
	FamilyNameNumeric = "numeric"
	FamilyNameArray   = "array"
	FamilyNameObject  = "object"
)

func (f Family) String() string {
	switch f {
	case FamilyNumeric:
		return FamilyNameNumeric
	case FamilyArray:
		return FamilyNameArray
	case FamilyObject:
		return FamilyNameObject
	default:
		return FamilyNameScalar
	}
}

var (
	numericPattern = regexp.MustCompile(`^\s*[+-]?(\d+(\.\d*)?|\.\d+)([eE][+-]?\d+)?\s*$`)
	numericPrefix  = regexp.MustCompile(`^\s*[+-]?(\d+(\.\d*)?|\.\d+)([eE][+-]?\d+)?`)
	timeType       = reflect.TypeOf(time.Time{})
)

// KindOf classifies a value
func KindOf(v any) Kind {
	switch t := v.(type) {
	case nil:
		return KindNull
	case bool:
		return KindBool
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64, float32, float64, json.Number:
		return KindNumber
	case string, []byte:
		return KindString
	case time.Time:
		return KindTime
	case []any, []string, []map[string]any:
		return KindList
	case map[string]any, map[string]string, *OrderedMap:
		if om, ok := t.(*OrderedMap); ok && om == nil {
			return KindNull
		}
		return KindMap
	}

	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Pointer || rv.Kind() == reflect.Interface {
		if rv.IsNil() {
			return KindNull
		}
		rv = rv.Elem()
	}
	switch rv.Kind() {
	case reflect.Bool:
		return KindBool
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return KindNumber
	case reflect.String:
		return KindString
	case reflect.Slice, reflect.Array:
		return KindList
	case reflect.Map:
		if rv.Type().Key().Kind() == reflect.String {
			return KindMap
		}
		return KindObject
	case reflect.Struct:
		if rv.Type() == timeType {
			return KindTime
		}
	}
	return KindObject
}

// FamilyOf selects the modifier family for a value. Numbers and fully
// numeric strings both reach the numeric family.
func FamilyOf(v any) Family {
	switch KindOf(v) {
	case KindNumber:
		return FamilyNumeric
	case KindString:
		if IsNumeric(v) {
			return FamilyNumeric
		}
		return FamilyScalar
	case KindList, KindMap:
		return FamilyArray
	case KindObject:
		return FamilyObject
	default:
		return FamilyScalar
	}
}

// Stringify renders a value the way it appears in template output.
// Sequences and mappings become "Array", opaque objects "Object".
func Stringify(v any) string {
	switch t := v.(type) {
	case nil:
		return StringValueEmpty
	case string:
		return t
	case []byte:
		return string(t)
	case bool:
		if t {
			return StringValueTrue
		}
		return StringValueEmpty
	case json.Number:
		return t.String()
	case time.Time:
		return t.Format(StorageLayout)
	}

	switch KindOf(v) {
	case KindNull:
		return StringValueEmpty
	case KindList, KindMap:
		return MarkerArray
	case KindObject:
		return MarkerObject
	case KindNumber:
		rv := reflect.Indirect(reflect.ValueOf(v))
		switch rv.Kind() {
		case reflect.Float32, reflect.Float64:
			return FormatFloat(rv.Float())
		case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
			return strconv.FormatUint(rv.Uint(), IntBase10)
		default:
			return strconv.FormatInt(rv.Int(), IntBase10)
		}
	case KindBool:
		return Stringify(reflect.Indirect(reflect.ValueOf(v)).Bool())
	case KindString:
		return reflect.Indirect(reflect.ValueOf(v)).String()
	case KindTime:
		return Stringify(reflect.Indirect(reflect.ValueOf(v)).Interface())
	}
	return MarkerObject
}

// FormatFloat prints a float with 14 significant digits and no
// trailing zeros, so 3.0 renders as "3" and 0.1+0.2 as "0.3".
func FormatFloat(f float64) string {
	if math.IsInf(f, 0) || math.IsNaN(f) {
		return strconv.FormatFloat(f, FloatFormatGeneral, FloatPrecisionAll, FloatBitSize64)
	}
	rounded, err := strconv.ParseFloat(strconv.FormatFloat(f, FloatFormatGeneral, FloatSignificant, FloatBitSize64), FloatBitSize64)
	if err != nil {
		rounded = f
	}
	if rounded == math.Trunc(rounded) && math.Abs(rounded) < 1e15 {
		return strconv.FormatInt(int64(rounded), IntBase10)
	}
	return strconv.FormatFloat(rounded, FloatFormatFlag, FloatPrecisionAll, FloatBitSize64)
}

// IsTruthy applies loose truthiness: "", "0", zero numbers, empty
// sequences and null are false.
func IsTruthy(v any) bool {
	switch KindOf(v) {
	case KindNull:
		return false
	case KindBool:
		return reflect.Indirect(reflect.ValueOf(v)).Bool()
	case KindNumber:
		f, _ := ToFloat(v)
		return f != 0
	case KindString:
		s := Stringify(v)
		return s != StringValueEmpty && s != StringValueFalse
	case KindTime:
		t, _ := AsTime(v)
		return !t.IsZero()
	case KindList, KindMap:
		return Len(v) > 0
	}
	return true
}

// IsBlank reports the loose "equals empty string" test: null, "" and false
func IsBlank(v any) bool {
	switch KindOf(v) {
	case KindNull:
		return true
	case KindBool:
		return !IsTruthy(v)
	case KindString:
		return Stringify(v) == StringValueEmpty
	}
	return false
}

// IsNumeric reports whether v is a number or a fully numeric string
func IsNumeric(v any) bool {
	switch KindOf(v) {
	case KindNumber:
		return true
	case KindString:
		return numericPattern.MatchString(Stringify(v))
	}
	return false
}

// ToFloat converts numbers, booleans and numeric strings to float64
func ToFloat(v any) (float64, bool) {
	switch t := v.(type) {
	case json.Number:
		f, err := t.Float64()
		return f, err == nil
	case float64:
		return t, true
	case int:
		return float64(t), true
	case int64:
		return float64(t), true
	}
	switch KindOf(v) {
	case KindNumber:
		rv := reflect.Indirect(reflect.ValueOf(v))
		switch rv.Kind() {
		case reflect.Float32, reflect.Float64:
			return rv.Float(), true
		case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
			return float64(rv.Uint()), true
		default:
			return float64(rv.Int()), true
		}
	case KindBool:
		if IsTruthy(v) {
			return 1, true
		}
		return 0, true
	case KindString:
		s := Stringify(v)
		if !numericPattern.MatchString(s) {
			return 0, false
		}
		f, err := strconv.ParseFloat(strings.TrimSpace(s), FloatBitSize64)
		return f, err == nil
	}
	return 0, false
}

// LeadingFloat parses the numeric prefix of a value, 0 when there is none
func LeadingFloat(v any) float64 {
	if f, ok := ToFloat(v); ok {
		return f
	}
	m := numericPrefix.FindString(Stringify(v))
	if m == "" {
		return 0
	}
	f, _ := strconv.ParseFloat(strings.TrimSpace(m), FloatBitSize64)
	return f
}

// Entry is one key/value pair of a sequence or mapping
type Entry struct {
	Key   string
	Value any
}

// Entries lists the pairs of a sequence or mapping. Sequences use their
// index as key, ordered maps keep insertion order and plain maps are
// walked in sorted key order.
func Entries(v any) []Entry {
	switch t := v.(type) {
	case []any:
		out := make([]Entry, len(t))
		for i, item := range t {
			out[i] = Entry{Key: strconv.Itoa(i), Value: item}
		}
		return out
	case map[string]any:
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		out := make([]Entry, len(keys))
		for i, k := range keys {
			out[i] = Entry{Key: k, Value: t[k]}
		}
		return out
	case *OrderedMap:
		if t == nil {
			return nil
		}
		out := make([]Entry, 0, t.Len())
		for pair := t.Oldest(); pair != nil; pair = pair.Next() {
			out = append(out, Entry{Key: pair.Key, Value: pair.Value})
		}
		return out
	}

	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Pointer || rv.Kind() == reflect.Interface {
		if rv.IsNil() {
			return nil
		}
		rv = rv.Elem()
	}
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		out := make([]Entry, rv.Len())
		for i := 0; i < rv.Len(); i++ {
			out[i] = Entry{Key: strconv.Itoa(i), Value: rv.Index(i).Interface()}
		}
		return out
	case reflect.Map:
		keys := rv.MapKeys()
		sort.Slice(keys, func(i, j int) bool { return keys[i].String() < keys[j].String() })
		out := make([]Entry, len(keys))
		for i, k := range keys {
			out[i] = Entry{Key: k.String(), Value: rv.MapIndex(k).Interface()}
		}
		return out
	}
	return nil
}

// Values returns the element values of a sequence or mapping in Entries order
func Values(v any) []any {
	entries := Entries(v)
	out := make([]any, len(entries))
	for i, e := range entries {
		out[i] = e.Value
	}
	return out
}

// Len counts the elements of a sequence or mapping
func Len(v any) int {
	switch t := v.(type) {
	case []any:
		return len(t)
	case map[string]any:
		return len(t)
	case *OrderedMap:
		if t == nil {
			return 0
		}
		return t.Len()
	}
	rv := reflect.Indirect(reflect.ValueOf(v))
	switch rv.Kind() {
	case reflect.Slice, reflect.Array, reflect.Map:
		return rv.Len()
	}
	return 0
}
