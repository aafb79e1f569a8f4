package internal

import (
	"reflect"
	"strconv"
	"strings"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// OrderedMap is the associative sequence type produced by key-preserving modifiers
type OrderedMap = orderedmap.OrderedMap[string, any]

// NewOrderedMap creates an empty associative sequence
func NewOrderedMap() *OrderedMap {
	return orderedmap.New[string, any]()
}

// ResolvePath walks a dot-delimited path through nested mappings and
// sequences. A missing segment, an empty path or a non-mapping root
// all resolve to the empty string.
func ResolvePath(path string, root any) any {
	v, ok := Lookup(path, root)
	if !ok {
		return StringValueEmpty
	}
	return v
}

// Lookup is ResolvePath with an explicit presence flag.
func Lookup(path string, root any) (any, bool) {
	if path == "" || root == nil {
		return nil, false
	}
	current := root
	for _, segment := range strings.Split(path, PathSeparator) {
		next, ok := child(current, segment)
		if !ok {
			return nil, false
		}
		current = next
	}
	return current, true
}

// child returns the value stored under key in a mapping, or at index key in a sequence
func child(container any, key string) (any, bool) {
	switch c := container.(type) {
	case map[string]any:
		v, ok := c[key]
		return v, ok
	case map[string]string:
		v, ok := c[key]
		return v, ok
	case *OrderedMap:
		return c.Get(key)
	case []any:
		return index(len(c), key, func(i int) any { return c[i] })
	case []string:
		return index(len(c), key, func(i int) any { return c[i] })
	case []map[string]any:
		return index(len(c), key, func(i int) any { return c[i] })
	}

	rv := reflect.ValueOf(container)
	for rv.Kind() == reflect.Pointer || rv.Kind() == reflect.Interface {
		if rv.IsNil() {
			return nil, false
		}
		rv = rv.Elem()
	}
	switch rv.Kind() {
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			return nil, false
		}
		mv := rv.MapIndex(reflect.ValueOf(key).Convert(rv.Type().Key()))
		if !mv.IsValid() {
			return nil, false
		}
		return mv.Interface(), true
	case reflect.Slice, reflect.Array:
		return index(rv.Len(), key, func(i int) any { return rv.Index(i).Interface() })
	}
	return nil, false
}

func index(length int, key string, at func(int) any) (any, bool) {
	i, err := strconv.Atoi(key)
	if err != nil || i < 0 || i >= length {
		return nil, false
	}
	return at(i), true
}
