package internal

import (
	"net/url"
	"strconv"
	"strings"
)

// Args holds the flat key/value parameters of one modifier segment
type Args map[string]string

// ModifierSpec is one parsed segment of a modifier chain
type ModifierSpec struct {
	Name string
	Args Args
}

// ParseModifierSpec splits "name?k=v&k2=v2" on the first '?'. The
// parameter part is decoded as a query string; the last value wins
// for repeated keys and malformed pairs are skipped.
func ParseModifierSpec(segment string) ModifierSpec {
	name, query, found := strings.Cut(segment, ArgsSeparator)
	spec := ModifierSpec{Name: name, Args: Args{}}
	if !found || query == "" {
		return spec
	}
	values, _ := url.ParseQuery(query)
	for k, vs := range values {
		if len(vs) > 0 {
			spec.Args[k] = vs[len(vs)-1]
		}
	}
	return spec
}

// Has reports whether key was supplied
func (a Args) Has(key string) bool {
	_, ok := a[key]
	return ok
}

// String returns the argument or def when it is absent or empty
func (a Args) String(key, def string) string {
	if v, ok := a[key]; ok && v != "" {
		return v
	}
	return def
}

// Int returns the argument as an integer, or def when absent or not numeric
func (a Args) Int(key string, def int) int {
	v, ok := a[key]
	if !ok {
		return def
	}
	if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
		return n
	}
	if f, err := strconv.ParseFloat(strings.TrimSpace(v), FloatBitSize64); err == nil {
		return int(f)
	}
	return def
}
