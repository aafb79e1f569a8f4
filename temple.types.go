package temple

import (
	"context"

	"github.com/itsatony/go-temple/internal"
)

// Formats holds the display layouts used by the date modifiers.
type Formats = internal.Formats

// DefaultFormats returns the built-in display layouts.
func DefaultFormats() Formats {
	return internal.DefaultFormats()
}

// Family identifies the modifier family that handles a value.
type Family = internal.Family

// Modifier families
const (
	FamilyScalar  = internal.FamilyScalar
	FamilyNumeric = internal.FamilyNumeric
	FamilyArray   = internal.FamilyArray
	FamilyObject  = internal.FamilyObject
)

// FamilyOf returns the family a value is dispatched to.
func FamilyOf(value any) Family {
	return internal.FamilyOf(value)
}

// ModifierFunc is a host-provided modifier. It returns the new value and
// whether the chain continues.
type ModifierFunc func(ctx context.Context, value any, args map[string]string) (any, bool)

// ModifierSpec is one parsed "name?k=v" segment of a modifier chain.
type ModifierSpec = internal.ModifierSpec

// DecodeGlue maps a symbolic glue code ("comma", "newline", ...) to its
// literal separator. Unknown codes decode to "".
func DecodeGlue(code string) string {
	return internal.DecodeGlue(code)
}

// ResolvePath walks a dotted path through nested mappings and sequences.
// A missing segment yields "".
func ResolvePath(path string, root any) any {
	return internal.ResolvePath(path, root)
}

// ParseModifierSpec parses one modifier segment.
func ParseModifierSpec(segment string) ModifierSpec {
	return internal.ParseModifierSpec(segment)
}

// Stringify renders a value the way a tag emits it.
func Stringify(value any) string {
	return internal.Stringify(value)
}
