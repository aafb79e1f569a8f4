package internal

import (
	"strings"

	"github.com/davecgh/go-spew/spew"
)

var dumpConfig = spew.ConfigState{
	Indent:                  " ",
	DisablePointerAddresses: true,
	DisableCapacities:       true,
	SortKeys:                true,
}

// Dump renders a readable representation of any value. Scalars print as
// their template string form, everything else through spew.
func Dump(v any) string {
	switch KindOf(v) {
	case KindList, KindMap, KindObject:
		return strings.TrimRight(dumpConfig.Sdump(v), "\n")
	}
	return Stringify(v)
}

func htmlComment(s string) string {
	return HTMLCommentOpen + s + HTMLCommentClose
}
