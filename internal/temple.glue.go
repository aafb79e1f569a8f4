package internal

import "runtime"

const goosWindows = "windows"

// glueTable maps symbolic separator names to literal join strings
var glueTable = map[string]string{
	GlueNone:       "",
	GlueSpace:      " ",
	GlueComma:      ",",
	GlueQuoteComma: "','",
	GlueColon:      ":",
	GlueSemicolon:  ";",
	GlueNewline:    lineTerminator(),
}

func lineTerminator() string {
	if runtime.GOOS == goosWindows {
		return "\r\n"
	}
	return "\n"
}

// DecodeGlue returns the literal separator for a glue code.
// Unknown codes decode to the empty string.
func DecodeGlue(code string) string {
	return glueTable[code]
}
