package internal

import (
	"strings"

	"go.uber.org/zap"
)

// RenderText substitutes every tag of text between the env marks. Text
// before the first start mark is copied as is; a fragment without an end
// mark is treated as a tag running to the end of the text.
func RenderText(env *Env, text string) string {
	start, end := env.Marks()
	fragments := strings.Split(text, start)

	var b strings.Builder
	b.Grow(len(text))
	b.WriteString(fragments[0])
	for _, fragment := range fragments[1:] {
		if err := env.Err(); err != nil {
			env.Log().Debug(LogMsgRenderAborted, zap.Error(err), zap.Int(LogFieldDepth, env.Depth))
			return StringValueEmpty
		}
		body, trailing, _ := strings.Cut(fragment, end)
		keyword, pathWithModifiers, _ := strings.Cut(body, ContextSeparator)
		if pathWithModifiers == "" {
			// a tag without a name is a value lookup of its whole context part
			keyword, pathWithModifiers = ContextValue, keyword
		}
		b.WriteString(ResolveTag(env, keyword, pathWithModifiers))
		b.WriteString(trailing)
	}
	if env.Err() != nil {
		return StringValueEmpty
	}
	return b.String()
}

// RenderRepeated renders text once per row and concatenates the results
func RenderRepeated(env *Env, text string, rows []map[string]any) string {
	var b strings.Builder
	for _, row := range rows {
		if env.Err() != nil {
			return StringValueEmpty
		}
		rowEnv := env.Child(row)
		rowEnv.Depth = env.Depth
		b.WriteString(RenderText(rowEnv, text))
	}
	return b.String()
}
