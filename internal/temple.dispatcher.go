package internal

import (
	"strings"

	"go.uber.org/zap"
)

// ResolveTag produces the output of one tag. pathWithModifiers is the
// tag body after the context keyword, "path|mod|mod?k=v".
func ResolveTag(env *Env, keyword, pathWithModifiers string) string {
	if env.OnTag != nil {
		env.OnTag(keyword)
	}

	segments := strings.Split(pathWithModifiers, ModifierSeparator)
	path, chain := segments[0], segments[1:]

	var value any
	switch keyword {
	case ContextPass:
		start, end := env.Marks()
		return start + pathWithModifiers + end
	case ContextNone:
		value = StringValueEmpty
	case ContextValue:
		value = ResolvePath(path, env.Params)
	case ContextSrv, ContextServer:
		value = ResolvePath(path, env.Ambient.Server)
	case ContextReq, ContextRequest:
		value = ResolvePath(path, env.Ambient.Request)
	case ContextSess, ContextSession:
		value = ResolvePath(path, env.Ambient.Session)
	case ContextCookie:
		value = ResolvePath(path, env.Ambient.Cookie)
	default:
		if env.Host == nil {
			return StringValueEmpty
		}
		env.Log().Debug(LogMsgCustomContext,
			zap.String(LogFieldKeyword, keyword),
			zap.String(LogFieldPath, pathWithModifiers))
		return env.Host.ResolveCustom(env, keyword, pathWithModifiers)
	}

	if len(chain) > 0 {
		value = env.Catalog.Run(env, value, chain)
	}
	out := Stringify(value)
	env.Log().Debug(LogMsgTagResolved,
		zap.String(LogFieldContext, keyword),
		zap.String(LogFieldPath, path))
	return out
}
