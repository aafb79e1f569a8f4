package internal

import (
	"fmt"
	"maps"
	"reflect"

	"github.com/mitchellh/mapstructure"
	"go.uber.org/zap"
)

// objectOps builds the operation table for opaque host objects
func objectOps() map[string]Modifier {
	ops := map[string]Modifier{
		ModIfNull: func(_ *Env, v any, _ Args) (any, bool) {
			return halt(StringValueEmpty)
		},
		ModIfNotNull: func(_ *Env, v any, _ Args) (any, bool) {
			return keep(v)
		},
		ModHTMLComment: func(_ *Env, v any, _ Args) (any, bool) {
			return keep(htmlComment(Dump(v)))
		},
		ModDump: func(_ *Env, v any, args Args) (any, bool) {
			return keep(dump(v, args))
		},
		ModFields: func(env *Env, v any, _ Args) (any, bool) {
			fields, err := objectFields(v)
			if err != nil {
				env.Log().Debug(LogMsgFieldsFailed, zap.Error(err))
				return keep(MarkerObject)
			}
			return keep(fields)
		},
		ModString: func(_ *Env, v any, _ Args) (any, bool) {
			if s, ok := v.(fmt.Stringer); ok {
				return keep(s.String())
			}
			return keep(fmt.Sprint(v))
		},
		ModFwdTemplate: func(env *Env, v any, args Args) (any, bool) {
			params := make(map[string]any, len(env.Params))
			maps.Copy(params, env.Params)
			if fields, err := objectFields(v); err == nil {
				maps.Copy(params, fields)
			}
			return keep(forward(env, args, params))
		},
	}
	return withAliases(ops, map[string]string{
		ModStopIfNotNull: ModIfNull,
		ModStopIfNull:    ModIfNotNull,
		ModFwdT:          ModFwdTemplate,
	})
}

// objectFields decodes the exported fields of a struct into a mapping
func objectFields(v any) (map[string]any, error) {
	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Pointer {
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Struct {
		return nil, fmt.Errorf("%s: %T", ErrMsgNotStruct, v)
	}
	out := map[string]any{}
	if err := mapstructure.Decode(rv.Interface(), &out); err != nil {
		return nil, err
	}
	return out, nil
}
