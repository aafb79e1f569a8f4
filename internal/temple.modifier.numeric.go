package internal

import (
	"time"

	"github.com/dustin/go-humanize"
)

// thousandsFormat groups digits with '.' and drops the fraction
const thousandsFormat = "#.###,"

// numericOps builds the operation table for numbers
func numericOps() map[string]Modifier {
	ops := map[string]Modifier{
		ModIfTrue: func(_ *Env, v any, _ Args) (any, bool) {
			if !IsTruthy(v) {
				return halt(StringValueEmpty)
			}
			return keep(v)
		},
		ModIfFalse: func(_ *Env, v any, _ Args) (any, bool) {
			if IsTruthy(v) {
				return halt(StringValueEmpty)
			}
			return keep(v)
		},
		ModIfNull: func(_ *Env, v any, _ Args) (any, bool) {
			if v != nil {
				return halt(StringValueEmpty)
			}
			return keep(v)
		},
		ModIfNotNull: func(_ *Env, v any, _ Args) (any, bool) {
			if v == nil {
				return halt(StringValueEmpty)
			}
			return keep(v)
		},
		ModHTMLComment: stringOp(htmlComment),
		ModReplace: func(env *Env, _ any, args Args) (any, bool) {
			return keep(fallbackValue(env, args))
		},
		ModChecked: checked,
		ModFixBool: fixBool,
		ModRound: func(_ *Env, v any, args Args) (any, bool) {
			f, _ := ToFloat(v)
			return keep(roundHalfUp(f, args.Int(ArgDigits, 0)))
		},
		ModMoney: func(_ *Env, v any, _ Args) (any, bool) {
			f, _ := ToFloat(v)
			return keep(roundHalfUp(f, MoneyDigits))
		},
		ModDate: func(env *Env, v any, _ Args) (any, bool) {
			f, _ := ToFloat(v)
			return keep(time.Unix(int64(f), 0).UTC().Format(env.EffectiveFormats().Epoch))
		},
		ModThousands: func(_ *Env, v any, _ Args) (any, bool) {
			f, _ := ToFloat(v)
			return keep(humanize.FormatFloat(thousandsFormat, f))
		},
		ModCheckboxValue: func(_ *Env, v any, _ Args) (any, bool) {
			if IsTruthy(v) {
				return keep(CheckboxValue)
			}
			return keep(StringValueEmpty)
		},
		ModFwdTemplate: func(env *Env, _ any, args Args) (any, bool) {
			return keep(forward(env, args, env.Params))
		},
		ModDump: func(_ *Env, v any, args Args) (any, bool) {
			return keep(dump(v, args))
		},
	}
	return withAliases(ops, baselineAliases())
}
