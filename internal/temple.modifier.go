package internal

import (
	"sync"

	"go.uber.org/zap"
)

// Modifier is one named operation of a family. It returns the new value
// and whether the chain continues; false short-circuits the chain with
// the returned value as the tag result.
type Modifier func(env *Env, value any, args Args) (any, bool)

// Catalog holds the operation tables of the four families. Built-in
// operations are installed by NewCatalog; hosts may add more.
type Catalog struct {
	tables map[Family]map[string]Modifier
	logger *zap.Logger
	mu     sync.RWMutex
}

// NewCatalog creates a catalog with every built-in operation installed
func NewCatalog(logger *zap.Logger) *Catalog {
	if logger == nil {
		logger = zap.NewNop()
	}
	c := &Catalog{
		tables: map[Family]map[string]Modifier{
			FamilyScalar:  scalarOps(),
			FamilyNumeric: numericOps(),
			FamilyArray:   arrayOps(),
			FamilyObject:  objectOps(),
		},
		logger: logger,
	}
	return c
}

// Register adds an operation to a family. Existing names are kept
// (first-come-wins) and false is returned.
func (c *Catalog) Register(family Family, name string, m Modifier) bool {
	if name == "" || m == nil {
		return false
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	table, ok := c.tables[family]
	if !ok {
		table = make(map[string]Modifier)
		c.tables[family] = table
	}
	if _, exists := table[name]; exists {
		return false
	}
	table[name] = m
	c.logger.Debug(LogMsgModifierRegistered,
		zap.String(LogFieldFamily, family.String()),
		zap.String(LogFieldModifier, name))
	return true
}

// Has reports whether a family knows the named operation
func (c *Catalog) Has(family Family, name string) bool {
	_, ok := c.lookup(family, name)
	return ok
}

// Names lists the operation names of a family
func (c *Catalog) Names(family Family) []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	names := make([]string, 0, len(c.tables[family]))
	for name := range c.tables[family] {
		names = append(names, name)
	}
	return names
}

func (c *Catalog) lookup(family Family, name string) (Modifier, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	m, ok := c.tables[family][name]
	return m, ok
}

// guard checks that value belongs to family. When it does not, the
// escaped replacement is returned with ok=false.
func guard(family Family, value any) (any, bool) {
	kind := KindOf(value)
	switch family {
	case FamilyArray:
		switch kind {
		case KindObject:
			return MarkerObject, false
		case KindList, KindMap:
			return value, true
		}
		return value, false
	case FamilyObject:
		switch kind {
		case KindList, KindMap:
			return MarkerArray, false
		case KindObject:
			return value, true
		}
		return Stringify(value), false
	default:
		switch kind {
		case KindList, KindMap:
			return MarkerArray, false
		case KindObject:
			return MarkerObject, false
		}
		return value, true
	}
}

// step applies one chain segment with the given family
func (c *Catalog) step(env *Env, family Family, value any, segment string) (any, bool) {
	if escaped, ok := guard(family, value); !ok {
		env.Log().Debug(LogMsgFamilyMismatch,
			zap.String(LogFieldFamily, family.String()),
			zap.String(LogFieldModifier, segment))
		return escaped, false
	}

	spec := ParseModifierSpec(segment)
	op, ok := c.lookup(family, spec.Name)
	if !ok && family == FamilyNumeric {
		op, ok = c.lookup(FamilyScalar, spec.Name)
	}
	if !ok {
		env.Log().Debug(LogMsgUnknownModifier,
			zap.String(LogFieldFamily, family.String()),
			zap.String(LogFieldModifier, spec.Name))
		return value, true
	}

	next, cont := op(env, value, spec.Args)
	if !cont {
		env.Log().Debug(LogMsgChainStopped,
			zap.String(LogFieldFamily, family.String()),
			zap.String(LogFieldModifier, spec.Name))
	}
	return next, cont
}

// Run folds the chain over value left to right. The family is chosen
// from the value's runtime kind before every step, so a modifier that
// retypes the value hands the next segment to a different family.
func (c *Catalog) Run(env *Env, value any, chain []string) any {
	for i, segment := range chain {
		if env.Err() != nil {
			return StringValueEmpty
		}
		if segment == "" && i == len(chain)-1 {
			return value
		}
		next, cont := c.step(env, FamilyOf(value), value, segment)
		if !cont {
			return next
		}
		value = next
	}
	return value
}

// Apply runs the chain starting with an explicit family. A value outside
// the family is escaped without consuming the chain.
func (c *Catalog) Apply(env *Env, family Family, value any, chain []string) any {
	if len(chain) == 0 || (len(chain) == 1 && chain[0] == "") {
		if escaped, ok := guard(family, value); !ok {
			return escaped
		}
		return value
	}
	next, cont := c.step(env, family, value, chain[0])
	if !cont {
		return next
	}
	return c.Run(env, next, chain[1:])
}

// fallbackValue looks up args["fallback"] as a dotted path in the
// params, defaulting to args["default"].
func fallbackValue(env *Env, args Args) any {
	def := args.String(ArgDefault, StringValueEmpty)
	fallback := args.String(ArgFallback, StringValueEmpty)
	if fallback == "" {
		return def
	}
	v, ok := Lookup(fallback, env.Params)
	if !ok || v == nil {
		return def
	}
	return v
}

// forward renders the sub-template named by args with params
func forward(env *Env, args Args, params map[string]any) string {
	name := args.String(ArgName, StringValueEmpty)
	if module := args.String(ArgModule, StringValueEmpty); module != "" && name != "" {
		name = module + PathSeparator + name
	}
	return env.Forward(name, params)
}

// withAliases registers each alias under the operation of its target
func withAliases(ops map[string]Modifier, aliases map[string]string) map[string]Modifier {
	for alias, target := range aliases {
		if op, ok := ops[target]; ok {
			ops[alias] = op
		}
	}
	return ops
}

func halt(v any) (any, bool) {
	return v, false
}

func keep(v any) (any, bool) {
	return v, true
}
