package instances

// Context is the three-level mapping from spec.md §3: optional module
// -> class name -> dictionary identifier -> descriptor. The teacher's
// SymbolTable keeps one flat implementations[traitName] slice per
// scope and walks s.outer for the enclosing scope instead; we need the
// explicit module key because §4.B's scoped lookup combines contexts
// left-biased at every level, not just innermost-wins.
type Context struct {
	// modules[""] is the local/no-module context (spec: "optional
	// module"). Dictionary identifiers are synthesised by the caller
	// (evidence names, fresh dict<ClassName> identifiers, …) and only need to
	// be unique within a (module, class) pair.
	modules map[string]map[string]map[string]Descriptor
}

// localKey is the module key for the local/assumed context.
const localKey = ""

// NewContext returns an empty instance context.
func NewContext() *Context {
	return &Context{modules: map[string]map[string]map[string]Descriptor{}}
}

// Add registers a descriptor under the given module (use "" for local).
func (c *Context) Add(module, class, ident string, d Descriptor) {
	byClass, ok := c.modules[module]
	if !ok {
		byClass = map[string]map[string]Descriptor{}
		c.modules[module] = byClass
	}
	byDict, ok := byClass[class]
	if !ok {
		byDict = map[string]Descriptor{}
		byClass[class] = byDict
	}
	byDict[ident] = d
}

// AddLocal registers a descriptor under the local (moduleless) context.
func (c *Context) AddLocal(class, ident string, d Descriptor) {
	c.Add(localKey, class, ident, d)
}

// Combine performs a left-biased union of two contexts at every level
// (spec §3 "Combining two contexts is a left-biased union at every
// level"): entries in c win over entries in other for the same
// (module, class, ident) key.
func Combine(c, other *Context) *Context {
	out := NewContext()
	for module, byClass := range other.modules {
		for class, byDict := range byClass {
			for ident, d := range byDict {
				out.Add(module, class, ident, d)
			}
		}
	}
	for module, byClass := range c.modules {
		for class, byDict := range byClass {
			for ident, d := range byDict {
				out.Add(module, class, ident, d)
			}
		}
	}
	return out
}

// FindCandidates returns every descriptor registered for class under
// any module in scopeModules union {local}, deduplicated by module key
// in the order local, then scopeModules as given (spec §4.B:
// "Duplicates by module key are removed, preserving the order None,
// currentModule, …").
func (c *Context) FindCandidates(class string, scopeModules []string) []Descriptor {
	seen := map[string]bool{}
	order := []string{localKey}
	for _, m := range scopeModules {
		if !seen[m] && m != localKey {
			order = append(order, m)
		}
		seen[m] = true
	}

	var out []Descriptor
	seenModule := map[string]bool{}
	for _, m := range order {
		if seenModule[m] {
			continue
		}
		seenModule[m] = true
		byClass, ok := c.modules[m]
		if !ok {
			continue
		}
		byDict, ok := byClass[class]
		if !ok {
			continue
		}
		for _, d := range byDict {
			out = append(out, d)
		}
	}
	return out
}
