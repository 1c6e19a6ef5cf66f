package core

// Context is the typing environment: an ordered mapping from variable
// name to a stack of types, innermost binder first. It is immutable;
// Insert returns a new Context sharing the old one's storage.
type Context struct {
	bindings map[string][]Value
}

// EmptyContext returns the typing context with no bound variables.
func EmptyContext() Context {
	return Context{bindings: map[string][]Value{}}
}

// Insert returns a new context with name bound (innermost) to typ. Every
// existing binding for name is implicitly shifted by +1 in index, since
// Lookup always consults stack position 0 for index 0 of the newest
// binding.
func (c Context) Insert(name string, typ Value) Context {
	newBindings := make(map[string][]Value, len(c.bindings)+1)
	for k, v := range c.bindings {
		newBindings[k] = v
	}
	newBindings[name] = append([]Value{typ}, newBindings[name]...)
	return Context{bindings: newBindings}
}

// Lookup returns the type bound to the index-th (innermost-first)
// occurrence of name, or (nil, false) if there is no such binding, in
// which case the caller reports a FreeVariable error.
func (c Context) Lookup(name string, index int) (Value, bool) {
	stack := c.bindings[name]
	if index < 0 || index >= len(stack) {
		return nil, false
	}
	return stack[index], true
}
