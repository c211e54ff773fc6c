package runtime

// Environment represents a variable scope with a parent chain.
type Environment struct {
	values map[string]Value
	parent *Environment
}

// NewEnvironment creates a new environment with an optional parent scope.
func NewEnvironment(parent *Environment) *Environment {
	return &Environment{
		values: make(map[string]Value),
		parent: parent,
	}
}

// Define binds a name in the current scope. Re-declaring a name in the
// same scope rebinds it; this is not an error.
func (e *Environment) Define(name string, value Value) {
	e.values[name] = value
}

// Get looks up a variable by walking the scope chain.
func (e *Environment) Get(name string) (Value, bool) {
	for env := e; env != nil; env = env.parent {
		if val, exists := env.values[name]; exists {
			return val, true
		}
	}
	return nil, false
}

// Assign updates an existing variable, walking the scope chain to find
// the binding. It reports false when the name is not bound anywhere;
// assignment never creates a binding.
func (e *Environment) Assign(name string, value Value) bool {
	for env := e; env != nil; env = env.parent {
		if _, exists := env.values[name]; exists {
			env.values[name] = value
			return true
		}
	}
	return false
}
