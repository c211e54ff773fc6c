package runtime

import "time"

// RegisterBuiltins adds built-in functions to the given environment.
func RegisterBuiltins(env *Environment) {
	env.Define("clock", &BuiltinVal{
		Name:  "clock",
		Arity: 0,
		Fn: func(args []Value) (Value, error) {
			return NumberVal(time.Now().Unix()), nil
		},
	})
}
