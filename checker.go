package jsi

// Checker validates the type of a value before it is mapped.
type Checker interface {
	Check(ctx *Context, v Value, params CheckErrorParams) error
}

// CheckerFunc adapts a function to the Checker interface.
type CheckerFunc func(ctx *Context, v Value, params CheckErrorParams) error

// Check calls f.
func (f CheckerFunc) Check(ctx *Context, v Value, params CheckErrorParams) error {
	return f(ctx, v, params)
}

// TypeName classifies a value for diagnostics: null, undefined, boolean,
// number, string, array, function, object or unknown.
func TypeName(v Value) string {
	t := v.Type()
	if t != TypeObject {
		return t.String()
	}
	obj := v.asObject()
	switch {
	case obj.IsArray():
		return "array"
	case obj.IsFunction():
		return "function"
	default:
		return "object"
	}
}

// typeChecker accepts values whose TypeName is expected. Functions and arrays
// are objects too.
func typeChecker(expected string) Checker {
	return CheckerFunc(func(_ *Context, v Value, params CheckErrorParams) error {
		actual := TypeName(v)
		if actual == expected {
			return nil
		}
		if expected == "object" && (actual == "function" || actual == "array") {
			return nil
		}
		return &CheckError{CheckErrorParams: params, Actual: actual, Expected: expected}
	})
}

var (
	BoolChecker     = typeChecker("boolean")
	NumberChecker   = typeChecker("number")
	StringChecker   = typeChecker("string")
	ObjectChecker   = typeChecker("object")
	ArrayChecker    = typeChecker("array")
	FunctionChecker = typeChecker("function")
)
