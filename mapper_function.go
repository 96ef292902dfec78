package jsi

import "fmt"

// Callback is a script function held from Go. Its result is checked and
// converted with the mapper it was created with.
type Callback[R any] struct {
	fn     Object
	result Mapper[R]
}

// Call calls the function with a null this. The caller keeps ownership of args.
func (cb *Callback[R]) Call(args ...Value) (R, error) {
	var zero R
	ret, err := cb.fn.Call(nil, args...)
	if err != nil {
		return zero, err
	}
	defer ret.Free()

	name := cb.fn.stringProperty("name")
	if name == "" {
		name = "anonymous"
	}
	return cb.result.TryFromJS(cb.fn.Context(), ret, CheckErrorParams{Kind: "return value", Name: name})
}

// Function returns the underlying function object. The handle belongs to cb.
func (cb *Callback[R]) Function() Object {
	return cb.fn
}

// Free releases the function handle.
func (cb *Callback[R]) Free() {
	cb.fn.Free()
}

type functionMapper[R any] struct {
	result Mapper[R]
}

// FunctionMapper maps script functions to callbacks whose results are mapped
// with result. Each Callback holds its own handle and must be freed.
func FunctionMapper[R any](result Mapper[R]) Mapper[*Callback[R]] {
	return &functionMapper[R]{result: result}
}

func (m *functionMapper[R]) FromJS(_ *Context, v Value) *Callback[R] {
	return &Callback[R]{fn: v.asObject().Clone(), result: m.result}
}

func (m *functionMapper[R]) TryFromJS(ctx *Context, v Value, params CheckErrorParams) (*Callback[R], error) {
	if err := FunctionChecker.Check(ctx, v, params); err != nil {
		return nil, err
	}
	return m.FromJS(ctx, v), nil
}

// ToJS returns the callback's function; a nil callback maps to null.
func (m *functionMapper[R]) ToJS(ctx *Context, cb *Callback[R]) Value {
	if cb == nil {
		return ctx.MakeNull()
	}
	return cb.fn.Clone().Value()
}

// Args reads the arguments of a native function one by one through mappers.
// The first failure sticks: later reads return zero values and Err reports it.
//
//	add := ctx.MakeFunction(func(ctx *jsi.Context, _ jsi.Value, args []jsi.Value) (jsi.Value, error) {
//		in := jsi.NewArgs(ctx, "add", args)
//		a := jsi.Arg(in, "a", jsi.NumberMapper)
//		b := jsi.Arg(in, "b", jsi.NumberMapper)
//		if err := in.Err(); err != nil {
//			return jsi.Value{}, err
//		}
//		return ctx.MakeNumber(a + b), nil
//	})
type Args struct {
	ctx    *Context
	target string
	args   []Value
	next   int
	err    error
}

// NewArgs starts reading args of the function named target.
func NewArgs(ctx *Context, target string, args []Value) *Args {
	return &Args{ctx: ctx, target: target, args: args}
}

// Arg maps the next argument with m. A missing argument reads as undefined.
func Arg[T any](a *Args, name string, m Mapper[T]) T {
	var zero T
	i := a.next
	a.next++
	if a.err != nil {
		return zero
	}

	var v Value
	if i < len(a.args) {
		v = a.args[i]
	} else {
		v = a.ctx.MakeUndefined()
		defer v.Free()
	}
	got, err := m.TryFromJS(a.ctx, v, CheckErrorParams{Kind: "argument", Name: name, Target: a.target})
	if err != nil {
		a.err = err
		return zero
	}
	return got
}

// Err returns the first argument failure, or an error when more arguments
// were supplied than read.
func (a *Args) Err() error {
	if a.err != nil {
		return a.err
	}
	if len(a.args) > a.next {
		return fmt.Errorf("Invalid number of arguments supplied to `%s`. Expected %d arguments, got %d.", a.target, a.next, len(a.args))
	}
	return nil
}
