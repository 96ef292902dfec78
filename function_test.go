package jsi_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/sunflowerdeath/aardvark-jsi"
)

func TestFunctionCall(t *testing.T) {
	ctx := newTestContext(t)

	var (
		calls   int
		gotThis float64
		gotArgs []float64
	)
	fn := ctx.MakeFunction(func(ctx *jsi.Context, this jsi.Value, args []jsi.Value) (jsi.Value, error) {
		calls++
		n, err := this.ToNumber()
		if err != nil {
			return jsi.Value{}, err
		}
		gotThis = n
		for _, a := range args {
			n, err := a.ToNumber()
			if err != nil {
				return jsi.Value{}, err
			}
			gotArgs = append(gotArgs, n)
		}
		return ctx.MakeNumber(1), nil
	})
	defer fn.Free()

	plain := ctx.MakeObject(nil)
	defer plain.Free()
	require.False(t, plain.IsFunction())
	require.True(t, fn.IsFunction())

	this := ctx.MakeNumber(2)
	defer this.Free()
	arg := ctx.MakeNumber(3)
	defer arg.Free()

	res, err := fn.Call(&this, arg)
	require.NoError(t, err)
	defer res.Free()

	require.Equal(t, 1, calls)
	n, err := res.ToNumber()
	require.NoError(t, err)
	require.EqualValues(t, 1, n)
	require.EqualValues(t, 2, gotThis)
	require.Equal(t, []float64{3}, gotArgs)
}

func TestFunctionFromScript(t *testing.T) {
	ctx := newTestContext(t)

	add := ctx.MakeFunction(func(ctx *jsi.Context, _ jsi.Value, args []jsi.Value) (jsi.Value, error) {
		sum := 0.0
		for _, a := range args {
			n, err := a.ToNumber()
			if err != nil {
				return jsi.Value{}, err
			}
			sum += n
		}
		return ctx.MakeNumber(sum), nil
	})
	defer add.Free()
	setGlobal(t, ctx, "add", add.Value())

	require.EqualValues(t, 5, evalNumber(t, ctx, "add(2, 3)"))
	require.EqualValues(t, 0, evalNumber(t, ctx, "add()"))
	require.Equal(t, "function", evalString(t, ctx, "typeof add"))
	require.EqualValues(t, 3, evalNumber(t, ctx, "add.call(null, 1, 2)"))
	require.EqualValues(t, 7, evalNumber(t, ctx, "add.bind(null, 3)(4)"))
}

func TestFunctionReturnsArgument(t *testing.T) {
	ctx := newTestContext(t)

	identity := ctx.MakeFunction(func(_ *jsi.Context, _ jsi.Value, args []jsi.Value) (jsi.Value, error) {
		return args[0], nil
	})
	defer identity.Free()
	setGlobal(t, ctx, "identity", identity.Value())

	require.Equal(t, "true", evalString(t, ctx, `
		var o = {};
		String(identity(o) === o)
	`))
}

func TestFunctionUndefinedResult(t *testing.T) {
	ctx := newTestContext(t)

	noop := ctx.MakeFunction(func(*jsi.Context, jsi.Value, []jsi.Value) (jsi.Value, error) {
		return jsi.Value{}, nil
	})
	defer noop.Free()
	setGlobal(t, ctx, "noop", noop.Value())

	require.Equal(t, "undefined", evalString(t, ctx, "typeof noop()"))
}

func TestFunctionErrors(t *testing.T) {
	t.Run("GoError", func(t *testing.T) {
		ctx := newTestContext(t)
		fail := ctx.MakeFunction(func(*jsi.Context, jsi.Value, []jsi.Value) (jsi.Value, error) {
			return jsi.Value{}, errors.New("boom")
		})
		defer fail.Free()
		setGlobal(t, ctx, "fail", fail.Value())

		require.Equal(t, "Error:boom", evalString(t, ctx, `
			try { fail(); "not thrown" } catch (e) { e.name + ":" + e.message }
		`))
		require.Equal(t, "true", evalString(t, ctx, `
			try { fail() } catch (e) { String(e instanceof Error) }
		`))

		// uncaught, the error comes back to Go
		_, err := ctx.Eval("fail()", "test.js")
		var jsErr *jsi.Error
		require.True(t, errors.As(err, &jsErr))
		require.Equal(t, "Error: boom", jsErr.Error())
	})

	t.Run("WrappedScriptError", func(t *testing.T) {
		ctx := newTestContext(t)
		rethrow := ctx.MakeFunction(func(ctx *jsi.Context, _ jsi.Value, _ []jsi.Value) (jsi.Value, error) {
			_, err := ctx.Eval(`throw new RangeError("out of range")`, "inner.js")
			return jsi.Value{}, fmt.Errorf("inner eval: %w", err)
		})
		defer rethrow.Free()
		setGlobal(t, ctx, "rethrow", rethrow.Value())

		require.Equal(t, "RangeError:out of range", evalString(t, ctx, `
			try { rethrow() } catch (e) { e.name + ":" + e.message }
		`))
	})

	t.Run("CheckError", func(t *testing.T) {
		ctx := newTestContext(t)
		typed := ctx.MakeFunction(func(ctx *jsi.Context, _ jsi.Value, args []jsi.Value) (jsi.Value, error) {
			params := jsi.CheckErrorParams{Kind: "argument", Name: "n", Target: "typed"}
			n, err := jsi.NumberMapper.TryFromJS(ctx, args[0], params)
			if err != nil {
				return jsi.Value{}, err
			}
			return ctx.MakeNumber(n * 2), nil
		})
		defer typed.Free()
		setGlobal(t, ctx, "typed", typed.Value())

		require.EqualValues(t, 8, evalNumber(t, ctx, "typed(4)"))
		require.Equal(t, "TypeError:Invalid argument `n` of type `string` supplied to `typed`, expected `number`.",
			evalString(t, ctx, `try { typed("x") } catch (e) { e.name + ":" + e.message }`))
	})

	t.Run("Panic", func(t *testing.T) {
		ctx := newTestContext(t)
		explode := ctx.MakeFunction(func(*jsi.Context, jsi.Value, []jsi.Value) (jsi.Value, error) {
			panic("kaboom")
		})
		defer explode.Free()
		setGlobal(t, ctx, "explode", explode.Value())

		require.Equal(t, "InternalError:kaboom", evalString(t, ctx, `
			try { explode() } catch (e) { e.name + ":" + e.message }
		`))
		// the context survives the panic
		require.EqualValues(t, 2, evalNumber(t, ctx, "1 + 1"))
	})

	t.Run("ScriptErrorFromCall", func(t *testing.T) {
		ctx := newTestContext(t)
		fn := mustObject(t, mustEval(t, ctx, `(function () { throw new SyntaxError("bad") })`))
		_, err := fn.Call(nil)
		var jsErr *jsi.Error
		require.True(t, errors.As(err, &jsErr))
		require.Equal(t, "SyntaxError", jsErr.Name)
	})
}

func TestFunctionReentrancy(t *testing.T) {
	ctx := newTestContext(t)

	depth := 0
	var recurse jsi.Function
	recurse = func(ctx *jsi.Context, _ jsi.Value, args []jsi.Value) (jsi.Value, error) {
		n, err := args[0].ToNumber()
		if err != nil {
			return jsi.Value{}, err
		}
		depth++
		if n <= 0 {
			return ctx.MakeNumber(0), nil
		}
		return ctx.Eval(fmt.Sprintf("recurse(%v) + 1", n-1), "recurse.js")
	}
	fn := ctx.MakeFunction(recurse)
	defer fn.Free()
	setGlobal(t, ctx, "recurse", fn.Value())

	require.EqualValues(t, 5, evalNumber(t, ctx, "recurse(5)"))
	require.Equal(t, 6, depth)
}

func TestFunctionCapturedHandles(t *testing.T) {
	ctx := newTestContext(t)

	var kept jsi.Value
	keep := ctx.MakeFunction(func(_ *jsi.Context, _ jsi.Value, args []jsi.Value) (jsi.Value, error) {
		// arguments are borrowed; keep a clone
		kept = args[0].Clone()
		return jsi.Value{}, nil
	})
	defer keep.Free()
	setGlobal(t, ctx, "keep", keep.Value())

	mustEval(t, ctx, `keep({ label: "kept" })`).Free()
	ctx.RunGC()

	obj := mustObject(t, kept)
	label, err := obj.Get("label")
	require.NoError(t, err)
	defer label.Free()
	require.Equal(t, "kept", label.String())
	kept.Free()
}
