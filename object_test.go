package jsi_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/sunflowerdeath/aardvark-jsi"
)

func TestObjectProperties(t *testing.T) {
	ctx := newTestContext(t)

	obj := ctx.MakeObject(nil)
	defer obj.Free()

	num := ctx.MakeNumber(1)
	defer num.Free()
	require.False(t, has(t, obj, "a"))
	require.NoError(t, obj.Set("a", num))
	require.True(t, has(t, obj, "a"))
	// inherited properties count too
	require.True(t, has(t, obj, "toString"))

	got, err := obj.Get("a")
	require.NoError(t, err)
	require.Equal(t, "1", got.String())
	got.Free()

	missing, err := obj.Get("missing")
	require.NoError(t, err)
	require.True(t, missing.IsUndefined())
	missing.Free()

	require.NoError(t, obj.Delete("a"))
	require.False(t, has(t, obj, "a"))
}

func TestObjectPropertyErrors(t *testing.T) {
	ctx := newTestContext(t)

	val := mustEval(t, ctx, `
		Object.freeze(Object.defineProperty({}, "bad", {
			get() { throw new Error("getter failed") },
			set(v) { throw new Error("setter failed") },
			enumerable: true,
		}))
	`)
	defer val.Free()
	obj := mustObject(t, val)

	_, err := obj.Get("bad")
	var jsErr *jsi.Error
	require.True(t, errors.As(err, &jsErr))
	require.Equal(t, "getter failed", jsErr.Message)

	num := ctx.MakeNumber(1)
	defer num.Free()
	err = obj.Set("bad", num)
	require.True(t, errors.As(err, &jsErr))
	require.Equal(t, "setter failed", jsErr.Message)

	// frozen objects refuse deletion
	err = obj.Delete("bad")
	require.True(t, errors.As(err, &jsErr))
	require.Equal(t, "TypeError", jsErr.Name)

	trapped := mustObject(t, mustEval(t, ctx, `
		new Proxy({}, { has() { throw new RangeError("has trap") } })
	`))
	_, err = trapped.Has("anything")
	require.True(t, errors.As(err, &jsErr))
	require.Equal(t, "RangeError", jsErr.Name)
	require.Equal(t, "has trap", jsErr.Message)
}

func has(t *testing.T, obj jsi.Object, name string) bool {
	t.Helper()
	ok, err := obj.Has(name)
	require.NoError(t, err)
	return ok
}

func TestObjectCall(t *testing.T) {
	ctx := newTestContext(t)

	fnVal := mustEval(t, ctx, `(function (a, b) { "use strict"; return [this === null, a + b] })`)
	defer fnVal.Free()
	fn := mustObject(t, fnVal)

	a, b := ctx.MakeNumber(2), ctx.MakeNumber(3)
	defer a.Free()
	defer b.Free()

	res, err := fn.Call(nil, a, b)
	require.NoError(t, err)
	defer res.Free()
	require.Equal(t, "true,5", res.String())

	this := mustEval(t, ctx, `({ base: 10 })`)
	defer this.Free()
	method := mustObject(t, mustEval(t, ctx, `(function (x) { return this.base + x })`))
	res2, err := method.Call(&this, a)
	require.NoError(t, err)
	defer res2.Free()
	require.Equal(t, "12", res2.String())

	// calling a non-function throws into the caller
	notFn := ctx.MakeObject(nil)
	defer notFn.Free()
	_, err = notFn.Call(nil)
	var jsErr *jsi.Error
	require.True(t, errors.As(err, &jsErr))
	require.Equal(t, "TypeError", jsErr.Name)
}

func TestObjectCallAsConstructor(t *testing.T) {
	ctx := newTestContext(t)

	ctor := mustObject(t, mustEval(t, ctx, `(class Point { constructor(x) { this.x = x } })`))
	require.True(t, ctor.IsConstructor())

	x := ctx.MakeNumber(4)
	defer x.Free()
	inst, err := ctor.CallAsConstructor(x)
	require.NoError(t, err)
	defer inst.Free()

	got, err := inst.Get("x")
	require.NoError(t, err)
	defer got.Free()
	require.Equal(t, "4", got.String())

	arrow := mustObject(t, mustEval(t, ctx, `(() => 1)`))
	require.False(t, arrow.IsConstructor())
	_, err = arrow.CallAsConstructor()
	require.Error(t, err)
}

func TestObjectPredicates(t *testing.T) {
	ctx := newTestContext(t)

	cases := []struct {
		source     string
		isFunction bool
		isCtor     bool
		isArray    bool
	}{
		{"({})", false, false, false},
		{"[]", false, false, true},
		{"(function () {})", true, true, false},
		{"(() => 1)", true, false, false},
		{"Array", true, true, false},
	}
	for _, tc := range cases {
		obj := mustObject(t, mustEval(t, ctx, tc.source))
		require.Equal(t, tc.isFunction, obj.IsFunction(), tc.source)
		require.Equal(t, tc.isCtor, obj.IsConstructor(), tc.source)
		require.Equal(t, tc.isArray, obj.IsArray(), tc.source)
	}

	fn := ctx.MakeFunction(func(*jsi.Context, jsi.Value, []jsi.Value) (jsi.Value, error) {
		return jsi.Value{}, nil
	})
	defer fn.Free()
	require.True(t, fn.IsFunction())
	require.False(t, fn.IsArray())
}

func TestObjectPrototype(t *testing.T) {
	ctx := newTestContext(t)

	proto := mustEval(t, ctx, `({ greet() { return "hi" } })`)
	defer proto.Free()

	obj := ctx.MakeObject(nil)
	defer obj.Free()

	current, err := obj.Prototype()
	require.NoError(t, err)
	objectProto := mustEval(t, ctx, "Object.prototype")
	require.True(t, current.StrictEqual(objectProto))
	current.Free()
	objectProto.Free()

	require.NoError(t, obj.SetPrototype(proto))
	current, err = obj.Prototype()
	require.NoError(t, err)
	require.True(t, current.StrictEqual(proto))
	current.Free()

	setGlobal(t, ctx, "obj", obj.Value())
	require.Equal(t, "hi", evalString(t, ctx, "obj.greet()"))

	nullProto := ctx.MakeNull()
	defer nullProto.Free()
	require.NoError(t, obj.SetPrototype(nullProto))
	current, err = obj.Prototype()
	require.NoError(t, err)
	require.True(t, current.IsNull())
	current.Free()

	// non-extensible objects refuse a new prototype
	frozen := mustObject(t, mustEval(t, ctx, "Object.preventExtensions({})"))
	require.Error(t, frozen.SetPrototype(proto))
}

func TestObjectPropertyNames(t *testing.T) {
	ctx := newTestContext(t)

	obj := mustObject(t, mustEval(t, ctx, `
		Object.defineProperty({ b: 1, a: 2, 10: 3 }, "hidden", { value: 4, enumerable: false })
	`))
	names, err := obj.PropertyNames()
	require.NoError(t, err)
	require.Equal(t, []string{"10", "b", "a"}, names)

	empty := ctx.MakeObject(nil)
	defer empty.Free()
	names, err = empty.PropertyNames()
	require.NoError(t, err)
	require.Empty(t, names)
}

func TestObjectPrivateDataRequiresClass(t *testing.T) {
	ctx := newTestContext(t)

	obj := ctx.MakeObject(nil)
	defer obj.Free()
	require.ErrorIs(t, obj.SetPrivateData("data"), jsi.ErrNotClassInstance)
	require.Nil(t, obj.PrivateData())
}

func TestObjectValueSharesHandle(t *testing.T) {
	ctx := newTestContext(t)

	obj := ctx.MakeObject(nil)
	val := obj.Value()
	require.Equal(t, jsi.TypeObject, val.Type())

	val.Free()
	require.Panics(t, func() { obj.IsArray() })

	clone := ctx.MakeObject(nil)
	independent := clone.Clone()
	clone.Free()
	require.False(t, independent.IsArray())
	independent.Free()
}
