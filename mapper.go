package jsi

import (
	"fmt"
	"math"
	"strconv"
)

// Mapper converts between script values and a Go type T.
//
// FromJS assumes the value has the expected shape and panics otherwise;
// TryFromJS checks it first and returns a *CheckError on mismatch. ToJS always
// succeeds and returns a value owned by the caller.
type Mapper[T any] interface {
	FromJS(ctx *Context, v Value) T
	TryFromJS(ctx *Context, v Value, params CheckErrorParams) (T, error)
	ToJS(ctx *Context, v T) Value
}

type fnMapper[T any] struct {
	checker Checker
	fromJS  func(ctx *Context, v Value) T
	toJS    func(ctx *Context, v T) Value
}

// NewMapper builds a mapper from a checker and a pair of conversion functions.
func NewMapper[T any](checker Checker, fromJS func(ctx *Context, v Value) T, toJS func(ctx *Context, v T) Value) Mapper[T] {
	return &fnMapper[T]{checker: checker, fromJS: fromJS, toJS: toJS}
}

func (m *fnMapper[T]) FromJS(ctx *Context, v Value) T {
	return m.fromJS(ctx, v)
}

func (m *fnMapper[T]) TryFromJS(ctx *Context, v Value, params CheckErrorParams) (T, error) {
	if err := m.checker.Check(ctx, v, params); err != nil {
		var zero T
		return zero, err
	}
	return m.fromJS(ctx, v), nil
}

func (m *fnMapper[T]) ToJS(ctx *Context, v T) Value {
	return m.toJS(ctx, v)
}

func must[T any](v T, err error) T {
	mustOK(err)
	return v
}

func mustOK(err error) {
	if err != nil {
		panic(fmt.Sprintf("jsi: unchecked conversion failed: %v", err))
	}
}

var (
	// NumberMapper maps numbers to float64.
	NumberMapper Mapper[float64] = NewMapper(NumberChecker,
		func(_ *Context, v Value) float64 { return must(v.ToNumber()) },
		func(ctx *Context, n float64) Value { return ctx.MakeNumber(n) })

	// IntMapper maps numbers to int, truncating toward zero. NaN maps to 0 and
	// out of range numbers saturate.
	IntMapper Mapper[int] = NewMapper(NumberChecker,
		func(_ *Context, v Value) int { return int(truncInt(must(v.ToNumber()), strconv.IntSize)) },
		func(ctx *Context, n int) Value { return ctx.MakeNumber(float64(n)) })

	// StringMapper maps strings to Go strings.
	StringMapper Mapper[string] = NewMapper(StringChecker,
		func(_ *Context, v Value) string { return must(v.toGoString()) },
		func(ctx *Context, s string) Value { return ctx.MakeStringFromUTF8(s) })

	// BoolMapper maps booleans to bool.
	BoolMapper Mapper[bool] = NewMapper(BoolChecker,
		func(_ *Context, v Value) bool { return must(v.ToBool()) },
		func(ctx *Context, b bool) Value { return ctx.MakeBool(b) })
)

// truncInt converts n to a signed integer of the given bit size: NaN is 0,
// values outside the range saturate, the rest truncate toward zero.
func truncInt(n float64, bits int) int64 {
	hi := int64(1)<<(bits-1) - 1
	lo := -hi - 1
	switch {
	case math.IsNaN(n):
		return 0
	case n >= float64(hi):
		return hi
	case n <= float64(lo):
		return lo
	}
	return int64(n)
}

// truncUint is truncInt for unsigned integers; negative numbers map to 0.
func truncUint(n float64, bits int) uint64 {
	hi := ^uint64(0) >> (64 - bits)
	switch {
	case math.IsNaN(n), n <= 0:
		return 0
	case n >= float64(hi):
		return hi
	}
	return uint64(n)
}

// maxPrealloc bounds the capacity reserved from a script-provided length.
const maxPrealloc = 1024

// EnumMapper maps numbers to an integer-backed enum type through an int mapper.
func EnumMapper[T ~int | ~int8 | ~int16 | ~int32 | ~int64](m Mapper[int]) Mapper[T] {
	return NewMapper(mapperChecker(m),
		func(ctx *Context, v Value) T { return T(m.FromJS(ctx, v)) },
		func(ctx *Context, e T) Value { return m.ToJS(ctx, int(e)) })
}

// mapperChecker runs the checks of m through its TryFromJS.
func mapperChecker[T any](m Mapper[T]) Checker {
	return CheckerFunc(func(ctx *Context, v Value, params CheckErrorParams) error {
		_, err := m.TryFromJS(ctx, v, params)
		return err
	})
}

type sliceMapper[T any] struct {
	elem Mapper[T]
}

// SliceMapper maps arrays to slices, element by element. Element failures
// are reported under the path name[i].
func SliceMapper[T any](elem Mapper[T]) Mapper[[]T] {
	return &sliceMapper[T]{elem: elem}
}

func (m *sliceMapper[T]) FromJS(ctx *Context, v Value) []T {
	arr := v.asObject()
	n := must(arr.Len())
	out := make([]T, 0, min(n, maxPrealloc))
	for i := 0; i < n; i++ {
		ev := must(arr.GetIndex(i))
		out = append(out, m.elem.FromJS(ctx, ev))
		ev.Free()
	}
	return out
}

func (m *sliceMapper[T]) TryFromJS(ctx *Context, v Value, params CheckErrorParams) ([]T, error) {
	if err := ArrayChecker.Check(ctx, v, params); err != nil {
		return nil, err
	}
	arr := v.asObject()
	n, err := arr.Len()
	if err != nil {
		return nil, err
	}
	out := make([]T, 0, min(n, maxPrealloc))
	for i := 0; i < n; i++ {
		ev, err := arr.GetIndex(i)
		if err != nil {
			return nil, err
		}
		ep := params
		ep.Name = fmt.Sprintf("%s[%d]", params.Name, i)
		item, err := m.elem.TryFromJS(ctx, ev, ep)
		ev.Free()
		if err != nil {
			return nil, err
		}
		out = append(out, item)
	}
	return out, nil
}

func (m *sliceMapper[T]) ToJS(ctx *Context, items []T) Value {
	arr := ctx.MakeArray()
	for i, item := range items {
		ev := m.elem.ToJS(ctx, item)
		err := arr.SetIndex(i, ev)
		ev.Free()
		if err != nil {
			panic(fmt.Sprintf("jsi: failed to fill array: %v", err))
		}
	}
	return arr.Value()
}
