package jsi

import (
	"fmt"
	"reflect"
	"strings"
)

// valueMapper is a Mapper over reflect values, built once per Go type.
type valueMapper interface {
	toJS(ctx *Context, rv reflect.Value) Value
	fromJS(ctx *Context, v Value, rv reflect.Value)
	tryFromJS(ctx *Context, v Value, params CheckErrorParams, rv reflect.Value) error
}

type reflectMapper[S any] struct {
	vm valueMapper
}

// ReflectStructMapper builds a mapper for the struct type S from its exported
// fields. Fields are named by their "js" tag, then their "json" tag, then the
// field name; a tag of "-" skips the field. Supported field types are bool,
// integers, floats, strings, nested structs and slices of those.
func ReflectStructMapper[S any]() (Mapper[S], error) {
	t := reflect.TypeOf((*S)(nil)).Elem()
	if t.Kind() != reflect.Struct {
		return nil, fmt.Errorf("jsi: %s is not a struct", t)
	}
	vm, err := newValueMapper(t, make(map[reflect.Type]*structValueMapper))
	if err != nil {
		return nil, err
	}
	return &reflectMapper[S]{vm: vm}, nil
}

func (m *reflectMapper[S]) FromJS(ctx *Context, v Value) S {
	var s S
	m.vm.fromJS(ctx, v, reflect.ValueOf(&s).Elem())
	return s
}

func (m *reflectMapper[S]) TryFromJS(ctx *Context, v Value, params CheckErrorParams) (S, error) {
	var s S
	if err := m.vm.tryFromJS(ctx, v, params, reflect.ValueOf(&s).Elem()); err != nil {
		var zero S
		return zero, err
	}
	return s, nil
}

func (m *reflectMapper[S]) ToJS(ctx *Context, s S) Value {
	return m.vm.toJS(ctx, reflect.ValueOf(s))
}

// newValueMapper returns the mapper for t. Struct mappers under construction
// are shared through building so recursive types terminate.
func newValueMapper(t reflect.Type, building map[reflect.Type]*structValueMapper) (valueMapper, error) {
	switch t.Kind() {
	case reflect.Bool:
		return &kindMapper{
			checker: BoolChecker,
			load:    func(v Value, rv reflect.Value) { rv.SetBool(must(v.ToBool())) },
			store:   func(ctx *Context, rv reflect.Value) Value { return ctx.MakeBool(rv.Bool()) },
		}, nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return &kindMapper{
			checker: NumberChecker,
			load:    func(v Value, rv reflect.Value) { rv.SetInt(truncInt(must(v.ToNumber()), rv.Type().Bits())) },
			store:   func(ctx *Context, rv reflect.Value) Value { return ctx.MakeNumber(float64(rv.Int())) },
		}, nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return &kindMapper{
			checker: NumberChecker,
			load:    func(v Value, rv reflect.Value) { rv.SetUint(truncUint(must(v.ToNumber()), rv.Type().Bits())) },
			store:   func(ctx *Context, rv reflect.Value) Value { return ctx.MakeNumber(float64(rv.Uint())) },
		}, nil
	case reflect.Float32, reflect.Float64:
		return &kindMapper{
			checker: NumberChecker,
			load:    func(v Value, rv reflect.Value) { rv.SetFloat(must(v.ToNumber())) },
			store:   func(ctx *Context, rv reflect.Value) Value { return ctx.MakeNumber(rv.Float()) },
		}, nil
	case reflect.String:
		return &kindMapper{
			checker: StringChecker,
			load:    func(v Value, rv reflect.Value) { rv.SetString(must(v.toGoString())) },
			store:   func(ctx *Context, rv reflect.Value) Value { return ctx.MakeStringFromUTF8(rv.String()) },
		}, nil
	case reflect.Slice:
		elem, err := newValueMapper(t.Elem(), building)
		if err != nil {
			return nil, err
		}
		return &sliceValueMapper{typ: t, elem: elem}, nil
	case reflect.Struct:
		m, err := newStructValueMapper(t, building)
		if err != nil {
			return nil, err
		}
		return m, nil
	default:
		return nil, fmt.Errorf("jsi: unsupported type %s", t)
	}
}

func newStructValueMapper(t reflect.Type, building map[reflect.Type]*structValueMapper) (*structValueMapper, error) {
	if m, ok := building[t]; ok {
		return m, nil
	}
	m := &structValueMapper{}
	building[t] = m

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)

		// Skip unexported fields
		if !field.IsExported() {
			continue
		}

		name, skip := fieldName(field)
		if skip {
			continue
		}

		fm, err := newValueMapper(field.Type, building)
		if err != nil {
			return nil, fmt.Errorf("jsi: field %s.%s: %w", t.Name(), field.Name, err)
		}
		m.names = append(m.names, name)
		m.index = append(m.index, i)
		m.fields = append(m.fields, fm)
	}
	return m, nil
}

// fieldName returns the property name for a struct field.
func fieldName(field reflect.StructField) (name string, skip bool) {
	if tag := field.Tag.Get("js"); tag != "" {
		if tag == "-" {
			return "", true
		}
		return tag, false
	}
	if tag := field.Tag.Get("json"); tag != "" {
		if tag == "-" {
			return "", true
		}
		// Parse json tag (handle "name,omitempty" format)
		if idx := strings.Index(tag, ","); idx != -1 {
			tag = tag[:idx]
		}
		if tag != "" {
			return tag, false
		}
	}
	return field.Name, false
}

type kindMapper struct {
	checker Checker
	load    func(v Value, rv reflect.Value)
	store   func(ctx *Context, rv reflect.Value) Value
}

func (m *kindMapper) toJS(ctx *Context, rv reflect.Value) Value {
	return m.store(ctx, rv)
}

func (m *kindMapper) fromJS(_ *Context, v Value, rv reflect.Value) {
	m.load(v, rv)
}

func (m *kindMapper) tryFromJS(ctx *Context, v Value, params CheckErrorParams, rv reflect.Value) error {
	if err := m.checker.Check(ctx, v, params); err != nil {
		return err
	}
	m.load(v, rv)
	return nil
}

type structValueMapper struct {
	names  []string
	index  []int
	fields []valueMapper
}

func (m *structValueMapper) toJS(ctx *Context, rv reflect.Value) Value {
	return buildObject(ctx, m.names, func(i int) Value {
		return m.fields[i].toJS(ctx, rv.Field(m.index[i]))
	})
}

func (m *structValueMapper) fromJS(ctx *Context, v Value, rv reflect.Value) {
	mustOK(walkFields(ctx, v, CheckErrorParams{}, m.names, func(i int, pv Value, _ CheckErrorParams) error {
		m.fields[i].fromJS(ctx, pv, rv.Field(m.index[i]))
		return nil
	}))
}

func (m *structValueMapper) tryFromJS(ctx *Context, v Value, params CheckErrorParams, rv reflect.Value) error {
	if err := ObjectChecker.Check(ctx, v, params); err != nil {
		return err
	}
	return walkFields(ctx, v, params, m.names, func(i int, pv Value, fp CheckErrorParams) error {
		return m.fields[i].tryFromJS(ctx, pv, fp, rv.Field(m.index[i]))
	})
}

type sliceValueMapper struct {
	typ  reflect.Type
	elem valueMapper
}

func (m *sliceValueMapper) toJS(ctx *Context, rv reflect.Value) Value {
	arr := ctx.MakeArray()
	for i := 0; i < rv.Len(); i++ {
		ev := m.elem.toJS(ctx, rv.Index(i))
		err := arr.SetIndex(i, ev)
		ev.Free()
		if err != nil {
			panic(fmt.Sprintf("jsi: failed to fill array: %v", err))
		}
	}
	return arr.Value()
}

func (m *sliceValueMapper) fromJS(ctx *Context, v Value, rv reflect.Value) {
	arr := v.asObject()
	n := must(arr.Len())
	out := reflect.MakeSlice(m.typ, 0, min(n, maxPrealloc))
	for i := 0; i < n; i++ {
		ev := must(arr.GetIndex(i))
		item := reflect.New(m.typ.Elem()).Elem()
		m.elem.fromJS(ctx, ev, item)
		ev.Free()
		out = reflect.Append(out, item)
	}
	rv.Set(out)
}

func (m *sliceValueMapper) tryFromJS(ctx *Context, v Value, params CheckErrorParams, rv reflect.Value) error {
	if err := ArrayChecker.Check(ctx, v, params); err != nil {
		return err
	}
	arr := v.asObject()
	n, err := arr.Len()
	if err != nil {
		return err
	}
	out := reflect.MakeSlice(m.typ, 0, min(n, maxPrealloc))
	for i := 0; i < n; i++ {
		ev, err := arr.GetIndex(i)
		if err != nil {
			return err
		}
		ep := params
		ep.Name = fmt.Sprintf("%s[%d]", params.Name, i)
		item := reflect.New(m.typ.Elem()).Elem()
		err = m.elem.tryFromJS(ctx, ev, ep, item)
		ev.Free()
		if err != nil {
			return err
		}
		out = reflect.Append(out, item)
	}
	rv.Set(out)
	return nil
}
