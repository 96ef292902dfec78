package jsi

// Field maps one property of a script object to one field of S.
type Field[S any] interface {
	Name() string
	toJS(ctx *Context, s *S) Value
	fromJS(ctx *Context, v Value, s *S)
	tryFromJS(ctx *Context, v Value, params CheckErrorParams, s *S) error
}

type mappedField[S, F any] struct {
	name   string
	field  func(*S) *F
	mapper Mapper[F]
}

// MapField binds property name to the field of S selected by field, converted
// with m.
//
//	type Point struct{ X, Y float64 }
//	mapper := StructMapper(
//		MapField("x", func(p *Point) *float64 { return &p.X }, NumberMapper),
//		MapField("y", func(p *Point) *float64 { return &p.Y }, NumberMapper),
//	)
func MapField[S, F any](name string, field func(*S) *F, m Mapper[F]) Field[S] {
	return &mappedField[S, F]{name: name, field: field, mapper: m}
}

func (f *mappedField[S, F]) Name() string { return f.name }

func (f *mappedField[S, F]) toJS(ctx *Context, s *S) Value {
	return f.mapper.ToJS(ctx, *f.field(s))
}

func (f *mappedField[S, F]) fromJS(ctx *Context, v Value, s *S) {
	*f.field(s) = f.mapper.FromJS(ctx, v)
}

func (f *mappedField[S, F]) tryFromJS(ctx *Context, v Value, params CheckErrorParams, s *S) error {
	got, err := f.mapper.TryFromJS(ctx, v, params)
	if err != nil {
		return err
	}
	*f.field(s) = got
	return nil
}

type structMapper[S any] struct {
	fields []Field[S]
	names  []string
}

// StructMapper maps plain objects to S, one property per field in order.
// Nested structs compose: a field mapped with another StructMapper reports
// failures under name.field.inner.
func StructMapper[S any](fields ...Field[S]) Mapper[S] {
	names := make([]string, len(fields))
	for i, f := range fields {
		names[i] = f.Name()
	}
	return &structMapper[S]{fields: fields, names: names}
}

func (m *structMapper[S]) FromJS(ctx *Context, v Value) S {
	var s S
	err := walkFields(ctx, v, CheckErrorParams{}, m.names, func(i int, pv Value, _ CheckErrorParams) error {
		m.fields[i].fromJS(ctx, pv, &s)
		return nil
	})
	mustOK(err)
	return s
}

func (m *structMapper[S]) TryFromJS(ctx *Context, v Value, params CheckErrorParams) (S, error) {
	var s S
	if err := ObjectChecker.Check(ctx, v, params); err != nil {
		return s, err
	}
	err := walkFields(ctx, v, params, m.names, func(i int, pv Value, fp CheckErrorParams) error {
		return m.fields[i].tryFromJS(ctx, pv, fp, &s)
	})
	if err != nil {
		var zero S
		return zero, err
	}
	return s, nil
}

func (m *structMapper[S]) ToJS(ctx *Context, s S) Value {
	return buildObject(ctx, m.names, func(i int) Value {
		return m.fields[i].toJS(ctx, &s)
	})
}

// walkFields reads each named property of v in order, substituting undefined
// when it is absent, and hands it to fn with params extended by ".name".
// The first error stops the walk.
func walkFields(ctx *Context, v Value, params CheckErrorParams, names []string, fn func(i int, pv Value, fp CheckErrorParams) error) error {
	obj := v.asObject()
	for i, name := range names {
		has, err := obj.Has(name)
		if err != nil {
			return err
		}
		var pv Value
		if has {
			got, err := obj.Get(name)
			if err != nil {
				return err
			}
			pv = got
		} else {
			pv = ctx.MakeUndefined()
		}

		fp := params
		fp.Name = params.Name + "." + name
		err = fn(i, pv, fp)
		pv.Free()
		if err != nil {
			return err
		}
	}
	return nil
}

// buildObject creates a plain object with one property per name.
func buildObject(ctx *Context, names []string, value func(i int) Value) Value {
	obj := ctx.MakeObject(nil)
	for i, name := range names {
		pv := value(i)
		err := obj.Set(name, pv)
		pv.Free()
		if err != nil {
			panic("jsi: failed to set property " + name + ": " + err.Error())
		}
	}
	return obj.Value()
}
