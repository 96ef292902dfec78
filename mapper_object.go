package jsi

// ObjectMapper maps Go objects to instances of a class. Each *T is attached
// to its instance as private data, and the same *T maps to the same instance
// for as long as the instance is alive.
type ObjectMapper[T any] struct {
	typeName string
	class    Class
	objects  map[*T]uintptr
}

// NewObjectMapper registers a class from def whose instances wrap *T.
// def.Finalizer, if set, still runs when an instance is destroyed.
func NewObjectMapper[T any](ctx *Context, def ClassDefinition) (*ObjectMapper[T], error) {
	m := &ObjectMapper[T]{
		typeName: def.Name,
		objects:  make(map[*T]uintptr),
	}

	finalizer := def.Finalizer
	def.Finalizer = func(obj Object) {
		if p, ok := obj.PrivateData().(*T); ok {
			delete(m.objects, p)
		}
		if finalizer != nil {
			finalizer(obj)
		}
	}

	cls, err := ctx.MakeClass(def)
	if err != nil {
		return nil, err
	}
	m.class = cls
	return m, nil
}

// Class returns the class backing the mapper.
func (m *ObjectMapper[T]) Class() Class {
	return m.class
}

// FromJS returns the Go object wrapped by v, or nil when v is not an instance
// of the mapper's class.
func (m *ObjectMapper[T]) FromJS(_ *Context, v Value) *T {
	if v.Type() != TypeObject {
		return nil
	}
	obj := v.asObject()
	if id, ok := obj.classID(); !ok || id != m.class.ptr.class().id {
		return nil
	}
	p, _ := obj.PrivateData().(*T)
	return p
}

// TryFromJS is FromJS failing with a *CheckError instead of returning nil.
func (m *ObjectMapper[T]) TryFromJS(ctx *Context, v Value, params CheckErrorParams) (*T, error) {
	p := m.FromJS(ctx, v)
	if p == nil {
		return nil, &CheckError{CheckErrorParams: params, Expected: m.typeName}
	}
	return p, nil
}

// ToJS returns the instance wrapping p, creating it on first use. A nil p
// maps to null.
func (m *ObjectMapper[T]) ToJS(ctx *Context, p *T) Value {
	if p == nil {
		return ctx.MakeNull()
	}
	if key, ok := m.objects[p]; ok {
		if obj, ok := ctx.instanceFromKey(key); ok {
			return obj.Value()
		}
		delete(m.objects, p)
	}

	obj := ctx.MakeObject(&m.class)
	if err := obj.SetPrivateData(p); err != nil {
		panic(err)
	}
	m.objects[p] = obj.key()
	return obj.Value()
}
