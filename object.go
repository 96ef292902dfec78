package jsi

/*
#include "bridge.h"
*/
import "C"
import (
	"errors"
	"unsafe"
)

// ErrNotClassInstance is returned when private data is attached to an object
// that was not created from a Class.
var ErrNotClassInstance = errors.New("jsi: object is not a class instance")

// Object is a handle to an object value, including functions and arrays.
type Object struct {
	ptr *pointer
}

func (o Object) ref() C.JSValue {
	return o.ptr.value().ref
}

// Context returns the context that produced the object.
func (o Object) Context() *Context {
	return o.ptr.ctx
}

// Value returns the object as a Value sharing the same handle.
// Free only one of them, or Clone first.
func (o Object) Value() Value {
	return Value{ptr: o.ptr}
}

// Clone returns an independent handle to the same object.
func (o Object) Clone() Object {
	return Object{ptr: o.ptr.clone()}
}

// Free releases the handle. Calling Free more than once is a no-op.
func (o Object) Free() {
	o.ptr.free()
}

// MakeObject creates an empty object. With a class, the object is an
// instance of it: it gets the class prototype and its finalizer.
func (ctx *Context) MakeObject(cls *Class) Object {
	if cls == nil {
		return Object{ptr: ctx.wrap(C.JS_NewObject(ctx.ref))}
	}
	c := cls.ptr.class()
	if cls.ptr.ctx != ctx {
		panic("jsi: class " + c.name + " belongs to another context")
	}
	ref := C.JS_NewObjectClass(ctx.ref, C.int(c.id))
	ctx.instances[instanceKey(ref)] = c.id
	return Object{ptr: ctx.wrap(ref)}
}

// MakeArray creates an empty array.
func (ctx *Context) MakeArray() Object {
	return Object{ptr: ctx.wrap(C.JS_NewArray(ctx.ref))}
}

// Has reports whether the object or its prototype chain has the property.
// It fails when a proxy trap throws.
func (o Object) Has(name string) (bool, error) {
	ctx := o.ptr.ctx
	a := ctx.newAtom(name)
	defer a.free()
	r := C.JS_HasProperty(ctx.ref, o.ref(), a.ref)
	if r < 0 {
		return false, ctx.exception()
	}
	return r != 0, nil
}

// Get returns the value of the property, running getters.
func (o Object) Get(name string) (Value, error) {
	ctx := o.ptr.ctx
	cs := C.CString(name)
	defer C.free(unsafe.Pointer(cs))
	ref := C.JS_GetPropertyStr(ctx.ref, o.ref(), cs)
	if C.JS_IsException(ref) != 0 {
		return Value{}, ctx.exception()
	}
	return Value{ptr: ctx.wrap(ref)}, nil
}

// Set assigns the property, running setters. The caller keeps ownership of val.
func (o Object) Set(name string, val Value) error {
	ctx := o.ptr.ctx
	cs := C.CString(name)
	defer C.free(unsafe.Pointer(cs))
	if C.JS_SetPropertyStr(ctx.ref, o.ref(), cs, C.JS_DupValue(ctx.ref, val.ref())) < 0 {
		return ctx.exception()
	}
	return nil
}

// Delete removes the property.
func (o Object) Delete(name string) error {
	ctx := o.ptr.ctx
	a := ctx.newAtom(name)
	defer a.free()
	if C.JS_DeleteProperty(ctx.ref, o.ref(), a.ref, C.JS_PROP_THROW) < 0 {
		return ctx.exception()
	}
	return nil
}

// Call calls the object as a function. A nil this means null.
func (o Object) Call(this *Value, args ...Value) (Value, error) {
	ctx := o.ptr.ctx
	thisRef := C.ValueNull()
	if this != nil {
		thisRef = this.ref()
	}
	argv := refs(args)
	ref := C.JS_Call(ctx.ref, o.ref(), thisRef, C.int(len(argv)), argvPtr(argv))
	if C.JS_IsException(ref) != 0 {
		return Value{}, ctx.exception()
	}
	return Value{ptr: ctx.wrap(ref)}, nil
}

// CallAsConstructor calls the object with new.
func (o Object) CallAsConstructor(args ...Value) (Object, error) {
	ctx := o.ptr.ctx
	argv := refs(args)
	ref := C.JS_CallConstructor(ctx.ref, o.ref(), C.int(len(argv)), argvPtr(argv))
	if C.JS_IsException(ref) != 0 {
		return Object{}, ctx.exception()
	}
	return Object{ptr: ctx.wrap(ref)}, nil
}

// IsFunction reports whether the object is callable.
func (o Object) IsFunction() bool {
	return C.JS_IsFunction(o.ptr.ctx.ref, o.ref()) != 0
}

// IsConstructor reports whether the object can be called with new.
func (o Object) IsConstructor() bool {
	return C.JS_IsConstructor(o.ptr.ctx.ref, o.ref()) != 0
}

// IsArray reports whether the object is an array.
func (o Object) IsArray() bool {
	return C.JS_IsArray(o.ptr.ctx.ref, o.ref()) > 0
}

// Prototype returns the prototype of the object, null at the end of the chain.
func (o Object) Prototype() (Value, error) {
	ctx := o.ptr.ctx
	ref := C.GetPrototype(ctx.ref, o.ref())
	if C.JS_IsException(ref) != 0 {
		return Value{}, ctx.exception()
	}
	return Value{ptr: ctx.wrap(ref)}, nil
}

// SetPrototype replaces the prototype of the object.
func (o Object) SetPrototype(proto Value) error {
	ctx := o.ptr.ctx
	if C.JS_SetPrototype(ctx.ref, o.ref(), proto.ref()) < 0 {
		return ctx.exception()
	}
	return nil
}

// PropertyNames returns the own enumerable string keys of the object.
func (o Object) PropertyNames() ([]string, error) {
	ctx := o.ptr.ctx
	var (
		tab *C.JSPropertyEnum
		n   C.uint32_t
	)
	if C.JS_GetOwnPropertyNames(ctx.ref, &tab, &n, o.ref(), C.JS_GPN_STRING_MASK|C.JS_GPN_ENUM_ONLY) < 0 {
		return nil, ctx.exception()
	}
	defer C.js_free(ctx.ref, unsafe.Pointer(tab))

	entries := unsafe.Slice(tab, int(n))
	names := make([]string, 0, len(entries))
	for i := range entries {
		a := atom{ctx: ctx, ref: entries[i].atom}
		names = append(names, a.String())
		a.free()
	}
	return names, nil
}

// SetPrivateData attaches a Go value to a class instance, replacing and
// releasing any previous one. A nil value clears it.
func (o Object) SetPrivateData(data any) error {
	ctx := o.ptr.ctx
	classID, ok := o.classID()
	if !ok {
		return ErrNotClassInstance
	}
	ref := o.ref()
	if prev := uintptr(C.GetOpaqueID(ref, classID)); prev != 0 {
		ctx.handles.Delete(prev)
	}
	var id uintptr
	if data != nil {
		id = ctx.handles.Store(data)
	}
	C.SetOpaqueID(ref, C.uintptr_t(id))
	return nil
}

// PrivateData returns the Go value attached to a class instance, or nil.
func (o Object) PrivateData() any {
	classID, ok := o.classID()
	if !ok {
		return nil
	}
	id := uintptr(C.GetOpaqueID(o.ref(), classID))
	if id == 0 {
		return nil
	}
	data, _ := o.ptr.ctx.handles.Load(id)
	return data
}

// classID returns the class of a registered instance. An instance being
// finalized is no longer registered but still knows its class.
func (o Object) classID() (C.JSClassID, bool) {
	nv := o.ptr.value()
	if nv.finalizing {
		return nv.classID, nv.classID != 0
	}
	id, ok := o.ptr.ctx.instances[instanceKey(nv.ref)]
	return id, ok
}

// stringProperty returns the string form of a property, or an empty string
// when it is missing or reading it throws.
func (o Object) stringProperty(name string) string {
	v, err := o.Get(name)
	if err != nil {
		err.(*Error).Value.Free()
		return ""
	}
	defer v.Free()
	if v.IsUndefined() {
		return ""
	}
	return v.String()
}

func refs(vals []Value) []C.JSValue {
	out := make([]C.JSValue, len(vals))
	for i, v := range vals {
		out[i] = v.ref()
	}
	return out
}

func argvPtr(argv []C.JSValue) *C.JSValue {
	if len(argv) == 0 {
		return nil
	}
	return &argv[0]
}

// key returns the identity of the object inside its runtime.
func (o Object) key() uintptr {
	return instanceKey(o.ref())
}
