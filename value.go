package jsi

/*
#include "bridge.h"
*/
import "C"
import (
	"unsafe"
)

// ValueType classifies a value. Objects, functions and arrays share TypeObject.
type ValueType int

const (
	TypeUnknown ValueType = iota
	TypeNull
	TypeUndefined
	TypeBool
	TypeNumber
	TypeString
	TypeObject
)

func (t ValueType) String() string {
	switch t {
	case TypeNull:
		return "null"
	case TypeUndefined:
		return "undefined"
	case TypeBool:
		return "boolean"
	case TypeNumber:
		return "number"
	case TypeString:
		return "string"
	case TypeObject:
		return "object"
	default:
		return "unknown"
	}
}

// Value is a handle to any engine value. Copying a Value does not duplicate
// the reference; use Clone for that. The zero Value is invalid.
type Value struct {
	ptr *pointer
}

func (v Value) ref() C.JSValue {
	return v.ptr.value().ref
}

// Context returns the context that produced the value.
func (v Value) Context() *Context {
	return v.ptr.ctx
}

// Clone returns an independent handle to the same value.
func (v Value) Clone() Value {
	return Value{ptr: v.ptr.clone()}
}

// Free releases the handle. Calling Free more than once is a no-op.
func (v Value) Free() {
	v.ptr.free()
}

// Type returns the classification of the value.
func (v Value) Type() ValueType {
	r := v.ref()
	switch {
	case C.JS_IsNull(r) != 0:
		return TypeNull
	case C.JS_IsUndefined(r) != 0:
		return TypeUndefined
	case C.JS_IsBool(r) != 0:
		return TypeBool
	case C.JS_IsNumber(r) != 0:
		return TypeNumber
	case C.JS_IsString(r) != 0:
		return TypeString
	case C.JS_IsObject(r) != 0:
		return TypeObject
	default:
		return TypeUnknown
	}
}

// ToBool converts the value with script truthiness rules.
func (v Value) ToBool() (bool, error) {
	ctx := v.ptr.ctx
	r := C.JS_ToBool(ctx.ref, v.ref())
	if r < 0 {
		return false, ctx.exception()
	}
	return r != 0, nil
}

// ToNumber converts the value to a number. Conversion of objects may run
// script (valueOf) and fail.
func (v Value) ToNumber() (float64, error) {
	ctx := v.ptr.ctx
	var n C.double
	if C.JS_ToFloat64(ctx.ref, &n, v.ref()) < 0 {
		return 0, ctx.exception()
	}
	return float64(n), nil
}

// ToString converts the value to a host string. Conversion of objects may run
// script (toString) and fail.
func (v Value) ToString() (JSString, error) {
	s, err := v.toGoString()
	if err != nil {
		return JSString{}, err
	}
	return v.ptr.ctx.StringFromUTF8(s), nil
}

func (v Value) toGoString() (string, error) {
	ctx := v.ptr.ctx
	var n C.size_t
	cs := C.JS_ToCStringLen(ctx.ref, &n, v.ref())
	if cs == nil {
		return "", ctx.exception()
	}
	defer C.JS_FreeCString(ctx.ref, cs)
	return C.GoStringN(cs, C.int(n)), nil
}

// String returns the string form of the value, or an empty string when the
// conversion throws. It implements fmt.Stringer.
func (v Value) String() string {
	if v.ptr == nil {
		return "<nil>"
	}
	s, err := v.toGoString()
	if err != nil {
		if e, ok := err.(*Error); ok {
			e.Value.Free()
		}
		return ""
	}
	return s
}

// ToObject returns a new object handle for the value. Objects are returned
// as is, other primitives are boxed; null and undefined fail with a TypeError.
func (v Value) ToObject() (Object, error) {
	ctx := v.ptr.ctx
	switch v.Type() {
	case TypeObject:
		return Object{ptr: v.ptr.clone()}, nil
	case TypeNull, TypeUndefined:
		cs := C.CString("Cannot convert undefined or null to object")
		defer C.free(unsafe.Pointer(cs))
		C.ThrowTypeError(ctx.ref, cs)
		return Object{}, ctx.exception()
	}

	global := ctx.GlobalObject()
	defer global.Free()
	ctor, err := global.Get("Object")
	if err != nil {
		return Object{}, err
	}
	defer ctor.Free()
	boxed, err := ctor.asObject().Call(nil, v)
	if err != nil {
		return Object{}, err
	}
	return Object{ptr: boxed.ptr}, nil
}

// asObject views an object value as an Object sharing the same handle.
// The view must not be freed separately.
func (v Value) asObject() Object {
	return Object{ptr: v.ptr}
}

// StrictEqual compares two values with the === operator.
func (v Value) StrictEqual(other Value) bool {
	t := v.Type()
	if t != other.Type() {
		return false
	}
	switch t {
	case TypeNull, TypeUndefined:
		return true
	case TypeBool:
		a, _ := v.ToBool()
		b, _ := other.ToBool()
		return a == b
	case TypeNumber:
		a, _ := v.ToNumber()
		b, _ := other.ToNumber()
		return a == b
	case TypeString:
		a, _ := v.toGoString()
		b, _ := other.toGoString()
		return a == b
	default:
		a, b := v.ref(), other.ref()
		return C.ValueTag(a) == C.ValueTag(b) && C.ValueKey(a) == C.ValueKey(b)
	}
}

// IsError reports whether the value is an Error object.
func (v Value) IsError() bool {
	return C.JS_IsError(v.ptr.ctx.ref, v.ref()) != 0
}

// IsNull reports whether the value is null.
func (v Value) IsNull() bool {
	return v.Type() == TypeNull
}

// IsUndefined reports whether the value is undefined.
func (v Value) IsUndefined() bool {
	return v.Type() == TypeUndefined
}

// IsObject reports whether the value is an object, function or array.
func (v Value) IsObject() bool {
	return v.Type() == TypeObject
}
