package jsi

/*
#include "bridge.h"
*/
import "C"
import (
	"errors"
	"strconv"
)

// Len
//
//	@Description: read the length property as an integer
//	@receiver o :
//	@return int
func (o Object) Len() (int, error) {
	v, err := o.Get("length")
	if err != nil {
		return 0, err
	}
	defer v.Free()
	n, err := v.ToNumber()
	if err != nil {
		return 0, err
	}
	return int(truncInt(n, strconv.IntSize)), nil
}

// GetIndex
//
//	@Description: get the element at index
//	@receiver o :
//	@param index :
//	@return Value
func (o Object) GetIndex(index int) (Value, error) {
	if index < 0 {
		return Value{}, errors.New("jsi: the input index value is a negative number")
	}
	ctx := o.ptr.ctx
	ref := C.JS_GetPropertyUint32(ctx.ref, o.ref(), C.uint32_t(index))
	if C.JS_IsException(ref) != 0 {
		return Value{}, ctx.exception()
	}
	return Value{ptr: ctx.wrap(ref)}, nil
}

// SetIndex
//
//	@Description: set the element at index; the caller keeps ownership of val
//	@receiver o :
//	@param index :
//	@param val :
func (o Object) SetIndex(index int, val Value) error {
	if index < 0 {
		return errors.New("jsi: the input index value is a negative number")
	}
	ctx := o.ptr.ctx
	if C.JS_SetPropertyUint32(ctx.ref, o.ref(), C.uint32_t(index), C.JS_DupValue(ctx.ref, val.ref())) < 0 {
		return ctx.exception()
	}
	return nil
}

// Push
//
//	@Description: add one or more elements after the array
//	@receiver o :
//	@param elements :
func (o Object) Push(elements ...Value) error {
	push, err := o.Get("push")
	if err != nil {
		return err
	}
	defer push.Free()
	if push.Type() != TypeObject || !push.asObject().IsFunction() {
		return errors.New("jsi: object has no push method")
	}
	this := o.Value()
	ret, err := push.asObject().Call(&this, elements...)
	if err != nil {
		return err
	}
	ret.Free()
	return nil
}
