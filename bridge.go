package jsi

/*
#include "bridge.h"
*/
import "C"
import (
	"errors"
	"fmt"
	"unsafe"

	"go.uber.org/zap"
)

// Function is a Go function callable from script. this and args are borrowed
// for the duration of the call; Clone any handle that must outlive it. The
// returned Value is consumed by the caller. A returned error is thrown into
// script: an *Error rethrows its value, other errors become an Error with the
// same message, and a *CheckError becomes a TypeError.
type Function func(ctx *Context, this Value, args []Value) (Value, error)

// MakeFunction creates a callable object backed by fn.
func (ctx *Context) MakeFunction(fn Function) Object {
	id := ctx.handles.Store(fn)
	ref := C.JS_NewObjectClass(ctx.ref, C.int(ctx.functionClassID))
	C.SetOpaqueID(ref, C.uintptr_t(id))
	return Object{ptr: ctx.wrap(ref)}
}

//export goNativeFunctionCall
func goNativeFunctionCall(cctx *C.JSContext, funcObj C.JSValue, thisVal C.JSValue, argc C.int, argv *C.JSValue, flags C.int) C.JSValue {
	ctx := contextFor(C.JS_GetRuntime(cctx))
	if ctx == nil {
		return throwInternal(cctx, "jsi: native function called on an unknown runtime")
	}

	id := uintptr(C.GetOpaqueID(funcObj, ctx.functionClassID))
	stored, ok := ctx.handles.Load(id)
	if !ok {
		return throwInternal(cctx, "jsi: native function has been released")
	}
	fn := stored.(Function)

	this := Value{ptr: ctx.wrapDup(thisVal)}
	var raw []C.JSValue
	if argc > 0 {
		raw = unsafe.Slice(argv, int(argc))
	}
	args := make([]Value, len(raw))
	for i := range raw {
		args[i] = Value{ptr: ctx.wrapDup(raw[i])}
	}
	defer func() {
		this.Free()
		for _, a := range args {
			a.Free()
		}
	}()

	return ctx.invoke(fn, this, args)
}

func (ctx *Context) invoke(fn Function, this Value, args []Value) (ret C.JSValue) {
	defer func() {
		if r := recover(); r != nil {
			ctx.logger.Error("native function panicked", zap.Any("panic", r))
			ret = throwInternal(ctx.ref, fmt.Sprint(r))
		}
	}()

	res, err := fn(ctx, this, args)
	if err != nil {
		res.Free()
		ctx.logger.Debug("native function returned error", zap.Error(err))
		return ctx.throw(err)
	}
	if res.ptr == nil {
		return C.ValueUndefined()
	}
	ret = C.JS_DupValue(ctx.ref, res.ref())
	res.Free()
	return ret
}

// throw raises err in script and returns the exception marker.
func (ctx *Context) throw(err error) C.JSValue {
	var jsErr *Error
	if errors.As(err, &jsErr) && jsErr.Value.ptr != nil && !jsErr.Value.ptr.freed && jsErr.Value.ptr.ctx == ctx {
		ref := C.JS_DupValue(ctx.ref, jsErr.Value.ref())
		jsErr.Value.Free()
		return C.JS_Throw(ctx.ref, ref)
	}

	msg := C.CString(err.Error())
	defer C.free(unsafe.Pointer(msg))

	var checkErr *CheckError
	if errors.As(err, &checkErr) {
		return C.ThrowTypeError(ctx.ref, msg)
	}
	return C.JS_Throw(ctx.ref, C.NewErrorWithMessage(ctx.ref, msg, C.size_t(len(err.Error()))))
}

func throwInternal(cctx *C.JSContext, msg string) C.JSValue {
	cs := C.CString(msg)
	defer C.free(unsafe.Pointer(cs))
	return C.ThrowInternalError(cctx, cs)
}

//export goNativeFunctionFinalizer
func goNativeFunctionFinalizer(rt *C.JSRuntime, val C.JSValue) {
	ctx := contextFor(rt)
	if ctx == nil {
		return
	}
	if id := uintptr(C.GetOpaqueID(val, ctx.functionClassID)); id != 0 {
		ctx.handles.Delete(id)
	}
}

//export goClassFinalizer
func goClassFinalizer(rt *C.JSRuntime, val C.JSValue) {
	ctx := contextFor(rt)
	if ctx == nil {
		return
	}
	ctx.finalizeInstance(val)
}
