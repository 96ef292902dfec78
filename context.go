package jsi

/*
#include "bridge.h"
*/
import "C"
import (
	"runtime"
	"unsafe"

	"go.uber.org/zap"
)

// Context drives one QuickJS runtime and its single realm. It is the only
// factory for handles and must be used from the goroutine that created it.
type Context struct {
	runtime *C.JSRuntime
	ref     *C.JSContext
	logger  *zap.Logger

	// handles that still own an engine reference
	live map[*pointer]struct{}
	// Go values addressed from opaque slots
	handles *handleStore

	functionClassID C.JSClassID
	finalizers      map[C.JSClassID]ClassFinalizer
	instances       map[uintptr]C.JSClassID

	closed bool
}

// NewContext creates a runtime and a context on it. The calling goroutine is
// locked to its OS thread until Close.
func NewContext(opts ...Option) *Context {
	o := newOptions(opts)

	runtime.LockOSThread()
	rt := C.JS_NewRuntime()
	o.apply(rt)

	ctx := &Context{
		runtime:    rt,
		ref:        C.JS_NewContext(rt),
		logger:     o.logger,
		live:       make(map[*pointer]struct{}),
		handles:    newHandleStore(),
		finalizers: make(map[C.JSClassID]ClassFinalizer),
		instances:  make(map[uintptr]C.JSClassID),
	}
	registerContext(rt, ctx)

	ctx.functionClassID = ctx.newClassID()
	C.NewNativeFunctionClass(rt, ctx.functionClassID)
	ctx.inheritFunctionPrototype()

	ctx.logger.Debug("context created")
	return ctx
}

// Close releases every handle still owned by the caller, then frees the
// context and the runtime. Pending finalizers run during Close.
func (ctx *Context) Close() {
	if ctx.closed {
		return
	}
	ctx.closed = true

	released := 0
	for len(ctx.live) > 0 {
		for p := range ctx.live {
			p.free()
			released++
		}
	}

	C.JS_FreeContext(ctx.ref)
	C.JS_FreeRuntime(ctx.runtime)
	unregisterContext(ctx.runtime)

	ctx.handles.Clear()
	ctx.finalizers = make(map[C.JSClassID]ClassFinalizer)
	ctx.instances = make(map[uintptr]C.JSClassID)

	runtime.UnlockOSThread()
	ctx.logger.Debug("context closed", zap.Int("released", released))
}

// inheritFunctionPrototype makes native functions share Function.prototype,
// so call, apply and bind work on them.
func (ctx *Context) inheritFunctionPrototype() {
	global := C.JS_GetGlobalObject(ctx.ref)
	defer C.JS_FreeValue(ctx.ref, global)
	name := C.CString("Function")
	defer C.free(unsafe.Pointer(name))
	ctor := C.JS_GetPropertyStr(ctx.ref, global, name)
	defer C.JS_FreeValue(ctx.ref, ctor)
	proto := C.CString("prototype")
	defer C.free(unsafe.Pointer(proto))
	C.JS_SetClassProto(ctx.ref, ctx.functionClassID, C.JS_GetPropertyStr(ctx.ref, ctor, proto))
}

// Eval evaluates source as a global script and returns its completion value.
// A thrown exception is returned as *Error and the context stays usable.
func (ctx *Context) Eval(source, sourceURL string) (Value, error) {
	csrc := C.CString(source)
	defer C.free(unsafe.Pointer(csrc))
	curl := C.CString(sourceURL)
	defer C.free(unsafe.Pointer(curl))

	ref := C.JS_Eval(ctx.ref, csrc, C.size_t(len(source)), curl, C.JS_EVAL_TYPE_GLOBAL)
	if C.JS_IsException(ref) != 0 {
		return Value{}, ctx.exception()
	}
	return Value{ptr: ctx.wrap(ref)}, nil
}

// MakeNull returns a null value.
func (ctx *Context) MakeNull() Value {
	return Value{ptr: ctx.wrap(C.ValueNull())}
}

// MakeUndefined returns an undefined value.
func (ctx *Context) MakeUndefined() Value {
	return Value{ptr: ctx.wrap(C.ValueUndefined())}
}

// MakeBool returns a boolean value.
func (ctx *Context) MakeBool(b bool) Value {
	v := C.int(0)
	if b {
		v = 1
	}
	return Value{ptr: ctx.wrap(C.NewBool(ctx.ref, v))}
}

// MakeNumber returns a number value.
func (ctx *Context) MakeNumber(n float64) Value {
	return Value{ptr: ctx.wrap(C.JS_NewFloat64(ctx.ref, C.double(n)))}
}

// MakeString converts a host string into an engine string value.
func (ctx *Context) MakeString(s JSString) Value {
	return ctx.MakeStringFromUTF8(s.UTF8())
}

// MakeStringFromUTF8 returns a string value with given text.
func (ctx *Context) MakeStringFromUTF8(s string) Value {
	return Value{ptr: ctx.wrap(ctx.newString(s))}
}

func (ctx *Context) newString(s string) C.JSValue {
	cs := C.CString(s)
	defer C.free(unsafe.Pointer(cs))
	return C.JS_NewStringLen(ctx.ref, cs, C.size_t(len(s)))
}

// MakeError returns a new Error object with given message.
func (ctx *Context) MakeError(message string) Value {
	cs := C.CString(message)
	defer C.free(unsafe.Pointer(cs))
	return Value{ptr: ctx.wrap(C.NewErrorWithMessage(ctx.ref, cs, C.size_t(len(message))))}
}

// GlobalObject returns the global object of the context.
func (ctx *Context) GlobalObject() Object {
	return Object{ptr: ctx.wrap(C.JS_GetGlobalObject(ctx.ref))}
}

// RunGC runs the engine's cycle collector.
func (ctx *Context) RunGC() {
	C.JS_RunGC(ctx.runtime)
}

// ExecutePendingJobs runs queued promise jobs until the queue is empty.
// It stops at the first job that throws.
func (ctx *Context) ExecutePendingJobs() error {
	for {
		var pctx *C.JSContext
		switch r := C.JS_ExecutePendingJob(ctx.runtime, &pctx); {
		case r == 0:
			return nil
		case r < 0:
			return ctx.exception()
		}
	}
}

// exception drains the pending exception into an *Error.
func (ctx *Context) exception() *Error {
	return newError(Value{ptr: ctx.wrap(C.JS_GetException(ctx.ref))})
}
