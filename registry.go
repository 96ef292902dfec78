package jsi

/*
#include "bridge.h"
*/
import "C"
import (
	"sync"
	"unsafe"
)

// contexts maps a runtime to the Context driving it, so callbacks that only
// receive engine pointers can find their way back.
var contexts sync.Map // map[uintptr]*Context

// classIDMu serializes class id allocation; older engine releases allocate
// from a process-wide counter.
var classIDMu sync.Mutex

func runtimeKey(rt *C.JSRuntime) uintptr {
	return uintptr(unsafe.Pointer(rt))
}

func registerContext(rt *C.JSRuntime, ctx *Context) {
	contexts.Store(runtimeKey(rt), ctx)
}

func unregisterContext(rt *C.JSRuntime) {
	contexts.Delete(runtimeKey(rt))
}

func contextFor(rt *C.JSRuntime) *Context {
	if v, ok := contexts.Load(runtimeKey(rt)); ok {
		return v.(*Context)
	}
	return nil
}

func (ctx *Context) newClassID() C.JSClassID {
	classIDMu.Lock()
	defer classIDMu.Unlock()
	return C.NewClassID(ctx.runtime)
}

// instanceKey is the identity of a heap object inside its runtime.
func instanceKey(ref C.JSValue) uintptr {
	return uintptr(C.ValueKey(ref))
}
