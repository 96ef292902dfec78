package jsi

/*
#include "bridge.h"
*/
import "C"
import "unsafe"

// atom is an interned property name. Atoms are only used for the length of a
// single engine call and are freed right after.
type atom struct {
	ctx *Context
	ref C.JSAtom
}

func (ctx *Context) newAtom(name string) atom {
	cs := C.CString(name)
	defer C.free(unsafe.Pointer(cs))
	return atom{ctx: ctx, ref: C.JS_NewAtomLen(ctx.ref, cs, C.size_t(len(name)))}
}

func (a atom) free() {
	C.JS_FreeAtom(a.ctx.ref, a.ref)
}

// String returns the string representation of the atom.
func (a atom) String() string {
	ptr := C.JS_AtomToCString(a.ctx.ref, a.ref)
	if ptr == nil {
		return ""
	}
	defer C.JS_FreeCString(a.ctx.ref, ptr)
	return C.GoString(ptr)
}
