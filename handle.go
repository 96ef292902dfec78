package jsi

/*
#include "bridge.h"
*/
import "C"
import "fmt"

// pointerData is the payload behind a handle. Engine values hold a reference
// that must be duplicated and released; strings and classes are plain data.
type pointerData interface {
	clone(ctx *Context) pointerData
	release(ctx *Context)
}

// nativeValue holds one counted reference to an engine value.
// A finalizing value belongs to an object the engine is already destroying,
// so it is neither duplicated nor released.
type nativeValue struct {
	ref        C.JSValue
	finalizing bool
	// class of the instance being finalized, known only while finalizing
	classID C.JSClassID
}

func (v *nativeValue) clone(ctx *Context) pointerData {
	if v.finalizing {
		return &nativeValue{ref: v.ref, finalizing: true, classID: v.classID}
	}
	return &nativeValue{ref: C.JS_DupValue(ctx.ref, v.ref)}
}

func (v *nativeValue) release(ctx *Context) {
	if v.finalizing {
		return
	}
	C.JS_FreeValue(ctx.ref, v.ref)
}

// nativeString is text owned by Go, converted when it crosses into the engine.
type nativeString struct {
	str string
}

func (s *nativeString) clone(*Context) pointerData { return &nativeString{str: s.str} }

func (s *nativeString) release(*Context) {}

// nativeClass is a registered class id. Ids live as long as the runtime.
type nativeClass struct {
	id   C.JSClassID
	name string
}

func (c *nativeClass) clone(*Context) pointerData { return &nativeClass{id: c.id, name: c.name} }

func (c *nativeClass) release(*Context) {}

// pointer binds a payload to the Context that produced it.
type pointer struct {
	ctx   *Context
	data  pointerData
	freed bool
}

// newPointer wraps data and records it in the live set when it owns a reference.
func (ctx *Context) newPointer(data pointerData) *pointer {
	p := &pointer{ctx: ctx, data: data}
	if nv, ok := data.(*nativeValue); ok && !nv.finalizing {
		ctx.live[p] = struct{}{}
	}
	return p
}

// wrap takes ownership of an engine reference.
func (ctx *Context) wrap(ref C.JSValue) *pointer {
	return ctx.newPointer(&nativeValue{ref: ref})
}

// wrapDup retains a borrowed engine reference.
func (ctx *Context) wrapDup(ref C.JSValue) *pointer {
	return ctx.newPointer(&nativeValue{ref: C.JS_DupValue(ctx.ref, ref)})
}

func (p *pointer) clone() *pointer {
	p.check()
	return p.ctx.newPointer(p.data.clone(p.ctx))
}

func (p *pointer) free() {
	if p == nil || p.freed {
		return
	}
	p.freed = true
	delete(p.ctx.live, p)
	p.data.release(p.ctx)
}

func (p *pointer) check() {
	if p == nil {
		panic("jsi: use of zero handle")
	}
	if p.freed {
		panic("jsi: use of freed handle")
	}
}

func (p *pointer) value() *nativeValue {
	p.check()
	v, ok := p.data.(*nativeValue)
	if !ok {
		panic(fmt.Sprintf("jsi: handle holds %T, not an engine value", p.data))
	}
	return v
}

func (p *pointer) str() *nativeString {
	p.check()
	s, ok := p.data.(*nativeString)
	if !ok {
		panic(fmt.Sprintf("jsi: handle holds %T, not a string", p.data))
	}
	return s
}

func (p *pointer) class() *nativeClass {
	p.check()
	c, ok := p.data.(*nativeClass)
	if !ok {
		panic(fmt.Sprintf("jsi: handle holds %T, not a class", p.data))
	}
	return c
}
