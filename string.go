package jsi

// JSString is host-owned text that converts to an engine string on demand.
type JSString struct {
	ptr *pointer
}

// StringFromUTF8 returns a string handle holding s.
func (ctx *Context) StringFromUTF8(s string) JSString {
	return JSString{ptr: ctx.newPointer(&nativeString{str: s})}
}

// UTF8 returns the text of the string.
func (s JSString) UTF8() string {
	return s.ptr.str().str
}

// String implements fmt.Stringer.
func (s JSString) String() string {
	return s.UTF8()
}

// Clone returns an independent copy of the string handle.
func (s JSString) Clone() JSString {
	return JSString{ptr: s.ptr.clone()}
}

// Free releases the handle.
func (s JSString) Free() {
	s.ptr.free()
}
