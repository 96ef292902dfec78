package jsi

/*
#include "bridge.h"
*/
import "C"
import (
	"errors"
	"fmt"
	"sort"
	"unsafe"

	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// =============================================================================
// CLASS-RELATED FUNCTION TYPES
// =============================================================================

// ClassGetter reads an accessor property of an instance.
type ClassGetter func(ctx *Context, obj Object) (Value, error)

// ClassSetter writes an accessor property of an instance.
type ClassSetter func(ctx *Context, obj Object, val Value) error

// ClassFinalizer runs when the engine destroys an instance. obj is only valid
// during the call and must not be retained or used to call into script.
type ClassFinalizer func(obj Object)

// =============================================================================
// CLASS DEFINITION
// =============================================================================

// ClassProperty is an accessor property; either side may be nil.
type ClassProperty struct {
	Get ClassGetter
	Set ClassSetter
}

// ClassDefinition describes the prototype shared by every instance of a class.
type ClassDefinition struct {
	Name      string
	Methods   map[string]Function
	Props     map[string]ClassProperty
	Finalizer ClassFinalizer
}

// Class is a registered class of a Context. Instances are created with
// Context.MakeObject.
type Class struct {
	ptr *pointer
}

// Name returns the class name.
func (c Class) Name() string {
	return c.ptr.class().name
}

// ID returns the engine class id.
func (c Class) ID() uint32 {
	return uint32(c.ptr.class().id)
}

// Clone returns an independent copy of the class handle.
func (c Class) Clone() Class {
	return Class{ptr: c.ptr.clone()}
}

// Free releases the handle. The class itself lives as long as the context.
func (c Class) Free() {
	c.ptr.free()
}

func validateClassDefinition(def ClassDefinition) error {
	var err error
	if def.Name == "" {
		err = multierr.Append(err, errors.New("class name is required"))
	}
	for _, name := range sortedKeys(def.Props) {
		prop := def.Props[name]
		if prop.Get == nil && prop.Set == nil {
			err = multierr.Append(err, fmt.Errorf("property %q has neither getter nor setter", name))
		}
		if _, ok := def.Methods[name]; ok {
			err = multierr.Append(err, fmt.Errorf("%q is defined both as a method and a property", name))
		}
	}
	for _, name := range sortedKeys(def.Methods) {
		if def.Methods[name] == nil {
			err = multierr.Append(err, fmt.Errorf("method %q has no function", name))
		}
	}
	return err
}

// MakeClass registers a class: its prototype carries the accessor properties
// and methods of def, and its instances run def.Finalizer when destroyed.
func (ctx *Context) MakeClass(def ClassDefinition) (Class, error) {
	if err := validateClassDefinition(def); err != nil {
		return Class{}, fmt.Errorf("jsi: invalid class definition: %w", err)
	}

	proto, err := ctx.buildPrototype(def)
	if err != nil {
		return Class{}, err
	}
	defer proto.Free()

	id := ctx.newClassID()
	name := C.CString(def.Name)
	defer C.free(unsafe.Pointer(name))
	if C.NewFinalizedClass(ctx.runtime, id, name) < 0 {
		return Class{}, fmt.Errorf("jsi: failed to register class %q", def.Name)
	}
	C.JS_SetClassProto(ctx.ref, id, C.JS_DupValue(ctx.ref, proto.ref()))
	if def.Finalizer != nil {
		ctx.finalizers[id] = def.Finalizer
	}

	ctx.logger.Debug("class registered",
		zap.String("class", def.Name),
		zap.Uint32("id", uint32(id)),
		zap.Int("methods", len(def.Methods)),
		zap.Int("props", len(def.Props)))
	return Class{ptr: ctx.newPointer(&nativeClass{id: id, name: def.Name})}, nil
}

// buildPrototype creates the prototype object shared by instances of def.
func (ctx *Context) buildPrototype(def ClassDefinition) (Object, error) {
	proto := ctx.MakeObject(nil)
	for _, propName := range sortedKeys(def.Props) {
		if err := ctx.defineAccessor(proto, propName, def.Props[propName]); err != nil {
			proto.Free()
			return Object{}, err
		}
	}
	for _, methodName := range sortedKeys(def.Methods) {
		fn := ctx.MakeFunction(def.Methods[methodName])
		cs := C.CString(methodName)
		r := C.JS_DefinePropertyValueStr(ctx.ref, proto.ref(), cs, C.JS_DupValue(ctx.ref, fn.ref()), C.JS_PROP_ENUMERABLE)
		C.free(unsafe.Pointer(cs))
		fn.Free()
		if r < 0 {
			proto.Free()
			return Object{}, ctx.exception()
		}
	}
	return proto, nil
}

func (ctx *Context) defineAccessor(proto Object, name string, prop ClassProperty) error {
	getter, setter := C.ValueUndefined(), C.ValueUndefined()

	if get := prop.Get; get != nil {
		fn := ctx.MakeFunction(func(ctx *Context, this Value, _ []Value) (Value, error) {
			obj, err := this.ToObject()
			if err != nil {
				return Value{}, err
			}
			defer obj.Free()
			return get(ctx, obj)
		})
		getter = C.JS_DupValue(ctx.ref, fn.ref())
		fn.Free()
	}
	if set := prop.Set; set != nil {
		fn := ctx.MakeFunction(func(ctx *Context, this Value, args []Value) (Value, error) {
			obj, err := this.ToObject()
			if err != nil {
				return Value{}, err
			}
			defer obj.Free()
			val := ctx.MakeUndefined()
			defer val.Free()
			if len(args) > 0 {
				val = args[0]
			}
			return Value{}, set(ctx, obj, val)
		})
		setter = C.JS_DupValue(ctx.ref, fn.ref())
		fn.Free()
	}

	a := ctx.newAtom(name)
	defer a.free()
	if C.JS_DefinePropertyGetSet(ctx.ref, proto.ref(), a.ref, getter, setter, 0) < 0 {
		return ctx.exception()
	}
	return nil
}

// finalizeInstance runs when the engine destroys an instance of a registered
// class: the instance is unregistered, its finalizer runs, then its private
// data is released.
func (ctx *Context) finalizeInstance(val C.JSValue) {
	key := instanceKey(val)
	classID, ok := ctx.instances[key]
	if !ok {
		return
	}
	delete(ctx.instances, key)

	if fin := ctx.finalizers[classID]; fin != nil {
		obj := Object{ptr: ctx.newPointer(&nativeValue{ref: val, finalizing: true, classID: classID})}
		ctx.logger.Debug("running class finalizer", zap.Uint32("id", uint32(classID)))
		ctx.runFinalizer(fin, obj)
	}

	if id := uintptr(C.GetOpaqueID(val, classID)); id != 0 {
		ctx.handles.Delete(id)
	}
}

func (ctx *Context) runFinalizer(fin ClassFinalizer, obj Object) {
	defer func() {
		if r := recover(); r != nil {
			ctx.logger.Error("class finalizer panicked", zap.Any("panic", r))
		}
	}()
	fin(obj)
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// =============================================================================
// CLASS BUILDER - FLUENT API FOR BUILDING CLASS DEFINITIONS
// =============================================================================

// ClassBuilder provides a fluent API for building a ClassDefinition.
type ClassBuilder struct {
	def ClassDefinition
}

// NewClassBuilder creates a new ClassBuilder with the specified name.
func NewClassBuilder(name string) *ClassBuilder {
	return &ClassBuilder{def: ClassDefinition{
		Name:    name,
		Methods: make(map[string]Function),
		Props:   make(map[string]ClassProperty),
	}}
}

// Method adds a prototype method.
func (cb *ClassBuilder) Method(name string, fn Function) *ClassBuilder {
	cb.def.Methods[name] = fn
	return cb
}

// Accessor adds an accessor property with both sides.
func (cb *ClassBuilder) Accessor(name string, get ClassGetter, set ClassSetter) *ClassBuilder {
	cb.def.Props[name] = ClassProperty{Get: get, Set: set}
	return cb
}

// Getter sets the getter of an accessor property, keeping its setter.
func (cb *ClassBuilder) Getter(name string, get ClassGetter) *ClassBuilder {
	prop := cb.def.Props[name]
	prop.Get = get
	cb.def.Props[name] = prop
	return cb
}

// Setter sets the setter of an accessor property, keeping its getter.
func (cb *ClassBuilder) Setter(name string, set ClassSetter) *ClassBuilder {
	prop := cb.def.Props[name]
	prop.Set = set
	cb.def.Props[name] = prop
	return cb
}

// Finalizer sets the function run when an instance is destroyed.
func (cb *ClassBuilder) Finalizer(fn ClassFinalizer) *ClassBuilder {
	cb.def.Finalizer = fn
	return cb
}

// Definition returns a copy of the definition built so far.
func (cb *ClassBuilder) Definition() ClassDefinition {
	def := ClassDefinition{
		Name:      cb.def.Name,
		Methods:   make(map[string]Function, len(cb.def.Methods)),
		Props:     make(map[string]ClassProperty, len(cb.def.Props)),
		Finalizer: cb.def.Finalizer,
	}
	for k, v := range cb.def.Methods {
		def.Methods[k] = v
	}
	for k, v := range cb.def.Props {
		def.Props[k] = v
	}
	return def
}

// Build registers the class in ctx.
func (cb *ClassBuilder) Build(ctx *Context) (Class, error) {
	return ctx.MakeClass(cb.Definition())
}

// instanceFromKey returns a new handle to a live instance of a registered class.
func (ctx *Context) instanceFromKey(key uintptr) (Object, bool) {
	if _, ok := ctx.instances[key]; !ok {
		return Object{}, false
	}
	return Object{ptr: ctx.wrap(C.DupObjectFromKey(ctx.ref, C.uintptr_t(key)))}, true
}
