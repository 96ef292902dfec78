package jsi

/*
#include "bridge.h"
*/
import "C"
import "go.uber.org/zap"

// Option configures a Context at creation.
type Option func(*options)

type options struct {
	logger       *zap.Logger
	memoryLimit  uint64
	gcThreshold  uint64
	maxStackSize uint64
}

// WithLogger sets the logger for a single context instead of the package logger.
func WithLogger(l *zap.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}

// WithMemoryLimit sets the runtime memory limit in bytes; if not set, it will be unlimited.
func WithMemoryLimit(limit uint64) Option {
	return func(o *options) {
		o.memoryLimit = limit
	}
}

// WithGCThreshold sets the allocation size in bytes that triggers automatic GC.
func WithGCThreshold(threshold uint64) Option {
	return func(o *options) {
		o.gcThreshold = threshold
	}
}

// WithMaxStackSize sets the maximum stack size in bytes used by script execution.
func WithMaxStackSize(size uint64) Option {
	return func(o *options) {
		o.maxStackSize = size
	}
}

func newOptions(opts []Option) *options {
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}
	if o.logger == nil {
		o.logger = Logger()
	}
	return o
}

func (o *options) apply(rt *C.JSRuntime) {
	if o.memoryLimit > 0 {
		C.JS_SetMemoryLimit(rt, C.size_t(o.memoryLimit))
	}
	if o.gcThreshold > 0 {
		C.JS_SetGCThreshold(rt, C.size_t(o.gcThreshold))
	}
	if o.maxStackSize > 0 {
		C.JS_SetMaxStackSize(rt, C.size_t(o.maxStackSize))
	}
}
