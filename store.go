package jsi

import "runtime/cgo"

// handleStore keeps Go values (closures, private data) reachable while the
// engine refers to them by id from an object's opaque slot. An id is the
// cgo.Handle itself, so it is never zero. The store is owned by one Context
// and only touched from its thread.
type handleStore struct {
	handles map[cgo.Handle]struct{}
}

func newHandleStore() *handleStore {
	return &handleStore{handles: make(map[cgo.Handle]struct{})}
}

// Store boxes a value and returns its id.
func (hs *handleStore) Store(value any) uintptr {
	h := cgo.NewHandle(value)
	hs.handles[h] = struct{}{}
	return uintptr(h)
}

// Load returns the value stored under id.
func (hs *handleStore) Load(id uintptr) (any, bool) {
	h := cgo.Handle(id)
	if _, ok := hs.handles[h]; !ok {
		return nil, false
	}
	return h.Value(), true
}

// Delete releases the value stored under id. It reports whether id was live.
func (hs *handleStore) Delete(id uintptr) bool {
	h := cgo.Handle(id)
	if _, ok := hs.handles[h]; !ok {
		return false
	}
	delete(hs.handles, h)
	h.Delete()
	return true
}

// Clear releases every stored value (called on Context.Close).
func (hs *handleStore) Clear() {
	for h := range hs.handles {
		h.Delete()
	}
	hs.handles = make(map[cgo.Handle]struct{})
}

// Count returns number of stored values.
func (hs *handleStore) Count() int {
	return len(hs.handles)
}
