package view

import "reflect"

// sliceID identifies a collection by its backing array and length. The
// memoized views recompute only when the caller passes a different slice
// (a refetch always allocates a new one) or different criteria. Views are
// intended for single-goroutine use by a render loop or CLI command.
type sliceID struct {
	ptr uintptr
	len int
}

func idOf(slice any) sliceID {
	rv := reflect.ValueOf(slice)
	return sliceID{ptr: rv.Pointer(), len: rv.Len()}
}
