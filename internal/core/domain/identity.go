package domain

import "reflect"

// IsNil reports whether v is nil or a nil pointer, map, channel, func, interface or slice.
func IsNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Chan, reflect.Func, reflect.Interface, reflect.Slice:
		return rv.IsNil()
	default:
		return false
	}
}

// SameObject reports whether a and b denote the same object. Reference kinds
// compare by address (funcs by code pointer). Other values are the same object
// only when both are comparable at runtime and equal; a struct whose interface
// field holds a slice or map never panics here, it is just never identical.
func SameObject(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	va, vb := reflect.ValueOf(a), reflect.ValueOf(b)
	if va.Type() != vb.Type() {
		return false
	}
	switch va.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Chan, reflect.Func, reflect.UnsafePointer:
		return va.Pointer() == vb.Pointer()
	case reflect.Slice:
		return va.Pointer() == vb.Pointer() && va.Len() == vb.Len()
	default:
		return va.Comparable() && vb.Comparable() && va.Equal(vb)
	}
}
