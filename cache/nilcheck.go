package cache

import "reflect"

// nilGuard rejects nil keys and values. Whether K and V can hold nil at all is
// decided once per instantiation so non-nilable types skip reflection.
type nilGuard[K comparable, V any] struct {
	keyNilable bool
	valNilable bool
}

func newNilGuard[K comparable, V any]() nilGuard[K, V] {
	return nilGuard[K, V]{
		keyNilable: nilable(reflect.TypeFor[K]()),
		valNilable: nilable(reflect.TypeFor[V]()),
	}
}

func nilable(t reflect.Type) bool {
	switch t.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Func,
		reflect.Chan, reflect.Interface, reflect.UnsafePointer:
		return true
	}
	return false
}

func (g nilGuard[K, V]) nilKey(k K) bool {
	return g.keyNilable && isNil(k)
}

// check validates a key/value pair before any mutation.
func (g nilGuard[K, V]) check(k K, v V) error {
	if g.nilKey(k) {
		return ErrNilKey
	}
	if g.valNilable && isNil(v) {
		return ErrNilValue
	}
	return nil
}

func isNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Func,
		reflect.Chan, reflect.Interface, reflect.UnsafePointer:
		return rv.IsNil()
	}
	return false
}
