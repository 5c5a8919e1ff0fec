package interp

import (
	"reflect"
)

// ---------------------------------------------------------------------------
// Value conversions
// ---------------------------------------------------------------------------

// AttributeList is the list type built by list expressions and iteration
// maps. Adding a second value to an attribute also promotes it to one.
type AttributeList []any

// toIterator normalizes anything iterable to an Iterator: slices and arrays
// iterate their elements, maps iterate their values, iterators pass
// through. Everything else, including nil, is returned unchanged.
func toIterator(v any) any {
	if v == nil {
		return nil
	}
	switch x := v.(type) {
	case Iterator:
		return x
	case AttributeList:
		return newSliceIterator(x)
	case []any:
		return newSliceIterator(x)
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		return &reflectIterator{v: rv}
	case reflect.Map:
		return mapValuesIterator(rv)
	}
	return v
}

// forceIterator is like toIterator but wraps non-iterable values, including
// nil, as singleton iterators.
func forceIterator(v any) Iterator {
	n := toIterator(v)
	if it, ok := n.(Iterator); ok {
		return it
	}
	return &singletonIterator{value: v}
}

// truthy decides conditionals: nil is false, booleans are themselves,
// lists and maps are true when non-empty, iterators when non-exhausted,
// and any other non-nil value is true by presence.
func truthy(v any) bool {
	if v == nil {
		return false
	}
	switch x := v.(type) {
	case bool:
		return x
	case Iterator:
		return x.HasNext()
	case AttributeList:
		return len(x) > 0
	case []any:
		return len(x) > 0
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array, reflect.Map:
		return rv.Len() > 0
	}
	return true
}

// first returns the first element of a multi-valued attribute or the
// attribute itself if single-valued.
func first(v any) any {
	if v == nil {
		return nil
	}
	r := v
	if it, ok := toIterator(v).(Iterator); ok {
		if it.HasNext() {
			r = it.Next()
		}
	}
	return r
}

// last returns the last element of a multi-valued attribute or the
// attribute itself if single-valued. O(1) for lists, slices, and arrays;
// otherwise it iterates to the end.
func last(v any) any {
	if v == nil {
		return nil
	}
	switch x := v.(type) {
	case AttributeList:
		if len(x) == 0 {
			return nil
		}
		return x[len(x)-1]
	case []any:
		if len(x) == 0 {
			return nil
		}
		return x[len(x)-1]
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Slice || rv.Kind() == reflect.Array {
		if rv.Len() == 0 {
			return nil
		}
		return rv.Index(rv.Len() - 1).Interface()
	}
	out := v
	if it, ok := toIterator(v).(Iterator); ok {
		for it.HasNext() {
			out = it.Next()
		}
	}
	return out
}

// rest returns everything but the first element, or nil if single-valued.
// Lists and []any slices keep their nil elements; when the value is walked
// as an iterator, nil elements after the first are dropped.
func rest(v any) any {
	if v == nil {
		return nil
	}
	if elems, ok := asAnySlice(v); ok {
		if len(elems) <= 1 {
			return nil
		}
		return AttributeList(elems[1:])
	}
	if it, ok := toIterator(v).(Iterator); ok {
		if !it.HasNext() {
			return nil
		}
		it.Next() // ignore first value
		out := AttributeList{}
		for it.HasNext() {
			if e := it.Next(); e != nil {
				out = append(out, e)
			}
		}
		return out
	}
	return nil // rest of a single-valued attribute is nil
}

// trunc returns all but the last element, or nil if single-valued.
func trunc(v any) any {
	if v == nil {
		return nil
	}
	if elems, ok := asAnySlice(v); ok {
		if len(elems) <= 1 {
			return nil
		}
		return AttributeList(elems[:len(elems)-1])
	}
	if it, ok := toIterator(v).(Iterator); ok {
		out := AttributeList{}
		for it.HasNext() {
			e := it.Next()
			if it.HasNext() {
				out = append(out, e)
			}
		}
		return out
	}
	return nil
}

// strip returns a new list without nil values, or v unchanged when it is
// single-valued.
func strip(v any) any {
	if v == nil {
		return nil
	}
	if it, ok := toIterator(v).(Iterator); ok {
		out := AttributeList{}
		for it.HasNext() {
			if e := it.Next(); e != nil {
				out = append(out, e)
			}
		}
		return out
	}
	return v
}

// reverse returns a new list with the elements in reverse order. Nil values
// are preserved; use reverse(strip(v)) to drop them.
func reverse(v any) any {
	if v == nil {
		return nil
	}
	if it, ok := toIterator(v).(Iterator); ok {
		out := AttributeList{}
		for it.HasNext() {
			out = append(AttributeList{it.Next()}, out...)
		}
		return out
	}
	return v
}

// length returns the element count of a multi-valued attribute, 1 for any
// single value, and 0 for nil. Iterators are consumed.
func length(v any) any {
	if v == nil {
		return 0
	}
	if it, ok := v.(Iterator); ok {
		n := 0
		for it.HasNext() {
			it.Next()
			n++
		}
		return n
	}
	switch x := v.(type) {
	case AttributeList:
		return len(x)
	case []any:
		return len(x)
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array, reflect.Map:
		return rv.Len()
	}
	return 1
}

// asAnySlice extracts the backing []any from list-shaped values, used by
// the O(1) fast paths in rest and trunc.
func asAnySlice(v any) ([]any, bool) {
	switch x := v.(type) {
	case AttributeList:
		return x, true
	case []any:
		return x, true
	}
	return nil, false
}

// addToList implements list-expression element addition: nil values are
// dropped and iterable values are spread into the list.
func addToList(list AttributeList, v any) AttributeList {
	if v == nil {
		return list // [a,b,c] lists ignore nil values
	}
	if it, ok := toIterator(v).(Iterator); ok {
		for it.HasNext() {
			list = append(list, it.Next())
		}
		return list
	}
	return append(list, v)
}
