package interp

import (
	"fmt"
	"reflect"
	"sort"
)

// ---------------------------------------------------------------------------
// Iterators
// ---------------------------------------------------------------------------

// Iterator yields the elements of a multi-valued attribute, one at a time.
// Attribute values that are slices, arrays, or maps are normalized to an
// Iterator before rendering or mapping.
type Iterator interface {
	HasNext() bool
	Next() any
}

// sliceIterator iterates a []any or AttributeList.
type sliceIterator struct {
	elems []any
	pos   int
}

func (it *sliceIterator) HasNext() bool {
	return it.pos < len(it.elems)
}

func (it *sliceIterator) Next() any {
	v := it.elems[it.pos]
	it.pos++
	return v
}

// reflectIterator iterates any slice or array value via reflection, which
// covers typed slices like []string and []int without copying.
type reflectIterator struct {
	v   reflect.Value
	pos int
}

func (it *reflectIterator) HasNext() bool {
	return it.pos < it.v.Len()
}

func (it *reflectIterator) Next() any {
	e := it.v.Index(it.pos).Interface()
	it.pos++
	return e
}

// newSliceIterator wraps a []any slice.
func newSliceIterator(elems []any) Iterator {
	return &sliceIterator{elems: elems}
}

// singletonIterator yields exactly one value.
type singletonIterator struct {
	value any
	done  bool
}

func (it *singletonIterator) HasNext() bool {
	return !it.done
}

func (it *singletonIterator) Next() any {
	it.done = true
	return it.value
}

// mapValuesIterator returns an iterator over a map's values. Keys are
// sorted by their formatted representation so rendering stays deterministic
// across runs; Go map iteration order would otherwise leak into output.
func mapValuesIterator(m reflect.Value) Iterator {
	keys := m.MapKeys()
	sort.Slice(keys, func(i, j int) bool {
		return fmt.Sprint(keys[i].Interface()) < fmt.Sprint(keys[j].Interface())
	})
	elems := make([]any, 0, len(keys))
	for _, k := range keys {
		elems = append(elems, m.MapIndex(k).Interface())
	}
	return &sliceIterator{elems: elems}
}

// sortedMapKeys returns a map's keys sorted the same way mapValuesIterator
// orders its values.
func sortedMapKeys(m reflect.Value) []any {
	keys := m.MapKeys()
	sort.Slice(keys, func(i, j int) bool {
		return fmt.Sprint(keys[i].Interface()) < fmt.Sprint(keys[j].Interface())
	})
	out := make([]any, 0, len(keys))
	for _, k := range keys {
		out = append(out, k.Interface())
	}
	return out
}
