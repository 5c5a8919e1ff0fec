package interp

import (
	"fmt"
	"reflect"
	"unicode"
)

// ---------------------------------------------------------------------------
// Dynamic property access
// ---------------------------------------------------------------------------

// getObjectProperty resolves o.property for the load_prop instructions.
// Templates resolve against their own attribute table only (no scope walk;
// the asymmetry with load_attr is deliberate), maps resolve with the
// dictionary sentinels, and everything else goes through the reflective
// accessor protocol.
func (in *Interpreter) getObjectProperty(self *Template, o any, property any) any {
	if o == nil {
		in.group.ErrMgr.RuntimeError(self, in.currentIP, ErrNoSuchProperty, "null object")
		return nil
	}
	if property == nil {
		in.group.ErrMgr.RuntimeError(self, in.currentIP, ErrNoSuchProperty,
			fmt.Sprintf("property name of %T is null", o))
		return nil
	}

	if st, ok := o.(*Template); ok {
		return st.LocalAttribute(in.toString(self, property))
	}

	if m, ok := o.(map[string]any); ok {
		return in.mapProperty(self, m, property)
	}
	rv := reflect.ValueOf(o)
	if rv.Kind() == reflect.Map {
		return in.reflectMapProperty(self, rv, property)
	}

	return in.reflectProperty(self, o, property)
}

// mapProperty resolves dictionary lookups with the DictKey and DefaultKey
// sentinels.
func (in *Interpreter) mapProperty(self *Template, m map[string]any, property any) any {
	if property == DictKey {
		return property
	}
	var value any
	key, isString := property.(string)
	if !isString {
		key = in.toString(self, property)
	}
	switch {
	case key == "keys":
		keys := make(AttributeList, 0, len(m))
		for _, k := range sortedMapKeys(reflect.ValueOf(m)) {
			keys = append(keys, k)
		}
		value = keys
	case key == "values":
		value = mapValuesIterator(reflect.ValueOf(m))
	default:
		v, ok := m[key]
		if !ok {
			v = m[DefaultKey] // absent key falls back to the default entry
		}
		value = v
	}
	if value == DictKey {
		value = property
	}
	return value
}

// reflectMapProperty handles maps other than map[string]any: the property
// is used as the raw key when types line up, else as its string form.
func (in *Interpreter) reflectMapProperty(self *Template, m reflect.Value, property any) any {
	keyType := m.Type().Key()
	pv := reflect.ValueOf(property)
	if pv.IsValid() && pv.Type().AssignableTo(keyType) {
		if v := m.MapIndex(pv); v.IsValid() {
			return v.Interface()
		}
	}
	if keyType.Kind() == reflect.String {
		key := reflect.ValueOf(in.toString(self, property))
		if v := m.MapIndex(key); v.IsValid() {
			return v.Interface()
		}
		if v := m.MapIndex(reflect.ValueOf(DefaultKey)); v.IsValid() {
			return v.Interface()
		}
	}
	return nil
}

// reflectProperty implements the accessor protocol for arbitrary Go
// values: Get<X>() and Is<X>() methods, a bare <X>() method, then an
// exported field named <X>.
func (in *Interpreter) reflectProperty(self *Template, o any, property any) any {
	name, ok := property.(string)
	if !ok {
		name = in.toString(self, property)
	}
	if name == "" {
		in.group.ErrMgr.RuntimeError(self, in.currentIP, ErrNoSuchProperty,
			fmt.Sprintf("%T.%v", o, property))
		return nil
	}
	suffix := capitalize(name)
	rv := reflect.ValueOf(o)

	for _, methodName := range []string{"Get" + suffix, "Is" + suffix, suffix} {
		m := rv.MethodByName(methodName)
		if m.IsValid() && m.Type().NumIn() == 0 && m.Type().NumOut() >= 1 {
			return m.Call(nil)[0].Interface()
		}
	}

	sv := rv
	if sv.Kind() == reflect.Pointer {
		sv = sv.Elem()
	}
	if sv.Kind() == reflect.Struct {
		if f := sv.FieldByName(suffix); f.IsValid() && f.CanInterface() {
			return f.Interface()
		}
	}

	in.group.ErrMgr.RuntimeError(self, in.currentIP, ErrNoSuchProperty,
		fmt.Sprintf("%T.%s", o, name))
	return nil
}

func capitalize(s string) string {
	r := []rune(s)
	r[0] = unicode.ToUpper(r[0])
	return string(r)
}
