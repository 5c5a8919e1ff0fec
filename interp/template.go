package interp

import (
	"strings"

	"golang.org/x/text/language"
)

// ---------------------------------------------------------------------------
// Template: a runtime instance of a compiled template
// ---------------------------------------------------------------------------

// Template is a template instance: a CompiledTemplate plus the attribute
// values bound for one render. Instances are created by a Group when a
// template is embedded or requested, populated via Add or the store
// instructions, and discarded when their render returns.
type Template struct {
	// Impl is the compiled code this instance executes.
	Impl *CompiledTemplate

	// EnclosingInstance points at the template that embedded this one.
	// It is a non-owning back reference used for attribute scope walking
	// and is only valid for the duration of the render.
	EnclosingInstance *Template

	// GroupThatCreatedThisInstance is the group in effect for lookups
	// during this render, which can differ from Impl.NativeGroup.
	GroupThatCreatedThisInstance *Group

	// PassThroughAttributes lets unresolved references propagate outward.
	PassThroughAttributes bool

	attributes map[string]any

	// interpEvents collects debug events for this instance when the
	// group has debugging enabled.
	interpEvents []InterpEvent
}

// predefinedAttributes are reserved iteration attributes; group
// dictionaries must not shadow them.
var predefinedAttributes = map[string]bool{
	"it": true,
	"i":  true,
	"i0": true,
}

// Name returns the compiled template's name.
func (t *Template) Name() string {
	if t.Impl == nil {
		return UnknownName
	}
	return t.Impl.Name
}

// Add sets attribute name to value. Adding to an attribute that already
// has a value promotes it to a multi-valued list; iterable values are
// spread into the list.
func (t *Template) Add(name string, value any) *Template {
	if t.attributes == nil {
		t.attributes = make(map[string]any)
	}
	existing, ok := t.attributes[name]
	if !ok {
		t.attributes[name] = value
		return t
	}
	var list AttributeList
	if el, isList := existing.(AttributeList); isList {
		list = el
	} else {
		list = AttributeList{existing}
	}
	if it, isIter := toIterator(value).(Iterator); isIter {
		for it.HasNext() {
			list = append(list, it.Next())
		}
	} else {
		list = append(list, value)
	}
	t.attributes[name] = list
	return t
}

// RawSetAttribute sets an attribute without aggregation or checks. The
// interpreter uses it for argument binding and iteration indices.
func (t *Template) RawSetAttribute(name string, value any) {
	if t.attributes == nil {
		t.attributes = make(map[string]any)
	}
	t.attributes[name] = value
}

// GetAttribute resolves name against this instance and then up the
// enclosing-instance chain, returning the first match or nil.
func (t *Template) GetAttribute(name string) any {
	for p := t; p != nil; p = p.EnclosingInstance {
		if p.attributes != nil {
			if v, ok := p.attributes[name]; ok && v != nil {
				return v
			}
		}
	}
	return nil
}

// LocalAttribute returns this instance's own binding for name without any
// scope walk, or nil.
func (t *Template) LocalAttribute(name string) any {
	if t.attributes == nil {
		return nil
	}
	return t.attributes[name]
}

// checkAttributeExists verifies name is a declared formal before a named
// store. Templates with undeclared formals accept anything.
func (t *Template) checkAttributeExists(self *Template, ip int, name string) {
	if t.Impl == nil || !t.Impl.HasFormalArgs() {
		return
	}
	if t.Impl.FormalArgument(name) == nil {
		group := t.GroupThatCreatedThisInstance
		if group != nil {
			group.ErrMgr.RuntimeError(self, ip, ErrNoAttributeDefinition, name)
		}
	}
}

// EnclosingInstanceStackString renders the chain of enclosing instances,
// outermost first, for trace output.
func (t *Template) EnclosingInstanceStackString() string {
	var names []string
	for p := t; p != nil; p = p.EnclosingInstance {
		names = append([]string{p.Name()}, names...)
	}
	return "[" + strings.Join(names, " ") + "]"
}

// Render evaluates the template to a string with the undetermined locale
// and no line wrapping.
func (t *Template) Render() string {
	return t.RenderLocale(language.Und)
}

// RenderLocale evaluates the template to a string using the given locale
// for attribute renderers.
func (t *Template) RenderLocale(locale language.Tag) string {
	var sb strings.Builder
	out := NewAutoIndentWriter(&sb)
	interp := NewInterpreterLocale(t.group(), locale)
	interp.Exec(out, t)
	return sb.String()
}

// group returns the group to interpret relative to.
func (t *Template) group() *Group {
	if t.GroupThatCreatedThisInstance != nil {
		return t.GroupThatCreatedThisInstance
	}
	if t.Impl != nil && t.Impl.NativeGroup != nil {
		return t.Impl.NativeGroup
	}
	return nil
}

// Events returns the debug events recorded against this instance. Empty
// unless the group has debugging enabled.
func (t *Template) Events() []InterpEvent {
	return t.interpEvents
}
