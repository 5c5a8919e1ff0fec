package interp

import (
	"fmt"
	"reflect"
	"sort"

	"github.com/tliron/commonlog"
)

// ---------------------------------------------------------------------------
// Group: a namespace of templates
// ---------------------------------------------------------------------------

// Dictionary sentinels. A dictionary value equal to DictKey resolves to the
// key being looked up; the entry under DefaultKey is returned when a key is
// absent.
const (
	DictKey    = "key"
	DefaultKey = "default"
)

// Group is a namespace of compiled templates with shared dictionaries,
// imports, and attribute renderers. Groups are read-mostly during
// rendering; populate them before handing templates out.
type Group struct {
	Name string

	// Debug enables interpreter event and trace collection for renders
	// against this group.
	Debug bool

	// ErrMgr receives all runtime diagnostics for renders against this
	// group.
	ErrMgr *ErrorManager

	templates    map[string]*CompiledTemplate
	imports      []*Group
	dictionaries map[string]map[string]any
	renderers    map[reflect.Type]AttributeRenderer

	log commonlog.Logger
}

// NewGroup creates an empty group with the default (logging) error
// listener.
func NewGroup(name string) *Group {
	log := commonlog.GetLogger("stringtemplate." + name)
	return &Group{
		Name:         name,
		templates:    make(map[string]*CompiledTemplate),
		dictionaries: make(map[string]map[string]any),
		renderers:    make(map[reflect.Type]AttributeRenderer),
		ErrMgr:       NewErrorManager(log),
		log:          log,
	}
}

// DefineTemplate registers a compiled template under its name and records
// this group as its native group.
func (g *Group) DefineTemplate(ct *CompiledTemplate) {
	ct.NativeGroup = g
	g.templates[ct.Name] = ct
}

// ImportGroup appends an imported group; lookups fall through to imports
// in order.
func (g *Group) ImportGroup(imported *Group) {
	g.imports = append(g.imports, imported)
}

// DefineDictionary registers a group-level dictionary. The reserved
// iteration attributes it, i, and i0 cannot be shadowed.
func (g *Group) DefineDictionary(name string, dict map[string]any) error {
	if predefinedAttributes[name] {
		return fmt.Errorf("dictionary %q shadows a predefined attribute", name)
	}
	g.dictionaries[name] = dict
	return nil
}

// Dictionary returns the named group dictionary, or nil.
func (g *Group) Dictionary(name string) map[string]any {
	if d, ok := g.dictionaries[name]; ok {
		return d
	}
	for _, imp := range g.imports {
		if d := imp.Dictionary(name); d != nil {
			return d
		}
	}
	return nil
}

// LookupTemplate finds a compiled template in this group or, failing that,
// depth-first through its imports. Returns nil when not found.
func (g *Group) LookupTemplate(name string) *CompiledTemplate {
	if ct, ok := g.templates[name]; ok {
		return ct
	}
	return g.LookupImportedTemplate(name)
}

// LookupImportedTemplate finds a compiled template in the imported groups
// only. Super-style references resolve through the native group with this.
func (g *Group) LookupImportedTemplate(name string) *CompiledTemplate {
	for _, imp := range g.imports {
		if ct := imp.LookupTemplate(name); ct != nil {
			return ct
		}
	}
	return nil
}

// IsDefined reports whether name resolves to a template or dictionary.
func (g *Group) IsDefined(name string) bool {
	return g.LookupTemplate(name) != nil || g.Dictionary(name) != nil
}

// GetInstanceOf creates a fresh instance of the named template, or nil if
// the template is unknown.
func (g *Group) GetInstanceOf(name string) *Template {
	ct := g.LookupTemplate(name)
	if ct == nil {
		return nil
	}
	st := g.CreateStringTemplate()
	st.Impl = ct
	return st
}

// GetEmbeddedInstanceOf creates an instance of the named template embedded
// within enclosing. Returns nil when the template is unknown; the caller
// reports the error and substitutes a blank.
func (g *Group) GetEmbeddedInstanceOf(enclosing *Template, ip int, name string) *Template {
	st := g.GetInstanceOf(name)
	if st == nil {
		return nil
	}
	st.EnclosingInstance = enclosing
	return st
}

// CreateStringTemplate is the instance factory; every instance records
// this group as its creating group.
func (g *Group) CreateStringTemplate() *Template {
	return &Template{GroupThatCreatedThisInstance: g}
}

// NewBlankTemplate returns a fresh do-nothing instance used as the
// substitute after a failed template lookup. Its formals are undeclared so
// sole-argument binding on it is harmless.
func (g *Group) NewBlankTemplate() *Template {
	st := g.CreateStringTemplate()
	st.Impl = &CompiledTemplate{Name: UnknownName, NativeGroup: g}
	return st
}

// RegisterRenderer associates an attribute renderer with a runtime type.
// Values of that exact type render through it instead of their natural
// string form.
func (g *Group) RegisterRenderer(typ reflect.Type, r AttributeRenderer) {
	g.renderers[typ] = r
}

// GetAttributeRenderer finds the renderer for a runtime type in this group
// or its imports, or nil.
func (g *Group) GetAttributeRenderer(typ reflect.Type) AttributeRenderer {
	if r, ok := g.renderers[typ]; ok {
		return r
	}
	for _, imp := range g.imports {
		if r := imp.GetAttributeRenderer(typ); r != nil {
			return r
		}
	}
	return nil
}

// TemplateNames returns the names of all templates defined directly in
// this group, sorted.
func (g *Group) TemplateNames() []string {
	names := make([]string, 0, len(g.templates))
	for name := range g.templates {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// DictionaryNames returns the names of all dictionaries defined directly
// in this group, sorted.
func (g *Group) DictionaryNames() []string {
	names := make([]string, 0, len(g.dictionaries))
	for name := range g.dictionaries {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Log returns the group's structured logger.
func (g *Group) Log() commonlog.Logger {
	return g.log
}
