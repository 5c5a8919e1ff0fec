package interp

import (
	"reflect"
	"testing"
)

// ---------------------------------------------------------------------------
// Template instance tests
// ---------------------------------------------------------------------------

func TestAddAggregatesToList(t *testing.T) {
	g, _ := newTestGroup()
	defineLiteral(g, "t", "")
	st := g.GetInstanceOf("t")

	st.Add("x", "a")
	if got := st.LocalAttribute("x"); got != "a" {
		t.Fatalf("single value = %v", got)
	}
	st.Add("x", "b")
	st.Add("x", "c")
	got := st.LocalAttribute("x")
	if !reflect.DeepEqual(got, AttributeList{"a", "b", "c"}) {
		t.Errorf("aggregated = %v, want [a b c]", got)
	}
}

func TestGetAttributeWalksEnclosing(t *testing.T) {
	g, _ := newTestGroup()
	outer := g.NewBlankTemplate()
	outer.RawSetAttribute("x", "from outer")
	mid := g.NewBlankTemplate()
	mid.EnclosingInstance = outer
	inner := g.NewBlankTemplate()
	inner.EnclosingInstance = mid

	if got := inner.GetAttribute("x"); got != "from outer" {
		t.Errorf("got %v, want from outer", got)
	}
	inner.RawSetAttribute("x", "own")
	if got := inner.GetAttribute("x"); got != "own" {
		t.Errorf("shadowed = %v, want own", got)
	}
}

func TestRender(t *testing.T) {
	g, _ := newTestGroup()
	defineLiteral(g, "t", "rendered text")
	if got := g.GetInstanceOf("t").Render(); got != "rendered text" {
		t.Errorf("Render = %q", got)
	}
}

func TestEnclosingInstanceStackString(t *testing.T) {
	g, _ := newTestGroup()
	defineLiteral(g, "a", "")
	defineLiteral(g, "b", "")
	outer := g.GetInstanceOf("a")
	inner := g.GetInstanceOf("b")
	inner.EnclosingInstance = outer

	if got := inner.EnclosingInstanceStackString(); got != "[a b]" {
		t.Errorf("got %q, want [a b]", got)
	}
}

// ---------------------------------------------------------------------------
// Group tests
// ---------------------------------------------------------------------------

func TestGroupLookupThroughImports(t *testing.T) {
	g, _ := newTestGroup()
	base := NewGroup("base")
	defineLiteral(base, "shared", "shared text")
	g.ImportGroup(base)

	if g.LookupTemplate("shared") == nil {
		t.Error("imported template not found")
	}
	if g.LookupImportedTemplate("shared") == nil {
		t.Error("LookupImportedTemplate missed")
	}
	if g.GetInstanceOf("shared") == nil {
		t.Error("GetInstanceOf missed imported template")
	}
	if !g.IsDefined("shared") {
		t.Error("IsDefined false for imported template")
	}
}

func TestGroupOwnTemplateShadowsImport(t *testing.T) {
	g, _ := newTestGroup()
	base := NewGroup("base")
	defineLiteral(base, "t", "base")
	g.ImportGroup(base)
	defineLiteral(g, "t", "own")

	if got := g.GetInstanceOf("t").Render(); got != "own" {
		t.Errorf("got %q, want own", got)
	}
	// the imported-only lookup still sees the base version
	if ct := g.LookupImportedTemplate("t"); ct == nil || ct.NativeGroup.Name != "base" {
		t.Error("imported lookup did not resolve to base group")
	}
}

func TestGetEmbeddedInstanceRecordsParent(t *testing.T) {
	g, _ := newTestGroup()
	defineLiteral(g, "child", "")
	parent := g.NewBlankTemplate()

	st := g.GetEmbeddedInstanceOf(parent, 0, "child")
	if st == nil || st.EnclosingInstance != parent {
		t.Error("embedded instance did not record parent")
	}
	if g.GetEmbeddedInstanceOf(parent, 0, "nosuch") != nil {
		t.Error("missing template returned an instance")
	}
}

func TestTemplateNamesSorted(t *testing.T) {
	g, _ := newTestGroup()
	defineLiteral(g, "zebra", "")
	defineLiteral(g, "apple", "")
	if got := g.TemplateNames(); !reflect.DeepEqual(got, []string{"apple", "zebra"}) {
		t.Errorf("TemplateNames = %v", got)
	}
}
