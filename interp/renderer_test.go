package interp

import (
	"reflect"
	"strings"
	"testing"
	"time"

	"golang.org/x/text/language"
)

// ---------------------------------------------------------------------------
// Renderer tests
// ---------------------------------------------------------------------------

func TestStringRendererFormats(t *testing.T) {
	r := StringRenderer{}
	tests := []struct {
		format string
		in     string
		want   string
	}{
		{"", "hello", "hello"},
		{"upper", "hello", "HELLO"},
		{"lower", "HeLLo", "hello"},
		{"cap", "hello world", "Hello world"},
		{"cap", "", ""},
		{"url-encode", "a b&c", "a+b%26c"},
		{"xml-encode", `<a href="x">&'`, "&lt;a href=&quot;x&quot;&gt;&amp;&apos;"},
	}
	for _, tt := range tests {
		if got := r.ToString(tt.in, tt.format, language.Und); got != tt.want {
			t.Errorf("ToString(%q, %q) = %q, want %q", tt.in, tt.format, got, tt.want)
		}
	}
}

func TestNumberRendererLocaleGrouping(t *testing.T) {
	r := NumberRenderer{}
	if got := r.ToString(1234567, "%d", language.AmericanEnglish); got != "1,234,567" {
		t.Errorf("got %q, want 1,234,567", got)
	}
	if got := r.ToString(3.14159, "%.2f", language.AmericanEnglish); got != "3.14" {
		t.Errorf("got %q, want 3.14", got)
	}
}

func TestTimeRenderer(t *testing.T) {
	r := TimeRenderer{}
	ts := time.Date(2014, 7, 5, 12, 30, 45, 0, time.UTC)
	tests := []struct {
		format string
		want   string
	}{
		{"date", "2014-07-05"},
		{"time", "12:30:45"},
		{"datetime", "2014-07-05 12:30:45"},
		{"", "2014-07-05 12:30:45"},
		{"2006/01", "2014/07"},
	}
	for _, tt := range tests {
		if got := r.ToString(ts, tt.format, language.Und); got != tt.want {
			t.Errorf("ToString(%q) = %q, want %q", tt.format, got, tt.want)
		}
	}
}

func TestRegisteredRendererUsedWithFormatOption(t *testing.T) {
	g, _ := newTestGroup()
	g.RegisterRenderer(reflect.TypeOf(0), NumberRenderer{})

	// t ::= "<n; format=\"%d\">"
	b := NewTemplateBuilder("t")
	b.EmitString(OpLoadAttr, "n")
	b.Emit(OpOptions)
	b.EmitString(OpLoadStr, "%d")
	b.EmitShort(OpStoreOption, int(OptionFormat))
	b.Emit(OpWriteOpt)
	g.DefineTemplate(b.Build())

	st := g.GetInstanceOf("t")
	st.Add("n", 1234567)

	var sb strings.Builder
	out := NewAutoIndentWriter(&sb)
	NewInterpreterLocale(g, language.AmericanEnglish).Exec(out, st)
	if sb.String() != "1,234,567" {
		t.Errorf("got %q, want 1,234,567", sb.String())
	}
}

func TestRendererFoundThroughImports(t *testing.T) {
	g, _ := newTestGroup()
	base := NewGroup("base")
	base.RegisterRenderer(reflect.TypeOf(""), StringRenderer{})
	g.ImportGroup(base)

	if g.GetAttributeRenderer(reflect.TypeOf("")) == nil {
		t.Error("renderer not found through import")
	}
}
