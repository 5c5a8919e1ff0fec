package interp

import (
	"strings"
	"testing"
)

// ---------------------------------------------------------------------------
// AutoIndentWriter tests
// ---------------------------------------------------------------------------

func TestWriterIndentation(t *testing.T) {
	var sb strings.Builder
	w := NewAutoIndentWriter(&sb)

	w.Write("a\n")
	w.PushIndentation("  ")
	w.Write("b\nc\n")
	w.PopIndentation()
	w.Write("d")

	want := "a\n  b\n  c\nd"
	if sb.String() != want {
		t.Errorf("got %q, want %q", sb.String(), want)
	}
}

func TestWriterNestedIndentation(t *testing.T) {
	var sb strings.Builder
	w := NewAutoIndentWriter(&sb)

	w.PushIndentation("  ")
	w.PushIndentation("\t")
	w.Write("x")
	if sb.String() != "  \tx" {
		t.Errorf("got %q", sb.String())
	}
	if got := w.PopIndentation(); got != "\t" {
		t.Errorf("PopIndentation = %q, want tab", got)
	}
}

func TestWriterIndex(t *testing.T) {
	var sb strings.Builder
	w := NewAutoIndentWriter(&sb)

	n, err := w.Write("ab\ncd")
	if err != nil {
		t.Fatal(err)
	}
	if n != 5 {
		t.Errorf("n = %d, want 5", n)
	}
	if w.Index() != 5 {
		t.Errorf("Index = %d, want 5", w.Index())
	}
}

func TestWriterDropsCarriageReturn(t *testing.T) {
	var sb strings.Builder
	w := NewAutoIndentWriter(&sb)
	w.Write("a\r\nb")
	if sb.String() != "a\nb" {
		t.Errorf("got %q, want %q", sb.String(), "a\nb")
	}
}

func TestWriterWrapAtWidth(t *testing.T) {
	var sb strings.Builder
	w := NewAutoIndentWriter(&sb)
	w.SetLineWidth(3)

	w.Write("abcd")
	w.WriteWrap("\n")
	w.Write("ef")

	want := "abcd\nef"
	if sb.String() != want {
		t.Errorf("got %q, want %q", sb.String(), want)
	}
}

func TestWriterWrapBelowWidthIsNoop(t *testing.T) {
	var sb strings.Builder
	w := NewAutoIndentWriter(&sb)
	w.SetLineWidth(10)

	w.Write("ab")
	n, _ := w.WriteWrap("\n")
	if n != 0 || sb.String() != "ab" {
		t.Errorf("wrap emitted %d chars, output %q", n, sb.String())
	}
}

func TestWriterWrapWithoutWidthIsNoop(t *testing.T) {
	var sb strings.Builder
	w := NewAutoIndentWriter(&sb)

	w.Write("abcdefgh")
	n, _ := w.WriteWrap("\n")
	if n != 0 {
		t.Errorf("wrap emitted %d chars with no width set", n)
	}
}

func TestWriterWrapIndentsToAnchor(t *testing.T) {
	var sb strings.Builder
	w := NewAutoIndentWriter(&sb)
	w.SetLineWidth(4)

	w.Write("ab")
	w.PushAnchorPoint() // column 2
	w.Write("cd")
	w.WriteWrap("\n")
	w.Write("ef")
	w.PopAnchorPoint()

	want := "abcd\n  ef"
	if sb.String() != want {
		t.Errorf("got %q, want %q", sb.String(), want)
	}
}

func TestWriterAnchorDeeperThanIndent(t *testing.T) {
	var sb strings.Builder
	w := NewAutoIndentWriter(&sb)
	w.SetLineWidth(6)

	w.PushIndentation("  ")
	w.Write("ab: ")
	w.PushAnchorPoint() // column 6
	w.Write("xyz")
	w.WriteWrap("\n")
	w.Write("q")

	want := "  ab: xyz\n      q"
	if sb.String() != want {
		t.Errorf("got %q, want %q", sb.String(), want)
	}
}

func TestWriterWrapTextAroundNewline(t *testing.T) {
	var sb strings.Builder
	w := NewAutoIndentWriter(&sb)
	w.SetLineWidth(2)

	// an A\nB wrap emits A, breaks the line, and continues with B
	w.Write("abc")
	w.WriteWrap("+\n-")
	w.Write("d")

	want := "abc+\n-d"
	if sb.String() != want {
		t.Errorf("got %q, want %q", sb.String(), want)
	}
}

func TestWriterSeparatorNeverWraps(t *testing.T) {
	var sb strings.Builder
	w := NewAutoIndentWriter(&sb)
	w.SetLineWidth(2)

	w.Write("abcd")
	w.WriteSeparator(", ")
	if sb.String() != "abcd, " {
		t.Errorf("got %q, want %q", sb.String(), "abcd, ")
	}
}

// ---------------------------------------------------------------------------
// NoIndentWriter tests
// ---------------------------------------------------------------------------

func TestNoIndentWriterIgnoresIndentation(t *testing.T) {
	var sb strings.Builder
	w := NewNoIndentWriter(&sb)

	w.PushIndentation("    ")
	w.Write("a\nb")
	if sb.String() != "a\nb" {
		t.Errorf("got %q, want %q", sb.String(), "a\nb")
	}
}
