package interp

import (
	"fmt"
	"reflect"
	"strings"
)

// ---------------------------------------------------------------------------
// Render engine: emitting values through the writer
// ---------------------------------------------------------------------------

// Option identifies a slot in an expression's option array. Slots are
// positional; the options instruction allocates NumOptions of them.
type Option int

const (
	OptionAnchor Option = iota
	OptionFormat
	OptionNull
	OptionSeparator
	OptionWrap

	// NumOptions is the fixed length of every option array.
	NumOptions = 5
)

// renderOptions holds the option strings for one write, pre-rendered from
// the raw option values. A nil *renderOptions means the write has no
// options at all.
type renderOptions struct {
	vals [NumOptions]string
	set  [NumOptions]bool
}

func (o *renderOptions) get(opt Option) (string, bool) {
	if o == nil || !o.set[opt] {
		return "", false
	}
	return o.vals[opt], true
}

func (o *renderOptions) has(opt Option) bool {
	_, ok := o.get(opt)
	return ok
}

// writeObjectNoOptions emits a value for an expression with no options,
// e.g. <name>.
func (in *Interpreter) writeObjectNoOptions(out Writer, self *Template, o any) int {
	return in.writeObject(out, self, o, nil)
}

// writeObjectWithOptions emits a value for an expression with options,
// e.g. <names; separator=", ">. Raw option values are rendered all the way
// to strings first; an anchor option brackets the write with an anchor
// point.
func (in *Interpreter) writeObjectWithOptions(out Writer, self *Template, o any, options []any) int {
	opts := in.renderOptionStrings(self, options)
	if opts.has(OptionAnchor) {
		out.PushAnchorPoint()
	}
	n := in.writeObject(out, self, o, opts)
	if opts.has(OptionAnchor) {
		out.PopAnchorPoint()
	}
	return n
}

func (in *Interpreter) renderOptionStrings(self *Template, options []any) *renderOptions {
	opts := &renderOptions{}
	for i := 0; i < NumOptions && i < len(options); i++ {
		if options[i] == nil {
			continue
		}
		opts.vals[i] = in.toString(self, options[i])
		opts.set[i] = true
	}
	return opts
}

// writeObject differentiates between templates, iterable values, and plain
// values, and returns the characters written.
func (in *Interpreter) writeObject(out Writer, self *Template, o any, opts *renderOptions) int {
	if o == nil {
		nullStr, ok := opts.get(OptionNull)
		if !ok {
			return 0
		}
		o = nullStr
	}
	if st, ok := o.(*Template); ok {
		st.EnclosingInstance = self
		in.setDefaultArguments(st)
		if wrap, ok := opts.get(OptionWrap); ok {
			// the writer checks the line width and may emit a queued
			// wrap before this template's first character
			if _, err := out.WriteWrap(wrap); err != nil {
				in.group.ErrMgr.IOError(self, err)
			}
		}
		return in.Exec(out, st)
	}
	o = toIterator(o)
	if it, ok := o.(Iterator); ok {
		return in.writeIterator(out, self, it, opts)
	}
	return in.writePlain(out, self, o, opts)
}

// writeIterator emits each element, separating elements that produce
// output. A separator is emitted between a produced value and a next
// element that is either non-nil or covered by a null substitution.
func (in *Interpreter) writeIterator(out Writer, self *Template, it Iterator, opts *renderOptions) int {
	n := 0
	separator, hasSep := opts.get(OptionSeparator)
	seenAValue := false
	for it.HasNext() {
		iterValue := it.Next()
		needSeparator := seenAValue && hasSep &&
			(iterValue != nil || opts.has(OptionNull))
		if needSeparator {
			ns, err := out.WriteSeparator(separator)
			if err != nil {
				in.group.ErrMgr.IOError(self, err)
			}
			n += ns
		}
		nw := in.writeObject(out, self, iterValue, opts)
		if nw > 0 {
			seenAValue = true
		}
		n += nw
	}
	return n
}

// writePlain emits a single non-template, non-iterable value through the
// type's registered renderer when there is one, else its natural string
// form.
func (in *Interpreter) writePlain(out Writer, self *Template, o any, opts *renderOptions) int {
	format, _ := opts.get(OptionFormat)
	var v string
	if r := in.group.GetAttributeRenderer(reflect.TypeOf(o)); r != nil {
		v = r.ToString(o, format, in.locale)
	} else {
		v = naturalString(o)
	}
	var n int
	var err error
	if wrap, ok := opts.get(OptionWrap); ok {
		nw, werr := out.WriteWrap(wrap)
		n += nw
		if werr != nil {
			in.group.ErrMgr.IOError(self, werr)
		}
	}
	var nv int
	nv, err = out.Write(v)
	n += nv
	if err != nil {
		in.group.ErrMgr.IOError(self, err)
		return 0
	}
	return n
}

// toString renders any value to a string: strings pass through, templates
// evaluate with self as their enclosing scope, and everything else goes
// through writeObject with no options. Nested renders use a no-indent
// writer so embedded text is not double-indented.
func (in *Interpreter) toString(self *Template, value any) string {
	if value == nil {
		return ""
	}
	if s, ok := value.(string); ok {
		return s
	}
	if st, ok := value.(*Template); ok {
		st.EnclosingInstance = self
	}
	var sb strings.Builder
	in.writeObjectNoOptions(NewNoIndentWriter(&sb), self, value)
	return sb.String()
}

// naturalString is the fallback rendering for values with no registered
// renderer.
func naturalString(o any) string {
	return fmt.Sprint(o)
}
