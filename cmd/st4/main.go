// st4 renders precompiled template groups from the command line.
package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/tliron/commonlog"
	_ "github.com/tliron/commonlog/simple"
	"golang.org/x/text/language"

	"github.com/seanpm2001/stringtemplate4/image"
	"github.com/seanpm2001/stringtemplate4/interp"
	"github.com/seanpm2001/stringtemplate4/manifest"
)

// attrFlags collects repeated -a name=value bindings.
type attrFlags map[string]string

func (a attrFlags) String() string {
	return fmt.Sprint(map[string]string(a))
}

func (a attrFlags) Set(s string) error {
	name, value, ok := strings.Cut(s, "=")
	if !ok {
		return fmt.Errorf("attribute %q is not name=value", s)
	}
	a[name] = value
	return nil
}

func main() {
	attrs := attrFlags{}
	manifestDir := flag.String("m", "", "Directory containing render.toml")
	entry := flag.String("t", "", "Entry template to render")
	width := flag.Int("w", interp.NoWrap, "Line width for soft wrapping")
	localeTag := flag.String("locale", "", "Locale tag for attribute renderers (e.g. en-US)")
	trace := flag.Bool("trace", false, "Dump bytecode instructions as they execute")
	verbose := flag.Int("v", 0, "Log verbosity")
	flag.Var(attrs, "a", "Attribute binding name=value (repeatable)")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: st4 [options] [image]\n\n")
		fmt.Fprintf(os.Stderr, "Renders a template from a precompiled group image to stdout.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  st4 -t hello -a name=World group.sti   # render hello(name) from an image\n")
		fmt.Fprintf(os.Stderr, "  st4 -m ./site                          # render per ./site/render.toml\n")
	}
	flag.Parse()

	commonlog.Configure(*verbose, nil)

	var group *interp.Group
	entryName := *entry
	locale := language.Und
	lineWidth := *width
	debug := false

	switch {
	case *manifestDir != "":
		m, err := manifest.Load(*manifestDir)
		if err != nil {
			fail(err)
		}
		group, err = image.ReadFile(m.ImagePath())
		if err != nil {
			fail(err)
		}
		if entryName == "" {
			entryName = m.Render.Entry
		}
		if m.Render.Locale != "" {
			locale, err = language.Parse(m.Render.Locale)
			if err != nil {
				fail(fmt.Errorf("bad locale %q: %w", m.Render.Locale, err))
			}
		}
		if lineWidth == interp.NoWrap && m.Render.LineWidth > 0 {
			lineWidth = m.Render.LineWidth
		}
		debug = m.Render.Debug
		for name, value := range m.Attributes {
			if _, ok := attrs[name]; !ok {
				attrs[name] = fmt.Sprint(value)
			}
		}

	case flag.NArg() == 1:
		var err error
		group, err = image.ReadFile(flag.Arg(0))
		if err != nil {
			fail(err)
		}

	default:
		flag.Usage()
		os.Exit(2)
	}

	if *localeTag != "" {
		var err error
		locale, err = language.Parse(*localeTag)
		if err != nil {
			fail(fmt.Errorf("bad locale %q: %w", *localeTag, err))
		}
	}
	if entryName == "" {
		fail(fmt.Errorf("no entry template; use -t or a manifest"))
	}

	group.Debug = debug
	st := group.GetInstanceOf(entryName)
	if st == nil {
		fail(fmt.Errorf("no such template: %s", entryName))
	}
	for name, value := range attrs {
		st.Add(name, value)
	}

	out := interp.NewAutoIndentWriter(os.Stdout)
	if lineWidth != interp.NoWrap {
		out.SetLineWidth(lineWidth)
	}
	in := interp.NewInterpreterLocale(group, locale)
	in.Trace = *trace
	in.Exec(out, st)
	fmt.Println()
}

func fail(err error) {
	fmt.Fprintf(os.Stderr, "st4: %v\n", err)
	os.Exit(1)
}
