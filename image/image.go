// Package image serializes compiled template groups to a portable binary
// image, so precompiled groups can be rendered without the compiler
// present.
package image

import (
	"fmt"
	"os"

	"github.com/fxamacker/cbor/v2"

	"github.com/seanpm2001/stringtemplate4/interp"
)

// Magic identifies a group image file.
var Magic = [4]byte{'S', 'T', 'G', 'I'}

// Version is the image format version.
// v1: initial format
// v2: added dictionaries and raw default-value text on arguments
const Version uint32 = 2

// cborEncMode uses canonical encoding so identical groups serialize to
// identical bytes.
var cborEncMode cbor.EncMode

func init() {
	em, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		panic(fmt.Sprintf("image: failed to create CBOR enc mode: %v", err))
	}
	cborEncMode = em
}

// ---------------------------------------------------------------------------
// Image records
// ---------------------------------------------------------------------------

type groupImage struct {
	Magic        [4]byte                      `cbor:"magic"`
	Version      uint32                       `cbor:"version"`
	Name         string                       `cbor:"name"`
	Templates    []*templateRecord            `cbor:"templates"`
	Dictionaries map[string]map[string]string `cbor:"dictionaries,omitempty"`
}

type templateRecord struct {
	Name      string       `cbor:"name"`
	Instrs    []byte       `cbor:"instrs"`
	Strings   []string     `cbor:"strings"`
	Args      []*argRecord `cbor:"args,omitempty"`
	ArgsKnown bool         `cbor:"argsKnown"`
}

type argRecord struct {
	Name        string          `cbor:"name"`
	DefaultText string          `cbor:"defaultText,omitempty"`
	Default     *templateRecord `cbor:"default,omitempty"`
}

// ---------------------------------------------------------------------------
// Writing
// ---------------------------------------------------------------------------

// Marshal serializes a group to CBOR image bytes.
func Marshal(g *interp.Group) ([]byte, error) {
	img := &groupImage{
		Magic:   Magic,
		Version: Version,
		Name:    g.Name,
	}
	for _, name := range g.TemplateNames() {
		img.Templates = append(img.Templates, encodeTemplate(g.LookupTemplate(name)))
	}
	for _, name := range g.DictionaryNames() {
		dict := make(map[string]string)
		for k, v := range g.Dictionary(name) {
			dict[k] = fmt.Sprint(v)
		}
		if img.Dictionaries == nil {
			img.Dictionaries = make(map[string]map[string]string)
		}
		img.Dictionaries[name] = dict
	}
	return cborEncMode.Marshal(img)
}

// WriteFile serializes a group and writes it to path.
func WriteFile(g *interp.Group, path string) error {
	data, err := Marshal(g)
	if err != nil {
		return fmt.Errorf("image: marshal group %s: %w", g.Name, err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("image: write %s: %w", path, err)
	}
	return nil
}

func encodeTemplate(ct *interp.CompiledTemplate) *templateRecord {
	rec := &templateRecord{
		Name:      ct.Name,
		Instrs:    ct.Instrs[:ct.CodeSize],
		Strings:   ct.Strings,
		ArgsKnown: ct.HasFormalArgs(),
	}
	for _, arg := range ct.FormalArguments {
		ar := &argRecord{Name: arg.Name, DefaultText: arg.DefaultValueText}
		if arg.CompiledDefaultValue != nil {
			ar.Default = encodeTemplate(arg.CompiledDefaultValue)
		}
		rec.Args = append(rec.Args, ar)
	}
	return rec
}

// ---------------------------------------------------------------------------
// Reading
// ---------------------------------------------------------------------------

// Unmarshal reconstructs a group from CBOR image bytes.
func Unmarshal(data []byte) (*interp.Group, error) {
	var img groupImage
	if err := cbor.Unmarshal(data, &img); err != nil {
		return nil, fmt.Errorf("image: unmarshal: %w", err)
	}
	if img.Magic != Magic {
		return nil, fmt.Errorf("image: bad magic %q", img.Magic)
	}
	if img.Version > Version {
		return nil, fmt.Errorf("image: unsupported version %d (max %d)", img.Version, Version)
	}
	g := interp.NewGroup(img.Name)
	for _, rec := range img.Templates {
		g.DefineTemplate(decodeTemplate(g, rec))
	}
	for name, dict := range img.Dictionaries {
		d := make(map[string]any, len(dict))
		for k, v := range dict {
			d[k] = v
		}
		if err := g.DefineDictionary(name, d); err != nil {
			return nil, fmt.Errorf("image: %w", err)
		}
	}
	return g, nil
}

// ReadFile reads and reconstructs a group image from path.
func ReadFile(path string) (*interp.Group, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("image: read %s: %w", path, err)
	}
	return Unmarshal(data)
}

func decodeTemplate(g *interp.Group, rec *templateRecord) *interp.CompiledTemplate {
	ct := &interp.CompiledTemplate{
		Name:     rec.Name,
		Instrs:   rec.Instrs,
		CodeSize: len(rec.Instrs),
		Strings:  rec.Strings,
	}
	if rec.ArgsKnown {
		ct.FormalArguments = []*interp.FormalArgument{}
		for i, ar := range rec.Args {
			arg := &interp.FormalArgument{
				Name:             ar.Name,
				Index:            i,
				DefaultValueText: ar.DefaultText,
			}
			if ar.Default != nil {
				arg.CompiledDefaultValue = decodeTemplate(g, ar.Default)
				arg.CompiledDefaultValue.NativeGroup = g
			}
			ct.FormalArguments = append(ct.FormalArguments, arg)
		}
	}
	return ct
}
