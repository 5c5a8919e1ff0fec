package interp

import (
	"fmt"
	"net/url"
	"strings"
	"time"
	"unicode"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// ---------------------------------------------------------------------------
// Attribute renderers
// ---------------------------------------------------------------------------

// AttributeRenderer formats plain values of a registered type, honoring
// the format option and the render locale. Renderers only see values that
// are not templates and not iterable.
type AttributeRenderer interface {
	ToString(value any, format string, locale language.Tag) string
}

// StringRenderer formats string attributes. Supported formats are upper,
// lower, cap, url-encode, and xml-encode; an empty format is the identity.
type StringRenderer struct{}

var xmlReplacer = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&apos;",
)

func (StringRenderer) ToString(value any, format string, locale language.Tag) string {
	s := fmt.Sprint(value)
	switch format {
	case "upper":
		return strings.ToUpper(s)
	case "lower":
		return strings.ToLower(s)
	case "cap":
		if s == "" {
			return s
		}
		r := []rune(s)
		r[0] = unicode.ToUpper(r[0])
		return string(r)
	case "url-encode":
		return url.QueryEscape(s)
	case "xml-encode":
		return xmlReplacer.Replace(s)
	}
	return s
}

// NumberRenderer formats numeric attributes with locale-aware printf via
// x/text. The format option is a printf verb such as %d or %.2f; empty
// formats fall back to %v.
type NumberRenderer struct{}

func (NumberRenderer) ToString(value any, format string, locale language.Tag) string {
	if format == "" {
		format = "%v"
	}
	return message.NewPrinter(locale).Sprintf(format, value)
}

// TimeRenderer formats time.Time attributes. The named formats date, time,
// and datetime map to fixed layouts; any other non-empty format is used as
// a Go layout string.
type TimeRenderer struct{}

const (
	timeLayoutDate     = "2006-01-02"
	timeLayoutTime     = "15:04:05"
	timeLayoutDatetime = "2006-01-02 15:04:05"
)

func (TimeRenderer) ToString(value any, format string, locale language.Tag) string {
	t, ok := value.(time.Time)
	if !ok {
		return fmt.Sprint(value)
	}
	switch format {
	case "", "datetime":
		return t.Format(timeLayoutDatetime)
	case "date":
		return t.Format(timeLayoutDate)
	case "time":
		return t.Format(timeLayoutTime)
	}
	return t.Format(format)
}
