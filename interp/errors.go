package interp

import (
	"fmt"
	"strings"

	"github.com/tliron/commonlog"
)

// ---------------------------------------------------------------------------
// Runtime error reporting
// ---------------------------------------------------------------------------

// ErrorType classifies a runtime diagnostic.
type ErrorType int

const (
	ErrNoSuchTemplate ErrorType = iota
	ErrNoImportedTemplate
	ErrNoSuchProperty
	ErrNoAttributeDefinition
	ErrExpectingString
	ErrExpectingSingleArgument
	ErrMissingFormalArguments
	ErrMapArgumentCountMismatch
	ErrWriteIO
	ErrInternal
)

// messageFormats maps each error type to its diagnostic format string.
var messageFormats = map[ErrorType]string{
	ErrNoSuchTemplate:           "no such template: %v",
	ErrNoImportedTemplate:       "no such imported template: %v",
	ErrNoSuchProperty:           "no such property or cannot access: %v",
	ErrNoAttributeDefinition:    "attribute %v isn't defined",
	ErrExpectingString:          "function %v expects a string not %v",
	ErrExpectingSingleArgument:  "expecting single arg in template reference %v (not %v args)",
	ErrMissingFormalArguments:   "missing argument definitions",
	ErrMapArgumentCountMismatch: "iterating through %v values in zip map but template has %v declared arguments",
	ErrWriteIO:                  "error writing output",
	ErrInternal:                 "internal error: %v",
}

func (t ErrorType) String() string {
	switch t {
	case ErrNoSuchTemplate:
		return "NO_SUCH_TEMPLATE"
	case ErrNoImportedTemplate:
		return "NO_IMPORTED_TEMPLATE"
	case ErrNoSuchProperty:
		return "NO_SUCH_PROPERTY"
	case ErrNoAttributeDefinition:
		return "NO_ATTRIBUTE_DEFINITION"
	case ErrExpectingString:
		return "EXPECTING_STRING"
	case ErrExpectingSingleArgument:
		return "EXPECTING_SINGLE_ARGUMENT"
	case ErrMissingFormalArguments:
		return "MISSING_FORMAL_ARGUMENTS"
	case ErrMapArgumentCountMismatch:
		return "MAP_ARGUMENT_COUNT_MISMATCH"
	case ErrWriteIO:
		return "WRITE_IO_ERROR"
	case ErrInternal:
		return "INTERNAL_ERROR"
	}
	return fmt.Sprintf("ErrorType(%d)", int(t))
}

// Message carries one runtime diagnostic: the failing template, the
// instruction pointer of the opcode being executed, the error kind, and
// kind-specific details.
type Message struct {
	Type     ErrorType
	Template *Template
	IP       int
	Args     []any
	Err      error // underlying error, for IO and property failures
}

func (m *Message) String() string {
	var sb strings.Builder
	format, ok := messageFormats[m.Type]
	if !ok {
		format = "%v"
	}
	fmt.Fprintf(&sb, format, m.Args...)
	if m.Template != nil {
		fmt.Fprintf(&sb, " [template %s @ %d]", m.Template.Name(), m.IP)
	}
	if m.Err != nil {
		fmt.Fprintf(&sb, ": %v", m.Err)
	}
	return sb.String()
}

// Listener receives runtime diagnostics. Implementations must not assume
// the template outlives the callback.
type Listener interface {
	RuntimeError(msg *Message)
	IOError(msg *Message)
	InternalError(msg *Message)
}

// logListener is the default listener; it writes diagnostics to the
// group's structured logger.
type logListener struct {
	log commonlog.Logger
}

func (l *logListener) RuntimeError(msg *Message) {
	l.log.Errorf("%s: %s", msg.Type, msg)
}

func (l *logListener) IOError(msg *Message) {
	l.log.Errorf("%s: %s", msg.Type, msg)
}

func (l *logListener) InternalError(msg *Message) {
	l.log.Criticalf("%s: %s", msg.Type, msg)
}

// ErrorBuffer is a Listener that records messages; tests and batch tools
// install it to inspect diagnostics after a render.
type ErrorBuffer struct {
	Messages []*Message
}

func (b *ErrorBuffer) RuntimeError(msg *Message)  { b.Messages = append(b.Messages, msg) }
func (b *ErrorBuffer) IOError(msg *Message)       { b.Messages = append(b.Messages, msg) }
func (b *ErrorBuffer) InternalError(msg *Message) { b.Messages = append(b.Messages, msg) }

// Types returns the recorded error types in order.
func (b *ErrorBuffer) Types() []ErrorType {
	types := make([]ErrorType, len(b.Messages))
	for i, m := range b.Messages {
		types[i] = m.Type
	}
	return types
}

// ErrorManager routes diagnostics from the interpreter to a listener. One
// manager serves one group; renders never propagate errors as panics or
// error returns, they report here and continue with a sentinel value.
type ErrorManager struct {
	listener Listener
}

// NewErrorManager creates a manager with the default logging listener.
func NewErrorManager(log commonlog.Logger) *ErrorManager {
	return &ErrorManager{listener: &logListener{log: log}}
}

// SetListener replaces the diagnostic listener.
func (em *ErrorManager) SetListener(l Listener) {
	em.listener = l
}

// RuntimeError reports a lookup, type, or arity failure.
func (em *ErrorManager) RuntimeError(tmpl *Template, ip int, kind ErrorType, args ...any) {
	em.listener.RuntimeError(&Message{Type: kind, Template: tmpl, IP: ip, Args: args})
}

// RuntimeErrorCause reports a runtime failure with an underlying error.
func (em *ErrorManager) RuntimeErrorCause(tmpl *Template, ip int, kind ErrorType, err error, args ...any) {
	em.listener.RuntimeError(&Message{Type: kind, Template: tmpl, IP: ip, Args: args, Err: err})
}

// IOError reports a writer failure; the offending write counts as zero
// characters.
func (em *ErrorManager) IOError(tmpl *Template, err error) {
	em.listener.IOError(&Message{Type: ErrWriteIO, Template: tmpl, Err: err})
}

// InternalError reports a compile-time-assumption violation such as an
// invalid opcode or an operand stack fault; the frame halts.
func (em *ErrorManager) InternalError(tmpl *Template, ip int, args ...any) {
	em.listener.InternalError(&Message{Type: ErrInternal, Template: tmpl, IP: ip, Args: args})
}
