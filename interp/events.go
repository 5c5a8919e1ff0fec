package interp

import (
	"fmt"

	"github.com/google/uuid"
)

// ---------------------------------------------------------------------------
// Debug events
// ---------------------------------------------------------------------------

// InterpEvent is one observation recorded while interpreting with
// debugging enabled.
type InterpEvent interface {
	EventTemplate() *Template
}

// EvalTemplateEvent records one template evaluation: the instance and the
// inclusive range of writer offsets it produced. Session identifies the
// interpreter run that produced the event so overlapping renders can be
// told apart.
type EvalTemplateEvent struct {
	Tmpl    *Template
	Start   int // writer index of the first character written
	Stop    int // writer index of the last character written
	Session uuid.UUID
}

// EventTemplate returns the evaluated template instance.
func (e *EvalTemplateEvent) EventTemplate() *Template {
	return e.Tmpl
}

func (e *EvalTemplateEvent) String() string {
	return fmt.Sprintf("evalTemplate %s [%d..%d]", e.Tmpl.Name(), e.Start, e.Stop)
}

// recordEvalEvent appends an evaluation event to the interpreter's stream
// and to the parent instance. A parent's own event list is cleared the
// first time this interpreter run observes it, then appended to.
func (in *Interpreter) recordEvalEvent(self *Template, start, stop int) {
	e := &EvalTemplateEvent{Tmpl: self, Start: start, Stop: stop, Session: in.session}
	in.events = append(in.events, e)
	parent := self.EnclosingInstance
	if parent == nil {
		return
	}
	if in.eventsInitialized == nil {
		in.eventsInitialized = make(map[*Template]bool)
	}
	if !in.eventsInitialized[parent] {
		parent.interpEvents = nil
		in.eventsInitialized[parent] = true
	}
	parent.interpEvents = append(parent.interpEvents, e)
}

// Events returns the events recorded by this interpreter, or nil when the
// group does not have debugging enabled.
func (in *Interpreter) Events() []InterpEvent {
	return in.events
}

// ExecutionTrace returns the per-instruction trace lines recorded by this
// interpreter, or nil when tracing was off.
func (in *Interpreter) ExecutionTrace() []string {
	return in.executeTrace
}

// Session returns the render-session ID stamped on this interpreter's
// events.
func (in *Interpreter) Session() uuid.UUID {
	return in.session
}
