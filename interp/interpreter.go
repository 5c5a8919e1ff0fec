package interp

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/text/language"
)

// ---------------------------------------------------------------------------
// Interpreter: bytecode execution engine
// ---------------------------------------------------------------------------

// Interpreter executes template bytecode relative to a group. All operands
// go onto a fixed-capacity operand stack; embedded templates are rendered
// by recursive Exec calls on the same interpreter.
//
// One interpreter services one render request; it is not safe to share
// across concurrent renders.
type Interpreter struct {
	group  *Group
	locale language.Tag

	operands operandStack

	// currentIP names the opcode currently executing, for diagnostics.
	currentIP int

	// nwline counts characters written on the current template line,
	// which gates newline emission.
	nwline int

	// Trace dumps each instruction to the execution trace as it runs.
	Trace bool

	events            []InterpEvent
	executeTrace      []string
	eventsInitialized map[*Template]bool
	session           uuid.UUID
}

// NewInterpreter creates an interpreter for one render against group,
// using the undetermined locale.
func NewInterpreter(group *Group) *Interpreter {
	return NewInterpreterLocale(group, language.Und)
}

// NewInterpreterLocale creates an interpreter rendering with the given
// locale.
func NewInterpreterLocale(group *Group, locale language.Tag) *Interpreter {
	in := &Interpreter{
		group:    group,
		locale:   locale,
		operands: newOperandStack(DefaultOperandStackSize),
	}
	if group != nil && group.Debug {
		in.eventsInitialized = make(map[*Template]bool)
		in.session = uuid.New()
	}
	return in
}

// Exec executes self's bytecode, writing to out, and returns the number of
// characters written while this frame was active. Runtime failures are
// reported to the group's error manager and execution continues with a
// sentinel; nothing propagates as a panic or error return.
func (in *Interpreter) Exec(out Writer, self *Template) (n int) {
	start := out.Index()
	impl := self.Impl
	code := impl.Instrs
	prevOpcode := Opcode(0)
	ip := 0

	defer func() {
		if r := recover(); r != nil {
			fault, ok := r.(stackFault)
			if !ok {
				panic(r)
			}
			in.group.ErrMgr.InternalError(self, in.currentIP,
				fmt.Sprintf("%s\n%s", fault.msg, impl.Dump()))
		}
	}()

	for ip < impl.CodeSize {
		if in.Trace || in.group.Debug {
			in.trace(self, ip)
		}
		opcode := Opcode(code[ip])
		in.currentIP = ip
		ip++ // jump to next instruction or first byte of operand
		switch opcode {
		case OpLoadStr:
			strIndex := getShort(code, ip)
			ip += 2
			in.operands.push(impl.Strings[strIndex])

		case OpLoadAttr:
			nameIndex := getShort(code, ip)
			ip += 2
			name := impl.Strings[nameIndex]
			o := self.GetAttribute(name)
			if o == nil {
				if d := in.group.Dictionary(name); d != nil {
					o = map[string]any(d)
				}
			}
			in.operands.push(o)
			if o == nil {
				in.checkNullAttributeAgainstFormalArguments(self, name)
			}

		case OpLoadLocal:
			nameIndex := getShort(code, ip)
			ip += 2
			in.operands.push(self.LocalAttribute(impl.Strings[nameIndex]))

		case OpLoadProp:
			nameIndex := getShort(code, ip)
			ip += 2
			o := in.operands.pop()
			name := impl.Strings[nameIndex]
			in.operands.push(in.getObjectProperty(self, o, name))

		case OpLoadPropInd:
			propName := in.operands.pop()
			o := in.operands.top()
			in.operands.setTop(in.getObjectProperty(self, o, propName))

		case OpNew:
			nameIndex := getShort(code, ip)
			ip += 2
			name := impl.Strings[nameIndex]
			st := in.group.GetEmbeddedInstanceOf(self, ip, name)
			if st == nil {
				in.group.ErrMgr.RuntimeError(self, in.currentIP, ErrNoSuchTemplate, name)
				st = in.group.NewBlankTemplate()
			}
			in.operands.push(st)

		case OpNewInd:
			name := in.toString(self, in.operands.pop())
			st := in.group.GetEmbeddedInstanceOf(self, ip, name)
			if st == nil {
				in.group.ErrMgr.RuntimeError(self, in.currentIP, ErrNoSuchTemplate, name)
				st = in.group.NewBlankTemplate()
			}
			in.operands.push(st)

		case OpSuperNew:
			nameIndex := getShort(code, ip)
			ip += 2
			name := impl.Strings[nameIndex]
			// super.foo refers to foo in the imported group relative to
			// the native group of self, not the render-time group
			imported := impl.NativeGroup.LookupImportedTemplate(name)
			if imported == nil {
				in.group.ErrMgr.RuntimeError(self, in.currentIP, ErrNoImportedTemplate, name)
				in.operands.push(in.group.NewBlankTemplate())
				break
			}
			st := imported.NativeGroup.CreateStringTemplate()
			st.GroupThatCreatedThisInstance = in.group
			st.Impl = imported
			in.operands.push(st)

		case OpStoreAttr:
			nameIndex := getShort(code, ip)
			ip += 2
			name := impl.Strings[nameIndex]
			o := in.operands.pop()
			st := in.operands.top().(*Template)
			st.checkAttributeExists(self, in.currentIP, name)
			st.RawSetAttribute(name, o)

		case OpStoreSoleArg:
			o := in.operands.pop()
			st := in.operands.top().(*Template)
			in.setSoleArgument(self, st, o)

		case OpSetPassThru:
			st := in.operands.top().(*Template)
			st.PassThroughAttributes = true

		case OpStoreOption:
			optionIndex := getShort(code, ip)
			ip += 2
			o := in.operands.pop()
			// the options array stays on the stack until write_opt
			options := in.operands.top().([]any)
			options[optionIndex] = o

		case OpWrite:
			o := in.operands.pop()
			n1 := in.writeObjectNoOptions(out, self, o)
			n += n1
			in.nwline += n1

		case OpWriteOpt:
			options := in.operands.pop().([]any)
			o := in.operands.pop()
			n2 := in.writeObjectWithOptions(out, self, o, options)
			n += n2
			in.nwline += n2

		case OpMap:
			name := in.toString(self, in.operands.pop())
			o := in.operands.pop()
			in.mapAttribute(self, o, []string{name})

		case OpRotMap:
			nmaps := getShort(code, ip)
			ip += 2
			templates := make([]string, nmaps)
			for i := nmaps - 1; i >= 0; i-- {
				templates[nmaps-1-i] = in.toString(self, in.operands.peek(i))
			}
			for i := 0; i < nmaps; i++ {
				in.operands.pop()
			}
			o := in.operands.pop()
			in.mapAttribute(self, o, templates)

		case OpParMap:
			name := in.toString(self, in.operands.pop())
			nmaps := getShort(code, ip)
			ip += 2
			exprs := make([]any, nmaps)
			for i := nmaps - 1; i >= 0; i-- {
				exprs[nmaps-1-i] = in.operands.peek(i)
			}
			for i := 0; i < nmaps; i++ {
				in.operands.pop()
			}
			in.operands.push(in.parMap(self, exprs, name))

		case OpBr:
			ip = getShort(code, ip)

		case OpBrf:
			addr := getShort(code, ip)
			ip += 2
			o := in.operands.pop()
			if !truthy(o) {
				ip = addr
			}

		case OpOptions:
			in.operands.push(make([]any, NumOptions))

		case OpList:
			in.operands.push(AttributeList{})

		case OpAdd:
			o := in.operands.pop()
			list := in.operands.top().(AttributeList)
			in.operands.setTop(addToList(list, o))

		case OpToStr:
			in.operands.setTop(in.toString(self, in.operands.top()))

		case OpFirst:
			in.operands.setTop(first(in.operands.top()))

		case OpLast:
			in.operands.setTop(last(in.operands.top()))

		case OpRest:
			in.operands.setTop(rest(in.operands.top()))

		case OpTrunc:
			in.operands.setTop(trunc(in.operands.top()))

		case OpStrip:
			in.operands.setTop(strip(in.operands.top()))

		case OpReverse:
			in.operands.setTop(reverse(in.operands.top()))

		case OpLength:
			in.operands.setTop(length(in.operands.top()))

		case OpTrim:
			o := in.operands.pop()
			if s, ok := o.(string); ok {
				in.operands.push(strings.TrimSpace(s))
			} else {
				in.group.ErrMgr.RuntimeError(self, in.currentIP, ErrExpectingString,
					"trim", fmt.Sprintf("%T", o))
				in.operands.push(o)
			}

		case OpStrlen:
			o := in.operands.pop()
			if s, ok := o.(string); ok {
				in.operands.push(len([]rune(s)))
			} else {
				in.group.ErrMgr.RuntimeError(self, in.currentIP, ErrExpectingString,
					"strlen", fmt.Sprintf("%T", o))
				in.operands.push(0)
			}

		case OpNot:
			in.operands.setTop(!truthy(in.operands.top()))

		case OpOr:
			right := in.operands.pop()
			left := in.operands.pop()
			in.operands.push(truthy(left) || truthy(right))

		case OpAnd:
			right := in.operands.pop()
			left := in.operands.pop()
			in.operands.push(truthy(left) && truthy(right))

		case OpIndent:
			strIndex := getShort(code, ip)
			ip += 2
			out.PushIndentation(impl.Strings[strIndex])

		case OpDedent:
			out.PopIndentation()

		case OpNewline:
			if prevOpcode == OpNewline || prevOpcode == OpIndent || in.nwline > 0 {
				if _, err := out.Write("\n"); err != nil {
					in.group.ErrMgr.IOError(self, err)
				}
			}
			in.nwline = 0

		case OpNoop:

		case OpPop:
			in.operands.pop()

		default:
			in.group.ErrMgr.InternalError(self, in.currentIP,
				fmt.Sprintf("invalid bytecode @ %d: %d\n%s", ip-1, opcode, impl.Dump()))
			return n
		}
		prevOpcode = opcode
	}

	if in.group.Debug {
		in.recordEvalEvent(self, start, out.Index()-1)
	}
	return n
}

// ---------------------------------------------------------------------------
// Iteration maps
// ---------------------------------------------------------------------------

// mapAttribute applies one or more templates across an attribute and
// pushes the result: for an iterable attribute, a list of instances with
// the template names rotating across the non-nil elements; for a single
// scalar, one instance of the first template. Every instance gets the
// element bound as its sole argument plus the iteration indices i0 and i.
func (in *Interpreter) mapAttribute(self *Template, attr any, templates []string) {
	if attr == nil {
		in.operands.push(nil)
		return
	}
	attr = toIterator(attr)
	if iter, ok := attr.(Iterator); ok {
		mapped := AttributeList{}
		i0 := 0
		i := 1
		ti := 0
		for iter.HasNext() {
			iterValue := iter.Next()
			if iterValue == nil {
				continue
			}
			templateIndex := ti % len(templates) // rotate through
			ti++
			name := templates[templateIndex]
			st := in.group.GetEmbeddedInstanceOf(self, in.currentIP, name)
			if st == nil {
				in.group.ErrMgr.RuntimeError(self, in.currentIP, ErrNoSuchTemplate, name)
				st = in.group.NewBlankTemplate()
				st.EnclosingInstance = self
			}
			in.setSoleArgument(self, st, iterValue)
			st.RawSetAttribute("i0", i0)
			st.RawSetAttribute("i", i)
			mapped = append(mapped, st)
			i0++
			i++
		}
		in.operands.push(mapped)
		return
	}
	// single value: apply the first template to the attribute itself
	st := in.group.GetInstanceOf(templates[0])
	if st == nil {
		in.group.ErrMgr.RuntimeError(self, in.currentIP, ErrNoSuchTemplate, templates[0])
		in.operands.push(in.group.NewBlankTemplate())
		return
	}
	in.setSoleArgument(self, st, attr)
	st.RawSetAttribute("i0", 0)
	st.RawSetAttribute("i", 1)
	in.operands.push(st)
}

// parMap zips several attribute expressions positionally into one
// template's formal arguments, one instance per round, until every
// iterator is exhausted. An iterator that ends early leaves its formal
// unset for the remaining rounds.
func (in *Interpreter) parMap(self *Template, exprs []any, template string) any {
	if len(exprs) == 0 || template == "" {
		return nil // nothing to apply
	}
	iters := make([]Iterator, len(exprs))
	for i, attr := range exprs {
		if attr != nil {
			iters[i] = forceIterator(attr)
		}
	}

	code := in.group.LookupTemplate(template)
	if code == nil {
		in.group.ErrMgr.RuntimeError(self, in.currentIP, ErrNoSuchTemplate, template)
		return nil
	}
	formalArguments := code.FormalArguments
	if len(formalArguments) == 0 {
		in.group.ErrMgr.RuntimeError(self, in.currentIP, ErrMissingFormalArguments)
		return nil
	}

	numAttributes := len(iters)
	if len(formalArguments) != numAttributes {
		in.group.ErrMgr.RuntimeError(self, in.currentIP, ErrMapArgumentCountMismatch,
			numAttributes, len(formalArguments))
		// truncate to the smaller count
		if len(formalArguments) < numAttributes {
			numAttributes = len(formalArguments)
		}
	}

	// keep walking while at least one attribute has values
	results := AttributeList{}
	round := 0
	for {
		numEmpty := 0
		embedded := in.group.GetEmbeddedInstanceOf(self, in.currentIP, template)
		embedded.RawSetAttribute("i0", round)
		embedded.RawSetAttribute("i", round+1)
		for a := 0; a < numAttributes; a++ {
			it := iters[a]
			if it != nil && it.HasNext() {
				argName := formalArguments[a].Name
				embedded.checkAttributeExists(self, in.currentIP, argName)
				embedded.RawSetAttribute(argName, it.Next())
			} else {
				numEmpty++
			}
		}
		if numEmpty == numAttributes {
			break
		}
		results = append(results, embedded)
		round++
	}
	return results
}

// ---------------------------------------------------------------------------
// Argument binding
// ---------------------------------------------------------------------------

// setSoleArgument binds one unnamed value into st: under the implicit name
// "it" when st declares no formals, else into the first formal. More than
// one declared formal is reported but still binds the first.
func (in *Interpreter) setSoleArgument(self *Template, st *Template, attr any) {
	name := "it"
	nargs := len(st.Impl.FormalArguments)
	if nargs > 0 {
		if nargs != 1 {
			in.group.ErrMgr.RuntimeError(self, in.currentIP, ErrExpectingSingleArgument,
				st.Name(), nargs)
		}
		name = st.Impl.FormalArguments[0].Name
	}
	st.RawSetAttribute(name, attr)
}

// setDefaultArguments injects default values for formals the invoker left
// unset. Defaults evaluate in the invoked template's own scope, so they
// can see its attributes and anything it inherits. A default shaped
// {<(...)>} is rendered to a string now; any other default binds the
// sub-template itself for lazy evaluation.
func (in *Interpreter) setDefaultArguments(invoked *Template) {
	if invoked.Impl == nil || len(invoked.Impl.FormalArguments) == 0 {
		return
	}
	for _, arg := range invoked.Impl.FormalArguments {
		if arg.CompiledDefaultValue == nil || invoked.LocalAttribute(arg.Name) != nil {
			continue
		}
		defaultArgST := in.group.CreateStringTemplate()
		defaultArgST.GroupThatCreatedThisInstance = in.group
		defaultArgST.Impl = arg.CompiledDefaultValue
		if strings.HasPrefix(arg.DefaultValueText, "{<(") &&
			strings.HasSuffix(arg.DefaultValueText, ")>}") {
			invoked.RawSetAttribute(arg.Name, in.toString(invoked, defaultArgST))
		} else {
			invoked.RawSetAttribute(arg.Name, defaultArgST)
		}
	}
}

// checkNullAttributeAgainstFormalArguments validates a reference that
// resolved to nil: it is legitimate when any template up the enclosing
// chain declares the name as a formal argument. Templates whose formals
// were never declared skip the check.
func (in *Interpreter) checkNullAttributeAgainstFormalArguments(self *Template, name string) {
	if !self.Impl.HasFormalArgs() {
		return
	}
	for p := self; p != nil; p = p.EnclosingInstance {
		if p.Impl != nil && p.Impl.FormalArgument(name) != nil {
			return
		}
	}
	in.group.ErrMgr.RuntimeError(self, in.currentIP, ErrNoAttributeDefinition, name)
}

// ---------------------------------------------------------------------------
// Trace
// ---------------------------------------------------------------------------

// trace records one disassembled instruction with the operand stack, the
// enclosing-instance chain, the stack pointer, and the line character
// count.
func (in *Interpreter) trace(self *Template, ip int) {
	var tr strings.Builder
	name := self.Impl.Name + ":"
	if self.Impl.Name == UnknownName {
		name = ""
	}
	fmt.Fprintf(&tr, "%-40s", name+disassembleOne(self.Impl, ip))
	tr.WriteString("\tstack=[")
	for _, o := range in.operands.slice() {
		printForTrace(&tr, o)
	}
	fmt.Fprintf(&tr, " ], calls=%s, sp=%d, nw=%d",
		self.EnclosingInstanceStackString(), in.operands.sp, in.nwline)
	s := tr.String()
	if in.group.Debug {
		in.executeTrace = append(in.executeTrace, s)
	}
	if in.Trace {
		fmt.Println(s)
	}
}

func printForTrace(tr *strings.Builder, o any) {
	if st, ok := o.(*Template); ok {
		if st.Impl == nil {
			tr.WriteString("bad-template()")
			return
		}
		fmt.Fprintf(tr, " %s()", st.Impl.Name)
		return
	}
	o = toIterator(o)
	if it, ok := o.(Iterator); ok {
		tr.WriteString(" [")
		for it.HasNext() {
			printForTrace(tr, it.Next())
		}
		tr.WriteString(" ]")
		return
	}
	fmt.Fprintf(tr, " %v", o)
}
