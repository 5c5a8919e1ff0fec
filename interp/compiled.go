package interp

// ---------------------------------------------------------------------------
// CompiledTemplate: bytecode and constant pool for one template
// ---------------------------------------------------------------------------

// UnknownName names templates created without a name, such as anonymous
// sub-templates and blank sentinels.
const UnknownName = "unknown"

// CompiledTemplate is the immutable compiled form of a template: its
// instruction stream, string constant pool, and formal-argument table.
// The compiler produces these; the interpreter only reads them.
type CompiledTemplate struct {
	Name string

	// Instrs holds the instruction stream; only Instrs[0:CodeSize] is
	// executed.
	Instrs   []byte
	CodeSize int

	// Strings is the indexed constant pool.
	Strings []string

	// FormalArguments is ordered; positional order is argument order.
	// A nil slice means the formals were never declared and existence
	// checks are skipped. An empty non-nil slice means zero declared
	// arguments.
	FormalArguments []*FormalArgument

	// NativeGroup is the group where this template was defined. It can
	// differ from the group in effect during a render and is what
	// super-style imported lookups resolve against.
	NativeGroup *Group
}

// FormalArgument describes one declared template parameter.
type FormalArgument struct {
	Name string

	// Index is the argument's position in declaration order.
	Index int

	// CompiledDefaultValue is the compiled default-value sub-template,
	// or nil when the argument has no default.
	CompiledDefaultValue *CompiledTemplate

	// DefaultValueText is the raw source text of the default value. A
	// default shaped {<(...)>} is evaluated eagerly to a string at
	// injection time; everything else binds the sub-template itself.
	DefaultValueText string
}

// FormalArgument returns the declared argument with the given name, or nil.
func (c *CompiledTemplate) FormalArgument(name string) *FormalArgument {
	for _, a := range c.FormalArguments {
		if a.Name == name {
			return a
		}
	}
	return nil
}

// HasFormalArgs reports whether the formal-argument table was declared.
func (c *CompiledTemplate) HasFormalArgs() bool {
	return c.FormalArguments != nil
}

// Disassemble returns a disassembly of the template's bytecode.
func (c *CompiledTemplate) Disassemble() string {
	return Disassemble(c)
}

// Dump returns the template's name, disassembly, and string pool, used
// when reporting internal errors.
func (c *CompiledTemplate) Dump() string {
	s := c.Name + ":\n" + c.Disassemble()
	s += "\nstrings:\n"
	for i, str := range c.Strings {
		s += sprintfDumpString(i, str)
	}
	return s
}

// ---------------------------------------------------------------------------
// TemplateBuilder: Helper for constructing compiled templates
// ---------------------------------------------------------------------------

// TemplateBuilder helps construct CompiledTemplate instances. The compiler
// uses it when lowering template expressions; tests assemble programs with
// it directly.
type TemplateBuilder struct {
	ct       *CompiledTemplate
	bytecode *BytecodeBuilder
	pool     map[string]int
}

// NewTemplateBuilder creates a builder for a template with the given name.
// The formal-argument table starts out undeclared.
func NewTemplateBuilder(name string) *TemplateBuilder {
	return &TemplateBuilder{
		ct:       &CompiledTemplate{Name: name},
		bytecode: NewBytecodeBuilder(),
		pool:     make(map[string]int),
	}
}

// String interns s into the constant pool and returns its index.
func (b *TemplateBuilder) String(s string) int {
	if idx, ok := b.pool[s]; ok {
		return idx
	}
	idx := len(b.ct.Strings)
	b.ct.Strings = append(b.ct.Strings, s)
	b.pool[s] = idx
	return idx
}

// DeclareArgs declares the formal-argument table (possibly empty).
func (b *TemplateBuilder) DeclareArgs(names ...string) *TemplateBuilder {
	if b.ct.FormalArguments == nil {
		b.ct.FormalArguments = []*FormalArgument{}
	}
	for _, name := range names {
		b.Arg(name)
	}
	return b
}

// Arg appends a formal argument and returns it for further configuration.
func (b *TemplateBuilder) Arg(name string) *FormalArgument {
	arg := &FormalArgument{Name: name, Index: len(b.ct.FormalArguments)}
	b.ct.FormalArguments = append(b.ct.FormalArguments, arg)
	return arg
}

// Emit appends an opcode with no operands.
func (b *TemplateBuilder) Emit(op Opcode) {
	b.bytecode.Emit(op)
}

// EmitShort appends an opcode with a 16-bit operand.
func (b *TemplateBuilder) EmitShort(op Opcode, operand int) {
	b.bytecode.EmitShort(op, operand)
}

// EmitString appends an opcode whose operand is the pool index of s.
func (b *TemplateBuilder) EmitString(op Opcode, s string) {
	b.bytecode.EmitShort(op, b.String(s))
}

// EmitBranch appends a branch with a placeholder target; see BytecodeBuilder.
func (b *TemplateBuilder) EmitBranch(op Opcode) int {
	return b.bytecode.EmitBranch(op)
}

// PatchBranch resolves a branch operand to the current position.
func (b *TemplateBuilder) PatchBranch(operandPos int) {
	b.bytecode.PatchBranch(operandPos)
}

// Pos returns the current bytecode position.
func (b *TemplateBuilder) Pos() int {
	return b.bytecode.Len()
}

// Build finalizes and returns the compiled template.
func (b *TemplateBuilder) Build() *CompiledTemplate {
	b.ct.Instrs = b.bytecode.Bytes()
	b.ct.CodeSize = b.bytecode.Len()
	return b.ct
}
