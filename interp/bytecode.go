package interp

import "fmt"

// ---------------------------------------------------------------------------
// Opcode definitions
// ---------------------------------------------------------------------------

// Opcode represents a single bytecode instruction.
//
// Every instruction is a 1-byte opcode followed by zero, one, or two
// operands. Operands are 2-byte big-endian unsigned shorts: string-pool
// indices, branch targets, option indices, and map-template counts.
type Opcode byte

// Loads
const (
	OpLoadStr     Opcode = 0x01 // push string from pool (16-bit index)
	OpLoadAttr    Opcode = 0x02 // push attribute, scope walk (16-bit name index)
	OpLoadLocal   Opcode = 0x03 // push attribute of current template only (16-bit name index)
	OpLoadProp    Opcode = 0x04 // pop receiver, push property (16-bit name index)
	OpLoadPropInd Opcode = 0x05 // pop property name then receiver, push property
)

// Template instantiation and attribute stores
const (
	OpNew          Opcode = 0x10 // instantiate template (16-bit name index)
	OpNewInd       Opcode = 0x11 // pop template name, instantiate
	OpSuperNew     Opcode = 0x12 // instantiate imported template (16-bit name index)
	OpStoreAttr    Opcode = 0x13 // pop value, store named arg into template on top (16-bit name index)
	OpStoreSoleArg Opcode = 0x14 // pop value, store sole arg into template on top
	OpSetPassThru  Opcode = 0x15 // mark template on top as pass-through
	OpStoreOption  Opcode = 0x16 // pop value, store into option array on top (16-bit option index)
)

// Output
const (
	OpWrite    Opcode = 0x20 // pop value, write without options
	OpWriteOpt Opcode = 0x21 // pop options then value, write with options
)

// Iteration maps
const (
	OpMap    Opcode = 0x30 // pop template name then attribute, single-template map
	OpRotMap Opcode = 0x31 // pop n template names then attribute (16-bit count)
	OpParMap Opcode = 0x32 // pop template name then n expressions (16-bit count)
)

// Control flow
const (
	OpBr  Opcode = 0x40 // unconditional branch (16-bit address)
	OpBrf Opcode = 0x41 // pop value, branch if not truthy (16-bit address)
)

// List construction and conversion
const (
	OpOptions Opcode = 0x50 // push fresh option array
	OpList    Opcode = 0x51 // push empty list
	OpAdd     Opcode = 0x52 // pop value, append to list on top
	OpToStr   Opcode = 0x53 // replace top with its string rendering
)

// Value transforms
const (
	OpFirst   Opcode = 0x60 // replace top with its first element
	OpLast    Opcode = 0x61 // replace top with its last element
	OpRest    Opcode = 0x62 // replace top with everything but the first element
	OpTrunc   Opcode = 0x63 // replace top with everything but the last element
	OpStrip   Opcode = 0x64 // replace top with non-null elements
	OpReverse Opcode = 0x65 // replace top with elements in reverse order
	OpLength  Opcode = 0x66 // replace top with its element count
	OpTrim    Opcode = 0x67 // replace string top with whitespace trimmed
	OpStrlen  Opcode = 0x68 // replace string top with its rune count
)

// Boolean operations
const (
	OpNot Opcode = 0x70 // replace top with negated truthiness
	OpOr  Opcode = 0x71 // pop right then left, push left||right truthiness
	OpAnd Opcode = 0x72 // pop right then left, push left&&right truthiness
)

// Whitespace management
const (
	OpIndent  Opcode = 0x80 // push indentation string (16-bit index)
	OpDedent  Opcode = 0x81 // pop indentation
	OpNewline Opcode = 0x82 // emit platform newline if the line produced output or follows newline/indent
)

// Misc
const (
	OpNoop Opcode = 0x90 // no operation
	OpPop  Opcode = 0x91 // discard top of stack
)

// ---------------------------------------------------------------------------
// Opcode metadata
// ---------------------------------------------------------------------------

// OpcodeInfo holds metadata about an opcode.
type OpcodeInfo struct {
	Name     string // human-readable name
	Operands int    // number of short operands (0 or 1)
}

var opcodeTable = map[Opcode]OpcodeInfo{
	OpLoadStr:     {"load_str", 1},
	OpLoadAttr:    {"load_attr", 1},
	OpLoadLocal:   {"load_local", 1},
	OpLoadProp:    {"load_prop", 1},
	OpLoadPropInd: {"load_prop_ind", 0},

	OpNew:          {"new", 1},
	OpNewInd:       {"new_ind", 0},
	OpSuperNew:     {"super_new", 1},
	OpStoreAttr:    {"store_attr", 1},
	OpStoreSoleArg: {"store_sole_arg", 0},
	OpSetPassThru:  {"set_pass_thru", 0},
	OpStoreOption:  {"store_option", 1},

	OpWrite:    {"write", 0},
	OpWriteOpt: {"write_opt", 0},

	OpMap:    {"map", 0},
	OpRotMap: {"rot_map", 1},
	OpParMap: {"par_map", 1},

	OpBr:  {"br", 1},
	OpBrf: {"brf", 1},

	OpOptions: {"options", 0},
	OpList:    {"list", 0},
	OpAdd:     {"add", 0},
	OpToStr:   {"tostr", 0},

	OpFirst:   {"first", 0},
	OpLast:    {"last", 0},
	OpRest:    {"rest", 0},
	OpTrunc:   {"trunc", 0},
	OpStrip:   {"strip", 0},
	OpReverse: {"reverse", 0},
	OpLength:  {"length", 0},
	OpTrim:    {"trim", 0},
	OpStrlen:  {"strlen", 0},

	OpNot: {"not", 0},
	OpOr:  {"or", 0},
	OpAnd: {"and", 0},

	OpIndent:  {"indent", 1},
	OpDedent:  {"dedent", 0},
	OpNewline: {"newline", 0},

	OpNoop: {"noop", 0},
	OpPop:  {"pop", 0},
}

// Info returns the metadata for an opcode.
func (op Opcode) Info() OpcodeInfo {
	if info, ok := opcodeTable[op]; ok {
		return info
	}
	return OpcodeInfo{Name: fmt.Sprintf("unknown_%02X", byte(op))}
}

// Name returns the human-readable name for an opcode.
func (op Opcode) Name() string {
	return op.Info().Name
}

// String implements the Stringer interface.
func (op Opcode) String() string {
	return op.Name()
}

// Valid reports whether op names a defined instruction.
func (op Opcode) Valid() bool {
	_, ok := opcodeTable[op]
	return ok
}

// getShort decodes a 2-byte big-endian unsigned short at code[ip:].
func getShort(code []byte, ip int) int {
	return int(code[ip])<<8 | int(code[ip+1])
}

// putShort encodes v as a 2-byte big-endian unsigned short.
func putShort(code []byte, ip int, v int) {
	code[ip] = byte(v >> 8)
	code[ip+1] = byte(v)
}

// ---------------------------------------------------------------------------
// BytecodeBuilder: Helper for constructing instruction streams
// ---------------------------------------------------------------------------

// BytecodeBuilder helps construct bytecode sequences. It is the target the
// compiler emits into; tests use it to assemble programs by hand.
type BytecodeBuilder struct {
	bytes []byte
}

// NewBytecodeBuilder creates a new bytecode builder.
func NewBytecodeBuilder() *BytecodeBuilder {
	return &BytecodeBuilder{
		bytes: make([]byte, 0, 64),
	}
}

// Bytes returns the constructed bytecode.
func (b *BytecodeBuilder) Bytes() []byte {
	return b.bytes
}

// Len returns the current length.
func (b *BytecodeBuilder) Len() int {
	return len(b.bytes)
}

// Emit appends an opcode with no operands.
func (b *BytecodeBuilder) Emit(op Opcode) {
	b.bytes = append(b.bytes, byte(op))
}

// EmitShort appends an opcode with a 16-bit big-endian operand.
func (b *BytecodeBuilder) EmitShort(op Opcode, operand int) {
	b.bytes = append(b.bytes, byte(op), byte(operand>>8), byte(operand))
}

// EmitBranch appends a branch opcode with a placeholder target and returns
// the operand position for later patching.
func (b *BytecodeBuilder) EmitBranch(op Opcode) int {
	b.bytes = append(b.bytes, byte(op), 0, 0)
	return len(b.bytes) - 2
}

// PatchBranch writes the current position as the target of a previously
// emitted branch operand.
func (b *BytecodeBuilder) PatchBranch(operandPos int) {
	putShort(b.bytes, operandPos, len(b.bytes))
}

// PatchBranchTo writes an explicit target address into a branch operand.
func (b *BytecodeBuilder) PatchBranchTo(operandPos, target int) {
	putShort(b.bytes, operandPos, target)
}
