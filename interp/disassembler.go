package interp

import (
	"fmt"
	"strings"
)

// ---------------------------------------------------------------------------
// Disassembly
// ---------------------------------------------------------------------------

// DisassembleInstruction disassembles the instruction at ip in ct and writes
// it to buf. It returns the position of the next instruction. Short operands
// that index the string pool are rendered with the pooled string alongside
// the index.
func DisassembleInstruction(buf *strings.Builder, ct *CompiledTemplate, ip int) int {
	op := Opcode(ct.Instrs[ip])
	info := op.Info()
	fmt.Fprintf(buf, "%04d:\t%s", ip, info.Name)
	ip++
	if info.Operands == 0 {
		return ip
	}
	operand := getShort(ct.Instrs, ip)
	ip += 2
	switch op {
	case OpLoadStr, OpLoadAttr, OpLoadLocal, OpLoadProp, OpNew, OpSuperNew,
		OpStoreAttr, OpIndent:
		fmt.Fprintf(buf, " #%d:%q", operand, poolString(ct, operand))
	case OpBr, OpBrf:
		fmt.Fprintf(buf, " %d", operand)
	default:
		fmt.Fprintf(buf, " %d", operand)
	}
	return ip
}

// Disassemble returns a full disassembly of a compiled template.
func Disassemble(ct *CompiledTemplate) string {
	var buf strings.Builder
	ip := 0
	for ip < ct.CodeSize {
		if buf.Len() > 0 {
			buf.WriteByte('\n')
		}
		op := Opcode(ct.Instrs[ip])
		if !op.Valid() {
			fmt.Fprintf(&buf, "%04d:\t%s", ip, op.Name())
			ip++
			continue
		}
		ip = DisassembleInstruction(&buf, ct, ip)
	}
	return buf.String()
}

// disassembleOne renders a single instruction for trace output.
func disassembleOne(ct *CompiledTemplate, ip int) string {
	var buf strings.Builder
	op := Opcode(ct.Instrs[ip])
	if !op.Valid() {
		fmt.Fprintf(&buf, "%04d:\t%s", ip, op.Name())
		return buf.String()
	}
	DisassembleInstruction(&buf, ct, ip)
	return buf.String()
}

func poolString(ct *CompiledTemplate, idx int) string {
	if idx < 0 || idx >= len(ct.Strings) {
		return "<bad-index>"
	}
	return ct.Strings[idx]
}

func sprintfDumpString(i int, s string) string {
	return fmt.Sprintf("%04d: %q\n", i, s)
}
