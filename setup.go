package asmcmp

import "golang.org/x/arch/x86/x86asm"

// AsmFormat selects the textual dialect the formatter hooks emit.
// Mirrors the CLI's --format flag (spec.md §6): MASM selects Intel/MASM
// syntax, AGAS selects AT&T syntax, IGAS and DEFAULT both select Intel.
type AsmFormat int

const (
	FormatDefault AsmFormat = iota
	FormatIntelGas
	FormatATTGas
	FormatMASM
)

// decodeMode is the only instruction-set variant this core supports:
// 32-bit x86.
const decodeMode = 32

// Setup holds everything shared across many Function.Disassemble calls
// against the same executable: the decode mode, the chosen textual
// dialect, and the force-operand-size switch the spec requires always on.
// A Setup is read-only once constructed and may be shared by concurrent
// disassemblies of distinct functions (spec.md §5).
type Setup struct {
	symtab           *SymbolTable
	format           AsmFormat
	forceOperandSize bool // spec.md §6: always set on
}

// NewSetup builds a Setup bound to the given symbol table view and
// textual dialect.
func NewSetup(symtab *SymbolTable, format AsmFormat) *Setup {
	return &Setup{symtab: symtab, format: format, forceOperandSize: true}
}

// decode runs the decode backend over src, assuming 32-bit x86.
func (s *Setup) decode(src []byte) (x86asm.Inst, error) {
	return x86asm.Decode(src, decodeMode)
}

// relTarget reports the absolute target address of inst's PC-relative
// operand, if it has one, given inst's own absolute address. ok is false
// for instructions with no relative operand. short is true only when the
// first operand is a relative immediate one byte wide (spec.md §8: short
// jumps are detected only in that case), which PCRel reports directly.
func relTarget(inst x86asm.Inst, addr uint64) (target uint64, short bool, ok bool) {
	for _, a := range inst.Args {
		if a == nil {
			break
		}
		if rel, isRel := a.(x86asm.Rel); isRel {
			target = addr + uint64(inst.Len) + uint64(int64(rel))
			short = inst.PCRel == 1
			return target, short, true
		}
	}
	return 0, false, false
}
