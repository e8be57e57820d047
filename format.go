package asmcmp

import (
	"fmt"
	"strings"

	"golang.org/x/arch/x86/x86asm"
)

// formatInstruction renders inst (whose first byte sits at addr) in the
// dialect selected by setup, substituting symbols via the formatter
// hooks described in spec.md §4.2. fn may be nil when formatting outside
// of any function's pseudo-symbol scope. Returns the rendered text,
// whether/how far inst is a relative branch, and whether that branch is
// a short (one-byte relative) form.
func formatInstruction(setup *Setup, fn *Function, inst x86asm.Inst, addr uint64) (text string, isJump bool, jumpLen int32, short bool) {
	target, isShort, hasRel := relTarget(inst, addr)

	var args []string
	for _, a := range inst.Args {
		if a == nil {
			break
		}
		args = append(args, formatArg(setup, fn, a, target, isShort, inst.MemBytes))
	}

	mnemonic := mnemonicText(setup.format, inst.Op)
	if setup.format == FormatATTGas {
		mnemonic += attSizeSuffix(inst)
		args = reverseATT(args, inst.Args)
	}

	if len(args) == 0 {
		text = mnemonic
	} else {
		text = mnemonic + " " + strings.Join(args, ", ")
	}

	if hasRel {
		isJump = true
		jumpLen = int32(int64(target) - int64(addr))
		short = isShort
	}
	return text, isJump, jumpLen, short
}

func mnemonicText(format AsmFormat, op x86asm.Op) string {
	name := op.String()
	if format == FormatMASM {
		return strings.ToUpper(name)
	}
	return strings.ToLower(name)
}

// reverseATT swaps a two-operand argument list into AT&T's source-first
// order. Single-operand forms (branch targets, unary ops) and forms with
// more than two arguments are left alone: AT&T's reversal rule only
// unambiguously applies to the common dst,src two-operand case.
func reverseATT(texts []string, args x86asm.Args) []string {
	n := 0
	for _, a := range args {
		if a == nil {
			break
		}
		n++
	}
	if n != 2 {
		return texts
	}
	if _, ok := args[0].(x86asm.Rel); ok {
		return texts
	}
	return []string{texts[1], texts[0]}
}

func formatArg(setup *Setup, fn *Function, arg x86asm.Arg, relTargetAddr uint64, short bool, memBytes int) string {
	switch a := arg.(type) {
	case x86asm.Reg:
		return regName(setup.format, a)
	case x86asm.Imm:
		return formatImmediate(setup, fn, uint64(a))
	case x86asm.Rel:
		return formatAddress(setup, fn, relTargetAddr, short)
	case x86asm.Mem:
		return formatMem(setup, fn, a, memBytes)
	default:
		return fmt.Sprintf("?%v", arg)
	}
}

func regName(format AsmFormat, r x86asm.Reg) string {
	name := r.String()
	if format == FormatATTGas {
		return "%" + strings.ToLower(name)
	}
	if format == FormatMASM {
		return strings.ToUpper(name)
	}
	return strings.ToLower(name)
}

func formatImmediate(setup *Setup, fn *Function, value uint64) string {
	if tok, ok := resolveSymbolToken(setup.symtab, fn, tokenImmediate, value, false); ok {
		return immPrefix(setup.format) + tok
	}
	return immPrefix(setup.format) + hexLiteral(setup.format, value)
}

func formatAddress(setup *Setup, fn *Function, target uint64, short bool) string {
	if tok, ok := resolveSymbolToken(setup.symtab, fn, tokenAddress, target, short); ok {
		return tok
	}
	return hexLiteral(setup.format, target)
}

func formatMem(setup *Setup, fn *Function, m x86asm.Mem, memBytes int) string {
	if setup.format == FormatATTGas {
		return formatMemATT(setup, fn, m)
	}

	irrelevant := hasIrrelevantSegment(m.Segment)
	if !memHasBaseOrIndex(m) && !irrelevant {
		if tok, ok := resolveSymbolToken(setup.symtab, fn, tokenMemory, uint64(m.Disp), false); ok {
			return sizePrefix(setup.format, memBytes) + "[" + tok + "]"
		}
	}

	var sb strings.Builder
	if m.Segment != 0 && !irrelevant {
		sb.WriteString(regName(setup.format, m.Segment))
		sb.WriteByte(':')
	}
	sb.WriteByte('[')
	wrote := false
	if m.Base != 0 {
		sb.WriteString(regName(setup.format, m.Base))
		wrote = true
	}
	if m.Index != 0 {
		if wrote {
			sb.WriteByte('+')
		}
		sb.WriteString(regName(setup.format, m.Index))
		sb.WriteByte('*')
		fmt.Fprintf(&sb, "%d", m.Scale)
		wrote = true
	}
	if m.Disp != 0 || !wrote {
		if wrote {
			if m.Disp < 0 {
				sb.WriteByte('-')
				fmt.Fprintf(&sb, "%s", hexLiteral(setup.format, uint64(-m.Disp)))
			} else {
				sb.WriteByte('+')
				fmt.Fprintf(&sb, "%s", hexLiteral(setup.format, uint64(m.Disp)))
			}
		} else {
			sb.WriteString(hexLiteral(setup.format, uint64(m.Disp)))
		}
	}
	sb.WriteByte(']')
	return sizePrefix(setup.format, memBytes) + sb.String()
}

// formatMemATT renders m in AT&T syntax: SEG:DISP(BASE,INDEX,SCALE),
// with the parenthesized part omitted entirely when there is no base or
// index register.
func formatMemATT(setup *Setup, fn *Function, m x86asm.Mem) string {
	irrelevant := hasIrrelevantSegment(m.Segment)
	hasBaseOrIndex := memHasBaseOrIndex(m)
	if !hasBaseOrIndex && !irrelevant {
		if tok, ok := resolveSymbolToken(setup.symtab, fn, tokenMemory, uint64(m.Disp), false); ok {
			return tok
		}
	}

	var sb strings.Builder
	if m.Segment != 0 && !irrelevant {
		sb.WriteString(regName(setup.format, m.Segment))
		sb.WriteByte(':')
	}
	if m.Disp != 0 || !hasBaseOrIndex {
		if m.Disp < 0 {
			sb.WriteByte('-')
			sb.WriteString(hexLiteral(setup.format, uint64(-m.Disp)))
		} else {
			sb.WriteString(hexLiteral(setup.format, uint64(m.Disp)))
		}
	}
	if hasBaseOrIndex {
		sb.WriteByte('(')
		if m.Base != 0 {
			sb.WriteString(regName(setup.format, m.Base))
		}
		if m.Index != 0 {
			sb.WriteByte(',')
			sb.WriteString(regName(setup.format, m.Index))
			fmt.Fprintf(&sb, ",%d", m.Scale)
		}
		sb.WriteByte(')')
	}
	return sb.String()
}

func immPrefix(format AsmFormat) string {
	if format == FormatATTGas {
		return "$"
	}
	return ""
}

func hexLiteral(format AsmFormat, v uint64) string {
	if format == FormatMASM {
		return fmt.Sprintf("%Xh", v)
	}
	return fmt.Sprintf("0x%x", v)
}

// sizePrefix returns the Intel/MASM "byte/word/dword ptr" keyword for a
// memory operand. Only emitted for Intel-family dialects: spec.md §6
// requires the force-operand-size switch always on, which for AT&T
// syntax is instead expressed via the mnemonic suffix (attSizeSuffix).
func sizePrefix(format AsmFormat, bytes int) string {
	if format == FormatATTGas {
		return ""
	}
	var size string
	switch bytes {
	case 1:
		size = "byte ptr "
	case 2:
		size = "word ptr "
	case 4:
		size = "dword ptr "
	case 8:
		size = "qword ptr "
	case 10:
		size = "tbyte ptr "
	case 16:
		size = "xmmword ptr "
	default:
		return ""
	}
	if format == FormatMASM {
		return strings.ToUpper(size)
	}
	return size
}

func attSizeSuffix(inst x86asm.Inst) string {
	switch inst.MemBytes {
	case 1:
		return "b"
	case 2:
		return "w"
	case 4:
		return "l"
	case 8:
		return "q"
	default:
		return ""
	}
}
