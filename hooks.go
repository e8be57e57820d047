package asmcmp

import (
	"fmt"

	"golang.org/x/arch/x86/x86asm"
)

// tokenKind distinguishes the formatter hook categories named in spec.md
// §4.2. When no real or pseudo symbol matches, a value inside the code
// section becomes "sub_" regardless of kind; otherwise, for a value in
// another known section, address/displacement/immediate forms fall back to
// an "off_" pseudo symbol and memory/pointer forms to "unk_".
type tokenKind int

const (
	tokenAddress tokenKind = iota
	tokenDisplacement
	tokenImmediate
	tokenMemory
)

func (k tokenKind) unknownPrefix() string {
	if k == tokenMemory {
		return prefixUnk
	}
	return prefixOff
}

// hasIrrelevantSegment reports whether seg is a segment whose effective
// address is usually not a program-level address, per spec.md §8: true
// for ES/SS/FS/GS, false for CS/DS and for no segment at all. Unknown
// segments default to false (irrelevant-segment is an allow-list, never
// widened implicitly, per spec.md design notes).
func hasIrrelevantSegment(seg x86asm.Reg) bool {
	switch seg {
	case x86asm.ES, x86asm.SS, x86asm.FS, x86asm.GS:
		return true
	default:
		return false
	}
}

// resolveSymbolToken implements the formatter hook's symbol-substitution
// rule (spec.md §4.2): resolve effectiveAddr to a symbol, a pseudo
// symbol, a "sub_"/"off_"/"unk_" synthetic form, or nothing (fall
// through to default formatting). short controls whether a resolved
// symbol token is prefixed with "short " inside its quotes.
//
// fn may be nil, meaning no owning function (used when formatting
// outside of any function's pseudo-symbol scope).
func resolveSymbolToken(symtab *SymbolTable, fn *Function, kind tokenKind, effectiveAddr uint64, short bool) (token string, resolved bool) {
	relAddr := effectiveAddr - symtab.ImageBase()

	if sym := symtab.GetSymbolByAddress(relAddr); sym != nil {
		return quoteSymbol(sym.Name, short), true
	}
	if fn != nil {
		if ps, ok := fn.pseudoSymbols.get(effectiveAddr); ok {
			return quoteSymbol(ps.Name, short), true
		}
	}
	if cs := symtab.CodeSection(); cs != nil && cs.contains(relAddr) {
		return quoteSymbol(pseudoSymbolName(prefixSub, effectiveAddr), short), true
	}
	if symtab.FindSection(relAddr) != nil {
		return quoteSymbol(pseudoSymbolName(kind.unknownPrefix(), effectiveAddr), short), true
	}
	return "", false
}

func quoteSymbol(name string, short bool) string {
	if short {
		return fmt.Sprintf(`"short %s"`, name)
	}
	return fmt.Sprintf(`"%s"`, name)
}

// memHasBaseOrIndex reports whether a memory operand carries a base or
// index register. The displacement/immediate hooks must suppress symbol
// lookup in that case (spec.md §4.2: avoids promoting "[eax+0x400e00]"
// to a symbol).
func memHasBaseOrIndex(m x86asm.Mem) bool {
	return m.Base != 0 || m.Index != 0
}
