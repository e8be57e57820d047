package asmcmp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"golang.org/x/arch/x86/x86asm"
)

func TestFormatMem_ATTGasUsesParenSyntax(t *testing.T) {
	symtab := codeSymtab(make([]byte, 0x10), 0)
	setup := NewSetup(symtab, FormatATTGas)

	m := x86asm.Mem{Base: x86asm.EAX, Index: x86asm.EBX, Scale: 4, Disp: 8}
	assert.Equal(t, "0x8(%eax,%ebx,4)", formatMem(setup, nil, m, 4))
}

func TestFormatMem_ATTGasNoBaseOrIndexOmitsParens(t *testing.T) {
	symtab := codeSymtab(make([]byte, 0x10), 0)
	setup := NewSetup(symtab, FormatATTGas)

	m := x86asm.Mem{Disp: 0x400000}
	got := formatMem(setup, nil, m, 4)
	assert.NotContains(t, got, "(")
	assert.NotContains(t, got, "[")
}

func TestFormatMem_IntelDialectsStillUseBrackets(t *testing.T) {
	symtab := codeSymtab(make([]byte, 0x10), 0)
	setup := NewSetup(symtab, FormatDefault)

	m := x86asm.Mem{Base: x86asm.EAX, Disp: 4}
	got := formatMem(setup, nil, m, 4)
	assert.Contains(t, got, "[")
	assert.Contains(t, got, "]")
}
