package asmcmp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func codeSymtab(code []byte, imageBase uint64) *SymbolTable {
	sections := []Section{{Name: ".text", Address: 0, Size: uint64(len(code)), Code: code}}
	return NewSymbolTable(imageBase, sections)
}

func TestFunction_Disassemble_SimpleSequence(t *testing.T) {
	code := []byte{0x90, 0x90, 0xc3} // nop, nop, ret
	symtab := codeSymtab(code, 0x400000)
	setup := NewSetup(symtab, FormatDefault)

	fn := NewFunction()
	fn.Disassemble(setup, symtab, 0x400000, 0x400003)

	require.Len(t, fn.Instructions, 3)
	assert.Equal(t, uint64(0x400000), fn.Instructions[0].Address)
	assert.Equal(t, "nop", fn.Instructions[0].Text)
	assert.Equal(t, uint64(0x400001), fn.Instructions[1].Address)
	assert.Equal(t, uint64(0x400002), fn.Instructions[2].Address)
	assert.Equal(t, "ret", fn.Instructions[2].Text)
	for _, inst := range fn.Instructions {
		assert.False(t, inst.Invalid)
	}
}

func TestFunction_Disassemble_ShortJumpCreatesLocPseudoSymbol(t *testing.T) {
	code := []byte{0xeb, 0x00, 0xc3} // jmp short +0, ret
	symtab := codeSymtab(code, 0x400000)
	setup := NewSetup(symtab, FormatDefault)

	fn := NewFunction()
	fn.Disassemble(setup, symtab, 0x400000, 0x400003)

	require.Len(t, fn.Instructions, 2)
	jump := fn.Instructions[0]
	assert.True(t, jump.IsJump)
	assert.True(t, jump.ShortJump)
	assert.Equal(t, int32(2), jump.JumpLen)
	assert.Contains(t, jump.Text, `"short loc_400002"`)

	target := fn.Instructions[1]
	assert.True(t, target.IsSymbol)
	assert.Equal(t, uint64(0x400002), target.Address)

	ps, ok := fn.PseudoSymbol(0x400002)
	require.True(t, ok)
	assert.Equal(t, "loc_400002", ps.Name)
}

func TestFunction_Disassemble_CallCreatesSubPseudoSymbol(t *testing.T) {
	// call rel32 targeting the very next instruction (rel32 = 0).
	code := []byte{0xe8, 0x00, 0x00, 0x00, 0x00, 0xc3}
	symtab := codeSymtab(code, 0x400000)
	setup := NewSetup(symtab, FormatDefault)

	fn := NewFunction()
	fn.Disassemble(setup, symtab, 0x400000, uint64(len(code))+0x400000)

	require.Len(t, fn.Instructions, 2)
	call := fn.Instructions[0]
	assert.Contains(t, call.Text, `"sub_400005"`)

	ps, ok := fn.PseudoSymbol(0x400005)
	require.True(t, ok)
	assert.Equal(t, "sub_400005", ps.Name)
}

func TestFunction_Disassemble_BranchOutsideRangeCreatesNoPseudoSymbol(t *testing.T) {
	code := []byte{0xeb, 0x10, 0xc3} // jmp short +0x10 (out of range), ret
	symtab := codeSymtab(code, 0x400000)
	setup := NewSetup(symtab, FormatDefault)

	fn := NewFunction()
	fn.Disassemble(setup, symtab, 0x400000, 0x400003)

	require.Len(t, fn.Instructions, 2)
	assert.Equal(t, 0, fn.PseudoSymbolCount())
}

func TestFunction_Disassemble_EmptyRangeIsValid(t *testing.T) {
	code := []byte{0x90}
	symtab := codeSymtab(code, 0x400000)
	setup := NewSetup(symtab, FormatDefault)

	fn := NewFunction()
	fn.Disassemble(setup, symtab, 0x400000, 0x400000)

	assert.Empty(t, fn.Instructions)
}

func TestFunction_Disassemble_OutOfSectionRangeYieldsEmptyFunction(t *testing.T) {
	code := []byte{0x90}
	symtab := codeSymtab(code, 0x400000)
	setup := NewSetup(symtab, FormatDefault)

	fn := NewFunction()
	fn.Disassemble(setup, symtab, 0x500000, 0x500010)

	assert.Empty(t, fn.Instructions)
}

func TestFunction_Disassemble_RealSymbolPreferredOverPseudo(t *testing.T) {
	code := []byte{0xeb, 0x00, 0xc3}
	symtab := codeSymtab(code, 0x400000)
	symtab.AddSymbol(ExeSymbol{Name: "target", Address: 2}, false)
	setup := NewSetup(symtab, FormatDefault)

	fn := NewFunction()
	fn.Disassemble(setup, symtab, 0x400000, 0x400003)

	assert.Contains(t, fn.Instructions[0].Text, `"short target"`)
	assert.Equal(t, 0, fn.PseudoSymbolCount())
}
