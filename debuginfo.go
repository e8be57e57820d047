package asmcmp

import "fmt"

// DebugInfo is the minimal per-function metadata collaborator described
// in spec.md §6: decorated/undecorated/global names, the function's
// virtual address range, its owning compiland/source-file indices, and a
// per-function line table. Grounded on the symbol-resolver/debug-info
// pattern in Manu343726-cucaracha's pkg/hw/cpu/mc package, adapted here
// from a single CPU's symbol table to per-function PE/COFF-style debug
// metadata.
type DebugInfo struct {
	compilands  []string
	sourceFiles []string
	entries     []debugEntry
	byAddress   map[uint64]int
}

type debugEntry struct {
	DecoratedName   string
	UndecoratedName string
	GlobalName      string

	BeginAddress uint64
	Length       uint64

	CompilandIndex  int
	SourceFileIndex int

	Lines []LineEntry
}

// NewDebugInfo returns an empty DebugInfo.
func NewDebugInfo() *DebugInfo {
	return &DebugInfo{byAddress: make(map[uint64]int)}
}

// AddCompiland interns a compiland name and returns its index.
func (d *DebugInfo) AddCompiland(name string) int {
	return internName(&d.compilands, name)
}

// AddSourceFile interns a source-file name and returns its index.
func (d *DebugInfo) AddSourceFile(name string) int {
	return internName(&d.sourceFiles, name)
}

func internName(names *[]string, name string) int {
	for i, n := range *names {
		if n == name {
			return i
		}
	}
	*names = append(*names, name)
	return len(*names) - 1
}

// AddFunction registers metadata for one function. lines must
// monotonically cover [0, length) (spec.md §6); AddFunction does not
// validate this, callers of the excluded real loader are expected to.
func (d *DebugInfo) AddFunction(decorated, undecorated, global string, beginAddress, length uint64, compilandIdx, sourceFileIdx int, lines []LineEntry) {
	idx := len(d.entries)
	d.entries = append(d.entries, debugEntry{
		DecoratedName:   decorated,
		UndecoratedName: undecorated,
		GlobalName:      global,
		BeginAddress:    beginAddress,
		Length:          length,
		CompilandIndex:  compilandIdx,
		SourceFileIndex: sourceFileIdx,
		Lines:           lines,
	})
	d.byAddress[beginAddress] = idx
}

// NamedFunctionAt returns a NamedFunction built from the metadata
// registered for beginAddress, with fn attached as its disassembled body.
// Returns an error if no metadata was registered for that address.
func (d *DebugInfo) NamedFunctionAt(beginAddress uint64, fn *Function) (*NamedFunction, error) {
	idx, ok := d.byAddress[beginAddress]
	if !ok {
		return nil, fmt.Errorf("asmcmp: no debug info for function at %#x", beginAddress)
	}
	e := d.entries[idx]
	if fn != nil {
		fn.SetLineTable(e.Lines)
	}
	return &NamedFunction{
		DecoratedName:   e.DecoratedName,
		UndecoratedName: e.UndecoratedName,
		GlobalName:      e.GlobalName,
		CompilandIndex:  e.CompilandIndex,
		SourceFileIndex: e.SourceFileIndex,
		Function:        fn,
	}, nil
}

// CompilandName returns the compiland name interned at idx, or "" if out
// of range.
func (d *DebugInfo) CompilandName(idx int) string {
	if idx < 0 || idx >= len(d.compilands) {
		return ""
	}
	return d.compilands[idx]
}

// SourceFileName returns the source-file name interned at idx, or "" if
// out of range.
func (d *DebugInfo) SourceFileName(idx int) string {
	if idx < 0 || idx >= len(d.sourceFiles) {
		return ""
	}
	return d.sourceFiles[idx]
}
