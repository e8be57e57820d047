package asmcmp

import "fmt"

// ExeSymbol is a named location inside an executable: an exported or
// imported function/data symbol. Addresses are section-relative unless
// stated otherwise by the caller.
type ExeSymbol struct {
	Name    string
	Address uint64
	Size    uint64
}

// Section is a named, contiguous region of an executable's address space.
// Only the code section carries its raw bytes; other sections carry bounds
// only, since the core never needs to read their contents.
type Section struct {
	Name    string
	Address uint64
	Size    uint64
	Code    []byte // non-nil only for the code section
}

func (s *Section) contains(address uint64) bool {
	return address >= s.Address && address < s.Address+s.Size
}

// End returns the address one past the last byte of the section.
func (s *Section) End() uint64 {
	return s.Address + s.Size
}

// SymbolTable is a queryable, immutable-during-disassembly view over an
// executable's symbols and sections. It is populated once, by the
// (external, excluded) binary-image loader, via AddSymbol, and is never
// mutated again while a Function is being disassembled against it.
type SymbolTable struct {
	imageBase uint64
	sections  []Section
	codeIdx   int // index into sections, or -1 if none

	symbols        []ExeSymbol
	addressToIndex map[uint64]int
	nameToIndices  map[string][]int
}

// NewSymbolTable builds an empty view over the given sections and image
// base. The code section is the first section that carries Code bytes; if
// none does, the first section is used.
func NewSymbolTable(imageBase uint64, sections []Section) *SymbolTable {
	st := &SymbolTable{
		imageBase:      imageBase,
		sections:       sections,
		codeIdx:        -1,
		addressToIndex: make(map[uint64]int),
		nameToIndices:  make(map[string][]int),
	}
	for i := range sections {
		if sections[i].Code != nil {
			st.codeIdx = i
			break
		}
	}
	if st.codeIdx == -1 && len(sections) > 0 {
		st.codeIdx = 0
	}
	return st
}

// AddSymbol inserts symbol into the table. Empty names and symbols with a
// zero address are ignored. On an address collision the existing entry
// is kept unless overwrite is true. Mirrors the two-pass construction
// contract of the excluded binary-image loader: callers insert named
// symbols first, then imported symbols, each pass calling AddSymbol once
// per entry.
func (st *SymbolTable) AddSymbol(symbol ExeSymbol, overwrite bool) {
	if symbol.Name == "" || symbol.Address == 0 {
		return
	}
	if idx, ok := st.addressToIndex[symbol.Address]; ok {
		if !overwrite {
			return
		}
		old := st.symbols[idx].Name
		st.symbols[idx] = symbol
		st.removeNameIndex(old, idx)
		st.nameToIndices[symbol.Name] = append(st.nameToIndices[symbol.Name], idx)
		return
	}
	idx := len(st.symbols)
	st.symbols = append(st.symbols, symbol)
	st.addressToIndex[symbol.Address] = idx
	st.nameToIndices[symbol.Name] = append(st.nameToIndices[symbol.Name], idx)
}

func (st *SymbolTable) removeNameIndex(name string, idx int) {
	indices := st.nameToIndices[name]
	for i, v := range indices {
		if v == idx {
			st.nameToIndices[name] = append(indices[:i], indices[i+1:]...)
			return
		}
	}
}

// GetSymbolByAddress returns the symbol at address, or nil.
func (st *SymbolTable) GetSymbolByAddress(address uint64) *ExeSymbol {
	if idx, ok := st.addressToIndex[address]; ok {
		return &st.symbols[idx]
	}
	return nil
}

// GetSymbolByName returns the symbol named name, but only if name is
// unambiguous (exactly one symbol bears it).
func (st *SymbolTable) GetSymbolByName(name string) *ExeSymbol {
	indices := st.nameToIndices[name]
	if len(indices) != 1 {
		return nil
	}
	return &st.symbols[indices[0]]
}

// GetSymbolFromImageBase subtracts the image base from address, then
// looks the result up by address.
func (st *SymbolTable) GetSymbolFromImageBase(address uint64) *ExeSymbol {
	return st.GetSymbolByAddress(address - st.imageBase)
}

// Symbols returns every symbol in the table.
func (st *SymbolTable) Symbols() []ExeSymbol {
	return st.symbols
}

// ImageBase returns the default load address of the executable.
func (st *SymbolTable) ImageBase() uint64 {
	return st.imageBase
}

// FindSection returns the section containing address, or nil.
func (st *SymbolTable) FindSection(address uint64) *Section {
	for i := range st.sections {
		if st.sections[i].contains(address) {
			return &st.sections[i]
		}
	}
	return nil
}

// FindSectionByName returns the section named name, or nil.
func (st *SymbolTable) FindSectionByName(name string) *Section {
	for i := range st.sections {
		if st.sections[i].Name == name {
			return &st.sections[i]
		}
	}
	return nil
}

// CodeSection returns the section treated as the executable's code
// section, or nil if there are no sections at all.
func (st *SymbolTable) CodeSection() *Section {
	if st.codeIdx < 0 {
		return nil
	}
	return &st.sections[st.codeIdx]
}

// CodeSectionBeginFromImageBase returns the code section's start address
// plus the image base.
func (st *SymbolTable) CodeSectionBeginFromImageBase() uint64 {
	cs := st.CodeSection()
	if cs == nil {
		return st.imageBase
	}
	return cs.Address + st.imageBase
}

// CodeSectionEndFromImageBase returns the code section's end address plus
// the image base.
func (st *SymbolTable) CodeSectionEndFromImageBase() uint64 {
	cs := st.CodeSection()
	if cs == nil {
		return st.imageBase
	}
	return cs.End() + st.imageBase
}

// AllSectionsBeginFromImageBase returns the lowest section start address
// plus the image base.
func (st *SymbolTable) AllSectionsBeginFromImageBase() uint64 {
	if len(st.sections) == 0 {
		return st.imageBase
	}
	lo := st.sections[0].Address
	for _, s := range st.sections[1:] {
		if s.Address < lo {
			lo = s.Address
		}
	}
	return lo + st.imageBase
}

// AllSectionsEndFromImageBase returns the highest section end address
// plus the image base.
func (st *SymbolTable) AllSectionsEndFromImageBase() uint64 {
	if len(st.sections) == 0 {
		return st.imageBase
	}
	hi := st.sections[0].End()
	for _, s := range st.sections[1:] {
		if s.End() > hi {
			hi = s.End()
		}
	}
	return hi + st.imageBase
}

func (s ExeSymbol) String() string {
	return fmt.Sprintf("%s@%#x", s.Name, s.Address)
}
