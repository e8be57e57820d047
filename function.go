package asmcmp

import "golang.org/x/arch/x86/x86asm"

// Function is a single disassembled function: the ordered instructions
// covering [BeginAddress, EndAddress) plus the pseudo symbols synthesized
// while disassembling it.
type Function struct {
	BeginAddress   uint64
	EndAddress     uint64
	SourceFileName string

	Instructions AsmInstructions
	SymbolCount  uint32

	pseudoSymbols *pseudoSymbolTable

	// lineTable optionally maps instruction offsets (from BeginAddress) to
	// source line numbers, populated by the caller before Disassemble via
	// SetLineTable. Stands in for the excluded debug-info collaborator.
	lineTable []LineEntry
}

// LineEntry is one entry of a per-function line table: offset and length
// are relative to the function's begin address and cover a half-open
// byte range, per spec.md §6's debug-info contract.
type LineEntry struct {
	Offset     uint64
	Length     uint64
	LineNumber uint32
}

// NewFunction returns an empty, undisassembled Function.
func NewFunction() *Function {
	return &Function{pseudoSymbols: newPseudoSymbolTable()}
}

// SetLineTable installs a per-function line table to be consulted during
// the next Disassemble call.
func (f *Function) SetLineTable(lines []LineEntry) {
	f.lineTable = lines
}

// PseudoSymbol returns the pseudo symbol created at address, if any.
func (f *Function) PseudoSymbol(address uint64) (PseudoSymbol, bool) {
	return f.pseudoSymbols.get(address)
}

// PseudoSymbolCount returns the number of pseudo symbols created for this
// function.
func (f *Function) PseudoSymbolCount() int {
	return f.pseudoSymbols.len()
}

// Labels returns, in increasing address order, one AsmLabel per pseudo
// symbol created for this function (spec.md §3: labels are derived from
// pseudo symbols, reported separately from the instructions they may
// coincide with).
func (f *Function) Labels() []AsmLabel {
	labels := make([]AsmLabel, 0, f.pseudoSymbols.len())
	for _, ps := range f.pseudoSymbols.byAddress {
		labels = append(labels, AsmLabel{Label: ps.Name, Address: ps.Address})
	}
	sortLabels(labels)
	return labels
}

func sortLabels(labels []AsmLabel) {
	for i := 1; i < len(labels); i++ {
		for j := i; j > 0 && labels[j].Address < labels[j-1].Address; j-- {
			labels[j], labels[j-1] = labels[j-1], labels[j]
		}
	}
}

// Disassemble decodes [begin, end) from symtab's code section into
// f.Instructions, following the two-pass scheme of spec.md §4.2:
//
//  1. a pre-pass that decodes each instruction once to discover relative
//     branch targets inside the range and synthesize pseudo symbols for
//     them;
//  2. a main pass that decodes again and formats each instruction's text,
//     consulting both the real symbol table and the pseudo symbols just
//     created.
//
// If begin does not fall inside any section known to symtab, or if
// end-begin exceeds that section's payload, Disassemble produces an
// empty Function and returns without error: spec.md §7's
// AddressOutOfSection is handled entirely in-band. begin == end is
// explicitly valid and also yields an empty Function.
func (f *Function) Disassemble(setup *Setup, symtab *SymbolTable, begin, end uint64) {
	f.BeginAddress = begin
	f.EndAddress = end
	f.Instructions = nil
	f.pseudoSymbols = newPseudoSymbolTable()
	f.SymbolCount = 0

	if end < begin {
		return
	}

	imageBase := symtab.ImageBase()
	relBegin := begin - imageBase
	relEnd := end - imageBase

	sec := symtab.FindSection(relBegin)
	if sec == nil || relEnd > sec.End() {
		return
	}
	if begin == end {
		return
	}

	f.prePass(setup, symtab, sec, begin, end)
	f.mainPass(setup, symtab, sec, begin, end)
}

func (f *Function) prePass(setup *Setup, symtab *SymbolTable, sec *Section, begin, end uint64) {
	imageBase := symtab.ImageBase()
	cursor := begin
	for cursor < end {
		offset := (cursor - imageBase) - sec.Address
		var src []byte
		if int(offset) < len(sec.Code) {
			src = sec.Code[offset:]
		}
		inst, err := setup.decode(src)

		length := uint64(1)
		if err == nil && inst.Len > 0 {
			length = uint64(inst.Len)
		}
		if cursor+length > end {
			length = end - cursor
		}

		if err == nil {
			if target, _, ok := relTarget(inst, cursor); ok && target >= begin && target < end {
				relTargetAddr := target - imageBase
				if symtab.GetSymbolByAddress(relTargetAddr) == nil {
					if inst.Op == x86asm.CALL {
						f.pseudoSymbols.add(prefixSub, target)
					} else {
						f.pseudoSymbols.add(prefixLoc, target)
					}
				}
			}
		}

		cursor += length
	}
}

func (f *Function) mainPass(setup *Setup, symtab *SymbolTable, sec *Section, begin, end uint64) {
	imageBase := symtab.ImageBase()
	cursor := begin
	totalBytes := uint64(0)
	anyInvalid := false

	for cursor < end {
		offset := (cursor - imageBase) - sec.Address
		var src []byte
		if int(offset) < len(sec.Code) {
			src = sec.Code[offset:]
		}
		inst, err := setup.decode(src)

		var ai AsmInstruction
		ai.Address = cursor

		relAddr := cursor - imageBase
		if symtab.GetSymbolByAddress(relAddr) != nil {
			ai.IsSymbol = true
		} else if _, ok := f.pseudoSymbols.get(cursor); ok {
			ai.IsSymbol = true
		}
		if ai.IsSymbol {
			f.SymbolCount++
		}

		if li, ok := f.lookupLine(cursor - begin); ok {
			ai.HasLine = true
			ai.LineNumber = li.LineNumber
			ai.IsFirstLine = li.Offset == cursor-begin
		}

		if err != nil || inst.Len <= 0 {
			ai.Invalid = true
			anyInvalid = true
			length := end - cursor
			if length > maxInstructionBytes {
				length = maxInstructionBytes
			}
			if length == 0 {
				length = 1
			}
			if cursor+length > end {
				length = end - cursor
			}
			raw := src
			if uint64(len(raw)) > length {
				raw = raw[:length]
			}
			ai.setBytes(raw)
			f.Instructions = append(f.Instructions, ai)
			cursor += length
			totalBytes += length
			continue
		}

		length := uint64(inst.Len)
		if cursor+length > end {
			length = end - cursor
		}
		raw := src
		if uint64(len(raw)) > length {
			raw = raw[:length]
		}
		ai.setBytes(raw)

		text, isJump, jumpLen, short := formatInstruction(setup, f, inst, cursor)
		if inst.Op == x86asm.CALL {
			isJump = false
			jumpLen = 0
			short = false
		} else if isJump {
			if t := cursor + uint64(int64(jumpLen)); t < begin || t >= end {
				isJump = false
				jumpLen = 0
				short = false
			}
		}
		ai.Text = text
		ai.IsJump = isJump
		ai.JumpLen = jumpLen
		ai.ShortJump = short

		f.Instructions = append(f.Instructions, ai)
		cursor += length
		totalBytes += length
	}

	if !anyInvalid && totalBytes != end-begin {
		panic("asmcmp: decoded byte total does not match function range")
	}
}

func (f *Function) lookupLine(offset uint64) (LineEntry, bool) {
	for _, li := range f.lineTable {
		if offset >= li.Offset && offset < li.Offset+li.Length {
			return li, true
		}
	}
	return LineEntry{}, false
}
