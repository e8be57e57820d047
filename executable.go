package asmcmp

import "fmt"

// InputType selects how LoadExecutable interprets a file, mirroring the
// CLI's --input-type flag (spec.md §6).
type InputType int

const (
	InputAuto InputType = iota
	InputExe
	InputPDB
)

// ParseInputType maps a CLI flag value to an InputType.
func ParseInputType(s string) (InputType, error) {
	switch s {
	case "", "auto":
		return InputAuto, nil
	case "exe":
		return InputExe, nil
	case "pdb":
		return InputPDB, nil
	default:
		return InputAuto, fmt.Errorf("asmcmp: unrecognized input type %q", s)
	}
}

// Executable is the minimal binary-image loader external collaborator
// described in spec.md §6: it owns image layout and produces the
// SymbolTable view the core disassembles against. A real implementation
// would parse PE/COFF headers and import/export tables; this one accepts
// a pre-built layout (e.g. from a Config) since header parsing is outside
// the disassembly-and-comparison core's scope.
type Executable struct {
	path      string
	inputType InputType
	symtab    *SymbolTable
}

// LoadExecutable builds an Executable from a Config describing its
// layout, symbols, and sections. cfg.Objects is not read; the returned
// Executable keeps no copy of it.
func LoadExecutable(path string, inputType InputType, cfg *Config) (*Executable, error) {
	if cfg == nil {
		return nil, fmt.Errorf("asmcmp: load %s: no layout config available", path)
	}

	sections := make([]Section, len(cfg.Sections))
	for i, cs := range cfg.Sections {
		sec := Section{Name: cs.Name, Address: cs.Address, Size: cs.Size}
		sections[i] = sec
	}

	symtab := NewSymbolTable(cfg.Layout.imageBaseOrDefault(), sections)
	for _, cs := range cfg.Symbols {
		symtab.AddSymbol(ExeSymbol{Name: cs.Name, Address: cs.Address, Size: cs.Size}, false)
	}

	return &Executable{path: path, inputType: inputType, symtab: symtab}, nil
}

// SetCodeBytes installs the raw bytes backing the code section, located
// by name. Split out from LoadExecutable because the config schema
// carries layout and symbols but not section contents.
func (e *Executable) SetCodeBytes(sectionName string, code []byte) {
	if sec := e.symtab.FindSectionByName(sectionName); sec != nil {
		sec.Code = code
		if e.symtab.codeIdx < 0 {
			for i := range e.symtab.sections {
				if &e.symtab.sections[i] == sec {
					e.symtab.codeIdx = i
					break
				}
			}
		}
	}
}

// SymbolTable returns the executable's symbol/section view.
func (e *Executable) SymbolTable() *SymbolTable {
	return e.symtab
}

// Path returns the file path this Executable was loaded from.
func (e *Executable) Path() string {
	return e.path
}

// imageBaseOrDefault is a placeholder until a real PE/COFF reader
// contributes an actual preferred load address; config JSON doesn't
// carry one explicitly (spec.md §6's config.layout sketch only lists
// alignment/padding), so the core defaults to zero-based addressing.
func (l ConfigLayout) imageBaseOrDefault() uint64 {
	return 0
}
