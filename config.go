package asmcmp

import (
	"encoding/json"
	"fmt"
	"os"
)

// SectionType classifies a Config section entry.
type SectionType string

const (
	SectionCode    SectionType = "code"
	SectionData    SectionType = "data"
	SectionUnknown SectionType = "unknown"
)

// ConfigLayout mirrors the "config" top-level key of the persisted JSON
// schema (spec.md §6): image-layout alignment and padding values.
type ConfigLayout struct {
	CodeAlign   uint32 `json:"codealign"`
	DataAlign   uint32 `json:"dataalign"`
	CodePadding byte   `json:"codepadding"`
	DataPadding byte   `json:"datapadding"`
}

// ConfigSymbol is one entry of the "symbols" top-level key.
type ConfigSymbol struct {
	Name    string `json:"name"`
	Address uint64 `json:"address"`
	Size    uint64 `json:"size"`
}

// ConfigSection is one entry of the "sections" top-level key.
type ConfigSection struct {
	Name    string      `json:"name"`
	Type    SectionType `json:"type"`
	Address uint64      `json:"address"`
	Size    uint64      `json:"size"`
}

// ConfigObjectSection is one entry of a ConfigObject's nested sections
// list: the object's own view of a section's offset and size within it.
type ConfigObjectSection struct {
	Name   string `json:"name"`
	Offset uint64 `json:"offset"`
	Size   uint64 `json:"size"`
}

// ConfigObject is one entry of the "objects" top-level key: a compiland
// or translation unit and its footprint within each section.
type ConfigObject struct {
	Name     string                `json:"name"`
	Sections []ConfigObjectSection `json:"sections"`
}

// Config is the full persisted JSON document described in spec.md §6.
// Unknown fields are tolerated by encoding/json's default decoding
// behavior (unrecognized keys are simply ignored), satisfying the
// "unknown fields tolerated" requirement without extra code.
type Config struct {
	Layout   ConfigLayout    `json:"config"`
	Symbols  []ConfigSymbol  `json:"symbols"`
	Sections []ConfigSection `json:"sections"`
	Objects  []ConfigObject  `json:"objects"`
}

// LoadConfig reads and decodes a Config from path.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("asmcmp: read config %s: %w", path, err)
	}
	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("asmcmp: parse config %s: %w", path, err)
	}
	return &cfg, nil
}

// Save writes cfg to path as indented JSON.
func (cfg *Config) Save(path string) error {
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("asmcmp: encode config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("asmcmp: write config %s: %w", path, err)
	}
	return nil
}

// DumpSymbols replaces cfg's Symbols list with every symbol known to
// symtab, for the CLI's --dumpsyms flag.
func (cfg *Config) DumpSymbols(symtab *SymbolTable) {
	syms := symtab.Symbols()
	cfg.Symbols = make([]ConfigSymbol, len(syms))
	for i, s := range syms {
		cfg.Symbols[i] = ConfigSymbol{Name: s.Name, Address: s.Address, Size: s.Size}
	}
}

// BuildSectionsConfig populates cfg's Sections list from symtab, tagging
// the code section and leaving the rest "unknown" (the core has no way to
// distinguish data from unknown without collaborator-supplied hints).
func (cfg *Config) BuildSectionsConfig(symtab *SymbolTable) {
	cs := symtab.CodeSection()
	for i := range symtab.sections {
		sec := &symtab.sections[i]
		typ := SectionUnknown
		if cs != nil && sec == cs {
			typ = SectionCode
		}
		cfg.Sections = append(cfg.Sections, ConfigSection{
			Name:    sec.Name,
			Type:    typ,
			Address: sec.Address,
			Size:    sec.Size,
		})
	}
}
