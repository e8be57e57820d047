package asmcmp

import (
	"fmt"
	"io"
	"sort"
	"text/template"
)

// listingHeader mirrors the teacher's disasmHeader template: a banner
// comment followed by the function's address range (omitted when the
// start address is zero), rendered once before any instruction lines.
var listingHeader = `; ******************************************************************************
;
; Generated by asmcmp
;
; ******************************************************************************
{{ if .StartAddress }}
; range: {{ printf "0x%08X" .StartAddress }} - {{ printf "0x%08X" .EndAddress }}
{{ end }}
`

var listingHeaderTemplate = template.Must(template.New("listing").Parse(listingHeader))

// WriteListing renders fn's disassembly in the text format specified by
// spec.md §6: for each instruction, a label line if one exists at that
// address, then either the formatted instruction or an "Unrecognized
// opcode" comment, with a short-jump byte-offset annotation appended when
// applicable.
func WriteListing(w io.Writer, fn *Function) error {
	data := struct {
		StartAddress uint64
		EndAddress   uint64
	}{fn.BeginAddress, fn.EndAddress}
	if err := listingHeaderTemplate.Execute(w, data); err != nil {
		return fmt.Errorf("asmcmp: render listing header: %w", err)
	}

	labelsByAddress := make(map[uint64]string)
	for _, l := range fn.Labels() {
		labelsByAddress[l.Address] = l.Label
	}

	for i := range fn.Instructions {
		inst := &fn.Instructions[i]
		if label, ok := labelsByAddress[inst.Address]; ok {
			if _, err := fmt.Fprintf(w, "%s:\n", label); err != nil {
				return err
			}
		}

		if inst.Invalid {
			if _, err := fmt.Fprintf(w, "; Unrecognized opcode at runtime-address:0x%08X bytes:%x\n", inst.Address, inst.RawBytes()); err != nil {
				return err
			}
			continue
		}

		line := "    " + inst.Text
		if inst.ShortJump {
			sign := "+"
			n := inst.JumpLen
			if n < 0 {
				sign = "-"
				n = -n
			}
			line += fmt.Sprintf(" ; %s%d bytes", sign, n)
		}
		if _, err := fmt.Fprintf(w, "%s\n", line); err != nil {
			return err
		}
	}
	return nil
}

// WriteSections prints a sections listing for the CLI's --list-sections
// flag: name, address, size, in address order.
func WriteSections(w io.Writer, symtab *SymbolTable) error {
	sections := append([]Section(nil), symtab.sections...)
	sort.Slice(sections, func(i, j int) bool { return sections[i].Address < sections[j].Address })

	for _, sec := range sections {
		if _, err := fmt.Fprintf(w, "%-12s %#010x %#x\n", sec.Name, sec.Address, sec.Size); err != nil {
			return err
		}
	}
	return nil
}
