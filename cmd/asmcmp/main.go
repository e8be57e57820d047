package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/binarydiff/asmcmp"
)

func main() {
	app := &cli.App{
		Name:      "asmcmp",
		Usage:     "disassemble and symbol-annotate a 32-bit x86 function range",
		ArgsUsage: "<input-file>",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "input-type", Value: "auto", Usage: "force interpretation: auto, exe, pdb"},
			&cli.StringFlag{Name: "output", Aliases: []string{"o"}, Usage: "assembler output file, or \"auto\" for <stem>.S"},
			&cli.StringFlag{Name: "format", Aliases: []string{"f"}, Value: "default", Usage: "dialect: default, igas, agas, masm"},
			&cli.StringFlag{Name: "config", Aliases: []string{"c"}, Usage: "config file, or \"auto\" for <stem>.config.json"},
			&cli.StringFlag{Name: "start", Aliases: []string{"s"}, Usage: "start address (hex)"},
			&cli.StringFlag{Name: "end", Aliases: []string{"e"}, Usage: "end address (hex)"},
			&cli.BoolFlag{Name: "list-sections", Usage: "print sections and exit"},
			&cli.BoolFlag{Name: "dumpsyms", Aliases: []string{"d"}, Usage: "write symbols into the config file"},
			&cli.BoolFlag{Name: "verbose", Aliases: []string{"v"}, Usage: "verbose diagnostics"},
		},
		Action: run,
	}

	if err := app.Run(os.Args); err != nil {
		if exitErr, ok := err.(cli.ExitCoder); ok {
			os.Exit(exitErr.ExitCode())
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(c *cli.Context) error {
	logger := log.New(os.Stderr, "asmcmp: ", 0)
	verbose := c.Bool("verbose")
	logf := func(format string, args ...interface{}) {
		if verbose {
			logger.Printf(format, args...)
		}
	}

	if c.Args().Len() < 1 {
		return cli.Exit("missing input file", 1)
	}
	inputPath := c.Args().First()
	stem := strings.TrimSuffix(inputPath, filepath.Ext(inputPath))

	inputType, err := asmcmp.ParseInputType(c.String("input-type"))
	if err != nil {
		return cli.Exit(err.Error(), 1)
	}

	configPath := c.String("config")
	if configPath == "" || configPath == "auto" {
		configPath = stem + ".config.json"
	}
	cfg, err := asmcmp.LoadConfig(configPath)
	if err != nil {
		return cli.Exit(fmt.Sprintf("could not load config: %v", err), 1)
	}
	logf("loaded config %s", configPath)

	exe, err := asmcmp.LoadExecutable(inputPath, inputType, cfg)
	if err != nil {
		return cli.Exit(fmt.Sprintf("could not load %s: %v", inputPath, err), 1)
	}
	symtab := exe.SymbolTable()

	if c.Bool("list-sections") {
		return asmcmp.WriteSections(os.Stdout, symtab)
	}

	if c.Bool("dumpsyms") {
		cfg.DumpSymbols(symtab)
		if err := cfg.Save(configPath); err != nil {
			return cli.Exit(err.Error(), 1)
		}
		logf("wrote %d symbols to %s", len(cfg.Symbols), configPath)
		return nil
	}

	format, err := parseFormat(c.String("format"))
	if err != nil {
		return cli.Exit(err.Error(), 1)
	}

	begin := symtab.CodeSectionBeginFromImageBase()
	end := symtab.CodeSectionEndFromImageBase()
	if s := c.String("start"); s != "" {
		v, err := parseHexAddress(s)
		if err != nil {
			return cli.Exit(fmt.Sprintf("invalid --start: %v", err), 1)
		}
		begin = v
	}
	if s := c.String("end"); s != "" {
		v, err := parseHexAddress(s)
		if err != nil {
			return cli.Exit(fmt.Sprintf("invalid --end: %v", err), 1)
		}
		end = v
	}

	setup := asmcmp.NewSetup(symtab, format)
	fn := asmcmp.NewFunction()
	fn.Disassemble(setup, symtab, begin, end)
	logf("disassembled %d instructions from 0x%x to 0x%x", len(fn.Instructions), begin, end)

	outPath := c.String("output")
	if outPath == "" || outPath == "auto" {
		outPath = stem + ".S"
	}
	out, err := os.Create(outPath)
	if err != nil {
		return cli.Exit(fmt.Sprintf("could not create %s: %v", outPath, err), 1)
	}
	defer out.Close()

	if err := asmcmp.WriteListing(out, fn); err != nil {
		return cli.Exit(fmt.Sprintf("could not write %s: %v", outPath, err), 1)
	}
	logf("wrote %s", outPath)

	return nil
}

func parseFormat(s string) (asmcmp.AsmFormat, error) {
	switch s {
	case "", "default":
		return asmcmp.FormatDefault, nil
	case "igas":
		return asmcmp.FormatIntelGas, nil
	case "agas":
		return asmcmp.FormatATTGas, nil
	case "masm":
		return asmcmp.FormatMASM, nil
	default:
		return asmcmp.FormatDefault, fmt.Errorf("unrecognized format %q", s)
	}
}

func parseHexAddress(s string) (uint64, error) {
	s = strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X")
	v, err := strconv.ParseUint(s, 16, 64)
	if err != nil {
		return 0, err
	}
	return v, nil
}
