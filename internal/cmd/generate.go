package cmd

import (
	"log/slog"

	"github.com/mcutools/packgen/internal/codegen/generator"
	"github.com/mcutools/packgen/internal/codegen/layout"
	"github.com/mcutools/packgen/internal/codegen/scanner"
)

type Generate struct {
	Output string   `help:"Output directory for the generated pack" default:"./pack" env:"PACKGEN_OUTPUT"`
	Style  string   `help:"Arm header style: legacy or microchip" default:"microchip" enum:"legacy,microchip" env:"PACKGEN_STYLE"`
	Inputs []string `arg:"" name:"input" help:"Device description files (.atdf/.xml or .yaml/.yml)" type:"existingfile"`
}

// Run is called by Kong when the generate command is executed. Malformed
// device descriptions invalidate only their own target; anything else,
// including filesystem errors, aborts the run.
func (g *Generate) Run(logger *slog.Logger) error {
	logger.Info("Starting pack generation", "output", g.Output, "style", g.Style, "targets", len(g.Inputs))

	st := layout.MicrochipStyle
	if g.Style == "legacy" {
		st = layout.LegacyStyle
	}

	gen := generator.New(g.Output, st, logger)
	for _, in := range g.Inputs {
		if err := gen.GenerateFile(in); err != nil {
			if scanner.IsFormat(err) {
				logger.Error("Device description malformed, skipping target", "input", in, "error", err)
				continue
			}
			return err
		}
	}
	return nil
}
