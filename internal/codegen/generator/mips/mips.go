// Package mips renders the PIC32-style support files for one MIPS device:
// a monolithic device header carrying every SFR definition plus the
// config-register macros, and the matching linker script.
package mips

import (
	"log/slog"

	"github.com/mcutools/packgen/internal/codegen/emit"
	"github.com/mcutools/packgen/internal/codegen/layout"
	"github.com/mcutools/packgen/internal/codegen/model"
)

// Generate produces <device>.h and <device>.ld under outputDir. The MIPS
// header set is monolithic, so the shared component cache has nothing to
// dedup here.
func Generate(logger *slog.Logger, outputDir string, dev *model.Device, st layout.Style, cache *emit.RunCache) error {
	if err := generateMainHeader(logger, outputDir, st, dev); err != nil {
		return err
	}
	return generateLinkerScript(logger, outputDir, st, dev)
}
