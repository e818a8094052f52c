// Package arm renders the Cortex-M header set for one device: the main
// device header plus component, instances and (legacy style) pio headers.
package arm

import (
	"log/slog"

	"github.com/mcutools/packgen/internal/codegen/emit"
	"github.com/mcutools/packgen/internal/codegen/layout"
	"github.com/mcutools/packgen/internal/codegen/model"
)

// Generate produces the header set under outputDir:
//   - <device>.h              main device header
//   - component/<periph>_<id>.h   one per peripheral definition
//   - instances/<device>.h    per-instance register address macros
//   - pio/<device>.h          pin-mux macros (legacy style only)
func Generate(logger *slog.Logger, outputDir string, dev *model.Device, st layout.Style, cache *emit.RunCache) error {
	for _, p := range dev.Peripherals {
		if err := generateComponent(logger, outputDir, st, dev, p, cache); err != nil {
			return err
		}
	}

	if err := generateInstances(logger, outputDir, st, dev); err != nil {
		return err
	}

	if st.EmitPIO() {
		if err := generatePIO(logger, outputDir, st, dev); err != nil {
			return err
		}
	}

	return generateMainHeader(logger, outputDir, st, dev)
}
