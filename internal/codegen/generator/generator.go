// Package generator drives one code generation run: it loads device
// descriptions through the scanner and dispatches each device to the
// architecture generator owning its output format.
package generator

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/mcutools/packgen/internal/codegen/emit"
	"github.com/mcutools/packgen/internal/codegen/generator/arm"
	"github.com/mcutools/packgen/internal/codegen/generator/mips"
	"github.com/mcutools/packgen/internal/codegen/layout"
	"github.com/mcutools/packgen/internal/codegen/model"
	"github.com/mcutools/packgen/internal/codegen/scanner"
)

type Generator struct {
	outputDir string
	style     layout.Style
	logger    *slog.Logger
	cache     *emit.RunCache
}

// ArchGenerator renders every output file of one device.
type ArchGenerator func(logger *slog.Logger, outputDir string, dev *model.Device, st layout.Style, cache *emit.RunCache) error

var generators = map[string]ArchGenerator{
	"arm":  arm.Generate,
	"mips": mips.Generate,
}

// New builds a generator for one run. The component cache lives for the
// lifetime of the returned value; independent runs need fresh generators.
func New(outputDir string, st layout.Style, logger *slog.Logger) *Generator {
	return &Generator{
		outputDir: outputDir,
		style:     st,
		logger:    logger,
		cache:     emit.NewRunCache(logger),
	}
}

// GenerateFile loads one device description and generates its outputs. The
// loader is selected by file extension: .atdf and .xml are ATDF documents,
// .yaml and .yml the MIPS device database.
func (g *Generator) GenerateFile(path string) error {
	var (
		dev *model.Device
		err error
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".atdf", ".xml":
		dev, err = scanner.LoadATDF(path)
	case ".yaml", ".yml":
		dev, err = scanner.LoadMIPSDB(path)
	default:
		return fmt.Errorf("unsupported device description '%s' (expected .atdf, .xml, .yaml or .yml)", path)
	}
	if err != nil {
		return err
	}
	return g.GenerateDevice(dev)
}

// GenerateDevice runs the architecture generator matching the device.
func (g *Generator) GenerateDevice(dev *model.Device) error {
	arch := archOf(dev)
	gen, ok := generators[arch]
	if !ok {
		var supported []string
		for k := range generators {
			supported = append(supported, k)
		}
		return fmt.Errorf("unsupported architecture '%s' (supported: %v)", dev.Architecture, supported)
	}

	st := g.style
	if arch == "mips" {
		st = layout.MIPSStyle
	}

	g.logger.Info("Generating device support files", "device", dev.Name, "architecture", dev.Architecture)

	if err := os.MkdirAll(g.outputDir, 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	if err := gen(g.logger, g.outputDir, dev, st, g.cache); err != nil {
		return fmt.Errorf("generate %s: %w", dev.Name, err)
	}

	g.logger.Info("Device generation complete", "device", dev.Name, "output", g.outputDir)
	return nil
}

// archOf maps the device's declared architecture onto a generator key.
// Cortex-M parts report strings like "CORTEX-M0PLUS"; anything MIPS-flagged
// goes to the MIPS generator.
func archOf(dev *model.Device) string {
	if strings.HasPrefix(strings.ToUpper(dev.Architecture), "MIPS") {
		return "mips"
	}
	return "arm"
}
