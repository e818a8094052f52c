package arm

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/mcutools/packgen/internal/codegen/emit"
	"github.com/mcutools/packgen/internal/codegen/layout"
	"github.com/mcutools/packgen/internal/codegen/model"
)

// componentFileName returns the per-peripheral file name, e.g. "tc_u2249.h".
// Peripherals without a module id fall back to the bare name.
func componentFileName(p model.Peripheral) string {
	if p.ID == "" {
		return strings.ToLower(p.Name) + ".h"
	}
	return fmt.Sprintf("%s_%s.h", strings.ToLower(p.Name), strings.ToLower(p.ID))
}

func componentGuard(dev *model.Device, p model.Peripheral) string {
	series := dev.Series
	if series == "" {
		series = dev.Name
	}
	return fmt.Sprintf("_%s_%s_COMPONENT_", strings.ToUpper(series), strings.ToUpper(p.Name))
}

// generateComponent renders one peripheral definition header. Identical
// components shared across the run's devices are written only once.
func generateComponent(logger *slog.Logger, outputDir string, st layout.Style, dev *model.Device, p model.Peripheral, cache *emit.RunCache) error {
	name := componentFileName(p)
	f := emit.NewFile(filepath.Join(outputDir, "component", name))
	writeComponent(f, st, dev, p)

	if cache.SeenComponent(name, f.Bytes()) {
		logger.Debug("Component already emitted this run", "peripheral", p.Name, "file", name)
		return nil
	}
	if err := f.Write(); err != nil {
		return fmt.Errorf("component %s: %w", p.Name, err)
	}
	logger.Debug("Generated component header", "peripheral", p.Name, "file", name)
	return nil
}

func writeComponent(f *emit.File, st layout.Style, dev *model.Device, p model.Peripheral) {
	f.WriteString(st.License.CommentBlock(fmt.Sprintf("Component description for %s", p.Name)))
	f.WriteString("\n")
	f.OpenGuard(componentGuard(dev, p))

	f.Printf("/* ========== Register definition for %s peripheral ========== */\n", p.Name)
	if p.Version != "" {
		f.Printf("/* %s peripheral version %s */\n", p.Name, p.Version)
	}
	f.WriteString("\n")

	b := f.Builder()

	// Register typedefs and macro blocks first, each register once even when
	// it appears in several group modes.
	seen := make(map[string]bool)
	for _, g := range p.Groups {
		for _, mode := range g.Modes {
			for _, r := range mode.Registers {
				if r.IsGroupAlias() || seen[r.Name] {
					continue
				}
				seen[r.Name] = true
				layout.WriteRegister(b, st, r)
			}
		}
	}

	// Then the memory-span structs. Sub-groups referenced through aliases are
	// pulled in depth-first by the group walk itself.
	emitted := make(map[string]bool)
	for _, g := range p.Groups {
		layout.WriteGroup(b, st, p, g, emitted)
	}

	f.CloseGuard()
}
