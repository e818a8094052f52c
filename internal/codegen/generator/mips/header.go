package mips

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/mcutools/packgen/internal/codegen/emit"
	"github.com/mcutools/packgen/internal/codegen/layout"
	"github.com/mcutools/packgen/internal/codegen/model"
)

// generateMainHeader renders the monolithic <device>.h: literal suffix
// macros, every SFR definition and absolute address macro, the interrupt
// vector numbers, the device configuration register macros and the target
// feature flags.
func generateMainHeader(logger *slog.Logger, outputDir string, st layout.Style, dev *model.Device) error {
	f := emit.NewFile(filepath.Join(outputDir, strings.ToLower(dev.Name)+".h"))
	f.WriteString(st.License.CommentBlock(fmt.Sprintf("Header file for %s", dev.Name)))
	f.WriteString("\n")
	f.OpenGuard(fmt.Sprintf("_INCLUDE_%s_H_", strings.ToUpper(dev.Name)))

	f.WriteString("#ifdef __cplusplus\nextern \"C\" {\n#endif\n\n")

	writeLiteralMacros(f)
	writeSFRSections(f, st, dev)
	writeVectorNumbers(f, dev)
	writeConfigRegs(f, dev)
	writeFeatureFlags(f, dev)

	f.WriteString("#ifdef __cplusplus\n}\n#endif\n\n")
	f.CloseGuard()

	if err := f.Write(); err != nil {
		return fmt.Errorf("main header: %w", err)
	}
	logger.Info("Generated device header", "device", dev.Name, "file", f.Path())
	return nil
}

func writeLiteralMacros(f *emit.File) {
	f.WriteString("#if !(defined(__ASSEMBLY__) || defined(__LANGUAGE_ASSEMBLY__))\n")
	f.WriteString("#  define _U_(x) (x##U)    /**< C code: unsigned integer literal */\n")
	f.WriteString("#  define _L_(x) (x##L)    /**< C code: long integer literal */\n")
	f.WriteString("#  define _UL_(x) (x##UL)  /**< C code: unsigned long integer literal */\n")
	f.WriteString("#else\n")
	f.WriteString("#  define _U_(x) x         /**< Assembler: plain literal */\n")
	f.WriteString("#  define _L_(x) x\n")
	f.WriteString("#  define _UL_(x) x\n")
	f.WriteString("#endif\n\n")
}

// writeSFRSections emits one section per peripheral: register typedefs and
// macro blocks through the layout engines, the hardware register struct, and
// the absolute SFR address macros for the peripheral's placement.
func writeSFRSections(f *emit.File, st layout.Style, dev *model.Device) {
	b := f.Builder()
	for _, p := range dev.Peripherals {
		f.Printf("/* ========== Special function registers for %s ========== */\n\n", p.Name)

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

		emitted := make(map[string]bool)
		for _, g := range p.Groups {
			layout.WriteGroup(b, st, p, g, emitted)
		}

		for _, inst := range p.Instances {
			writeSFRAddresses(f, p, inst)
		}
	}
}

// writeSFRAddresses emits the absolute register address macros for one
// peripheral placement, in the kseg1 (uncached) view the SFR bus uses.
func writeSFRAddresses(f *emit.File, p model.Peripheral, inst model.Instance) {
	bg := p.BaseGroup()
	if bg == nil {
		return
	}
	seen := make(map[string]bool)
	for _, mode := range bg.Modes {
		for _, r := range mode.Registers {
			if r.IsGroupAlias() || seen[r.Name] {
				continue
			}
			seen[r.Name] = true
			name := layout.VarName(p.Name, r.Name, mode.Name, true)
			f.Printf("#define %-28s (*(volatile uint32_t *)0x%08X)\n",
				name, ksegAddr(kseg1Base, inst.BaseAddr+r.Offset))
		}
	}
	f.WriteString("\n")
}

// writeVectorNumbers emits the interrupt vector number macros. MIPS parts
// have no CMSIS enum consumers, so plain defines are used alongside the enum.
func writeVectorNumbers(f *emit.File, dev *model.Device) {
	if len(dev.Interrupts) == 0 {
		return
	}
	table := layout.BuildInterruptTable(dev.Interrupts)

	f.WriteString("/* ========== Interrupt vector numbers ========== */\n")
	for _, v := range table.Vectors {
		f.Printf("#define %-32s (%d) /**< %s */\n",
			"_"+strings.ToUpper(v.Name)+"_VECTOR", v.Index, strings.TrimSpace(v.Caption))
	}
	f.Printf("#define %-32s (%d)\n\n", "_VECTOR_COUNT", table.Count())
}

// writeConfigRegs emits the device configuration register macros: the
// register's uncached address, its default word, and the setter used by
// startup code running with the config bus unlocked.
func writeConfigRegs(f *emit.File, dev *model.Device) {
	if len(dev.ConfigRegs) == 0 {
		return
	}
	f.WriteString("/* ========== Device configuration registers ========== */\n")
	for _, cr := range dev.ConfigRegs {
		name := strings.ToUpper(cr.Name)
		addr := ksegAddr(kseg1Base, cr.Address)
		f.Printf("#define %-28s (*(volatile uint32_t *)0x%08X)\n", name, addr)
		f.Printf("#define %-28s _UL_(0x%08X)\n", name+"_ADDRESS", addr)
		f.Printf("#define %-28s _UL_(0x%08X)\n", name+"_DEFAULT", cr.Default)
		f.Printf("#define %s_SET(value) (%s = (value))\n\n", name, name)
	}
}

// writeFeatureFlags emits the capability macros conditional code keys off.
func writeFeatureFlags(f *emit.File, dev *model.Device) {
	f.WriteString("/* ========== Target features ========== */\n")
	flags := []struct {
		name string
		on   bool
	}{
		{"__PIC32_HAS_FPU64", dev.Features.FPU},
		{"__PIC32_HAS_DSP", dev.Features.DSP},
		{"__PIC32_HAS_L1CACHE", dev.Features.L1Cache},
		{"__PIC32_HAS_MIPS16", dev.Features.MIPS16},
		{"__PIC32_HAS_MICROMIPS", dev.Features.MicroMIPS},
		{"__PIC32_HAS_FIXED_VECTORS", dev.Features.FixedVectors},
	}
	for _, fl := range flags {
		if fl.on {
			f.Printf("#define %s\n", fl.name)
		}
	}
	f.WriteString("\n")
}
