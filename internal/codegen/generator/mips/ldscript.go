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

// The four fixed MIPS virtual address-space views. Physical addresses are
// windowed into a view by masking to 512MB and adding the view base.
const (
	kseg0Base = 0x80000000 // cached, unmapped
	kseg1Base = 0xA0000000 // uncached, unmapped
	kseg2Base = 0xC0000000 // mapped
	kseg3Base = 0xE0000000 // mapped
)

// resetPhys is the physical address the core fetches from out of reset.
// Boot flash regions starting here get the size-class sub-region layouts.
const resetPhys = 0x1FC00000

func ksegAddr(base, phys uint64) uint64 {
	return base + (phys & 0x1FFFFFFF)
}

// plannedRegion is one MEMORY command entry.
type plannedRegion struct {
	Name   string
	Attr   string // ld attribute string, e.g. "(rx)"; empty for none
	Origin uint64
	Length uint64
}

// bootRegions expands one reset-address boot flash into the fixed sub-region
// set of its size class. The first 0x490 bytes out of reset always run
// uncached through kseg1; larger parts add a debugger scratch window.
func bootRegions(r model.MemoryRegion) []plannedRegion {
	switch {
	case r.Size <= 0x490:
		// Too small to split; the whole region runs uncached.
		return []plannedRegion{
			{Name: "kseg1_boot_mem", Attr: "(rx)", Origin: 0xBFC00000, Length: r.Size},
		}
	case r.Size <= 0xC00: // 3K boot flash
		return []plannedRegion{
			{Name: "kseg0_boot_mem", Attr: "(rx)", Origin: 0x9FC00490, Length: r.Size - 0x490},
			{Name: "kseg1_boot_mem", Attr: "(rx)", Origin: 0xBFC00000, Length: 0x490},
		}
	case r.Size <= 0x3000: // 12K boot flash
		return []plannedRegion{
			{Name: "kseg0_boot_mem", Attr: "(rx)", Origin: 0x9FC00490, Length: r.Size - 0x490 - 0xFF0},
			{Name: "kseg1_boot_mem", Attr: "(rx)", Origin: 0xBFC00000, Length: 0x490},
			{Name: "debug_exec_mem", Attr: "(rx)", Origin: ksegAddr(kseg0Base, resetPhys+r.Size-0xFF0), Length: 0xFF0},
		}
	case r.Size <= 0x5000: // 20K boot flash
		return []plannedRegion{
			{Name: "kseg0_boot_mem", Attr: "(rx)", Origin: 0x9FC004B0, Length: r.Size - 0x4B0 - 0xFF0},
			{Name: "kseg1_boot_mem", Attr: "(rx)", Origin: 0xBFC00000, Length: 0x4B0},
			{Name: "debug_exec_mem", Attr: "(rx)", Origin: ksegAddr(kseg0Base, resetPhys+r.Size-0xFF0), Length: 0xFF0},
		}
	default:
		return []plannedRegion{
			{Name: "kseg0_boot_mem", Attr: "(rx)", Origin: 0x9FC004B0, Length: r.Size - 0x4B0},
			{Name: "kseg1_boot_mem", Attr: "(rx)", Origin: 0xBFC00000, Length: 0x4B0},
		}
	}
}

// planRegions classifies the device's memory regions into the kseg views.
// Region types outside the known set are dropped without a diagnostic; the
// vendor databases carry placement-less bookkeeping regions.
func planRegions(dev *model.Device) []plannedRegion {
	var out []plannedRegion
	for _, r := range dev.Memories {
		switch r.Type {
		case model.RegionBoot:
			if r.Start == resetPhys {
				out = append(out, bootRegions(r)...)
				continue
			}
			out = append(out, plannedRegion{
				Name: "kseg1_" + strings.ToLower(r.Name), Attr: "(rx)",
				Origin: ksegAddr(kseg1Base, r.Start), Length: r.Size,
			})
		case model.RegionCode:
			out = append(out, plannedRegion{
				Name: "kseg0_program_mem", Attr: "(rx)",
				Origin: ksegAddr(kseg0Base, r.Start), Length: r.Size,
			})
		case model.RegionSRAM:
			view := uint64(kseg1Base)
			name := "kseg1_data_mem"
			if strings.Contains(strings.ToLower(r.Name), "kseg0") {
				view = kseg0Base
				name = "kseg0_data_mem"
			}
			out = append(out, plannedRegion{
				Name: name, Attr: "(w!x)",
				Origin: ksegAddr(view, r.Start), Length: r.Size,
			})
		case model.RegionSDRAM:
			out = append(out, plannedRegion{
				Name: "kseg0_sdram_mem", Attr: "(wx)",
				Origin: ksegAddr(kseg0Base, r.Start), Length: r.Size,
			})
		case model.RegionEBI, model.RegionSQI:
			// External bus windows are addressable through both mapped views.
			lower := strings.ToLower(r.Type)
			out = append(out,
				plannedRegion{
					Name: "kseg2_" + lower + "_mem", Attr: "(wx)",
					Origin: kseg2Base + (r.Start & 0x1FFFFFFF), Length: r.Size,
				},
				plannedRegion{
					Name: "kseg3_" + lower + "_mem", Attr: "(wx)",
					Origin: kseg3Base + (r.Start & 0x1FFFFFFF), Length: r.Size,
				})
		case model.RegionFuse:
			out = append(out, plannedRegion{
				Name: "config_mem", Attr: "(rx)",
				Origin: ksegAddr(kseg1Base, r.Start), Length: r.Size,
			})
		case model.RegionPeripheral:
			out = append(out, plannedRegion{
				Name: "sfrs", Attr: "",
				Origin: ksegAddr(kseg1Base, r.Start), Length: r.Size,
			})
		}
	}

	out = append(out, exceptionRegion(dev)...)

	for _, cr := range dev.ConfigRegs {
		out = append(out, plannedRegion{
			Name:   fmt.Sprintf("config_%08X", ksegAddr(kseg1Base, cr.Address)),
			Origin: ksegAddr(kseg1Base, cr.Address),
			Length: 4,
		})
	}
	return out
}

// exceptionRegion synthesizes the vector memory from the interrupt list:
// 0x200 bytes of fixed exception offsets plus one 32-byte slot per vector.
func exceptionRegion(dev *model.Device) []plannedRegion {
	if len(dev.Interrupts) == 0 {
		return nil
	}
	table := layout.BuildInterruptTable(dev.Interrupts)
	return []plannedRegion{{
		Name: "exception_mem", Attr: "(rx)",
		Origin: ebaseAddress(dev),
		Length: 0x200 + uint64(table.Count())*0x20,
	}}
}

// ebaseAddress places the exception base at the cached view of program
// flash, the hardware default for parts booting with ebase relocated there.
func ebaseAddress(dev *model.Device) uint64 {
	for _, r := range dev.Memories {
		if r.Type == model.RegionCode {
			return ksegAddr(kseg0Base, r.Start)
		}
	}
	return kseg0Base
}

// generateLinkerScript renders <device>.ld: the MEMORY command from the
// planned regions and the SECTIONS command with the hardware-mandated
// placements.
func generateLinkerScript(logger *slog.Logger, outputDir string, st layout.Style, dev *model.Device) error {
	f := emit.NewFile(filepath.Join(outputDir, strings.ToLower(dev.Name)+".ld"))
	f.Printf("/*\n * Linker script for %s\n *\n", dev.Name)
	for _, line := range strings.Split(st.License.Text(), "\n") {
		f.Printf(" * %s\n", line)
	}
	f.WriteString(" */\n\n")
	f.WriteString("OUTPUT_FORMAT(\"elf32-tradlittlemips\")\nOUTPUT_ARCH(pic32mx)\nENTRY(_reset)\n\n")

	regions := planRegions(dev)

	writeAddressSymbols(f, dev)
	writeMemoryCommand(f, regions)
	writeSectionsCommand(f, dev, regions)

	if err := f.Write(); err != nil {
		return fmt.Errorf("linker script: %w", err)
	}
	logger.Info("Generated linker script", "device", dev.Name, "file", f.Path())
	return nil
}

func writeAddressSymbols(f *emit.File, dev *model.Device) {
	f.Printf("PROVIDE(_ebase_address = 0x%08X);\n", ebaseAddress(dev))
	f.WriteString("PROVIDE(_vector_spacing = 0x00000001);\n")
	f.WriteString("_RESET_ADDR              = 0xBFC00000;\n")
	f.WriteString("_BEV_EXCPT_ADDR          = 0xBFC00380;\n")
	f.WriteString("_DBG_EXCPT_ADDR          = 0xBFC00480;\n")
	f.WriteString("_SIMPLE_TLB_REFILL_ADDR  = _ebase_address + 0x000;\n")
	f.WriteString("_CACHE_ERR_ADDR          = _ebase_address + 0x100;\n")
	f.WriteString("_GEN_EXCPT_ADDR          = _ebase_address + 0x180;\n\n")
}

func writeMemoryCommand(f *emit.File, regions []plannedRegion) {
	f.WriteString("MEMORY\n{\n")
	for _, r := range regions {
		attr := ""
		if r.Attr != "" {
			attr = " " + r.Attr
		}
		f.Printf("  %-24s%s : ORIGIN = 0x%08X, LENGTH = 0x%X\n", r.Name, attr, r.Origin, r.Length)
	}
	f.WriteString("}\n\n")
}

func hasRegion(regions []plannedRegion, name string) bool {
	for _, r := range regions {
		if r.Name == name {
			return true
		}
	}
	return false
}

func writeSectionsCommand(f *emit.File, dev *model.Device, regions []plannedRegion) {
	f.WriteString("SECTIONS\n{\n")

	f.WriteString("  .reset _RESET_ADDR :\n  {\n    KEEP(*(.reset))\n    KEEP(*(.reset.startup))\n  } > kseg1_boot_mem\n\n")
	f.WriteString("  .bev_excpt _BEV_EXCPT_ADDR :\n  {\n    KEEP(*(.bev_handler))\n  } > kseg1_boot_mem\n\n")
	f.WriteString("  .dbg_excpt _DBG_EXCPT_ADDR (NOLOAD) :\n  {\n    . += (DEFINED (_DEBUGGER) ? 0x8 : 0x0);\n  } > kseg1_boot_mem\n\n")

	if hasRegion(regions, "exception_mem") {
		f.WriteString("  .simple_tlb_refill_excpt _SIMPLE_TLB_REFILL_ADDR :\n  {\n    KEEP(*(.simple_tlb_refill_vector))\n  } > exception_mem\n\n")
		if dev.Features.L1Cache {
			f.WriteString("  .cache_err_excpt _CACHE_ERR_ADDR :\n  {\n    KEEP(*(.cache_err_vector))\n  } > exception_mem\n\n")
		}
		f.WriteString("  .app_excpt _GEN_EXCPT_ADDR :\n  {\n    KEEP(*(.gen_handler))\n  } > exception_mem\n\n")
		writeVectorSections(f, dev)
	}

	f.WriteString("  .text :\n  {\n    *(.text .text.*)\n    *(.rodata .rodata.*)\n  } > kseg0_program_mem\n\n")
	f.WriteString("  .data :\n  {\n    *(.data .data.*)\n  } > kseg1_data_mem AT > kseg0_program_mem\n\n")
	f.WriteString("  .bss (NOLOAD) :\n  {\n    *(.bss .bss.*)\n    *(COMMON)\n  } > kseg1_data_mem\n")

	for _, cr := range dev.ConfigRegs {
		name := fmt.Sprintf("config_%08X", ksegAddr(kseg1Base, cr.Address))
		f.Printf("\n  .%s :\n  {\n    KEEP(*(.%s))\n  } > %s\n", name, name, name)
	}

	f.WriteString("}\n")
}

// writeVectorSections emits the interrupt vector placements. Parts without
// relocatable vector spacing get fixed 32-byte trampoline slots; the rest
// scale each slot by the _vector_spacing symbol.
func writeVectorSections(f *emit.File, dev *model.Device) {
	table := layout.BuildInterruptTable(dev.Interrupts)
	for _, v := range table.Vectors {
		if v.Index < 0 {
			continue
		}
		if dev.Features.FixedVectors {
			f.Printf("  .vector_%d _ebase_address + 0x200 + 0x%X :\n  {\n    KEEP(*(.vector_%d))\n  } > exception_mem\n\n",
				v.Index, uint64(v.Index)*0x20, v.Index)
			continue
		}
		f.Printf("  .vector_%d _ebase_address + 0x200 + (_vector_spacing << 5) * %d :\n  {\n    KEEP(*(.vector_%d))\n  } > exception_mem\n\n",
			v.Index, v.Index, v.Index)
	}
}
