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

func mainGuard(st layout.Style, dev *model.Device) string {
	if st.Convention == layout.Legacy {
		return fmt.Sprintf("__%s_H", strings.ToUpper(dev.Name))
	}
	return fmt.Sprintf("_INCLUDE_%s_H_", strings.ToUpper(dev.Name))
}

// generateMainHeader renders <device>.h: literal suffix macros, interrupt
// plumbing, the CMSIS core include, component/instance/pio includes and the
// device-level id, address, memory and parameter macro sections.
func generateMainHeader(logger *slog.Logger, outputDir string, st layout.Style, dev *model.Device) error {
	f := emit.NewFile(filepath.Join(outputDir, strings.ToLower(dev.Name)+".h"))
	f.WriteString(st.License.CommentBlock(fmt.Sprintf("Header file for %s", dev.Name)))
	f.WriteString("\n")
	f.OpenGuard(mainGuard(st, dev))

	f.WriteString("#ifdef __cplusplus\nextern \"C\" {\n#endif\n\n")

	writeLiteralMacros(f)
	writeInterruptSection(f, dev)
	writeCoreConfig(f, dev)
	writeIncludes(f, st, dev)

	table := layout.BuildInterruptTable(dev.Interrupts)
	table.WriteIDMacros(f.Builder(), dev.Name)

	writeBaseAddresses(f, st, dev)
	writeMemorySegments(f, dev)
	writeEventIDs(f, dev)
	writeDeviceParams(f, dev)

	f.WriteString("#ifdef __cplusplus\n}\n#endif\n\n")
	f.CloseGuard()

	if err := f.Write(); err != nil {
		return fmt.Errorf("main header: %w", err)
	}
	logger.Info("Generated device header", "device", dev.Name, "file", f.Path())
	return nil
}

// writeLiteralMacros emits the integer-literal suffix helpers, dual-defined
// so assembler passes see plain numbers.
func writeLiteralMacros(f *emit.File) {
	f.WriteString("#if !(defined(__ASSEMBLY__) || defined(__IAR_SYSTEMS_ASM__))\n")
	f.WriteString("#  define _U_(x) (x##U)    /**< C code: unsigned integer literal */\n")
	f.WriteString("#  define _L_(x) (x##L)    /**< C code: long integer literal */\n")
	f.WriteString("#  define _UL_(x) (x##UL)  /**< C code: unsigned long integer literal */\n")
	f.WriteString("#else\n")
	f.WriteString("#  define _U_(x) x         /**< Assembler: plain literal */\n")
	f.WriteString("#  define _L_(x) x\n")
	f.WriteString("#  define _UL_(x) x\n")
	f.WriteString("#endif\n\n")
}

func writeInterruptSection(f *emit.File, dev *model.Device) {
	table := layout.BuildInterruptTable(dev.Interrupts)

	f.WriteString("/* ************************************************************************** */\n")
	f.Printf("/*  INTERRUPT VECTOR MAPPING FOR %s */\n", strings.ToUpper(dev.Name))
	f.WriteString("/* ************************************************************************** */\n\n")

	f.WriteString("#if !(defined(__ASSEMBLY__) || defined(__IAR_SYSTEMS_ASM__))\n")
	table.WriteEnum(f.Builder(), dev.Name)
	table.WriteVectorStruct(f.Builder())
	table.WriteHandlerDecls(f.Builder())
	f.WriteString("#endif /* !(defined(__ASSEMBLY__) || defined(__IAR_SYSTEMS_ASM__)) */\n\n")
}

// writeCoreConfig emits the double-underscore CMSIS configuration parameters
// from the device description, then pulls in the matching core header.
func writeCoreConfig(f *emit.File, dev *model.Device) {
	for _, p := range dev.Parameters {
		if !strings.HasPrefix(p.Name, "__") {
			continue
		}
		f.Printf("#define %-28s %-8s %s\n", p.Name, p.Value, paramComment(dev.Name, p.Caption))
	}
	if dev.CPU != "" {
		f.Printf("\n#include <core_%s.h>\n", dev.CPU)
	}
	f.WriteString("\n")
}

func writeIncludes(f *emit.File, st layout.Style, dev *model.Device) {
	f.WriteString("/* ************************************************************************** */\n")
	f.Printf("/*  PERIPHERAL HEADER FILES FOR %s */\n", strings.ToUpper(dev.Name))
	f.WriteString("/* ************************************************************************** */\n")
	for _, p := range dev.Peripherals {
		f.Printf("#include \"component/%s\"\n", componentFileName(p))
	}
	f.Printf("#include \"instances/%s.h\"\n", strings.ToLower(dev.Name))
	if st.EmitPIO() {
		f.Printf("#include \"pio/%s.h\"\n", strings.ToLower(dev.Name))
	}
	f.WriteString("\n")
}

// baseTypeName returns the C type the base-address macro casts to, following
// the same mode-union rule as the group layout.
func baseTypeName(st layout.Style, p model.Peripheral) string {
	bg := p.BaseGroup()
	if bg == nil {
		return ""
	}
	if len(bg.Modes) > 2 {
		return layout.GroupTypeName(st, p.Name, bg.Name, "")
	}
	return layout.GroupTypeName(st, p.Name, bg.Name, model.DefaultMode)
}

func writeBaseAddresses(f *emit.File, st layout.Style, dev *model.Device) {
	f.WriteString("/* ************************************************************************** */\n")
	f.Printf("/*  BASE ADDRESS DEFINITIONS FOR %s */\n", strings.ToUpper(dev.Name))
	f.WriteString("/* ************************************************************************** */\n")

	f.WriteString("#if !(defined(__ASSEMBLY__) || defined(__IAR_SYSTEMS_ASM__))\n")
	for _, p := range dev.Peripherals {
		typeName := baseTypeName(st, p)
		if typeName == "" {
			continue
		}
		for _, inst := range p.Instances {
			f.Printf("#define %-20s ((%s *)0x%08XUL) /**< \\brief (%s) Base Address */\n",
				inst.Name, typeName, inst.BaseAddr, inst.Name)
		}
	}
	f.WriteString("#endif /* !(defined(__ASSEMBLY__) || defined(__IAR_SYSTEMS_ASM__)) */\n\n")

	for _, p := range dev.Peripherals {
		for _, inst := range p.Instances {
			f.Printf("#define %-28s _UL_(0x%08X)\n", strings.ToUpper(inst.Name)+"_BASE_ADDRESS", inst.BaseAddr)
		}
	}
	f.WriteString("\n")
}

func writeMemorySegments(f *emit.File, dev *model.Device) {
	if len(dev.Memories) == 0 {
		return
	}
	f.WriteString("/* ************************************************************************** */\n")
	f.Printf("/*  MEMORY SEGMENTS FOR %s */\n", strings.ToUpper(dev.Name))
	f.WriteString("/* ************************************************************************** */\n")
	for _, m := range dev.Memories {
		name := strings.ToUpper(m.Name)
		f.Printf("#define %-28s _UL_(0x%08X)\n", name+"_ADDR", m.Start)
		f.Printf("#define %-28s _UL_(0x%08X)\n", name+"_SIZE", m.Size)
		if m.PageSize > 0 {
			f.Printf("#define %-28s %d\n", name+"_PAGE_SIZE", m.PageSize)
			f.Printf("#define %-28s %d\n", name+"_NB_OF_PAGES", m.Size/m.PageSize)
		}
	}
	f.WriteString("\n")
}

func writeEventIDs(f *emit.File, dev *model.Device) {
	if len(dev.Events) == 0 {
		return
	}
	f.WriteString("/* ************************************************************************** */\n")
	f.Printf("/*  EVENT GENERATOR IDS FOR %s */\n", strings.ToUpper(dev.Name))
	f.WriteString("/* ************************************************************************** */\n")
	for _, ev := range dev.Events {
		f.Printf("#define %-36s (%d) /**< \\brief %s */\n",
			"EVSYS_ID_GEN_"+strings.ToUpper(ev.Name), ev.Index, ev.Instance)
	}
	f.WriteString("\n")
}

// writeDeviceParams emits the signature and electrical characteristic macros.
// CMSIS configuration parameters were already emitted before the core include.
func writeDeviceParams(f *emit.File, dev *model.Device) {
	var params []model.Param
	for _, p := range dev.Parameters {
		if strings.HasPrefix(p.Name, "__") || p.Name == "" {
			continue
		}
		params = append(params, p)
	}
	if len(params) == 0 {
		return
	}
	f.WriteString("/* ************************************************************************** */\n")
	f.Printf("/*  DEVICE SIGNATURE AND ELECTRICAL DEFINITIONS FOR %s */\n", strings.ToUpper(dev.Name))
	f.WriteString("/* ************************************************************************** */\n")
	for _, p := range params {
		f.Printf("#define %-28s %-10s %s\n", p.Name, p.Value, paramComment(dev.Name, p.Caption))
	}
	f.WriteString("\n")
}

func paramComment(device, text string) string {
	return fmt.Sprintf("/**< (%s) %s */", strings.ToUpper(device), strings.TrimSpace(text))
}
