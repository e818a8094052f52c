package layout

import (
	"fmt"
	"sort"
	"strings"

	"github.com/mcutools/packgen/internal/codegen/model"
)

// InterruptTable is the ordered, gap-filled view of a device's vector list.
// Vector numbers may be negative (fixed Cortex-M exceptions).
type InterruptTable struct {
	Vectors []model.Interrupt
}

// BuildInterruptTable sorts a copy of the vector list by ascending number.
func BuildInterruptTable(irqs []model.Interrupt) InterruptTable {
	sorted := make([]model.Interrupt, len(irqs))
	copy(sorted, irqs)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Index < sorted[j].Index })
	return InterruptTable{Vectors: sorted}
}

// Count returns the value of the trailing count entry: max vector number + 1.
func (t InterruptTable) Count() int {
	if len(t.Vectors) == 0 {
		return 0
	}
	return t.Vectors[len(t.Vectors)-1].Index + 1
}

// reservedName formats the synthetic filler for a vector number gap;
// negative numbers carry an M ("minus") marker.
func reservedName(n int) string {
	if n < 0 {
		return fmt.Sprintf("ReservedM%d", -n)
	}
	return fmt.Sprintf("Reserved%d", n)
}

// WriteEnum emits the IRQn enumeration with explicit vector values and the
// trailing count entry.
func (t InterruptTable) WriteEnum(b *strings.Builder, device string) {
	b.WriteString("typedef enum IRQn\n{\n")
	for _, v := range t.Vectors {
		fmt.Fprintf(b, "  %-28s = %3d, /**< %2d %s %s */\n",
			v.Name+"_IRQn", v.Index, v.Index, strings.ToUpper(device), v.Caption)
	}
	fmt.Fprintf(b, "\n  PERIPH_COUNT_IRQn            = %3d  /**< Number of peripheral IDs */\n", t.Count())
	b.WriteString("} IRQn_Type;\n\n")
}

// WriteVectorStruct emits the function-pointer vector table typedef. Gaps
// between consecutive vector numbers are padded with reserved members.
func (t InterruptTable) WriteVectorStruct(b *strings.Builder) {
	b.WriteString("typedef struct _DeviceVectors\n{\n")
	b.WriteString("  /* Stack pointer */\n")
	b.WriteString("  void* pvStack;\n\n")

	first := true
	next := 0
	for _, v := range t.Vectors {
		if first {
			next = v.Index
			first = false
		}
		for ; next < v.Index; next++ {
			fmt.Fprintf(b, "  void* pv%s;\n", reservedName(next))
		}
		fmt.Fprintf(b, "  void* pfn%s_Handler; /* %3d %s */\n", v.Name, v.Index, v.Caption)
		next = v.Index + 1
	}
	b.WriteString("} DeviceVectors;\n\n")
}

// WriteHandlerDecls emits one external handler declaration per vector.
func (t InterruptTable) WriteHandlerDecls(b *strings.Builder) {
	for _, v := range t.Vectors {
		fmt.Fprintf(b, "void %s_Handler               ( void );\n", v.Name)
	}
	b.WriteString("\n")
}

// WriteIDMacros emits the peripheral ID macros derived from the non-negative
// vectors plus the instance count macro.
func (t InterruptTable) WriteIDMacros(b *strings.Builder, device string) {
	fmt.Fprintf(b, "/* ************************************************************************** */\n")
	fmt.Fprintf(b, "/*  PERIPHERAL ID DEFINITIONS FOR %s */\n", strings.ToUpper(device))
	fmt.Fprintf(b, "/* ************************************************************************** */\n")
	for _, v := range t.Vectors {
		if v.Index < 0 {
			continue
		}
		fmt.Fprintf(b, "#define ID_%-24s (%3d) /**< \\brief %s */\n",
			strings.ToUpper(v.Name), v.Index, v.Caption)
	}
	fmt.Fprintf(b, "\n#define ID_PERIPH_COUNT              (%3d) /**< \\brief Number of peripheral IDs */\n\n", t.Count())
}
