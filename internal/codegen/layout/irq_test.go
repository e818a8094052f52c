package layout

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mcutools/packgen/internal/codegen/model"
)

func sparseVectors() []model.Interrupt {
	return []model.Interrupt{
		{Name: "NMI", Index: -1, Caption: "Non maskable"},
		{Name: "PM", Index: 0, Caption: "Power manager"},
		{Name: "EIC", Index: 2, Caption: "External interrupts"},
		{Name: "TC0", Index: 5, Caption: "Timer 0"},
	}
}

func TestInterruptTableGapFill(t *testing.T) {
	table := BuildInterruptTable(sparseVectors())

	var b strings.Builder
	table.WriteVectorStruct(&b)
	out := b.String()

	// Gaps at 1, 3 and 4 get reserved fillers; nothing else does.
	assert.Contains(t, out, "pvReserved1;")
	assert.Contains(t, out, "pvReserved3;")
	assert.Contains(t, out, "pvReserved4;")
	assert.Equal(t, 3, strings.Count(out, "pvReserved"))

	assert.Contains(t, out, "pfnNMI_Handler")
	assert.Contains(t, out, "pfnTC0_Handler")
}

func TestInterruptTableCount(t *testing.T) {
	table := BuildInterruptTable(sparseVectors())
	assert.Equal(t, 6, table.Count())

	var b strings.Builder
	table.WriteEnum(&b, "SAMD21G18A")
	assert.Contains(t, b.String(), "PERIPH_COUNT_IRQn            =   6")
}

func TestInterruptTableSortsInput(t *testing.T) {
	shuffled := []model.Interrupt{
		{Name: "TC0", Index: 5},
		{Name: "NMI", Index: -1},
		{Name: "PM", Index: 0},
	}
	table := BuildInterruptTable(shuffled)
	assert.Equal(t, -1, table.Vectors[0].Index)
	assert.Equal(t, 5, table.Vectors[len(table.Vectors)-1].Index)
}

func TestNegativeVectorFillers(t *testing.T) {
	table := BuildInterruptTable([]model.Interrupt{
		{Name: "HardFault", Index: -13},
		{Name: "SVCall", Index: -5},
	})
	var b strings.Builder
	table.WriteVectorStruct(&b)
	out := b.String()

	assert.Contains(t, out, "pvReservedM12;")
	assert.Contains(t, out, "pvReservedM6;")
	assert.NotContains(t, out, "pvReservedM13;")
}

func TestHandlerDeclarations(t *testing.T) {
	table := BuildInterruptTable(sparseVectors())
	var b strings.Builder
	table.WriteHandlerDecls(&b)
	out := b.String()

	for _, name := range []string{"NMI", "PM", "EIC", "TC0"} {
		assert.Contains(t, out, "void "+name+"_Handler")
	}
}

func TestIDMacrosSkipNegativeVectors(t *testing.T) {
	table := BuildInterruptTable(sparseVectors())
	var b strings.Builder
	table.WriteIDMacros(&b, "SAMD21G18A")
	out := b.String()

	assert.NotContains(t, out, "ID_NMI")
	assert.Contains(t, out, "ID_PM")
	assert.Contains(t, out, "ID_TC0")
	assert.Contains(t, out, "ID_PERIPH_COUNT")
}
