package arm

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcutools/packgen/internal/codegen/emit"
	"github.com/mcutools/packgen/internal/codegen/layout"
	"github.com/mcutools/packgen/internal/codegen/model"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testDevice() *model.Device {
	return &model.Device{
		Name:         "SAMTEST",
		Architecture: "CORTEX-M0PLUS",
		Family:       "SAMD",
		Series:       "SAMD21",
		CPU:          "cm0plus",
		Parameters: []model.Param{
			{Name: "__NVIC_PRIO_BITS", Value: "2", Caption: "NVIC priority bits"},
			{Name: "CHIP_DSU_DID", Value: "0x10010205", Caption: "Device ID"},
		},
		Peripherals: []model.Peripheral{{
			Name:    "TC",
			ID:      "6445",
			Version: "1.0.0",
			Groups: []model.RegisterGroup{{
				Name:       "TC",
				Peripheral: "TC",
				Size:       8,
				Modes: []model.GroupMode{{
					Name: model.DefaultMode,
					Registers: []model.Register{{
						Name:       "CTRLA",
						Peripheral: "TC",
						Caption:    "Control A",
						Size:       4,
						Offset:     0,
						Access:     model.AccessReadWrite,
						Modes: []model.BitfieldMode{{
							Name:   model.DefaultMode,
							Fields: []model.Bitfield{{Name: "ENABLE", Caption: "Enable", Lsb: 1, Width: 1}},
						}},
					}},
				}},
			}},
			Instances: []model.Instance{{
				Name:     "TC0",
				BaseAddr: 0x42000000,
				ID:       9,
				Params:   []model.Param{{Name: "GCLK_ID", Value: "26", Caption: "Clock index"}},
				Signals: []model.Signal{
					{Pad: "PA08", Function: "E", Group: "WO", Index: 0},
					{Pad: "RESET", Function: "A", Group: "WO", Index: 1},
				},
			}},
		}},
		Interrupts: []model.Interrupt{
			{Name: "NMI", Index: -14, Caption: "Non maskable"},
			{Name: "TC0", Index: 9, Caption: "Timer 0", Peripheral: "TC0"},
		},
		Memories: []model.MemoryRegion{
			{Name: "FLASH", Start: 0, Size: 0x40000, PageSize: 0x40, Type: "flash", Exec: true},
		},
		Events: []model.Event{{Name: "TC0_OVF", Index: 52, Instance: "TC0"}},
		Pins:   []string{"PA00", "PA08", "RESET"},
	}
}

func TestGenerateMicrochipStyle(t *testing.T) {
	dir := t.TempDir()
	dev := testDevice()

	err := Generate(testLogger(), dir, dev, layout.MicrochipStyle, emit.NewRunCache(nil))
	require.NoError(t, err)

	main := readFile(t, filepath.Join(dir, "samtest.h"))
	assert.Contains(t, main, "#ifndef _INCLUDE_SAMTEST_H_")
	assert.Contains(t, main, "#  define _U_(x) (x##U)")
	assert.Contains(t, main, "#include <core_cm0plus.h>")
	assert.Contains(t, main, "#define __NVIC_PRIO_BITS")
	assert.Contains(t, main, "TC0_IRQn")
	assert.Contains(t, main, "#include \"component/tc_6445.h\"")
	assert.Contains(t, main, "#include \"instances/samtest.h\"")
	assert.NotContains(t, main, "pio/samtest.h")
	assert.Contains(t, main, "TC0_BASE_ADDRESS")
	assert.Contains(t, main, "FLASH_SIZE")
	assert.Contains(t, main, "FLASH_NB_OF_PAGES")
	assert.Contains(t, main, "EVSYS_ID_GEN_TC0_OVF")

	component := readFile(t, filepath.Join(dir, "component", "tc_6445.h"))
	assert.Contains(t, component, "#ifndef _SAMD21_TC_COMPONENT_")
	assert.Contains(t, component, "TC_CTRLA_OFFSET")
	assert.Contains(t, component, "TC_CTRLA_ENABLE_Pos")
	assert.Contains(t, component, "} tc_registers_t;")

	instances := readFile(t, filepath.Join(dir, "instances", "samtest.h"))
	assert.Contains(t, instances, "#ifndef _SAMTEST_INSTANCES_")
	assert.Contains(t, instances, "REG_TC0_CTRLA")
	assert.Contains(t, instances, "(0x42000000)")
	assert.Contains(t, instances, "TC0_GCLK_ID")
	assert.Contains(t, instances, "TC0_INSTANCE_ID")

	_, err = os.Stat(filepath.Join(dir, "pio", "samtest.h"))
	assert.True(t, os.IsNotExist(err))
}

func TestGenerateLegacyStyle(t *testing.T) {
	dir := t.TempDir()
	dev := testDevice()

	err := Generate(testLogger(), dir, dev, layout.LegacyStyle, emit.NewRunCache(nil))
	require.NoError(t, err)

	main := readFile(t, filepath.Join(dir, "samtest.h"))
	assert.Contains(t, main, "#ifndef __SAMTEST_H")
	assert.Contains(t, main, "#include \"pio/samtest.h\"")

	pio := readFile(t, filepath.Join(dir, "pio", "samtest.h"))
	assert.Contains(t, pio, "#ifndef _SAMTEST_PIO_")
	assert.Contains(t, pio, "PIN_PA00")
	assert.Contains(t, pio, "PIN_PA08E_TC0_WO0")
	assert.Contains(t, pio, "MUX_PA08E_TC0_WO0")
	// The RESET pad has no pin number and is skipped.
	assert.NotContains(t, pio, "RESET")

	component := readFile(t, filepath.Join(dir, "component", "tc_6445.h"))
	assert.Contains(t, component, "} Tc;")
	assert.NotContains(t, component, "_registers_t")
}

func TestComponentCacheSharedAcrossDevices(t *testing.T) {
	dir := t.TempDir()
	cache := emit.NewRunCache(nil)

	require.NoError(t, Generate(testLogger(), dir, testDevice(), layout.MicrochipStyle, cache))

	second := testDevice()
	second.Name = "SAMTEST2"
	require.NoError(t, Generate(testLogger(), dir, second, layout.MicrochipStyle, cache))

	// One shared component, two main headers.
	assert.Equal(t, 1, cache.Len())
	assert.FileExists(t, filepath.Join(dir, "samtest.h"))
	assert.FileExists(t, filepath.Join(dir, "samtest2.h"))
	assert.FileExists(t, filepath.Join(dir, "component", "tc_6445.h"))
}

func TestPinIndex(t *testing.T) {
	tests := []struct {
		pad  string
		want int
		ok   bool
	}{
		{"PA00", 0, true},
		{"PA08", 8, true},
		{"PB02", 34, true},
		{"PC31", 95, true},
		{"RESET", 0, false},
		{"GNDANA", 0, false},
		{"PA", 0, false},
	}
	for _, tt := range tests {
		got, err := pinIndex(tt.pad)
		if tt.ok {
			assert.NoError(t, err, "pad %s", tt.pad)
			assert.Equal(t, tt.want, got, "pad %s", tt.pad)
		} else {
			assert.Error(t, err, "pad %s", tt.pad)
		}
	}
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}
