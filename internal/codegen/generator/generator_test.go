package generator

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcutools/packgen/internal/codegen/layout"
	"github.com/mcutools/packgen/internal/codegen/model"
)

const minimalMIPSDB = `
name: PIC32TINY
architecture: MIPS32
cpu: m4k
sfrs:
  - peripheral: WDT
    base: 0x1F800800
    registers:
      - name: WDTCON
        offset: 0x0
        size: 4
        access: RW
        bitfields:
          - name: ON
            lsb: 15
interrupts:
  - name: CORE_TIMER
    index: 0
memories:
  - name: boot_flash
    start: 0x1FC00000
    size: 0xC00
    type: boot
  - name: program_flash
    start: 0x1D000000
    size: 0x8000
    type: code
  - name: data_ram
    start: 0x0
    size: 0x2000
    type: sram
`

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestGenerateFileUnsupportedExtension(t *testing.T) {
	g := New(t.TempDir(), layout.MicrochipStyle, testLogger())
	err := g.GenerateFile("device.svd")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported device description")
}

func TestGenerateFileMIPS(t *testing.T) {
	in := filepath.Join(t.TempDir(), "pic32tiny.yaml")
	require.NoError(t, os.WriteFile(in, []byte(minimalMIPSDB), 0o644))

	out := t.TempDir()
	// The configured style is overridden for MIPS targets.
	g := New(out, layout.MicrochipStyle, testLogger())
	require.NoError(t, g.GenerateFile(in))

	assert.FileExists(t, filepath.Join(out, "pic32tiny.h"))
	assert.FileExists(t, filepath.Join(out, "pic32tiny.ld"))
}

func TestGenerateDeviceUnknownArchitecture(t *testing.T) {
	g := New(t.TempDir(), layout.MicrochipStyle, testLogger())
	err := g.GenerateDevice(&model.Device{Name: "RISCVX", Architecture: "RV32IMAC"})
	require.NoError(t, err) // non-MIPS falls through to the Cortex-M generator
}

func TestArchOf(t *testing.T) {
	assert.Equal(t, "arm", archOf(&model.Device{Architecture: "CORTEX-M4"}))
	assert.Equal(t, "mips", archOf(&model.Device{Architecture: "MIPS32"}))
	assert.Equal(t, "mips", archOf(&model.Device{Architecture: "mips32r5"}))
}
