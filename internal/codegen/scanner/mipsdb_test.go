package scanner

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcutools/packgen/internal/codegen/model"
)

const sampleMIPSDB = `
name: PIC32MZ2048EFH064
architecture: MIPS32
family: PIC32
series: PIC32MZ
cpu: m5150
features:
  fpu: true
  dsp: true
  l1cache: true
  micromips: true
  fixedVectors: false
sfrs:
  - peripheral: UART1
    id: "02100"
    base: 0x1F822000
    registers:
      - name: U1MODE
        offset: 0x0
        size: 4
        access: RW
        init: 0x0
        caption: UART1 mode
        bitfields:
          - name: ON
            lsb: 15
            width: 1
            caption: Enable
          - name: BRGH
            lsb: 3
            caption: High baud rate
      - name: U1STA
        offset: 0x10
        size: 4
        access: RW
        caption: UART1 status
dcrs:
  - name: DEVCFG0
    address: 0x1FC0FFCC
    default: 0x7FFFFFFF
interrupts:
  - name: CORE_TIMER
    index: 0
    caption: Core timer
  - name: UART1_RX
    index: 113
    caption: UART1 receive
memories:
  - name: boot_flash
    start: 0x1FC00000
    size: 0x5000
    type: boot
  - name: program_flash
    start: 0x1D000000
    size: 0x200000
    type: code
  - name: data_ram
    start: 0x00000000
    size: 0x80000
    type: sram
  - name: peripheral_bus
    start: 0x1F800000
    size: 0x100000
    type: peripheral
`

func TestParseMIPSDB(t *testing.T) {
	dev, err := ParseMIPSDB([]byte(sampleMIPSDB), "pic32mz.yaml")
	require.NoError(t, err)

	assert.Equal(t, "PIC32MZ2048EFH064", dev.Name)
	assert.Equal(t, "MIPS32", dev.Architecture)
	assert.Equal(t, "m5150", dev.CPU)
	assert.True(t, dev.Features.FPU)
	assert.True(t, dev.Features.L1Cache)
	assert.False(t, dev.Features.FixedVectors)

	require.Len(t, dev.ConfigRegs, 1)
	assert.Equal(t, uint64(0x1FC0FFCC), dev.ConfigRegs[0].Address)
	assert.Equal(t, uint64(0x7FFFFFFF), dev.ConfigRegs[0].Default)

	require.Len(t, dev.Memories, 4)
	assert.Equal(t, model.RegionBoot, dev.Memories[0].Type)
}

func TestParseMIPSDBPeripheral(t *testing.T) {
	dev, err := ParseMIPSDB([]byte(sampleMIPSDB), "pic32mz.yaml")
	require.NoError(t, err)

	p := dev.Peripheral("UART1")
	require.NotNil(t, p)
	assert.Equal(t, "02100", p.ID)

	bg := p.BaseGroup()
	require.NotNil(t, bg)
	// Group size is derived from the last register's end.
	assert.Equal(t, 0x14, bg.Size)

	require.Len(t, bg.Modes, 1)
	regs := bg.Modes[0].Registers
	require.Len(t, regs, 2)
	assert.Equal(t, "U1MODE", regs[0].Name)

	fields := regs[0].Modes[0].Fields
	require.Len(t, fields, 2)
	// Sorted by lsb; omitted widths default to 1.
	assert.Equal(t, "BRGH", fields[0].Name)
	assert.Equal(t, 1, fields[0].Width)
	assert.Equal(t, "ON", fields[1].Name)
	assert.Equal(t, 15, fields[1].Lsb)

	require.Len(t, p.Instances, 1)
	assert.Equal(t, uint64(0x1F822000), p.Instances[0].BaseAddr)
}

func TestParseMIPSDBMissingName(t *testing.T) {
	_, err := ParseMIPSDB([]byte(`architecture: MIPS32`), "anon.yaml")
	require.Error(t, err)
	assert.True(t, IsFormat(err))
}

func TestParseMIPSDBEmptyRegisters(t *testing.T) {
	const doc = `
name: PIC32X
sfrs:
  - peripheral: GHOST
`
	_, err := ParseMIPSDB([]byte(doc), "ghost.yaml")
	require.Error(t, err)
	assert.True(t, IsFormat(err))
	assert.Contains(t, err.Error(), "GHOST")
}

func TestParseMIPSDBDefaultsArchitecture(t *testing.T) {
	dev, err := ParseMIPSDB([]byte(`name: PIC32X`), "min.yaml")
	require.NoError(t, err)
	assert.Equal(t, "MIPS", dev.Architecture)
}
