package layout

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mcutools/packgen/internal/codegen/model"
)

func simpleRegister() model.Register {
	return model.Register{
		Name:       "CTRL",
		Peripheral: "TC",
		Caption:    "Control",
		Size:       4,
		Offset:     0x00,
		Access:     model.AccessReadWrite,
		Modes: []model.BitfieldMode{{
			Name: model.DefaultMode,
			Fields: []model.Bitfield{
				{Name: "EN", Caption: "Enable", Lsb: 0, Width: 1},
				{Name: "VAL", Caption: "Value", Lsb: 4, Width: 4},
			},
		}},
	}
}

func TestWriteRegisterBitStruct(t *testing.T) {
	var b strings.Builder
	WriteRegister(&b, MicrochipStyle, simpleRegister())
	out := b.String()

	assert.Contains(t, out, "uint32_t EN:1;")
	assert.Contains(t, out, "uint32_t :3;")
	assert.Contains(t, out, "uint32_t VAL:4;")
	assert.Contains(t, out, "uint32_t :24;")
	assert.Contains(t, out, "uint32_t reg;")
	assert.Contains(t, out, "} TC_CTRL_Type;")
}

func TestWriteRegisterMacros(t *testing.T) {
	var b strings.Builder
	WriteRegister(&b, MicrochipStyle, simpleRegister())
	out := b.String()

	assert.Contains(t, out, "TC_CTRL_EN_Pos")
	assert.Contains(t, out, "(0)")
	assert.Contains(t, out, "_U_(0x1)")
	assert.Contains(t, out, "TC_CTRL_VAL_Pos")
	assert.Contains(t, out, "(4)")
	assert.Contains(t, out, "_U_(0xF0)")
	assert.Contains(t, out, "TC_CTRL_EN(value)")
	assert.Contains(t, out, "TC_CTRL_OFFSET")
	assert.Contains(t, out, "TC_CTRL_RESETVALUE")
	// The register mask is the union of its field masks.
	assert.Contains(t, out, "TC_CTRL_MASK")
	assert.Contains(t, out, "_U_(0x000000F1)")
}

func TestMaskAliasPerStyle(t *testing.T) {
	var legacy, microchip strings.Builder
	WriteRegister(&legacy, LegacyStyle, simpleRegister())
	WriteRegister(&microchip, MicrochipStyle, simpleRegister())

	assert.NotContains(t, legacy.String(), "TC_CTRL_Msk")
	assert.Contains(t, microchip.String(), "TC_CTRL_Msk")
}

func TestRegisterMaskUnionIdentity(t *testing.T) {
	r := simpleRegister()
	var want uint64
	for _, f := range r.Modes[0].Fields {
		want |= f.Mask()
	}
	assert.Equal(t, want, r.Mask())
}

func TestWriteRegisterVecStruct(t *testing.T) {
	r := model.Register{
		Name:       "INTFLAG",
		Peripheral: "SERCOM",
		Caption:    "Interrupt Flags",
		Size:       1,
		Access:     model.AccessReadWrite,
		Modes: []model.BitfieldMode{{
			Name: model.DefaultMode,
			Fields: []model.Bitfield{
				{Name: "TX0", Lsb: 0, Width: 1},
				{Name: "TX1", Lsb: 1, Width: 1},
				{Name: "TX2", Lsb: 2, Width: 1},
			},
		}},
	}

	var b strings.Builder
	WriteRegister(&b, MicrochipStyle, r)
	out := b.String()

	assert.Contains(t, out, "uint8_t TX:3;")
	assert.Contains(t, out, "} vec;")
	assert.Contains(t, out, "SERCOM_INTFLAG_TX_Msk")
	assert.Contains(t, out, "_U_(0x7)")
}

// Captionless fields must not leave trailing blanks in the bit-span comments.
func TestCaptionlessFieldComments(t *testing.T) {
	r := model.Register{
		Name: "INTFLAG", Peripheral: "SERCOM", Size: 1,
		Modes: []model.BitfieldMode{{
			Name: model.DefaultMode,
			Fields: []model.Bitfield{
				{Name: "TX0", Lsb: 0, Width: 1},
				{Name: "RX", Lsb: 4, Width: 2},
			},
		}},
	}
	var b strings.Builder
	WriteRegister(&b, MicrochipStyle, r)
	out := b.String()

	assert.Contains(t, out, "/*!< bit:      0 */")
	assert.Contains(t, out, "/*!< bit:  4.. 5 */")
	assert.NotContains(t, out, "  */")
}

// Vecfields only apply to single-mode registers, and MIPS output never
// carries them.
func TestVecStructSuppressed(t *testing.T) {
	multi := simpleRegister()
	multi.Modes = append(multi.Modes, model.BitfieldMode{
		Name:   "ALT",
		Fields: []model.Bitfield{{Name: "TX0", Lsb: 0, Width: 1}, {Name: "TX1", Lsb: 1, Width: 1}},
	})
	var b strings.Builder
	WriteRegister(&b, MicrochipStyle, multi)
	assert.NotContains(t, b.String(), "} vec;")

	single := model.Register{
		Name: "FLAGS", Peripheral: "UART", Size: 1,
		Modes: []model.BitfieldMode{{
			Name:   model.DefaultMode,
			Fields: []model.Bitfield{{Name: "TX0", Lsb: 0, Width: 1}, {Name: "TX1", Lsb: 1, Width: 1}},
		}},
	}
	b.Reset()
	WriteRegister(&b, MIPSStyle, single)
	assert.NotContains(t, b.String(), "} vec;")
}

func TestMultiModeRegister(t *testing.T) {
	r := model.Register{
		Name:       "COUNT",
		Peripheral: "TC",
		Size:       2,
		Access:     model.AccessReadWrite,
		Modes: []model.BitfieldMode{
			{Name: "COUNT8", Fields: []model.Bitfield{{Name: "COUNT", Lsb: 0, Width: 8}}},
			{Name: "COUNT16", Fields: []model.Bitfield{{Name: "COUNT", Lsb: 0, Width: 16}}},
		},
	}
	var b strings.Builder
	WriteRegister(&b, MicrochipStyle, r)
	out := b.String()

	assert.Contains(t, out, "} COUNT8;")
	assert.Contains(t, out, "} COUNT16;")
	// Field macros carry the mode-qualified register prefix plus the field
	// name, and each mode gets an aggregate mask.
	assert.Contains(t, out, "TC_COUNT8_COUNT_COUNT_Pos")
	assert.Contains(t, out, "TC_COUNT8_COUNT_COUNT_Msk")
	assert.Contains(t, out, "TC_COUNT16_COUNT_COUNT_Pos")
	assert.Contains(t, out, "TC_COUNT_MASK_COUNT8")
	assert.Contains(t, out, "TC_COUNT_MASK_COUNT16")
}

func TestEnumOptionMacros(t *testing.T) {
	r := model.Register{
		Name:       "CTRLA",
		Peripheral: "GCLK",
		Size:       4,
		Modes: []model.BitfieldMode{{
			Name: model.DefaultMode,
			Fields: []model.Bitfield{{
				Name: "SRC", Lsb: 8, Width: 4,
				Values: []model.EnumValue{
					{Name: "XOSC", Value: 0, Caption: "External oscillator"},
					{Name: "DFLL", Value: 6, Caption: "DFLL output"},
				},
			}},
		}},
	}
	var b strings.Builder
	WriteRegister(&b, MicrochipStyle, r)
	out := b.String()

	// First pass: literal option values. Second pass: shifted macros.
	assert.Contains(t, out, "GCLK_CTRLA_SRC_XOSC_Val")
	assert.Contains(t, out, "GCLK_CTRLA_SRC_DFLL_Val")
	assert.Contains(t, out, "(GCLK_CTRLA_SRC_XOSC_Val << GCLK_CTRLA_SRC_Pos)")
	assert.Less(t, strings.Index(out, "SRC_XOSC_Val"), strings.Index(out, "SRC_XOSC_Val << "))
}

func TestGroupAliasSkipped(t *testing.T) {
	var b strings.Builder
	WriteRegister(&b, MicrochipStyle, model.Register{Name: "GROUP", Peripheral: "PORT", GroupAlias: "PORT_GROUP"})
	assert.Empty(t, b.String())
}
