// Package layout is the register/bitfield-to-C translation core. Given the
// read-only device snapshot it derives identifier names, gap-filled bitfield
// sequences, vecfield coalescing, register union typedefs with their macro
// blocks, group structs and interrupt tables. Everything here is a pure
// function of its inputs; the generator packages own all file I/O.
package layout

import "github.com/mcutools/packgen/internal/codegen/common"

// Convention selects the identifier naming rules of a header generation.
type Convention int

const (
	// Legacy is the older header style: PascalCase group types, RoReg
	// padding members, PIO headers, duplicate vecfields anonymized.
	Legacy Convention = iota
	// Microchip is the newer style: snake_case `_registers_t` group types,
	// `_Msk` alias macros, duplicate vecfields deleted.
	Microchip
)

// Style is the single policy value threaded through every engine. The four
// historical generator variants collapse into these preset values.
type Style struct {
	Convention Convention
	License    common.License
	Vecfields  bool // coalesce single-bit runs into vec structs/macros
}

var (
	LegacyStyle    = Style{Convention: Legacy, License: common.LicenseLegacyASF, Vecfields: true}
	MicrochipStyle = Style{Convention: Microchip, License: common.LicenseApache, Vecfields: true}
	// MIPSStyle drives the PIC32 header set: Microchip naming, its own
	// license text, no vecfield emission.
	MIPSStyle = Style{Convention: Microchip, License: common.LicenseMIPS, Vecfields: false}
)

// MaskAlias reports whether the register mask macro gets a `_Msk` alias.
func (s Style) MaskAlias() bool { return s.Convention == Microchip }

// DeleteDupVecfields reports the duplicate-name resolution: delete outright
// (newer style) vs. replace with an anonymous gap (legacy).
func (s Style) DeleteDupVecfields() bool { return s.Convention == Microchip }

// EmitPIO reports whether a per-device pio header is generated.
func (s Style) EmitPIO() bool { return s.Convention == Legacy }
