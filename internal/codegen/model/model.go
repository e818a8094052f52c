// Package model holds the read-only device snapshot consumed by the code
// generators. Instances are built once by a scanner and never mutated;
// the layout engines only derive names and text from them.
package model

import "sort"

// Access describes how software may touch a register.
type Access int

const (
	AccessReadWrite Access = iota
	AccessReadOnly
	AccessWriteOnly
)

// String returns the short form used in generated comments ("R/W", "R", "W").
func (a Access) String() string {
	switch a {
	case AccessReadOnly:
		return "R"
	case AccessWriteOnly:
		return "W"
	default:
		return "R/W"
	}
}

// DefaultMode is the implicit bitfield/group mode. Members of this mode are
// replicated into every other named mode before layout.
const DefaultMode = "DEFAULT"

// EnumValue is one enumerated option of a bitfield.
type EnumValue struct {
	Name    string
	Value   uint64
	Caption string
}

// Bitfield is a named sub-range of bits within one register mode.
type Bitfield struct {
	Name    string
	Caption string
	Lsb     int
	Width   int
	Values  []EnumValue
}

// Msb returns the most significant bit covered by the field.
func (b Bitfield) Msb() int { return b.Lsb + b.Width - 1 }

// Mask returns the field's bit mask within the register.
func (b Bitfield) Mask() uint64 {
	if b.Width <= 0 {
		return 0
	}
	if b.Width >= 64 {
		return ^uint64(0) << b.Lsb
	}
	return ((uint64(1) << b.Width) - 1) << b.Lsb
}

// BitfieldMode is one named access view of a register's bits.
type BitfieldMode struct {
	Name   string
	Fields []Bitfield
}

// Register is one addressable register slot inside a group.
type Register struct {
	Name       string
	Peripheral string // owning peripheral name
	Caption    string
	Size       int // bytes: 1, 2 or 4
	Offset     uint64
	Access     Access
	InitVal    uint64
	Count      int // array repeat at stride Size; 0 or 1 means scalar
	GroupAlias string // when non-empty, this slot embeds the named sub-group
	Modes      []BitfieldMode
}

// IsGroupAlias reports whether the slot embeds a sub-group instead of a value.
func (r Register) IsGroupAlias() bool { return r.GroupAlias != "" }

// Bits returns the register width in bits.
func (r Register) Bits() int { return r.Size * 8 }

// Mask returns the union of all bitfield masks across all modes. Registers
// without bitfields report an all-implemented mask for their width.
func (r Register) Mask() uint64 {
	var m uint64
	for _, mode := range r.Modes {
		for _, f := range mode.Fields {
			m |= f.Mask()
		}
	}
	if m == 0 && len(r.Modes) == 0 {
		if r.Bits() >= 64 {
			return ^uint64(0)
		}
		return (uint64(1) << r.Bits()) - 1
	}
	return m
}

// ModeMask returns the union of bitfield masks of one mode.
func (r Register) ModeMask(mode string) uint64 {
	var m uint64
	for _, bm := range r.Modes {
		if bm.Name == mode {
			for _, f := range bm.Fields {
				m |= f.Mask()
			}
		}
	}
	return m
}

// Fields returns the ordered bitfields of the named mode, or nil.
func (r Register) Fields(mode string) []Bitfield {
	for _, bm := range r.Modes {
		if bm.Name == mode {
			return bm.Fields
		}
	}
	return nil
}

// DefaultFields returns the bitfields of the DEFAULT (or only) mode.
func (r Register) DefaultFields() []Bitfield {
	if f := r.Fields(DefaultMode); f != nil {
		return f
	}
	if len(r.Modes) == 1 {
		return r.Modes[0].Fields
	}
	return nil
}

// GroupMode is one named member view of a register group.
type GroupMode struct {
	Name      string
	Registers []Register
}

// RegisterGroup describes a contiguous span of peripheral memory.
type RegisterGroup struct {
	Name       string
	Peripheral string
	Caption    string
	Size       int // bytes
	Align      int // 0 means natural alignment
	Section    string
	Modes      []GroupMode
}

// ModeNames returns the distinct mode names in declaration order.
func (g RegisterGroup) ModeNames() []string {
	names := make([]string, 0, len(g.Modes))
	for _, m := range g.Modes {
		names = append(names, m.Name)
	}
	return names
}

// ExpandedModes applies the DEFAULT replication rule: when a group carries
// more than one mode, the DEFAULT mode's registers are merged into every other
// mode (sorted by offset) before layout. Single-mode groups pass through.
func (g RegisterGroup) ExpandedModes() []GroupMode {
	if len(g.Modes) <= 1 {
		return g.Modes
	}
	var def []Register
	for _, m := range g.Modes {
		if m.Name == DefaultMode {
			def = m.Registers
			break
		}
	}
	out := make([]GroupMode, 0, len(g.Modes))
	for _, m := range g.Modes {
		if m.Name == DefaultMode || len(def) == 0 {
			out = append(out, m)
			continue
		}
		merged := make([]Register, 0, len(m.Registers)+len(def))
		merged = append(merged, m.Registers...)
		merged = append(merged, def...)
		sort.SliceStable(merged, func(i, j int) bool { return merged[i].Offset < merged[j].Offset })
		out = append(out, GroupMode{Name: m.Name, Registers: merged})
	}
	return out
}

// Param is one key/value parameter attached to a device or instance.
type Param struct {
	Name    string
	Value   string
	Caption string
}

// Signal is one pad/function mapping of a peripheral instance, used for
// pin-mux macro generation.
type Signal struct {
	Pad      string
	Function string
	Group    string
	Index    int
}

// Instance is one concrete placement of a peripheral in the address map.
type Instance struct {
	Name     string
	BaseAddr uint64
	ID       int
	Params   []Param
	Signals  []Signal
}

// Peripheral is one hardware module definition shared by its instances.
type Peripheral struct {
	Name      string
	ID        string // module id, e.g. "6445"
	Version   string
	Groups    []RegisterGroup
	Instances []Instance
}

// BaseGroup returns the group sharing the peripheral's own name, or nil.
func (p Peripheral) BaseGroup() *RegisterGroup {
	for i := range p.Groups {
		if p.Groups[i].Name == p.Name {
			return &p.Groups[i]
		}
	}
	return nil
}

// Group returns the named register group, or nil.
func (p Peripheral) Group(name string) *RegisterGroup {
	for i := range p.Groups {
		if p.Groups[i].Name == name {
			return &p.Groups[i]
		}
	}
	return nil
}

// Interrupt is one vector table entry. Index may be negative for the fixed
// low-numbered exceptions on Cortex-M parts.
type Interrupt struct {
	Name       string
	Index      int
	Caption    string
	Peripheral string
}

// Memory region type tags. The MIPS linker planner switches on these; Arm
// devices only distinguish flash from ram via name and flags.
const (
	RegionBoot       = "boot"
	RegionCode       = "code"
	RegionSRAM       = "sram"
	RegionSDRAM      = "sdram"
	RegionEBI        = "ebi"
	RegionSQI        = "sqi"
	RegionFuse       = "fuse"
	RegionPeripheral = "peripheral"
)

// MemoryRegion is one physical memory segment of the target.
type MemoryRegion struct {
	Name     string
	Start    uint64
	Size     uint64
	PageSize uint64
	Type     string
	Exec     bool
	RW       string
}

// ConfigReg is one MIPS device configuration register (DCR).
type ConfigReg struct {
	Name    string
	Address uint64
	Default uint64
}

// Features carries the MIPS target capability flags that steer header and
// linker script generation.
type Features struct {
	FPU          bool
	DSP          bool
	L1Cache      bool
	MIPS16       bool
	MicroMIPS    bool
	FixedVectors bool // fixed-offset (trampoline) interrupt vector sections
}

// Event is one event-system generator or user endpoint.
type Event struct {
	Name     string
	Index    int
	Instance string
}

// Device is the full snapshot of one target.
type Device struct {
	Name         string
	Architecture string
	Family       string
	Series       string
	CPU          string
	Parameters   []Param
	Peripherals  []Peripheral
	Interrupts   []Interrupt
	Memories     []MemoryRegion
	Events       []Event
	Pins         []string
	Features     Features
	ConfigRegs   []ConfigReg
}

// Peripheral returns the named peripheral definition, or nil.
func (d Device) Peripheral(name string) *Peripheral {
	for i := range d.Peripherals {
		if d.Peripherals[i].Name == name {
			return &d.Peripherals[i]
		}
	}
	return nil
}

// MaxVector returns the highest interrupt index, or -1 when the list is empty.
func (d Device) MaxVector() int {
	max := -1
	for _, irq := range d.Interrupts {
		if irq.Index > max {
			max = irq.Index
		}
	}
	return max
}
