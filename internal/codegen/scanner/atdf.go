package scanner

import (
	"encoding/xml"
	"fmt"
	"math/bits"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/mcutools/packgen/internal/codegen/model"
)

// Integer accepts the numeric attribute formats found in ATDF documents
// (decimal and 0x-prefixed hex).
type Integer uint64

func (i *Integer) UnmarshalXMLAttr(attr xml.Attr) error {
	s := strings.TrimSpace(attr.Value)
	if s == "" {
		*i = 0
		return nil
	}
	v, err := strconv.ParseUint(s, 0, 64)
	if err != nil {
		return fmt.Errorf("attribute %s=%q: %w", attr.Name.Local, attr.Value, err)
	}
	*i = Integer(v)
	return nil
}

// ATDF document model. Only the elements the generator consumes are mapped.

type atdfDoc struct {
	Devices atdfDevices `xml:"devices"`
	Modules atdfModules `xml:"modules"`
	Pinouts []atdfPinouts `xml:"pinouts"`
}

type atdfDevices struct {
	Elements []atdfDevice `xml:"device"`
}

type atdfDevice struct {
	Name          string             `xml:"name,attr"`
	Architecture  string             `xml:"architecture,attr"`
	Family        string             `xml:"family,attr"`
	Series        string             `xml:"series,attr"`
	AddressSpaces atdfAddressSpaces  `xml:"address-spaces"`
	Parameters    atdfParams         `xml:"parameters"`
	Peripherals   atdfPeripherals    `xml:"peripherals"`
	Interrupts    atdfInterrupts     `xml:"interrupts"`
	Events        atdfEvents         `xml:"events"`
	Properties    []atdfPropertyGrp  `xml:"property-groups>property-group"`
}

type atdfAddressSpaces struct {
	Elements []atdfAddressSpace `xml:"address-space"`
}

type atdfAddressSpace struct {
	Name     string            `xml:"name,attr"`
	Start    Integer           `xml:"start,attr"`
	Size     Integer           `xml:"size,attr"`
	Segments []atdfMemSegment  `xml:"memory-segment"`
}

type atdfMemSegment struct {
	Name     string  `xml:"name,attr"`
	Start    Integer `xml:"start,attr"`
	Size     Integer `xml:"size,attr"`
	Type     string  `xml:"type,attr"`
	PageSize Integer `xml:"pagesize,attr"`
	RW       string  `xml:"rw,attr"`
	Exec     bool    `xml:"exec,attr"`
}

type atdfParams struct {
	Elements []atdfParam `xml:"param"`
}

type atdfParam struct {
	Name    string `xml:"name,attr"`
	Value   string `xml:"value,attr"`
	Caption string `xml:"caption,attr"`
}

type atdfPropertyGrp struct {
	Name     string      `xml:"name,attr"`
	Elements []atdfParam `xml:"property"`
}

type atdfPeripherals struct {
	Modules []atdfModuleRef `xml:"module"`
}

type atdfModuleRef struct {
	Name      string         `xml:"name,attr"`
	ID        string         `xml:"id,attr"`
	Version   string         `xml:"version,attr"`
	Instances []atdfInstance `xml:"instance"`
}

type atdfInstance struct {
	Name           string              `xml:"name,attr"`
	RegisterGroups []atdfInstanceGroup `xml:"register-group"`
	Signals        []atdfSignal        `xml:"signals>signal"`
	Parameters     atdfParams          `xml:"parameters"`
}

type atdfInstanceGroup struct {
	Name         string  `xml:"name,attr"`
	NameInModule string  `xml:"name-in-module,attr"`
	AddressSpace string  `xml:"address-space,attr"`
	Offset       Integer `xml:"offset,attr"`
}

type atdfSignal struct {
	Group    string  `xml:"group,attr"`
	Index    Integer `xml:"index,attr"`
	Function string  `xml:"function,attr"`
	Pad      string  `xml:"pad,attr"`
}

type atdfInterrupts struct {
	Elements []atdfInterrupt `xml:"interrupt"`
}

type atdfInterrupt struct {
	Name           string `xml:"name,attr"`
	Index          int    `xml:"index,attr"`
	Caption        string `xml:"caption,attr"`
	ModuleInstance string `xml:"module-instance,attr"`
}

type atdfEvents struct {
	Generators []atdfEvent `xml:"generators>generator"`
	Users      []atdfEvent `xml:"users>user"`
}

type atdfEvent struct {
	Name           string  `xml:"name,attr"`
	Index          Integer `xml:"index,attr"`
	ModuleInstance string  `xml:"module-instance,attr"`
}

type atdfPinouts struct {
	Pinouts []atdfPinout `xml:"pinout"`
}

type atdfPinout struct {
	Name string    `xml:"name,attr"`
	Pins []atdfPin `xml:"pin"`
}

type atdfPin struct {
	Position string `xml:"position,attr"`
	Pad      string `xml:"pad,attr"`
}

type atdfModules struct {
	Elements []atdfModule `xml:"module"`
}

type atdfModule struct {
	Name           string            `xml:"name,attr"`
	ID             string            `xml:"id,attr"`
	Version        string            `xml:"version,attr"`
	Caption        string            `xml:"caption,attr"`
	RegisterGroups []atdfRegGroup    `xml:"register-group"`
	ValueGroups    []atdfValueGroup  `xml:"value-group"`
	Interrupts     []atdfInterrupt   `xml:"interrupt"`
}

type atdfRegGroup struct {
	Name         string         `xml:"name,attr"`
	NameInModule string         `xml:"name-in-module,attr"`
	Size         Integer        `xml:"size,attr"`
	Caption      string         `xml:"caption,attr"`
	Count        Integer        `xml:"count,attr"`
	Offset       Integer        `xml:"offset,attr"`
	AlignSize    Integer        `xml:"aligned,attr"`
	Section      string         `xml:"section,attr"`
	Registers    []atdfRegister `xml:"register"`
	Groups       []atdfRegGroup `xml:"register-group"`
	Modes        []atdfMode     `xml:"mode"`
}

type atdfMode struct {
	Name      string  `xml:"name,attr"`
	Qualifier string  `xml:"qualifier,attr"`
	Value     Integer `xml:"value,attr"`
	Caption   string  `xml:"caption,attr"`
}

type atdfValueGroup struct {
	Name     string      `xml:"name,attr"`
	Elements []atdfValue `xml:"value"`
}

type atdfValue struct {
	Name    string  `xml:"name,attr"`
	Caption string  `xml:"caption,attr"`
	Value   Integer `xml:"value,attr"`
}

type atdfRegister struct {
	Name      string          `xml:"name,attr"`
	Modes     string          `xml:"modes,attr"`
	Offset    Integer         `xml:"offset,attr"`
	RW        string          `xml:"rw,attr"`
	Size      Integer         `xml:"size,attr"`
	Count     Integer         `xml:"count,attr"`
	InitValue Integer         `xml:"initval,attr"`
	Caption   string          `xml:"caption,attr"`
	BitFields []atdfBitField  `xml:"bitfield"`
}

type atdfBitField struct {
	Name    string  `xml:"name,attr"`
	Modes   string  `xml:"modes,attr"`
	Caption string  `xml:"caption,attr"`
	Mask    Integer `xml:"mask,attr"`
	Values  string  `xml:"values,attr"`
}

// LoadATDF reads one ATDF document and converts it to a device snapshot.
func LoadATDF(path string) (*model.Device, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read atdf: %w", err)
	}
	return ParseATDF(data, path)
}

// ParseATDF converts raw ATDF XML to a device snapshot. The path is only
// used in error messages.
func ParseATDF(data []byte, path string) (*model.Device, error) {
	var doc atdfDoc
	if err := xml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse atdf %s: %w", path, err)
	}
	if len(doc.Devices.Elements) == 0 {
		return nil, &FormatError{Path: path, Element: "devices/device"}
	}
	ad := doc.Devices.Elements[0]

	dev := &model.Device{
		Name:         ad.Name,
		Architecture: ad.Architecture,
		Family:       ad.Family,
		Series:       ad.Series,
	}

	for _, p := range ad.Parameters.Elements {
		dev.Parameters = append(dev.Parameters, model.Param{Name: p.Name, Value: p.Value, Caption: p.Caption})
		if p.Name == "__FPU_PRESENT" && p.Value != "0" {
			dev.Features.FPU = true
		}
	}
	for _, pg := range ad.Properties {
		for _, p := range pg.Elements {
			dev.Parameters = append(dev.Parameters, model.Param{Name: p.Name, Value: p.Value, Caption: p.Caption})
		}
	}
	dev.CPU = cpuName(ad.Architecture, dev.Parameters)

	for _, as := range ad.AddressSpaces.Elements {
		for _, seg := range as.Segments {
			dev.Memories = append(dev.Memories, model.MemoryRegion{
				Name:     seg.Name,
				Start:    uint64(seg.Start),
				Size:     uint64(seg.Size),
				PageSize: uint64(seg.PageSize),
				Type:     seg.Type,
				RW:       seg.RW,
				Exec:     seg.Exec,
			})
		}
	}

	for _, irq := range ad.Interrupts.Elements {
		dev.Interrupts = append(dev.Interrupts, model.Interrupt{
			Name:       irq.Name,
			Index:      irq.Index,
			Caption:    irq.Caption,
			Peripheral: irq.ModuleInstance,
		})
	}
	sort.SliceStable(dev.Interrupts, func(i, j int) bool {
		return dev.Interrupts[i].Index < dev.Interrupts[j].Index
	})

	for _, ev := range ad.Events.Generators {
		dev.Events = append(dev.Events, model.Event{Name: ev.Name, Index: int(ev.Index), Instance: ev.ModuleInstance})
	}

	for _, po := range doc.Pinouts {
		for _, pins := range po.Pinouts {
			for _, pin := range pins.Pins {
				dev.Pins = append(dev.Pins, pin.Pad)
			}
		}
		break
	}

	// Index the module definitions, then attach the per-device instances.
	moduleDefs := make(map[string]*atdfModule, len(doc.Modules.Elements))
	for i := range doc.Modules.Elements {
		m := &doc.Modules.Elements[i]
		moduleDefs[m.Name] = m
	}

	for _, ref := range ad.Peripherals.Modules {
		def, ok := moduleDefs[ref.Name]
		if !ok {
			return nil, &FormatError{Peripheral: ref.Name, Path: path, Element: "modules/module"}
		}
		periph, err := convertModule(ref, def)
		if err != nil {
			return nil, err
		}
		dev.Peripherals = append(dev.Peripherals, *periph)
	}

	return dev, nil
}

func convertModule(ref atdfModuleRef, def *atdfModule) (*model.Peripheral, error) {
	p := &model.Peripheral{
		Name:    ref.Name,
		ID:      firstNonEmpty(ref.ID, def.ID),
		Version: firstNonEmpty(ref.Version, def.Version),
	}
	for _, rg := range def.RegisterGroups {
		p.Groups = append(p.Groups, convertGroup(ref.Name, def, rg))
	}
	if len(p.Groups) == 0 {
		return nil, &FormatError{Peripheral: ref.Name, Element: "register-group"}
	}
	for _, inst := range ref.Instances {
		mi := model.Instance{Name: inst.Name, ID: instanceID(inst)}
		if len(inst.RegisterGroups) > 0 {
			mi.BaseAddr = uint64(inst.RegisterGroups[0].Offset)
		}
		for _, prm := range inst.Parameters.Elements {
			mi.Params = append(mi.Params, model.Param{Name: prm.Name, Value: prm.Value, Caption: prm.Caption})
		}
		for _, sig := range inst.Signals {
			mi.Signals = append(mi.Signals, model.Signal{
				Pad:      sig.Pad,
				Function: sig.Function,
				Group:    sig.Group,
				Index:    int(sig.Index),
			})
		}
		p.Instances = append(p.Instances, mi)
	}
	return p, nil
}

func convertGroup(owner string, def *atdfModule, rg atdfRegGroup) model.RegisterGroup {
	g := model.RegisterGroup{
		Name:       rg.Name,
		Peripheral: owner,
		Caption:    rg.Caption,
		Size:       int(rg.Size),
		Align:      int(rg.AlignSize),
		Section:    rg.Section,
	}

	// Mode declaration order defines mode emission order; DEFAULT first.
	order := []string{model.DefaultMode}
	for _, m := range rg.Modes {
		if m.Name != model.DefaultMode {
			order = append(order, m.Name)
		}
	}
	byMode := make(map[string][]model.Register, len(order))

	for _, reg := range rg.Registers {
		r := convertRegister(owner, def, reg)
		for _, mode := range registerModes(reg.Modes) {
			byMode[mode] = append(byMode[mode], r)
			if !containsString(order, mode) {
				order = append(order, mode)
			}
		}
	}

	// Nested register-group elements become group-alias slots.
	for _, sub := range rg.Groups {
		name := sub.Name
		alias := sub.NameInModule
		if alias == "" {
			alias = sub.Name
		}
		byMode[model.DefaultMode] = append(byMode[model.DefaultMode], model.Register{
			Name:       name,
			Peripheral: owner,
			Caption:    sub.Caption,
			Size:       int(sub.Size),
			Offset:     uint64(sub.Offset),
			Count:      int(sub.Count),
			GroupAlias: alias,
		})
	}

	for _, mode := range order {
		regs := byMode[mode]
		if len(regs) == 0 && mode != model.DefaultMode {
			continue
		}
		sort.SliceStable(regs, func(i, j int) bool { return regs[i].Offset < regs[j].Offset })
		g.Modes = append(g.Modes, model.GroupMode{Name: mode, Registers: regs})
	}
	if len(g.Modes) == 0 {
		g.Modes = append(g.Modes, model.GroupMode{Name: model.DefaultMode})
	}
	return g
}

func convertRegister(owner string, def *atdfModule, reg atdfRegister) model.Register {
	r := model.Register{
		Name:       reg.Name,
		Peripheral: owner,
		Caption:    reg.Caption,
		Size:       int(reg.Size),
		Offset:     uint64(reg.Offset),
		Access:     accessFromRW(reg.RW),
		InitVal:    uint64(reg.InitValue),
		Count:      int(reg.Count),
	}
	if r.Size == 0 {
		r.Size = 4
	}

	byMode := make(map[string][]model.Bitfield)
	var order []string
	for _, bf := range reg.BitFields {
		lsb, width := maskBounds(uint64(bf.Mask))
		f := model.Bitfield{
			Name:    bf.Name,
			Caption: bf.Caption,
			Lsb:     lsb,
			Width:   width,
			Values:  lookupValues(def, bf.Values),
		}
		for _, mode := range registerModes(bf.Modes) {
			byMode[mode] = append(byMode[mode], f)
			if !containsString(order, mode) {
				order = append(order, mode)
			}
		}
	}
	for _, mode := range order {
		fields := byMode[mode]
		sort.SliceStable(fields, func(i, j int) bool { return fields[i].Lsb < fields[j].Lsb })
		r.Modes = append(r.Modes, model.BitfieldMode{Name: mode, Fields: fields})
	}
	return r
}

func lookupValues(def *atdfModule, name string) []model.EnumValue {
	if name == "" {
		return nil
	}
	for _, vg := range def.ValueGroups {
		if vg.Name != name {
			continue
		}
		out := make([]model.EnumValue, 0, len(vg.Elements))
		for _, v := range vg.Elements {
			out = append(out, model.EnumValue{Name: v.Name, Value: uint64(v.Value), Caption: v.Caption})
		}
		return out
	}
	return nil
}

// maskBounds derives (lsb, width) from a bitfield mask. Sparse masks span
// from the lowest to the highest set bit.
func maskBounds(mask uint64) (int, int) {
	if mask == 0 {
		return 0, 0
	}
	lsb := bits.TrailingZeros64(mask)
	msb := 63 - bits.LeadingZeros64(mask)
	return lsb, msb - lsb + 1
}

func accessFromRW(rw string) model.Access {
	switch strings.ToUpper(strings.TrimSpace(rw)) {
	case "R":
		return model.AccessReadOnly
	case "W":
		return model.AccessWriteOnly
	default:
		return model.AccessReadWrite
	}
}

// registerModes splits the space-separated modes attribute; empty means the
// DEFAULT mode.
func registerModes(attr string) []string {
	fields := strings.Fields(attr)
	if len(fields) == 0 {
		return []string{model.DefaultMode}
	}
	return fields
}

// instanceID derives the numeric instance id from the INSTANCE_ID parameter.
// Instances without one (crypto and debug modules, typically) report -1 and
// the generators omit their id macros.
func instanceID(inst atdfInstance) int {
	for _, p := range inst.Parameters.Elements {
		if p.Name == "INSTANCE_ID" {
			if v, err := strconv.ParseInt(p.Value, 0, 32); err == nil {
				return int(v)
			}
		}
	}
	return -1
}

// cpuName maps the ATDF architecture string to the CMSIS core name used in
// the generated include line.
func cpuName(arch string, params []model.Param) string {
	for _, p := range params {
		if p.Name == "__CPU_NAME" {
			return p.Value
		}
	}
	switch strings.ToUpper(arch) {
	case "CORTEX-M0PLUS":
		return "cm0plus"
	case "CORTEX-M3":
		return "cm3"
	case "CORTEX-M4":
		return "cm4"
	case "CORTEX-M7":
		return "cm7"
	case "CORTEX-M23":
		return "cm23"
	case "CORTEX-M33":
		return "cm33"
	default:
		return strings.ToLower(strings.ReplaceAll(arch, "-", ""))
	}
}

func firstNonEmpty(a, b string) string {
	if a != "" {
		return a
	}
	return b
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
