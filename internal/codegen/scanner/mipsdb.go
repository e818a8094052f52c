package scanner

import (
	"fmt"
	"os"
	"sort"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/mcutools/packgen/internal/codegen/model"
)

// The MIPS device database ships as one YAML document per target, exported
// from the vendor tool chain. SFR/DCR register lists, interrupt list, memory
// regions and target feature flags map straight onto the model snapshot.

// yamlInt accepts decimal and 0x-prefixed scalar values.
type yamlInt uint64

func (y *yamlInt) UnmarshalYAML(node *yaml.Node) error {
	v, err := strconv.ParseUint(node.Value, 0, 64)
	if err != nil {
		return fmt.Errorf("numeric value %q: %w", node.Value, err)
	}
	*y = yamlInt(v)
	return nil
}

type mipsDoc struct {
	Name         string         `yaml:"name"`
	Architecture string         `yaml:"architecture"`
	Family       string         `yaml:"family"`
	Series       string         `yaml:"series"`
	CPU          string         `yaml:"cpu"`
	Features     mipsFeatures   `yaml:"features"`
	SFRs         []mipsPeriph   `yaml:"sfrs"`
	DCRs         []mipsDCR      `yaml:"dcrs"`
	Interrupts   []mipsIRQ      `yaml:"interrupts"`
	Memories     []mipsRegion   `yaml:"memories"`
	Pins         []string       `yaml:"pins"`
	Parameters   []mipsParam    `yaml:"parameters"`
}

type mipsFeatures struct {
	FPU          bool `yaml:"fpu"`
	DSP          bool `yaml:"dsp"`
	L1Cache      bool `yaml:"l1cache"`
	MIPS16       bool `yaml:"mips16"`
	MicroMIPS    bool `yaml:"micromips"`
	FixedVectors bool `yaml:"fixedVectors"`
}

type mipsParam struct {
	Name    string `yaml:"name"`
	Value   string `yaml:"value"`
	Caption string `yaml:"caption"`
}

type mipsPeriph struct {
	Peripheral string         `yaml:"peripheral"`
	ID         string         `yaml:"id"`
	Version    string         `yaml:"version"`
	Base       yamlInt        `yaml:"base"`
	GroupSize  yamlInt        `yaml:"groupSize"`
	Registers  []mipsRegister `yaml:"registers"`
}

type mipsRegister struct {
	Name      string         `yaml:"name"`
	Offset    yamlInt        `yaml:"offset"`
	Size      int            `yaml:"size"`
	Access    string         `yaml:"access"`
	Init      yamlInt        `yaml:"init"`
	Count     int            `yaml:"count"`
	Caption   string         `yaml:"caption"`
	Mode      string         `yaml:"mode"`
	Bitfields []mipsBitfield `yaml:"bitfields"`
}

type mipsBitfield struct {
	Name    string          `yaml:"name"`
	Lsb     int             `yaml:"lsb"`
	Width   int             `yaml:"width"`
	Caption string          `yaml:"caption"`
	Mode    string          `yaml:"mode"`
	Values  []mipsEnumValue `yaml:"values"`
}

type mipsEnumValue struct {
	Name    string  `yaml:"name"`
	Value   yamlInt `yaml:"value"`
	Caption string  `yaml:"caption"`
}

type mipsDCR struct {
	Name    string  `yaml:"name"`
	Address yamlInt `yaml:"address"`
	Default yamlInt `yaml:"default"`
}

type mipsIRQ struct {
	Name       string `yaml:"name"`
	Index      int    `yaml:"index"`
	Caption    string `yaml:"caption"`
	Peripheral string `yaml:"peripheral"`
}

type mipsRegion struct {
	Name     string  `yaml:"name"`
	Start    yamlInt `yaml:"start"`
	Size     yamlInt `yaml:"size"`
	PageSize yamlInt `yaml:"pageSize"`
	Type     string  `yaml:"type"`
}

// LoadMIPSDB reads one YAML device database file.
func LoadMIPSDB(path string) (*model.Device, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read device db: %w", err)
	}
	return ParseMIPSDB(data, path)
}

// ParseMIPSDB converts a raw YAML device database to a device snapshot.
func ParseMIPSDB(data []byte, path string) (*model.Device, error) {
	var doc mipsDoc
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse device db %s: %w", path, err)
	}
	if doc.Name == "" {
		return nil, &FormatError{Path: path, Element: "name"}
	}

	dev := &model.Device{
		Name:         doc.Name,
		Architecture: doc.Architecture,
		Family:       doc.Family,
		Series:       doc.Series,
		CPU:          doc.CPU,
		Pins:         doc.Pins,
		Features: model.Features{
			FPU:          doc.Features.FPU,
			DSP:          doc.Features.DSP,
			L1Cache:      doc.Features.L1Cache,
			MIPS16:       doc.Features.MIPS16,
			MicroMIPS:    doc.Features.MicroMIPS,
			FixedVectors: doc.Features.FixedVectors,
		},
	}
	if dev.Architecture == "" {
		dev.Architecture = "MIPS"
	}

	for _, p := range doc.Parameters {
		dev.Parameters = append(dev.Parameters, model.Param{Name: p.Name, Value: p.Value, Caption: p.Caption})
	}

	for _, sp := range doc.SFRs {
		if len(sp.Registers) == 0 {
			return nil, &FormatError{Peripheral: sp.Peripheral, Path: path, Element: "registers"}
		}
		dev.Peripherals = append(dev.Peripherals, convertMIPSPeriph(sp))
	}

	for _, dcr := range doc.DCRs {
		dev.ConfigRegs = append(dev.ConfigRegs, model.ConfigReg{
			Name:    dcr.Name,
			Address: uint64(dcr.Address),
			Default: uint64(dcr.Default),
		})
	}

	for _, irq := range doc.Interrupts {
		dev.Interrupts = append(dev.Interrupts, model.Interrupt{
			Name:       irq.Name,
			Index:      irq.Index,
			Caption:    irq.Caption,
			Peripheral: irq.Peripheral,
		})
	}
	sort.SliceStable(dev.Interrupts, func(i, j int) bool {
		return dev.Interrupts[i].Index < dev.Interrupts[j].Index
	})

	for _, mem := range doc.Memories {
		dev.Memories = append(dev.Memories, model.MemoryRegion{
			Name:     mem.Name,
			Start:    uint64(mem.Start),
			Size:     uint64(mem.Size),
			PageSize: uint64(mem.PageSize),
			Type:     mem.Type,
		})
	}

	return dev, nil
}

func convertMIPSPeriph(sp mipsPeriph) model.Peripheral {
	p := model.Peripheral{
		Name:    sp.Peripheral,
		ID:      sp.ID,
		Version: sp.Version,
	}

	byMode := make(map[string][]model.Register)
	var order []string
	size := int(sp.GroupSize)
	for _, sr := range sp.Registers {
		mode := sr.Mode
		if mode == "" {
			mode = model.DefaultMode
		}
		r := convertMIPSRegister(sp.Peripheral, sr)
		byMode[mode] = append(byMode[mode], r)
		if !containsString(order, mode) {
			order = append(order, mode)
		}
		count := r.Count
		if count < 1 {
			count = 1
		}
		if end := int(r.Offset) + r.Size*count; end > size {
			size = end
		}
	}

	g := model.RegisterGroup{
		Name:       sp.Peripheral,
		Peripheral: sp.Peripheral,
		Size:       size,
	}
	// DEFAULT first when present, declaration order otherwise.
	sort.SliceStable(order, func(i, j int) bool {
		if order[i] == model.DefaultMode {
			return order[j] != model.DefaultMode
		}
		return false
	})
	for _, mode := range order {
		regs := byMode[mode]
		sort.SliceStable(regs, func(i, j int) bool { return regs[i].Offset < regs[j].Offset })
		g.Modes = append(g.Modes, model.GroupMode{Name: mode, Registers: regs})
	}
	p.Groups = []model.RegisterGroup{g}

	if sp.Base != 0 {
		p.Instances = []model.Instance{{Name: sp.Peripheral, BaseAddr: uint64(sp.Base), ID: -1}}
	}
	return p
}

func convertMIPSRegister(owner string, sr mipsRegister) model.Register {
	r := model.Register{
		Name:       sr.Name,
		Peripheral: owner,
		Caption:    sr.Caption,
		Size:       sr.Size,
		Offset:     uint64(sr.Offset),
		Access:     accessFromRW(sr.Access),
		InitVal:    uint64(sr.Init),
		Count:      sr.Count,
	}
	if r.Size == 0 {
		r.Size = 4
	}

	byMode := make(map[string][]model.Bitfield)
	var order []string
	for _, bf := range sr.Bitfields {
		mode := bf.Mode
		if mode == "" {
			mode = model.DefaultMode
		}
		f := model.Bitfield{
			Name:    bf.Name,
			Caption: bf.Caption,
			Lsb:     bf.Lsb,
			Width:   bf.Width,
		}
		if f.Width == 0 {
			f.Width = 1
		}
		for _, v := range bf.Values {
			f.Values = append(f.Values, model.EnumValue{Name: v.Name, Value: uint64(v.Value), Caption: v.Caption})
		}
		byMode[mode] = append(byMode[mode], f)
		if !containsString(order, mode) {
			order = append(order, mode)
		}
	}
	for _, mode := range order {
		fields := byMode[mode]
		sort.SliceStable(fields, func(i, j int) bool { return fields[i].Lsb < fields[j].Lsb })
		r.Modes = append(r.Modes, model.BitfieldMode{Name: mode, Fields: fields})
	}
	return r
}
