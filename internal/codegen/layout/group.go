package layout

import (
	"fmt"
	"strings"

	"github.com/mcutools/packgen/internal/codegen/model"
)

// accessKeyword returns the CMSIS qualifier for a struct member.
func accessKeyword(a model.Access) string {
	switch a {
	case model.AccessReadOnly:
		return "__I "
	case model.AccessWriteOnly:
		return "__O "
	default:
		return "__IO"
	}
}

// WriteGroup emits the struct typedef(s) describing one register group's
// memory span: one struct per non-empty mode, reserved padding for offset
// gaps, and a union of the non-default mode structs when the group has more
// than two distinct modes. Alias sub-groups are emitted first, exactly once,
// tracked through emitted.
func WriteGroup(b *strings.Builder, st Style, p model.Peripheral, g model.RegisterGroup, emitted map[string]bool) {
	if emitted[g.Name] {
		return
	}
	emitted[g.Name] = true

	// Depth-first: referenced sub-groups must be declared before use.
	for _, mode := range g.Modes {
		for _, r := range mode.Registers {
			if !r.IsGroupAlias() {
				continue
			}
			if sub := p.Group(r.GroupAlias); sub != nil {
				WriteGroup(b, st, p, *sub, emitted)
			}
		}
	}

	modes := g.ExpandedModes()
	var unionMembers []string

	b.WriteString("#if !(defined(__ASSEMBLY__) || defined(__IAR_SYSTEMS_ASM__))\n")
	for _, mode := range modes {
		if len(mode.Registers) == 0 {
			continue
		}
		typeName := GroupTypeName(st, g.Peripheral, g.Name, mode.Name)
		if mode.Name != model.DefaultMode {
			unionMembers = append(unionMembers, mode.Name)
		}
		writeGroupStruct(b, st, p, g, mode, typeName)
	}

	if len(g.Modes) > 2 && len(unionMembers) > 0 {
		writeModeUnion(b, st, g, unionMembers)
	}
	b.WriteString("#endif /* !(defined(__ASSEMBLY__) || defined(__IAR_SYSTEMS_ASM__)) */\n\n")
}

func writeGroupStruct(b *strings.Builder, st Style, p model.Peripheral, g model.RegisterGroup, mode model.GroupMode, typeName string) {
	caption := g.Caption
	if caption == "" {
		caption = g.Name + " hardware registers"
	}
	fmt.Fprintf(b, "/** \\brief %s */\n", caption)
	b.WriteString("typedef struct {\n")

	next := uint64(0)
	reserved := 0
	for _, r := range mode.Registers {
		if r.Offset > next {
			reserved++
			fmt.Fprintf(b, "       RoReg8                    Reserved%d[0x%X];\n", reserved, r.Offset-next)
			next = r.Offset
		}
		count := r.Count
		if count < 1 {
			count = 1
		}

		if r.IsGroupAlias() {
			sub := p.Group(r.GroupAlias)
			if sub == nil {
				continue
			}
			subType := GroupTypeName(st, g.Peripheral, sub.Name, model.DefaultMode)
			if len(sub.Modes) > 2 {
				subType = GroupTypeName(st, g.Peripheral, sub.Name, "")
			}
			name := VarName(g.Peripheral, r.Name, mode.Name, count > 1)
			arr := ""
			if count > 1 {
				arr = fmt.Sprintf("[%d]", count)
			}
			fmt.Fprintf(b, "       %-25s %s%s; /**< Offset: 0x%02X %s */\n",
				subType, name, arr, r.Offset, r.Caption)
			next = r.Offset + uint64(r.Size)*uint64(count)
			continue
		}

		regType := RegisterTypeName(st, g.Peripheral, r.Name, "")
		name := VarName(g.Peripheral, r.Name, mode.Name, count > 1)
		arr := ""
		if count > 1 {
			arr = fmt.Sprintf("[%d]", count)
		}
		fmt.Fprintf(b, "  %s %-25s %s%s; /**< Offset: 0x%02X (%s %2d) %s */\n",
			accessKeyword(r.Access), regType, name, arr, r.Offset, r.Access, r.Bits(), r.Caption)
		next = r.Offset + uint64(r.Size)*uint64(count)
	}

	if size := uint64(g.Size); size > next {
		reserved++
		fmt.Fprintf(b, "       RoReg8                    Reserved%d[0x%X];\n", reserved, size-next)
	}

	if g.Align > 0 {
		fmt.Fprintf(b, "} %s __attribute__((aligned(%d)));\n\n", typeName, g.Align)
	} else {
		fmt.Fprintf(b, "} %s;\n\n", typeName)
	}
}

// writeModeUnion overlays the non-default mode structs of one group.
func writeModeUnion(b *strings.Builder, st Style, g model.RegisterGroup, members []string) {
	fmt.Fprintf(b, "/** \\brief %s hardware registers, all modes */\n", g.Name)
	b.WriteString("typedef union {\n")
	for _, mode := range members {
		typeName := GroupTypeName(st, g.Peripheral, g.Name, mode)
		fmt.Fprintf(b, "       %-25s %s; /**< %s mode */\n", typeName, strings.ToUpper(mode), mode)
	}
	fmt.Fprintf(b, "} %s;\n\n", GroupTypeName(st, g.Peripheral, g.Name, ""))
}
