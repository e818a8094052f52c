package layout

import (
	"fmt"
	"strings"

	"github.com/mcutools/packgen/internal/codegen/common"
	"github.com/mcutools/packgen/internal/codegen/model"
)

// ctype returns the C integer type matching a register byte size.
func ctype(size int) string {
	switch size {
	case 1:
		return "uint8_t"
	case 2:
		return "uint16_t"
	default:
		return "uint32_t"
	}
}

// WriteRegister emits the complete per-register block: header comment, the
// union typedef (bit view per mode, vec view, raw value) and the flat macro
// set. Group-alias slots are laid out by the group engine instead.
func WriteRegister(b *strings.Builder, st Style, r model.Register) {
	if r.IsGroupAlias() {
		return
	}
	writeRegisterComment(b, r)
	writeRegisterType(b, st, r)
	writeRegisterMacros(b, st, r)
	b.WriteString("\n")
}

func writeRegisterComment(b *strings.Builder, r model.Register) {
	prefix := MacroPrefix(r.Peripheral, r.Name, "")
	fmt.Fprintf(b, "/* -------- %s : (%s Offset: 0x%02X) (%s %d) %s -------- */\n",
		prefix, strings.ToUpper(r.Peripheral), r.Offset, r.Access, r.Bits(), r.Caption)
}

// vecFields returns the coalesced vecfields of a register, or nil when the
// style suppresses them or the register has more than one bitfield mode.
func vecFields(st Style, r model.Register) []VecField {
	if !st.Vecfields || len(r.Modes) != 1 {
		return nil
	}
	return Coalesce(r.Modes[0].Fields, st)
}

func writeRegisterType(b *strings.Builder, st Style, r model.Register) {
	b.WriteString("#if !(defined(__ASSEMBLY__) || defined(__IAR_SYSTEMS_ASM__))\n")
	b.WriteString("typedef union {\n")

	ct := ctype(r.Size)
	for _, mode := range r.Modes {
		member := "bit"
		comment := "Structure used for bit  access"
		if mode.Name != model.DefaultMode {
			member = strings.ToUpper(mode.Name)
			comment = fmt.Sprintf("Structure used for %s mode access", mode.Name)
		}
		b.WriteString("  struct {\n")
		writePackedFields(b, ct, PackFields(mode.Fields, r.Bits()))
		fmt.Fprintf(b, "  } %s; %s\n", member, sideComment(comment))
	}

	if vecs := vecFields(st, r); len(vecs) > 0 {
		b.WriteString("  struct {\n")
		writePackedFields(b, ct, PackVecFields(vecs, r.Bits()))
		fmt.Fprintf(b, "  } vec; %s\n", sideComment("Structure used for vec  access"))
	}

	fmt.Fprintf(b, "  %s reg; %s\n", ct, sideComment("Type used for register access"))
	fmt.Fprintf(b, "} %s;\n", RegisterTypeName(st, r.Peripheral, r.Name, ""))
	b.WriteString("#endif /* !(defined(__ASSEMBLY__) || defined(__IAR_SYSTEMS_ASM__)) */\n\n")
}

func sideComment(text string) string {
	return fmt.Sprintf("/*!< %s */", text)
}

// writePackedFields renders one gap-filled member sequence. Anonymous gaps
// become unnamed C bitfields.
func writePackedFields(b *strings.Builder, ct string, fields []Field) {
	for _, f := range fields {
		decl := fmt.Sprintf("%s %s:%d;", ct, f.Name, f.Width)
		if f.Gap() {
			decl = fmt.Sprintf("%s :%d;", ct, f.Width)
		}
		caption := f.Caption
		if f.Gap() {
			caption = "Reserved"
		}
		var span string
		if f.Width == 1 {
			span = fmt.Sprintf("bit: %6d", f.Lsb)
		} else {
			span = fmt.Sprintf("bit: %2d..%2d", f.Lsb, f.Msb())
		}
		comment := strings.TrimRight(span+"  "+caption, " ")
		fmt.Fprintf(b, "    %-24s /*!< %s */\n", decl, comment)
	}
}

func writeRegisterMacros(b *strings.Builder, st Style, r model.Register) {
	prefix := MacroPrefix(r.Peripheral, r.Name, "")

	fmt.Fprintf(b, "#define %-32s (0x%02X) %s\n",
		prefix+"_OFFSET", r.Offset, docComment(prefix, r.Caption+" Offset"))
	fmt.Fprintf(b, "#define %-32s %s %s\n",
		prefix+"_RESETVALUE", common.ULit(r.InitVal, r.Size), docComment(prefix, r.Caption+" Reset Value"))
	fmt.Fprintf(b, "#define %-32s %s %s\n",
		prefix+"_MASK", common.ULit(r.Mask(), r.Size), docComment(prefix, "Register Mask"))
	if st.MaskAlias() {
		fmt.Fprintf(b, "#define %-32s %s %s\n",
			prefix+"_Msk", common.ULit(r.Mask(), r.Size), docComment(prefix, "Register Mask (alias)"))
	}
	b.WriteString("\n")

	for _, mode := range r.Modes {
		fieldPrefix := prefix
		if mode.Name != model.DefaultMode {
			fieldPrefix = MacroPrefix(r.Peripheral, r.Name, mode.Name)
		}
		for _, f := range mode.Fields {
			writeBitfieldMacros(b, r, fieldPrefix, f)
		}
	}

	if vecs := vecFields(st, r); len(vecs) > 0 {
		for _, v := range vecs {
			if v.Anon {
				continue
			}
			writeVecfieldMacros(b, r, prefix, v)
		}
	}

	// Multi-mode registers additionally get one aggregate mask per mode.
	if len(r.Modes) > 1 {
		for _, mode := range r.Modes {
			fmt.Fprintf(b, "#define %-32s %s %s\n",
				prefix+"_MASK_"+strings.ToUpper(mode.Name),
				common.ULit(r.ModeMask(mode.Name), r.Size),
				docComment(prefix, mode.Name+" Mode Mask"))
		}
	}
}

func writeBitfieldMacros(b *strings.Builder, r model.Register, prefix string, f model.Bitfield) {
	name := prefix + "_" + f.Name
	fmt.Fprintf(b, "#define %-32s (%d) %s\n",
		name+"_Pos", f.Lsb, docComment(prefix, f.Caption+" Position"))
	fmt.Fprintf(b, "#define %-32s _U_(0x%X) %s\n",
		name+"_Msk", f.Mask(), docComment(prefix, f.Caption+" Mask"))
	fmt.Fprintf(b, "#define %s(value) (%s_Msk & ((value) << %s_Pos))\n",
		name, name, name)

	if len(f.Values) == 0 {
		return
	}
	// Two passes over the enumerated options: the literal values first, then
	// the macros shifted into field position.
	for _, v := range f.Values {
		fmt.Fprintf(b, "#define %-32s _U_(0x%X) %s\n",
			name+"_"+common.SanitizeLeadingDigit(v.Name)+"_Val", v.Value, docComment(prefix, v.Caption))
	}
	for _, v := range f.Values {
		opt := name + "_" + common.SanitizeLeadingDigit(v.Name)
		fmt.Fprintf(b, "#define %-32s (%s_Val << %s_Pos) %s\n",
			opt, opt, name, docComment(prefix, v.Caption+" Position"))
	}
}

func writeVecfieldMacros(b *strings.Builder, r model.Register, prefix string, v VecField) {
	name := prefix + "_" + v.Name
	fmt.Fprintf(b, "#define %-32s (%d) %s\n",
		name+"_Pos", v.Lsb, docComment(prefix, v.Caption+" Position"))
	fmt.Fprintf(b, "#define %-32s _U_(0x%X) %s\n",
		name+"_Msk", v.Mask, docComment(prefix, v.Caption+" Mask"))
	fmt.Fprintf(b, "#define %s(value) (%s_Msk & ((value) << %s_Pos))\n",
		name, name, name)
}

func docComment(prefix, text string) string {
	body := strings.TrimRight(fmt.Sprintf("(%s) %s", prefix, strings.TrimSpace(text)), " ")
	return fmt.Sprintf("/**< %s */", body)
}
