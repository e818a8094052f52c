package layout

import "github.com/mcutools/packgen/internal/codegen/model"

// Field is one member of a packed bit struct: either a named bitfield or an
// anonymous gap. Gaps carry no name and are emitted as unnamed C bitfields.
type Field struct {
	Name    string
	Caption string
	Lsb     int
	Width   int
	Values  []model.EnumValue
}

// Gap reports whether the field is reserved padding.
func (f Field) Gap() bool { return f.Name == "" }

// Msb returns the most significant bit covered by the field.
func (f Field) Msb() int { return f.Lsb + f.Width - 1 }

// Mask returns the field's bit mask.
func (f Field) Mask() uint64 {
	if f.Width <= 0 {
		return 0
	}
	if f.Width >= 64 {
		return ^uint64(0) << f.Lsb
	}
	return ((uint64(1) << f.Width) - 1) << f.Lsb
}

// PackFields turns an ordered bitfield list into a gap-filled packed member
// sequence covering exactly width bits. Fields must be sorted by ascending
// lsb and must not overlap.
func PackFields(fields []model.Bitfield, width int) []Field {
	var out []Field
	next := 0
	for _, f := range fields {
		if f.Lsb > next {
			out = append(out, Field{Lsb: next, Width: f.Lsb - next})
		}
		out = append(out, Field{
			Name:    f.Name,
			Caption: f.Caption,
			Lsb:     f.Lsb,
			Width:   f.Width,
			Values:  f.Values,
		})
		next = f.Lsb + f.Width
	}
	if next < width {
		out = append(out, Field{Lsb: next, Width: width - next})
	}
	return out
}

// PackVecFields gap-fills a vecfield list the same way, so the vec view of a
// register union lines up with its bit view.
func PackVecFields(vecs []VecField, width int) []Field {
	var out []Field
	next := 0
	for _, v := range vecs {
		if v.Lsb > next {
			out = append(out, Field{Lsb: next, Width: v.Lsb - next})
		}
		name := v.Name
		if v.Anon {
			name = ""
		}
		out = append(out, Field{Name: name, Caption: v.Caption, Lsb: v.Lsb, Width: v.Width})
		next = v.Lsb + v.Width
	}
	if next < width {
		out = append(out, Field{Lsb: next, Width: width - next})
	}
	return out
}
