package layout

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mcutools/packgen/internal/codegen/model"
)

func TestPackFieldsGapFill(t *testing.T) {
	// EN at bit 0 width 1, VAL at bits 4..7 in a 32-bit register: the packed
	// sequence must read EN:1, :3, VAL:4, :24.
	fields := []model.Bitfield{
		{Name: "EN", Lsb: 0, Width: 1},
		{Name: "VAL", Lsb: 4, Width: 4},
	}
	packed := PackFields(fields, 32)

	assert.Len(t, packed, 4)
	assert.Equal(t, "EN", packed[0].Name)
	assert.Equal(t, 1, packed[0].Width)
	assert.True(t, packed[1].Gap())
	assert.Equal(t, 3, packed[1].Width)
	assert.Equal(t, "VAL", packed[2].Name)
	assert.Equal(t, 4, packed[2].Width)
	assert.True(t, packed[3].Gap())
	assert.Equal(t, 24, packed[3].Width)
}

func TestPackFieldsTotalWidth(t *testing.T) {
	tests := []struct {
		name   string
		fields []model.Bitfield
		width  int
	}{
		{"empty", nil, 8},
		{"dense", []model.Bitfield{{Name: "A", Lsb: 0, Width: 8}}, 8},
		{"leading gap", []model.Bitfield{{Name: "A", Lsb: 5, Width: 3}}, 16},
		{"scattered", []model.Bitfield{
			{Name: "A", Lsb: 1, Width: 2},
			{Name: "B", Lsb: 7, Width: 1},
			{Name: "C", Lsb: 12, Width: 4},
		}, 32},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			packed := PackFields(tt.fields, tt.width)
			total := 0
			next := 0
			for _, f := range packed {
				assert.Equal(t, next, f.Lsb, "member must start where the previous ended")
				total += f.Width
				next = f.Lsb + f.Width
			}
			assert.Equal(t, tt.width, total, "packed members must cover the register exactly")
		})
	}
}

// The OR of the packed named members' masks equals the union of the input
// field masks, and gaps contribute the complement.
func TestPackFieldsMaskIdentity(t *testing.T) {
	fields := []model.Bitfield{
		{Name: "A", Lsb: 0, Width: 3},
		{Name: "B", Lsb: 8, Width: 8},
	}
	packed := PackFields(fields, 32)

	var named, all uint64
	for _, f := range packed {
		all |= f.Mask()
		if !f.Gap() {
			named |= f.Mask()
		}
	}
	var want uint64
	for _, f := range fields {
		want |= f.Mask()
	}
	assert.Equal(t, want, named)
	assert.Equal(t, uint64(0xFFFFFFFF), all)
}
