package layout

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mcutools/packgen/internal/codegen/model"
)

func bit(name string, lsb int) model.Bitfield {
	return model.Bitfield{Name: name, Lsb: lsb, Width: 1}
}

func TestCoalesceMergesAdjacentRun(t *testing.T) {
	fields := []model.Bitfield{bit("TX0", 0), bit("TX1", 1), bit("TX2", 2)}

	vecs := Coalesce(fields, MicrochipStyle)
	assert.Len(t, vecs, 1)
	assert.Equal(t, "TX", vecs[0].Name)
	assert.Equal(t, 0, vecs[0].Lsb)
	assert.Equal(t, 3, vecs[0].Width)
	assert.Equal(t, uint64(0x7), vecs[0].Mask)
}

func TestCoalesceBreaksOnGapAndBase(t *testing.T) {
	fields := []model.Bitfield{
		bit("TX0", 0), bit("TX1", 1),
		bit("RX2", 4), // base change closes the TX run
		bit("RX3", 5),
		{Name: "MODE2", Lsb: 6, Width: 2}, // width != 1 is never eligible
	}
	vecs := Coalesce(fields, MicrochipStyle)

	assert.Len(t, vecs, 2)
	assert.Equal(t, "TX", vecs[0].Name)
	assert.Equal(t, 2, vecs[0].Width)
	assert.Equal(t, "RX", vecs[1].Name)
	assert.Equal(t, 4, vecs[1].Lsb)
	assert.Equal(t, 2, vecs[1].Width)
}

func TestCoalesceGapSplitsRun(t *testing.T) {
	// A bit gap inside one numeric family starts a second run with the same
	// merged name; dedup then folds it into the first per the newer style.
	fields := []model.Bitfield{bit("TX0", 0), bit("TX1", 1), bit("TX2", 4)}
	vecs := Coalesce(fields, MicrochipStyle)

	assert.Len(t, vecs, 1)
	assert.Equal(t, "TX", vecs[0].Name)
	assert.Equal(t, 2, vecs[0].Width)
	assert.Equal(t, uint64(0x13), vecs[0].Mask)
}

func TestCoalesceIgnoresUnsuffixedNames(t *testing.T) {
	fields := []model.Bitfield{bit("EN", 0), bit("BUSY", 1)}
	assert.Empty(t, Coalesce(fields, MicrochipStyle))
}

// Duplicate merged names across disjoint ranges: the newer style keeps the
// first occurrence and folds the later masks into it.
func TestCoalesceDuplicateDelete(t *testing.T) {
	fields := []model.Bitfield{
		bit("TX0", 0), bit("TX1", 1), bit("TX2", 2),
		bit("EN", 3),
		bit("TX0", 8), bit("TX1", 9), bit("TX2", 10),
	}
	vecs := Coalesce(fields, MicrochipStyle)

	assert.Len(t, vecs, 1)
	assert.Equal(t, "TX", vecs[0].Name)
	assert.Equal(t, 0, vecs[0].Lsb)
	assert.Equal(t, 3, vecs[0].Width)
	assert.Equal(t, uint64(0x7|0x700), vecs[0].Mask)
	assert.False(t, vecs[0].Anon)
}

// The legacy generator zeroes duplicates out as anonymous padding of the
// same width instead of deleting them.
func TestCoalesceDuplicateAnonymize(t *testing.T) {
	fields := []model.Bitfield{
		bit("TX0", 0), bit("TX1", 1), bit("TX2", 2),
		bit("EN", 3),
		bit("TX0", 8), bit("TX1", 9), bit("TX2", 10),
	}
	vecs := Coalesce(fields, LegacyStyle)

	assert.Len(t, vecs, 2)
	assert.Equal(t, "TX", vecs[0].Name)
	assert.Equal(t, uint64(0x7), vecs[0].Mask)
	assert.True(t, vecs[1].Anon)
	assert.Equal(t, 3, vecs[1].Width)
	assert.Equal(t, uint64(0x700), vecs[1].Mask)
}

func TestCoalesceAdjacentAnonymousRunsMerge(t *testing.T) {
	// Two duplicate runs that end up adjacent collapse into one padding run.
	fields := []model.Bitfield{
		bit("TX0", 0), bit("TX1", 1),
		bit("RX0", 2),
		bit("TX0", 4), bit("TX1", 5),
		bit("RX0", 6),
	}
	vecs := Coalesce(fields, LegacyStyle)

	assert.Len(t, vecs, 3)
	assert.Equal(t, "TX", vecs[0].Name)
	assert.Equal(t, "RX", vecs[1].Name)
	assert.True(t, vecs[2].Anon)
	assert.Equal(t, 3, vecs[2].Width) // TX dup (2 bits) + RX dup (1 bit), bit-adjacent
	assert.Equal(t, uint64(0x70), vecs[2].Mask)
}

// A lone anonymous leftover suppresses vecfield output entirely; a single
// eligible field stays named.
func TestCoalesceLoneAnonymousSuppressed(t *testing.T) {
	assert.Empty(t, Coalesce(nil, LegacyStyle))
	assert.Nil(t, dedupLoneAnon([]VecField{{Anon: true, Width: 3, Mask: 0x7}}))

	vecs := Coalesce([]model.Bitfield{bit("TX0", 0)}, LegacyStyle)
	assert.Len(t, vecs, 1)
	assert.False(t, vecs[0].Anon)
}

// The pass is a pure function of its input: running it twice must yield the
// same list both times.
func TestCoalesceIdempotent(t *testing.T) {
	fields := []model.Bitfield{
		bit("TX0", 0), bit("TX1", 1), bit("TX2", 2),
		bit("EN", 3),
		bit("TX0", 8), bit("TX1", 9),
	}
	for _, st := range []Style{LegacyStyle, MicrochipStyle} {
		first := Coalesce(fields, st)
		second := Coalesce(fields, st)
		assert.Equal(t, first, second)
	}
}
