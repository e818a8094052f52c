package layout

import (
	"math/bits"

	"github.com/mcutools/packgen/internal/codegen/common"
	"github.com/mcutools/packgen/internal/codegen/model"
)

// VecField is the synthetic wider field produced by coalescing adjacent
// numerically-suffixed single-bit siblings (TX0,TX1,TX2 -> TX:3). It is
// derived per register from the default-mode bitfield list and discarded
// after the register's macros are emitted.
type VecField struct {
	Name    string // base name, trailing digits stripped
	Caption string // caption with digit runs replaced by "x"
	Lsb     int
	Width   int
	Mask    uint64 // merged mask; may exceed Lsb..Lsb+Width-1 after dedup
	Anon    bool   // legacy dedup turns duplicates into anonymous padding
}

// Coalesce builds the vecfield list for one register's bitfields. A field is
// eligible when its name carries a numeric suffix and its width is exactly 1;
// consecutive eligible fields with the same base name and no intervening bit
// gap extend the open vecfield. Duplicate final names are resolved per style:
// the newer convention merges them into the first occurrence, the legacy one
// replaces the later duplicates with anonymous padding of the same width and
// then coalesces adjacent padding entries.
func Coalesce(fields []model.Bitfield, st Style) []VecField {
	var out []VecField
	open := -1 // index into out of the vecfield being extended

	for _, f := range fields {
		base := common.TrimDigits(f.Name)
		eligible := base != f.Name && base != "" && f.Width == 1
		if !eligible {
			open = -1
			continue
		}
		if open >= 0 && out[open].Name == base && out[open].Lsb+out[open].Width == f.Lsb {
			out[open].Width++
			out[open].Mask |= f.Mask()
			continue
		}
		out = append(out, VecField{
			Name:    base,
			Caption: common.ReplaceDigits(f.Caption, "x"),
			Lsb:     f.Lsb,
			Width:   1,
			Mask:    f.Mask(),
		})
		open = len(out) - 1
	}

	return dedupLoneAnon(dedupVecFields(out, st))
}

// dedupLoneAnon drops the list when all that survived deduplication is a
// single anonymous gap; there is nothing meaningful to coalesce then.
func dedupLoneAnon(vecs []VecField) []VecField {
	if len(vecs) == 1 && vecs[0].Anon {
		return nil
	}
	return vecs
}

// dedupVecFields resolves vecfields whose merged names collide (numeric
// suffixes repeating across disjoint ranges).
func dedupVecFields(vecs []VecField, st Style) []VecField {
	if len(vecs) < 2 {
		return vecs
	}

	first := make(map[string]bool, len(vecs))
	dup := false
	for _, v := range vecs {
		if first[v.Name] {
			dup = true
			break
		}
		first[v.Name] = true
	}
	if !dup {
		return vecs
	}

	if st.DeleteDupVecfields() {
		// Keep the first occurrence, fold later masks into it.
		out := vecs[:0:0]
		seen := make(map[string]int, len(vecs))
		for _, v := range vecs {
			if idx, ok := seen[v.Name]; ok {
				out[idx].Mask |= v.Mask
				continue
			}
			seen[v.Name] = len(out)
			out = append(out, v)
		}
		return out
	}

	// Legacy: anonymize the later duplicates, preserving their bit span so
	// the downstream macro set keeps its positions, then merge adjacent
	// anonymous runs.
	out := make([]VecField, 0, len(vecs))
	seen := make(map[string]bool, len(vecs))
	for _, v := range vecs {
		if seen[v.Name] {
			v.Anon = true
			v.Name = ""
			v.Caption = ""
			v.Width = bits.OnesCount64(v.Mask)
		} else {
			seen[v.Name] = true
		}
		if v.Anon && len(out) > 0 && out[len(out)-1].Anon &&
			out[len(out)-1].Lsb+out[len(out)-1].Width == v.Lsb {
			out[len(out)-1].Width += v.Width
			out[len(out)-1].Mask |= v.Mask
			continue
		}
		out = append(out, v)
	}
	return out
}
