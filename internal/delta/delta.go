// Package delta computes line diffs between draft revisions and the live
// buffer.
package delta

import (
	"fmt"

	"github.com/hexops/gotextdiff"
	"github.com/hexops/gotextdiff/myers"
	"github.com/hexops/gotextdiff/span"
)

// Stat counts changed lines.
type Stat struct {
	Added   int
	Removed int
}

// Empty reports whether nothing changed.
func (s Stat) Empty() bool { return s.Added == 0 && s.Removed == 0 }

func (s Stat) String() string {
	if s.Empty() {
		return "unchanged"
	}
	return fmt.Sprintf("+%d -%d", s.Added, s.Removed)
}

// Diff is a computed unified diff with its line counts.
type Diff struct {
	Text string
	Stat Stat
}

// Compute diffs before against after. name labels both sides git-style
// (a/name, b/name). Identical inputs produce an empty Text.
func Compute(name, before, after string) Diff {
	if before == after {
		return Diff{}
	}
	edits := myers.ComputeEdits(span.URIFromPath(name), before, after)
	u := gotextdiff.ToUnified("a/"+name, "b/"+name, before, edits)

	var st Stat
	for _, h := range u.Hunks {
		for _, l := range h.Lines {
			switch l.Kind {
			case gotextdiff.Insert:
				st.Added++
			case gotextdiff.Delete:
				st.Removed++
			}
		}
	}
	if len(u.Hunks) == 0 {
		return Diff{Stat: st}
	}
	return Diff{Text: fmt.Sprint(u), Stat: st}
}

// Unified returns the unified diff text between before and after.
func Unified(name, before, after string) string {
	return Compute(name, before, after).Text
}

// StatOf returns only the changed line counts.
func StatOf(before, after string) Stat {
	return Compute("buffer", before, after).Stat
}

// Change classifies how a line of the newer text differs from the older.
type Change int

const (
	Added Change = iota + 1
	Modified
	// Removed marks the line just above where older lines were deleted.
	Removed
)

// Lines maps 0-indexed lines of after to their change against before.
// Insertions paired with deletions count as Modified. Identical inputs
// return nil.
func Lines(before, after string) map[int]Change {
	if before == after {
		return nil
	}
	edits := myers.ComputeEdits(span.URIFromPath("buffer"), before, after)
	u := gotextdiff.ToUnified("a", "b", before, edits)

	out := make(map[int]Change)
	for _, h := range u.Hunks {
		row := h.ToLine - 1
		deleted := 0
		for _, l := range h.Lines {
			switch l.Kind {
			case gotextdiff.Delete:
				deleted++
				continue
			case gotextdiff.Insert:
				if deleted > 0 {
					out[row] = Modified
					deleted--
				} else {
					out[row] = Added
				}
			default:
				if deleted > 0 {
					markRemoved(out, row)
				}
				deleted = 0
			}
			row++
		}
		if deleted > 0 {
			markRemoved(out, row)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// markRemoved flags the line above a deletion point, keeping any stronger
// marker already there.
func markRemoved(out map[int]Change, row int) {
	row = max(0, row-1)
	if _, ok := out[row]; !ok {
		out[row] = Removed
	}
}
