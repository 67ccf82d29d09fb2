// Package roots implements the collector's explicit roots table: a
// dynamically grown, append-only array of caller-held
// pointer-to-pointer cells, dereferenced at mark time. The growth and
// lazy-compaction discipline follows the teacher's general append/trim
// idiom for small bookkeeping slices (lib.Settings' map-rebuild-style
// Section/Trim, generalized here to a slice with tombstones since the
// roots table must preserve stable cell identity for Unroot).
package roots

import "unsafe"

// Table is the process-wide roots table. Cells may be nil (tombstones);
// Len is the high-water mark, matching roots_len in spec.md section 3.
type Table struct {
	cells []*unsafe.Pointer
	index map[*unsafe.Pointer]int
	live  int64
}

// New returns an empty roots table.
func New() *Table {
	return &Table{index: make(map[*unsafe.Pointer]int)}
}

// Add registers cell as a root. Duplicates are deduplicated, per
// spec.md section 6 ("duplicates are deduplicated on add").
func (t *Table) Add(cell *unsafe.Pointer) {
	if _, ok := t.index[cell]; ok {
		return
	}
	t.cells = append(t.cells, cell)
	t.index[cell] = len(t.cells) - 1
	t.live++
	t.maybeCompact()
}

// Remove deregisters cell. Removing an unknown cell is a non-fatal
// diagnostic (spec.md section 7): it returns false and does nothing
// else.
func (t *Table) Remove(cell *unsafe.Pointer) bool {
	i, ok := t.index[cell]
	if !ok {
		return false
	}
	t.cells[i] = nil
	delete(t.index, cell)
	t.live--
	return true
}

// Len returns the high-water mark (including tombstoned slots).
func (t *Table) Len() int64 { return int64(len(t.cells)) }

// Each invokes fn with the current value of every non-nil, non-nil-valued
// root cell. Tombstoned slots and cells whose current value is nil are
// skipped, matching spec.md section 4.3 step 3 ("for each non-null cell
// in the roots table, dereference and call mark_ptr on the result").
func (t *Table) Each(fn func(value unsafe.Pointer)) {
	for _, cell := range t.cells {
		if cell == nil {
			continue
		}
		if v := *cell; v != nil {
			fn(v)
		}
	}
}

// maybeCompact implements the spec's permitted lazy-compaction policy
// (spec.md section 9 Open Question): when the high-water mark grows
// past twice the live count, rebuild the backing slice dropping
// tombstones. This is remem's decision on that open question, recorded
// in DESIGN.md.
func (t *Table) maybeCompact() {
	if int64(len(t.cells)) <= 2*t.live {
		return
	}
	compacted := make([]*unsafe.Pointer, 0, t.live)
	for _, cell := range t.cells {
		if cell != nil {
			t.index[cell] = len(compacted)
			compacted = append(compacted, cell)
		}
	}
	t.cells = compacted
}
