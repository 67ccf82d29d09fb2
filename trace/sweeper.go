package trace

import (
	"github.com/jonahmer22/ReMem/arena"
	"github.com/jonahmer22/ReMem/page"
	"github.com/jonahmer22/ReMem/pageindex"
)

// Sweep walks every class list with a cursor, reclaiming unmarked
// in-use slots and clearing survivors' mark bits, then retires pages
// left with zero survivors: destroyed immediately in free-pages mode,
// or pushed onto the Book's empty-page cache otherwise. Per spec.md
// section 4.4, pages already in the empty cache are not walked.
//
// Grounded on the teacher's flistPools sweep-adjacent bookkeeping
// (malloc/pool_flist.go's unlink/toheadfree head-splice pair), but the
// reclaim predicate itself — consult mark_bits, not a refcount or
// explicit Free call — has no teacher analogue; LLRB/Bogn/Bubt are
// explicitly-freed or MVCC-horizon-reclaimed, never mark/sweep.
func Sweep(book *page.Book, idx *pageindex.Index, adapter arena.Adapter, freeMemory bool) (freedPages int64) {
	for classIdx := range book.ClassPages {
		var prev *page.Page
		cur := book.ClassPages[classIdx]
		for cur != nil {
			next := cur.Next
			sweepPage(cur)

			if cur.IsEmpty() {
				if prev == nil {
					book.SetClassHead(classIdx, next)
				} else {
					prev.Next = next
				}
				cur.Next = nil
				book.TotalPages--

				if freeMemory {
					idx.Remove(cur.Base)
					_ = adapter.FreePage(cur.Block)
					freedPages++
				} else {
					book.PushEmpty(cur)
				}
			} else {
				prev = cur
			}
			cur = next
		}
	}
	return freedPages
}

// sweepPage reclaims a page's unmarked in-use slots and clears mark
// bits on survivors, per spec.md section 4.4.
func sweepPage(p *page.Page) {
	for i := int64(0); i < p.NSlots; i++ {
		inUse := p.InUseBits.isSet(i)
		marked := p.MarkBits.isSet(i)
		switch {
		case inUse && !marked:
			p.FreeSlot(i)
		case marked:
			p.MarkBits.clear(i)
		}
	}
}
