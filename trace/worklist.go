package trace

import "github.com/jonahmer22/ReMem/page"

// workItem is a (page, slot index) pair awaiting payload scanning.
type workItem struct {
	p   *page.Page
	idx int64
}

// worklist is a LIFO of workItems, grown geometrically and never
// shrunk within a collection; its capacity is retained across
// collections by resetting length instead of reallocating, per
// spec.md section 3.
type worklist struct {
	items []workItem
}

func (w *worklist) reset() {
	w.items = w.items[:0]
}

func (w *worklist) push(p *page.Page, idx int64) {
	w.items = append(w.items, workItem{p, idx})
}

func (w *worklist) pop() (workItem, bool) {
	n := len(w.items)
	if n == 0 {
		return workItem{}, false
	}
	it := w.items[n-1]
	w.items = w.items[:n-1]
	return it, true
}
