package page

// Book holds the per-size-class singly linked Page lists plus the
// empty-page cache, following the teacher's flistPools head-insertion
// discipline (malloc/pool_flist.go) but flattened to Page's own
// singly-linked Next field instead of a doubly-linked prev/next pair,
// since spec.md's Page only carries a forward link.
type Book struct {
	ClassPages  []*Page // head per size class, indexed like Classes
	EmptyPages  *Page   // cache of fully-empty pages available for rebinding
	TotalPages  int64
}

// NewBook allocates an empty Book sized for len(Classes) class lists.
func NewBook() *Book {
	return &Book{ClassPages: make([]*Page, len(Classes))}
}

// PushClass inserts page at the head of class idx's list.
func (b *Book) PushClass(idx int, p *Page) {
	p.Next = b.ClassPages[idx]
	b.ClassPages[idx] = p
	b.TotalPages++
}

// PopEmpty detaches and returns the head of the empty-page cache, or
// nil if the cache is empty.
func (b *Book) PopEmpty() *Page {
	p := b.EmptyPages
	if p == nil {
		return nil
	}
	b.EmptyPages = p.Next
	p.Next = nil
	return p
}

// PushEmpty inserts page at the head of the empty-page cache.
func (b *Book) PushEmpty(p *Page) {
	p.Next = b.EmptyPages
	b.EmptyPages = p
}

// UnlinkClass removes page from class idx's list, reporting whether it
// was found. The sweeper does not call it (trace.Sweep splices pages
// out with its own cursor); the class lists are short enough in
// practice (pages, not slots) that a linear unlink is the same
// O(pages-in-class) cost the teacher's own sweep-time unlink pays.
func (b *Book) UnlinkClass(idx int, target *Page) bool {
	cur := b.ClassPages[idx]
	if cur == target {
		b.ClassPages[idx] = target.Next
		target.Next = nil
		b.TotalPages--
		return true
	}
	for cur != nil && cur.Next != nil {
		if cur.Next == target {
			cur.Next = target.Next
			target.Next = nil
			b.TotalPages--
			return true
		}
		cur = cur.Next
	}
	return false
}

// LiveBytes recomputes last_live_bytes: the sum of in_use_count*size
// over every class list, excluding the empty-page cache, per spec.md
// section 4.5.
func (b *Book) LiveBytes() int64 {
	var total int64
	for _, head := range b.ClassPages {
		for p := head; p != nil; p = p.Next {
			total += p.InUse * p.SizeClass
		}
	}
	return total
}

// SetClassHead rebinds the head of class idx's list. Used by the
// sweeper, which walks each class list with its own pointer-to-pointer
// cursor (spec.md section 4.4) and must be able to splice the head out
// directly rather than through a generic iterator.
func (b *Book) SetClassHead(idx int, head *Page) {
	b.ClassPages[idx] = head
}
