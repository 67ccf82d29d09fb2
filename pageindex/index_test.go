package pageindex

import (
	"testing"
	"unsafe"

	"github.com/jonahmer22/ReMem/page"
)

// makePage builds a Page over a PAGE-aligned buffer, carved out of a
// twice-PAGE-sized heap slice, so LookupAddr can mask interior
// addresses back to the page's base.
func makePage(t *testing.T) *page.Page {
	t.Helper()
	raw := make([]byte, 2*page.PageSize)
	off := int(-uintptr(unsafe.Pointer(&raw[0])) & (page.PageSize - 1))
	block := raw[off : off+page.PageSize]
	return page.NewPage(block, 0)
}

// TestInsertLookupRemoveRoundTrip covers spec.md property/scenario 6:
// inserting N distinct pages, looking each up, then removing them in
// any order leaves count == 0 and every slot empty.
func TestInsertLookupRemoveRoundTrip(t *testing.T) {
	const n = 64
	idx := New(0)
	pages := make([]*page.Page, n)
	for i := 0; i < n; i++ {
		pages[i] = makePage(t)
		idx.Insert(pages[i])
	}
	if idx.Count() != n {
		t.Fatalf("Count = %d, want %d", idx.Count(), n)
	}
	for i, p := range pages {
		got, ok := idx.Lookup(p.Base)
		if !ok || got != p {
			t.Fatalf("Lookup(pages[%d]) failed", i)
		}
	}

	// Remove in reverse order.
	for i := n - 1; i >= 0; i-- {
		idx.Remove(pages[i].Base)
	}
	if idx.Count() != 0 {
		t.Fatalf("Count after removing all = %d, want 0", idx.Count())
	}
	for _, v := range idx.values {
		if v != nil {
			t.Fatalf("expected every slot empty after draining index")
		}
	}
}

func TestLookupAddrResolvesInteriorPointer(t *testing.T) {
	idx := New(0)
	p := makePage(t)
	idx.Insert(p)

	interior := p.Base + 100
	got, ok := idx.LookupAddr(interior)
	if !ok || got != p {
		t.Fatalf("LookupAddr(interior) failed to resolve owning page")
	}
}

func TestLookupAbsent(t *testing.T) {
	idx := New(0)
	p := makePage(t)
	idx.Insert(p)

	if _, ok := idx.Lookup(p.Base + page.PageSize); ok {
		t.Errorf("expected lookup of an unmanaged base to miss")
	}
}

func TestGrowPreservesEntries(t *testing.T) {
	idx := New(0)
	if idx.Cap() != minCapacity {
		t.Fatalf("initial Cap = %d, want %d", idx.Cap(), minCapacity)
	}

	var pages []*page.Page
	for i := 0; i < minCapacity; i++ { // force at least one grow
		p := makePage(t)
		pages = append(pages, p)
		idx.Insert(p)
	}
	if idx.Cap() <= minCapacity {
		t.Fatalf("expected table to have grown past %d, got cap %d", minCapacity, idx.Cap())
	}
	for _, p := range pages {
		if got, ok := idx.Lookup(p.Base); !ok || got != p {
			t.Fatalf("entry lost across grow")
		}
	}
}

func TestRemoveUnknownIsNoop(t *testing.T) {
	idx := New(0)
	idx.Remove(0xdeadbeef)
	if idx.Count() != 0 {
		t.Errorf("Count = %d, want 0", idx.Count())
	}
}
