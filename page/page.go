// Package page implements the size-classed, O(1)-addressable page
// allocator: Page, the per-class Book, and the freelist discipline
// threaded through slot payloads. It is grounded on the teacher's
// malloc.Arena/poolflist (pool-of-fixed-chunks-with-freelist) design,
// generalized from the teacher's capacity-driven pool sizing to the
// spec's fixed PAGE-sized, PAGE-aligned pages with a uniform freelist
// trick (next-free index stored in the first 4 bytes of a free slot).
package page

import (
	"unsafe"
)

// freeSentinel terminates a page's freelist chain.
const freeSentinel = int32(-1)

// Page is one PAGE-sized, PAGE-aligned backing buffer split into
// uniform slots of a single size class. See spec.md section 3 for the
// full invariant list; they are enforced by AllocSlot/FreeSlot/ResetForClass
// below rather than restated per-field here.
type Page struct {
	Block     []byte // PAGE-sized, PAGE-aligned backing buffer
	Base      uintptr
	SizeClass int64 // slot size in bytes; one of Classes
	ClassIdx  int
	NSlots    int64
	InUse     int64 // in_use_count
	FreeHead  int32 // index of first free slot, or freeSentinel
	InUseBits bitmap
	MarkBits  bitmap
	Next      *Page // class-list / empty-cache link
}

// NewPage builds a Page over a freshly obtained PAGE-sized buffer, bound
// to size class idx, with every slot threaded onto the freelist.
// Mirrors malloc.newpoolflist's "capacity/size chunk count + linear
// freelist init" shape, but the chunk count here is fixed by PAGE/size
// rather than derived from an arena capacity budget.
func NewPage(block []byte, idx int) *Page {
	if len(block) != PageSize {
		panic("page: backing buffer is not PAGE-sized")
	}
	p := &Page{
		Block: block,
		Base:  uintptr(unsafe.Pointer(&block[0])),
	}
	p.ResetForClass(idx)
	return p
}

// ResetForClass rebinds a page to size class idx: rewrites size_class,
// n_slots, zeroes in_use_count, bitmaps, and rebuilds the freelist
// chain 0->1->...->n_slots-1->-1. The block and its page-index entry
// are preserved by the caller (the index is keyed on Base, which never
// changes).
func (p *Page) ResetForClass(idx int) {
	p.ClassIdx = idx
	p.SizeClass = Classes[idx]
	p.NSlots = NSlots(idx)
	p.InUse = 0
	p.FreeHead = 0
	p.InUseBits = newBitmap(p.NSlots)
	p.MarkBits = newBitmap(p.NSlots)

	for i := int64(0); i < p.NSlots; i++ {
		var next int32
		if i == p.NSlots-1 {
			next = freeSentinel
		} else {
			next = int32(i + 1)
		}
		p.writeSlotNext(i, next)
	}
}

// SlotBase returns the address of slot idx within the page.
func (p *Page) SlotBase(idx int64) uintptr {
	return p.Base + uintptr(idx*p.SizeClass)
}

// SlotBytes returns the slot's backing bytes as a slice, for payload
// scanning or zeroing.
func (p *Page) SlotBytes(idx int64) []byte {
	off := idx * p.SizeClass
	return p.Block[off : off+p.SizeClass]
}

func (p *Page) slotNextPtr(idx int64) *int32 {
	off := idx * p.SizeClass
	return (*int32)(unsafe.Pointer(&p.Block[off]))
}

func (p *Page) readSlotNext(idx int64) int32  { return *p.slotNextPtr(idx) }
func (p *Page) writeSlotNext(idx int64, v int32) { *p.slotNextPtr(idx) = v }

// AllocSlot pops the head of the freelist and marks it in-use. Caller
// must have already verified FreeHead != freeSentinel.
func (p *Page) AllocSlot() int64 {
	idx := int64(p.FreeHead)
	p.FreeHead = p.readSlotNext(idx)
	p.InUseBits.set(idx)
	p.InUse++
	return idx
}

// FreeSlot pushes slot idx back onto the freelist and clears its
// in-use bit. Never reclaims below zero in-use count (spec.md 4.4).
func (p *Page) FreeSlot(idx int64) {
	p.writeSlotNext(idx, p.FreeHead)
	p.FreeHead = int32(idx)
	p.InUseBits.clear(idx)
	if p.InUse > 0 {
		p.InUse--
	}
}

// HasFree reports whether the page has at least one free slot.
func (p *Page) HasFree() bool { return p.FreeHead != freeSentinel }

// IsEmpty reports whether every slot on the page is free.
func (p *Page) IsEmpty() bool { return p.InUse == 0 }

// SlotIndex resolves an interior address to its slot index, with the
// truncating division spec.md calls out as intentional for conservative
// scanning: any interior pointer within slot i maps to i.
func (p *Page) SlotIndex(addr uintptr) (idx int64, ok bool) {
	off := addr - p.Base
	if off >= PageSize {
		return 0, false
	}
	idx = int64(off) / p.SizeClass
	if idx >= p.NSlots {
		return 0, false
	}
	return idx, true
}

// CheckInUsePopcount validates invariant 1 of spec.md section 8:
// in_use_count must equal the popcount of in_use_bits over [0,n_slots).
// Exported for property-style tests; not called on the hot path.
func (p *Page) CheckInUsePopcount() bool {
	return p.InUse == p.InUseBits.popcount()
}

// CheckFreelist walks the freelist from FreeHead and validates invariant
// 2 of spec.md section 8: correct length, no cycles, no duplicates, and
// every visited slot has its in-use bit clear.
func (p *Page) CheckFreelist() bool {
	seen := make(map[int64]bool, p.NSlots)
	n := int64(0)
	for cur := p.FreeHead; cur != freeSentinel; {
		idx := int64(cur)
		if seen[idx] {
			return false // cycle or duplicate
		}
		seen[idx] = true
		if p.InUseBits.isSet(idx) {
			return false
		}
		n++
		cur = p.readSlotNext(idx)
	}
	return n == p.NSlots-p.InUse
}
