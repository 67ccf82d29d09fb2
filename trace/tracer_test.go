package trace

import (
	"testing"
	"unsafe"

	"github.com/jonahmer22/ReMem/page"
	"github.com/jonahmer22/ReMem/pageindex"
	"github.com/jonahmer22/ReMem/roots"
)

func setup(t *testing.T, classIdx int) (*pageindex.Index, *page.Page) {
	t.Helper()
	// MarkPtr resolves slots through LookupAddr, which masks addresses
	// to PAGE, so the backing buffer must be PAGE-aligned.
	raw := make([]byte, 2*page.PageSize)
	off := int(-uintptr(unsafe.Pointer(&raw[0])) & (page.PageSize - 1))
	block := raw[off : off+page.PageSize]
	p := page.NewPage(block, classIdx)
	idx := pageindex.New(0)
	idx.Insert(p)
	return idx, p
}

func TestMarkPtrRejectsFreeSlot(t *testing.T) {
	idx, p := setup(t, 1)
	tr := NewTracer(idx)

	// slot 0 was never allocated: its in-use bit is clear.
	tr.MarkPtr(unsafe.Pointer(p.SlotBase(0)))
	if p.MarkBits.isSet(0) {
		t.Errorf("expected free slot to be rejected by MarkPtr")
	}
}

func TestMarkPtrMarksAllocatedSlot(t *testing.T) {
	idx, p := setup(t, 1)
	tr := NewTracer(idx)
	slotIdx := p.AllocSlot()

	tr.MarkPtr(unsafe.Pointer(p.SlotBase(slotIdx)))
	if !p.MarkBits.isSet(slotIdx) {
		t.Fatalf("expected allocated slot to be marked")
	}
}

func TestMarkPtrRejectsNullAndUnmanaged(t *testing.T) {
	idx, _ := setup(t, 1)
	tr := NewTracer(idx)

	tr.MarkPtr(nil) // must not panic
	tr.MarkPtr(unsafe.Pointer(uintptr(0xdeadbeef)))
	if tr.Marked != 0 {
		t.Errorf("Marked = %d, want 0", tr.Marked)
	}
}

func TestDrainScansSlotPayloadTransitively(t *testing.T) {
	idx, p := setup(t, 8) // class 4096, room for pointer-wide payload
	idxB, pB := setup(t, 1)
	idx2 := idx
	idx2.Insert(pB) // share one index across both pages for this test

	tr := NewTracer(idx2)
	_ = idxB

	a := p.AllocSlot()
	b := pB.AllocSlot()

	// Write a pointer to slot b's base into slot a's payload.
	bAddr := pB.SlotBase(b)
	*(*uintptr)(unsafe.Pointer(p.SlotBase(a))) = uintptr(bAddr)

	tr.MarkPtr(unsafe.Pointer(p.SlotBase(a)))
	tr.Drain()

	if !p.MarkBits.isSet(a) {
		t.Errorf("expected slot a marked")
	}
	if !pB.MarkBits.isSet(b) {
		t.Errorf("expected slot b reachable transitively through slot a's payload")
	}
}

func TestScanRootsMarksReferencedSlot(t *testing.T) {
	idx, p := setup(t, 1)
	tr := NewTracer(idx)
	slotIdx := p.AllocSlot()

	cell := unsafe.Pointer(p.SlotBase(slotIdx))
	rt := roots.New()
	rt.Add(&cell)

	tr.ScanRoots(rt)
	if !p.MarkBits.isSet(slotIdx) {
		t.Errorf("expected rooted slot to be marked")
	}
}

func TestMarkResetsWorklistBetweenCycles(t *testing.T) {
	idx, p := setup(t, 1)
	tr := NewTracer(idx)
	rt := roots.New()

	slotIdx := p.AllocSlot()
	cell := unsafe.Pointer(p.SlotBase(slotIdx))
	rt.Add(&cell)

	tr.Mark(0, 0, false, rt)
	if !p.MarkBits.isSet(slotIdx) {
		t.Fatalf("expected slot marked after first cycle")
	}
	p.MarkBits.clear(slotIdx) // simulate sweep's else-marked branch

	tr.Mark(0, 0, false, rt)
	if !p.MarkBits.isSet(slotIdx) {
		t.Errorf("expected slot marked again after second cycle")
	}
}
