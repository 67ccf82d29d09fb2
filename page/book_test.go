package page

import "testing"

func TestBookPushAndUnlink(t *testing.T) {
	b := NewBook()
	p1 := newTestPage(t, 0)
	p2 := newTestPage(t, 0)

	b.PushClass(0, p1)
	b.PushClass(0, p2)
	if b.TotalPages != 2 {
		t.Fatalf("TotalPages = %d, want 2", b.TotalPages)
	}
	if b.ClassPages[0] != p2 {
		t.Fatalf("expected p2 at head after push")
	}

	if !b.UnlinkClass(0, p1) {
		t.Fatalf("UnlinkClass(p1) returned false")
	}
	if b.TotalPages != 1 {
		t.Errorf("TotalPages after unlink = %d, want 1", b.TotalPages)
	}
	if b.ClassPages[0] != p2 {
		t.Errorf("expected p2 to remain head")
	}
}

func TestBookEmptyCache(t *testing.T) {
	b := NewBook()
	p := newTestPage(t, 0)

	if got := b.PopEmpty(); got != nil {
		t.Fatalf("expected nil from empty cache, got %v", got)
	}

	b.PushEmpty(p)
	got := b.PopEmpty()
	if got != p {
		t.Fatalf("expected PopEmpty to return pushed page")
	}
	if b.PopEmpty() != nil {
		t.Errorf("expected empty cache to be drained")
	}
}

func TestBookLiveBytes(t *testing.T) {
	b := NewBook()
	p := newTestPage(t, 1) // class 32
	p.AllocSlot()
	p.AllocSlot()
	b.PushClass(1, p)

	if got := b.LiveBytes(); got != 2*Classes[1] {
		t.Errorf("LiveBytes = %d, want %d", got, 2*Classes[1])
	}

	// Pages in the empty cache must not count toward live bytes.
	empty := newTestPage(t, 1)
	b.PushEmpty(empty)
	if got := b.LiveBytes(); got != 2*Classes[1] {
		t.Errorf("LiveBytes with empty cache present = %d, want %d", got, 2*Classes[1])
	}
}
