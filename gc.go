// Package remem implements a single-threaded, conservative mark-and-sweep
// garbage collector over a size-classed page allocator, per SPEC_FULL.md.
// It keeps the teacher's facade shape (dict.go sits in front of
// llrb/bubt/bogn the way this package sits in front of page/pageindex/
// trace/roots/arena) but the operations themselves — gcAlloc, gcCollect,
// gcRoot/gcUnroot — have no teacher analogue, since gostore never needed
// a tracing collector.
package remem

import (
	"unsafe"

	"github.com/jonahmer22/ReMem/arena"
	"github.com/jonahmer22/ReMem/internal/rlog"
	"github.com/jonahmer22/ReMem/page"
	"github.com/jonahmer22/ReMem/pageindex"
	"github.com/jonahmer22/ReMem/roots"
	"github.com/jonahmer22/ReMem/trace"
)

// Collector is the GC core. The package-level Init/Destroy/Alloc/
// Collect/Root/Unroot functions operate on a single process-wide
// instance (spec.md section 9's "Global singleton" design note);
// Collector itself stays a plain value so a future multi-collector
// variant, or a test that wants isolation, can construct one directly
// with New instead of going through the singleton.
type Collector struct {
	cfg Config

	book  *page.Book
	index *pageindex.Index
	roots *roots.Table
	trc   *trace.Tracer
	pres  *pressure

	arenaAdapter arena.Adapter
	oversize     [][]byte

	stackTopHint uintptr
	scanStack    bool
	freeMemory   bool

	log rlog.Logger
}

var global *Collector

// New constructs a Collector without installing it as the process-wide
// singleton. stackTopHint is the caller-supplied upper bound of the
// scannable stack (spec.md section 6); pass 0 if scanStack (cfg
// "scan.stack") is false, since the stack window is then never
// consulted.
func New(stackTopHint uintptr, cfg Config) (*Collector, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	adapter := arena.NewMmapAdapter()

	c := &Collector{
		cfg:          cfg,
		book:         page.NewBook(),
		index:        pageindex.New(cfg.Int64("index.initialcap", 128)),
		roots:        roots.New(),
		arenaAdapter: adapter,
		stackTopHint: stackTopHint,
		scanStack:    cfg.Bool("scan.stack"),
		freeMemory:   cfg.Bool("free.memory"),
		log:          rlog.SetLogger(nil, cfg.String("log.level", "info")),
	}
	c.pres = newPressure(cfg.Float64("growth.factor", 1.5))
	c.trc = trace.NewTracer(c.index)
	return c, nil
}

// Init constructs the process-wide Collector, matching gc_init in
// spec.md section 6. free_memory selects whether emptied pages are
// returned to the OS (true) or cached for rebinding (false, the
// default via Config). Returns false only if arena initialization
// fails.
func Init(stackTopHint uintptr, freeMemory bool) bool {
	cfg := DefaultConfig()
	cfg["free.memory"] = freeMemory
	c, err := New(stackTopHint, cfg)
	if err != nil {
		return false
	}
	global = c
	return true
}

// InitWithConfig is Init's configurable form, for callers that want
// growth factor, stack scanning, or log level control beyond the two
// positional spec.md parameters.
func InitWithConfig(stackTopHint uintptr, cfg Config) bool {
	c, err := New(stackTopHint, cfg)
	if err != nil {
		return false
	}
	global = c
	return true
}

// Destroy tears down the process-wide Collector: arena, book, roots,
// worklist, and page index. All allocations become invalid, per
// spec.md section 6.
func Destroy() {
	if global == nil {
		return
	}
	global.Destroy()
	global = nil
}

func (c *Collector) Destroy() {
	c.arenaAdapter.Destroy()
	c.book = page.NewBook()
	c.index = pageindex.New(128)
	c.roots = roots.New()
	c.oversize = nil
	c.trc = trace.NewTracer(c.index)
	c.pres = newPressure(c.pres.growthFactor)
}

// Alloc returns an aligned pointer to size bytes of memory, possibly
// triggering a collection first, per spec.md section 6. Panics with
// ErrOutOfMemory if the arena cannot serve the request even after one
// retry collection (spec.md section 7's fatal allocation-failure path).
func Alloc(size int64) unsafe.Pointer {
	if global == nil {
		panic(ErrNotInitialized)
	}
	return global.Alloc(size)
}

func (c *Collector) Alloc(size int64) unsafe.Pointer {
	classIdx := page.Classify(size)
	if classIdx == page.Oversize {
		return c.allocOversize(size)
	}
	return c.allocFromClass(classIdx)
}

// allocFromClass implements spec.md section 4.1's alloc_from_class.
func (c *Collector) allocFromClass(classIdx int) unsafe.Pointer {
	size := page.Classes[classIdx]
	c.checkPressure(size)

	if p := c.firstWithFree(classIdx); p != nil {
		return c.takeSlot(p)
	}
	if p := c.book.PopEmpty(); p != nil {
		p.ResetForClass(classIdx)
		c.book.PushClass(classIdx, p)
		return c.takeSlot(p)
	}

	p, err := c.newPageForClass(classIdx)
	if err != nil {
		c.Collect()
		p, err = c.newPageForClass(classIdx)
		if err != nil {
			c.log.Errorf("remem: arena exhausted allocating class %d: %v", classIdx, err)
			panic(ErrOutOfMemory)
		}
	}
	c.book.PushClass(classIdx, p)
	return c.takeSlot(p)
}

func (c *Collector) firstWithFree(classIdx int) *page.Page {
	for p := c.book.ClassPages[classIdx]; p != nil; p = p.Next {
		if p.HasFree() {
			return p
		}
	}
	return nil
}

func (c *Collector) takeSlot(p *page.Page) unsafe.Pointer {
	idx := p.AllocSlot()
	c.pres.recordAlloc(p.SizeClass)
	return unsafe.Pointer(p.SlotBase(idx))
}

// newPageForClass implements spec.md section 4.1's new_page_for_class:
// obtain a PAGE-sized, PAGE-aligned buffer from the arena, build a
// Page over it, and insert it into the page index keyed by its base.
func (c *Collector) newPageForClass(classIdx int) (*page.Page, error) {
	block, err := c.arenaAdapter.AllocPage()
	if err != nil {
		return nil, err
	}
	p := page.NewPage(block, classIdx)
	c.index.Insert(p)
	c.log.Debugf("remem: new page class=%d base=%#x", classIdx, p.Base)
	return p, nil
}

// allocOversize implements spec.md section 4.1's oversize path: bypass
// size-classed allocation entirely, request a raw buffer from the
// arena, and never track it in the page index.
func (c *Collector) allocOversize(size int64) unsafe.Pointer {
	c.checkPressure(size)

	buf, err := c.arenaAdapter.AllocRaw(size)
	if err != nil {
		c.Collect()
		buf, err = c.arenaAdapter.AllocRaw(size)
		if err != nil {
			c.log.Errorf("remem: arena exhausted allocating oversize %d: %v", size, err)
			panic(ErrOutOfMemory)
		}
	}
	c.oversize = append(c.oversize, buf)
	c.pres.recordAlloc(size)
	return unsafe.Pointer(&buf[0])
}

func (c *Collector) checkPressure(upcoming int64) {
	if c.pres.shouldCollect(upcoming) {
		c.Collect()
	}
}

// Collect runs a full mark/sweep cycle synchronously, per spec.md
// section 6's gc_collect.
func Collect() {
	if global == nil {
		panic(ErrNotInitialized)
	}
	global.Collect()
}

func (c *Collector) Collect() {
	var stackLow uintptr
	if c.scanStack {
		var sentinel byte
		stackLow = uintptr(unsafe.Pointer(&sentinel))
	}
	c.trc.Mark(stackLow, c.stackTopHint, c.scanStack, c.roots)

	freed := trace.Sweep(c.book, c.index, c.arenaAdapter, c.freeMemory)
	live := c.book.LiveBytes()
	c.pres.afterCollect(live)

	c.log.Debugf(
		"remem: collect done marked=%d scanned=%d live=%d freedPages=%d",
		c.trc.Marked, c.trc.Scanned, live, freed,
	)
}

// Root registers cell as a GC root, per spec.md section 6's gc_root.
// cell must remain valid until Unroot is called on it.
func Root(cell *unsafe.Pointer) {
	if global == nil {
		panic(ErrNotInitialized)
	}
	global.roots.Add(cell)
}

// Unroot deregisters cell. Unrooting an unknown cell is a non-fatal
// diagnostic, per spec.md section 7.
func Unroot(cell *unsafe.Pointer) {
	if global == nil {
		panic(ErrNotInitialized)
	}
	if !global.roots.Remove(cell) {
		global.log.Warnf("remem: unroot of unknown cell %p", cell)
	}
}
