// Package arena implements the default backing-buffer collaborator the
// core garbage collector consumes: PAGE-sized, PAGE-aligned buffers for
// pages, and raw variable-sized buffers for oversize allocations. The
// core never imports an allocation strategy directly — it talks to the
// Adapter interface — so the mmap-backed implementation here can be
// swapped (e.g. in tests, for a plain-heap adapter) without touching
// page, pageindex, or trace.
//
// This replaces the teacher's cgo C.malloc/C.free-backed pool base
// allocation (malloc/pool_flist.go, mem_pool.go) with an mmap/munmap
// syscall wrapper, because the spec requires PAGE-aligned buffers and
// POSIX malloc gives no alignment guarantee beyond a machine word;
// mmap gives page-granular alignment directly. See DESIGN.md for the
// full rationale.
package arena

import "unsafe"

// Adapter is the contract the collector core requires from its backing
// allocator (spec.md section 6):
//
//   - AllocPage returns a buffer of exactly one PAGE, aligned to PAGE.
//   - AllocRaw returns a buffer of exactly n bytes, aligned at least to
//     pointer width, for oversize allocations.
//   - Destroy releases every buffer this adapter has handed out.
type Adapter interface {
	AllocPage() ([]byte, error)
	AllocRaw(n int64) ([]byte, error)

	// FreePage returns a single page buffer (previously obtained from
	// AllocPage) to the OS immediately, used only in free-pages mode
	// (spec.md section 4.4). The core never calls this for oversize
	// buffers; those persist until Destroy.
	FreePage(buf []byte) error

	Destroy()
}

// PageSize must match page.PageSize; duplicated here (rather than
// imported) so this package has no dependency on page, keeping the
// arena/page import direction one-way (page <- nothing, arena <-
// nothing, remem -> both).
const PageSize = 1 << 20

// BasePtr returns the address of a buffer's first byte, for callers
// that need to hand it to the page index.
func BasePtr(buf []byte) uintptr {
	if len(buf) == 0 {
		return 0
	}
	return uintptr(unsafe.Pointer(&buf[0]))
}
