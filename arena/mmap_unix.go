//go:build linux || darwin

package arena

import (
	"fmt"

	"golang.org/x/sys/unix"
)

// mmapAdapter is the production Adapter: every page and oversize
// buffer is backed by an anonymous mmap region, released via munmap on
// Destroy. Grounded on matrixorigin-matrixone's mmap_linux.go /
// mmap_darwin.go split (unix.Mmap/Munmap/Madvise behind a build-tagged
// file per OS) — here the two OSes share one file because the syscalls
// used (Mmap/Munmap) are identical on both; only MADV_DONTNEED-style
// reuse hints would need to diverge, and the core never asks for that.
type mmapAdapter struct {
	regions [][]byte
}

// NewMmapAdapter constructs the default arena adapter.
func NewMmapAdapter() Adapter {
	return &mmapAdapter{}
}

// AllocPage returns a PAGE-sized, PAGE-aligned buffer. mmap only
// guarantees OS-page alignment (commonly 4KiB), which is finer than
// but not sufficient for our 1MiB PageSize, so this over-maps by one
// PageSize and trims the unaligned head/tail back to the OS via
// munmap, keeping only the aligned middle region mapped.
func (a *mmapAdapter) AllocPage() ([]byte, error) {
	buf, err := a.mapAligned(PageSize, PageSize)
	if err != nil {
		return nil, err
	}
	a.regions = append(a.regions, buf)
	return buf, nil
}

// AllocRaw returns a buffer of exactly n bytes for an oversize
// allocation. Oversize buffers only need pointer-width alignment
// (spec.md section 6), which mmap already gives, so no trimming dance
// is needed here.
func (a *mmapAdapter) AllocRaw(n int64) ([]byte, error) {
	buf, err := unix.Mmap(-1, 0, int(n), unix.PROT_READ|unix.PROT_WRITE, unix.MAP_PRIVATE|unix.MAP_ANON)
	if err != nil {
		return nil, fmt.Errorf("arena: mmap raw(%d): %w", n, err)
	}
	a.regions = append(a.regions, buf)
	return buf, nil
}

func (a *mmapAdapter) mapAligned(size, align int) ([]byte, error) {
	total := size + align
	raw, err := unix.Mmap(-1, 0, total, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_PRIVATE|unix.MAP_ANON)
	if err != nil {
		return nil, fmt.Errorf("arena: mmap page: %w", err)
	}
	base := BasePtr(raw)
	aligned := (base + uintptr(align-1)) &^ uintptr(align-1)
	head := int(aligned - base)
	tail := head + size

	if head > 0 {
		if err := unix.Munmap(raw[:head]); err != nil {
			return nil, fmt.Errorf("arena: trim head: %w", err)
		}
	}
	if tail < len(raw) {
		if err := unix.Munmap(raw[tail:]); err != nil {
			return nil, fmt.Errorf("arena: trim tail: %w", err)
		}
	}
	return raw[head:tail], nil
}

// FreePage immediately returns buf to the OS and drops it from the
// adapter's bookkeeping so Destroy does not double-unmap it.
func (a *mmapAdapter) FreePage(buf []byte) error {
	for i, r := range a.regions {
		if &r[0] == &buf[0] {
			a.regions = append(a.regions[:i], a.regions[i+1:]...)
			break
		}
	}
	return unix.Munmap(buf)
}

// Destroy unmaps every region this adapter ever handed out.
func (a *mmapAdapter) Destroy() {
	for _, r := range a.regions {
		_ = unix.Munmap(r)
	}
	a.regions = nil
}
