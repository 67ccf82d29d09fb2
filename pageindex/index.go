// Package pageindex implements the O(1) address-to-page resolution
// table: an open-addressed hash from a page's aligned base address to
// its *page.Page record. It is grounded on the teacher's general
// "pool, keep it sorted/keyed, probe linearly" approach
// (malloc/pool_flist.go's Mpoolers sort-by-base-pointer idea, taken
// further here into an actual O(1) hash rather than an O(log n) sorted
// scan, since spec.md requires O(1) resolution) combined with the
// SplitMix64 finalizer spec.md names for key mixing.
package pageindex

import (
	"github.com/jonahmer22/ReMem/page"
)

const minCapacity = 128

// Index is a power-of-two-sized, linearly-probed open-addressed hash
// table from page base address to *page.Page. Deletion uses
// backward-shift rehashing so lookups stay O(1) without tombstones.
type Index struct {
	keys   []uint64
	values []*page.Page
	count  int64
	cap    int64
}

// New builds an Index with the given initial capacity, rounded up to
// the next power of two (minimum minCapacity, per spec.md section 6).
func New(initialCapacity int64) *Index {
	cap := int64(minCapacity)
	for cap < initialCapacity {
		cap <<= 1
	}
	return &Index{
		keys:   make([]uint64, cap),
		values: make([]*page.Page, cap),
		cap:    cap,
	}
}

func (idx *Index) mask() uint64 { return uint64(idx.cap - 1) }

func (idx *Index) slot(key uint64) int64 {
	return int64(splitmix64(key) & idx.mask())
}

// Insert adds page p, keyed by its base address, growing the table
// first if the load factor (count+1)/cap would reach 0.7.
func (idx *Index) Insert(p *page.Page) {
	key := uint64(p.Base)
	if (idx.count+1)*10 >= idx.cap*7 {
		idx.grow()
	}
	idx.insertRaw(key, p)
}

func (idx *Index) insertRaw(key uint64, p *page.Page) {
	i := idx.slot(key)
	for {
		if idx.values[i] == nil {
			idx.keys[i], idx.values[i] = key, p
			idx.count++
			return
		}
		if idx.keys[i] == key {
			idx.values[i] = p // rebind in place (e.g. ResetForClass keeps Base)
			return
		}
		i = (i + 1) % idx.cap
	}
}

func (idx *Index) grow() {
	oldKeys, oldValues, oldCap := idx.keys, idx.values, idx.cap
	idx.cap *= 2
	idx.keys = make([]uint64, idx.cap)
	idx.values = make([]*page.Page, idx.cap)
	idx.count = 0
	for i := int64(0); i < oldCap; i++ {
		if oldValues[i] != nil {
			idx.insertRaw(oldKeys[i], oldValues[i])
		}
	}
}

// Lookup resolves a page base address to its Page record.
func (idx *Index) Lookup(base uintptr) (*page.Page, bool) {
	key := uint64(base)
	i := idx.slot(key)
	for idx.values[i] != nil {
		if idx.keys[i] == key {
			return idx.values[i], true
		}
		i = (i + 1) % idx.cap
	}
	return nil, false
}

// LookupAddr resolves an arbitrary interior pointer to the Page that
// owns it, or (nil, false) if the address is not page-index-managed.
func (idx *Index) LookupAddr(addr uintptr) (*page.Page, bool) {
	return idx.Lookup(page.PageBase(addr))
}

// Remove deletes the entry for base, backward-shift rehashing the
// probe run that follows it so later lookups remain tombstone-free.
func (idx *Index) Remove(base uintptr) {
	key := uint64(base)
	i := idx.slot(key)
	for idx.values[i] != nil {
		if idx.keys[i] == key {
			idx.removeAt(i)
			return
		}
		i = (i + 1) % idx.cap
	}
}

func (idx *Index) removeAt(hole int64) {
	idx.values[hole] = nil
	idx.count--

	i := (hole + 1) % idx.cap
	for idx.values[i] != nil {
		k, v := idx.keys[i], idx.values[i]
		idx.values[i] = nil
		idx.count--
		i = (i + 1) % idx.cap
		idx.insertRaw(k, v) // re-probe from its natural slot, filling hole
	}
}

// Count returns the number of live entries.
func (idx *Index) Count() int64 { return idx.count }

// Cap returns the current table capacity.
func (idx *Index) Cap() int64 { return idx.cap }
