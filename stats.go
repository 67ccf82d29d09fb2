package remem

// Stats is a read-only snapshot of collector state, in the spirit of
// the teacher's llrb_stats.go and malloc.Arena.Utilization(). It is a
// supplemented feature (SPEC_FULL.md "Supplemented Features"): not in
// spec.md's literal text, but the kind of introspection a complete
// implementation of this system would expose.
type Stats struct {
	TotalPages    int64
	EmptyPages    int64
	LiveBytes     int64
	BytesSinceGC  int64
	LastLiveBytes int64
	OversizeCount int64
	IndexCount    int64
	IndexCap      int64
	RootsLen      int64
}

// GetStats snapshots the process-wide Collector's state.
func GetStats() Stats {
	if global == nil {
		panic(ErrNotInitialized)
	}
	return global.Stats()
}

func (c *Collector) Stats() Stats {
	var empty int64
	for p := c.book.EmptyPages; p != nil; p = p.Next {
		empty++
	}
	return Stats{
		TotalPages:    c.book.TotalPages,
		EmptyPages:    empty,
		LiveBytes:     c.book.LiveBytes(),
		BytesSinceGC:  c.pres.bytesSinceGC,
		LastLiveBytes: c.pres.lastLiveBytes,
		OversizeCount: int64(len(c.oversize)),
		IndexCount:    c.index.Count(),
		IndexCap:      c.index.Cap(),
		RootsLen:      c.roots.Len(),
	}
}
