package remem

import "github.com/jonahmer22/ReMem/page"

// pressure tracks bytes allocated since the last collection against a
// growth-factor multiple of the live set observed at the end of the
// last sweep, per spec.md section 4.5.
type pressure struct {
	bytesSinceGC  int64
	lastLiveBytes int64
	growthFactor  float64
}

func newPressure(growthFactor float64) *pressure {
	return &pressure{
		lastLiveBytes: page.PageSize, // first collection's baseline
		growthFactor:  growthFactor,
	}
}

// shouldCollect reports whether allocating `upcoming` more bytes would
// cross threshold = max(lastLiveBytes, PAGE) * growthFactor.
func (p *pressure) shouldCollect(upcoming int64) bool {
	baseline := p.lastLiveBytes
	if baseline < page.PageSize {
		baseline = page.PageSize
	}
	threshold := float64(baseline) * p.growthFactor
	return float64(p.bytesSinceGC+upcoming) > threshold
}

func (p *pressure) recordAlloc(n int64) {
	p.bytesSinceGC += n
}

// afterCollect resets the accumulator and records the freshly
// recomputed live-set size, per spec.md section 4.5.
func (p *pressure) afterCollect(liveBytes int64) {
	p.lastLiveBytes = liveBytes
	p.bytesSinceGC = 0
}
