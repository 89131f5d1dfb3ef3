package perspective

import "sync/atomic"

// Holder publishes a Correspondence to concurrent readers. A stored value is
// never modified afterwards; recalibration stores a new one.
type Holder struct {
	p atomic.Pointer[Correspondence]
}

// NewHolder returns a Holder that already publishes c.
func NewHolder(c *Correspondence) *Holder {
	h := &Holder{}
	h.p.Store(c)
	return h
}

// Load returns the current correspondence, or nil when none is set.
func (h *Holder) Load() *Correspondence {
	return h.p.Load()
}

// Store replaces the current correspondence.
func (h *Holder) Store(c *Correspondence) {
	h.p.Store(c)
}

// Swap replaces the current correspondence and returns the previous one.
func (h *Holder) Swap(c *Correspondence) *Correspondence {
	return h.p.Swap(c)
}

// RemapPose remaps pose through the current projected corners. It reports
// false when nothing has been stored yet.
func (h *Holder) RemapPose(pose Pose) (Pose, bool) {
	c := h.p.Load()
	if c == nil {
		return nil, false
	}
	return RemapPose(pose, c.Projected), true
}
