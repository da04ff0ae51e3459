// Package panel provides in-memory scroll panels that satisfy the
// scroll.Panel and scroll.InnerPanel handles.
package panel

import "math"

// Surface is a vertically scrolling panel. All values are in points.
type Surface struct {
	offset   float64
	content  float64
	viewport float64
	frameTop float64
}

func NewOuter(content, viewport float64) *Surface {
	return &Surface{content: content, viewport: viewport}
}

// NewInner returns a nested panel whose top edge sits at frameTop in the
// outer panel's content.
func NewInner(frameTop, content, viewport float64) *Surface {
	return &Surface{content: content, viewport: viewport, frameTop: frameTop}
}

func (s *Surface) OffsetY() float64        { return s.offset }
func (s *Surface) SetOffsetY(y float64)    { s.offset = y }
func (s *Surface) ContentHeight() float64  { return s.content }
func (s *Surface) ViewportHeight() float64 { return s.viewport }
func (s *Surface) FrameTop() float64       { return s.frameTop }

// MaxOffset is the furthest the panel can scroll, zero when the content fits.
func (s *Surface) MaxOffset() float64 {
	return math.Max(0, s.content-s.viewport)
}

// Resize changes the extents and pulls the offset back into range.
func (s *Surface) Resize(content, viewport float64) {
	s.content, s.viewport = content, viewport
	s.offset = math.Min(math.Max(s.offset, 0), s.MaxOffset())
}

// Move relocates the panel's top edge.
func (s *Surface) Move(frameTop float64) { s.frameTop = frameTop }

// Progress is the offset as a fraction of MaxOffset in [0, 1].
func (s *Surface) Progress() float64 {
	m := s.MaxOffset()
	if m == 0 {
		return 0
	}
	return math.Min(math.Max(s.offset/m, 0), 1)
}
