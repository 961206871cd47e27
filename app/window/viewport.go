package window

import "math"

// Viewport tracks the scroll position of one scrolling container.
type Viewport struct {
	rowHeight float64
	height    float64
	overscan  int
	scrollTop float64
}

// NewViewport validates the geometry and returns a viewport scrolled to the top
func NewViewport(height, rowHeight float64, overscan int) (*Viewport, error) {
	if err := checkGeometry(height, rowHeight, overscan); err != nil {
		return nil, err
	}
	return &Viewport{rowHeight: rowHeight, height: height, overscan: overscan}, nil
}

// ScrollTop returns the current scroll offset
func (v *Viewport) ScrollTop() float64 { return v.scrollTop }

// Height returns the viewport height
func (v *Viewport) Height() float64 { return v.height }

// RowHeight returns the height of one row
func (v *Viewport) RowHeight() float64 { return v.rowHeight }

// Overscan returns the number of extra rows rendered at each edge
func (v *Viewport) Overscan() int { return v.overscan }

// SetHeight changes the viewport height, e.g. after a terminal resize.
func (v *Viewport) SetHeight(height float64) error {
	if err := checkGeometry(height, v.rowHeight, v.overscan); err != nil {
		return err
	}
	v.height = height
	return nil
}

// ScrollTo sets the scroll offset, clamped to the content.
func (v *Viewport) ScrollTo(scrollTop float64, totalRows int) {
	v.scrollTop = ClampScrollTop(scrollTop, totalRows, v.height, v.rowHeight)
}

// ScrollBy moves the scroll offset by a number of rows.
func (v *Viewport) ScrollBy(rows, totalRows int) {
	v.ScrollTo(v.scrollTop+float64(rows)*v.rowHeight, totalRows)
}

// ScrollToRow scrolls the minimum distance needed to show row entirely.
func (v *Viewport) ScrollToRow(row, totalRows int) {
	if totalRows <= 0 {
		v.scrollTop = 0
		return
	}
	row = max(0, min(row, totalRows-1))

	top := float64(row) * v.rowHeight
	bottom := top + v.rowHeight
	switch {
	case top < v.scrollTop:
		v.ScrollTo(top, totalRows)
	case bottom > v.scrollTop+v.height:
		v.ScrollTo(bottom-v.height, totalRows)
	}
}

// Reset scrolls back to the top
func (v *Viewport) Reset() {
	v.scrollTop = 0
}

// FirstVisibleRow returns the index of the row at the top edge
func (v *Viewport) FirstVisibleRow() int {
	return int(math.Min(math.Floor(v.scrollTop/v.rowHeight), math.MaxInt32))
}

// Range computes the visible range for a result of totalRows rows.
func (v *Viewport) Range(totalRows int) (Range, error) {
	return ComputeVisibleRange(v.scrollTop, v.height, v.rowHeight, totalRows, v.overscan)
}
