// Package window computes which rows of a result set are visible in a
// scrolling viewport, so only that slice needs rendering.
package window

import (
	"fmt"
	"math"
)

// DefaultOverscan is the number of rows rendered beyond each edge of the
// viewport when the caller does not choose one.
const DefaultOverscan = 3

// Range is the rendered slice [StartIndex, EndIndex) plus the space reserved
// above and below it so the scrollbar keeps the size of the full result.
type Range struct {
	StartIndex    int
	EndIndex      int
	PaddingTop    float64
	PaddingBottom float64
}

// Len returns the number of rows in the range
func (r Range) Len() int {
	return r.EndIndex - r.StartIndex
}

// ConfigurationError reports window geometry that cannot produce a range.
type ConfigurationError struct {
	Param string
	Value float64
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("window configuration: invalid %s %v", e.Param, e.Value)
}

func checkGeometry(viewportHeight, rowHeight float64, overscan int) error {
	if math.IsNaN(rowHeight) || math.IsInf(rowHeight, 0) || rowHeight <= 0 {
		return &ConfigurationError{Param: "rowHeight", Value: rowHeight}
	}
	if math.IsNaN(viewportHeight) || math.IsInf(viewportHeight, 0) || viewportHeight < 0 {
		return &ConfigurationError{Param: "viewportHeight", Value: viewportHeight}
	}
	if overscan < 0 {
		return &ConfigurationError{Param: "overscan", Value: float64(overscan)}
	}
	return nil
}

// ComputeVisibleRange returns the rows to render for a viewport scrolled to
// scrollTop:
//
//	start = max(0, floor(scrollTop/rowHeight) - overscan)
//	end   = min(totalRows, start + ceil(viewportHeight/rowHeight) + 2*overscan)
//
// Negative scroll offsets count as 0 and start never passes totalRows, so a
// stale offset after the result shrank still yields a valid, possibly empty,
// range at the end.
func ComputeVisibleRange(scrollTop, viewportHeight, rowHeight float64, totalRows, overscan int) (Range, error) {
	if err := checkGeometry(viewportHeight, rowHeight, overscan); err != nil {
		return Range{}, err
	}
	if math.IsNaN(scrollTop) || math.IsInf(scrollTop, 0) {
		return Range{}, &ConfigurationError{Param: "scrollTop", Value: scrollTop}
	}
	if totalRows <= 0 {
		return Range{}, nil
	}
	if scrollTop < 0 {
		scrollTop = 0
	}

	// Clamp in float64 before converting: a tiny row height or a huge
	// viewport must not overflow int.
	total := float64(totalRows)
	first := math.Floor(scrollTop / rowHeight)
	startF := math.Min(math.Max(0, first-float64(overscan)), total)
	visible := math.Ceil(viewportHeight/rowHeight) + 2*float64(overscan)
	endF := math.Min(total, startF+visible)

	start, end := int(startF), int(endF)

	return Range{
		StartIndex:    start,
		EndIndex:      end,
		PaddingTop:    float64(start) * rowHeight,
		PaddingBottom: float64(totalRows-end) * rowHeight,
	}, nil
}

// MaxScrollTop is the largest useful scroll offset: the last row's bottom
// edge aligned with the viewport's bottom edge.
func MaxScrollTop(totalRows int, viewportHeight, rowHeight float64) float64 {
	return math.Max(0, float64(totalRows)*rowHeight-viewportHeight)
}

// ClampScrollTop moves scrollTop into [0, MaxScrollTop].
func ClampScrollTop(scrollTop float64, totalRows int, viewportHeight, rowHeight float64) float64 {
	if math.IsNaN(scrollTop) || scrollTop < 0 {
		return 0
	}
	return math.Min(scrollTop, MaxScrollTop(totalRows, viewportHeight, rowHeight))
}
