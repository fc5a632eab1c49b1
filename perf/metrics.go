package perf

import (
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/soypat/geometry/ms2"
	"github.com/soypat/pixfx/chain"
)

// Metrics records the frame times of one (chain, mode) measurement run.
type Metrics struct {
	ID    uuid.UUID
	Label string
	Mode  chain.Mode
	// FrameTimes holds one wall clock duration per submitted frame, in order.
	FrameTimes []time.Duration
	// Failed counts frames whose chain run returned an error. Their time is still recorded.
	Failed int
}

func newMetrics(label string, mode chain.Mode, capacity int) Metrics {
	return Metrics{
		ID:         uuid.New(),
		Label:      label,
		Mode:       mode,
		FrameTimes: make([]time.Duration, 0, capacity),
	}
}

// FrameCount returns the number of frames measured.
func (m Metrics) FrameCount() int { return len(m.FrameTimes) }

// FrameMillis returns the frame times truncated to whole milliseconds.
func (m Metrics) FrameMillis() []int64 {
	ms := make([]int64, len(m.FrameTimes))
	for i, d := range m.FrameTimes {
		ms[i] = d.Milliseconds()
	}
	return ms
}

// TotalMillis returns the sum of the truncated per-frame milliseconds.
func (m Metrics) TotalMillis() (total int64) {
	for _, d := range m.FrameTimes {
		total += d.Milliseconds()
	}
	return total
}

// Total returns the exact sum of frame times.
func (m Metrics) Total() (total time.Duration) {
	for _, d := range m.FrameTimes {
		total += d
	}
	return total
}

// MeanMillis returns the average frame time in milliseconds, 0 with no frames.
func (m Metrics) MeanMillis() float64 {
	if len(m.FrameTimes) == 0 {
		return 0
	}
	return float64(m.TotalMillis()) / float64(len(m.FrameTimes))
}

// MinMillis returns the fastest frame time, 0 with no frames.
func (m Metrics) MinMillis() int64 {
	if len(m.FrameTimes) == 0 {
		return 0
	}
	return slices.Min(m.FrameMillis())
}

// MaxMillis returns the slowest frame time, 0 with no frames.
func (m Metrics) MaxMillis() int64 {
	if len(m.FrameTimes) == 0 {
		return 0
	}
	return slices.Max(m.FrameMillis())
}

// FPS returns frames*1000/total_ms, or 0 if the total is zero.
func (m Metrics) FPS() float64 {
	total := m.TotalMillis()
	if total == 0 {
		return 0
	}
	return float64(len(m.FrameTimes)) * 1000 / float64(total)
}

// Series returns (frame index, milliseconds) points for charting frame times.
func (m Metrics) Series() []ms2.Vec {
	pts := make([]ms2.Vec, len(m.FrameTimes))
	for i, d := range m.FrameTimes {
		pts[i] = ms2.Vec{X: float32(i), Y: float32(d.Seconds() * 1000)}
	}
	return pts
}

func (m Metrics) String() string {
	if len(m.FrameTimes) == 0 {
		return "No frames processed"
	}
	return fmt.Sprintf("Total Frames: %d\nTotal Time: %d ms\nAverage Frame Time: %.2f ms\nMin Frame Time: %d ms\nMax Frame Time: %d ms\nFPS: %.2f",
		m.FrameCount(), m.TotalMillis(), m.MeanMillis(), m.MinMillis(), m.MaxMillis(), m.FPS())
}

// Speedup returns sequentialMillis/parallelMillis. ok is false when either
// total is zero and the ratio is undefined.
func Speedup(sequentialMillis, parallelMillis int64) (speedup float64, ok bool) {
	if sequentialMillis == 0 || parallelMillis == 0 {
		return 0, false
	}
	return float64(sequentialMillis) / float64(parallelMillis), true
}

// SpeedupOf is [Speedup] over the totals of two measurement runs.
func SpeedupOf(sequential, parallel Metrics) (float64, bool) {
	return Speedup(sequential.TotalMillis(), parallel.TotalMillis())
}

// FormatSpeedup renders a speedup as "4.00x", or "N/A" if undefined.
func FormatSpeedup(speedup float64, ok bool) string {
	if !ok {
		return "N/A"
	}
	return fmt.Sprintf("%.2fx", speedup)
}
