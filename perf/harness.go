package perf

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/soypat/pixfx"
	"github.com/soypat/pixfx/chain"
)

// Harness times chain executions over a fixed set of recorded frames.
type Harness struct {
	Executor *chain.Executor
	// Now returns the current time. Nil uses time.Now.
	Now func() time.Time
}

// NewHarness returns a harness timing runs of exec.
func NewHarness(exec *chain.Executor) *Harness {
	return &Harness{Executor: exec}
}

func (h *Harness) now() time.Time {
	if h.Now != nil {
		return h.Now()
	}
	return time.Now()
}

// Measure runs ch once per frame in the given mode and records each frame's
// wall clock time. An empty frame set yields empty metrics, not an error.
//
// Frames whose run fails are counted in Metrics.Failed and their time is
// still recorded. ctx is checked between frames; a chain run is never interrupted.
func (h *Harness) Measure(ctx context.Context, frames []*pixfx.Buffer, ch chain.Chain, mode chain.Mode) (Metrics, error) {
	m := newMetrics(ch.String(), mode, len(frames))
	log := pixfx.Logger().WithFields(logrus.Fields{
		"run":    m.ID.String(),
		"chain":  m.Label,
		"mode":   mode.String(),
		"frames": len(frames),
	})
	if len(frames) == 0 {
		log.Info("no frames to measure")
		return m, nil
	}
	log.Debug("measurement started")
	for i, frame := range frames {
		if err := ctx.Err(); err != nil {
			return m, err
		}
		start := h.now()
		_, err := h.Executor.Run(frame, ch, mode)
		m.FrameTimes = append(m.FrameTimes, h.now().Sub(start))
		if err != nil {
			m.Failed++
			log.WithError(err).WithField("frame", i).Warn("frame dropped")
		}
	}
	log.WithFields(logrus.Fields{
		"total_ms": m.TotalMillis(),
		"fps":      m.FPS(),
		"failed":   m.Failed,
	}).Info("measurement finished")
	return m, nil
}

// Result pairs sequential and parallel measurements of the same chain.
type Result struct {
	Chain      chain.Chain
	Sequential Metrics
	Parallel   Metrics
}

// Speedup returns the sequential over parallel total time ratio.
func (r Result) Speedup() (float64, bool) {
	return SpeedupOf(r.Sequential, r.Parallel)
}

// Comparison is a full sequential versus parallel analysis of a chain.
type Comparison struct {
	ID            uuid.UUID
	Width, Height int
	Frames        int
	Workers       int
	// PerFilter holds each chain operation measured in isolation.
	PerFilter []Result
	// Overall measures the complete chain.
	Overall Result
}

// Compare measures each operation of ch in isolation and the whole chain,
// both sequentially and in parallel.
func (h *Harness) Compare(ctx context.Context, frames []*pixfx.Buffer, ch chain.Chain) (*Comparison, error) {
	cmp := &Comparison{
		ID:      uuid.New(),
		Frames:  len(frames),
		Workers: h.Executor.WorkerCount(),
	}
	if len(frames) > 0 {
		cmp.Width, cmp.Height = frames[0].Width(), frames[0].Height()
	}
	pixfx.Logger().WithFields(logrus.Fields{
		"comparison": cmp.ID.String(),
		"chain":      ch.String(),
		"workers":    cmp.Workers,
	}).Info("comparison started")
	for _, op := range ch {
		res, err := h.compareChain(ctx, frames, chain.Chain{op})
		if err != nil {
			return nil, err
		}
		cmp.PerFilter = append(cmp.PerFilter, res)
	}
	overall, err := h.compareChain(ctx, frames, ch)
	if err != nil {
		return nil, err
	}
	cmp.Overall = overall
	return cmp, nil
}

func (h *Harness) compareChain(ctx context.Context, frames []*pixfx.Buffer, ch chain.Chain) (res Result, err error) {
	res.Chain = ch
	res.Sequential, err = h.Measure(ctx, frames, ch, chain.Sequential)
	if err != nil {
		return res, err
	}
	res.Parallel, err = h.Measure(ctx, frames, ch, chain.Parallel)
	return res, err
}
