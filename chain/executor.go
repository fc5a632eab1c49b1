package chain

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/soypat/pixfx"
)

// Mode selects how an [Executor] runs a chain.
type Mode int

const (
	Sequential Mode = iota
	Parallel
)

func (m Mode) String() string {
	switch m {
	case Sequential:
		return "sequential"
	case Parallel:
		return "parallel"
	}
	return fmt.Sprintf("Mode(%d)", int(m))
}

// RunState is the lifecycle of a chain run.
type RunState int32

const (
	StateIdle RunState = iota
	StateRunning
	StateDone
	StateFailed
)

func (s RunState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRunning:
		return "running"
	case StateDone:
		return "done"
	case StateFailed:
		return "failed"
	}
	return "unknown"
}

// Executor applies filter chains to images, either on the calling goroutine
// or split in row bands across workers.
//
// In parallel mode every pointwise and neighborhood stage is forked into
// one goroutine per band and joined before the next stage starts. All
// workers read the same complete stage input, so results are byte identical
// to sequential mode for any chain and worker count. Whole-image and
// accelerated stages run as a single call between barriers.
type Executor struct {
	// Workers is the number of parallel bands. Zero or negative uses [DefaultWorkers].
	Workers int
	// Catalog builds stage filters. A nil Catalog uses a private one without accelerators.
	Catalog *Catalog

	state      atomic.Int32
	catOnce    sync.Once
	defaultCat *Catalog
}

// NewExecutor returns an executor using workers bands and cat.
func NewExecutor(workers int, cat *Catalog) *Executor {
	return &Executor{Workers: workers, Catalog: cat}
}

func (e *Executor) catalog() *Catalog {
	if e.Catalog != nil {
		return e.Catalog
	}
	e.catOnce.Do(func() { e.defaultCat = NewCatalog() })
	return e.defaultCat
}

// WorkerCount returns the number of bands used in parallel mode.
func (e *Executor) WorkerCount() int {
	if e.Workers > 0 {
		return e.Workers
	}
	return max(DefaultWorkers(), 1)
}

// State returns the state of the most recently started run. Concurrent
// calls to Run on one executor overwrite each other's state; callers that
// share an executor should rely on the error returned by Run instead.
func (e *Executor) State() RunState { return RunState(e.state.Load()) }

func (e *Executor) setState(s RunState) { e.state.Store(int32(s)) }

// Run applies ch to src. The returned buffer has the dimensions and shape
// of src. An empty chain returns src itself. src is never modified.
//
// Unknown or failing filters pass their input through and are logged once
// per run. A filter panic in either mode fails the run with [ErrWorkerInterrupted].
func (e *Executor) Run(src *pixfx.Buffer, ch Chain, mode Mode) (*pixfx.Buffer, error) {
	if src == nil {
		return nil, errors.New("nil source buffer")
	}
	e.setState(StateRunning)
	if len(ch) == 0 {
		e.setState(StateDone)
		return src, nil
	}
	r := run{
		exec: e,
		mode: mode,
		log: pixfx.Logger().WithFields(logrus.Fields{
			"mode":  mode.String(),
			"width": src.Width(), "height": src.Height(),
		}),
	}
	out, err := r.execute(src, ch)
	if err != nil {
		e.setState(StateFailed)
		return nil, err
	}
	e.setState(StateDone)
	return out, nil
}

// RunTo is [Executor.Run] followed by a conversion to the given shape.
func (e *Executor) RunTo(src *pixfx.Buffer, ch Chain, mode Mode, shape pixfx.Shape) (*pixfx.Buffer, error) {
	out, err := e.Run(src, ch, mode)
	if err != nil {
		return nil, err
	}
	return out.Convert(shape)
}

// run holds the state of a single chain run.
type run struct {
	exec   *Executor
	mode   Mode
	log    *logrus.Entry
	bands  []Band
	warned map[Kind]bool
}

func (r *run) execute(src *pixfx.Buffer, ch Chain) (*pixfx.Buffer, error) {
	if r.mode == Parallel {
		r.bands = Bands(src.Height(), r.exec.WorkerCount())
	}
	debug := r.log.Logger.IsLevelEnabled(logrus.DebugLevel)
	cur := src
	for i, op := range ch {
		start := time.Now()
		next, err := r.stage(op, cur)
		if err != nil {
			return nil, fmt.Errorf("stage %d %s: %w", i, op, err)
		}
		if debug {
			r.log.WithFields(logrus.Fields{
				"stage":   i,
				"filter":  op.String(),
				"bands":   len(r.bands),
				"elapsed": time.Since(start),
			}).Debug("stage complete")
		}
		cur = next
	}
	return cur, nil
}

// stage computes one filter over the complete input and returns a new buffer.
// Passthrough stages return in.
func (r *run) stage(op Operation, in *pixfx.Buffer) (*pixfx.Buffer, error) {
	access := op.Kind.Access()
	switch access {
	case AccessInvalid:
		r.passthrough(op, fmt.Errorf("%w: %s", ErrUnknownFilter, op.Kind))
		return in, nil
	case AccessAccelerated:
		return r.accelerated(op, in), nil
	}
	f, err := r.exec.catalog().cached(op, in.Shape())
	if err != nil {
		r.passthrough(op, err)
		return in, nil
	}
	out, err := pixfx.NewBuffer(in.Width(), in.Height(), in.Shape())
	if err != nil {
		return nil, err
	}
	if r.mode == Parallel && access.Bandable() {
		err = forkJoin(bandTasks(r.bands, f, in, out))
	} else {
		err = bandTask{band: Band{0, in.Height()}, in: in, out: out, filter: f}.runWhole()
	}
	if errors.Is(err, ErrWorkerInterrupted) {
		return nil, err
	} else if err != nil {
		r.passthrough(op, err)
		return in, nil
	}
	return out, nil
}

func (r *run) accelerated(op Operation, in *pixfx.Buffer) *pixfx.Buffer {
	a, ok := r.exec.catalog().Accelerator(op.Kind)
	if !ok {
		r.passthrough(op, fmt.Errorf("%w: no accelerator registered for %s", ErrUnknownFilter, op.Kind))
		return in
	}
	res, err := a.Process(in.ToRGBA())
	if err != nil {
		r.passthrough(op, fmt.Errorf("accelerator %s: %w", a.Name(), err))
		return in
	}
	if !res.Bounds().Size().Eq(in.Bounds().Size()) {
		r.passthrough(op, fmt.Errorf("accelerator %s returned %v for %v input", a.Name(), res.Bounds(), in.Bounds()))
		return in
	}
	out, err := pixfx.FromRGBA(res, in.Shape())
	if err != nil {
		r.passthrough(op, err)
		return in
	}
	return out
}

func (r *run) passthrough(op Operation, err error) {
	if r.warned[op.Kind] {
		return
	}
	if r.warned == nil {
		r.warned = make(map[Kind]bool)
	}
	r.warned[op.Kind] = true
	r.log.WithError(err).WithField("filter", op.String()).Warn("filter passed through unchanged")
}
