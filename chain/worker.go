package chain

import (
	"errors"
	"fmt"
	"image"
	"sync"

	"github.com/soypat/pixfx"
)

// ErrWorkerInterrupted is returned when a band worker does not run to
// completion. The whole chain run fails since its output is partial.
var ErrWorkerInterrupted = errors.New("worker interrupted")

// bandTask is the work of one worker for one stage: write the band rows of
// out using the complete stage input in.
type bandTask struct {
	band   Band
	in     *pixfx.Buffer
	out    *pixfx.Buffer
	filter pixfx.Filter
}

func (t bandTask) run() (err error) {
	defer t.recoverInterrupt(&err)
	roi := image.Rect(0, t.band.Start, t.in.Width(), t.band.End)
	_, err = t.filter.Process(t.out.Rows(t.band.Start, t.band.End), t.in, &roi)
	return err
}

// runWhole processes the complete image without a ROI, for unbanded stages.
func (t bandTask) runWhole() (err error) {
	defer t.recoverInterrupt(&err)
	_, err = t.filter.Process(t.out.Buffer(), t.in, nil)
	return err
}

func (t bandTask) recoverInterrupt(err *error) {
	if r := recover(); r != nil {
		*err = fmt.Errorf("%w: band [%d,%d): %v", ErrWorkerInterrupted, t.band.Start, t.band.End, r)
	}
}

// forkJoin starts one goroutine per task and returns once all of them have
// returned. Interruptions take precedence over filter errors.
func forkJoin(tasks []bandTask) error {
	var wg sync.WaitGroup
	errs := make([]error, len(tasks))
	for i, t := range tasks {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs[i] = t.run()
		}()
	}
	wg.Wait()
	for _, err := range errs {
		if errors.Is(err, ErrWorkerInterrupted) {
			return err
		}
	}
	return errors.Join(errs...)
}

func bandTasks(bands []Band, f pixfx.Filter, in, out *pixfx.Buffer) []bandTask {
	tasks := make([]bandTask, len(bands))
	for i, b := range bands {
		tasks[i] = bandTask{band: b, in: in, out: out, filter: f}
	}
	return tasks
}
