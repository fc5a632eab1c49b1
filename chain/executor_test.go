package chain

import (
	"errors"
	"image"
	"math/rand"
	"testing"

	"github.com/soypat/pixfx"
)

var testShapes = []pixfx.Shape{pixfx.ShapeGray8, pixfx.ShapeRGB888, pixfx.ShapeRGBA8888}

func randomBuffer(t *testing.T, seed int64, w, h int, shape pixfx.Shape) *pixfx.Buffer {
	t.Helper()
	b, err := pixfx.NewBuffer(w, h, shape)
	if err != nil {
		t.Fatal(err)
	}
	rng := rand.New(rand.NewSource(seed))
	rng.Read(b.Buffer())
	return b
}

var determinismChains = map[string]Chain{
	"point":    {Grayscale(), Contrast(160), EdgeThreshold(100)},
	"blur":     {GaussianBlur()},
	"sobel":    {GaussianBlur(), SobelEdge()},
	"mixed":    {Contrast(40), GaussianBlur(), ZeroFirstChannel(), SobelEdge(), EdgeThreshold(128)},
	"textart":  {GaussianBlur(), TextArt(), SobelEdge()},
	"repeated": {GaussianBlur(), GaussianBlur(), GaussianBlur()},
}

func TestParallelMatchesSequential(t *testing.T) {
	sizes := []image.Point{{1, 1}, {7, 3}, {33, 17}, {64, 48}}
	for name, ch := range determinismChains {
		for _, shape := range testShapes {
			for i, sz := range sizes {
				src := randomBuffer(t, int64(i), sz.X, sz.Y, shape)
				orig := src.Clone()
				want, err := NewExecutor(1, nil).Run(src, ch, Sequential)
				if err != nil {
					t.Fatalf("%s %s sequential: %v", name, shape, err)
				}
				for workers := 1; workers <= 9; workers++ {
					got, err := NewExecutor(workers, nil).Run(src, ch, Parallel)
					if err != nil {
						t.Fatalf("%s %s workers=%d: %v", name, shape, workers, err)
					}
					if !got.Equal(want) {
						t.Fatalf("%s %s %v workers=%d: parallel output differs", name, shape, sz, workers)
					}
				}
				if !src.Equal(orig) {
					t.Fatalf("%s %s: source modified", name, shape)
				}
			}
		}
	}
}

func TestBandsVsSingleBand(t *testing.T) {
	src := randomBuffer(t, 8, 8, 8, pixfx.ShapeRGB888)
	ch := Chain{GaussianBlur(), SobelEdge()}
	one, err := NewExecutor(1, nil).Run(src, ch, Parallel)
	if err != nil {
		t.Fatal(err)
	}
	four, err := NewExecutor(4, nil).Run(src, ch, Parallel)
	if err != nil {
		t.Fatal(err)
	}
	if !one.Equal(four) {
		t.Error("4 bands differ from 1 band")
	}
}

func TestEmptyChain(t *testing.T) {
	src := randomBuffer(t, 1, 5, 5, pixfx.ShapeRGB888)
	e := NewExecutor(2, nil)
	for _, mode := range []Mode{Sequential, Parallel} {
		out, err := e.Run(src, nil, mode)
		if err != nil {
			t.Fatal(err)
		}
		if out != src {
			t.Errorf("%s: empty chain should return its input", mode)
		}
		if e.State() != StateDone {
			t.Errorf("state %v, want done", e.State())
		}
	}
}

func TestUnknownKindPassthrough(t *testing.T) {
	src := randomBuffer(t, 2, 9, 6, pixfx.ShapeRGBA8888)
	e := NewExecutor(3, nil)
	for _, mode := range []Mode{Sequential, Parallel} {
		want, err := e.Run(src, Chain{Grayscale()}, mode)
		if err != nil {
			t.Fatal(err)
		}
		got, err := e.Run(src, Chain{{Kind: Kind(99)}, Grayscale(), {Kind: Kind(99)}}, mode)
		if err != nil {
			t.Fatal(err)
		}
		if !got.Equal(want) {
			t.Errorf("%s: unknown kind did not pass through", mode)
		}
	}
}

func TestMissingAcceleratorPassthrough(t *testing.T) {
	src := randomBuffer(t, 3, 9, 6, pixfx.ShapeRGB888)
	e := NewExecutor(3, NewCatalog())
	out, err := e.Run(src, Chain{Accelerated(KindAccelGrayscale)}, Parallel)
	if err != nil {
		t.Fatal(err)
	}
	if !out.Equal(src) {
		t.Error("missing accelerator should pass input through")
	}
}

// invertRGBA is an in-memory accelerator used in place of a GPU.
type invertRGBA struct{ err error }

func (invertRGBA) Name() string { return "invert" }

func (a invertRGBA) Process(img *image.RGBA) (*image.RGBA, error) {
	if a.err != nil {
		return nil, a.err
	}
	out := image.NewRGBA(img.Bounds())
	for i := range img.Pix {
		out.Pix[i] = 255 - img.Pix[i]
		if i%4 == 3 {
			out.Pix[i] = img.Pix[i]
		}
	}
	return out, nil
}

func TestAccelerator(t *testing.T) {
	cat := NewCatalog()
	if err := cat.RegisterAccelerator(KindGrayscale, invertRGBA{}); err == nil {
		t.Error("registered accelerator for CPU kind")
	}
	if err := cat.RegisterAccelerator(KindAccelZeroFirstChannel, invertRGBA{}); err != nil {
		t.Fatal(err)
	}
	if err := cat.RegisterAccelerator(KindAccelGrayscale, invertRGBA{err: errors.New("device lost")}); err != nil {
		t.Fatal(err)
	}
	src := randomBuffer(t, 4, 10, 7, pixfx.ShapeRGB888)
	e := NewExecutor(4, cat)
	for _, mode := range []Mode{Sequential, Parallel} {
		out, err := e.Run(src, Chain{Accelerated(KindAccelZeroFirstChannel)}, mode)
		if err != nil {
			t.Fatal(err)
		}
		for i, v := range out.Buffer() {
			if v != 255-src.Buffer()[i] {
				t.Fatalf("%s: byte %d = %d, want %d", mode, i, v, 255-src.Buffer()[i])
			}
		}
		out, err = e.Run(src, Chain{Accelerated(KindAccelGrayscale)}, mode)
		if err != nil {
			t.Fatal(err)
		}
		if !out.Equal(src) {
			t.Errorf("%s: failing accelerator should pass input through", mode)
		}
	}
}

// faultyFilter fails or panics on every call.
type faultyFilter struct {
	shape pixfx.Shape
	panic bool
}

func (f faultyFilter) ShapeIO() (output, input pixfx.Shape) { return f.shape, f.shape }
func (f faultyFilter) Controls() []pixfx.Control            { return nil }
func (f faultyFilter) Process(dst []byte, src pixfx.Image, roi *image.Rectangle) (pixfx.Dims, error) {
	if f.panic {
		panic("faulty filter")
	}
	return pixfx.Dims{}, errors.New("faulty filter")
}

func TestFilterErrorPassthrough(t *testing.T) {
	cat := NewCatalog()
	cat.filters[filterKey{op: GaussianBlur(), shape: pixfx.ShapeRGB888}] = faultyFilter{shape: pixfx.ShapeRGB888}
	src := randomBuffer(t, 5, 12, 12, pixfx.ShapeRGB888)
	e := NewExecutor(3, cat)
	for _, mode := range []Mode{Sequential, Parallel} {
		out, err := e.Run(src, Chain{GaussianBlur()}, mode)
		if err != nil {
			t.Fatal(err)
		}
		if !out.Equal(src) {
			t.Errorf("%s: failing filter should pass input through", mode)
		}
		if e.State() != StateDone {
			t.Errorf("%s: state %v, want done", mode, e.State())
		}
	}
}

func TestWorkerInterrupted(t *testing.T) {
	cat := NewCatalog()
	cat.filters[filterKey{op: SobelEdge(), shape: pixfx.ShapeGray8}] = faultyFilter{shape: pixfx.ShapeGray8, panic: true}
	src := randomBuffer(t, 6, 12, 12, pixfx.ShapeGray8)
	e := NewExecutor(3, cat)
	out, err := e.Run(src, Chain{Grayscale(), SobelEdge()}, Parallel)
	if !errors.Is(err, ErrWorkerInterrupted) {
		t.Fatalf("got %v, want ErrWorkerInterrupted", err)
	}
	if out != nil {
		t.Error("interrupted run returned partial output")
	}
	if e.State() != StateFailed {
		t.Errorf("state %v, want failed", e.State())
	}
}

func TestForkJoinErrors(t *testing.T) {
	in := randomBuffer(t, 7, 4, 4, pixfx.ShapeGray8)
	out, _ := pixfx.NewBuffer(4, 4, pixfx.ShapeGray8)
	bands := Bands(4, 2)
	err := forkJoin(bandTasks(bands, faultyFilter{shape: pixfx.ShapeGray8}, in, out))
	if err == nil || errors.Is(err, ErrWorkerInterrupted) {
		t.Errorf("filter error: got %v", err)
	}
	tasks := bandTasks(bands, faultyFilter{shape: pixfx.ShapeGray8}, in, out)
	tasks[1].filter = faultyFilter{shape: pixfx.ShapeGray8, panic: true}
	if err := forkJoin(tasks); !errors.Is(err, ErrWorkerInterrupted) {
		t.Errorf("panic: got %v, want ErrWorkerInterrupted", err)
	}
	if err := forkJoin(nil); err != nil {
		t.Errorf("no tasks: %v", err)
	}
}

func TestRunTo(t *testing.T) {
	src := randomBuffer(t, 9, 6, 4, pixfx.ShapeRGB888)
	out, err := NewExecutor(2, nil).RunTo(src, Chain{Grayscale()}, Parallel, pixfx.ShapeGray8)
	if err != nil {
		t.Fatal(err)
	}
	if out.Shape() != pixfx.ShapeGray8 || out.Width() != 6 || out.Height() != 4 {
		t.Errorf("got %s %dx%d", out.Shape(), out.Width(), out.Height())
	}
	if _, err := NewExecutor(1, nil).Run(nil, Chain{Grayscale()}, Sequential); err == nil {
		t.Error("nil source accepted")
	}
}

func TestZeroValueOperations(t *testing.T) {
	src := randomBuffer(t, 10, 20, 17, pixfx.ShapeRGB888)
	e := NewExecutor(3, nil)
	tests := []struct {
		name    string
		literal Operation
		want    Operation
	}{
		{"text art", Operation{Kind: KindTextArt}, TextArt()},
		{"text art width only", Operation{Kind: KindTextArt, CellWidth: 4}, TextArt()},
		{"threshold zero", Operation{Kind: KindEdgeThreshold}, EdgeThreshold(0)},
		{"contrast zero", Operation{Kind: KindContrast}, Contrast(0)},
	}
	for _, tt := range tests {
		for _, mode := range []Mode{Sequential, Parallel} {
			got, err := e.Run(src, Chain{tt.literal}, mode)
			if err != nil {
				t.Fatal(err)
			}
			want, err := e.Run(src, Chain{tt.want}, mode)
			if err != nil {
				t.Fatal(err)
			}
			if !got.Equal(want) {
				t.Errorf("%s %s: literal differs from constructor", tt.name, mode)
			}
			if got.Equal(src) {
				t.Errorf("%s %s: stage passed through", tt.name, mode)
			}
		}
	}
	if Default(KindEdgeThreshold, 100) != EdgeThreshold(128) || Default(KindContrast, 100) != Contrast(100) {
		t.Error("Default does not carry threshold 128 and level 100")
	}
}

func TestCatalogFilterNotShared(t *testing.T) {
	cat := NewCatalog()
	src := randomBuffer(t, 11, 9, 9, pixfx.ShapeRGB888)
	e := NewExecutor(2, cat)
	if _, err := e.Run(src, Chain{Contrast(100)}, Sequential); err != nil {
		t.Fatal(err)
	}
	f, err := cat.Filter(Contrast(100), pixfx.ShapeRGB888)
	if err != nil {
		t.Fatal(err)
	}
	ctrl := pixfx.FindControl(f, "Level")
	if ctrl == nil {
		t.Fatal("contrast filter has no Level control")
	}
	if err := ctrl.ChangeValue(200); err != nil {
		t.Fatal(err)
	}
	for _, mode := range []Mode{Sequential, Parallel} {
		out, err := e.Run(src, Chain{Contrast(100)}, mode)
		if err != nil {
			t.Fatal(err)
		}
		if !out.Equal(src) {
			t.Errorf("%s: Contrast(100) is no longer the identity after changing a caller's control", mode)
		}
	}
}

func TestSequentialPanicInterrupted(t *testing.T) {
	for _, op := range []Operation{SobelEdge(), TextArt()} {
		cat := NewCatalog()
		cat.filters[filterKey{op: op, shape: pixfx.ShapeGray8}] = faultyFilter{shape: pixfx.ShapeGray8, panic: true}
		src := randomBuffer(t, 12, 12, 12, pixfx.ShapeGray8)
		e := NewExecutor(3, cat)
		for _, mode := range []Mode{Sequential, Parallel} {
			out, err := e.Run(src, Chain{op}, mode)
			if !errors.Is(err, ErrWorkerInterrupted) {
				t.Fatalf("%s %s: got %v, want ErrWorkerInterrupted", op, mode, err)
			}
			if out != nil {
				t.Errorf("%s %s: interrupted run returned output", op, mode)
			}
		}
	}
}

func TestStateTracksLastRun(t *testing.T) {
	cat := NewCatalog()
	cat.filters[filterKey{op: SobelEdge(), shape: pixfx.ShapeGray8}] = faultyFilter{shape: pixfx.ShapeGray8, panic: true}
	src := randomBuffer(t, 13, 8, 8, pixfx.ShapeGray8)
	e := NewExecutor(2, cat)
	if e.State() != StateIdle {
		t.Fatalf("new executor state %v, want idle", e.State())
	}
	e.Run(src, Chain{SobelEdge()}, Sequential)
	if e.State() != StateFailed {
		t.Errorf("state %v, want failed", e.State())
	}
	if _, err := e.Run(src, Chain{Grayscale()}, Sequential); err != nil {
		t.Fatal(err)
	}
	if e.State() != StateDone {
		t.Errorf("state %v, want done after a later successful run", e.State())
	}
}

// zeroRed is an in-memory stand-in for the zero first channel GPU kernel.
type zeroRed struct{}

func (zeroRed) Name() string { return "zero-red" }

func (zeroRed) Process(img *image.RGBA) (*image.RGBA, error) {
	out := image.NewRGBA(img.Bounds())
	copy(out.Pix, img.Pix)
	for i := 0; i < len(out.Pix); i += 4 {
		out.Pix[i] = 0
	}
	return out, nil
}

func TestAcceleratedZeroFirstChannelGray(t *testing.T) {
	cat := NewCatalog()
	if err := cat.RegisterAccelerator(KindAccelZeroFirstChannel, zeroRed{}); err != nil {
		t.Fatal(err)
	}
	src := randomBuffer(t, 14, 5, 4, pixfx.ShapeGray8)
	out, err := NewExecutor(2, cat).Run(src, Chain{Accelerated(KindAccelZeroFirstChannel)}, Parallel)
	if err != nil {
		t.Fatal(err)
	}
	for i, v := range src.Buffer() {
		if want := uint8(2 * uint32(v) / 3); out.Buffer()[i] != want {
			t.Fatalf("byte %d = %d, want (0+v+v)/3 = %d", i, out.Buffer()[i], want)
		}
	}
}
