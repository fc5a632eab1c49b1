package chain

import (
	"errors"
	"fmt"
	"image"
	"sync"

	"github.com/soypat/pixfx"
	"github.com/soypat/pixfx/filters"
)

// ErrUnknownFilter is logged when an operation has no implementation. Such
// stages pass their input through unchanged.
var ErrUnknownFilter = errors.New("unknown filter")

// Accelerator is an offloaded whole-image kernel such as [filters.PointFilterGPU].
type Accelerator interface {
	Name() string
	Process(img *image.RGBA) (*image.RGBA, error)
}

type filterKey struct {
	op    Operation
	shape pixfx.Shape
}

// Catalog builds filters for operations and holds registered accelerators.
// Filters run by an [Executor] are cached per operation and shape and are
// never handed out, so their controls cannot change under a running chain.
// Safe for concurrent use.
type Catalog struct {
	mu      sync.Mutex
	filters map[filterKey]pixfx.Filter
	accels  map[Kind]Accelerator
}

// NewCatalog returns a catalog with no accelerators registered.
func NewCatalog() *Catalog {
	return &Catalog{
		filters: make(map[filterKey]pixfx.Filter),
		accels:  make(map[Kind]Accelerator),
	}
}

// RegisterAccelerator binds an accelerated kind to its implementation.
func (c *Catalog) RegisterAccelerator(k Kind, a Accelerator) error {
	if k.Access() != AccessAccelerated {
		return fmt.Errorf("%s is not an accelerated filter kind", k)
	} else if a == nil {
		return errors.New("nil accelerator")
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.accels[k] = a
	return nil
}

// Accelerator returns the accelerator registered for k.
func (c *Catalog) Accelerator(k Kind) (Accelerator, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	a, ok := c.accels[k]
	return a, ok
}

// Filter returns a new CPU filter implementing op for images of the given
// shape. The filter is owned by the caller, changing its controls does not
// affect chain runs. Accelerated and unknown kinds return [ErrUnknownFilter].
func (c *Catalog) Filter(op Operation, shape pixfx.Shape) (pixfx.Filter, error) {
	return newFilter(op, shape)
}

// cached returns the shared filter for op used by chain runs.
func (c *Catalog) cached(op Operation, shape pixfx.Shape) (pixfx.Filter, error) {
	key := filterKey{op: op, shape: shape}
	c.mu.Lock()
	f, ok := c.filters[key]
	c.mu.Unlock()
	if ok {
		return f, nil
	}
	f, err := newFilter(op, shape)
	if err != nil {
		return nil, err
	}
	c.mu.Lock()
	c.filters[key] = f
	c.mu.Unlock()
	return f, nil
}

func newFilter(op Operation, shape pixfx.Shape) (pixfx.Filter, error) {
	if shape.Channels() == 0 {
		return nil, fmt.Errorf("filter %s: unsupported shape %s", op, shape)
	}
	switch op.Kind {
	case KindGrayscale:
		return filters.NewGrayscale(shape), nil
	case KindEdgeThreshold:
		return filters.NewEdgeThreshold(shape, op.Threshold), nil
	case KindContrast:
		return filters.NewContrast(shape, op.Level), nil
	case KindZeroFirstChannel:
		return filters.NewZeroFirstChannel(shape), nil
	case KindGaussianBlur:
		return filters.NewGaussianBlur(shape), nil
	case KindSobelEdge:
		return filters.NewSobelEdge(shape), nil
	case KindTextArt:
		w, h := op.CellWidth, op.CellHeight
		if w == 0 {
			w = filters.DefaultCellWidth
		}
		if h == 0 {
			h = filters.DefaultCellHeight
		}
		return filters.NewTextArt(shape, w, h)
	case KindAccelGrayscale, KindAccelZeroFirstChannel:
		return nil, fmt.Errorf("%w: %s has no CPU filter", ErrUnknownFilter, op.Kind)
	}
	return nil, fmt.Errorf("%w: %s", ErrUnknownFilter, op.Kind)
}
