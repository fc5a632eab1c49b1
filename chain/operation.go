package chain

import (
	"fmt"
	"strings"

	"github.com/soypat/pixfx/filters"
)

// Operation is one filter of a chain together with its parameters.
// Parameters not used by Kind are ignored. Operations are comparable values.
//
// Zero Threshold and Level are valid settings, so defaults (threshold 128,
// contrast level 100) come from the constructors and [Default], not from
// the zero value. Zero cell sizes select the 4x8 default cell.
type Operation struct {
	Kind Kind
	// Level is the contrast level in 0..200, 100 being identity.
	Level int
	// Threshold is the gray level of the edge threshold filter.
	Threshold int
	// CellWidth and CellHeight are the text art glyph cell size in pixels.
	CellWidth, CellHeight int
}

func Grayscale() Operation { return Operation{Kind: KindGrayscale} }

func EdgeThreshold(threshold int) Operation {
	return Operation{Kind: KindEdgeThreshold, Threshold: threshold}
}

func Contrast(level int) Operation { return Operation{Kind: KindContrast, Level: level} }

func ZeroFirstChannel() Operation { return Operation{Kind: KindZeroFirstChannel} }

func GaussianBlur() Operation { return Operation{Kind: KindGaussianBlur} }

func SobelEdge() Operation { return Operation{Kind: KindSobelEdge} }

func TextArt() Operation {
	return Operation{Kind: KindTextArt, CellWidth: filters.DefaultCellWidth, CellHeight: filters.DefaultCellHeight}
}

// Accelerated returns an operation dispatched to the accelerator registered for k.
func Accelerated(k Kind) Operation { return Operation{Kind: k} }

// Default returns the operation of kind k with default parameters.
// The contrast level is set to level.
func Default(k Kind, level int) Operation {
	switch k {
	case KindEdgeThreshold:
		return EdgeThreshold(filters.DefaultEdgeThreshold)
	case KindContrast:
		return Contrast(level)
	case KindTextArt:
		return TextArt()
	}
	return Operation{Kind: k}
}

func (op Operation) String() string {
	switch op.Kind {
	case KindContrast:
		return fmt.Sprintf("%s(%d)", op.Kind, op.Level)
	case KindEdgeThreshold:
		return fmt.Sprintf("%s(%d)", op.Kind, op.Threshold)
	case KindTextArt:
		return fmt.Sprintf("%s(%dx%d)", op.Kind, op.CellWidth, op.CellHeight)
	}
	return op.Kind.String()
}

// Chain is an ordered list of operations. Each stage consumes the complete
// output of the previous one. The empty chain is the identity.
type Chain []Operation

// ParseChain builds a chain of default operations from filter names.
func ParseChain(names []string, contrastLevel int) (Chain, error) {
	ch := make(Chain, 0, len(names))
	for _, name := range names {
		k, err := ParseKind(name)
		if err != nil {
			return nil, err
		}
		ch = append(ch, Default(k, contrastLevel))
	}
	return ch, nil
}

func (c Chain) String() string {
	names := make([]string, len(c))
	for i, op := range c {
		names[i] = op.String()
	}
	return strings.Join(names, " -> ")
}
