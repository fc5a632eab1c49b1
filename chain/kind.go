package chain

import (
	"fmt"
	"strings"
)

// Kind identifies a filter operation. The set is closed: every Kind is
// classified by [Kind.Access] and built by [Catalog].
type Kind int

const (
	kindUndefined Kind = iota
	KindGrayscale
	KindEdgeThreshold
	KindContrast
	KindZeroFirstChannel
	KindGaussianBlur
	KindSobelEdge
	KindTextArt
	KindAccelGrayscale
	KindAccelZeroFirstChannel
	kindEnd
)

// Kinds returns all valid kinds in declaration order.
func Kinds() []Kind {
	kinds := make([]Kind, 0, kindEnd-1)
	for k := kindUndefined + 1; k < kindEnd; k++ {
		kinds = append(kinds, k)
	}
	return kinds
}

func (k Kind) String() string {
	switch k {
	case KindGrayscale:
		return "Grayscale"
	case KindEdgeThreshold:
		return "Edge Detection"
	case KindContrast:
		return "Contrast"
	case KindZeroFirstChannel:
		return "Zero First Channel"
	case KindGaussianBlur:
		return "Gaussian Blur"
	case KindSobelEdge:
		return "Sobel Edge Detection"
	case KindTextArt:
		return "ASCII Art"
	case KindAccelGrayscale:
		return "Grayscale (GPU)"
	case KindAccelZeroFirstChannel:
		return "Zero First Channel (GPU)"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Slug is the kebab-case name used in configuration files.
func (k Kind) Slug() string {
	switch k {
	case KindGrayscale:
		return "grayscale"
	case KindEdgeThreshold:
		return "edge-threshold"
	case KindContrast:
		return "contrast"
	case KindZeroFirstChannel:
		return "zero-first-channel"
	case KindGaussianBlur:
		return "gaussian-blur"
	case KindSobelEdge:
		return "sobel-edge"
	case KindTextArt:
		return "text-art"
	case KindAccelGrayscale:
		return "gpu-grayscale"
	case KindAccelZeroFirstChannel:
		return "gpu-zero-first-channel"
	}
	return ""
}

// ParseKind accepts a display name (as returned by String) or a slug, case insensitively.
func ParseKind(name string) (Kind, error) {
	name = strings.TrimSpace(name)
	for _, k := range Kinds() {
		if strings.EqualFold(name, k.String()) || strings.EqualFold(name, k.Slug()) {
			return k, nil
		}
	}
	return kindUndefined, fmt.Errorf("%w: %q", ErrUnknownFilter, name)
}

// Access is the pixel access pattern of a filter. It decides whether a
// stage may be split into row bands.
type Access int

const (
	AccessInvalid Access = iota
	// AccessPointwise filters read only the pixel being written.
	AccessPointwise
	// AccessNeighborhood filters read a fixed radius around the pixel, clamped to the image.
	AccessNeighborhood
	// AccessWholeImage filters need the entire image and are never banded.
	AccessWholeImage
	// AccessAccelerated filters are offloaded as a single call and are never banded.
	AccessAccelerated
)

func (a Access) String() string {
	switch a {
	case AccessPointwise:
		return "pointwise"
	case AccessNeighborhood:
		return "neighborhood"
	case AccessWholeImage:
		return "whole-image"
	case AccessAccelerated:
		return "accelerated"
	}
	return "invalid"
}

// Bandable reports whether stages with this access pattern may be split in row bands.
func (a Access) Bandable() bool {
	return a == AccessPointwise || a == AccessNeighborhood
}

// Access returns the access pattern of k, or AccessInvalid for kinds outside the enumeration.
func (k Kind) Access() Access {
	switch k {
	case KindGrayscale, KindEdgeThreshold, KindContrast, KindZeroFirstChannel:
		return AccessPointwise
	case KindGaussianBlur, KindSobelEdge:
		return AccessNeighborhood
	case KindTextArt:
		return AccessWholeImage
	case KindAccelGrayscale, KindAccelZeroFirstChannel:
		return AccessAccelerated
	}
	return AccessInvalid
}
