package filters

import (
	"errors"
	"image"

	"github.com/soypat/pixfx"
	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// GlyphGradient orders glyphs from darkest to brightest.
const GlyphGradient = " .'`^\",:;Il!i><~+_-?][}{1)(|\\/tfjrxnuvczXYUJCLQ0OZmwqpdbkhao*#MW&8%B@$"

const (
	DefaultCellWidth  = 4
	DefaultCellHeight = 8
)

// TextArt renders an image as glyphs: each cell of CellWidth x CellHeight
// pixels is replaced by the gradient glyph matching its mean brightness,
// drawn white on black.
//
// The cell grid depends on the whole image so TextArt rejects a ROI.
type TextArt struct {
	shape                 pixfx.Shape
	cellWidth, cellHeight int
	// masks[i] is the cell-sized coverage of GlyphGradient[i].
	masks [][]uint8
}

var _ pixfx.Filter = (*TextArt)(nil)

// NewTextArt rasterizes the glyph gradient for the given cell size.
func NewTextArt(shape pixfx.Shape, cellWidth, cellHeight int) (*TextArt, error) {
	if cellWidth <= 0 || cellHeight <= 0 {
		return nil, errors.New("text art cell size must be positive")
	}
	masks, err := rasterizeGlyphs(GlyphGradient, cellWidth, cellHeight)
	if err != nil {
		return nil, err
	}
	return &TextArt{
		shape:      shape,
		cellWidth:  cellWidth,
		cellHeight: cellHeight,
		masks:      masks,
	}, nil
}

func rasterizeGlyphs(gradient string, cellWidth, cellHeight int) ([][]uint8, error) {
	face := basicfont.Face7x13
	ascent := face.Metrics().Ascent.Ceil()
	glyphRect := image.Rect(0, 0, face.Advance, face.Height)
	cellRect := image.Rect(0, 0, cellWidth, cellHeight)
	masks := make([][]uint8, 0, len(gradient))
	for _, r := range gradient {
		glyph := image.NewAlpha(glyphRect)
		d := &font.Drawer{
			Dst:  glyph,
			Src:  image.Opaque,
			Face: face,
			Dot:  fixed.P(0, ascent),
		}
		d.DrawString(string(r))
		cell := image.NewAlpha(cellRect)
		xdraw.NearestNeighbor.Scale(cell, cellRect, glyph, glyphRect, xdraw.Src, nil)
		masks = append(masks, cell.Pix)
	}
	if len(masks) < 2 {
		return nil, errors.New("glyph gradient needs at least two glyphs")
	}
	return masks, nil
}

// ShapeIO implements [pixfx.Filter].
func (t *TextArt) ShapeIO() (output, input pixfx.Shape) { return t.shape, t.shape }

// Controls implements [pixfx.Filter].
func (t *TextArt) Controls() []pixfx.Control { return nil }

// CellSize returns the glyph cell dimensions in pixels.
func (t *TextArt) CellSize() (width, height int) { return t.cellWidth, t.cellHeight }

// GlyphIndex maps a mean brightness in 0..255 to an index into [GlyphGradient].
func GlyphIndex(avg, numGlyphs int) int {
	return int(float64(avg) / 255 * float64(numGlyphs-1))
}

// Process implements [pixfx.Filter]. roi must be nil.
func (t *TextArt) Process(dst []byte, src pixfx.Image, roi *image.Rectangle) (pixfx.Dims, error) {
	if roi != nil {
		return pixfx.Dims{}, errWholeImageOnly
	}
	srcDims := src.Dims()
	if srcDims.Shape != t.shape {
		return pixfx.Dims{}, errShapeMismatch
	}
	dstDims, _, _, _, _ := outputRegion(srcDims, t.shape, nil)
	dst, _, err := pixfx.ValidateProcessArgs(dst, dstDims, src, nil)
	if err != nil {
		return pixfx.Dims{}, err
	}
	in, err := wholeBuffer(src)
	if err != nil {
		return pixfx.Dims{}, err
	}
	if &in.Buffer()[0] == &dst[0] {
		// In-place: cells are read before written but the background fill must not clobber them.
		in = in.Clone()
	}
	c := t.shape.Channels()
	w, h := srcDims.Width, srcDims.Height
	fillBackground(dst[:dstDims.Stride*h], c)
	cols, rows := w/t.cellWidth, h/t.cellHeight
	for cy := 0; cy < rows; cy++ {
		for cx := 0; cx < cols; cx++ {
			x0, y0 := cx*t.cellWidth, cy*t.cellHeight
			avg := t.cellBrightness(in, x0, y0)
			mask := t.masks[GlyphIndex(avg, len(t.masks))]
			for dy := 0; dy < t.cellHeight; dy++ {
				row := dst[(y0+dy)*dstDims.Stride:]
				for dx := 0; dx < t.cellWidth; dx++ {
					v := mask[dy*t.cellWidth+dx]
					off := (x0 + dx) * c
					for ch := 0; ch < t.shape.ColorChannels(); ch++ {
						row[off+ch] = v
					}
				}
			}
		}
	}
	return dstDims, nil
}

// cellBrightness returns sum(r+g+b) / (pixelCount*3) over the cell at (x0,y0).
func (t *TextArt) cellBrightness(in *pixfx.Buffer, x0, y0 int) int {
	c := t.shape.Channels()
	var total, count int
	for y := y0; y < y0+t.cellHeight; y++ {
		row := in.Rows(y, y+1)
		for x := x0; x < x0+t.cellWidth; x++ {
			px := row[x*c:]
			if c < 3 {
				total += 3 * int(px[0])
			} else {
				total += int(px[0]) + int(px[1]) + int(px[2])
			}
			count++
		}
	}
	return total / (count * 3)
}

// fillBackground paints dst black with opaque alpha.
func fillBackground(dst []byte, channels int) {
	clear(dst)
	if channels == 4 {
		for i := 3; i < len(dst); i += 4 {
			dst[i] = 255
		}
	}
}
