package main

import (
	"image"
	"math/rand"

	"github.com/soypat/pixfx"
	"github.com/soypat/pixfx/internal/appconfig"
)

// syntheticFrames stands in for a camera: frames of colored squares
// drifting over a dark background.
func syntheticFrames(cfg appconfig.Config) ([]*pixfx.Buffer, error) {
	shape, err := pixfx.ShapeForChannels(cfg.Channels)
	if err != nil {
		return nil, err
	}
	rng := rand.New(rand.NewSource(cfg.Seed))
	squares := make([]square, 24)
	for i := range squares {
		squares[i] = randomSquare(rng, cfg.Width, cfg.Height)
	}
	frames := make([]*pixfx.Buffer, cfg.Frames)
	for i := range frames {
		img := image.NewRGBA(image.Rect(0, 0, cfg.Width, cfg.Height))
		for p := 3; p < len(img.Pix); p += 4 {
			img.Pix[p] = 255
		}
		for _, sq := range squares {
			sq.draw(img, i)
		}
		frames[i], err = pixfx.FromRGBA(img, shape)
		if err != nil {
			return nil, err
		}
	}
	return frames, nil
}

type square struct {
	x, y, size int
	dx, dy     int
	r, g, b    uint8
}

func randomSquare(rng *rand.Rand, width, height int) square {
	return square{
		x:    rng.Intn(width),
		y:    rng.Intn(height),
		size: 10 + rng.Intn(50),
		dx:   rng.Intn(7) - 3,
		dy:   rng.Intn(7) - 3,
		// Avoid very dark colors so squares are visible.
		r: uint8(64 + rng.Intn(192)),
		g: uint8(64 + rng.Intn(192)),
		b: uint8(64 + rng.Intn(192)),
	}
}

func (sq square) draw(img *image.RGBA, frame int) {
	bounds := img.Bounds()
	x0, y0 := sq.x+sq.dx*frame, sq.y+sq.dy*frame
	rect := image.Rect(x0, y0, x0+sq.size, y0+sq.size).Intersect(bounds)
	for y := rect.Min.Y; y < rect.Max.Y; y++ {
		for x := rect.Min.X; x < rect.Max.X; x++ {
			idx := img.PixOffset(x, y)
			img.Pix[idx], img.Pix[idx+1], img.Pix[idx+2], img.Pix[idx+3] = sq.r, sq.g, sq.b, 255
		}
	}
}
