package main

import (
	"testing"

	"github.com/soypat/pixfx"
	"github.com/soypat/pixfx/internal/appconfig"
)

func TestSyntheticFrames(t *testing.T) {
	cfg := appconfig.Default()
	cfg.Frames, cfg.Width, cfg.Height, cfg.Channels = 3, 32, 24, 4
	frames, err := syntheticFrames(cfg)
	if err != nil {
		t.Fatal(err)
	}
	if len(frames) != 3 {
		t.Fatalf("got %d frames", len(frames))
	}
	for _, f := range frames {
		if f.Width() != 32 || f.Height() != 24 || f.Shape() != pixfx.ShapeRGBA8888 {
			t.Fatalf("frame %dx%d %s", f.Width(), f.Height(), f.Shape())
		}
	}
	again, _ := syntheticFrames(cfg)
	for i := range frames {
		if !frames[i].Equal(again[i]) {
			t.Fatal("frames not reproducible for a fixed seed")
		}
	}
	cfg.Channels = 2
	if _, err := syntheticFrames(cfg); err == nil {
		t.Error("unsupported channel count accepted")
	}
}
