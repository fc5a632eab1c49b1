package pixfx

import (
	"errors"
	"image"
	"io"
	"testing"
)

func TestBufferAccess(t *testing.T) {
	b, err := NewBuffer(3, 2, ShapeRGB888)
	if err != nil {
		t.Fatal(err)
	}
	if got := len(b.Buffer()); got != 3*2*3 {
		t.Fatalf("buffer length %d, want 18", got)
	}
	want := Pixel{10, 20, 30}
	if err := b.Set(2, 1, want); err != nil {
		t.Fatal(err)
	}
	got, err := b.At(2, 1)
	if err != nil {
		t.Fatal(err)
	}
	if got != want {
		t.Errorf("At(2,1)=%v, want %v", got, want)
	}
	for _, pt := range []image.Point{{-1, 0}, {0, -1}, {3, 0}, {0, 2}} {
		if _, err := b.At(pt.X, pt.Y); !errors.Is(err, ErrOutOfRange) {
			t.Errorf("At(%d,%d) err=%v, want ErrOutOfRange", pt.X, pt.Y, err)
		}
		if err := b.Set(pt.X, pt.Y, want); !errors.Is(err, ErrOutOfRange) {
			t.Errorf("Set(%d,%d) err=%v, want ErrOutOfRange", pt.X, pt.Y, err)
		}
	}
}

func TestBufferClampedAt(t *testing.T) {
	b, _ := NewBuffer(2, 2, ShapeGray8)
	copy(b.Buffer(), []byte{1, 2, 3, 4})
	tests := []struct {
		x, y int
		want uint8
	}{
		{0, 0, 1}, {1, 0, 2}, {0, 1, 3}, {1, 1, 4},
		{-5, -5, 1}, {9, -1, 2}, {-1, 9, 3}, {9, 9, 4},
	}
	for _, tc := range tests {
		if got := b.ClampedAt(tc.x, tc.y)[0]; got != tc.want {
			t.Errorf("ClampedAt(%d,%d)=%d, want %d", tc.x, tc.y, got, tc.want)
		}
	}
}

func TestNewBufferFromLength(t *testing.T) {
	if _, err := NewBufferFrom(2, 2, ShapeRGBA8888, make([]byte, 15)); err == nil {
		t.Error("expected length mismatch error")
	}
	if _, err := NewBufferFrom(2, 2, ShapeRGBA8888, make([]byte, 16)); err != nil {
		t.Error(err)
	}
	if _, err := NewBuffer(0, 2, ShapeGray8); err == nil {
		t.Error("expected empty image error")
	}
	if _, err := NewBuffer(2, 2, shapeUndefined); err == nil {
		t.Error("expected bad shape error")
	}
}

func TestBufferReadAtMatchesImageRow(t *testing.T) {
	b, _ := NewBuffer(4, 3, ShapeRGB888)
	for i := range b.Buffer() {
		b.Buffer()[i] = byte(i)
	}
	// Hide ImageBuffered so ImageRow goes through ReadAt.
	var img Image = struct{ Image }{b}
	row := make([]byte, b.Dims().SizeRow())
	for y := 0; y < 3; y++ {
		got, err := ImageRow(row, img, y)
		if err != nil {
			t.Fatal(err)
		}
		want := b.Rows(y, y+1)
		if string(got) != string(want) {
			t.Errorf("row %d = %v, want %v", y, got, want)
		}
	}
	if _, err := ImageRow(row, img, 3); !errors.Is(err, ErrOutOfRange) {
		t.Errorf("ImageRow out of bounds err=%v", err)
	}
	if n, err := b.ReadAt(make([]byte, 8), int64(len(b.Buffer())-4)); n != 4 || err != io.EOF {
		t.Errorf("short ReadAt n=%d err=%v", n, err)
	}
}

func TestConvert(t *testing.T) {
	rgb, _ := NewBufferFrom(2, 1, ShapeRGB888, []byte{30, 60, 90, 255, 0, 0})
	gray, err := rgb.Convert(ShapeGray8)
	if err != nil {
		t.Fatal(err)
	}
	if got := gray.Buffer(); got[0] != 60 || got[1] != 85 {
		t.Errorf("gray = %v, want [60 85]", got)
	}
	rgba, err := gray.Convert(ShapeRGBA8888)
	if err != nil {
		t.Fatal(err)
	}
	want := []byte{60, 60, 60, 255, 85, 85, 85, 255}
	if string(rgba.Buffer()) != string(want) {
		t.Errorf("rgba = %v, want %v", rgba.Buffer(), want)
	}
	if same, _ := rgb.Convert(ShapeRGB888); same != rgb {
		t.Error("converting to the same shape should return the receiver")
	}
}

func TestRGBARoundTrip(t *testing.T) {
	b, _ := NewBuffer(5, 4, ShapeRGBA8888)
	for i := range b.Buffer() {
		b.Buffer()[i] = byte(i * 7)
	}
	back, err := FromRGBA(b.ToRGBA(), ShapeRGBA8888)
	if err != nil {
		t.Fatal(err)
	}
	if !back.Equal(b) {
		t.Error("RGBA round trip changed the buffer")
	}
	sub := b.ToRGBA().SubImage(image.Rect(1, 1, 3, 3)).(*image.RGBA)
	cropped, err := FromRGBA(sub, ShapeRGBA8888)
	if err != nil {
		t.Fatal(err)
	}
	px, _ := cropped.At(0, 0)
	orig, _ := b.At(1, 1)
	if px != orig {
		t.Errorf("sub image origin %v, want %v", px, orig)
	}
}

func TestControlOrdered(t *testing.T) {
	var changed int
	c := &ControlOrdered[int]{Name: "Level", Value: 100, Min: 0, Max: 200, OnChange: func(v int) error {
		changed = v
		return nil
	}}
	if err := c.ChangeValue(150); err != nil {
		t.Fatal(err)
	}
	if c.ActualValue() != 150 || changed != 150 {
		t.Errorf("value=%v changed=%d, want 150", c.ActualValue(), changed)
	}
	if err := c.ChangeValue(201); err == nil {
		t.Error("expected range error")
	}
	if err := c.ChangeValue(1.5); err == nil {
		t.Error("expected type error")
	}
	if got := c.Clamp(-3); got != 0 {
		t.Errorf("Clamp(-3)=%d", got)
	}
}
