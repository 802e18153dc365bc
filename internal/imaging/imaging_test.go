package imaging

import (
	"bytes"
	"image"
	"image/jpeg"
	"image/png"
	"testing"
)

func encodePNG(t *testing.T, width, height int) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, width, height))); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func TestProbe(t *testing.T) {
	info, err := Probe(encodePNG(t, 640, 480))
	if err != nil {
		t.Fatalf("Probe() error = %v", err)
	}
	if info.Width != 640 || info.Height != 480 {
		t.Errorf("Probe() = %dx%d, want 640x480", info.Width, info.Height)
	}
	if info.Format != "png" {
		t.Errorf("Probe() format = %q, want %q", info.Format, "png")
	}
	if got, want := info.String(), "640x480 png"; got != want {
		t.Errorf("Info.String() = %q, want %q", got, want)
	}
}

func TestProbeInvalidData(t *testing.T) {
	if _, err := Probe([]byte("not an image")); err == nil {
		t.Error("Probe() should fail on non-image data")
	}
}

func TestResize(t *testing.T) {
	tests := []struct {
		name          string
		width, height int
		maxW, maxH    int
		wantW, wantH  int
	}{
		{"downscale wide", 1500, 1000, 1000, 1000, 1000, 666},
		{"downscale tall", 500, 1000, 250, 250, 125, 250},
		{"within bounds", 100, 80, 256, 256, 100, 80},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := Resize(encodePNG(t, tt.width, tt.height), tt.maxW, tt.maxH)
			if err != nil {
				t.Fatalf("Resize() error = %v", err)
			}

			img, err := jpeg.Decode(bytes.NewReader(out))
			if err != nil {
				t.Fatalf("decoding resized image: %v", err)
			}
			bounds := img.Bounds()
			if bounds.Dx() != tt.wantW || bounds.Dy() != tt.wantH {
				t.Errorf("Resize() = %dx%d, want %dx%d", bounds.Dx(), bounds.Dy(), tt.wantW, tt.wantH)
			}
		})
	}
}

func TestResizeInvalidData(t *testing.T) {
	if _, err := Resize([]byte("not an image"), 100, 100); err == nil {
		t.Error("Resize() should fail on non-image data")
	}
}
