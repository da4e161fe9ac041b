package texutil

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"golang.org/x/image/bmp"
	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/tiff"

	"github.com/gogpu/gfx"
	"github.com/gogpu/gfx/gl/gltrace"
)

func checker(w, h int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := range h {
		for x := range w {
			if (x+y)%2 == 0 {
				img.SetNRGBA(x, y, color.NRGBA{R: 255, A: 255})
			} else {
				img.SetNRGBA(x, y, color.NRGBA{B: 255, A: 128})
			}
		}
	}
	return img
}

func TestNumLevels(t *testing.T) {
	tests := []struct {
		w, h int
		want int
	}{
		{1, 1, 1},
		{2, 2, 2},
		{4, 1, 3},
		{5, 3, 3},
		{256, 64, 9},
		{0, 4, 0},
	}
	for _, tt := range tests {
		if got := NumLevels(tt.w, tt.h); got != tt.want {
			t.Errorf("NumLevels(%d, %d) = %d, want %d", tt.w, tt.h, got, tt.want)
		}
	}
}

func TestMipChain(t *testing.T) {
	tests := []struct {
		name   string
		w, h   int
		levels int
		sizes  [][2]int
	}{
		{"square full", 4, 4, 0, [][2]int{{4, 4}, {2, 2}, {1, 1}}},
		{"wide full", 8, 2, 0, [][2]int{{8, 2}, {4, 1}, {2, 1}, {1, 1}}},
		{"truncated", 8, 8, 2, [][2]int{{8, 8}, {4, 4}}},
		{"clamped", 2, 2, 9, [][2]int{{2, 2}, {1, 1}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MipChain(checker(tt.w, tt.h), tt.levels, nil)
			if len(got) != len(tt.sizes) {
				t.Fatalf("got %d levels, want %d", len(got), len(tt.sizes))
			}
			for i, s := range tt.sizes {
				if want := s[0] * s[1] * 4; len(got[i]) != want {
					t.Errorf("level %d has %d bytes, want %d", i, len(got[i]), want)
				}
			}
		})
	}
}

func TestMipChainAverages(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 2, 2))
	for i := range img.Pix {
		img.Pix[i] = 200
	}
	levels := MipChain(img, 0, xdraw.ApproxBiLinear)
	if got := levels[1]; !bytes.Equal(got, []byte{200, 200, 200, 200}) {
		t.Errorf("uniform image level 1 = %v, want all 200", got)
	}
}

func TestToNRGBA(t *testing.T) {
	src := image.NewRGBA(image.Rect(2, 3, 5, 5))
	src.Set(2, 3, color.RGBA{R: 10, G: 20, B: 30, A: 255})

	got := ToNRGBA(src)
	if got.Rect != image.Rect(0, 0, 3, 2) {
		t.Fatalf("bounds = %v, want origin-based 3x2", got.Rect)
	}
	if c := got.NRGBAAt(0, 0); c != (color.NRGBA{R: 10, G: 20, B: 30, A: 255}) {
		t.Errorf("pixel = %v", c)
	}

	n := image.NewNRGBA(image.Rect(0, 0, 2, 2))
	if ToNRGBA(n) != n {
		t.Error("packed NRGBA should be returned unchanged")
	}
}

func TestDecodeFormats(t *testing.T) {
	src := checker(3, 2)
	tests := []struct {
		format string
		encode func(*bytes.Buffer) error
	}{
		{"png", func(b *bytes.Buffer) error { return png.Encode(b, src) }},
		{"bmp", func(b *bytes.Buffer) error { return bmp.Encode(b, src) }},
		{"tiff", func(b *bytes.Buffer) error { return tiff.Encode(b, src, nil) }},
	}
	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			var buf bytes.Buffer
			if err := tt.encode(&buf); err != nil {
				t.Fatalf("encode: %v", err)
			}
			img, format, err := DecodeBytes(buf.Bytes())
			if err != nil {
				t.Fatalf("DecodeBytes() = %v", err)
			}
			if format != tt.format {
				t.Errorf("format = %q, want %q", format, tt.format)
			}
			if img.Rect.Dx() != 3 || img.Rect.Dy() != 2 {
				t.Errorf("size = %v, want 3x2", img.Rect.Size())
			}
			if c := img.NRGBAAt(0, 0); c != (color.NRGBA{R: 255, A: 255}) {
				t.Errorf("pixel (0,0) = %v", c)
			}
		})
	}
}

func TestDecodeErrors(t *testing.T) {
	if _, _, err := DecodeBytes(nil); !errors.Is(err, ErrEmptyData) {
		t.Errorf("DecodeBytes(nil) = %v, want %v", err, ErrEmptyData)
	}
	if _, _, err := DecodeBytes([]byte("not an image")); err == nil {
		t.Error("garbage decoded without error")
	}
	if _, err := Load(filepath.Join(t.TempDir(), "missing.png")); err == nil {
		t.Error("Load of a missing file succeeded")
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tex.png")
	var buf bytes.Buffer
	if err := png.Encode(&buf, checker(4, 4)); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o600); err != nil {
		t.Fatal(err)
	}
	img, err := Load(path)
	if err != nil {
		t.Fatalf("Load() = %v", err)
	}
	if img.Rect.Dx() != 4 {
		t.Errorf("width = %d, want 4", img.Rect.Dx())
	}
}

func TestLabel(t *testing.T) {
	img, err := Label("gfx", 16, color.White, color.Black)
	if err != nil {
		t.Fatalf("Label() = %v", err)
	}
	b := img.Bounds()
	if b.Dx() < 8 || b.Dy() < 8 {
		t.Fatalf("label size = %v", b.Size())
	}
	lit := false
	for i := 0; i < len(img.Pix); i += 4 {
		if img.Pix[i] > 128 {
			lit = true
			break
		}
	}
	if !lit {
		t.Error("label has no foreground pixels")
	}
}

func TestUpload(t *testing.T) {
	ctx := gltrace.New()
	d := gfx.NewDevice(ctx)
	p := d.CreateHostAccessPass()
	tex := Upload(d, p, checker(8, 4))
	d.SubmitPass(p)

	if tex.NumLevels() != 4 || tex.Width() != 8 || tex.Height() != 4 {
		t.Errorf("texture %dx%d with %d levels, want 8x4 with 4", tex.Width(), tex.Height(), tex.NumLevels())
	}
	if n := len(ctx.Named("TexSubImage2D")); n != 4 {
		t.Errorf("TexSubImage2D calls = %d, want 4", n)
	}
}
