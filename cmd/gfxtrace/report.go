package main

import (
	"fmt"
	"hash/crc32"
	"image"
	"image/png"
	"os"
	"path/filepath"

	"github.com/gogpu/gfx/gl/halgl"
)

// reportFrame prints the hal backend's pipeline cache statistics and a
// checksum of the default framebuffer, and writes it to out when set.
func reportFrame(c *halgl.Context, out string) error {
	if err := c.Err(); err != nil {
		return fmt.Errorf("backend: %w", err)
	}
	st := c.PipelineStats()
	fmt.Printf("hal pipelines: %d cached, %d hits, %d misses, %d evicted\n",
		st.Len, st.Hits, st.Misses, st.Evictions)

	pixels, w, h, err := c.ReadPixels(0)
	if err != nil {
		return err
	}
	fmt.Printf("frame %dx%d crc32 %08x\n", w, h, crc32.ChecksumIEEE(pixels))
	if out == "" {
		return nil
	}
	return savePNG(out, &image.NRGBA{Pix: pixels, Stride: 4 * w, Rect: image.Rect(0, 0, w, h)})
}

func savePNG(path string, img image.Image) error {
	f, err := os.Create(filepath.Clean(path))
	if err != nil {
		return fmt.Errorf("create file: %w", err)
	}
	if err := png.Encode(f, img); err != nil {
		_ = f.Close()
		return fmt.Errorf("encode PNG: %w", err)
	}
	return f.Close()
}
