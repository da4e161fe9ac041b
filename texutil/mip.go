package texutil

import (
	"image"
	"math/bits"

	xdraw "golang.org/x/image/draw"
)

// NumLevels returns the length of a full mip chain for a width x height
// base level: levels halve until both sides reach 1.
func NumLevels(width, height int) int {
	if width <= 0 || height <= 0 {
		return 0
	}
	return bits.Len(uint(max(width, height)))
}

// MipChain returns the RGBA8 data of the first numLevels levels of img,
// base level first. Level sizes follow gfx upload rules: each side halves
// and is clamped to 1. Every level is scaled from the base image with s;
// a nil s uses [xdraw.BiLinear]. numLevels <= 0 means the full chain.
func MipChain(img image.Image, numLevels int, s xdraw.Scaler) [][]byte {
	base := ToNRGBA(img)
	w, h := base.Rect.Dx(), base.Rect.Dy()
	full := NumLevels(w, h)
	if full == 0 {
		return nil
	}
	if numLevels <= 0 || numLevels > full {
		numLevels = full
	}
	if s == nil {
		s = xdraw.BiLinear
	}

	levels := make([][]byte, numLevels)
	levels[0] = base.Pix
	for i := 1; i < numLevels; i++ {
		w, h = max(w/2, 1), max(h/2, 1)
		dst := image.NewNRGBA(image.Rect(0, 0, w, h))
		s.Scale(dst, dst.Rect, base, base.Rect, xdraw.Src, nil)
		levels[i] = dst.Pix
	}
	return levels
}
