package texutil

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
)

// Label renders text in Go Regular at size pixels per em, fg over bg, into
// an image just large enough to hold it. It is meant for debug overlays and
// test textures.
func Label(text string, size float64, fg, bg color.Color) (*image.NRGBA, error) {
	f, err := opentype.Parse(goregular.TTF)
	if err != nil {
		return nil, fmt.Errorf("texutil: parse font: %w", err)
	}
	face, err := opentype.NewFace(f, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return nil, fmt.Errorf("texutil: create face: %w", err)
	}
	defer func() { _ = face.Close() }()

	m := face.Metrics()
	width := max(font.MeasureString(face, text).Ceil(), 1)
	height := max((m.Ascent + m.Descent).Ceil(), 1)

	dst := image.NewNRGBA(image.Rect(0, 0, width, height))
	draw.Draw(dst, dst.Rect, image.NewUniform(bg), image.Point{}, draw.Src)
	d := &font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(fg),
		Face: face,
		Dot:  fixed.Point26_6{X: 0, Y: m.Ascent},
	}
	d.DrawString(text)
	return dst, nil
}
