package texutil

import (
	"image"

	xdraw "golang.org/x/image/draw"

	"github.com/gogpu/gfx"
)

// Upload creates an RGBA8 texture with a full mip chain for img and records
// the level uploads into p. The texture is usable once p is submitted.
func Upload(d *gfx.Device, p *gfx.UploadPass, img image.Image) *gfx.Texture {
	levels := MipChain(img, 0, xdraw.CatmullRom)
	b := img.Bounds()
	t := d.CreateTexture2D(gfx.FormatU8RGBANorm, b.Dx(), b.Dy(), len(levels))
	p.UploadTextureData(t, 0, levels)
	return t
}
