// Package texutil turns images into gfx texture data.
//
// Images are normalized to non-premultiplied RGBA8 (*image.NRGBA), the
// layout of [gfx.FormatU8RGBANorm]. [MipChain] builds the level data a
// texture upload pass takes, scaling each level from the base image with
// an x/image/draw scaler. [Decode] understands PNG, JPEG, BMP and TIFF.
package texutil
