package render

import (
	"github.com/gogpu/gputypes"

	"github.com/gogpu/gfx"
)

// Fullscreen is the state of a screen-space pass: no depth test, no depth
// writes, no culling.
func Fullscreen() gfx.MegaState {
	m := gfx.DefaultMegaState()
	m.DepthCompare = gputypes.CompareFunctionAlways
	m.DepthWrite = false
	return m
}

// Opaque is depth-tested, depth-writing geometry with the given culling.
func Opaque(cull gputypes.CullMode) gfx.MegaState {
	m := gfx.DefaultMegaState()
	m.CullMode = cull
	return m
}

// Translucent is straight-alpha blending over depth-tested geometry without
// depth writes.
func Translucent() gfx.MegaState {
	return blended(gputypes.BlendFactorSrcAlpha, gputypes.BlendFactorOneMinusSrcAlpha)
}

// Additive adds source color weighted by its alpha.
func Additive() gfx.MegaState {
	return blended(gputypes.BlendFactorSrcAlpha, gputypes.BlendFactorOne)
}

// Premultiplied blends colors whose alpha is already multiplied in.
func Premultiplied() gfx.MegaState {
	return blended(gputypes.BlendFactorOne, gputypes.BlendFactorOneMinusSrcAlpha)
}

func blended(src, dst gputypes.BlendFactor) gfx.MegaState {
	m := gfx.DefaultMegaState()
	m.BlendEnabled = true
	m.BlendOperation = gputypes.BlendOperationAdd
	m.BlendSrcFactor = src
	m.BlendDstFactor = dst
	m.DepthWrite = false
	return m
}

// WithDecal offsets m's depth so coplanar decals win the depth test.
func WithDecal(m gfx.MegaState) gfx.MegaState {
	m.PolygonOffset = true
	return m
}

// WithStencilWrite makes m replace the stencil value on every passing
// fragment. The device never enables the stencil test, so the caller does
// that on the backend before drawing.
func WithStencilWrite(m gfx.MegaState) gfx.MegaState {
	m.StencilCompare = gputypes.CompareFunctionAlways
	m.StencilWrite = true
	m.StencilPassOp = gfx.StencilOpReplace
	return m
}
