package gfx

import (
	"github.com/gogpu/gputypes"

	"github.com/gogpu/gfx/gl"
)

// applyMegaState issues the calls that move the backend from the device's
// current fixed-function state to n, in a fixed order, and records n as
// current. Fields that already match issue nothing.
func (d *Device) applyMegaState(n *MegaState) {
	c := &d.megaState
	ctx := d.gl

	if c.ColorWrite != n.ColorWrite {
		setColorMask(ctx, n.ColorWrite)
		c.ColorWrite = n.ColorWrite
	}

	if c.BlendEnabled != n.BlendEnabled {
		setCapability(ctx, gl.BLEND, n.BlendEnabled)
		c.BlendEnabled = n.BlendEnabled
	}
	if c.BlendOperation != n.BlendOperation {
		ctx.BlendEquation(translateBlendOperation(n.BlendOperation))
		c.BlendOperation = n.BlendOperation
	}
	if c.BlendSrcFactor != n.BlendSrcFactor || c.BlendDstFactor != n.BlendDstFactor {
		ctx.BlendFunc(translateBlendFactor(n.BlendSrcFactor), translateBlendFactor(n.BlendDstFactor))
		c.BlendSrcFactor = n.BlendSrcFactor
		c.BlendDstFactor = n.BlendDstFactor
	}

	if c.DepthCompare != n.DepthCompare {
		wasOn := c.DepthCompare != gputypes.CompareFunctionAlways
		isOn := n.DepthCompare != gputypes.CompareFunctionAlways
		if wasOn != isOn {
			setCapability(ctx, gl.DEPTH_TEST, isOn)
		}
		if isOn {
			ctx.DepthFunc(translateCompareFunction(n.DepthCompare))
		}
		c.DepthCompare = n.DepthCompare
	}
	if c.DepthWrite != n.DepthWrite {
		ctx.DepthMask(n.DepthWrite)
		c.DepthWrite = n.DepthWrite
	}

	if c.StencilCompare != n.StencilCompare {
		ctx.StencilFunc(translateCompareFunction(n.StencilCompare), int32(d.stencilRef), 0xFF)
		c.StencilCompare = n.StencilCompare
	}
	if c.StencilWrite != n.StencilWrite {
		ctx.StencilMask(stencilMask(n.StencilWrite))
		c.StencilWrite = n.StencilWrite
	}
	if c.StencilWrite && c.StencilPassOp != n.StencilPassOp {
		ctx.StencilOp(gl.KEEP, gl.KEEP, translateStencilOp(n.StencilPassOp))
		c.StencilPassOp = n.StencilPassOp
	}

	if c.CullMode != n.CullMode {
		wasOn := c.CullMode != gputypes.CullModeNone
		isOn := n.CullMode != gputypes.CullModeNone
		if wasOn != isOn {
			setCapability(ctx, gl.CULL_FACE, isOn)
		}
		if isOn {
			ctx.CullFace(translateCullMode(n.CullMode))
		}
		c.CullMode = n.CullMode
	}
	if c.FrontFace != n.FrontFace {
		ctx.FrontFace(translateFrontFace(n.FrontFace))
		c.FrontFace = n.FrontFace
	}

	if c.PolygonOffset != n.PolygonOffset {
		if n.PolygonOffset {
			ctx.PolygonOffset(-0.5, -0.5)
		}
		setCapability(ctx, gl.POLYGON_OFFSET_FILL, n.PolygonOffset)
		c.PolygonOffset = n.PolygonOffset
	}
}

func setCapability(ctx gl.Context, capability gl.Enum, on bool) {
	if on {
		ctx.Enable(capability)
	} else {
		ctx.Disable(capability)
	}
}

func setColorMask(ctx gl.Context, m gputypes.ColorWriteMask) {
	ctx.ColorMask(
		m&gputypes.ColorWriteMaskRed != 0,
		m&gputypes.ColorWriteMaskGreen != 0,
		m&gputypes.ColorWriteMaskBlue != 0,
		m&gputypes.ColorWriteMaskAlpha != 0,
	)
}

func stencilMask(write bool) uint32 {
	if write {
		return 0xFF
	}
	return 0
}
