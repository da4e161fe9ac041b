package gfx

import "github.com/gogpu/gputypes"

// BufferUsage is the class of data a Buffer holds.
type BufferUsage uint8

// Buffer usages.
const (
	BufferUsageIndex BufferUsage = iota + 1
	BufferUsageVertex
	BufferUsageUniform
)

func (u BufferUsage) String() string {
	switch u {
	case BufferUsageIndex:
		return "Index"
	case BufferUsageVertex:
		return "Vertex"
	case BufferUsageUniform:
		return "Uniform"
	default:
		return "BufferUsage(?)"
	}
}

// FrequencyHint tells the backend how often a buffer is rewritten.
type FrequencyHint uint8

// Frequency hints.
const (
	FrequencyHintStatic FrequencyHint = iota
	FrequencyHintDynamic
)

// TextureDimension selects a texture target.
type TextureDimension uint8

// Texture dimensions.
const (
	TextureDimension2D TextureDimension = iota
	TextureDimension2DArray
)

// WrapMode is a sampler addressing mode.
type WrapMode uint8

// Wrap modes.
const (
	WrapModeClamp WrapMode = iota
	WrapModeRepeat
	WrapModeMirror
)

// TexFilterMode is a texel filter.
type TexFilterMode uint8

// Texel filters.
const (
	TexFilterModePoint TexFilterMode = iota
	TexFilterModeBilinear
)

// MipFilterMode selects how mip levels are combined.
type MipFilterMode uint8

// Mip filters. MipFilterModeNoMip samples level 0 only.
const (
	MipFilterModeNoMip MipFilterMode = iota
	MipFilterModeNearest
	MipFilterModeLinear
)

// StencilOp is the operation applied to the stencil value when both the
// stencil and depth tests pass.
type StencilOp uint8

// Stencil operations.
const (
	StencilOpKeep StencilOp = iota
	StencilOpZero
	StencilOpReplace
	StencilOpInvert
	StencilOpIncrementClamp
	StencilOpDecrementClamp
	StencilOpIncrementWrap
	StencilOpDecrementWrap
)

// MegaState is the complete fixed-function state of a pipeline.
//
// MegaState is a comparable value: two pipelines with == MegaStates
// configure the backend identically. Every field is always meaningful; use
// DefaultMegaState or the render package presets to start from a complete
// value rather than the zero MegaState.
type MegaState struct {
	ColorWrite     gputypes.ColorWriteMask
	BlendEnabled   bool
	BlendOperation gputypes.BlendOperation
	BlendSrcFactor gputypes.BlendFactor
	BlendDstFactor gputypes.BlendFactor

	// DepthCompare of CompareFunctionAlways disables the depth test.
	DepthCompare gputypes.CompareFunction
	DepthWrite   bool

	// The device never toggles the stencil test itself; these fields only
	// configure it.
	StencilCompare gputypes.CompareFunction
	StencilWrite   bool
	StencilPassOp  StencilOp

	// CullMode of CullModeNone disables face culling.
	CullMode      gputypes.CullMode
	FrontFace     gputypes.FrontFace
	PolygonOffset bool
}

// DefaultMegaState returns the state renderers start from: opaque color
// writes, less-or-equal depth testing with writes, no stencil, no culling.
func DefaultMegaState() MegaState {
	return MegaState{
		ColorWrite:     gputypes.ColorWriteMaskAll,
		BlendEnabled:   false,
		BlendOperation: gputypes.BlendOperationAdd,
		BlendSrcFactor: gputypes.BlendFactorOne,
		BlendDstFactor: gputypes.BlendFactorZero,
		DepthCompare:   gputypes.CompareFunctionLessEqual,
		DepthWrite:     true,
		StencilCompare: gputypes.CompareFunctionNever,
		StencilWrite:   false,
		StencilPassOp:  StencilOpKeep,
		CullMode:       gputypes.CullModeNone,
		FrontFace:      gputypes.FrontFaceCCW,
		PolygonOffset:  false,
	}
}

// powerOnMegaState mirrors the state a freshly created GL context reports,
// so the first diff issues exactly the calls needed to leave it.
func powerOnMegaState() MegaState {
	return MegaState{
		ColorWrite:     gputypes.ColorWriteMaskAll,
		BlendOperation: gputypes.BlendOperationAdd,
		BlendSrcFactor: gputypes.BlendFactorOne,
		BlendDstFactor: gputypes.BlendFactorZero,
		DepthCompare:   gputypes.CompareFunctionAlways,
		DepthWrite:     true,
		StencilCompare: gputypes.CompareFunctionAlways,
		StencilWrite:   true,
		StencilPassOp:  StencilOpKeep,
		CullMode:       gputypes.CullModeNone,
		FrontFace:      gputypes.FrontFaceCCW,
	}
}
