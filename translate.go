package gfx

import (
	"fmt"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/gfx/gl"
)

func unsupported(what string, v any) error {
	return fmt.Errorf("%w: %s %v", ErrUnsupported, what, v)
}

func translateBufferUsageToTarget(u BufferUsage) gl.Enum {
	switch u {
	case BufferUsageIndex:
		return gl.ELEMENT_ARRAY_BUFFER
	case BufferUsageVertex:
		return gl.ARRAY_BUFFER
	case BufferUsageUniform:
		return gl.UNIFORM_BUFFER
	default:
		panic(unsupported("buffer usage", u))
	}
}

func translateBufferHint(h FrequencyHint) gl.Enum {
	switch h {
	case FrequencyHintStatic:
		return gl.STATIC_DRAW
	case FrequencyHintDynamic:
		return gl.DYNAMIC_DRAW
	default:
		panic(unsupported("frequency hint", h))
	}
}

// translateVertexFormat returns the component count, component type and
// normalization of a vertex attribute format.
func translateVertexFormat(f Format) (size int, typ gl.Enum, normalized bool) {
	size = f.NumComponents()
	if size < 1 || size > 4 {
		panic(unsupported("vertex format", f))
	}
	switch f.TypeFlags() {
	case FormatTypeU8:
		typ = gl.UNSIGNED_BYTE
	case FormatTypeU16:
		typ = gl.UNSIGNED_SHORT
	case FormatTypeU32:
		typ = gl.UNSIGNED_INT
	case FormatTypeS8:
		typ = gl.BYTE
	case FormatTypeS16:
		typ = gl.SHORT
	case FormatTypeS32:
		typ = gl.INT
	case FormatTypeF16:
		typ = gl.HALF_FLOAT
	case FormatTypeF32:
		typ = gl.FLOAT
	default:
		panic(unsupported("vertex format", f))
	}
	return size, typ, f.Flags()&FormatFlagNormalized != 0
}

func translateIndexFormat(f Format) gl.Enum {
	switch f {
	case FormatU8R:
		return gl.UNSIGNED_BYTE
	case FormatU16R:
		return gl.UNSIGNED_SHORT
	case FormatU32R:
		return gl.UNSIGNED_INT
	default:
		panic(unsupported("index format", f))
	}
}

func translateWrapMode(w WrapMode) gl.Enum {
	switch w {
	case WrapModeClamp:
		return gl.CLAMP_TO_EDGE
	case WrapModeRepeat:
		return gl.REPEAT
	case WrapModeMirror:
		return gl.MIRRORED_REPEAT
	default:
		panic(unsupported("wrap mode", w))
	}
}

func translateFilterMode(filter TexFilterMode, mip MipFilterMode) gl.Enum {
	switch {
	case mip == MipFilterModeLinear && filter == TexFilterModeBilinear:
		return gl.LINEAR_MIPMAP_LINEAR
	case mip == MipFilterModeLinear && filter == TexFilterModePoint:
		return gl.NEAREST_MIPMAP_LINEAR
	case mip == MipFilterModeNearest && filter == TexFilterModeBilinear:
		return gl.LINEAR_MIPMAP_NEAREST
	case mip == MipFilterModeNearest && filter == TexFilterModePoint:
		return gl.NEAREST_MIPMAP_NEAREST
	case mip == MipFilterModeNoMip && filter == TexFilterModeBilinear:
		return gl.LINEAR
	case mip == MipFilterModeNoMip && filter == TexFilterModePoint:
		return gl.NEAREST
	default:
		panic(unsupported("filter mode", fmt.Sprintf("%d/%d", filter, mip)))
	}
}

func translatePrimitiveTopology(t gputypes.PrimitiveTopology) gl.Enum {
	switch t {
	case gputypes.PrimitiveTopologyTriangleList:
		return gl.TRIANGLES
	default:
		panic(unsupported("primitive topology", t))
	}
}

func translateCompareFunction(f gputypes.CompareFunction) gl.Enum {
	switch f {
	case gputypes.CompareFunctionNever:
		return gl.NEVER
	case gputypes.CompareFunctionLess:
		return gl.LESS
	case gputypes.CompareFunctionEqual:
		return gl.EQUAL
	case gputypes.CompareFunctionLessEqual:
		return gl.LEQUAL
	case gputypes.CompareFunctionGreater:
		return gl.GREATER
	case gputypes.CompareFunctionNotEqual:
		return gl.NOTEQUAL
	case gputypes.CompareFunctionGreaterEqual:
		return gl.GEQUAL
	case gputypes.CompareFunctionAlways:
		return gl.ALWAYS
	default:
		panic(unsupported("compare function", f))
	}
}

func translateBlendOperation(op gputypes.BlendOperation) gl.Enum {
	switch op {
	case gputypes.BlendOperationAdd:
		return gl.FUNC_ADD
	case gputypes.BlendOperationSubtract:
		return gl.FUNC_SUBTRACT
	case gputypes.BlendOperationReverseSubtract:
		return gl.FUNC_REVERSE_SUBTRACT
	case gputypes.BlendOperationMin:
		return gl.MIN
	case gputypes.BlendOperationMax:
		return gl.MAX
	default:
		panic(unsupported("blend operation", op))
	}
}

func translateBlendFactor(f gputypes.BlendFactor) gl.Enum {
	switch f {
	case gputypes.BlendFactorZero:
		return gl.ZERO
	case gputypes.BlendFactorOne:
		return gl.ONE
	case gputypes.BlendFactorSrc:
		return gl.SRC_COLOR
	case gputypes.BlendFactorOneMinusSrc:
		return gl.ONE_MINUS_SRC_COLOR
	case gputypes.BlendFactorSrcAlpha:
		return gl.SRC_ALPHA
	case gputypes.BlendFactorOneMinusSrcAlpha:
		return gl.ONE_MINUS_SRC_ALPHA
	case gputypes.BlendFactorDst:
		return gl.DST_COLOR
	case gputypes.BlendFactorOneMinusDst:
		return gl.ONE_MINUS_DST_COLOR
	case gputypes.BlendFactorDstAlpha:
		return gl.DST_ALPHA
	case gputypes.BlendFactorOneMinusDstAlpha:
		return gl.ONE_MINUS_DST_ALPHA
	default:
		panic(unsupported("blend factor", f))
	}
}

func translateCullMode(m gputypes.CullMode) gl.Enum {
	switch m {
	case gputypes.CullModeFront:
		return gl.FRONT
	case gputypes.CullModeBack:
		return gl.BACK
	default:
		panic(unsupported("cull mode", m))
	}
}

func translateFrontFace(f gputypes.FrontFace) gl.Enum {
	switch f {
	case gputypes.FrontFaceCCW:
		return gl.CCW
	case gputypes.FrontFaceCW:
		return gl.CW
	default:
		panic(unsupported("front face", f))
	}
}

func translateStencilOp(op StencilOp) gl.Enum {
	switch op {
	case StencilOpKeep:
		return gl.KEEP
	case StencilOpZero:
		return gl.ZERO
	case StencilOpReplace:
		return gl.REPLACE
	case StencilOpInvert:
		return gl.INVERT
	case StencilOpIncrementClamp:
		return gl.INCR
	case StencilOpDecrementClamp:
		return gl.DECR
	case StencilOpIncrementWrap:
		return gl.INCR_WRAP
	case StencilOpDecrementWrap:
		return gl.DECR_WRAP
	default:
		panic(unsupported("stencil op", op))
	}
}

// translateTextureInternalFormat returns the sized internal format of f.
// Compressed formats require the matching backend extension.
func (d *Device) translateTextureInternalFormat(f Format) gl.Enum {
	switch f {
	case FormatF32R:
		return gl.R32F
	case FormatF32RG:
		return gl.RG32F
	case FormatF32RGB:
		return gl.RGB32F
	case FormatF32RGBA:
		return gl.RGBA32F
	case FormatU16R:
		return gl.R16UI
	case FormatU8R, FormatU8RNorm:
		return gl.R8
	case FormatU8RG, FormatU8RGNorm:
		return gl.RG8
	case FormatU8RGB, FormatU8RGBNorm:
		return gl.RGB8
	case FormatU8RGBA, FormatU8RGBANorm:
		return gl.RGBA8
	case FormatU8RGBASRGB:
		return gl.SRGB8_ALPHA8
	case FormatS8RGBANorm:
		return gl.RGBA8_SNORM
	case FormatD24S8:
		return gl.DEPTH24_STENCIL8
	case FormatBC1, FormatBC3, FormatBC1SRGB, FormatBC3SRGB:
		if !d.QueryTextureFormatSupported(f) {
			panic(unsupported("texture format without backend extension", f))
		}
		return compressedInternalFormat(f)
	default:
		panic(unsupported("texture format", f))
	}
}

func compressedInternalFormat(f Format) gl.Enum {
	switch f {
	case FormatBC1:
		return gl.COMPRESSED_RGBA_S3TC_DXT1_EXT
	case FormatBC3:
		return gl.COMPRESSED_RGBA_S3TC_DXT5_EXT
	case FormatBC1SRGB:
		return gl.COMPRESSED_SRGB_ALPHA_S3TC_DXT1_EXT
	case FormatBC3SRGB:
		return gl.COMPRESSED_SRGB_ALPHA_S3TC_DXT5_EXT
	default:
		panic(unsupported("compressed format", f))
	}
}

// translateTextureFormat returns the pixel format passed with uploads.
// Compressed uploads take the compressed internal format instead.
func translateTextureFormat(f Format) gl.Enum {
	if f.IsCompressed() {
		return compressedInternalFormat(f)
	}
	switch f.CompFlags() {
	case FormatCompR:
		return gl.RED
	case FormatCompRG:
		return gl.RG
	case FormatCompRGB:
		return gl.RGB
	case FormatCompRGBA:
		return gl.RGBA
	default:
		panic(unsupported("texture pixel format", f))
	}
}

func translateTextureType(f Format) gl.Enum {
	switch f.TypeFlags() {
	case FormatTypeU8:
		return gl.UNSIGNED_BYTE
	case FormatTypeS8:
		return gl.BYTE
	case FormatTypeU16:
		return gl.UNSIGNED_SHORT
	case FormatTypeS16:
		return gl.SHORT
	case FormatTypeU32:
		return gl.UNSIGNED_INT
	case FormatTypeS32:
		return gl.INT
	case FormatTypeF16:
		return gl.HALF_FLOAT
	case FormatTypeF32:
		return gl.FLOAT
	default:
		panic(unsupported("texture data type", f))
	}
}
