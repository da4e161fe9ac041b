package gl

// Enum is a native GL token.
type Enum uint32

// Object is a backend object name. Zero names the default object
// (default framebuffer, no buffer bound, and so on).
type Object uint32

// Token values follow the OpenGL ES 3.0 headers.
//
//nolint:revive // GL token names are kept verbatim.
const (
	// Data types.
	BYTE           Enum = 0x1400
	UNSIGNED_BYTE  Enum = 0x1401
	SHORT          Enum = 0x1402
	UNSIGNED_SHORT Enum = 0x1403
	INT            Enum = 0x1404
	UNSIGNED_INT   Enum = 0x1405
	FLOAT          Enum = 0x1406
	HALF_FLOAT     Enum = 0x140B

	// Primitive modes.
	POINTS         Enum = 0x0000
	LINES          Enum = 0x0001
	LINE_STRIP     Enum = 0x0003
	TRIANGLES      Enum = 0x0004
	TRIANGLE_STRIP Enum = 0x0005

	// Buffer targets and hints.
	ARRAY_BUFFER         Enum = 0x8892
	ELEMENT_ARRAY_BUFFER Enum = 0x8893
	UNIFORM_BUFFER       Enum = 0x8A11
	STATIC_DRAW          Enum = 0x88E4
	DYNAMIC_DRAW         Enum = 0x88E8

	// Capabilities.
	BLEND               Enum = 0x0BE2
	CULL_FACE           Enum = 0x0B44
	DEPTH_TEST          Enum = 0x0B71
	STENCIL_TEST        Enum = 0x0B90
	POLYGON_OFFSET_FILL Enum = 0x8037

	// Blend equations.
	FUNC_ADD              Enum = 0x8006
	MIN                   Enum = 0x8007
	MAX                   Enum = 0x8008
	FUNC_SUBTRACT         Enum = 0x800A
	FUNC_REVERSE_SUBTRACT Enum = 0x800B

	// Blend factors.
	ZERO                Enum = 0x0000
	ONE                 Enum = 0x0001
	SRC_COLOR           Enum = 0x0300
	ONE_MINUS_SRC_COLOR Enum = 0x0301
	SRC_ALPHA           Enum = 0x0302
	ONE_MINUS_SRC_ALPHA Enum = 0x0303
	DST_ALPHA           Enum = 0x0304
	ONE_MINUS_DST_ALPHA Enum = 0x0305
	DST_COLOR           Enum = 0x0306
	ONE_MINUS_DST_COLOR Enum = 0x0307

	// Comparison functions.
	NEVER    Enum = 0x0200
	LESS     Enum = 0x0201
	EQUAL    Enum = 0x0202
	LEQUAL   Enum = 0x0203
	GREATER  Enum = 0x0204
	NOTEQUAL Enum = 0x0205
	GEQUAL   Enum = 0x0206
	ALWAYS   Enum = 0x0207

	// Stencil operations. ZERO doubles as the zero operation.
	KEEP      Enum = 0x1E00
	REPLACE   Enum = 0x1E01
	INCR      Enum = 0x1E02
	DECR      Enum = 0x1E03
	INVERT    Enum = 0x150A
	INCR_WRAP Enum = 0x8507
	DECR_WRAP Enum = 0x8508

	// Faces and winding.
	FRONT          Enum = 0x0404
	BACK           Enum = 0x0405
	FRONT_AND_BACK Enum = 0x0408
	CW             Enum = 0x0900
	CCW            Enum = 0x0901

	// Clear mask bits.
	DEPTH_BUFFER_BIT   Enum = 0x00000100
	STENCIL_BUFFER_BIT Enum = 0x00000400
	COLOR_BUFFER_BIT   Enum = 0x00004000

	// Texture targets and units.
	TEXTURE_2D       Enum = 0x0DE1
	TEXTURE_3D       Enum = 0x806F
	TEXTURE_2D_ARRAY Enum = 0x8C1A
	TEXTURE0         Enum = 0x84C0

	// Texture and sampler parameters.
	TEXTURE_MAG_FILTER Enum = 0x2800
	TEXTURE_MIN_FILTER Enum = 0x2801
	TEXTURE_WRAP_S     Enum = 0x2802
	TEXTURE_WRAP_T     Enum = 0x2803
	TEXTURE_MIN_LOD    Enum = 0x813A
	TEXTURE_MAX_LOD    Enum = 0x813B

	// Filters.
	NEAREST                Enum = 0x2600
	LINEAR                 Enum = 0x2601
	NEAREST_MIPMAP_NEAREST Enum = 0x2700
	LINEAR_MIPMAP_NEAREST  Enum = 0x2701
	NEAREST_MIPMAP_LINEAR  Enum = 0x2702
	LINEAR_MIPMAP_LINEAR   Enum = 0x2703

	// Wrap modes.
	REPEAT          Enum = 0x2901
	CLAMP_TO_EDGE   Enum = 0x812F
	MIRRORED_REPEAT Enum = 0x8370

	// Pixel formats.
	RED  Enum = 0x1903
	RGB  Enum = 0x1907
	RGBA Enum = 0x1908
	RG   Enum = 0x8227

	// Sized internal formats.
	RGB8             Enum = 0x8051
	RGBA8            Enum = 0x8058
	R8               Enum = 0x8229
	RG8              Enum = 0x822B
	R16UI            Enum = 0x8234
	R32F             Enum = 0x822E
	RG32F            Enum = 0x8230
	RGBA32F          Enum = 0x8814
	RGB32F           Enum = 0x8815
	DEPTH24_STENCIL8 Enum = 0x88F0
	SRGB8_ALPHA8     Enum = 0x8C43
	RGBA8_SNORM      Enum = 0x8F97

	// S3TC compressed formats.
	COMPRESSED_RGBA_S3TC_DXT1_EXT       Enum = 0x83F1
	COMPRESSED_RGBA_S3TC_DXT5_EXT       Enum = 0x83F3
	COMPRESSED_SRGB_ALPHA_S3TC_DXT1_EXT Enum = 0x8C4D
	COMPRESSED_SRGB_ALPHA_S3TC_DXT5_EXT Enum = 0x8C4F

	// Framebuffers and renderbuffers.
	READ_FRAMEBUFFER         Enum = 0x8CA8
	DRAW_FRAMEBUFFER         Enum = 0x8CA9
	FRAMEBUFFER              Enum = 0x8D40
	RENDERBUFFER             Enum = 0x8D41
	COLOR_ATTACHMENT0        Enum = 0x8CE0
	DEPTH_STENCIL_ATTACHMENT Enum = 0x821A

	// Integer queries.
	MAX_UNIFORM_BLOCK_SIZE           Enum = 0x8A30
	UNIFORM_BUFFER_OFFSET_ALIGNMENT  Enum = 0x8A34
	MAX_COMBINED_TEXTURE_IMAGE_UNITS Enum = 0x8B4D

	// Object label identifiers (KHR_debug).
	TEXTURE      Enum = 0x1702
	VERTEX_ARRAY Enum = 0x8074
	BUFFER       Enum = 0x82E0
	PROGRAM      Enum = 0x82E2
	SAMPLER      Enum = 0x82E6

	INVALID_INDEX uint32 = 0xFFFFFFFF
)

// Extension names queried through Context.SupportsExtension.
const (
	ExtCompressedTextureS3TC     = "WEBGL_compressed_texture_s3tc"
	ExtCompressedTextureS3TCSRGB = "WEBGL_compressed_texture_s3tc_srgb"
)
