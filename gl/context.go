// Package gl defines the backend seam of the gfx device: a GL-ES-3.0-style
// call surface that takes native tokens and object names.
//
// The gfx device translates its abstract descriptors into these calls and
// diffs state before issuing them. Concrete backends implement Context:
//
//   - gl/gltrace records every call and is used for tests and tracing
//   - gl/halgl maps the calls onto a gogpu/wgpu hal device
//
// Backends make themselves available by name through Register, following
// the database/sql driver pattern.
package gl

// Context is a single-threaded GL-style command surface.
//
// Calls are issued in order from one goroutine. Object names are allocated
// by the backend and are never zero. Context methods do not return errors
// for individual state calls; backends that can fail asynchronously report
// failures through their own error accessors and the gfx logger.
type Context interface {
	// Buffers.
	CreateBuffer() Object
	DeleteBuffer(b Object)
	BindBuffer(target Enum, b Object)
	BufferData(target Enum, size int, usage Enum)
	BufferSubData(target Enum, offset int, data []byte)
	GetBufferSubData(target Enum, offset int, dst []byte)
	BindBufferRange(target Enum, index uint32, b Object, offset, size int)

	// Textures.
	CreateTexture() Object
	DeleteTexture(t Object)
	ActiveTexture(unit Enum)
	BindTexture(target Enum, t Object)
	TexParameteri(target, pname Enum, param int32)
	TexStorage2D(target Enum, levels int, internalFormat Enum, width, height int)
	TexStorage3D(target Enum, levels int, internalFormat Enum, width, height, depth int)
	TexSubImage2D(target Enum, level, x, y, width, height int, format, typ Enum, data []byte)
	TexSubImage3D(target Enum, level, x, y, z, width, height, depth int, format, typ Enum, data []byte)
	CompressedTexSubImage2D(target Enum, level, x, y, width, height int, format Enum, data []byte)
	CompressedTexSubImage3D(target Enum, level, x, y, z, width, height, depth int, format Enum, data []byte)

	// Samplers.
	CreateSampler() Object
	DeleteSampler(s Object)
	SamplerParameteri(s Object, pname Enum, param int32)
	SamplerParameterf(s Object, pname Enum, param float32)
	BindSampler(unit uint32, s Object)

	// Renderbuffers and framebuffers.
	CreateRenderbuffer() Object
	DeleteRenderbuffer(rb Object)
	BindRenderbuffer(target Enum, rb Object)
	RenderbufferStorageMultisample(target Enum, samples int, internalFormat Enum, width, height int)
	CreateFramebuffer() Object
	DeleteFramebuffer(fb Object)
	BindFramebuffer(target Enum, fb Object)
	FramebufferRenderbuffer(target, attachment, rbTarget Enum, rb Object)
	FramebufferTexture2D(target, attachment, texTarget Enum, t Object, level int)
	BlitFramebuffer(srcX0, srcY0, srcX1, srcY1, dstX0, dstY0, dstX1, dstY1 int, mask, filter Enum)

	// Programs.
	CreateProgram(vertexSrc, fragmentSrc string) (Object, error)
	DeleteProgram(p Object)
	UseProgram(p Object)
	GetUniformBlockIndex(p Object, name string) uint32
	UniformBlockBinding(p Object, blockIndex, binding uint32)
	GetUniformLocation(p Object, name string) int32
	Uniform1i(location, v int32)

	// Vertex arrays.
	CreateVertexArray() Object
	DeleteVertexArray(vao Object)
	BindVertexArray(vao Object)
	EnableVertexAttribArray(location uint32)
	VertexAttribPointer(location uint32, size int, typ Enum, normalized bool, stride, offset int)
	VertexAttribIPointer(location uint32, size int, typ Enum, stride, offset int)
	VertexAttribDivisor(location, divisor uint32)

	// Fixed-function state.
	Enable(capability Enum)
	Disable(capability Enum)
	ColorMask(r, g, b, a bool)
	BlendEquation(mode Enum)
	BlendFunc(src, dst Enum)
	DepthFunc(f Enum)
	DepthMask(flag bool)
	StencilFunc(f Enum, ref int32, mask uint32)
	StencilMask(mask uint32)
	StencilOp(fail, zfail, zpass Enum)
	CullFace(mode Enum)
	FrontFace(mode Enum)
	PolygonOffset(factor, units float32)
	Viewport(x, y, width, height int)

	// Clears and draws.
	ClearColor(r, g, b, a float32)
	ClearDepthf(d float32)
	ClearStencil(s int32)
	Clear(mask Enum)
	DrawArrays(mode Enum, first, count int)
	DrawElements(mode Enum, count int, typ Enum, offset int)
	Flush()

	// Queries and debugging.
	GetInteger(pname Enum) int
	SupportsExtension(name string) bool
	ObjectLabel(identifier Enum, name Object, label string)
}
