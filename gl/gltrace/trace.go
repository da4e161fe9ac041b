// Package gltrace provides a recording gl.Context.
//
// Every call is appended to an in-memory trace together with its arguments,
// and per-name counters are kept so callers can assert how many state
// changes a sequence of passes produced. Buffers keep real byte storage so
// uploads can be read back. Object names are allocated sequentially
// starting at 1.
//
// The package registers itself with the gl registry as "trace".
package gltrace

import (
	"errors"
	"fmt"
	"maps"
	"strings"

	"github.com/gogpu/gfx/gl"
)

func init() {
	gl.Register("trace", func() (gl.Context, error) {
		return New(), nil
	})
}

// ErrCompile is returned by CreateProgram after FailCompile was called.
var ErrCompile = errors.New("gltrace: program compile failed")

// Call is one recorded backend call.
type Call struct {
	Name string
	Args []any
}

// String formats the call like "BindBuffer(0x8892, 3)".
func (c Call) String() string {
	var sb strings.Builder
	sb.WriteString(c.Name)
	sb.WriteByte('(')
	for i, a := range c.Args {
		if i > 0 {
			sb.WriteString(", ")
		}
		switch v := a.(type) {
		case gl.Enum:
			fmt.Fprintf(&sb, "%#x", uint32(v))
		case []byte:
			fmt.Fprintf(&sb, "[%d bytes]", len(v))
		case string:
			fmt.Fprintf(&sb, "%q", v)
		default:
			fmt.Fprint(&sb, v)
		}
	}
	sb.WriteByte(')')
	return sb.String()
}

// Option configures a trace context.
type Option func(*Context)

// WithInteger overrides the value GetInteger returns for pname.
func WithInteger(pname gl.Enum, v int) Option {
	return func(c *Context) { c.ints[pname] = v }
}

// WithExtensions marks the named extensions as supported.
func WithExtensions(names ...string) Option {
	return func(c *Context) {
		for _, n := range names {
			c.extensions[n] = true
		}
	}
}

type traceProgram struct {
	blocks    []string
	locations map[string]int32
}

// Context records every gl.Context call.
//
// Context is not safe for concurrent use.
type Context struct {
	calls  []Call
	counts map[string]int

	next       gl.Object
	ints       map[gl.Enum]int
	extensions map[string]bool
	compileErr error

	programs     map[gl.Object]*traceProgram
	nextLocation int32

	buffers map[gl.Object][]byte
	bound   map[gl.Enum]gl.Object
	labels  map[gl.Object]string
}

var _ gl.Context = (*Context)(nil)

// New creates an empty trace context.
func New(opts ...Option) *Context {
	c := &Context{
		counts: make(map[string]int),
		ints: map[gl.Enum]int{
			gl.UNIFORM_BUFFER_OFFSET_ALIGNMENT:  256,
			gl.MAX_UNIFORM_BLOCK_SIZE:           0x10000,
			gl.MAX_COMBINED_TEXTURE_IMAGE_UNITS: 32,
		},
		extensions: make(map[string]bool),
		programs:   make(map[gl.Object]*traceProgram),
		buffers:    make(map[gl.Object][]byte),
		bound:      make(map[gl.Enum]gl.Object),
		labels:     make(map[gl.Object]string),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Calls returns the recorded calls in issue order.
func (c *Context) Calls() []Call { return c.calls }

// Count returns how many times the named call was issued.
func (c *Context) Count(name string) int { return c.counts[name] }

// Counts returns a copy of every per-name counter.
func (c *Context) Counts() map[string]int { return maps.Clone(c.counts) }

// CountMatching sums Count over names.
func (c *Context) CountMatching(names ...string) int {
	n := 0
	for _, name := range names {
		n += c.counts[name]
	}
	return n
}

// Total returns the number of recorded calls.
func (c *Context) Total() int { return len(c.calls) }

// Named returns the recorded calls with the given name, in order.
func (c *Context) Named(name string) []Call {
	var out []Call
	for _, call := range c.calls {
		if call.Name == name {
			out = append(out, call)
		}
	}
	return out
}

// Reset clears the trace and the counters. Objects and buffer contents
// survive.
func (c *Context) Reset() {
	c.calls = c.calls[:0]
	clear(c.counts)
}

// FailCompile makes subsequent CreateProgram calls fail with ErrCompile.
// Pass false to restore successful compilation.
func (c *Context) FailCompile(fail bool) {
	if fail {
		c.compileErr = ErrCompile
	} else {
		c.compileErr = nil
	}
}

// Label returns the label attached to an object by ObjectLabel.
func (c *Context) Label(name gl.Object) string { return c.labels[name] }

// Dump writes the trace, one call per line.
func (c *Context) Dump(sb *strings.Builder) {
	for i, call := range c.calls {
		fmt.Fprintf(sb, "%5d  %s\n", i, call)
	}
}

func (c *Context) record(name string, args ...any) {
	c.calls = append(c.calls, Call{Name: name, Args: args})
	c.counts[name]++
}

func (c *Context) alloc() gl.Object {
	c.next++
	return c.next
}

func (c *Context) CreateBuffer() gl.Object {
	b := c.alloc()
	c.record("CreateBuffer", b)
	return b
}

func (c *Context) DeleteBuffer(b gl.Object) {
	delete(c.buffers, b)
	c.record("DeleteBuffer", b)
}

func (c *Context) BindBuffer(target gl.Enum, b gl.Object) {
	c.bound[target] = b
	c.record("BindBuffer", target, b)
}

func (c *Context) BufferData(target gl.Enum, size int, usage gl.Enum) {
	if b := c.bound[target]; b != 0 {
		c.buffers[b] = make([]byte, size)
	}
	c.record("BufferData", target, size, usage)
}

func (c *Context) BufferSubData(target gl.Enum, offset int, data []byte) {
	if dst, ok := c.buffers[c.bound[target]]; ok && offset+len(data) <= len(dst) {
		copy(dst[offset:], data)
	}
	c.record("BufferSubData", target, offset, append([]byte(nil), data...))
}

func (c *Context) GetBufferSubData(target gl.Enum, offset int, dst []byte) {
	if src, ok := c.buffers[c.bound[target]]; ok && offset < len(src) {
		copy(dst, src[offset:])
	}
	c.record("GetBufferSubData", target, offset, len(dst))
}

// BufferContents returns the emulated storage of a buffer object.
func (c *Context) BufferContents(b gl.Object) []byte { return c.buffers[b] }

func (c *Context) BindBufferRange(target gl.Enum, index uint32, b gl.Object, offset, size int) {
	c.bound[target] = b
	c.record("BindBufferRange", target, index, b, offset, size)
}

func (c *Context) CreateTexture() gl.Object {
	t := c.alloc()
	c.record("CreateTexture", t)
	return t
}

func (c *Context) DeleteTexture(t gl.Object) { c.record("DeleteTexture", t) }
func (c *Context) ActiveTexture(unit gl.Enum) { c.record("ActiveTexture", unit) }

func (c *Context) BindTexture(target gl.Enum, t gl.Object) { c.record("BindTexture", target, t) }

func (c *Context) TexParameteri(target, pname gl.Enum, param int32) {
	c.record("TexParameteri", target, pname, param)
}

func (c *Context) TexStorage2D(target gl.Enum, levels int, internalFormat gl.Enum, width, height int) {
	c.record("TexStorage2D", target, levels, internalFormat, width, height)
}

func (c *Context) TexStorage3D(target gl.Enum, levels int, internalFormat gl.Enum, width, height, depth int) {
	c.record("TexStorage3D", target, levels, internalFormat, width, height, depth)
}

func (c *Context) TexSubImage2D(target gl.Enum, level, x, y, width, height int, format, typ gl.Enum, data []byte) {
	c.record("TexSubImage2D", target, level, x, y, width, height, format, typ, data)
}

func (c *Context) TexSubImage3D(target gl.Enum, level, x, y, z, width, height, depth int, format, typ gl.Enum, data []byte) {
	c.record("TexSubImage3D", target, level, x, y, z, width, height, depth, format, typ, data)
}

func (c *Context) CompressedTexSubImage2D(target gl.Enum, level, x, y, width, height int, format gl.Enum, data []byte) {
	c.record("CompressedTexSubImage2D", target, level, x, y, width, height, format, data)
}

func (c *Context) CompressedTexSubImage3D(target gl.Enum, level, x, y, z, width, height, depth int, format gl.Enum, data []byte) {
	c.record("CompressedTexSubImage3D", target, level, x, y, z, width, height, depth, format, data)
}

func (c *Context) CreateSampler() gl.Object {
	s := c.alloc()
	c.record("CreateSampler", s)
	return s
}

func (c *Context) DeleteSampler(s gl.Object) { c.record("DeleteSampler", s) }

func (c *Context) SamplerParameteri(s gl.Object, pname gl.Enum, param int32) {
	c.record("SamplerParameteri", s, pname, param)
}

func (c *Context) SamplerParameterf(s gl.Object, pname gl.Enum, param float32) {
	c.record("SamplerParameterf", s, pname, param)
}

func (c *Context) BindSampler(unit uint32, s gl.Object) { c.record("BindSampler", unit, s) }

func (c *Context) CreateRenderbuffer() gl.Object {
	rb := c.alloc()
	c.record("CreateRenderbuffer", rb)
	return rb
}

func (c *Context) DeleteRenderbuffer(rb gl.Object) { c.record("DeleteRenderbuffer", rb) }

func (c *Context) BindRenderbuffer(target gl.Enum, rb gl.Object) {
	c.record("BindRenderbuffer", target, rb)
}

func (c *Context) RenderbufferStorageMultisample(target gl.Enum, samples int, internalFormat gl.Enum, width, height int) {
	c.record("RenderbufferStorageMultisample", target, samples, internalFormat, width, height)
}

func (c *Context) CreateFramebuffer() gl.Object {
	fb := c.alloc()
	c.record("CreateFramebuffer", fb)
	return fb
}

func (c *Context) DeleteFramebuffer(fb gl.Object) { c.record("DeleteFramebuffer", fb) }

func (c *Context) BindFramebuffer(target gl.Enum, fb gl.Object) {
	c.record("BindFramebuffer", target, fb)
}

func (c *Context) FramebufferRenderbuffer(target, attachment, rbTarget gl.Enum, rb gl.Object) {
	c.record("FramebufferRenderbuffer", target, attachment, rbTarget, rb)
}

func (c *Context) FramebufferTexture2D(target, attachment, texTarget gl.Enum, t gl.Object, level int) {
	c.record("FramebufferTexture2D", target, attachment, texTarget, t, level)
}

func (c *Context) BlitFramebuffer(srcX0, srcY0, srcX1, srcY1, dstX0, dstY0, dstX1, dstY1 int, mask, filter gl.Enum) {
	c.record("BlitFramebuffer", srcX0, srcY0, srcX1, srcY1, dstX0, dstY0, dstX1, dstY1, mask, filter)
}

func (c *Context) CreateProgram(vertexSrc, fragmentSrc string) (gl.Object, error) {
	if c.compileErr != nil {
		c.record("CreateProgram", gl.Object(0))
		return 0, c.compileErr
	}
	p := c.alloc()
	c.programs[p] = &traceProgram{locations: make(map[string]int32)}
	c.record("CreateProgram", p)
	return p, nil
}

func (c *Context) DeleteProgram(p gl.Object) {
	delete(c.programs, p)
	c.record("DeleteProgram", p)
}

func (c *Context) UseProgram(p gl.Object) { c.record("UseProgram", p) }

func (c *Context) GetUniformBlockIndex(p gl.Object, name string) uint32 {
	prog, ok := c.programs[p]
	if !ok {
		return gl.INVALID_INDEX
	}
	for i, b := range prog.blocks {
		if b == name {
			return uint32(i)
		}
	}
	prog.blocks = append(prog.blocks, name)
	// #nosec G115 -- block count is tiny
	return uint32(len(prog.blocks) - 1)
}

func (c *Context) UniformBlockBinding(p gl.Object, blockIndex, binding uint32) {
	c.record("UniformBlockBinding", p, blockIndex, binding)
}

func (c *Context) GetUniformLocation(p gl.Object, name string) int32 {
	prog, ok := c.programs[p]
	if !ok {
		return -1
	}
	if loc, ok := prog.locations[name]; ok {
		return loc
	}
	loc := c.nextLocation
	c.nextLocation++
	prog.locations[name] = loc
	return loc
}

func (c *Context) Uniform1i(location, v int32) { c.record("Uniform1i", location, v) }

func (c *Context) CreateVertexArray() gl.Object {
	vao := c.alloc()
	c.record("CreateVertexArray", vao)
	return vao
}

func (c *Context) DeleteVertexArray(vao gl.Object) { c.record("DeleteVertexArray", vao) }
func (c *Context) BindVertexArray(vao gl.Object)   { c.record("BindVertexArray", vao) }

func (c *Context) EnableVertexAttribArray(location uint32) {
	c.record("EnableVertexAttribArray", location)
}

func (c *Context) VertexAttribPointer(location uint32, size int, typ gl.Enum, normalized bool, stride, offset int) {
	c.record("VertexAttribPointer", location, size, typ, normalized, stride, offset)
}

func (c *Context) VertexAttribIPointer(location uint32, size int, typ gl.Enum, stride, offset int) {
	c.record("VertexAttribIPointer", location, size, typ, stride, offset)
}

func (c *Context) VertexAttribDivisor(location, divisor uint32) {
	c.record("VertexAttribDivisor", location, divisor)
}

func (c *Context) Enable(capability gl.Enum)   { c.record("Enable", capability) }
func (c *Context) Disable(capability gl.Enum)  { c.record("Disable", capability) }
func (c *Context) ColorMask(r, g, b, a bool)   { c.record("ColorMask", r, g, b, a) }
func (c *Context) BlendEquation(mode gl.Enum)  { c.record("BlendEquation", mode) }
func (c *Context) BlendFunc(src, dst gl.Enum)  { c.record("BlendFunc", src, dst) }
func (c *Context) DepthFunc(f gl.Enum)         { c.record("DepthFunc", f) }
func (c *Context) DepthMask(flag bool)         { c.record("DepthMask", flag) }
func (c *Context) StencilMask(mask uint32)     { c.record("StencilMask", mask) }
func (c *Context) CullFace(mode gl.Enum)       { c.record("CullFace", mode) }
func (c *Context) FrontFace(mode gl.Enum)      { c.record("FrontFace", mode) }
func (c *Context) Clear(mask gl.Enum)          { c.record("Clear", mask) }
func (c *Context) ClearDepthf(d float32)       { c.record("ClearDepthf", d) }
func (c *Context) ClearStencil(s int32)        { c.record("ClearStencil", s) }
func (c *Context) Flush()                      { c.record("Flush") }
func (c *Context) StencilOp(fail, zfail, zpass gl.Enum) {
	c.record("StencilOp", fail, zfail, zpass)
}

func (c *Context) StencilFunc(f gl.Enum, ref int32, mask uint32) {
	c.record("StencilFunc", f, ref, mask)
}

func (c *Context) PolygonOffset(factor, units float32) {
	c.record("PolygonOffset", factor, units)
}

func (c *Context) Viewport(x, y, width, height int) {
	c.record("Viewport", x, y, width, height)
}

func (c *Context) ClearColor(r, g, b, a float32) { c.record("ClearColor", r, g, b, a) }

func (c *Context) DrawArrays(mode gl.Enum, first, count int) {
	c.record("DrawArrays", mode, first, count)
}

func (c *Context) DrawElements(mode gl.Enum, count int, typ gl.Enum, offset int) {
	c.record("DrawElements", mode, count, typ, offset)
}

func (c *Context) GetInteger(pname gl.Enum) int { return c.ints[pname] }

func (c *Context) SupportsExtension(name string) bool { return c.extensions[name] }

func (c *Context) ObjectLabel(identifier gl.Enum, name gl.Object, label string) {
	c.labels[name] = label
	c.record("ObjectLabel", identifier, name, label)
}
