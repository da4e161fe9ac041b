package halgl

import (
	"github.com/gogpu/gfx/gl"
)

// fixedState is the GL state folded into render pipelines.
type fixedState struct {
	blend              bool
	blendEquation      gl.Enum
	blendSrc, blendDst gl.Enum
	colorMask          [4]bool
	depthTest          bool
	depthFunc          gl.Enum
	depthMask          bool
	stencilTest        bool
	stencilFunc        gl.Enum
	stencilRef         int32
	stencilReadMask    uint32
	stencilWriteMask   uint32
	stencilFail        gl.Enum
	stencilZFail       gl.Enum
	stencilPass        gl.Enum
	cull               bool
	cullFace           gl.Enum
	frontFace          gl.Enum
	clearColor         [4]float32
	clearDepth         float32
	clearStencil       int32
}

// defaultFixedState is the GL power-on state.
func defaultFixedState() fixedState {
	return fixedState{
		blendEquation:    gl.FUNC_ADD,
		blendSrc:         gl.ONE,
		blendDst:         gl.ZERO,
		colorMask:        [4]bool{true, true, true, true},
		depthFunc:        gl.LESS,
		depthMask:        true,
		stencilFunc:      gl.ALWAYS,
		stencilReadMask:  0xFFFFFFFF,
		stencilWriteMask: 0xFFFFFFFF,
		stencilFail:      gl.KEEP,
		stencilZFail:     gl.KEEP,
		stencilPass:      gl.KEEP,
		cullFace:         gl.BACK,
		frontFace:        gl.CCW,
		clearDepth:       1,
	}
}

func (c *Context) setCapability(capability gl.Enum, on bool) {
	switch capability {
	case gl.BLEND:
		c.state.blend = on
	case gl.DEPTH_TEST:
		c.state.depthTest = on
	case gl.STENCIL_TEST:
		c.state.stencilTest = on
	case gl.CULL_FACE:
		c.state.cull = on
	case gl.POLYGON_OFFSET_FILL:
		if on {
			c.warnOnce("polygon-offset", "halgl: polygon offset is not applied")
		}
	default:
		c.failf("%w: capability %#x", ErrUnsupported, uint32(capability))
	}
}

func (c *Context) Enable(capability gl.Enum)  { c.setCapability(capability, true) }
func (c *Context) Disable(capability gl.Enum) { c.setCapability(capability, false) }

func (c *Context) ColorMask(r, g, b, a bool)  { c.state.colorMask = [4]bool{r, g, b, a} }
func (c *Context) BlendEquation(mode gl.Enum) { c.state.blendEquation = mode }

func (c *Context) BlendFunc(src, dst gl.Enum) {
	c.state.blendSrc, c.state.blendDst = src, dst
}

func (c *Context) DepthFunc(f gl.Enum)    { c.state.depthFunc = f }
func (c *Context) DepthMask(flag bool)    { c.state.depthMask = flag }
func (c *Context) CullFace(mode gl.Enum)  { c.state.cullFace = mode }
func (c *Context) FrontFace(mode gl.Enum) { c.state.frontFace = mode }

// StencilFunc keeps the reference outside the pipeline key; it is set on
// the render pass at draw time.
func (c *Context) StencilFunc(f gl.Enum, ref int32, mask uint32) {
	c.state.stencilFunc = f
	c.state.stencilRef = ref
	c.state.stencilReadMask = mask
}

func (c *Context) StencilMask(mask uint32) { c.state.stencilWriteMask = mask }

func (c *Context) StencilOp(fail, zfail, zpass gl.Enum) {
	c.state.stencilFail, c.state.stencilZFail, c.state.stencilPass = fail, zfail, zpass
}

// PolygonOffset is accepted and dropped. Depth bias lives in hal pipeline
// depth state, which the backend keys without it.
func (c *Context) PolygonOffset(float32, float32) {}

func (c *Context) Viewport(x, y, width, height int) {
	c.viewport = [4]int{x, y, width, height}
}

func (c *Context) ClearColor(r, g, b, a float32) { c.state.clearColor = [4]float32{r, g, b, a} }
func (c *Context) ClearDepthf(d float32)         { c.state.clearDepth = d }
func (c *Context) ClearStencil(s int32)          { c.state.clearStencil = s }

// vertexAttrib is one VertexAttribPointer call.
type vertexAttrib struct {
	enabled    bool
	buffer     gl.Object
	size       int
	typ        gl.Enum
	normalized bool
	integer    bool
	stride     int
	offset     int
	divisor    uint32
}

type vertexArray struct {
	attribs map[uint32]*vertexAttrib
	element gl.Object
	label   string
}

func newVertexArray() *vertexArray {
	return &vertexArray{attribs: make(map[uint32]*vertexAttrib)}
}

func (v *vertexArray) attrib(location uint32) *vertexAttrib {
	a := v.attribs[location]
	if a == nil {
		a = &vertexAttrib{}
		v.attribs[location] = a
	}
	return a
}

func (c *Context) CreateVertexArray() gl.Object {
	obj := c.alloc()
	c.vaos[obj] = newVertexArray()
	return obj
}

func (c *Context) DeleteVertexArray(obj gl.Object) {
	if obj == 0 {
		return
	}
	delete(c.vaos, obj)
	if c.vao == obj {
		c.vao = 0
	}
}

func (c *Context) BindVertexArray(obj gl.Object) {
	if c.vaos[obj] == nil {
		c.failf("%w: vertex array %d", ErrInvalidObject, obj)
		return
	}
	c.vao = obj
}

func (c *Context) EnableVertexAttribArray(location uint32) {
	c.vaos[c.vao].attrib(location).enabled = true
}

func (c *Context) VertexAttribPointer(location uint32, size int, typ gl.Enum, normalized bool, stride, offset int) {
	a := c.vaos[c.vao].attrib(location)
	a.buffer, a.size, a.typ = c.arrayBuffer, size, typ
	a.normalized, a.integer = normalized, false
	a.stride, a.offset = stride, offset
}

func (c *Context) VertexAttribIPointer(location uint32, size int, typ gl.Enum, stride, offset int) {
	a := c.vaos[c.vao].attrib(location)
	a.buffer, a.size, a.typ = c.arrayBuffer, size, typ
	a.normalized, a.integer = false, true
	a.stride, a.offset = stride, offset
}

func (c *Context) VertexAttribDivisor(location, divisor uint32) {
	c.vaos[c.vao].attrib(location).divisor = divisor
}
