package halgl

import (
	"encoding/binary"
	"fmt"
	"hash"
	"hash/fnv"
	"slices"
	"strings"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/gfx/gl"
)

// pipelineKey is every input of a hal render pipeline. GL state that hal
// sets dynamically (viewport, stencil reference) stays out.
type pipelineKey struct {
	program  gl.Object
	topology gputypes.PrimitiveTopology
	vertex   string

	colorFormat  gputypes.TextureFormat
	hasColor     bool
	depthFormat  gputypes.TextureFormat
	hasDepth     bool
	sampleCount  int
	blend        bool
	blendOp      gl.Enum
	blendSrc     gl.Enum
	blendDst     gl.Enum
	colorMask    [4]bool
	depthTest    bool
	depthFunc    gl.Enum
	depthMask    bool
	stencilTest  bool
	stencilFunc  gl.Enum
	stencilRead  uint32
	stencilWrite uint32
	stencilFail  gl.Enum
	stencilZFail gl.Enum
	stencilPass  gl.Enum
	cull         bool
	cullFace     gl.Enum
	frontFace    gl.Enum
}

func hashWriteUint32(h hash.Hash64, v uint32) {
	var buf [4]byte
	binary.LittleEndian.PutUint32(buf[:], v)
	h.Write(buf[:])
}

func hashWriteBool(h hash.Hash64, v bool) {
	if v {
		h.Write([]byte{1})
	} else {
		h.Write([]byte{0})
	}
}

func (k pipelineKey) hash() uint64 {
	h := fnv.New64a()
	hashWriteUint32(h, uint32(k.program))
	hashWriteUint32(h, uint32(k.topology))
	h.Write([]byte(k.vertex))
	hashWriteUint32(h, uint32(k.colorFormat))
	hashWriteBool(h, k.hasColor)
	hashWriteUint32(h, uint32(k.depthFormat))
	hashWriteBool(h, k.hasDepth)
	hashWriteUint32(h, uint32(k.sampleCount))
	hashWriteBool(h, k.blend)
	for _, e := range []gl.Enum{k.blendOp, k.blendSrc, k.blendDst, k.depthFunc, k.stencilFunc,
		k.stencilFail, k.stencilZFail, k.stencilPass, k.cullFace, k.frontFace} {
		hashWriteUint32(h, uint32(e))
	}
	for _, m := range k.colorMask {
		hashWriteBool(h, m)
	}
	hashWriteBool(h, k.depthTest)
	hashWriteBool(h, k.depthMask)
	hashWriteBool(h, k.stencilTest)
	hashWriteUint32(h, k.stencilRead)
	hashWriteUint32(h, k.stencilWrite)
	hashWriteBool(h, k.cull)
	return h.Sum64()
}

// vertexSlot is a vertex buffer binding for one draw.
type vertexSlot struct {
	buffer gl.Object
	offset int
}

// vertexFormat maps a VertexAttribPointer description to a hal format.
func vertexFormat(a *vertexAttrib) (gputypes.VertexFormat, int, error) {
	type key struct {
		typ        gl.Enum
		size       int
		normalized bool
	}
	formats := map[key]gputypes.VertexFormat{
		{gl.FLOAT, 1, false}:          gputypes.VertexFormatFloat32,
		{gl.FLOAT, 2, false}:          gputypes.VertexFormatFloat32x2,
		{gl.FLOAT, 3, false}:          gputypes.VertexFormatFloat32x3,
		{gl.FLOAT, 4, false}:          gputypes.VertexFormatFloat32x4,
		{gl.UNSIGNED_BYTE, 2, true}:   gputypes.VertexFormatUnorm8x2,
		{gl.UNSIGNED_BYTE, 4, true}:   gputypes.VertexFormatUnorm8x4,
		{gl.UNSIGNED_BYTE, 2, false}:  gputypes.VertexFormatUint8x2,
		{gl.UNSIGNED_BYTE, 4, false}:  gputypes.VertexFormatUint8x4,
		{gl.BYTE, 2, true}:            gputypes.VertexFormatSnorm8x2,
		{gl.BYTE, 4, true}:            gputypes.VertexFormatSnorm8x4,
		{gl.UNSIGNED_SHORT, 2, true}:  gputypes.VertexFormatUnorm16x2,
		{gl.UNSIGNED_SHORT, 4, true}:  gputypes.VertexFormatUnorm16x4,
		{gl.UNSIGNED_SHORT, 2, false}: gputypes.VertexFormatUint16x2,
		{gl.UNSIGNED_SHORT, 4, false}: gputypes.VertexFormatUint16x4,
		{gl.SHORT, 2, true}:           gputypes.VertexFormatSnorm16x2,
		{gl.SHORT, 4, true}:           gputypes.VertexFormatSnorm16x4,
		{gl.UNSIGNED_INT, 1, false}:   gputypes.VertexFormatUint32,
		{gl.UNSIGNED_INT, 2, false}:   gputypes.VertexFormatUint32x2,
		{gl.UNSIGNED_INT, 3, false}:   gputypes.VertexFormatUint32x3,
		{gl.UNSIGNED_INT, 4, false}:   gputypes.VertexFormatUint32x4,
		{gl.HALF_FLOAT, 2, false}:     gputypes.VertexFormatFloat16x2,
		{gl.HALF_FLOAT, 4, false}:     gputypes.VertexFormatFloat16x4,
	}
	f, ok := formats[key{a.typ, a.size, a.normalized}]
	if !ok {
		return 0, 0, fmt.Errorf("%w: %d x %#x vertex attribute (normalized %v)",
			ErrUnsupported, a.size, uint32(a.typ), a.normalized)
	}
	return f, a.size * componentBytes(a.typ), nil
}

func componentBytes(typ gl.Enum) int {
	switch typ {
	case gl.BYTE, gl.UNSIGNED_BYTE:
		return 1
	case gl.SHORT, gl.UNSIGNED_SHORT, gl.HALF_FLOAT:
		return 2
	}
	return 4
}

// vertexLayout groups the enabled attributes of v into hal vertex buffers,
// one per distinct buffer, stride and step rate. Each buffer is bound at
// its smallest attribute offset.
func vertexLayout(v *vertexArray) ([]gputypes.VertexBufferLayout, []vertexSlot, string, error) {
	locations := make([]uint32, 0, len(v.attribs))
	for loc, a := range v.attribs {
		if a.enabled {
			locations = append(locations, loc)
		}
	}
	slices.Sort(locations)

	type group struct {
		buffer  gl.Object
		stride  int
		divisor uint32
	}
	var (
		groups  []group
		layouts []gputypes.VertexBufferLayout
		slots   []vertexSlot
		sig     strings.Builder
	)
	for _, loc := range locations {
		a := v.attribs[loc]
		format, size, err := vertexFormat(a)
		if err != nil {
			return nil, nil, "", err
		}
		stride := a.stride
		if stride == 0 {
			stride = size
		}
		g := group{a.buffer, stride, a.divisor}
		i := slices.Index(groups, g)
		if i < 0 {
			i = len(groups)
			groups = append(groups, g)
			step := gputypes.VertexStepModeVertex
			if a.divisor > 0 {
				step = gputypes.VertexStepModeInstance
			}
			layouts = append(layouts, gputypes.VertexBufferLayout{ArrayStride: uint64(stride), StepMode: step})
			slots = append(slots, vertexSlot{buffer: a.buffer, offset: a.offset})
		}
		slots[i].offset = min(slots[i].offset, a.offset)
		layouts[i].Attributes = append(layouts[i].Attributes, gputypes.VertexAttribute{
			Format:         format,
			Offset:         uint64(a.offset),
			ShaderLocation: loc,
		})
	}

	for i := range layouts {
		fmt.Fprintf(&sig, "%d/%d:", layouts[i].ArrayStride, layouts[i].StepMode)
		for j := range layouts[i].Attributes {
			attr := &layouts[i].Attributes[j]
			attr.Offset -= uint64(slots[i].offset)
			fmt.Fprintf(&sig, "%d@%d=%d,", attr.ShaderLocation, attr.Offset, attr.Format)
		}
		sig.WriteByte(';')
	}
	return layouts, slots, sig.String(), nil
}

var blendFactors = map[gl.Enum]gputypes.BlendFactor{
	gl.ZERO:                gputypes.BlendFactorZero,
	gl.ONE:                 gputypes.BlendFactorOne,
	gl.SRC_COLOR:           gputypes.BlendFactorSrc,
	gl.ONE_MINUS_SRC_COLOR: gputypes.BlendFactorOneMinusSrc,
	gl.SRC_ALPHA:           gputypes.BlendFactorSrcAlpha,
	gl.ONE_MINUS_SRC_ALPHA: gputypes.BlendFactorOneMinusSrcAlpha,
	gl.DST_COLOR:           gputypes.BlendFactorDst,
	gl.ONE_MINUS_DST_COLOR: gputypes.BlendFactorOneMinusDst,
	gl.DST_ALPHA:           gputypes.BlendFactorDstAlpha,
	gl.ONE_MINUS_DST_ALPHA: gputypes.BlendFactorOneMinusDstAlpha,
}

var blendOperations = map[gl.Enum]gputypes.BlendOperation{
	gl.FUNC_ADD:              gputypes.BlendOperationAdd,
	gl.FUNC_SUBTRACT:         gputypes.BlendOperationSubtract,
	gl.FUNC_REVERSE_SUBTRACT: gputypes.BlendOperationReverseSubtract,
	gl.MIN:                   gputypes.BlendOperationMin,
	gl.MAX:                   gputypes.BlendOperationMax,
}

var compareFunctions = map[gl.Enum]gputypes.CompareFunction{
	gl.NEVER:    gputypes.CompareFunctionNever,
	gl.LESS:     gputypes.CompareFunctionLess,
	gl.EQUAL:    gputypes.CompareFunctionEqual,
	gl.LEQUAL:   gputypes.CompareFunctionLessEqual,
	gl.GREATER:  gputypes.CompareFunctionGreater,
	gl.NOTEQUAL: gputypes.CompareFunctionNotEqual,
	gl.GEQUAL:   gputypes.CompareFunctionGreaterEqual,
	gl.ALWAYS:   gputypes.CompareFunctionAlways,
}

var stencilOperations = map[gl.Enum]hal.StencilOperation{
	gl.KEEP:      hal.StencilOperationKeep,
	gl.ZERO:      hal.StencilOperationZero,
	gl.REPLACE:   hal.StencilOperationReplace,
	gl.INCR:      hal.StencilOperationIncrementClamp,
	gl.DECR:      hal.StencilOperationDecrementClamp,
	gl.INVERT:    hal.StencilOperationInvert,
	gl.INCR_WRAP: hal.StencilOperationIncrementWrap,
	gl.DECR_WRAP: hal.StencilOperationDecrementWrap,
}

var topologies = map[gl.Enum]gputypes.PrimitiveTopology{
	gl.POINTS:         gputypes.PrimitiveTopologyPointList,
	gl.LINES:          gputypes.PrimitiveTopologyLineList,
	gl.LINE_STRIP:     gputypes.PrimitiveTopologyLineStrip,
	gl.TRIANGLES:      gputypes.PrimitiveTopologyTriangleList,
	gl.TRIANGLE_STRIP: gputypes.PrimitiveTopologyTriangleStrip,
}

// lookup translates a GL enum through table, recording unknown values.
func lookup[V any](c *Context, table map[gl.Enum]V, e gl.Enum, what string) V {
	v, ok := table[e]
	if !ok {
		c.failf("%w: %s %#x", ErrUnsupported, what, uint32(e))
	}
	return v
}

func (c *Context) pipelineDescriptor(k *pipelineKey, p *program, buffers []gputypes.VertexBufferLayout) *hal.RenderPipelineDescriptor {
	desc := &hal.RenderPipelineDescriptor{
		Label:  fmt.Sprintf("halgl_pipeline_%d", k.program),
		Layout: p.pipeLayout,
		Vertex: hal.VertexState{
			Module:     p.vs,
			EntryPoint: p.layout.vsEntry,
			Buffers:    buffers,
		},
		Primitive: gputypes.PrimitiveState{
			Topology:  k.topology,
			FrontFace: gputypes.FrontFaceCCW,
			CullMode:  gputypes.CullModeNone,
		},
		Multisample: gputypes.MultisampleState{
			Count: uint32(k.sampleCount),
			Mask:  0xFFFFFFFF,
		},
	}
	if k.frontFace == gl.CW {
		desc.Primitive.FrontFace = gputypes.FrontFaceCW
	}
	if k.cull {
		switch k.cullFace {
		case gl.FRONT:
			desc.Primitive.CullMode = gputypes.CullModeFront
		case gl.BACK:
			desc.Primitive.CullMode = gputypes.CullModeBack
		default:
			c.warnOnce("cull-front-and-back", "halgl: FRONT_AND_BACK culling draws both faces")
		}
	}

	frag := &hal.FragmentState{Module: p.fs, EntryPoint: p.layout.fsEntry}
	if k.hasColor {
		target := gputypes.ColorTargetState{Format: k.colorFormat}
		for i, bit := range []gputypes.ColorWriteMask{
			gputypes.ColorWriteMaskRed, gputypes.ColorWriteMaskGreen,
			gputypes.ColorWriteMaskBlue, gputypes.ColorWriteMaskAlpha,
		} {
			if k.colorMask[i] {
				target.WriteMask |= bit
			}
		}
		if k.blend {
			comp := gputypes.BlendComponent{
				SrcFactor: lookup(c, blendFactors, k.blendSrc, "blend factor"),
				DstFactor: lookup(c, blendFactors, k.blendDst, "blend factor"),
				Operation: lookup(c, blendOperations, k.blendOp, "blend equation"),
			}
			target.Blend = &gputypes.BlendState{Color: comp, Alpha: comp}
		}
		frag.Targets = []gputypes.ColorTargetState{target}
	}
	desc.Fragment = frag

	if k.hasDepth {
		// A disabled depth test also disables depth writes.
		ds := &hal.DepthStencilState{
			Format:            k.depthFormat,
			DepthWriteEnabled: k.depthTest && k.depthMask,
			DepthCompare:      gputypes.CompareFunctionAlways,
			StencilFront:      keepStencil(),
			StencilBack:       keepStencil(),
		}
		if k.depthTest {
			ds.DepthCompare = lookup(c, compareFunctions, k.depthFunc, "depth function")
		}
		if k.stencilTest {
			face := hal.StencilFaceState{
				Compare:     lookup(c, compareFunctions, k.stencilFunc, "stencil function"),
				FailOp:      lookup(c, stencilOperations, k.stencilFail, "stencil op"),
				DepthFailOp: lookup(c, stencilOperations, k.stencilZFail, "stencil op"),
				PassOp:      lookup(c, stencilOperations, k.stencilPass, "stencil op"),
			}
			ds.StencilFront, ds.StencilBack = face, face
			ds.StencilReadMask = k.stencilRead
			ds.StencilWriteMask = k.stencilWrite
		}
		desc.DepthStencil = ds
	}
	return desc
}

func keepStencil() hal.StencilFaceState {
	return hal.StencilFaceState{
		Compare:     gputypes.CompareFunctionAlways,
		FailOp:      hal.StencilOperationKeep,
		DepthFailOp: hal.StencilOperationKeep,
		PassOp:      hal.StencilOperationKeep,
	}
}

// pipelineFor returns the cached pipeline for the current state, creating
// it on a miss.
func (c *Context) pipelineFor(mode gl.Enum, p *program, color, depth *target,
	buffers []gputypes.VertexBufferLayout, sig string) (hal.RenderPipeline, error) {
	s := &c.state
	k := pipelineKey{
		program:      c.current,
		topology:     lookup(c, topologies, mode, "draw mode"),
		vertex:       sig,
		sampleCount:  1,
		blend:        s.blend,
		blendOp:      s.blendEquation,
		blendSrc:     s.blendSrc,
		blendDst:     s.blendDst,
		colorMask:    s.colorMask,
		depthTest:    s.depthTest,
		depthFunc:    s.depthFunc,
		depthMask:    s.depthMask,
		stencilTest:  s.stencilTest,
		stencilFunc:  s.stencilFunc,
		stencilRead:  s.stencilReadMask & 0xFF,
		stencilWrite: s.stencilWriteMask & 0xFF,
		stencilFail:  s.stencilFail,
		stencilZFail: s.stencilZFail,
		stencilPass:  s.stencilPass,
		cull:         s.cull,
		cullFace:     s.cullFace,
		frontFace:    s.frontFace,
	}
	if color != nil {
		k.hasColor, k.colorFormat, k.sampleCount = true, color.format, color.samples
	}
	if depth != nil {
		k.hasDepth, k.depthFormat, k.sampleCount = true, depth.format, depth.samples
	}
	if !k.blend {
		k.blendOp, k.blendSrc, k.blendDst = 0, 0, 0
	}
	if !k.stencilTest {
		k.stencilFunc, k.stencilRead, k.stencilWrite = 0, 0, 0
		k.stencilFail, k.stencilZFail, k.stencilPass = 0, 0, 0
	}
	if !k.cull {
		k.cullFace = 0
	}

	return c.pipelines.GetOrCreate(k, func() (hal.RenderPipeline, error) {
		Logger().Debug("halgl: pipeline cache miss", "program", k.program, "vertex", sig)
		pipe, err := c.device.CreateRenderPipeline(c.pipelineDescriptor(&k, p, buffers))
		if err != nil {
			return nil, fmt.Errorf("halgl: create render pipeline: %w", err)
		}
		return pipe, nil
	})
}

// purgePipelines drops the cached pipelines built from program.
func (c *Context) purgePipelines(program gl.Object) {
	var keys []pipelineKey
	var pipes []hal.RenderPipeline
	c.pipelines.Range(func(k pipelineKey, p hal.RenderPipeline) bool {
		if k.program == program {
			keys = append(keys, k)
			pipes = append(pipes, p)
		}
		return true
	})
	for _, k := range keys {
		c.pipelines.Delete(k)
	}
	for _, p := range pipes {
		c.retire(func() { c.device.DestroyRenderPipeline(p) })
	}
}
