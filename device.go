package gfx

import (
	"fmt"

	"github.com/gogpu/gfx/gl"
	"github.com/gogpu/gfx/internal/cmdbuf"
)

// Device records passes and replays them against one gl.Context.
//
// The device owns every backend object it creates and mirrors the backend's
// bound state so that replay only issues calls that change something.
// A Device and the passes it hands out must be used from one goroutine;
// passes may be recorded elsewhere but are submitted in order here.
type Device struct {
	gl   gl.Context
	opts deviceOptions

	uniformPageSize  int
	uniformAlignment int
	hasS3TC          bool
	hasS3TCSRGB      bool

	programs map[programKey]*compiledProgram
	// lastProgramKey is the last unique key handed out; keys are never
	// reused, unlike backend object names.
	lastProgramKey uint64

	renderPasses *cmdbuf.Pool[*RenderPass]
	uploadPasses *cmdbuf.Pool[*UploadPass]

	// Mirror of the backend's bound state.
	megaState      MegaState
	activeTexture  gl.Enum
	boundVAO       gl.Object
	boundBuffers   map[gl.Enum]gl.Object
	program        gl.Object
	samplers       []gl.Object
	textures       []gl.Object
	uniformBuffers []*Buffer
	uniformOffsets []int
	stencilRef     uint32
	viewportW      int
	viewportH      int

	renderTarget *RenderTarget
	pipeline     *RenderPipeline
	inputState   *InputState

	resolveReadFB gl.Object
	resolveDrawFB gl.Object

	debugGroups []*DebugGroup

	swapChain swapChain

	destroyed bool
}

// NewDevice creates a device on ctx.
//
// The device assumes ctx is in its power-on state: nothing bound, default
// fixed-function state.
func NewDevice(ctx gl.Context, opts ...Option) *Device {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	d := &Device{
		gl:              ctx,
		opts:            o,
		uniformPageSize: o.uniformPageSize,
		programs:        make(map[programKey]*compiledProgram),
		megaState:       powerOnMegaState(),
		boundBuffers:    make(map[gl.Enum]gl.Object),
		viewportW:       -1,
		viewportH:       -1,
	}

	if maxBlock := ctx.GetInteger(gl.MAX_UNIFORM_BLOCK_SIZE); maxBlock > 0 && maxBlock < d.uniformPageSize {
		Logger().Warn("gfx: uniform page size clamped to backend limit",
			"requested", d.uniformPageSize, "limit", maxBlock)
		d.uniformPageSize = maxBlock &^ 3
	}
	d.uniformAlignment = ctx.GetInteger(gl.UNIFORM_BUFFER_OFFSET_ALIGNMENT)
	if d.uniformAlignment <= 0 {
		d.uniformAlignment = 4
	}
	units := ctx.GetInteger(gl.MAX_COMBINED_TEXTURE_IMAGE_UNITS)
	if units <= 0 {
		units = 16
	}
	d.samplers = make([]gl.Object, units)
	d.textures = make([]gl.Object, units)
	d.hasS3TC = ctx.SupportsExtension(gl.ExtCompressedTextureS3TC)
	d.hasS3TCSRGB = ctx.SupportsExtension(gl.ExtCompressedTextureS3TCSRGB)

	d.renderPasses = cmdbuf.NewPool(func() *RenderPass { return &RenderPass{} })
	d.uploadPasses = cmdbuf.NewPool(func() *UploadPass { return &UploadPass{} })
	d.renderPasses.Warm(o.renderPassPoolSize)
	d.uploadPasses.Warm(o.uploadPassPoolSize)

	Logger().Info("gfx: device created",
		"uniformPageSize", d.uniformPageSize,
		"uniformAlignment", d.uniformAlignment,
		"textureUnits", units,
		"s3tc", d.hasS3TC,
		"s3tcSRGB", d.hasS3TCSRGB,
	)
	return d
}

// Context returns the backend context the device replays into.
func (d *Device) Context() gl.Context { return d.gl }

// QueryLimits returns the device limits.
func (d *Device) QueryLimits() Limits {
	return Limits{
		UniformBufferWordAlignment:   d.uniformAlignment / 4,
		UniformBufferMaxPageWordSize: d.uniformPageSize / 4,
	}
}

// QueryProgram returns the reflection of p.
func (d *Device) QueryProgram(p *Program) ProgramReflection {
	return p.compiled.reflection
}

// QueryInputState returns the reflection of s.
func (d *Device) QueryInputState(s *InputState) InputStateReflection {
	return InputStateReflection{InputLayout: s.layout}
}

// QueryTextureFormatSupported reports whether textures of format f can be
// created. Compressed formats depend on backend extensions; every other
// format is supported.
func (d *Device) QueryTextureFormatSupported(f Format) bool {
	switch f {
	case FormatBC1SRGB, FormatBC3SRGB:
		return d.hasS3TCSRGB
	case FormatBC1, FormatBC3:
		return d.hasS3TC
	default:
		return true
	}
}

// Destroy releases the objects the device created for its own use: the
// resolve framebuffers and the swap chain. Resources created through the
// Create methods stay owned by the caller.
func (d *Device) Destroy() {
	if d.destroyed {
		return
	}
	d.destroyed = true
	if d.resolveReadFB != 0 {
		d.gl.DeleteFramebuffer(d.resolveReadFB)
		d.gl.DeleteFramebuffer(d.resolveDrawFB)
		d.resolveReadFB, d.resolveDrawFB = 0, 0
	}
	d.destroySwapChain()
	Logger().Info("gfx: device destroyed",
		"renderPasses", d.renderPasses.Allocated(),
		"uploadPasses", d.uploadPasses.Allocated(),
	)
}

// checkLive panics if validation is on and r has been destroyed.
func (d *Device) checkLive(r Resource) {
	if d.opts.validation && r.header().destroyed {
		panic(fmt.Errorf("%w: %T %q", ErrDestroyed, r, r.ResourceName()))
	}
}

func (d *Device) setActiveTexture(unit gl.Enum) {
	if d.activeTexture != unit {
		d.gl.ActiveTexture(unit)
		d.activeTexture = unit
	}
}

func (d *Device) bindVAO(vao gl.Object) {
	if d.boundVAO != vao {
		d.gl.BindVertexArray(vao)
		d.boundVAO = vao
	}
}

// bindBuffer binds b to target outside of any vertex array, so that index
// buffer bindings never leak into an input state. The cached element array
// binding is the one of vertex array 0, so vertex array 0 is bound before it
// is compared.
func (d *Device) bindBuffer(target gl.Enum, b gl.Object) {
	if target == gl.ELEMENT_ARRAY_BUFFER {
		d.bindVAO(0)
	}
	if d.boundBuffers[target] != b {
		d.bindVAO(0)
		d.gl.BindBuffer(target, b)
		d.boundBuffers[target] = b
	}
}

func (d *Device) useProgram(p gl.Object) {
	if d.program != p {
		d.gl.UseProgram(p)
		d.program = p
	}
}

// textureUnit returns the cache slot for unit, growing the caches when a
// binding layout addresses more units than the backend reported.
func (d *Device) textureUnit(unit int) int {
	for unit >= len(d.textures) {
		d.textures = append(d.textures, 0)
		d.samplers = append(d.samplers, 0)
	}
	return unit
}

func (d *Device) uniformSlot(index int) int {
	for index >= len(d.uniformBuffers) {
		d.uniformBuffers = append(d.uniformBuffers, nil)
		d.uniformOffsets = append(d.uniformOffsets, 0)
	}
	return index
}
