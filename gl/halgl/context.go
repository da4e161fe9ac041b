package halgl

import (
	"errors"
	"fmt"
	"time"

	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
	"github.com/gogpu/wgpu/hal/noop"

	"github.com/gogpu/gfx/gl"
	"github.com/gogpu/gfx/internal/cache"
)

// Limits reported through GetInteger. They are the WebGPU defaults, which
// every hal backend meets.
const (
	maxUniformBlockSize    = 64 << 10
	uniformOffsetAlignment = 256
	maxTextureUnits        = 16
)

func init() {
	gl.Register("noop", func() (gl.Context, error) { return NewNoop() })
}

// Context implements gl.Context on a hal device. It is not safe for
// concurrent use.
type Context struct {
	device hal.Device
	queue  hal.Queue
	opts   options

	// Set when the context created the device and must release it.
	instance   hal.Instance
	ownsDevice bool

	nextObject gl.Object
	buffers    map[gl.Object]*buffer
	textures   map[gl.Object]*texture
	samplers   map[gl.Object]*sampler
	rbs        map[gl.Object]*renderbuffer
	fbs        map[gl.Object]*framebuffer
	vaos       map[gl.Object]*vertexArray
	programs   map[gl.Object]*program

	// Bindings.
	arrayBuffer   gl.Object
	uniformBuffer gl.Object
	uniformSlots  []uniformRange
	units         []textureUnit
	activeUnit    int
	renderbuffer  gl.Object
	readFB        gl.Object
	drawFB        gl.Object
	vao           gl.Object
	current       gl.Object

	state    fixedState
	viewport [4]int

	surface *framebuffer

	// Recording.
	encoder    hal.CommandEncoder
	pass       hal.RenderPassEncoder
	passFB     gl.Object
	passPipe   hal.RenderPipeline
	pipelines  *cache.Store[pipelineKey, hal.RenderPipeline]
	retired    []func()
	warnedOnce map[string]bool

	err error
}

// New creates a context that records into device and submits to queue. The
// caller keeps ownership of both.
func New(device hal.Device, queue hal.Queue, opts ...Option) (*Context, error) {
	if device == nil || queue == nil {
		return nil, ErrNilDevice
	}
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	c := &Context{
		device:     device,
		queue:      queue,
		opts:       o,
		buffers:    make(map[gl.Object]*buffer),
		textures:   make(map[gl.Object]*texture),
		samplers:   make(map[gl.Object]*sampler),
		rbs:        make(map[gl.Object]*renderbuffer),
		fbs:        make(map[gl.Object]*framebuffer),
		vaos:       make(map[gl.Object]*vertexArray),
		programs:   make(map[gl.Object]*program),
		units:      make([]textureUnit, maxTextureUnits),
		state:      defaultFixedState(),
		warnedOnce: make(map[string]bool),
	}
	c.vaos[0] = newVertexArray()
	c.pipelines = cache.New[pipelineKey, hal.RenderPipeline](
		func(k pipelineKey) uint64 { return k.hash() },
		func(a, b pipelineKey) bool { return a == b },
		o.pipelineCacheLimit,
	)
	c.pipelines.OnEvict(func(_ pipelineKey, p hal.RenderPipeline) {
		c.retire(func() { c.device.DestroyRenderPipeline(p) })
	})

	surface, err := c.createSurface(o.surfaceWidth, o.surfaceHeight)
	if err != nil {
		return nil, err
	}
	c.surface = surface
	c.viewport = [4]int{0, 0, o.surfaceWidth, o.surfaceHeight}

	Logger().Info("halgl: context created",
		"surface_width", o.surfaceWidth, "surface_height", o.surfaceHeight)
	return c, nil
}

// halProvider is implemented by device providers that expose hal objects.
type halProvider interface {
	HalDevice() any
	HalQueue() any
}

// NewFromProvider creates a context on the hal device of a host
// application's device provider.
func NewFromProvider(p gpucontext.DeviceProvider, opts ...Option) (*Context, error) {
	hp, ok := p.(halProvider)
	if !ok {
		return nil, ErrNoHalProvider
	}
	device, ok := hp.HalDevice().(hal.Device)
	if !ok {
		return nil, fmt.Errorf("%w: HalDevice is %T", ErrNoHalProvider, hp.HalDevice())
	}
	queue, ok := hp.HalQueue().(hal.Queue)
	if !ok {
		return nil, fmt.Errorf("%w: HalQueue is %T", ErrNoHalProvider, hp.HalQueue())
	}
	return New(device, queue, opts...)
}

// NewNoop creates a context on the hal noop backend. Commands are validated
// and recorded but nothing is rendered.
func NewNoop(opts ...Option) (*Context, error) {
	api := noop.API{}
	instance, err := api.CreateInstance(nil)
	if err != nil {
		return nil, fmt.Errorf("halgl: create noop instance: %w", err)
	}
	adapters := instance.EnumerateAdapters(nil)
	if len(adapters) == 0 {
		instance.Destroy()
		return nil, errors.New("halgl: noop backend has no adapters")
	}
	open, err := adapters[0].Adapter.Open(0, gputypes.DefaultLimits())
	if err != nil {
		instance.Destroy()
		return nil, fmt.Errorf("halgl: open noop device: %w", err)
	}
	c, err := New(open.Device, open.Queue, opts...)
	if err != nil {
		open.Device.Destroy()
		instance.Destroy()
		return nil, err
	}
	c.instance = instance
	c.ownsDevice = true
	return c, nil
}

// Err returns the first error recorded since the context was created.
// GL calls have no error results, so failures are kept here and logged.
func (c *Context) Err() error {
	return c.err
}

func (c *Context) fail(err error) {
	Logger().Error("halgl: call failed", "err", err)
	if c.err == nil {
		c.err = err
	}
}

func (c *Context) failf(format string, args ...any) {
	c.fail(fmt.Errorf(format, args...))
}

// warnOnce logs msg the first time key is seen.
func (c *Context) warnOnce(key, msg string, args ...any) {
	if c.warnedOnce[key] {
		return
	}
	c.warnedOnce[key] = true
	Logger().Warn(msg, args...)
}

// retire defers fn until the next submission has finished on the GPU.
func (c *Context) retire(fn func()) {
	c.retired = append(c.retired, fn)
}

func (c *Context) alloc() gl.Object {
	c.nextObject++
	return c.nextObject
}

// Device returns the hal device.
func (c *Context) Device() hal.Device { return c.device }

// Queue returns the hal queue.
func (c *Context) Queue() hal.Queue { return c.queue }

// NumPipelines returns how many hal render pipelines are cached.
func (c *Context) NumPipelines() int { return c.pipelines.Len() }

// PipelineStats returns the render pipeline cache statistics.
func (c *Context) PipelineStats() cache.Stats { return c.pipelines.Stats() }

// Close submits outstanding work and releases every hal object. A context
// created by NewNoop also releases its device.
func (c *Context) Close() {
	c.Flush()

	for obj := range c.programs {
		c.DeleteProgram(obj)
	}
	for obj := range c.fbs {
		c.DeleteFramebuffer(obj)
	}
	for obj := range c.rbs {
		c.DeleteRenderbuffer(obj)
	}
	for obj := range c.textures {
		c.DeleteTexture(obj)
	}
	for obj := range c.samplers {
		c.DeleteSampler(obj)
	}
	for obj := range c.buffers {
		c.DeleteBuffer(obj)
	}
	c.pipelines.Range(func(_ pipelineKey, p hal.RenderPipeline) bool {
		c.device.DestroyRenderPipeline(p)
		return true
	})
	c.pipelines.Clear()
	c.destroySurface()
	c.releaseRetired()

	if c.ownsDevice {
		c.device.Destroy()
		if c.instance != nil {
			c.instance.Destroy()
		}
	}
	Logger().Info("halgl: context closed")
}

// GetInteger reports the limits gfx sizes itself by.
func (c *Context) GetInteger(pname gl.Enum) int {
	switch pname {
	case gl.MAX_UNIFORM_BLOCK_SIZE:
		return maxUniformBlockSize
	case gl.UNIFORM_BUFFER_OFFSET_ALIGNMENT:
		return uniformOffsetAlignment
	case gl.MAX_COMBINED_TEXTURE_IMAGE_UNITS:
		return maxTextureUnits
	}
	return 0
}

// SupportsExtension reports false for every extension. Block-compressed
// uploads are not forwarded to hal textures.
func (c *Context) SupportsExtension(string) bool { return false }

// ObjectLabel names obj in logs and in hal objects created for it later.
func (c *Context) ObjectLabel(identifier gl.Enum, obj gl.Object, label string) {
	switch identifier {
	case gl.BUFFER:
		if b := c.buffers[obj]; b != nil {
			b.label = label
		}
	case gl.TEXTURE:
		if t := c.textures[obj]; t != nil {
			t.label = label
		}
	case gl.SAMPLER:
		if s := c.samplers[obj]; s != nil {
			s.label = label
		}
	case gl.RENDERBUFFER:
		if rb := c.rbs[obj]; rb != nil {
			rb.label = label
		}
	case gl.FRAMEBUFFER:
		if fb := c.fbs[obj]; fb != nil {
			fb.label = label
		}
	case gl.VERTEX_ARRAY:
		if v := c.vaos[obj]; v != nil {
			v.label = label
		}
	case gl.PROGRAM:
		if p := c.programs[obj]; p != nil {
			p.label = label
		}
	}
	Logger().Debug("halgl: object labeled", "object", obj, "label", label)
}

// waitTimeout is the fence timeout for a submission.
func (c *Context) waitTimeout() time.Duration { return c.opts.waitTimeout }

var _ gl.Context = (*Context)(nil)
