package halgl

import (
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/gfx/gl"
)

// Every buffer can back any GL target, so they all get the same usage.
const bufferUsage = gputypes.BufferUsageVertex | gputypes.BufferUsageIndex |
	gputypes.BufferUsageUniform | gputypes.BufferUsageCopyDst | gputypes.BufferUsageCopySrc

// buffer is a hal buffer with a CPU shadow. Queue writes must be four-byte
// aligned, and the shadow supplies the bytes around unaligned updates and
// serves GetBufferSubData without a readback.
type buffer struct {
	hal    hal.Buffer
	shadow []byte
	label  string
}

// uniformRange is an indexed uniform buffer binding.
type uniformRange struct {
	buffer       gl.Object
	offset, size int
}

func alignUp(n, a int) int {
	return (n + a - 1) &^ (a - 1)
}

func (c *Context) CreateBuffer() gl.Object {
	obj := c.alloc()
	c.buffers[obj] = &buffer{}
	return obj
}

func (c *Context) DeleteBuffer(obj gl.Object) {
	b := c.buffers[obj]
	if b == nil {
		return
	}
	delete(c.buffers, obj)
	if b.hal != nil {
		h := b.hal
		c.retire(func() { c.device.DestroyBuffer(h) })
	}
	if c.arrayBuffer == obj {
		c.arrayBuffer = 0
	}
	if c.uniformBuffer == obj {
		c.uniformBuffer = 0
	}
	for _, v := range c.vaos {
		if v.element == obj {
			v.element = 0
		}
	}
}

func (c *Context) BindBuffer(target gl.Enum, obj gl.Object) {
	switch target {
	case gl.ARRAY_BUFFER:
		c.arrayBuffer = obj
	case gl.ELEMENT_ARRAY_BUFFER:
		c.vaos[c.vao].element = obj
	case gl.UNIFORM_BUFFER:
		c.uniformBuffer = obj
	default:
		c.failf("%w: buffer target %#x", ErrUnsupported, uint32(target))
	}
}

// bound returns the buffer bound to target.
func (c *Context) bound(target gl.Enum) (*buffer, gl.Object) {
	var obj gl.Object
	switch target {
	case gl.ARRAY_BUFFER:
		obj = c.arrayBuffer
	case gl.ELEMENT_ARRAY_BUFFER:
		obj = c.vaos[c.vao].element
	case gl.UNIFORM_BUFFER:
		obj = c.uniformBuffer
	}
	return c.buffers[obj], obj
}

// BufferData allocates the hal buffer. The GL usage hint has no hal
// counterpart and is ignored.
func (c *Context) BufferData(target gl.Enum, size int, _ gl.Enum) {
	b, obj := c.bound(target)
	if b == nil {
		c.failf("%w: BufferData with no buffer bound to %#x", ErrInvalidObject, uint32(target))
		return
	}
	if b.hal != nil {
		h := b.hal
		c.retire(func() { c.device.DestroyBuffer(h) })
	}
	label := b.label
	if label == "" {
		label = fmt.Sprintf("halgl_buffer_%d", obj)
	}
	h, err := c.device.CreateBuffer(&hal.BufferDescriptor{
		Label: label,
		Size:  uint64(alignUp(max(size, 4), 4)),
		Usage: bufferUsage,
	})
	if err != nil {
		c.failf("halgl: create buffer %d: %w", obj, err)
		return
	}
	b.hal = h
	b.shadow = make([]byte, alignUp(max(size, 4), 4))
	Logger().Debug("halgl: buffer created", "object", obj, "bytes", size)
}

// BufferSubData updates the shadow and writes the covering aligned range
// to the GPU. Recorded draws are submitted first so they read the old
// contents.
func (c *Context) BufferSubData(target gl.Enum, offset int, data []byte) {
	b, obj := c.bound(target)
	if b == nil || b.hal == nil {
		c.failf("%w: BufferSubData on unallocated buffer %d", ErrInvalidObject, obj)
		return
	}
	if offset < 0 || offset+len(data) > len(b.shadow) {
		c.failf("%w: BufferSubData [%d,%d) outside %d bytes",
			ErrInvalidObject, offset, offset+len(data), len(b.shadow))
		return
	}
	c.flushRecorded()
	copy(b.shadow[offset:], data)

	lo := offset &^ 3
	hi := alignUp(offset+len(data), 4)
	c.queue.WriteBuffer(b.hal, uint64(lo), b.shadow[lo:hi])
}

func (c *Context) GetBufferSubData(target gl.Enum, offset int, dst []byte) {
	b, obj := c.bound(target)
	if b == nil || b.hal == nil {
		c.failf("%w: GetBufferSubData on unallocated buffer %d", ErrInvalidObject, obj)
		return
	}
	copy(dst, b.shadow[min(offset, len(b.shadow)):])
}

func (c *Context) BindBufferRange(target gl.Enum, index uint32, obj gl.Object, offset, size int) {
	if target != gl.UNIFORM_BUFFER {
		c.failf("%w: indexed binding target %#x", ErrUnsupported, uint32(target))
		return
	}
	for int(index) >= len(c.uniformSlots) {
		c.uniformSlots = append(c.uniformSlots, uniformRange{})
	}
	c.uniformSlots[index] = uniformRange{buffer: obj, offset: offset, size: size}
	c.uniformBuffer = obj
}
