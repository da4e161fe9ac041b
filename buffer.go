package gfx

import (
	"fmt"

	"github.com/gogpu/gfx/gl"
)

// CreateBuffer creates a buffer of wordCount 32-bit words.
//
// Uniform buffers are split into pages of the device's uniform page size;
// the last page holds the remainder. Every other usage gets a single page
// covering the whole buffer.
func (d *Device) CreateBuffer(wordCount int, usage BufferUsage, hint FrequencyHint) *Buffer {
	if wordCount <= 0 {
		panic(fmt.Errorf("%w: buffer of %d words", ErrBufferRange, wordCount))
	}
	target := translateBufferUsageToTarget(usage)
	glHint := translateBufferHint(hint)
	byteSize := wordCount * 4

	b := &Buffer{
		usage:    usage,
		target:   target,
		byteSize: byteSize,
	}
	if usage == BufferUsageUniform {
		b.pageByteSize = d.uniformPageSize
		for left := byteSize; left > 0; left -= d.uniformPageSize {
			b.pages = append(b.pages, d.createBufferPage(target, min(left, d.uniformPageSize), glHint))
		}
	} else {
		b.pageByteSize = byteSize
		b.pages = []gl.Object{d.createBufferPage(target, byteSize, glHint)}
	}

	Logger().Debug("gfx: buffer created",
		"usage", usage, "bytes", byteSize, "pages", len(b.pages))
	return b
}

func (d *Device) createBufferPage(target gl.Enum, byteSize int, hint gl.Enum) gl.Object {
	obj := d.gl.CreateBuffer()
	d.bindBuffer(target, obj)
	d.gl.BufferData(target, byteSize, hint)
	return obj
}

// DestroyBuffer frees every page of b.
func (d *Device) DestroyBuffer(b *Buffer) {
	if b.destroyed {
		return
	}
	b.destroyed = true
	for _, page := range b.pages {
		for target, bound := range d.boundBuffers {
			if bound == page {
				d.boundBuffers[target] = 0
			}
		}
		d.gl.DeleteBuffer(page)
	}
	for i, ub := range d.uniformBuffers {
		if ub == b {
			d.uniformBuffers[i] = nil
		}
	}
}

// uploadBufferData copies byteCount bytes of data, starting at srcByteOffset,
// into b at dstByteOffset, splitting the write at page boundaries.
func (d *Device) uploadBufferData(b *Buffer, dstByteOffset int, data []byte, srcByteOffset, byteCount int) {
	d.checkLive(b)
	if b.target == gl.UNIFORM_BUFFER && dstByteOffset%b.pageByteSize != 0 {
		panic(fmt.Errorf("%w: offset %d with %d-byte pages", ErrUploadAlignment, dstByteOffset, b.pageByteSize))
	}
	if dstByteOffset+byteCount > b.byteSize {
		panic(fmt.Errorf("%w: upload [%d, %d) into %d bytes", ErrBufferRange, dstByteOffset, dstByteOffset+byteCount, b.byteSize))
	}
	if srcByteOffset+byteCount > len(data) {
		panic(fmt.Errorf("%w: source [%d, %d) of %d bytes", ErrBufferRange, srcByteOffset, srcByteOffset+byteCount, len(data)))
	}

	end := dstByteOffset + byteCount
	virt := dstByteOffset
	phys := dstByteOffset % b.pageByteSize
	src := srcByteOffset
	for virt < end {
		n := min(end-virt, b.pageByteSize-phys)
		d.bindBuffer(b.target, b.Page(virt))
		d.gl.BufferSubData(b.target, phys, data[src:src+n])
		virt += n
		src += n
		phys = 0
	}
	d.countBufferUpload()
}

// ReadBufferData reads len(dst) bytes of b starting at wordOffset back from
// the backend. The range must lie within one page. Intended for debugging.
func (d *Device) ReadBufferData(b *Buffer, dst []byte, wordOffset int) error {
	d.checkLive(b)
	page, pageOffset, err := b.Locate(wordOffset*4, len(dst))
	if err != nil {
		return err
	}
	d.bindBuffer(b.target, b.pages[page])
	d.gl.GetBufferSubData(b.target, pageOffset, dst)
	return nil
}
