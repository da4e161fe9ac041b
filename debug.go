package gfx

import (
	"fmt"

	"github.com/gogpu/gfx/gl"
)

// DebugGroup collects statistics for the commands executed while it is on
// the device's debug group stack. Nested groups all count.
type DebugGroup struct {
	Name              string
	DrawCallCount     int
	BufferUploadCount int
	TextureBindCount  int
}

// PushDebugGroup starts counting into g.
func (d *Device) PushDebugGroup(g *DebugGroup) {
	d.debugGroups = append(d.debugGroups, g)
}

// PopDebugGroup stops counting into the most recently pushed group and
// returns it. It returns nil when the stack is empty.
func (d *Device) PopDebugGroup() *DebugGroup {
	n := len(d.debugGroups)
	if n == 0 {
		return nil
	}
	g := d.debugGroups[n-1]
	d.debugGroups[n-1] = nil
	d.debugGroups = d.debugGroups[:n-1]
	return g
}

func (d *Device) countDrawCall() {
	for _, g := range d.debugGroups {
		g.DrawCallCount++
	}
}

func (d *Device) countBufferUpload() {
	for _, g := range d.debugGroups {
		g.BufferUploadCount++
	}
}

func (d *Device) countTextureBind() {
	for _, g := range d.debugGroups {
		g.TextureBindCount++
	}
}

// SetResourceName names r and labels its backend objects. Buffer pages are
// labeled "<name> Page <i>".
func (d *Device) SetResourceName(r Resource, name string) {
	r.header().name = name
	switch r := r.(type) {
	case *Buffer:
		for i, page := range r.pages {
			d.gl.ObjectLabel(gl.BUFFER, page, fmt.Sprintf("%s Page %d", name, i))
		}
	case *Texture:
		d.gl.ObjectLabel(gl.TEXTURE, r.obj, name)
	case *Sampler:
		d.gl.ObjectLabel(gl.SAMPLER, r.obj, name)
	case *RenderTarget:
		d.gl.ObjectLabel(gl.FRAMEBUFFER, r.obj, name)
	case *ColorAttachment:
		d.gl.ObjectLabel(gl.RENDERBUFFER, r.obj, name)
	case *DepthStencilAttachment:
		d.gl.ObjectLabel(gl.RENDERBUFFER, r.obj, name)
	case *InputState:
		d.gl.ObjectLabel(gl.VERTEX_ARRAY, r.vao, name)
	case *Program:
		d.gl.ObjectLabel(gl.PROGRAM, r.compiled.obj, name)
	}
}
