package gfx

import (
	"fmt"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/gfx/gl"
)

// CreateBindings creates a bind group. The number of uniform-buffer and
// sampler bindings must match the layout.
func (d *Device) CreateBindings(desc BindingsDescriptor) *Bindings {
	l := desc.BindingLayout
	if len(desc.UniformBufferBindings) != l.NumUniformBuffers || len(desc.SamplerBindings) != l.NumSamplers {
		panic(fmt.Errorf("%w: layout wants %d uniform buffers and %d samplers, got %d and %d",
			ErrBindingCountMismatch, l.NumUniformBuffers, l.NumSamplers,
			len(desc.UniformBufferBindings), len(desc.SamplerBindings)))
	}
	for i, ub := range desc.UniformBufferBindings {
		if ub.Buffer == nil {
			panic(fmt.Errorf("%w: uniform buffer binding %d", ErrNilResource, i))
		}
	}
	return &Bindings{
		layout:         l,
		uniformBuffers: append([]BufferBinding(nil), desc.UniformBufferBindings...),
		samplers:       append([]SamplerBinding(nil), desc.SamplerBindings...),
	}
}

// DestroyBindings marks b destroyed. Bindings own no backend object.
func (d *Device) DestroyBindings(b *Bindings) {
	b.destroyed = true
}

// CreateInputLayout validates and stores a vertex input description.
func (d *Device) CreateInputLayout(desc InputLayoutDescriptor) *InputLayout {
	for _, a := range desc.VertexAttributeDescriptors {
		translateVertexFormat(a.Format)
	}
	if desc.IndexBufferFormat != 0 {
		translateIndexFormat(desc.IndexBufferFormat)
	}
	return &InputLayout{
		attributes:  append([]VertexAttributeDescriptor(nil), desc.VertexAttributeDescriptors...),
		indexFormat: desc.IndexBufferFormat,
	}
}

// DestroyInputLayout marks l destroyed. Input layouts own no backend object.
func (d *Device) DestroyInputLayout(l *InputLayout) {
	l.destroyed = true
}

// CreateInputState creates a vertex array that feeds layout's attributes
// from vertexBuffers and, for indexed layouts, indexBuffer.
func (d *Device) CreateInputState(layout *InputLayout, vertexBuffers []VertexBufferDescriptor, indexBuffer *IndexBufferDescriptor) *InputState {
	vao := d.gl.CreateVertexArray()
	d.bindVAO(vao)

	for _, a := range layout.attributes {
		if a.BufferIndex < 0 || a.BufferIndex >= len(vertexBuffers) {
			panic(fmt.Errorf("%w: attribute %d reads vertex buffer %d of %d",
				ErrBindingCountMismatch, a.Location, a.BufferIndex, len(vertexBuffers)))
		}
		vb := vertexBuffers[a.BufferIndex]
		if vb.Buffer == nil {
			panic(fmt.Errorf("%w: vertex buffer %d", ErrNilResource, a.BufferIndex))
		}
		if vb.Buffer.usage != BufferUsageVertex {
			panic(fmt.Errorf("%w: vertex buffer %d has usage %v", ErrBufferUsage, a.BufferIndex, vb.Buffer.usage))
		}

		// The array buffer binding is not vertex array state, so it goes
		// through the cache directly without leaving the vertex array.
		page := vb.Buffer.pages[0]
		d.gl.BindBuffer(gl.ARRAY_BUFFER, page)
		d.boundBuffers[gl.ARRAY_BUFFER] = page

		size, typ, normalized := translateVertexFormat(a.Format)
		offset := vb.ByteOffset + a.BufferByteOffset
		if a.UsesIntInShader {
			d.gl.VertexAttribIPointer(a.Location, size, typ, vb.ByteStride, offset)
		} else {
			d.gl.VertexAttribPointer(a.Location, size, typ, normalized, vb.ByteStride, offset)
		}
		if a.Frequency == gputypes.VertexStepModeInstance {
			d.gl.VertexAttribDivisor(a.Location, 1)
		}
		d.gl.EnableVertexAttribArray(a.Location)
	}

	s := &InputState{vao: vao, layout: layout}
	if indexBuffer != nil {
		if indexBuffer.Buffer == nil {
			panic(fmt.Errorf("%w: index buffer", ErrNilResource))
		}
		if indexBuffer.Buffer.usage != BufferUsageIndex {
			panic(fmt.Errorf("%w: index buffer has usage %v", ErrBufferUsage, indexBuffer.Buffer.usage))
		}
		if layout.indexFormat == 0 {
			panic(fmt.Errorf("%w: index buffer for a non-indexed layout", ErrInputLayoutMismatch))
		}
		// Element array bindings are vertex array state and stay out of the
		// buffer cache.
		d.gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, indexBuffer.Buffer.pages[0])
		s.indexType = translateIndexFormat(layout.indexFormat)
		s.indexCompSize = layout.indexFormat.CompByteSize()
		s.indexByteOffset = indexBuffer.ByteOffset
	}

	d.bindVAO(0)
	return s
}

// DestroyInputState deletes the vertex array of s.
func (d *Device) DestroyInputState(s *InputState) {
	if s.destroyed {
		return
	}
	s.destroyed = true
	if d.boundVAO == s.vao {
		d.boundVAO = 0
	}
	if d.inputState == s {
		d.inputState = nil
	}
	d.gl.DeleteVertexArray(s.vao)
}

// createBindingTables lays out binding layouts back to back: each table's
// first slots follow the previous table's.
func createBindingTables(layouts []BindingLayoutDescriptor) (tables []bindingTable, numUniformBuffers, numSamplers int) {
	tables = make([]bindingTable, len(layouts))
	for i, l := range layouts {
		tables[i] = bindingTable{
			firstUniformBuffer: numUniformBuffers,
			numUniformBuffers:  l.NumUniformBuffers,
			firstSampler:       numSamplers,
			numSamplers:        l.NumSamplers,
		}
		numUniformBuffers += l.NumUniformBuffers
		numSamplers += l.NumSamplers
	}
	return tables, numUniformBuffers, numSamplers
}

// CreateRenderPipeline creates a pipeline. The program must declare exactly
// as many uniform blocks as the binding layouts provide uniform buffers.
func (d *Device) CreateRenderPipeline(desc RenderPipelineDescriptor) *RenderPipeline {
	if desc.Program == nil {
		panic(fmt.Errorf("%w: pipeline program", ErrNilResource))
	}
	drawMode := translatePrimitiveTopology(desc.Topology)
	tables, numUBO, _ := createBindingTables(desc.BindingLayouts)
	if got := len(desc.Program.compiled.reflection.UniformBufferLayouts); got != numUBO {
		panic(fmt.Errorf("%w: program %q declares %d uniform blocks, layouts provide %d",
			ErrBindingCountMismatch, desc.Program.compiled.reflection.Name, got, numUBO))
	}
	return &RenderPipeline{
		tables:      tables,
		drawMode:    drawMode,
		program:     desc.Program,
		megaState:   desc.MegaState,
		inputLayout: desc.InputLayout,
	}
}

// DestroyRenderPipeline marks p destroyed. Its program is not released.
func (d *Device) DestroyRenderPipeline(p *RenderPipeline) {
	p.destroyed = true
	if d.pipeline == p {
		d.pipeline = nil
	}
}
