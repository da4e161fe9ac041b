package halgl

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/naga"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/gfx/gl"
)

// Programs are WGSL. The vertex and fragment strings may be the same
// module or two modules sharing one set of resource declarations.
var (
	wgslResourceRE = regexp.MustCompile(`((?:@\w+\s*\(\s*\d+\s*\)\s*)+)var\s*(<[^>]*>)?\s*(\w+)\s*:\s*([^;]+);`)
	wgslAttrRE     = regexp.MustCompile(`@(group|binding)\s*\(\s*(\d+)\s*\)`)
	wgslVertexRE   = regexp.MustCompile(`@vertex\s+fn\s+(\w+)`)
	wgslFragmentRE = regexp.MustCompile(`@fragment\s+fn\s+(\w+)`)
	lineCommentRE  = regexp.MustCompile(`//[^\n]*`)
)

type resourceKind uint8

const (
	resourceUniform resourceKind = iota
	resourceTexture
	resourceTextureArray
	resourceSampler
)

// resource is one @group/@binding declaration.
type resource struct {
	name    string
	kind    resourceKind
	group   uint32
	binding uint32
}

type programLayout struct {
	vsEntry, fsEntry string
	resources        []resource
	numGroups        int
}

// reflectWGSL finds the entry points and bound resources of a program.
func reflectWGSL(vs, fs string) (programLayout, error) {
	var l programLayout
	vs = lineCommentRE.ReplaceAllString(vs, "")
	fs = lineCommentRE.ReplaceAllString(fs, "")

	if m := wgslVertexRE.FindStringSubmatch(vs); m != nil {
		l.vsEntry = m[1]
	} else {
		return l, fmt.Errorf("%w: no @vertex entry point", ErrShaderCompile)
	}
	if m := wgslFragmentRE.FindStringSubmatch(fs); m != nil {
		l.fsEntry = m[1]
	} else {
		return l, fmt.Errorf("%w: no @fragment entry point", ErrShaderCompile)
	}

	seen := make(map[string]bool)
	src := vs
	if fs != vs {
		src += "\n" + fs
	}
	for _, m := range wgslResourceRE.FindAllStringSubmatch(src, -1) {
		name := m[3]
		if seen[name] {
			continue
		}
		seen[name] = true

		r := resource{name: name}
		hasGroup, hasBinding := false, false
		for _, a := range wgslAttrRE.FindAllStringSubmatch(m[1], -1) {
			n, _ := strconv.ParseUint(a[2], 10, 32)
			if a[1] == "group" {
				r.group, hasGroup = uint32(n), true
			} else {
				r.binding, hasBinding = uint32(n), true
			}
		}
		if !hasGroup || !hasBinding {
			continue
		}

		typ := strings.TrimSpace(m[4])
		switch {
		case strings.Contains(m[2], "uniform"):
			r.kind = resourceUniform
		case strings.HasPrefix(typ, "texture_2d_array"):
			r.kind = resourceTextureArray
		case strings.HasPrefix(typ, "texture_2d"):
			r.kind = resourceTexture
		case typ == "sampler":
			r.kind = resourceSampler
		default:
			return l, fmt.Errorf("%w: %s has unsupported type %q", ErrShaderCompile, name, typ)
		}
		l.resources = append(l.resources, r)
		l.numGroups = max(l.numGroups, int(r.group)+1)
	}
	return l, nil
}

// compileSPIRV compiles WGSL to little-endian SPIR-V words.
func compileSPIRV(src string) ([]uint32, error) {
	spirvBytes, err := naga.Compile(src)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrShaderCompile, err)
	}
	words := make([]uint32, len(spirvBytes)/4)
	for i := range words {
		words[i] = uint32(spirvBytes[i*4]) |
			uint32(spirvBytes[i*4+1])<<8 |
			uint32(spirvBytes[i*4+2])<<16 |
			uint32(spirvBytes[i*4+3])<<24
	}
	return words, nil
}

type program struct {
	layout programLayout

	vs, fs     hal.ShaderModule
	groups     []hal.BindGroupLayout
	pipeLayout hal.PipelineLayout

	// blocks indexes uniform resources; slots holds each block's indexed
	// uniform binding. textures indexes texture resources; units holds
	// each texture's unit. samplers[i] samples textures[i].
	blocks   []int
	slots    []uint32
	textures []int
	units    []int
	samplers []int

	label string
}

func (c *Context) CreateProgram(vertexSrc, fragmentSrc string) (gl.Object, error) {
	layout, err := reflectWGSL(vertexSrc, fragmentSrc)
	if err != nil {
		return 0, err
	}
	p := &program{layout: layout}
	for i, r := range layout.resources {
		switch r.kind {
		case resourceUniform:
			p.blocks = append(p.blocks, i)
			p.slots = append(p.slots, uint32(len(p.slots)))
		case resourceTexture, resourceTextureArray:
			p.textures = append(p.textures, i)
			p.units = append(p.units, len(p.units))
		case resourceSampler:
			p.samplers = append(p.samplers, i)
		}
	}
	if len(p.samplers) > len(p.textures) {
		return 0, fmt.Errorf("%w: %d samplers for %d textures", ErrShaderCompile, len(p.samplers), len(p.textures))
	}

	if p.vs, err = c.createShaderModule("halgl_vs", vertexSrc); err != nil {
		return 0, err
	}
	if fragmentSrc == vertexSrc {
		p.fs = p.vs
	} else if p.fs, err = c.createShaderModule("halgl_fs", fragmentSrc); err != nil {
		c.device.DestroyShaderModule(p.vs)
		return 0, err
	}
	if err := c.createProgramLayout(p); err != nil {
		c.destroyProgram(p)
		return 0, err
	}

	obj := c.alloc()
	c.programs[obj] = p
	Logger().Debug("halgl: program created", "object", obj,
		"vertex", layout.vsEntry, "fragment", layout.fsEntry, "resources", len(layout.resources))
	return obj, nil
}

func (c *Context) createShaderModule(label, src string) (hal.ShaderModule, error) {
	spirv, err := compileSPIRV(src)
	if err != nil {
		return nil, err
	}
	m, err := c.device.CreateShaderModule(&hal.ShaderModuleDescriptor{
		Label:  label,
		Source: hal.ShaderSource{SPIRV: spirv},
	})
	if err != nil {
		return nil, fmt.Errorf("%w: create shader module: %w", ErrShaderCompile, err)
	}
	return m, nil
}

func (c *Context) createProgramLayout(p *program) error {
	entries := make([][]gputypes.BindGroupLayoutEntry, p.layout.numGroups)
	for _, r := range p.layout.resources {
		e := gputypes.BindGroupLayoutEntry{
			Binding:    r.binding,
			Visibility: gputypes.ShaderStageVertex | gputypes.ShaderStageFragment,
		}
		switch r.kind {
		case resourceUniform:
			e.Buffer = &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeUniform}
		case resourceTexture:
			e.Texture = &gputypes.TextureBindingLayout{
				SampleType:    gputypes.TextureSampleTypeFloat,
				ViewDimension: gputypes.TextureViewDimension2D,
			}
		case resourceTextureArray:
			e.Texture = &gputypes.TextureBindingLayout{
				SampleType:    gputypes.TextureSampleTypeFloat,
				ViewDimension: gputypes.TextureViewDimension2DArray,
			}
		case resourceSampler:
			e.Sampler = &gputypes.SamplerBindingLayout{Type: gputypes.SamplerBindingTypeFiltering}
		}
		entries[r.group] = append(entries[r.group], e)
	}

	for g, groupEntries := range entries {
		bgl, err := c.device.CreateBindGroupLayout(&hal.BindGroupLayoutDescriptor{
			Label:   fmt.Sprintf("halgl_group%d_layout", g),
			Entries: groupEntries,
		})
		if err != nil {
			return fmt.Errorf("halgl: create bind group layout %d: %w", g, err)
		}
		p.groups = append(p.groups, bgl)
	}
	pl, err := c.device.CreatePipelineLayout(&hal.PipelineLayoutDescriptor{
		Label:            "halgl_pipeline_layout",
		BindGroupLayouts: p.groups,
	})
	if err != nil {
		return fmt.Errorf("halgl: create pipeline layout: %w", err)
	}
	p.pipeLayout = pl
	return nil
}

func (c *Context) destroyProgram(p *program) {
	if p.pipeLayout != nil {
		c.device.DestroyPipelineLayout(p.pipeLayout)
	}
	for _, g := range p.groups {
		c.device.DestroyBindGroupLayout(g)
	}
	if p.fs != nil && p.fs != p.vs {
		c.device.DestroyShaderModule(p.fs)
	}
	if p.vs != nil {
		c.device.DestroyShaderModule(p.vs)
	}
}

// DeleteProgram releases the program and every cached pipeline built
// from it once in-flight work finishes.
func (c *Context) DeleteProgram(obj gl.Object) {
	p := c.programs[obj]
	if p == nil {
		return
	}
	delete(c.programs, obj)
	if c.current == obj {
		c.current = 0
	}
	c.purgePipelines(obj)
	c.retire(func() { c.destroyProgram(p) })
}

func (c *Context) UseProgram(obj gl.Object) {
	c.current = obj
}

func (c *Context) GetUniformBlockIndex(obj gl.Object, name string) uint32 {
	p := c.programs[obj]
	if p == nil {
		return gl.INVALID_INDEX
	}
	for i, ri := range p.blocks {
		if p.layout.resources[ri].name == name {
			return uint32(i)
		}
	}
	return gl.INVALID_INDEX
}

func (c *Context) UniformBlockBinding(obj gl.Object, blockIndex, binding uint32) {
	p := c.programs[obj]
	if p == nil || int(blockIndex) >= len(p.slots) {
		c.failf("%w: uniform block %d of program %d", ErrInvalidObject, blockIndex, obj)
		return
	}
	p.slots[blockIndex] = binding
}

// GetUniformLocation returns the location of a texture. Textures are the
// only uniforms outside blocks that WGSL programs expose.
func (c *Context) GetUniformLocation(obj gl.Object, name string) int32 {
	p := c.programs[obj]
	if p == nil {
		return -1
	}
	for i, ri := range p.textures {
		if p.layout.resources[ri].name == name {
			return int32(i)
		}
	}
	return -1
}

// Uniform1i sets the texture unit of a texture in the current program.
func (c *Context) Uniform1i(location, v int32) {
	p := c.programs[c.current]
	if p == nil || location < 0 || int(location) >= len(p.units) {
		c.failf("%w: uniform location %d", ErrInvalidObject, location)
		return
	}
	p.units[location] = int(v)
}
