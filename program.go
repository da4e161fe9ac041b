package gfx

import (
	"fmt"
	"regexp"
	"strconv"

	"github.com/gogpu/gfx/gl"
)

// programKey identifies program source; identical sources share one
// compiled backend program.
type programKey struct {
	vertex   string
	fragment string
}

// CreateProgram compiles and links src, or reuses the compiled program of an
// earlier identical source.
//
// Uniform blocks are bound to uniform-buffer slots in declaration order and
// sampler uniforms to texture units in declaration order, so binding layouts
// address them by index. A compile or link failure returns an error wrapping
// ErrProgramCompile.
func (d *Device) CreateProgram(src ProgramSource) (*Program, error) {
	key := programKey{vertex: src.Vertex, fragment: src.Fragment}
	cp, ok := d.programs[key]
	if !ok {
		obj, err := d.gl.CreateProgram(src.Vertex, src.Fragment)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrProgramCompile, src.Name, err)
		}
		refl := reflectProgram(src)
		d.lastProgramKey++
		refl.UniqueKey = d.lastProgramKey
		d.bindProgramSlots(obj, &refl)

		cp = &compiledProgram{obj: obj, key: key, reflection: refl}
		d.programs[key] = cp
		Logger().Debug("gfx: program compiled",
			"name", src.Name,
			"uniformBlocks", len(refl.UniformBufferLayouts),
			"samplers", len(refl.SamplerNames),
		)
	}
	cp.refs++
	return &Program{compiled: cp}, nil
}

func (d *Device) bindProgramSlots(obj gl.Object, refl *ProgramReflection) {
	for i := range refl.UniformBufferLayouts {
		ub := &refl.UniformBufferLayouts[i]
		ub.Binding = i
		if idx := d.gl.GetUniformBlockIndex(obj, ub.Name); idx != gl.INVALID_INDEX {
			d.gl.UniformBlockBinding(obj, idx, uint32(i))
		}
	}
	if len(refl.SamplerNames) == 0 {
		return
	}
	d.useProgram(obj)
	for i, name := range refl.SamplerNames {
		if loc := d.gl.GetUniformLocation(obj, name); loc >= 0 {
			d.gl.Uniform1i(loc, int32(i))
		}
	}
}

// DestroyProgram releases p's reference to its compiled program. The
// backend program is deleted with the last reference.
func (d *Device) DestroyProgram(p *Program) {
	if p.destroyed {
		return
	}
	p.destroyed = true
	cp := p.compiled
	cp.refs--
	if cp.refs > 0 {
		return
	}
	delete(d.programs, cp.key)
	if d.program == cp.obj {
		d.program = 0
	}
	d.gl.DeleteProgram(cp.obj)
}

var (
	glslUniformBlock = regexp.MustCompile(`(?m)^\s*(?:layout\s*\([^)]*\)\s*)?uniform\s+(\w+)\s*\{`)
	glslSampler      = regexp.MustCompile(`(?m)^\s*uniform\s+(?:(?:lowp|mediump|highp)\s+)?[iu]?sampler\w*\s+(\w+)\s*(?:\[\s*(\d+)\s*\])?\s*;`)
	wgslUniform      = regexp.MustCompile(`var\s*<\s*uniform\s*>\s*(\w+)`)
	wgslTexture      = regexp.MustCompile(`var\s+(\w+)\s*:\s*texture_\w+`)
	lineComment      = regexp.MustCompile(`//[^\n]*`)
)

// reflectProgram scans both stages for uniform blocks and sampler uniforms.
// GLSL blocks ("uniform Name {") and WGSL uniform variables
// ("var<uniform> name") become uniform-buffer layouts; GLSL sampler uniforms
// and WGSL texture variables become sampler names. GLSL sampler arrays
// expand to one name per element.
func reflectProgram(src ProgramSource) ProgramReflection {
	refl := ProgramReflection{Name: src.Name}
	seenBlock := map[string]bool{}
	seenSampler := map[string]bool{}

	for _, stage := range []string{src.Vertex, src.Fragment} {
		stage = lineComment.ReplaceAllString(stage, "")

		for _, m := range glslUniformBlock.FindAllStringSubmatch(stage, -1) {
			addName(&refl.UniformBufferLayouts, seenBlock, m[1])
		}
		for _, m := range wgslUniform.FindAllStringSubmatch(stage, -1) {
			addName(&refl.UniformBufferLayouts, seenBlock, m[1])
		}

		for _, m := range glslSampler.FindAllStringSubmatch(stage, -1) {
			if m[2] == "" {
				addSampler(&refl.SamplerNames, seenSampler, m[1])
				continue
			}
			n, _ := strconv.Atoi(m[2])
			for i := 0; i < n; i++ {
				addSampler(&refl.SamplerNames, seenSampler, fmt.Sprintf("%s[%d]", m[1], i))
			}
		}
		for _, m := range wgslTexture.FindAllStringSubmatch(stage, -1) {
			addSampler(&refl.SamplerNames, seenSampler, m[1])
		}
	}
	return refl
}

func addName(dst *[]UniformBufferLayout, seen map[string]bool, name string) {
	if seen[name] {
		return
	}
	seen[name] = true
	*dst = append(*dst, UniformBufferLayout{Name: name, Binding: len(*dst)})
}

func addSampler(dst *[]string, seen map[string]bool, name string) {
	if seen[name] {
		return
	}
	seen[name] = true
	*dst = append(*dst, name)
}
