// Package halgl implements gl.Context on a wgpu hal device, so a gfx
// Device can run on Vulkan, Metal, DX12, GLES or the noop backend.
//
// GL is a state machine and hal is built from immutable objects, so the
// context keeps GL state on the CPU and turns it into hal objects at draw
// time:
//
//   - Fixed-function state, the vertex array layout, the program and the
//     draw framebuffer's formats form a render pipeline key. Pipelines are
//     cached with a soft limit; see WithPipelineCacheLimit.
//   - Indexed uniform bindings and texture units become a bind group per
//     draw.
//   - A render pass opens on the first draw or Clear after the draw
//     framebuffer changes. Clear masks become load operations.
//   - Flush ends the pass, submits, and waits on a fence. Objects deleted
//     while commands could still reference them are released afterwards.
//
// Programs are WGSL. Uniform blocks are the var<uniform> declarations,
// GetUniformLocation finds texture declarations, and the i-th sampler
// declaration samples the i-th texture.
//
// Buffers keep a CPU shadow, so GetBufferSubData never stalls. Anything hal
// cannot express (block-compressed uploads, scaled blits, 3D textures) is
// recorded and reported by Context.Err.
//
// Importing the package registers the "noop" backend with gl.Register.
package halgl
