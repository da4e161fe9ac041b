// Package gfx is a deferred GPU command-buffer engine.
//
// # Overview
//
// Renderers describe resources with abstract descriptors and record draw
// work into passes. A Device replays each submitted pass against exactly one
// backend context (see package gl), translating descriptors into native
// tokens and diffing fixed-function state so that redundant calls are never
// issued.
//
// # Quick Start
//
//	import (
//	    "github.com/gogpu/gfx"
//	    "github.com/gogpu/gfx/gl"
//	    _ "github.com/gogpu/gfx/gl/halgl"
//	)
//
//	ctx, err := gl.Open("noop")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	dev := gfx.NewDevice(ctx)
//	defer dev.Destroy()
//
//	ubo := dev.CreateBuffer(64, gfx.BufferUsageUniform, gfx.FrequencyHintDynamic)
//
//	up := dev.CreateHostAccessPass()
//	up.UploadBufferData(ubo, 0, params)
//	dev.SubmitPass(up)
//
//	pass := dev.CreateRenderPass(nil, gfx.RenderPassDescriptor{
//	    ColorLoadOp: gputypes.LoadOpClear,
//	})
//	pass.SetPipeline(pipeline)
//	pass.SetBindings(0, bindings, []int{0})
//	pass.SetInputState(nil)
//	pass.Draw(3, 0)
//	pass.EndPass(nil)
//	dev.SubmitPass(pass)
//
// # Passes
//
// A RenderPass or UploadPass is a flat stream of 32-bit instruction words
// plus a parallel list of object references. Recording never touches the
// backend. SubmitPass appends the terminal opcode, replays the stream,
// resets the pass and returns it to a per-kind pool, so steady-state frames
// allocate nothing.
//
// # Uniform Buffer Paging
//
// Uniform buffers are split into fixed-size pages (64 KiB by default, see
// WithUniformPageSize). A binding range must lie within one page.
//
// # Caching
//
// Package render memoizes Bindings, RenderPipelines and InputLayouts by
// structural equality so that per-frame code can request them freely.
//
// # Errors
//
// Invariant violations panic with an error wrapping one of the package's
// sentinel errors; recoverable failures such as program compilation are
// returned.
//
// # Logging
//
// gfx is silent by default. Use SetLogger to enable structured logging via
// log/slog.
package gfx
