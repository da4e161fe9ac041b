// Package render holds the helpers renderers build on top of a gfx.Device.
//
// # Render Cache
//
// RenderCache memoizes Bindings, RenderPipelines and InputLayouts by the
// structure of their descriptors. Renderers rebuild descriptors every frame;
// the cache hands back the same handle for equal descriptors so the device
// sees stable objects and its state diffing stays effective.
//
//	rc := render.NewRenderCache(device)
//	defer rc.Destroy()
//
//	pipeline := rc.CreateRenderPipeline(gfx.RenderPipelineDescriptor{
//	    Topology:       gputypes.PrimitiveTopologyTriangleList,
//	    BindingLayouts: layouts,
//	    InputLayout:    rc.CreateInputLayout(layoutDesc),
//	    Program:        program,
//	    MegaState:      render.Opaque(gputypes.CullModeBack),
//	})
//
// Handles are compared by identity and programs by their unique key, so two
// programs compiled from the same source share pipelines. Nothing is ever
// evicted; the cache lives as long as the scene that fills it.
//
// # MegaState Presets
//
// Fullscreen, Opaque, Translucent, Additive and Premultiplied return the
// fixed-function states most passes of a model viewer need. They are plain
// values and can be adjusted field by field.
//
// # Thread Safety
//
// RenderCache lookups are safe for concurrent use. Creating objects goes
// through the device, which is single-threaded, so in practice the cache
// is used from the goroutine that owns the device.
package render
