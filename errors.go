package gfx

import "errors"

// Programming errors. The device panics with an error wrapping one of these
// when a call sequence violates an invariant; they are not meant to be
// recovered from in correct code.
var (
	// ErrUnsupported is wrapped when an enum, format or topology has no
	// backend translation.
	ErrUnsupported = errors.New("gfx: unsupported value")

	// ErrInvalidOpcode is wrapped when replay meets an opcode outside the
	// pass kind's instruction set.
	ErrInvalidOpcode = errors.New("gfx: invalid opcode")

	// ErrBindingCountMismatch is wrapped when bindings do not match the slot
	// counts declared by a binding layout.
	ErrBindingCountMismatch = errors.New("gfx: binding count mismatch")

	// ErrDynamicOffsetCount is wrapped when the number of dynamic offsets
	// differs from the number of uniform-buffer slots.
	ErrDynamicOffsetCount = errors.New("gfx: dynamic offset count mismatch")

	// ErrPageStraddle is returned or wrapped when a buffer range crosses a
	// physical page boundary.
	ErrPageStraddle = errors.New("gfx: buffer range straddles a page boundary")

	// ErrBufferRange is wrapped when a range falls outside a buffer.
	ErrBufferRange = errors.New("gfx: buffer range out of bounds")

	// ErrBufferUsage is wrapped when a buffer is used outside its usage class.
	ErrBufferUsage = errors.New("gfx: buffer usage mismatch")

	// ErrUploadAlignment is wrapped when an upload into a paged uniform
	// buffer does not start on a page boundary.
	ErrUploadAlignment = errors.New("gfx: uniform upload not page aligned")

	// ErrInputLayoutMismatch is wrapped when an input state does not belong
	// to the bound pipeline's input layout.
	ErrInputLayoutMismatch = errors.New("gfx: input layout mismatch")

	// ErrNoPipeline is wrapped when a draw or binding needs a pipeline and
	// none is bound.
	ErrNoPipeline = errors.New("gfx: no pipeline bound")

	// ErrNoIndexBuffer is wrapped when DrawIndexed runs without an indexed
	// input state.
	ErrNoIndexBuffer = errors.New("gfx: no index buffer bound")

	// ErrResolveMismatch is wrapped when a resolve source and destination
	// differ in size or the render target has no color attachment.
	ErrResolveMismatch = errors.New("gfx: resolve target mismatch")

	// ErrDestroyed is wrapped when a destroyed resource is used.
	ErrDestroyed = errors.New("gfx: resource used after destroy")

	// ErrNilResource is wrapped when a required handle is nil.
	ErrNilResource = errors.New("gfx: nil resource")

	// ErrPassState is wrapped when a pass is recorded after its end or
	// submitted before it.
	ErrPassState = errors.New("gfx: pass recorded out of order")
)

// ErrProgramCompile is returned by CreateProgram when the backend rejects
// the program source.
var ErrProgramCompile = errors.New("gfx: program compile failed")
