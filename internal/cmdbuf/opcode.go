package cmdbuf

import "fmt"

// Opcode tags one instruction in a pass stream.
//
// Render and upload opcodes occupy disjoint ranges so a stream replayed by
// the wrong executor fails on its first word.
type Opcode uint32

// Render pass opcodes.
const (
	OpSetRenderPassParameters Opcode = 471 + iota // ref target, clear bits, 6×f32 clear values
	OpSetViewport                                 // 2×f32 width, height
	OpSetBindings                                 // group, ref bindings, n, n×offset
	OpSetPipeline                                 // ref pipeline
	OpSetInputState                               // ref input state (nil allowed)
	OpSetStencilRef                               // ref value
	OpDraw                                        // count, first vertex
	OpDrawIndexed                                 // count, first index
	OpEndPass                                     // ref resolve texture (nil allowed)
	OpRenderEnd                                   // terminal
)

// Upload pass opcodes.
const (
	OpUploadBufferData  Opcode = 491 + iota // ref buffer, dst byte offset, ref data, src byte offset, byte count
	OpUploadTextureData                     // ref texture, first level, n, n×ref data
	OpUploadEnd                             // terminal
)

var renderOpNames = [...]string{
	"SetRenderPassParameters",
	"SetViewport",
	"SetBindings",
	"SetPipeline",
	"SetInputState",
	"SetStencilRef",
	"Draw",
	"DrawIndexed",
	"EndPass",
	"End",
}

var uploadOpNames = [...]string{
	"UploadBufferData",
	"UploadTextureData",
	"End",
}

// String returns the opcode name.
func (op Opcode) String() string {
	switch {
	case op >= OpSetRenderPassParameters && op <= OpRenderEnd:
		return renderOpNames[op-OpSetRenderPassParameters]
	case op >= OpUploadBufferData && op <= OpUploadEnd:
		return uploadOpNames[op-OpUploadBufferData]
	default:
		return fmt.Sprintf("Opcode(%d)", uint32(op))
	}
}
