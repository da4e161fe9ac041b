package gfx

import "fmt"

// Format describes the layout of one element of vertex, index or texel data.
//
// A Format packs three fields into one word: the component type in bits
// 16-23, the component count in bits 8-15 and modifier flags in bits 0-7.
// Formats are compared and hashed as plain integers.
type Format uint32

// FormatTypeFlags is the component type of a Format.
type FormatTypeFlags uint8

// Component types. Compressed and depth-stencil formats use their own type
// values and have no meaningful per-component size.
const (
	FormatTypeU8 FormatTypeFlags = 0x01 + iota
	FormatTypeU16
	FormatTypeU32
	FormatTypeS8
	FormatTypeS16
	FormatTypeS32
	FormatTypeF16
	FormatTypeF32

	FormatTypeBC1   FormatTypeFlags = 0x41
	FormatTypeBC3   FormatTypeFlags = 0x43
	FormatTypeD24S8 FormatTypeFlags = 0x81
)

// FormatCompFlags is the component count of a Format.
type FormatCompFlags uint8

// Component counts.
const (
	FormatCompR    FormatCompFlags = 0x01
	FormatCompRG   FormatCompFlags = 0x02
	FormatCompRGB  FormatCompFlags = 0x03
	FormatCompRGBA FormatCompFlags = 0x04
)

// FormatFlags modifies how components are interpreted.
type FormatFlags uint8

// Format modifier flags.
const (
	FormatFlagNone       FormatFlags = 0x00
	FormatFlagNormalized FormatFlags = 0x01
	FormatFlagSRGB       FormatFlags = 0x02
)

// MakeFormat packs a component type, count and flags.
func MakeFormat(t FormatTypeFlags, c FormatCompFlags, f FormatFlags) Format {
	return Format(uint32(t)<<16 | uint32(c)<<8 | uint32(f))
}

// Predefined formats.
var (
	FormatU8R         = MakeFormat(FormatTypeU8, FormatCompR, FormatFlagNone)
	FormatU8RNorm     = MakeFormat(FormatTypeU8, FormatCompR, FormatFlagNormalized)
	FormatU8RG        = MakeFormat(FormatTypeU8, FormatCompRG, FormatFlagNone)
	FormatU8RGNorm    = MakeFormat(FormatTypeU8, FormatCompRG, FormatFlagNormalized)
	FormatU8RGB       = MakeFormat(FormatTypeU8, FormatCompRGB, FormatFlagNone)
	FormatU8RGBNorm   = MakeFormat(FormatTypeU8, FormatCompRGB, FormatFlagNormalized)
	FormatU8RGBA      = MakeFormat(FormatTypeU8, FormatCompRGBA, FormatFlagNone)
	FormatU8RGBANorm  = MakeFormat(FormatTypeU8, FormatCompRGBA, FormatFlagNormalized)
	FormatU8RGBASRGB  = MakeFormat(FormatTypeU8, FormatCompRGBA, FormatFlagSRGB)
	FormatS8RGBANorm  = MakeFormat(FormatTypeS8, FormatCompRGBA, FormatFlagNormalized)
	FormatU16R        = MakeFormat(FormatTypeU16, FormatCompR, FormatFlagNone)
	FormatU16RNorm    = MakeFormat(FormatTypeU16, FormatCompR, FormatFlagNormalized)
	FormatS16RG       = MakeFormat(FormatTypeS16, FormatCompRG, FormatFlagNone)
	FormatS16RGNorm   = MakeFormat(FormatTypeS16, FormatCompRG, FormatFlagNormalized)
	FormatS16RGB      = MakeFormat(FormatTypeS16, FormatCompRGB, FormatFlagNone)
	FormatS16RGBNorm  = MakeFormat(FormatTypeS16, FormatCompRGB, FormatFlagNormalized)
	FormatS16RGBA     = MakeFormat(FormatTypeS16, FormatCompRGBA, FormatFlagNone)
	FormatS16RGBANorm = MakeFormat(FormatTypeS16, FormatCompRGBA, FormatFlagNormalized)
	FormatU32R        = MakeFormat(FormatTypeU32, FormatCompR, FormatFlagNone)
	FormatF32R        = MakeFormat(FormatTypeF32, FormatCompR, FormatFlagNone)
	FormatF32RG       = MakeFormat(FormatTypeF32, FormatCompRG, FormatFlagNone)
	FormatF32RGB      = MakeFormat(FormatTypeF32, FormatCompRGB, FormatFlagNone)
	FormatF32RGBA     = MakeFormat(FormatTypeF32, FormatCompRGBA, FormatFlagNone)

	FormatBC1     = MakeFormat(FormatTypeBC1, FormatCompRGBA, FormatFlagNone)
	FormatBC1SRGB = MakeFormat(FormatTypeBC1, FormatCompRGBA, FormatFlagSRGB)
	FormatBC3     = MakeFormat(FormatTypeBC3, FormatCompRGBA, FormatFlagNone)
	FormatBC3SRGB = MakeFormat(FormatTypeBC3, FormatCompRGBA, FormatFlagSRGB)

	FormatD24S8 = MakeFormat(FormatTypeD24S8, FormatCompR, FormatFlagNone)
)

// TypeFlags returns the component type.
func (f Format) TypeFlags() FormatTypeFlags { return FormatTypeFlags(f >> 16) }

// CompFlags returns the component count flags.
func (f Format) CompFlags() FormatCompFlags { return FormatCompFlags(f >> 8) }

// Flags returns the modifier flags.
func (f Format) Flags() FormatFlags { return FormatFlags(f) }

// NumComponents returns the number of components.
func (f Format) NumComponents() int { return int(f.CompFlags()) }

// IsCompressed reports whether f is a block-compressed texture format.
func (f Format) IsCompressed() bool {
	t := f.TypeFlags()
	return t == FormatTypeBC1 || t == FormatTypeBC3
}

// CompByteSize returns the size in bytes of one component.
// It panics for formats without a per-component size.
func (f Format) CompByteSize() int {
	switch f.TypeFlags() {
	case FormatTypeU8, FormatTypeS8:
		return 1
	case FormatTypeU16, FormatTypeS16, FormatTypeF16:
		return 2
	case FormatTypeU32, FormatTypeS32, FormatTypeF32, FormatTypeD24S8:
		return 4
	default:
		panic(fmt.Errorf("%w: component size of %v", ErrUnsupported, f))
	}
}

// ByteSize returns the size in bytes of one element.
func (f Format) ByteSize() int {
	if f.TypeFlags() == FormatTypeD24S8 {
		return 4
	}
	return f.CompByteSize() * f.NumComponents()
}

var typeNames = map[FormatTypeFlags]string{
	FormatTypeU8:    "U8",
	FormatTypeU16:   "U16",
	FormatTypeU32:   "U32",
	FormatTypeS8:    "S8",
	FormatTypeS16:   "S16",
	FormatTypeS32:   "S32",
	FormatTypeF16:   "F16",
	FormatTypeF32:   "F32",
	FormatTypeBC1:   "BC1",
	FormatTypeBC3:   "BC3",
	FormatTypeD24S8: "D24S8",
}

var compNames = [...]string{"", "R", "RG", "RGB", "RGBA"}

// String returns a name like "U8_RGBA_NORM".
func (f Format) String() string {
	if f == 0 {
		return "Format(none)"
	}
	t, ok := typeNames[f.TypeFlags()]
	c := int(f.CompFlags())
	if !ok || c >= len(compNames) {
		return fmt.Sprintf("Format(%#x)", uint32(f))
	}
	s := t
	if f.TypeFlags() != FormatTypeD24S8 && !f.IsCompressed() {
		s += "_" + compNames[c]
	}
	if f.Flags()&FormatFlagNormalized != 0 {
		s += "_NORM"
	}
	if f.Flags()&FormatFlagSRGB != 0 {
		s += "_SRGB"
	}
	return s
}
