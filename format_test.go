package gfx

import "testing"

func TestFormatLayout(t *testing.T) {
	tests := []struct {
		format   Format
		comps    int
		compSize int
		size     int
		name     string
	}{
		{FormatU8RNorm, 1, 1, 1, "U8_R_NORM"},
		{FormatU8RGBANorm, 4, 1, 4, "U8_RGBA_NORM"},
		{FormatU8RGBASRGB, 4, 1, 4, "U8_RGBA_SRGB"},
		{FormatS8RGBANorm, 4, 1, 4, "S8_RGBA_NORM"},
		{FormatU16R, 1, 2, 2, "U16_R"},
		{FormatS16RGBNorm, 3, 2, 6, "S16_RGB_NORM"},
		{FormatU32R, 1, 4, 4, "U32_R"},
		{FormatF32RG, 2, 4, 8, "F32_RG"},
		{FormatF32RGBA, 4, 4, 16, "F32_RGBA"},
		{FormatD24S8, 1, 4, 4, "D24S8"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.format.NumComponents(); got != tt.comps {
				t.Errorf("NumComponents() = %d, want %d", got, tt.comps)
			}
			if got := tt.format.CompByteSize(); got != tt.compSize {
				t.Errorf("CompByteSize() = %d, want %d", got, tt.compSize)
			}
			if got := tt.format.ByteSize(); got != tt.size {
				t.Errorf("ByteSize() = %d, want %d", got, tt.size)
			}
			if got := tt.format.String(); got != tt.name {
				t.Errorf("String() = %q, want %q", got, tt.name)
			}
			if tt.format.IsCompressed() {
				t.Error("IsCompressed() = true")
			}
		})
	}
}

func TestFormatPacking(t *testing.T) {
	f := MakeFormat(FormatTypeS16, FormatCompRG, FormatFlagNormalized)
	if f != FormatS16RGNorm {
		t.Fatalf("MakeFormat() = %#x, want %#x", uint32(f), uint32(FormatS16RGNorm))
	}
	if uint32(f) != 0x050201 {
		t.Errorf("packed value = %#x, want 0x050201", uint32(f))
	}
	if f.TypeFlags() != FormatTypeS16 || f.CompFlags() != FormatCompRG || f.Flags() != FormatFlagNormalized {
		t.Errorf("unpacked %v/%v/%v", f.TypeFlags(), f.CompFlags(), f.Flags())
	}
}

func TestCompressedFormats(t *testing.T) {
	for _, tt := range []struct {
		format Format
		name   string
	}{
		{FormatBC1, "BC1"},
		{FormatBC1SRGB, "BC1_SRGB"},
		{FormatBC3, "BC3"},
		{FormatBC3SRGB, "BC3_SRGB"},
	} {
		if !tt.format.IsCompressed() {
			t.Errorf("%s: IsCompressed() = false", tt.name)
		}
		if got := tt.format.String(); got != tt.name {
			t.Errorf("String() = %q, want %q", got, tt.name)
		}
	}
	expectPanic(t, ErrUnsupported, func() { FormatBC1.CompByteSize() })
}

func TestFormatStringUnknown(t *testing.T) {
	if got := Format(0).String(); got != "Format(none)" {
		t.Errorf("Format(0).String() = %q", got)
	}
	if got := Format(0x7f0100).String(); got != "Format(0x7f0100)" {
		t.Errorf("unknown format String() = %q", got)
	}
}
