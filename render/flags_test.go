package render

import (
	"testing"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/gfx"
)

func TestPresets(t *testing.T) {
	tests := []struct {
		name      string
		state     gfx.MegaState
		blend     bool
		src, dst  gputypes.BlendFactor
		depthTest bool
		depthW    bool
	}{
		{"fullscreen", Fullscreen(), false, gputypes.BlendFactorOne, gputypes.BlendFactorZero, false, false},
		{"opaque", Opaque(gputypes.CullModeBack), false, gputypes.BlendFactorOne, gputypes.BlendFactorZero, true, true},
		{"translucent", Translucent(), true, gputypes.BlendFactorSrcAlpha, gputypes.BlendFactorOneMinusSrcAlpha, true, false},
		{"additive", Additive(), true, gputypes.BlendFactorSrcAlpha, gputypes.BlendFactorOne, true, false},
		{"premultiplied", Premultiplied(), true, gputypes.BlendFactorOne, gputypes.BlendFactorOneMinusSrcAlpha, true, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := tt.state
			if m.BlendEnabled != tt.blend || m.BlendSrcFactor != tt.src || m.BlendDstFactor != tt.dst {
				t.Errorf("blend = %v %v/%v, want %v %v/%v",
					m.BlendEnabled, m.BlendSrcFactor, m.BlendDstFactor, tt.blend, tt.src, tt.dst)
			}
			if got := m.DepthCompare != gputypes.CompareFunctionAlways; got != tt.depthTest {
				t.Errorf("depth test = %v, want %v", got, tt.depthTest)
			}
			if m.DepthWrite != tt.depthW {
				t.Errorf("depth write = %v, want %v", m.DepthWrite, tt.depthW)
			}
			if m.ColorWrite != gputypes.ColorWriteMaskAll {
				t.Errorf("color write = %v, want all", m.ColorWrite)
			}
		})
	}
}

func TestModifiers(t *testing.T) {
	m := WithDecal(Opaque(gputypes.CullModeBack))
	if !m.PolygonOffset || m.CullMode != gputypes.CullModeBack {
		t.Errorf("WithDecal() = %+v", m)
	}

	m = WithStencilWrite(Fullscreen())
	if !m.StencilWrite || m.StencilPassOp != gfx.StencilOpReplace || m.StencilCompare != gputypes.CompareFunctionAlways {
		t.Errorf("WithStencilWrite() = %+v", m)
	}
	if Fullscreen().StencilWrite {
		t.Error("modifier changed the preset")
	}
}
