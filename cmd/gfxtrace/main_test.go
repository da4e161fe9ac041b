package main

import (
	"path/filepath"
	"testing"

	"github.com/gogpu/gfx"
	"github.com/gogpu/gfx/gl/gltrace"
	"github.com/gogpu/gfx/gl/halgl"
	"github.com/gogpu/gfx/texutil"
)

func TestSceneOnTrace(t *testing.T) {
	for _, samples := range []int{1, 4} {
		ctx := gltrace.New()
		d := gfx.NewDevice(ctx)
		s, err := newScene(d, sceneConfig{width: 64, height: 32, samples: samples, label: "x"})
		if err != nil {
			t.Fatalf("newScene() = %v", err)
		}
		group := &gfx.DebugGroup{}
		d.PushDebugGroup(group)
		s.frame(0)
		s.frame(1)
		d.PopDebugGroup()

		if group.DrawCallCount != 2 {
			t.Errorf("samples %d: draw calls = %d, want 2", samples, group.DrawCallCount)
		}
		if got, want := ctx.Count("BlitFramebuffer"), map[int]int{1: 0, 4: 4}[samples]; got != want {
			t.Errorf("samples %d: blits = %d, want %d", samples, got, want)
		}
		s.destroy()
		d.Destroy()
	}
}

func TestSceneOnHal(t *testing.T) {
	c, err := halgl.NewNoop(halgl.WithSurfaceSize(64, 32))
	if err != nil {
		t.Fatalf("NewNoop() = %v", err)
	}
	t.Cleanup(c.Close)
	d := gfx.NewDevice(c)
	s, err := newScene(d, sceneConfig{width: 64, height: 32, samples: 4, label: "hal"})
	if err != nil {
		t.Fatalf("newScene() = %v", err)
	}
	for i := range 3 {
		s.frame(i)
	}

	out := filepath.Join(t.TempDir(), "frame.png")
	if err := reportFrame(c, out); err != nil {
		t.Fatalf("reportFrame() = %v", err)
	}
	img, err := texutil.Load(out)
	if err != nil {
		t.Fatalf("Load(%s) = %v", out, err)
	}
	if img.Rect.Dx() != 64 || img.Rect.Dy() != 32 {
		t.Errorf("saved frame is %v, want 64x32", img.Rect.Size())
	}
	s.destroy()
	d.Destroy()
}

func TestTransformIdentityRotation(t *testing.T) {
	s := &scene{cfg: sceneConfig{width: 100, height: 100}}
	s.tex = gfx.NewDevice(gltrace.New()).CreateTexture2D(gfx.FormatU8RGBANorm, 4, 4, 1)
	m := s.transform(0)
	if m[0] != 0.5 || m[5] != 0.5 || m[1] != 0 || m[15] != 1 {
		t.Errorf("transform(0) = %v", m)
	}
}

func TestIndexBytesPadToWord(t *testing.T) {
	if got := len(uint16Bytes([]uint16{1, 2, 3})); got != 8 {
		t.Errorf("len = %d, want 8", got)
	}
}
