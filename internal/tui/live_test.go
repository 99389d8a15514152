package tui

import (
	"bytes"
	"strings"
	"testing"

	"github.com/san-kum/ripple/internal/physics"
)

func TestLiveRendererThrottlesBySimTime(t *testing.T) {
	var buf bytes.Buffer
	r := NewLiveRenderer(&buf, "pond", 10)
	f := physics.NewField(50, 400, 300)

	for step := 1; step <= 60; step++ {
		r.OnStep(f, step, float64(step)/60)
	}
	// one frame per 0.1s of simulated time
	if r.Frames() < 9 || r.Frames() > 11 {
		t.Errorf("frames = %d, want about 10", r.Frames())
	}
	if !strings.Contains(buf.String(), "pond  step=1 ") {
		t.Error("first frame should carry the title and step")
	}
}

func TestLiveRendererDrawsWater(t *testing.T) {
	var buf bytes.Buffer
	r := NewLiveRenderer(&buf, "pond", 30)
	f := physics.NewField(50, 400, 300)
	r.OnStep(f, 1, 0)

	out := buf.String()
	// the lower half of a resting surface is full braille cells
	if !strings.ContainsRune(out, '⣿') {
		t.Error("expected filled cells below the surface")
	}
	if !strings.Contains(out, "energy=0.000") {
		t.Errorf("stats line missing: %q", out[len(out)-60:])
	}
}

func TestStartStop(t *testing.T) {
	var buf bytes.Buffer
	r := NewLiveRenderer(&buf, "x", 0)
	r.Start()
	r.Stop()
	if buf.String() != hideCursor+showCursor {
		t.Errorf("got %q", buf.String())
	}
}
