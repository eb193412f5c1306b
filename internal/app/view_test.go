package app

import (
	"errors"
	"flag"
	"testing"

	"anodize-ca/internal/core"
	"anodize-ca/internal/sims/anodize"
)

func TestNewViewDefault(t *testing.T) {
	v, err := NewView(core.Size{X: 10, Y: 8, Z: 20}, "")
	if err != nil {
		t.Fatalf("NewView: %v", err)
	}
	if v.Axis() != anodize.AxisY || v.Index() != 4 {
		t.Fatalf("expected y=4, got %s", v)
	}
	if w, h := v.Dims(); w != 10 || h != 20 {
		t.Fatalf("expected 10x20 plane, got %dx%d", w, h)
	}
	if !v.Vertical() {
		t.Fatalf("xz plane should be vertical")
	}
}

func TestNewViewParsesSlice(t *testing.T) {
	size := core.Size{X: 10, Y: 8, Z: 20}
	v, err := NewView(size, "z=12")
	if err != nil {
		t.Fatalf("NewView: %v", err)
	}
	if v.Axis() != anodize.AxisZ || v.Index() != 12 || v.Vertical() {
		t.Fatalf("unexpected view %s", v)
	}
	if w, h := v.Dims(); w != 10 || h != 8 {
		t.Fatalf("expected 10x8 plane, got %dx%d", w, h)
	}

	if _, err := NewView(size, "x=10"); !errors.Is(err, anodize.ErrInvalidAxis) {
		t.Fatalf("expected ErrInvalidAxis for out of range index, got %v", err)
	}
	if _, err := NewView(size, "w=1"); !errors.Is(err, anodize.ErrInvalidAxis) {
		t.Fatalf("expected ErrInvalidAxis for unknown axis, got %v", err)
	}
}

func TestViewMoveClamps(t *testing.T) {
	v, _ := NewView(core.Size{X: 4, Y: 4, Z: 6}, "z=1")
	v = v.Move(-5)
	if v.Index() != 0 {
		t.Fatalf("expected clamp to 0, got %d", v.Index())
	}
	v = v.Move(100)
	if v.Index() != 5 {
		t.Fatalf("expected clamp to 5, got %d", v.Index())
	}
}

func TestViewWithAxis(t *testing.T) {
	v, _ := NewView(core.Size{X: 4, Y: 4, Z: 10}, "z=8")
	v = v.WithAxis(anodize.AxisX)
	if v.Axis() != anodize.AxisX || v.Index() != 2 {
		t.Fatalf("expected recentred x=2, got %s", v)
	}
	v = v.Move(-1).WithAxis(anodize.AxisZ)
	if v.Index() != 1 {
		t.Fatalf("expected index kept at 1, got %d", v.Index())
	}
}

func TestMaxDims(t *testing.T) {
	w, h := MaxDims(core.Size{X: 10, Y: 30, Z: 20})
	if w != 30 || h != 30 {
		t.Fatalf("expected 30x30, got %dx%d", w, h)
	}
}

func TestConfigBind(t *testing.T) {
	cfg := NewConfig()
	fs := flag.NewFlagSet("view", flag.ContinueOnError)
	cfg.Bind(fs)
	if err := fs.Parse([]string{"-slice", "xy=3", "-scale", "2", "-tps", "30", "-seed", "9"}); err != nil {
		t.Fatalf("parse: %v", err)
	}
	if cfg.Slice != "xy=3" || cfg.Scale != 2 || cfg.TPS != 30 || cfg.Seed != 9 {
		t.Fatalf("unexpected config %+v", cfg)
	}
	if cfg.PanelWidth != 260 {
		t.Fatalf("expected default panel width, got %d", cfg.PanelWidth)
	}
}
