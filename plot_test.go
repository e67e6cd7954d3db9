package nocturneagent

import (
	"bytes"
	"image/png"
	"testing"

	"gonum.org/v1/gonum/spatial/r2"
)

func TestPlotTrajectories(t *testing.T) {
	traj := testTrajectories(
		straightPath(r2.Vec{X: -2}, r2.Vec{X: 1}, 5),
		straightPath(r2.Vec{Y: -2}, r2.Vec{Y: 1}, 5),
	)
	traj.Samples[1][4].Valid = false
	var buf bytes.Buffer
	if err := PlotTrajectories(&buf, traj, 64); err != nil {
		t.Fatal(err)
	}
	img, err := png.Decode(&buf)
	if err != nil {
		t.Fatal(err)
	}
	if img.Bounds().Dx() != 64 || img.Bounds().Dy() != 64 {
		t.Fatalf("unexpected bounds: %v", img.Bounds())
	}

	// The first path runs horizontally through the middle.
	r, g, b, _ := img.At(32, 32).RGBA()
	if r == 0xffff && g == 0xffff && b == 0xffff {
		t.Error("expected a path at the center of the image")
	}
	r, g, b, _ = img.At(2, 2).RGBA()
	if r != 0xffff || g != 0xffff || b != 0xffff {
		t.Error("expected a white corner")
	}
}

func TestPlotTransform(t *testing.T) {
	traj := testTrajectories([]r2.Vec{{X: 0, Y: 0}, {X: 10, Y: 5}})
	toPixel := plotTransform(traj, 120)
	if p := toPixel(r2.Vec{}); r2.Norm(r2.Sub(p, r2.Vec{X: plotMargin, Y: 120 - plotMargin})) > 1e-8 {
		t.Errorf("bad lower corner: %v", p)
	}
	if p := toPixel(r2.Vec{X: 10, Y: 5}); r2.Norm(r2.Sub(p, r2.Vec{X: 110, Y: 60})) > 1e-8 {
		t.Errorf("bad upper corner: %v", p)
	}
}
