package nocturneagent

import (
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"io"
	"math"

	"github.com/unixpickle/essentials"
	"golang.org/x/image/vector"
	"gonum.org/v1/gonum/spatial/r2"
)

var plotPalette = []color.RGBA{
	{R: 0x1f, G: 0x77, B: 0xb4, A: 0xff},
	{R: 0xff, G: 0x7f, B: 0x0e, A: 0xff},
	{R: 0x2c, G: 0xa0, B: 0x2c, A: 0xff},
	{R: 0xd6, G: 0x27, B: 0x28, A: 0xff},
	{R: 0x94, G: 0x67, B: 0xbd, A: 0xff},
	{R: 0x8c, G: 0x56, B: 0x4b, A: 0xff},
	{R: 0xe3, G: 0x77, B: 0xc2, A: 0xff},
	{R: 0x7f, G: 0x7f, B: 0x7f, A: 0xff},
}

const (
	plotMargin    = 10
	plotLineWidth = 2
)

// PlotTrajectories draws every agent's path as a PNG of
// size x size pixels.
//
// Missing samples break an agent's path.
func PlotTrajectories(w io.Writer, traj *Trajectories, size int) (err error) {
	defer essentials.AddCtxTo("plot trajectories", &err)

	img := image.NewRGBA(image.Rect(0, 0, size, size))
	draw.Draw(img, img.Bounds(), image.White, image.Point{}, draw.Src)

	toPixel := plotTransform(traj, size)
	for row, samples := range traj.Samples {
		z := vector.NewRasterizer(size, size)
		for t := 1; t < len(samples); t++ {
			if samples[t-1].Valid && samples[t].Valid {
				strokeSegment(z, toPixel(samples[t-1].Pos), toPixel(samples[t].Pos))
			}
		}
		src := image.NewUniform(plotPalette[row%len(plotPalette)])
		z.Draw(img, img.Bounds(), src, image.Point{})
	}

	return png.Encode(w, img)
}

// plotTransform maps scene coordinates into the image,
// preserving the aspect ratio and flipping the y axis.
func plotTransform(traj *Trajectories, size int) func(r2.Vec) r2.Vec {
	lower := r2.Vec{X: math.Inf(1), Y: math.Inf(1)}
	upper := r2.Vec{X: math.Inf(-1), Y: math.Inf(-1)}
	for _, row := range traj.Samples {
		for _, s := range row {
			if !s.Valid {
				continue
			}
			lower.X = math.Min(lower.X, s.Pos.X)
			lower.Y = math.Min(lower.Y, s.Pos.Y)
			upper.X = math.Max(upper.X, s.Pos.X)
			upper.Y = math.Max(upper.Y, s.Pos.Y)
		}
	}
	extent := math.Max(upper.X-lower.X, upper.Y-lower.Y)
	if math.IsInf(extent, 0) || extent == 0 {
		extent = 1
	}
	scale := float64(size-2*plotMargin) / extent
	return func(p r2.Vec) r2.Vec {
		return r2.Vec{
			X: plotMargin + (p.X-lower.X)*scale,
			Y: float64(size) - plotMargin - (p.Y-lower.Y)*scale,
		}
	}
}

// strokeSegment adds a thin quad covering a-b.
func strokeSegment(z *vector.Rasterizer, a, b r2.Vec) {
	dir := r2.Sub(b, a)
	length := r2.Norm(dir)
	if length == 0 {
		dir = r2.Vec{X: 1}
	} else {
		dir = r2.Scale(1/length, dir)
	}
	normal := r2.Scale(plotLineWidth/2, r2.Vec{X: -dir.Y, Y: dir.X})
	// Extend the ends so that consecutive segments join.
	ext := r2.Scale(plotLineWidth/2, dir)
	a = r2.Sub(a, ext)
	b = r2.Add(b, ext)

	corners := []r2.Vec{
		r2.Add(a, normal),
		r2.Add(b, normal),
		r2.Sub(b, normal),
		r2.Sub(a, normal),
	}
	z.MoveTo(float32(corners[0].X), float32(corners[0].Y))
	for _, c := range corners[1:] {
		z.LineTo(float32(c.X), float32(c.Y))
	}
	z.ClosePath()
}
