package render

import (
	"bytes"
	"errors"
	"fmt"
	"image/color"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/san-kum/phaseportrait/internal/dynamo"
	"github.com/san-kum/phaseportrait/internal/field"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"
)

var ErrEmptyGrid = errors.New("render: empty grid")

type Options struct {
	Width, Height vg.Length
	DPI           int
	XMin, XMax    float64
	YMin, YMax    float64
	Title         string
	XLabel        string
	YLabel        string
	FontSize      vg.Length
	ArrowColor    color.Color
	LineColor     color.Color
	LineWidth     vg.Length
}

// Plot builds the figure: the quiver layer plus one line per trajectory.
func Plot(g *field.Grid, trajectories []*dynamo.Result, opts Options) (*plot.Plot, error) {
	if g.Empty() {
		return nil, ErrEmptyGrid
	}

	p := plot.New()
	p.Title.Text = opts.Title
	p.Title.TextStyle.Font.Size = opts.FontSize
	p.X.Label.Text = opts.XLabel
	p.X.Label.TextStyle.Font.Size = opts.FontSize
	p.Y.Label.Text = opts.YLabel
	p.Y.Label.TextStyle.Font.Size = opts.FontSize
	p.X.Tick.Label.Font.Size = opts.FontSize
	p.Y.Tick.Label.Font.Size = opts.FontSize

	if view := crop(g, opts); view.cols > 0 && view.rows > 0 {
		p.Add(newQuiver(view, opts))
	}

	for i, traj := range trajectories {
		if traj == nil || len(traj.States) == 0 {
			continue
		}
		pts := make(plotter.XYs, len(traj.States))
		for k, x := range traj.States {
			pts[k].X, pts[k].Y = x[0], x[1]
		}
		line, err := plotter.NewLine(pts)
		if err != nil {
			return nil, fmt.Errorf("render: trajectory %d: %w", i, err)
		}
		line.LineStyle.Color = opts.LineColor
		line.LineStyle.Width = opts.LineWidth
		p.Add(line)
	}

	p.X.Min, p.X.Max = opts.XMin, opts.XMax
	p.Y.Min, p.Y.Max = opts.YMin, opts.YMax

	return p, nil
}

// Render draws the figure and encodes it as PNG to w.
func Render(w io.Writer, g *field.Grid, trajectories []*dynamo.Result, opts Options) error {
	p, err := Plot(g, trajectories, opts)
	if err != nil {
		return err
	}
	return encodePNG(w, p, opts)
}

// SavePNG renders to a file at path. Nothing is written when the figure
// cannot be built or encoded.
func SavePNG(path string, g *field.Grid, trajectories []*dynamo.Result, opts Options) error {
	var buf bytes.Buffer
	if err := Render(&buf, g, trajectories, opts); err != nil {
		return err
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("render: write %s: %w", path, err)
	}
	return nil
}

func encodePNG(w io.Writer, p *plot.Plot, opts Options) error {
	c := vgimg.NewWith(vgimg.UseWH(opts.Width, opts.Height), vgimg.UseDPI(opts.DPI))
	p.Draw(draw.New(c))

	if _, err := (vgimg.PngCanvas{Canvas: c}).WriteTo(w); err != nil {
		return fmt.Errorf("render: encode png: %w", err)
	}
	return nil
}

// newQuiver draws one arrow per grid point in view. plotter.Field scales
// every arrow by the largest vector in view, so the longest one reaches
// from its grid point to the cell edge.
func newQuiver(view fieldView, opts Options) *plotter.Field {
	q := plotter.NewField(view)
	q.LineStyle.Color = opts.ArrowColor
	q.LineStyle.Width = vg.Points(1)
	q.DrawGlyph = drawArrow
	return q
}

// drawArrow strokes a unit vector to (1, 0) with a two-stroke head. The
// Field plotter has already rotated and scaled the canvas.
func drawArrow(c vg.Canvas, _ draw.LineStyle, v plotter.XY) {
	if math.Hypot(v.X, v.Y) == 0 {
		return
	}
	var pa vg.Path
	pa.Move(vg.Point{})
	pa.Line(vg.Point{X: 1})
	pa.Move(vg.Point{X: arrowHeadBack, Y: arrowHeadHalfWidth})
	pa.Line(vg.Point{X: 1})
	pa.Line(vg.Point{X: arrowHeadBack, Y: -arrowHeadHalfWidth})
	c.Stroke(pa)
}

const (
	arrowHeadBack      = 0.7
	arrowHeadHalfWidth = 0.15
)

// ParseColor accepts "#rrggbb" or "#rrggbbaa".
func ParseColor(s string) (color.Color, error) {
	hex := strings.TrimPrefix(s, "#")
	if len(hex) != 6 && len(hex) != 8 {
		return nil, fmt.Errorf("render: bad color %q", s)
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return nil, fmt.Errorf("render: bad color %q: %w", s, err)
	}
	if len(hex) == 6 {
		v = v<<8 | 0xff
	}
	return color.RGBA{R: uint8(v >> 24), G: uint8(v >> 16), B: uint8(v >> 8), A: uint8(v)}, nil
}

// fieldView exposes the part of a Grid inside the axis limits as a
// plotter.FieldXY. Arrows outside the view are not drawn, as gonum/plot
// does not clip glyphs to the data area.
type fieldView struct {
	g          *field.Grid
	row0, col0 int
	rows, cols int
}

func crop(g *field.Grid, opts Options) fieldView {
	rows, cols := g.Dims()
	v := fieldView{g: g}
	ex := 1e-9 * (opts.XMax - opts.XMin)
	ey := 1e-9 * (opts.YMax - opts.YMin)

	c0, c1 := -1, -1
	for j := 0; j < cols; j++ {
		if x := g.X0[0][j]; x >= opts.XMin-ex && x <= opts.XMax+ex {
			if c0 < 0 {
				c0 = j
			}
			c1 = j
		}
	}
	r0, r1 := -1, -1
	for i := 0; i < rows; i++ {
		if y := g.X1[i][0]; y >= opts.YMin-ey && y <= opts.YMax+ey {
			if r0 < 0 {
				r0 = i
			}
			r1 = i
		}
	}
	if c0 < 0 || r0 < 0 {
		return v
	}
	v.col0, v.cols = c0, c1-c0+1
	v.row0, v.rows = r0, r1-r0+1
	return v
}

func (v fieldView) Dims() (c, r int) { return v.cols, v.rows }

func (v fieldView) Vector(c, r int) plotter.XY {
	return plotter.XY{X: v.g.DX0[v.row0+r][v.col0+c], Y: v.g.DX1[v.row0+r][v.col0+c]}
}

func (v fieldView) X(c int) float64 { return v.g.X0[0][v.col0+c] }

func (v fieldView) Y(r int) float64 { return v.g.X1[v.row0+r][0] }
