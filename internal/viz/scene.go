package viz

import (
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/san-kum/phaseportrait/internal/dynamo"
	"github.com/san-kum/phaseportrait/internal/field"
)

// Scene is everything needed to draw one portrait frame.
type Scene struct {
	Grid         *field.Grid
	Trajectories []*dynamo.Result
	XMin, XMax   float64
	YMin, YMax   float64
}

// Layers holds the quiver and the trajectories on separate canvases so
// they can be colored independently.
type Layers struct {
	Arrows *Canvas
	Paths  *Canvas
}

// Draw rasterises the scene onto w×h character cells.
func (s Scene) Draw(w, h int, arrows, paths bool) Layers {
	l := Layers{Arrows: NewCanvas(w, h), Paths: NewCanvas(w, h)}
	if w <= 0 || h <= 0 || s.XMax <= s.XMin || s.YMax <= s.YMin {
		return l
	}
	if arrows && s.Grid != nil && !s.Grid.Empty() {
		s.drawArrows(l.Arrows)
	}
	if paths {
		for _, traj := range s.Trajectories {
			s.drawPath(l.Paths, traj)
		}
	}
	return l
}

// toPixel maps state-space coordinates to sub-pixels, y pointing down.
func (s Scene) toPixel(c *Canvas, x, y float64) (int, int) {
	pw, ph := c.PixelSize()
	px := (x - s.XMin) / (s.XMax - s.XMin) * float64(pw-1)
	py := (s.YMax - y) / (s.YMax - s.YMin) * float64(ph-1)
	return int(math.Round(px)), int(math.Round(py))
}

func (s Scene) inside(x, y float64) bool {
	return x >= s.XMin && x <= s.XMax && y >= s.YMin && y <= s.YMax
}

// drawArrows scales every derivative so the longest spans one grid cell,
// keeping relative magnitudes like the raster renderer.
func (s Scene) drawArrows(c *Canvas) {
	g := s.Grid
	rows, cols := g.Dims()
	maxMag := g.MaxMagnitude()
	if maxMag == 0 {
		return
	}

	cellX := (s.XMax - s.XMin) / float64(cols)
	cellY := (s.YMax - s.YMin) / float64(rows)
	if cols > 1 {
		cellX = math.Abs(g.X0[0][1] - g.X0[0][0])
	}
	if rows > 1 {
		cellY = math.Abs(g.X1[1][0] - g.X1[0][0])
	}
	scale := 0.9 * math.Min(cellX, cellY) / maxMag

	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			x, y := g.X0[i][j], g.X1[i][j]
			if !s.inside(x, y) {
				continue
			}
			x0, y0 := s.toPixel(c, x, y)
			x1, y1 := s.toPixel(c, x+g.DX0[i][j]*scale, y+g.DX1[i][j]*scale)
			c.DrawLine(x0, y0, x1, y1)
		}
	}
}

func (s Scene) drawPath(c *Canvas, traj *dynamo.Result) {
	if traj == nil {
		return
	}
	for k := 1; k < len(traj.States); k++ {
		a, b := traj.States[k-1], traj.States[k]
		if !s.inside(a[0], a[1]) && !s.inside(b[0], b[1]) {
			continue
		}
		x0, y0 := s.toPixel(c, a[0], a[1])
		x1, y1 := s.toPixel(c, b[0], b[1])
		c.DrawLine(x0, y0, x1, y1)
	}
}

// Render merges the layers cell by cell. A cell touched by a path is
// drawn in the path color with the arrow dots folded in; other cells use
// the arrow color.
func (l Layers) Render(arrowStyle, pathStyle lipgloss.Style) string {
	var b strings.Builder
	for row := 0; row < l.Arrows.Height; row++ {
		for col := 0; col < l.Arrows.Width; col++ {
			a := l.Arrows.Grid[row][col]
			switch {
			case !l.Paths.Blank(col, row):
				b.WriteString(pathStyle.Render(string(a | l.Paths.Grid[row][col])))
			case !l.Arrows.Blank(col, row):
				b.WriteString(arrowStyle.Render(string(a)))
			default:
				b.WriteRune(' ')
			}
		}
		b.WriteRune('\n')
	}
	return b.String()
}
