package viz

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/san-kum/phaseportrait/internal/dynamo"
	"github.com/san-kum/phaseportrait/internal/field"
	"github.com/san-kum/phaseportrait/internal/physics"
)

func TestCanvasSetAndLine(t *testing.T) {
	c := NewCanvas(4, 2)
	if w, h := c.PixelSize(); w != 8 || h != 8 {
		t.Fatalf("pixel size: %dx%d", w, h)
	}

	c.Set(0, 0)
	if c.Grid[0][0] != 0x2801 {
		t.Errorf("expected dot 1, got %U", c.Grid[0][0])
	}
	c.Set(-1, 3)
	c.Set(100, 100)

	c.DrawLine(0, 7, 7, 7)
	for x := 0; x < 8; x++ {
		if !c.IsSet(x, 7) {
			t.Errorf("pixel (%d, 7) not set", x)
		}
	}

	c.Clear()
	for row := 0; row < c.Height; row++ {
		for col := 0; col < c.Width; col++ {
			if !c.Blank(col, row) {
				t.Errorf("cell (%d, %d) not blank after Clear", col, row)
			}
		}
	}
	if lines := strings.Count(c.String(), "\n"); lines != 2 {
		t.Errorf("expected 2 lines, got %d", lines)
	}
}

func testScene(t *testing.T) Scene {
	t.Helper()
	g, err := field.Sample(physics.NewSpiralSink(), field.Axis{Min: -2, Max: 2, N: 10}, field.Axis{Min: -2, Max: 3, N: 10})
	if err != nil {
		t.Fatal(err)
	}
	traj := &dynamo.Result{States: []dynamo.State{{-1, -1}, {-0.5, -1}, {0, -0.5}, {0, 0}}}
	return Scene{Grid: g, Trajectories: []*dynamo.Result{traj}, XMin: -2, XMax: 2, YMin: -2, YMax: 2}
}

func lit(c *Canvas) int {
	n := 0
	for row := 0; row < c.Height; row++ {
		for col := 0; col < c.Width; col++ {
			if !c.Blank(col, row) {
				n++
			}
		}
	}
	return n
}

func TestSceneDrawLayers(t *testing.T) {
	s := testScene(t)

	l := s.Draw(40, 20, true, true)
	if lit(l.Arrows) == 0 {
		t.Error("no arrows drawn")
	}
	if lit(l.Paths) == 0 {
		t.Error("no trajectory drawn")
	}

	l = s.Draw(40, 20, false, true)
	if lit(l.Arrows) != 0 {
		t.Error("arrows drawn while disabled")
	}
	l = s.Draw(40, 20, true, false)
	if lit(l.Paths) != 0 {
		t.Error("trajectory drawn while disabled")
	}
}

func TestSceneMapsCorners(t *testing.T) {
	s := testScene(t)
	c := NewCanvas(10, 5)
	if x, y := s.toPixel(c, -2, 2); x != 0 || y != 0 {
		t.Errorf("top-left mapped to (%d, %d)", x, y)
	}
	if x, y := s.toPixel(c, 2, -2); x != 19 || y != 19 {
		t.Errorf("bottom-right mapped to (%d, %d)", x, y)
	}
}

func TestLayersRender(t *testing.T) {
	out := testScene(t).Draw(30, 15, true, true).Render(lipgloss.NewStyle(), lipgloss.NewStyle())
	if got := strings.Count(out, "\n"); got != 15 {
		t.Errorf("expected 15 rows, got %d", got)
	}
	dots := 0
	for _, r := range out {
		if r > brailleBlank && r <= 0x28ff {
			dots++
		}
	}
	if dots == 0 {
		t.Error("rendered output has no braille dots")
	}
}

func TestTimeSeries(t *testing.T) {
	if TimeSeries(nil, 40, 5) != "" {
		t.Error("nil trajectory should render empty")
	}
	traj := &dynamo.Result{States: []dynamo.State{{-1, -1}, {-0.5, -0.8}, {0, -0.2}, {0.1, 0}}}
	out := TimeSeries(traj, 40, 5)
	if !strings.Contains(out, "x1 (blue)") {
		t.Errorf("missing caption:\n%s", out)
	}
}

func TestViewerKeys(t *testing.T) {
	v := NewViewer(testScene(t), "Phase Portrait")
	if !v.showTrajectory || !v.showArrows {
		t.Fatal("layers should start enabled")
	}

	m, _ := v.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("t")})
	v = m.(Viewer)
	if v.showTrajectory {
		t.Error("t should hide the trajectory")
	}

	m, _ = v.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("+")})
	v = m.(Viewer)
	if v.zoom != 2 {
		t.Errorf("zoom: %g", v.zoom)
	}
	if s := v.visible(); s.XMin != -1 || s.XMax != 1 {
		t.Errorf("zoomed x range: [%g, %g]", s.XMin, s.XMax)
	}

	m, _ = v.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
	v = m.(Viewer)
	if v.width != 100 || v.height != 40 {
		t.Error("window size not tracked")
	}
	if !strings.Contains(v.View(), "Phase Portrait") {
		t.Error("view missing title")
	}

	_, cmd := v.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	if cmd == nil {
		t.Fatal("q should quit")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("q should return tea.Quit")
	}
}
