package viz

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
)

const (
	minCanvasW = 20
	minCanvasH = 8
)

// Viewer is a Bubble Tea model showing a scene in the terminal.
type Viewer struct {
	scene          Scene
	title          string
	info           []string
	width, height  int
	showArrows     bool
	showTrajectory bool
	zoom           float64
}

func NewViewer(scene Scene, title string, info ...string) Viewer {
	return Viewer{
		scene:          scene,
		title:          title,
		info:           info,
		width:          80,
		height:         30,
		showArrows:     true,
		showTrajectory: len(scene.Trajectories) > 0,
		zoom:           1,
	}
}

func (v Viewer) Init() tea.Cmd { return nil }

func (v Viewer) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return v, tea.Quit
		case "t":
			v.showTrajectory = !v.showTrajectory
		case "a":
			v.showArrows = !v.showArrows
		case "+", "=":
			if v.zoom < 16 {
				v.zoom *= 2
			}
		case "-":
			if v.zoom > 1 {
				v.zoom /= 2
			}
		}
	case tea.WindowSizeMsg:
		v.width, v.height = msg.Width, msg.Height
	}
	return v, nil
}

// visible returns the scene with limits shrunk around their midpoint.
func (v Viewer) visible() Scene {
	s := v.scene
	cx, cy := (s.XMin+s.XMax)/2, (s.YMin+s.YMax)/2
	hx, hy := (s.XMax-s.XMin)/(2*v.zoom), (s.YMax-s.YMin)/(2*v.zoom)
	s.XMin, s.XMax = cx-hx, cx+hx
	s.YMin, s.YMax = cy-hy, cy+hy
	return s
}

func (v Viewer) canvasSize() (int, int) {
	w := v.width - 4
	h := v.height - 6 - len(v.info)
	// Braille cells are 2x4 dots and roughly 1:2; keep the plot square.
	if h*2 < w {
		w = h * 2
	} else {
		h = w / 2
	}
	return max(w, minCanvasW), max(h, minCanvasH)
}

func (v Viewer) View() string {
	w, h := v.canvasSize()
	layers := v.visible().Draw(w, h, v.showArrows, v.showTrajectory)

	var s strings.Builder
	s.WriteString(HeaderStyle.Render(v.title) + "\n")
	s.WriteString(canvasStyle.Render(layers.Render(ArrowStyle, PathStyle)) + "\n")
	for _, line := range v.info {
		s.WriteString(line + "\n")
	}
	status := fmt.Sprintf("zoom x%g  arrows %s  trajectory %s", v.zoom, onOff(v.showArrows), onOff(v.showTrajectory))
	s.WriteString(ValueStyle.Render(status) + "\n")
	s.WriteString(KeyHint.Render("T:trajectory  A:arrows  +/-:zoom  Q:quit"))
	return s.String()
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}

// RunViewer blocks until the user quits.
func RunViewer(v Viewer) error {
	_, err := tea.NewProgram(v, tea.WithAltScreen()).Run()
	return err
}
