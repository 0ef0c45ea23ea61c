// Package viz renders phase portraits in the terminal.
//
//   - [Canvas]: Braille-based pixel canvas (2x4 dots per cell)
//   - [Scene]: quiver and trajectories mapped onto two canvases
//   - [Viewer]: Bubble Tea program wrapping a scene
//   - [TimeSeries]: asciigraph plot of x0(t) and x1(t)
//
// # Key Bindings
//
//	T     - Toggle trajectory overlay
//	A     - Toggle arrows
//	+/-   - Zoom in/out around the origin
//	Q     - Quit
package viz
