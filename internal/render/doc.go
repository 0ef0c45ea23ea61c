// Package render draws phase portraits as raster images with gonum/plot.
//
// The derivative grid becomes a quiver layer ([plotter.Field]) and each
// trajectory a polyline ([plotter.Line]). Arrows point along the
// derivative and keep the raw magnitudes relative to each other. The
// field is scaled by the largest vector inside the axis limits, so the
// longest arrow reaches from its grid point to the edge of its cell.
package render
