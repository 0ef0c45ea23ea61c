// Package physics provides the dynamical system whose phase portrait is drawn.
//
// [Linear] implements [dynamo.System] for dX/dt = A·X. The instance used by
// the pipeline is [NewSpiralSink]:
//
//	dx0/dt = -x0 - 3·x1
//	dx1/dt =  3·x0 - x1
//
// Its eigenvalues are -1 ± 3i, so every trajectory spirals into the origin.
package physics
