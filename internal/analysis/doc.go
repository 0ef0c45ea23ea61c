// Package analysis characterises the dynamics behind a phase portrait.
//
//   - [ClassifyFixedPoint]: type of the equilibrium from the system
//     matrix eigenvalues (spiral sink, saddle, center, ...)
//   - [LyapunovExponent]: largest exponent via trajectory separation
//   - [DominantFrequency]: strongest oscillation in a sampled series
//
// For the default system the eigenvalues are -1 ± 3i:
//
//	kind := analysis.ClassifyFixedPoint(eigs)  // SpiralSink
//	lambda := analysis.LyapunovExponent(dyn, integ, x0, dt, duration, 1e-8) // ≈ -1
package analysis
