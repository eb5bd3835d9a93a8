// Package interp provides the fractional-delay interpolation kernels used by
// the delay line.
//
// Available kernels, selected with [Mode]:
//
//   - [Linear]:   2-point linear interpolation
//   - [Lagrange]: 4-point cubic Lagrange (default)
//   - [Cubic]:    4-point cubic with an alternative polynomial basis
//   - [Hermite]:  4-point Catmull-Rom style cubic Hermite
//
// Every kernel interpolates between x0 (integer delay D) and x1 (delay D+1)
// with t in [0,1). The 4-point kernels additionally use xm1 (delay D-1) and
// x2 (delay D+2). All kernels are exact at t = 0.
package interp
