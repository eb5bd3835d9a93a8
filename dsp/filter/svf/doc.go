// Package svf provides a topology-preserving-transform state-variable filter
// with one set of integrator state per channel.
//
// Coefficients are shared across channels and recomputed only by
// [Filter.SetCutoffFrequency] and [Filter.SetResonance]. Callers running a
// smoothed cutoff should call SetCutoffFrequency only when the value changed.
package svf
