// Package smooth provides per-sample parameter smoothers.
//
// [Ramp] moves to a new target over a fixed number of samples, either in
// equal steps or geometrically for frequency-like values. [OnePole] follows
// its target exponentially and is used for the delay time, where a
// fixed-duration ramp would bend pitch audibly at the start of a jump.
//
// Targets are set at control rate, once per block. Next is called once per
// sample on the audio thread and never allocates.
package smooth
