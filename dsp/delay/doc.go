// Package delay provides the per-channel circular buffer of the delay
// effect. A [Line] is sized once in the prepare phase and then written
// exactly once per sample; reads are fractional and select an
// interpolation kernel from package interp on every call.
package delay
