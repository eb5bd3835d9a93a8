// Package params defines the control snapshot the delay processor consumes
// once per block, the ranges of every control, and a [Store] that hands
// snapshots from a control goroutine to the audio callback without locks on
// the reading side.
//
// Values are in host units: milliseconds, percent, Hz and dB. The processor
// converts them to linear factors when it sets its smoother targets.
package params
