// Package effects provides the signal path of the clip delay.
//
// Delay is the stereo processor: two fractional delay lines with feedback,
// an effect slot and low/high cut filters inside the feedback path, dry/wet
// mix, an output clipper and output gain. It follows a params.Snapshot per
// block and smooths every control per sample.
//
// The waveshapers used by the effect slot and the output clipper are plain
// functions (SoftClip, HardClip, Inflator, TapeTube, OddEven, Swell) selected
// through ShaperMode. Distortion wraps them as a standalone stage with drive
// and dry/wet mix.
//
// Build with the fastmath tag to evaluate the shaper transcendentals with
// fast approximations.
package effects
