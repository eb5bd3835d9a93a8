package core

// Sample is the element type of an audio or control buffer.
type Sample interface {
	~float32 | ~float64
}

// EnsureLen returns a slice with the requested length, reusing buf capacity if possible.
func EnsureLen[T Sample](buf []T, n int) []T {
	if n <= 0 {
		return buf[:0]
	}

	if cap(buf) >= n {
		return buf[:n]
	}

	return make([]T, n)
}

// CopyInto copies src into dst and returns the number of copied elements.
func CopyInto[T Sample](dst, src []T) int {
	return copy(dst, src)
}

// Deinterleave splits interleaved frames into the channel slices of dst.
// It returns the number of frames written, limited by the shortest channel.
func Deinterleave(dst [][]float32, src []float32) int {
	channels := len(dst)
	if channels == 0 {
		return 0
	}

	frames := len(src) / channels
	for _, ch := range dst {
		frames = min(frames, len(ch))
	}

	for i := range frames {
		for c, ch := range dst {
			ch[i] = src[i*channels+c]
		}
	}

	return frames
}

// Interleave writes the channel slices of src into dst as interleaved frames.
// It returns the number of frames written.
func Interleave(dst []float32, src [][]float32) int {
	channels := len(src)
	if channels == 0 {
		return 0
	}

	frames := len(dst) / channels
	for _, ch := range src {
		frames = min(frames, len(ch))
	}

	for i := range frames {
		for c, ch := range src {
			dst[i*channels+c] = ch[i]
		}
	}

	return frames
}
