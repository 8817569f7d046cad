package transition

// SampleCount is the number of candidates for a window of span seconds at
// rate samples per second, never less than one.
func SampleCount(span, rate float64) int {
	return max(1, int(span*rate))
}

// Linspace returns n evenly spaced values from start to end inclusive.
// A single value is start.
func Linspace(start, end float64, n int) []float64 {
	if n <= 0 {
		return nil
	}
	out := make([]float64, n)
	if n == 1 {
		out[0] = start
		return out
	}
	step := (end - start) / float64(n-1)
	for i := range out {
		out[i] = start + step*float64(i)
	}
	out[n-1] = end
	return out
}

// tailTimes are the candidate cut points near the end of a clip.
func tailTimes(duration, window, rate, eps float64) []float64 {
	safe := max(0, duration-eps)
	span := min(window, duration)
	return Linspace(max(0, safe-span), safe, SampleCount(span, rate))
}

// headTimes are the candidate start points near the beginning of a clip.
func headTimes(duration, window, rate float64) []float64 {
	span := min(window, duration)
	return Linspace(0, span, SampleCount(span, rate))
}
