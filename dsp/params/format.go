package params

import (
	"fmt"
	"strconv"
	"strings"
)

// FormatMilliseconds renders a delay time with precision falling as the
// value grows, switching to seconds from 1000 ms.
func FormatMilliseconds(ms float64) string {
	switch {
	case ms < 10:
		return strconv.FormatFloat(ms, 'f', 2, 64) + " ms"
	case ms < 100:
		return strconv.FormatFloat(ms, 'f', 1, 64) + " ms"
	case ms < 1000:
		return strconv.Itoa(int(ms)) + " ms"
	default:
		return strconv.FormatFloat(ms*0.001, 'f', 2, 64) + " s"
	}
}

// ParseMilliseconds parses a delay time. A trailing "ms" keeps the value in
// milliseconds. A trailing "s", or a bare number below MinDelayTimeMs, is
// read as seconds.
func ParseMilliseconds(text string) (float64, error) {
	t := strings.ToLower(strings.TrimSpace(text))

	switch {
	case strings.HasSuffix(t, "ms"):
		return parseNumber(strings.TrimSuffix(t, "ms"), text)
	case strings.HasSuffix(t, "s"):
		v, err := parseNumber(strings.TrimSuffix(t, "s"), text)
		return v * 1000, err
	}

	v, err := parseNumber(t, text)
	if err != nil {
		return 0, err
	}

	if v < MinDelayTimeMs {
		v *= 1000
	}

	return v, nil
}

// FormatHz renders a frequency in Hz below 1 kHz and in kHz above.
func FormatHz(hz float64) string {
	switch {
	case hz < 1000:
		return strconv.Itoa(int(hz)) + " Hz"
	case hz < 10000:
		return strconv.FormatFloat(hz/1000, 'f', 2, 64) + " kHz"
	default:
		return strconv.FormatFloat(hz/1000, 'f', 1, 64) + " kHz"
	}
}

// ParseHz parses a frequency. A "k" or "khz" suffix, or a bare number below
// MinCutoffHz, is read as kHz.
func ParseHz(text string) (float64, error) {
	t := strings.ToLower(strings.TrimSpace(text))
	t = strings.TrimSuffix(t, "hz")

	if strings.HasSuffix(t, "k") {
		v, err := parseNumber(strings.TrimSuffix(t, "k"), text)
		return v * 1000, err
	}

	v, err := parseNumber(t, text)
	if err != nil {
		return 0, err
	}

	if v < MinCutoffHz {
		v *= 1000
	}

	return v, nil
}

// FormatPercent renders a percentage as an integer.
func FormatPercent(v float64) string {
	return strconv.Itoa(int(v)) + " %"
}

// ParsePercent parses a percentage with an optional "%" suffix.
func ParsePercent(text string) (float64, error) {
	t := strings.TrimSuffix(strings.TrimSpace(text), "%")
	return parseNumber(t, text)
}

// FormatDecibels renders a level with one decimal.
func FormatDecibels(db float64) string {
	return strconv.FormatFloat(db, 'f', 1, 64) + " dB"
}

// ParseDecibels parses a level with an optional "dB" suffix.
func ParseDecibels(text string) (float64, error) {
	t := strings.ToLower(strings.TrimSpace(text))
	t = strings.TrimSuffix(t, "db")

	return parseNumber(t, text)
}

func parseNumber(s, original string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, fmt.Errorf("params: cannot parse %q: %w", original, err)
	}

	return v, nil
}
