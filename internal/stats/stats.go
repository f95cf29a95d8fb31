// Package stats contains typing-speed calculations for the live session.
package stats

import (
	"math"
	"strings"
	"time"
)

const sparkChars = " .:-=+*#%@"

// CharsPerWord is the conventional average word length.
const CharsPerWord = 5.0

// WPM computes round((chars/5)/minutes). ok is false when no time has
// elapsed, in which case no finite rate exists.
func WPM(chars int, elapsed time.Duration) (wpm int, ok bool) {
	if elapsed <= 0 || chars < 0 {
		return 0, false
	}
	minutes := elapsed.Minutes()
	if minutes <= 0 {
		return 0, false
	}
	rate := (float64(chars) / CharsPerWord) / minutes
	if math.IsInf(rate, 0) || math.IsNaN(rate) {
		return 0, false
	}
	return int(math.Round(rate)), true
}

// MovingAverage computes a rolling mean over the provided window size.
func MovingAverage(values []float64, window int) []float64 {
	if window <= 1 || len(values) == 0 {
		out := make([]float64, len(values))
		copy(out, values)
		return out
	}
	out := make([]float64, len(values))
	var sum float64
	for i := 0; i < len(values); i++ {
		sum += values[i]
		if i >= window {
			sum -= values[i-window]
		}
		den := float64(i + 1)
		if i >= window {
			den = float64(window)
		}
		out[i] = sum / den
	}
	return out
}

// Sparkline renders a single-line ASCII sparkline for the values.
func Sparkline(values []float64) string {
	if len(values) == 0 {
		return ""
	}
	minVal := values[0]
	maxVal := values[0]
	for _, v := range values[1:] {
		if v < minVal {
			minVal = v
		}
		if v > maxVal {
			maxVal = v
		}
	}
	if math.Abs(maxVal-minVal) < 1e-9 {
		return strings.Repeat(string(sparkChars[len(sparkChars)/2]), len(values))
	}
	var b strings.Builder
	for _, v := range values {
		pos := (v - minVal) / (maxVal - minVal)
		idx := int(math.Round(pos * float64(len(sparkChars)-1)))
		if idx < 0 {
			idx = 0
		}
		if idx >= len(sparkChars) {
			idx = len(sparkChars) - 1
		}
		b.WriteByte(sparkChars[idx])
	}
	return b.String()
}

// Samples keeps the most recent WPM readings of the live session.
type Samples struct {
	limit  int
	values []float64
}

// NewSamples returns a buffer holding at most limit readings.
func NewSamples(limit int) *Samples {
	if limit < 1 {
		limit = 1
	}
	return &Samples{limit: limit}
}

// Add records a reading, dropping the oldest when full.
func (s *Samples) Add(wpm int) {
	s.values = append(s.values, float64(wpm))
	if over := len(s.values) - s.limit; over > 0 {
		s.values = append(s.values[:0], s.values[over:]...)
	}
}

// Reset drops every reading.
func (s *Samples) Reset() {
	s.values = s.values[:0]
}

// Len returns the number of readings held.
func (s *Samples) Len() int {
	return len(s.values)
}

// Trend renders the readings smoothed over window as a sparkline.
func (s *Samples) Trend(window int) string {
	return Sparkline(MovingAverage(s.values, window))
}
