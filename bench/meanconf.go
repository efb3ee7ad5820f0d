package bench

import "math"

// tCritical999 holds the two-sided Student-t critical values for a
// 99.9% confidence level, indexed by degrees of freedom 1..30. Degrees
// beyond the table clamp to the last entry.
var tCritical999 = [...]float64{
	636.6, 31.60, 12.92, 8.610, 6.869, 5.959, 5.408, 5.041,
	4.781, 4.587, 4.437, 4.318, 4.221, 4.140, 4.073, 4.015, 3.965,
	3.922, 3.883, 3.850, 3.819, 3.792, 3.768, 3.745, 3.725, 3.707,
	3.690, 3.674, 3.659, 3.646,
}

// An Interval accumulates latency samples from repeated trials and
// reports the mean with its 99.9% confidence bounds.
type Interval struct {
	samples []float64
}

// NewInterval creates an accumulator sized for n samples.
func NewInterval(n int) *Interval {
	return &Interval{samples: make([]float64, 0, n)}
}

// Add records one sample.
func (c *Interval) Add(x float64) {
	c.samples = append(c.samples, x)
}

// Len reports the number of samples recorded so far.
func (c *Interval) Len() int {
	return len(c.samples)
}

// Bounds reports (lower, mean, upper) over the recorded samples. With a
// single sample all three collapse to its value.
func (c *Interval) Bounds() (lower, mean, upper float64) {
	n := len(c.samples)
	if n == 0 {
		return 0, 0, 0
	}

	var sum float64
	for _, x := range c.samples {
		sum += x
	}
	mean = sum / float64(n)
	if n == 1 {
		return mean, mean, mean
	}

	var sq float64
	for _, x := range c.samples {
		d := x - mean
		sq += d * d
	}
	variance := sq / float64(n-1)

	dof := n - 1
	if dof > len(tCritical999) {
		dof = len(tCritical999)
	}
	half := tCritical999[dof-1] * math.Sqrt(variance/float64(n))

	return mean - half, mean, mean + half
}
