package metrics

import (
	"math/cmplx"

	"github.com/mjibson/go-dsp/fft"
)

// Spectrum is the one-sided amplitude spectrum of a force signal. Contact
// buzz shows up as a strong peak well above hand motion frequencies.
type Spectrum struct {
	// Resolution is the bin width in Hz.
	Resolution float64
	// Amplitude holds one entry per bin from DC up to Nyquist, in N.
	Amplitude []float64
}

// NewSpectrum analyses samples taken at rate Hz. The mean is removed
// first so the DC bin does not dominate.
func NewSpectrum(samples []float64, rate float64) Spectrum {
	n := len(samples)
	if n < 2 || rate <= 0 {
		return Spectrum{}
	}

	var mean float64
	for _, v := range samples {
		mean += v
	}
	mean /= float64(n)
	centered := make([]float64, n)
	for i, v := range samples {
		centered[i] = v - mean
	}

	bins := fft.FFTReal(centered)
	amp := make([]float64, n/2+1)
	for i := range amp {
		amp[i] = 2 * cmplx.Abs(bins[i]) / float64(n)
	}
	// DC and, for even n, Nyquist have no mirror bin
	amp[0] /= 2
	if n%2 == 0 {
		amp[n/2] /= 2
	}
	return Spectrum{Resolution: rate / float64(n), Amplitude: amp}
}

// Dominant returns the strongest non-DC component.
func (s Spectrum) Dominant() (hz, amplitude float64) {
	if len(s.Amplitude) < 2 {
		return 0, 0
	}
	best := 1
	for i := 2; i < len(s.Amplitude); i++ {
		if s.Amplitude[i] > s.Amplitude[best] {
			best = i
		}
	}
	return float64(best) * s.Resolution, s.Amplitude[best]
}
