package analysis

import (
	"math/cmplx"

	"gonum.org/v1/gonum/dsp/fourier"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// PowerSpectrum returns the magnitude of the one-sided discrete Fourier
// transform of data after removing its mean. Entry i corresponds to the
// frequency i/(len(data)*dt).
func PowerSpectrum(data []float64) []float64 {
	if len(data) < 2 {
		return nil
	}

	centered := make([]float64, len(data))
	copy(centered, data)
	floats.AddConst(-stat.Mean(data, nil), centered)

	coeff := fourier.NewFFT(len(centered)).Coefficients(nil, centered)
	ps := make([]float64, len(coeff))
	for i, c := range coeff {
		ps[i] = cmplx.Abs(c)
	}
	return ps
}

// DominantFrequency returns the frequency, in cycles per time unit, of the
// largest non-zero spectral peak of data sampled every dt.
func DominantFrequency(data []float64, dt float64) float64 {
	ps := PowerSpectrum(data)
	if len(ps) < 2 || dt <= 0 {
		return 0
	}
	peak := floats.MaxIdx(ps[1:]) + 1
	return float64(peak) / (float64(len(data)) * dt)
}
