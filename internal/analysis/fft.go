package analysis

import (
	"math/cmplx"

	"gonum.org/v1/gonum/dsp/fourier"
)

// PowerSpectrum returns |X[k]| for k = 0 .. len(data)/2 of the real DFT of
// data. Any length is accepted; an empty sequence yields nil.
func PowerSpectrum(data []float64) []float64 {
	if len(data) == 0 {
		return nil
	}
	coeff := fourier.NewFFT(len(data)).Coefficients(nil, data)
	ps := make([]float64, len(coeff))
	for i, c := range coeff {
		ps[i] = cmplx.Abs(c)
	}
	return ps
}

// BinFrequency is the frequency of bin k, in cycles per sample, for a
// sequence of n samples.
func BinFrequency(k, n int) float64 {
	if n == 0 {
		return 0
	}
	return float64(k) / float64(n)
}

// DominantBin returns the index of the largest bin after DC, or 0 when
// there is none.
func DominantBin(ps []float64) int {
	maxPower := 0.0
	maxIdx := 0
	for i := 1; i < len(ps); i++ {
		if ps[i] > maxPower {
			maxPower = ps[i]
			maxIdx = i
		}
	}
	return maxIdx
}
