// Package peaks turns raw (m/z, intensity) arrays into centroided
// peak lists and back into continuous profile arrays. Merged mobility
// scan ranges pass through both steps: centroiding collapses the
// sparse per-scan points that sample the same ion, and reprofiling
// lays the centroids back out on a regular m/z grid so downstream
// consumers see frame-level profile data.
package peaks

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
)

// Peak is one centroided peak.
type Peak struct {
	Mz        float64
	Intensity float64
}

// gaussianSigmaScale converts a full width at half maximum into the
// standard deviation of the equivalent gaussian: fwhm / (2*sqrt(2*ln2)).
const gaussianSigmaScale = 2.3548200450309493

// reprofileSpan is how far, in multiples of sigma, each peak
// contributes to the reconstructed profile.
const reprofileSpan = 4.0

// maxPeakGap splits runs of nonzero points into separate peaks when
// adjacent m/z values are further apart than this. Merged mobility
// scans have no zero baseline between ions, so gap distance is the
// only boundary signal for well separated peaks.
const maxPeakGap = 0.025

// SortByMz sorts mz ascending and applies the same permutation to
// intensity. Both slices are modified in place and must have equal
// length.
func SortByMz(mz, intensity []float64) {
	inds := make([]int, len(mz))
	floats.Argsort(mz, inds)
	reordered := make([]float64, len(intensity))
	for i, j := range inds {
		reordered[i] = intensity[j]
	}
	copy(intensity, reordered)
}

// Pick centroids a spectrum. mz must be sorted ascending. Each group
// of nonzero points closer than maxPeakGap, split further at intensity
// valleys, becomes one peak at the intensity-weighted mean m/z with
// the apex intensity.
func Pick(mz, intensity []float64) []Peak {
	n := len(mz)
	var out []Peak
	i := 0
	for i < n {
		if intensity[i] <= 0 {
			i++
			continue
		}
		start := i
		apex := i
		j := i + 1
		for j < n && intensity[j] > 0 && mz[j]-mz[j-1] <= maxPeakGap {
			if intensity[j] > intensity[apex] {
				apex = j
			}
			// A rise after the apex means a new peak begins at the
			// valley behind us.
			if j > apex && j+1 < n && intensity[j+1] > intensity[j] && intensity[j] < intensity[apex] {
				j++
				break
			}
			j++
		}
		var weighted, total float64
		for k := start; k < j; k++ {
			weighted += mz[k] * intensity[k]
			total += intensity[k]
		}
		if total > 0 {
			out = append(out, Peak{Mz: weighted / total, Intensity: intensity[apex]})
		}
		i = j
	}
	return out
}

// Reprofile reconstructs a continuous profile from centroided peaks by
// summing a gaussian of width fwhm for each peak onto a grid with
// spacing dx. The output is sorted ascending by m/z and never has
// fewer points than the input peak list.
func Reprofile(pks []Peak, fwhm, dx float64) (mz, intensity []float64) {
	if len(pks) == 0 {
		return nil, nil
	}
	sorted := make([]Peak, len(pks))
	copy(sorted, pks)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Mz < sorted[j].Mz })

	sigma := fwhm / gaussianSigmaScale
	pad := reprofileSpan * sigma
	lo := sorted[0].Mz - pad
	hi := sorted[len(sorted)-1].Mz + pad
	n := int(math.Ceil((hi-lo)/dx)) + 1
	if n < len(sorted) {
		n = len(sorted)
	}

	mz = make([]float64, n)
	floats.Span(mz, lo, lo+float64(n-1)*dx)
	intensity = make([]float64, n)

	twoSigmaSq := 2 * sigma * sigma
	for _, p := range sorted {
		// Only the grid cells within the contribution span matter.
		first := int(math.Floor((p.Mz - pad - lo) / dx))
		last := int(math.Ceil((p.Mz + pad - lo) / dx))
		if first < 0 {
			first = 0
		}
		if last >= n {
			last = n - 1
		}
		for k := first; k <= last; k++ {
			d := mz[k] - p.Mz
			intensity[k] += p.Intensity * math.Exp(-d*d/twoSigmaSq)
		}
	}
	return mz, intensity
}
