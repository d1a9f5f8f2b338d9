package ranking

// Normalize maps a raw value into [0,1] relative to a batch maximum.
// It returns 0 when either input is zero; otherwise value/max. No clamping
// is applied beyond that: callers must supply a true upper bound from the
// batch or the ratio can exceed 1.
func Normalize(value, max float64) float64 {
	if value == 0 || max == 0 {
		return 0
	}
	return value / max
}

// RecencyScore scores a publication year against a [startYear, endYear]
// window. The window width is floored to 1 to avoid zero-width windows.
// A zero year scores 0.
func RecencyScore(year, startYear, endYear int) float64 {
	if year == 0 {
		return 0
	}
	yearRange := endYear - startYear
	if yearRange < 1 {
		yearRange = 1
	}
	return Normalize(float64(year-startYear), float64(yearRange))
}

// CitationScore scores a citation count against the batch maximum.
func CitationScore(citations, maxCitations int) float64 {
	return Normalize(float64(citations), float64(maxCitations))
}
