package ranking

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	t.Run("zero value scores zero", func(t *testing.T) {
		assert.Equal(t, 0.0, Normalize(0, 100))
	})

	t.Run("zero max scores zero", func(t *testing.T) {
		assert.Equal(t, 0.0, Normalize(50, 0))
	})

	t.Run("ratio of value to max", func(t *testing.T) {
		assert.Equal(t, 0.5, Normalize(50, 100))
		assert.Equal(t, 1.0, Normalize(100, 100))
	})

	t.Run("no clamping above one", func(t *testing.T) {
		assert.Equal(t, 2.0, Normalize(200, 100))
	})
}

func TestRecencyScore(t *testing.T) {
	t.Run("unknown year scores zero", func(t *testing.T) {
		assert.Equal(t, 0.0, RecencyScore(0, 2020, 2025))
	})

	t.Run("start year scores zero", func(t *testing.T) {
		assert.Equal(t, 0.0, RecencyScore(2020, 2020, 2025))
	})

	t.Run("end year scores one", func(t *testing.T) {
		assert.Equal(t, 1.0, RecencyScore(2025, 2020, 2025))
	})

	t.Run("mid window scores proportionally", func(t *testing.T) {
		assert.InDelta(t, 0.6, RecencyScore(2023, 2020, 2025), 1e-9)
	})

	t.Run("zero width window floored to one", func(t *testing.T) {
		assert.Equal(t, 1.0, RecencyScore(2026, 2025, 2025))
	})
}

func TestCitationScore(t *testing.T) {
	t.Run("proportional to batch maximum", func(t *testing.T) {
		assert.Equal(t, 0.25, CitationScore(25, 100))
	})

	t.Run("uncited work scores zero", func(t *testing.T) {
		assert.Equal(t, 0.0, CitationScore(0, 100))
	})
}
