package contacts

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	t.Run("maps known metro aliases", func(t *testing.T) {
		strategy := Classify("SF")

		assert.Equal(t, METRO_PRIMARY, strategy.Strategy)
		assert.Equal(t, "san francisco, california", strategy.MetroLocation)
		assert.Equal(t, "sf", strategy.City)
	})

	t.Run("recognizes metros spelled with a state", func(t *testing.T) {
		strategy := Classify("Chicago, Illinois")

		assert.Equal(t, METRO_PRIMARY, strategy.Strategy)
		assert.Equal(t, "chicago, illinois", strategy.MetroLocation)
		assert.Equal(t, "chicago", strategy.City)
		assert.Equal(t, "illinois", strategy.State)
	})

	t.Run("falls back to locality for unknown cities", func(t *testing.T) {
		strategy := Classify("Smalltown, Iowa")

		assert.Equal(t, LOCALITY_PRIMARY, strategy.Strategy)
		assert.Empty(t, strategy.MetroLocation)
		assert.Equal(t, "smalltown", strategy.City)
		assert.Equal(t, "iowa", strategy.State)
	})

	t.Run("matches metro substrings", func(t *testing.T) {
		strategy := Classify("San Francisco Bay Area, CA")

		assert.Equal(t, METRO_PRIMARY, strategy.Strategy)
		assert.Equal(t, "san francisco, california", strategy.MetroLocation)
	})

	t.Run("keeps only the first segment after the comma as state", func(t *testing.T) {
		strategy := Classify("Springfield, Missouri, USA")

		assert.Equal(t, "springfield", strategy.City)
		assert.Equal(t, "missouri", strategy.State)
	})

	t.Run("preserves the original input", func(t *testing.T) {
		strategy := Classify("  New York  ")

		assert.Equal(t, METRO_PRIMARY, strategy.Strategy)
		assert.Equal(t, "  New York  ", strategy.OriginalInput)
	})
}
