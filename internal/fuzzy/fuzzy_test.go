package fuzzy_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"urlsnap/internal/fuzzy"
)

func TestRatio(t *testing.T) {
	t.Parallel()

	t.Run("identical strings", func(t *testing.T) {
		t.Parallel()
		assert.Equal(t, 100, fuzzy.Ratio("report", "report"))
	})

	t.Run("no common characters", func(t *testing.T) {
		t.Parallel()
		assert.Equal(t, 0, fuzzy.Ratio("abc", "xyz"))
	})

	t.Run("partial overlap", func(t *testing.T) {
		t.Parallel()
		// lcs "ab" length 2, 200*2/(3+3) = 67
		assert.Equal(t, 67, fuzzy.Ratio("abc", "abd"))
	})

	t.Run("empty input", func(t *testing.T) {
		t.Parallel()
		assert.Equal(t, 0, fuzzy.Ratio("", "abc"))
		assert.Equal(t, 100, fuzzy.Ratio("", ""))
	})
}

func TestPartialRatio(t *testing.T) {
	t.Parallel()

	t.Run("substring scores 100", func(t *testing.T) {
		t.Parallel()
		assert.Equal(t, 100, fuzzy.PartialRatio("example", "example_page_2024.html"))
		assert.Equal(t, 100, fuzzy.PartialRatio("example_page_2024.html", "example"))
	})

	t.Run("empty input scores 0", func(t *testing.T) {
		t.Parallel()
		assert.Equal(t, 0, fuzzy.PartialRatio("", "abc"))
		assert.Equal(t, 0, fuzzy.PartialRatio("abc", ""))
	})

	t.Run("near miss scores below 100", func(t *testing.T) {
		t.Parallel()
		got := fuzzy.PartialRatio("exmple", "example_page.html")
		assert.Greater(t, got, 50)
		assert.Less(t, got, 100)
	})

	t.Run("disjoint strings score 0", func(t *testing.T) {
		t.Parallel()
		assert.Equal(t, 0, fuzzy.PartialRatio("zzz", "aaaa"))
	})
}
