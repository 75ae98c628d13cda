package urlparts_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"urlsnap/internal/urlparts"
)

func TestParts(t *testing.T) {
	t.Parallel()

	t.Run("domain label, host and path segments in order", func(t *testing.T) {
		t.Parallel()
		got := urlparts.Parts("https://www.example.com/reports/2024/summary")
		assert.Equal(t, []string{"example", "www.example.com", "reports", "2024", "summary"}, got)
	})

	t.Run("bare domain without path", func(t *testing.T) {
		t.Parallel()
		got := urlparts.Parts("https://github.com")
		assert.Equal(t, []string{"github", "github.com"}, got)
	})

	t.Run("single-label host has no bare domain token", func(t *testing.T) {
		t.Parallel()
		got := urlparts.Parts("http://localhost/page")
		assert.Equal(t, []string{"localhost", "page"}, got)
	})

	t.Run("unparseable URL falls back to the raw string", func(t *testing.T) {
		t.Parallel()
		raw := "http://%zz invalid"
		got := urlparts.Parts(raw)
		assert.Equal(t, []string{raw}, got)
	})

	t.Run("trailing and duplicate slashes yield no empty tokens", func(t *testing.T) {
		t.Parallel()
		got := urlparts.Parts("https://a.com//x//")
		assert.Equal(t, []string{"a", "a.com", "x"}, got)
	})
}

func TestDomain(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "www.example.com", urlparts.Domain("https://www.example.com/path"))
	assert.Equal(t, "a.com", urlparts.Domain("https://a.com"))
	assert.Equal(t, "", urlparts.Domain("http://%zz invalid"))
}
