// Package match scores candidate download filenames against requested URLs.
// Content evidence dominates: filenames are frequently opaque or randomized
// by the browser, while a page snapshot almost always embeds its own URL or
// domain somewhere in the first megabyte.
package match

import (
	"io"
	"os"
	"path/filepath"
	"strings"

	"urlsnap/internal/fuzzy"
	"urlsnap/internal/logger"
	"urlsnap/internal/urlparts"
)

// sniffLimit bounds how much of a candidate file is inspected for content
// evidence.
const sniffLimit = 1 << 20

// Config carries the scoring policy. MinimumScore rejects any combined score
// below it; ContentWeight and FilenameWeight set the relative trust between
// the two evidence sources and must sum to 1.
type Config struct {
	MinimumScore   int
	ContentWeight  float64
	FilenameWeight float64
}

// DefaultConfig mirrors the tuning the heuristic was calibrated with.
func DefaultConfig() Config {
	return Config{MinimumScore: 60, ContentWeight: 0.7, FilenameWeight: 0.3}
}

// Selector picks the best-scoring candidate file for a URL.
type Selector struct {
	cfg Config
	log logger.Logger
}

func NewSelector(cfg Config, l logger.Logger) *Selector {
	if l == nil {
		l = logger.NewNop()
	}
	return &Selector{cfg: cfg, log: l}
}

// Best returns the candidate with the strictly highest combined score that
// also clears MinimumScore, together with that score truncated to int. Ties
// keep the first-seen candidate. ("", 0) means nothing qualified.
func (s *Selector) Best(rawURL string, candidates []string, dir string) (string, int) {
	parts := urlparts.Parts(rawURL)
	domain := urlparts.Domain(rawURL)

	var best string
	var bestScore float64
	for _, cand := range candidates {
		content := s.ContentScore(filepath.Join(dir, cand), domain, rawURL)
		name := FilenameScore(parts, cand)
		final := float64(content)*s.cfg.ContentWeight + float64(name)*s.cfg.FilenameWeight
		if final > bestScore && final >= float64(s.cfg.MinimumScore) {
			bestScore = final
			best = cand
		}
	}
	return best, int(bestScore)
}

// ContentScore inspects up to the first 1 MiB of the file at path for
// occurrences of the full URL (100), the domain (80) or individual URL
// tokens (60 + 10 per token, capped at 90). Read failures score 0 and are
// never propagated.
func (s *Selector) ContentScore(path, domain, rawURL string) int {
	f, err := os.Open(path)
	if err != nil {
		s.log.Warn("content check failed", "path", path, "error", err.Error())
		return 0
	}
	defer f.Close()

	buf, err := io.ReadAll(io.LimitReader(f, sniffLimit))
	if err != nil {
		s.log.Warn("content check failed", "path", path, "error", err.Error())
		return 0
	}
	content := strings.ToValidUTF8(string(buf), "")

	if strings.Contains(content, rawURL) {
		return 100
	}
	if domain != "" && strings.Contains(content, domain) {
		return 80
	}
	tokens := 0
	for _, part := range strings.Split(rawURL, "/") {
		if part != "" && strings.Contains(content, part) {
			tokens++
		}
	}
	if tokens > 0 {
		score := 60 + tokens*10
		if score > 90 {
			score = 90
		}
		return score
	}
	return 0
}

// FilenameScore is the maximum partial fuzzy ratio between any of the URL
// tokens and the candidate filename, case-insensitive. No tokens scores 0.
func FilenameScore(parts []string, candidate string) int {
	lower := strings.ToLower(candidate)
	best := 0
	for _, part := range parts {
		if r := fuzzy.PartialRatio(strings.ToLower(part), lower); r > best {
			best = r
		}
	}
	return best
}
