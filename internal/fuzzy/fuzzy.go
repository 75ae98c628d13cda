// Package fuzzy implements the substring-tolerant similarity ratio used to
// compare URL tokens against downloaded filenames.
package fuzzy

import (
	"math"
	"strings"
)

// PartialRatio reports the best similarity in [0,100] between the shorter of
// a and b and any equal-length window of the longer one. A full substring
// occurrence scores 100; empty input scores 0.
func PartialRatio(a, b string) int {
	if a == "" || b == "" {
		return 0
	}
	short, long := a, b
	if len(short) > len(long) {
		short, long = long, short
	}
	if strings.Contains(long, short) {
		return 100
	}

	best := 0
	for i := 0; i+len(short) <= len(long); i++ {
		if r := Ratio(short, long[i:i+len(short)]); r > best {
			best = r
		}
	}
	return best
}

// Ratio is the plain similarity of two strings: twice the length of their
// longest common subsequence over the sum of their lengths, scaled to 0-100.
func Ratio(a, b string) int {
	if len(a) == 0 && len(b) == 0 {
		return 100
	}
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	m := lcs(a, b)
	return int(math.Round(200 * float64(m) / float64(len(a)+len(b))))
}

func lcs(a, b string) int {
	prev := make([]int, len(b)+1)
	cur := make([]int, len(b)+1)
	for i := 1; i <= len(a); i++ {
		for j := 1; j <= len(b); j++ {
			if a[i-1] == b[j-1] {
				cur[j] = prev[j-1] + 1
			} else if prev[j] >= cur[j-1] {
				cur[j] = prev[j]
			} else {
				cur[j] = cur[j-1]
			}
		}
		prev, cur = cur, prev
	}
	return prev[len(b)]
}
