package client

import (
	"math"
	"sort"
	"strings"

	"github.com/agnivade/levenshtein"
)

// TokenSetRatio scores two names 0..100 on their word sets, so word order
// and repeated words do not matter and a name contained in the other scores
// high. Either side without words scores 0.
func TokenSetRatio(a, b string) int {
	ta, tb := tokenSet(a), tokenSet(b)
	if len(ta) == 0 || len(tb) == 0 {
		return 0
	}

	var common, onlyA, onlyB []string

	for t := range ta {
		if tb[t] {
			common = append(common, t)
		} else {
			onlyA = append(onlyA, t)
		}
	}

	for t := range tb {
		if !ta[t] {
			onlyB = append(onlyB, t)
		}
	}

	sort.Strings(common)
	sort.Strings(onlyA)
	sort.Strings(onlyB)

	base := strings.Join(common, " ")
	withA := strings.TrimSpace(base + " " + strings.Join(onlyA, " "))
	withB := strings.TrimSpace(base + " " + strings.Join(onlyB, " "))

	best := ratio(withA, withB)
	if base != "" {
		best = max(best, ratio(base, withA), ratio(base, withB))
	}

	return best
}

// ratio is the normalized edit similarity of two strings.
func ratio(a, b string) int {
	longest := max(len([]rune(a)), len([]rune(b)))
	if longest == 0 {
		return 0
	}

	d := levenshtein.ComputeDistance(a, b)

	return int(math.Round(100 * (1 - float64(d)/float64(longest))))
}

func tokenSet(s string) map[string]bool {
	out := map[string]bool{}
	for _, t := range strings.Fields(s) {
		out[t] = true
	}

	return out
}
