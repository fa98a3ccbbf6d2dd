package workorder

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var (
	numberRe    = regexp.MustCompile(`^(\d{2})OT(\d{3,4})$`)
	containerRe = regexp.MustCompile(`[A-Z]{4}\d{7}`)
)

// NormalizeNumber uppercases and strips spaces and dashes: "25-ot-001" -> "25OT001".
func NormalizeNumber(s string) string {
	return strings.NewReplacer(" ", "", "-", "", "_", "").Replace(strings.ToUpper(strings.TrimSpace(s)))
}

// NormalizeRef canonicalizes a bill-of-lading reference: uppercase, no
// whitespace.
func NormalizeRef(s string) string {
	return strings.Join(strings.Fields(strings.ToUpper(s)), "")
}

// ParseNumber validates an OT number and returns its two-digit year.
func ParseNumber(number string) (int, error) {
	m := numberRe.FindStringSubmatch(number)
	if m == nil {
		return 0, fmt.Errorf("invalid work order number %q", number)
	}

	year, _ := strconv.Atoi(m[1])

	return year, nil
}

// ExtractContainers scans a whole cell for container numbers. A match must
// not touch another letter or digit on either side, so separators of any
// kind work and glued numbers are rejected. Order is kept; duplicates are
// dropped.
func ExtractContainers(cell string) []string {
	cell = strings.ToUpper(cell)

	var (
		out  []string
		seen = map[string]bool{}
	)

	for _, loc := range containerRe.FindAllStringIndex(cell, -1) {
		if loc[0] > 0 && isAlnum(cell[loc[0]-1]) {
			continue
		}

		if loc[1] < len(cell) && isAlnum(cell[loc[1]]) {
			continue
		}

		c := cell[loc[0]:loc[1]]
		if !seen[c] {
			seen[c] = true
			out = append(out, c)
		}
	}

	return out
}

func isAlnum(b byte) bool {
	return (b >= 'A' && b <= 'Z') || (b >= '0' && b <= '9')
}

// SplitList splits a free-text cell holding several references (house BLs)
// on commas, semicolons, slashes and any whitespace.
func SplitList(cell string) []string {
	fields := strings.FieldsFunc(strings.ToUpper(cell), func(r rune) bool {
		switch r {
		case ',', ';', '/', ' ', '\t', '\n', '\r':
			return true
		}

		return false
	})

	var (
		out  []string
		seen = map[string]bool{}
	)

	for _, f := range fields {
		if !seen[f] {
			seen[f] = true
			out = append(out, f)
		}
	}

	return out
}

// HashFields is the SHA-256 of the canonical tuple of a row's normalized
// fields. Fields are joined with a unit separator so no value can spill
// into the next.
func HashFields(fields ...string) string {
	h := sha256.Sum256([]byte(strings.Join(fields, "\x1f")))
	return hex.EncodeToString(h[:])
}
