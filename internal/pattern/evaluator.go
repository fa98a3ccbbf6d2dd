package pattern

import (
	"log/slog"
	"regexp"
	"sort"
	"strings"

	"github.com/google/uuid"
)

// Evaluate applies candidates to text field by field. Within a field a
// provider-specific pattern always shadows the system ones, then priority
// and past usage decide the order. The first non-empty match wins. Patterns
// that fail to compile are skipped with a warning on logger.
func Evaluate(logger *slog.Logger, cache *Cache, candidates []Candidate, text string) Extraction {
	out := Extraction{
		Fields:    map[string]string{},
		MatchedBy: map[string]uuid.UUID{},
	}

	for field, list := range byField(candidates) {
		for _, c := range list {
			re, err := cache.Get(c.Pattern)
			if err != nil {
				logger.Warn("skipping invalid pattern", "pattern_id", c.ID, "error", err)
				continue
			}

			value, ok := match(re, text)
			out.Attempts = append(out.Attempts, Attempt{PatternID: c.ID, Field: field, Success: ok})

			if ok {
				out.Fields[field] = value
				out.MatchedBy[field] = c.ID

				break
			}
		}
	}

	sort.Slice(out.Attempts, func(i, j int) bool {
		return out.Attempts[i].PatternID.String() < out.Attempts[j].PatternID.String()
	})

	return out
}

// byField groups candidates by target field and orders each group.
func byField(candidates []Candidate) map[string][]Candidate {
	grouped := map[string][]Candidate{}
	for _, c := range candidates {
		grouped[c.TargetField] = append(grouped[c.TargetField], c)
	}

	for field, list := range grouped {
		specific := list[:0:0]
		for _, c := range list {
			if !c.System {
				specific = append(specific, c)
			}
		}

		if len(specific) > 0 {
			list = specific
		}

		sort.SliceStable(list, func(i, j int) bool {
			if list[i].Priority != list[j].Priority {
				return list[i].Priority > list[j].Priority
			}

			if list[i].UsoCount != list[j].UsoCount {
				return list[i].UsoCount > list[j].UsoCount
			}

			return list[i].ID.String() < list[j].ID.String()
		})

		grouped[field] = list
	}

	return grouped
}

// match returns group 1 when the regex has one, otherwise the whole match.
// A match that is blank after trimming counts as a miss.
func match(re *regexp.Regexp, text string) (string, bool) {
	m := re.FindStringSubmatch(text)
	if m == nil {
		return "", false
	}

	value := m[0]
	if len(m) > 1 {
		value = m[1]
	}

	value = strings.TrimSpace(value)

	return value, value != ""
}

// RunTests evaluates a regex against its test cases. A case passes when the
// extracted value equals the expected one after trimming.
func RunTests(re *regexp.Regexp, cases []TestCase) TestReport {
	report := TestReport{Total: len(cases)}

	for _, tc := range cases {
		got, _ := match(re, tc.Input)
		passed := got == strings.TrimSpace(tc.Expected)

		if passed {
			report.Passed++
		}

		report.Results = append(report.Results, TestCaseOutcome{TestCase: tc, Got: got, Passed: passed})
	}

	if report.Total > 0 {
		report.SuccessRate = float64(report.Passed) / float64(report.Total)
	}

	return report
}

// Score evaluates every pattern of each provider independently and ranks
// providers by hits, then confidence (hits over patterns evaluated).
func Score(cache *Cache, candidates []Candidate, text string) []ProviderScore {
	scores := map[uuid.UUID]*ProviderScore{}

	for _, c := range candidates {
		if c.System || c.ProviderID == nil {
			continue
		}

		re, err := cache.Get(c.Pattern)
		if err != nil {
			continue
		}

		s, ok := scores[*c.ProviderID]
		if !ok {
			s = &ProviderScore{ProviderID: *c.ProviderID, PatternHits: map[uuid.UUID]bool{}}
			scores[*c.ProviderID] = s
		}

		_, hit := match(re, text)
		s.Evaluated++
		s.PatternHits[c.ID] = hit

		if hit {
			s.Hits++
		}
	}

	out := make([]ProviderScore, 0, len(scores))

	for _, s := range scores {
		if s.Evaluated > 0 {
			s.Confidence = float64(s.Hits) / float64(s.Evaluated)
		}

		out = append(out, *s)
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Hits != out[j].Hits {
			return out[i].Hits > out[j].Hits
		}

		if out[i].Confidence != out[j].Confidence {
			return out[i].Confidence > out[j].Confidence
		}

		return out[i].ProviderID.String() < out[j].ProviderID.String()
	})

	return out
}
