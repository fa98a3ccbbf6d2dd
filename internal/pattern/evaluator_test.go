package pattern_test

import (
	"bytes"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/forwarder/internal/pattern"
)

func candidate(field, regex string, provider *uuid.UUID, priority int, uso int64) pattern.Candidate {
	return pattern.Candidate{
		Pattern: pattern.Pattern{
			ID:          uuid.New(),
			TargetField: field,
			Regex:       regex,
			Priority:    priority,
			UsoCount:    uso,
		},
		ProviderID: provider,
		System:     provider == nil,
	}
}

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

const invoiceText = "FACTURA No. 001-002-000123456\nFecha: 12/03/2025\nTOTAL USD 1,250.00\nMBL: MSCUAB123456"

func TestEvaluate(t *testing.T) {
	providerID := uuid.New()

	t.Run("ProviderSpecificShadowsSystem", func(t *testing.T) {
		system := candidate(pattern.FieldNumero, `FACTURA\s+No\.\s*(\S+)`, nil, 100, 1000)
		specific := candidate(pattern.FieldNumero, `(\d{3}-\d{3}-\d+)`, &providerID, 0, 0)
		// A failing specific pattern still hides the system one.
		broken := candidate(pattern.FieldMonto, `IMPORTE\s+(\S+)`, &providerID, 0, 0)
		systemMonto := candidate(pattern.FieldMonto, `TOTAL USD ([\d,.]+)`, nil, 0, 0)

		ext := pattern.Evaluate(discard, pattern.NewCache(16, time.Minute),
			[]pattern.Candidate{system, specific, broken, systemMonto}, invoiceText)

		assert.Equal(t, "001-002-000123456", ext.Fields[pattern.FieldNumero])
		assert.Equal(t, specific.ID, ext.MatchedBy[pattern.FieldNumero])
		assert.NotContains(t, ext.Fields, pattern.FieldMonto)
		assert.Len(t, ext.Attempts, 2)
	})

	t.Run("PriorityThenUsage", func(t *testing.T) {
		low := candidate(pattern.FieldMBL, `MBL:\s*(\S+)`, nil, 1, 500)
		high := candidate(pattern.FieldMBL, `(MSCU\w+)`, nil, 5, 0)
		tiedMoreUsed := candidate(pattern.FieldMBL, `MBL:\s*(MSCU)`, nil, 5, 10)

		ext := pattern.Evaluate(discard, pattern.NewCache(16, time.Minute),
			[]pattern.Candidate{low, high, tiedMoreUsed}, invoiceText)

		assert.Equal(t, "MSCU", ext.Fields[pattern.FieldMBL])
		assert.Equal(t, tiedMoreUsed.ID, ext.MatchedBy[pattern.FieldMBL])
		require.Len(t, ext.Attempts, 1)
		assert.True(t, ext.Attempts[0].Success)
	})

	t.Run("WholeMatchWithoutGroup", func(t *testing.T) {
		c := candidate(pattern.FieldFechaEmision, `\d{2}/\d{2}/\d{4}`, nil, 0, 0)

		ext := pattern.Evaluate(discard, pattern.NewCache(16, time.Minute), []pattern.Candidate{c}, invoiceText)

		assert.Equal(t, "12/03/2025", ext.Fields[pattern.FieldFechaEmision])
	})

	t.Run("BlankGroupIsMissAndFallsThrough", func(t *testing.T) {
		blank := candidate(pattern.FieldMoneda, `TOTAL(\s*)USD`, nil, 9, 0)
		next := candidate(pattern.FieldMoneda, `TOTAL\s+(USD)`, nil, 1, 0)

		ext := pattern.Evaluate(discard, pattern.NewCache(16, time.Minute), []pattern.Candidate{blank, next}, invoiceText)

		assert.Equal(t, "USD", ext.Fields[pattern.FieldMoneda])
		require.Len(t, ext.Attempts, 2)
	})

	t.Run("InvalidPatternSkipped", func(t *testing.T) {
		bad := candidate(pattern.FieldOT, `(unclosed`, nil, 9, 0)

		var logs bytes.Buffer
		logger := slog.New(slog.NewTextHandler(&logs, nil))

		ext := pattern.Evaluate(logger, pattern.NewCache(16, time.Minute), []pattern.Candidate{bad}, invoiceText)

		assert.Empty(t, ext.Fields)
		assert.Empty(t, ext.Attempts)
		assert.Contains(t, logs.String(), "skipping invalid pattern")
		assert.Contains(t, logs.String(), bad.ID.String())
	})

	t.Run("CaseInsensitiveByDefault", func(t *testing.T) {
		c := candidate(pattern.FieldMoneda, `total (usd)`, nil, 0, 0)

		ext := pattern.Evaluate(discard, pattern.NewCache(16, time.Minute), []pattern.Candidate{c}, invoiceText)

		assert.Equal(t, "USD", ext.Fields[pattern.FieldMoneda])

		c.CaseSensitive = true
		ext = pattern.Evaluate(discard, pattern.NewCache(16, time.Minute), []pattern.Candidate{c}, invoiceText)
		assert.Empty(t, ext.Fields)
	})
}

func TestCache(t *testing.T) {
	cache := pattern.NewCache(16, time.Minute)
	p := pattern.Pattern{ID: uuid.New(), Regex: `a+`}

	first, err := cache.Get(p)
	require.NoError(t, err)

	again, err := cache.Get(p)
	require.NoError(t, err)
	assert.Same(t, first, again)

	p.Regex = `b+`
	changed, err := cache.Get(p)
	require.NoError(t, err)
	assert.NotSame(t, first, changed)
	assert.True(t, changed.MatchString("B"))

	cache.Invalidate(p.ID)
	assert.Equal(t, 0, cache.Len())
}

func TestRunTests(t *testing.T) {
	re, err := pattern.Compile(`OT[:\s]*(\w+)`, false)
	require.NoError(t, err)

	report := pattern.RunTests(re, []pattern.TestCase{
		{Input: "ot: 25OT001", Expected: "25OT001"},
		{Input: "OT 25OT002", Expected: " 25OT002 "},
		{Input: "nothing", Expected: "X"},
	})

	assert.Equal(t, 3, report.Total)
	assert.Equal(t, 2, report.Passed)
	assert.InDelta(t, 0.666, report.SuccessRate, 0.01)
	assert.False(t, report.Results[2].Passed)
}

func TestScore(t *testing.T) {
	a, b := uuid.New(), uuid.New()

	candidates := []pattern.Candidate{
		candidate(pattern.FieldNumero, `FACTURA`, &a, 0, 0),
		candidate(pattern.FieldMBL, `MSCU`, &a, 0, 0),
		candidate(pattern.FieldMonto, `NOPE`, &a, 0, 0),
		candidate(pattern.FieldNumero, `FACTURA`, &b, 0, 0),
		candidate(pattern.FieldMonto, `TOTAL`, &b, 0, 0),
		candidate(pattern.FieldMonto, `TOTAL`, nil, 0, 0),
	}

	scores := pattern.Score(pattern.NewCache(16, time.Minute), candidates, invoiceText)
	require.Len(t, scores, 2)

	// Same hits; b wins on confidence.
	assert.Equal(t, b, scores[0].ProviderID)
	assert.Equal(t, 2, scores[0].Hits)
	assert.InDelta(t, 1.0, scores[0].Confidence, 0.001)
	assert.Equal(t, a, scores[1].ProviderID)
	assert.Equal(t, 3, scores[1].Evaluated)
}
