package pattern

import (
	"time"

	"github.com/google/uuid"
)

type Tipo string

const (
	TipoCosto Tipo = "costo"
	TipoVenta Tipo = "venta"
)

// SystemGroupName is the reserved group holding fallback patterns that
// apply to every provider.
const SystemGroupName = "SISTEMA"

// Target fields a pattern can extract into an invoice.
const (
	FieldNumero           = "numero_factura"
	FieldFechaEmision     = "fecha_emision"
	FieldFechaVencimiento = "fecha_vencimiento"
	FieldMonto            = "monto"
	FieldMoneda           = "moneda"
	FieldOT               = "ot"
	FieldMBL              = "mbl"
	FieldHBL              = "hbl"
	FieldContenedor       = "contenedor"
	FieldTaxID            = "ruc"
)

var TargetFields = []string{
	FieldNumero, FieldFechaEmision, FieldFechaVencimiento, FieldMonto, FieldMoneda,
	FieldOT, FieldMBL, FieldHBL, FieldContenedor, FieldTaxID,
}

func validField(f string) bool {
	for _, t := range TargetFields {
		if t == f {
			return true
		}
	}

	return false
}

// Group is a container of patterns, tied to a provider (costo) or a
// document type (venta).
type Group struct {
	ID            uuid.UUID  `json:"id"`
	Name          string     `json:"name"`
	Tipo          Tipo       `json:"tipo_patron"`
	ProviderID    *uuid.UUID `json:"provider_id,omitempty"`
	TipoDocumento string     `json:"tipo_documento"`
	Priority      int        `json:"priority"`
	Active        bool       `json:"is_active"`
	System        bool       `json:"is_system"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

type TestCase struct {
	Input    string `json:"input"`
	Expected string `json:"expected"`
}

// Pattern is one extraction rule.
type Pattern struct {
	ID            uuid.UUID  `json:"id"`
	GroupID       uuid.UUID  `json:"group_id"`
	Name          string     `json:"name"`
	TargetField   string     `json:"target_field"`
	Regex         string     `json:"regex"`
	CaseSensitive bool       `json:"case_sensitive"`
	Priority      int        `json:"priority"`
	Active        bool       `json:"is_active"`
	TestCases     []TestCase `json:"test_cases"`
	UsoCount      int64      `json:"uso_count"`
	ExitoCount    int64      `json:"exito_count"`
	UltimaUso     *time.Time `json:"ultima_uso,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// Candidate is an active pattern loaded for evaluation together with the
// provider of its group. System patterns have no provider.
type Candidate struct {
	Pattern
	ProviderID *uuid.UUID
	System     bool
}

// Attempt is one pattern evaluation, recorded into usage statistics.
type Attempt struct {
	PatternID uuid.UUID `json:"pattern_id"`
	Field     string    `json:"-"`
	Success   bool      `json:"success"`
}

// Extraction is the outcome of applying a catalog to a text.
type Extraction struct {
	Fields map[string]string
	// MatchedBy names the pattern that produced each field.
	MatchedBy map[string]uuid.UUID
	Attempts  []Attempt
}

// ProviderScore ranks how well a provider's patterns fit a text.
type ProviderScore struct {
	ProviderID  uuid.UUID          `json:"provider_id"`
	Hits        int                `json:"total_hits"`
	Evaluated   int                `json:"evaluated"`
	Confidence  float64            `json:"confidence"`
	PatternHits map[uuid.UUID]bool `json:"per_pattern_hits"`
}

// TestReport is the outcome of running a pattern's test cases.
type TestReport struct {
	Passed      int               `json:"passed"`
	Total       int               `json:"total"`
	SuccessRate float64           `json:"success_rate"`
	Results     []TestCaseOutcome `json:"results"`
}

type TestCaseOutcome struct {
	TestCase
	Got    string `json:"got"`
	Passed bool   `json:"passed"`
}
