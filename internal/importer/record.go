package importer

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/forwarder/internal/importer/sheet"
	"github.com/MrJamesThe3rd/forwarder/internal/money"
	"github.com/MrJamesThe3rd/forwarder/internal/textnorm"
	"github.com/MrJamesThe3rd/forwarder/internal/workorder"
)

// Record is the normalized target state of one spreadsheet row. Empty
// values mean the row says nothing about that field.
type Record struct {
	Line          int                     `json:"line"`
	Number        string                  `json:"number"`
	Client        string                  `json:"client"`
	Provider      string                  `json:"provider,omitempty"`
	TipoOperacion workorder.TipoOperacion `json:"tipo_operacion,omitempty"`
	MasterBL      string                  `json:"master_bl,omitempty"`
	HouseBLs      []string                `json:"house_bls,omitempty"`
	Containers    []string                `json:"containers,omitempty"`
	ETD           *time.Time              `json:"etd,omitempty"`
	ETA           *time.Time              `json:"eta,omitempty"`
	Provision     *decimal.Decimal        `json:"provision,omitempty"`
}

// Hash is the row's content hash over its normalized fields.
func (r Record) Hash() string {
	provision := ""
	if r.Provision != nil {
		provision = r.Provision.StringFixed(2)
	}

	return workorder.HashFields(
		r.Number,
		textnorm.Name(r.Client),
		textnorm.Name(r.Provider),
		string(r.TipoOperacion),
		r.MasterBL,
		strings.Join(r.HouseBLs, ","),
		strings.Join(r.Containers, ","),
		formatDate(r.ETD),
		formatDate(r.ETA),
		provision,
	)
}

func formatDate(t *time.Time) string {
	if t == nil {
		return ""
	}

	return t.Format(time.DateOnly)
}

// parseRow turns a row into a record. A non-empty skip reason means the
// row is left out; warnings name values that were ignored.
func parseRow(row sheet.Row, year int) (rec Record, skip string, warnings []string) {
	rec.Line = row.Line
	rec.Number = workorder.NormalizeNumber(row.Get(sheet.ColNumber))

	if rec.Number == "" {
		return rec, "missing OT number", nil
	}

	y, err := workorder.ParseNumber(rec.Number)
	if err != nil {
		return rec, fmt.Sprintf("invalid OT number %q", rec.Number), nil
	}

	if y != year {
		return rec, fmt.Sprintf("OT year %02d does not match operational year %02d", y, year), nil
	}

	rec.Client = textnorm.CollapseSpaces(row.Get(sheet.ColClient))
	if rec.Client == "" {
		return rec, "row has no client", nil
	}

	rec.Provider = textnorm.CollapseSpaces(row.Get(sheet.ColProvider))
	rec.MasterBL = workorder.NormalizeRef(row.Get(sheet.ColMasterBL))
	rec.HouseBLs = workorder.SplitList(row.Get(sheet.ColHouseBL))
	rec.Containers = workorder.ExtractContainers(row.Get(sheet.ColContainers))

	if op := row.Get(sheet.ColOperation); op != "" {
		tipo, ok := parseOperation(op)
		if ok {
			rec.TipoOperacion = tipo
		} else {
			warnings = append(warnings, fmt.Sprintf("unknown operation %q ignored", op))
		}
	}

	for _, d := range []struct {
		col sheet.Column
		dst **time.Time
	}{{sheet.ColETD, &rec.ETD}, {sheet.ColETA, &rec.ETA}} {
		t, err := sheet.ParseDate(row.Get(d.col))
		if err != nil {
			warnings = append(warnings, fmt.Sprintf("%s: %v", d.col, err))
			continue
		}

		*d.dst = t
	}

	if raw := row.Get(sheet.ColProvision); raw != "" {
		amount, err := money.Parse(raw)
		if err != nil || amount.IsNegative() {
			warnings = append(warnings, fmt.Sprintf("invalid provision amount %q ignored", raw))
		} else {
			rec.Provision = &amount
		}
	}

	return rec, "", warnings
}

func parseOperation(s string) (workorder.TipoOperacion, bool) {
	switch n := textnorm.Name(s); {
	case strings.HasPrefix(n, "IMP"), n == "I":
		return workorder.TipoImport, true
	case strings.HasPrefix(n, "EXP"), n == "E":
		return workorder.TipoExport, true
	default:
		return "", false
	}
}
