package invoice

import (
	"strings"
	"time"

	"github.com/MrJamesThe3rd/forwarder/internal/money"
	"github.com/MrJamesThe3rd/forwarder/internal/pattern"
	"github.com/MrJamesThe3rd/forwarder/internal/workorder"
)

var dateLayouts = []string{
	"02/01/2006", "2/1/2006", "02-01-2006", "02.01.2006",
	"2006-01-02", "2006/01/02", "02/01/06", "2006-01-02T15:04:05",
}

func parseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)

	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}

	return time.Time{}, false
}

// fill copies extracted fields into inv. A field is written only when the
// user never set it and it is still empty. It returns the names written.
func fill(inv *Invoice, fields map[string]string) []string {
	var written []string

	setText := func(field string, dst *string, value string) {
		value = strings.TrimSpace(value)
		if value == "" || *dst != "" || inv.userSet(field) {
			return
		}

		*dst = value
		written = append(written, field)
	}

	setDate := func(field string, dst **time.Time, value string) {
		if *dst != nil || inv.userSet(field) {
			return
		}

		if t, ok := parseDate(value); ok {
			*dst = &t
			written = append(written, field)
		}
	}

	setText(FieldNumero, &inv.Numero, fields[pattern.FieldNumero])
	setDate(FieldFechaEmision, &inv.FechaEmision, fields[pattern.FieldFechaEmision])
	setDate(FieldFechaVencimiento, &inv.FechaVencimiento, fields[pattern.FieldFechaVencimiento])
	setText(FieldOT, &inv.OTExtraido, workorder.NormalizeNumber(fields[pattern.FieldOT]))
	setText(FieldMBL, &inv.MBL, workorder.NormalizeRef(fields[pattern.FieldMBL]))
	setText(FieldHBL, &inv.HBL, workorder.NormalizeRef(fields[pattern.FieldHBL]))

	if cs := workorder.ExtractContainers(fields[pattern.FieldContenedor]); len(cs) > 0 {
		setText(FieldContenedor, &inv.Contenedor, cs[0])
	}

	if m := strings.ToUpper(strings.TrimSpace(fields[pattern.FieldMoneda])); len(m) == 3 && !inv.userSet(FieldMoneda) {
		if inv.Moneda == "" || inv.Moneda == defaultCurrency {
			if inv.Moneda != m {
				inv.Moneda = m
				written = append(written, FieldMoneda)
			}
		}
	}

	if raw := fields[pattern.FieldMonto]; raw != "" && inv.Monto.IsZero() && !inv.userSet(FieldMonto) {
		if amount, err := money.Parse(raw); err == nil && !amount.IsNegative() {
			inv.Monto = amount
			written = append(written, FieldMonto)
		}
	}

	return written
}

// matchKeys lists the references tried, in order, to link a work order.
func matchKeys(inv *Invoice) []struct {
	key   workorder.MatchKey
	value string
} {
	return []struct {
		key   workorder.MatchKey
		value string
	}{
		{workorder.MatchNumber, inv.OTExtraido},
		{workorder.MatchMasterBL, inv.MBL},
		{workorder.MatchHouseBL, inv.HBL},
		{workorder.MatchContainer, inv.Contenedor},
	}
}
