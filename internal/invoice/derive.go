package invoice

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/forwarder/internal/money"
	"github.com/MrJamesThe3rd/forwarder/internal/provision"
)

// ApplicableAmount derives monto_aplicable from the face value, the applied
// credit notes and the latest resolved dispute. Every adjustment is taken
// against the original monto and the result is bounded to [0, monto].
func ApplicableAmount(monto decimal.Decimal, notes []*CreditNote, disputes []*Dispute) decimal.Decimal {
	reduction := decimal.Zero

	for _, n := range notes {
		if n.Estado == NotaAplicada {
			reduction = reduction.Add(n.Monto)
		}
	}

	if d := latestResolved(disputes); d != nil {
		switch d.Resultado {
		case ResultadoAprobadaTotal:
			reduction = reduction.Add(d.MontoDisputa)
		case ResultadoAprobadaParcial:
			reduction = reduction.Add(d.MontoRecuperado)
		}
	}

	return money.Round2(money.Clamp(monto.Sub(reduction), decimal.Zero, monto))
}

// latestResolved returns the most recently resolved dispute with an outcome.
func latestResolved(disputes []*Dispute) *Dispute {
	var latest *Dispute

	for _, d := range disputes {
		if d.Resultado == ResultadoPendiente || d.Resultado == "" {
			continue
		}

		if latest == nil || resolvedAfter(d, latest) {
			latest = d
		}
	}

	return latest
}

func resolvedAfter(a, b *Dispute) bool {
	at, bt := a.CreatedAt, b.CreatedAt
	if a.ResolvedAt != nil {
		at = *a.ResolvedAt
	}

	if b.ResolvedAt != nil {
		bt = *b.ResolvedAt
	}

	return at.After(bt)
}

// PaymentStateFor derives estado_pago.
func PaymentStateFor(aplicable, pagado decimal.Decimal) EstadoPago {
	switch {
	case !pagado.IsPositive():
		return PagoPendiente
	case pagado.GreaterThanOrEqual(aplicable):
		return PagoTotal
	default:
		return PagoParcial
	}
}

// DueAlert reports whether a credit invoice falls due within window days
// after today, today itself excluded.
func DueAlert(tipo TipoPago, vencimiento *time.Time, today time.Time, window int) bool {
	if tipo != TipoCredito || vencimiento == nil {
		return false
	}

	d := dateOnly(*vencimiento)
	t := dateOnly(today)

	return d.After(t) && !d.After(t.AddDate(0, 0, window))
}

// Overdue reports whether a credit invoice is past due with money owed.
func (i *Invoice) Overdue(today time.Time) bool {
	return i.TipoPago == TipoCredito && i.FechaVencimiento != nil &&
		dateOnly(*i.FechaVencimiento).Before(dateOnly(today)) && i.Pendiente().IsPositive()
}

// ProvisionStateForDispute maps a dispute outcome onto the invoice's
// provision state.
func ProvisionStateForDispute(d *Dispute, monto decimal.Decimal) provision.State {
	switch d.Resultado {
	case ResultadoAprobadaTotal:
		if d.MontoDisputa.GreaterThanOrEqual(monto) {
			return provision.StateAnulada
		}

		return provision.StateAnuladaParcialmente
	case ResultadoAprobadaParcial:
		return provision.StateAnuladaParcialmente
	default:
		return provision.StateProvisionada
	}
}

// rederive recomputes the derived money columns of inv in place.
func rederive(inv *Invoice, notes []*CreditNote, disputes []*Dispute) {
	inv.MontoAplicable = ApplicableAmount(inv.Monto, notes, disputes)
	inv.EstadoPago = PaymentStateFor(inv.MontoAplicable, inv.MontoPagado)
}

func dateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
