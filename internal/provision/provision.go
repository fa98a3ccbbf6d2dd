// Package provision holds the provision state machine shared by invoices and
// work orders, and the engine that keeps OT-linked invoices in step with
// their work order.
package provision

import (
	"slices"
	"time"

	"github.com/MrJamesThe3rd/forwarder/internal/apperr"
)

type State string

const (
	StatePendiente           State = "pendiente"
	StateProvisionada        State = "provisionada"
	StateDisputada           State = "disputada"
	StateRevision            State = "revision"
	StateAnulada             State = "anulada"
	StateAnuladaParcialmente State = "anulada_parcialmente"
	// StateRechazada only exists on legacy rows; nothing transitions into it.
	StateRechazada State = "rechazada"
)

var transitions = map[State][]State{
	StatePendiente:    {StateProvisionada, StateAnulada},
	StateProvisionada: {StateDisputada, StateRevision, StateAnulada, StateAnuladaParcialmente},
	StateDisputada:    {StateRevision, StateProvisionada, StateAnulada, StateAnuladaParcialmente},
	StateRevision:     {StateDisputada, StateProvisionada, StateAnulada, StateAnuladaParcialmente},
	StateRechazada:    {StateProvisionada, StateAnulada},
}

func (s State) Valid() bool {
	switch s {
	case StatePendiente, StateProvisionada, StateDisputada, StateRevision,
		StateAnulada, StateAnuladaParcialmente, StateRechazada:
		return true
	}

	return false
}

// Annulled states are frozen: linkage never touches them.
func (s State) Annulled() bool {
	return s == StateAnulada || s == StateAnuladaParcialmente
}

// CanTransition reports whether from -> to is allowed. Staying in the same
// state is always allowed.
func CanTransition(from, to State) bool {
	if from == to {
		return true
	}

	return slices.Contains(transitions[from], to)
}

// Next lists the states reachable from s.
func Next(s State) []State {
	return slices.Clone(transitions[s])
}

// Check validates from -> to and returns an ErrStateTransition error when
// the move is forbidden.
func Check(from, to State) error {
	if !to.Valid() || to == StateRechazada {
		return apperr.New(apperr.ErrStateTransition, "unknown target state %q", to)
	}

	if !CanTransition(from, to) {
		return apperr.New(apperr.ErrStateTransition, "cannot move from %s to %s", from, to)
	}

	return nil
}

// Stamp is the provision state plus the dates that travel with it between a
// work order and its linked invoices.
type Stamp struct {
	State            State
	FechaProvision   *time.Time
	FechaFacturacion *time.Time
}

// Apply moves s to the target state, stamping today's date when entering
// provisionada without an explicit date.
func (s Stamp) Apply(to State, fecha *time.Time, today time.Time) Stamp {
	out := s
	out.State = to

	if to == StateProvisionada {
		switch {
		case fecha != nil:
			out.FechaProvision = new(dateOnly(*fecha))
		case s.State != StateProvisionada || s.FechaProvision == nil:
			out.FechaProvision = new(dateOnly(today))
		}
	}

	return out
}

func (s Stamp) Equal(o Stamp) bool {
	return s.State == o.State && sameDate(s.FechaProvision, o.FechaProvision) &&
		sameDate(s.FechaFacturacion, o.FechaFacturacion)
}

func sameDate(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}

	return dateOnly(*a).Equal(dateOnly(*b))
}

func dateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// LegacyLinkedCodes are cost-type codes treated as OT-linked regardless of
// their is_linked_to_ot flag.
var LegacyLinkedCodes = []string{"FLETE", "CARGOS_NAVIERA"}

// IsLinked reports whether a cost type mirrors into its work order.
func IsLinked(flag bool, code string) bool {
	return flag || slices.Contains(LegacyLinkedCodes, code)
}
