package importer

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/forwarder/internal/money"
	"github.com/MrJamesThe3rd/forwarder/internal/textnorm"
	"github.com/MrJamesThe3rd/forwarder/internal/workorder"
)

// change is one field write a record wants to make.
type change struct {
	field    workorder.Field
	current  string
	incoming string
	apply    func(ctx context.Context, wo *workorder.WorkOrder, src workorder.FieldSource) error
}

// rowPlan is what committing a record would do.
type rowPlan struct {
	rec       Record
	existing  *workorder.WorkOrder
	unchanged bool
	accepted  []change
	conflicts []conflictChange
}

type conflictChange struct {
	change
	source workorder.FieldSource
}

func (c conflictChange) descriptor(ot string) Conflict {
	return Conflict{
		OT:            ot,
		Field:         c.field,
		CurrentValue:  c.current,
		NewValue:      c.incoming,
		CurrentSource: c.source,
	}
}

type planner struct {
	clients   Clients
	providers Providers
	source    workorder.FieldSource
}

// plan compares rec with the stored work order (nil when new) and sorts
// every differing field into accepted writes and conflicts.
func (p *planner) plan(ctx context.Context, rec Record, wo *workorder.WorkOrder) (rowPlan, []string, error) {
	rp := rowPlan{rec: rec, existing: wo}

	if wo != nil && wo.RowHash == rec.Hash() {
		rp.unchanged = true
		return rp, nil, nil
	}

	changes, warnings, err := p.changes(ctx, rec, wo)
	if err != nil {
		return rp, nil, err
	}

	for _, c := range changes {
		if wo == nil {
			rp.accepted = append(rp.accepted, c)
			continue
		}

		current := wo.SourceOf(c.field)
		if p.source.CanOverwrite(current) {
			rp.accepted = append(rp.accepted, c)
			continue
		}

		rp.conflicts = append(rp.conflicts, conflictChange{change: c, source: current})
	}

	return rp, warnings, nil
}

func (p *planner) changes(ctx context.Context, rec Record, wo *workorder.WorkOrder) ([]change, []string, error) {
	var (
		out      []change
		warnings []string
	)

	if wo == nil {
		wo = &workorder.WorkOrder{}
	}

	if rec.Client != "" {
		same, err := p.sameClient(ctx, rec.Client, wo)
		if err != nil {
			return nil, nil, err
		}

		if !same {
			name := rec.Client
			out = append(out, change{
				field: workorder.FieldCliente, current: wo.ClientName, incoming: name,
				apply: func(ctx context.Context, wo *workorder.WorkOrder, _ workorder.FieldSource) error {
					a, err := p.clients.Resolve(ctx, name, "")
					if err != nil {
						return fmt.Errorf("resolving client %q: %w", name, err)
					}

					wo.ClientID = &a.ID
					wo.ClientName = a.OriginalName

					return nil
				},
			})
		}
	}

	if rec.Provider != "" {
		prov, err := p.providers.FindByName(ctx, rec.Provider)
		if err != nil {
			return nil, nil, fmt.Errorf("finding provider: %w", err)
		}

		switch {
		case prov == nil:
			warnings = append(warnings, fmt.Sprintf("unknown provider %q ignored", rec.Provider))
		case wo.ProviderID == nil || *wo.ProviderID != prov.ID:
			out = append(out, change{
				field: workorder.FieldProveedor, current: wo.ProviderName, incoming: prov.Name,
				apply: func(_ context.Context, wo *workorder.WorkOrder, _ workorder.FieldSource) error {
					wo.ProviderID = &prov.ID
					wo.ProviderName = prov.Name

					return nil
				},
			})
		}
	}

	if rec.TipoOperacion != "" && rec.TipoOperacion != wo.TipoOperacion {
		tipo := rec.TipoOperacion
		out = append(out, simple(workorder.FieldTipoOperacion, string(wo.TipoOperacion), string(tipo),
			func(wo *workorder.WorkOrder) { wo.TipoOperacion = tipo }))
	}

	if rec.MasterBL != "" && rec.MasterBL != wo.MasterBL {
		mbl := rec.MasterBL
		out = append(out, simple(workorder.FieldMasterBL, wo.MasterBL, mbl,
			func(wo *workorder.WorkOrder) { wo.MasterBL = mbl }))
	}

	if cur, in := strings.Join(wo.HouseBLs, ", "), strings.Join(rec.HouseBLs, ", "); in != "" && in != cur {
		hbls := rec.HouseBLs
		out = append(out, simple(workorder.FieldHouseBLs, cur, in,
			func(wo *workorder.WorkOrder) { wo.HouseBLs = hbls }))
	}

	if cur, in := strings.Join(wo.Containers, ", "), strings.Join(rec.Containers, ", "); in != "" && in != cur {
		containers := rec.Containers
		out = append(out, simple(workorder.FieldContainers, cur, in,
			func(wo *workorder.WorkOrder) { wo.Containers = containers }))
	}

	if cur, in := formatDate(wo.ETD), formatDate(rec.ETD); in != "" && in != cur {
		etd := rec.ETD
		out = append(out, simple(workorder.FieldETD, cur, in, func(wo *workorder.WorkOrder) { wo.ETD = etd }))
	}

	if cur, in := formatDate(wo.ETA), formatDate(rec.ETA); in != "" && in != cur {
		eta := rec.ETA
		out = append(out, simple(workorder.FieldETA, cur, in, func(wo *workorder.WorkOrder) { wo.ETA = eta }))
	}

	if rec.Provision != nil && (wo.Provision == nil || !wo.Provision.Total.Equal(*rec.Provision)) {
		cur := ""
		if wo.Provision != nil {
			cur = money.Format(wo.Provision.Total)
		}

		total := *rec.Provision
		out = append(out, change{
			field: workorder.FieldProvision, current: cur, incoming: money.Format(total),
			apply: func(_ context.Context, wo *workorder.WorkOrder, src workorder.FieldSource) error {
				return applyProvision(wo, total, src)
			},
		})
	}

	return out, warnings, nil
}

func simple(f workorder.Field, current, incoming string, set func(*workorder.WorkOrder)) change {
	return change{
		field: f, current: current, incoming: incoming,
		apply: func(_ context.Context, wo *workorder.WorkOrder, _ workorder.FieldSource) error {
			set(wo)
			return nil
		},
	}
}

func (p *planner) sameClient(ctx context.Context, name string, wo *workorder.WorkOrder) (bool, error) {
	if wo.ClientID == nil {
		return false, nil
	}

	if textnorm.Name(name) == textnorm.Name(wo.ClientName) {
		return true, nil
	}

	a, err := p.clients.Lookup(ctx, name)
	if err != nil {
		return false, fmt.Errorf("looking up client: %w", err)
	}

	return a != nil && a.ID == *wo.ClientID, nil
}

// errProvisionKept signals a locked snapshot that the import left alone.
var errProvisionKept = errors.New("provision snapshot is locked")

func applyProvision(wo *workorder.WorkOrder, total decimal.Decimal, src workorder.FieldSource) error {
	locked := wo.Provision != nil && wo.Provision.Locked

	var items []workorder.ProvisionItem
	if wo.Provision != nil {
		items = wo.Provision.Items
	}

	next, err := workorder.ApplyProvision(wo.Provision, workorder.ProvisionParams{
		Items:  items,
		Total:  &total,
		Source: src,
		Lock:   locked,
	})
	if errors.Is(err, workorder.ErrProvisionLocked) {
		return errProvisionKept
	}

	if err != nil {
		return err
	}

	wo.Provision = next

	return nil
}
