package dataprocessing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"astrasreport/pkg/contracts/domain"
)

const (
	emobility = "PHOENIX CONTACT E-Mobility GmbH"
	tooling   = "Phoenix Contact GmbH & Co. KG - Werkzeugbau"
	gpn       = domain.DefaultFallbackOrganization
)

func enriched(org string, month int, cluster string, verbatimOrg string) domain.SourcingEvent {
	e := domain.SourcingEvent{
		Row:       domain.EventRow{Organization: verbatimOrg},
		OrgGroup:  org,
		Month:     month,
		MonthName: MonthName(month),
	}
	if cluster != "" {
		c := cluster
		e.Cluster = &c
	}
	return e
}

func sampleEvents() []domain.SourcingEvent {
	return []domain.SourcingEvent{
		enriched(gpn, 3, "ClusterA", "Acme"),
		enriched(emobility, 1, "ClusterB", emobility),
		enriched(gpn, 1, "", "Beta"),
		enriched(tooling, 0, "ClusterA", tooling),
		enriched(gpn, 3, "ClusterB", "Acme"),
		enriched(emobility, 12, "ClusterA", emobility),
	}
}

func TestOptions(t *testing.T) {
	opts := Options(sampleEvents())

	assert.Equal(t, []string{gpn, emobility, tooling}, opts.Organizations)
	assert.Equal(t, MonthOrder, opts.Months)

	empty := Options(nil)
	assert.Empty(t, empty.Organizations)
	assert.Len(t, empty.Months, 12)
}

func TestFilter(t *testing.T) {
	events := sampleEvents()

	t.Run("default selection keeps every dated event", func(t *testing.T) {
		got := Filter(events, DefaultSelection(events))
		assert.Len(t, got, 5)
		for _, e := range got {
			assert.True(t, e.HasMonth())
		}
	})

	t.Run("organization and month must both match", func(t *testing.T) {
		got := Filter(events, domain.Selection{
			Organizations: []string{gpn},
			Months:        []string{"March", "December"},
		})
		require.Len(t, got, 2)
		for _, e := range got {
			assert.Equal(t, gpn, e.OrgGroup)
			assert.Equal(t, "March", e.MonthName)
		}
	})

	t.Run("empty organization selection", func(t *testing.T) {
		got := Filter(events, domain.Selection{Organizations: []string{}, Months: AllMonths()})
		assert.NotNil(t, got)
		assert.Empty(t, got)
	})

	t.Run("empty month selection", func(t *testing.T) {
		got := Filter(events, domain.Selection{Organizations: []string{gpn}, Months: nil})
		assert.Empty(t, got)
	})

	t.Run("unknown values select nothing", func(t *testing.T) {
		got := Filter(events, domain.Selection{Organizations: []string{"Nobody"}, Months: []string{"Smarch"}})
		assert.Empty(t, got)
	})

	t.Run("input is not mutated", func(t *testing.T) {
		before := sampleEvents()
		Filter(events, domain.Selection{Organizations: []string{gpn}, Months: []string{"March"}})
		assert.Equal(t, before, events)
	})
}

func TestResolveSelection(t *testing.T) {
	events := sampleEvents()

	sel := ResolveSelection(events, domain.Selection{})
	assert.Equal(t, []string{gpn, emobility, tooling}, sel.Organizations)
	assert.Equal(t, MonthOrder, sel.Months)

	sel = ResolveSelection(events, domain.Selection{Organizations: []string{}, Months: []string{"May"}})
	assert.Equal(t, []string{}, sel.Organizations)
	assert.Equal(t, []string{"May"}, sel.Months)
}
