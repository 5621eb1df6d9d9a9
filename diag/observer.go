// Package diag exports wrapper activity as metrics. Plug MetricsObserver into
// a wrapper's Options.Observer to count loads, mutations and store failures
// per field.
package diag

import (
	"fmt"

	"github.com/VictoriaMetrics/metrics"

	"github.com/sharedcode/sco"
)

// MetricsObserver is an sco.Observer backed by VictoriaMetrics counters,
// labeled by field name and operation. Safe for concurrent use.
type MetricsObserver struct{}

func (MetricsObserver) Loaded(fd *sco.FieldDescriptor, owner sco.UUID, count int) {
	metrics.GetOrCreateCounter(fmt.Sprintf(`sco_field_loads_total{field=%q}`, fd.Name)).Inc()
	metrics.GetOrCreateCounter(fmt.Sprintf(`sco_field_loaded_elements_total{field=%q}`, fd.Name)).Add(count)
}

func (MetricsObserver) MutationSucceeded(fd *sco.FieldDescriptor, owner sco.UUID, kind sco.OperationKind) {
	metrics.GetOrCreateCounter(fmt.Sprintf(`sco_field_mutations_total{field=%q,op=%q}`, fd.Name, kind.String())).Inc()
}

func (MetricsObserver) MutationFailed(fd *sco.FieldDescriptor, owner sco.UUID, kind sco.OperationKind, err error) {
	metrics.GetOrCreateCounter(fmt.Sprintf(`sco_field_mutation_failures_total{field=%q,op=%q}`, fd.Name, kind.String())).Inc()
}
