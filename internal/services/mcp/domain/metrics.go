package domain

import (
	"errors"

	apperrors "github.com/louisbranch/deliberate.thinking/internal/platform/errors"
	"github.com/louisbranch/deliberate.thinking/internal/services/mcp/ledger"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// thoughtsSubmittedTotal counts accepted submissions by kind.
	// Labels: "plain", "revision", "branch"
	thoughtsSubmittedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "deliberate_thoughts_submitted_total",
		Help: "Total accepted thought submissions by kind",
	}, []string{"kind"})

	// validationFailuresTotal counts rejected submissions by offending field.
	validationFailuresTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "deliberate_validation_failures_total",
		Help: "Total rejected thought submissions by field",
	}, []string{"field"})

	branchCount = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "deliberate_branches",
		Help: "Number of known branches in the ledger",
	})

	activeHistoryLength = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "deliberate_thought_history_length",
		Help: "Length of the active timeline after the last submission",
	})
)

func recordSubmission(projection ledger.Projection) {
	thoughtsSubmittedTotal.WithLabelValues(projection.Kind.String()).Inc()
}

// ObserveProjection updates the ledger gauges. Register it with
// ledger.WithProjectionObserver so concurrent submissions set the gauges in
// mutation order.
func ObserveProjection(projection ledger.Projection) {
	branchCount.Set(float64(len(projection.Branches)))
	activeHistoryLength.Set(float64(projection.HistoryLength))
}

func recordRejection(err error) {
	field := "unknown"
	var domainErr *apperrors.Error
	if errors.As(err, &domainErr) && domainErr.Metadata["field"] != "" {
		field = domainErr.Metadata["field"]
	}
	validationFailuresTotal.WithLabelValues(field).Inc()
}
