package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	ObservedInstructions = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "mirror_observed_instructions_total",
		Help: "Decoded pump.fun instructions handed to the controller, by kind",
	}, []string{"kind"})

	Outcomes = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "mirror_outcomes_total",
		Help: "Controller outcomes by kind and status",
	}, []string{"kind", "status"})

	SchemaErrors = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "mirror_schema_errors_total",
		Help: "Trade events that matched the tag but failed to decode",
	})

	Dispatches = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "mirror_relay_dispatches_total",
		Help: "Relay dispatch results by service, stage and success",
	}, []string{"service", "stage", "ok"})

	SubmitLatency = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "mirror_relay_submit_seconds",
		Help:    "Time spent in a relay sendTransaction call",
		Buckets: []float64{.01, .025, .05, .1, .25, .5, 1, 2.5},
	}, []string{"service"})

	DuplicateSignatures = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "mirror_duplicate_signatures_total",
		Help: "Signatures dropped because another source delivered them first",
	})
)

func init() {
	prometheus.MustRegister(
		ObservedInstructions,
		Outcomes,
		SchemaErrors,
		Dispatches,
		SubmitLatency,
		DuplicateSignatures,
	)
}
