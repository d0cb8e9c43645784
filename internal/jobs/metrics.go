package jobs

import "github.com/prometheus/client_golang/prometheus"

// Метрики фоновых задач, label job — имя из Runner.Every.
var (
	jobRuns = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "sessionbot", Subsystem: "job", Name: "runs_total",
		Help: "Background job runs",
	}, []string{"job"})

	jobErrors = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "sessionbot", Subsystem: "job", Name: "errors_total",
		Help: "Background job failures and panics",
	}, []string{"job"})

	jobDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "sessionbot", Subsystem: "job", Name: "duration_seconds",
		Help: "Background job duration", Buckets: prometheus.DefBuckets,
	}, []string{"job"})

	jobLastSuccess = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "sessionbot", Subsystem: "job", Name: "last_success_timestamp_seconds",
		Help: "Unix time of the last successful run",
	}, []string{"job"})
)

func init() {
	prometheus.MustRegister(jobRuns, jobErrors, jobDuration, jobLastSuccess)
}
