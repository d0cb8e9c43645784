package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	BotUpdates = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "sessionbot", Name: "updates_total", Help: "Processed telegram updates",
	})
	HandlerErrors = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "sessionbot", Name: "handler_errors_total", Help: "Handler errors",
	})
	DBPing = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "sessionbot", Name: "db_ping_seconds", Help: "DB ping latency",
		Buckets: prometheus.DefBuckets,
	})
	Submissions = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "sessionbot", Name: "pending_submissions_total", Help: "Pending sessions submitted",
	})
	Resolutions = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "sessionbot", Name: "pending_resolutions_total", Help: "Pending sessions resolved by outcome",
	}, []string{"outcome"})
	PendingBacklog = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "sessionbot", Name: "pending_backlog", Help: "Pending sessions awaiting review",
	})
	RankingDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "sessionbot", Name: "ranking_recompute_seconds", Help: "Semester ranking recompute latency",
		Buckets: prometheus.DefBuckets,
	})
	RankingCache = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "sessionbot", Name: "ranking_cache_total", Help: "Ranking cache lookups by result",
	}, []string{"result"})
)

func init() {
	prometheus.MustRegister(BotUpdates, HandlerErrors, DBPing, Submissions, Resolutions,
		PendingBacklog, RankingDuration, RankingCache)
}

func Handler() http.Handler { return promhttp.Handler() }

func ObserveDBPing(d time.Duration) { DBPing.Observe(d.Seconds()) }

func ObserveRanking(d time.Duration) { RankingDuration.Observe(d.Seconds()) }
