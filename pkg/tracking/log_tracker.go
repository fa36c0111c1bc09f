package tracking

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/sirupsen/logrus"
)

var (
	queriesDispatched = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "carfilter_queries_dispatched_total",
		Help: "The total number of catalog queries issued per group",
	}, []string{"group"})
	staleDiscarded = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "carfilter_stale_responses_total",
		Help: "The total number of superseded responses discarded",
	}, []string{"group"})
	transportFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "carfilter_transport_failures_total",
		Help: "The total number of failed catalog queries",
	}, []string{"group"})
	resolutionFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "carfilter_resolution_failures_total",
		Help: "The total number of hierarchy resolution failures",
	})
	queryDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "carfilter_query_duration_seconds",
		Help:    "Catalog query round trip duration",
		Buckets: prometheus.DefBuckets,
	})
)

// LogTracker reports to structured logs and prometheus.
type LogTracker struct {
	Log *logrus.Logger
}

func NewLogTracker(log *logrus.Logger) *LogTracker {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &LogTracker{Log: log}
}

func (t *LogTracker) QueryDispatched(groupId string, seq uint64) {
	queriesDispatched.WithLabelValues(groupId).Inc()
	t.Log.WithFields(logrus.Fields{"group": groupId, "seq": seq}).Debug("query dispatched")
}

func (t *LogTracker) QueryDuration(groupId string, seconds float64) {
	queryDuration.Observe(seconds)
}

func (t *LogTracker) StaleResponseDiscarded(groupId string, seq uint64) {
	staleDiscarded.WithLabelValues(groupId).Inc()
	t.Log.WithFields(logrus.Fields{"group": groupId, "seq": seq}).Debug("stale response discarded")
}

func (t *LogTracker) TransportFailure(groupId string, err error) {
	transportFailures.WithLabelValues(groupId).Inc()
	t.Log.WithFields(logrus.Fields{"group": groupId}).WithError(err).Warn("catalog query failed, keeping previous result")
}

func (t *LogTracker) ResolutionFailure(slug string, err error) {
	resolutionFailures.Inc()
	t.Log.WithFields(logrus.Fields{"slug": slug}).WithError(err).Warn("slug resolution failed")
}
