package temple

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// MetricLabelOther replaces unknown context keywords in tag metrics
const MetricLabelOther = "other"

// Metrics holds the engine's prometheus collectors.
type Metrics struct {
	renders       *prometheus.CounterVec
	tags          *prometheus.CounterVec
	depthExceeded prometheus.Counter
	duration      prometheus.Histogram
}

// NewMetrics creates the collectors and registers them on reg.
// A nil reg uses prometheus.DefaultRegisterer.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	m := &Metrics{
		renders: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: MetricNamespace,
				Name:      MetricRendersTotal,
				Help:      "Total number of top-level renders by result",
			},
			[]string{MetricLabelResult},
		),
		tags: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: MetricNamespace,
				Name:      MetricTagsTotal,
				Help:      "Total number of tags dispatched by context keyword",
			},
			[]string{MetricLabelContext},
		),
		depthExceeded: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: MetricNamespace,
				Name:      MetricDepthExceeded,
				Help:      "Total number of renders aborted by the forward depth limit",
			},
		),
		duration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: MetricNamespace,
				Name:      MetricRenderDuration,
				Help:      "Duration of top-level renders",
				Buckets:   prometheus.DefBuckets,
			},
		),
	}

	for _, c := range []prometheus.Collector{m.renders, m.tags, m.depthExceeded, m.duration} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *Metrics) observeRender(started time.Time, err error) {
	if m == nil {
		return
	}
	result := MetricResultOK
	if err != nil {
		result = MetricResultError
	}
	m.renders.WithLabelValues(result).Inc()
	m.duration.Observe(time.Since(started).Seconds())
}

func (m *Metrics) observeTag(label string) {
	if m == nil {
		return
	}
	m.tags.WithLabelValues(label).Inc()
}

func (m *Metrics) observeDepthExceeded() {
	if m == nil {
		return
	}
	m.depthExceeded.Inc()
}
