package metrics

import (
	"time"

	"snowflake-backend/snowflake"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

// Collector records generator activity as prometheus metrics. It implements
// snowflake.Observer. Clock regressions are also logged, an operator needs to
// know when ntp is stepping the clock back.
type Collector struct {
	logger       *zap.Logger
	minted       prometheus.Counter
	waits        *prometheus.CounterVec
	waitDuration *prometheus.HistogramVec
}

func NewCollector(logger *zap.Logger) *Collector {
	return &Collector{
		logger: logger,
		minted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "snowflake_ids_minted_total",
			Help: "Number of ids minted.",
		}),
		waits: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "snowflake_waits_total",
				Help: "Number of times minting blocked before it could produce an id.",
			},
			[]string{"reason"},
		),
		waitDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "snowflake_wait_duration_seconds",
				Help:    "Time minting spent blocked, by reason.",
				Buckets: []float64{.001, .002, .005, .01, .1, 1, 10, 60},
			},
			[]string{"reason"},
		),
	}
}

// Register adds the collector's metrics to r.
func (c *Collector) Register(r prometheus.Registerer) error {
	for _, m := range []prometheus.Collector{c.minted, c.waits, c.waitDuration} {
		if err := r.Register(m); err != nil {
			return err
		}
	}
	return nil
}

func (c *Collector) Minted() {
	c.minted.Inc()
}

func (c *Collector) Waited(reason snowflake.WaitReason, d time.Duration) {
	c.waits.WithLabelValues(reason.String()).Inc()
	c.waitDuration.WithLabelValues(reason.String()).Observe(d.Seconds())
	if reason == snowflake.WaitClockRegression {
		c.logger.Warn("clock moved backwards, minting stalled until it caught up",
			zap.Duration("stalled", d),
		)
	}
}
