package fs

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

func (fs *FileSystem) initMetrics(registerer prometheus.Registerer) {
	fs.readSizeHistogram = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "fs_read_size_bytes",
		Help:    "size of read distributions.",
		Buckets: prometheus.LinearBuckets(128, 128, 32),
	})

	fs.writtenSizeHistogram = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "fs_written_size_bytes",
		Help:    "size of write distributions.",
		Buckets: prometheus.LinearBuckets(128, 128, 32),
	})

	fs.opsDurationsHistogram = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "fs_ops_durations_histogram_seconds",
		Help:    "Operations latency distributions.",
		Buckets: prometheus.ExponentialBuckets(0.0001, 1.5, 30),
	}, []string{"method"})

	fs.handlersGauge = prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "fs_open_handlers",
		Help: "number of open descriptors.",
	}, func() float64 {
		return float64(len(fs.openFiles))
	})

	if registerer == nil {
		return
	}

	registerer.MustRegister(
		fs.readSizeHistogram,
		fs.writtenSizeHistogram,
		fs.opsDurationsHistogram,
		fs.handlersGauge,
	)
}

func (fs *FileSystem) observeOP(method string, beginTime time.Time) {
	fs.opsDurationsHistogram.WithLabelValues(method).Observe(fs.clock.Now().Sub(beginTime).Seconds())
}
