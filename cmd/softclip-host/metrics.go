package main

import (
	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"

	"github.com/deathdisco/softclip/pkg/framework/debug"
)

// reportMetrics logs the final value of every counter and histogram the
// plugin registered.
func reportMetrics(logger *debug.Logger, g prometheus.Gatherer) {
	families, err := g.Gather()
	if err != nil {
		logger.Warn("gather metrics: %v", err)
		return
	}
	for _, mf := range families {
		for _, m := range mf.GetMetric() {
			switch mf.GetType() {
			case dto.MetricType_COUNTER:
				logger.Info("%s %.0f", mf.GetName(), m.GetCounter().GetValue())
			case dto.MetricType_HISTOGRAM:
				h := m.GetHistogram()
				if n := h.GetSampleCount(); n > 0 {
					logger.Info("%s count=%d mean=%.2fms", mf.GetName(), n, 1000*h.GetSampleSum()/float64(n))
				}
			}
		}
	}
}
