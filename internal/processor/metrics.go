package processor

import (
	"github.com/horockey/go-toolbox/prometheus_helpers"
	"github.com/prometheus/client_golang/prometheus"
)

type metrics struct {
	handleTimeHist       *prometheus.HistogramVec
	successProcessCnt    *prometheus.CounterVec
	errProcessCnt        *prometheus.CounterVec
	preconditionFailsCnt *prometheus.CounterVec
}

func newMetrics() *metrics {
	const ss = "processor"
	labels := []string{"op"}
	return &metrics{
		handleTimeHist: prometheus.NewHistogramVec(*prometheus_helpers.NewHistOpts(
			"handle_time_hist",
			prometheus_helpers.HistOptsWithSubsystem(ss),
			prometheus_helpers.HistOptsWithHelp("Handle time distribution, seconds"),
		), labels),
		successProcessCnt: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:      "success_responses_cnt",
			Subsystem: ss,
			Help:      "Count of successfully finished calls",
		}, labels),
		errProcessCnt: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:      "err_processes_cnt",
			Subsystem: ss,
			Help:      "Count of calls failed on transport or service side",
		}, labels),
		preconditionFailsCnt: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:      "precondition_fails_cnt",
			Subsystem: ss,
			Help:      "Count of calls rejected before reaching the service",
		}, labels),
	}
}

func (m *metrics) list() []prometheus.Collector {
	return []prometheus.Collector{
		m.handleTimeHist,
		m.successProcessCnt,
		m.errProcessCnt,
		m.preconditionFailsCnt,
	}
}
