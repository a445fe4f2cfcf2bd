package grpc_remote_store

import (
	"github.com/horockey/go-toolbox/prometheus_helpers"
	"github.com/prometheus/client_golang/prometheus"
)

type metrics struct {
	handleTimeHist    *prometheus.HistogramVec
	requestsCnt       *prometheus.CounterVec
	successProcessCnt *prometheus.CounterVec
	errProcessCnt     *prometheus.CounterVec
}

func newMetrics() *metrics {
	const ss = "grpc_remote_store"
	labels := []string{"op"}
	return &metrics{
		handleTimeHist: prometheus.NewHistogramVec(*prometheus_helpers.NewHistOpts(
			"handle_time_hist",
			prometheus_helpers.HistOptsWithSubsystem(ss),
			prometheus_helpers.HistOptsWithHelp("RPC time distribution, seconds"),
		), labels),
		requestsCnt: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:      "requests_cnt",
			Subsystem: ss,
			Help:      "Count of outgoing RPCs",
		}, labels),
		successProcessCnt: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:      "success_responses_cnt",
			Subsystem: ss,
			Help:      "Count of RPCs finished without error",
		}, labels),
		errProcessCnt: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:      "err_processes_cnt",
			Subsystem: ss,
			Help:      "Count of RPCs finished with non-nil error",
		}, labels),
	}
}

func (m *metrics) list() []prometheus.Collector {
	return []prometheus.Collector{
		m.handleTimeHist,
		m.requestsCnt,
		m.successProcessCnt,
		m.errProcessCnt,
	}
}
