package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// MetricsGatewayRequest tracks outbound payment-gateway call latency,
// partitioned by gateway, operation and outcome.
var MetricsGatewayRequest = &Metric{
	ID:          "gwReqDur",
	Name:        "gateway_req_dur_ms",
	Description: "Outbound payment gateway request latency in milliseconds.",
	Type:        "histogram_vec",
	Args:        []string{"gateway", "operation", "outcome"},
}

var gatewayReqDur *prometheus.HistogramVec

func init() {
	c := NewMetric(MetricsGatewayRequest, "")
	gatewayReqDur = c.(*prometheus.HistogramVec)
	// Registration failure only happens on double-init in tests; ignore.
	_ = prometheus.Register(gatewayReqDur)
	MetricsGatewayRequest.MetricCollector = gatewayReqDur
}

// ObserveGatewayRequest records one outbound gateway call.
func ObserveGatewayRequest(gatewayID, operation string, start time.Time, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	gatewayReqDur.WithLabelValues(gatewayID, operation, outcome).Observe(MillisecondsSince(start))
}
