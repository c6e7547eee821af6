package wastegrpc

import (
	"context"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"google.golang.org/grpc"
)

// Metrics instruments the ledger service. The rejection code recorded
// per request is the in-band ledger code, not the gRPC status, so
// dashboards can tell a NotOwner rejection from a substrate failure.
type Metrics struct {
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// NewMetrics creates and registers the service metrics on reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "wasteledger",
			Subsystem: "grpc",
			Name:      "requests_total",
			Help:      "Ledger RPCs by method and rejection code.",
		}, []string{"method", "code"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "wasteledger",
			Subsystem: "grpc",
			Name:      "request_duration_seconds",
			Help:      "Ledger RPC latency by method.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method"}),
	}
	reg.MustRegister(m.requests, m.duration)
	return m
}

// UnaryInterceptor returns a server interceptor recording request
// counts and latencies.
func (m *Metrics) UnaryInterceptor() grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		start := time.Now()
		resp, err := handler(ctx, req)

		code := "transport_error"
		if err == nil {
			code = strconv.FormatUint(uint64(responseCode(resp)), 10)
		}
		m.requests.WithLabelValues(info.FullMethod, code).Inc()
		m.duration.WithLabelValues(info.FullMethod).Observe(time.Since(start).Seconds())
		return resp, err
	}
}

// responseCode extracts the in-band rejection code from a response,
// or zero for reads.
func responseCode(resp any) Code {
	switch r := resp.(type) {
	case *RegisterResponse:
		return r.Code
	case *MutationResponse:
		return r.Code
	case *NumberedResponse:
		return r.Code
	default:
		return 0
	}
}
