package interceptors

import (
	"context"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/status"

	"netalloc/pkg/metrics"
)

// MetricsInterceptor записывает метрики запросов
func MetricsInterceptor(m *metrics.Metrics) grpc.UnaryServerInterceptor {
	tracker := metrics.NewRequestTracker(m.GRPCRequestsInFlight)

	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		done := tracker.Start(info.FullMethod)
		defer done()

		start := time.Now()
		resp, err := handler(ctx, req)

		m.RecordGRPCRequest(info.FullMethod, status.Code(err).String(), time.Since(start))

		return resp, err
	}
}
