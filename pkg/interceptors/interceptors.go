// Package interceptors содержит серверные gRPC интерсепторы сервиса.
package interceptors

import (
	"google.golang.org/grpc"

	"netalloc/pkg/metrics"
	"netalloc/pkg/telemetry"
)

// ServerConfig конфигурация серверных интерсепторов
type ServerConfig struct {
	ServiceName   string
	EnableTracing bool
	// Metrics nil отключает запись метрик
	Metrics *metrics.Metrics
}

// UnaryServerInterceptors возвращает интерсепторы в порядке выполнения:
// recovery, tracing, request id + logging, metrics, validation, errors.
func UnaryServerInterceptors(cfg *ServerConfig) []grpc.UnaryServerInterceptor {
	chain := []grpc.UnaryServerInterceptor{
		RecoveryInterceptor(),
	}

	if cfg.EnableTracing {
		chain = append(chain, telemetry.UnaryServerInterceptor())
	}

	chain = append(chain, LoggingInterceptor())

	if cfg.Metrics != nil {
		chain = append(chain, MetricsInterceptor(cfg.Metrics))
	}

	return append(chain,
		ValidationInterceptor(),
		ErrorInterceptor(),
	)
}
