package interceptors

import (
	"context"
	"time"

	"github.com/google/uuid"
	"google.golang.org/grpc"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	"netalloc/pkg/logger"
)

// RequestIDHeader заголовок с идентификатором запроса
const RequestIDHeader = "x-request-id"

// LoggingInterceptor присваивает запросу request id и логирует результат
func LoggingInterceptor() grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		requestID := incomingRequestID(ctx)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		ctx = logger.ContextWithRequestID(ctx, requestID)
		_ = grpc.SetHeader(ctx, metadata.Pairs(RequestIDHeader, requestID)) //nolint:errcheck // нет транспорта в unit тестах

		start := time.Now()
		resp, err := handler(ctx, req)
		duration := time.Since(start)

		log := logger.WithContext(ctx,
			"method", info.FullMethod,
			"duration_ms", duration.Milliseconds(),
			"code", status.Code(err).String(),
		)

		if err != nil {
			log.Error("gRPC request failed", "error", err.Error())
		} else {
			log.Info("gRPC request completed")
		}

		return resp, err
	}
}

func incomingRequestID(ctx context.Context) string {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return ""
	}
	if v := md.Get(RequestIDHeader); len(v) > 0 {
		return v[0]
	}
	return ""
}
