// Package client содержит gRPC клиента сервиса распределения с повторами
// и трассировкой.
package client

import (
	"context"
	"time"

	grpc_retry "github.com/grpc-ecosystem/go-grpc-middleware/v2/interceptors/retry"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"

	allocationv1 "netalloc/pkg/api/allocation/v1"
	"netalloc/pkg/telemetry"
)

type ClientConfig struct {
	Address      string
	Timeout      time.Duration
	MaxRetries   int
	RetryBackoff time.Duration
	// MaxMsgSize ограничение размера сообщения, 0 = по умолчанию grpc
	MaxMsgSize int
	// DialOptions добавляются после стандартных
	DialOptions []grpc.DialOption
}

// DefaultClientConfig возвращает конфигурацию по умолчанию
func DefaultClientConfig() ClientConfig {
	return ClientConfig{
		Address:      "localhost:50051",
		Timeout:      30 * time.Second,
		MaxRetries:   3,
		RetryBackoff: 100 * time.Millisecond,
		MaxMsgSize:   16 * 1024 * 1024,
	}
}

// NewGRPCClient создает соединение с Retry и трассировкой. Все вызовы
// по умолчанию идут в JSON кодеке сервиса.
func NewGRPCClient(_ context.Context, cfg ClientConfig) (*grpc.ClientConn, error) {
	opts := []grpc_retry.CallOption{
		grpc_retry.WithBackoff(grpc_retry.BackoffLinear(cfg.RetryBackoff)),
		grpc_retry.WithCodes(codes.Unavailable, codes.Aborted),
		grpc_retry.WithMax(uint(cfg.MaxRetries)),
	}

	callOpts := []grpc.CallOption{grpc.CallContentSubtype(allocationv1.CodecName)}
	if cfg.MaxMsgSize > 0 {
		callOpts = append(callOpts,
			grpc.MaxCallRecvMsgSize(cfg.MaxMsgSize),
			grpc.MaxCallSendMsgSize(cfg.MaxMsgSize),
		)
	}

	dialOpts := []grpc.DialOption{
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithDefaultCallOptions(callOpts...),
		grpc.WithChainUnaryInterceptor(
			telemetry.UnaryClientInterceptor(),
			grpc_retry.UnaryClientInterceptor(opts...),
		),
	}
	dialOpts = append(dialOpts, cfg.DialOptions...)

	return grpc.NewClient(cfg.Address, dialOpts...)
}
