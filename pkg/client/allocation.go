package client

import (
	"context"
	"fmt"
	"time"

	"google.golang.org/grpc"

	allocationv1 "netalloc/pkg/api/allocation/v1"
)

// AllocationClient клиент для allocation-svc
type AllocationClient struct {
	conn    *grpc.ClientConn
	client  allocationv1.AllocationServiceClient
	timeout time.Duration
}

// NewAllocationClient создаёт нового клиента
func NewAllocationClient(ctx context.Context, cfg ClientConfig) (*AllocationClient, error) {
	conn, err := NewGRPCClient(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to allocation service: %w", err)
	}

	return &AllocationClient{
		conn:    conn,
		client:  allocationv1.NewAllocationServiceClient(conn),
		timeout: cfg.Timeout,
	}, nil
}

// Close закрывает соединение
func (c *AllocationClient) Close() error {
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}

// Raw возвращает сгенерированный интерфейс клиента
func (c *AllocationClient) Raw() allocationv1.AllocationServiceClient {
	return c.client
}

func (c *AllocationClient) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.timeout <= 0 {
		return ctx, func() {}
	}
	if _, ok := ctx.Deadline(); ok {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, c.timeout)
}

// Allocate отправляет сеть на распределение
func (c *AllocationClient) Allocate(ctx context.Context, req *allocationv1.AllocateRequest) (*allocationv1.AllocateResponse, error) {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	resp, err := c.client.Allocate(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("allocate request failed: %w", err)
	}
	return resp, nil
}

// AllocateNetwork распределяет сеть с параметрами сервера и отчётом в format
// (пустой format без отчёта)
func (c *AllocationClient) AllocateNetwork(ctx context.Context, network *allocationv1.Network, format string) (*allocationv1.AllocateResponse, error) {
	return c.Allocate(ctx, &allocationv1.AllocateRequest{
		Network:      network,
		ReportFormat: format,
	})
}

// EnumeratePaths перечисляет простые пути между узлами (с нуля)
func (c *AllocationClient) EnumeratePaths(ctx context.Context, network *allocationv1.Network, source, destination, maxHops int) ([]allocationv1.Path, error) {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	resp, err := c.client.EnumeratePaths(ctx, &allocationv1.EnumeratePathsRequest{
		Network:     network,
		Source:      source,
		Destination: destination,
		MaxHops:     maxHops,
	})
	if err != nil {
		return nil, fmt.Errorf("enumerate paths request failed: %w", err)
	}
	return resp.Paths, nil
}

// Example возвращает встроенную сеть сервиса
func (c *AllocationClient) Example(ctx context.Context) (*allocationv1.Network, error) {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	resp, err := c.client.Example(ctx, &allocationv1.ExampleRequest{})
	if err != nil {
		return nil, err
	}
	return resp.Network, nil
}

// GetRun возвращает сохранённый запуск
func (c *AllocationClient) GetRun(ctx context.Context, id string) (*allocationv1.GetRunResponse, error) {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()
	return c.client.GetRun(ctx, &allocationv1.GetRunRequest{ID: id})
}

// ListRuns возвращает страницу истории, новые первыми
func (c *AllocationClient) ListRuns(ctx context.Context, limit, offset int) (*allocationv1.ListRunsResponse, error) {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()
	return c.client.ListRuns(ctx, &allocationv1.ListRunsRequest{Limit: limit, Offset: offset})
}

// DeleteRun удаляет запуск из истории
func (c *AllocationClient) DeleteRun(ctx context.Context, id string) error {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()
	_, err := c.client.DeleteRun(ctx, &allocationv1.DeleteRunRequest{ID: id})
	return err
}
