package services

import (
	"context"
	"time"
)

// MetricsRecorder is the subset of the CloudWatch client the services use.
type MetricsRecorder interface {
	RecordCount(ctx context.Context, name string, dimensions map[string]string) error
	RecordValue(ctx context.Context, name string, value float64, dimensions map[string]string) error
}

// recordAsync ships a metric without holding up the request.
func recordAsync(m MetricsRecorder, fn func(ctx context.Context, m MetricsRecorder)) {
	if m == nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		fn(ctx, m)
	}()
}
