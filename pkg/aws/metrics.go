package aws

import (
	"context"
	"fmt"
	"os"
	"time"

	sdkaws "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"
)

// MetricsClient publishes custom CloudWatch metrics. It is a no-op unless
// CLOUDWATCH_ENABLED=true.
type MetricsClient struct {
	client    *cloudwatch.Client
	namespace string
	enabled   bool
}

func NewMetricsClient(cfg sdkaws.Config) *MetricsClient {
	namespace := os.Getenv("CLOUDWATCH_NAMESPACE")
	if namespace == "" {
		namespace = "Coradis/Storefront"
	}
	return &MetricsClient{
		client:    cloudwatch.NewFromConfig(cfg),
		namespace: namespace,
		enabled:   os.Getenv("CLOUDWATCH_ENABLED") == "true",
	}
}

func (m *MetricsClient) PutMetric(ctx context.Context, name string, value float64, unit types.StandardUnit, dimensions map[string]string) error {
	if m == nil || !m.enabled {
		return nil
	}

	dims := make([]types.Dimension, 0, len(dimensions))
	for k, v := range dimensions {
		dims = append(dims, types.Dimension{Name: sdkaws.String(k), Value: sdkaws.String(v)})
	}

	_, err := m.client.PutMetricData(ctx, &cloudwatch.PutMetricDataInput{
		Namespace: sdkaws.String(m.namespace),
		MetricData: []types.MetricDatum{{
			MetricName: sdkaws.String(name),
			Value:      sdkaws.Float64(value),
			Unit:       unit,
			Timestamp:  sdkaws.Time(time.Now()),
			Dimensions: dims,
		}},
	})
	if err != nil {
		return fmt.Errorf("failed to put metric %s: %w", name, err)
	}
	return nil
}

func (m *MetricsClient) RecordCount(ctx context.Context, name string, dimensions map[string]string) error {
	return m.PutMetric(ctx, name, 1, types.StandardUnitCount, dimensions)
}

func (m *MetricsClient) RecordLatency(ctx context.Context, name string, d time.Duration, dimensions map[string]string) error {
	return m.PutMetric(ctx, name, float64(d.Milliseconds()), types.StandardUnitMilliseconds, dimensions)
}

func (m *MetricsClient) RecordValue(ctx context.Context, name string, value float64, dimensions map[string]string) error {
	return m.PutMetric(ctx, name, value, types.StandardUnitNone, dimensions)
}

func (m *MetricsClient) IsEnabled() bool {
	return m != nil && m.enabled
}

const (
	MetricHTTPRequests = "HTTPRequests"
	MetricHTTPLatency  = "HTTPLatency"
	MetricHTTP4xx      = "HTTP4xxErrors"
	MetricHTTP5xx      = "HTTP5xxErrors"

	MetricOrdersCreated   = "OrdersCreated"
	MetricOrderRevenue    = "OrderRevenueFCFA"
	MetricOrdersCancelled = "OrdersCancelled"
	MetricOTPSent         = "OTPSent"
	MetricContactMessages = "ContactMessages"
	MetricCacheHits       = "CatalogCacheHits"
	MetricCacheMisses     = "CatalogCacheMisses"

	MetricNotificationsSent   = "NotificationsSent"
	MetricNotificationsFailed = "NotificationsFailed"
)
