package dynamodb

import (
	"context"
	"fmt"

	sdkaws "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"

	awspkg "github.com/coradis/storefront/pkg/aws"
)

// NewClient loads the shared AWS config (LocalStack aware) and returns a client.
func NewClient(ctx context.Context) (*dynamodb.Client, error) {
	cfg, err := awspkg.LoadAWSConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load aws config: %w", err)
	}
	return dynamodb.NewFromConfig(cfg), nil
}

func NewClientFromConfig(cfg sdkaws.Config) *dynamodb.Client {
	return dynamodb.NewFromConfig(cfg)
}
