package aws

import (
	"context"
	"fmt"
	"os"

	sdkaws "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
)

// LoadAWSConfig loads the default SDK configuration. When AWS_ENDPOINT (or one
// of the service specific AWS_SNS_ENDPOINT / AWS_SQS_ENDPOINT / AWS_S3_ENDPOINT
// variables) is set, every client built from the config targets that URL,
// which is how LocalStack is reached in development.
func LoadAWSConfig(ctx context.Context) (sdkaws.Config, error) {
	opts := []func(*config.LoadOptions) error{}
	if region := os.Getenv("AWS_REGION"); region != "" {
		opts = append(opts, config.WithRegion(region))
	}

	endpoint := localEndpoint()
	if endpoint != "" {
		// LocalStack accepts any key pair
		key, secret := os.Getenv("AWS_ACCESS_KEY_ID"), os.Getenv("AWS_SECRET_ACCESS_KEY")
		if key == "" || secret == "" {
			key, secret = "test", "test"
		}
		opts = append(opts, config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(key, secret, "")))
	}

	cfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return cfg, fmt.Errorf("failed to load aws config: %w", err)
	}

	if endpoint != "" {
		cfg.BaseEndpoint = sdkaws.String(endpoint)
	}
	return cfg, nil
}

func localEndpoint() string {
	for _, key := range []string{"AWS_ENDPOINT", "AWS_SNS_ENDPOINT", "AWS_SQS_ENDPOINT", "AWS_S3_ENDPOINT"} {
		if v := os.Getenv(key); v != "" {
			return v
		}
	}
	return ""
}
