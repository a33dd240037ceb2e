package aws

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadAWSConfig_LocalStack(t *testing.T) {
	t.Setenv("AWS_REGION", "eu-west-1")
	t.Setenv("AWS_ENDPOINT", "http://localstack:4566")
	t.Setenv("AWS_ACCESS_KEY_ID", "")
	t.Setenv("AWS_SECRET_ACCESS_KEY", "")

	cfg, err := LoadAWSConfig(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "eu-west-1", cfg.Region)
	require.NotNil(t, cfg.BaseEndpoint)
	assert.Equal(t, "http://localstack:4566", *cfg.BaseEndpoint)

	creds, err := cfg.Credentials.Retrieve(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "test", creds.AccessKeyID)
}

func TestLocalEndpointPrecedence(t *testing.T) {
	t.Setenv("AWS_ENDPOINT", "")
	t.Setenv("AWS_SNS_ENDPOINT", "")
	t.Setenv("AWS_SQS_ENDPOINT", "http://sqs:4566")
	t.Setenv("AWS_S3_ENDPOINT", "http://s3:4566")
	assert.Equal(t, "http://sqs:4566", localEndpoint())

	t.Setenv("AWS_ENDPOINT", "http://edge:4566")
	assert.Equal(t, "http://edge:4566", localEndpoint())
}
