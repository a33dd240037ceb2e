package aws

import (
	"context"
	"fmt"
	"strings"
	"time"

	sdkaws "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// PresignedUpload is what a browser needs to PUT an object directly to S3.
type PresignedUpload struct {
	UploadURL string            `json:"uploadUrl"`
	Headers   map[string]string `json:"headers"`
	ObjectURL string            `json:"objectUrl"`
	ExpiresAt time.Time         `json:"expiresAt"`
}

// ImagePresigner issues upload URLs for one bucket.
type ImagePresigner struct {
	presigner     *s3.PresignClient
	bucket        string
	publicBaseURL string
}

// NewImagePresigner builds a presigner. publicBaseURL is the prefix under which
// uploaded objects are served (a CDN or the bucket website); when empty the
// virtual-hosted S3 URL is used.
func NewImagePresigner(cfg sdkaws.Config, bucket, publicBaseURL string) *ImagePresigner {
	if publicBaseURL == "" {
		publicBaseURL = fmt.Sprintf("https://%s.s3.%s.amazonaws.com", bucket, cfg.Region)
	}
	return &ImagePresigner{
		presigner:     s3.NewPresignClient(s3.NewFromConfig(cfg)),
		bucket:        bucket,
		publicBaseURL: strings.TrimSuffix(publicBaseURL, "/"),
	}
}

func (p *ImagePresigner) PresignPut(ctx context.Context, key, contentType string, ttl time.Duration) (*PresignedUpload, error) {
	input := &s3.PutObjectInput{
		Bucket: sdkaws.String(p.bucket),
		Key:    sdkaws.String(key),
	}
	if contentType != "" {
		input.ContentType = sdkaws.String(contentType)
	}

	req, err := p.presigner.PresignPutObject(ctx, input, s3.WithPresignExpires(ttl))
	if err != nil {
		return nil, fmt.Errorf("failed to presign put object: %w", err)
	}

	headers := make(map[string]string, len(req.SignedHeader))
	for k, v := range req.SignedHeader {
		if len(v) > 0 {
			headers[k] = v[0]
		}
	}

	return &PresignedUpload{
		UploadURL: req.URL,
		Headers:   headers,
		ObjectURL: p.publicBaseURL + "/" + key,
		ExpiresAt: time.Now().Add(ttl),
	}, nil
}
