package imaging

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
)

// s3API is the slice of the S3 client the uploader needs.
type s3API interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

type S3UploaderConfig struct {
	Bucket string
	Region string
}

// S3Uploader writes image payloads to a bucket under a fresh random
// filename and returns the bucket's public URL for it.
type S3Uploader struct {
	config S3UploaderConfig
	client s3API
}

func NewS3Uploader(config S3UploaderConfig, client s3API) *S3Uploader {
	return &S3Uploader{
		config: config,
		client: client,
	}
}

// Upload decodes the base64 payload and puts it at {uuid}.jpg.
func (u *S3Uploader) Upload(ctx context.Context, encoded string) (string, error) {
	data, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return "", fmt.Errorf("error decoding image payload: %v", err)
	}

	fileName := fmt.Sprintf("%s.jpg", uuid.NewString())

	_, err = u.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(u.config.Bucket),
		Key:         aws.String(fileName),
		Body:        bytes.NewReader(data),
		ContentType: aws.String("image/jpeg"),
	})
	if err != nil {
		return "", fmt.Errorf("error uploading to S3: %w", err)
	}

	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", u.config.Bucket, u.config.Region, fileName), nil
}
