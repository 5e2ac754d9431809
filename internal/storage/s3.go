// Package storage moves documents and outline results through S3.
// Objects may be sealed in a password-derived AES-GCM envelope; plain
// objects pass through untouched.
package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awscfg "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/rs/zerolog/log"
)

// S3Client wraps the AWS S3 client with envelope decryption.
type S3Client struct {
	client   *s3.Client
	uploader *manager.Uploader
	bucket   string
}

// ObjectMeta carries the metadata the pipeline cares about.
type ObjectMeta struct {
	OriginalName string
	ContentType  string
	Size         int64
	Encrypted    bool
	Custom       map[string]string
}

// NewS3Client builds a client for one bucket using the default AWS config
// chain.
func NewS3Client(ctx context.Context, bucket string) (*S3Client, error) {
	cfg, err := awscfg.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("load AWS config: %w", err)
	}
	cli := s3.NewFromConfig(cfg)
	return &S3Client{
		client:   cli,
		uploader: manager.NewUploader(cli),
		bucket:   bucket,
	}, nil
}

// Ping checks bucket reachability; used by the status endpoint.
func (s *S3Client) Ping(ctx context.Context) error {
	_, err := s.client.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: aws.String(s.bucket)})
	if err != nil {
		return fmt.Errorf("head bucket %s: %w", s.bucket, err)
	}
	return nil
}

// Download fetches an object and opens its envelope when one is present.
// An empty bucket falls back to the client's configured bucket; an empty
// password with an enveloped object is an error.
func (s *S3Client) Download(ctx context.Context, bucket, key, password string) ([]byte, *ObjectMeta, error) {
	if bucket == "" {
		bucket = s.bucket
	}
	result, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, nil, fmt.Errorf("s3 get %s: %w", key, err)
	}
	defer result.Body.Close()

	data, err := io.ReadAll(result.Body)
	if err != nil {
		return nil, nil, fmt.Errorf("read s3 object %s: %w", key, err)
	}

	meta := &ObjectMeta{Custom: map[string]string{}}
	for k, v := range result.Metadata {
		meta.Custom[strings.ToLower(k)] = v
	}
	if name, ok := meta.Custom["name"]; ok {
		meta.OriginalName = name
	}
	if result.ContentLength != nil {
		meta.Size = *result.ContentLength
	}

	if IsEnvelope(data) {
		if password == "" {
			return nil, nil, fmt.Errorf("object %s is encrypted and no password was provided", key)
		}
		plain, derr := DecryptEnvelope(data, password)
		if derr != nil {
			return nil, nil, fmt.Errorf("decrypt %s: %w", key, derr)
		}
		meta.Encrypted = true
		data = plain
	}

	log.Debug().
		Str("key", key).
		Bool("encrypted", meta.Encrypted).
		Int("size", len(data)).
		Msg("downloaded object")

	return data, meta, nil
}

// UploadResult stores an outline result document. A non-empty password seals
// the payload in an envelope first.
func (s *S3Client) UploadResult(ctx context.Context, key string, data []byte, password string, meta *ObjectMeta) error {
	payload := data
	encrypted := false
	if password != "" {
		sealed, err := EncryptEnvelope(data, password)
		if err != nil {
			return fmt.Errorf("encrypt result: %w", err)
		}
		payload = sealed
		encrypted = true
	}

	s3meta := map[string]string{
		"encrypted": fmt.Sprintf("%t", encrypted),
	}
	contentType := "application/json"
	if meta != nil {
		if meta.OriginalName != "" {
			s3meta["name"] = meta.OriginalName
		}
		if meta.ContentType != "" {
			contentType = meta.ContentType
		}
		for k, v := range meta.Custom {
			s3meta[k] = v
		}
	}

	_, err := s.uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(payload),
		ContentType: aws.String(contentType),
		Metadata:    s3meta,
	})
	if err != nil {
		return fmt.Errorf("s3 upload %s: %w", key, err)
	}

	log.Info().
		Str("key", key).
		Bool("encrypted", encrypted).
		Int("size", len(payload)).
		Msg("uploaded result")

	return nil
}
