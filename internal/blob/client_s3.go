package blob

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// S3Client implements Store against an S3 (or S3-compatible) bucket.
type S3Client struct {
	s3Client *s3.Client
	config   *S3Config
}

func NewS3Client(s3Client *s3.Client, cfg *S3Config) *S3Client {
	return &S3Client{
		s3Client: s3Client,
		config:   cfg,
	}
}

func NewS3ClientFromConfig(cfg *S3Config) (*S3Client, error) {
	httpClient := &http.Client{
		Transport: &http.Transport{
			Proxy:                 http.ProxyFromEnvironment,
			MaxIdleConns:          100,
			MaxIdleConnsPerHost:   100,
			IdleConnTimeout:       90 * time.Second,
			TLSHandshakeTimeout:   10 * time.Second,
			ExpectContinueTimeout: 1 * time.Second,
			ForceAttemptHTTP2:     true,
		},
		Timeout: 30 * time.Second,
	}

	awsCfg, err := config.LoadDefaultConfig(context.Background(),
		config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		),
		config.WithRegion(cfg.Region),
		config.WithHTTPClient(httpClient),
	)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	awsClient := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})

	return NewS3Client(awsClient, cfg), nil
}

// List drains a ListObjectsV2 paginator over the configured prefix. Keys
// outside the prefix never appear; keys are returned vault-relative.
func (s *S3Client) List(ctx context.Context) ([]*ObjectInfo, error) {
	var objects []*ObjectInfo

	input := &s3.ListObjectsV2Input{
		Bucket: &s.config.Bucket,
	}
	if s.config.Prefix != "" {
		input.Prefix = aws.String(s.keyPrefix())
	}

	paginator := s3.NewListObjectsV2Paginator(s.s3Client, input)
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("list objects: %w", err)
		}

		for _, obj := range page.Contents {
			key := aws.ToString(obj.Key)
			relPath := s.relPath(key)
			if relPath == "" {
				continue
			}
			objects = append(objects, &ObjectInfo{
				Path:     relPath,
				Mtime:    aws.ToTime(obj.LastModified).UnixMilli(),
				RemoteID: key,
			})
		}
	}

	return objects, nil
}

func (s *S3Client) Get(ctx context.Context, remoteID string) ([]byte, error) {
	resp, err := s.s3Client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: &s.config.Bucket,
		Key:    &remoteID,
	})
	if err != nil {
		return nil, fmt.Errorf("get object %q: %w", remoteID, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read object %q: %w", remoteID, err)
	}
	return data, nil
}

// Put writes the object and reads back its store-assigned LastModified via
// HeadObject. PutObjectOutput does not carry LastModified, and guessing it
// client-side would poison the baseline timestamps.
func (s *S3Client) Put(ctx context.Context, path string, data []byte) (*PutResult, error) {
	key := s.key(path)

	resp, err := s.s3Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        &s.config.Bucket,
		Key:           &key,
		Body:          bytes.NewReader(data),
		ContentLength: aws.Int64(int64(len(data))),
	})
	if err != nil {
		return nil, fmt.Errorf("put object %q: %w", key, err)
	}

	head, err := s.s3Client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: &s.config.Bucket,
		Key:    &key,
	})
	if err != nil {
		return nil, fmt.Errorf("head object %q after put: %w", key, err)
	}

	return &PutResult{
		RemoteID: key,
		ETag:     strings.ReplaceAll(aws.ToString(resp.ETag), "\"", ""),
		Mtime:    aws.ToTime(head.LastModified).UnixMilli(),
		Size:     int64(len(data)),
	}, nil
}

func (s *S3Client) Delete(ctx context.Context, path string) error {
	key := s.key(path)
	_, err := s.s3Client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: &s.config.Bucket,
		Key:    &key,
	})
	if err != nil {
		return fmt.Errorf("delete object %q: %w", key, err)
	}
	return nil
}

func (s *S3Client) keyPrefix() string {
	return strings.TrimSuffix(s.config.Prefix, "/") + "/"
}

func (s *S3Client) key(path string) string {
	if s.config.Prefix == "" {
		return path
	}
	return s.keyPrefix() + path
}

func (s *S3Client) relPath(key string) string {
	if s.config.Prefix == "" {
		return key
	}
	rel := strings.TrimPrefix(key, s.keyPrefix())
	if rel == key || rel == "" {
		// key outside the prefix or the prefix placeholder itself
		return ""
	}
	return rel
}

var _ Store = (*S3Client)(nil)
