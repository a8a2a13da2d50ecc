package infra

import (
	"context"
	"fmt"
	"path"
	"regexp"
	"strings"
	"time"

	sdkaws "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
)

// UploadTarget is where a client PUTs the blob bytes directly.
type UploadTarget struct {
	URL     string            `json:"url"`
	Method  string            `json:"method"`
	Headers map[string]string `json:"headers"`
	Key     string            `json:"key"`
}

// BlobStore hands out presigned S3 URLs. The API never proxies image bytes.
type BlobStore struct {
	presigner *s3.PresignClient
	bucket    string
	ttl       time.Duration
	now       func() time.Time
}

// NewBlobStore builds a BlobStore for bucket. endpoint is optional (LocalStack).
func NewBlobStore(cfg sdkaws.Config, endpoint, bucket string, ttlSeconds int64) *BlobStore {
	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		if endpoint != "" {
			o.BaseEndpoint = sdkaws.String(endpoint)
			o.UsePathStyle = true
		}
	})
	if ttlSeconds <= 0 {
		ttlSeconds = 900
	}
	return &BlobStore{
		presigner: s3.NewPresignClient(client),
		bucket:    bucket,
		ttl:       time.Duration(ttlSeconds) * time.Second,
		now:       time.Now,
	}
}

// StoreBlob reserves a new object key for name and returns the presigned upload
// target together with a read URL valid for the same TTL.
func (b *BlobStore) StoreBlob(ctx context.Context, name, contentType string) (*UploadTarget, string, error) {
	key := ObjectKey(b.now(), uuid.New(), name)
	put, err := b.presigner.PresignPutObject(ctx, &s3.PutObjectInput{
		Bucket:      sdkaws.String(b.bucket),
		Key:         sdkaws.String(key),
		ContentType: sdkaws.String(contentType),
	}, s3.WithPresignExpires(b.ttl))
	if err != nil {
		return nil, "", fmt.Errorf("storage: presign put: %w", err)
	}

	headers := make(map[string]string, len(put.SignedHeader))
	for k, v := range put.SignedHeader {
		if len(v) > 0 {
			headers[k] = v[0]
		}
	}

	readURL, err := b.SignForRead(ctx, key)
	if err != nil {
		return nil, "", err
	}
	return &UploadTarget{URL: put.URL, Method: put.Method, Headers: headers, Key: key}, readURL, nil
}

// SignForRead returns a presigned GET URL for key.
func (b *BlobStore) SignForRead(ctx context.Context, key string) (string, error) {
	get, err := b.presigner.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: sdkaws.String(b.bucket),
		Key:    sdkaws.String(key),
	}, s3.WithPresignExpires(b.ttl))
	if err != nil {
		return "", fmt.Errorf("storage: presign get: %w", err)
	}
	return get.URL, nil
}

var unsafeKeyChars = regexp.MustCompile(`[^a-zA-Z0-9._-]+`)

// ObjectKey builds imagenes/YYYY/MM/<id>-<sanitized base name>.
func ObjectKey(at time.Time, id uuid.UUID, name string) string {
	base := path.Base(strings.ReplaceAll(name, "\\", "/"))
	base = strings.Trim(unsafeKeyChars.ReplaceAllString(base, "-"), "-.")
	if base == "" {
		base = "archivo"
	}
	if len(base) > 80 {
		base = base[len(base)-80:]
	}
	return fmt.Sprintf("imagenes/%s/%s-%s", at.UTC().Format("2006/01"), id, strings.ToLower(base))
}
