package blob

import (
	"context"
	"errors"
	"io"
	"net/url"
	"strings"
	"time"

	gos3 "hangar/pkg/s3"
)

// S3Store implements Store against a single bucket of an S3-compatible
// backend. Public URLs are composed from a configured base; downloads
// are served by the object store itself, not by this service.
type S3Store struct {
	client     *gos3.Client
	bucket     string
	publicBase string
}

// NewS3Store wraps an S3 client, bucket, and public URL base as a Store.
func NewS3Store(client *gos3.Client, bucket, publicBase string) (*S3Store, error) {
	if client == nil {
		return nil, errors.New("s3 client is required")
	}
	if bucket == "" {
		return nil, errors.New("bucket is required")
	}
	if publicBase == "" {
		return nil, errors.New("public base URL is required")
	}
	return &S3Store{
		client:     client,
		bucket:     bucket,
		publicBase: strings.TrimRight(publicBase, "/"),
	}, nil
}

func (s *S3Store) Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error {
	if err := s.client.PutObject(ctx, s.bucket, key, r, size, contentType); err != nil {
		return &Fault{Op: "put", Key: key, Err: err}
	}
	return nil
}

func (s *S3Store) Delete(ctx context.Context, key string) error {
	if err := s.client.DeleteObject(ctx, s.bucket, key); err != nil {
		return &Fault{Op: "delete", Key: key, Err: err}
	}
	return nil
}

// SignedURL returns a presigned GET URL for the key with the given TTL.
func (s *S3Store) SignedURL(ctx context.Context, key string, ttl time.Duration) (string, error) {
	url, err := s.client.PresignGet(ctx, s.bucket, key, ttl)
	if err != nil {
		return "", &Fault{Op: "presign", Key: key, Err: err}
	}
	return url, nil
}

// PublicURL joins the configured base with the key, escaping each path
// segment. Slashes inside the key stay path separators.
func (s *S3Store) PublicURL(key string) string {
	segments := strings.Split(key, "/")
	for i, segment := range segments {
		segments[i] = url.PathEscape(segment)
	}
	return s.publicBase + "/" + strings.Join(segments, "/")
}
