package refdata

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	smithyhttp "github.com/aws/smithy-go/transport/http"
	"github.com/klauspost/compress/zstd"

	domerrors "github.com/coursecompass/advisor-go/internal/errors"
)

// ObjectStoreConfig holds S3-compatible storage configuration for the
// reference snapshot.
type ObjectStoreConfig struct {
	Endpoint    string
	AccessKeyID string
	SecretKey   string
	BucketName  string
	SnapshotKey string // Key of the zstd-compressed snapshot document
}

// ObjectStore fetches the reference snapshot from S3-compatible object
// storage.
type ObjectStore struct {
	s3     *s3.Client
	bucket string
	key    string
}

// NewObjectStore creates an object store client with static credentials.
func NewObjectStore(ctx context.Context, cfg ObjectStoreConfig) (*ObjectStore, error) {
	if cfg.Endpoint == "" || cfg.AccessKeyID == "" || cfg.SecretKey == "" || cfg.BucketName == "" || cfg.SnapshotKey == "" {
		return nil, errors.New("refdata: all object store config fields are required")
	}

	awsCfg, err := config.LoadDefaultConfig(ctx,
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.AccessKeyID,
			cfg.SecretKey,
			"",
		)),
		config.WithRegion("auto"),
	)
	if err != nil {
		return nil, fmt.Errorf("refdata: load aws config: %w", err)
	}

	s3Client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(cfg.Endpoint)
		o.UsePathStyle = true // Required for R2-style endpoints
	})

	return &ObjectStore{
		s3:     s3Client,
		bucket: cfg.BucketName,
		key:    cfg.SnapshotKey,
	}, nil
}

// FetchSnapshot downloads and decompresses the snapshot document and
// builds a Snapshot from it.
func (o *ObjectStore) FetchSnapshot(ctx context.Context) (*Snapshot, error) {
	result, err := o.s3.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(o.bucket),
		Key:    aws.String(o.key),
	})
	if err != nil {
		if isNotFound(err) {
			return nil, fmt.Errorf("refdata: snapshot %q: %w", o.key, domerrors.ErrNotFound)
		}
		return nil, domerrors.NewUpstreamError("object_store", "fetch_snapshot", err)
	}
	defer func() { _ = result.Body.Close() }()

	decoder, err := zstd.NewReader(result.Body)
	if err != nil {
		return nil, fmt.Errorf("refdata: open zstd stream: %w", err)
	}
	defer decoder.Close()

	data, err := io.ReadAll(decoder)
	if err != nil {
		return nil, fmt.Errorf("refdata: decompress snapshot: %w", err)
	}

	tables, err := DecodeTables(data)
	if err != nil {
		return nil, err
	}
	return NewSnapshot(tables), nil
}

// Head returns the ETag of the snapshot object without downloading it.
// Used by the poll loop to detect updates.
func (o *ObjectStore) Head(ctx context.Context) (string, error) {
	result, err := o.s3.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(o.bucket),
		Key:    aws.String(o.key),
	})
	if err != nil {
		if isNotFound(err) {
			return "", fmt.Errorf("refdata: snapshot %q: %w", o.key, domerrors.ErrNotFound)
		}
		return "", domerrors.NewUpstreamError("object_store", "head_snapshot", err)
	}

	etag := ""
	if result.ETag != nil {
		etag = strings.Trim(*result.ETag, "\"")
	}
	return etag, nil
}

func isNotFound(err error) bool {
	var nsk *types.NoSuchKey
	if errors.As(err, &nsk) {
		return true
	}
	var nf *types.NotFound
	if errors.As(err, &nf) {
		return true
	}
	var respErr *smithyhttp.ResponseError
	if errors.As(err, &respErr) && respErr.HTTPStatusCode() == 404 {
		return true
	}
	return false
}
