package snapshot

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/schemasmith/schemasmith/internal/schema"
)

// ObjectClient is the subset of the S3 API the store needs.
type ObjectClient interface {
	GetObject(ctx context.Context, in *s3.GetObjectInput, opts ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	PutObject(ctx context.Context, in *s3.PutObjectInput, opts ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	DeleteObjects(ctx context.Context, in *s3.DeleteObjectsInput, opts ...func(*s3.Options)) (*s3.DeleteObjectsOutput, error)
	HeadObject(ctx context.Context, in *s3.HeadObjectInput, opts ...func(*s3.Options)) (*s3.HeadObjectOutput, error)
}

const fingerprintMetadata = "fingerprint"

// S3Store keeps snapshots as objects named <prefix>/<project>_<slot> in one bucket.
type S3Store struct {
	client ObjectClient
	bucket string
	prefix string
}

// NewS3Store loads AWS credentials from the default chain, narrowed by profile and region when set.
func NewS3Store(ctx context.Context, bucket, prefix, profile, region string) (*S3Store, error) {
	var opts []func(*awsconfig.LoadOptions) error
	if profile != "" {
		opts = append(opts, awsconfig.WithSharedConfigProfile(profile))
	}
	if region != "" {
		opts = append(opts, awsconfig.WithRegion(region))
	}
	cfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("loading AWS config: %w", err)
	}
	return NewS3StoreWithClient(s3.NewFromConfig(cfg), bucket, prefix), nil
}

// NewS3StoreWithClient returns a store backed by an existing client.
func NewS3StoreWithClient(client ObjectClient, bucket, prefix string) *S3Store {
	return &S3Store{client: client, bucket: bucket, prefix: prefix}
}

func (s *S3Store) objectKey(project string, slot Slot) string {
	return path.Join(s.prefix, key(project, slot))
}

// Load reads a slot. A missing object yields ErrNotFound.
func (s *S3Store) Load(ctx context.Context, project string, slot Slot) (*schema.Schema, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.objectKey(project, slot)),
	})
	if err != nil {
		var missing *s3types.NoSuchKey
		if errors.As(err, &missing) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("reading %s snapshot: %w", slot, err)
	}
	defer out.Body.Close()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, fmt.Errorf("reading %s snapshot: %w", slot, err)
	}
	sc, err := Decode(data)
	if err != nil {
		return nil, fmt.Errorf("loading %s snapshot of %s: %w", slot, project, err)
	}
	return sc, nil
}

// Fingerprint reads the fingerprint kept in the object metadata of a slot.
func (s *S3Store) Fingerprint(ctx context.Context, project string, slot Slot) (string, error) {
	out, err := s.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.objectKey(project, slot)),
	})
	if err != nil {
		var missing *s3types.NotFound
		var noKey *s3types.NoSuchKey
		if errors.As(err, &missing) || errors.As(err, &noKey) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("reading %s fingerprint: %w", slot, err)
	}
	return out.Metadata[fingerprintMetadata], nil
}

// Save uploads a slot, replacing any existing object.
func (s *S3Store) Save(ctx context.Context, project string, slot Slot, sc *schema.Schema) error {
	data, err := Encode(sc)
	if err != nil {
		return err
	}
	fp, err := Fingerprint(sc)
	if err != nil {
		return err
	}
	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:   aws.String(s.bucket),
		Key:      aws.String(s.objectKey(project, slot)),
		Body:     bytes.NewReader(data),
		Metadata: map[string]string{fingerprintMetadata: fp},
	})
	if err != nil {
		return fmt.Errorf("uploading %s snapshot: %w", slot, err)
	}
	return nil
}

// Delete removes both slots of project.
func (s *S3Store) Delete(ctx context.Context, project string) error {
	var objects []s3types.ObjectIdentifier
	for _, slot := range []Slot{SlotPrevious, SlotLatest} {
		objects = append(objects, s3types.ObjectIdentifier{Key: aws.String(s.objectKey(project, slot))})
	}
	_, err := s.client.DeleteObjects(ctx, &s3.DeleteObjectsInput{
		Bucket: aws.String(s.bucket),
		Delete: &s3types.Delete{Objects: objects, Quiet: aws.Bool(true)},
	})
	if err != nil {
		return fmt.Errorf("deleting snapshots of %s: %w", project, err)
	}
	return nil
}

// Close is a no-op.
func (s *S3Store) Close(context.Context) error { return nil }
