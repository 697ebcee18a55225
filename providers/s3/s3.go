// Package s3bucket reads files for StoredSafe uploads from Amazon S3.
//
// FileSystem implements storedsafe.FileSystem for paths of the form
// "s3://bucket/key", so objects can be sent to StoredSafe without being
// copied to local disk first:
//
//	fs, err := s3bucket.NewFromEnvironment(ctx)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	client, err := storedsafe.New("safe.example.com",
//	    storedsafe.WithToken(token),
//	    storedsafe.WithFileSystem(fs),
//	)
//	resp, err := client.UploadFile(ctx, "s3://backups/db/2024-01-01.sql.gz", nil)
//
// Credentials and region come from the default AWS configuration chain.
package s3bucket

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/smithy-go"
	"github.com/hengadev/storedsafe"
)

// AWSS3Reader defines the methods used to read from S3
type AWSS3Reader interface {
	HeadObject(ctx context.Context, params *s3.HeadObjectInput, optFns ...func(*s3.Options)) (*s3.HeadObjectOutput, error)
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// FileSystem is a storedsafe.FileSystem over S3 objects.
type FileSystem struct {
	client AWSS3Reader
}

var _ storedsafe.FileSystem = (*FileSystem)(nil)

// New returns a FileSystem reading through client.
func New(client AWSS3Reader) (*FileSystem, error) {
	if client == nil {
		return nil, fmt.Errorf("%w: s3 client cannot be nil", storedsafe.ErrInvalidConfiguration)
	}
	return &FileSystem{client: client}, nil
}

// NewFromEnvironment loads the default AWS configuration and returns a
// FileSystem using it.
func NewFromEnvironment(ctx context.Context, optFns ...func(*config.LoadOptions) error) (*FileSystem, error) {
	cfg, err := config.LoadDefaultConfig(ctx, optFns...)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to load AWS config: %w", storedsafe.ErrInvalidConfiguration, err)
	}
	return New(s3.NewFromConfig(cfg))
}

// ParseURI splits "s3://bucket/key" into bucket and key.
func ParseURI(uri string) (bucket, key string, err error) {
	u, err := url.Parse(uri)
	if err != nil {
		return "", "", fmt.Errorf("invalid s3 uri %q: %w", uri, err)
	}
	if u.Scheme != "s3" {
		return "", "", fmt.Errorf("invalid s3 uri %q: scheme must be s3", uri)
	}
	key = strings.TrimPrefix(u.Path, "/")
	if u.Host == "" || key == "" {
		return "", "", fmt.Errorf("invalid s3 uri %q: expected s3://bucket/key", uri)
	}
	return u.Host, key, nil
}

func (f *FileSystem) Stat(ctx context.Context, uri string) (storedsafe.FileInfo, error) {
	bucket, key, err := ParseURI(uri)
	if err != nil {
		return storedsafe.FileInfo{}, err
	}

	out, err := f.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return storedsafe.FileInfo{}, fmt.Errorf("head s3://%s/%s: %w", bucket, key, err)
	}

	return storedsafe.FileInfo{
		Name:      path.Base(key),
		Extension: path.Ext(key),
		Size:      aws.ToInt64(out.ContentLength),
	}, nil
}

// ReadPrefix fetches the first n bytes with a ranged GetObject. Empty objects
// yield an empty slice.
func (f *FileSystem) ReadPrefix(ctx context.Context, uri string, n int) ([]byte, error) {
	bucket, key, err := ParseURI(uri)
	if err != nil {
		return nil, err
	}
	if n <= 0 {
		return []byte{}, nil
	}

	out, err := f.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
		Range:  aws.String(fmt.Sprintf("bytes=0-%d", n-1)),
	})
	if err != nil {
		var apiErr smithy.APIError
		if errors.As(err, &apiErr) && apiErr.ErrorCode() == "InvalidRange" {
			return []byte{}, nil
		}
		return nil, fmt.Errorf("get s3://%s/%s: %w", bucket, key, err)
	}
	defer out.Body.Close()

	data, err := io.ReadAll(io.LimitReader(out.Body, int64(n)))
	if err != nil {
		return nil, fmt.Errorf("read s3://%s/%s: %w", bucket, key, err)
	}
	return data, nil
}

// Open streams the whole object. The caller closes the returned body.
func (f *FileSystem) Open(ctx context.Context, uri string) (io.ReadCloser, error) {
	bucket, key, err := ParseURI(uri)
	if err != nil {
		return nil, err
	}

	out, err := f.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, fmt.Errorf("get s3://%s/%s: %w", bucket, key, err)
	}
	return out.Body, nil
}
