// Package drive is the remote object store client. Backups are organized
// Drive-style: opaque folder ids with named subfolders, and opaque file ids
// returned on upload. On S3 a folder id is a key prefix anchored by a
// zero-byte ".folder" marker object, and a file id is an object key.
package drive

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/rs/zerolog"
)

// ManualFolderName is the fixed subfolder manually triggered backups are
// nested under, beneath the date folder.
const ManualFolderName = "manual"

const folderMarker = ".folder"

// ErrObjectNotFound reports a download of an unknown file id.
var ErrObjectNotFound = errors.New("object not found")

// s3API is the slice of the S3 client the drive uses.
type s3API interface {
	HeadObject(ctx context.Context, params *s3.HeadObjectInput, optFns ...func(*s3.Options)) (*s3.HeadObjectOutput, error)
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// Client talks to one bucket of an S3-compatible store.
type Client struct {
	logger zerolog.Logger
	api    s3API
	bucket string
}

// Options configure the store endpoint and the pre-provisioned service
// credential.
type Options struct {
	Endpoint  string
	Region    string
	AccessKey string
	SecretKey string
	Bucket    string
}

// NewClient creates a drive client for the configured bucket.
func NewClient(logger zerolog.Logger, opts Options) *Client {
	s3opts := s3.Options{
		Region:       opts.Region,
		Credentials:  credentials.NewStaticCredentialsProvider(opts.AccessKey, opts.SecretKey, ""),
		UsePathStyle: true,
	}
	if opts.Endpoint != "" {
		s3opts.BaseEndpoint = aws.String(opts.Endpoint)
	}
	return &Client{
		logger: logger.With().Str("component", "drive").Logger(),
		api:    s3.New(s3opts),
		bucket: opts.Bucket,
	}
}

// newClientWithAPI is used by tests to inject a fake S3 API.
func newClientWithAPI(logger zerolog.Logger, api s3API, bucket string) *Client {
	return &Client{logger: logger, api: api, bucket: bucket}
}

// FindOrCreateFolder looks up the exact, case-sensitive folder name under
// parentID and returns its id, creating the folder when absent. Concurrent
// callers may race and both create the folder; the lookup is not guarded by
// any lock.
func (c *Client) FindOrCreateFolder(ctx context.Context, parentID, name string) (string, error) {
	folderID := folderKey(parentID, name)
	marker := folderID + folderMarker

	_, err := c.api.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(c.bucket),
		Key:    aws.String(marker),
	})
	if err == nil {
		return folderID, nil
	}
	var nf *s3types.NotFound
	if !errors.As(err, &nf) {
		return "", fmt.Errorf("look up folder %s under %s: %w", name, parentID, err)
	}

	_, err = c.api.PutObject(ctx, &s3.PutObjectInput{
		Bucket: aws.String(c.bucket),
		Key:    aws.String(marker),
	})
	if err != nil {
		return "", fmt.Errorf("create folder %s under %s: %w", name, parentID, err)
	}

	c.logger.Info().Str("folder", folderID).Msg("created remote folder")
	return folderID, nil
}

// Upload streams the local file into folderID under its base name and
// returns the store-assigned file id.
func (c *Client) Upload(ctx context.Context, localPath, folderID string) (string, error) {
	f, err := os.Open(localPath)
	if err != nil {
		return "", fmt.Errorf("open %s for upload: %w", localPath, err)
	}
	defer f.Close()

	fileID := folderKey(folderID, "") + filepath.Base(localPath)
	_, err = c.api.PutObject(ctx, &s3.PutObjectInput{
		Bucket: aws.String(c.bucket),
		Key:    aws.String(fileID),
		Body:   f,
	})
	if err != nil {
		return "", fmt.Errorf("upload %s: %w", localPath, err)
	}

	c.logger.Info().Str("file", fileID).Msg("uploaded archive")
	return fileID, nil
}

// Download streams the object's bytes to destPath.
func (c *Client) Download(ctx context.Context, fileID, destPath string) error {
	out, err := c.api.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(c.bucket),
		Key:    aws.String(fileID),
	})
	if err != nil {
		var nsk *s3types.NoSuchKey
		if errors.As(err, &nsk) {
			return fmt.Errorf("%w: %s", ErrObjectNotFound, fileID)
		}
		return fmt.Errorf("download %s: %w", fileID, err)
	}
	defer out.Body.Close()

	f, err := os.Create(destPath)
	if err != nil {
		return fmt.Errorf("create %s: %w", destPath, err)
	}
	if _, err := io.Copy(f, out.Body); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", destPath, err)
	}
	return f.Close()
}

// folderKey joins a folder name under a parent id, normalizing the trailing
// separator. An empty name returns the normalized parent itself.
func folderKey(parentID, name string) string {
	key := strings.TrimSuffix(parentID, "/")
	if name != "" {
		key += "/" + name
	}
	return key + "/"
}
