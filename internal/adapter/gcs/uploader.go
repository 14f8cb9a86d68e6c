// Package gcs publishes finished output files to a Cloud Storage bucket.
package gcs

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path"
	"path/filepath"

	"cloud.google.com/go/storage"
	"google.golang.org/api/option"
)

type objectWriterFunc func(ctx context.Context, object string) io.WriteCloser

// Uploader copies output files into a bucket under a fixed prefix.
// It implements pipeline.Uploader.
type Uploader struct {
	client    *storage.Client
	bucket    string
	prefix    string
	newWriter objectWriterFunc
	logger    *slog.Logger
}

// NewUploader connects to Cloud Storage. With an empty credentialsFile the
// client uses application default credentials.
func NewUploader(ctx context.Context, bucket, prefix, credentialsFile string, logger *slog.Logger) (*Uploader, error) {
	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}
	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create storage client: %w", err)
	}

	handle := client.Bucket(bucket)
	return &Uploader{
		client: client,
		bucket: bucket,
		prefix: prefix,
		newWriter: func(ctx context.Context, object string) io.WriteCloser {
			w := handle.Object(object).NewWriter(ctx)
			w.ContentType = "application/x-netcdf"
			return w
		},
		logger: logger,
	}, nil
}

// Upload streams the file at p to the bucket and returns its gs:// URI.
// The object only becomes visible once the writer closes cleanly.
func (u *Uploader) Upload(ctx context.Context, p string) (string, error) {
	f, err := os.Open(p)
	if err != nil {
		return "", fmt.Errorf("open %s: %w", p, err)
	}
	defer f.Close()

	object := path.Join(u.prefix, filepath.Base(p))
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	w := u.newWriter(ctx, object)
	n, err := io.Copy(w, f)
	if err != nil {
		// Cancelling before Close aborts the upload.
		cancel()
		_ = w.Close()
		return "", fmt.Errorf("upload %s: %w", object, err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("finalize %s: %w", object, err)
	}

	uri := fmt.Sprintf("gs://%s/%s", u.bucket, object)
	u.logger.Info("output uploaded", "uri", uri, "bytes", n)
	return uri, nil
}

// Close releases the storage client.
func (u *Uploader) Close() error {
	if u.client == nil {
		return nil
	}
	return u.client.Close()
}
