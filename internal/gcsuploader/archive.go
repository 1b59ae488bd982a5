// Package gcsuploader archives rendered statements in Google Cloud Storage.
package gcsuploader

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"cloud.google.com/go/storage"
	"github.com/rs/zerolog"
	"google.golang.org/api/option"
)

const (
	reportPrefix  = "reports"
	uploadTimeout = 2 * time.Minute
)

// ReportArchive uploads report payloads to one bucket. It assumes Application
// Default Credentials unless client options say otherwise.
type ReportArchive struct {
	client *storage.Client
	bucket string
	log    zerolog.Logger
}

// NewReportArchive creates an archive writing into bucket.
func NewReportArchive(ctx context.Context, bucket string, log zerolog.Logger, opts ...option.ClientOption) (*ReportArchive, error) {
	if bucket == "" {
		return nil, errors.New("NewReportArchive: bucket is required")
	}
	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("NewReportArchive: create storage client: %w", err)
	}
	return &ReportArchive{
		client: client,
		bucket: bucket,
		log:    log.With().Str("component", "report_archive").Logger(),
	}, nil
}

// Close closes the storage client.
func (a *ReportArchive) Close() error {
	return a.client.Close()
}

// ObjectName returns reports/YYYY/MM/DD/<kind>-<HHMMSS>.json for a report
// generated at the given time, in UTC.
func ObjectName(kind string, generatedAt time.Time) string {
	t := generatedAt.UTC()
	return fmt.Sprintf("%s/%s/%s-%s.json", reportPrefix, t.Format("2006/01/02"), kind, t.Format("150405"))
}

// UploadReport writes payload as a JSON object and returns its gs:// URI.
func (a *ReportArchive) UploadReport(ctx context.Context, kind string, generatedAt time.Time, payload []byte) (string, error) {
	objectName := ObjectName(kind, generatedAt)

	ctx, cancel := context.WithTimeout(ctx, uploadTimeout)
	defer cancel()

	w := a.client.Bucket(a.bucket).Object(objectName).NewWriter(ctx)
	w.ContentType = "application/json"
	if _, err := io.Copy(w, bytes.NewReader(payload)); err != nil {
		_ = w.Close()
		return "", fmt.Errorf("UploadReport: copy to GCS writer: %w", err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("UploadReport: finalize upload: %w", err)
	}

	uri := "gs://" + a.bucket + "/" + objectName
	a.log.Info().Str("kind", kind).Str("uri", uri).Int("bytes", len(payload)).Msg("report archived")
	return uri, nil
}

// FetchReport downloads an archived report by its gs:// URI.
func (a *ReportArchive) FetchReport(ctx context.Context, uri string) ([]byte, error) {
	bucket, object, err := ParseURI(uri)
	if err != nil {
		return nil, err
	}

	rc, err := a.client.Bucket(bucket).Object(object).NewReader(ctx)
	if err != nil {
		return nil, fmt.Errorf("FetchReport: reading object %s/%s: %w", bucket, object, err)
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("FetchReport: reading bytes: %w", err)
	}
	return data, nil
}

// ParseURI splits gs://bucket/path/to/object into bucket and object path.
func ParseURI(uri string) (bucket, object string, err error) {
	if !strings.HasPrefix(uri, "gs://") {
		return "", "", fmt.Errorf("invalid GCS URI: %s", uri)
	}
	parts := strings.SplitN(strings.TrimPrefix(uri, "gs://"), "/", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("invalid GCS URI (no object path): %s", uri)
	}
	return parts[0], parts[1], nil
}
