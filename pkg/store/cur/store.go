package cur

import (
	"compress/gzip"
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"path"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/de-tools/cloud-billing-report/pkg/services/billing"
	"github.com/rs/zerolog"
)

// ObjectClient is the slice of the S3 API the store needs.
type ObjectClient interface {
	GetObject(ctx context.Context, input *s3.GetObjectInput, opts ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// Store downloads and decodes the month's Cost & Usage Report. AWS rewrites
// the report in place throughout the month; the manifest points at the latest
// assembly.
type Store struct {
	client     ObjectClient
	bucket     string
	prefix     string
	reportName string
}

func NewStore(client ObjectClient, bucket, prefix, reportName string) *Store {
	return &Store{
		client:     client,
		bucket:     bucket,
		prefix:     prefix,
		reportName: reportName,
	}
}

type manifest struct {
	ReportKeys []string `json:"reportKeys"`
}

// FetchBillingRows returns every line item of the report covering day's month.
// Sufficiently large reports split into multiple archives; only the first is
// read, matching the report the system has always produced.
func (s *Store) FetchBillingRows(ctx context.Context, day time.Time) ([]billing.Row, error) {
	logger := zerolog.Ctx(ctx)

	manifestKey := s.manifestKey(day)
	body, err := s.get(ctx, manifestKey)
	if err != nil {
		return nil, fmt.Errorf("failed to download manifest %s: %w", manifestKey, err)
	}
	defer closeQuietly(ctx, body)

	var m manifest
	if err := json.NewDecoder(body).Decode(&m); err != nil {
		return nil, fmt.Errorf("failed to parse manifest %s: %w", manifestKey, err)
	}
	if len(m.ReportKeys) == 0 {
		return nil, fmt.Errorf("manifest %s lists no report archives", manifestKey)
	}

	reportKey := m.ReportKeys[0]
	logger.Info().Str("key", reportKey).Msg("downloading billing report archive")

	archive, err := s.get(ctx, reportKey)
	if err != nil {
		return nil, fmt.Errorf("failed to download report archive %s: %w", reportKey, err)
	}
	defer closeQuietly(ctx, archive)

	rows, err := decodeRows(archive)
	if err != nil {
		return nil, fmt.Errorf("failed to decode report archive %s: %w", reportKey, err)
	}

	logger.Info().Int("rows", len(rows)).Msg("billing report loaded")
	return rows, nil
}

func (s *Store) get(ctx context.Context, key string) (io.ReadCloser, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, err
	}
	return out.Body, nil
}

// manifestKey builds
// <prefix>/<report>/<YYYYMM01-YYYYMM01>/<report>-Manifest.json for the month
// containing day.
func (s *Store) manifestKey(day time.Time) string {
	thisMonth := time.Date(day.Year(), day.Month(), 1, 0, 0, 0, 0, time.UTC)
	nextMonth := thisMonth.AddDate(0, 1, 0)
	window := fmt.Sprintf("%s-%s", thisMonth.Format("20060102"), nextMonth.Format("20060102"))
	return path.Join(s.prefix, s.reportName, window, s.reportName+"-Manifest.json")
}

func decodeRows(archive io.Reader) ([]billing.Row, error) {
	gz, err := gzip.NewReader(archive)
	if err != nil {
		return nil, fmt.Errorf("failed to open gzip stream: %w", err)
	}
	defer gz.Close()

	reader := csv.NewReader(gz)
	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV header: %w", err)
	}

	var rows []billing.Row
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read CSV record: %w", err)
		}
		row := make(billing.Row, len(header))
		for i, field := range header {
			row[field] = record[i]
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func closeQuietly(ctx context.Context, c io.Closer) {
	if err := c.Close(); err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Msg("failed to close S3 object body")
	}
}
