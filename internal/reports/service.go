package reports

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/fdg312/physique-hub/internal/apperr"
	"github.com/fdg312/physique-hub/internal/blob"
	"github.com/fdg312/physique-hub/internal/clock"
	"github.com/fdg312/physique-hub/internal/logging"
	"github.com/fdg312/physique-hub/internal/storage"
	"github.com/fdg312/physique-hub/internal/summary"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// RangeSummarizer returns one daily summary per day of [from, to].
type RangeSummarizer interface {
	SummarizeRange(ctx context.Context, userID string, from, to time.Time) ([]summary.DailySummary, error)
}

// Options configure where report files go.
type Options struct {
	MaxRangeDays    int
	PresignTTL      int
	PublicBaseURL   string
	PreferPublicURL bool
}

// Service handles reports business logic
type Service struct {
	reports   storage.ReportsStorage
	summaries RangeSummarizer
	blobStore blob.Store // nil — local режим, байты хранятся в БД
	opts      Options
}

// NewService creates a new reports service
func NewService(reports storage.ReportsStorage, summaries RangeSummarizer, blobStore blob.Store, opts Options) *Service {
	if opts.MaxRangeDays <= 0 {
		opts.MaxRangeDays = defaultMaxRangeDays
	}
	if opts.PresignTTL <= 0 {
		opts.PresignTTL = 900
	}
	return &Service{
		reports:   reports,
		summaries: summaries,
		blobStore: blobStore,
		opts:      opts,
	}
}

// LocalMode reports whether files are kept in storage instead of a bucket.
func (s *Service) LocalMode() bool {
	return s.blobStore == nil
}

// CreateReport builds the adherence report of [from, to] and stores it.
func (s *Service) CreateReport(ctx context.Context, userID string, req CreateReportRequest) (*Report, error) {
	format := strings.ToLower(strings.TrimSpace(req.Format))
	if format != FormatPDF && format != FormatCSV {
		return nil, fmt.Errorf("%w: format must be 'pdf' or 'csv'", apperr.ErrInvalidRequest)
	}

	from, err := clock.ParseDate(req.From)
	if err != nil {
		return nil, fmt.Errorf("%w: from must be YYYY-MM-DD", apperr.ErrInvalidDate)
	}
	to, err := clock.ParseDate(req.To)
	if err != nil {
		return nil, fmt.Errorf("%w: to must be YYYY-MM-DD", apperr.ErrInvalidDate)
	}
	if from.After(to) {
		return nil, fmt.Errorf("%w: from must not be after to", apperr.ErrInvalidDate)
	}
	if days := clock.DaysBetween(to, from) + 1; days > s.opts.MaxRangeDays {
		return nil, fmt.Errorf("%w: date range exceeds maximum of %d days", apperr.ErrInvalidRequest, s.opts.MaxRangeDays)
	}

	days, err := s.summaries.SummarizeRange(ctx, userID, from, to)
	if err != nil {
		return nil, err
	}

	rows, totals := BuildRows(days)

	var data []byte
	contentType := contentTypeFor(format)
	switch format {
	case FormatCSV:
		data, err = RenderCSV(rows)
	default:
		data, err = RenderPDF(req.From, req.To, rows, totals)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to render report: %w", err)
	}

	meta := &storage.ReportMeta{
		ID:        uuid.New(),
		UserID:    userID,
		Format:    format,
		FromDate:  req.From,
		ToDate:    req.To,
		SizeBytes: int64(len(data)),
		Status:    StatusReady,
	}

	if s.LocalMode() {
		meta.Data = data
	} else {
		objectKey := fmt.Sprintf("reports/%s/%s_%s_%s.%s", userID, req.From, req.To, meta.ID.String(), format)
		if _, err := s.blobStore.PutObject(ctx, objectKey, data, contentType); err != nil {
			return nil, fmt.Errorf("failed to upload report: %w", err)
		}
		meta.ObjectKey = &objectKey
	}

	if err := s.reports.CreateReport(ctx, meta); err != nil {
		return nil, fmt.Errorf("failed to save report metadata: %w", err)
	}

	logging.L().Info("report created",
		zap.String("user_id", userID),
		zap.String("report_id", meta.ID.String()),
		zap.String("format", format),
		zap.Int64("size_bytes", meta.SizeBytes),
		zap.Bool("local", s.LocalMode()),
	)

	return toReport(meta), nil
}

// GetReport returns report metadata owned by userID.
func (s *Service) GetReport(ctx context.Context, userID string, id uuid.UUID) (*Report, error) {
	meta, err := s.owned(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	return toReport(meta), nil
}

// ListReports lists reports of userID, newest first.
func (s *Service) ListReports(ctx context.Context, userID string, limit, offset int) ([]Report, error) {
	metaList, err := s.reports.ListReports(ctx, userID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list reports: %w", err)
	}

	reports := make([]Report, len(metaList))
	for i := range metaList {
		reports[i] = *toReport(&metaList[i])
	}
	return reports, nil
}

// DeleteReport removes metadata and the stored object.
func (s *Service) DeleteReport(ctx context.Context, userID string, id uuid.UUID) error {
	meta, err := s.owned(ctx, userID, id)
	if err != nil {
		return err
	}

	if !s.LocalMode() && meta.ObjectKey != nil {
		// метаданные удаляем даже если объект не удалился
		if err := s.blobStore.DeleteObject(ctx, *meta.ObjectKey); err != nil {
			logging.L().Warn("failed to delete report object",
				zap.String("report_id", id.String()),
				zap.Error(err),
			)
		}
	}

	if err := s.reports.DeleteReport(ctx, id); err != nil {
		return fmt.Errorf("failed to delete report metadata: %w", err)
	}
	return nil
}

// DownloadURL returns where the client fetches the file: the API endpoint
// in local mode, otherwise a public or presigned bucket URL.
func (s *Service) DownloadURL(ctx context.Context, report *Report, baseURL string) (string, error) {
	if s.LocalMode() || report.ObjectKey == nil {
		return fmt.Sprintf("%s/v1/reports/%s/download", strings.TrimSuffix(baseURL, "/"), report.ID.String()), nil
	}

	if s.opts.PreferPublicURL && s.opts.PublicBaseURL != "" {
		return blob.PublicURL(s.opts.PublicBaseURL, *report.ObjectKey), nil
	}

	url, err := s.blobStore.PresignGet(ctx, *report.ObjectKey, s.opts.PresignTTL)
	if err != nil {
		return "", fmt.Errorf("failed to presign report: %w", err)
	}
	return url, nil
}

// GetReportData returns the stored bytes of a local-mode report.
func (s *Service) GetReportData(ctx context.Context, userID string, id uuid.UUID) ([]byte, string, error) {
	meta, err := s.owned(ctx, userID, id)
	if err != nil {
		return nil, "", err
	}
	if meta.ObjectKey != nil {
		return nil, "", fmt.Errorf("report %s is stored in the bucket", id)
	}
	return meta.Data, contentTypeFor(meta.Format), nil
}

func (s *Service) owned(ctx context.Context, userID string, id uuid.UUID) (*storage.ReportMeta, error) {
	meta, err := s.reports.GetReport(ctx, id)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, fmt.Errorf("%w: report", apperr.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get report: %w", err)
	}
	// чужой отчёт выглядит как несуществующий
	if meta.UserID != userID {
		return nil, fmt.Errorf("%w: report", apperr.ErrNotFound)
	}
	return meta, nil
}

func contentTypeFor(format string) string {
	if format == FormatCSV {
		return "text/csv"
	}
	return "application/pdf"
}

func toReport(meta *storage.ReportMeta) *Report {
	return &Report{
		ID:        meta.ID,
		UserID:    meta.UserID,
		Format:    meta.Format,
		FromDate:  meta.FromDate,
		ToDate:    meta.ToDate,
		ObjectKey: meta.ObjectKey,
		SizeBytes: meta.SizeBytes,
		Status:    meta.Status,
		CreatedAt: meta.CreatedAt,
	}
}
