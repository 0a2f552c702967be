package blob

import (
	"context"
	"strings"
	"testing"

	appcfg "github.com/fdg312/physique-hub/internal/config"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func observed() (*zap.Logger, *observer.ObservedLogs) {
	core, logs := observer.New(zapcore.DebugLevel)
	return zap.New(core), logs
}

func hasMessage(logs *observer.ObservedLogs, substr string) bool {
	for _, e := range logs.All() {
		if strings.Contains(e.Message, substr) {
			return true
		}
	}
	return false
}

func TestNewBlobStoreLocalForced(t *testing.T) {
	logger, logs := observed()

	store, mode, err := NewBlobStore(context.Background(), appcfg.BlobConfig{Mode: appcfg.BlobModeLocal}, logger)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if mode != appcfg.BlobModeLocal || store != nil {
		t.Fatalf("expected nil store in local mode, got store=%v mode=%s", store, mode)
	}
	if !hasMessage(logs, "mode=local (forced)") {
		t.Fatalf("expected local mode log, got: %v", logs.All())
	}
}

func TestNewBlobStoreReportsModeOverridesBlobMode(t *testing.T) {
	store, mode, err := NewBlobStore(context.Background(), appcfg.BlobConfig{
		Mode:           appcfg.BlobModeS3,
		ReportsMode:    appcfg.BlobModeLocal,
		ReportsModeSet: true,
	}, nil)
	if err != nil || store != nil || mode != appcfg.BlobModeLocal {
		t.Fatalf("expected REPORTS_MODE=local to win, got store=%v mode=%q err=%v", store, mode, err)
	}
}

func TestNewBlobStoreAutoEmptyS3FallsBackToLocal(t *testing.T) {
	logger, logs := observed()

	store, mode, err := NewBlobStore(context.Background(), appcfg.BlobConfig{Mode: appcfg.BlobModeAuto}, logger)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if mode != appcfg.BlobModeLocal || store != nil {
		t.Fatalf("expected local fallback, got store=%v mode=%s", store, mode)
	}

	found := false
	for _, e := range logs.All() {
		if e.ContextMap()["code"] == "s3_not_configured" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected s3_not_configured diagnostics, got: %v", logs.All())
	}
	if !hasMessage(logs, "mode=local (auto, S3 not configured)") {
		t.Fatalf("expected auto fallback log, got: %v", logs.All())
	}
}

func TestNewBlobStoreS3MissingRequiredReturnsError(t *testing.T) {
	store, mode, err := NewBlobStore(context.Background(), appcfg.BlobConfig{
		Mode: appcfg.BlobModeS3,
		S3:   appcfg.S3Config{Endpoint: "https://storage.example.com"},
	}, nil)
	if err == nil {
		t.Fatal("expected error when mode=s3 and required env are missing")
	}
	if store != nil || mode != "" {
		t.Fatalf("expected nil store and empty mode on error, got store=%v mode=%q", store, mode)
	}
	if !strings.Contains(err.Error(), "missing required config") {
		t.Fatalf("expected missing required config error, got: %v", err)
	}
}

func TestNewBlobStoreS3Configured(t *testing.T) {
	store, mode, err := NewBlobStore(context.Background(), appcfg.BlobConfig{
		Mode: appcfg.BlobModeS3,
		S3: appcfg.S3Config{
			Endpoint:        "http://localhost:9000",
			Region:          "us-east-1",
			Bucket:          "reports",
			AccessKeyID:     "minio",
			SecretAccessKey: "minio123",
		},
	}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if mode != appcfg.BlobModeS3 {
		t.Fatalf("expected mode=s3, got %s", mode)
	}
	if _, ok := store.(*S3Store); !ok {
		t.Fatalf("expected *S3Store, got %T", store)
	}
}

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryStore()

	if _, err := m.GetObject(ctx, "missing"); err != ErrObjectNotFound {
		t.Fatalf("expected ErrObjectNotFound, got %v", err)
	}

	n, _ := m.PutObject(ctx, "reports/a.csv", []byte("a,b"), "text/csv")
	if n != 3 || m.Len() != 1 {
		t.Fatalf("unexpected put result: n=%d len=%d", n, m.Len())
	}

	url, _ := m.PresignGet(ctx, "reports/a.csv", 60)
	if url != "https://blob.invalid/reports/a.csv" {
		t.Errorf("unexpected url: %s", url)
	}

	m.DeleteObject(ctx, "reports/a.csv")
	if m.Len() != 0 {
		t.Errorf("expected empty store after delete")
	}
}
