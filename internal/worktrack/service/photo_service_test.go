package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/bitfantasy/worktrack/internal/config"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// newTestPhotoService builds a PhotoService around a client that points at
// an unreachable endpoint. minio.New does not dial, so validation paths
// that reject before any storage call are testable without a live server.
func newTestPhotoService(t *testing.T) *PhotoService {
	t.Helper()
	client, err := minio.New("127.0.0.1:1", &minio.Options{
		Creds:  credentials.NewStaticV4("test", "test", ""),
		Secure: false,
	})
	if err != nil {
		t.Fatalf("new minio client: %v", err)
	}
	return NewPhotoService(client, config.MinIOConfig{
		Endpoint: "127.0.0.1:1",
		Bucket:   "work-photos",
	})
}

func TestUploadRejectsOversizedPhoto(t *testing.T) {
	svc := newTestPhotoService(t)

	body := strings.NewReader("x")
	_, err := svc.Upload(context.Background(), "step1", body, MaxPhotoSize+1, "image/png", "big.png")
	if !errors.Is(err, ErrInvalid) {
		t.Fatalf("expected ErrInvalid for oversized photo, got %v", err)
	}
	if !strings.Contains(err.Error(), "size limit") {
		t.Errorf("expected size limit message, got %q", err.Error())
	}

	// Exactly at the limit passes validation; the subsequent storage write
	// fails against the dead endpoint, which is a different error.
	_, err = svc.Upload(context.Background(), "step1", body, MaxPhotoSize, "image/png", "edge.png")
	if errors.Is(err, ErrInvalid) {
		t.Fatalf("photo at exact size limit should pass validation, got %v", err)
	}
}

func TestUploadRejectsUnsupportedType(t *testing.T) {
	svc := newTestPhotoService(t)

	for _, contentType := range []string{"application/pdf", "text/html", "video/mp4", ""} {
		_, err := svc.Upload(context.Background(), "step1", strings.NewReader("x"), 1, contentType, "f.bin")
		if !errors.Is(err, ErrInvalid) {
			t.Errorf("expected ErrInvalid for content type %q, got %v", contentType, err)
		}
	}
}

func TestPhotoObjectKey(t *testing.T) {
	key, err := photoObjectKey("http://minio.local/work-photos/step1/1700000000000.png")
	if err != nil {
		t.Fatalf("object key failed: %v", err)
	}
	if key != "step1/1700000000000.png" {
		t.Errorf("expected step-scoped key, got %q", key)
	}

	// Trailing slash is ignored
	key, err = photoObjectKey("http://minio.local/work-photos/step1/1700000000000.png/")
	if err != nil {
		t.Fatalf("object key failed: %v", err)
	}
	if key != "step1/1700000000000.png" {
		t.Errorf("expected step-scoped key, got %q", key)
	}

	if _, err := photoObjectKey("bare"); !errors.Is(err, ErrInvalid) {
		t.Fatalf("expected ErrInvalid for malformed url, got %v", err)
	}
}

func TestPhotoPublicURLBase(t *testing.T) {
	svc := NewPhotoService(nil, config.MinIOConfig{
		Endpoint: "minio.internal:9000",
		Bucket:   "work-photos",
	})
	if svc.baseURL != "http://minio.internal:9000" {
		t.Errorf("expected endpoint-derived base url, got %q", svc.baseURL)
	}

	svc = NewPhotoService(nil, config.MinIOConfig{
		Endpoint: "minio.internal:9000",
		UseSSL:   true,
		Bucket:   "work-photos",
	})
	if svc.baseURL != "https://minio.internal:9000" {
		t.Errorf("expected https base url, got %q", svc.baseURL)
	}

	// Explicit public URL wins over the endpoint, trailing slash trimmed
	svc = NewPhotoService(nil, config.MinIOConfig{
		Endpoint:  "minio.internal:9000",
		Bucket:    "work-photos",
		PublicURL: "https://cdn.example.com/",
	})
	if svc.baseURL != "https://cdn.example.com" {
		t.Errorf("expected public url base, got %q", svc.baseURL)
	}
}

func TestPhotoServiceWithoutClient(t *testing.T) {
	svc := NewPhotoService(nil, config.MinIOConfig{Bucket: "work-photos"})
	ctx := context.Background()

	if err := svc.EnsureBucket(ctx); err != nil {
		t.Fatalf("expected bucket bootstrap no-op without client, got %v", err)
	}
	if _, err := svc.Upload(ctx, "step1", strings.NewReader("x"), 1, "image/png", "f.png"); err == nil {
		t.Fatal("expected error uploading without client")
	}
	if err := svc.Delete(ctx, "http://minio.local/work-photos/step1/f.png"); err == nil {
		t.Fatal("expected error deleting without client")
	}
}
