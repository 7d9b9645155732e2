package blobstore

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"
)

func TestMemoryStore_PutGetDelete(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	obj, err := s.Put(ctx, "imaging/p1/r1", "Chest PA.png", "image/png", strings.NewReader("pngdata"))
	if err != nil {
		t.Fatalf("Put: %v", err)
	}
	if !strings.HasPrefix(obj.Key, "imaging/p1/r1/") || !strings.HasSuffix(obj.Key, "-chest-pa.png") {
		t.Errorf("unexpected key %q", obj.Key)
	}
	if obj.Size != 7 || obj.SHA256 == "" {
		t.Errorf("unexpected metadata %+v", obj)
	}

	rc, meta, err := s.Get(ctx, obj.Key)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	data, _ := io.ReadAll(rc)
	rc.Close()
	if string(data) != "pngdata" || meta.ContentType != "image/png" {
		t.Errorf("unexpected content %q / %+v", data, meta)
	}

	if err := s.Delete(ctx, obj.Key); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, _, err := s.Get(ctx, obj.Key); !errors.Is(err, ErrObjectNotFound) {
		t.Errorf("expected ErrObjectNotFound, got %v", err)
	}
	if err := s.Delete(ctx, obj.Key); !errors.Is(err, ErrObjectNotFound) {
		t.Errorf("expected ErrObjectNotFound on second delete, got %v", err)
	}
}

func TestMemoryStore_Validation(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	if _, err := s.Put(ctx, "x", "", "image/png", strings.NewReader("a")); !errors.Is(err, ErrMissingFileName) {
		t.Errorf("expected ErrMissingFileName, got %v", err)
	}
	if _, err := s.Put(ctx, "x", "a.exe", "application/x-msdownload", strings.NewReader("a")); !errors.Is(err, ErrInvalidContentType) {
		t.Errorf("expected ErrInvalidContentType, got %v", err)
	}
	big := bytes.NewReader(make([]byte, MaxFileSize+1))
	if _, err := s.Put(ctx, "x", "big.png", "image/png", big); !errors.Is(err, ErrFileTooLarge) {
		t.Errorf("expected ErrFileTooLarge, got %v", err)
	}
	if s.Len() != 0 {
		t.Errorf("rejected uploads must not be stored, got %d", s.Len())
	}
}

func TestSanitizeFileName(t *testing.T) {
	tests := map[string]string{
		"Chest X-Ray.JPG":   "chest-x-ray.jpg",
		"../../etc/passwd":  "passwd",
		"  ":                "file",
		"scan (1).dcm":      "scan--1-.dcm",
	}
	for in, want := range tests {
		if got := sanitizeFileName(in); got != want {
			t.Errorf("sanitizeFileName(%q) = %q, want %q", in, got, want)
		}
	}
}
