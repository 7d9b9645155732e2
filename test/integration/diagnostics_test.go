//go:build integration

package integration

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"

	"github.com/careconnect/careconnect/internal/domain/diagnostics"
	"github.com/careconnect/careconnect/internal/platform/apperr"
)

func TestDiagnostics_LabLifecycle(t *testing.T) {
	ctx := context.Background()
	s := newSuite(t)
	p := createTestPatient(t, s, unique("H-"))

	lab := &diagnostics.LabResult{PatientID: p.ID, TestName: "CBC", PerformedBy: "MT Cruz"}
	if err := s.diagnostics.CreateLab(ctx, lab); err != nil {
		t.Fatalf("CreateLab: %v", err)
	}
	if lab.Status != diagnostics.StatusPending {
		t.Errorf("expected pending, got %s", lab.Status)
	}

	update := *lab
	update.Status = diagnostics.StatusCompleted
	update.Result = "WBC 14.2"
	update.Unit = "x10^9/L"
	update.Flag = "HIGH"
	got, err := s.diagnostics.UpdateLab(ctx, lab.ID, &update)
	if err != nil {
		t.Fatalf("UpdateLab: %v", err)
	}
	if got.ResultDate == nil || got.Flag != diagnostics.FlagHigh {
		t.Errorf("unexpected completed lab %+v", got)
	}

	pending, _, err := s.diagnostics.ListLabs(ctx, diagnostics.Filter{Status: diagnostics.StatusPending}, 100, 0)
	if err != nil {
		t.Fatalf("ListLabs: %v", err)
	}
	for _, l := range pending {
		if l.ID == lab.ID {
			t.Error("completed lab listed as pending")
		}
	}
}

func TestDiagnostics_ImagingAttachments(t *testing.T) {
	ctx := context.Background()
	s := newSuite(t)
	p := createTestPatient(t, s, unique("H-"))

	study := &diagnostics.ImagingResult{PatientID: p.ID, StudyType: "Chest X-ray", BodyPart: "Chest"}
	if err := s.diagnostics.CreateImaging(ctx, study); err != nil {
		t.Fatalf("CreateImaging: %v", err)
	}

	png := []byte("\x89PNG\r\n\x1a\nfake")
	updated, obj, err := s.diagnostics.AttachImage(ctx, study.ID, "pa view.png", "image/png", bytes.NewReader(png))
	if err != nil {
		t.Fatalf("AttachImage: %v", err)
	}
	if len(updated.ImageKeys) != 1 || updated.ImageKeys[0] != obj.Key {
		t.Fatalf("image key not recorded: %v", updated.ImageKeys)
	}

	stored, err := s.diagnostics.GetImaging(ctx, study.ID)
	if err != nil {
		t.Fatalf("GetImaging: %v", err)
	}
	rc, _, _, err := s.diagnostics.OpenImage(ctx, study.ID, stored.ImageKeys[0])
	if err != nil {
		t.Fatalf("OpenImage: %v", err)
	}
	body, _ := io.ReadAll(rc)
	rc.Close()
	if !bytes.Equal(body, png) {
		t.Error("image content changed in storage")
	}

	if err := s.diagnostics.DeleteImaging(ctx, study.ID); err != nil {
		t.Fatalf("DeleteImaging: %v", err)
	}
	if s.blobs.Len() != 0 {
		t.Errorf("expected stored images to be removed, %d left", s.blobs.Len())
	}
	if _, err := s.diagnostics.GetImaging(ctx, study.ID); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("expected not found, got %v", err)
	}
}
