package diagnostics

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/careconnect/careconnect/internal/platform/apperr"
	"github.com/careconnect/careconnect/internal/platform/blobstore"
	"github.com/careconnect/careconnect/internal/platform/realtime"
)

const (
	labTable     = "lab_results"
	imagingTable = "imaging_results"
)

type Service struct {
	labs    LabRepository
	imaging ImagingRepository
	blobs   blobstore.Store
	pub     realtime.Publisher
	now     func() time.Time
}

func NewService(labs LabRepository, imaging ImagingRepository, blobs blobstore.Store, pub realtime.Publisher) *Service {
	return &Service{labs: labs, imaging: imaging, blobs: blobs, pub: pub, now: time.Now}
}

func (s *Service) publish(ctx context.Context, table, op string, id, patientID uuid.UUID) {
	if s.pub == nil {
		return
	}
	_ = s.pub.Publish(ctx, realtime.Change{Table: table, Op: op, RecordID: id.String(), PatientID: patientID.String()})
}

func checkFilter(f Filter) error {
	if f.Status != "" && f.Status != StatusPending && f.Status != StatusCompleted {
		return apperr.Validation("status", "must be pending or completed")
	}
	return nil
}

// -- Lab results --

func (s *Service) CreateLab(ctx context.Context, l *LabResult) error {
	if err := l.Validate(s.now()); err != nil {
		return err
	}
	if err := s.labs.Create(ctx, l); err != nil {
		return fmt.Errorf("create lab result: %w", err)
	}
	s.publish(ctx, labTable, realtime.OpInsert, l.ID, l.PatientID)
	return nil
}

func (s *Service) GetLab(ctx context.Context, id uuid.UUID) (*LabResult, error) {
	return s.labs.GetByID(ctx, id)
}

// UpdateLab replaces the editable fields of a lab result.
func (s *Service) UpdateLab(ctx context.Context, id uuid.UUID, in *LabResult) (*LabResult, error) {
	cur, err := s.labs.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	in.ID, in.PatientID, in.CreatedAt = cur.ID, cur.PatientID, cur.CreatedAt
	if err := in.Validate(s.now()); err != nil {
		return nil, err
	}
	if err := s.labs.Update(ctx, in); err != nil {
		return nil, err
	}
	s.publish(ctx, labTable, realtime.OpUpdate, in.ID, in.PatientID)
	return in, nil
}

func (s *Service) DeleteLab(ctx context.Context, id uuid.UUID) error {
	l, err := s.labs.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.labs.Delete(ctx, id); err != nil {
		return err
	}
	s.publish(ctx, labTable, realtime.OpDelete, id, l.PatientID)
	return nil
}

func (s *Service) ListPatientLabs(ctx context.Context, patientID uuid.UUID, f Filter, limit, offset int) ([]*LabResult, int, error) {
	if err := checkFilter(f); err != nil {
		return nil, 0, err
	}
	return s.labs.ListByPatient(ctx, patientID, f, limit, offset)
}

func (s *Service) ListLabs(ctx context.Context, f Filter, limit, offset int) ([]*LabResult, int, error) {
	if err := checkFilter(f); err != nil {
		return nil, 0, err
	}
	return s.labs.List(ctx, f, limit, offset)
}

// -- Imaging results --

func (s *Service) CreateImaging(ctx context.Context, r *ImagingResult) error {
	r.ImageKeys = nil
	if err := r.Validate(s.now()); err != nil {
		return err
	}
	if err := s.imaging.Create(ctx, r); err != nil {
		return fmt.Errorf("create imaging result: %w", err)
	}
	s.publish(ctx, imagingTable, realtime.OpInsert, r.ID, r.PatientID)
	return nil
}

func (s *Service) GetImaging(ctx context.Context, id uuid.UUID) (*ImagingResult, error) {
	return s.imaging.GetByID(ctx, id)
}

// UpdateImaging replaces the report fields. Attached images are managed by
// AttachImage and RemoveImage.
func (s *Service) UpdateImaging(ctx context.Context, id uuid.UUID, in *ImagingResult) (*ImagingResult, error) {
	cur, err := s.imaging.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	in.ID, in.PatientID, in.CreatedAt, in.ImageKeys = cur.ID, cur.PatientID, cur.CreatedAt, cur.ImageKeys
	if err := in.Validate(s.now()); err != nil {
		return nil, err
	}
	if err := s.imaging.Update(ctx, in); err != nil {
		return nil, err
	}
	s.publish(ctx, imagingTable, realtime.OpUpdate, in.ID, in.PatientID)
	return in, nil
}

// DeleteImaging removes the study and its images. Image removal failures
// are logged and do not block the delete.
func (s *Service) DeleteImaging(ctx context.Context, id uuid.UUID) error {
	r, err := s.imaging.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.imaging.Delete(ctx, id); err != nil {
		return err
	}
	for _, key := range r.ImageKeys {
		if err := s.blobs.Delete(ctx, key); err != nil && !errors.Is(err, blobstore.ErrObjectNotFound) {
			zerolog.Ctx(ctx).Warn().Err(err).Str("key", key).Msg("orphaned imaging object")
		}
	}
	s.publish(ctx, imagingTable, realtime.OpDelete, id, r.PatientID)
	return nil
}

func (s *Service) ListPatientImaging(ctx context.Context, patientID uuid.UUID, f Filter, limit, offset int) ([]*ImagingResult, int, error) {
	if err := checkFilter(f); err != nil {
		return nil, 0, err
	}
	return s.imaging.ListByPatient(ctx, patientID, f, limit, offset)
}

func (s *Service) ListImaging(ctx context.Context, f Filter, limit, offset int) ([]*ImagingResult, int, error) {
	if err := checkFilter(f); err != nil {
		return nil, 0, err
	}
	return s.imaging.List(ctx, f, limit, offset)
}

func uploadError(err error) error {
	switch {
	case errors.Is(err, blobstore.ErrFileTooLarge):
		return apperr.Validation("file", "exceeds the %d MB limit", blobstore.MaxFileSize/(1024*1024))
	case errors.Is(err, blobstore.ErrInvalidContentType):
		return apperr.Validation("file", "must be PNG, JPEG, DICOM or PDF")
	case errors.Is(err, blobstore.ErrMissingFileName):
		return apperr.Required("file")
	}
	return err
}

// AttachImage stores an image under the study and records its key.
func (s *Service) AttachImage(ctx context.Context, id uuid.UUID, fileName, contentType string, content io.Reader) (*ImagingResult, *blobstore.Object, error) {
	r, err := s.imaging.GetByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	prefix := fmt.Sprintf("patients/%s/imaging/%s", r.PatientID, r.ID)
	obj, err := s.blobs.Put(ctx, prefix, fileName, contentType, content)
	if err != nil {
		return nil, nil, uploadError(err)
	}
	r.ImageKeys = append(r.ImageKeys, obj.Key)
	if err := s.imaging.Update(ctx, r); err != nil {
		_ = s.blobs.Delete(ctx, obj.Key)
		return nil, nil, err
	}
	s.publish(ctx, imagingTable, realtime.OpUpdate, r.ID, r.PatientID)
	return r, obj, nil
}

func (s *Service) hasImage(r *ImagingResult, key string) bool {
	for _, k := range r.ImageKeys {
		if k == key {
			return true
		}
	}
	return false
}

// OpenImage streams an attached image. The caller closes the reader.
func (s *Service) OpenImage(ctx context.Context, id uuid.UUID, key string) (io.ReadCloser, *blobstore.Object, *ImagingResult, error) {
	r, err := s.imaging.GetByID(ctx, id)
	if err != nil {
		return nil, nil, nil, err
	}
	if !s.hasImage(r, key) {
		return nil, nil, nil, apperr.ErrNotFound
	}
	rc, obj, err := s.blobs.Get(ctx, key)
	if errors.Is(err, blobstore.ErrObjectNotFound) {
		return nil, nil, nil, apperr.ErrNotFound
	}
	if err != nil {
		return nil, nil, nil, err
	}
	return rc, obj, r, nil
}

// RemoveImage detaches and deletes one image.
func (s *Service) RemoveImage(ctx context.Context, id uuid.UUID, key string) (*ImagingResult, error) {
	r, err := s.imaging.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !s.hasImage(r, key) {
		return nil, apperr.ErrNotFound
	}
	keys := make([]string, 0, len(r.ImageKeys)-1)
	for _, k := range r.ImageKeys {
		if k != key {
			keys = append(keys, k)
		}
	}
	r.ImageKeys = keys
	if err := s.imaging.Update(ctx, r); err != nil {
		return nil, err
	}
	if err := s.blobs.Delete(ctx, key); err != nil && !errors.Is(err, blobstore.ErrObjectNotFound) {
		zerolog.Ctx(ctx).Warn().Err(err).Str("key", key).Msg("orphaned imaging object")
	}
	s.publish(ctx, imagingTable, realtime.OpUpdate, r.ID, r.PatientID)
	return r, nil
}
