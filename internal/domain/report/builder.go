package report

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/careconnect/careconnect/internal/domain/diagnostics"
	"github.com/careconnect/careconnect/internal/domain/mar"
	"github.com/careconnect/careconnect/internal/domain/nursing"
	"github.com/careconnect/careconnect/internal/domain/patient"
	"github.com/careconnect/careconnect/internal/domain/staff"
	"github.com/careconnect/careconnect/internal/domain/vitals"
	"github.com/careconnect/careconnect/internal/platform/apperr"
)

// maxRows bounds every list section of a printed chart.
const maxRows = 500

type PatientSource interface {
	Get(ctx context.Context, id uuid.UUID) (*patient.Patient, error)
}

type StaffSource interface {
	Get(ctx context.Context, id uuid.UUID) (*staff.Member, error)
}

type VitalsSource interface {
	History(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*vitals.Snapshot, int, error)
}

type MARSource interface {
	ListOrders(ctx context.Context, patientID uuid.UUID, f mar.OrderFilter, limit, offset int) ([]*mar.Order, int, error)
}

type NursingSource interface {
	ListIO(ctx context.Context, patientID uuid.UUID, f nursing.IOFilter, limit, offset int) ([]*nursing.IORecord, int, error)
	IOSummary(ctx context.Context, patientID uuid.UUID, f nursing.IOFilter) (*nursing.IOSummary, error)
	ListAssessments(ctx context.Context, patientID uuid.UUID, assessmentType string, limit, offset int) ([]*nursing.Assessment, int, error)
	ListFDAR(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*nursing.FDARNote, int, error)
}

type DiagnosticsSource interface {
	ListPatientLabs(ctx context.Context, patientID uuid.UUID, f diagnostics.Filter, limit, offset int) ([]*diagnostics.LabResult, int, error)
	ListPatientImaging(ctx context.Context, patientID uuid.UUID, f diagnostics.Filter, limit, offset int) ([]*diagnostics.ImagingResult, int, error)
}

// Sources are the read paths a chart is assembled from. Staff may be nil.
type Sources struct {
	Patients    PatientSource
	Staff       StaffSource
	Vitals      VitalsSource
	MAR         MARSource
	Nursing     NursingSource
	Diagnostics DiagnosticsSource
}

// Document is everything the template renders. Slices are nil for sections
// that were not selected.
type Document struct {
	Patient     *patient.Patient
	Attending   string
	Sections    []Section
	Selected    Selection
	GeneratedAt time.Time
	GeneratedBy string
	Age         int

	Vitals       []*vitals.Snapshot
	Orders       []*mar.Order
	IntakeOutput []*nursing.IORecord
	IOSummary    *nursing.IOSummary
	Labs         []*diagnostics.LabResult
	Imaging      []*diagnostics.ImagingResult
	Assessments  []*nursing.Assessment
	FDAR         []*nursing.FDARNote
	Truncated    []Section
}

type Builder struct {
	src Sources
	now func() time.Time
}

func NewBuilder(src Sources) *Builder {
	return &Builder{src: src, now: time.Now}
}

func (d *Document) noteTotal(s Section, got, total int) {
	if total > got {
		d.Truncated = append(d.Truncated, s)
	}
}

// Build fetches the selected sections for patientID.
func (b *Builder) Build(ctx context.Context, patientID uuid.UUID, sel Selection, generatedBy string) (*Document, error) {
	p, err := b.src.Patients.Get(ctx, patientID)
	if err != nil {
		return nil, err
	}
	now := b.now()
	doc := &Document{
		Patient:     p,
		Sections:    sel.Ordered(),
		Selected:    sel,
		GeneratedAt: now,
		GeneratedBy: generatedBy,
		Age:         p.Age(now),
	}
	if sel[SectionDemographics] && p.AttendingPhysicianID != nil && b.src.Staff != nil {
		m, err := b.src.Staff.Get(ctx, *p.AttendingPhysicianID)
		switch {
		case err == nil:
			doc.Attending = m.FullName()
		case !errors.Is(err, apperr.ErrNotFound):
			return nil, fmt.Errorf("attending physician: %w", err)
		}
	}

	for _, s := range doc.Sections {
		if err := b.fill(ctx, doc, s); err != nil {
			return nil, fmt.Errorf("%s section: %w", s, err)
		}
	}
	return doc, nil
}

func (b *Builder) fill(ctx context.Context, doc *Document, s Section) error {
	pid := doc.Patient.ID
	var total int
	var err error
	switch s {
	case SectionVitals:
		doc.Vitals, total, err = b.src.Vitals.History(ctx, pid, maxRows, 0)
		sort.SliceStable(doc.Vitals, func(i, j int) bool { return doc.Vitals[i].RecordedAt.Before(doc.Vitals[j].RecordedAt) })
		doc.noteTotal(s, len(doc.Vitals), total)
	case SectionMAR:
		doc.Orders, total, err = b.src.MAR.ListOrders(ctx, pid, mar.OrderFilter{}, maxRows, 0)
		doc.noteTotal(s, len(doc.Orders), total)
	case SectionIntakeOutput:
		doc.IntakeOutput, total, err = b.src.Nursing.ListIO(ctx, pid, nursing.IOFilter{}, maxRows, 0)
		if err != nil {
			return err
		}
		doc.noteTotal(s, len(doc.IntakeOutput), total)
		doc.IOSummary, err = b.src.Nursing.IOSummary(ctx, pid, nursing.IOFilter{})
	case SectionLabs:
		doc.Labs, total, err = b.src.Diagnostics.ListPatientLabs(ctx, pid, diagnostics.Filter{}, maxRows, 0)
		doc.noteTotal(s, len(doc.Labs), total)
	case SectionImaging:
		doc.Imaging, total, err = b.src.Diagnostics.ListPatientImaging(ctx, pid, diagnostics.Filter{}, maxRows, 0)
		doc.noteTotal(s, len(doc.Imaging), total)
	case SectionAssessments:
		doc.Assessments, total, err = b.src.Nursing.ListAssessments(ctx, pid, "", maxRows, 0)
		doc.noteTotal(s, len(doc.Assessments), total)
	case SectionFDAR:
		doc.FDAR, total, err = b.src.Nursing.ListFDAR(ctx, pid, maxRows, 0)
		doc.noteTotal(s, len(doc.FDAR), total)
	}
	return err
}
