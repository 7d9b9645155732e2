package nursing

import (
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/careconnect/careconnect/internal/platform/apperr"
)

var testNow = time.Date(2025, 3, 1, 8, 0, 0, 0, time.UTC)

func TestSummarize_Balance(t *testing.T) {
	pid := uuid.New()
	records := []*IORecord{
		{Type: IOTypeIntake, AmountML: 300},
		{Type: IOTypeIntake, AmountML: 200},
		{Type: IOTypeOutput, AmountML: 250},
		{Type: IOTypeOutput, AmountML: 50},
	}
	sum := Summarize(pid, records)
	if sum.TotalIntake != 500 || sum.TotalOutput != 300 {
		t.Fatalf("unexpected totals %+v", sum)
	}
	if sum.Balance != 200 {
		t.Errorf("expected balance 200, got %v", sum.Balance)
	}
	if again := Summarize(pid, records); *again != *sum {
		t.Errorf("recomputing must give the same summary: %+v vs %+v", again, sum)
	}
}

func TestSummarize_Empty(t *testing.T) {
	sum := Summarize(uuid.New(), nil)
	if sum.Balance != 0 || sum.Entries != 0 {
		t.Errorf("expected zero summary, got %+v", sum)
	}
}

func TestIORecordValidate(t *testing.T) {
	pid := uuid.New()
	tests := []struct {
		name    string
		r       IORecord
		wantErr bool
	}{
		{"valid intake", IORecord{PatientID: pid, Type: "Intake", AmountML: 120, Description: "Oral fluids"}, false},
		{"bad type", IORecord{PatientID: pid, Type: "drain", AmountML: 120, Description: "x"}, true},
		{"zero amount", IORecord{PatientID: pid, Type: IOTypeOutput, AmountML: 0, Description: "Urine"}, true},
		{"negative amount", IORecord{PatientID: pid, Type: IOTypeOutput, AmountML: -5, Description: "Urine"}, true},
		{"missing description", IORecord{PatientID: pid, Type: IOTypeOutput, AmountML: 5}, true},
		{"missing patient", IORecord{Type: IOTypeOutput, AmountML: 5, Description: "Urine"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := tt.r
			err := r.Validate(testNow)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !apperr.IsValidation(err) {
				t.Errorf("expected validation error, got %T", err)
			}
			if err == nil && (r.Type != IOTypeIntake || !r.RecordedAt.Equal(testNow)) {
				t.Errorf("expected normalised record, got %+v", r)
			}
		})
	}
}

func TestAssessmentValidate(t *testing.T) {
	a := Assessment{PatientID: uuid.New(), AssessmentType: "Neuro", Findings: "GCS 15"}
	if err := a.Validate(testNow); err != nil {
		t.Fatal(err)
	}
	if a.AssessmentType != "neuro" {
		t.Errorf("expected lower-cased type, got %q", a.AssessmentType)
	}
	bad := Assessment{PatientID: uuid.New(), AssessmentType: "ortho", Findings: "x"}
	if err := bad.Validate(testNow); !apperr.IsValidation(err) {
		t.Errorf("expected validation error, got %v", err)
	}
}

func TestFDARValidate(t *testing.T) {
	n := FDARNote{PatientID: uuid.New(), Focus: "Acute pain", Nurse: "JD"}
	if err := n.Validate(testNow); !apperr.IsValidation(err) {
		t.Fatalf("expected validation error without D/A/R, got %v", err)
	}
	n.Data = "Pain 7/10 at incision site"
	if err := n.Validate(testNow); err != nil {
		t.Fatal(err)
	}
	n2 := FDARNote{PatientID: uuid.New(), Data: "x", Nurse: "JD"}
	if err := n2.Validate(testNow); !apperr.IsValidation(err) {
		t.Errorf("expected focus required, got %v", err)
	}
}
