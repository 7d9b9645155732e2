package report

import (
	"strings"

	"github.com/careconnect/careconnect/internal/platform/apperr"
)

// Section names one printable part of a patient chart.
type Section string

const (
	SectionDemographics Section = "demographics"
	SectionHistory      Section = "history"
	SectionVitals       Section = "vitals"
	SectionMAR          Section = "mar"
	SectionIntakeOutput Section = "intake_output"
	SectionLabs         Section = "labs"
	SectionImaging      Section = "imaging"
	SectionAssessments  Section = "assessments"
	SectionFDAR         Section = "fdar"
)

// AllSections is the print order.
var AllSections = []Section{
	SectionDemographics, SectionHistory, SectionVitals, SectionMAR, SectionIntakeOutput,
	SectionLabs, SectionImaging, SectionAssessments, SectionFDAR,
}

var sectionTitles = map[Section]string{
	SectionDemographics: "Patient Information",
	SectionHistory:      "Medical History",
	SectionVitals:       "Vital Signs",
	SectionMAR:          "Medication Administration Record",
	SectionIntakeOutput: "Intake and Output",
	SectionLabs:         "Laboratory Results",
	SectionImaging:      "Imaging Results",
	SectionAssessments:  "Nursing Assessments",
	SectionFDAR:         "FDAR Notes",
}

func (s Section) Title() string { return sectionTitles[s] }

// Selection is the set of sections requested for one document.
type Selection map[Section]bool

// ParseSections validates names and returns them in print order. An empty
// list selects every section.
func ParseSections(names []string) (Selection, error) {
	sel := make(Selection)
	if len(names) == 0 {
		for _, s := range AllSections {
			sel[s] = true
		}
		return sel, nil
	}
	for _, n := range names {
		s := Section(strings.ToLower(strings.TrimSpace(n)))
		if _, ok := sectionTitles[s]; !ok {
			return nil, apperr.Validation("sections", "unknown section %q", n)
		}
		sel[s] = true
	}
	return sel, nil
}

// Ordered returns the selected sections in print order.
func (sel Selection) Ordered() []Section {
	out := make([]Section, 0, len(sel))
	for _, s := range AllSections {
		if sel[s] {
			out = append(out, s)
		}
	}
	return out
}
