package report

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io"
	"strings"
	"time"

	"github.com/careconnect/careconnect/internal/domain/patient"
)

//go:embed templates/*.html
var templateFS embed.FS

type historyRow struct {
	Title    string
	Positive []string
	Other    string
}

func historyRows(p *patient.Patient) []historyRow {
	return []historyRow{
		{"Past Medical History", p.PastMedicalHistory.Positive(patient.PastMedicalConditions), p.PastMedicalHistory.OtherConditions},
		{"Personal and Social History", p.PersonalSocialHistory.Positive(patient.PersonalSocialConditions), p.PersonalSocialHistory.OtherConditions},
		{"Family History", p.FamilyHistory.Positive(patient.FamilyConditions), p.FamilyHistory.OtherConditions},
	}
}

func formatTime(layout string) func(interface{}) string {
	return func(v interface{}) string {
		switch t := v.(type) {
		case time.Time:
			if t.IsZero() {
				return ""
			}
			return t.Format(layout)
		case *time.Time:
			if t == nil || t.IsZero() {
				return ""
			}
			return t.Format(layout)
		}
		return ""
	}
}

// opt renders optional measurements, leaving a dash for missing values.
func opt(v interface{}) string {
	switch x := v.(type) {
	case *int:
		if x != nil {
			return fmt.Sprint(*x)
		}
	case *float64:
		if x != nil {
			return fmt.Sprintf("%.1f", *x)
		}
	case *string:
		if x != nil && *x != "" {
			return *x
		}
	case string:
		if x != "" {
			return x
		}
	}
	return "-"
}

func humanize(s string) string {
	s = strings.ReplaceAll(s, "_", " ")
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

var funcs = template.FuncMap{
	"date":     formatTime("Jan 2, 2006"),
	"datetime": formatTime("Jan 2, 2006 15:04"),
	"opt":      opt,
	"join":     strings.Join,
	"humanize": humanize,
	"history":  historyRows,
	"ml":       func(v float64) string { return fmt.Sprintf("%.0f mL", v) },
}

var chartTemplate = template.Must(template.New("chart.html").Funcs(funcs).ParseFS(templateFS, "templates/chart.html"))

// Render writes doc as one printable HTML document.
func Render(w io.Writer, doc *Document) error {
	var buf bytes.Buffer
	if err := chartTemplate.Execute(&buf, doc); err != nil {
		return fmt.Errorf("render chart: %w", err)
	}
	_, err := buf.WriteTo(w)
	return err
}
