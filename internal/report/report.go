// Package report renders case assessments as a plain-text report or JSON.
package report

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/pv-case-assessor/internal/domain"
)

// MaxQuestions is how many clarifying questions the text report prints per case.
const MaxQuestions = 2

// Result wraps one assessed case with the identifiers of the run that produced it.
type Result struct {
	RunID      string                 `json:"run_id"`
	CaseID     string                 `json:"case_id"`
	Narrative  string                 `json:"narrative,omitempty"`
	AssessedAt time.Time              `json:"assessed_at"`
	Assessment *domain.CaseAssessment `json:"assessment"`
}

// NewResult stamps an assessment with a fresh run id.
func NewResult(caseID, narrative string, assessment *domain.CaseAssessment) Result {
	return Result{
		RunID:      uuid.NewString(),
		CaseID:     caseID,
		Narrative:  narrative,
		AssessedAt: time.Now().UTC(),
		Assessment: assessment,
	}
}

// WriteJSON writes results as an indented JSON array.
func WriteJSON(w io.Writer, results []Result) error {
	if results == nil {
		results = []Result{}
	}
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	encoder.SetEscapeHTML(false)
	return encoder.Encode(results)
}

// WriteText writes the plain-text report of one case.
func WriteText(w io.Writer, r Result) error {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "CASE %s\n", r.CaseID)
	if r.Narrative != "" {
		fmt.Fprintf(&buf, "Text: %s\n", r.Narrative)
	}

	a := r.Assessment
	if a == nil || len(a.Assessments) == 0 {
		buf.WriteString("No assessment\n")
		_, err := w.Write(buf.Bytes())
		return err
	}

	fmt.Fprintf(&buf, "Events: %s\n", strings.Join(a.Events, ", "))

	completeness := a.Assessments[0].Completeness
	fmt.Fprintf(&buf, "Completeness: %.1f%%\n", completeness.Score)
	if len(completeness.Questions) > 0 {
		buf.WriteString("Missing information:\n")
		for _, q := range firstN(completeness.Questions, MaxQuestions) {
			fmt.Fprintf(&buf, "   - %s\n", q)
		}
	}

	for _, record := range a.Assessments {
		writeEvent(&buf, record)
	}

	_, err := w.Write(buf.Bytes())
	return err
}

// WriteEventText writes the per-event section for a single assessment record.
func WriteEventText(w io.Writer, record domain.EventAssessment) error {
	var buf bytes.Buffer
	writeEvent(&buf, record)
	_, err := w.Write(buf.Bytes())
	return err
}

func writeEvent(buf *bytes.Buffer, record domain.EventAssessment) {
	fmt.Fprintf(buf, "\nEvent: %s\n", strings.ToUpper(record.Event))

	if record.Seriousness.IsSerious {
		fmt.Fprintf(buf, "   Seriousness: SERIOUS (%s)\n", joinCategories(record.Seriousness.Categories))
	} else {
		buf.WriteString("   Seriousness: not serious\n")
	}

	if record.IME.IsSignificant {
		buf.WriteString("   IME: significant\n")
		for _, m := range record.IME.Matches {
			fmt.Fprintf(buf, "      '%s' -> %s\n", m.SurfaceTerm, m.CanonicalLabel)
		}
	} else {
		buf.WriteString("   IME: not significant\n")
	}

	status := "UNEXPECTED"
	if record.Expectedness.IsExpected {
		status = "expected"
	}
	fmt.Fprintf(buf, "   Expectedness: %s\n", status)
	if record.Expectedness.Drug != "" {
		fmt.Fprintf(buf, "      Drug: %s\n", record.Expectedness.Drug)
	}
	fmt.Fprintf(buf, "      Reason: %s\n", record.Expectedness.Reason)
	if record.Expectedness.Frequency != "" {
		fmt.Fprintf(buf, "      Frequency: %s\n", record.Expectedness.Frequency)
	}

	fmt.Fprintf(buf, "   Causality: %s\n", record.Causality.Grade)
	fmt.Fprintf(buf, "      Rationale: %s\n", record.Causality.Rationale)
}

func joinCategories(categories []domain.SeriousnessCategory) string {
	names := make([]string, len(categories))
	for i, c := range categories {
		names[i] = c.String()
	}
	return strings.Join(names, ", ")
}

func firstN(items []string, n int) []string {
	if len(items) > n {
		return items[:n]
	}
	return items
}
