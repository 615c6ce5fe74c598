// Package feedback stores reviewer decisions on suggested causality grades.
// A reviewer either agrees with the grade the assessor suggested for a
// (case, event) pair or records the grade they assigned instead.
package feedback

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/pv-case-assessor/internal/domain"
)

// Feedback represents a reviewer's decision on one assessed event.
type Feedback struct {
	ID             int64        `json:"id,omitempty"`
	CaseID         string       `json:"case_id"`             // Case file name or caller-supplied id
	Event          string       `json:"event"`               // Assessed event phrase
	SuggestedGrade domain.Grade `json:"suggested_grade"`     // Assessor's suggestion
	ReviewerGrade  domain.Grade `json:"reviewer_grade"`      // Reviewer's decision
	ReviewerAgreed bool         `json:"reviewer_agreed"`     // Did the reviewer keep the suggestion?
	Rationale      string       `json:"rationale,omitempty"` // Rationale shown with the suggestion
	Notes          string       `json:"notes,omitempty"`     // Reviewer notes
	CreatedAt      time.Time    `json:"created_at"`
	UpdatedAt      time.Time    `json:"updated_at"`
}

// NewFeedback builds a feedback entry; agreement is derived from the grades.
func NewFeedback(caseID, event string, suggested, reviewer domain.Grade, notes string) *Feedback {
	return &Feedback{
		CaseID:         caseID,
		Event:          event,
		SuggestedGrade: suggested,
		ReviewerGrade:  reviewer,
		ReviewerAgreed: suggested == reviewer,
		Notes:          notes,
	}
}

// Validate checks the entry before it is stored.
func (f *Feedback) Validate() error {
	if f.CaseID == "" {
		return domain.NewValidationError("case_id", "case id is required", f.CaseID)
	}
	if f.Event == "" {
		return domain.NewValidationError("event", "event is required", f.Event)
	}
	if !f.SuggestedGrade.IsValid() {
		return fmt.Errorf("suggested_grade %q: %w", f.SuggestedGrade, domain.ErrInvalidGrade)
	}
	if !f.ReviewerGrade.IsValid() {
		return fmt.Errorf("reviewer_grade %q: %w", f.ReviewerGrade, domain.ErrInvalidGrade)
	}
	return nil
}

// Store defines the interface for feedback storage operations.
type Store interface {
	// Save stores or updates reviewer feedback.
	// If feedback for the same case_id+event exists, it will be updated.
	Save(ctx context.Context, feedback *Feedback) error

	// Get retrieves the feedback for one event of a case, or nil if none exists.
	Get(ctx context.Context, caseID string, event string) (*Feedback, error)

	// List returns feedback entries, newest first, with pagination.
	List(ctx context.Context, limit, offset int) ([]*Feedback, error)

	// Count returns the total number of feedback entries.
	Count(ctx context.Context) (int64, error)

	// Delete removes a feedback entry by ID.
	Delete(ctx context.Context, id int64) error

	// ExportJSON exports all feedback to a JSON writer.
	ExportJSON(ctx context.Context, writer io.Writer) error

	// ImportJSON imports feedback from a JSON reader.
	// Returns the number of imported and skipped entries.
	ImportJSON(ctx context.Context, reader io.Reader) (imported int, skipped int, err error)

	// Close closes the store and releases resources.
	Close() error
}

// FeedbackExport represents the JSON export format.
type FeedbackExport struct {
	Version    string      `json:"version"`
	ExportedAt time.Time   `json:"exported_at"`
	Count      int         `json:"count"`
	Feedback   []*Feedback `json:"feedback"`
}

// Agreement summarises how often reviewers kept the suggested grade.
type Agreement struct {
	Total   int                  `json:"total"`
	Agreed  int                  `json:"agreed"`
	Rate    float64              `json:"rate"`
	ByGrade map[domain.Grade]int `json:"overridden_by_grade,omitempty"`
}

// Summarize computes reviewer agreement over a set of entries.
func Summarize(entries []*Feedback) Agreement {
	a := Agreement{Total: len(entries), ByGrade: map[domain.Grade]int{}}
	for _, fb := range entries {
		if fb.ReviewerAgreed {
			a.Agreed++
			continue
		}
		a.ByGrade[fb.SuggestedGrade]++
	}
	if a.Total > 0 {
		a.Rate = float64(a.Agreed) / float64(a.Total)
	}
	return a
}
