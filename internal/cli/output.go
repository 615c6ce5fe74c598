package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/pv-case-assessor/internal/feedback"
)

func writeJSON(w io.Writer, v any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	encoder.SetEscapeHTML(false)
	return encoder.Encode(v)
}

// writeFeedbackTable prints feedback entries as an aligned table.
func writeFeedbackTable(w io.Writer, entries []*feedback.Feedback, total int64) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tCASE\tEVENT\tSUGGESTED\tREVIEWER\tAGREED\tUPDATED")
	for _, fb := range entries {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%t\t%s\n",
			fb.ID, fb.CaseID, fb.Event, fb.SuggestedGrade, fb.ReviewerGrade,
			fb.ReviewerAgreed, fb.UpdatedAt.Format(time.RFC3339))
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	summary := feedback.Summarize(entries)
	_, err := fmt.Fprintf(w, "\n%d of %d entries, reviewer agreement %.0f%%\n", len(entries), total, summary.Rate*100)
	return err
}
