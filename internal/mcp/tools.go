package mcp

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/sirupsen/logrus"

	"github.com/pv-case-assessor/internal/domain"
	"github.com/pv-case-assessor/internal/feedback"
	"github.com/pv-case-assessor/internal/report"
)

// Tool names.
const (
	ToolAssessCase     = "assess_case"
	ToolAssessEvent    = "assess_event"
	ToolRecordFeedback = "record_feedback"
	ToolListFeedback   = "list_feedback"
)

// ToolNames lists the registered tools in registration order.
var ToolNames = []string{ToolAssessCase, ToolAssessEvent, ToolRecordFeedback, ToolListFeedback}

const (
	defaultListLimit = 20
	maxListLimit     = 1000
	inlineCaseID     = "inline"
)

// AssessCaseParams defines parameters for the assess_case tool
type AssessCaseParams struct {
	Narrative string `json:"narrative" jsonschema:"free-text adverse event case narrative"`
	CaseID    string `json:"case_id,omitempty" jsonschema:"optional case identifier echoed in the result"`
}

// AssessEventParams defines parameters for the assess_event tool
type AssessEventParams struct {
	Narrative string `json:"narrative" jsonschema:"free-text adverse event case narrative"`
	Event     string `json:"event" jsonschema:"adverse event phrase to assess"`
	CaseID    string `json:"case_id,omitempty" jsonschema:"optional case identifier echoed in the result"`
}

// AssessEventResult defines the result of assess_event
type AssessEventResult struct {
	RunID      string                 `json:"run_id"`
	CaseID     string                 `json:"case_id"`
	Assessment domain.EventAssessment `json:"assessment"`
}

// RecordFeedbackParams defines parameters for the record_feedback tool.
// When suggested_grade is omitted it is recomputed from the narrative.
type RecordFeedbackParams struct {
	CaseID         string `json:"case_id" jsonschema:"case identifier the assessment was made for"`
	Event          string `json:"event" jsonschema:"assessed event phrase"`
	ReviewerGrade  string `json:"reviewer_grade" jsonschema:"WHO-UMC grade assigned by the reviewer"`
	SuggestedGrade string `json:"suggested_grade,omitempty" jsonschema:"WHO-UMC grade suggested by the assessor"`
	Narrative      string `json:"narrative,omitempty" jsonschema:"case narrative used to recompute the suggested grade"`
	Notes          string `json:"notes,omitempty" jsonschema:"reviewer notes"`
}

// RecordFeedbackResult defines the result of record_feedback
type RecordFeedbackResult struct {
	Success  bool               `json:"success"`
	Message  string             `json:"message"`
	Feedback *feedback.Feedback `json:"feedback,omitempty"`
}

// ListFeedbackParams defines parameters for the list_feedback tool
type ListFeedbackParams struct {
	Limit  int `json:"limit,omitempty" jsonschema:"maximum number of entries to return (default 20)"`
	Offset int `json:"offset,omitempty" jsonschema:"number of entries to skip"`
}

// ListFeedbackResult defines the result of list_feedback
type ListFeedbackResult struct {
	Total     int64                `json:"total"`
	Entries   []*feedback.Feedback `json:"entries"`
	Agreement feedback.Agreement   `json:"agreement"`
}

func (s *Server) handleAssessCase(ctx context.Context, req *mcp.CallToolRequest, params AssessCaseParams) (*mcp.CallToolResult, any, error) {
	start := time.Now()

	if strings.TrimSpace(params.Narrative) == "" {
		return s.createErrorResult("Missing required parameter", domain.NewValidationError("narrative", "narrative is required", "")), nil, nil
	}

	caseID := params.CaseID
	if caseID == "" {
		caseID = inlineCaseID
	}

	result := report.NewResult(caseID, "", s.assessor.Assess(params.Narrative))

	var text bytes.Buffer
	if err := report.WriteText(&text, result); err != nil {
		return s.createErrorResult("Failed to render report", err), nil, nil
	}

	s.logger.WithFields(logrus.Fields{
		"tool":            ToolAssessCase,
		"run_id":          result.RunID,
		"case_id":         caseID,
		"events":          len(result.Assessment.Events),
		"processing_time": time.Since(start),
	}).Info("Tool invoked")

	return textResult(text.String()), result, nil
}

func (s *Server) handleAssessEvent(ctx context.Context, req *mcp.CallToolRequest, params AssessEventParams) (*mcp.CallToolResult, any, error) {
	if strings.TrimSpace(params.Narrative) == "" {
		return s.createErrorResult("Missing required parameter", domain.NewValidationError("narrative", "narrative is required", "")), nil, nil
	}
	event := strings.ToLower(strings.TrimSpace(params.Event))
	if event == "" {
		return s.createErrorResult("Missing required parameter", domain.NewValidationError("event", "event is required", "")), nil, nil
	}

	caseID := params.CaseID
	if caseID == "" {
		caseID = inlineCaseID
	}

	record := s.assessor.AssessEvent(params.Narrative, event)
	result := AssessEventResult{
		RunID:      uuid.NewString(),
		CaseID:     caseID,
		Assessment: record,
	}

	var text bytes.Buffer
	if err := report.WriteEventText(&text, record); err != nil {
		return s.createErrorResult("Failed to render report", err), nil, nil
	}

	s.logger.WithFields(logrus.Fields{
		"tool":    ToolAssessEvent,
		"run_id":  result.RunID,
		"case_id": caseID,
		"event":   event,
		"grade":   record.Causality.Grade,
	}).Info("Tool invoked")

	return textResult(strings.TrimPrefix(text.String(), "\n")), result, nil
}

func (s *Server) handleRecordFeedback(ctx context.Context, req *mcp.CallToolRequest, params RecordFeedbackParams) (*mcp.CallToolResult, any, error) {
	if params.CaseID == "" {
		return s.createErrorResult("Missing required parameter", domain.NewValidationError("case_id", "case_id is required", "")), nil, nil
	}
	event := strings.ToLower(strings.TrimSpace(params.Event))
	if event == "" {
		return s.createErrorResult("Missing required parameter", domain.NewValidationError("event", "event is required", "")), nil, nil
	}

	reviewer, err := domain.ParseGrade(params.ReviewerGrade)
	if err != nil {
		return s.createErrorResult("Invalid reviewer_grade", fmt.Errorf("%q: %w", params.ReviewerGrade, err)), nil, nil
	}

	var suggested domain.Grade
	var rationale string
	switch {
	case params.SuggestedGrade != "":
		suggested, err = domain.ParseGrade(params.SuggestedGrade)
		if err != nil {
			return s.createErrorResult("Invalid suggested_grade", fmt.Errorf("%q: %w", params.SuggestedGrade, err)), nil, nil
		}
	case params.Narrative != "":
		causality := s.assessor.AssessEvent(params.Narrative, event).Causality
		suggested, rationale = causality.Grade, causality.Rationale
	default:
		return s.createErrorResult("Missing required parameter", errors.New("either suggested_grade or narrative is required")), nil, nil
	}

	fb := feedback.NewFeedback(params.CaseID, event, suggested, reviewer, params.Notes)
	fb.Rationale = rationale

	if err := s.feedbackStore.Save(ctx, fb); err != nil {
		s.logger.WithError(err).Error("Failed to save feedback")
		return s.createErrorResult("Failed to save feedback", err), nil, nil
	}

	msg := "Feedback saved: reviewer agreed with the suggested grade"
	if !fb.ReviewerAgreed {
		msg = fmt.Sprintf("Feedback saved: grade corrected from %s to %s", suggested, reviewer)
	}

	s.logger.WithFields(logrus.Fields{
		"tool":            ToolRecordFeedback,
		"case_id":         fb.CaseID,
		"event":           fb.Event,
		"reviewer_agreed": fb.ReviewerAgreed,
	}).Info("Tool invoked")

	return textResult(msg), RecordFeedbackResult{Success: true, Message: msg, Feedback: fb}, nil
}

func (s *Server) handleListFeedback(ctx context.Context, req *mcp.CallToolRequest, params ListFeedbackParams) (*mcp.CallToolResult, any, error) {
	limit := params.Limit
	if limit <= 0 {
		limit = defaultListLimit
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}
	if params.Offset < 0 {
		return s.createErrorResult("Invalid parameter", domain.NewValidationError("offset", "offset must not be negative", params.Offset)), nil, nil
	}

	entries, err := s.feedbackStore.List(ctx, limit, params.Offset)
	if err != nil {
		return s.createErrorResult("Failed to list feedback", err), nil, nil
	}
	total, err := s.feedbackStore.Count(ctx)
	if err != nil {
		return s.createErrorResult("Failed to count feedback", err), nil, nil
	}
	if entries == nil {
		entries = []*feedback.Feedback{}
	}

	result := ListFeedbackResult{
		Total:     total,
		Entries:   entries,
		Agreement: feedback.Summarize(entries),
	}

	var text strings.Builder
	fmt.Fprintf(&text, "%d of %d feedback entries", len(entries), total)
	for _, fb := range entries {
		fmt.Fprintf(&text, "\n%s / %s: suggested %s, reviewer %s", fb.CaseID, fb.Event, fb.SuggestedGrade, fb.ReviewerGrade)
	}

	return textResult(text.String()), result, nil
}

func textResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: text},
		},
	}
}

// createErrorResult creates a standardized error result for tool calls
func (s *Server) createErrorResult(message string, err error) *mcp.CallToolResult {
	errorText := fmt.Sprintf("Error: %s", message)
	if err != nil {
		errorText += fmt.Sprintf(" - %v", err)
	}

	s.logger.WithField("error", errorText).Warn("Tool call failed")

	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: errorText},
		},
		IsError: true,
	}
}
