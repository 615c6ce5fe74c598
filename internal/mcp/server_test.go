package mcp

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pv-case-assessor/internal/domain"
	"github.com/pv-case-assessor/internal/feedback"
	"github.com/pv-case-assessor/internal/knowledge"
	"github.com/pv-case-assessor/internal/lexicon"
	"github.com/pv-case-assessor/internal/logging"
	"github.com/pv-case-assessor/internal/report"
	"github.com/pv-case-assessor/internal/service"
)

const anaphylaxis = "Через 2 часа после приема препарата развился анафилактический шок. Пациент госпитализирован."

func createTestConfig(t *testing.T) *domain.Config {
	t.Helper()
	return &domain.Config{
		DataDir:  t.TempDir(),
		Feedback: domain.FeedbackConfig{Driver: "sqlite"},
		MCP:      domain.MCPConfig{ServerName: "pv-case-assessor", ServerVersion: "test"},
	}
}

func createTestServer(t *testing.T) (*Server, *test.Hook) {
	t.Helper()

	kb, err := knowledge.Default()
	require.NoError(t, err)
	lex, err := lexicon.Default()
	require.NoError(t, err)
	assessor := service.NewCaseAssessor(logging.Discard(), kb, lex)

	store, err := feedback.NewSQLiteStore(filepath.Join(t.TempDir(), "feedback.db"))
	require.NoError(t, err)

	logger, hook := test.NewNullLogger()
	server, err := NewServer(createTestConfig(t), assessor, WithFeedbackStore(store), WithLogger(logger))
	require.NoError(t, err)
	t.Cleanup(func() { server.Close() })

	return server, hook
}

func resultText(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	require.NotNil(t, result)
	require.Len(t, result.Content, 1)
	text, ok := result.Content[0].(*mcp.TextContent)
	require.True(t, ok)
	return text.Text
}

func TestNewServer(t *testing.T) {
	server, hook := createTestServer(t)

	assert.NotNil(t, server.mcpServer)
	assert.NotNil(t, server.FeedbackStore())
	assert.Equal(t, "MCP server initialized", hook.LastEntry().Message)
}

func TestNewServer_OpensConfiguredStore(t *testing.T) {
	kb, err := knowledge.Default()
	require.NoError(t, err)
	lex, err := lexicon.Default()
	require.NoError(t, err)
	logger, _ := test.NewNullLogger()

	cfg := createTestConfig(t)
	server, err := NewServer(cfg, service.NewCaseAssessor(logger, kb, lex), WithLogger(logger))
	require.NoError(t, err)
	defer server.Close()

	assert.IsType(t, &feedback.SQLiteStore{}, server.FeedbackStore())
	assert.FileExists(t, cfg.FeedbackDBPath())
}

func TestNewServer_RequiresAssessor(t *testing.T) {
	_, err := NewServer(createTestConfig(t), nil)

	assert.Error(t, err)
}

func TestHandleAssessCase(t *testing.T) {
	server, _ := createTestServer(t)

	result, out, err := server.handleAssessCase(context.Background(), nil, AssessCaseParams{Narrative: anaphylaxis, CaseID: "case_2.txt"})

	require.NoError(t, err)
	assert.False(t, result.IsError)
	assert.Contains(t, resultText(t, result), "Causality: Possible")

	res, ok := out.(report.Result)
	require.True(t, ok)
	assert.NotEmpty(t, res.RunID)
	assert.Equal(t, "case_2.txt", res.CaseID)
	assert.Equal(t, []string{"анафилактический шок", "госпитализирован"}, res.Assessment.Events)
}

func TestHandleAssessCase_DefaultCaseID(t *testing.T) {
	server, _ := createTestServer(t)

	_, out, err := server.handleAssessCase(context.Background(), nil, AssessCaseParams{Narrative: "Развилась тошнота"})

	require.NoError(t, err)
	assert.Equal(t, inlineCaseID, out.(report.Result).CaseID)
}

func TestHandleAssessCase_EmptyNarrative(t *testing.T) {
	server, _ := createTestServer(t)

	result, out, err := server.handleAssessCase(context.Background(), nil, AssessCaseParams{Narrative: "  "})

	require.NoError(t, err)
	assert.True(t, result.IsError)
	assert.Nil(t, out)
	assert.Contains(t, resultText(t, result), "narrative is required")
}

func TestHandleAssessEvent(t *testing.T) {
	server, _ := createTestServer(t)
	narrative := "Через 2 часа после приема Препарата А появилась сыпь. Препарат отменен, симптомы исчезли."

	result, out, err := server.handleAssessEvent(context.Background(), nil, AssessEventParams{Narrative: narrative, Event: " Зуд "})

	require.NoError(t, err)
	assert.False(t, result.IsError)
	assert.Contains(t, resultText(t, result), "Event: ЗУД")

	res := out.(AssessEventResult)
	assert.Equal(t, "зуд", res.Assessment.Event)
	assert.Equal(t, domain.PROBABLE, res.Assessment.Causality.Grade)
	assert.Equal(t, "аллергическая реакция", res.Assessment.Expectedness.ParentComplex)
}

func TestHandleAssessEvent_MissingEvent(t *testing.T) {
	server, _ := createTestServer(t)

	result, _, err := server.handleAssessEvent(context.Background(), nil, AssessEventParams{Narrative: anaphylaxis})

	require.NoError(t, err)
	assert.True(t, result.IsError)
	assert.Contains(t, resultText(t, result), "event is required")
}

func TestHandleRecordFeedback(t *testing.T) {
	server, _ := createTestServer(t)
	ctx := context.Background()

	result, out, err := server.handleRecordFeedback(ctx, nil, RecordFeedbackParams{
		CaseID:         "case_2.txt",
		Event:          "анафилактический шок",
		SuggestedGrade: "Possible",
		ReviewerGrade:  "Probable",
		Notes:          "Onset within minutes",
	})

	require.NoError(t, err)
	assert.False(t, result.IsError)
	assert.Contains(t, resultText(t, result), "corrected from Possible to Probable")

	res := out.(RecordFeedbackResult)
	assert.True(t, res.Success)
	assert.False(t, res.Feedback.ReviewerAgreed)

	stored, err := server.FeedbackStore().Get(ctx, "case_2.txt", "анафилактический шок")
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, domain.PROBABLE, stored.ReviewerGrade)
}

func TestHandleRecordFeedback_SuggestedFromNarrative(t *testing.T) {
	server, _ := createTestServer(t)

	result, out, err := server.handleRecordFeedback(context.Background(), nil, RecordFeedbackParams{
		CaseID:        "case_2.txt",
		Event:         "анафилактический шок",
		Narrative:     anaphylaxis,
		ReviewerGrade: "Possible",
	})

	require.NoError(t, err)
	assert.False(t, result.IsError)
	assert.Contains(t, resultText(t, result), "reviewer agreed")

	fb := out.(RecordFeedbackResult).Feedback
	assert.Equal(t, domain.POSSIBLE, fb.SuggestedGrade)
	assert.True(t, fb.ReviewerAgreed)
	assert.NotEmpty(t, fb.Rationale)
}

func TestHandleRecordFeedback_Invalid(t *testing.T) {
	server, _ := createTestServer(t)

	tests := []struct {
		name    string
		params  RecordFeedbackParams
		message string
	}{
		{"missing case", RecordFeedbackParams{Event: "сыпь", ReviewerGrade: "Possible", SuggestedGrade: "Possible"}, "case_id is required"},
		{"missing event", RecordFeedbackParams{CaseID: "c", ReviewerGrade: "Possible", SuggestedGrade: "Possible"}, "event is required"},
		{"bad reviewer grade", RecordFeedbackParams{CaseID: "c", Event: "сыпь", ReviewerGrade: "possible", SuggestedGrade: "Possible"}, "Invalid reviewer_grade"},
		{"bad suggested grade", RecordFeedbackParams{CaseID: "c", Event: "сыпь", ReviewerGrade: "Possible", SuggestedGrade: "Likely"}, "Invalid suggested_grade"},
		{"no suggestion source", RecordFeedbackParams{CaseID: "c", Event: "сыпь", ReviewerGrade: "Possible"}, "either suggested_grade or narrative"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, out, err := server.handleRecordFeedback(context.Background(), nil, tt.params)

			require.NoError(t, err)
			assert.True(t, result.IsError)
			assert.Nil(t, out)
			assert.Contains(t, resultText(t, result), tt.message)
		})
	}
}

func TestHandleListFeedback(t *testing.T) {
	server, _ := createTestServer(t)
	ctx := context.Background()

	for _, p := range []RecordFeedbackParams{
		{CaseID: "case_1.txt", Event: "сыпь", SuggestedGrade: "Probable", ReviewerGrade: "Probable"},
		{CaseID: "case_2.txt", Event: "анафилактический шок", SuggestedGrade: "Possible", ReviewerGrade: "Probable"},
	} {
		result, _, err := server.handleRecordFeedback(ctx, nil, p)
		require.NoError(t, err)
		require.False(t, result.IsError)
	}

	result, out, err := server.handleListFeedback(ctx, nil, ListFeedbackParams{})

	require.NoError(t, err)
	assert.Contains(t, resultText(t, result), "2 of 2 feedback entries")

	res := out.(ListFeedbackResult)
	assert.Equal(t, int64(2), res.Total)
	assert.Len(t, res.Entries, 2)
	assert.Equal(t, 1, res.Agreement.Agreed)
	assert.InDelta(t, 0.5, res.Agreement.Rate, 1e-9)

	_, out, err = server.handleListFeedback(ctx, nil, ListFeedbackParams{Limit: 1, Offset: 1})
	require.NoError(t, err)
	assert.Len(t, out.(ListFeedbackResult).Entries, 1)
}

func TestHandleListFeedback_Empty(t *testing.T) {
	server, _ := createTestServer(t)

	_, out, err := server.handleListFeedback(context.Background(), nil, ListFeedbackParams{})

	require.NoError(t, err)
	res := out.(ListFeedbackResult)
	assert.Zero(t, res.Total)
	assert.NotNil(t, res.Entries)
}

func TestHandleListFeedback_NegativeOffset(t *testing.T) {
	server, _ := createTestServer(t)

	result, _, err := server.handleListFeedback(context.Background(), nil, ListFeedbackParams{Offset: -1})

	require.NoError(t, err)
	assert.True(t, result.IsError)
}
