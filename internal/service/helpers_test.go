package service

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/pv-case-assessor/internal/domain"
	"github.com/pv-case-assessor/internal/knowledge"
	"github.com/pv-case-assessor/internal/lexicon"
	"github.com/pv-case-assessor/internal/logging"
)

func defaultLexicon(t *testing.T) *lexicon.Lexicon {
	t.Helper()
	lex, err := lexicon.Default()
	require.NoError(t, err)
	return lex
}

func defaultKnowledge(t *testing.T) *domain.KnowledgeBase {
	t.Helper()
	kb, err := knowledge.Default()
	require.NoError(t, err)
	return kb
}

func newTestAssessor(t *testing.T) *CaseAssessor {
	t.Helper()
	return NewCaseAssessor(logging.Discard(), defaultKnowledge(t), defaultLexicon(t))
}

func newTestCausality(t *testing.T) *CausalityClassifier {
	t.Helper()
	return NewCausalityClassifier(logging.Discard(), NewFactExtractor(defaultLexicon(t)))
}
