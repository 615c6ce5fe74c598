// Package mcp exposes the case assessor and the reviewer feedback store as
// MCP tools over stdio.
package mcp

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/sirupsen/logrus"

	"github.com/pv-case-assessor/internal/domain"
	"github.com/pv-case-assessor/internal/feedback"
	"github.com/pv-case-assessor/internal/service"
)

// Server is the MCP front end of the assessor.
type Server struct {
	config        *domain.Config
	mcpServer     *mcp.Server
	assessor      *service.CaseAssessor
	feedbackStore feedback.Store
	logger        *logrus.Logger
}

// ServerOption is a functional option for Server.
type ServerOption func(*Server) error

// WithFeedbackStore sets a custom feedback store.
func WithFeedbackStore(store feedback.Store) ServerOption {
	return func(s *Server) error {
		s.feedbackStore = store
		return nil
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *logrus.Logger) ServerOption {
	return func(s *Server) error {
		s.logger = logger
		return nil
	}
}

// NewServer creates the MCP server and registers its tools. Without
// WithFeedbackStore the store selected by cfg.Feedback is opened.
func NewServer(cfg *domain.Config, assessor *service.CaseAssessor, opts ...ServerOption) (*Server, error) {
	if assessor == nil {
		return nil, fmt.Errorf("assessor is required")
	}

	server := &Server{
		config:   cfg,
		assessor: assessor,
		logger:   logrus.New(),
	}

	for _, opt := range opts {
		if err := opt(server); err != nil {
			return nil, fmt.Errorf("failed to apply option: %w", err)
		}
	}

	if server.feedbackStore == nil {
		store, err := feedback.Open(context.Background(), cfg)
		if err != nil {
			return nil, fmt.Errorf("failed to create feedback store: %w", err)
		}
		server.feedbackStore = store
	}

	serverInfo := &mcp.Implementation{
		Name:    cfg.MCP.ServerName,
		Version: cfg.MCP.ServerVersion,
	}
	server.mcpServer = mcp.NewServer(serverInfo, nil)
	server.registerTools()

	server.logger.WithField("server_name", serverInfo.Name).Info("MCP server initialized")
	return server, nil
}

// registerTools registers every tool with the MCP SDK.
func (s *Server) registerTools() {
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        ToolAssessCase,
		Description: "Assess an adverse-event case narrative: extract events and report seriousness, IME significance, expectedness, WHO-UMC causality and completeness for each.",
	}, s.handleAssessCase)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        ToolAssessEvent,
		Description: "Assess one named adverse event against a case narrative.",
	}, s.handleAssessEvent)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        ToolRecordFeedback,
		Description: "Record a reviewer's decision on the suggested causality grade for an event of a case.",
	}, s.handleRecordFeedback)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        ToolListFeedback,
		Description: "List recorded reviewer feedback, newest first, with the overall agreement rate.",
	}, s.handleListFeedback)

	s.logger.WithField("tool_count", len(ToolNames)).Debug("Registered MCP tools")
}

// Start runs the server on stdio until ctx is cancelled or the client disconnects.
func (s *Server) Start(ctx context.Context) error {
	s.logger.Info("Starting pharmacovigilance MCP server on stdio")

	if err := s.mcpServer.Run(ctx, &mcp.StdioTransport{}); err != nil {
		return fmt.Errorf("MCP server failed: %w", err)
	}
	return nil
}

// Close cleans up server resources.
func (s *Server) Close() error {
	if s.feedbackStore != nil {
		if err := s.feedbackStore.Close(); err != nil {
			s.logger.WithError(err).Error("Failed to close feedback store")
			return err
		}
	}
	return nil
}

// FeedbackStore returns the feedback store for external access.
func (s *Server) FeedbackStore() feedback.Store {
	return s.feedbackStore
}
