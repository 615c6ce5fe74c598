// Package cli implements the pvassess command tree.
package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/pv-case-assessor/internal/config"
	"github.com/pv-case-assessor/internal/domain"
	"github.com/pv-case-assessor/internal/knowledge"
	"github.com/pv-case-assessor/internal/lexicon"
	"github.com/pv-case-assessor/internal/logging"
	"github.com/pv-case-assessor/internal/service"
)

// Build-time variables injected via ldflags.
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// cliContextKey is the context key for CLIContext.
type cliContextKey struct{}

// RootOptions holds global CLI flags that are not configuration keys.
type RootOptions struct {
	ConfigPath string
}

// CLIContext carries initialized dependencies through the command tree.
type CLIContext struct {
	Config    *domain.Config
	Manager   *config.Manager
	Logger    *logrus.Logger
	Knowledge *domain.KnowledgeBase
	Lexicon   *lexicon.Lexicon
	Assessor  *service.CaseAssessor
}

// NewRootCommand creates the root command with its global flags and subcommands.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "pvassess",
		Short: "Pharmacovigilance case assessor",
		Long: `pvassess reads free-text adverse event case narratives and, for every
adverse event it finds, reports regulatory seriousness, Important Medical Event
significance, label expectedness, WHO-UMC causality and how complete the
report is, with clarifying questions for missing information.`,
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", Version, GitCommit, BuildDate),
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return persistentPreRun(cmd, opts)
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Empty defaults leave the configuration defaults in charge.
	pf := cmd.PersistentFlags()
	pf.StringVar(&opts.ConfigPath, "config", "", "config file (default: ./config.yaml or $HOME/.pv-assessor/config.yaml)")
	pf.String("knowledge", "", "knowledge base file, YAML or JSON (default: embedded)")
	pf.String("default-drug", "", "drug assumed when the narrative names none")
	pf.String("lexicon", "", "lexicon file (default: embedded)")
	pf.String("log-level", "", "log level (debug, info, warn, error)")
	pf.String("log-format", "", "log format (text, json)")
	pf.String("data-dir", "", "directory for the feedback database and exports")
	pf.String("format", "", "output format (text, json)")

	cmd.AddCommand(
		newAssessCmd(),
		newEventCmd(),
		newServeCmd(),
		newFeedbackCmd(),
		newKnowledgeCmd(),
		newVersionCmd(),
	)

	return cmd
}

// Execute runs the command tree with the given arguments.
func Execute(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	cmd := NewRootCommand()
	cmd.SetArgs(args)
	cmd.SetIn(stdin)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	return cmd.ExecuteContext(ctx)
}

func persistentPreRun(cmd *cobra.Command, opts *RootOptions) error {
	manager, err := config.NewManager(opts.ConfigPath, cmd.Flags())
	if err != nil {
		return err
	}
	if err := manager.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	cfg := manager.GetConfig()

	logger, err := logging.New(cfg.Logging.Level, cfg.Logging.Format, cmd.ErrOrStderr())
	if err != nil {
		return err
	}

	kb, err := knowledge.Load(cfg.Knowledge.Path)
	if err != nil {
		return fmt.Errorf("failed to load knowledge base: %w", err)
	}
	if cfg.Knowledge.DefaultDrug != "" {
		kb.DefaultDrug = cfg.Knowledge.DefaultDrug
	}

	lex, err := lexicon.Load(cfg.Lexicon.Path)
	if err != nil {
		return fmt.Errorf("failed to load lexicon: %w", err)
	}

	logger.WithFields(logrus.Fields{
		"config_file":     manager.ConfigFileUsed(),
		"drugs":           kb.Registry.Len(),
		"default_drug":    kb.DefaultDrug,
		"lexicon_version": lex.Version,
	}).Debug("Configuration loaded")

	cliCtx := &CLIContext{
		Config:    cfg,
		Manager:   manager,
		Logger:    logger,
		Knowledge: kb,
		Lexicon:   lex,
		Assessor:  service.NewCaseAssessor(logger, kb, lex),
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	cmd.SetContext(context.WithValue(ctx, cliContextKey{}, cliCtx))
	return nil
}

// GetCLIContext extracts the CLIContext installed by the root command.
func GetCLIContext(cmd *cobra.Command) (*CLIContext, error) {
	if ctx := cmd.Context(); ctx != nil {
		if cliCtx, ok := ctx.Value(cliContextKey{}).(*CLIContext); ok {
			return cliCtx, nil
		}
	}
	return nil, fmt.Errorf("command %q ran without initialization", cmd.Name())
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		// Version needs no configuration.
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return nil },
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "pvassess %s (commit: %s, built: %s)\n", Version, GitCommit, BuildDate)
		},
	}
}
