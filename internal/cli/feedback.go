package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/pv-case-assessor/internal/domain"
	"github.com/pv-case-assessor/internal/feedback"
)

func newFeedbackCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "feedback",
		Short: "Manage reviewer feedback on causality grades",
	}

	cmd.AddCommand(newFeedbackRecordCmd())
	cmd.AddCommand(newFeedbackListCmd())
	cmd.AddCommand(newFeedbackExportCmd())
	cmd.AddCommand(newFeedbackImportCmd())
	return cmd
}

// openStore opens the configured feedback store for the duration of fn.
func openStore(cmd *cobra.Command, fn func(*CLIContext, feedback.Store) error) error {
	cliCtx, err := GetCLIContext(cmd)
	if err != nil {
		return err
	}
	if cliCtx.Config.Feedback.Driver != "postgres" {
		if err := cliCtx.Manager.EnsureDataDir(); err != nil {
			return fmt.Errorf("failed to create data directory: %w", err)
		}
	}

	store, err := feedback.Open(cmd.Context(), cliCtx.Config)
	if err != nil {
		return fmt.Errorf("failed to open feedback store: %w", err)
	}
	defer store.Close()

	return fn(cliCtx, store)
}

func newFeedbackRecordCmd() *cobra.Command {
	var reviewer, suggested, narrativeFile, notes string

	cmd := &cobra.Command{
		Use:   "record <case-id> <event>",
		Short: "Record a reviewer decision on a suggested causality grade",
		Long: `Record the grade a reviewer assigned to an event of a case. The suggested
grade is given with --suggested or recomputed from --narrative.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return openStore(cmd, func(cliCtx *CLIContext, store feedback.Store) error {
				caseID, event := args[0], strings.ToLower(strings.TrimSpace(args[1]))

				reviewerGrade, err := domain.ParseGrade(reviewer)
				if err != nil {
					return fmt.Errorf("--reviewer %q: %w", reviewer, err)
				}

				var suggestedGrade domain.Grade
				var rationale string
				switch {
				case suggested != "":
					if suggestedGrade, err = domain.ParseGrade(suggested); err != nil {
						return fmt.Errorf("--suggested %q: %w", suggested, err)
					}
				case narrativeFile != "":
					narrative, err := readNarrative(cmd, caseInput{ID: caseID, Path: narrativeFile})
					if err != nil {
						return err
					}
					causality := cliCtx.Assessor.AssessEvent(narrative, event).Causality
					suggestedGrade, rationale = causality.Grade, causality.Rationale
				default:
					return fmt.Errorf("either --suggested or --narrative is required")
				}

				fb := feedback.NewFeedback(caseID, event, suggestedGrade, reviewerGrade, notes)
				fb.Rationale = rationale
				if err := store.Save(cmd.Context(), fb); err != nil {
					return err
				}

				if fb.ReviewerAgreed {
					fmt.Fprintf(cmd.OutOrStdout(), "Recorded agreement with %s for %s / %s\n", suggestedGrade, caseID, event)
				} else {
					fmt.Fprintf(cmd.OutOrStdout(), "Recorded correction %s -> %s for %s / %s\n", suggestedGrade, reviewerGrade, caseID, event)
				}
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&reviewer, "reviewer", "", "grade assigned by the reviewer (Certain, Probable, Possible, Unlikely, Conditional, Unclassifiable)")
	cmd.Flags().StringVar(&suggested, "suggested", "", "grade suggested by the assessor")
	cmd.Flags().StringVar(&narrativeFile, "narrative", "", "narrative file used to recompute the suggested grade")
	cmd.Flags().StringVar(&notes, "notes", "", "reviewer notes")
	_ = cmd.MarkFlagRequired("reviewer")
	return cmd
}

func newFeedbackListCmd() *cobra.Command {
	var limit, offset int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List feedback entries, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return openStore(cmd, func(cliCtx *CLIContext, store feedback.Store) error {
				entries, err := store.List(cmd.Context(), limit, offset)
				if err != nil {
					return err
				}
				total, err := store.Count(cmd.Context())
				if err != nil {
					return err
				}
				if entries == nil {
					entries = []*feedback.Feedback{}
				}

				if cliCtx.Config.Output.Format == "json" {
					return writeJSON(cmd.OutOrStdout(), map[string]any{
						"total":     total,
						"entries":   entries,
						"agreement": feedback.Summarize(entries),
					})
				}
				return writeFeedbackTable(cmd.OutOrStdout(), entries, total)
			})
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 50, "maximum number of entries")
	cmd.Flags().IntVar(&offset, "offset", 0, "number of entries to skip")
	return cmd
}

func newFeedbackExportCmd() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export all feedback as JSON",
		Long: `Export all feedback as JSON. With --output - the document is written to
stdout; by default it goes to a timestamped file in the data directory's
exports folder.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return openStore(cmd, func(cliCtx *CLIContext, store feedback.Store) error {
				if output == "-" {
					return store.ExportJSON(cmd.Context(), cmd.OutOrStdout())
				}

				path := output
				if path == "" {
					name := fmt.Sprintf("feedback-%s.json", time.Now().UTC().Format("20060102-150405"))
					path = filepath.Join(cliCtx.Config.ExportDir(), name)
				}
				if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
					return fmt.Errorf("failed to create export directory: %w", err)
				}

				f, err := os.Create(path)
				if err != nil {
					return fmt.Errorf("failed to create export file: %w", err)
				}
				if err := store.ExportJSON(cmd.Context(), f); err != nil {
					f.Close()
					return err
				}
				if err := f.Close(); err != nil {
					return err
				}

				cliCtx.Logger.WithField("path", path).Info("Feedback exported")
				fmt.Fprintf(cmd.OutOrStdout(), "Exported feedback to %s\n", path)
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "export file, or - for stdout")
	return cmd
}

func newFeedbackImportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import <file>",
		Short: "Import feedback from a JSON export, skipping existing entries",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return openStore(cmd, func(cliCtx *CLIContext, store feedback.Store) error {
				var r io.Reader = cmd.InOrStdin()
				if args[0] != "-" {
					f, err := os.Open(args[0])
					if err != nil {
						return fmt.Errorf("failed to open import file: %w", err)
					}
					defer f.Close()
					r = f
				}

				imported, skipped, err := store.ImportJSON(cmd.Context(), r)
				if err != nil {
					return err
				}

				cliCtx.Logger.WithFields(logrus.Fields{
					"imported": imported,
					"skipped":  skipped,
				}).Info("Feedback imported")
				fmt.Fprintf(cmd.OutOrStdout(), "Imported %d entries, skipped %d existing\n", imported, skipped)
				return nil
			})
		},
	}
}
