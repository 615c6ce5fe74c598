package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/pv-case-assessor/internal/report"
)

// caseFilePattern selects narratives in a batch directory.
const caseFilePattern = "case_*.txt"

const stdinCaseID = "stdin"

var caseNumber = regexp.MustCompile(`(\d+)`)

// caseInput is one narrative to assess.
type caseInput struct {
	ID   string
	Path string
}

func newAssessCmd() *cobra.Command {
	var dir string

	cmd := &cobra.Command{
		Use:   "assess [files...]",
		Short: "Assess case narratives",
		Long: `Assess one or more case narrative files. With --dir every case_*.txt file in
the directory is assessed in case-number order. With neither files nor --dir the
narrative is read from stdin.

Example:
  pvassess assess case_1.txt case_2.txt
  pvassess assess --dir data/cases --format json
  echo "После приема препарата появилась сыпь" | pvassess assess`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cliCtx, err := GetCLIContext(cmd)
			if err != nil {
				return err
			}

			inputs, err := collectInputs(dir, args)
			if err != nil {
				return err
			}

			var results []report.Result
			var failed int
			for _, in := range inputs {
				narrative, err := readNarrative(cmd, in)
				if err != nil {
					failed++
					cliCtx.Logger.WithError(err).WithField("case", in.ID).Warn("Skipping case")
					fmt.Fprintf(cmd.ErrOrStderr(), "File %s could not be read: %v\n", in.Path, err)
					continue
				}
				results = append(results, report.NewResult(in.ID, narrative, cliCtx.Assessor.Assess(narrative)))
			}

			if err := writeResults(cmd.OutOrStdout(), cliCtx.Config.Output.Format, results); err != nil {
				return err
			}

			cliCtx.Logger.WithFields(logrus.Fields{
				"cases":  len(inputs),
				"failed": failed,
			}).Info("Assessment run completed")

			if failed > 0 {
				return fmt.Errorf("%d of %d cases could not be read", failed, len(inputs))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&dir, "dir", "", "assess every "+caseFilePattern+" file in this directory")
	return cmd
}

func newEventCmd() *cobra.Command {
	var event string

	cmd := &cobra.Command{
		Use:   "event [file] --event <phrase>",
		Short: "Assess one named adverse event against a narrative",
		Long: `Run the per-event classifiers for an explicit event phrase instead of the
events extracted from the narrative. The narrative is read from the file, or
from stdin when no file is given.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cliCtx, err := GetCLIContext(cmd)
			if err != nil {
				return err
			}

			phrase := strings.ToLower(strings.TrimSpace(event))
			if phrase == "" {
				return fmt.Errorf("--event must not be empty")
			}

			in := caseInput{ID: stdinCaseID}
			if len(args) == 1 {
				in = caseInput{ID: filepath.Base(args[0]), Path: args[0]}
			}
			narrative, err := readNarrative(cmd, in)
			if err != nil {
				return err
			}

			record := cliCtx.Assessor.AssessEvent(narrative, phrase)
			out := cmd.OutOrStdout()
			if cliCtx.Config.Output.Format == "json" {
				return writeJSON(out, record)
			}
			fmt.Fprintf(out, "CASE %s\n", in.ID)
			return report.WriteEventText(out, record)
		},
	}

	cmd.Flags().StringVar(&event, "event", "", "adverse event phrase to assess")
	_ = cmd.MarkFlagRequired("event")
	return cmd
}

// collectInputs lists the cases to assess: the directory's case files first,
// then explicit files, or stdin when there is neither.
func collectInputs(dir string, files []string) ([]caseInput, error) {
	var inputs []caseInput

	if dir != "" {
		matches, err := filepath.Glob(filepath.Join(dir, caseFilePattern))
		if err != nil {
			return nil, fmt.Errorf("failed to list %s: %w", dir, err)
		}
		if len(matches) == 0 {
			return nil, fmt.Errorf("no %s files in %s", caseFilePattern, dir)
		}
		sortCaseFiles(matches)
		for _, m := range matches {
			inputs = append(inputs, caseInput{ID: filepath.Base(m), Path: m})
		}
	}

	for _, f := range files {
		inputs = append(inputs, caseInput{ID: filepath.Base(f), Path: f})
	}

	if len(inputs) == 0 {
		inputs = append(inputs, caseInput{ID: stdinCaseID})
	}
	return inputs, nil
}

// sortCaseFiles orders case_2.txt before case_10.txt.
func sortCaseFiles(paths []string) {
	number := func(p string) int {
		m := caseNumber.FindString(filepath.Base(p))
		n, err := strconv.Atoi(m)
		if err != nil {
			return -1
		}
		return n
	}
	sort.SliceStable(paths, func(i, j int) bool {
		ni, nj := number(paths[i]), number(paths[j])
		if ni != nj {
			return ni < nj
		}
		return paths[i] < paths[j]
	})
}

func readNarrative(cmd *cobra.Command, in caseInput) (string, error) {
	var data []byte
	var err error
	if in.Path == "" {
		data, err = io.ReadAll(cmd.InOrStdin())
	} else {
		data, err = os.ReadFile(in.Path)
	}
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}

func writeResults(w io.Writer, format string, results []report.Result) error {
	if format == "json" {
		return report.WriteJSON(w, results)
	}
	for i, r := range results {
		if i > 0 {
			if _, err := io.WriteString(w, "\n"); err != nil {
				return err
			}
		}
		if err := report.WriteText(w, r); err != nil {
			return err
		}
	}
	return nil
}
