package cli

import (
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/pv-case-assessor/internal/domain"
)

// knowledgeView is the YAML document printed by `knowledge show`.
type knowledgeView struct {
	LexiconVersion string             `yaml:"lexicon_version"`
	DefaultDrug    string             `yaml:"default_drug"`
	Drugs          []domain.DrugLabel `yaml:"drugs"`
	IMEList        []string           `yaml:"ime_list"`
	TermDictionary []domain.TermEntry `yaml:"term_dictionary"`
}

func newKnowledgeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "knowledge",
		Short: "Inspect the loaded knowledge base",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Print the knowledge base and lexicon version as YAML",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cliCtx, err := GetCLIContext(cmd)
			if err != nil {
				return err
			}

			encoder := yaml.NewEncoder(cmd.OutOrStdout())
			encoder.SetIndent(2)
			if err := encoder.Encode(buildKnowledgeView(cliCtx)); err != nil {
				return err
			}
			return encoder.Close()
		},
	})

	return cmd
}

func buildKnowledgeView(cliCtx *CLIContext) knowledgeView {
	kb := cliCtx.Knowledge
	view := knowledgeView{
		LexiconVersion: cliCtx.Lexicon.Version,
		DefaultDrug:    kb.DefaultDrug,
		Drugs:          []domain.DrugLabel{},
		IMEList:        []string{},
		TermDictionary: []domain.TermEntry{},
	}

	for _, name := range kb.Registry.DrugNames() {
		if label, ok := kb.Registry.Label(name); ok {
			view.Drugs = append(view.Drugs, label)
		}
	}
	if kb.IMEList != nil {
		view.IMEList = append(view.IMEList, kb.IMEList.Labels()...)
	}
	if kb.Terms != nil {
		view.TermDictionary = append(view.TermDictionary, kb.Terms.Entries()...)
	}
	return view
}
