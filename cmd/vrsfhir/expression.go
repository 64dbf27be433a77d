package main

import (
	"github.com/spf13/cobra"

	"github.com/seqvar/vrsfhir/internal/coords"
	"github.com/seqvar/vrsfhir/internal/translate"
)

func newExpressionCmd() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "expression <expr>",
		Short: "Translate an HGVS or SPDI expression into a FHIR Variation profile",
		Long: `Parses an external variant expression and writes a FHIR Variation
profile with explicit reference-state and alternative-state
representations to stdout. The reference bases are fetched from the
configured SeqRepo service.`,
		Example: `  vrsfhir expression "NM_004333.6:c.1919T>A" --format hgvs
  vrsfhir expression "NC_000019.10:44908821:1:T" --format spdi`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			resolver, closer, err := newResolver()
			if err != nil {
				return err
			}
			defer closer()

			doc, err := translate.NewExpressionTranslator(resolver).
				FromExpression(cmd.Context(), args[0], coords.Format(format))
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), doc)
		},
	}

	cmd.Flags().StringVar(&format, "format", "hgvs", "Expression format: hgvs or spdi")
	return cmd
}
