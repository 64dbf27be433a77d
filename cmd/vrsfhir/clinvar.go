package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/seqvar/vrsfhir/internal/pipeline"
)

func newClinvarCmd() *cobra.Command {
	opts := pipeline.Options{
		OutputPath:             "vrs_to_fhir_translations.jsonl",
		InvalidAllelePath:      "invalid_vrs_alleles.jsonl",
		InvalidTranslationPath: "invalid_trans_to_fhir.jsonl",
		SummaryPath:            "runtime_stats.json",
	}

	cmd := &cobra.Command{
		Use:   "clinvar <input.jsonl.gz>",
		Short: "Batch-translate a ClinVar VRS release into FHIR Allele profiles",
		Long: `Streams a gzipped JSONL ClinVar release, translating every Allele
member of each record into a FHIR Allele profile. Successful
translations, alleles that fail validation, and alleles that fail
translation are written to separate JSONL files, and a run summary is
written at the end.`,
		Example: `  vrsfhir clinvar clinvar_vrs.jsonl.gz
  vrsfhir clinvar clinvar_vrs.jsonl.gz --limit 1000 --workers 8`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.InputPath = args[0]

			resolver, closer, err := newResolver()
			if err != nil {
				return err
			}
			defer closer()

			logger, err := newLogger()
			if err != nil {
				return err
			}
			defer logger.Sync()

			p := pipeline.New(resolver)
			p.SetLogger(logger)

			summary, err := p.Run(cmd.Context(), opts)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(),
				"Translated %d of %d alleles (%d failed) from %d lines in %.2fs\n",
				summary.TotalTranslated, summary.VrsAllelesSeen, summary.TotalFailed,
				summary.TotalLinesRead, summary.DurationSeconds)
			return nil
		},
	}

	cmd.Flags().StringVarP(&opts.OutputPath, "output", "o", opts.OutputPath, "Output JSONL file for translations")
	cmd.Flags().StringVar(&opts.InvalidAllelePath, "invalid-allele-log", opts.InvalidAllelePath, "JSONL log for alleles that fail validation")
	cmd.Flags().StringVar(&opts.InvalidTranslationPath, "invalid-fhir-log", opts.InvalidTranslationPath, "JSONL log for alleles that fail translation")
	cmd.Flags().StringVar(&opts.SummaryPath, "summary", opts.SummaryPath, "Run summary file")
	cmd.Flags().IntVar(&opts.Limit, "limit", 0, "Process only this many input lines (0 = all)")
	cmd.Flags().IntVar(&opts.Workers, "workers", 0, "Translation worker count (0 = one per CPU)")
	return cmd
}
