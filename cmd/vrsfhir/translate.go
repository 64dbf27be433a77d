package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/seqvar/vrsfhir/internal/fhir"
	"github.com/seqvar/vrsfhir/internal/translate"
	"github.com/seqvar/vrsfhir/internal/vrs"
)

func newToFhirCmd() *cobra.Command {
	var simple bool

	cmd := &cobra.Command{
		Use:   "tofhir [file]",
		Short: "Translate a VRS Allele (JSON) into a FHIR Allele profile",
		Long: `Reads a VRS 2.0 Allele as JSON from a file or stdin and writes the
corresponding FHIR Allele profile to stdout. The default rich form
preserves ids, names, aliases, digests, expressions, and extensions;
--simple emits the minimal contained form instead.`,
		Example: `  vrsfhir tofhir allele.json
  cat allele.json | vrsfhir tofhir --simple`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := readInput(args)
			if err != nil {
				return err
			}
			allele := new(vrs.Allele)
			if err := json.Unmarshal(data, allele); err != nil {
				return fmt.Errorf("parsing VRS allele: %w", err)
			}

			resolver, closer, err := newResolver()
			if err != nil {
				return err
			}
			defer closer()

			var doc *fhir.MolecularDefinition
			if simple {
				doc, err = translate.NewAlleleTranslator(resolver).VrsToAlleleProfile(cmd.Context(), allele)
			} else {
				doc, err = translate.NewVrsToFhirTranslator(resolver).Translate(cmd.Context(), allele)
			}
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), doc)
		},
	}

	cmd.Flags().BoolVar(&simple, "simple", false, "Emit the minimal contained form")
	return cmd
}

func newToVrsCmd() *cobra.Command {
	var (
		simple    bool
		normalize bool
	)

	cmd := &cobra.Command{
		Use:   "tovrs [file]",
		Short: "Translate a FHIR Allele profile (JSON) into a VRS Allele",
		Long: `Reads a FHIR Allele profile as JSON from a file or stdin and writes
the corresponding VRS 2.0 Allele to stdout. With --normalize the allele
is fully justified and given GA4GH digest identifiers.`,
		Example: `  vrsfhir tovrs profile.json --normalize
  cat profile.json | vrsfhir tovrs --simple`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := readInput(args)
			if err != nil {
				return err
			}
			doc := new(fhir.MolecularDefinition)
			if err := json.Unmarshal(data, doc); err != nil {
				return fmt.Errorf("parsing FHIR profile: %w", err)
			}

			resolver, closer, err := newResolver()
			if err != nil {
				return err
			}
			defer closer()

			var allele *vrs.Allele
			if simple {
				allele, err = translate.NewAlleleTranslator(resolver).AlleleProfileToVrs(cmd.Context(), doc, normalize)
			} else {
				allele, err = translate.NewFhirToVrsTranslator(resolver).Translate(cmd.Context(), doc, normalize)
			}
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), allele)
		},
	}

	cmd.Flags().BoolVar(&simple, "simple", false, "Read the minimal contained form")
	cmd.Flags().BoolVar(&normalize, "normalize", false, "Normalize the allele and assign digest ids")
	return cmd
}

// readInput reads the whole input from the named file, or stdin when no
// argument was given.
func readInput(args []string) ([]byte, error) {
	if len(args) == 0 {
		return io.ReadAll(os.Stdin)
	}
	data, err := os.ReadFile(args[0])
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", args[0], err)
	}
	return data, nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
