// Package main provides the vrsfhir command-line tool.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/seqvar/vrsfhir/internal/seqrepo"
)

// Version information (set at build time)
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var (
	cfgFile string
	verbose bool
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:     "vrsfhir",
		Short:   "Translate GA4GH VRS Alleles to and from HL7 FHIR Allele profiles",
		Version: fmt.Sprintf("%s (%s) built %s", version, commit, date),
		Long: `vrsfhir converts genomic variant representations between the GA4GH
Variation Representation Specification (VRS 2.0) and HL7 FHIR
MolecularDefinition profiles. It also translates external HGVS and SPDI
expressions into FHIR Variation profiles, and batch-translates ClinVar
VRS releases.`,
		SilenceUsage: true,
	}

	root.PersistentFlags().StringVar(&cfgFile, "config", "", "Config file (default ~/.vrsfhir.yaml)")
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable detailed logging")
	root.PersistentFlags().String("seqrepo-url", seqrepo.DefaultBaseURL, "SeqRepo REST service base URL")
	root.PersistentFlags().String("seqrepo-cache", "", "DuckDB cache file for SeqRepo lookups (optional)")

	viper.BindPFlag("seqrepo.url", root.PersistentFlags().Lookup("seqrepo-url"))
	viper.BindPFlag("seqrepo.cache", root.PersistentFlags().Lookup("seqrepo-cache"))

	cobra.OnInitialize(initConfig)

	root.AddCommand(newToFhirCmd())
	root.AddCommand(newToVrsCmd())
	root.AddCommand(newExpressionCmd())
	root.AddCommand(newClinvarCmd())
	root.AddCommand(newConfigCmd())

	return root
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(home)
			viper.SetConfigName(".vrsfhir")
			viper.SetConfigType("yaml")
		}
	}
	viper.SetEnvPrefix("VRSFHIR")
	viper.AutomaticEnv()

	// Missing config file is fine; flags and defaults apply.
	_ = viper.ReadInConfig()
}

// newResolver builds the sequence store stack from config: a REST
// resolver, wrapped in a DuckDB cache when one is configured. The caller
// must call the returned closer.
func newResolver() (seqrepo.Resolver, func() error, error) {
	rest := seqrepo.NewRESTResolver(viper.GetString("seqrepo.url"))

	cachePath := viper.GetString("seqrepo.cache")
	if cachePath == "" {
		return rest, func() error { return nil }, nil
	}
	if err := os.MkdirAll(filepath.Dir(cachePath), 0o755); err != nil {
		return nil, nil, fmt.Errorf("creating cache directory: %w", err)
	}
	cached, err := seqrepo.OpenCache(cachePath, rest)
	if err != nil {
		return nil, nil, fmt.Errorf("opening seqrepo cache: %w", err)
	}
	return cached, cached.Close, nil
}

// newLogger builds the CLI logger; verbose enables debug-level console
// output, otherwise warnings and up.
func newLogger() (*zap.Logger, error) {
	cfg := zap.NewDevelopmentConfig()
	if !verbose {
		cfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	}
	return cfg.Build()
}
