package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	cfgpkg "github.com/pbscan/pbscan-cli/internal/config"
)

var (
	// Global flags
	cfgFile string
	debug   bool
	noAI    bool

	// Loaded configuration
	cfg *cfgpkg.Global
)

var rootCmd = &cobra.Command{
	Use:   "pbscan",
	Short: "pbscan: turn XRF lead-paint spreadsheet exports into regulatory classification reports",
	Long: `pbscan ingests spreadsheet exports from handheld XRF lead-paint analyzers,
detects vendor-specific headers, filters calibration and junk rows,
normalizes free-text component and substrate names through a persistent
cache (with an AI grouping fallback), and classifies each component group
into a regulatory positive/negative verdict.`,
}

// Execute is the entry point called by main.main()
func Execute() {
	cobra.OnInitialize(loadConfig)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "✗ Error:", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ~/.pbscan/config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug output")
	rootCmd.PersistentFlags().BoolVar(&noAI, "no-ai", false, "disable AI collaborators; use deterministic local fallbacks only")
}

func loadConfig() {
	c, err := cfgpkg.Load(cfgFile)
	if err != nil {
		// Non-fatal: commands that don't need config can still run.
		fmt.Fprintf(os.Stderr, "⚠ Warning: failed to load config: %v\n", err)
		return
	}
	cfg = c
}

func debugf(format string, args ...any) {
	if debug {
		fmt.Fprintf(os.Stderr, format, args...)
	}
}
