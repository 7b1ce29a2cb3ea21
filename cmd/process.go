package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/pbscan/pbscan-cli/internal/ai"
	"github.com/pbscan/pbscan-cli/internal/cache"
	"github.com/pbscan/pbscan-cli/internal/model"
	"github.com/pbscan/pbscan-cli/internal/normalize"
	"github.com/pbscan/pbscan-cli/internal/pipeline"
	"github.com/pbscan/pbscan-cli/internal/utils"
)

var (
	procOutput      string
	procJobID       string
	procSourceLabel string
	procAreaType    string
	procSheetName   string
	procSheetIndex  int
	procDelimiter   string
	procCacheDB     string
)

var processCmd = &cobra.Command{
	Use:   "process <file>",
	Short: "Run the full pipeline on an .xlsx/.csv/.tsv export and write a job summary",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := args[0]

		areaType, err := parseAreaType(procAreaType)
		if err != nil {
			return err
		}
		delim, err := parseDelimiter(procDelimiter)
		if err != nil {
			return err
		}

		opts := pipeline.Options{
			Path:        path,
			SheetName:   procSheetName,
			SheetIndex:  procSheetIndex,
			Delimiter:   delim,
			JobID:       procJobID,
			SourceLabel: procSourceLabel,
			AreaType:    areaType,
		}
		if opts.SourceLabel == "" {
			opts.SourceLabel = filepath.Base(path)
		}

		store, err := openCacheStore()
		if err != nil {
			// The cache is an optimization; a broken cache file must not
			// block processing.
			fmt.Fprintf(os.Stderr, "⚠ Warning: normalization cache unavailable: %v\n", err)
		} else {
			defer store.Close()
			opts.Store = store
		}

		if client := aiClient(); client != nil {
			if cfg.AIMappingEnabled {
				opts.Mapper = ai.NewMapper(client, cfg.Model)
			}
			opts.Grouper = ai.NewGrouper(client, cfg.Model)
		}
		opts.Progress = func(p normalize.Progress) {
			debugf("normalize: %s (%d/%d)\n", p.Stage, p.Processed, p.Total)
		}
		if cfg != nil {
			opts.CacheChunkSize = cfg.CacheChunkSize
		}

		summary, res, err := pipeline.Run(cmd.Context(), opts)
		if err != nil {
			return err
		}

		for _, w := range res.Warnings {
			fmt.Fprintf(os.Stderr, "⚠ Warning: %s\n", w)
		}
		fmt.Fprintf(os.Stderr, "✓ Parsed %d data rows: %d readings, %d calibration, %d junk, %d errors\n",
			res.TotalDataRows, len(res.Readings), res.CalibrationCount, len(res.JunkRows), len(res.RowErrors))
		for _, j := range res.JunkRows {
			debugf("  skipped row %d: %s\n", j.Line, j.Reason)
		}
		for _, e := range res.RowErrors {
			fmt.Fprintf(os.Stderr, "⚠ Row error: %v\n", e)
		}

		data, err := summary.ToJSON()
		if err != nil {
			return err
		}
		if procOutput == "" {
			fmt.Println(string(data))
			return nil
		}
		if err := utils.SafeWriteFile(procOutput, data); err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "✓ Summary written to %s\n", procOutput)
		return nil
	},
}

func init() {
	processCmd.Flags().StringVarP(&procOutput, "output", "o", "", "write the job summary JSON to this path (default stdout)")
	processCmd.Flags().StringVar(&procJobID, "job-id", "", "job identifier (default a new UUID)")
	processCmd.Flags().StringVar(&procSourceLabel, "source-label", "", "label recorded in the summary (default the file name)")
	processCmd.Flags().StringVar(&procAreaType, "area-type", "unit", "dataset kind: 'common' (shared areas) or 'unit' (individual units)")
	processCmd.Flags().StringVar(&procSheetName, "sheet-name", "", "XLSX sheet to read by name (default first sheet)")
	processCmd.Flags().IntVar(&procSheetIndex, "sheet-index", 0, "XLSX sheet to read by 1-based index")
	processCmd.Flags().StringVar(&procDelimiter, "delimiter", "", "CSV delimiter: ','|';'|'tab' (default sniffed)")
	processCmd.Flags().StringVar(&procCacheDB, "cache-db", "", "normalization cache database path (overrides config)")
	rootCmd.AddCommand(processCmd)
}

func parseAreaType(s string) (model.AreaType, error) {
	switch s {
	case "common":
		return model.AreaCommon, nil
	case "unit", "":
		return model.AreaUnit, nil
	}
	return "", fmt.Errorf("unsupported --area-type: %s (use 'common'|'unit')", s)
}

func parseDelimiter(s string) (rune, error) {
	switch s {
	case "":
		return 0, nil
	case ",":
		return ',', nil
	case ";":
		return ';', nil
	case "\t", "tab":
		return '\t', nil
	}
	return 0, fmt.Errorf("unsupported --delimiter: %s", s)
}

// openCacheStore opens the normalization cache from the flag, config, or
// default path, creating the directory if needed.
func openCacheStore() (*cache.Store, error) {
	path := procCacheDB
	if path == "" && cfg != nil {
		path = cfg.CacheDB
	}
	if path == "" {
		return nil, fmt.Errorf("no cache database path configured")
	}
	if err := utils.EnsureDir(filepath.Dir(path)); err != nil {
		return nil, err
	}
	return cache.Open(path)
}

// aiClient builds the AI client from config unless --no-ai is set or no
// API key is configured.
func aiClient() *ai.Client {
	if noAI || cfg == nil || cfg.APIKey == "" {
		return nil
	}
	return ai.NewClient(
		cfg.APIKey,
		cfg.BaseURL,
		time.Duration(cfg.HTTPTimeoutSec)*time.Second,
		cfg.RetryMaxAttempts,
		time.Duration(cfg.RetryBaseDelayMs)*time.Millisecond,
		time.Duration(cfg.RetryMaxDelayMs)*time.Millisecond,
	)
}
