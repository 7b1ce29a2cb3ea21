package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pbscan/pbscan-cli/internal/ai"
	"github.com/pbscan/pbscan-cli/internal/grid"
	"github.com/pbscan/pbscan-cli/internal/parse"
)

var (
	inspSheetName  string
	inspSheetIndex int
	inspDelimiter  string
)

var inspectCmd = &cobra.Command{
	Use:   "inspect <file>",
	Short: "Dry-run header detection and column mapping without processing rows",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		delim, err := parseDelimiter(inspDelimiter)
		if err != nil {
			return err
		}
		g, err := grid.Load(args[0], inspSheetName, inspSheetIndex, delim)
		if err != nil {
			return err
		}
		if len(g) == 0 {
			return parse.ErrEmptyGrid
		}

		loc := parse.LocateHeader(g)
		fmt.Println(parse.DescribeHeader(loc))
		for _, w := range loc.Warnings {
			fmt.Printf("⚠ %s\n", w)
		}

		var mapper parse.AIMapper
		if client := aiClient(); client != nil && cfg.AIMappingEnabled {
			mapper = ai.NewMapper(client, cfg.Model)
		}
		mapping, warnings, err := parse.MapColumns(cmd.Context(), loc.Headers, mapper, nil)
		for _, w := range warnings {
			fmt.Printf("⚠ %s\n", w)
		}
		var missingErr *parse.MissingColumnsError
		if err != nil && !errors.As(err, &missingErr) {
			return err
		}

		fmt.Println("Resolved columns:")
		for _, f := range []parse.Field{
			parse.FieldReadingID, parse.FieldComponent, parse.FieldColor, parse.FieldLeadContent,
			parse.FieldLocation, parse.FieldUnitNumber, parse.FieldRoomType, parse.FieldRoomNumber,
			parse.FieldSubstrate, parse.FieldSide, parse.FieldCondition, parse.FieldTimestamp,
		} {
			if h, ok := mapping.Header(f); ok {
				fmt.Printf("  %-12s → %s\n", f, h)
			}
		}
		if len(mapping.Unmapped) > 0 {
			fmt.Printf("Unmapped headers: %v\n", mapping.Unmapped)
		}
		if missingErr != nil {
			fmt.Printf("✗ Missing required columns: %v\n", missingErr.Missing)
		}
		return nil
	},
}

func init() {
	inspectCmd.Flags().StringVar(&inspSheetName, "sheet-name", "", "XLSX sheet to read by name (default first sheet)")
	inspectCmd.Flags().IntVar(&inspSheetIndex, "sheet-index", 0, "XLSX sheet to read by 1-based index")
	inspectCmd.Flags().StringVar(&inspDelimiter, "delimiter", "", "CSV delimiter: ','|';'|'tab' (default sniffed)")
	rootCmd.AddCommand(inspectCmd)
}
