package parse

import (
	"fmt"
	"strings"

	"github.com/pbscan/pbscan-cli/internal/grid"
)

const (
	// headerScanWindow bounds how deep we look for a header row.
	headerScanWindow = 25
	// minHeaderMatches is the score a row needs to qualify as a header.
	minHeaderMatches = 2
	// bannerHeaderRow is where one device family puts the real header after
	// its metadata banner (7th row, 0-based index 6).
	bannerHeaderRow = 6
)

// bannerMarkers are substrings that identify a device metadata banner in
// the first cell of the first row (vendor names, serial/model labels).
var bannerMarkers = []string{
	"niton", "thermo", "innov-x", "heuresis", "viken",
	"serial", "instrument", "model", "analyzer", "all shots",
}

// HeaderLocation is the result of header-row detection.
type HeaderLocation struct {
	Row      int
	Headers  []string
	Score    int
	Warnings []string
}

// LocateHeader scans the top of the grid and picks the row that most looks
// like a column header. Scoring is a pure count of cells exactly matching a
// known alias of the reading-id, component, lead, or color fields; the
// best-scoring row wins and first-seen wins ties. When nothing qualifies we
// fall back to row 0 with a low-confidence warning so downstream validation
// can produce an actionable missing-columns error.
func LocateHeader(g grid.Grid) HeaderLocation {
	limit := len(g)
	if limit > headerScanWindow {
		limit = headerScanWindow
	}

	bestRow, bestScore := -1, 0
	for i := 0; i < limit; i++ {
		score := scoreHeaderRow(g[i])
		if score > bestScore {
			bestRow, bestScore = i, score
		}
	}

	var warnings []string

	// Some devices emit a metadata banner before the real header at a fixed
	// offset. Probe that row and prefer it when its score is competitive.
	if looksLikeBanner(g) && bannerHeaderRow < len(g) {
		probe := scoreHeaderRow(g[bannerHeaderRow])
		if probe >= minHeaderMatches && probe >= bestScore {
			bestRow, bestScore = bannerHeaderRow, probe
		}
	}

	if bestRow < 0 || bestScore < minHeaderMatches {
		bestRow = 0
		bestScore = 0
		warnings = append(warnings,
			"no row matched known column headers; assuming row 1 is the header (low confidence)")
	}

	headers := make([]string, len(g[bestRow]))
	for i, c := range g[bestRow] {
		headers[i] = c.Text()
	}
	return HeaderLocation{Row: bestRow, Headers: headers, Score: bestScore, Warnings: warnings}
}

func scoreHeaderRow(row []grid.Cell) int {
	score := 0
	for _, c := range row {
		text := c.Text()
		for _, f := range scoringFields {
			if matchExact(f, text) {
				score++
				break
			}
		}
	}
	return score
}

func looksLikeBanner(g grid.Grid) bool {
	if len(g) == 0 || len(g[0]) == 0 {
		return false
	}
	first := strings.ToLower(g[0][0].Text())
	if first == "" {
		return false
	}
	for _, m := range bannerMarkers {
		if strings.Contains(first, m) {
			return true
		}
	}
	return false
}

// DescribeHeader renders a header location for debug output.
func DescribeHeader(loc HeaderLocation) string {
	return fmt.Sprintf("header at row %d (score %d): %s",
		loc.Row+1, loc.Score, strings.Join(loc.Headers, " | "))
}
