// Package pipeline wires the full ingestion-and-classification flow: raw
// grid → header/column detection → row classification → name normalization
// → regulatory classification → job summary.
package pipeline

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/pbscan/pbscan-cli/internal/classify"
	"github.com/pbscan/pbscan-cli/internal/grid"
	"github.com/pbscan/pbscan-cli/internal/model"
	"github.com/pbscan/pbscan-cli/internal/normalize"
	"github.com/pbscan/pbscan-cli/internal/parse"
)

// Options configures one processing run. Collaborators are injected
// explicitly; nil collaborators degrade to deterministic local behavior.
type Options struct {
	Path       string
	SheetName  string
	SheetIndex int
	Delimiter  rune

	JobID       string
	SourceLabel string
	AreaType    model.AreaType

	Mapper   parse.AIMapper
	Store    normalize.Store
	Grouper  normalize.Grouper
	Progress func(normalize.Progress)

	// CacheChunkSize bounds cache lookup batches; zero uses the default.
	CacheChunkSize int
}

// Run executes the pipeline over one input file and returns the terminal
// JobSummary plus the intermediate parse result (for skip/error reporting).
func Run(ctx context.Context, opts Options) (*model.JobSummary, *parse.Result, error) {
	g, err := grid.Load(opts.Path, opts.SheetName, opts.SheetIndex, opts.Delimiter)
	if err != nil {
		return nil, nil, err
	}
	return RunGrid(ctx, g, opts)
}

// RunGrid is Run without the file-loading step; tests and in-memory
// callers feed a grid directly.
func RunGrid(ctx context.Context, g grid.Grid, opts Options) (*model.JobSummary, *parse.Result, error) {
	res, err := parse.ParseGrid(ctx, g, parse.Options{Mapper: opts.Mapper})
	if err != nil {
		return nil, nil, err
	}

	engineOpts := []normalize.Option{}
	if opts.CacheChunkSize > 0 {
		engineOpts = append(engineOpts, normalize.WithChunkSize(opts.CacheChunkSize))
	}
	if opts.Progress != nil {
		engineOpts = append(engineOpts, normalize.WithProgress(opts.Progress))
	}
	engine := normalize.NewEngine(opts.Store, opts.Grouper, engineOpts...)

	// Components first, then substrates; grouping depends on both being
	// normalized before classification.
	compEntries, err := engine.Normalize(ctx, normalize.ComponentNames(res.Readings))
	if err != nil {
		return nil, res, err
	}
	subEntries, err := engine.Normalize(ctx, normalize.SubstrateNames(res.Readings))
	if err != nil {
		return nil, res, err
	}
	normalize.Apply(res.Readings, compEntries, subEntries)

	areaType := opts.AreaType
	if areaType == "" {
		areaType = model.AreaUnit
	}
	dataset := classify.Classify(res.Readings, areaType)

	jobID := opts.JobID
	if jobID == "" {
		jobID = uuid.NewString()
	}
	summary := &model.JobSummary{
		JobID:               jobID,
		ProcessedAt:         time.Now().UTC(),
		SourceLabel:         opts.SourceLabel,
		NormalizedNameCount: len(compEntries) + len(subEntries),
	}
	if areaType == model.AreaCommon {
		summary.CommonAreas = dataset
	} else {
		summary.UnitAreas = dataset
	}
	return summary, res, nil
}
