// Package orchestrator chains loading, indicator computation and signal cleanup into runs
package orchestrator

import (
	"context"
	"time"

	"github.com/ducminhle1904/indicator-engine/pkg/config"
	"github.com/ducminhle1904/indicator-engine/pkg/reporting"
	"github.com/ducminhle1904/indicator-engine/pkg/types"
)

// Orchestrator coordinates data loading and indicator runs
type Orchestrator interface {
	// RunFile loads cfg.DataFile, optionally keeps the trailing period, and runs the pipeline
	RunFile(ctx context.Context, cfg *config.IndicatorConfig, period time.Duration) (*RunResult, error)

	// RunSeries runs the pipeline over an already loaded series
	RunSeries(ctx context.Context, cfg *config.IndicatorConfig, series *types.Series) (*RunResult, error)

	// RunMultiInterval runs every interval found for cfg.Symbol under dataRoot
	RunMultiInterval(ctx context.Context, cfg *config.IndicatorConfig, dataRoot, exchange string, period time.Duration) (*IntervalAnalysisResult, error)
}

// Workflow represents different execution workflows
type Workflow interface {
	Execute(ctx context.Context) (interface{}, error)
	GetWorkflowType() WorkflowType
}

// WorkflowType represents different types of workflows
type WorkflowType string

const (
	WorkflowTypeSingle   WorkflowType = "single"
	WorkflowTypeInterval WorkflowType = "interval"
)

// RunResult is one computed frame with its summary
type RunResult struct {
	Frame   *types.ResultFrame
	Summary reporting.Summary
}

// IntervalResult represents results for a single interval
type IntervalResult struct {
	Interval string
	DataFile string
	Result   *RunResult
	Error    error
}

// IntervalAnalysisResult represents results from multi-interval analysis
type IntervalAnalysisResult struct {
	Symbol   string
	Exchange string
	Results  []IntervalResult
}
