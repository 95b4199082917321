package orchestrator

import (
	"context"
	"time"

	"github.com/ducminhle1904/indicator-engine/pkg/config"
)

// SingleRunWorkflow computes indicators for one data file
type SingleRunWorkflow struct {
	orchestrator   Orchestrator
	config         *config.IndicatorConfig
	selectedPeriod time.Duration
}

// NewSingleRunWorkflow creates a new single run workflow
func NewSingleRunWorkflow(orchestrator Orchestrator, config *config.IndicatorConfig, selectedPeriod time.Duration) Workflow {
	return &SingleRunWorkflow{
		orchestrator:   orchestrator,
		config:         config,
		selectedPeriod: selectedPeriod,
	}
}

// Execute runs the single workflow
func (w *SingleRunWorkflow) Execute(ctx context.Context) (interface{}, error) {
	return w.orchestrator.RunFile(ctx, w.config, w.selectedPeriod)
}

// GetWorkflowType returns the workflow type
func (w *SingleRunWorkflow) GetWorkflowType() WorkflowType {
	return WorkflowTypeSingle
}

// IntervalAnalysisWorkflow runs every interval available for a symbol
type IntervalAnalysisWorkflow struct {
	orchestrator   Orchestrator
	config         *config.IndicatorConfig
	dataRoot       string
	exchange       string
	selectedPeriod time.Duration
}

// NewIntervalAnalysisWorkflow creates a new interval analysis workflow
func NewIntervalAnalysisWorkflow(orchestrator Orchestrator, config *config.IndicatorConfig, dataRoot, exchange string, selectedPeriod time.Duration) Workflow {
	return &IntervalAnalysisWorkflow{
		orchestrator:   orchestrator,
		config:         config,
		dataRoot:       dataRoot,
		exchange:       exchange,
		selectedPeriod: selectedPeriod,
	}
}

// Execute runs the interval analysis workflow
func (w *IntervalAnalysisWorkflow) Execute(ctx context.Context) (interface{}, error) {
	return w.orchestrator.RunMultiInterval(ctx, w.config, w.dataRoot, w.exchange, w.selectedPeriod)
}

// GetWorkflowType returns the workflow type
func (w *IntervalAnalysisWorkflow) GetWorkflowType() WorkflowType {
	return WorkflowTypeInterval
}

var _ Orchestrator = (*DefaultOrchestrator)(nil)
