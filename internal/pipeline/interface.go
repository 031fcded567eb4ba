package pipeline

import (
	"context"

	"github.com/nguyentantai21042004/vidscribe/internal/domain"
)

// Request carries everything the orchestrator needs for one job.
type Request struct {
	JobID   string
	URL     string
	Type    domain.SummaryType
	Options domain.Options
}

// Emitter receives every progress event the orchestrator produces, in
// order. Events whose stage is terminal are the last for the job.
type Emitter func(domain.ProgressEvent)

// Orchestrator drives a single job through the pipeline stages.
type Orchestrator interface {
	Run(ctx context.Context, req Request, emit Emitter) (*domain.Result, error)
}
