package pipeline

import (
	"context"
	"errors"
	"fmt"

	"github.com/nguyentantai21042004/vidscribe/internal/acquire"
	"github.com/nguyentantai21042004/vidscribe/internal/config"
	"github.com/nguyentantai21042004/vidscribe/internal/domain"
	"github.com/nguyentantai21042004/vidscribe/internal/logger"
	"github.com/nguyentantai21042004/vidscribe/internal/summarize"
	"github.com/nguyentantai21042004/vidscribe/internal/transcribe"
	"github.com/nguyentantai21042004/vidscribe/internal/validate"
)

type implOrchestrator struct {
	store       *config.Store
	acquirer    acquire.Acquirer
	transcriber transcribe.Client
	summarizer  summarize.Summarizer
	logger      logger.Logger
}

// New creates an Orchestrator over the three provider-facing components.
func New(store *config.Store, acq acquire.Acquirer, tr transcribe.Client, sum summarize.Summarizer, log logger.Logger) Orchestrator {
	return &implOrchestrator{
		store:       store,
		acquirer:    acq,
		transcriber: tr,
		summarizer:  sum,
		logger:      log,
	}
}

// Run drives one job through Validating, Acquiring, Transcribing and
// Summarizing. Stages are strictly sequential; each emits one entry
// event, zero or more intermediate events from its component, and one
// completion event. Any component error stops forward progress and the
// job jumps to Failed without resetting its percentage. Cancellation is
// cooperative: it is observed between stages and the in-flight stage's
// result is discarded.
func (o *implOrchestrator) Run(ctx context.Context, req Request, emit Emitter) (*domain.Result, error) {
	tr := &tracker{jobID: req.JobID, emit: emit}
	stageTimeout := o.store.Snapshot().Jobs.StageTimeout()

	o.logger.Info(ctx, "Job %s started: %s (%s)", req.JobID, req.URL, req.Type)

	tr.publish(domain.StageValidating, 0, "Validating video URL")
	videoID, err := validate.VideoID(req.URL)
	if err != nil {
		return o.fail(ctx, tr, err)
	}
	tr.publish(domain.StageValidating, 1, fmt.Sprintf("URL resolved to video %s", videoID))

	if err := cancelled(ctx); err != nil {
		return o.fail(ctx, tr, err)
	}

	tr.publish(domain.StageAcquiring, 0, "Retrieving audio stream")
	actx, acancel := context.WithTimeout(ctx, stageTimeout)
	artifact, info, err := o.acquirer.Acquire(actx, videoID, func(f float64, msg string) {
		tr.publish(domain.StageAcquiring, f, msg)
	})
	acancel()
	if err != nil {
		return o.fail(ctx, tr, err)
	}
	defer artifact.Release(context.WithoutCancel(ctx), o.logger)
	tr.publish(domain.StageAcquiring, 1, "Audio and metadata acquired")

	if err := cancelled(ctx); err != nil {
		return o.fail(ctx, tr, err)
	}

	tr.publish(domain.StageTranscribing, 0, "Submitting audio for transcription")
	tctx, tcancel := context.WithTimeout(ctx, stageTimeout)
	segments, err := o.transcriber.Transcribe(tctx, artifact, func(f float64, msg string) {
		tr.publish(domain.StageTranscribing, f, msg)
	})
	tcancel()
	if err != nil {
		return o.fail(ctx, tr, err)
	}
	tr.publish(domain.StageTranscribing, 1, fmt.Sprintf("Transcription complete (%d segments)", len(segments)))

	if err := cancelled(ctx); err != nil {
		return o.fail(ctx, tr, err)
	}

	tr.publish(domain.StageSummarizing, 0, "Generating summary")
	sctx, scancel := context.WithTimeout(ctx, stageTimeout)
	summary, err := o.summarizer.Summarize(sctx, segments, info, req.Type, req.Options)
	scancel()
	if err != nil {
		return o.fail(ctx, tr, err)
	}

	result := &domain.Result{
		Type:       summary.Type,
		Text:       summary.Body,
		VideoInfo:  info,
		Highlights: summary.Highlights,
		Timestamps: summary.Timestamps,
		Truncated:  summary.Truncated,
	}

	o.logger.Info(ctx, "Job %s complete", req.JobID)
	tr.complete("Summary ready")
	return result, nil
}

// fail records the terminal error and emits the final event at the last
// known percentage. A parent-context cancellation takes precedence over
// whatever the interrupted stage reported.
func (o *implOrchestrator) fail(ctx context.Context, tr *tracker, err error) (*domain.Result, error) {
	if errors.Is(ctx.Err(), context.Canceled) {
		err = domain.Wrap(domain.KindCancelled, err, "job cancelled")
	} else {
		var de *domain.Error
		if !errors.As(err, &de) {
			err = domain.Wrap(domain.KindInternal, err, "pipeline failure")
		}
	}

	o.logger.Error(ctx, "Job %s failed: %v", tr.jobID, err)
	tr.fail(err.Error())
	return nil, err
}

func cancelled(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return domain.Wrap(domain.KindCancelled, err, "job cancelled")
	}
	return nil
}
