package workflow

import (
	"context"
	"errors"
	"time"

	"lens/internal/fault"
	"lens/internal/logging"
	"lens/internal/recognition"
)

// WatchUpload arms the upload watch for id: after the configured window the
// watchdog decides whether the blob timed out. The watch is bound to the
// runner's lifetime rather than the caller's request context.
func (r *Runner) WatchUpload(_ context.Context, id string) error {
	return r.watch(id, r.uploadWindow)
}

func (r *Runner) watch(id string, wait time.Duration) error {
	return r.spawn(func(ctx context.Context) {
		timer := time.NewTimer(wait)
		defer timer.Stop()

		select {
		case <-ctx.Done():
			return
		case <-timer.C:
		}

		if err := r.steps.Watchdog.Expire(ctx, id); err != nil {
			if errors.Is(err, context.Canceled) {
				return
			}
			r.log.Error("upload watch failed",
				logging.String(logging.FieldBlobID, id),
				logging.Error(err))
		}
	})
}

// RunRecognition starts the recognition pipeline for id. Like WatchUpload it
// returns once the pipeline is scheduled; completion is observable only
// through the blob's status.
func (r *Runner) RunRecognition(_ context.Context, id string) error {
	return r.spawn(func(ctx context.Context) {
		r.recognize(ctx, id)
	})
}

// recognize drives one pipeline execution: extract, normalize, persist,
// dispatch. Delivery trouble is terminal data, not an error, so a completed
// pipeline only reports the recorded outcome.
func (r *Runner) recognize(ctx context.Context, id string) {
	start := time.Now()

	extraction, err := r.steps.Extractor.Extract(ctx, id)
	if err != nil {
		r.stepFailed(ctx, "extract", id, err)
		return
	}

	labels := recognition.Normalize(extraction.Detection)

	if _, err := r.steps.Persister.Persist(ctx, id, labels); err != nil {
		r.stepFailed(ctx, "persist", id, err)
		return
	}

	outcome, err := r.steps.Dispatcher.Dispatch(ctx, id, labels)
	if err != nil {
		r.stepFailed(ctx, "dispatch", id, err)
		return
	}

	r.log.Info("recognition pipeline completed",
		logging.String(logging.FieldBlobID, id),
		logging.String("outcome", string(outcome)),
		logging.Duration("pipeline_duration", time.Since(start)))
}

// stepFailed routes a pipeline step error. Steps that already classified the
// blob halt the pipeline quietly; anything else lands in the fallback net.
func (r *Runner) stepFailed(ctx context.Context, step, id string, err error) {
	if errors.Is(err, context.Canceled) {
		r.log.Debug("pipeline interrupted by shutdown",
			logging.String(logging.FieldBlobID, id),
			logging.String("step", step))
		return
	}
	if fault.IsKind(err, fault.KindRecognitionStepFailed) {
		r.log.Warn("recognition halted",
			logging.String(logging.FieldBlobID, id),
			logging.String("step", step),
			logging.Error(err))
		return
	}

	r.log.Error("pipeline step failed",
		logging.String(logging.FieldBlobID, id),
		logging.String("step", step),
		logging.Error(err))
	r.steps.Fallback.Handle(ctx, id, err)
}
