package usecase

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"golang.org/x/sync/errgroup"

	"github.com/blackbirdmedia/lead-pipeline/internal/entity"
)

// dispatch sends the lead to every target concurrently and waits for all
// of them to settle. Each goroutine owns one slot of the result slice and
// never returns an error, so one failure cannot cancel its siblings.
func (uc *SubmitLeadUseCase) dispatch(ctx context.Context, lead entity.Lead, targets []Target) []entity.SubmissionResult {
	results := make([]entity.SubmissionResult, len(targets))

	// Goroutines always return nil, so Wait is a plain join. A
	// WithContext group would cancel siblings on the first failure.
	var g errgroup.Group
	for i, t := range targets {
		i, t := i, t
		g.Go(func() error {
			results[i] = uc.submitOne(ctx, t, lead)
			return nil
		})
	}
	_ = g.Wait()

	return results
}

func (uc *SubmitLeadUseCase) submitOne(ctx context.Context, t Target, lead entity.Lead) (result entity.SubmissionResult) {
	ctx, cancel := context.WithTimeout(ctx, uc.callTimeout)
	defer cancel()

	ctx, span := tracer.Start(ctx, "Dispatch "+t.Name)
	span.SetAttributes(attribute.String("lead.target", t.Name))
	defer span.End()

	result = entity.SubmissionResult{Target: t.Name}

	defer func() {
		if r := recover(); r != nil {
			result.Status = entity.SubmissionFailed
			result.Detail = fmt.Sprintf("panic: %v", r)
			span.SetStatus(codes.Error, result.Detail)
			uc.loggerFor(ctx).ErrorContext(ctx, "target dispatch panicked", "target", t.Name, "panic", r)
		}
		uc.recorder.RecordDispatch(result)
	}()

	if err := t.Sender.Submit(ctx, lead); err != nil {
		result.Status = entity.SubmissionFailed
		result.Detail = err.Error()
		span.RecordError(err)
		span.SetStatus(codes.Error, "dispatch failed")
		uc.loggerFor(ctx).ErrorContext(ctx, "target dispatch failed", "target", t.Name, "error", err)
		return result
	}

	result.Status = entity.SubmissionSuccess
	uc.loggerFor(ctx).InfoContext(ctx, "target dispatch succeeded", "target", t.Name)
	return result
}
