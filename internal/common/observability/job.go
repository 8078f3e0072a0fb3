package observability

import (
	"context"
	"time"

	apperrors "coach-match-workers/internal/common/errors"
	"coach-match-workers/internal/common/metrics"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// JobScope tracks one job from activation to completion.
type JobScope struct {
	Ctx      context.Context
	span     trace.Span
	taskType string
	start    time.Time
	done     func(errorCode string)
}

// BeginJob opens a span for job and marks it active in the job metrics.
func BeginJob(ctx context.Context, taskType string, job entities.Job) *JobScope {
	ctx, span := otel.Tracer(instrumentationName).Start(ctx, taskType,
		trace.WithSpanKind(trace.SpanKindConsumer),
		trace.WithAttributes(
			attribute.String("zeebe.task_type", taskType),
			attribute.Int64("zeebe.job_key", job.Key),
			attribute.Int64("zeebe.process_instance_key", job.ProcessInstanceKey),
		),
	)
	return &JobScope{
		Ctx:      ctx,
		span:     span,
		taskType: taskType,
		start:    time.Now(),
		done:     metrics.TrackJob(taskType),
	}
}

// End records the outcome. A nil err counts as completed.
func (s *JobScope) End(err error) {
	defer s.span.End()

	status, code := "completed", ""
	if err != nil {
		code = string(apperrors.Normalize(err).Code)
		status = "failed"
		s.span.RecordError(err)
		s.span.SetStatus(codes.Error, code)
	} else {
		s.span.SetStatus(codes.Ok, "")
	}

	s.done(code)
	recordJob(s.Ctx, s.taskType, status, time.Since(s.start))
}
