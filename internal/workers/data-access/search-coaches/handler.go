package searchcoaches

import (
	"context"
	"errors"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/elastic/go-elasticsearch/v8"

	"coach-match-workers/internal/common/camunda"
	apperrors "coach-match-workers/internal/common/errors"
	"coach-match-workers/internal/common/logger"
	"coach-match-workers/internal/common/observability"
	"coach-match-workers/internal/workers/data-access/search-coaches/queries"
)

const (
	TaskType = "search-coaches"
)

type Handler struct {
	config *Config
	client *elasticsearch.Client
	errors *apperrors.ErrorHandler
	logger logger.Logger
}

func NewHandler(config *Config, client *elasticsearch.Client, log logger.Logger) *Handler {
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config: config,
		client: client,
		errors: apperrors.NewErrorHandler(log),
		logger: log,
	}
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":      job.Key,
		"workflowKey": job.ProcessInstanceKey,
	})

	scope := observability.BeginJob(context.Background(), TaskType, job)
	ctx, cancel := context.WithTimeout(scope.Ctx, h.config.Timeout)
	defer cancel()

	output, err := h.run(ctx, job)
	scope.End(err)
	if err != nil {
		if sendErr := h.errors.HandleJobError(context.Background(), client, job, err); sendErr != nil {
			h.logger.Error("failed to report job error", map[string]interface{}{
				"jobKey": job.Key,
				"error":  sendErr,
			})
		}
		return
	}

	if err := camunda.CompleteJob(context.Background(), client, job, output); err != nil {
		h.logger.Error("failed to complete job", map[string]interface{}{
			"jobKey": job.Key,
			"error":  err,
		})
	}
}

func (h *Handler) run(ctx context.Context, job entities.Job) (*Output, error) {
	var input Input
	if err := camunda.DecodeVariables(job, h.config.InputSchema, &input); err != nil {
		return nil, err
	}
	return h.execute(ctx, &input)
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	if input == nil {
		return nil, apperrors.NewParseError("input cannot be nil")
	}
	if err := input.Preferences.Validate(); err != nil {
		return nil, apperrors.NewInvalidPreferencesError(err.Error())
	}

	q := queries.CoachQuery{
		Index:       input.IndexName,
		Keywords:    input.Keywords,
		Preferences: input.Preferences,
		From:        input.Pagination.From,
		Size:        input.Pagination.Size,
	}
	if q.Index == "" {
		q.Index = h.config.DefaultIndex
	}
	if q.Size == 0 {
		q.Size = h.config.PageSize
	}

	result, err := queries.Execute(ctx, h.client, q)
	if err != nil {
		switch {
		case errors.Is(ctx.Err(), context.DeadlineExceeded):
			return nil, apperrors.NewSearchTimeoutError(err)
		case errors.Is(err, queries.ErrMissingIndex):
			return nil, apperrors.NewIndexNotFoundError("")
		case errors.Is(err, queries.ErrIndexNotFound):
			return nil, apperrors.NewIndexNotFoundError(q.Index)
		default:
			return nil, apperrors.NewSearchQueryFailedError(err)
		}
	}

	h.logger.Info("coach search completed", map[string]interface{}{
		"index":     q.Index,
		"totalHits": result.TotalHits,
		"returned":  len(result.Coaches),
		"tookMs":    result.Took,
	})

	return &Output{
		Coaches:   result.Coaches,
		TotalHits: result.TotalHits,
		MaxScore:  result.MaxScore,
		Took:      result.Took,
	}, nil
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
