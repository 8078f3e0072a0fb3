package calculatematchscore

import (
	"context"
	"database/sql"
	"errors"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/redis/go-redis/v9"

	"coach-match-workers/internal/coaches"
	"coach-match-workers/internal/common/camunda"
	apperrors "coach-match-workers/internal/common/errors"
	"coach-match-workers/internal/common/logger"
	"coach-match-workers/internal/common/observability"
	"coach-match-workers/internal/matching"
)

const (
	TaskType = "calculate-match-score"
)

type Handler struct {
	config  *Config
	coaches *coaches.Store
	errors  *apperrors.ErrorHandler
	logger  logger.Logger
}

func NewHandler(config *Config, db *sql.DB, redis *redis.Client, log logger.Logger) *Handler {
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:  config,
		coaches: coaches.NewStore(db, redis, config.CacheTTL, log),
		errors:  apperrors.NewErrorHandler(log),
		logger:  log,
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
		return
	}

	h.logger.Info("match score calculated", map[string]interface{}{
		"jobKey":     job.Key,
		"coachId":    output.CoachID,
		"matchScore": output.MatchScore,
	})
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

	coach, err := h.resolveCoach(ctx, input)
	if err != nil {
		return nil, err
	}
	if err := coach.Validate(); err != nil {
		return nil, apperrors.NewInvalidCoachProfileError(err.Error()).WithMetadata("coachId", coach.ID)
	}

	match := matching.Evaluate(*coach, input.Preferences)
	observability.RecordMatchScore(ctx, TaskType, match.Score)

	return &Output{
		CoachID:     coach.ID,
		MatchScore:  match.Score,
		MatchReason: match.Reason,
		Breakdown:   match.Breakdown,
	}, nil
}

// resolveCoach prefers the inline profile and otherwise loads it by id.
func (h *Handler) resolveCoach(ctx context.Context, input *Input) (*matching.CoachProfile, error) {
	if input.Coach != nil {
		coach := *input.Coach
		if coach.ID == "" {
			coach.ID = input.CoachID
		}
		return &coach, nil
	}

	if input.CoachID == "" {
		return nil, apperrors.NewInvalidCoachProfileError("either coach or coachId is required")
	}

	coach, err := h.coaches.Profile(ctx, input.CoachID)
	if errors.Is(err, coaches.ErrNotFound) {
		return nil, apperrors.NewCoachNotFoundError(input.CoachID)
	}
	if err != nil {
		return nil, apperrors.NewProfileLookupFailedError(err)
	}
	return coach, nil
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
