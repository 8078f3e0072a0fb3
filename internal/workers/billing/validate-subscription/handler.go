package validatesubscription

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"slices"
	"time"

	"coach-match-workers/internal/common/camunda"
	"coach-match-workers/internal/common/database"
	apperrors "coach-match-workers/internal/common/errors"
	"coach-match-workers/internal/common/logger"
	"coach-match-workers/internal/common/metrics"
	"coach-match-workers/internal/common/observability"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/redis/go-redis/v9"
)

const (
	TaskType = "validate-subscription"
)

const subscriptionQuery = `
	SELECT coach_id, tier, expires_at, is_active
	FROM coach_subscriptions
	WHERE coach_id = $1`

type Handler struct {
	config *Config
	db     *sql.DB
	redis  *redis.Client
	errors *apperrors.ErrorHandler
	logger logger.Logger
	now    func() time.Time
}

func NewHandler(config *Config, db *sql.DB, redis *redis.Client, log logger.Logger) *Handler {
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config: config,
		db:     db,
		redis:  redis,
		errors: apperrors.NewErrorHandler(log),
		logger: log,
		now:    time.Now,
	}
}

// CacheKey is the Redis key of a coach's cached subscription.
func CacheKey(coachID string) string {
	return "sub:" + coachID
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
	if input == nil || input.CoachID == "" {
		return nil, apperrors.NewSubscriptionInvalidError("coachId is required")
	}

	sub, err := h.subscription(ctx, input.CoachID)
	if err != nil {
		return nil, err
	}

	if !sub.IsActive {
		return nil, apperrors.NewSubscriptionInvalidError("subscription is inactive").
			WithMetadata("coachId", input.CoachID)
	}
	if sub.ExpiresAt != nil && h.now().After(*sub.ExpiresAt) {
		return nil, apperrors.NewSubscriptionExpiredError(sub.ExpiresAt.Format(time.RFC3339)).
			WithMetadata("coachId", input.CoachID)
	}

	features, ok := Features(sub.Tier)
	if !ok {
		return nil, apperrors.NewSubscriptionInvalidError(fmt.Sprintf("unknown tier %q", sub.Tier)).
			WithMetadata("coachId", input.CoachID)
	}
	if input.RequiredFeature != "" && !slices.Contains(features, input.RequiredFeature) {
		return nil, apperrors.NewSubscriptionInvalidError(
			fmt.Sprintf("tier %s does not include %s", sub.Tier, input.RequiredFeature),
		).WithMetadata("coachId", input.CoachID)
	}

	return &Output{
		IsValid:   true,
		TierLevel: sub.Tier,
		Features:  features,
		ExpiresAt: sub.ExpiresAt,
	}, nil
}

// subscription reads through the Redis cache. Only rows that exist are
// cached; expiry is re-checked by the caller on every read.
func (h *Handler) subscription(ctx context.Context, coachID string) (*Subscription, error) {
	key := CacheKey(coachID)

	var sub Subscription
	found, err := database.GetJSON(ctx, h.redis, key, &sub)
	if err != nil {
		h.logger.Warn("subscription cache read failed", map[string]interface{}{
			"coachId": coachID,
			"error":   err,
		})
	}
	metrics.CacheResult("subscription", found)
	if found {
		return &sub, nil
	}

	var expiresAt sql.NullTime
	err = h.db.QueryRowContext(ctx, subscriptionQuery, coachID).Scan(
		&sub.CoachID, &sub.Tier, &expiresAt, &sub.IsActive,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NewSubscriptionInvalidError("no subscription found").
			WithMetadata("coachId", coachID)
	}
	if err != nil {
		return nil, apperrors.NewSubscriptionCheckFailedError(err)
	}
	if expiresAt.Valid {
		t := expiresAt.Time.UTC()
		sub.ExpiresAt = &t
	}

	if err := database.SetJSON(ctx, h.redis, key, sub, h.config.CacheTTL); err != nil {
		h.logger.Warn("subscription cache write failed", map[string]interface{}{
			"coachId": coachID,
			"error":   err,
		})
	}
	return &sub, nil
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
