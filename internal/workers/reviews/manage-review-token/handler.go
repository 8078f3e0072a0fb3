package managereviewtoken

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/google/uuid"

	"coach-match-workers/internal/common/camunda"
	apperrors "coach-match-workers/internal/common/errors"
	"coach-match-workers/internal/common/kvstore"
	"coach-match-workers/internal/common/logger"
	"coach-match-workers/internal/common/observability"
)

const (
	TaskType = "manage-review-token"
)

// Handler keeps review ownership tokens and per-session dismissal flags.
// A token proves its holder wrote a review and may edit or delete it.
type Handler struct {
	config *Config
	store  kvstore.Store
	errors *apperrors.ErrorHandler
	logger logger.Logger
	now    func() time.Time
	newID  func() string
}

func NewHandler(config *Config, store kvstore.Store, log logger.Logger) *Handler {
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config: config,
		store:  store,
		errors: apperrors.NewErrorHandler(log),
		logger: log,
		now:    time.Now,
		newID:  uuid.NewString,
	}
}

func tokenKey(token string) string       { return "token:" + token }
func dismissalKey(session string) string { return "dismissed:" + session }

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

	switch input.Action {
	case ActionIssue:
		return h.issue(ctx, input)
	case ActionVerify:
		return h.verify(ctx, input)
	case ActionRevoke:
		return h.revoke(ctx, input)
	case ActionDismiss:
		return h.dismiss(ctx, input)
	case ActionIsDismissed:
		return h.isDismissed(ctx, input)
	default:
		return nil, apperrors.NewParseError(fmt.Sprintf("unknown action %q", input.Action))
	}
}

func (h *Handler) issue(ctx context.Context, input *Input) (*Output, error) {
	if input.ReviewID == "" {
		return nil, apperrors.NewReviewTokenInvalidError("reviewId is required")
	}

	token := h.newID()
	ok, err := h.store.SetNX(ctx, tokenKey(token), input.ReviewID, h.config.TokenTTL)
	if err != nil {
		return nil, apperrors.NewReviewTokenStoreFailedError(err)
	}
	if !ok {
		return nil, apperrors.NewReviewTokenStoreFailedError(fmt.Errorf("token collision for review %s", input.ReviewID))
	}

	expires := h.now().Add(h.config.TokenTTL).UTC()
	h.logger.Info("review token issued", map[string]interface{}{"reviewId": input.ReviewID})
	return &Output{
		Action:    ActionIssue,
		ReviewID:  input.ReviewID,
		Token:     token,
		Valid:     true,
		ExpiresAt: &expires,
	}, nil
}

// owns reports whether token is live and bound to reviewID.
func (h *Handler) owns(ctx context.Context, token, reviewID string) (bool, error) {
	if token == "" || reviewID == "" {
		return false, nil
	}
	owner, err := h.store.Get(ctx, tokenKey(token))
	if errors.Is(err, kvstore.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, apperrors.NewReviewTokenStoreFailedError(err)
	}
	return owner == reviewID, nil
}

func (h *Handler) verify(ctx context.Context, input *Input) (*Output, error) {
	valid, err := h.owns(ctx, input.Token, input.ReviewID)
	if err != nil {
		return nil, err
	}
	return &Output{Action: ActionVerify, ReviewID: input.ReviewID, Valid: valid}, nil
}

func (h *Handler) revoke(ctx context.Context, input *Input) (*Output, error) {
	if input.Token == "" || input.ReviewID == "" {
		return nil, apperrors.NewReviewTokenInvalidError("token and reviewId are required")
	}

	revoked, err := h.store.CompareAndDelete(ctx, tokenKey(input.Token), input.ReviewID)
	if err != nil {
		return nil, apperrors.NewReviewTokenStoreFailedError(err)
	}
	if !revoked {
		return nil, apperrors.NewReviewTokenInvalidError("token does not own review " + input.ReviewID)
	}
	h.logger.Info("review token revoked", map[string]interface{}{"reviewId": input.ReviewID})
	return &Output{Action: ActionRevoke, ReviewID: input.ReviewID}, nil
}

func (h *Handler) dismiss(ctx context.Context, input *Input) (*Output, error) {
	if input.SessionID == "" {
		return nil, apperrors.NewReviewTokenInvalidError("sessionId is required")
	}
	if err := h.store.Set(ctx, dismissalKey(input.SessionID), "1", h.config.DismissalTTL); err != nil {
		return nil, apperrors.NewReviewTokenStoreFailedError(err)
	}

	expires := h.now().Add(h.config.DismissalTTL).UTC()
	return &Output{Action: ActionDismiss, Dismissed: true, ExpiresAt: &expires}, nil
}

func (h *Handler) isDismissed(ctx context.Context, input *Input) (*Output, error) {
	if input.SessionID == "" {
		return &Output{Action: ActionIsDismissed}, nil
	}

	ttl, err := h.store.TTL(ctx, dismissalKey(input.SessionID))
	if errors.Is(err, kvstore.ErrNotFound) {
		return &Output{Action: ActionIsDismissed}, nil
	}
	if err != nil {
		return nil, apperrors.NewReviewTokenStoreFailedError(err)
	}

	out := &Output{Action: ActionIsDismissed, Dismissed: true}
	if ttl > 0 {
		expires := h.now().Add(ttl).UTC()
		out.ExpiresAt = &expires
	}
	return out, nil
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
