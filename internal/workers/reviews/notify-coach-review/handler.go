package notifycoachreview

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"coach-match-workers/internal/coaches"
	awsclients "coach-match-workers/internal/common/aws"
	"coach-match-workers/internal/common/camunda"
	apperrors "coach-match-workers/internal/common/errors"
	"coach-match-workers/internal/common/logger"
	"coach-match-workers/internal/common/metrics"
	"coach-match-workers/internal/common/observability"
)

const (
	TaskType = "notify-coach-review"
)

type Handler struct {
	config  *Config
	coaches *coaches.Store
	email   awsclients.EmailSender
	sms     awsclients.SMSPublisher
	errors  *apperrors.ErrorHandler
	logger  logger.Logger
	now     func() time.Time
}

// NewHandler builds the worker. rdb may be nil; when set, the coach's cached
// profile is dropped so rankings pick up the new rating.
func NewHandler(config *Config, db *sql.DB, rdb *redis.Client, email awsclients.EmailSender, sms awsclients.SMSPublisher, log logger.Logger) *Handler {
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:  config,
		coaches: coaches.NewStore(db, rdb, 0, log),
		email:   email,
		sms:     sms,
		errors:  apperrors.NewErrorHandler(log),
		logger:  log,
		now:     time.Now,
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
	if input.CoachID == "" || input.ReviewID == "" {
		return nil, apperrors.NewParseError("coachId and reviewId are required")
	}
	if input.Rating < 1 || input.Rating > 5 {
		return nil, apperrors.NewParseError(fmt.Sprintf("rating %d outside 1..5", input.Rating))
	}

	if err := h.coaches.Invalidate(ctx, input.CoachID); err != nil {
		h.logger.Warn("failed to invalidate cached coach profile", map[string]interface{}{
			"coachId": input.CoachID,
			"error":   err,
		})
	}

	out := &Output{
		NotificationID: uuid.New().String(),
		Status:         StatusDisabled,
		SentAt:         h.now().UTC().Format(time.RFC3339),
	}

	contact, err := h.coaches.Contact(ctx, input.CoachID)
	if errors.Is(err, coaches.ErrNotFound) {
		h.logger.Warn("coach not found, notification skipped", map[string]interface{}{
			"coachId":  input.CoachID,
			"reviewId": input.ReviewID,
		})
		return out, nil
	}
	if err != nil {
		return nil, apperrors.NewProfileLookupFailedError(err)
	}
	if !contact.NotificationsEnabled {
		return out, nil
	}

	data := messageData{
		CoachName:    contact.Name,
		ReviewerName: input.ReviewerName,
		ReviewID:     input.ReviewID,
		Rating:       input.Rating,
		Comment:      input.Comment,
	}

	var (
		sent, failed int
		lastErr      error
		lastChannel  string
	)
	if h.config.EmailEnabled && h.email != nil && contact.Email != "" {
		if err := h.sendEmail(ctx, contact.Email, data); err != nil {
			h.logger.Error("email send failed", map[string]interface{}{
				"coachId": input.CoachID,
				"error":   err,
			})
			failed++
			lastErr, lastChannel = err, ChannelEmail
			metrics.NotificationsSent.WithLabelValues(ChannelEmail, StatusFailed).Inc()
		} else {
			sent++
			out.Channels = append(out.Channels, ChannelEmail)
			metrics.NotificationsSent.WithLabelValues(ChannelEmail, StatusSent).Inc()
		}
	}

	if h.wantsSMS(input.Rating) && contact.Phone != "" {
		if err := h.sendSMS(ctx, contact.Phone, data); err != nil {
			h.logger.Error("SMS send failed", map[string]interface{}{
				"coachId": input.CoachID,
				"error":   err,
			})
			failed++
			lastErr, lastChannel = err, ChannelSMS
			metrics.NotificationsSent.WithLabelValues(ChannelSMS, StatusFailed).Inc()
		} else {
			sent++
			out.Channels = append(out.Channels, ChannelSMS)
			metrics.NotificationsSent.WithLabelValues(ChannelSMS, StatusSent).Inc()
		}
	}

	// Nothing delivered: fail the job so the broker retries the send.
	if failed > 0 && sent == 0 {
		return nil, apperrors.NewNotificationSendFailedError(lastChannel, lastErr)
	}
	switch {
	case failed > 0:
		out.Status = StatusFailed
	case sent > 0:
		out.Status = StatusSent
	}

	h.logger.Info("review notification processed", map[string]interface{}{
		"coachId":  input.CoachID,
		"reviewId": input.ReviewID,
		"status":   out.Status,
		"channels": out.Channels,
	})
	return out, nil
}

// wantsSMS reports whether a review is low enough to also text the coach.
func (h *Handler) wantsSMS(rating int) bool {
	return h.config.SMSEnabled && h.sms != nil && rating <= h.config.LowRatingThreshold
}

func (h *Handler) sendEmail(ctx context.Context, to string, data messageData) error {
	subject, err := render(subjectTemplate, data)
	if err != nil {
		return fmt.Errorf("render subject: %w", err)
	}
	body, err := render(emailTemplate, data)
	if err != nil {
		return fmt.Errorf("render body: %w", err)
	}
	_, err = h.email.SendEmail(ctx, awsclients.EmailInput(h.config.FromEmail, to, subject, body))
	return err
}

func (h *Handler) sendSMS(ctx context.Context, to string, data messageData) error {
	msg, err := render(smsTemplate, data)
	if err != nil {
		return fmt.Errorf("render sms: %w", err)
	}
	_, err = h.sms.Publish(ctx, awsclients.SMSInput(to, msg, h.config.SenderID))
	return err
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
