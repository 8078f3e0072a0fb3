package rankcoaches

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"coach-match-workers/internal/coaches"
	"coach-match-workers/internal/common/camunda"
	apperrors "coach-match-workers/internal/common/errors"
	"coach-match-workers/internal/common/logger"
	"coach-match-workers/internal/common/metrics"
	"coach-match-workers/internal/common/observability"
	"coach-match-workers/internal/matching"
)

const (
	TaskType = "rank-coaches"
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
	}
}

func (h *Handler) run(ctx context.Context, job entities.Job) (*Output, error) {
	var input Input
	if err := camunda.DecodeVariables(job, h.config.InputSchema, &input); err != nil {
		return nil, err
	}
	return h.execute(ctx, &input)
}

// scored is one candidate's result; ok is false when the profile was skipped.
type scored struct {
	coach matching.CoachProfile
	match matching.Match
	ok    bool
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	if input == nil {
		return nil, apperrors.NewParseError("input cannot be nil")
	}
	if err := input.Preferences.Validate(); err != nil {
		return nil, apperrors.NewInvalidPreferencesError(err.Error())
	}

	minScore := h.config.MinScore
	if input.MinScore != nil {
		minScore = *input.MinScore
	}
	if minScore < 0 || minScore > 100 {
		return nil, apperrors.NewInvalidPreferencesError(fmt.Sprintf("minScore %d outside 0..100", minScore))
	}

	start := time.Now()

	candidates, err := h.candidates(ctx, input)
	if err != nil {
		return nil, err
	}

	results, err := h.scoreAll(ctx, candidates, input.Preferences)
	if err != nil {
		return nil, err
	}

	out := &Output{RankedCoaches: []RankedCoach{}}
	kept := make([]scored, 0, len(results))
	for _, r := range results {
		if !r.ok {
			out.Skipped++
			continue
		}
		out.TotalEvaluated++
		if r.match.Score < minScore {
			out.FilteredOut++
			continue
		}
		kept = append(kept, r)
	}

	sort.SliceStable(kept, func(i, j int) bool {
		return ranksBefore(kept[i], kept[j])
	})

	limit := h.limit(input.Limit)
	if len(kept) > limit {
		kept = kept[:limit]
	}

	for _, r := range kept {
		out.RankedCoaches = append(out.RankedCoaches, RankedCoach{
			CoachID:       r.coach.ID,
			Name:          r.coach.Name,
			MatchScore:    r.match.Score,
			MatchReason:   r.match.Reason,
			AverageRating: r.coach.AverageRating,
			TotalReviews:  r.coach.TotalReviews,
		})
	}

	metrics.CoachesFilteredOut.Add(float64(out.FilteredOut))
	h.logger.Info("ranking completed", map[string]interface{}{
		"candidates":  len(candidates),
		"evaluated":   out.TotalEvaluated,
		"skipped":     out.Skipped,
		"filteredOut": out.FilteredOut,
		"returned":    len(out.RankedCoaches),
		"durationMs":  time.Since(start).Milliseconds(),
	})

	return out, nil
}

// candidates merges inline profiles with the ones loaded by id, keeping the
// first occurrence of each id. Unknown ids are logged and dropped.
func (h *Handler) candidates(ctx context.Context, input *Input) ([]matching.CoachProfile, error) {
	seen := make(map[string]bool, len(input.Coaches)+len(input.CoachIDs))
	out := make([]matching.CoachProfile, 0, len(input.Coaches)+len(input.CoachIDs))

	for _, c := range input.Coaches {
		if c.ID != "" {
			if seen[c.ID] {
				continue
			}
			seen[c.ID] = true
		}
		out = append(out, c)
	}

	for _, id := range input.CoachIDs {
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true

		profile, err := h.coaches.Profile(ctx, id)
		if errors.Is(err, coaches.ErrNotFound) {
			h.logger.Warn("coach not found, skipping", map[string]interface{}{"coachId": id})
			continue
		}
		if err != nil {
			return nil, apperrors.NewProfileLookupFailedError(err)
		}
		out = append(out, *profile)
	}
	return out, nil
}

// scoreAll evaluates every candidate concurrently, preserving input order.
func (h *Handler) scoreAll(ctx context.Context, candidates []matching.CoachProfile, prefs matching.ClientPreferences) ([]scored, error) {
	results := make([]scored, len(candidates))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(h.parallelism())

	for i := range candidates {
		i := i
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			coach := candidates[i]
			if coach.ID == "" {
				h.logger.Warn("skipping coach without id", map[string]interface{}{"index": i})
				return nil
			}
			if err := coach.Validate(); err != nil {
				h.logger.Warn("skipping invalid coach profile", map[string]interface{}{
					"coachId": coach.ID,
					"error":   err,
				})
				return nil
			}

			match := matching.Evaluate(coach, prefs)
			observability.RecordMatchScore(gctx, TaskType, match.Score)
			results[i] = scored{coach: coach, match: match, ok: true}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("score coaches: %w", err)
	}
	return results, nil
}

// ranksBefore orders by score, then rating, then review count, then id.
func ranksBefore(a, b scored) bool {
	if a.match.Score != b.match.Score {
		return a.match.Score > b.match.Score
	}
	if a.coach.Rating() != b.coach.Rating() {
		return a.coach.Rating() > b.coach.Rating()
	}
	if a.coach.Reviews() != b.coach.Reviews() {
		return a.coach.Reviews() > b.coach.Reviews()
	}
	return a.coach.ID < b.coach.ID
}

func (h *Handler) limit(requested int) int {
	limit := h.config.MaxItems
	if requested > 0 {
		limit = requested
	}
	if limit <= 0 || limit > MaxLimit {
		limit = MaxLimit
	}
	return limit
}

func (h *Handler) parallelism() int {
	if h.config.Parallelism < 1 {
		return 1
	}
	return h.config.Parallelism
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
