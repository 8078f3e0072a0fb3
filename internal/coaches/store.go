// Package coaches loads coach profiles and contact details for the workers.
package coaches

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"coach-match-workers/internal/common/database"
	"coach-match-workers/internal/common/logger"
	"coach-match-workers/internal/common/metrics"
	"coach-match-workers/internal/matching"

	"github.com/redis/go-redis/v9"
)

// ErrNotFound is returned when no live coach row exists for an id.
var ErrNotFound = errors.New("coach not found")

const profileQuery = `
	SELECT id, name, specialties, available_formats, hourly_rate, currency,
	       certifications, languages, coaching_hours, average_rating, total_reviews
	FROM coach_profiles
	WHERE id = $1 AND deleted_at IS NULL`

const contactQuery = `
	SELECT name, email, phone, notifications_enabled
	FROM coach_profiles
	WHERE id = $1 AND deleted_at IS NULL`

const profileCache = "coach_profile"

// ProfileCacheKey is the Redis key holding a cached profile.
func ProfileCacheKey(coachID string) string {
	return "coach:profile:" + coachID
}

// Contact is where review notifications for a coach are delivered.
type Contact struct {
	CoachID              string
	Name                 string
	Email                string
	Phone                string
	NotificationsEnabled bool
}

// Store reads coach_profiles with a read-through Redis cache. A nil redis
// client disables caching.
type Store struct {
	db     *sql.DB
	redis  *redis.Client
	ttl    time.Duration
	logger logger.Logger
}

func NewStore(db *sql.DB, rdb *redis.Client, ttl time.Duration, log logger.Logger) *Store {
	return &Store{db: db, redis: rdb, ttl: ttl, logger: log}
}

// Profile returns the profile for coachID. Cache failures are logged and
// fall through to Postgres.
func (s *Store) Profile(ctx context.Context, coachID string) (*matching.CoachProfile, error) {
	key := ProfileCacheKey(coachID)

	if s.redis != nil {
		var cached matching.CoachProfile
		found, err := database.GetJSON(ctx, s.redis, key, &cached)
		switch {
		case err != nil:
			s.logger.Warn("profile cache read failed", map[string]interface{}{
				"coachId": coachID,
				"error":   err,
			})
		case found:
			metrics.CacheResult(profileCache, true)
			return &cached, nil
		}
		metrics.CacheResult(profileCache, false)
	}

	profile, err := s.loadProfile(ctx, coachID)
	if err != nil {
		return nil, err
	}

	if s.redis != nil {
		if err := database.SetJSON(ctx, s.redis, key, profile, s.ttl); err != nil {
			s.logger.Warn("profile cache write failed", map[string]interface{}{
				"coachId": coachID,
				"error":   err,
			})
		}
	}
	return profile, nil
}

// Invalidate drops the cached profile so the next read hits Postgres.
func (s *Store) Invalidate(ctx context.Context, coachID string) error {
	if s.redis == nil {
		return nil
	}
	return s.redis.Del(ctx, ProfileCacheKey(coachID)).Err()
}

func (s *Store) loadProfile(ctx context.Context, coachID string) (*matching.CoachProfile, error) {
	var (
		p                                      matching.CoachProfile
		specialties, formats, certs, languages []byte
		rate, rating                           sql.NullFloat64
		currency                               sql.NullString
		hours, reviews                         sql.NullInt64
	)

	err := s.db.QueryRowContext(ctx, profileQuery, coachID).Scan(
		&p.ID, &p.Name, &specialties, &formats, &rate, &currency,
		&certs, &languages, &hours, &rating, &reviews,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, coachID)
	}
	if err != nil {
		return nil, fmt.Errorf("query coach profile %s: %w", coachID, err)
	}

	if err := decodeList(specialties, &p.Specialties); err != nil {
		return nil, fmt.Errorf("decode specialties: %w", err)
	}
	if err := decodeList(formats, &p.AvailableFormats); err != nil {
		return nil, fmt.Errorf("decode available_formats: %w", err)
	}
	if err := decodeList(certs, &p.Certifications); err != nil {
		return nil, fmt.Errorf("decode certifications: %w", err)
	}
	if err := decodeList(languages, &p.Languages); err != nil {
		return nil, fmt.Errorf("decode languages: %w", err)
	}

	if rate.Valid {
		p.HourlyRate = &rate.Float64
	}
	if currency.Valid {
		p.Currency = currency.String
	}
	if hours.Valid {
		v := int(hours.Int64)
		p.CoachingHours = &v
	}
	if rating.Valid {
		p.AverageRating = &rating.Float64
	}
	if reviews.Valid {
		v := int(reviews.Int64)
		p.TotalReviews = &v
	}
	return &p, nil
}

// Contact returns the delivery details for coachID.
func (s *Store) Contact(ctx context.Context, coachID string) (*Contact, error) {
	c := Contact{CoachID: coachID}
	var email, phone sql.NullString

	err := s.db.QueryRowContext(ctx, contactQuery, coachID).Scan(&c.Name, &email, &phone, &c.NotificationsEnabled)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, coachID)
	}
	if err != nil {
		return nil, fmt.Errorf("query coach contact %s: %w", coachID, err)
	}

	c.Email = email.String
	c.Phone = phone.String
	return &c, nil
}

// decodeList reads a JSONB array column; NULL leaves dst empty.
func decodeList(raw []byte, dst interface{}) error {
	if len(raw) == 0 {
		return nil
	}
	return json.Unmarshal(raw, dst)
}
