package recorder

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	apperrors "assessment-engine/internal/common/errors"
	"assessment-engine/internal/common/logger"
	"assessment-engine/internal/models"
)

const profileCachePrefix = "profile:"

const selectProfileQuery = `SELECT user_id, full_name, class_level, state, city, interests, constraints FROM learner_profiles WHERE user_id = $1`

// ProfileStore reads learner profiles from postgres through a redis cache.
// The cache is best effort: redis failures fall through to the database.
type ProfileStore struct {
	db     *sql.DB
	redis  *redis.Client
	ttl    time.Duration
	logger logger.Logger
}

func NewProfileStore(db *sql.DB, rdb *redis.Client, ttl time.Duration, log logger.Logger) *ProfileStore {
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	return &ProfileStore{
		db:     db,
		redis:  rdb,
		ttl:    ttl,
		logger: logger.Component(log, "profile-store"),
	}
}

func cacheKey(userID string) string {
	return profileCachePrefix + userID
}

// Get returns PROFILE_NOT_FOUND when the learner has no stored profile.
func (s *ProfileStore) Get(ctx context.Context, userID string) (*models.StudentProfile, error) {
	key := cacheKey(userID)

	if s.redis != nil {
		val, err := s.redis.Get(ctx, key).Result()
		switch {
		case err == nil:
			var profile models.StudentProfile
			if err := json.Unmarshal([]byte(val), &profile); err == nil {
				return &profile, nil
			}
			s.logger.Warn("discarding unreadable cached profile", map[string]interface{}{"userId": userID})
		case !errors.Is(err, redis.Nil):
			s.logger.Warn("profile cache unavailable", map[string]interface{}{"userId": userID, "error": err})
		}
	}

	var (
		profile     models.StudentProfile
		classLevel  string
		interests   []byte
		constraints []byte
	)
	err := s.db.QueryRowContext(ctx, selectProfileQuery, userID).Scan(
		&profile.UserID, &profile.FullName, &classLevel, &profile.State, &profile.City, &interests, &constraints,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.NewProfileNotFoundError(userID)
		}
		return nil, apperrors.NewProfileLookupFailedError(err)
	}
	profile.ClassLevel = models.ClassLevel(classLevel)

	if len(interests) > 0 {
		if err := json.Unmarshal(interests, &profile.Interests); err != nil {
			return nil, apperrors.NewProfileLookupFailedError(fmt.Errorf("decode interests: %w", err))
		}
	}
	if len(constraints) > 0 {
		if err := json.Unmarshal(constraints, &profile.Constraints); err != nil {
			return nil, apperrors.NewProfileLookupFailedError(fmt.Errorf("decode constraints: %w", err))
		}
	}

	if s.redis != nil {
		data, _ := json.Marshal(profile)
		if err := s.redis.Set(ctx, key, data, s.ttl).Err(); err != nil {
			s.logger.Debug("failed to cache profile", map[string]interface{}{"userId": userID, "error": err})
		}
	}

	return &profile, nil
}

// Invalidate drops the cached copy so the next Get reads postgres.
func (s *ProfileStore) Invalidate(ctx context.Context, userID string) error {
	if s.redis == nil {
		return nil
	}
	return s.redis.Del(ctx, cacheKey(userID)).Err()
}
