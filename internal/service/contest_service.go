package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/algorank/algorank-api/internal/dto"
	"github.com/algorank/algorank-api/internal/repository"
)

// ContestService exposes contest listings and ranked standings. Standings are
// cached in Redis and invalidated whenever a contest submission is scored.
type ContestService interface {
	List(ctx context.Context) ([]dto.ContestResponse, error)
	Standings(ctx context.Context, contestID string) (dto.ContestStandingsResponse, error)
	// Invalidate drops the cached standings for a contest.
	Invalidate(ctx context.Context, contestID string) error
}

// NewContestService builds the contest read service. cache may be nil, in
// which case every standings read goes to the database.
func NewContestService(
	contestRepo repository.ContestRepository,
	cache *redis.Client,
	cacheTTL time.Duration,
	logger zerolog.Logger,
) ContestService {
	return &contestService{
		contestRepo: contestRepo,
		cache:       cache,
		cacheTTL:    cacheTTL,
		logger:      logger.With().Str("component", "contest_service").Logger(),
	}
}

type contestService struct {
	contestRepo repository.ContestRepository
	cache       *redis.Client
	cacheTTL    time.Duration
	logger      zerolog.Logger
}

func (s *contestService) List(ctx context.Context) ([]dto.ContestResponse, error) {
	contests, err := s.contestRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: listing contests: %v", ErrPersistence, err)
	}

	responses := make([]dto.ContestResponse, 0, len(contests))
	for _, contest := range contests {
		responses = append(responses, dto.NewContestResponse(contest.Contest, contest.ParticipantCount))
	}
	return responses, nil
}

func (s *contestService) Standings(ctx context.Context, contestID string) (dto.ContestStandingsResponse, error) {
	cacheKey := standingsCacheKey(contestID)

	if s.cache != nil {
		if cached, err := s.cache.Get(ctx, cacheKey).Result(); err == nil {
			var response dto.ContestStandingsResponse
			if unmarshalErr := json.Unmarshal([]byte(cached), &response); unmarshalErr == nil {
				s.logger.Debug().Str("contest_id", contestID).Msg("standings cache hit")
				return response, nil
			}
		} else if err != redis.Nil {
			s.logger.Warn().Err(err).Msg("failed to read standings cache")
		}
	}

	if _, err := s.contestRepo.GetByID(ctx, contestID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.ContestStandingsResponse{}, fmt.Errorf("%w: %s", ErrContestNotFound, contestID)
		}
		return dto.ContestStandingsResponse{}, fmt.Errorf("%w: loading contest %s: %v", ErrPersistence, contestID, err)
	}

	participants, err := s.contestRepo.ListStandings(ctx, contestID)
	if err != nil {
		return dto.ContestStandingsResponse{}, fmt.Errorf("%w: loading standings for %s: %v", ErrPersistence, contestID, err)
	}
	response := dto.NewContestStandingsResponse(contestID, participants)

	if s.cache != nil {
		payload, err := json.Marshal(response)
		if err == nil {
			if err := s.cache.Set(ctx, cacheKey, payload, s.cacheTTL).Err(); err != nil {
				s.logger.Warn().Err(err).Msg("failed to store standings cache")
			}
		}
	}

	return response, nil
}

func (s *contestService) Invalidate(ctx context.Context, contestID string) error {
	if s.cache == nil {
		return nil
	}
	return s.cache.Del(ctx, standingsCacheKey(contestID)).Err()
}

func standingsCacheKey(contestID string) string {
	return fmt.Sprintf("standings:contest:%s", contestID)
}
