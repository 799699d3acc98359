package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/algorank/algorank-api/internal/dto"
	"github.com/algorank/algorank-api/internal/repository"
)

// ProblemService exposes the public problem catalog.
type ProblemService interface {
	List(ctx context.Context) ([]dto.ProblemResponse, error)
	Get(ctx context.Context, id string) (dto.ProblemResponse, error)
}

// NewProblemService builds the problem read service.
func NewProblemService(problemRepo repository.ProblemRepository, logger zerolog.Logger) ProblemService {
	return &problemService{
		problemRepo: problemRepo,
		logger:      logger.With().Str("component", "problem_service").Logger(),
	}
}

type problemService struct {
	problemRepo repository.ProblemRepository
	logger      zerolog.Logger
}

func (s *problemService) List(ctx context.Context) ([]dto.ProblemResponse, error) {
	problems, err := s.problemRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: listing problems: %v", ErrPersistence, err)
	}
	return dto.NewProblemResponseSlice(problems), nil
}

func (s *problemService) Get(ctx context.Context, id string) (dto.ProblemResponse, error) {
	problem, err := s.problemRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.ProblemResponse{}, fmt.Errorf("%w: %s", ErrProblemNotFound, id)
		}
		return dto.ProblemResponse{}, fmt.Errorf("%w: loading problem %s: %v", ErrPersistence, id, err)
	}
	return dto.NewProblemResponse(problem), nil
}
