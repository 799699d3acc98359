package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/algorank/algorank-api/internal/dto"
	"github.com/algorank/algorank-api/internal/models"
	"github.com/algorank/algorank-api/internal/repository"
)

// StandingsInvalidator drops any cached scoreboard for a contest after its
// scores changed.
type StandingsInvalidator interface {
	Invalidate(ctx context.Context, contestID string) error
}

// JudgedEventPublisher announces that a contest-tagged submission finished
// judging.
type JudgedEventPublisher interface {
	PublishJudged(ctx context.Context, event dto.JudgedEvent) error
}

// RecordOutcome reports what finalizing a submission changed.
type RecordOutcome struct {
	Status       string
	FirstSolve   bool
	ContestScore *int
}

// ScoringService finalizes judged submissions: it persists per-case results,
// settles the submission status, maintains solved counts, and recomputes
// contest scores. Every write is safe to replay.
type ScoringService interface {
	// RegisterSubmission stores the pending submission if its id is new and
	// reports whether this call created it.
	RegisterSubmission(ctx context.Context, submission *models.Submission) (bool, error)
	// RecordResult applies the aggregated verdict to a submission.
	RecordResult(ctx context.Context, submission models.Submission, aggregation Aggregation) (RecordOutcome, error)
}

// NewScoringService constructs the scoring service. invalidator and publisher
// may be nil when standings caching or event fan-out is not wired.
func NewScoringService(
	submissionRepo repository.SubmissionRepository,
	problemRepo repository.ProblemRepository,
	contestRepo repository.ContestRepository,
	invalidator StandingsInvalidator,
	publisher JudgedEventPublisher,
	logger zerolog.Logger,
) ScoringService {
	return &scoringService{
		submissionRepo: submissionRepo,
		problemRepo:    problemRepo,
		contestRepo:    contestRepo,
		invalidator:    invalidator,
		publisher:      publisher,
		logger:         logger.With().Str("component", "scoring_service").Logger(),
	}
}

type scoringService struct {
	submissionRepo repository.SubmissionRepository
	problemRepo    repository.ProblemRepository
	contestRepo    repository.ContestRepository
	invalidator    StandingsInvalidator
	publisher      JudgedEventPublisher
	logger         zerolog.Logger
}

func (s *scoringService) RegisterSubmission(ctx context.Context, submission *models.Submission) (bool, error) {
	created, err := s.submissionRepo.Insert(ctx, submission)
	if err != nil {
		return false, fmt.Errorf("%w: registering submission %s: %v", ErrPersistence, submission.ID, err)
	}
	if !created {
		s.logger.Info().
			Str("submission_id", submission.ID).
			Msg("duplicate submission id, keeping existing record")
	}
	return created, nil
}

func (s *scoringService) RecordResult(ctx context.Context, submission models.Submission, aggregation Aggregation) (RecordOutcome, error) {
	rows := make([]models.TestCaseResult, 0, len(aggregation.Outcomes))
	for _, outcome := range aggregation.Outcomes {
		rows = append(rows, models.TestCaseResult{
			SubmissionID:    submission.ID,
			Number:          outcome.Number,
			Passed:          outcome.Passed,
			ExecutionTimeMs: outcome.ExecutionTimeMs,
			MemoryKB:        outcome.MemoryKB,
			Verdict:         outcome.Verdict,
			Raw:             datatypes.JSONMap(outcome.Raw),
		})
	}
	if err := s.submissionRepo.SaveTestCaseResults(ctx, rows); err != nil {
		return RecordOutcome{}, fmt.Errorf("%w: saving test case results for %s: %v", ErrPersistence, submission.ID, err)
	}

	status := models.SubmissionStatusRejected
	if aggregation.Accepted {
		status = models.SubmissionStatusAccepted
	}
	if err := s.submissionRepo.UpdateStatus(ctx, submission.ID, status); err != nil {
		return RecordOutcome{}, fmt.Errorf("%w: finalizing submission %s: %v", ErrPersistence, submission.ID, err)
	}

	outcome := RecordOutcome{Status: status}
	if aggregation.Accepted {
		firstSolve, err := s.creditSolve(ctx, submission)
		if err != nil {
			return RecordOutcome{}, err
		}
		outcome.FirstSolve = firstSolve
	}

	if submission.IsContestScoped() {
		score, err := s.settleContest(ctx, submission, status)
		if err != nil {
			return RecordOutcome{}, err
		}
		outcome.ContestScore = score
	}

	return outcome, nil
}

// creditSolve bumps the problem's solved count only for a user's first
// accepted submission. The solved record insert is the gate: whichever call
// wins the insert does the increment, replays and re-solves do not.
func (s *scoringService) creditSolve(ctx context.Context, submission models.Submission) (bool, error) {
	first, err := s.problemRepo.MarkSolved(ctx, submission.ProblemID, submission.UserID)
	if err != nil {
		return false, fmt.Errorf("%w: recording solve for %s: %v", ErrPersistence, submission.ID, err)
	}
	if !first {
		return false, nil
	}
	if err := s.problemRepo.IncrementSolvedCount(ctx, submission.ProblemID); err != nil {
		return false, fmt.Errorf("%w: incrementing solved count for %s: %v", ErrPersistence, submission.ProblemID, err)
	}
	s.logger.Info().
		Str("problem_id", submission.ProblemID).
		Str("user_id", submission.UserID).
		Msg("first solve credited")
	return true, nil
}

// settleContest recomputes the participant's total from scratch. Scores are
// never incremented: the recompute makes replays and out-of-order results
// converge on the same total.
func (s *scoringService) settleContest(ctx context.Context, submission models.Submission, status string) (*int, error) {
	contestID := *submission.ContestID

	_, err := s.contestRepo.GetContestProblem(ctx, contestID, submission.ProblemID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		s.logger.Warn().
			Str("contest_id", contestID).
			Str("problem_id", submission.ProblemID).
			Str("submission_id", submission.ID).
			Msg("submission tagged with contest that does not include its problem, skipping scoring")
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: loading contest problem %s/%s: %v", ErrPersistence, contestID, submission.ProblemID, err)
	}

	score, err := s.contestRepo.RecomputeParticipantScore(ctx, contestID, submission.UserID)
	if err != nil {
		return nil, fmt.Errorf("%w: recomputing score for %s in %s: %v", ErrPersistence, submission.UserID, contestID, err)
	}

	if s.invalidator != nil {
		if err := s.invalidator.Invalidate(ctx, contestID); err != nil {
			s.logger.Warn().Err(err).
				Str("contest_id", contestID).
				Msg("standings cache invalidation failed")
		}
	}
	if s.publisher != nil {
		event := dto.JudgedEvent{
			SubmissionID: submission.ID,
			ContestID:    contestID,
			ProblemID:    submission.ProblemID,
			UserID:       submission.UserID,
			Status:       status,
			TotalScore:   score,
			JudgedAt:     time.Now().UTC(),
		}
		if err := s.publisher.PublishJudged(ctx, event); err != nil {
			s.logger.Warn().Err(err).
				Str("contest_id", contestID).
				Msg("judged event publish failed")
		}
	}

	return &score, nil
}
