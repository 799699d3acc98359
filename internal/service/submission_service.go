package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/algorank/algorank-api/internal/dto"
	"github.com/algorank/algorank-api/internal/models"
	"github.com/algorank/algorank-api/internal/observability"
	"github.com/algorank/algorank-api/internal/repository"
	"github.com/algorank/algorank-api/pkg/judge0"
	"github.com/algorank/algorank-api/pkg/testcases"
)

// SubmissionService runs the judging pipeline end to end: load test cases,
// execute the batch on the backend, aggregate the verdict, and settle scores.
type SubmissionService interface {
	Submit(ctx context.Context, req dto.SubmitRequest) (dto.SubmitResponse, error)
	Get(ctx context.Context, id string) (dto.SubmissionDetailResponse, error)
}

// NewSubmissionService constructs the judging pipeline service.
func NewSubmissionService(
	validate *validator.Validate,
	problemRepo repository.ProblemRepository,
	submissionRepo repository.SubmissionRepository,
	scoring ScoringService,
	judge judge0.Client,
	cases testcases.Store,
	acceptedStatusID int,
	logger zerolog.Logger,
) SubmissionService {
	componentLogger := logger.With().Str("component", "submission_service").Logger()
	return &submissionService{
		validate:       validate,
		problemRepo:    problemRepo,
		submissionRepo: submissionRepo,
		scoring:        scoring,
		judge:          judge,
		cases:          cases,
		aggregator:     newVerdictAggregator(acceptedStatusID, componentLogger),
		logger:         componentLogger,
		tracer:         otel.Tracer("github.com/algorank/algorank-api/internal/service/submission"),
	}
}

type submissionService struct {
	validate       *validator.Validate
	problemRepo    repository.ProblemRepository
	submissionRepo repository.SubmissionRepository
	scoring        ScoringService
	judge          judge0.Client
	cases          testcases.Store
	aggregator     *verdictAggregator
	logger         zerolog.Logger
	tracer         trace.Tracer
}

func (s *submissionService) Submit(ctx context.Context, req dto.SubmitRequest) (dto.SubmitResponse, error) {
	ctx, span := s.tracer.Start(ctx, "submission.judge", trace.WithAttributes(
		attribute.String("submission.id", req.SubmissionID),
		attribute.String("problem.id", req.ProblemID),
		attribute.String("submission.language", req.Language),
	))
	defer span.End()

	if err := s.validate.Struct(req); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "validation failed")
		return dto.SubmitResponse{}, err
	}

	if _, err := s.problemRepo.GetByID(ctx, req.ProblemID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.SubmitResponse{}, fmt.Errorf("%w: %s", ErrProblemNotFound, req.ProblemID)
		}
		return dto.SubmitResponse{}, fmt.Errorf("%w: loading problem %s: %v", ErrPersistence, req.ProblemID, err)
	}

	languageID, ok := s.judge.LanguageID(req.Language)
	if !ok {
		return dto.SubmitResponse{}, fmt.Errorf("%w: %s", ErrUnsupportedLanguage, req.Language)
	}

	testSet, err := s.cases.Load(ctx, req.ProblemID)
	if err != nil {
		span.RecordError(err)
		switch {
		case errors.Is(err, testcases.ErrNotFound):
			return dto.SubmitResponse{}, fmt.Errorf("%w: problem %s", ErrTestCasesNotFound, req.ProblemID)
		case errors.Is(err, testcases.ErrEmptyTestSet):
			return dto.SubmitResponse{}, fmt.Errorf("%w: problem %s", ErrEmptyTestSet, req.ProblemID)
		default:
			return dto.SubmitResponse{}, err
		}
	}
	span.SetAttributes(attribute.Int("testcases.count", len(testSet)))

	submission := models.Submission{
		ID:        req.SubmissionID,
		ProblemID: req.ProblemID,
		UserID:    req.UserID,
		Language:  req.Language,
		Code:      req.Code,
		Status:    models.SubmissionStatusPending,
	}
	if req.ContestID != "" {
		contestID := req.ContestID
		submission.ContestID = &contestID
	}

	created, err := s.scoring.RegisterSubmission(ctx, &submission)
	if err != nil {
		span.RecordError(err)
		return dto.SubmitResponse{}, err
	}
	if !created {
		stored, err := s.submissionRepo.GetByID(ctx, req.SubmissionID)
		if err != nil {
			return dto.SubmitResponse{}, fmt.Errorf("%w: loading submission %s: %v", ErrPersistence, req.SubmissionID, err)
		}
		// A finished record answers the retry from storage. A pending one
		// means the earlier attempt died mid-judge, so run the pipeline
		// again: every downstream write tolerates the replay.
		if stored.Status != models.SubmissionStatusPending {
			span.SetAttributes(attribute.Bool("submission.replayed", true))
			return storedSubmitResponse(stored), nil
		}
	}

	items := make([]judge0.Item, 0, len(testSet))
	for _, testCase := range testSet {
		items = append(items, judge0.Item{
			Stdin:          testCase.Input,
			ExpectedOutput: testCase.ExpectedOutput,
		})
	}

	started := time.Now()
	results, err := s.judge.RunBatch(ctx, judge0.BatchRequest{
		LanguageID: languageID,
		SourceCode: req.Code,
		Items:      items,
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "execution backend failure")
		// The submission stays pending: no test case was positively
		// confirmed, so no verdict may be recorded.
		switch {
		case errors.Is(err, judge0.ErrTimeout):
			observability.JudgeFailures().WithLabelValues("timeout").Inc()
			return dto.SubmitResponse{}, fmt.Errorf("%w: submission %s", ErrExecutionTimeout, req.SubmissionID)
		default:
			observability.JudgeFailures().WithLabelValues("backend").Inc()
			return dto.SubmitResponse{}, fmt.Errorf("%w: submission %s: %v", ErrExecutionBackend, req.SubmissionID, err)
		}
	}
	observability.JudgeLatency().WithLabelValues(req.Language).Observe(time.Since(started).Seconds())

	aggregation := s.aggregator.Aggregate(results)
	outcome, err := s.scoring.RecordResult(ctx, submission, aggregation)
	if err != nil {
		span.RecordError(err)
		return dto.SubmitResponse{}, err
	}

	observability.Submissions().WithLabelValues(outcome.Status, req.Language).Inc()
	observability.TestCasesJudged().Add(float64(len(aggregation.Outcomes)))
	if outcome.ContestScore != nil {
		observability.ContestRecomputes().Inc()
	}

	s.logger.Info().
		Str("submission_id", req.SubmissionID).
		Str("problem_id", req.ProblemID).
		Str("status", outcome.Status).
		Int("passed", aggregation.Passed).
		Int("total", len(aggregation.Outcomes)).
		Msg("submission judged")

	response := dto.SubmitResponse{
		SubmissionID:    req.SubmissionID,
		Status:          outcome.Status,
		TestCasesPassed: aggregation.Passed,
		TotalTestCases:  len(aggregation.Outcomes),
		ContestID:       req.ContestID,
		ContestScore:    outcome.ContestScore,
	}
	for _, caseOutcome := range aggregation.Outcomes {
		response.TestCases = append(response.TestCases, dto.TestCaseResultResponse{
			Number:          caseOutcome.Number,
			Passed:          caseOutcome.Passed,
			ExecutionTimeMs: caseOutcome.ExecutionTimeMs,
			MemoryKB:        caseOutcome.MemoryKB,
			Verdict:         caseOutcome.Verdict,
		})
	}
	return response, nil
}

func (s *submissionService) Get(ctx context.Context, id string) (dto.SubmissionDetailResponse, error) {
	submission, err := s.submissionRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.SubmissionDetailResponse{}, fmt.Errorf("%w: %s", ErrSubmissionNotFound, id)
		}
		return dto.SubmissionDetailResponse{}, fmt.Errorf("%w: loading submission %s: %v", ErrPersistence, id, err)
	}
	return dto.NewSubmissionDetailResponse(submission), nil
}

func storedSubmitResponse(submission models.Submission) dto.SubmitResponse {
	response := dto.SubmitResponse{
		SubmissionID:   submission.ID,
		Status:         submission.Status,
		TotalTestCases: len(submission.TestCaseResults),
	}
	if submission.ContestID != nil {
		response.ContestID = *submission.ContestID
	}
	for _, result := range submission.TestCaseResults {
		if result.Passed {
			response.TestCasesPassed++
		}
		response.TestCases = append(response.TestCases, dto.NewTestCaseResultResponse(result))
	}
	return response
}
