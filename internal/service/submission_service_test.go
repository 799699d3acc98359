package service

import (
	"context"
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/algorank/algorank-api/internal/dto"
	"github.com/algorank/algorank-api/internal/models"
	"github.com/algorank/algorank-api/internal/repository"
	"github.com/algorank/algorank-api/pkg/judge0"
	"github.com/algorank/algorank-api/pkg/testcases"
)

type stubJudge struct {
	results   []judge0.Result
	err       error
	calls     int
	lastBatch judge0.BatchRequest
}

func (s *stubJudge) RunBatch(_ context.Context, req judge0.BatchRequest) ([]judge0.Result, error) {
	s.calls++
	s.lastBatch = req
	if s.err != nil {
		return nil, s.err
	}
	return s.results, nil
}

func (s *stubJudge) LanguageID(slug string) (int, bool) {
	id, ok := judge0.DefaultLanguages()[slug]
	return id, ok
}

func writeTestCases(t *testing.T, root, problemID string, count int) {
	t.Helper()
	inputs := filepath.Join(root, problemID, "inputs")
	outputs := filepath.Join(root, problemID, "outputs")
	require.NoError(t, os.MkdirAll(inputs, 0o755))
	require.NoError(t, os.MkdirAll(outputs, 0o755))
	for i := 1; i <= count; i++ {
		n := strconv.Itoa(i)
		require.NoError(t, os.WriteFile(filepath.Join(inputs, "input"+n+".txt"), []byte("in "+n+"\n"), 0o644))
		require.NoError(t, os.WriteFile(filepath.Join(outputs, "output"+n+".txt"), []byte("out "+n+"\n"), 0o644))
	}
}

func acceptedResults(count int) []judge0.Result {
	results := make([]judge0.Result, 0, count)
	for i := 0; i < count; i++ {
		results = append(results, judge0.Result{
			Status: judge0.Status{ID: 3, Description: "Accepted"},
			Time:   strPtr("0.01"),
			Memory: intPtr(2048),
		})
	}
	return results
}

func newSubmissionFixture(t *testing.T, judge *stubJudge) (*gorm.DB, SubmissionService, string) {
	t.Helper()
	db := setupTestDB(t)
	root := t.TempDir()

	submissionRepo := repository.NewSubmissionRepository(db)
	problemRepo := repository.NewProblemRepository(db)
	contestRepo := repository.NewContestRepository(db)
	scoring := NewScoringService(submissionRepo, problemRepo, contestRepo, nil, nil, zerolog.Nop())

	svc := NewSubmissionService(
		validator.New(),
		problemRepo,
		submissionRepo,
		scoring,
		judge,
		testcases.NewFSStore(root),
		0,
		zerolog.Nop(),
	)
	return db, svc, root
}

func submitRequest(id string) dto.SubmitRequest {
	return dto.SubmitRequest{
		ProblemID:    "two-sum",
		UserID:       "alice",
		SubmissionID: id,
		Code:         "print(input())",
		Language:     "python",
	}
}

func TestSubmitAcceptedEndToEnd(t *testing.T) {
	judge := &stubJudge{results: acceptedResults(2)}
	db, svc, root := newSubmissionFixture(t, judge)
	require.NoError(t, db.Create(&models.Problem{ID: "two-sum", Title: "Two Sum", Difficulty: models.DifficultyEasy}).Error)
	writeTestCases(t, root, "two-sum", 2)

	response, err := svc.Submit(context.Background(), submitRequest("sub-1"))
	require.NoError(t, err)
	require.Equal(t, models.SubmissionStatusAccepted, response.Status)
	require.Equal(t, 2, response.TestCasesPassed)
	require.Equal(t, 2, response.TotalTestCases)
	require.Len(t, response.TestCases, 2)
	require.Equal(t, 10, response.TestCases[0].ExecutionTimeMs)

	require.Equal(t, 1, judge.calls)
	require.Len(t, judge.lastBatch.Items, 2)
	require.Equal(t, "in 1", judge.lastBatch.Items[0].Stdin)
	require.Equal(t, "out 2", judge.lastBatch.Items[1].ExpectedOutput)

	var problem models.Problem
	require.NoError(t, db.First(&problem, "id = ?", "two-sum").Error)
	require.Equal(t, 1, problem.SolvedCount)
}

func TestSubmitDuplicateIDReturnsStoredVerdict(t *testing.T) {
	judge := &stubJudge{results: acceptedResults(2)}
	db, svc, root := newSubmissionFixture(t, judge)
	require.NoError(t, db.Create(&models.Problem{ID: "two-sum", Title: "Two Sum", Difficulty: models.DifficultyEasy}).Error)
	writeTestCases(t, root, "two-sum", 2)

	first, err := svc.Submit(context.Background(), submitRequest("sub-1"))
	require.NoError(t, err)

	replay, err := svc.Submit(context.Background(), submitRequest("sub-1"))
	require.NoError(t, err)
	require.Equal(t, first.Status, replay.Status)
	require.Equal(t, first.TestCasesPassed, replay.TestCasesPassed)
	require.Equal(t, first.TotalTestCases, replay.TotalTestCases)

	// The replay never reached the execution backend.
	require.Equal(t, 1, judge.calls)

	var problem models.Problem
	require.NoError(t, db.First(&problem, "id = ?", "two-sum").Error)
	require.Equal(t, 1, problem.SolvedCount)

	var resultCount int64
	require.NoError(t, db.Model(&models.TestCaseResult{}).Count(&resultCount).Error)
	require.EqualValues(t, 2, resultCount)
}

func TestSubmitTimeoutLeavesSubmissionPending(t *testing.T) {
	judge := &stubJudge{err: judge0.ErrTimeout}
	db, svc, root := newSubmissionFixture(t, judge)
	require.NoError(t, db.Create(&models.Problem{ID: "two-sum", Title: "Two Sum", Difficulty: models.DifficultyEasy}).Error)
	writeTestCases(t, root, "two-sum", 1)

	_, err := svc.Submit(context.Background(), submitRequest("sub-1"))
	require.ErrorIs(t, err, ErrExecutionTimeout)

	var stored models.Submission
	require.NoError(t, db.First(&stored, "id = ?", "sub-1").Error)
	require.Equal(t, models.SubmissionStatusPending, stored.Status)
}

func TestSubmitRetryAfterTimeoutJudgesAgain(t *testing.T) {
	judge := &stubJudge{err: judge0.ErrTimeout}
	db, svc, root := newSubmissionFixture(t, judge)
	require.NoError(t, db.Create(&models.Problem{ID: "two-sum", Title: "Two Sum", Difficulty: models.DifficultyEasy}).Error)
	writeTestCases(t, root, "two-sum", 1)

	_, err := svc.Submit(context.Background(), submitRequest("sub-1"))
	require.ErrorIs(t, err, ErrExecutionTimeout)

	judge.err = nil
	judge.results = acceptedResults(1)

	response, err := svc.Submit(context.Background(), submitRequest("sub-1"))
	require.NoError(t, err)
	require.Equal(t, models.SubmissionStatusAccepted, response.Status)
	require.Equal(t, 2, judge.calls)
}

func TestSubmitBackendFailure(t *testing.T) {
	judge := &stubJudge{err: judge0.ErrBackend}
	db, svc, root := newSubmissionFixture(t, judge)
	require.NoError(t, db.Create(&models.Problem{ID: "two-sum", Title: "Two Sum", Difficulty: models.DifficultyEasy}).Error)
	writeTestCases(t, root, "two-sum", 1)

	_, err := svc.Submit(context.Background(), submitRequest("sub-1"))
	require.ErrorIs(t, err, ErrExecutionBackend)
}

func TestSubmitUnknownProblem(t *testing.T) {
	_, svc, _ := newSubmissionFixture(t, &stubJudge{})

	_, err := svc.Submit(context.Background(), submitRequest("sub-1"))
	require.ErrorIs(t, err, ErrProblemNotFound)
}

func TestSubmitUnsupportedLanguage(t *testing.T) {
	db, svc, _ := newSubmissionFixture(t, &stubJudge{})
	require.NoError(t, db.Create(&models.Problem{ID: "two-sum", Title: "Two Sum", Difficulty: models.DifficultyEasy}).Error)

	req := submitRequest("sub-1")
	req.Language = "cobol"
	_, err := svc.Submit(context.Background(), req)
	require.ErrorIs(t, err, ErrUnsupportedLanguage)
}

func TestSubmitMissingTestCases(t *testing.T) {
	db, svc, _ := newSubmissionFixture(t, &stubJudge{})
	require.NoError(t, db.Create(&models.Problem{ID: "two-sum", Title: "Two Sum", Difficulty: models.DifficultyEasy}).Error)

	_, err := svc.Submit(context.Background(), submitRequest("sub-1"))
	require.ErrorIs(t, err, ErrTestCasesNotFound)
}

func TestSubmitValidationFailure(t *testing.T) {
	_, svc, _ := newSubmissionFixture(t, &stubJudge{})

	req := submitRequest("sub-1")
	req.Code = ""
	_, err := svc.Submit(context.Background(), req)
	require.Error(t, err)
	require.NotErrorIs(t, err, ErrProblemNotFound)
}

func TestGetSubmissionDetail(t *testing.T) {
	judge := &stubJudge{results: acceptedResults(1)}
	db, svc, root := newSubmissionFixture(t, judge)
	require.NoError(t, db.Create(&models.Problem{ID: "two-sum", Title: "Two Sum", Difficulty: models.DifficultyEasy}).Error)
	writeTestCases(t, root, "two-sum", 1)

	_, err := svc.Submit(context.Background(), submitRequest("sub-1"))
	require.NoError(t, err)

	detail, err := svc.Get(context.Background(), "sub-1")
	require.NoError(t, err)
	require.Equal(t, "sub-1", detail.ID)
	require.Equal(t, models.SubmissionStatusAccepted, detail.Status)
	require.Len(t, detail.TestCases, 1)

	_, err = svc.Get(context.Background(), "missing")
	require.ErrorIs(t, err, ErrSubmissionNotFound)
}
