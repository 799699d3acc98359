package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/algorank/algorank-api/internal/models"
)

// SubmissionRepository exposes persistence operations for submissions and
// their per-test-case results.
type SubmissionRepository interface {
	// Insert creates the submission row if absent and reports whether this
	// call created it. A duplicate submission id is not an error: it is a
	// retry of the same logical submission.
	Insert(ctx context.Context, submission *models.Submission) (bool, error)
	GetByID(ctx context.Context, id string) (models.Submission, error)
	UpdateStatus(ctx context.Context, id, status string) error
	// SaveTestCaseResults appends result rows; replays of already stored
	// (submission, number) pairs are silently skipped.
	SaveTestCaseResults(ctx context.Context, results []models.TestCaseResult) error
}

// NewSubmissionRepository constructs a submission repository.
func NewSubmissionRepository(db *gorm.DB) SubmissionRepository {
	return &submissionRepository{db: db}
}

type submissionRepository struct {
	db *gorm.DB
}

func (r *submissionRepository) Insert(ctx context.Context, submission *models.Submission) (bool, error) {
	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(submission)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

func (r *submissionRepository) GetByID(ctx context.Context, id string) (models.Submission, error) {
	var submission models.Submission
	err := r.db.WithContext(ctx).
		Preload("TestCaseResults", func(db *gorm.DB) *gorm.DB {
			return db.Order("number ASC")
		}).
		First(&submission, "id = ?", id).Error
	if err != nil {
		return models.Submission{}, err
	}
	return submission, nil
}

func (r *submissionRepository) UpdateStatus(ctx context.Context, id, status string) error {
	return r.db.WithContext(ctx).
		Model(&models.Submission{}).
		Where("id = ?", id).
		Update("status", status).Error
}

func (r *submissionRepository) SaveTestCaseResults(ctx context.Context, results []models.TestCaseResult) error {
	if len(results) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&results).Error
}
