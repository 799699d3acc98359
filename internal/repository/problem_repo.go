package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/algorank/algorank-api/internal/models"
)

// ProblemRepository exposes persistence operations for problems and the
// per-user solved set.
type ProblemRepository interface {
	List(ctx context.Context) ([]models.Problem, error)
	GetByID(ctx context.Context, id string) (models.Problem, error)
	Upsert(ctx context.Context, problem *models.Problem) error
	// MarkSolved inserts the (problem, user) solved record if absent and
	// reports whether this call created it. The uniqueness constraint makes
	// the check-then-act atomic under concurrent submissions.
	MarkSolved(ctx context.Context, problemID, userID string) (bool, error)
	IncrementSolvedCount(ctx context.Context, problemID string) error
}

// NewProblemRepository constructs a problem repository.
func NewProblemRepository(db *gorm.DB) ProblemRepository {
	return &problemRepository{db: db}
}

type problemRepository struct {
	db *gorm.DB
}

func (r *problemRepository) List(ctx context.Context) ([]models.Problem, error) {
	var problems []models.Problem
	err := r.db.WithContext(ctx).
		Where("hidden = ?", false).
		Order("id ASC").
		Find(&problems).Error
	if err != nil {
		return nil, err
	}
	return problems, nil
}

func (r *problemRepository) GetByID(ctx context.Context, id string) (models.Problem, error) {
	var problem models.Problem
	if err := r.db.WithContext(ctx).First(&problem, "id = ?", id).Error; err != nil {
		return models.Problem{}, err
	}
	return problem, nil
}

func (r *problemRepository) Upsert(ctx context.Context, problem *models.Problem) error {
	// Metadata sync never touches solved_count.
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns([]string{"title", "difficulty", "hidden", "updated_at"}),
		}).
		Create(problem).Error
}

func (r *problemRepository) MarkSolved(ctx context.Context, problemID, userID string) (bool, error) {
	record := models.SolvedRecord{ProblemID: problemID, UserID: userID}
	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&record)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

func (r *problemRepository) IncrementSolvedCount(ctx context.Context, problemID string) error {
	return r.db.WithContext(ctx).
		Model(&models.Problem{}).
		Where("id = ?", problemID).
		UpdateColumn("solved_count", gorm.Expr("solved_count + ?", 1)).Error
}
