package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/algorank/algorank-api/internal/models"
)

// ContestWithParticipants is a contest row joined with its participant count.
type ContestWithParticipants struct {
	models.Contest
	ParticipantCount int
}

// ContestRepository exposes persistence operations for contests and
// scoreboard state.
type ContestRepository interface {
	List(ctx context.Context) ([]ContestWithParticipants, error)
	GetByID(ctx context.Context, id string) (models.Contest, error)
	GetContestProblem(ctx context.Context, contestID, problemID string) (models.ContestProblem, error)
	// RecomputeParticipantScore derives the participant's total from the
	// authoritative accepted-submission history and upserts it. It never
	// increments: recomputation is what keeps resubmissions and races from
	// inflating the score.
	RecomputeParticipantScore(ctx context.Context, contestID, userID string) (int, error)
	ListStandings(ctx context.Context, contestID string) ([]models.ContestParticipant, error)
}

// NewContestRepository constructs a contest repository.
func NewContestRepository(db *gorm.DB) ContestRepository {
	return &contestRepository{db: db}
}

type contestRepository struct {
	db *gorm.DB
}

func (r *contestRepository) List(ctx context.Context) ([]ContestWithParticipants, error) {
	var rows []ContestWithParticipants
	err := r.db.WithContext(ctx).
		Model(&models.Contest{}).
		Select("contests.*, COUNT(participants.user_id) AS participant_count").
		Joins("LEFT JOIN contest_participants participants ON participants.contest_id = contests.id").
		Group("contests.id").
		Order("contests.start_time DESC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *contestRepository) GetByID(ctx context.Context, id string) (models.Contest, error) {
	var contest models.Contest
	if err := r.db.WithContext(ctx).First(&contest, "id = ?", id).Error; err != nil {
		return models.Contest{}, err
	}
	return contest, nil
}

func (r *contestRepository) GetContestProblem(ctx context.Context, contestID, problemID string) (models.ContestProblem, error) {
	var contestProblem models.ContestProblem
	err := r.db.WithContext(ctx).
		First(&contestProblem, "contest_id = ? AND problem_id = ?", contestID, problemID).Error
	if err != nil {
		return models.ContestProblem{}, err
	}
	return contestProblem, nil
}

const participantScoreQuery = `
SELECT COALESCE(SUM(cp.points), 0)
FROM contest_problems cp
WHERE cp.contest_id = ?
  AND EXISTS (
    SELECT 1 FROM submissions s
    WHERE s.problem_id = cp.problem_id
      AND s.contest_id = cp.contest_id
      AND s.user_id = ?
      AND s.status = ?
  )`

func (r *contestRepository) RecomputeParticipantScore(ctx context.Context, contestID, userID string) (int, error) {
	var score int
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Raw(participantScoreQuery, contestID, userID, models.SubmissionStatusAccepted).
			Scan(&score).Error; err != nil {
			return err
		}

		participant := models.ContestParticipant{
			ContestID:  contestID,
			UserID:     userID,
			TotalScore: score,
		}
		return tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "contest_id"}, {Name: "user_id"}},
			DoUpdates: clause.Assignments(map[string]interface{}{"total_score": score}),
		}).Create(&participant).Error
	})
	if err != nil {
		return 0, err
	}
	return score, nil
}

func (r *contestRepository) ListStandings(ctx context.Context, contestID string) ([]models.ContestParticipant, error) {
	var participants []models.ContestParticipant
	err := r.db.WithContext(ctx).
		Where("contest_id = ?", contestID).
		Order("total_score DESC, registered_at ASC").
		Find(&participants).Error
	if err != nil {
		return nil, err
	}
	return participants, nil
}
