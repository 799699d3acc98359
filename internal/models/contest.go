package models

import "time"

// Contest lifecycle labels. Transitions are managed elsewhere; the scoring
// pipeline only reads them.
const (
	ContestStatusUpcoming = "upcoming"
	ContestStatusActive   = "active"
	ContestStatusEnded    = "ended"
)

// Contest groups a set of problems with point values for scoreboard scoring.
type Contest struct {
	ID          string    `gorm:"primaryKey;size:128" json:"id"`
	Title       string    `gorm:"size:255;not null" json:"title"`
	Description string    `gorm:"type:text" json:"description"`
	StartTime   time.Time `json:"start_time"`
	EndTime     time.Time `json:"end_time"`
	Status      string    `gorm:"size:16;not null;default:upcoming" json:"status"`
	CreatedAt   time.Time `json:"created_at"`
}

// ContestProblem assigns a problem and its point value to a contest.
type ContestProblem struct {
	ContestID  string `gorm:"primaryKey;size:128" json:"contest_id"`
	ProblemID  string `gorm:"primaryKey;size:128" json:"problem_id"`
	Points     int    `gorm:"not null;default:100" json:"points"`
	OrderIndex int    `gorm:"not null;default:0" json:"order_index"`
}

// ContestParticipant carries a user's recomputed total score for a contest.
// TotalScore is never incremented in place; it is always recomputed from the
// accepted contest-tagged submission history.
type ContestParticipant struct {
	ContestID    string    `gorm:"primaryKey;size:128" json:"contest_id"`
	UserID       string    `gorm:"primaryKey;size:128" json:"user_id"`
	TotalScore   int       `gorm:"not null;default:0" json:"total_score"`
	RegisteredAt time.Time `gorm:"autoCreateTime" json:"registered_at"`
}
