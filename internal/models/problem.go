package models

import "time"

// Problem difficulty labels as found in problem metadata.
const (
	DifficultyEasy   = "easy"
	DifficultyMedium = "medium"
	DifficultyHard   = "hard"
)

// Problem describes a judgeable problem and its aggregate solved counter.
// SolvedCount is monotonically non-decreasing and equals the number of
// distinct users holding a SolvedRecord for the problem.
type Problem struct {
	ID          string    `gorm:"primaryKey;size:128" json:"id"`
	Title       string    `gorm:"size:255;not null" json:"title"`
	Difficulty  string    `gorm:"size:32" json:"difficulty"`
	SolvedCount int       `gorm:"not null;default:0" json:"solved_count"`
	Hidden      bool      `gorm:"not null;default:false" json:"hidden"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// SolvedRecord is the durable fact that a user has at least one accepted
// submission for a problem. The composite primary key is the dedup gate for
// the solved counter: the counter is incremented only when inserting this
// row actually created it.
type SolvedRecord struct {
	ProblemID string    `gorm:"primaryKey;size:128" json:"problem_id"`
	UserID    string    `gorm:"primaryKey;size:128" json:"user_id"`
	SolvedAt  time.Time `gorm:"autoCreateTime" json:"solved_at"`
}
