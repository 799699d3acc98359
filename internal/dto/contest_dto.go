package dto

import (
	"time"

	"github.com/algorank/algorank-api/internal/models"
)

// ContestResponse represents a contest in listings.
type ContestResponse struct {
	ID               string    `json:"id"`
	Title            string    `json:"title"`
	Description      string    `json:"description"`
	StartTime        time.Time `json:"start_time"`
	EndTime          time.Time `json:"end_time"`
	Status           string    `json:"status"`
	ParticipantCount int       `json:"participant_count"`
}

// StandingsEntry is one ranked participant on a contest scoreboard.
type StandingsEntry struct {
	Rank       int    `json:"rank"`
	UserID     string `json:"user_id"`
	TotalScore int    `json:"total_score"`
}

// ContestStandingsResponse is the ranked scoreboard for one contest.
type ContestStandingsResponse struct {
	ContestID string           `json:"contest_id"`
	Standings []StandingsEntry `json:"standings"`
}

// JudgedEvent is broadcast whenever a contest-tagged submission finishes
// judging, so live scoreboards can refresh without polling.
type JudgedEvent struct {
	SubmissionID string    `json:"submission_id"`
	ContestID    string    `json:"contest_id"`
	ProblemID    string    `json:"problem_id"`
	UserID       string    `json:"user_id"`
	Status       string    `json:"status"`
	TotalScore   int       `json:"total_score"`
	JudgedAt     time.Time `json:"judged_at"`
}

// NewContestResponse converts a contest model and its participant count into a DTO.
func NewContestResponse(contest models.Contest, participantCount int) ContestResponse {
	return ContestResponse{
		ID:               contest.ID,
		Title:            contest.Title,
		Description:      contest.Description,
		StartTime:        contest.StartTime,
		EndTime:          contest.EndTime,
		Status:           contest.Status,
		ParticipantCount: participantCount,
	}
}

// NewContestStandingsResponse ranks participants by score, highest first.
// Callers supply participants already ordered by the repository.
func NewContestStandingsResponse(contestID string, participants []models.ContestParticipant) ContestStandingsResponse {
	standings := make([]StandingsEntry, 0, len(participants))
	for i, participant := range participants {
		standings = append(standings, StandingsEntry{
			Rank:       i + 1,
			UserID:     participant.UserID,
			TotalScore: participant.TotalScore,
		})
	}
	return ContestStandingsResponse{ContestID: contestID, Standings: standings}
}
