package dto

import "github.com/algorank/algorank-api/internal/models"

// ProblemResponse represents a problem in listings and detail views.
type ProblemResponse struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Difficulty  string `json:"difficulty"`
	SolvedCount int    `json:"solved_count"`
}

// NewProblemResponse converts a problem model into a DTO.
func NewProblemResponse(problem models.Problem) ProblemResponse {
	return ProblemResponse{
		ID:          problem.ID,
		Title:       problem.Title,
		Difficulty:  problem.Difficulty,
		SolvedCount: problem.SolvedCount,
	}
}

// NewProblemResponseSlice converts problem models into DTOs.
func NewProblemResponseSlice(problems []models.Problem) []ProblemResponse {
	responses := make([]ProblemResponse, 0, len(problems))
	for _, problem := range problems {
		responses = append(responses, NewProblemResponse(problem))
	}
	return responses
}
