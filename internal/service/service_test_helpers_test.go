package service

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/algorank/algorank-api/internal/dto"
	"github.com/algorank/algorank-api/internal/models"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.Problem{},
		&models.SolvedRecord{},
		&models.Submission{},
		&models.TestCaseResult{},
		&models.Contest{},
		&models.ContestProblem{},
		&models.ContestParticipant{},
	))
	return db
}

type recordingInvalidator struct {
	contests []string
}

func (r *recordingInvalidator) Invalidate(_ context.Context, contestID string) error {
	r.contests = append(r.contests, contestID)
	return nil
}

type recordingPublisher struct {
	events []dto.JudgedEvent
}

func (r *recordingPublisher) PublishJudged(_ context.Context, event dto.JudgedEvent) error {
	r.events = append(r.events, event)
	return nil
}
