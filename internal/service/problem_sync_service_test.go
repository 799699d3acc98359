package service

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/algorank/algorank-api/internal/models"
	"github.com/algorank/algorank-api/internal/repository"
)

func writeMetadata(t *testing.T, root, dir, content string) {
	t.Helper()
	problemDir := filepath.Join(root, dir)
	require.NoError(t, os.MkdirAll(problemDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(problemDir, "metadata.json"), []byte(content), 0o644))
}

func TestSyncImportsValidProblems(t *testing.T) {
	db := setupTestDB(t)
	root := t.TempDir()
	writeMetadata(t, root, "two-sum", `{"id":"two-sum","title":"Two Sum","difficulty":"easy"}`)
	writeMetadata(t, root, "max-path", `{"id":"max-path","title":"Max Path","difficulty":"hard","hidden":true}`)

	svc, err := NewProblemSyncService(root, repository.NewProblemRepository(db), zerolog.Nop())
	require.NoError(t, err)

	report, err := svc.Sync(context.Background())
	require.NoError(t, err)
	require.Equal(t, 2, report.Synced)
	require.Equal(t, 0, report.Skipped)

	var problem models.Problem
	require.NoError(t, db.First(&problem, "id = ?", "max-path").Error)
	require.Equal(t, "Max Path", problem.Title)
	require.True(t, problem.Hidden)
}

func TestSyncSkipsInvalidMetadata(t *testing.T) {
	db := setupTestDB(t)
	root := t.TempDir()
	writeMetadata(t, root, "two-sum", `{"id":"two-sum","title":"Two Sum","difficulty":"easy"}`)
	writeMetadata(t, root, "bad-difficulty", `{"id":"bad-difficulty","title":"Bad","difficulty":"impossible"}`)
	writeMetadata(t, root, "mismatched", `{"id":"something-else","title":"Mismatch","difficulty":"easy"}`)
	writeMetadata(t, root, "not-json", `{title:`)
	require.NoError(t, os.MkdirAll(filepath.Join(root, "no-metadata"), 0o755))

	svc, err := NewProblemSyncService(root, repository.NewProblemRepository(db), zerolog.Nop())
	require.NoError(t, err)

	report, err := svc.Sync(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, report.Synced)
	require.Equal(t, 4, report.Skipped)

	var count int64
	require.NoError(t, db.Model(&models.Problem{}).Count(&count).Error)
	require.EqualValues(t, 1, count)
}

func TestSyncPreservesSolvedCount(t *testing.T) {
	db := setupTestDB(t)
	root := t.TempDir()
	require.NoError(t, db.Create(&models.Problem{
		ID: "two-sum", Title: "Old Title", Difficulty: models.DifficultyMedium, SolvedCount: 7,
	}).Error)
	writeMetadata(t, root, "two-sum", `{"id":"two-sum","title":"Two Sum","difficulty":"easy"}`)

	svc, err := NewProblemSyncService(root, repository.NewProblemRepository(db), zerolog.Nop())
	require.NoError(t, err)

	_, err = svc.Sync(context.Background())
	require.NoError(t, err)

	var problem models.Problem
	require.NoError(t, db.First(&problem, "id = ?", "two-sum").Error)
	require.Equal(t, "Two Sum", problem.Title)
	require.Equal(t, models.DifficultyEasy, problem.Difficulty)
	require.Equal(t, 7, problem.SolvedCount)
}

func TestSyncMissingRootIsEmpty(t *testing.T) {
	db := setupTestDB(t)
	svc, err := NewProblemSyncService(filepath.Join(t.TempDir(), "absent"), repository.NewProblemRepository(db), zerolog.Nop())
	require.NoError(t, err)

	report, err := svc.Sync(context.Background())
	require.NoError(t, err)
	require.Equal(t, SyncReport{}, report)
}
