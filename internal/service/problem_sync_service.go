package service

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/algorank/algorank-api/internal/models"
	"github.com/algorank/algorank-api/internal/repository"
)

// problemMetadataSchema validates each metadata.json before it touches the
// catalog. The id must match the directory naming rules used for test cases.
const problemMetadataSchema = `{
  "type": "object",
  "required": ["id", "title", "difficulty"],
  "properties": {
    "id": {"type": "string", "pattern": "^[a-z0-9][a-z0-9-]*$"},
    "title": {"type": "string", "minLength": 1},
    "difficulty": {"type": "string", "enum": ["easy", "medium", "hard"]},
    "hidden": {"type": "boolean"}
  },
  "additionalProperties": true
}`

type problemMetadata struct {
	ID         string `json:"id"`
	Title      string `json:"title"`
	Difficulty string `json:"difficulty"`
	Hidden     bool   `json:"hidden"`
}

// SyncReport summarises a catalog sync run.
type SyncReport struct {
	Synced  int
	Skipped int
}

// ProblemSyncService imports problem metadata from disk into the catalog.
// Invalid entries are skipped with a log line, never aborting the run, and
// upserts never touch solved counts.
type ProblemSyncService interface {
	Sync(ctx context.Context) (SyncReport, error)
}

// NewProblemSyncService builds the sync service for metadata files laid out
// as <root>/<problem>/metadata.json.
func NewProblemSyncService(root string, problemRepo repository.ProblemRepository, logger zerolog.Logger) (ProblemSyncService, error) {
	schema, err := jsonschema.CompileString("problem_metadata.json", problemMetadataSchema)
	if err != nil {
		return nil, fmt.Errorf("compile problem metadata schema: %w", err)
	}
	return &problemSyncService{
		root:        root,
		problemRepo: problemRepo,
		schema:      schema,
		logger:      logger.With().Str("component", "problem_sync_service").Logger(),
	}, nil
}

type problemSyncService struct {
	root        string
	problemRepo repository.ProblemRepository
	schema      *jsonschema.Schema
	logger      zerolog.Logger
}

func (s *problemSyncService) Sync(ctx context.Context) (SyncReport, error) {
	entries, err := os.ReadDir(s.root)
	if err != nil {
		if os.IsNotExist(err) {
			s.logger.Warn().Str("root", s.root).Msg("problem metadata root does not exist, nothing to sync")
			return SyncReport{}, nil
		}
		return SyncReport{}, fmt.Errorf("read problem root: %w", err)
	}

	var report SyncReport
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		if err := ctx.Err(); err != nil {
			return report, err
		}

		problem, err := s.loadMetadata(entry.Name())
		if err != nil {
			s.logger.Warn().Err(err).Str("problem_dir", entry.Name()).Msg("skipping invalid problem metadata")
			report.Skipped++
			continue
		}

		if err := s.problemRepo.Upsert(ctx, &problem); err != nil {
			return report, fmt.Errorf("%w: upserting problem %s: %v", ErrPersistence, problem.ID, err)
		}
		report.Synced++
	}

	s.logger.Info().Int("synced", report.Synced).Int("skipped", report.Skipped).Msg("problem catalog synced")
	return report, nil
}

func (s *problemSyncService) loadMetadata(dir string) (models.Problem, error) {
	raw, err := os.ReadFile(filepath.Join(s.root, dir, "metadata.json"))
	if err != nil {
		return models.Problem{}, fmt.Errorf("read metadata: %w", err)
	}

	var document any
	if err := json.Unmarshal(raw, &document); err != nil {
		return models.Problem{}, fmt.Errorf("parse metadata: %w", err)
	}
	if err := s.schema.Validate(document); err != nil {
		return models.Problem{}, fmt.Errorf("validate metadata: %w", err)
	}

	var metadata problemMetadata
	if err := json.Unmarshal(raw, &metadata); err != nil {
		return models.Problem{}, fmt.Errorf("decode metadata: %w", err)
	}
	if metadata.ID != dir {
		return models.Problem{}, fmt.Errorf("metadata id %q does not match directory %q", metadata.ID, dir)
	}

	return models.Problem{
		ID:         metadata.ID,
		Title:      metadata.Title,
		Difficulty: metadata.Difficulty,
		Hidden:     metadata.Hidden,
	}, nil
}
