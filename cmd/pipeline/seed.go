package main

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/StaffAnchor/StaffAnchor-ATS-V1-sub000/internal/config"
	"github.com/StaffAnchor/StaffAnchor-ATS-V1-sub000/internal/logging"
	"github.com/StaffAnchor/StaffAnchor-ATS-V1-sub000/internal/pipeline"
	"github.com/StaffAnchor/StaffAnchor-ATS-V1-sub000/internal/repository"
	"github.com/StaffAnchor/StaffAnchor-ATS-V1-sub000/pkg/models"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Apply the schema and insert a demo workflow",
	RunE: func(_ *cobra.Command, _ []string) error {
		return seed()
	},
}

func seed() error {
	ctx := context.Background()

	logger, err := logging.New(jsonLog, debugLog)
	if err != nil {
		return fmt.Errorf("build logger: %w", err)
	}
	defer logger.Sync()

	cfg, err := config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}

	connStr := fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.DB.Host, cfg.DB.Port, cfg.DB.User, cfg.DB.Password, cfg.DB.Name, cfg.DB.SSLMode,
	)
	pool, err := pgxpool.New(ctx, connStr)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer pool.Close()

	if _, err := pool.Exec(ctx, repository.Schema); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	logger.Info("schema applied")

	store := repository.NewPostgresWorkflowStore(pool)

	// skip seeding when workflows already exist
	existing, err := store.List(ctx)
	if err != nil {
		return fmt.Errorf("list workflows: %w", err)
	}
	if len(existing) > 0 {
		logger.Info("workflows already present, skipping seed", zap.Int("count", len(existing)))
		return nil
	}

	chain := pipeline.NewChain([]string{"cand-001", "cand-002", "cand-003"})
	chain = pipeline.Append(chain)
	chain, err = pipeline.SetCandidates(chain, 1, []string{"cand-001"})
	if err != nil {
		return fmt.Errorf("build demo chain: %w", err)
	}

	now := time.Now().UTC()
	wf := &models.Workflow{
		ID:          uuid.New().String(),
		JobID:       "job-demo",
		Phases:      chain,
		Priority:    models.PriorityMedium,
		Description: "Demo hiring pipeline",
		Status:      models.WorkflowStatusActive,
		CreatedBy:   "seed@localhost",
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := store.Save(ctx, wf); err != nil {
		return fmt.Errorf("save demo workflow: %w", err)
	}

	logger.Info("demo workflow seeded", zap.String("workflow_id", wf.ID))
	return nil
}
