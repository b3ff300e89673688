package commands

import (
	"context"
	"fmt"

	"github.com/appetiteclub/tableside/internal/catalog"
	"github.com/appetiteclub/tableside/internal/mongo"
	"github.com/aquamarinepk/aqm"
)

// SeedDemo applies the embedded demo catalog. Seeds already recorded by
// the tracker are skipped.
func SeedDemo(ctx context.Context, config *aqm.Config, logger aqm.Logger) error {
	logger.Info("Starting demo seeding process...")

	base := mongo.NewBaseRepo(config, logger)
	if err := base.Start(ctx); err != nil {
		return err
	}
	defer base.Stop(ctx)

	tracker, err := catalog.MongoTracker(base)
	if err != nil {
		return fmt.Errorf("seed tracker: %w", err)
	}

	repos := mongo.NewCatalogRepos(base)
	if err := catalog.ApplySeeds(ctx, repos, tracker, catalog.SeedFS, logger); err != nil {
		return fmt.Errorf("apply catalog seeds: %w", err)
	}
	return nil
}
