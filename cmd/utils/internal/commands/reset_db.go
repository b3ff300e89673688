package commands

import (
	"context"

	"github.com/appetiteclub/tableside/internal/mongo"
	"github.com/aquamarinepk/aqm"
)

// ResetDB drops the tableside database - USE WITH CAUTION
func ResetDB(ctx context.Context, config *aqm.Config, logger aqm.Logger) error {
	logger.Info("DANGER: this drops every order, counter and catalog record")

	base := mongo.NewBaseRepo(config, logger)
	if err := base.Start(ctx); err != nil {
		return err
	}
	defer base.Stop(ctx)

	return base.Reset(ctx)
}
