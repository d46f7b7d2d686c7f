package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/club100/internal/shared"
	"github.com/urfave/cli/v3"
)

// SetupDatabase opens the configured database and runs pending migrations.
func (r *Runner) SetupDatabase(ctx context.Context, cmd *cli.Command) error {
	path, err := r.config.DatabasePath()
	if err != nil {
		return err
	}
	r.logger.Info("initializing database", "path", path)

	db, err := r.database()
	if err != nil {
		return err
	}

	applied, err := shared.AppliedVersions(db)
	if err != nil {
		return fmt.Errorf("failed to read migrations: %w", err)
	}

	r.logger.Infof("setup complete for database: %v", path)
	r.writePlain("✓ Database ready: %s (%d migrations applied)\n", path, len(applied))
	return nil
}

// SetupConfig writes the example configuration file.
func (r *Runner) SetupConfig(ctx context.Context, cmd *cli.Command) error {
	path := cmd.String("output")
	if path == "" {
		return fmt.Errorf("%w: output path", shared.ErrMissingArgument)
	}

	if err := shared.CreateConfigFile(path); err != nil {
		return err
	}

	r.logger.Info("config file created", "path", path)
	r.writePlain("✓ Config written to %s\n", path)
	r.writePlainln("Next steps:")
	r.writePlain("1. Set credentials.youtube.api_key to enable YouTube Data API search\n")
	r.writePlain("2. Point worker.url at your audio worker\n")
	r.writePlain("3. Run 'club100 setup database'\n")
	return nil
}
