package main

import (
	"fmt"
	"strings"

	"go-weave/internal/config"
	"go-weave/internal/log"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:       "migrate [up|down]",
	Short:     "Apply or roll back database migrations",
	Args:      cobra.MatchAll(cobra.MaximumNArgs(1), cobra.OnlyValidArgs),
	ValidArgs: []string{"up", "down"},
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadConfig(configFile)
		if err != nil {
			return err
		}
		log.SetLevel(cfg.Log.Level)

		direction := "up"
		if len(args) == 1 {
			direction = args[0]
		}
		steps, _ := cmd.Flags().GetInt("steps")

		source := "file://" + strings.TrimPrefix(cfg.DB.MigrationsPath, "file://")
		m, err := migrate.New(source, cfg.DB.URL())
		if err != nil {
			return errors.Wrap(err, "failed to initialize migrations")
		}
		defer m.Close()

		switch {
		case steps > 0 && direction == "down":
			err = m.Steps(-steps)
		case steps > 0:
			err = m.Steps(steps)
		case direction == "down":
			err = m.Down()
		default:
			err = m.Up()
		}
		if err != nil && !errors.Is(err, migrate.ErrNoChange) {
			return errors.Wrapf(err, "failed to apply migrations (%s)", direction)
		}

		version, dirty, verr := m.Version()
		entry := log.GetLogger().WithField("direction", direction)
		if verr == nil {
			entry = entry.WithField("version", fmt.Sprint(version)).WithField("dirty", dirty)
		}
		entry.Info("migrations applied")
		return nil
	},
}

func init() {
	migrateCmd.Flags().Int("steps", 0, "number of migrations to apply or roll back (0 = all)")
}
