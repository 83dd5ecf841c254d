// Command migrate applies the embedded database migrations and exits.
package main

import (
	"context"
	"log/slog"

	"restapi/config"
	"restapi/internal/errors"
	logs "restapi/internal/infra/log"
	"restapi/internal/infra/persistence/postgres"

	"go.uber.org/fx"
	"gorm.io/gorm"
)

type migrateParams struct {
	fx.In
	fx.Lifecycle
	fx.Shutdowner

	DB     *gorm.DB
	Logger *slog.Logger
}

func main() {
	fx.New(
		fx.NopLogger,
		fx.Provide(
			config.New,
			logs.New,
			postgres.New,
		),
		fx.Invoke(runMigrations),
	).Run()
}

func runMigrations(params migrateParams) {
	params.Append(fx.Hook{
		OnStart: func(context.Context) error {
			sqlDB, err := params.DB.DB()
			if err != nil {
				return errors.Wrap(err, "failed to get PostgreSQL sql.DB")
			}
			if err := postgres.Migrate(sqlDB, params.Logger); err != nil {
				return err
			}

			return params.Shutdown()
		},
	})
}
