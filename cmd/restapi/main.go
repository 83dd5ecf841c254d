package main

import (
	"context"
	"log/slog"
	"os"

	"restapi/config"
	"restapi/internal/delivery"
	"restapi/internal/delivery/api"
	"restapi/internal/delivery/api/middleware"
	"restapi/internal/delivery/api/router/handler"
	"restapi/internal/domain/constants"
	"restapi/internal/domain/repository"
	"restapi/internal/domain/service"
	"restapi/internal/infra/auth"
	"restapi/internal/infra/auth/oauth"
	"restapi/internal/infra/cache"
	"restapi/internal/infra/eventbus"
	logs "restapi/internal/infra/log"
	"restapi/internal/infra/notification"
	"restapi/internal/infra/persistence/mongo"
	"restapi/internal/infra/persistence/postgres"
	"restapi/internal/infra/pubsub"
	"restapi/internal/infra/ratelimit"
	"restapi/internal/usecase/impl"

	"go.uber.org/fx"
	"gorm.io/gorm"
)

type startServerParams struct {
	fx.In
	fx.Lifecycle

	Deliveries []delivery.Delivery `group:"deliveries"`
}

func main() {
	fx.New(
		injectInfra(),
		injectRepo(),
		injectService(),
		injectUsecase(),
		injectDelivery(),
		injectMiddleware(),
		injectHandler(),
		fx.Invoke(
			impl.RegisterActivityRecorder,
			startServer,
		),
	).Run()
}

func injectInfra() fx.Option {
	return fx.Options(
		fx.Provide(
			config.New,
			logs.New,
			context.Background,
			postgres.New,
			cache.NewRedis,
			eventbus.New,
			ratelimit.New,
		),
		notification.Module,
		pubsub.Module,
	)
}

func injectRepo() fx.Option {
	return fx.Options(
		fx.Provide(
			postgres.NewUserRepository,
			postgres.NewAddressRepository,
			postgres.NewRefreshSessionRepository,
			postgres.NewTransactionManager,
			newActivityRepository,
		),
	)
}

type activityRepositoryParams struct {
	fx.In
	fx.Lifecycle

	Config *config.Config
	Logger *slog.Logger
	DB     *gorm.DB
}

// newActivityRepository picks the activity store named in config.
func newActivityRepository(params activityRepositoryParams) (repository.ActivityRepository, error) {
	if params.Config.Activity.Store != constants.ActivityStoreMongo {
		return postgres.NewActivityRepository(params.DB), nil
	}

	db, err := mongo.New(mongo.Params{
		Lifecycle: params.Lifecycle,
		Config:    params.Config,
		Logger:    params.Logger,
	})
	if err != nil {
		return nil, err
	}

	return mongo.NewActivityRepository(db, params.Logger), nil
}

func injectService() fx.Option {
	return fx.Options(
		fx.Provide(
			auth.NewBcryptHasher,
			auth.NewSecretGenerator,
			auth.NewJWTService,
			fx.Annotate(
				oauth.NewRegistry,
				fx.As(new(service.OAuthProviders)),
			),
			oauth.NewStateStore,
			oauth.NewGoogleIDTokenVerifier,
		),
	)
}

func injectUsecase() fx.Option {
	return fx.Options(
		fx.Provide(
			impl.NewTokenIssuer,
			impl.NewAuthService,
			impl.NewOAuthService,
			impl.NewUserService,
			impl.NewAddressService,
			impl.NewActivityService,
		),
	)
}

func injectMiddleware() fx.Option {
	return fx.Options(
		fx.Provide(
			middleware.NewAuthMiddleware,
			middleware.NewRateLimitMiddleware,
		),
	)
}

func injectHandler() fx.Option {
	return fx.Options(
		fx.Provide(
			handler.NewAuthHandler,
			handler.NewOAuthHandler,
			handler.NewUserHandler,
			handler.NewAddressHandler,
			handler.NewActivityHandler,
		),
	)
}

func injectDelivery() fx.Option {
	return fx.Options(
		fx.Provide(
			fx.Annotate(
				api.NewServer,
				fx.ResultTags(`group:"deliveries"`),
			),
		),
	)
}

func startServer(ctx context.Context, params startServerParams) {
	for _, delivery := range params.Deliveries {
		go func() {
			if err := delivery.Serve(ctx); err != nil {
				slog.Error("Failed to start server", slog.Any("error", err))
				os.Exit(1)
			}
		}()
	}
}
