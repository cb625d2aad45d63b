package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/eduquinha/eduquinha/internal/storage/migrations"
	"github.com/eduquinha/eduquinha/internal/storage/pg"
	"github.com/eduquinha/eduquinha/internal/storage/postgres"
	"github.com/eduquinha/eduquinha/internal/storage/redis"
	"github.com/eduquinha/eduquinha/modules/admin"
	"github.com/eduquinha/eduquinha/modules/shell"
	"github.com/eduquinha/eduquinha/pkg/config"
	"github.com/eduquinha/eduquinha/pkg/environment"
	"github.com/eduquinha/eduquinha/pkg/httpserver"
	"github.com/eduquinha/eduquinha/pkg/identity"
	"github.com/eduquinha/eduquinha/pkg/logger"
	"github.com/eduquinha/eduquinha/pkg/requestid"
	"github.com/eduquinha/eduquinha/pkg/tenant"
)

func main() {
	if err := run(context.Background()); err != nil {
		slog.Error("server exited", logger.Error(err))
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	var envCfg environment.Config
	config.MustLoad(&envCfg)
	env := environment.Parse(envCfg.AppEnv)

	log := logger.New(
		logger.WithEnvironment(env, "eduquinha"),
		logger.WithContextExtractors(
			requestid.LoggerExtractor(),
			environment.LoggerExtractor(),
			tenant.LoggerExtractor(),
			identity.LoggerExtractor(),
		),
	)
	logger.SetAsDefault(log)

	// Storage.
	var pgCfg pg.Config
	config.MustLoad(&pgCfg)
	pool, err := pg.Connect(ctx, pgCfg)
	if err != nil {
		return err
	}
	defer pool.Close()

	if err := pg.Migrate(ctx, pool, pgCfg, migrations.FS, log); err != nil {
		return err
	}

	var redisCfg redis.Config
	config.MustLoad(&redisCfg)
	redisClient, err := redis.Connect(ctx, redisCfg)
	if err != nil {
		return err
	}
	defer redisClient.Close()

	// Tenant resolution.
	var hostsCfg tenant.Config
	config.MustLoad(&hostsCfg)
	hosts := hostsCfg.Hosts()

	schools := postgres.NewTenantStore(pool)
	resolver := tenant.NewResolver(schools,
		tenant.WithCache(tenant.NewRedisCache(redisClient, "tenant:")),
		tenant.WithResolverLogger(log),
	)
	defer resolver.Close()

	tenants := tenant.NewService(resolver, tenant.WithServiceLogger(log))
	defer tenants.Close()
	tenants.Start(ctx, "")

	// Identity.
	var idCfg postgres.IdentityConfig
	config.MustLoad(&idCfg)
	provider := postgres.NewIdentityProvider(pool, idCfg)
	defer provider.Close()

	profiles := postgres.NewProfileStore(pool)
	identities := identity.NewService(provider, profiles, identity.WithLogger(log))
	defer identities.Close()

	// HTTP surface.
	router := shell.NewRouter(shell.Deps{
		Log:      log,
		Env:      env,
		Hosts:    hosts,
		Resolver: resolver,
		Tenants:  tenants,
		Identity: identities,
		Health: []func(context.Context) error{
			pg.Healthcheck(pool),
			redis.Healthcheck(redisClient),
		},
	})
	router.Mount("/api/admin", admin.NewRouter(admin.Deps{
		Log:      log,
		Hosts:    hosts,
		Schools:  schools,
		Resolver: resolver,
		Tenants:  tenants,
	}))

	var httpCfg httpserver.Config
	config.MustLoad(&httpCfg)
	srv := httpserver.NewFromConfig(httpCfg, httpserver.WithLogger(log))

	return srv.Run(ctx, router)
}
