package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/operaloja/operaloja-api/internal/application/auth"
	"github.com/operaloja/operaloja-api/internal/application/butcher"
	"github.com/operaloja/operaloja-api/internal/application/refdata"
	"github.com/operaloja/operaloja-api/internal/application/solicitation"
	"github.com/operaloja/operaloja-api/internal/application/usecase"
	"github.com/operaloja/operaloja-api/internal/application/validity"
	"github.com/operaloja/operaloja-api/internal/infrastructure/postgres"
	httpRouter "github.com/operaloja/operaloja-api/internal/interfaces/http"
	"github.com/operaloja/operaloja-api/pkg/config"
	"github.com/operaloja/operaloja-api/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("carregar configuração: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: "info",
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Msg("iniciando aplicação")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexão ao PostgreSQL")
	}
	defer pool.Close()

	profileRepo := postgres.NewProfileRepository(pool)
	storeRepo := postgres.NewStoreRepository(pool)
	productRepo := postgres.NewProductRepository(pool)
	validityRepo := postgres.NewValidityRepository(pool)
	requestRepo := postgres.NewDeleteRequestRepository(pool)
	orderRepo := postgres.NewOrderRepository(pool)
	solicitationRepo := postgres.NewSolicitationRepository(pool)
	txRunner := postgres.NewTxRunner(pool)

	refs := refdata.NewLoader(storeRepo, productRepo, profileRepo)
	validitySvc := validity.NewService(validityRepo, requestRepo, refs, txRunner, log)
	orderSvc := butcher.NewService(orderRepo, refs, txRunner, log)
	solicitationSvc := solicitation.NewService(solicitationRepo, storeRepo, refs, log)

	authUC := auth.NewUseCase(profileRepo, storeRepo, auth.JWTConfig{
		Secret:     cfg.JWT.Secret,
		ExpMinutes: cfg.JWT.Expiration,
		Issuer:     cfg.JWT.Issuer,
	})
	userUC := usecase.NewUserUseCase(profileRepo, storeRepo, log)
	referenceUC := usecase.NewReferenceUseCase(storeRepo, productRepo)

	// Listener de notificações do banco: os triggers das tabelas sincronizadas
	// fazem pg_notify. O servidor repassa as notificações via SSE (/api/events);
	// coleções embarcadas se inscrevem direto via realtime.Syncer.
	listener := postgres.NewListener(cfg.DB.ConnectionString(), log)
	listenerDone := make(chan struct{})
	go func() {
		defer close(listenerDone)
		if err := listener.Run(ctx); err != nil {
			log.Error().Err(err).Msg("listener finalizado")
		}
	}()

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		AuthUC:         authUC,
		UserUC:         userUC,
		ReferenceUC:    referenceUC,
		ValiditySvc:    validitySvc,
		OrderSvc:       orderSvc,
		SolicitationSv: solicitationSvc,
		Profiles:       profileRepo,
		JWTSecret:      cfg.JWT.Secret,
		EventFeed:      listener,
		EventChannels: []string{
			postgres.ChannelValidity,
			postgres.ChannelDeleteRequests,
			postgres.ChannelOrders,
			postgres.ChannelSolicitations,
		},
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("sinal de desligamento recebido, encerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("desligamento do servidor")
	}

	// o listener cai junto com o contexto; aguarda o teardown antes do pool
	<-listenerDone

	log.Info().Msg("aplicação encerrada")
}
