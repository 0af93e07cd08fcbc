// Terminal de loja: mantém as coleções do usuário corrente sincronizadas em
// memória via LISTEN/NOTIFY, sem servidor HTTP. É o runtime embarcado que o
// front da loja consome; a identidade vem da sessão local restaurada (ou do
// login configurado no primeiro boot).
package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/operaloja/operaloja-api/internal/application/butcher"
	"github.com/operaloja/operaloja-api/internal/application/realtime"
	"github.com/operaloja/operaloja-api/internal/application/refdata"
	"github.com/operaloja/operaloja-api/internal/application/session"
	"github.com/operaloja/operaloja-api/internal/application/solicitation"
	"github.com/operaloja/operaloja-api/internal/application/validity"
	"github.com/operaloja/operaloja-api/internal/infrastructure/postgres"
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
	log.Info().Str("env", cfg.App.Env).Msg("iniciando terminal de loja")

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

	// Sessão local: restauração silenciosa do último login; primeiro boot
	// usa o email configurado do terminal.
	ids := session.NewFileIdentifierStore(cfg.Session.IdentifierFile)
	provider := session.NewProvider(profileRepo, ids, log)
	provider.Restore(ctx)
	if provider.Current().State != session.StateAuthenticated {
		if cfg.Session.LoginEmail == "" {
			log.Fatal().Msg("sem sessão restaurada e sem SESSION_LOGIN_EMAIL configurado")
		}
		if _, err := provider.Login(ctx, cfg.Session.LoginEmail); err != nil {
			log.Fatal().Err(err).Str("email", cfg.Session.LoginEmail).Msg("login do terminal")
		}
	}
	log.Info().Str("user", provider.Profile().Name).Msg("sessão ativa")

	validityCol := validity.NewCollection(validitySvc, provider, validity.Options{})
	orderCol := butcher.NewCollection(orderSvc, provider, butcher.Options{})
	solicitationCol := solicitation.NewCollection(solicitationSvc, provider, solicitation.Options{})

	listener := postgres.NewListener(cfg.DB.ConnectionString(), log)
	listenerDone := make(chan struct{})
	go func() {
		defer close(listenerDone)
		if err := listener.Run(ctx); err != nil {
			log.Error().Err(err).Msg("listener finalizado")
		}
	}()

	syncer := realtime.NewSyncer(ctx, listener, log)
	defer syncer.Close()
	syncer.Attach(postgres.ChannelValidity, validityCol)
	syncer.Attach(postgres.ChannelDeleteRequests, validityCol)
	syncer.Attach(postgres.ChannelOrders, orderCol)
	syncer.Attach(postgres.ChannelSolicitations, solicitationCol)

	validityCol.Refresh(ctx)
	orderCol.Refresh(ctx)
	solicitationCol.Refresh(ctx)
	log.Info().
		Int("validades", len(validityCol.State().Rows)).
		Int("pedidos", len(orderCol.State().Rows)).
		Int("solicitacoes", len(solicitationCol.State().Rows)).
		Msg("coleções carregadas, aguardando notificações")

	<-ctx.Done()
	log.Info().Msg("sinal de desligamento recebido, encerrando terminal...")
	syncer.Close()
	<-listenerDone
}
