package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/operaloja/operaloja-api/internal/application/auth"
	"github.com/operaloja/operaloja-api/internal/application/butcher"
	"github.com/operaloja/operaloja-api/internal/application/solicitation"
	"github.com/operaloja/operaloja-api/internal/application/usecase"
	"github.com/operaloja/operaloja-api/internal/application/validity"
	"github.com/operaloja/operaloja-api/internal/domain/entity"
	"github.com/operaloja/operaloja-api/internal/domain/repository"
)

// RouterDeps dependências para o router.
type RouterDeps struct {
	AuthUC         *auth.UseCase
	UserUC         *usecase.UserUseCase
	ReferenceUC    *usecase.ReferenceUseCase
	ValiditySvc    *validity.Service
	OrderSvc       *butcher.Service
	SolicitationSv *solicitation.Service
	Profiles       repository.ProfileRepository
	JWTSecret      string

	// Feed de notificações para o endpoint de eventos; nil desabilita a rota.
	EventFeed     EventFeed
	EventChannels []string
}

// Router registra as rotas da API.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")

	// Auth (público)
	authHandler := NewAuthHandler(deps.AuthUC)
	api.Post("/auth/login", authHandler.Login)

	// Rotas protegidas (Bearer Token + perfil carregado por request)
	protected := api.Group("/", AuthMiddleware(deps.JWTSecret, deps.Profiles))
	protected.Get("/auth/me", authHandler.Me)
	protected.Post("/auth/password", authHandler.ChangePassword)

	// Eventos de mudança (SSE, qualquer usuário autenticado)
	if deps.EventFeed != nil {
		eventsHandler := NewEventsHandler(deps.EventFeed, deps.EventChannels)
		protected.Get("/events", eventsHandler.Stream)
	}

	// Referência (qualquer usuário autenticado)
	refHandler := NewReferenceHandler(deps.ReferenceUC)
	protected.Get("/stores", refHandler.ListStores)
	protected.Get("/products", refHandler.SearchProducts)

	// Validade (módulo validade)
	validityGroup := protected.Group("/validity", RequireModule(entity.ModuleValidade))
	validityHandler := NewValidityHandler(deps.ValiditySvc)
	validityGroup.Get("/", validityHandler.List)
	validityGroup.Post("/", validityHandler.Create)
	validityGroup.Post("/:id/verify", validityHandler.MarkVerified)
	validityGroup.Delete("/:id/verify", validityHandler.UnmarkVerified)
	validityGroup.Delete("/:id", validityHandler.SoftDelete)
	validityGroup.Post("/:id/delete-requests", validityHandler.RequestDelete)
	validityGroup.Post("/delete-requests/:requestId/approve", validityHandler.ApproveDelete)
	validityGroup.Post("/delete-requests/:requestId/reject", validityHandler.RejectDelete)

	// Pedidos do açougue (módulo acougue)
	orderGroup := protected.Group("/orders", RequireModule(entity.ModuleAcougue))
	orderHandler := NewOrderHandler(deps.OrderSvc)
	orderGroup.Get("/", orderHandler.List)
	orderGroup.Post("/", orderHandler.Create)
	orderGroup.Post("/:id/copy", orderHandler.Copy)
	orderGroup.Post("/:id/transition", orderHandler.Transition)
	orderGroup.Post("/:id/received", orderHandler.MarkReceived)
	orderGroup.Put("/:id/items", orderHandler.SaveItems)
	orderGroup.Delete("/:id/draft", orderHandler.DiscardDraft)

	// Solicitações (módulo solicitacoes)
	solGroup := protected.Group("/solicitations", RequireModule(entity.ModuleSolicitacoes))
	solHandler := NewSolicitationHandler(deps.SolicitationSv)
	solGroup.Get("/", solHandler.List)
	solGroup.Post("/", solHandler.Create)
	solGroup.Post("/:id/resolve", solHandler.Resolve)
	solGroup.Post("/:id/archive", solHandler.Archive)
	solGroup.Post("/:id/cancel", solHandler.Cancel)

	// Administração de usuários (admin)
	userGroup := protected.Group("/users", RequireAdmin())
	userHandler := NewUserHandler(deps.UserUC)
	userGroup.Get("/", userHandler.List)
	userGroup.Post("/", userHandler.Create)
	userGroup.Get("/:id", userHandler.GetByID)
	userGroup.Put("/:id/permissions", userHandler.ReplacePermissions)
	userGroup.Delete("/:id", userHandler.Delete)
}
