package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/operaloja/operaloja-api/internal/application/dto"
	"github.com/operaloja/operaloja-api/internal/application/solicitation"
)

// SolicitationHandler trata as rotas de solicitações (protegido, módulo solicitacoes).
type SolicitationHandler struct {
	svc *solicitation.Service
}

// NewSolicitationHandler constrói o handler.
func NewSolicitationHandler(svc *solicitation.Service) *SolicitationHandler {
	return &SolicitationHandler{svc: svc}
}

// List devolve as solicitações desnormalizadas no escopo do usuário.
func (h *SolicitationHandler) List(c *fiber.Ctx) error {
	opts := solicitation.Options{}
	if status := c.Query("status"); status != "" {
		opts.Statuses = append(opts.Statuses, status)
	}
	rows, err := h.svc.Fetch(c.Context(), GetProfile(c), opts)
	if err != nil {
		return domainError(c, err)
	}
	return c.JSON(dto.NewSolicitationResponses(rows))
}

// Create abre uma solicitação para uma loja, ou para todas com all_stores.
func (h *SolicitationHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateSolicitationRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "corpo inválido"})
	}
	if in.ProductID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "product_id é obrigatório"})
	}

	if in.AllStores {
		batch, err := h.svc.CreateForAllStores(c.Context(), GetProfile(c), in.ProductID, in.Observation)
		if err != nil {
			return domainError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(dto.NewCreatedSolicitationResponses(batch))
	}

	if in.StoreID == nil || *in.StoreID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "store_id é obrigatório sem all_stores"})
	}
	sol, err := h.svc.Create(c.Context(), GetProfile(c), solicitation.CreateInput{
		StoreID:     *in.StoreID,
		ProductID:   in.ProductID,
		Observation: in.Observation,
	})
	if err != nil {
		return domainError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(sol)
}

// Resolve fecha a solicitação como resolvida.
func (h *SolicitationHandler) Resolve(c *fiber.Ctx) error {
	if err := h.svc.Resolve(c.Context(), GetProfile(c), c.Params("id")); err != nil {
		return domainError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// Archive arquiva a solicitação.
func (h *SolicitationHandler) Archive(c *fiber.Ctx) error {
	if err := h.svc.Archive(c.Context(), GetProfile(c), c.Params("id")); err != nil {
		return domainError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// Cancel cancela uma solicitação pendente do próprio solicitante.
func (h *SolicitationHandler) Cancel(c *fiber.Ctx) error {
	if err := h.svc.Cancel(c.Context(), GetProfile(c), c.Params("id")); err != nil {
		return domainError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
