package http

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/operaloja/operaloja-api/internal/application/dto"
	"github.com/operaloja/operaloja-api/internal/application/validity"
)

// ValidityHandler trata as rotas de entradas de validade (protegido, módulo validade).
type ValidityHandler struct {
	svc *validity.Service
}

// NewValidityHandler constrói o handler.
func NewValidityHandler(svc *validity.Service) *ValidityHandler {
	return &ValidityHandler{svc: svc}
}

// List devolve as entradas desnormalizadas no escopo do usuário.
// Query: include_deleted, status (repetível), expires_before (RFC3339).
func (h *ValidityHandler) List(c *fiber.Ctx) error {
	opts := validity.Options{
		IncludeDeleted: c.QueryBool("include_deleted", false),
	}
	if statuses := c.Query("status"); statuses != "" {
		opts.Statuses = append(opts.Statuses, statuses)
	}
	if raw := c.Query("expires_before"); raw != "" {
		ts, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "expires_before deve ser RFC3339"})
		}
		opts.ExpiresBefore = &ts
	}
	rows, err := h.svc.Fetch(c.Context(), GetProfile(c), opts)
	if err != nil {
		return domainError(c, err)
	}
	return c.JSON(dto.NewValidityRowResponses(rows))
}

// Create insere uma nova entrada pendente.
func (h *ValidityHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateValidityRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "corpo inválido"})
	}
	if in.ProductID == "" || in.StoreID == "" || in.ExpiresAt.IsZero() {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "product_id, store_id e expires_at são obrigatórios"})
	}
	entry, err := h.svc.Create(c.Context(), GetProfile(c), validity.CreateInput{
		ProductID: in.ProductID,
		StoreID:   in.StoreID,
		ExpiresAt: in.ExpiresAt,
		Lot:       in.Lot,
		Quantity:  in.Quantity,
		Unit:      in.Unit,
	})
	if err != nil {
		return domainError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(entry)
}

// MarkVerified marca a entrada como conferida.
func (h *ValidityHandler) MarkVerified(c *fiber.Ctx) error {
	if err := h.svc.MarkVerified(c.Context(), GetProfile(c), c.Params("id")); err != nil {
		return domainError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// UnmarkVerified desfaz a conferência.
func (h *ValidityHandler) UnmarkVerified(c *fiber.Ctx) error {
	if err := h.svc.UnmarkVerified(c.Context(), GetProfile(c), c.Params("id")); err != nil {
		return domainError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// SoftDelete marca a entrada como excluída.
func (h *ValidityHandler) SoftDelete(c *fiber.Ctx) error {
	if err := h.svc.SoftDelete(c.Context(), GetProfile(c), c.Params("id")); err != nil {
		return domainError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// RequestDelete abre um pedido de exclusão para a entrada.
func (h *ValidityHandler) RequestDelete(c *fiber.Ctx) error {
	var in dto.RequestDeleteRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "corpo inválido"})
	}
	if in.Reason == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "reason é obrigatório"})
	}
	r, err := h.svc.RequestDelete(c.Context(), GetProfile(c), c.Params("id"), in.Reason)
	if err != nil {
		return domainError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(r)
}

// ApproveDelete aprova o pedido de exclusão.
func (h *ValidityHandler) ApproveDelete(c *fiber.Ctx) error {
	if err := h.svc.ApproveDelete(c.Context(), GetProfile(c), c.Params("requestId")); err != nil {
		return domainError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// RejectDelete rejeita o pedido de exclusão.
func (h *ValidityHandler) RejectDelete(c *fiber.Ctx) error {
	if err := h.svc.RejectDelete(c.Context(), GetProfile(c), c.Params("requestId")); err != nil {
		return domainError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
