package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/operaloja/operaloja-api/internal/application/butcher"
	"github.com/operaloja/operaloja-api/internal/application/dto"
)

// OrderHandler trata as rotas de pedidos do açougue (protegido, módulo acougue).
type OrderHandler struct {
	svc *butcher.Service
}

// NewOrderHandler constrói o handler.
func NewOrderHandler(svc *butcher.Service) *OrderHandler {
	return &OrderHandler{svc: svc}
}

// List devolve os pedidos desnormalizados no escopo do usuário.
// Query: status (repetível).
func (h *OrderHandler) List(c *fiber.Ctx) error {
	opts := butcher.Options{}
	if status := c.Query("status"); status != "" {
		opts.Statuses = append(opts.Statuses, status)
	}
	rows, err := h.svc.Fetch(c.Context(), GetProfile(c), opts)
	if err != nil {
		return domainError(c, err)
	}
	return c.JSON(dto.NewOrderResponses(rows))
}

// Create abre um novo rascunho de pedido com numeração da loja/dia.
func (h *OrderHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateOrderRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "corpo inválido"})
	}
	if in.RequesterStoreID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "requester_store_id é obrigatório"})
	}
	order, err := h.svc.Create(c.Context(), GetProfile(c), butcher.CreateInput{
		RequesterStoreID:  in.RequesterStoreID,
		ProductionStoreID: in.ProductionStoreID,
		Items:             dto.OrderItemInputs(in.Items),
	})
	if err != nil {
		return domainError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.NewCreatedOrderResponse(order))
}

// Copy duplica um pedido existente em novo rascunho independente.
func (h *OrderHandler) Copy(c *fiber.Ctx) error {
	order, err := h.svc.Copy(c.Context(), GetProfile(c), c.Params("id"))
	if err != nil {
		return domainError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.NewCreatedOrderResponse(order))
}

// Transition muda o status do pedido seguindo a máquina de estados.
func (h *OrderHandler) Transition(c *fiber.Ctx) error {
	var in dto.TransitionOrderRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "corpo inválido"})
	}
	if in.Status == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "status é obrigatório"})
	}
	if err := h.svc.Transition(c.Context(), GetProfile(c), c.Params("id"), in.Status); err != nil {
		return domainError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// MarkReceived registra o recebimento de um pedido concluído.
func (h *OrderHandler) MarkReceived(c *fiber.Ctx) error {
	if err := h.svc.MarkReceived(c.Context(), GetProfile(c), c.Params("id")); err != nil {
		return domainError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// SaveItems troca todos os itens do pedido (rascunho ou pendente).
func (h *OrderHandler) SaveItems(c *fiber.Ctx) error {
	var in dto.SaveOrderItemsRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "corpo inválido"})
	}
	if err := h.svc.SaveItems(c.Context(), GetProfile(c), c.Params("id"), dto.OrderItemInputs(in.Items)); err != nil {
		return domainError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// DiscardDraft remove um rascunho vazio abandonado. Pedido com itens ou já
// enviado devolve 409.
func (h *OrderHandler) DiscardDraft(c *fiber.Ctx) error {
	removed, err := h.svc.CleanupAbandonedDraft(c.Context(), c.Params("id"))
	if err != nil {
		return domainError(c, err)
	}
	if !removed {
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "NOT_EMPTY_DRAFT", Message: "só rascunhos vazios podem ser descartados"})
	}
	return c.SendStatus(fiber.StatusNoContent)
}
