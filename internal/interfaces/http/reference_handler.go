package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/operaloja/operaloja-api/internal/application/usecase"
)

// ReferenceHandler trata as rotas de referência (lojas, catálogo).
type ReferenceHandler struct {
	uc *usecase.ReferenceUseCase
}

// NewReferenceHandler constrói o handler.
func NewReferenceHandler(uc *usecase.ReferenceUseCase) *ReferenceHandler {
	return &ReferenceHandler{uc: uc}
}

// ListStores devolve todas as lojas.
func (h *ReferenceHandler) ListStores(c *fiber.Ctx) error {
	out, err := h.uc.ListStores(c.Context())
	if err != nil {
		return domainError(c, err)
	}
	return c.JSON(out)
}

// SearchProducts busca produtos por termo. Query: q, limit.
func (h *ReferenceHandler) SearchProducts(c *fiber.Ctx) error {
	out, err := h.uc.SearchProducts(c.Context(), c.Query("q"), c.QueryInt("limit", 20))
	if err != nil {
		return domainError(c, err)
	}
	return c.JSON(out)
}
