package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/operaloja/operaloja-api/internal/application/dto"
	"github.com/operaloja/operaloja-api/internal/application/usecase"
)

// UserHandler trata as rotas administrativas de usuários (protegido, admin).
type UserHandler struct {
	uc *usecase.UserUseCase
}

// NewUserHandler constrói o handler.
func NewUserHandler(uc *usecase.UserUseCase) *UserHandler {
	return &UserHandler{uc: uc}
}

// Create cria um usuário com handle derivado do email e senha temporária.
func (h *UserHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateUserRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "corpo inválido"})
	}
	if in.Email == "" || in.Name == "" || in.Role == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "email, name e role são obrigatórios"})
	}
	out, err := h.uc.CreateUser(c.Context(), GetProfile(c), in)
	if err != nil {
		return domainError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// List lista usuários paginados.
func (h *UserHandler) List(c *fiber.Ctx) error {
	page := dto.PageRequest{Limit: c.QueryInt("limit", 20), Offset: c.QueryInt("offset", 0)}
	out, err := h.uc.ListUsers(c.Context(), GetProfile(c), page)
	if err != nil {
		return domainError(c, err)
	}
	return c.JSON(out)
}

// GetByID devolve um usuário por ID.
func (h *UserHandler) GetByID(c *fiber.Ctx) error {
	out, err := h.uc.GetUser(c.Context(), GetProfile(c), c.Params("id"))
	if err != nil {
		return domainError(c, err)
	}
	return c.JSON(out)
}

// ReplacePermissions troca o mapa de permissões inteiro do usuário.
func (h *UserHandler) ReplacePermissions(c *fiber.Ctx) error {
	var in dto.ReplacePermissionsRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "corpo inválido"})
	}
	if err := h.uc.ReplacePermissions(c.Context(), GetProfile(c), c.Params("id"), in); err != nil {
		return domainError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// Delete remove o usuário.
func (h *UserHandler) Delete(c *fiber.Ctx) error {
	if err := h.uc.DeleteUser(c.Context(), GetProfile(c), c.Params("id")); err != nil {
		return domainError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
