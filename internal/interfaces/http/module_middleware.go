package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/operaloja/operaloja-api/internal/application/dto"
	"github.com/operaloja/operaloja-api/internal/domain/entity"
	"github.com/operaloja/operaloja-api/internal/domain/permission"
)

// RequireModule devolve um middleware que verifica se o usuário do request
// tem acesso ao módulo. Deve vir DEPOIS de AuthMiddleware (usa o perfil dos
// locals). A checagem é a mesma função pura usada pelas coleções; o
// middleware só antecipa o 403.
func RequireModule(module entity.Module) fiber.Handler {
	return func(c *fiber.Ctx) error {
		p := GetProfile(c)
		if p == nil {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
				Code:    "UNAUTHORIZED",
				Message: "perfil não encontrado no contexto",
			})
		}
		if !permission.HasModuleAccess(p, module) {
			return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{
				Code:    "MODULE_DENIED",
				Message: "sem acesso ao módulo '" + string(module) + "'",
			})
		}
		return c.Next()
	}
}
