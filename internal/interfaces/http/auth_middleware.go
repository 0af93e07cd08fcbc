package http

import (
	"context"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/operaloja/operaloja-api/internal/application/dto"
	"github.com/operaloja/operaloja-api/internal/domain/entity"
	"github.com/operaloja/operaloja-api/pkg/jwt"
)

// Locals keys no Fiber.
const (
	LocalUserID  = "user_id"
	LocalProfile = "profile"
)

// profileLoader é o contrato mínimo para carregar o perfil do token.
// Satisfeito por repository.ProfileRepository; a interface evita import circular.
type profileLoader interface {
	GetByID(ctx context.Context, id string) (*entity.Profile, error)
}

// AuthMiddleware valida o Bearer Token JWT e carrega o perfil completo em
// c.Locals. O perfil vem da DB a cada request: permissões revogadas valem
// imediatamente, sem esperar o token expirar.
func AuthMiddleware(jwtSecret string, profiles profileLoader) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "MISSING_TOKEN", Message: "header Authorization obrigatório"})
		}
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "INVALID_TOKEN", Message: "formato: Bearer <token>"})
		}
		tokenString := strings.TrimSpace(parts[1])
		if tokenString == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "MISSING_TOKEN", Message: "token vazio"})
		}
		claims, err := jwt.Parse(jwtSecret, tokenString)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "INVALID_TOKEN", Message: "token inválido ou expirado"})
		}
		profile, err := profiles.GetByID(c.Context(), claims.UserID)
		if err != nil {
			return c.Status(fiber.StatusServiceUnavailable).JSON(dto.ErrorResponse{Code: "PROFILE_LOAD_FAILED", Message: "não foi possível carregar o perfil, tente mais tarde"})
		}
		if profile == nil {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNKNOWN_USER", Message: "usuário do token não existe mais"})
		}
		c.Locals(LocalUserID, claims.UserID)
		c.Locals(LocalProfile, profile)
		return c.Next()
	}
}

// GetUserID devolve o UserID do contexto (depois do middleware de auth).
func GetUserID(c *fiber.Ctx) string {
	v := c.Locals(LocalUserID)
	if v == nil {
		return ""
	}
	s, _ := v.(string)
	return s
}

// GetProfile devolve o perfil carregado do contexto, ou nil.
func GetProfile(c *fiber.Ctx) *entity.Profile {
	v := c.Locals(LocalProfile)
	if v == nil {
		return nil
	}
	p, _ := v.(*entity.Profile)
	return p
}

// RequireAdmin exige perfil admin. Deve vir DEPOIS de AuthMiddleware.
func RequireAdmin() fiber.Handler {
	return func(c *fiber.Ctx) error {
		p := GetProfile(c)
		if p == nil {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "perfil não encontrado no contexto"})
		}
		if !p.IsAdmin {
			return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{Code: "FORBIDDEN", Message: "operação restrita a administradores"})
		}
		return c.Next()
	}
}
