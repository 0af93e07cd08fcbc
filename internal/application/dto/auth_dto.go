package dto

import (
	"time"

	"github.com/operaloja/operaloja-api/internal/domain/entity"
)

// LoginRequest entrada para login.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse saída com token JWT e perfil.
type LoginResponse struct {
	Token string          `json:"token"`
	User  ProfileResponse `json:"user"`
}

// ChangePasswordRequest troca de senha do próprio usuário.
type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password" validate:"required,min=8"`
}

// GrantResponse concessão de módulo na resposta.
type GrantResponse struct {
	Function string  `json:"function"`
	StoreID  *string `json:"store_id"`
}

// ProfileResponse saída de um perfil (sem hash de senha), com os rótulos de
// exibição de funções e loja já resolvidos.
type ProfileResponse struct {
	ID          string                   `json:"id"`
	Handle      string                   `json:"handle"`
	Email       string                   `json:"email"`
	Name        string                   `json:"name"`
	Role        string                   `json:"role"`
	IsAdmin     bool                     `json:"is_admin"`
	StoreID     *string                  `json:"store_id"`
	Permissions map[string]GrantResponse `json:"permissions"`
	Functions   string                   `json:"functions"`
	StoreLabel  string                   `json:"store_label"`
	CreatedAt   time.Time                `json:"created_at"`
	UpdatedAt   time.Time                `json:"updated_at"`
}

// NewProfileResponse projeta a entidade com os rótulos já calculados.
func NewProfileResponse(p *entity.Profile, functions, storeLabel string) *ProfileResponse {
	if p == nil {
		return nil
	}
	perms := make(map[string]GrantResponse, len(p.Permissions))
	for module, g := range p.Permissions {
		perms[string(module)] = GrantResponse{Function: g.Function, StoreID: g.StoreID}
	}
	return &ProfileResponse{
		ID:          p.ID,
		Handle:      p.Handle,
		Email:       p.Email,
		Name:        p.Name,
		Role:        p.Role,
		IsAdmin:     p.IsAdmin,
		StoreID:     p.StoreID,
		Permissions: perms,
		Functions:   functions,
		StoreLabel:  storeLabel,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}
