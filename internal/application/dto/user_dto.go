package dto

// CreateUserRequest entrada para criação de usuário (admin). A senha
// temporária é gerada no use case e devolvida uma única vez na resposta.
type CreateUserRequest struct {
	Email       string                  `json:"email" validate:"required,email"`
	Name        string                  `json:"name" validate:"required,min=1,max=200"`
	Role        string                  `json:"role" validate:"required,oneof=admin encarregado conferente"`
	StoreID     *string                 `json:"store_id" validate:"omitempty,uuid"`
	Permissions map[string]GrantRequest `json:"permissions"`
}

// GrantRequest concessão de módulo na entrada.
type GrantRequest struct {
	Function string  `json:"function" validate:"required"`
	StoreID  *string `json:"store_id" validate:"omitempty,uuid"`
}

// CreateUserResponse perfil criado + senha temporária em texto (única vez).
type CreateUserResponse struct {
	User         ProfileResponse `json:"user"`
	TempPassword string          `json:"temp_password"`
}

// ReplacePermissionsRequest troca o mapa de permissões inteiro.
type ReplacePermissionsRequest struct {
	Permissions map[string]GrantRequest `json:"permissions" validate:"required"`
}
