package entity

import "time"

// Papéis válidos para Profile. "encarregado" e "conferente" são papéis legados:
// usuários antigos podem não ter mapa de permissões e dependem do fallback por papel.
const (
	RoleAdmin       = "admin"
	RoleEncarregado = "encarregado"
	RoleConferente  = "conferente"
)

// Module identifica uma área funcional do sistema, liberada de forma independente por permissão.
type Module string

// Módulos conhecidos. Qualquer outra chave vinda do backend é descartada no parse.
const (
	ModuleValidade      Module = "validade"
	ModuleAcougue       Module = "acougue"
	ModulePlanograma    Module = "planograma"
	ModuleSolicitacoes  Module = "solicitacoes"
	ModuleConfiguracoes Module = "configuracoes"
)

// Grant é a concessão de acesso de um usuário a um módulo.
// StoreID nil significa escopo em todas as lojas.
type Grant struct {
	Function string
	StoreID  *string
}

// Profile representa o perfil de um usuário do sistema.
// Permissions é chaveado por módulo: no máximo uma concessão por módulo.
type Profile struct {
	ID           string
	Handle       string // identificador curto gerado a partir do email (ex.: "maria", "maria2")
	Email        string
	PasswordHash string
	Name         string
	Role         string // admin, encarregado, conferente
	IsAdmin      bool
	StoreID      *string // loja "casa" do usuário
	Permissions  map[Module]Grant
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
