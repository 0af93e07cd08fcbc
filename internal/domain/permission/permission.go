// Package permission concentra a lógica de acesso por módulo e escopo de loja.
// Todas as funções são totais: dados de permissão ausentes ou malformados
// degradam para "sem acesso", nunca para erro.
package permission

import (
	"encoding/json"
	"sort"
	"strings"

	"github.com/operaloja/operaloja-api/internal/domain/entity"
)

// knownModules é o conjunto fechado de módulos aceitos no parse.
var knownModules = map[entity.Module]bool{
	entity.ModuleValidade:      true,
	entity.ModuleAcougue:       true,
	entity.ModulePlanograma:    true,
	entity.ModuleSolicitacoes:  true,
	entity.ModuleConfiguracoes: true,
}

// KnownModule informa se o módulo pertence ao conjunto fechado. Usado na
// escrita de concessões: módulo desconhecido seria descartado no parse de
// leitura, então é rejeitado antes de persistir.
func KnownModule(m entity.Module) bool {
	return knownModules[m]
}

// legacyModules mapeia papéis legados (usuários sem mapa de permissões)
// para os módulos que sempre tiveram acesso.
var legacyModules = map[string][]entity.Module{
	entity.RoleEncarregado: {entity.ModuleValidade, entity.ModuleAcougue, entity.ModuleSolicitacoes},
	entity.RoleConferente:  {entity.ModuleValidade, entity.ModuleSolicitacoes},
}

// rawGrant é o formato cru do backend: {"function": "...", "store_id": "..."|null}.
type rawGrant struct {
	Function string  `json:"function"`
	StoreID  *string `json:"store_id"`
}

// ParseGrants converte o JSON cru de permissões do backend no mapa tipado.
// Chaves de módulo desconhecidas e entradas malformadas são descartadas.
// Entrada vazia ou inválida resulta em mapa vazio, nunca em erro.
func ParseGrants(raw []byte) map[entity.Module]entity.Grant {
	grants := make(map[entity.Module]entity.Grant)
	if len(raw) == 0 {
		return grants
	}
	var decoded map[string]rawGrant
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return grants
	}
	for key, g := range decoded {
		module := entity.Module(strings.ToLower(strings.TrimSpace(key)))
		if !knownModules[module] || g.Function == "" {
			continue
		}
		grants[module] = entity.Grant{Function: g.Function, StoreID: g.StoreID}
	}
	return grants
}

// HasModuleAccess informa se o usuário pode ver o módulo.
// Admin ignora qualquer verificação; sem concessão explícita vale o fallback por papel legado.
func HasModuleAccess(p *entity.Profile, module entity.Module) bool {
	if p == nil {
		return false
	}
	if p.IsAdmin || p.Role == entity.RoleAdmin {
		return true
	}
	if _, ok := p.Permissions[module]; ok {
		return true
	}
	for _, m := range legacyModules[p.Role] {
		if m == module {
			return true
		}
	}
	return false
}

// ModuleStoreID devolve a loja que limita o escopo da concessão do módulo.
// nil significa todas as lojas; admin sempre resolve para nil.
// Concessões legadas (por papel) ficam limitadas à loja casa do usuário.
func ModuleStoreID(p *entity.Profile, module entity.Module) *string {
	if p == nil || p.IsAdmin || p.Role == entity.RoleAdmin {
		return nil
	}
	if grant, ok := p.Permissions[module]; ok {
		return grant.StoreID
	}
	for _, m := range legacyModules[p.Role] {
		if m == module {
			return p.StoreID
		}
	}
	return nil
}

// FunctionsLabel devolve a projeção de exibição das funções do usuário,
// ordenada por nome de módulo para saída estável.
func FunctionsLabel(p *entity.Profile) string {
	if p == nil {
		return ""
	}
	if p.IsAdmin || p.Role == entity.RoleAdmin {
		return "Administrador"
	}
	if len(p.Permissions) == 0 {
		return legacyRoleLabel(p.Role)
	}
	modules := make([]string, 0, len(p.Permissions))
	for m := range p.Permissions {
		modules = append(modules, string(m))
	}
	sort.Strings(modules)
	parts := make([]string, 0, len(modules))
	for _, m := range modules {
		grant := p.Permissions[entity.Module(m)]
		parts = append(parts, m+": "+grant.Function)
	}
	return strings.Join(parts, ", ")
}

// StoreLabel devolve o nome da loja casa do usuário, "Todas as lojas" quando
// não há loja, ou o próprio ID quando a loja não está no índice recebido.
func StoreLabel(p *entity.Profile, stores map[string]entity.Store) string {
	if p == nil || p.StoreID == nil {
		return "Todas as lojas"
	}
	if s, ok := stores[*p.StoreID]; ok {
		return s.Name
	}
	return *p.StoreID
}

func legacyRoleLabel(role string) string {
	switch role {
	case entity.RoleEncarregado:
		return "Encarregado"
	case entity.RoleConferente:
		return "Conferente"
	default:
		return "Sem função"
	}
}
