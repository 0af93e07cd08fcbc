// Package session resolve e mantém a identidade do usuário corrente.
// O único estado persistido entre sessões é o email do último login;
// todo o resto vem do backend a cada restauração.
package session

import (
	"context"
	"errors"
	"sync"

	"github.com/operaloja/operaloja-api/internal/domain"
	"github.com/operaloja/operaloja-api/internal/domain/entity"
	"github.com/operaloja/operaloja-api/pkg/logger"
)

// Estados do provider.
const (
	StateLoading       = "loading"
	StateAuthenticated = "authenticated"
	StateAnonymous     = "anonymous"
)

// ErrSuperseded indica que outro login começou enquanto este resolvia.
// O resultado obsoleto é descartado; vence sempre a tentativa mais recente.
var ErrSuperseded = errors.New("login substituído por tentativa mais recente")

// ProfileLookup é o porto mínimo de resolução de perfil.
// Satisfeito por repository.ProfileRepository.
type ProfileLookup interface {
	GetByEmail(ctx context.Context, email string) (*entity.Profile, error)
}

// IdentifierStore persiste o identificador único entre sessões.
type IdentifierStore interface {
	Load() (string, error)
	Save(identifier string) error
	Clear() error
}

// Snapshot é a visão imutável do estado corrente.
type Snapshot struct {
	State   string
	Profile *entity.Profile
}

// Provider é a máquina de estados loading -> authenticated | anonymous.
// Toda coleção usa o provider para escopar suas consultas pelo usuário corrente.
type Provider struct {
	lookup ProfileLookup
	ids    IdentifierStore
	log    *logger.Logger

	mu      sync.Mutex
	state   string
	profile *entity.Profile
	attempt uint64 // contador monotônico: resolução antiga nunca sobrescreve a nova
}

// NewProvider constrói o provider em estado loading.
func NewProvider(lookup ProfileLookup, ids IdentifierStore, log *logger.Logger) *Provider {
	return &Provider{lookup: lookup, ids: ids, log: log, state: StateLoading}
}

// Restore tenta a restauração silenciosa da sessão a partir do identificador
// persistido. Falhas não propagam: limpam o identificador e caem para
// anonymous com log (é o boot da aplicação, não uma ação do usuário).
func (p *Provider) Restore(ctx context.Context) {
	email, err := p.ids.Load()
	if err != nil || email == "" {
		p.setAnonymous()
		return
	}
	if _, err := p.resolve(ctx, email); err != nil {
		if !errors.Is(err, ErrSuperseded) {
			p.log.Warn().Err(err).Msg("restauração de sessão falhou")
		}
	}
}

// Login resolve o perfil do email de forma interativa. Falha de lookup é
// devolvida ao chamador como tentativa de login falhada e limpa o
// identificador persistido. Se outro login começar durante a resolução,
// este devolve ErrSuperseded sem tocar no estado (vence o último).
func (p *Provider) Login(ctx context.Context, email string) (*entity.Profile, error) {
	return p.resolve(ctx, email)
}

func (p *Provider) resolve(ctx context.Context, email string) (*entity.Profile, error) {
	p.mu.Lock()
	p.attempt++
	token := p.attempt
	p.state = StateLoading
	p.mu.Unlock()

	profile, err := p.lookup.GetByEmail(ctx, email)

	p.mu.Lock()
	defer p.mu.Unlock()
	if token != p.attempt {
		return nil, ErrSuperseded
	}
	if err != nil {
		p.state = StateAnonymous
		p.profile = nil
		_ = p.ids.Clear()
		return nil, err
	}
	if profile == nil {
		p.state = StateAnonymous
		p.profile = nil
		_ = p.ids.Clear()
		return nil, domain.ErrUserNotFound
	}
	p.state = StateAuthenticated
	p.profile = profile
	if err := p.ids.Save(email); err != nil {
		p.log.Warn().Err(err).Msg("não foi possível persistir identificador de sessão")
	}
	return profile, nil
}

// Logout é síncrono: limpa estado e identificador na hora, sem chamada ao
// backend (não existe sessão de servidor a revogar). Também invalida
// qualquer resolução em voo.
func (p *Provider) Logout() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.attempt++
	p.state = StateAnonymous
	p.profile = nil
	_ = p.ids.Clear()
}

// Current devolve um snapshot do estado corrente.
func (p *Provider) Current() Snapshot {
	p.mu.Lock()
	defer p.mu.Unlock()
	return Snapshot{State: p.state, Profile: p.profile}
}

// Profile devolve o perfil autenticado corrente, ou nil.
func (p *Provider) Profile() *entity.Profile {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.profile
}

func (p *Provider) setAnonymous() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.state = StateAnonymous
	p.profile = nil
	_ = p.ids.Clear()
}
