// Package solicitation implementa os pedidos de conferência entre papéis:
// criação simples ou com fan-out para todas as lojas, resolução, arquivamento
// e cancelamento pelo solicitante enquanto pendente.
package solicitation

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/operaloja/operaloja-api/internal/application/refdata"
	"github.com/operaloja/operaloja-api/internal/domain"
	"github.com/operaloja/operaloja-api/internal/domain/entity"
	"github.com/operaloja/operaloja-api/internal/domain/permission"
	"github.com/operaloja/operaloja-api/internal/domain/repository"
	"github.com/operaloja/operaloja-api/pkg/logger"
)

// Identity entrega o usuário corrente para escopo das consultas.
type Identity interface {
	Profile() *entity.Profile
}

// Row é o modelo de leitura desnormalizado de uma solicitação. Referência
// obrigatória ausente descarta a linha, como na coleção de validade.
type Row struct {
	Solicitation entity.Solicitation
	Store        entity.Store
	Product      entity.Product
	RequestedBy  entity.Profile
}

// Options controla o recorte da consulta.
type Options struct {
	Statuses []string
}

// CreateInput dados para criação de uma solicitação.
type CreateInput struct {
	StoreID     string
	ProductID   string
	Observation *string
}

// Service concentra consultas e mutações de solicitações.
type Service struct {
	solicitations repository.SolicitationRepository
	stores        repository.StoreRepository
	refs          *refdata.Loader
	log           *logger.Logger
	now           func() time.Time
}

// NewService constrói o serviço de solicitações.
func NewService(solicitations repository.SolicitationRepository, stores repository.StoreRepository, refs *refdata.Loader, log *logger.Logger) *Service {
	return &Service{solicitations: solicitations, stores: stores, refs: refs, log: log, now: time.Now}
}

// Fetch consulta solicitações, resolve referências (descartando linhas
// órfãs) e aplica o escopo de loja da concessão do usuário.
func (s *Service) Fetch(ctx context.Context, viewer *entity.Profile, opts Options) ([]Row, error) {
	if !permission.HasModuleAccess(viewer, entity.ModuleSolicitacoes) {
		return nil, domain.ErrForbidden
	}

	list, err := s.solicitations.List(ctx, repository.SolicitationFilter{Statuses: opts.Statuses})
	if err != nil {
		return nil, err
	}

	storeIDs := make([]string, 0, len(list))
	productIDs := make([]string, 0, len(list))
	userIDs := make([]string, 0, len(list))
	for _, sol := range list {
		storeIDs = append(storeIDs, sol.StoreID)
		productIDs = append(productIDs, sol.ProductID)
		userIDs = append(userIDs, sol.RequestedBy)
	}
	stores, err := s.refs.StoresByID(ctx, storeIDs)
	if err != nil {
		return nil, err
	}
	products, err := s.refs.ProductsByID(ctx, productIDs)
	if err != nil {
		return nil, err
	}
	profiles, err := s.refs.ProfilesByID(ctx, userIDs)
	if err != nil {
		return nil, err
	}

	scope := permission.ModuleStoreID(viewer, entity.ModuleSolicitacoes)

	rows := make([]Row, 0, len(list))
	for _, sol := range list {
		store, okS := stores[sol.StoreID]
		product, okP := products[sol.ProductID]
		requester, okU := profiles[sol.RequestedBy]
		if !okS || !okP || !okU {
			s.log.Debug().Str("solicitation_id", sol.ID).Msg("solicitação com referência ausente descartada")
			continue
		}
		if scope != nil && sol.StoreID != *scope {
			continue
		}
		rows = append(rows, Row{Solicitation: *sol, Store: store, Product: product, RequestedBy: requester})
	}
	return rows, nil
}

// Create abre uma solicitação pendente para uma loja.
func (s *Service) Create(ctx context.Context, viewer *entity.Profile, in CreateInput) (*entity.Solicitation, error) {
	if !permission.HasModuleAccess(viewer, entity.ModuleSolicitacoes) {
		return nil, domain.ErrForbidden
	}
	if in.StoreID == "" || in.ProductID == "" {
		return nil, domain.ErrInvalidInput
	}
	sol := s.build(viewer, in.StoreID, in.ProductID, in.Observation)
	if err := s.solicitations.Create(ctx, sol); err != nil {
		return nil, err
	}
	return sol, nil
}

// CreateForAllStores abre a mesma solicitação para todas as lojas de uma vez
// (fan-out). Inserção em lote; cada loja recebe seu próprio registro.
func (s *Service) CreateForAllStores(ctx context.Context, viewer *entity.Profile, productID string, observation *string) ([]*entity.Solicitation, error) {
	if !permission.HasModuleAccess(viewer, entity.ModuleSolicitacoes) {
		return nil, domain.ErrForbidden
	}
	if productID == "" {
		return nil, domain.ErrInvalidInput
	}
	stores, err := s.stores.List(ctx)
	if err != nil {
		return nil, err
	}
	if len(stores) == 0 {
		return nil, nil
	}
	batch := make([]*entity.Solicitation, 0, len(stores))
	for _, st := range stores {
		batch = append(batch, s.build(viewer, st.ID, productID, observation))
	}
	if err := s.solicitations.CreateBatch(ctx, batch); err != nil {
		return nil, err
	}
	return batch, nil
}

func (s *Service) build(viewer *entity.Profile, storeID, productID string, observation *string) *entity.Solicitation {
	return &entity.Solicitation{
		ID:          uuid.New().String(),
		StoreID:     storeID,
		ProductID:   productID,
		RequestedBy: viewer.ID,
		Observation: observation,
		Status:      entity.SolicitationPendente,
		RequestedAt: s.now(),
	}
}

// Resolve fecha a solicitação como resolvida, carimbando resolved_at.
func (s *Service) Resolve(ctx context.Context, viewer *entity.Profile, id string) error {
	return s.transition(ctx, viewer, id, entity.SolicitationResolvido)
}

// Archive arquiva a solicitação. Permitido a partir de pendente ou resolvido.
func (s *Service) Archive(ctx context.Context, viewer *entity.Profile, id string) error {
	if !permission.HasModuleAccess(viewer, entity.ModuleSolicitacoes) {
		return domain.ErrForbidden
	}
	sol, err := s.solicitations.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if sol == nil {
		return domain.ErrNotFound
	}
	if sol.Status == entity.SolicitationArquivado {
		return domain.ErrConflict
	}
	now := s.now()
	return s.solicitations.SetStatus(ctx, id, entity.SolicitationArquivado, &now)
}

// Cancel arquiva uma solicitação pendente a pedido do próprio solicitante.
// Outros usuários não cancelam; solicitação já fechada não volta.
func (s *Service) Cancel(ctx context.Context, viewer *entity.Profile, id string) error {
	if !permission.HasModuleAccess(viewer, entity.ModuleSolicitacoes) {
		return domain.ErrForbidden
	}
	sol, err := s.solicitations.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if sol == nil {
		return domain.ErrNotFound
	}
	if sol.RequestedBy != viewer.ID {
		return domain.ErrForbidden
	}
	if sol.Status != entity.SolicitationPendente {
		return domain.ErrConflict
	}
	now := s.now()
	return s.solicitations.SetStatus(ctx, id, entity.SolicitationArquivado, &now)
}

func (s *Service) transition(ctx context.Context, viewer *entity.Profile, id, next string) error {
	if !permission.HasModuleAccess(viewer, entity.ModuleSolicitacoes) {
		return domain.ErrForbidden
	}
	sol, err := s.solicitations.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if sol == nil {
		return domain.ErrNotFound
	}
	if sol.Status != entity.SolicitationPendente {
		return domain.ErrConflict
	}
	now := s.now()
	return s.solicitations.SetStatus(ctx, id, next, &now)
}
