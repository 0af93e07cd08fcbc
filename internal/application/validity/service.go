// Package validity implementa a coleção sincronizada de entradas de validade:
// consulta desnormalizada, escopo por permissão, conferência, soft delete e o
// subfluxo de pedidos de exclusão com aprovação.
package validity

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/operaloja/operaloja-api/internal/application/refdata"
	"github.com/operaloja/operaloja-api/internal/domain"
	"github.com/operaloja/operaloja-api/internal/domain/entity"
	"github.com/operaloja/operaloja-api/internal/domain/permission"
	"github.com/operaloja/operaloja-api/internal/domain/repository"
	"github.com/operaloja/operaloja-api/pkg/logger"
)

// Row é o modelo de leitura desnormalizado de uma entrada de validade.
// Linhas com referência obrigatória ausente são descartadas no fetch:
// nunca renderizar meia linha.
type Row struct {
	Entry         entity.ValidityEntry
	Product       entity.Product
	Store         entity.Store
	CreatedByUser entity.Profile
	PendingDelete *entity.DeleteRequest
}

// Options controla o recorte da consulta.
type Options struct {
	IncludeDeleted bool
	Statuses       []string
	ExpiresBefore  *time.Time
}

// CreateInput dados para criação de uma entrada.
type CreateInput struct {
	ProductID string
	StoreID   string
	ExpiresAt time.Time
	Lot       *string
	Quantity  decimal.Decimal
	Unit      string
}

// Service concentra consultas e mutações de validade. Sem estado: a camada
// de cache fica em Collection.
type Service struct {
	entries  repository.ValidityRepository
	requests repository.DeleteRequestRepository
	refs     *refdata.Loader
	tx       TxRunner
	log      *logger.Logger
	now      func() time.Time
}

// NewService constrói o serviço de validade.
func NewService(entries repository.ValidityRepository, requests repository.DeleteRequestRepository, refs *refdata.Loader, tx TxRunner, log *logger.Logger) *Service {
	return &Service{entries: entries, requests: requests, refs: refs, tx: tx, log: log, now: time.Now}
}

// Fetch executa o pipeline completo: consulta, resolução de referências,
// desnormalização (descartando linhas órfãs) e escopo de loja da concessão
// do usuário. Ordenado por criação, mais recentes primeiro (ordem da consulta).
func (s *Service) Fetch(ctx context.Context, viewer *entity.Profile, opts Options) ([]Row, error) {
	if !permission.HasModuleAccess(viewer, entity.ModuleValidade) {
		return nil, domain.ErrForbidden
	}

	filter := repository.ValidityFilter{
		IncludeDeleted: opts.IncludeDeleted,
		Statuses:       opts.Statuses,
		ExpiresBefore:  opts.ExpiresBefore,
	}
	entries, err := s.entries.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	productIDs := make([]string, 0, len(entries))
	storeIDs := make([]string, 0, len(entries))
	userIDs := make([]string, 0, len(entries))
	entryIDs := make([]string, 0, len(entries))
	for _, e := range entries {
		productIDs = append(productIDs, e.ProductID)
		storeIDs = append(storeIDs, e.StoreID)
		userIDs = append(userIDs, e.CreatedBy)
		entryIDs = append(entryIDs, e.ID)
	}

	products, err := s.refs.ProductsByID(ctx, productIDs)
	if err != nil {
		return nil, err
	}
	stores, err := s.refs.StoresByID(ctx, storeIDs)
	if err != nil {
		return nil, err
	}
	profiles, err := s.refs.ProfilesByID(ctx, userIDs)
	if err != nil {
		return nil, err
	}
	pending, err := s.pendingByEntry(ctx, entryIDs)
	if err != nil {
		return nil, err
	}

	scope := permission.ModuleStoreID(viewer, entity.ModuleValidade)

	rows := make([]Row, 0, len(entries))
	for _, e := range entries {
		product, okP := products[e.ProductID]
		store, okS := stores[e.StoreID]
		creator, okU := profiles[e.CreatedBy]
		if !okP || !okS || !okU {
			// Referência quebrada: linha sai da listagem em vez de aparecer incompleta.
			s.log.Debug().Str("entry_id", e.ID).Msg("entrada de validade com referência ausente descartada")
			continue
		}
		if scope != nil && e.StoreID != *scope {
			continue
		}
		rows = append(rows, Row{
			Entry:         *e,
			Product:       product,
			Store:         store,
			CreatedByUser: creator,
			PendingDelete: pending[e.ID],
		})
	}
	return rows, nil
}

func (s *Service) pendingByEntry(ctx context.Context, entryIDs []string) (map[string]*entity.DeleteRequest, error) {
	out := make(map[string]*entity.DeleteRequest)
	if len(entryIDs) == 0 {
		return out, nil
	}
	list, err := s.requests.ListPending(ctx)
	if err != nil {
		return nil, err
	}
	wanted := make(map[string]bool, len(entryIDs))
	for _, id := range entryIDs {
		wanted[id] = true
	}
	for _, r := range list {
		if wanted[r.ValidityEntryID] && out[r.ValidityEntryID] == nil {
			out[r.ValidityEntryID] = r
		}
	}
	return out, nil
}

// Create insere uma nova entrada com status pendente e devolve o registro criado.
func (s *Service) Create(ctx context.Context, viewer *entity.Profile, in CreateInput) (*entity.ValidityEntry, error) {
	if !permission.HasModuleAccess(viewer, entity.ModuleValidade) {
		return nil, domain.ErrForbidden
	}
	if in.ProductID == "" || in.StoreID == "" {
		return nil, domain.ErrInvalidInput
	}
	now := s.now()
	e := &entity.ValidityEntry{
		ID:        uuid.New().String(),
		ProductID: in.ProductID,
		StoreID:   in.StoreID,
		ExpiresAt: in.ExpiresAt,
		Lot:       in.Lot,
		Quantity:  in.Quantity,
		Unit:      in.Unit,
		Status:    entity.ValidityPendente,
		CreatedBy: viewer.ID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.entries.Create(ctx, e); err != nil {
		return nil, err
	}
	return e, nil
}

// Update substitui os campos mutáveis da entrada, carimbando updated_at.
func (s *Service) Update(ctx context.Context, viewer *entity.Profile, e *entity.ValidityEntry) error {
	if !permission.HasModuleAccess(viewer, entity.ModuleValidade) {
		return domain.ErrForbidden
	}
	e.UpdatedAt = s.now()
	return s.entries.Update(ctx, e)
}

// MarkVerified marca a entrada como conferida: status + verified_at +
// verified_by numa única escrita.
func (s *Service) MarkVerified(ctx context.Context, viewer *entity.Profile, id string) error {
	if !permission.HasModuleAccess(viewer, entity.ModuleValidade) {
		return domain.ErrForbidden
	}
	now := s.now()
	return s.entries.SetVerification(ctx, id, entity.ValidityConferido, &now, &viewer.ID)
}

// UnmarkVerified desfaz a conferência: carimbo e autor são limpos junto com o status.
func (s *Service) UnmarkVerified(ctx context.Context, viewer *entity.Profile, id string) error {
	if !permission.HasModuleAccess(viewer, entity.ModuleValidade) {
		return domain.ErrForbidden
	}
	return s.entries.SetVerification(ctx, id, entity.ValidityPendente, nil, nil)
}

// SoftDelete marca a entrada como excluída sem remover a linha.
func (s *Service) SoftDelete(ctx context.Context, viewer *entity.Profile, id string) error {
	if !permission.HasModuleAccess(viewer, entity.ModuleValidade) {
		return domain.ErrForbidden
	}
	return s.entries.SoftDelete(ctx, id, s.now())
}

// RequestDelete abre um pedido de exclusão para aprovação. No máximo um
// pendente por entrada.
func (s *Service) RequestDelete(ctx context.Context, viewer *entity.Profile, entryID, reason string) (*entity.DeleteRequest, error) {
	if !permission.HasModuleAccess(viewer, entity.ModuleValidade) {
		return nil, domain.ErrForbidden
	}
	entry, err := s.entries.GetByID(ctx, entryID)
	if err != nil {
		return nil, err
	}
	if entry == nil {
		return nil, domain.ErrNotFound
	}
	existing, err := s.requests.PendingByEntry(ctx, entryID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, domain.ErrPendingRequest
	}
	r := &entity.DeleteRequest{
		ID:              uuid.New().String(),
		ValidityEntryID: entryID,
		Reason:          reason,
		RequestedBy:     viewer.ID,
		RequestedAt:     s.now(),
		Status:          entity.DeleteRequestPendente,
	}
	if err := s.requests.Create(ctx, r); err != nil {
		return nil, err
	}
	return r, nil
}

// ApproveDelete aprova o pedido: fecha o pedido e marca a entrada como
// excluída na mesma transação. O pedido some das listagens de pendentes.
func (s *Service) ApproveDelete(ctx context.Context, viewer *entity.Profile, requestID string) error {
	if !permission.HasModuleAccess(viewer, entity.ModuleValidade) {
		return domain.ErrForbidden
	}
	now := s.now()
	return s.tx.RunValidity(ctx, func(entries repository.ValidityRepository, requests repository.DeleteRequestRepository) error {
		r, err := requests.GetByID(ctx, requestID)
		if err != nil {
			return err
		}
		if r == nil {
			return domain.ErrNotFound
		}
		if r.Status != entity.DeleteRequestPendente {
			return domain.ErrConflict
		}
		if err := requests.Resolve(ctx, r.ID, entity.DeleteRequestAprovado, now, viewer.ID); err != nil {
			return err
		}
		return entries.SoftDelete(ctx, r.ValidityEntryID, now)
	})
}

// RejectDelete rejeita o pedido sem tocar na entrada.
func (s *Service) RejectDelete(ctx context.Context, viewer *entity.Profile, requestID string) error {
	if !permission.HasModuleAccess(viewer, entity.ModuleValidade) {
		return domain.ErrForbidden
	}
	r, err := s.requests.GetByID(ctx, requestID)
	if err != nil {
		return err
	}
	if r == nil {
		return domain.ErrNotFound
	}
	if r.Status != entity.DeleteRequestPendente {
		return domain.ErrConflict
	}
	return s.requests.Resolve(ctx, r.ID, entity.DeleteRequestRejeitado, s.now(), viewer.ID)
}
