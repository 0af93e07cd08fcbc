// Package butcher implementa o fluxo de pedidos do açougue: numeração por
// loja/dia, máquina de status com carimbos, cópia de pedidos, edição de itens
// com debounce e limpeza de rascunhos abandonados.
package butcher

import (
	"context"
	"fmt"
	"strings"
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

// Nomes exibidos quando a referência do pedido não existe mais. Pedido é
// operacional: fica visível com placeholder em vez de sumir da listagem
// (assimetria proposital com a coleção de validade, que descarta linhas órfãs).
const (
	PlaceholderStoreName = "loja desconhecida"
)

// Row é o modelo de leitura desnormalizado de um pedido.
type Row struct {
	Order           entity.ButcherOrder
	RequesterStore  entity.Store
	ProductionStore *entity.Store
	CreatedByUser   *entity.Profile
}

// Options controla o recorte da consulta de pedidos.
type Options struct {
	Statuses []string
}

// Service concentra consultas e mutações de pedidos do açougue.
type Service struct {
	orders repository.OrderRepository
	refs   *refdata.Loader
	tx     TxRunner
	log    *logger.Logger
	now    func() time.Time
}

// NewService constrói o serviço de pedidos.
func NewService(orders repository.OrderRepository, refs *refdata.Loader, tx TxRunner, log *logger.Logger) *Service {
	return &Service{orders: orders, refs: refs, tx: tx, log: log, now: time.Now}
}

// Fetch consulta pedidos, resolve referências e aplica o escopo de loja da
// concessão do usuário. Referência ausente vira placeholder, nunca descarte.
func (s *Service) Fetch(ctx context.Context, viewer *entity.Profile, opts Options) ([]Row, error) {
	if !permission.HasModuleAccess(viewer, entity.ModuleAcougue) {
		return nil, domain.ErrForbidden
	}

	orders, err := s.orders.List(ctx, repository.OrderFilter{Statuses: opts.Statuses})
	if err != nil {
		return nil, err
	}

	storeIDs := make([]string, 0, len(orders)*2)
	userIDs := make([]string, 0, len(orders))
	for _, o := range orders {
		storeIDs = append(storeIDs, o.RequesterStoreID)
		if o.ProductionStoreID != nil {
			storeIDs = append(storeIDs, *o.ProductionStoreID)
		}
		userIDs = append(userIDs, o.CreatedBy)
	}
	stores, err := s.refs.StoresByID(ctx, storeIDs)
	if err != nil {
		return nil, err
	}
	profiles, err := s.refs.ProfilesByID(ctx, userIDs)
	if err != nil {
		return nil, err
	}

	scope := permission.ModuleStoreID(viewer, entity.ModuleAcougue)

	rows := make([]Row, 0, len(orders))
	for _, o := range orders {
		if scope != nil && o.RequesterStoreID != *scope {
			continue
		}
		row := Row{Order: *o, RequesterStore: storeOrPlaceholder(stores, o.RequesterStoreID)}
		if o.ProductionStoreID != nil {
			ps := storeOrPlaceholder(stores, *o.ProductionStoreID)
			row.ProductionStore = &ps
		}
		if creator, ok := profiles[o.CreatedBy]; ok {
			row.CreatedByUser = &creator
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func storeOrPlaceholder(stores map[string]entity.Store, id string) entity.Store {
	if s, ok := stores[id]; ok {
		return s
	}
	return entity.Store{ID: id, Name: PlaceholderStoreName}
}

// NextOrderNumber monta o número {prefixo}-{DDMM}-{NN} da loja para o dia
// corrente. Leitura-depois-escrita sem trava: sob criação concorrente da
// mesma loja o sufixo pode colidir; janela aceita pelo volume de uma loja.
func (s *Service) NextOrderNumber(ctx context.Context, store entity.Store) (string, error) {
	now := s.now()
	count, err := s.orders.CountCreatedForDay(ctx, store.ID, now)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s-%s-%02d", storePrefix(store), now.Format("0201"), count+1), nil
}

// storePrefix deriva o prefixo do número a partir do código da loja, caindo
// para a primeira palavra do nome quando não há código.
func storePrefix(store entity.Store) string {
	code := strings.ToLower(strings.ReplaceAll(strings.TrimSpace(store.Code), " ", ""))
	if code != "" {
		return code
	}
	name := strings.Fields(strings.ToLower(store.Name))
	if len(name) > 0 {
		return name[0]
	}
	return "loja"
}

// CreateInput dados para criação de um pedido.
type CreateInput struct {
	RequesterStoreID  string
	ProductionStoreID *string
	Items             []ItemInput
}

// ItemInput linha de pedido na criação/edição.
type ItemInput struct {
	ProductID   string
	ProductCode string
	ProductName string
	Quantity    decimal.Decimal
	Unit        string
	Notes       *string
}

// Create persiste um novo rascunho com numeração da loja/dia. Pedido e itens
// entram na mesma transação.
func (s *Service) Create(ctx context.Context, viewer *entity.Profile, in CreateInput) (*entity.ButcherOrder, error) {
	if !permission.HasModuleAccess(viewer, entity.ModuleAcougue) {
		return nil, domain.ErrForbidden
	}
	if in.RequesterStoreID == "" {
		return nil, domain.ErrInvalidInput
	}
	stores, err := s.refs.StoresByID(ctx, []string{in.RequesterStoreID})
	if err != nil {
		return nil, err
	}
	store, ok := stores[in.RequesterStoreID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	number, err := s.NextOrderNumber(ctx, store)
	if err != nil {
		return nil, err
	}

	now := s.now()
	order := &entity.ButcherOrder{
		ID:                uuid.New().String(),
		OrderNumber:       number,
		RequesterStoreID:  in.RequesterStoreID,
		ProductionStoreID: in.ProductionStoreID,
		Status:            entity.OrderDraft,
		CreatedBy:         viewer.ID,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	order.Items = buildItems(order.ID, in.Items)

	err = s.tx.RunOrders(ctx, func(orders repository.OrderRepository) error {
		return orders.Create(ctx, order)
	})
	if err != nil {
		return nil, err
	}
	return order, nil
}

func buildItems(orderID string, in []ItemInput) []entity.ButcherOrderItem {
	items := make([]entity.ButcherOrderItem, 0, len(in))
	for _, it := range in {
		items = append(items, entity.ButcherOrderItem{
			ID:          uuid.New().String(),
			OrderID:     orderID,
			ProductID:   it.ProductID,
			ProductCode: it.ProductCode,
			ProductName: it.ProductName,
			Quantity:    it.Quantity,
			Unit:        it.Unit,
			Notes:       it.Notes,
		})
	}
	return items
}

// Copy cria um novo rascunho independente a partir de um pedido existente:
// mesmos itens e quantidades, numeração e ID próprios, sem estado compartilhado.
func (s *Service) Copy(ctx context.Context, viewer *entity.Profile, sourceID string) (*entity.ButcherOrder, error) {
	if !permission.HasModuleAccess(viewer, entity.ModuleAcougue) {
		return nil, domain.ErrForbidden
	}
	source, err := s.orders.GetByID(ctx, sourceID)
	if err != nil {
		return nil, err
	}
	if source == nil {
		return nil, domain.ErrNotFound
	}
	in := CreateInput{
		RequesterStoreID:  source.RequesterStoreID,
		ProductionStoreID: source.ProductionStoreID,
	}
	for _, it := range source.Items {
		in.Items = append(in.Items, ItemInput{
			ProductID:   it.ProductID,
			ProductCode: it.ProductCode,
			ProductName: it.ProductName,
			Quantity:    it.Quantity,
			Unit:        it.Unit,
			Notes:       it.Notes,
		})
	}
	return s.Create(ctx, viewer, in)
}

// Transition aplica a transição de status, carimbando o timestamp do passo
// junto com o status na mesma escrita. Transição fora da máquina devolve
// ErrInvalidTransition.
func (s *Service) Transition(ctx context.Context, viewer *entity.Profile, orderID, next string) error {
	if !permission.HasModuleAccess(viewer, entity.ModuleAcougue) {
		return domain.ErrForbidden
	}
	order, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		return err
	}
	if order == nil {
		return domain.ErrNotFound
	}
	if !order.CanTransition(next) {
		return domain.ErrInvalidTransition
	}
	now := s.now()
	change := repository.OrderStatusChange{Status: next}
	switch next {
	case entity.OrderPending:
		change.SubmittedAt = &now
	case entity.OrderPrinted:
		change.PrintedAt = &now
	case entity.OrderCompleted:
		change.CompletedAt = &now
	case entity.OrderCancelled:
		change.CancelledAt = &now
	}
	return s.orders.SetStatus(ctx, orderID, change)
}

// MarkReceived registra o recebimento pela loja solicitante (pedido já concluído).
func (s *Service) MarkReceived(ctx context.Context, viewer *entity.Profile, orderID string) error {
	if !permission.HasModuleAccess(viewer, entity.ModuleAcougue) {
		return domain.ErrForbidden
	}
	order, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		return err
	}
	if order == nil {
		return domain.ErrNotFound
	}
	if order.Status != entity.OrderCompleted {
		return domain.ErrInvalidTransition
	}
	now := s.now()
	return s.orders.SetStatus(ctx, orderID, repository.OrderStatusChange{
		Status:     entity.OrderCompleted,
		ReceivedAt: &now,
	})
}

// SaveItems troca todos os itens do pedido (flush do editor com debounce).
// Só rascunhos e pendentes são editáveis.
func (s *Service) SaveItems(ctx context.Context, viewer *entity.Profile, orderID string, items []ItemInput) error {
	if !permission.HasModuleAccess(viewer, entity.ModuleAcougue) {
		return domain.ErrForbidden
	}
	order, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		return err
	}
	if order == nil {
		return domain.ErrNotFound
	}
	if order.Status != entity.OrderDraft && order.Status != entity.OrderPending {
		return domain.ErrConflict
	}
	// Troca de itens é delete + insert em duas tabelas: precisa da mesma
	// transação, senão um insert com falha deixa o pedido sem itens.
	return s.tx.RunOrders(ctx, func(orders repository.OrderRepository) error {
		return orders.ReplaceItems(ctx, orderID, buildItems(orderID, items))
	})
}

// CleanupAbandonedDraft remove fisicamente o pedido se ele for um rascunho
// sem itens (estado sem valor de auditoria). Devolve true se removeu.
// Qualquer outro estado fica intacto: exclusão com histórico é sempre soft.
func (s *Service) CleanupAbandonedDraft(ctx context.Context, orderID string) (bool, error) {
	order, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		return false, err
	}
	if order == nil {
		return false, nil
	}
	if order.Status != entity.OrderDraft || len(order.Items) > 0 {
		return false, nil
	}
	if err := s.orders.HardDelete(ctx, orderID); err != nil {
		return false, err
	}
	return true, nil
}
