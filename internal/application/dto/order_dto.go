package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/operaloja/operaloja-api/internal/application/butcher"
	"github.com/operaloja/operaloja-api/internal/domain/entity"
)

// OrderItemRequest linha de pedido na criação/edição.
type OrderItemRequest struct {
	ProductID   string          `json:"product_id" validate:"required,uuid"`
	ProductCode string          `json:"product_code" validate:"required"`
	ProductName string          `json:"product_name" validate:"required"`
	Quantity    decimal.Decimal `json:"quantity" validate:"required"`
	Unit        string          `json:"unit" validate:"required,oneof=bandeja kg"`
	Notes       *string         `json:"notes" validate:"omitempty,max=300"`
}

// CreateOrderRequest entrada para criação de pedido do açougue.
type CreateOrderRequest struct {
	RequesterStoreID  string             `json:"requester_store_id" validate:"required,uuid"`
	ProductionStoreID *string            `json:"production_store_id" validate:"omitempty,uuid"`
	Items             []OrderItemRequest `json:"items" validate:"dive"`
}

// TransitionOrderRequest muda o status do pedido.
type TransitionOrderRequest struct {
	Status string `json:"status" validate:"required,oneof=pending printed completed cancelled"`
}

// SaveOrderItemsRequest troca todos os itens do pedido.
type SaveOrderItemsRequest struct {
	Items []OrderItemRequest `json:"items" validate:"dive"`
}

// OrderItemResponse item na resposta.
type OrderItemResponse struct {
	ID          string          `json:"id"`
	ProductID   string          `json:"product_id"`
	ProductCode string          `json:"product_code"`
	ProductName string          `json:"product_name"`
	Quantity    decimal.Decimal `json:"quantity"`
	Unit        string          `json:"unit"`
	Notes       *string         `json:"notes"`
}

// OrderResponse pedido desnormalizado na resposta.
type OrderResponse struct {
	ID                  string              `json:"id"`
	OrderNumber         string              `json:"order_number"`
	RequesterStoreID    string              `json:"requester_store_id"`
	RequesterStoreName  string              `json:"requester_store_name"`
	ProductionStoreID   *string             `json:"production_store_id"`
	ProductionStoreName *string             `json:"production_store_name"`
	Status              string              `json:"status"`
	CreatedByName       *string             `json:"created_by_name"`
	Items               []OrderItemResponse `json:"items"`
	SubmittedAt         *time.Time          `json:"submitted_at"`
	PrintedAt           *time.Time          `json:"printed_at"`
	CompletedAt         *time.Time          `json:"completed_at"`
	ReceivedAt          *time.Time          `json:"received_at"`
	CancelledAt         *time.Time          `json:"cancelled_at"`
	CreatedAt           time.Time           `json:"created_at"`
}

// NewOrderResponse projeta a linha da coleção.
func NewOrderResponse(r butcher.Row) OrderResponse {
	out := OrderResponse{
		ID:                 r.Order.ID,
		OrderNumber:        r.Order.OrderNumber,
		RequesterStoreID:   r.Order.RequesterStoreID,
		RequesterStoreName: r.RequesterStore.Name,
		ProductionStoreID:  r.Order.ProductionStoreID,
		Status:             r.Order.Status,
		Items:              newOrderItemResponses(r.Order.Items),
		SubmittedAt:        r.Order.SubmittedAt,
		PrintedAt:          r.Order.PrintedAt,
		CompletedAt:        r.Order.CompletedAt,
		ReceivedAt:         r.Order.ReceivedAt,
		CancelledAt:        r.Order.CancelledAt,
		CreatedAt:          r.Order.CreatedAt,
	}
	if r.ProductionStore != nil {
		out.ProductionStoreName = &r.ProductionStore.Name
	}
	if r.CreatedByUser != nil {
		out.CreatedByName = &r.CreatedByUser.Name
	}
	return out
}

// NewOrderResponses projeta a listagem inteira.
func NewOrderResponses(rows []butcher.Row) []OrderResponse {
	out := make([]OrderResponse, 0, len(rows))
	for _, r := range rows {
		out = append(out, NewOrderResponse(r))
	}
	return out
}

// NewCreatedOrderResponse projeta um pedido recém criado, ainda sem as
// referências resolvidas (o chamador refaz a listagem em seguida).
func NewCreatedOrderResponse(o *entity.ButcherOrder) OrderResponse {
	return OrderResponse{
		ID:                o.ID,
		OrderNumber:       o.OrderNumber,
		RequesterStoreID:  o.RequesterStoreID,
		ProductionStoreID: o.ProductionStoreID,
		Status:            o.Status,
		Items:             newOrderItemResponses(o.Items),
		CreatedAt:         o.CreatedAt,
	}
}

func newOrderItemResponses(items []entity.ButcherOrderItem) []OrderItemResponse {
	out := make([]OrderItemResponse, 0, len(items))
	for _, it := range items {
		out = append(out, OrderItemResponse{
			ID:          it.ID,
			ProductID:   it.ProductID,
			ProductCode: it.ProductCode,
			ProductName: it.ProductName,
			Quantity:    it.Quantity,
			Unit:        it.Unit,
			Notes:       it.Notes,
		})
	}
	return out
}

// OrderItemInputs converte a entrada HTTP para o tipo do serviço.
func OrderItemInputs(items []OrderItemRequest) []butcher.ItemInput {
	out := make([]butcher.ItemInput, 0, len(items))
	for _, it := range items {
		out = append(out, butcher.ItemInput{
			ProductID:   it.ProductID,
			ProductCode: it.ProductCode,
			ProductName: it.ProductName,
			Quantity:    it.Quantity,
			Unit:        it.Unit,
			Notes:       it.Notes,
		})
	}
	return out
}
