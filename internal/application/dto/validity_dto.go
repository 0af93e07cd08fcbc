package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/operaloja/operaloja-api/internal/application/validity"
)

// CreateValidityRequest entrada para criação de entrada de validade.
type CreateValidityRequest struct {
	ProductID string          `json:"product_id" validate:"required,uuid"`
	StoreID   string          `json:"store_id" validate:"required,uuid"`
	ExpiresAt time.Time       `json:"expires_at" validate:"required"`
	Lot       *string         `json:"lot" validate:"omitempty,max=100"`
	Quantity  decimal.Decimal `json:"quantity" validate:"required"`
	Unit      string          `json:"unit" validate:"required,oneof=un kg bandeja"`
}

// RequestDeleteRequest abre um pedido de exclusão.
type RequestDeleteRequest struct {
	Reason string `json:"reason" validate:"required,min=3,max=500"`
}

// DeleteRequestResponse pedido de exclusão pendente anexado à linha.
type DeleteRequestResponse struct {
	ID          string    `json:"id"`
	Reason      string    `json:"reason"`
	RequestedBy string    `json:"requested_by"`
	RequestedAt time.Time `json:"requested_at"`
	Status      string    `json:"status"`
}

// ValidityRowResponse linha desnormalizada da listagem de validade.
type ValidityRowResponse struct {
	ID            string                 `json:"id"`
	ProductID     string                 `json:"product_id"`
	ProductCode   string                 `json:"product_code"`
	ProductName   string                 `json:"product_name"`
	StoreID       string                 `json:"store_id"`
	StoreName     string                 `json:"store_name"`
	ExpiresAt     time.Time              `json:"expires_at"`
	Lot           *string                `json:"lot"`
	Quantity      decimal.Decimal        `json:"quantity"`
	Unit          string                 `json:"unit"`
	Status        string                 `json:"status"`
	CreatedByName string                 `json:"created_by_name"`
	VerifiedAt    *time.Time             `json:"verified_at"`
	VerifiedBy    *string                `json:"verified_by"`
	CreatedAt     time.Time              `json:"created_at"`
	DeletedAt     *time.Time             `json:"deleted_at"`
	PendingDelete *DeleteRequestResponse `json:"pending_delete,omitempty"`
}

// NewValidityRowResponse projeta a linha da coleção.
func NewValidityRowResponse(r validity.Row) ValidityRowResponse {
	out := ValidityRowResponse{
		ID:            r.Entry.ID,
		ProductID:     r.Product.ID,
		ProductCode:   r.Product.Code,
		ProductName:   r.Product.Name,
		StoreID:       r.Store.ID,
		StoreName:     r.Store.Name,
		ExpiresAt:     r.Entry.ExpiresAt,
		Lot:           r.Entry.Lot,
		Quantity:      r.Entry.Quantity,
		Unit:          r.Entry.Unit,
		Status:        r.Entry.Status,
		CreatedByName: r.CreatedByUser.Name,
		VerifiedAt:    r.Entry.VerifiedAt,
		VerifiedBy:    r.Entry.VerifiedBy,
		CreatedAt:     r.Entry.CreatedAt,
		DeletedAt:     r.Entry.DeletedAt,
	}
	if r.PendingDelete != nil {
		out.PendingDelete = &DeleteRequestResponse{
			ID:          r.PendingDelete.ID,
			Reason:      r.PendingDelete.Reason,
			RequestedBy: r.PendingDelete.RequestedBy,
			RequestedAt: r.PendingDelete.RequestedAt,
			Status:      r.PendingDelete.Status,
		}
	}
	return out
}

// NewValidityRowResponses projeta a listagem inteira.
func NewValidityRowResponses(rows []validity.Row) []ValidityRowResponse {
	out := make([]ValidityRowResponse, 0, len(rows))
	for _, r := range rows {
		out = append(out, NewValidityRowResponse(r))
	}
	return out
}
