package dto

import (
	"time"

	"github.com/operaloja/operaloja-api/internal/application/solicitation"
	"github.com/operaloja/operaloja-api/internal/domain/entity"
)

// CreateSolicitationRequest entrada para criação de solicitação. Sem
// store_id e com all_stores ligado, a criação faz fan-out para todas as lojas.
type CreateSolicitationRequest struct {
	StoreID     *string `json:"store_id" validate:"omitempty,uuid"`
	ProductID   string  `json:"product_id" validate:"required,uuid"`
	Observation *string `json:"observation" validate:"omitempty,max=500"`
	AllStores   bool    `json:"all_stores"`
}

// SolicitationResponse solicitação desnormalizada na resposta.
type SolicitationResponse struct {
	ID              string     `json:"id"`
	StoreID         string     `json:"store_id"`
	StoreName       string     `json:"store_name"`
	ProductID       string     `json:"product_id"`
	ProductCode     string     `json:"product_code"`
	ProductName     string     `json:"product_name"`
	RequestedBy     string     `json:"requested_by"`
	RequestedByName string     `json:"requested_by_name"`
	Observation     *string    `json:"observation"`
	Status          string     `json:"status"`
	RequestedAt     time.Time  `json:"requested_at"`
	ResolvedAt      *time.Time `json:"resolved_at"`
}

// NewSolicitationResponse projeta a linha da coleção.
func NewSolicitationResponse(r solicitation.Row) SolicitationResponse {
	return SolicitationResponse{
		ID:              r.Solicitation.ID,
		StoreID:         r.Store.ID,
		StoreName:       r.Store.Name,
		ProductID:       r.Product.ID,
		ProductCode:     r.Product.Code,
		ProductName:     r.Product.Name,
		RequestedBy:     r.Solicitation.RequestedBy,
		RequestedByName: r.RequestedBy.Name,
		Observation:     r.Solicitation.Observation,
		Status:          r.Solicitation.Status,
		RequestedAt:     r.Solicitation.RequestedAt,
		ResolvedAt:      r.Solicitation.ResolvedAt,
	}
}

// NewSolicitationResponses projeta a listagem inteira.
func NewSolicitationResponses(rows []solicitation.Row) []SolicitationResponse {
	out := make([]SolicitationResponse, 0, len(rows))
	for _, r := range rows {
		out = append(out, NewSolicitationResponse(r))
	}
	return out
}

// NewCreatedSolicitationResponses projeta solicitações recém criadas, antes
// da resolução de referências.
func NewCreatedSolicitationResponses(list []*entity.Solicitation) []SolicitationResponse {
	out := make([]SolicitationResponse, 0, len(list))
	for _, s := range list {
		out = append(out, SolicitationResponse{
			ID:          s.ID,
			StoreID:     s.StoreID,
			ProductID:   s.ProductID,
			RequestedBy: s.RequestedBy,
			Observation: s.Observation,
			Status:      s.Status,
			RequestedAt: s.RequestedAt,
		})
	}
	return out
}
