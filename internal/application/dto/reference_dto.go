package dto

import "github.com/operaloja/operaloja-api/internal/domain/entity"

// StoreResponse loja na resposta de referência.
type StoreResponse struct {
	ID     string `json:"id"`
	Code   string `json:"code"`
	Name   string `json:"name"`
	Region string `json:"region"`
}

// NewStoreResponses projeta a listagem de lojas.
func NewStoreResponses(stores []*entity.Store) []StoreResponse {
	out := make([]StoreResponse, 0, len(stores))
	for _, s := range stores {
		out = append(out, StoreResponse{ID: s.ID, Code: s.Code, Name: s.Name, Region: s.Region})
	}
	return out
}

// ProductResponse produto na resposta de referência.
type ProductResponse struct {
	ID       string `json:"id"`
	Code     string `json:"code"`
	Name     string `json:"name"`
	Brand    string `json:"brand"`
	Unit     string `json:"unit"`
	Category string `json:"category"`
}

// NewProductResponses projeta a listagem de produtos.
func NewProductResponses(products []*entity.Product) []ProductResponse {
	out := make([]ProductResponse, 0, len(products))
	for _, p := range products {
		out = append(out, ProductResponse{
			ID: p.ID, Code: p.Code, Name: p.Name,
			Brand: p.Brand, Unit: p.Unit, Category: p.Category,
		})
	}
	return out
}
