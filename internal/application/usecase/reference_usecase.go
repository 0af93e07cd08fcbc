package usecase

import (
	"context"
	"strings"

	"github.com/operaloja/operaloja-api/internal/application/dto"
	"github.com/operaloja/operaloja-api/internal/domain/repository"
)

// ReferenceUseCase expõe as tabelas de referência (lojas, catálogo) para os
// seletores da interface. Leitura pura, sem escopo: qualquer usuário
// autenticado enxerga o catálogo inteiro.
type ReferenceUseCase struct {
	stores   repository.StoreRepository
	products repository.ProductRepository
}

// NewReferenceUseCase constrói o caso de uso de referência.
func NewReferenceUseCase(stores repository.StoreRepository, products repository.ProductRepository) *ReferenceUseCase {
	return &ReferenceUseCase{stores: stores, products: products}
}

// ListStores devolve todas as lojas.
func (uc *ReferenceUseCase) ListStores(ctx context.Context) ([]dto.StoreResponse, error) {
	stores, err := uc.stores.List(ctx)
	if err != nil {
		return nil, err
	}
	return dto.NewStoreResponses(stores), nil
}

// SearchProducts busca produtos por termo (código ou nome). Termo vazio
// devolve lista vazia em vez do catálogo inteiro.
func (uc *ReferenceUseCase) SearchProducts(ctx context.Context, term string, limit int) ([]dto.ProductResponse, error) {
	term = strings.TrimSpace(term)
	if term == "" {
		return []dto.ProductResponse{}, nil
	}
	if limit <= 0 || limit > 50 {
		limit = 20
	}
	products, err := uc.products.Search(ctx, term, limit)
	if err != nil {
		return nil, err
	}
	return dto.NewProductResponses(products), nil
}
