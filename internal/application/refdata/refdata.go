// Package refdata resolve tabelas de referência (lojas, produtos, perfis)
// em lote para a desnormalização das coleções. Sem cache entre ciclos:
// cada refetch de coleção resolve as referências de novo.
package refdata

import (
	"context"
	"fmt"

	"github.com/operaloja/operaloja-api/internal/domain/entity"
	"github.com/operaloja/operaloja-api/internal/domain/repository"
)

// Loader agrupa os lookups de referência usados pelos joins manuais.
type Loader struct {
	stores   repository.StoreRepository
	products repository.ProductRepository
	profiles repository.ProfileRepository
}

// NewLoader constrói o loader com os portos de leitura.
func NewLoader(stores repository.StoreRepository, products repository.ProductRepository, profiles repository.ProfileRepository) *Loader {
	return &Loader{stores: stores, products: products, profiles: profiles}
}

// StoresByID resolve lojas por ID. Conjunto vazio curto-circuita para mapa
// vazio sem tocar no backend.
func (l *Loader) StoresByID(ctx context.Context, ids []string) (map[string]entity.Store, error) {
	out := make(map[string]entity.Store)
	if len(ids) == 0 {
		return out, nil
	}
	list, err := l.stores.ListByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("resolver lojas: %w", err)
	}
	for _, s := range list {
		out[s.ID] = *s
	}
	return out, nil
}

// ProductsByID resolve produtos por ID.
func (l *Loader) ProductsByID(ctx context.Context, ids []string) (map[string]entity.Product, error) {
	out := make(map[string]entity.Product)
	if len(ids) == 0 {
		return out, nil
	}
	list, err := l.products.ListByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("resolver produtos: %w", err)
	}
	for _, p := range list {
		out[p.ID] = *p
	}
	return out, nil
}

// ProfilesByID resolve perfis por ID.
func (l *Loader) ProfilesByID(ctx context.Context, ids []string) (map[string]entity.Profile, error) {
	out := make(map[string]entity.Profile)
	if len(ids) == 0 {
		return out, nil
	}
	list, err := l.profiles.ListByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("resolver perfis: %w", err)
	}
	for _, p := range list {
		out[p.ID] = *p
	}
	return out, nil
}
