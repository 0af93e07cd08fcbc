package butcher

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/operaloja/operaloja-api/internal/domain/entity"
)

func TestEditor_DebouncePersisteUltimoEstado(t *testing.T) {
	orders := newFakeOrderRepo()
	svc := newTestService(orders, nil, nil)
	require.NoError(t, orders.Create(context.Background(), &entity.ButcherOrder{
		ID: "o1", RequesterStoreID: "s1", Status: entity.OrderDraft,
	}))

	ed := newEditor(svc, &staticIdentity{profile: adminProfile()}, "o1", 30*time.Millisecond)
	ed.SetItems([]ItemInput{{ProductName: "Picanha", Quantity: decimal.NewFromInt(1)}})
	ed.SetItems([]ItemInput{
		{ProductName: "Picanha", Quantity: decimal.NewFromInt(2)},
		{ProductName: "Fraldinha", Quantity: decimal.NewFromInt(1)},
	})

	// antes do intervalo nada foi gravado
	o, _ := orders.GetByID(context.Background(), "o1")
	assert.Empty(t, o.Items)

	assert.Eventually(t, func() bool {
		o, _ := orders.GetByID(context.Background(), "o1")
		return len(o.Items) == 2
	}, time.Second, 10*time.Millisecond)
	o, _ = orders.GetByID(context.Background(), "o1")
	assert.True(t, o.Items[0].Quantity.Equal(decimal.NewFromInt(2)))
}

func TestEditor_FlushImediato(t *testing.T) {
	orders := newFakeOrderRepo()
	svc := newTestService(orders, nil, nil)
	require.NoError(t, orders.Create(context.Background(), &entity.ButcherOrder{
		ID: "o1", RequesterStoreID: "s1", Status: entity.OrderDraft,
	}))

	ed := newEditor(svc, &staticIdentity{profile: adminProfile()}, "o1", time.Hour)
	ed.SetItems([]ItemInput{{ProductName: "Costela", Quantity: decimal.NewFromInt(4)}})
	require.NoError(t, ed.Flush(context.Background()))

	o, _ := orders.GetByID(context.Background(), "o1")
	assert.Len(t, o.Items, 1)

	// sem pendência, flush é no-op
	require.NoError(t, ed.Flush(context.Background()))
}

func TestEditor_FlushMantemPendenciaEmErro(t *testing.T) {
	orders := newFakeOrderRepo()
	svc := newTestService(orders, nil, nil)
	require.NoError(t, orders.Create(context.Background(), &entity.ButcherOrder{
		ID: "o1", RequesterStoreID: "s1", Status: entity.OrderDraft,
	}))

	ed := newEditor(svc, &staticIdentity{profile: adminProfile()}, "o1", time.Hour)
	ed.SetItems([]ItemInput{{ProductName: "Costela", Quantity: decimal.NewFromInt(4)}})

	orders.replaceItemsErr = assert.AnError
	require.Error(t, ed.Flush(context.Background()))

	orders.replaceItemsErr = nil
	require.NoError(t, ed.Flush(context.Background()))
	o, _ := orders.GetByID(context.Background(), "o1")
	assert.Len(t, o.Items, 1)
}

func TestEditor_CloseDescartaRascunhoVazio(t *testing.T) {
	orders := newFakeOrderRepo()
	svc := newTestService(orders, nil, nil)
	require.NoError(t, orders.Create(context.Background(), &entity.ButcherOrder{
		ID: "o1", RequesterStoreID: "s1", Status: entity.OrderDraft,
	}))

	ed := newEditor(svc, &staticIdentity{profile: adminProfile()}, "o1", time.Hour)
	removed, err := ed.Close(context.Background())
	require.NoError(t, err)
	assert.True(t, removed)

	o, _ := orders.GetByID(context.Background(), "o1")
	assert.Nil(t, o)

	// fechar de novo é inofensivo
	removed, err = ed.Close(context.Background())
	require.NoError(t, err)
	assert.False(t, removed)
}

func TestEditor_ClosePersisteEPreservaRascunhoComItens(t *testing.T) {
	orders := newFakeOrderRepo()
	svc := newTestService(orders, nil, nil)
	require.NoError(t, orders.Create(context.Background(), &entity.ButcherOrder{
		ID: "o1", RequesterStoreID: "s1", Status: entity.OrderDraft,
	}))

	ed := newEditor(svc, &staticIdentity{profile: adminProfile()}, "o1", time.Hour)
	ed.SetItems([]ItemInput{{ProductName: "Alcatra", Quantity: decimal.NewFromInt(2)}})
	removed, err := ed.Close(context.Background())
	require.NoError(t, err)
	assert.False(t, removed)

	o, _ := orders.GetByID(context.Background(), "o1")
	require.NotNil(t, o)
	assert.Len(t, o.Items, 1)
}
