package validity

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/operaloja/operaloja-api/internal/domain/entity"
)

func newTestCollection(t *testing.T) (*fixture, *Collection) {
	t.Helper()
	stores, products, profiles := fullRefs()
	f := newFixture(stores, products, profiles)
	col := NewCollection(f.svc, &staticIdentity{profile: adminProfile()}, Options{})
	return f, col
}

func TestCollection_RefreshSubstituiEstado(t *testing.T) {
	f, col := newTestCollection(t)
	seedEntry(t, f, "e1", "s1")

	col.Refresh(context.Background())
	st := col.State()
	assert.NoError(t, st.Err)
	assert.False(t, st.Loading)
	require.Len(t, st.Rows, 1)

	seedEntry(t, f, "e2", "s1")
	col.Refresh(context.Background())
	assert.Len(t, col.State().Rows, 2)
}

func TestCollection_CreateRefazFetch(t *testing.T) {
	_, col := newTestCollection(t)

	e, err := col.Create(context.Background(), CreateInput{
		ProductID: "p1",
		StoreID:   "s1",
		ExpiresAt: time.Now().Add(72 * time.Hour),
		Quantity:  decimal.NewFromInt(6),
		Unit:      "un",
	})
	require.NoError(t, err)
	assert.Equal(t, entity.ValidityPendente, e.Status)

	st := col.State()
	require.Len(t, st.Rows, 1)
	assert.Equal(t, e.ID, st.Rows[0].Entry.ID)
}

func TestCollection_MarkVerifiedOtimistaComRollback(t *testing.T) {
	f, col := newTestCollection(t)
	seedEntry(t, f, "e1", "s1")
	col.Refresh(context.Background())

	f.entries.setVerificationErr = assert.AnError
	err := col.MarkVerified(context.Background(), "e1")
	require.Error(t, err)

	// aplicação otimista desfeita
	st := col.State()
	require.Len(t, st.Rows, 1)
	assert.Equal(t, entity.ValidityPendente, st.Rows[0].Entry.Status)
	assert.Nil(t, st.Rows[0].Entry.VerifiedAt)

	f.entries.setVerificationErr = nil
	require.NoError(t, col.MarkVerified(context.Background(), "e1"))
	st = col.State()
	assert.Equal(t, entity.ValidityConferido, st.Rows[0].Entry.Status)
	require.NotNil(t, st.Rows[0].Entry.VerifiedBy)
	assert.Equal(t, "admin-1", *st.Rows[0].Entry.VerifiedBy)

	require.NoError(t, col.UnmarkVerified(context.Background(), "e1"))
	st = col.State()
	assert.Equal(t, entity.ValidityPendente, st.Rows[0].Entry.Status)
	assert.Nil(t, st.Rows[0].Entry.VerifiedBy)
}

func TestCollection_SoftDeleteOtimistaComRollback(t *testing.T) {
	f, col := newTestCollection(t)
	seedEntry(t, f, "e1", "s1")
	col.Refresh(context.Background())

	f.entries.softDeleteErr = assert.AnError
	err := col.SoftDelete(context.Background(), "e1")
	require.Error(t, err)
	assert.Len(t, col.State().Rows, 1)

	f.entries.softDeleteErr = nil
	require.NoError(t, col.SoftDelete(context.Background(), "e1"))
	assert.Empty(t, col.State().Rows)
}

func TestCollection_FluxoDePedidoDeExclusao(t *testing.T) {
	f, col := newTestCollection(t)
	seedEntry(t, f, "e1", "s1")
	col.Refresh(context.Background())

	r, err := col.RequestDelete(context.Background(), "e1", "produto recolhido")
	require.NoError(t, err)

	st := col.State()
	require.Len(t, st.Rows, 1)
	require.NotNil(t, st.Rows[0].PendingDelete)
	assert.Equal(t, r.ID, st.Rows[0].PendingDelete.ID)

	require.NoError(t, col.ApproveDelete(context.Background(), r.ID))
	// entrada excluída sai da coleção após o refetch
	assert.Empty(t, col.State().Rows)
}
