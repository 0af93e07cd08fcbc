package sync_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	appsync "github.com/operaloja/operaloja-api/internal/application/sync"
)

func TestGate_OrdemNormal(t *testing.T) {
	var g appsync.Gate
	a := g.Begin()
	b := g.Begin()

	assert.True(t, g.Commit(a))
	assert.True(t, g.Commit(b))
}

func TestGate_RespostaAtrasadaDescartada(t *testing.T) {
	var g appsync.Gate
	a := g.Begin()
	b := g.Begin()

	// O fetch mais novo termina primeiro; o antigo chega depois e deve cair.
	assert.True(t, g.Commit(b))
	assert.False(t, g.Commit(a), "resposta obsoleta não pode sobrescrever estado mais novo")
}

func TestGate_CommitDuplicadoDescartado(t *testing.T) {
	var g appsync.Gate
	a := g.Begin()
	assert.True(t, g.Commit(a))
	assert.False(t, g.Commit(a))
}
