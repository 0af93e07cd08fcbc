// Package sync guarda a mecânica comum das coleções sincronizadas:
// descartar respostas de fetch fora de ordem.
package sync

import "sync"

// Gate serializa a aplicação de resultados de fetch concorrentes.
// Cada fetch recebe um número monotônico em Begin; Commit só aceita o
// resultado se nenhum fetch mais novo já tiver sido aplicado. Assim a
// resposta de rede que chega atrasada nunca sobrescreve estado mais novo.
type Gate struct {
	mu      sync.Mutex
	issued  uint64
	applied uint64
}

// Begin registra um novo fetch e devolve seu número de ordem.
func (g *Gate) Begin() uint64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.issued++
	return g.issued
}

// Commit informa se o resultado do fetch seq ainda é o mais novo.
// Devolve false quando um fetch posterior já aplicou estado (resultado
// obsoleto, deve ser descartado pelo chamador).
func (g *Gate) Commit(seq uint64) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if seq <= g.applied {
		return false
	}
	g.applied = seq
	return true
}
