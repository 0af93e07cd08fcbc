package entity

import "time"

// Product representa um produto do catálogo (referência somente leitura para o core).
type Product struct {
	ID        string
	Code      string // código de barras / código interno
	Name      string
	Brand     string
	Unit      string // un, kg, bandeja
	Category  string
	CreatedAt time.Time
	UpdatedAt time.Time
}
