package entity

import "time"

// Store representa uma loja da rede.
type Store struct {
	ID        string
	Code      string // código curto usado em prefixos de pedido (ex.: "loja01")
	Name      string
	Region    string
	CreatedAt time.Time
	UpdatedAt time.Time
}
