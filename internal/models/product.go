package models

import (
	"time"

	"github.com/gocql/gocql"
)

// Types de produits vendus par la boutique
const (
	ProductKindDesign = "design"
	ProductKindTShirt = "tshirt"
	ProductKindHoodie = "hoodie"
)

type Product struct {
	ID          gocql.UUID `json:"id"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Kind        string     `json:"kind"`
	PriceCents  int64      `json:"price_cents"`
	Stock       int        `json:"stock"`
	ImageURLs   []string   `json:"image_urls"`
	Tags        []string   `json:"tags"`
	IsActive    bool       `json:"is_active"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}
