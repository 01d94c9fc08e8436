package models

// CartLine : une ligne produit+quantité d'un panier scopé par un jeton de
// session opaque généré côté client. Le jeton ne sert qu'au scoping du
// panier, jamais à l'autorisation. Prix en centimes.
type CartLine struct {
	ProductID      string `json:"product_id"`
	Name           string `json:"name"`
	UnitPriceCents int64  `json:"unit_price_cents"`
	Quantity       int    `json:"quantity"`
	TotalCents     int64  `json:"total_cents"`
	ImageURL       string `json:"image_url,omitempty"`
}
