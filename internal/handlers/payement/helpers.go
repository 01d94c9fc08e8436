package payement

import "inkora_back_end/internal/models"

// calcTotalCents fige le total d'une commande : somme des prix snapshot,
// calculée une seule fois à la création, jamais redérivée du catalogue.
func calcTotalCents(lines []models.OrderLine) int64 {
	var total int64
	for _, line := range lines {
		total += line.UnitPriceCents * int64(line.Quantity)
	}
	return total
}
