package cart

import (
	"testing"

	"inkora_back_end/internal/models"

	"github.com/stretchr/testify/assert"
)

func line(productID string, unitPriceCents int64, quantity int) models.CartLine {
	return models.CartLine{
		ProductID:      productID,
		Name:           "Produit " + productID,
		UnitPriceCents: unitPriceCents,
		Quantity:       quantity,
		TotalCents:     unitPriceCents * int64(quantity),
	}
}

func TestMergeLineNewProduct(t *testing.T) {
	lines := mergeLine(nil, line("p1", 1000, 2))

	assert.Len(t, lines, 1)
	assert.Equal(t, 2, lines[0].Quantity)
	assert.Equal(t, int64(2000), lines[0].TotalCents)
}

func TestMergeLineSameProductAccumulates(t *testing.T) {
	lines := mergeLine(nil, line("p1", 1000, 2))
	lines = mergeLine(lines, line("p1", 1000, 3))

	// Une seule ligne par produit, quantités additionnées
	assert.Len(t, lines, 1)
	assert.Equal(t, 5, lines[0].Quantity)
	assert.Equal(t, int64(5000), lines[0].TotalCents)
	assert.Equal(t, int64(5000), totalCents(lines))
}

func TestMergeLineRefreshesUnitPrice(t *testing.T) {
	// Le prix catalogue a bougé entre deux ajouts : le panier suit le
	// catalogue, le figeage n'arrive qu'à la création de la commande
	lines := mergeLine(nil, line("p1", 1000, 1))
	lines = mergeLine(lines, line("p1", 1200, 1))

	assert.Len(t, lines, 1)
	assert.Equal(t, int64(1200), lines[0].UnitPriceCents)
	assert.Equal(t, int64(2400), lines[0].TotalCents)
}

func TestSetLineQuantityReplaces(t *testing.T) {
	lines := mergeLine(nil, line("p1", 1000, 2))
	lines = setLineQuantity(lines, line("p1", 1000, 0), 7)

	assert.Len(t, lines, 1)
	assert.Equal(t, 7, lines[0].Quantity)
	assert.Equal(t, int64(7000), lines[0].TotalCents)
}

func TestSetLineQuantityAddsMissingProduct(t *testing.T) {
	lines := setLineQuantity(nil, line("p2", 500, 0), 3)

	assert.Len(t, lines, 1)
	assert.Equal(t, "p2", lines[0].ProductID)
	assert.Equal(t, int64(1500), lines[0].TotalCents)
}

func TestRemoveLine(t *testing.T) {
	lines := []models.CartLine{line("p1", 1000, 1), line("p2", 500, 2)}

	lines = removeLine(lines, "p1")
	assert.Len(t, lines, 1)
	assert.Equal(t, "p2", lines[0].ProductID)

	// Idempotent : supprimer un produit absent ne change rien
	lines = removeLine(lines, "p1")
	assert.Len(t, lines, 1)

	lines = removeLine(lines, "p2")
	assert.Empty(t, lines)
}

func TestTotalCents(t *testing.T) {
	assert.Equal(t, int64(0), totalCents(nil))

	lines := []models.CartLine{line("p1", 1000, 2), line("p2", 250, 4)}
	assert.Equal(t, int64(3000), totalCents(lines))
}
