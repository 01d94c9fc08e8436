package cart

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"inkora_back_end/internal/database"
	"inkora_back_end/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/gocql/gocql"
	"github.com/google/uuid"
)

// TTL des paniers Redis (30 jours, comme une session boutique raisonnable)
const cartTTL = 30 * 24 * time.Hour

var errProductNotFound = errors.New("produit introuvable")

func cartKey(sessionID string) string {
	return "cart:session:" + sessionID
}

// loadCart lit le panier Redis d'une session. found=false si aucun panier.
func loadCart(ctx context.Context, sessionID string) ([]models.CartLine, bool, error) {
	data, err := database.Redis.Get(ctx, cartKey(sessionID)).Result()
	if err != nil || data == "" {
		return nil, false, nil
	}

	var lines []models.CartLine
	if err := json.Unmarshal([]byte(data), &lines); err != nil {
		return nil, false, err
	}
	return lines, true, nil
}

// saveCart persiste le panier. Un panier vide est supprimé : la clé Redis
// n'existe que si le panier a au moins une ligne.
func saveCart(ctx context.Context, sessionID string, lines []models.CartLine) error {
	if len(lines) == 0 {
		return database.Redis.Del(ctx, cartKey(sessionID)).Err()
	}

	data, err := json.Marshal(lines)
	if err != nil {
		return err
	}
	return database.Redis.Set(ctx, cartKey(sessionID), data, cartTTL).Err()
}

// lookupProduct récupère le prix courant d'un produit depuis le catalogue
func lookupProduct(ctx context.Context, productID string) (*models.CartLine, error) {
	parsed, err := uuid.Parse(productID)
	if err != nil {
		return nil, errProductNotFound
	}

	session, err := database.GetProductsSession()
	if err != nil {
		return nil, err
	}

	var (
		name       string
		priceCents int64
		imageURLs  []string
	)
	err = session.Query(`SELECT name, price_cents, image_urls FROM products WHERE product_id = ?`,
		gocql.UUID(parsed)).WithContext(ctx).Scan(&name, &priceCents, &imageURLs)
	if err != nil {
		if errors.Is(err, gocql.ErrNotFound) {
			return nil, errProductNotFound
		}
		return nil, err
	}

	// Première image pour l'aperçu panier
	imageURL := ""
	if len(imageURLs) > 0 {
		imageURL = imageURLs[0]
	}

	return &models.CartLine{
		ProductID:      productID,
		Name:           name,
		UnitPriceCents: priceCents,
		ImageURL:       imageURL,
	}, nil
}

// mergeLine incrémente la ligne existante du même produit ou ajoute la
// nouvelle, puis recalcule le total snapshot de la ligne. Invariant : au
// plus une ligne par produit dans un panier.
func mergeLine(lines []models.CartLine, line models.CartLine) []models.CartLine {
	for i := range lines {
		if lines[i].ProductID == line.ProductID {
			lines[i].Quantity += line.Quantity
			lines[i].UnitPriceCents = line.UnitPriceCents
			lines[i].TotalCents = int64(lines[i].Quantity) * lines[i].UnitPriceCents
			return lines
		}
	}
	line.TotalCents = int64(line.Quantity) * line.UnitPriceCents
	return append(lines, line)
}

// setLineQuantity remplace la quantité d'une ligne (upsert)
func setLineQuantity(lines []models.CartLine, line models.CartLine, quantity int) []models.CartLine {
	for i := range lines {
		if lines[i].ProductID == line.ProductID {
			lines[i].Quantity = quantity
			lines[i].UnitPriceCents = line.UnitPriceCents
			lines[i].TotalCents = int64(quantity) * line.UnitPriceCents
			return lines
		}
	}
	line.Quantity = quantity
	line.TotalCents = int64(quantity) * line.UnitPriceCents
	return append(lines, line)
}

// removeLine supprime la ligne du produit si elle existe (idempotent)
func removeLine(lines []models.CartLine, productID string) []models.CartLine {
	out := lines[:0]
	for _, l := range lines {
		if l.ProductID != productID {
			out = append(out, l)
		}
	}
	return out
}

// totalCents additionne les totaux de lignes
func totalCents(lines []models.CartLine) int64 {
	var total int64
	for _, l := range lines {
		total += l.TotalCents
	}
	return total
}

//
// 🟢 POST /cart/addToCart
//
func AddToCart(c *gin.Context) {
	var input struct {
		SessionID string `json:"sessionID" binding:"required"`
		ProductID string `json:"productID" binding:"required"`
		Quantity  int    `json:"quantity" binding:"required"`
	}

	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Données invalides"})
		return
	}
	if input.Quantity <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Quantité invalide"})
		return
	}

	ctx := c.Request.Context()

	line, err := lookupProduct(ctx, input.ProductID)
	if err != nil {
		if errors.Is(err, errProductNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Produit introuvable"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur connexion base de données"})
		return
	}
	line.Quantity = input.Quantity

	lines, _, err := loadCart(ctx, input.SessionID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur décodage panier"})
		return
	}

	lines = mergeLine(lines, *line)

	if err := saveCart(ctx, input.SessionID, lines); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur sauvegarde panier"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":     "Produit ajouté au panier",
		"items":       lines,
		"total_cents": totalCents(lines),
	})
}

//
// 🔵 GET /cart/getCart?sessionID=
//
func GetCart(c *gin.Context) {
	sessionID := c.Query("sessionID")
	if sessionID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "sessionID requis"})
		return
	}

	lines, found, err := loadCart(c.Request.Context(), sessionID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur décodage panier"})
		return
	}
	if !found {
		c.JSON(http.StatusNotFound, gin.H{"error": "Aucun panier pour cette session"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"items":       lines,
		"total_cents": totalCents(lines),
	})
}

//
// 🟠 PUT /cart/updateCart
//
func UpdateCart(c *gin.Context) {
	var input struct {
		SessionID string `json:"sessionID" binding:"required"`
		Items     []struct {
			ProductID string `json:"productID" binding:"required"`
			Quantity  int    `json:"quantity" binding:"required"`
		} `json:"items" binding:"required"`
	}

	if err := c.ShouldBindJSON(&input); err != nil || len(input.Items) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Données invalides"})
		return
	}

	ctx := c.Request.Context()

	lines, _, err := loadCart(ctx, input.SessionID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur décodage panier"})
		return
	}

	for _, item := range input.Items {
		if item.Quantity <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Quantité invalide"})
			return
		}

		line, err := lookupProduct(ctx, item.ProductID)
		if err != nil {
			if errors.Is(err, errProductNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "Produit introuvable: " + item.ProductID})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur connexion base de données"})
			return
		}

		lines = setLineQuantity(lines, *line, item.Quantity)
	}

	if err := saveCart(ctx, input.SessionID, lines); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur sauvegarde panier"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":     "Panier mis à jour",
		"items":       lines,
		"total_cents": totalCents(lines),
	})
}

//
// ❌ DELETE /cart/removeFromCart
//
func RemoveFromCart(c *gin.Context) {
	var input struct {
		SessionID string `json:"sessionID" binding:"required"`
		ProductID string `json:"productID" binding:"required"`
	}

	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Données invalides"})
		return
	}

	ctx := c.Request.Context()

	// Suppression idempotente : panier absent ou ligne absente, même réponse
	lines, _, err := loadCart(ctx, input.SessionID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur décodage panier"})
		return
	}

	lines = removeLine(lines, input.ProductID)

	if err := saveCart(ctx, input.SessionID, lines); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur sauvegarde panier"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":     "Produit supprimé du panier",
		"items":       lines,
		"total_cents": totalCents(lines),
	})
}

//
// 🧹 DELETE /cart/clearCart
//
func ClearCart(c *gin.Context) {
	var input struct {
		SessionID string `json:"sessionID" binding:"required"`
	}

	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Données invalides"})
		return
	}

	ctx := c.Request.Context()

	deleted, err := database.Redis.Del(ctx, cartKey(input.SessionID)).Result()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur lors du vidage du panier"})
		return
	}
	if deleted == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Aucun panier pour cette session"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Panier vidé avec succès"})
}

// ClearSessionCart supprime le panier d'une session côté serveur.
// Appelé par le webhook Stripe après un paiement réussi.
func ClearSessionCart(ctx context.Context, sessionID string) error {
	return database.Redis.Del(ctx, cartKey(sessionID)).Err()
}
