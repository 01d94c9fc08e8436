package order

import (
	"errors"
	"log"
	"net/http"

	"inkora_back_end/internal/database"
	"inkora_back_end/internal/models"
	"inkora_back_end/internal/orders"
	"inkora_back_end/internal/utils"

	"github.com/gin-gonic/gin"
)

// ✅ GET /order/my-orders — commandes de l'utilisateur connecté, plus
// récentes d'abord
func GetMyOrders(c *gin.Context) {
	userID := c.GetString("user_id")
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Utilisateur non authentifié"})
		return
	}

	list, err := orders.Default.ListByUser(c.Request.Context(), userID)
	if err != nil {
		log.Println("❌ Erreur récupération commandes:", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur récupération commandes"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"orders": list})
}

// ✅ GET /order/:orderId — propriétaire ou admin uniquement
func GetOrderByID(c *gin.Context) {
	userID := c.GetString("user_id")
	role := c.GetString("role")
	orderID := c.Param("orderId")

	o, err := orders.Default.GetByID(c.Request.Context(), orderID)
	if err != nil {
		if errors.Is(err, orders.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Commande introuvable"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur récupération commande"})
		return
	}

	if role != "admin" && (o.UserID == "" || o.UserID != userID) {
		c.JSON(http.StatusForbidden, gin.H{"error": "Accès refusé à cette commande"})
		return
	}

	c.JSON(http.StatusOK, o)
}

// ✅ GET /order/public/:orderId — projection réduite pour le suivi sans
// compte : lignes, statut, total, date. Ni adresse ni paiement.
func GetPublicOrder(c *gin.Context) {
	orderID := c.Param("orderId")

	o, err := orders.Default.GetByID(c.Request.Context(), orderID)
	if err != nil {
		if errors.Is(err, orders.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Commande introuvable"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur récupération commande"})
		return
	}

	c.JSON(http.StatusOK, o.Public())
}

// ✅ GET /order — toutes les commandes (admin), plus récentes d'abord
func GetAllOrders(c *gin.Context) {
	list, err := orders.Default.ListAll(c.Request.Context())
	if err != nil {
		log.Println("❌ Erreur récupération commandes:", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur récupération commandes"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"orders": list})
}

// ✅ PUT /order/:orderId/status — mise à jour de statut (admin).
// Passe par la table de transitions : un statut hors énumération ou une
// transition illégale depuis l'état courant sont refusés avant toute écriture.
func UpdateOrderStatus(c *gin.Context) {
	orderID := c.Param("orderId")

	var req struct {
		Status string `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Données invalides", "details": err.Error()})
		return
	}

	o, err := orders.Transition(c.Request.Context(), orders.Default, orderID, req.Status)
	if err != nil {
		switch {
		case errors.Is(err, orders.ErrInvalidStatus):
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "Statut invalide",
				"valid_statuses": []string{
					models.OrderStatusPending, models.OrderStatusProcessing,
					models.OrderStatusShipped, models.OrderStatusDelivered,
					models.OrderStatusCancelled,
				},
			})
		case errors.Is(err, orders.ErrIllegalTransition):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Transition de statut non autorisée"})
		case errors.Is(err, orders.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Commande introuvable"})
		default:
			log.Printf("❌ Erreur mise à jour commande %s: %v", orderID, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur mise à jour commande"})
		}
		return
	}

	log.Printf("✅ Commande %s mise à jour: %s", orderID, req.Status)

	// Notifier la page de suivi en temps réel
	database.Redis.Publish(c.Request.Context(), "order:"+orderID, o.Status)

	// Prévenir le client par e-mail, sans bloquer la réponse
	if o.Shipping.Email != "" {
		go func(o models.Order) {
			if err := utils.SendStatusUpdate(o, o.Shipping.Email); err != nil {
				log.Println("❌ Erreur envoi e-mail statut :", err)
			}
		}(*o)
	}

	c.JSON(http.StatusOK, o)
}

// ✅ DELETE /order/:orderId — suppression définitive (admin)
func DeleteOrder(c *gin.Context) {
	orderID := c.Param("orderId")

	err := orders.Default.Delete(c.Request.Context(), orderID)
	if err != nil {
		if errors.Is(err, orders.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Commande introuvable"})
			return
		}
		log.Printf("❌ Erreur suppression commande %s: %v", orderID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur suppression commande"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Commande supprimée"})
}
