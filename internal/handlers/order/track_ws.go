package order

import (
	"errors"
	"log"
	"net/http"
	"time"

	"inkora_back_end/internal/database"
	"inkora_back_end/internal/orders"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		// Autoriser toutes les origines (à ajuster en production)
		return true
	},
}

// TrackOrderWS pousse les changements de statut d'une commande en temps réel.
// Même surface qu'une page de suivi publique : projection réduite seulement.
// GET /order/:orderId/track
func TrackOrderWS(c *gin.Context) {
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

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("❌ Erreur upgrade WebSocket: %v", err)
		return
	}
	defer conn.Close()

	ctx := c.Request.Context()

	// S'abonner au canal Redis de cette commande
	pubsub := database.Redis.Subscribe(ctx, "order:"+orderID)
	defer pubsub.Close()
	ch := pubsub.Channel()

	// État initial à la connexion
	conn.WriteJSON(map[string]interface{}{
		"type":  "connected",
		"order": o.Public(),
	})

	for {
		select {
		case msg, ok := <-ch:
			if !ok {
				return
			}
			// Le payload est le nouveau statut ; on relit la commande pour
			// renvoyer une projection cohérente
			updated, err := orders.Default.GetByID(ctx, orderID)
			if err != nil {
				log.Printf("⚠️ Relecture commande %s échouée: %v", orderID, err)
				continue
			}
			if err := conn.WriteJSON(map[string]interface{}{
				"type":   "status_updated",
				"status": msg.Payload,
				"order":  updated.Public(),
			}); err != nil {
				log.Printf("❌ Erreur envoi WebSocket: %v", err)
				return
			}
		case <-time.After(30 * time.Second):
			// Ping pour garder la connexion active
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
