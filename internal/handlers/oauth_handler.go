package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"inkora_back_end/internal/database"
	"inkora_back_end/internal/models"
	"inkora_back_end/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/gocql/gocql"
	"github.com/google/uuid"
	"github.com/markbates/goth/gothic"
)

type ctxKey string

const ProviderKey ctxKey = "provider"

// BeginAuth démarre le flux OAuth (Google / Facebook)
// GET /auth/:provider
func BeginAuth(c *gin.Context) {
	provider := c.Param("provider")
	if provider == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "aucun provider spécifié"})
		return
	}

	c.Request = c.Request.WithContext(
		context.WithValue(c.Request.Context(), ProviderKey, provider),
	)

	gothic.BeginAuthHandler(c.Writer, c.Request)
}

// CallbackAuth termine le flux OAuth, crée le compte au premier passage et
// renvoie un token maison
// GET /auth/:provider/callback
func CallbackAuth(c *gin.Context) {
	provider := c.Param("provider")
	if provider == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "aucun provider spécifié"})
		return
	}

	c.Request = c.Request.WithContext(
		context.WithValue(c.Request.Context(), ProviderKey, provider),
	)

	gothUser, err := gothic.CompleteUserAuth(c.Writer, c.Request)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	u, err := upsertOAuthUser(gothUser.Email, gothUser.Name, provider)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur création utilisateur"})
		return
	}

	token, err := utils.GenerateJWT(*u)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur génération token"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"token":    token,
		"provider": provider,
		"email":    u.Email,
		"userId":   u.ID,
	})
}

// upsertOAuthUser retrouve le compte par email ou le crée au premier login
func upsertOAuthUser(email, name, provider string) (*models.User, error) {
	var userID string
	err := database.GetPreparedGetUserByEmail().Bind(email).Scan(&userID)
	if err == nil {
		u := models.User{ID: userID}
		if err := database.GetPreparedGetUserByID().Bind(userID).Scan(
			&u.Email, &u.Password, &u.Name, &u.Role, &u.Provider); err != nil {
			return nil, err
		}
		return &u, nil
	}
	if !errors.Is(err, gocql.ErrNotFound) {
		return nil, err
	}

	u := models.User{
		ID:       uuid.New().String(),
		Name:     name,
		Email:    email,
		Role:     "customer",
		Provider: provider,
	}

	now := time.Now()
	if err := database.GetPreparedInsertUser().Bind(
		u.ID, u.Email, "", u.Name, u.Role, u.Provider, now, now).Exec(); err != nil {
		return nil, err
	}
	if err := database.GetPreparedInsertUserByEmail().Bind(u.Email, u.ID).Exec(); err != nil {
		return nil, err
	}

	return &u, nil
}
