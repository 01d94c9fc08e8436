package user

import (
	"errors"
	"net/http"
	"time"

	"inkora_back_end/internal/database"
	"inkora_back_end/internal/models"
	"inkora_back_end/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/gocql/gocql"
	"github.com/google/uuid"
)

// ================== AUTH LOCALE ==================

// Register crée un compte local et renvoie directement un token
// POST /auth/register
func Register(c *gin.Context) {
	var input struct {
		Name     string `json:"name"`
		Email    string `json:"email" binding:"required,email"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := utils.ValidatePassword(input.Password); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	// email déjà pris ?
	var existingID string
	err := database.GetPreparedGetUserByEmail().Bind(input.Email).Scan(&existingID)
	if err == nil {
		c.JSON(http.StatusConflict, gin.H{"error": "Un compte avec cet email existe déjà"})
		return
	}
	if !errors.Is(err, gocql.ErrNotFound) {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur lecture utilisateur"})
		return
	}

	hashedPassword, err := utils.HashPassword(input.Password)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur création utilisateur"})
		return
	}

	u := models.User{
		ID:       uuid.New().String(),
		Name:     input.Name,
		Email:    input.Email,
		Password: hashedPassword,
		Role:     "customer",
		Provider: "local",
	}

	now := time.Now()
	if err := database.GetPreparedInsertUser().Bind(
		u.ID, u.Email, u.Password, u.Name, u.Role, u.Provider, now, now).Exec(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur création utilisateur"})
		return
	}
	if err := database.GetPreparedInsertUserByEmail().Bind(u.Email, u.ID).Exec(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur création utilisateur"})
		return
	}
	token, err := utils.GenerateJWT(u)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur génération token"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"token":  token,
		"userId": u.ID,
		"email":  u.Email,
		"name":   u.Name,
		"role":   u.Role,
	})
}

// Login vérifie email + mot de passe et renvoie un token
// POST /auth/login
func Login(c *gin.Context) {
	var input struct {
		Email    string `json:"email" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Données invalides"})
		return
	}

	var userID string
	err := database.GetPreparedGetUserByEmail().Bind(input.Email).Scan(&userID)
	if err != nil {
		// Même message que pour un mauvais mot de passe : pas d'énumération
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Identifiants invalides"})
		return
	}

	var u models.User
	u.ID = userID
	err = database.GetPreparedGetUserByID().Bind(userID).Scan(
		&u.Email, &u.Password, &u.Name, &u.Role, &u.Provider)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Identifiants invalides"})
		return
	}

	ok, err := utils.VerifyPassword(input.Password, u.Password)
	if err != nil || !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Identifiants invalides"})
		return
	}

	token, err := utils.GenerateJWT(u)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur génération token"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"token":  token,
		"userId": u.ID,
		"email":  u.Email,
		"name":   u.Name,
		"role":   u.Role,
	})
}
