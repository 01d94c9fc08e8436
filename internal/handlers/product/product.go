package product

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"inkora_back_end/internal/database"
	"inkora_back_end/internal/models"
	"inkora_back_end/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/gocql/gocql"
	"github.com/google/uuid"
)

const productCacheTTL = 10 * time.Minute

// CreateProduct enregistre un design ou un vêtement au catalogue (admin).
// Multipart : champs texte + images envoyées vers MinIO.
func CreateProduct(c *gin.Context) {
	name := c.PostForm("name")
	description := c.PostForm("description")
	kind := c.PostForm("kind")
	priceCents, err := strconv.ParseInt(c.PostForm("price_cents"), 10, 64)
	if err != nil || priceCents < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "price_cents invalide"})
		return
	}
	stock, _ := strconv.Atoi(c.PostForm("stock"))

	if name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Le champ 'name' est obligatoire"})
		return
	}
	if kind != models.ProductKindDesign && kind != models.ProductKindTShirt && kind != models.ProductKindHoodie {
		c.JSON(http.StatusBadRequest, gin.H{"error": "kind doit être design, tshirt ou hoodie"})
		return
	}

	// 🖼️ Upload des images vers MinIO
	var imageURLs []string
	if form, err := c.MultipartForm(); err == nil {
		for _, file := range form.File["images"] {
			url, err := services.UploadFile("products", file)
			if err != nil {
				log.Printf("⚠️ Upload image échoué: %v", err)
				continue
			}
			imageURLs = append(imageURLs, url)
		}
	}

	p := models.Product{
		ID:          gocql.UUID(uuid.New()),
		Name:        name,
		Description: description,
		Kind:        kind,
		PriceCents:  priceCents,
		Stock:       stock,
		ImageURLs:   imageURLs,
		Tags:        c.PostFormArray("tags"),
		IsActive:    true,
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
	}

	session, err := database.GetProductsSession()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur connexion base de données"})
		return
	}

	query := `INSERT INTO products (product_id, name, description, kind, price_cents, stock, image_urls, tags, is_active, created_at, updated_at)
	          VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	if err := session.Query(query, p.ID, p.Name, p.Description, p.Kind, p.PriceCents, p.Stock,
		p.ImageURLs, p.Tags, p.IsActive, p.CreatedAt, p.UpdatedAt).Exec(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur création produit: " + err.Error()})
		return
	}

	// Le cache liste est périmé
	database.Redis.Del(c.Request.Context(), "products:all")

	// 🔄 Indexation Elasticsearch
	go services.IndexProduct(p)

	c.JSON(http.StatusOK, p)
}

// GetAllProducts liste le catalogue, avec cache Redis
func GetAllProducts(c *gin.Context) {
	ctx := c.Request.Context()
	cacheKey := "products:all"

	if val, err := database.Redis.Get(ctx, cacheKey).Result(); err == nil && val != "" {
		var cached []models.Product
		if err := json.Unmarshal([]byte(val), &cached); err == nil {
			c.JSON(http.StatusOK, cached)
			return
		}
	}

	session, err := database.GetProductsSession()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur connexion base de données"})
		return
	}

	iter := session.Query(`SELECT product_id, name, description, kind, price_cents, stock, image_urls, tags, is_active, created_at, updated_at FROM products`).Iter()

	var products []models.Product
	var p models.Product
	for iter.Scan(&p.ID, &p.Name, &p.Description, &p.Kind, &p.PriceCents, &p.Stock,
		&p.ImageURLs, &p.Tags, &p.IsActive, &p.CreatedAt, &p.UpdatedAt) {
		products = append(products, p)
		p = models.Product{} // Reset pour la prochaine itération
	}
	if err := iter.Close(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur lecture produits: " + err.Error()})
		return
	}

	if data, err := json.Marshal(products); err == nil {
		database.Redis.Set(ctx, cacheKey, data, productCacheTTL)
	}

	c.JSON(http.StatusOK, products)
}

// GetProduct retourne un produit par id
func GetProduct(c *gin.Context) {
	parsed, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ID produit invalide"})
		return
	}

	session, err := database.GetProductsSession()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur connexion base de données"})
		return
	}

	var p models.Product
	err = session.Query(`SELECT product_id, name, description, kind, price_cents, stock, image_urls, tags, is_active, created_at, updated_at
		FROM products WHERE product_id = ?`, gocql.UUID(parsed)).Scan(
		&p.ID, &p.Name, &p.Description, &p.Kind, &p.PriceCents, &p.Stock,
		&p.ImageURLs, &p.Tags, &p.IsActive, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, gocql.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Produit introuvable"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur lecture produit"})
		return
	}

	c.JSON(http.StatusOK, p)
}

// DeleteProduct retire un produit du catalogue (admin)
func DeleteProduct(c *gin.Context) {
	parsed, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ID produit invalide"})
		return
	}

	session, err := database.GetProductsSession()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur connexion base de données"})
		return
	}

	if err := session.Query(`DELETE FROM products WHERE product_id = ?`, gocql.UUID(parsed)).Exec(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur suppression produit"})
		return
	}

	database.Redis.Del(c.Request.Context(), "products:all")

	c.JSON(http.StatusOK, gin.H{"message": "Produit supprimé"})
}

// SearchProducts cherche dans le catalogue via Elasticsearch
func SearchProducts(c *gin.Context) {
	query := c.Query("q")
	if query == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Paramètre 'q' requis"})
		return
	}

	results, err := services.SearchProducts(query)
	if err != nil {
		log.Println("❌ Erreur recherche Elastic:", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur recherche"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"results": results})
}
