package user

import (
	"context"
	"log"
	"net/http"
	"time"

	"vetra_back_end/internal/database"
	"vetra_back_end/internal/middleware"
	"vetra_back_end/internal/models"
	"vetra_back_end/internal/services"
	"vetra_back_end/internal/utils"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"golang.org/x/crypto/bcrypt"
)

// ================== AUTH LOCALE ==================

func Signup(c *gin.Context) {
	var input struct {
		Name     string `json:"name" binding:"required"`
		Email    string `json:"email" binding:"required,email"`
		Password string `json:"password" binding:"required,min=6"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Données invalides"})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// email déjà pris ?
	var existing models.User
	err := database.Users().FindOne(ctx, bson.M{"email": input.Email}).Decode(&existing)
	if err == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Un compte avec cet email existe déjà"})
		return
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur création utilisateur"})
		return
	}

	user := models.User{
		ID:        primitive.NewObjectID(),
		Name:      input.Name,
		Email:     input.Email,
		Password:  string(hashed),
		CartItems: []models.CartEntry{},
		Wishlist:  []models.WishlistEntry{},
		CreatedAt: time.Now(),
	}

	if _, err := database.Users().InsertOne(ctx, user); err != nil {
		// l'index unique couvre la course entre le FindOne et l'InsertOne
		if mongo.IsDuplicateKeyError(err) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Un compte avec cet email existe déjà"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur création utilisateur"})
		return
	}

	token, err := utils.GenerateJWT(user)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur génération token"})
		return
	}
	utils.SetAuthCookie(c, token)

	c.JSON(http.StatusCreated, user.Public())
}

func Login(c *gin.Context) {
	var input struct {
		Email    string `json:"email" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Données invalides"})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	// Message volontairement identique pour email inconnu et mauvais mot
	// de passe : pas d'énumération de comptes.
	var user models.User
	err := database.Users().FindOne(ctx, bson.M{"email": input.Email}).Decode(&user)
	if err != nil || bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(input.Password)) != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Email ou mot de passe incorrect"})
		return
	}

	token, err := utils.GenerateJWT(user)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur génération token"})
		return
	}
	utils.SetAuthCookie(c, token)

	c.JSON(http.StatusOK, user.Public())
}

func Logout(c *gin.Context) {
	utils.ClearAuthCookie(c)
	c.JSON(http.StatusOK, gin.H{"message": "Déconnexion réussie"})
}

// ================== PROFIL ==================

// CheckAuth renvoie l'utilisateur posé dans le contexte par le middleware.
func CheckAuth(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Non authentifié"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Utilisateur authentifié",
		"user":    user.Public(),
	})
}

// Profile renvoie le profil complet, panier et wishlist compris.
func Profile(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Non authentifié"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Utilisateur authentifié",
		"user": gin.H{
			"_id":        user.ID,
			"name":       user.Name,
			"email":      user.Email,
			"isAdmin":    user.IsAdmin,
			"phone":      user.Phone,
			"profilePic": user.ProfilePic,
			"cartItems":  user.CartItems,
			"wishlist":   user.Wishlist,
			"createdAt":  user.CreatedAt,
		},
	})
}

// UpdateProfile met à jour nom/email/téléphone, et la photo de profil
// si un fichier est joint (multipart).
func UpdateProfile(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Non authentifié"})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	update := bson.M{}
	if name := c.PostForm("name"); name != "" {
		update["name"] = name
	}
	if email := c.PostForm("email"); email != "" {
		update["email"] = email
	}
	if phone := c.PostForm("phone"); phone != "" {
		update["phone"] = phone
	}

	if file, err := c.FormFile("image"); err == nil {
		url, err := services.UploadImage(ctx, "profiles", file)
		if err != nil {
			log.Println("❌ Erreur upload photo de profil:", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur upload image"})
			return
		}
		update["profilePic"] = url
	}

	if len(update) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Aucun champ à mettre à jour"})
		return
	}

	_, err := database.Users().UpdateOne(ctx, bson.M{"_id": user.ID}, bson.M{"$set": update})
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Cet email est déjà utilisé"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur mise à jour profil"})
		return
	}

	var updated models.User
	if err := database.Users().FindOne(ctx, bson.M{"_id": user.ID}).Decode(&updated); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur lecture profil"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Profil mis à jour",
		"user":    updated.Public(),
	})
}
