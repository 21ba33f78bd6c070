package routes

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"tutor-rag-platform/internal/config"
	"tutor-rag-platform/internal/logger"
	"tutor-rag-platform/models"
	"tutor-rag-platform/utils"
)

// SetupAuthRoutes wires registration and login. Tokens are stateless
// JWTs; there is no server-side session to revoke.
func SetupAuthRoutes(router *gin.Engine, cfg *config.Config, mongoClient *mongo.Client) {
	users := mongoClient.Database(cfg.DBName).Collection("users")

	expiresIn, err := time.ParseDuration(cfg.JWTExpiresIn)
	if err != nil {
		expiresIn = 24 * time.Hour
	}

	auth := router.Group("/auth")

	auth.POST("/register", func(c *gin.Context) {
		var req models.RegisterRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			utils.RespondWithBadRequest(c, "Invalid registration data", gin.H{"error": err.Error()})
			return
		}

		count, err := users.CountDocuments(c.Request.Context(), bson.M{"username": req.Username})
		if err != nil {
			utils.RespondWithInternalError(c, "Failed to check username", nil)
			return
		}
		if count > 0 {
			utils.RespondWithConflict(c, "Username already taken")
			return
		}

		hash, err := utils.HashPassword(req.Password, cfg.BcryptCost)
		if err != nil {
			utils.RespondWithInternalError(c, "Failed to process password", nil)
			return
		}

		now := time.Now()
		user := models.User{
			Username:     req.Username,
			Name:         req.Name,
			Email:        req.Email,
			PasswordHash: hash,
			Role:         "student",
			ClassLevel:   req.ClassLevel,
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		result, err := users.InsertOne(c.Request.Context(), user)
		if err != nil {
			utils.RespondWithInternalError(c, "Failed to create user", nil)
			return
		}

		logger.Info("user registered", "username", req.Username)
		c.JSON(http.StatusCreated, gin.H{
			"id":       result.InsertedID,
			"username": req.Username,
		})
	})

	auth.POST("/login", func(c *gin.Context) {
		var req models.LoginRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			utils.RespondWithBadRequest(c, "Invalid login data", gin.H{"error": err.Error()})
			return
		}

		var user models.User
		err := users.FindOne(c.Request.Context(), bson.M{"username": req.Username}).Decode(&user)
		if err == mongo.ErrNoDocuments || (err == nil && !utils.CheckPassword(req.Password, user.PasswordHash)) {
			utils.RespondWithUnauthorized(c, "Invalid username or password")
			return
		}
		if err != nil {
			utils.RespondWithInternalError(c, "Failed to look up user", nil)
			return
		}

		token, err := utils.GenerateJWT(user.ID.Hex(), user.Role, user.ClassLevel, cfg.JWTSecret, expiresIn)
		if err != nil {
			utils.RespondWithInternalError(c, "Failed to issue token", nil)
			return
		}

		c.JSON(http.StatusOK, models.LoginResponse{
			Token:     token,
			ExpiresAt: time.Now().Add(expiresIn),
			User: models.UserInfo{
				ID:         user.ID.Hex(),
				Username:   user.Username,
				Name:       user.Name,
				Email:      user.Email,
				Role:       user.Role,
				ClassLevel: user.ClassLevel,
			},
		})
	})

	auth.POST("/refresh", func(c *gin.Context) {
		tokenString := utils.ExtractTokenFromHeader(c.GetHeader("Authorization"))
		if tokenString == "" {
			utils.RespondWithUnauthorized(c, "Missing token")
			return
		}
		refreshed, err := utils.RefreshJWT(tokenString, cfg.JWTSecret, expiresIn)
		if err != nil {
			utils.RespondWithUnauthorized(c, "Invalid or expired token")
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"token":      refreshed,
			"expires_at": time.Now().Add(expiresIn),
		})
	})
}
