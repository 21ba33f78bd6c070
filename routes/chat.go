package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"tutor-rag-platform/internal/config"
	"tutor-rag-platform/middleware"
	"tutor-rag-platform/models"
	"tutor-rag-platform/services"
	"tutor-rag-platform/utils"
)

// SetupChatRoutes exposes the question-answering endpoint. Auth is
// optional: anonymous students can ask, logged-in ones get their class
// level filled in from the token and a role-scaled rate limit.
func SetupChatRoutes(router *gin.Engine, cfg *config.Config, rdb *redis.Client, qa *services.QAService, authMiddleware *middleware.AuthMiddleware) {
	chat := router.Group("/chat")
	chat.Use(authMiddleware.OptionalAuth(), middleware.RoleBasedRateLimit(rdb, cfg))

	chat.POST("/ask", func(c *gin.Context) {
		var req models.ChatRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			utils.RespondWithBadRequest(c, "Invalid question payload", gin.H{"error": err.Error()})
			return
		}

		if req.ClassLevel == 0 {
			if level := middleware.GetClassLevel(c); level != 0 {
				req.ClassLevel = level
			}
		}

		var userID primitive.ObjectID
		if hex := middleware.GetUserID(c); hex != "" {
			if oid, err := primitive.ObjectIDFromHex(hex); err == nil {
				userID = oid
			}
		}

		resp, err := qa.Answer(c.Request.Context(), req, userID, middleware.GetRequestID(c))
		if err != nil {
			utils.RespondWithInternalError(c, "Failed to answer question", gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, resp)
	})
}
