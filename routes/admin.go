package routes

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/hibiken/asynq"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"tutor-rag-platform/internal/config"
	"tutor-rag-platform/internal/logger"
	"tutor-rag-platform/internal/queue"
	"tutor-rag-platform/middleware"
	"tutor-rag-platform/models"
	"tutor-rag-platform/services"
	"tutor-rag-platform/utils"
)

// IngestRequest triggers background ingestion of one file or a whole
// notes directory.
type IngestRequest struct {
	Path       string `json:"path" binding:"required"`
	ClassLevel int    `json:"class_level" binding:"required,min=9,max=10"`
	Subject    string `json:"subject" binding:"required"`
	Directory  bool   `json:"directory"`
}

// SetupAdminRoutes wires the operator surface: ingestion triggers,
// ingest report inspection, corpus browsing, and exports. Everything
// here requires the admin role.
func SetupAdminRoutes(
	router *gin.Engine,
	cfg *config.Config,
	mongoClient *mongo.Client,
	asynqClient *asynq.Client,
	store *services.VectorStore,
	ingestion *services.IngestionService,
	exporter *services.ExportService,
	authMiddleware *middleware.AuthMiddleware,
	roleMiddleware *middleware.RoleMiddleware,
) {
	chapters := mongoClient.Database(cfg.DBName).Collection("chapters")

	admin := router.Group("/admin")
	admin.Use(authMiddleware.RequireAuth(), roleMiddleware.AdminGuard())

	admin.POST("/ingest", func(c *gin.Context) {
		var req IngestRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			utils.RespondWithBadRequest(c, "Invalid ingest request", gin.H{"error": err.Error()})
			return
		}

		var task *asynq.Task
		var err error
		if req.Directory {
			task, err = queue.NewIngestDirectoryTask(req.Path, req.ClassLevel, req.Subject)
		} else {
			task, err = queue.NewIngestFileTask(req.Path, req.ClassLevel, req.Subject)
		}
		if err != nil {
			utils.RespondWithInternalError(c, "Failed to build ingest task", nil)
			return
		}

		info, err := asynqClient.EnqueueContext(c.Request.Context(), task)
		if err != nil {
			utils.RespondWithInternalError(c, "Failed to enqueue ingest task", gin.H{"error": err.Error()})
			return
		}

		logger.Info("ingest task enqueued",
			"task_id", info.ID,
			"queue", info.Queue,
			"path", req.Path,
			"by", middleware.GetUserID(c))
		c.JSON(http.StatusAccepted, gin.H{
			"task_id": info.ID,
			"queue":   info.Queue,
		})
	})

	admin.GET("/ingest/reports", func(c *gin.Context) {
		limit, _ := strconv.ParseInt(c.DefaultQuery("limit", "50"), 10, 64)
		reports, err := ingestion.Reports(c.Request.Context(), limit)
		if err != nil {
			utils.RespondWithInternalError(c, "Failed to load ingest reports", nil)
			return
		}
		c.JSON(http.StatusOK, gin.H{"reports": reports, "count": len(reports)})
	})

	admin.GET("/chapters", func(c *gin.Context) {
		filter := bson.M{}
		if s := c.Query("subject"); s != "" {
			filter["subject"] = s
		}
		if lvl, err := strconv.Atoi(c.Query("class_level")); err == nil {
			filter["class_level"] = lvl
		}

		opts := options.Find().SetSort(bson.D{
			{Key: "class_level", Value: 1},
			{Key: "subject", Value: 1},
			{Key: "chapter_number", Value: 1},
		})
		cursor, err := chapters.Find(c.Request.Context(), filter, opts)
		if err != nil {
			utils.RespondWithInternalError(c, "Failed to list chapters", nil)
			return
		}
		defer cursor.Close(c.Request.Context())

		var out []models.Chapter
		if err := cursor.All(c.Request.Context(), &out); err != nil {
			utils.RespondWithInternalError(c, "Failed to decode chapters", nil)
			return
		}
		c.JSON(http.StatusOK, gin.H{"chapters": out, "count": len(out)})
	})

	admin.GET("/chapters/stats", func(c *gin.Context) {
		classLevel, err := strconv.Atoi(c.Query("class_level"))
		if err != nil {
			utils.RespondWithBadRequest(c, "class_level is required", nil)
			return
		}
		number, err := strconv.Atoi(c.Query("chapter"))
		if err != nil {
			utils.RespondWithBadRequest(c, "chapter is required", nil)
			return
		}
		subject := c.Query("subject")
		if subject == "" {
			utils.RespondWithBadRequest(c, "subject is required", nil)
			return
		}

		chapter, err := store.ChapterByNumber(c.Request.Context(), classLevel, subject, number)
		if err != nil {
			utils.RespondWithInternalError(c, "Failed to load chapter", nil)
			return
		}
		if chapter == nil {
			utils.RespondWithNotFound(c, "Chapter not found")
			return
		}
		count, err := store.ChunkCount(c.Request.Context(), chapter.ID)
		if err != nil {
			utils.RespondWithInternalError(c, "Failed to count chunks", nil)
			return
		}
		c.JSON(http.StatusOK, gin.H{"chapter": chapter, "chunk_count": count})
	})

	admin.POST("/export", func(c *gin.Context) {
		var req services.ExportRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			utils.RespondWithBadRequest(c, "Invalid export request", gin.H{"error": err.Error()})
			return
		}

		switch req.Format {
		case "excel":
			data, err := exporter.ExportExcel(c.Request.Context(), req)
			if err != nil {
				utils.RespondWithInternalError(c, "Export failed", gin.H{"error": err.Error()})
				return
			}
			filename := fmt.Sprintf("tutor-export-%s.xlsx", time.Now().Format("20060102-150405"))
			c.Header("Content-Disposition", "attachment; filename="+filename)
			c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", data)
		default:
			data, err := exporter.ExportJSON(c.Request.Context(), req)
			if err != nil {
				utils.RespondWithInternalError(c, "Export failed", gin.H{"error": err.Error()})
				return
			}
			c.Data(http.StatusOK, "application/json", data)
		}
	})
}
