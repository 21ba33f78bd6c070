package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	MongoURI     string
	DBName       string
	Port         string
	GinMode      string
	CORSOrigins  []string
	JWTSecret    string
	JWTExpiresIn string
	BcryptCost   int

	// Rate limiting (per IP + endpoint, Redis-backed)
	RateLimitReqs   int
	RateLimitWindow int

	// Redis (rate limiting + asynq)
	RedisURL      string
	RedisPassword string
	RedisDB       int

	// Gemini credentials. Multiple keys are rotated round-robin on 429.
	GeminiAPIKeys []string

	// Models
	CompletionModel     string
	CompletionModelFast string
	EmbeddingsModel     string
	EmbeddingDimensions int

	// Chunking
	ChunkSize     int
	ChunkOverlap  int
	MinChunkSize  int
	MathMaxWords  int

	// Retrieval
	TopK                int
	SimilarityThreshold float64
	VectorIndexName     string

	// Routing
	MaxRouterIterations int

	// Ingestion
	NotesDir        string
	IngestBatchSize int

	// OpenTelemetry
	OTLPEndpoint string
}

func LoadConfig() (*Config, error) {
	// Load .env file if exists
	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(); err != nil {
			return nil, fmt.Errorf("error loading .env file: %v", err)
		}
	}

	cfg := &Config{
		MongoURI:     getEnv("MONGO_URI", "mongodb://localhost:27017/tutor_rag"),
		DBName:       getEnv("DB_NAME", "tutor_rag"),
		Port:         getEnv("PORT", "8080"),
		GinMode:      getEnv("GIN_MODE", "debug"),
		CORSOrigins:  strings.Split(getEnv("CORS_ORIGINS", "http://localhost:3000,http://localhost:8080"), ","),
		JWTSecret:    getEnv("JWT_SECRET", ""),
		JWTExpiresIn: getEnv("JWT_EXPIRES_IN", "24h"),
		BcryptCost:   getEnvInt("BCRYPT_COST", 12),

		RateLimitReqs:   getEnvInt("RATE_LIMIT_REQUESTS", 100),
		RateLimitWindow: getEnvInt("RATE_LIMIT_WINDOW", 60),

		RedisURL:      getEnv("REDIS_URL", "localhost:6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvInt("REDIS_DB", 0),

		GeminiAPIKeys: splitKeys(getEnv("GEMINI_API_KEYS", getEnv("GEMINI_API_KEY", ""))),

		CompletionModel:     getEnv("COMPLETION_MODEL", "gemini-2.0-flash"),
		CompletionModelFast: getEnv("COMPLETION_MODEL_FAST", "gemini-2.0-flash-lite"),
		EmbeddingsModel:     getEnv("EMBEDDINGS_MODEL", "text-embedding-004"),
		EmbeddingDimensions: getEnvInt("VECTOR_DIM", 768),

		ChunkSize:    getEnvInt("CHUNK_SIZE", 500),
		ChunkOverlap: getEnvInt("CHUNK_OVERLAP", 50),
		MinChunkSize: getEnvInt("MIN_CHUNK_SIZE", 100),
		MathMaxWords: getEnvInt("MATH_MAX_WORDS", 800),

		TopK:                getEnvInt("MAX_RAG_RESULTS", 5),
		SimilarityThreshold: getEnvFloat64("SIMILARITY_THRESHOLD", 0.5),
		VectorIndexName:     getEnv("MONGODB_VECTOR_INDEX", "document_chunks_vector"),

		MaxRouterIterations: getEnvInt("MAX_ROUTER_ITERATIONS", 2),

		NotesDir:        getEnv("NOTES_DIR", "./notes"),
		IngestBatchSize: getEnvInt("INGEST_BATCH_SIZE", 100),

		OTLPEndpoint: getEnv("OTLP_ENDPOINT", ""),
	}

	// Validate required fields
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required - set it in .env file")
	}

	if len(cfg.GeminiAPIKeys) == 0 {
		return nil, fmt.Errorf("GEMINI_API_KEYS is required - set it in .env file")
	}

	return cfg, nil
}

func splitKeys(raw string) []string {
	var keys []string
	for _, k := range strings.Split(raw, ",") {
		if k = strings.TrimSpace(k); k != "" {
			keys = append(keys, k)
		}
	}
	return keys
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvFloat64(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}
