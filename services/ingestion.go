package services

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"tutor-rag-platform/internal/config"
	"tutor-rag-platform/internal/logger"
	"tutor-rag-platform/internal/telemetry"
	"tutor-rag-platform/models"
)

// DocumentEmbedder produces embedding vectors for batches of chunk text.
type DocumentEmbedder interface {
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
}

// IngestionService turns note files on disk into embedded, searchable
// chunks. Word-processor and PDF chapters get re-ingested from scratch
// each run; LaTeX exercise files accumulate under a shared chapter, so
// their chunk indices continue from whatever is already stored.
type IngestionService struct {
	cfg         *config.Config
	store       *VectorStore
	embedder    DocumentEmbedder
	textChunker *TextChunker
	mathChunker *MathChunker
	metrics     *telemetry.Metrics
	reports     *mongo.Collection
}

func NewIngestionService(
	cfg *config.Config,
	client *mongo.Client,
	store *VectorStore,
	embedder DocumentEmbedder,
	metrics *telemetry.Metrics,
) *IngestionService {
	return &IngestionService{
		cfg:         cfg,
		store:       store,
		embedder:    embedder,
		textChunker: NewTextChunker(cfg.ChunkSize, cfg.ChunkOverlap, cfg.MinChunkSize),
		mathChunker: NewMathChunker(cfg.MathMaxWords),
		metrics:     metrics,
		reports:     client.Database(cfg.DBName).Collection("ingest_reports"),
	}
}

// IngestFile processes a single note file end to end and stores a
// report of the outcome. The returned report is also persisted when a
// report collection is available, including on failure.
func (s *IngestionService) IngestFile(ctx context.Context, path string, classLevel int, subject string) (*models.IngestReport, error) {
	start := time.Now()
	report := &models.IngestReport{
		ID:         primitive.NewObjectID(),
		Filename:   filepath.Base(path),
		ClassLevel: classLevel,
		Subject:    subject,
		CreatedAt:  start,
	}

	err := s.ingestInto(ctx, path, classLevel, subject, report)
	report.DurationMillis = time.Since(start).Milliseconds()
	if err != nil {
		report.Error = err.Error()
	}
	s.saveReport(ctx, report)
	if err != nil {
		return report, err
	}
	return report, nil
}

func (s *IngestionService) ingestInto(ctx context.Context, path string, classLevel int, subject string, report *models.IngestReport) error {
	extractor, err := ExtractorForFile(path)
	if err != nil {
		return err
	}

	logger.Info("ingesting file", "file", filepath.Base(path), "class_level", classLevel, "subject", subject)

	doc, err := extractor.Extract(path)
	if err != nil {
		return fmt.Errorf("extract %s: %w", filepath.Base(path), err)
	}
	report.ChapterNumber = doc.ChapterNumber
	report.SectionCount = len(doc.Sections)

	chapterTitle := fmt.Sprintf("Chapter %d", doc.ChapterNumber)
	var description string
	var topics []string
	if idx := IndexFor(classLevel, subject); idx != nil {
		if info, ok := idx.Chapters[doc.ChapterNumber]; ok {
			chapterTitle = info.Title
			description = info.Description
			topics = info.Topics
		}
	}
	report.ChapterTitle = chapterTitle

	chapter := models.Chapter{
		ClassLevel:    classLevel,
		Subject:       subject,
		ChapterNumber: doc.ChapterNumber,
		ChapterTitle:  chapterTitle,
		Description:   description,
		Topics:        topics,
		SourceFile:    filepath.Base(path),
	}
	chapterID, err := s.store.UpsertChapter(ctx, chapter)
	if err != nil {
		return fmt.Errorf("upsert chapter %d: %w", doc.ChapterNumber, err)
	}
	chapter.ID = chapterID

	var chunks []models.Chunk
	if strings.EqualFold(filepath.Ext(path), ".tex") {
		// Exercise files share a chapter; continue numbering after the
		// highest index already stored instead of wiping siblings.
		maxIdx, err := s.store.MaxChunkIndex(ctx, chapterID)
		if err != nil {
			return fmt.Errorf("max chunk index: %w", err)
		}
		chunks = s.mathChunker.ChunkDocument(doc.Sections, chapterTitle, classLevel, subject, doc.Metadata.ExerciseTitle)
		for i := range chunks {
			chunks[i].ChunkIndex += maxIdx + 1
		}
	} else {
		if err := s.store.ClearChunks(ctx, chapterID); err != nil {
			return fmt.Errorf("clear chunks: %w", err)
		}
		chunks = s.textChunker.ChunkDocument(doc.Sections, chapterTitle)
	}
	report.ChunkCount = len(chunks)

	if len(chunks) == 0 {
		logger.Warn("no chunks produced", "file", report.Filename)
		return nil
	}

	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Text
	}
	embeddings, err := s.embedder.EmbedBatch(ctx, texts)
	if err != nil {
		return fmt.Errorf("embed %d chunks: %w", len(chunks), err)
	}

	inserted, batchErrs := s.store.InsertChunks(ctx, chapter, chunks, embeddings)
	report.InsertedCount = inserted
	report.FailedBatches = len(batchErrs)
	for _, be := range batchErrs {
		logger.Error("chunk batch failed", "file", report.Filename, "detail", be)
	}

	if err := s.store.ArchiveSource(ctx, chapterID, filepath.Base(path), doc.FullText); err != nil {
		// Archival is best effort; retrieval works without it.
		logger.Warn("source archive failed", "file", report.Filename, "error", err)
	}

	if s.metrics != nil {
		s.metrics.RecordChunksIngested(ctx, subject, int64(classLevel), int64(inserted))
	}
	logger.Info("ingest complete",
		"file", report.Filename,
		"chapter", doc.ChapterNumber,
		"chunks", len(chunks),
		"inserted", inserted,
		"failed_batches", len(batchErrs))
	return nil
}

// IngestDirectory processes every supported note file in dir in sorted
// order. A failing file is recorded and skipped; the rest of the
// directory still runs.
func (s *IngestionService) IngestDirectory(ctx context.Context, dir string, classLevel int, subject string) ([]*models.IngestReport, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read dir %s: %w", dir, err)
	}

	var files []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		switch strings.ToLower(filepath.Ext(e.Name())) {
		case ".docx", ".tex", ".pdf":
			files = append(files, filepath.Join(dir, e.Name()))
		}
	}
	sort.Strings(files)
	logger.Info("ingesting directory", "dir", dir, "files", len(files))

	reports := make([]*models.IngestReport, 0, len(files))
	for _, f := range files {
		report, err := s.IngestFile(ctx, f, classLevel, subject)
		if err != nil {
			logger.Error("file ingest failed", "file", filepath.Base(f), "error", err)
		}
		reports = append(reports, report)
	}
	return reports, nil
}

// Reports returns the most recent ingest reports, newest first.
func (s *IngestionService) Reports(ctx context.Context, limit int64) ([]models.IngestReport, error) {
	if limit <= 0 {
		limit = 50
	}
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}).SetLimit(limit)
	cursor, err := s.reports.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var out []models.IngestReport
	if err := cursor.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *IngestionService) saveReport(ctx context.Context, report *models.IngestReport) {
	if s.reports == nil {
		return
	}
	if _, err := s.reports.InsertOne(ctx, report); err != nil {
		logger.Warn("failed to save ingest report", "file", report.Filename, "error", err)
	}
}
