package services

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"tutor-rag-platform/internal/config"
	"tutor-rag-platform/internal/logger"
	"tutor-rag-platform/models"
	"tutor-rag-platform/utils"
)

// VectorStore persists chapters, chunk rows with embeddings, and archived
// source text in MongoDB. Similarity search runs through Atlas
// $vectorSearch with metadata filters; a direct-query fallback serves
// degraded retrieval when the search stage is unavailable.
type VectorStore struct {
	db        *mongo.Database
	indexName string
	batchSize int
}

func NewVectorStore(client *mongo.Client, cfg *config.Config) *VectorStore {
	batchSize := cfg.IngestBatchSize
	if batchSize <= 0 || batchSize > 100 {
		batchSize = 100
	}
	return &VectorStore{
		db:        client.Database(cfg.DBName),
		indexName: cfg.VectorIndexName,
		batchSize: batchSize,
	}
}

func (vs *VectorStore) chapters() *mongo.Collection       { return vs.db.Collection("chapters") }
func (vs *VectorStore) chunks() *mongo.Collection         { return vs.db.Collection("document_chunks") }
func (vs *VectorStore) sourceArchives() *mongo.Collection { return vs.db.Collection("source_archives") }

// UpsertChapter looks up a chapter by natural key and creates it when
// missing. Get-or-create: a chapter is never duplicated.
func (vs *VectorStore) UpsertChapter(ctx context.Context, chapter models.Chapter) (primitive.ObjectID, error) {
	filter := bson.M{
		"class_level":    chapter.ClassLevel,
		"subject":        chapter.Subject,
		"chapter_number": chapter.ChapterNumber,
	}

	var existing models.Chapter
	err := vs.chapters().FindOne(ctx, filter).Decode(&existing)
	if err == nil {
		return existing.ID, nil
	}
	if err != mongo.ErrNoDocuments {
		return primitive.NilObjectID, fmt.Errorf("chapter lookup failed: %w", err)
	}

	chapter.ID = primitive.NewObjectID()
	chapter.CreatedAt = time.Now()
	chapter.UpdatedAt = chapter.CreatedAt

	if _, err := vs.chapters().InsertOne(ctx, chapter); err != nil {
		// A concurrent ingest may have created it between lookup and insert.
		if mongo.IsDuplicateKeyError(err) {
			if ferr := vs.chapters().FindOne(ctx, filter).Decode(&existing); ferr == nil {
				return existing.ID, nil
			}
		}
		return primitive.NilObjectID, fmt.Errorf("chapter insert failed: %w", err)
	}

	return chapter.ID, nil
}

// ClearChunks deletes every chunk row of a chapter. Re-ingestion is a full
// replace, never a partial update.
func (vs *VectorStore) ClearChunks(ctx context.Context, chapterID primitive.ObjectID) error {
	_, err := vs.chunks().DeleteMany(ctx, bson.M{"chapter_id": chapterID})
	if err != nil {
		return fmt.Errorf("clear chunks failed: %w", err)
	}
	return nil
}

// MaxChunkIndex returns the highest stored chunk_index for a chapter, or -1
// when the chapter has no chunks. New ingestion runs offset their indices
// past this value so indices stay unique across source files.
func (vs *VectorStore) MaxChunkIndex(ctx context.Context, chapterID primitive.ObjectID) (int, error) {
	opts := options.FindOne().SetSort(bson.D{{Key: "chunk_index", Value: -1}})

	var row models.DocumentChunk
	err := vs.chunks().FindOne(ctx, bson.M{"chapter_id": chapterID}, opts).Decode(&row)
	if err == mongo.ErrNoDocuments {
		return -1, nil
	}
	if err != nil {
		return -1, fmt.Errorf("max chunk index lookup failed: %w", err)
	}
	return row.ChunkIndex, nil
}

// InsertChunks writes chunk rows in bounded batches. A failing batch is
// tallied and skipped so one bad batch does not abort the whole load.
func (vs *VectorStore) InsertChunks(ctx context.Context, chapter models.Chapter, chunks []models.Chunk, embeddings [][]float32) (int, []string) {
	if len(chunks) != len(embeddings) {
		return 0, []string{fmt.Sprintf("chunk/embedding count mismatch: %d vs %d", len(chunks), len(embeddings))}
	}

	rows := make([]interface{}, 0, len(chunks))
	now := time.Now()
	for i, chunk := range chunks {
		rows = append(rows, models.DocumentChunk{
			ChapterID:     chapter.ID,
			ClassLevel:    chapter.ClassLevel,
			Subject:       chapter.Subject,
			ChapterNumber: chapter.ChapterNumber,
			ChapterTitle:  chapter.ChapterTitle,
			ChunkText:     chunk.Text,
			ChunkIndex:    chunk.ChunkIndex,
			Embedding:     embeddings[i],
			Metadata:      chunk.Metadata,
			CreatedAt:     now,
		})
	}

	inserted := 0
	var errs []string

	for start := 0; start < len(rows); start += vs.batchSize {
		end := start + vs.batchSize
		if end > len(rows) {
			end = len(rows)
		}
		batch := rows[start:end]

		if _, err := vs.chunks().InsertMany(ctx, batch); err != nil {
			errs = append(errs, fmt.Sprintf("batch %d: %v", start/vs.batchSize, err))
			continue
		}
		inserted += len(batch)
	}

	return inserted, errs
}

// Search runs a $vectorSearch aggregation scoped by class level, subject
// and optionally specific chapter numbers.
func (vs *VectorStore) Search(ctx context.Context, vector []float32, classLevel int, subject string, chapterNumbers []int, limit int) ([]models.RetrievedChunk, error) {
	filter := bson.M{
		"class_level": classLevel,
		"subject":     subject,
	}
	if len(chapterNumbers) > 0 {
		filter["chapter_number"] = bson.M{"$in": chapterNumbers}
	}

	pipeline := mongo.Pipeline{
		{{Key: "$vectorSearch", Value: bson.M{
			"index":         vs.indexName,
			"path":          "embedding",
			"queryVector":   vector,
			"numCandidates": limit * 10,
			"limit":         limit,
			"filter":        filter,
		}}},
		{{Key: "$project", Value: bson.M{
			"chunk_text":     1,
			"chapter_number": 1,
			"chapter_title":  1,
			"metadata":       1,
			"similarity":     bson.M{"$meta": "vectorSearchScore"},
		}}},
	}

	cursor, err := vs.chunks().Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("vector search failed: %w", err)
	}
	defer cursor.Close(ctx)

	var results []models.RetrievedChunk
	for cursor.Next(ctx) {
		var row struct {
			ChunkText     string               `bson:"chunk_text"`
			ChapterNumber int                  `bson:"chapter_number"`
			ChapterTitle  string               `bson:"chapter_title"`
			Similarity    float64              `bson:"similarity"`
			Metadata      models.ChunkMetadata `bson:"metadata"`
		}
		if err := cursor.Decode(&row); err != nil {
			return nil, fmt.Errorf("vector search decode failed: %w", err)
		}
		results = append(results, models.RetrievedChunk{
			Text:          row.ChunkText,
			ChapterNumber: row.ChapterNumber,
			ChapterTitle:  row.ChapterTitle,
			Similarity:    row.Similarity,
			Metadata:      row.Metadata,
		})
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("vector search cursor failed: %w", err)
	}

	return results, nil
}

// FallbackPlaceholderSimilarity marks results from the degraded direct-query
// path. It is a fixed placeholder, not a true distance.
const FallbackPlaceholderSimilarity = 0.6

// FallbackSearch serves retrieval without the search stage: fetch matching
// chapters, fetch their chunk rows directly, and tag every result with the
// placeholder similarity.
func (vs *VectorStore) FallbackSearch(ctx context.Context, classLevel int, subject string, chapterNumbers []int, limit int) ([]models.RetrievedChunk, error) {
	chapterFilter := bson.M{
		"class_level": classLevel,
		"subject":     subject,
	}
	if len(chapterNumbers) > 0 {
		chapterFilter["chapter_number"] = bson.M{"$in": chapterNumbers}
	}

	cursor, err := vs.chapters().Find(ctx, chapterFilter)
	if err != nil {
		return nil, fmt.Errorf("fallback chapter lookup failed: %w", err)
	}

	chaptersByID := make(map[primitive.ObjectID]models.Chapter)
	var chapterIDs []primitive.ObjectID
	for cursor.Next(ctx) {
		var ch models.Chapter
		if err := cursor.Decode(&ch); err != nil {
			cursor.Close(ctx)
			return nil, fmt.Errorf("fallback chapter decode failed: %w", err)
		}
		chaptersByID[ch.ID] = ch
		chapterIDs = append(chapterIDs, ch.ID)
	}
	cursor.Close(ctx)

	if len(chapterIDs) == 0 {
		return nil, nil
	}

	chunkOpts := options.Find().
		SetLimit(int64(limit * 5)).
		SetProjection(bson.M{"embedding": 0})

	chunkCursor, err := vs.chunks().Find(ctx, bson.M{"chapter_id": bson.M{"$in": chapterIDs}}, chunkOpts)
	if err != nil {
		return nil, fmt.Errorf("fallback chunk lookup failed: %w", err)
	}
	defer chunkCursor.Close(ctx)

	var results []models.RetrievedChunk
	for chunkCursor.Next(ctx) {
		var row models.DocumentChunk
		if err := chunkCursor.Decode(&row); err != nil {
			return nil, fmt.Errorf("fallback chunk decode failed: %w", err)
		}
		chapter := chaptersByID[row.ChapterID]
		results = append(results, models.RetrievedChunk{
			Text:          row.ChunkText,
			ChapterNumber: chapter.ChapterNumber,
			ChapterTitle:  chapter.ChapterTitle,
			Similarity:    FallbackPlaceholderSimilarity,
			Metadata:      row.Metadata,
		})
		if len(results) >= limit {
			break
		}
	}
	if err := chunkCursor.Err(); err != nil {
		return nil, fmt.Errorf("fallback cursor failed: %w", err)
	}

	return results, nil
}

// ArchiveSource stores the compressed full text of an ingested file so the
// chapter can be re-processed without the original upload.
func (vs *VectorStore) ArchiveSource(ctx context.Context, chapterID primitive.ObjectID, filename, text string) error {
	compressed, algorithm, err := utils.CompressText(text)
	if err != nil {
		return fmt.Errorf("source compression failed: %w", err)
	}

	filter := bson.M{"chapter_id": chapterID, "filename": filename}
	update := bson.M{"$set": models.SourceArchive{
		ChapterID:   chapterID,
		Filename:    filename,
		Compressed:  compressed,
		Compression: string(algorithm),
		RawBytes:    len(text),
		CreatedAt:   time.Now(),
	}}

	_, err = vs.sourceArchives().UpdateOne(ctx, filter, update, options.Update().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("source archive upsert failed: %w", err)
	}

	logger.Debug("source archived", "filename", filename, "raw_bytes", len(text), "compressed_bytes", len(compressed))
	return nil
}

// ChapterByNumber fetches one chapter by natural key.
func (vs *VectorStore) ChapterByNumber(ctx context.Context, classLevel int, subject string, chapterNumber int) (*models.Chapter, error) {
	var chapter models.Chapter
	err := vs.chapters().FindOne(ctx, bson.M{
		"class_level":    classLevel,
		"subject":        subject,
		"chapter_number": chapterNumber,
	}).Decode(&chapter)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("chapter lookup failed: %w", err)
	}
	return &chapter, nil
}

// ChunkCount returns the number of stored chunk rows for a chapter.
func (vs *VectorStore) ChunkCount(ctx context.Context, chapterID primitive.ObjectID) (int64, error) {
	return vs.chunks().CountDocuments(ctx, bson.M{"chapter_id": chapterID})
}
