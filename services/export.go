package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"tutor-rag-platform/internal/config"
	"tutor-rag-platform/internal/logger"
	"tutor-rag-platform/models"
)

// ExportRequest selects what an admin export covers.
type ExportRequest struct {
	Format   string    `json:"format" binding:"required,oneof=json excel"`
	DateFrom time.Time `json:"date_from,omitempty"`
	DateTo   time.Time `json:"date_to,omitempty"`
	Subject  string    `json:"subject,omitempty"`
	Limit    int64     `json:"limit,omitempty"`
}

// ExportService builds downloadable snapshots of ingestion activity and
// student question logs for offline review.
type ExportService struct {
	reports  *mongo.Collection
	chatLogs *mongo.Collection
}

func NewExportService(client *mongo.Client, cfg *config.Config) *ExportService {
	db := client.Database(cfg.DBName)
	return &ExportService{
		reports:  db.Collection("ingest_reports"),
		chatLogs: db.Collection("chat_logs"),
	}
}

// ExportJSON returns the selected reports and chat logs as a single
// indented JSON document.
func (es *ExportService) ExportJSON(ctx context.Context, req ExportRequest) ([]byte, error) {
	reports, err := es.fetchReports(ctx, req)
	if err != nil {
		return nil, err
	}
	logs, err := es.fetchChatLogs(ctx, req)
	if err != nil {
		return nil, err
	}

	payload := struct {
		ExportedAt time.Time             `json:"exported_at"`
		Reports    []models.IngestReport `json:"ingest_reports"`
		ChatLogs   []models.ChatLog      `json:"chat_logs"`
	}{
		ExportedAt: time.Now().UTC(),
		Reports:    reports,
		ChatLogs:   logs,
	}
	return json.MarshalIndent(payload, "", "  ")
}

// ExportExcel returns an XLSX workbook with one sheet of ingest reports
// and one of chat logs.
func (es *ExportService) ExportExcel(ctx context.Context, req ExportRequest) ([]byte, error) {
	reports, err := es.fetchReports(ctx, req)
	if err != nil {
		return nil, err
	}
	logs, err := es.fetchChatLogs(ctx, req)
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	defer func() {
		if err := f.Close(); err != nil {
			logger.Warn("failed to close workbook", "error", err)
		}
	}()

	if err := es.writeReportSheet(f, reports); err != nil {
		return nil, err
	}
	if err := es.writeChatSheet(f, logs); err != nil {
		return nil, err
	}
	f.DeleteSheet("Sheet1")

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func (es *ExportService) writeReportSheet(f *excelize.File, reports []models.IngestReport) error {
	const sheet = "Ingest Reports"
	index, err := f.NewSheet(sheet)
	if err != nil {
		return fmt.Errorf("create sheet: %w", err)
	}
	f.SetActiveSheet(index)

	headers := []string{
		"File", "Class", "Subject", "Chapter", "Chapter Title",
		"Sections", "Chunks", "Inserted", "Failed Batches",
		"Duration (ms)", "Error", "Created At",
	}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheet, cell, h)
	}

	for rowIdx, r := range reports {
		row := rowIdx + 2
		values := []interface{}{
			r.Filename, r.ClassLevel, r.Subject, r.ChapterNumber, r.ChapterTitle,
			r.SectionCount, r.ChunkCount, r.InsertedCount, r.FailedBatches,
			r.DurationMillis, r.Error, r.CreatedAt.Format("2006-01-02 15:04:05"),
		}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row)
			f.SetCellValue(sheet, cell, v)
		}
	}
	return nil
}

func (es *ExportService) writeChatSheet(f *excelize.File, logs []models.ChatLog) error {
	const sheet = "Chat Logs"
	if _, err := f.NewSheet(sheet); err != nil {
		return fmt.Errorf("create sheet: %w", err)
	}

	headers := []string{
		"Timestamp", "Class", "Subject", "Language", "Query", "Answer",
		"Chapter Used", "Confidence", "Latency (ms)",
	}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheet, cell, h)
	}

	for rowIdx, l := range logs {
		row := rowIdx + 2
		values := []interface{}{
			l.Timestamp.Format("2006-01-02 15:04:05"), l.ClassLevel, l.Subject,
			l.Language, l.Query, l.Answer, l.ChapterUsed, l.Confidence, l.LatencyMS,
		}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row)
			f.SetCellValue(sheet, cell, v)
		}
	}
	return nil
}

func (es *ExportService) fetchReports(ctx context.Context, req ExportRequest) ([]models.IngestReport, error) {
	filter := es.timeFilter(req, "created_at")
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	if req.Limit > 0 {
		opts.SetLimit(req.Limit)
	}
	cursor, err := es.reports.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("fetch ingest reports: %w", err)
	}
	defer cursor.Close(ctx)

	var out []models.IngestReport
	if err := cursor.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (es *ExportService) fetchChatLogs(ctx context.Context, req ExportRequest) ([]models.ChatLog, error) {
	filter := es.timeFilter(req, "timestamp")
	opts := options.Find().SetSort(bson.D{{Key: "timestamp", Value: -1}})
	if req.Limit > 0 {
		opts.SetLimit(req.Limit)
	}
	cursor, err := es.chatLogs.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("fetch chat logs: %w", err)
	}
	defer cursor.Close(ctx)

	var out []models.ChatLog
	if err := cursor.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (es *ExportService) timeFilter(req ExportRequest, field string) bson.M {
	filter := bson.M{}
	timeRange := bson.M{}
	if !req.DateFrom.IsZero() {
		timeRange["$gte"] = req.DateFrom
	}
	if !req.DateTo.IsZero() {
		timeRange["$lte"] = req.DateTo
	}
	if len(timeRange) > 0 {
		filter[field] = timeRange
	}
	if req.Subject != "" {
		filter["subject"] = req.Subject
	}
	return filter
}
