package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/hibiken/asynq"

	"tutor-rag-platform/internal/logger"
	"tutor-rag-platform/models"
)

const (
	TaskIngestFile      = "ingest:file"
	TaskIngestDirectory = "ingest:directory"
)

type IngestFilePayload struct {
	FilePath   string `json:"file_path"`
	ClassLevel int    `json:"class_level"`
	Subject    string `json:"subject"`
}

type IngestDirectoryPayload struct {
	Dir        string `json:"dir"`
	ClassLevel int    `json:"class_level"`
	Subject    string `json:"subject"`
}

// Task creators
func NewIngestFileTask(filePath string, classLevel int, subject string) (*asynq.Task, error) {
	payload, err := json.Marshal(IngestFilePayload{
		FilePath:   filePath,
		ClassLevel: classLevel,
		Subject:    subject,
	})
	if err != nil {
		return nil, err
	}

	return asynq.NewTask(
		TaskIngestFile,
		payload,
		asynq.MaxRetry(3),
		asynq.Timeout(10*time.Minute),
		asynq.Queue("critical"),
	), nil
}

func NewIngestDirectoryTask(dir string, classLevel int, subject string) (*asynq.Task, error) {
	payload, err := json.Marshal(IngestDirectoryPayload{
		Dir:        dir,
		ClassLevel: classLevel,
		Subject:    subject,
	})
	if err != nil {
		return nil, err
	}

	return asynq.NewTask(
		TaskIngestDirectory,
		payload,
		asynq.MaxRetry(1),
		asynq.Timeout(60*time.Minute),
		asynq.Queue("default"),
	), nil
}

// Ingestor runs the document pipeline for one file or a directory of files.
type Ingestor interface {
	IngestFile(ctx context.Context, path string, classLevel int, subject string) (*models.IngestReport, error)
	IngestDirectory(ctx context.Context, dir string, classLevel int, subject string) ([]*models.IngestReport, error)
}

// Task handlers
type TaskProcessor struct {
	ingestor Ingestor
}

func NewTaskProcessor(ingestor Ingestor) *TaskProcessor {
	return &TaskProcessor{ingestor: ingestor}
}

func (p *TaskProcessor) ProcessIngestFile(ctx context.Context, t *asynq.Task) error {
	var payload IngestFilePayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("unmarshal failed: %w", asynq.SkipRetry)
	}

	logger.Info("ingesting file",
		"path", payload.FilePath,
		"class_level", payload.ClassLevel,
		"subject", payload.Subject)

	report, err := p.ingestor.IngestFile(ctx, payload.FilePath, payload.ClassLevel, payload.Subject)
	if err != nil {
		logger.Error("file ingestion failed", "path", payload.FilePath, "error", err)
		return err
	}

	logger.Info("file ingested",
		"path", payload.FilePath,
		"chapter", report.ChapterNumber,
		"chunks", report.InsertedCount,
		"failed_batches", report.FailedBatches)
	return nil
}

func (p *TaskProcessor) ProcessIngestDirectory(ctx context.Context, t *asynq.Task) error {
	var payload IngestDirectoryPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("unmarshal failed: %w", asynq.SkipRetry)
	}

	logger.Info("ingesting directory",
		"dir", payload.Dir,
		"class_level", payload.ClassLevel,
		"subject", payload.Subject)

	reports, err := p.ingestor.IngestDirectory(ctx, payload.Dir, payload.ClassLevel, payload.Subject)
	if err != nil {
		return err
	}

	var total, failed int
	for _, r := range reports {
		total += r.InsertedCount
		if r.Error != "" {
			failed++
		}
	}
	logger.Info("directory ingested", "dir", payload.Dir, "files", len(reports), "chunks", total, "failed_files", failed)
	return nil
}
