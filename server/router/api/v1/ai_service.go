package v1

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	serverai "github.com/hrygo/akasha/server/ai"
	"github.com/hrygo/akasha/store"
)

type ingestRequest struct {
	Filename string `json:"filename"`
	Content  string `json:"content"`
}

type ingestResponse struct {
	File     *store.FileRecord          `json:"file"`
	Progress serverai.IngestionProgress `json:"progress"`
}

// IngestDocument chunks, embeds and stores a document. The response carries
// the created file record and the final progress snapshot.
func (s *APIV1Service) IngestDocument(c echo.Context) error {
	var req ingestRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "malformed ingest request").SetInternal(err)
	}
	if req.Filename == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "filename is required")
	}

	var last serverai.IngestionProgress
	file, err := s.Ingestor.Ingest(c.Request().Context(), req.Content, req.Filename, func(p serverai.IngestionProgress) {
		last = p
	})
	if err != nil {
		if errors.Is(err, serverai.ErrQuotaExceeded) {
			return echo.NewHTTPError(http.StatusForbidden, err.Error())
		}
		slog.Error("document ingestion failed", "filename", req.Filename, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to ingest document").SetInternal(err)
	}

	return c.JSON(http.StatusOK, ingestResponse{File: file, Progress: last})
}

// ListFiles returns all ingested file records.
func (s *APIV1Service) ListFiles(c echo.Context) error {
	files, err := s.Store.ListFileRecords(c.Request().Context(), &store.FindFileRecord{})
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to list files").SetInternal(err)
	}
	return c.JSON(http.StatusOK, files)
}

// DeleteFile removes a file record and all document chunks derived from it.
func (s *APIV1Service) DeleteFile(c echo.Context) error {
	id := c.Param("id")
	if id == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "file id is required")
	}
	if err := s.Store.DeleteFileRecord(c.Request().Context(), id); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to delete file").SetInternal(err)
	}
	return c.NoContent(http.StatusNoContent)
}

type recallRequest struct {
	Query string `json:"query"`
	Limit int    `json:"limit"`
}

// RecallMemories returns the formatted context fragments relevant to a query.
func (s *APIV1Service) RecallMemories(c echo.Context) error {
	var req recallRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "malformed recall request").SetInternal(err)
	}
	if req.Query == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "query is required")
	}
	fragments := s.Recaller.Recall(c.Request().Context(), req.Query, req.Limit)
	return c.JSON(http.StatusOK, map[string]any{"fragments": fragments})
}

type rememberRequest struct {
	Text   string           `json:"text"`
	Kind   store.MemoryKind `json:"kind"`
	Source string           `json:"source"`
	FileID string           `json:"fileId"`
}

// RememberMemory stores one memory record. The write itself is
// fire-and-forget, so the endpoint acknowledges acceptance, not persistence.
func (s *APIV1Service) RememberMemory(c echo.Context) error {
	var req rememberRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "malformed remember request").SetInternal(err)
	}
	if req.Text == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "text is required")
	}
	if req.Kind == "" {
		req.Kind = store.MemoryKindFact
	}

	go s.Writer.Remember(context.WithoutCancel(c.Request().Context()), req.Text, req.Kind, req.Source, req.FileID)
	return c.NoContent(http.StatusAccepted)
}

// ClearMemories wipes the whole archive: every memory and every file record.
func (s *APIV1Service) ClearMemories(c echo.Context) error {
	if err := s.Store.DeleteAll(c.Request().Context()); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to clear archive").SetInternal(err)
	}
	slog.Info("archive cleared")
	return c.NoContent(http.StatusNoContent)
}
