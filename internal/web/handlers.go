package web

// handlers.go implements the ingest API:
//
//	POST /api/ingest/{table}?columns=a,b,c[&header=true][&sheet=name]
//	    stream the request body (CSV, optionally gzipped, any supported
//	    encoding) into the named Postgres table in bounded batches
//	POST /api/convert[?sheet=name]
//	    parse the body and write back the normalized CSV rendition
//	GET  /api/healthz

import (
	"context"
	"errors"
	"net/http"
	"regexp"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/pjensen/csvflow/internal/batch"
	"github.com/pjensen/csvflow/internal/logging"
	"github.com/pjensen/csvflow/internal/sink"
	"github.com/pjensen/csvflow/internal/streamio"
	"github.com/pjensen/csvflow/internal/table"
)

// identRegex restricts table and column names to plain identifiers so
// request input never reaches SQL as anything else.
var identRegex = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

// IngestResult is the JSON response for a completed ingest.
type IngestResult struct {
	IngestID  string `json:"ingestId"`
	Table     string `json:"table"`
	Rows      int    `json:"rows"`
	Batches   int    `json:"batches"`
	BytesRead int64  `json:"bytesRead"`
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	if err := s.pool.Ping(r.Context()); err != nil {
		writeError(w, r, http.StatusServiceUnavailable, "database unreachable")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleIngest(w http.ResponseWriter, r *http.Request) {
	tableName := chi.URLParam(r, "table")
	if !identRegex.MatchString(tableName) {
		writeError(w, r, http.StatusBadRequest, "invalid table name")
		return
	}

	columns, err := parseColumns(r.URL.Query().Get("columns"))
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	// Bound concurrent ingests; give up after the configured wait.
	waitCtx, cancelWait := context.WithTimeout(r.Context(), s.cfg.Ingest.MaxWaitTime)
	defer cancelWait()
	if err := s.ingestSlots.Acquire(waitCtx, 1); err != nil {
		writeError(w, r, http.StatusServiceUnavailable, "too many concurrent ingests, try again later")
		return
	}
	defer s.ingestSlots.Release(1)

	ingestID := uuid.New().String()
	logger := logging.WithFields(r.Context(), "ingest_id", ingestID, "table", tableName)

	ctx, cancel := context.WithTimeout(r.Context(), s.cfg.Ingest.Timeout)
	defer cancel()

	body := http.MaxBytesReader(w, r.Body, s.cfg.Ingest.MaxBodySize)
	src, err := streamio.WrapSource(body, s.cfg.Pipeline.Encoding, r.ContentLength)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	reader := table.NewReader(table.ReaderOptions{
		SheetName:       sheetParam(r, s.cfg.Pipeline.SheetName),
		FieldsPerRecord: len(columns),
	})
	proc := batch.New(s.cfg.Pipeline.BatchSize, sink.NewPostgres(s.pool, tableName, columns))

	skipHeader := r.URL.Query().Get("header") == "true"
	push := proc.RowFunc(ctx)
	rowFn := func(row table.Row) error {
		if skipHeader {
			skipHeader = false
			return nil
		}
		return push(row)
	}

	logger.Info("ingest started", "columns", len(columns))

	if err := reader.ReadRows(ctx, src, rowFn); err != nil {
		logger.Error("ingest failed", "error", err, "rows", proc.Rows())
		writeError(w, r, ingestStatus(err), "ingest failed: "+err.Error())
		return
	}
	if err := proc.Flush(ctx); err != nil {
		logger.Error("ingest flush failed", "error", err, "rows", proc.Rows())
		writeError(w, r, http.StatusBadGateway, "ingest failed: "+err.Error())
		return
	}

	logger.Info("ingest completed",
		"rows", proc.Rows(),
		"batches", proc.Delivered(),
		"bytes", src.BytesRead,
	)

	writeJSON(w, http.StatusOK, IngestResult{
		IngestID:  ingestID,
		Table:     tableName,
		Rows:      proc.Rows(),
		Batches:   proc.Delivered(),
		BytesRead: src.BytesRead,
	})
}

func (s *Server) handleConvert(w http.ResponseWriter, r *http.Request) {
	body := http.MaxBytesReader(w, r.Body, s.cfg.Ingest.MaxBodySize)
	src, err := streamio.WrapSource(body, s.cfg.Pipeline.Encoding, r.ContentLength)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	sheet := sheetParam(r, s.cfg.Pipeline.SheetName)
	reader := table.NewReader(table.ReaderOptions{SheetName: sheet})
	tbl, err := reader.Read(r.Context(), src)
	if err != nil {
		writeError(w, r, ingestStatus(err), "parse failed: "+err.Error())
		return
	}

	writer := table.NewWriter(table.WriterOptions{})
	buf, err := writer.WriteBuffer(r.Context(), table.WorkbookFromTable(tbl))
	if err != nil {
		writeError(w, r, http.StatusInternalServerError, "write failed: "+err.Error())
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}

// parseColumns validates the comma-separated column list.
func parseColumns(raw string) ([]string, error) {
	if raw == "" {
		return nil, errors.New("columns query parameter is required")
	}
	parts := strings.Split(raw, ",")
	columns := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if !identRegex.MatchString(p) {
			return nil, errors.New("invalid column name: " + p)
		}
		columns = append(columns, p)
	}
	return columns, nil
}

func sheetParam(r *http.Request, fallback string) string {
	if sheet := r.URL.Query().Get("sheet"); sheet != "" {
		return sheet
	}
	return fallback
}

// ingestStatus maps pipeline errors to HTTP statuses: malformed input is
// the client's fault, everything else is upstream.
func ingestStatus(err error) int {
	var se *table.StreamError
	if errors.As(err, &se) {
		return http.StatusBadRequest
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return http.StatusGatewayTimeout
	}
	return http.StatusBadGateway
}
