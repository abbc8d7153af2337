package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/edupainel/leads-panel/internal/archive"
	"github.com/edupainel/leads-panel/internal/config"
	"github.com/edupainel/leads-panel/internal/export"
	"github.com/edupainel/leads-panel/internal/ingest"
	"github.com/edupainel/leads-panel/internal/leads"
)

// Handlers contains all HTTP handlers. Services are injected at
// construction so tests can wire sqlmock-backed instances.
type Handlers struct {
	leads    *leads.Service
	pipeline *ingest.Pipeline
	archiver *archive.Uploader
	cfg      *config.Config
}

// NewHandlers creates a new Handlers instance. The archiver may be
// nil when S3 archival is disabled.
func NewHandlers(leadsSvc *leads.Service, pipeline *ingest.Pipeline, archiver *archive.Uploader, cfg *config.Config) *Handlers {
	return &Handlers{
		leads:    leadsSvc,
		pipeline: pipeline,
		archiver: archiver,
		cfg:      cfg,
	}
}

// sourceRef identifies the warehouse objects every response was
// resolved against, for operator debugging.
func (h *Handlers) sourceRef() map[string]interface{} {
	return map[string]interface{}{
		"database":      h.cfg.Snowflake.Database,
		"schema":        h.cfg.Snowflake.Schema,
		"fact_table":    h.cfg.Panel.FactTable,
		"staging_table": h.cfg.Panel.StagingTable,
		"pipeline_proc": h.cfg.Panel.PipelineProc,
		"options_limit": h.cfg.Panel.OptionsLimit,
	}
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]interface{}{"ok": false, "error": message})
}

// respondFailure is the single warehouse-error boundary: the caller
// gets a generic message plus diagnostic detail, never a partial 200.
func (h *Handlers) respondFailure(w http.ResponseWriter, err error, publicMsg string) {
	log.Printf("[api] ERROR: %s: %v", publicMsg, err)
	respondJSON(w, http.StatusInternalServerError, map[string]interface{}{
		"ok":      false,
		"error":   publicMsg,
		"details": err.Error(),
		"source":  h.sourceRef(),
	})
}

// HealthCheck reports liveness and the resolved warehouse source
func (h *Handlers) HealthCheck(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"status": "ok",
		"source": h.sourceRef(),
	})
}

// GetLeads returns the filtered, paginated lead rows
func (h *Handlers) GetLeads(w http.ResponseWriter, r *http.Request) {
	filters := leads.ParseFilters(r.URL.Query(), false)

	rows, err := h.leads.Query(r.Context(), filters)
	if err != nil {
		h.respondFailure(w, err, "failed to query leads")
		return
	}
	if rows == nil {
		rows = []leads.Lead{}
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"count":  len(rows),
		"rows":   rows,
		"source": h.sourceRef(),
	})
}

// GetLeadsCount returns the unpaginated total for the same filter set
func (h *Handlers) GetLeadsCount(w http.ResponseWriter, r *http.Request) {
	filters := leads.ParseFilters(r.URL.Query(), false)

	total, err := h.leads.Count(r.Context(), filters)
	if err != nil {
		h.respondFailure(w, err, "failed to count leads")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"ok":     true,
		"total":  total,
		"source": h.sourceRef(),
	})
}

// GetKPIs returns aggregate counts for the filtered set
func (h *Handlers) GetKPIs(w http.ResponseWriter, r *http.Request) {
	filters := leads.ParseFilters(r.URL.Query(), false)

	report, err := h.leads.KPIs(r.Context(), filters)
	if err != nil {
		h.respondFailure(w, err, "failed to query KPIs")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"total":      report.Total,
		"last_date":  report.LastDate,
		"top_status": report.TopStatus,
		"by_status":  report.ByStatus,
		"source":     h.sourceRef(),
	})
}

// GetOptions returns distinct values per filterable dimension
func (h *Handlers) GetOptions(w http.ResponseWriter, r *http.Request) {
	options, err := h.leads.Options(r.Context(), h.cfg.Panel.OptionsLimit)
	if err != nil {
		h.respondFailure(w, err, "failed to query filter options")
		return
	}

	payload := map[string]interface{}{"source": h.sourceRef()}
	for k, v := range options {
		payload[k] = v
	}
	respondJSON(w, http.StatusOK, payload)
}

// Upload accepts a CSV/XLSX file, stages it, and triggers the
// consolidation procedure.
func (h *Handlers) Upload(w http.ResponseWriter, r *http.Request) {
	maxBytes := int64(h.cfg.Panel.MaxUploadMB) << 20
	r.Body = http.MaxBytesReader(w, r.Body, maxBytes)

	if err := r.ParseMultipartForm(maxBytes); err != nil {
		respondError(w, http.StatusBadRequest, "invalid multipart upload")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		respondError(w, http.StatusBadRequest, "no file sent (field 'file')")
		return
	}
	defer file.Close()

	if strings.TrimSpace(header.Filename) == "" {
		respondError(w, http.StatusBadRequest, "empty filename")
		return
	}

	source := strings.TrimSpace(r.FormValue("source"))
	if source == "" {
		source = "UPLOAD_PAINEL"
	}

	data, err := io.ReadAll(io.LimitReader(file, maxBytes))
	if err != nil {
		respondError(w, http.StatusBadRequest, "failed to read uploaded file")
		return
	}

	result, err := h.pipeline.Ingest(r.Context(), bytes.NewReader(data), header.Filename, source)
	if err != nil {
		if errors.Is(err, ingest.ErrUnsupportedFormat) || errors.Is(err, ingest.ErrNoRows) {
			respondError(w, http.StatusBadRequest, err.Error())
			return
		}
		h.respondFailure(w, err, "upload/ingestion failed")
		return
	}

	if h.archiver != nil {
		if key, err := h.archiver.Archive(r.Context(), result.LoadID, header.Filename, data); err != nil {
			// archival is best-effort: the rows are already staged
			log.Printf("[api] upload archive failed for %s: %v", header.Filename, err)
		} else {
			log.Printf("[api] upload archived at %s", key)
		}
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"ok":            true,
		"load_id":       result.LoadID,
		"rows_loaded":   result.RowsLoaded,
		"staging_table": result.StagingTable,
		"pipeline_proc": result.PipelineProc,
		"filename":      result.Filename,
		"source":        h.sourceRef(),
	})
}

// Export streams the filtered set as a CSV or XLSX attachment. Zero
// matching rows still produce a valid header-only file.
func (h *Handlers) Export(w http.ResponseWriter, r *http.Request) {
	filters := leads.ParseFilters(r.URL.Query(), true)

	rows, err := h.leads.Query(r.Context(), filters)
	if err != nil {
		h.respondFailure(w, err, "failed to export leads")
		return
	}

	records := make([][]string, len(rows))
	for i, row := range rows {
		records[i] = row.Values()
	}

	stamp := time.Now().Format("2006-01-02")
	format := strings.ToLower(strings.TrimSpace(r.URL.Query().Get("format")))

	if format == "xlsx" {
		w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=leads_export_%s.xlsx", stamp))
		if err := export.WriteXLSX(w, "leads", leads.Columns(), records); err != nil {
			log.Printf("[api] export XLSX write failed: %v", err)
		}
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=leads_export_%s.csv", stamp))
	if err := export.WriteCSV(w, leads.Columns(), records); err != nil {
		log.Printf("[api] export CSV write failed: %v", err)
	}
}

// DownloadTemplate serves the header-only XLSX import template
func (h *Handlers) DownloadTemplate(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", "attachment; filename=modelo_importacao_leads.xlsx")
	if err := export.WriteTemplateXLSX(w); err != nil {
		log.Printf("[api] template write failed: %v", err)
	}
}

// DebugSource echoes the resolved warehouse object names
func (h *Handlers) DebugSource(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"ok":     true,
		"source": h.sourceRef(),
	})
}

// DebugCount counts all fact rows, unfiltered
func (h *Handlers) DebugCount(w http.ResponseWriter, r *http.Request) {
	count, err := h.leads.DebugCount(r.Context())
	if err != nil {
		h.respondFailure(w, err, "failed to count fact rows")
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"ok":     true,
		"count":  count,
		"source": h.sourceRef(),
	})
}

// DebugSample returns a handful of raw lead rows
func (h *Handlers) DebugSample(w http.ResponseWriter, r *http.Request) {
	limit := 5
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 50 {
			limit = n
		}
	}

	rows, err := h.leads.DebugSample(r.Context(), limit)
	if err != nil {
		h.respondFailure(w, err, "failed to sample fact rows")
		return
	}
	if rows == nil {
		rows = []leads.Lead{}
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"ok":     true,
		"rows":   rows,
		"source": h.sourceRef(),
	})
}
