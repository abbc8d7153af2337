package ingest

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/edupainel/leads-panel/internal/config"
)

// Result reports a completed ingestion
type Result struct {
	LoadID       string `json:"load_id"`
	RowsLoaded   int    `json:"rows_loaded"`
	StagingTable string `json:"staging_table"`
	PipelineProc string `json:"pipeline_proc"`
	Filename     string `json:"filename"`
}

// Pipeline loads upload files into the staging table and triggers the
// warehouse-side consolidation procedure. The *sql.DB is injected so
// tests can use sqlmock.
type Pipeline struct {
	db        *sql.DB
	panel     config.PanelConfig
	chunkSize int
	now       func() time.Time
}

// NewPipeline creates an ingestion pipeline bound to a warehouse
// connection.
func NewPipeline(db *sql.DB, panel config.PanelConfig) *Pipeline {
	chunk := panel.UploadChunkSize
	if chunk <= 0 {
		chunk = 20000
	}
	return &Pipeline{db: db, panel: panel, chunkSize: chunk, now: time.Now}
}

// Ingest parses the upload, normalizes every row to the staging
// schema, replaces the staging table contents in chunked batches, and
// invokes the consolidation procedure once.
//
// All batches run inside a single transaction: a failure mid-upload
// rolls back and leaves the previous staging contents in place, so the
// staging table never holds a truncated or mixed dataset.
func (p *Pipeline) Ingest(ctx context.Context, r io.Reader, filename, source string) (*Result, error) {
	table, err := ParseUpload(r, filename)
	if err != nil {
		return nil, err
	}

	mapping := MapHeader(table.Header)
	if len(mapping) == 0 {
		return nil, fmt.Errorf("no recognized columns in header %v", table.Header)
	}

	records := make([][]string, 0, len(table.Rows))
	for _, record := range table.Rows {
		if !blankRecord(record) {
			records = append(records, record)
		}
	}
	if len(records) == 0 {
		return nil, ErrNoRows
	}

	ingestedAt := p.now().UTC()

	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin staging transaction: %w", err)
	}
	defer tx.Rollback()

	total := 0
	first := true
	batch := make([][]interface{}, 0, p.chunkSize)

	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		if first {
			// chunk 1 replaces: the staging table reflects only the
			// current upload once this transaction commits
			if _, err := tx.ExecContext(ctx, "DELETE FROM "+p.panel.StagingTable); err != nil {
				return fmt.Errorf("failed to clear staging table: %w", err)
			}
			first = false
		}
		if err := p.insertBatch(ctx, tx, batch); err != nil {
			return err
		}
		total += len(batch)
		batch = batch[:0]
		return nil
	}

	for _, record := range records {
		batch = append(batch, NormalizeRecord(mapping, record, source, ingestedAt))
		if len(batch) >= p.chunkSize {
			if err := flush(); err != nil {
				return nil, err
			}
		}
	}
	if err := flush(); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit staging load: %w", err)
	}

	log.Printf("[ingest] staged %d rows from %s into %s", total, filename, p.panel.StagingTable)

	// single consolidation call after all batches are staged
	procCall := fmt.Sprintf("CALL %s(?)", p.panel.PipelineProc)
	if _, err := p.db.ExecContext(ctx, procCall, filename); err != nil {
		return nil, fmt.Errorf("failed to run consolidation procedure %s: %w", p.panel.PipelineProc, err)
	}

	return &Result{
		LoadID:       uuid.New().String(),
		RowsLoaded:   total,
		StagingTable: p.panel.StagingTable,
		PipelineProc: p.panel.PipelineProc,
		Filename:     filename,
	}, nil
}

// insertBatch writes one chunk as a single multi-row INSERT
func (p *Pipeline) insertBatch(ctx context.Context, tx *sql.Tx, batch [][]interface{}) error {
	cols := ColumnNames()
	rowPlaceholder := "(" + strings.Repeat("?, ", len(cols)-1) + "?)"

	var sb strings.Builder
	sb.WriteString("INSERT INTO ")
	sb.WriteString(p.panel.StagingTable)
	sb.WriteString(" (")
	sb.WriteString(strings.Join(cols, ", "))
	sb.WriteString(") VALUES ")

	args := make([]interface{}, 0, len(batch)*len(cols))
	for i, row := range batch {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(rowPlaceholder)
		args = append(args, row...)
	}

	if _, err := tx.ExecContext(ctx, sb.String(), args...); err != nil {
		return fmt.Errorf("failed to insert staging batch: %w", err)
	}
	return nil
}

func blankRecord(record []string) bool {
	for _, cell := range record {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
