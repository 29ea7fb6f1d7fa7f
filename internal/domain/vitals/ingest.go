package vitals

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const (
	colPatientID = "patient_id"
	colTimestamp = "timestamp"
)

// Row is one untyped input record keyed by column name.
type Row map[string]string

// Ingestor validates external rows and appends them to the vitals store.
type Ingestor struct {
	records VitalsRepository
	logger  zerolog.Logger
	now     func() time.Time
}

func NewIngestor(records VitalsRepository, logger zerolog.Logger) *Ingestor {
	return &Ingestor{records: records, logger: logger, now: time.Now}
}

// Ingest converts rows into records and stores them as one batch. Every row
// must carry patient_id and all six vitals; a missing or blank timestamp is
// replaced by the ingestion time. Validation failures write nothing.
func (i *Ingestor) Ingest(ctx context.Context, rows []Row) (int, error) {
	if len(rows) == 0 {
		return 0, nil
	}

	batchID := uuid.New()
	now := float64(i.now().UnixNano()) / 1e9
	records := make([]VitalRecord, 0, len(rows))
	for n, row := range rows {
		rec, err := parseRow(row, n+1, now)
		if err != nil {
			return 0, err
		}
		rec.BatchID = batchID
		records = append(records, rec)
	}

	if err := i.records.Append(ctx, records); err != nil {
		return 0, storageErr("append vital records", err)
	}
	i.logger.Info().
		Str("batch_id", batchID.String()).
		Int("records", len(records)).
		Msg("vital records ingested")
	return len(records), nil
}

func parseRow(row Row, n int, now float64) (VitalRecord, error) {
	var rec VitalRecord

	pid, ok := row[colPatientID]
	if !ok {
		return rec, &ValidationError{Row: n, Field: colPatientID, Reason: "missing column"}
	}
	pid = strings.TrimSpace(pid)
	if pid == "" {
		return rec, &ValidationError{Row: n, Field: colPatientID, Reason: "empty value"}
	}
	rec.PatientID = pid

	for _, v := range TrackedVitals {
		raw, ok := row[string(v)]
		if !ok {
			return rec, &ValidationError{Row: n, Field: string(v), Reason: "missing column"}
		}
		f, err := parseReading(raw)
		if err != nil {
			return rec, &ValidationError{Row: n, Field: string(v), Reason: err.Error()}
		}
		rec.SetReading(v, f)
	}

	rec.Timestamp = now
	if raw := strings.TrimSpace(row[colTimestamp]); raw != "" {
		ts, err := parseReading(raw)
		if err != nil {
			return rec, &ValidationError{Row: n, Field: colTimestamp, Reason: err.Error()}
		}
		rec.Timestamp = ts
	}
	return rec, nil
}

func parseReading(raw string) (float64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, fmt.Errorf("empty value")
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("not a number %q", raw)
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("not a finite number %q", raw)
	}
	return f, nil
}

// IngestCSV reads a header row followed by data rows.
func (i *Ingestor) IngestCSV(ctx context.Context, r io.Reader) (int, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err == io.EOF {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("read csv header: %w", err)
	}
	for k := range header {
		header[k] = strings.TrimSpace(header[k])
	}

	var rows []Row
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return 0, fmt.Errorf("read csv: %w", err)
		}
		row := make(Row, len(header))
		for k, col := range header {
			if k < len(rec) {
				row[col] = rec[k]
			}
		}
		rows = append(rows, row)
	}
	return i.Ingest(ctx, rows)
}

// IngestJSON reads an array of objects whose values are numbers or strings.
func (i *Ingestor) IngestJSON(ctx context.Context, r io.Reader) (int, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()

	var objs []map[string]interface{}
	if err := dec.Decode(&objs); err != nil {
		return 0, fmt.Errorf("decode json: %w", err)
	}

	rows := make([]Row, 0, len(objs))
	for n, obj := range objs {
		row := make(Row, len(obj))
		for k, v := range obj {
			switch val := v.(type) {
			case json.Number:
				row[k] = val.String()
			case string:
				row[k] = val
			case nil:
				// absent value; required columns are reported by Ingest
			default:
				return 0, &ValidationError{Row: n + 1, Field: k, Reason: fmt.Sprintf("unsupported value type %T", v)}
			}
		}
		rows = append(rows, row)
	}
	return i.Ingest(ctx, rows)
}

// IngestFile dispatches on the file extension: .json is decoded as JSON,
// anything else as CSV.
func (i *Ingestor) IngestFile(ctx context.Context, path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	if strings.EqualFold(filepath.Ext(path), ".json") {
		return i.IngestJSON(ctx, f)
	}
	return i.IngestCSV(ctx, f)
}
