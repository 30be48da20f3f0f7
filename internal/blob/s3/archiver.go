package s3blob

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/Ringzero787/f1-fantasy-backend/internal/domain"
)

// HistoryArchiveStore is the read access the archiver needs: just the
// per-race history query, not the full history store.
type HistoryArchiveStore interface {
	ListByRace(ctx context.Context, raceID string) ([]domain.PriceHistoryRecord, error)
}

// Archiver copies a completed race's price history rows to cold storage as
// JSONL. The primary rows stay in Postgres; the export is an audit copy,
// never a move.
type Archiver struct {
	writer  domain.BlobWriter
	history HistoryArchiveStore
}

// NewArchiver creates an Archiver.
func NewArchiver(writer domain.BlobWriter, history HistoryArchiveStore) *Archiver {
	return &Archiver{writer: writer, history: history}
}

// ArchiveRace uploads the race's price history to
// archive/price_history/{raceID}.jsonl. Races that produced no history rows
// are skipped without error.
func (a *Archiver) ArchiveRace(ctx context.Context, raceID string) error {
	records, err := a.history.ListByRace(ctx, raceID)
	if err != nil {
		return fmt.Errorf("s3blob: archive race %s query: %w", raceID, err)
	}
	if len(records) == 0 {
		return nil
	}

	buf, err := marshalJSONL(records)
	if err != nil {
		return fmt.Errorf("s3blob: archive race %s marshal: %w", raceID, err)
	}

	path := fmt.Sprintf("archive/price_history/%s.jsonl", raceID)
	if err := a.writer.Put(ctx, path, bytes.NewReader(buf), "application/x-ndjson"); err != nil {
		return fmt.Errorf("s3blob: archive race %s upload: %w", raceID, err)
	}
	return nil
}

// marshalJSONL serialises records as newline-delimited JSON, one compact
// line per record.
func marshalJSONL[T any](records []T) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)

	for i, rec := range records {
		if err := enc.Encode(rec); err != nil {
			return nil, fmt.Errorf("jsonl encode record %d: %w", i, err)
		}
	}
	return buf.Bytes(), nil
}
