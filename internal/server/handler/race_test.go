package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Ringzero787/f1-fantasy-backend/internal/domain"
)

type fakeTrigger struct {
	err     error
	raceIDs []string
}

func (f *fakeTrigger) Recalculate(_ context.Context, raceID string) error {
	f.raceIDs = append(f.raceIDs, raceID)
	return f.err
}

func recalcRequest(trigger *fakeTrigger, raceID string) *httptest.ResponseRecorder {
	h := NewRaceHandler(trigger, nil, slog.New(slog.NewTextHandler(io.Discard, nil)))
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/races/{id}/recalculate", h.Recalculate)

	req := httptest.NewRequest(http.MethodPost, "/api/races/"+raceID+"/recalculate", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	return rec
}

func TestRecalculateAccepted(t *testing.T) {
	trigger := &fakeTrigger{}
	rec := recalcRequest(trigger, "r1")

	if rec.Code != http.StatusAccepted {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusAccepted)
	}
	if len(trigger.raceIDs) != 1 || trigger.raceIDs[0] != "r1" {
		t.Errorf("trigger called with %v, want [r1]", trigger.raceIDs)
	}

	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body["race_id"] != "r1" || body["status"] != "accepted" {
		t.Errorf("body = %v", body)
	}
}

func TestRecalculateErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{"unknown race", fmt.Errorf("wrapped: %w", domain.ErrNotFound), http.StatusNotFound},
		{"race without results", fmt.Errorf("wrapped: %w", domain.ErrNoResults), http.StatusPreconditionFailed},
		{"anything else", errors.New("db down"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := recalcRequest(&fakeTrigger{err: tt.err}, "r1")
			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
		})
	}
}
