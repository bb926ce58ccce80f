package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http/httptest"
	"testing"

	"github.com/dukerupert/hearth/internal/apperr"
)

func TestWriteErrorStatusMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantReason string
	}{
		{"validation", apperr.Validation("title is required"), 400, ""},
		{"unauthorized", apperr.Unauthorized("bad token"), 401, ""},
		{"access denied", apperr.AccessDenied("not a member"), 403, ""},
		{"not found", apperr.NotFound("task"), 404, ""},
		{"conflict with reason", apperr.Conflict(apperr.ReasonAlreadyCompleted, "task is already completed"), 409, apperr.ReasonAlreadyCompleted},
		{"wrapped conflict", fmt.Errorf("complete task: %w", apperr.Conflict(apperr.ReasonAlreadyCompleted, "task is already completed")), 409, apperr.ReasonAlreadyCompleted},
		{"unclassified", errors.New("disk full"), 500, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			writeError(rec, tt.err)

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}

			var body errorBody
			if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
				t.Fatalf("failed to decode body: %v", err)
			}
			if body.Reason != tt.wantReason {
				t.Errorf("reason = %q, want %q", body.Reason, tt.wantReason)
			}
			if body.Error == "" {
				t.Error("error message empty")
			}
		})
	}
}

func TestWriteErrorHidesInternalDetails(t *testing.T) {
	rec := httptest.NewRecorder()
	writeError(rec, errors.New("dial tcp 10.0.0.5: connection refused"))

	var body errorBody
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode body: %v", err)
	}
	if body.Error != "internal error" {
		t.Errorf("error = %q, want generic message", body.Error)
	}
}
