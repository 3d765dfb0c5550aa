package audit

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// Recorder builds and persists audit events for rule evaluations.
//
// Recording is best-effort: a storage failure is logged and otherwise
// ignored so an audit problem never turns a successful evaluation into a
// request failure.
type Recorder struct {
	store  Store
	logger *slog.Logger
}

// NewRecorder creates a recorder writing to the given store.
func NewRecorder(store Store, logger *slog.Logger) *Recorder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Recorder{
		store:  store,
		logger: logger.With("component", "audit.recorder"),
	}
}

// Record persists one evaluation outcome. The record is serialized to
// JSON for storage; serialization failures fall back to an empty object.
func (r *Recorder) Record(ctx context.Context, owner string, record map[string]any, ruleCount int, result bool, diagnostics int) {
	payload, err := json.Marshal(record)
	if err != nil {
		r.logger.Warn("failed to serialize evaluated record", "error", err)
		payload = []byte("{}")
	}

	event := &Event{
		ID:          uuid.NewString(),
		Owner:       owner,
		RuleCount:   ruleCount,
		Record:      string(payload),
		Result:      result,
		Diagnostics: diagnostics,
		CreatedAt:   time.Now(),
	}

	if err := r.store.Save(ctx, event); err != nil {
		r.logger.Error("failed to save audit event",
			"event_id", event.ID,
			"owner", owner,
			"error", err,
		)
	}
}
