package session

import (
	"time"

	"github.com/google/uuid"

	"github.com/ibero-data/duck-ui-sub001/pkg/models"
)

// HistoryLimit caps the history list. When a new entry pushes the list past
// the cap, the oldest entry is evicted.
const HistoryLimit = 15

// NewHistoryItem builds a history entry for one execution. Pass a negative
// duration for runs that never reached the backend.
func NewHistoryItem(query, tabID string, execErr error, durationMs int64) models.QueryHistoryItem {
	item := models.QueryHistoryItem{
		ID:        uuid.NewString(),
		Query:     query,
		TabID:     tabID,
		Timestamp: time.Now(),
	}
	if execErr != nil {
		msg := execErr.Error()
		item.Error = &msg
	}
	if durationMs >= 0 {
		d := durationMs
		item.DurationMs = &d
	}
	return item
}

// UpdateHistory prepends the entry, dropping any older entry with identical
// query text so a re-run promotes to the front instead of duplicating, then
// caps the list at HistoryLimit.
func UpdateHistory(history []models.QueryHistoryItem, item models.QueryHistoryItem) []models.QueryHistoryItem {
	updated := make([]models.QueryHistoryItem, 0, len(history)+1)
	updated = append(updated, item)
	for _, h := range history {
		if h.Query == item.Query {
			continue
		}
		updated = append(updated, h)
	}
	if len(updated) > HistoryLimit {
		updated = updated[:HistoryLimit]
	}
	return updated
}
