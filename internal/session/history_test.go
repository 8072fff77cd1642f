package session

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ibero-data/duck-ui-sub001/pkg/models"
)

func TestUpdateHistoryFreshEntry(t *testing.T) {
	item := NewHistoryItem("SELECT 1", "", nil, -1)
	history := UpdateHistory(nil, item)

	require.Len(t, history, 1)
	assert.NotEmpty(t, history[0].ID)
	assert.Equal(t, "SELECT 1", history[0].Query)
	assert.False(t, history[0].Timestamp.IsZero())
	assert.Nil(t, history[0].Error)
	assert.Nil(t, history[0].DurationMs, "negative duration means the run never reached the backend")
}

func TestNewHistoryItemCarriesFailure(t *testing.T) {
	item := NewHistoryItem("SELECT bad", "tab-1", errors.New("boom"), 12)

	require.NotNil(t, item.Error)
	assert.Equal(t, "boom", *item.Error)
	require.NotNil(t, item.DurationMs)
	assert.Equal(t, int64(12), *item.DurationMs)
	assert.Equal(t, "tab-1", item.TabID)
}

func TestUpdateHistoryPromotesDuplicate(t *testing.T) {
	var history []models.QueryHistoryItem
	for _, q := range []string{"SELECT 3", "SELECT 2", "SELECT 1"} {
		history = UpdateHistory(history, NewHistoryItem(q, "", nil, 1))
	}
	require.Len(t, history, 3)
	assert.Equal(t, "SELECT 1", history[0].Query)

	// Re-running the middle entry moves it to the front without growing the list
	history = UpdateHistory(history, NewHistoryItem("SELECT 2", "", nil, 1))

	require.Len(t, history, 3)
	assert.Equal(t, "SELECT 2", history[0].Query)
	assert.Equal(t, "SELECT 1", history[1].Query)
	assert.Equal(t, "SELECT 3", history[2].Query)
}

func TestUpdateHistoryCap(t *testing.T) {
	var history []models.QueryHistoryItem
	for i := 0; i < HistoryLimit; i++ {
		history = UpdateHistory(history, NewHistoryItem(fmt.Sprintf("SELECT %d", i), "", nil, 1))
	}
	require.Len(t, history, HistoryLimit)
	oldest := history[len(history)-1].Query

	history = UpdateHistory(history, NewHistoryItem("SELECT fresh", "", nil, 1))

	require.Len(t, history, HistoryLimit)
	assert.Equal(t, "SELECT fresh", history[0].Query)
	for _, h := range history {
		assert.NotEqual(t, oldest, h.Query, "the oldest entry must be evicted")
	}
}
