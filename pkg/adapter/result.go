package adapter

import "time"

// QueryResult is the canonical tabular result every backend normalizes into.
// Columns and ColumnTypes are parallel slices and always non-nil, even for
// empty or failed executions. RowCount is authoritative and may exceed
// len(Rows) when the backend reports a total alongside a partial page.
type QueryResult struct {
	Columns     []string                 `json:"columns"`
	ColumnTypes []string                 `json:"columnTypes"`
	Rows        []map[string]interface{} `json:"rows"`
	RowCount    int64                    `json:"rowCount"`
	Error       string                   `json:"error,omitempty"`
	DurationMs  int64                    `json:"durationMs"`
}

// NewEmptyResult returns a result with zero rows and the always-present
// column metadata.
func NewEmptyResult() *QueryResult {
	return &QueryResult{
		Columns:     []string{},
		ColumnTypes: []string{},
		Rows:        []map[string]interface{}{},
		RowCount:    0,
	}
}

// NewErrorResult folds an execution failure into the result shape so callers
// get a displayable value instead of an exception path.
func NewErrorResult(err error, duration time.Duration) *QueryResult {
	r := NewEmptyResult()
	if err != nil {
		r.Error = err.Error()
	}
	r.DurationMs = duration.Milliseconds()
	return r
}

// IsError reports whether the result carries an execution failure.
func (r *QueryResult) IsError() bool {
	return r != nil && r.Error != ""
}

// WithDuration stamps the elapsed execution time and returns the result.
func (r *QueryResult) WithDuration(d time.Duration) *QueryResult {
	r.DurationMs = d.Milliseconds()
	return r
}
