package common

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ibero-data/duck-ui-sub001/pkg/adapter"
)

func TestParseTextResultEmptyInput(t *testing.T) {
	for _, body := range []string{"", "   ", "\n\t \n"} {
		result, err := ParseTextResult(body)

		require.NoError(t, err, "input %q", body)
		require.NotNil(t, result)
		assert.NotNil(t, result.Columns)
		assert.NotNil(t, result.ColumnTypes)
		assert.NotNil(t, result.Rows)
		assert.Len(t, result.Columns, 0)
		assert.Len(t, result.Rows, 0)
		assert.Equal(t, int64(0), result.RowCount)
		assert.Empty(t, result.Error)
	}
}

func TestParseTextResultJSONArray(t *testing.T) {
	body := `[{"b":"x","a":1},{"b":"y","a":2}]`

	result, err := ParseTextResult(body)

	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, result.Columns)
	assert.Equal(t, []string{"String", "String"}, result.ColumnTypes)
	require.Len(t, result.Rows, 2)
	assert.Equal(t, int64(2), result.RowCount)
	assert.Equal(t, float64(1), result.Rows[0]["a"])
	assert.Equal(t, "x", result.Rows[0]["b"])
}

func TestParseTextResultEmptyJSONArray(t *testing.T) {
	result, err := ParseTextResult(`[]`)

	require.NoError(t, err)
	assert.Len(t, result.Columns, 0)
	assert.Len(t, result.Rows, 0)
	assert.Equal(t, int64(0), result.RowCount)
}

func TestParseTextResultNDJSONMatchesJSONArray(t *testing.T) {
	array := `[{"a":1,"b":"x"},{"a":2,"b":"y"}]`
	ndjson := "{\"a\":1,\"b\":\"x\"}\n{\"a\":2,\"b\":\"y\"}\n"

	fromArray, err := ParseTextResult(array)
	require.NoError(t, err)

	fromNDJSON, err := ParseTextResult(ndjson)
	require.NoError(t, err)

	assert.Equal(t, fromArray.Columns, fromNDJSON.Columns)
	assert.Equal(t, fromArray.ColumnTypes, fromNDJSON.ColumnTypes)
	assert.Equal(t, fromArray.Rows, fromNDJSON.Rows)
	assert.Equal(t, fromArray.RowCount, fromNDJSON.RowCount)
}

func TestParseTextResultSingleObjectIsOneRow(t *testing.T) {
	result, err := ParseTextResult(`{"status":"ok","code":200}`)

	require.NoError(t, err)
	assert.Equal(t, []string{"code", "status"}, result.Columns)
	require.Len(t, result.Rows, 1)
	assert.Equal(t, "ok", result.Rows[0]["status"])
}

func TestParseTextResultColumnarDocument(t *testing.T) {
	body := `{
		"meta": [{"name":"id","type":"UInt64"},{"name":"name","type":"String"}],
		"data": [[1,"alpha"],[2,"beta"],[3,"gamma"]],
		"rows": 3,
		"statistics": {"elapsed": 0.001}
	}`

	result, err := ParseTextResult(body)

	require.NoError(t, err)
	assert.Equal(t, []string{"id", "name"}, result.Columns)
	assert.Equal(t, []string{"UInt64", "String"}, result.ColumnTypes)
	require.Len(t, result.Rows, 3)
	assert.Equal(t, int64(3), result.RowCount)
	assert.Equal(t, float64(2), result.Rows[1]["id"])
	assert.Equal(t, "beta", result.Rows[1]["name"])
}

func TestParseTextResultColumnarExplicitRowsWins(t *testing.T) {
	body := `{"meta":[{"name":"a","type":"Int32"}],"data":[[1],[2]],"rows":500}`

	result, err := ParseTextResult(body)

	require.NoError(t, err)
	assert.Len(t, result.Rows, 2)
	assert.Equal(t, int64(500), result.RowCount)
}

func TestParseTextResultColumnarMergedLines(t *testing.T) {
	body := `{"meta":[{"name":"a","type":"Int32"},{"name":"b","type":"String"}]}` + "\n" +
		`{"data":[[1,"x"],[2,"y"]],"rows":7}` + "\n"

	result, err := ParseTextResult(body)

	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, result.Columns)
	require.Len(t, result.Rows, 2)
	assert.Equal(t, int64(7), result.RowCount)
	assert.Equal(t, "y", result.Rows[1]["b"])
}

func TestParseTextResultColumnarObjectRowsPassThrough(t *testing.T) {
	body := `{"meta":[{"name":"a","type":"Int32"}],"data":[{"a":1,"extra":"kept"}]}`

	result, err := ParseTextResult(body)

	require.NoError(t, err)
	require.Len(t, result.Rows, 1)
	assert.Equal(t, "kept", result.Rows[0]["extra"])
}

func TestParseTextResultColumnarShortRowPadded(t *testing.T) {
	body := `{"meta":[{"name":"a","type":"Int32"},{"name":"b","type":"String"}],"data":[[1]]}`

	result, err := ParseTextResult(body)

	require.NoError(t, err)
	require.Len(t, result.Rows, 1)
	assert.Equal(t, float64(1), result.Rows[0]["a"])
	val, present := result.Rows[0]["b"]
	assert.True(t, present)
	assert.Nil(t, val)
}

func TestParseTextResultColumnarMetaTypeDefaults(t *testing.T) {
	body := `{"meta":[{"name":"a"}],"data":[[1]]}`

	result, err := ParseTextResult(body)

	require.NoError(t, err)
	assert.Equal(t, []string{DefaultColumnType}, result.ColumnTypes)
	assert.Len(t, result.Columns, len(result.ColumnTypes))
}

func TestParseTextResultColumnarMissingFields(t *testing.T) {
	t.Run("missing data", func(t *testing.T) {
		_, err := ParseTextResult(`{"meta":[{"name":"a","type":"Int32"}]}`)

		require.Error(t, err)
		assert.Contains(t, err.Error(), "'data'")
		assert.Contains(t, err.Error(), "Failed to parse query result")
	})

	t.Run("missing meta", func(t *testing.T) {
		_, err := ParseTextResult(`{"data":[[1]]}`)

		require.Error(t, err)
		assert.Contains(t, err.Error(), "'meta'")
	})

	t.Run("non-array meta", func(t *testing.T) {
		_, err := ParseTextResult(`{"meta":"nope","data":[[1]]}`)

		require.Error(t, err)
		assert.Contains(t, err.Error(), "'meta'")
	})
}

func TestParseTextResultMalformed(t *testing.T) {
	_, err := ParseTextResult("DB::Exception: Syntax error near SELECT")

	require.Error(t, err)
	assert.True(t, adapter.IsParseError(err))
	assert.Contains(t, err.Error(), "Failed to parse query result")
}

func TestParseTextResultPreviewTruncated(t *testing.T) {
	body := "garbage " + strings.Repeat("x", 500)

	_, err := ParseTextResult(body)

	require.Error(t, err)

	var parseErr *adapter.ParseError
	require.ErrorAs(t, err, &parseErr)
	assert.Len(t, parseErr.Preview, adapter.ParseErrorPreviewLimit)
	assert.True(t, strings.HasPrefix(parseErr.Preview, "garbage "))
}

func TestParseTextResultColumnTypeParity(t *testing.T) {
	bodies := []string{
		`[]`,
		`[{"a":1}]`,
		`{"meta":[{"name":"a","type":"Int32"}],"data":[[1]]}`,
		`{"x":1}`,
	}

	for _, body := range bodies {
		result, err := ParseTextResult(body)
		require.NoError(t, err, "input %q", body)
		assert.Equal(t, len(result.Columns), len(result.ColumnTypes), "input %q", body)
	}
}
