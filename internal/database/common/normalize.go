package common

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/ibero-data/duck-ui-sub001/pkg/adapter"
)

// DefaultColumnType is the generic type assigned to columns whose source
// does not report one.
const DefaultColumnType = "String"

// resultParser recognizes one response shape. matched reports whether the
// input was this shape at all; once a parser matches, its verdict is final
// and later candidates are not consulted.
type resultParser struct {
	name  string
	parse func(body string) (result *adapter.QueryResult, matched bool, err error)
}

// resultParsers are tried in order against remote response bodies:
// a single JSON array of row objects, then newline-delimited row objects,
// then the columnar {meta,data} shape (whole document or merged lines).
var resultParsers = []resultParser{
	{name: "json_array", parse: parseJSONArray},
	{name: "ndjson_rows", parse: parseNDJSONRows},
	{name: "columnar", parse: parseColumnar},
}

// ParseTextResult normalizes a textual response body into the canonical
// result shape. Empty and whitespace-only input is a legal empty result,
// not an error. Input matching none of the known shapes yields a ParseError
// carrying a bounded preview of the body.
func ParseTextResult(body string) (*adapter.QueryResult, error) {
	if strings.TrimSpace(body) == "" {
		return adapter.NewEmptyResult(), nil
	}

	for _, p := range resultParsers {
		result, matched, err := p.parse(body)
		if !matched {
			continue
		}
		if err != nil {
			return nil, adapter.NewParseError(body, err)
		}
		return result, nil
	}

	return nil, adapter.NewParseError(body, fmt.Errorf("response matches no known result shape"))
}

// parseJSONArray handles a single JSON document that is an array of plain
// row objects.
func parseJSONArray(body string) (*adapter.QueryResult, bool, error) {
	dec := json.NewDecoder(strings.NewReader(body))

	var elems []json.RawMessage
	if err := dec.Decode(&elems); err != nil {
		return nil, false, nil
	}
	if dec.More() {
		// Trailing content means this is not a single-document array
		return nil, false, nil
	}

	rows := make([]map[string]interface{}, 0, len(elems))
	for _, elem := range elems {
		var obj map[string]interface{}
		if err := json.Unmarshal(elem, &obj); err != nil || obj == nil {
			return nil, false, nil
		}
		rows = append(rows, obj)
	}

	return rowsResult(rows), true, nil
}

// parseNDJSONRows handles newline-delimited JSON where every non-blank line
// is a plain row object. Lines carrying meta or data keys belong to the
// columnar shape and disqualify this candidate.
func parseNDJSONRows(body string) (*adapter.QueryResult, bool, error) {
	lines := nonBlankLines(body)
	if len(lines) == 0 {
		return nil, false, nil
	}

	rows := make([]map[string]interface{}, 0, len(lines))
	for _, line := range lines {
		var obj map[string]interface{}
		if err := json.Unmarshal([]byte(line), &obj); err != nil || obj == nil {
			return nil, false, nil
		}
		if _, ok := obj["meta"]; ok {
			return nil, false, nil
		}
		if _, ok := obj["data"]; ok {
			return nil, false, nil
		}
		rows = append(rows, obj)
	}

	return rowsResult(rows), true, nil
}

// parseColumnar handles the {meta,data} shape: either one JSON document, or
// NDJSON lines whose meta- and data-bearing objects are merged into one
// logical document. An explicit "rows" field overrides the data length as
// the authoritative row count.
func parseColumnar(body string) (*adapter.QueryResult, bool, error) {
	doc, matched := collectColumnarDoc(body)
	if !matched {
		return nil, false, nil
	}

	metaArr, metaOK := doc["meta"].([]interface{})
	dataArr, dataOK := doc["data"].([]interface{})

	var missing []string
	if !metaOK {
		missing = append(missing, "'meta' array")
	}
	if !dataOK {
		missing = append(missing, "'data' array")
	}
	if len(missing) > 0 {
		return nil, true, fmt.Errorf("response object is missing a valid %s", strings.Join(missing, " and "))
	}

	result := adapter.NewEmptyResult()

	for _, m := range metaArr {
		col, ok := m.(map[string]interface{})
		if !ok {
			continue
		}
		name, _ := col["name"].(string)
		typ, _ := col["type"].(string)
		if typ == "" {
			typ = DefaultColumnType
		}
		result.Columns = append(result.Columns, name)
		result.ColumnTypes = append(result.ColumnTypes, typ)
	}

	for _, rv := range dataArr {
		switch row := rv.(type) {
		case []interface{}:
			// Positional row: zip against the meta column names
			obj := make(map[string]interface{}, len(result.Columns))
			for i, col := range result.Columns {
				if i < len(row) {
					obj[col] = row[i]
				} else {
					obj[col] = nil
				}
			}
			result.Rows = append(result.Rows, obj)
		case map[string]interface{}:
			result.Rows = append(result.Rows, row)
		default:
			// Scalar data elements carry no column mapping; drop them
		}
	}

	if n, ok := explicitRowCount(doc); ok {
		result.RowCount = n
	} else {
		result.RowCount = int64(len(dataArr))
	}

	return result, true, nil
}

// collectColumnarDoc returns the logical columnar document: the whole body
// when it is one JSON object, otherwise the merge of every line object that
// carries a meta or data key. Later lines win on key collisions.
func collectColumnarDoc(body string) (map[string]interface{}, bool) {
	dec := json.NewDecoder(strings.NewReader(body))
	var doc map[string]interface{}
	if err := dec.Decode(&doc); err == nil && !dec.More() && doc != nil {
		return doc, true
	}

	merged := make(map[string]interface{})
	found := false
	for _, line := range nonBlankLines(body) {
		var obj map[string]interface{}
		if err := json.Unmarshal([]byte(line), &obj); err != nil || obj == nil {
			continue
		}
		_, hasMeta := obj["meta"]
		_, hasData := obj["data"]
		if !hasMeta && !hasData {
			continue
		}
		found = true
		for k, v := range obj {
			merged[k] = v
		}
	}

	if !found {
		return nil, false
	}
	return merged, true
}

// rowsResult builds a result from pass-through row objects. Columns come
// from the first row's keys in sorted order; each row keeps its own keys.
func rowsResult(rows []map[string]interface{}) *adapter.QueryResult {
	result := adapter.NewEmptyResult()
	result.Rows = rows
	result.RowCount = int64(len(rows))

	if len(rows) > 0 {
		columns := make([]string, 0, len(rows[0]))
		for name := range rows[0] {
			columns = append(columns, name)
		}
		sort.Strings(columns)
		result.Columns = columns

		types := make([]string, len(columns))
		for i := range types {
			types[i] = DefaultColumnType
		}
		result.ColumnTypes = types
	}

	return result
}

func explicitRowCount(doc map[string]interface{}) (int64, bool) {
	n, ok := doc["rows"].(float64)
	if !ok {
		return 0, false
	}
	return int64(n), true
}

func nonBlankLines(body string) []string {
	raw := strings.Split(body, "\n")
	lines := make([]string, 0, len(raw))
	for _, line := range raw {
		line = strings.TrimSpace(line)
		if line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}
