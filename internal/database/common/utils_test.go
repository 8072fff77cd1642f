package common

import (
	"testing"
)

func TestQuoteIdentifier(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"simple_table", `"simple_table"`},
		{"table with spaces", `"table with spaces"`},
		{`table"with"quotes`, `"table""with""quotes"`},
		{"table-with-dashes", `"table-with-dashes"`},
		{"123table", `"123table"`},
		{"", `""`},
	}

	for _, test := range tests {
		result := QuoteIdentifier(test.input)
		if result != test.expected {
			t.Errorf("QuoteIdentifier(%q) = %q, expected %q", test.input, result, test.expected)
		}
	}
}

func TestQuoteStringSlice(t *testing.T) {
	tests := []struct {
		input    []string
		expected []string
	}{
		{[]string{"a", "b"}, []string{"'a'", "'b'"}},
		{[]string{"it's"}, []string{"'it''s'"}},
		{[]string{}, []string{}},
	}

	for _, test := range tests {
		result := QuoteStringSlice(test.input)
		if len(result) != len(test.expected) {
			t.Fatalf("QuoteStringSlice(%v) = %v, expected %v", test.input, result, test.expected)
		}
		for i := range result {
			if result[i] != test.expected[i] {
				t.Errorf("QuoteStringSlice(%v)[%d] = %q, expected %q", test.input, i, result[i], test.expected[i])
			}
		}
	}
}

func TestIsDDLStatement(t *testing.T) {
	tests := []struct {
		query    string
		expected bool
	}{
		{"CREATE TABLE t (a INT)", true},
		{"create table t (a int)", true},
		{"  ALTER TABLE t ADD COLUMN b INT", true},
		{"DROP TABLE t", true},
		{"ATTACH 'file.db' AS other", true},
		{"-- comment\nCREATE TABLE t (a INT)", true},
		{"/* block\ncomment */ DROP VIEW v", true},
		{"SELECT * FROM t", false},
		{"INSERT INTO t VALUES (1)", false},
		{"UPDATE t SET a = 1", false},
		{"CREATED_AT", false},
		{"SELECT 'CREATE TABLE' AS s", false},
		{"", false},
	}

	for _, test := range tests {
		result := IsDDLStatement(test.query)
		if result != test.expected {
			t.Errorf("IsDDLStatement(%q) = %v, expected %v", test.query, result, test.expected)
		}
	}
}

func TestSanitizeAlias(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"sales.parquet", "sales"},
		{"my data.csv", "my_data"},
		{"path/to/trips.db", "trips"},
		{"2024-orders.parquet", "t_2024_orders"},
		{"weird!!name.json", "weird__name"},
		{"", "dataset"},
	}

	for _, test := range tests {
		result := SanitizeAlias(test.input)
		if result != test.expected {
			t.Errorf("SanitizeAlias(%q) = %q, expected %q", test.input, result, test.expected)
		}
	}
}
