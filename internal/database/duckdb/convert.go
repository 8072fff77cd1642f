package duckdb

import (
	"database/sql"
	"fmt"
	"math/big"
	"strings"
	"time"

	goduckdb "github.com/marcboeker/go-duckdb"

	"github.com/ibero-data/duck-ui-sub001/pkg/adapter"
)

// scanRows drains a result set into the canonical shape, applying the
// engine-native value fixups per cell. A cell that cannot be converted is
// logged and kept raw; it never fails the whole result.
func scanRows(rows *sql.Rows, log func(level, format string, args ...interface{})) (*adapter.QueryResult, error) {
	columns, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("error reading result columns: %w", err)
	}

	columnTypes, err := rows.ColumnTypes()
	if err != nil {
		return nil, fmt.Errorf("error reading result column types: %w", err)
	}

	typeNames := make([]string, len(columns))
	for i, ct := range columnTypes {
		typeNames[i] = ct.DatabaseTypeName()
	}

	result := adapter.NewEmptyResult()
	result.Columns = columns
	result.ColumnTypes = typeNames

	for rows.Next() {
		values := make([]interface{}, len(columns))
		ptrs := make([]interface{}, len(columns))
		for i := range values {
			ptrs[i] = &values[i]
		}

		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("error scanning result row: %w", err)
		}

		row := make(map[string]interface{}, len(columns))
		for i, col := range columns {
			row[col] = convertValue(values[i], typeNames[i], log)
		}
		result.Rows = append(result.Rows, row)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating result rows: %w", err)
	}

	result.RowCount = int64(len(result.Rows))
	return result, nil
}

// convertValue maps an engine value into the canonical value set. DECIMAL
// becomes float64 from the unscaled integer and scale, DATE becomes a plain
// date string, the TIMESTAMP family stays a time value, and HUGEINT widens
// to float64. Everything else passes through.
func convertValue(v interface{}, declaredType string, log func(level, format string, args ...interface{})) interface{} {
	if v == nil {
		return nil
	}

	switch tv := v.(type) {
	case goduckdb.Decimal:
		f, err := decimalToFloat(tv)
		if err != nil {
			log("warn", "Failed to convert DECIMAL value: %v", err)
			return tv
		}
		return f

	case *big.Int:
		// HUGEINT and friends; values past 2^53 lose precision, matching
		// the engine's own cast-to-double behavior
		f, _ := new(big.Float).SetInt(tv).Float64()
		return f

	case time.Time:
		if strings.HasPrefix(declaredType, "DATE") {
			return tv.Format("2006-01-02")
		}
		return tv

	case goduckdb.Interval:
		return formatInterval(tv)

	case fmt.Stringer:
		return tv.String()
	}

	return v
}

// decimalToFloat computes unscaled / 10^scale.
func decimalToFloat(d goduckdb.Decimal) (float64, error) {
	if d.Value == nil {
		return 0, fmt.Errorf("decimal carries no unscaled value")
	}

	factor := new(big.Float).SetInt(new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(d.Scale)), nil))
	value := new(big.Float).SetInt(d.Value)
	value.Quo(value, factor)

	f, _ := value.Float64()
	return f, nil
}

func formatInterval(iv goduckdb.Interval) string {
	var parts []string
	if iv.Months != 0 {
		parts = append(parts, fmt.Sprintf("%d mon", iv.Months))
	}
	if iv.Days != 0 {
		parts = append(parts, fmt.Sprintf("%d days", iv.Days))
	}
	if iv.Micros != 0 || len(parts) == 0 {
		parts = append(parts, (time.Duration(iv.Micros) * time.Microsecond).String())
	}
	return strings.Join(parts, " ")
}
