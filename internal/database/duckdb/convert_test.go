package duckdb

import (
	"fmt"
	"math/big"
	"net"
	"testing"
	"time"

	goduckdb "github.com/marcboeker/go-duckdb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type logCapture struct {
	entries []string
}

func (lc *logCapture) log(level, format string, args ...interface{}) {
	lc.entries = append(lc.entries, level+": "+fmt.Sprintf(format, args...))
}

func TestConvertValueDecimal(t *testing.T) {
	t.Run("positive decimal", func(t *testing.T) {
		lc := &logCapture{}
		d := goduckdb.Decimal{Width: 18, Scale: 2, Value: big.NewInt(12345)}

		got := convertValue(d, "DECIMAL(18,2)", lc.log)

		assert.Equal(t, 123.45, got)
		assert.Empty(t, lc.entries)
	})

	t.Run("negative decimal", func(t *testing.T) {
		lc := &logCapture{}
		d := goduckdb.Decimal{Width: 10, Scale: 3, Value: big.NewInt(-1500)}

		got := convertValue(d, "DECIMAL(10,3)", lc.log)

		assert.Equal(t, -1.5, got)
	})

	t.Run("zero scale", func(t *testing.T) {
		lc := &logCapture{}
		d := goduckdb.Decimal{Width: 5, Scale: 0, Value: big.NewInt(42)}

		got := convertValue(d, "DECIMAL(5,0)", lc.log)

		assert.Equal(t, 42.0, got)
	})

	t.Run("missing unscaled value keeps raw and warns", func(t *testing.T) {
		lc := &logCapture{}
		d := goduckdb.Decimal{Width: 18, Scale: 2}

		got := convertValue(d, "DECIMAL(18,2)", lc.log)

		assert.Equal(t, d, got)
		require.Len(t, lc.entries, 1)
		assert.Contains(t, lc.entries[0], "warn")
	})
}

func TestConvertValueHugeInt(t *testing.T) {
	lc := &logCapture{}
	huge := new(big.Int)
	huge.SetString("170141183460469231731687303715884105727", 10)

	got := convertValue(huge, "HUGEINT", lc.log)

	f, ok := got.(float64)
	require.True(t, ok, "HUGEINT should widen to float64")
	assert.InEpsilon(t, 1.7014118346046923e38, f, 1e-9)
}

func TestConvertValueDates(t *testing.T) {
	lc := &logCapture{}
	ts := time.Date(2024, 3, 15, 10, 30, 0, 0, time.UTC)

	t.Run("DATE formats to plain date string", func(t *testing.T) {
		got := convertValue(ts, "DATE", lc.log)
		assert.Equal(t, "2024-03-15", got)
	})

	t.Run("TIMESTAMP passes through", func(t *testing.T) {
		got := convertValue(ts, "TIMESTAMP", lc.log)
		assert.Equal(t, ts, got)
	})

	t.Run("TIMESTAMP WITH TIME ZONE passes through", func(t *testing.T) {
		got := convertValue(ts, "TIMESTAMP WITH TIME ZONE", lc.log)
		assert.Equal(t, ts, got)
	})
}

func TestConvertValuePassthrough(t *testing.T) {
	lc := &logCapture{}

	assert.Nil(t, convertValue(nil, "INTEGER", lc.log))
	assert.Equal(t, int32(7), convertValue(int32(7), "INTEGER", lc.log))
	assert.Equal(t, "hello", convertValue("hello", "VARCHAR", lc.log))
	assert.Equal(t, true, convertValue(true, "BOOLEAN", lc.log))
	assert.Equal(t, []byte{0x01}, convertValue([]byte{0x01}, "BLOB", lc.log))
}

func TestConvertValueStringer(t *testing.T) {
	lc := &logCapture{}
	ip := net.IPv4(127, 0, 0, 1)

	got := convertValue(ip, "VARCHAR", lc.log)

	assert.Equal(t, "127.0.0.1", got)
}

func TestFormatInterval(t *testing.T) {
	tests := []struct {
		name     string
		interval goduckdb.Interval
		want     string
	}{
		{"zero", goduckdb.Interval{}, "0s"},
		{"micros only", goduckdb.Interval{Micros: 1500000}, "1.5s"},
		{"days only", goduckdb.Interval{Days: 3}, "3 days"},
		{"months and days", goduckdb.Interval{Months: 2, Days: 10}, "2 mon 10 days"},
		{"full", goduckdb.Interval{Months: 1, Days: 2, Micros: 3000000}, "1 mon 2 days 3s"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, formatInterval(tt.interval))
		})
	}
}

func TestDecimalToFloat(t *testing.T) {
	f, err := decimalToFloat(goduckdb.Decimal{Width: 38, Scale: 6, Value: big.NewInt(1234567)})
	require.NoError(t, err)
	assert.InDelta(t, 1.234567, f, 1e-9)

	_, err = decimalToFloat(goduckdb.Decimal{Width: 38, Scale: 6})
	assert.Error(t, err)
}
