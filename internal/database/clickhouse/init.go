package clickhouse

import (
	"github.com/ibero-data/duck-ui-sub001/pkg/adapter"
)

func init() {
	// Register the remote endpoint adapter with the global registry
	adapter.Register(NewAdapter())
}
