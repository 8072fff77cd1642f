package persistent

import (
	"github.com/ibero-data/duck-ui-sub001/pkg/adapter"
)

func init() {
	// Register the file-backed engine adapter with the global registry
	adapter.Register(NewAdapter())
}
