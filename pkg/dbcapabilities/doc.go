// Package dbcapabilities provides a shared registry describing the three
// backend kinds the workbench can connect to. The session layer, connectors,
// and HTTP API import this package to make decisions based on uniform
// metadata (required config fields, default endpoints, system databases).
//
// Minimal usage example:
//
//	import "github.com/ibero-data/duck-ui-sub001/pkg/dbcapabilities"
//
//	func needsPath(kind string) bool {
//	    id, ok := dbcapabilities.ParseID(kind)
//	    if !ok {
//	        return false
//	    }
//	    return dbcapabilities.MustGet(id).RequiresPath
//	}
//
// The package exposes constants for IDs (dbcapabilities.Embedded,
// dbcapabilities.Persistent, dbcapabilities.Remote) and a registry `All`
// for advanced consumers. ParseID resolves free-form names and UI aliases
// ("wasm", "opfs", "clickhouse") to canonical IDs.
package dbcapabilities
