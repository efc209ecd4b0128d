// Package assets provides the construction collaborator the importer writes
// into.
//
// A Store owns target objects keyed by path ("<location>/<name>.<name>").
// The importer locates or creates objects, applies raw property values and
// links, and finalizes each object once its properties are complete.
//
// Two backends are provided:
//
//   - MemoryStore keeps objects in a map and suits tests and dry runs (lint).
//   - SQLiteStore persists objects in SQLite through either the pure-Go
//     driver ("sqlite") or the cgo driver ("sqlite3").
//
// # Example
//
//	store, err := assets.NewSQLiteStore(&assets.SQLiteConfig{
//		Path:        "data/assets.db",
//		Driver:      assets.DriverModernc,
//		WALMode:     true,
//		BusyTimeout: 5 * time.Second,
//		Schema:      assets.DefaultSchema,
//	})
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer store.Close()
//
// Both backends are safe for concurrent use.
package assets
