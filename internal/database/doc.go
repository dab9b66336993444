// Package database provides access to the recommendations datastore.
//
// The datastore is either a local sqlite file (development, tests) or the shared
// MySQL database that owns the tbl_recommendation_v2 table. Both are reached
// through gorm, so every statement is parameterized.
//
// # Lazy connection
//
// The ingester runs one batch at a time against a single shared handle. Handle
// opens the connection on first use and keeps it for the lifetime of the process:
//
//	handle := database.NewHandle(cfg.Database)
//	defer handle.Close()
//
//	exists, err := handle.Exists(ctx, "Sunset Cafe")
//	if errors.Is(err, database.ErrUnavailable) {
//	    // no row can be processed without the datastore
//	}
//
// A failed connection attempt is not cached; the next call tries again.
package database
