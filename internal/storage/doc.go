// Package storage provides SQLite-based persistence for device chunk sets.
//
// The storage layer manages:
//   - Devices with their dialect and configuration content hash
//   - Enriched chunks, one row per chunk in chunk_index order
//   - An FTS5 full-text index over chunk content and section headers
//
// # Database Schema
//
// Tables:
//   - devices: one row per configuration file, keyed by device name
//   - chunks: enriched chunks, cascading on device delete
//   - chunks_fts: FTS5 external-content index kept in sync by triggers
//   - schema_version: applied migrations
//
// # Basic Usage
//
//	db, err := storage.NewSQLiteStorage("netconfig.db")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer db.Close()
//
//	device := &storage.Device{Name: "R1", OSType: "ios", ContentHash: hash}
//	if err := db.UpsertDevice(ctx, device); err != nil {
//	    return err
//	}
//	err = db.ReplaceDeviceChunks(ctx, device.ID, chunks)
//
// # Transactions
//
// The indexer writes a device and its chunk set in one transaction:
//
//	tx, err := db.BeginTx(ctx)
//	if err != nil {
//	    return err
//	}
//	defer tx.Rollback()
//
//	_ = tx.UpsertDevice(ctx, device)
//	_ = tx.ReplaceDeviceChunks(ctx, device.ID, chunks)
//
//	return tx.Commit()
//
// # Full-Text Search
//
// SearchText quotes every query term, so interface names such as
// "Gi0/1" and FTS5 keywords match literally. Scores are BM25 mapped
// into (0, 1], higher is better:
//
//	results, err := db.SearchText(ctx, "ospf area 0", 10, &storage.SearchFilters{
//	    SectionTypes: []string{"router"},
//	})
//
// # Build Tags
//
// CGO build (sqlite_cgo tag) uses github.com/mattn/go-sqlite3 and needs
// sqlite_fts5 as well:
//
//	CGO_ENABLED=1 go build -tags "sqlite_cgo,sqlite_fts5"
//
// The default build uses modernc.org/sqlite, which needs no C compiler.
package storage
