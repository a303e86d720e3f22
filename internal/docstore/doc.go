// Package docstore mirrors chunk sets into MongoDB.
//
// Each device is a document in the configured collection, keyed by device
// name. Its chunks live in "<collection>_chunks" as flat documents. A
// replace deletes every chunk document of the device and inserts the new set
// unordered, so one bad document does not abort the rest.
//
//	client, err := docstore.Connect(ctx, cfg)
//	if err != nil {
//		return err
//	}
//	defer client.Disconnect(ctx)
//
//	store, err := docstore.NewStore(client.Database(cfg.Database), cfg, docstore.WithLogger(log))
//	err = store.ReplaceDevice(ctx, "R1", "ios", chunks)
//
// Connect retries with a fixed interval, which covers servers that are still
// starting. Writes are not retried.
package docstore
