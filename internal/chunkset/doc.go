// Package chunkset reads and writes persisted chunk sets.
//
// A chunk set is all chunks of one device, stored as a JSON array in
// <dir>/<device>.json:
//
//	[
//	  {
//	    "content": "hostname R1",
//	    "metadata": {
//	      "device": "R1",
//	      "chunk_type": "global",
//	      "os_type": "ios",
//	      "chunk_index": 0,
//	      "section_type": "global",
//	      "chunk_id": "R1|global|0"
//	    }
//	  }
//	]
//
// Decoding is strict about shape: the document must be an array, every
// element must be an object, and every object must carry "content".
// Violations wrap types.ErrMalformedChunkSet.
package chunkset
