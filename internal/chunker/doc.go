// Package chunker divides network device configurations into section-level chunks.
//
// The chunker walks a configuration line by line and groups lines into two
// kinds of chunks:
//   - Explicit: a stanza opened by a top-level header line (for example
//     "interface Gi0/1") together with its indented children
//   - Global: runs of standalone top-level directives (for example
//     "hostname R1") that belong to no stanza
//
// Section boundaries come from the dialect's pattern table. A top-level line
// also opens a section when the next significant line is indented, so
// stanzas the table does not know about still stay together.
//
// # Basic Usage
//
//	reg := dialect.NewRegistry()
//	def, err := reg.Resolve("ios")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	c := chunker.New()
//	chunks := c.Build("R1", text, def, "ios")
//
//	for _, chunk := range chunks {
//	    fmt.Printf("%s [%s] %d bytes\n",
//	        chunk.Metadata.ChunkID, chunk.Metadata.SectionType, len(chunk.Content))
//	}
//
// # Line Classification
//
// Each line is handled by the first rule that applies:
//  1. Blank lines are skipped.
//  2. Ignored literals (such as "end") are skipped.
//  3. A top-level comment closes the open section and flushes buffered
//     global lines, unless a section is open and the next significant line
//     is indented, in which case the comment is dropped.
//  4. Indented comments are dropped.
//  5. A top-level line either opens a new section or is buffered as global.
//  6. Indented lines join the open section, or the global buffer when no
//     section is open.
//
// # Chunk Sizing
//
// A flushed segment longer than MaxChunkSize runes is cut by the splitter
// package into overlapping pieces. Every piece inherits the chunk type and
// section of its segment. Size-split chunks cannot be merged back into the
// exact original text.
//
// # Metadata
//
// Segment returns raw chunks. Enrich assigns the derived fields:
//
//	chunks = chunker.Enrich(chunker.New().Segment("R1", text, def), "ios")
//	// chunks[i].Metadata.ChunkIndex == i
//	// chunks[i].Metadata.ChunkID == "R1|<section or global>|i"
//
// Normalize fills only the missing fields of chunk sets read from disk.
package chunker
