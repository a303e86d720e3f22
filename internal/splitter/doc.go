// Package splitter breaks oversized text into bounded, overlapping pieces.
//
// The algorithm is recursive: the text is cut on the coarsest separator it
// contains (blank lines, then newlines, then spaces, then single characters),
// parts that are still too long are cut again on the next separator, and the
// resulting parts are greedily merged back up to the size limit. Consecutive
// pieces share up to the overlap length of trailing parts.
//
// Lengths are measured in runes. Pieces are whitespace-trimmed and empty
// pieces are never produced, so the original whitespace at piece boundaries
// is not recoverable.
//
//	s := splitter.Default() // 800 runes, 100 overlap
//	for piece := range s.Split(section) {
//	    fmt.Println(piece)
//	}
package splitter
