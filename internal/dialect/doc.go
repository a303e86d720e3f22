// Package dialect describes the network operating system dialects the chunker understands.
//
// A dialect is a pattern table: the ordered section-start regexes that open a
// configuration stanza, the literal prefixes that mark comments, and the
// literal lines that carry no configuration (such as "end"). Tables are
// compiled once and are immutable afterwards.
//
// # Resolving Dialects
//
// The Registry maps user-supplied names to tables. Names are normalized
// (trimmed, lower-cased, underscores mapped to hyphens) and aliases are
// accepted:
//
//	reg := dialect.NewRegistry()
//	def, err := reg.Resolve("IOS_XE") // resolves to the "ios" table
//	if errors.Is(err, types.ErrUnsupportedDialect) {
//	    // unknown name
//	}
//
// An empty name resolves to the generic table, a union vocabulary of the
// common section headers.
//
// Shipped dialects:
//   - ios (iosxe, ios-xe, cisco-ios, cisco-ios-xe)
//   - iosxr (ios-xr, cisco-ios-xr)
//   - nxos (nx-os, cisco-nxos)
//   - eos (arista-eos)
//   - generic
//
// # Detection
//
// The Detector guesses a dialect from raw text using weighted signatures
// that are separate from the section-start tables. Each signature adds its
// weight once when it matches anywhere in the text:
//
//	det := dialect.MustDetector()
//	result := det.Detect(text)
//	if !result.Confident {
//	    log.Printf("no confident dialect: %v", result.Err())
//	}
//
// A result is confident only when the best score reaches the floor
// (DefaultMinScore, adjustable with WithMinScore) and no other dialect
// shares it. Detection is deterministic and safe for concurrent use.
package dialect
