// Package logger builds the *slog.Logger shared by the indexer, the CLI and
// the MCP server.
//
// New applies functional options over a text-to-stderr default:
//
//	log := logger.New(
//		logger.WithLevel(slog.LevelDebug),
//		logger.WithFormat(logger.FormatJSON),
//		logger.WithAttr(logger.Component("indexer")),
//	)
//
// Components accept a nil logger and fall back to Discard.
package logger
