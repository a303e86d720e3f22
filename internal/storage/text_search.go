package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"
	"strings"
)

// ErrEmptyQuery is returned when a search query has no searchable terms
var ErrEmptyQuery = errors.New("empty search query")

// searchText performs BM25 full-text search using FTS5
func searchText(ctx context.Context, q querier, query string, limit int, filters *SearchFilters) ([]TextResult, error) {
	// Sanitize query for FTS5
	sanitized := sanitizeFTSQuery(query)
	if sanitized == "" {
		return nil, ErrEmptyQuery
	}

	// Handle edge case: negative or zero limit
	if limit <= 0 {
		return []TextResult{}, nil
	}

	sqlQuery := `
		SELECT
			c.id, c.device_id, c.chunk_id, c.chunk_index, c.chunk_type, c.section,
			c.section_type, c.os_type, c.content, c.content_hash, c.created_at,
			d.name,
			bm25(chunks_fts) as score
		FROM chunks_fts
		INNER JOIN chunks c ON c.id = chunks_fts.rowid
		INNER JOIN devices d ON d.id = c.device_id
		WHERE chunks_fts MATCH ?
	`
	args := []interface{}{sanitized}

	// Apply filters
	sqlQuery, args = applyTextFilters(sqlQuery, args, filters)

	// Order by BM25 score (lower is better) and limit
	sqlQuery += " ORDER BY score, d.name, c.chunk_index LIMIT ?"
	args = append(args, limit)

	rows, err := q.QueryContext(ctx, sqlQuery, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to execute FTS search: %w", err)
	}
	defer func() { _ = rows.Close() }()

	// Collect and normalize results
	return collectTextResults(rows, filters)
}

// applyTextFilters adds WHERE clause filters for text search
func applyTextFilters(query string, args []interface{}, filters *SearchFilters) (string, []interface{}) {
	if filters == nil {
		return query, args
	}

	query, args = appendInFilter(query, args, "d.name", filters.Devices)
	query, args = appendInFilter(query, args, "c.section_type", filters.SectionTypes)
	query, args = appendInFilter(query, args, "c.chunk_type", filters.ChunkTypes)
	query, args = appendInFilter(query, args, "c.os_type", filters.OSTypes)
	return query, args
}

// appendInFilter appends "AND column IN (?, ...)" for the non-empty values
func appendInFilter(query string, args []interface{}, column string, values []string) (string, []interface{}) {
	placeholders := make([]string, 0, len(values))
	for _, v := range values {
		if v == "" {
			continue
		}
		placeholders = append(placeholders, "?")
		args = append(args, v)
	}
	if len(placeholders) == 0 {
		return query, args
	}
	return query + " AND " + column + " IN (" + strings.Join(placeholders, ",") + ")", args
}

// collectTextResults processes text search results and normalizes scores
func collectTextResults(rows *sql.Rows, filters *SearchFilters) ([]TextResult, error) {
	results := make([]TextResult, 0)

	for rows.Next() {
		var chunk Chunk
		var hash []byte
		var section, osType sql.NullString
		var result TextResult

		err := rows.Scan(
			&chunk.ID, &chunk.DeviceID, &chunk.ChunkID, &chunk.ChunkIndex, &chunk.ChunkType,
			&section, &chunk.SectionType, &osType, &chunk.Content, &hash, &chunk.CreatedAt,
			&result.Device, &result.BM25Score,
		)
		if err != nil {
			return nil, err
		}
		copy(chunk.ContentHash[:], hash)
		chunk.Section = section.String
		chunk.OSType = osType.String
		result.Chunk = &chunk

		// Convert BM25 score (negative, lower is better) to positive normalized score
		// BM25 scores are typically in range [-50, 0]
		result.BM25Score = normalizeBM25(result.BM25Score)

		// Apply minimum relevance filter
		if filters != nil && filters.MinRelevance > 0 && result.BM25Score < filters.MinRelevance {
			continue
		}

		results = append(results, result)
	}

	return results, rows.Err()
}

func normalizeBM25(score float64) float64 {
	return 1.0 / (1.0 + math.Abs(score)/50.0)
}

// sanitizeFTSQuery turns free text into an FTS5 query of quoted terms.
// Each whitespace-separated term becomes a string literal, so operators,
// column filters and prefix stars in user input match literally.
// Terms are implicitly ANDed.
func sanitizeFTSQuery(query string) string {
	fields := strings.Fields(query)
	if len(fields) == 0 {
		return ""
	}

	quoted := make([]string, 0, len(fields))
	for _, f := range fields {
		quoted = append(quoted, `"`+strings.ReplaceAll(f, `"`, `""`)+`"`)
	}
	return strings.Join(quoted, " ")
}
