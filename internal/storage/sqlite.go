package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dshills/netconfig-mcp/pkg/types"
)

var (
	// ErrNotFound is returned when a requested entity doesn't exist
	ErrNotFound = errors.New("not found")
	// ErrAlreadyExists is returned when trying to create a duplicate entity
	ErrAlreadyExists = errors.New("already exists")
)

// SQLiteStorage implements the Storage interface using SQLite
type SQLiteStorage struct {
	db *sql.DB
}

// openDatabase opens a SQLite database with appropriate settings
func openDatabase(dbPath string) (*sql.DB, error) {
	db, err := sql.Open(DriverName, dbPath)
	if err != nil {
		return nil, err
	}

	// Enable WAL mode for better concurrency
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}

	// Set connection pool settings
	db.SetMaxOpenConns(1) // SQLite benefits from single writer
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	// Enable foreign keys
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	return db, nil
}

// NewSQLiteStorage creates a new SQLite storage instance
func NewSQLiteStorage(dbPath string) (*SQLiteStorage, error) {
	db, err := openDatabase(dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Apply migrations
	if err := ApplyMigrations(context.Background(), db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to apply migrations: %w", err)
	}

	return &SQLiteStorage{db: db}, nil
}

// Close closes the database connection
func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}

// BeginTx starts a new transaction
func (s *SQLiteStorage) BeginTx(ctx context.Context) (Tx, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	return &sqliteTx{tx: tx, storage: s}, nil
}

// querier is an interface that both *sql.DB and *sql.Tx implement
type querier interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
	PrepareContext(ctx context.Context, query string) (*sql.Stmt, error)
}

// sqliteTx wraps a SQL transaction
type sqliteTx struct {
	tx      *sql.Tx
	storage *SQLiteStorage
}

func (t *sqliteTx) Commit() error {
	return t.tx.Commit()
}

func (t *sqliteTx) Rollback() error {
	return t.tx.Rollback()
}

// querier returns the transaction querier
func (t *sqliteTx) querier() querier {
	return t.tx
}

// querier returns the DB querier
func (s *SQLiteStorage) querier() querier {
	return s.db
}

// Device operations

const deviceColumns = `
	id, name, os_type, content_hash, source_path, chunk_count,
	index_run_id, last_indexed_at, created_at, updated_at`

// rowScanner is satisfied by *sql.Row and *sql.Rows
type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanDevice(row rowScanner) (*Device, error) {
	var device Device
	var hash []byte
	var sourcePath, runID sql.NullString
	var lastIndexedAt sql.NullTime

	err := row.Scan(
		&device.ID, &device.Name, &device.OSType, &hash, &sourcePath, &device.ChunkCount,
		&runID, &lastIndexedAt, &device.CreatedAt, &device.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	copy(device.ContentHash[:], hash)
	device.SourcePath = sourcePath.String
	device.IndexRunID = runID.String
	if lastIndexedAt.Valid {
		device.LastIndexedAt = lastIndexedAt.Time
	}
	return &device, nil
}

// upsertDeviceWithQuerier is the internal implementation that uses a querier
func (s *SQLiteStorage) upsertDeviceWithQuerier(ctx context.Context, q querier, device *Device) error {
	query := `
		INSERT INTO devices (name, os_type, content_hash, source_path, chunk_count, index_run_id, last_indexed_at, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET
			os_type = excluded.os_type,
			content_hash = excluded.content_hash,
			source_path = excluded.source_path,
			chunk_count = excluded.chunk_count,
			index_run_id = excluded.index_run_id,
			last_indexed_at = excluded.last_indexed_at,
			updated_at = excluded.updated_at
		RETURNING id
	`
	now := time.Now()
	lastIndexed := device.LastIndexedAt
	if lastIndexed.IsZero() {
		lastIndexed = now
	}

	err := q.QueryRowContext(ctx, query,
		device.Name, device.OSType, device.ContentHash[:], device.SourcePath,
		device.ChunkCount, device.IndexRunID, lastIndexed, now, now).Scan(&device.ID)
	if err != nil {
		return fmt.Errorf("failed to upsert device: %w", err)
	}

	device.LastIndexedAt = lastIndexed
	device.UpdatedAt = now
	return nil
}

func (s *SQLiteStorage) UpsertDevice(ctx context.Context, device *Device) error {
	return s.upsertDeviceWithQuerier(ctx, s.querier(), device)
}

// getDeviceWithQuerier is the internal implementation that uses a querier
func (s *SQLiteStorage) getDeviceWithQuerier(ctx context.Context, q querier, name string) (*Device, error) {
	query := `SELECT ` + deviceColumns + ` FROM devices WHERE name = ?`

	device, err := scanDevice(q.QueryRowContext(ctx, query, name))
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return device, nil
}

func (s *SQLiteStorage) GetDevice(ctx context.Context, name string) (*Device, error) {
	return s.getDeviceWithQuerier(ctx, s.querier(), name)
}

// listDevicesWithQuerier is the internal implementation that uses a querier
func (s *SQLiteStorage) listDevicesWithQuerier(ctx context.Context, q querier) ([]*Device, error) {
	query := `SELECT ` + deviceColumns + ` FROM devices ORDER BY name`

	rows, err := q.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	devices := make([]*Device, 0)
	for rows.Next() {
		device, err := scanDevice(rows)
		if err != nil {
			return nil, err
		}
		devices = append(devices, device)
	}
	return devices, rows.Err()
}

func (s *SQLiteStorage) ListDevices(ctx context.Context) ([]*Device, error) {
	return s.listDevicesWithQuerier(ctx, s.querier())
}

// deleteDeviceWithQuerier removes a device; its chunks cascade
func (s *SQLiteStorage) deleteDeviceWithQuerier(ctx context.Context, q querier, name string) error {
	result, err := q.ExecContext(ctx, `DELETE FROM devices WHERE name = ?`, name)
	if err != nil {
		return fmt.Errorf("failed to delete device: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *SQLiteStorage) DeleteDevice(ctx context.Context, name string) error {
	return s.deleteDeviceWithQuerier(ctx, s.querier(), name)
}

// Chunk operations

const chunkColumns = `
	id, device_id, chunk_id, chunk_index, chunk_type, section, section_type,
	os_type, content, content_hash, created_at`

func scanChunk(row rowScanner) (*Chunk, error) {
	var chunk Chunk
	var hash []byte
	var section, osType sql.NullString

	err := row.Scan(
		&chunk.ID, &chunk.DeviceID, &chunk.ChunkID, &chunk.ChunkIndex, &chunk.ChunkType,
		&section, &chunk.SectionType, &osType, &chunk.Content, &hash, &chunk.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	copy(chunk.ContentHash[:], hash)
	chunk.Section = section.String
	chunk.OSType = osType.String
	return &chunk, nil
}

// replaceDeviceChunksWithQuerier deletes every chunk of the device and inserts the new set
func (s *SQLiteStorage) replaceDeviceChunksWithQuerier(ctx context.Context, q querier, deviceID int64, chunks []types.Chunk) error {
	for i := range chunks {
		if err := chunks[i].Validate(); err != nil {
			return fmt.Errorf("invalid chunk %d: %w", i, err)
		}
	}

	if _, err := q.ExecContext(ctx, `DELETE FROM chunks WHERE device_id = ?`, deviceID); err != nil {
		return fmt.Errorf("failed to delete chunks: %w", err)
	}

	if len(chunks) == 0 {
		return nil
	}

	stmt, err := q.PrepareContext(ctx, `
		INSERT INTO chunks (
			device_id, chunk_id, chunk_index, chunk_type, section, section_type,
			os_type, content, content_hash, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare chunk insert: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	now := time.Now()
	for i, c := range chunks {
		row := FromTypesChunk(c, deviceID, i)
		_, err := stmt.ExecContext(ctx,
			row.DeviceID, row.ChunkID, row.ChunkIndex, row.ChunkType, row.Section,
			row.SectionType, row.OSType, row.Content, row.ContentHash[:], now,
		)
		if err != nil {
			return fmt.Errorf("failed to insert chunk %s: %w", row.ChunkID, err)
		}
	}

	return nil
}

// ReplaceDeviceChunks atomically swaps a device's chunk set
func (s *SQLiteStorage) ReplaceDeviceChunks(ctx context.Context, deviceID int64, chunks []types.Chunk) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	if err := s.replaceDeviceChunksWithQuerier(ctx, tx, deviceID, chunks); err != nil {
		_ = tx.Rollback()
		return err
	}

	return tx.Commit()
}

// listChunksByDeviceWithQuerier is the internal implementation that uses a querier
func (s *SQLiteStorage) listChunksByDeviceWithQuerier(ctx context.Context, q querier, deviceID int64) ([]*Chunk, error) {
	query := `SELECT ` + chunkColumns + ` FROM chunks WHERE device_id = ? ORDER BY chunk_index`

	rows, err := q.QueryContext(ctx, query, deviceID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	chunks := make([]*Chunk, 0)
	for rows.Next() {
		chunk, err := scanChunk(rows)
		if err != nil {
			return nil, err
		}
		chunks = append(chunks, chunk)
	}
	return chunks, rows.Err()
}

func (s *SQLiteStorage) ListChunksByDevice(ctx context.Context, deviceID int64) ([]*Chunk, error) {
	return s.listChunksByDeviceWithQuerier(ctx, s.querier(), deviceID)
}

// getChunkByKeyWithQuerier is the internal implementation that uses a querier
func (s *SQLiteStorage) getChunkByKeyWithQuerier(ctx context.Context, q querier, deviceID int64, chunkID string) (*Chunk, error) {
	query := `SELECT ` + chunkColumns + ` FROM chunks WHERE device_id = ? AND chunk_id = ? ORDER BY chunk_index LIMIT 1`

	chunk, err := scanChunk(q.QueryRowContext(ctx, query, deviceID, chunkID))
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return chunk, nil
}

func (s *SQLiteStorage) GetChunkByKey(ctx context.Context, deviceID int64, chunkID string) (*Chunk, error) {
	return s.getChunkByKeyWithQuerier(ctx, s.querier(), deviceID, chunkID)
}

// Search operations

func (s *SQLiteStorage) SearchText(ctx context.Context, query string, limit int, filters *SearchFilters) ([]TextResult, error) {
	// Implementation moved to separate file for clarity
	return searchText(ctx, s.querier(), query, limit, filters)
}

// Status operations

func (s *SQLiteStorage) GetStatus(ctx context.Context) (*Status, error) {
	status := &Status{
		DialectCounts: make(map[string]int),
		SectionCounts: make(map[string]int),
	}

	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM devices").Scan(&status.DevicesCount); err != nil {
		return nil, err
	}
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM chunks").Scan(&status.ChunksCount); err != nil {
		return nil, err
	}

	if err := countInto(ctx, s.db, "SELECT os_type, COUNT(*) FROM devices GROUP BY os_type", status.DialectCounts); err != nil {
		return nil, err
	}
	if err := countInto(ctx, s.db, "SELECT section_type, COUNT(*) FROM chunks GROUP BY section_type", status.SectionCounts); err != nil {
		return nil, err
	}

	// Most recent run
	var lastIndexedAt sql.NullTime
	var runID sql.NullString
	err := s.db.QueryRowContext(ctx,
		"SELECT last_indexed_at, index_run_id FROM devices ORDER BY last_indexed_at DESC LIMIT 1",
	).Scan(&lastIndexedAt, &runID)
	if err != nil && err != sql.ErrNoRows {
		return nil, err
	}
	if lastIndexedAt.Valid {
		status.LastIndexedAt = lastIndexedAt.Time
	}
	status.LastRunID = runID.String

	// Calculate database size
	var pageCount, pageSize int
	err = s.db.QueryRowContext(ctx, "PRAGMA page_count").Scan(&pageCount)
	if err == nil {
		_ = s.db.QueryRowContext(ctx, "PRAGMA page_size").Scan(&pageSize)
		status.IndexSizeMB = float64(pageCount*pageSize) / (1024 * 1024)
	}

	var ftsTable string
	ftsErr := s.db.QueryRowContext(ctx,
		"SELECT name FROM sqlite_master WHERE type='table' AND name='chunks_fts'").Scan(&ftsTable)

	status.Health = HealthStatus{
		DatabaseAccessible: true,
		FTSIndexesBuilt:    ftsErr == nil,
	}

	return status, nil
}

func countInto(ctx context.Context, q querier, query string, into map[string]int) error {
	rows, err := q.QueryContext(ctx, query)
	if err != nil {
		return err
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var key string
		var n int
		if err := rows.Scan(&key, &n); err != nil {
			return err
		}
		into[key] = n
	}
	return rows.Err()
}

// Transaction implementations

func (t *sqliteTx) UpsertDevice(ctx context.Context, device *Device) error {
	return t.storage.upsertDeviceWithQuerier(ctx, t.querier(), device)
}

func (t *sqliteTx) GetDevice(ctx context.Context, name string) (*Device, error) {
	return t.storage.getDeviceWithQuerier(ctx, t.querier(), name)
}

func (t *sqliteTx) ListDevices(ctx context.Context) ([]*Device, error) {
	return t.storage.listDevicesWithQuerier(ctx, t.querier())
}

func (t *sqliteTx) DeleteDevice(ctx context.Context, name string) error {
	return t.storage.deleteDeviceWithQuerier(ctx, t.querier(), name)
}

func (t *sqliteTx) ReplaceDeviceChunks(ctx context.Context, deviceID int64, chunks []types.Chunk) error {
	return t.storage.replaceDeviceChunksWithQuerier(ctx, t.querier(), deviceID, chunks)
}

func (t *sqliteTx) ListChunksByDevice(ctx context.Context, deviceID int64) ([]*Chunk, error) {
	return t.storage.listChunksByDeviceWithQuerier(ctx, t.querier(), deviceID)
}

func (t *sqliteTx) GetChunkByKey(ctx context.Context, deviceID int64, chunkID string) (*Chunk, error) {
	return t.storage.getChunkByKeyWithQuerier(ctx, t.querier(), deviceID, chunkID)
}

func (t *sqliteTx) SearchText(ctx context.Context, query string, limit int, filters *SearchFilters) ([]TextResult, error) {
	return searchText(ctx, t.querier(), query, limit, filters)
}

func (t *sqliteTx) GetStatus(ctx context.Context) (*Status, error) {
	return nil, errors.New("status is not available inside a transaction")
}

func (t *sqliteTx) Close() error {
	// Transactions don't close the underlying connection
	return nil
}

func (t *sqliteTx) BeginTx(ctx context.Context) (Tx, error) {
	// SQLite does not support true nested transactions
	return nil, errors.New("nested transactions not supported")
}
