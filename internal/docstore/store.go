package docstore

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/dshills/netconfig-mcp/internal/logger"
	"github.com/dshills/netconfig-mcp/pkg/types"
)

// ChunkDocument is the flattened chunk layout stored in <collection>_chunks.
type ChunkDocument struct {
	Device      string    `bson:"device"`
	OSType      string    `bson:"os_type,omitempty"`
	Section     string    `bson:"section,omitempty"`
	SectionType string    `bson:"section_type,omitempty"`
	ChunkType   string    `bson:"chunk_type"`
	ChunkIndex  *int      `bson:"chunk_index,omitempty"`
	ChunkID     string    `bson:"chunk_id,omitempty"`
	Content     string    `bson:"content"`
	CreatedAt   time.Time `bson:"created_at"`
}

// Store writes device chunk sets to MongoDB.
// A dry-run store logs the writes it would make and never touches a database.
type Store struct {
	devices *mongo.Collection
	chunks  *mongo.Collection
	names   [2]string
	dryRun  bool
	logger  *slog.Logger
	now     func() time.Time
}

// Option configures a Store.
type Option func(*Store)

// WithDryRun enables dry-run mode.
func WithDryRun(dryRun bool) Option {
	return func(s *Store) { s.dryRun = dryRun }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Store) { s.logger = l }
}

// NewStore creates a store over db. db may be nil in dry-run mode.
func NewStore(db *mongo.Database, cfg Config, opts ...Option) (*Store, error) {
	s := &Store{
		names: [2]string{cfg.Collection, cfg.ChunksCollection()},
		now:   func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = logger.OrDiscard(s.logger).With(logger.Component("docstore"))

	if cfg.Collection == "" {
		return nil, fmt.Errorf("docstore: collection name is required")
	}
	if !s.dryRun {
		if db == nil {
			return nil, fmt.Errorf("docstore: database is required unless dry-run")
		}
		s.devices = db.Collection(s.names[0])
		s.chunks = db.Collection(s.names[1])
	}
	return s, nil
}

// DryRun reports whether the store skips writes.
func (s *Store) DryRun() bool {
	return s.dryRun
}

// ReplaceDevice upserts the device document and replaces all of its chunk documents.
// An empty osType falls back to the first chunk's os_type.
func (s *Store) ReplaceDevice(ctx context.Context, device, osType string, chunks []types.Chunk) error {
	if osType == "" && len(chunks) > 0 {
		osType = chunks[0].Metadata.OSType
	}

	deviceFields := bson.M{"updated_at": s.now()}
	if osType != "" {
		deviceFields["os_type"] = osType
	}
	docs := ChunkDocuments(device, chunks, s.now())

	if s.dryRun {
		s.logger.Info("dry-run: would upsert device",
			slog.String("collection", s.names[0]), logger.Device(device), logger.Dialect(osType))
		s.logger.Info("dry-run: would replace chunks",
			slog.String("collection", s.names[1]), logger.Device(device), slog.Int("count", len(docs)))
		return nil
	}

	_, err := s.devices.UpdateOne(ctx,
		bson.M{"_id": device},
		bson.M{"$set": deviceFields},
		options.UpdateOne().SetUpsert(true),
	)
	if err != nil {
		return fmt.Errorf("failed to upsert device %s: %w", device, err)
	}

	if _, err := s.chunks.DeleteMany(ctx, bson.M{"device": device}); err != nil {
		return fmt.Errorf("failed to delete chunks of %s: %w", device, err)
	}

	if len(docs) == 0 {
		return nil
	}

	if _, err := s.chunks.InsertMany(ctx, docs, options.InsertMany().SetOrdered(false)); err != nil {
		return fmt.Errorf("failed to insert chunks of %s: %w", device, err)
	}

	s.logger.Debug("stored chunks", logger.Device(device), slog.Int("count", len(docs)))
	return nil
}

// ChunkDocuments flattens chunks into documents.
// Chunks without a device inherit the given one.
func ChunkDocuments(device string, chunks []types.Chunk, createdAt time.Time) []ChunkDocument {
	docs := make([]ChunkDocument, 0, len(chunks))
	for _, c := range chunks {
		d := c.Metadata.Device
		if d == "" {
			d = device
		}
		docs = append(docs, ChunkDocument{
			Device:      d,
			OSType:      c.Metadata.OSType,
			Section:     c.Metadata.Section,
			SectionType: c.Metadata.SectionType,
			ChunkType:   string(c.Metadata.ChunkType),
			ChunkIndex:  c.Metadata.ChunkIndex,
			ChunkID:     c.Metadata.ChunkID,
			Content:     c.Content,
			CreatedAt:   createdAt,
		})
	}
	return docs
}
