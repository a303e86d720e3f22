package docstore

import (
	"bytes"
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/netconfig-mcp/pkg/types"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, DefaultURI, cfg.URI)
	assert.Equal(t, "network_config_chunks", cfg.ChunksCollection())
	assert.Greater(t, cfg.RetryAttempts, 0)
}

func TestNewStore(t *testing.T) {
	t.Run("dry-run needs no database", func(t *testing.T) {
		store, err := NewStore(nil, DefaultConfig(), WithDryRun(true))
		require.NoError(t, err)
		assert.True(t, store.DryRun())
	})

	t.Run("live store needs a database", func(t *testing.T) {
		_, err := NewStore(nil, DefaultConfig())
		assert.Error(t, err)
	})

	t.Run("collection is required", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.Collection = ""
		_, err := NewStore(nil, cfg, WithDryRun(true))
		assert.Error(t, err)
	})
}

func TestReplaceDevice_DryRun(t *testing.T) {
	buf := &bytes.Buffer{}
	log := slog.New(slog.NewTextHandler(buf, nil))

	store, err := NewStore(nil, DefaultConfig(), WithDryRun(true), WithLogger(log))
	require.NoError(t, err)

	c := types.NewGlobalChunk("R1", "hostname R1")
	c.Metadata.OSType = "ios"

	require.NoError(t, store.ReplaceDevice(context.Background(), "R1", "", []types.Chunk{c}))

	out := buf.String()
	assert.Contains(t, out, "would upsert device")
	assert.Contains(t, out, "collection=network_config ")
	assert.Contains(t, out, "os_type=ios")
	assert.Contains(t, out, "collection=network_config_chunks")
	assert.Contains(t, out, "count=1")
}

func TestChunkDocuments(t *testing.T) {
	created := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)

	explicit := types.NewExplicitChunk("R1", "interface Gi0/1", "interface Gi0/1\n shutdown")
	explicit.SetIndex(1)
	explicit.Metadata.SectionType = "interface"
	explicit.Metadata.ChunkID = "R1|interface Gi0/1|1"

	orphan := types.NewGlobalChunk("", "hostname R1")

	docs := ChunkDocuments("R1", []types.Chunk{explicit, orphan}, created)
	require.Len(t, docs, 2)

	assert.Equal(t, "R1", docs[0].Device)
	assert.Equal(t, "explicit", docs[0].ChunkType)
	assert.Equal(t, "interface Gi0/1", docs[0].Section)
	require.NotNil(t, docs[0].ChunkIndex)
	assert.Equal(t, 1, *docs[0].ChunkIndex)
	assert.Equal(t, created, docs[0].CreatedAt)

	assert.Equal(t, "R1", docs[1].Device, "missing device is inherited")
	assert.Nil(t, docs[1].ChunkIndex)
}

func TestConnect_Unreachable(t *testing.T) {
	cfg := DefaultConfig()
	cfg.URI = "mongodb://127.0.0.1:1/?serverSelectionTimeoutMS=100"
	cfg.ConnectTimeout = 100 * time.Millisecond
	cfg.RetryAttempts = 1

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_, err := Connect(ctx, cfg)
	assert.ErrorIs(t, err, ErrFailedToConnect)
}
