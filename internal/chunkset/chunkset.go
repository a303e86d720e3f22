package chunkset

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/dshills/netconfig-mcp/pkg/types"
)

// Extension is the file extension of persisted chunk sets
const Extension = ".json"

// ErrNoChunkFiles is returned by ListFiles when a directory holds no chunk sets
var ErrNoChunkFiles = errors.New("no chunk files found")

// contentProbe detects a missing content field, which types.Chunk cannot distinguish from ""
type contentProbe struct {
	Content *string `json:"content"`
}

// Decode reads a chunk set: a JSON array of {"content", "metadata"} objects.
// Anything else is reported as types.ErrMalformedChunkSet.
func Decode(r io.Reader) ([]types.Chunk, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read chunk set: %w", err)
	}
	return Unmarshal(data)
}

// Unmarshal parses a chunk set from memory
func Unmarshal(data []byte) ([]types.Chunk, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		return nil, fmt.Errorf("%w: expected a JSON array", types.ErrMalformedChunkSet)
	}

	var raw []json.RawMessage
	if err := json.Unmarshal(trimmed, &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", types.ErrMalformedChunkSet, err)
	}

	chunks := make([]types.Chunk, 0, len(raw))
	for i, elem := range raw {
		c, err := decodeElement(elem)
		if err != nil {
			return nil, fmt.Errorf("%w: element %d: %v", types.ErrMalformedChunkSet, i, err)
		}
		chunks = append(chunks, c)
	}

	return chunks, nil
}

func decodeElement(elem json.RawMessage) (types.Chunk, error) {
	var c types.Chunk

	trimmed := bytes.TrimSpace(elem)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return c, errors.New("expected an object")
	}

	var probe contentProbe
	if err := json.Unmarshal(trimmed, &probe); err != nil {
		return c, err
	}
	if probe.Content == nil {
		return c, errors.New("missing content")
	}

	if err := json.Unmarshal(trimmed, &c); err != nil {
		return c, err
	}
	return c, nil
}

// Encode writes chunks as an indented JSON array
func Encode(w io.Writer, chunks []types.Chunk) error {
	if chunks == nil {
		chunks = []types.Chunk{}
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(chunks); err != nil {
		return fmt.Errorf("failed to encode chunk set: %w", err)
	}
	return nil
}

// ReadFile decodes the chunk set stored at path
func ReadFile(path string) ([]types.Chunk, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open chunk set: %w", err)
	}
	defer f.Close()

	chunks, err := Decode(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return chunks, nil
}

// WriteFile writes a device's chunk set to <dir>/<device>.json and returns the path
func WriteFile(dir, device string, chunks []types.Chunk) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}

	var buf bytes.Buffer
	if err := Encode(&buf, chunks); err != nil {
		return "", err
	}

	path := filepath.Join(dir, device+Extension)
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return "", fmt.Errorf("failed to write chunk set: %w", err)
	}
	return path, nil
}

// DeviceFromPath returns the device name of a chunk-set file
func DeviceFromPath(path string) string {
	return strings.TrimSuffix(filepath.Base(path), Extension)
}

// ListFiles returns the chunk-set files of dir in name order
func ListFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read chunk directory: %w", err)
	}

	var files []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), Extension) {
			continue
		}
		files = append(files, filepath.Join(dir, e.Name()))
	}

	if len(files) == 0 {
		return nil, fmt.Errorf("%w in %s", ErrNoChunkFiles, dir)
	}

	sort.Strings(files)
	return files, nil
}

// ClearDir creates dir if needed and removes existing chunk-set files.
// It returns the number of files removed.
func ClearDir(dir string) (int, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return 0, fmt.Errorf("failed to create output directory: %w", err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0, fmt.Errorf("failed to read output directory: %w", err)
	}

	removed := 0
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), Extension) {
			continue
		}
		if err := os.Remove(filepath.Join(dir, e.Name())); err != nil {
			return removed, fmt.Errorf("failed to remove %s: %w", e.Name(), err)
		}
		removed++
	}
	return removed, nil
}
