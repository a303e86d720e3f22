package indexer

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/dshills/netconfig-mcp/internal/dialect"
	"github.com/dshills/netconfig-mcp/internal/logger"
)

// ErrMissingDialect is returned when a file's dialect is neither declared,
// mapped, nor detectable under the request's settings.
var ErrMissingDialect = errors.New("missing os_type")

// ConfigExtension marks device configuration files in a directory
const ConfigExtension = ".cfg"

// DialectSource records how a device's dialect was chosen
type DialectSource string

const (
	SourceDeclared DialectSource = "declared"
	SourceOSMap    DialectSource = "os_map"
	SourceDetected DialectSource = "detected"
	SourceFallback DialectSource = "fallback"
)

// LoadOSMap reads a JSON object mapping file names or device names to dialect names.
// An empty path returns a nil map.
func LoadOSMap(path string) (map[string]string, error) {
	if path == "" {
		return nil, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read os map: %w", err)
	}
	return ParseOSMap(data)
}

// ParseOSMap decodes an os map document. Anything but a JSON object of strings is rejected.
func ParseOSMap(data []byte) (map[string]string, error) {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("invalid os map: %w", err)
	}
	obj, ok := raw.(map[string]any)
	if !ok {
		return nil, errors.New("os map must be a JSON object mapping filename/device to os_type")
	}

	m := make(map[string]string, len(obj))
	for k, v := range obj {
		s, ok := v.(string)
		if !ok {
			return nil, fmt.Errorf("os map entry %q must be a string", k)
		}
		m[k] = s
	}
	return m, nil
}

// DeviceName returns the file's base name without the .cfg extension
func DeviceName(path string) string {
	return strings.TrimSuffix(filepath.Base(path), ConfigExtension)
}

// lookupOSMap checks the file name first, then the device name
func lookupOSMap(osMap map[string]string, filename, device string) string {
	if len(osMap) == 0 {
		return ""
	}
	if v, ok := osMap[filename]; ok {
		return v
	}
	return osMap[device]
}

// resolution is the outcome of choosing a dialect for one file.
// name is the os_type recorded on chunks: the normalized requested alias for
// declared and mapped dialects, the canonical name otherwise.
type resolution struct {
	def       *dialect.Definition
	name      string
	source    DialectSource
	detection *dialect.Detection
}

// osTypeName returns the normalized requested name, or the canonical name when none was given
func osTypeName(requested string, def *dialect.Definition) string {
	if n := dialect.Normalize(requested); n != "" {
		return n
	}
	return def.Name()
}

// resolveDialect picks the dialect: declared, then os map, then detection.
// Detection runs when asked for, or when neither a name nor a map was supplied.
// An inconclusive detection falls back to generic with a warning.
func (idx *Indexer) resolveDialect(req *Request, osMap map[string]string, path, text string) (*resolution, error) {
	filename := filepath.Base(path)
	device := DeviceName(path)

	name, source := req.OSType, SourceDeclared
	if name == "" {
		name, source = lookupOSMap(osMap, filename, device), SourceOSMap
	}

	if name != "" {
		def, err := idx.registry.Resolve(name)
		if err != nil {
			return nil, err
		}
		return &resolution{def: def, name: osTypeName(name, def), source: source}, nil
	}

	autoDetect := req.Detect || (req.OSType == "" && req.OSMap == "" && len(req.OSMapEntries) == 0)
	if !autoDetect {
		return nil, fmt.Errorf("%w for %s: provide an os type, an os map entry, or enable detection", ErrMissingDialect, device)
	}

	detection := idx.detector.Detect(text)
	if detection.Confident {
		def, err := idx.registry.Resolve(detection.Dialect)
		if err != nil {
			return nil, err
		}
		idx.logger.Info("detected os type",
			logger.Device(device), logger.Dialect(def.Name()), slog.String("scores", detection.FormatScores()))
		return &resolution{def: def, name: def.Name(), source: SourceDetected, detection: &detection}, nil
	}

	idx.logger.Warn("os detection ambiguous, using generic",
		logger.Device(device), slog.String("scores", detection.FormatScores()), logger.Error(detection.Err()))
	generic := idx.registry.Generic()
	return &resolution{def: generic, name: generic.Name(), source: SourceFallback, detection: &detection}, nil
}
