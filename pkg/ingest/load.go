// Package ingest decodes already-fetched records into unified data. Nothing
// here talks to the network; callers hand in files or API payloads they
// retrieved themselves.
package ingest

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"go.yaml.in/yaml/v3"

	brieferrors "github.com/ask-andrew/360brief-sub007/pkg/errors"
	"github.com/ask-andrew/360brief-sub007/pkg/unified"
)

// Supported input formats.
const (
	FormatJSON = "json"
	FormatYAML = "yaml"
	FormatTOML = "toml"
)

// FormatForPath infers the input format from a file extension.
func FormatForPath(path string) (string, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".toml":
		return FormatTOML, nil
	default:
		return "", brieferrors.NewInvalidInputError("input", "unsupported file extension "+filepath.Ext(path)+" (use .json, .yaml, .yml or .toml)")
	}
}

// LoadFile reads and decodes a unified data file. The format is chosen by
// extension.
func LoadFile(path string) (*unified.UnifiedData, error) {
	format, err := FormatForPath(path)
	if err != nil {
		return nil, err
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, brieferrors.Wrapf(err, "failed to read input file: %s", path)
	}

	return Decode(format, raw)
}

// Decode parses raw as the given format and normalizes the result so every
// sequence is non-nil.
func Decode(format string, raw []byte) (*unified.UnifiedData, error) {
	var data unified.UnifiedData

	var err error
	switch format {
	case FormatJSON:
		dec := json.NewDecoder(bytes.NewReader(raw))
		err = dec.Decode(&data)
	case FormatYAML:
		err = yaml.Unmarshal(raw, &data)
	case FormatTOML:
		err = toml.Unmarshal(raw, &data)
	default:
		return nil, brieferrors.NewInvalidInputError("format", "unsupported format "+format)
	}
	if err != nil {
		return nil, brieferrors.NewInvalidInputError("input", "malformed "+format+": "+err.Error())
	}

	data.Normalize()
	return &data, nil
}
