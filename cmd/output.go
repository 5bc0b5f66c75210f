package cmd

import (
	"encoding/json"
	"io"
	"os"

	"github.com/pelletier/go-toml/v2"
	"go.yaml.in/yaml/v3"
	"golang.org/x/term"

	"github.com/ask-andrew/360brief-sub007/pkg/brief"
	brieferrors "github.com/ask-andrew/360brief-sub007/pkg/errors"
)

// Output formats.
const (
	formatJSON     = "json"
	formatYAML     = "yaml"
	formatTOML     = "toml"
	formatMarkdown = "markdown"
)

// resolveFormat returns the requested format, or markdown for a terminal and
// JSON for anything else.
func resolveFormat(requested string, w io.Writer) string {
	if requested != "" {
		return requested
	}
	if f, ok := w.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		return formatMarkdown
	}
	return formatJSON
}

// writeStructured encodes v as JSON, YAML or TOML.
func writeStructured(w io.Writer, format string, v any) error {
	switch format {
	case formatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case formatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	case formatTOML:
		return toml.NewEncoder(w).Encode(v)
	default:
		return brieferrors.NewInvalidInputError("format", "unsupported output format "+format+" (use json, yaml, toml or markdown)")
	}
}

// writeBrief renders b in format.
func writeBrief(w io.Writer, format string, b *brief.BriefingData) error {
	if format == formatMarkdown {
		_, err := io.WriteString(w, b.FormatMarkdown())
		return err
	}
	return writeStructured(w, format, b)
}
