// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package snapshot serializes the run's articles and replaces the previous
// snapshot at the configured destination: a local file or an S3 object.
// The write is a plain overwrite; a crash mid-write can leave a truncated
// file behind.
package snapshot

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/pubmed-digest/pkg/types"
)

// Format selects the snapshot encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// ContentType returns the MIME type for f.
func (f Format) ContentType() string {
	if f == FormatYAML {
		return "application/yaml"
	}
	return "application/json"
}

// FormatFromPath picks the format from a file extension: .yaml and .yml
// are YAML, everything else JSON.
func FormatFromPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatJSON
	}
}

// WriteError reports a snapshot that could not be encoded or stored.
type WriteError struct {
	Dest string
	Err  error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("writing snapshot to %s: %v", e.Dest, e.Err)
}

func (e *WriteError) Unwrap() error { return e.Err }

// Sink stores an encoded snapshot, replacing any previous one.
type Sink interface {
	Put(ctx context.Context, data []byte, contentType string) error
	String() string
}

// FileSink overwrites a local file.
type FileSink struct {
	Path string
}

// Put truncates and rewrites the file, creating parent directories.
func (s FileSink) Put(_ context.Context, data []byte, _ string) error {
	if dir := filepath.Dir(s.Path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating directory %s: %w", dir, err)
		}
	}
	return os.WriteFile(s.Path, data, 0o644)
}

func (s FileSink) String() string { return s.Path }

// Write encodes articles in format and stores them in sink. It returns the
// number of articles written.
func Write(ctx context.Context, sink Sink, format Format, articles []types.Article) (int, error) {
	data, err := Encode(format, articles)
	if err != nil {
		return 0, &WriteError{Dest: sink.String(), Err: err}
	}
	if err := sink.Put(ctx, data, format.ContentType()); err != nil {
		return 0, &WriteError{Dest: sink.String(), Err: err}
	}
	return len(articles), nil
}

// Encode serializes articles. JSON is indented four spaces and leaves
// <, >, and & unescaped. A nil slice encodes as an empty list.
func Encode(format Format, articles []types.Article) ([]byte, error) {
	if articles == nil {
		articles = []types.Article{}
	}
	switch format {
	case FormatJSON, "":
		var buf bytes.Buffer
		enc := json.NewEncoder(&buf)
		enc.SetEscapeHTML(false)
		enc.SetIndent("", "    ")
		if err := enc.Encode(articles); err != nil {
			return nil, fmt.Errorf("marshaling JSON: %w", err)
		}
		return buf.Bytes(), nil
	case FormatYAML:
		data, err := yaml.Marshal(articles)
		if err != nil {
			return nil, fmt.Errorf("marshaling YAML: %w", err)
		}
		return data, nil
	default:
		return nil, fmt.Errorf("unsupported snapshot format %q", format)
	}
}

// Decode parses a snapshot produced by Encode.
func Decode(format Format, data []byte) ([]types.Article, error) {
	var articles []types.Article
	switch format {
	case FormatJSON, "":
		if err := json.Unmarshal(data, &articles); err != nil {
			return nil, fmt.Errorf("parsing JSON snapshot: %w", err)
		}
	case FormatYAML:
		if err := yaml.Unmarshal(data, &articles); err != nil {
			return nil, fmt.Errorf("parsing YAML snapshot: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported snapshot format %q", format)
	}
	return articles, nil
}

// Read loads a local snapshot, choosing the format from its extension.
func Read(path string) ([]types.Article, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading snapshot: %w", err)
	}
	return Decode(FormatFromPath(path), data)
}
