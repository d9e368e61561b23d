// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package secrets resolves the provider credentials for a run. Values come
// from the environment first and fall back to a directory of plain-text
// files, one secret per file: the filename is the key name and the trimmed
// file contents are the value.
//
// Supported key files: entrez-email, entrez-api-key, gemini-api-key, anthropic-api-key.
package secrets

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
)

// Credentials holds the secrets handed to the provider clients. Blank
// values are allowed; the provider rejects the call downstream.
type Credentials struct {
	EntrezEmail     string
	EntrezAPIKey    string
	GeminiAPIKey    string
	AnthropicAPIKey string
}

// envKeys maps each environment variable to its secret file name.
var envKeys = []struct {
	env, file string
	dst       func(*Credentials) *string
}{
	{"ENTREZ_EMAIL", "entrez-email", func(c *Credentials) *string { return &c.EntrezEmail }},
	{"ENTREZ_API_KEY", "entrez-api-key", func(c *Credentials) *string { return &c.EntrezAPIKey }},
	{"GEMINI_API_KEY", "gemini-api-key", func(c *Credentials) *string { return &c.GeminiAPIKey }},
	{"ANTHROPIC_API_KEY", "anthropic-api-key", func(c *Credentials) *string { return &c.AnthropicAPIKey }},
}

// Resolve builds Credentials from getenv, falling back to the files in dir.
// A nil getenv uses os.Getenv.
func Resolve(dir string, getenv func(string) string, log *zap.Logger) (Credentials, error) {
	if getenv == nil {
		getenv = os.Getenv
	}
	files, err := Load(dir, log)
	if err != nil {
		return Credentials{}, err
	}

	var c Credentials
	for _, k := range envKeys {
		v := strings.TrimSpace(getenv(k.env))
		if v == "" {
			v = files[k.file]
		}
		*k.dst(&c) = v
	}
	return c, nil
}

// Load reads all files in dir and returns a map of filename to trimmed contents.
// A missing directory or missing files are not errors; Load returns an empty map.
// Unreadable files are logged as warnings and skipped.
func Load(dir string, log *zap.Logger) (map[string]string, error) {
	if log == nil {
		log = zap.NewNop()
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]string{}, nil
		}
		return nil, fmt.Errorf("reading secrets directory %s: %w", dir, err)
	}

	secrets := make(map[string]string)
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if strings.HasPrefix(name, ".") {
			continue
		}

		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			log.Warn("could not read secret", zap.String("name", name), zap.Error(err))
			continue
		}

		value := strings.TrimSpace(string(data))
		if value != "" {
			secrets[name] = value
		}
	}

	return secrets, nil
}
