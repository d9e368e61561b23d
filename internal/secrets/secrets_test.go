// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package secrets

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	tests := []struct {
		name   string
		setup  func(t *testing.T) string
		want   map[string]string
		errMsg string
	}{
		{
			name: "reads key files and trims whitespace",
			setup: func(t *testing.T) string {
				dir := t.TempDir()
				writeFile(t, dir, "entrez-api-key", "  ek_abc123  \n")
				writeFile(t, dir, "gemini-api-key", "gk_xyz789")
				writeFile(t, dir, "entrez-email", "user@example.com\n")
				return dir
			},
			want: map[string]string{
				"entrez-api-key": "ek_abc123",
				"gemini-api-key": "gk_xyz789",
				"entrez-email":   "user@example.com",
			},
		},
		{
			name: "returns empty map for nonexistent directory",
			setup: func(t *testing.T) string {
				return filepath.Join(t.TempDir(), "does-not-exist")
			},
			want: map[string]string{},
		},
		{
			name: "skips empty files",
			setup: func(t *testing.T) string {
				dir := t.TempDir()
				writeFile(t, dir, "gemini-api-key", "valid-key")
				writeFile(t, dir, "empty-key", "")
				writeFile(t, dir, "whitespace-only", "   \n\t  ")
				return dir
			},
			want: map[string]string{
				"gemini-api-key": "valid-key",
			},
		},
		{
			name: "skips dotfiles and subdirectories",
			setup: func(t *testing.T) string {
				dir := t.TempDir()
				writeFile(t, dir, ".gitkeep", "")
				writeFile(t, dir, ".hidden-key", "secret")
				writeFile(t, dir, "entrez-email", "me@example.org")
				require.NoError(t, os.Mkdir(filepath.Join(dir, "subdir"), 0o755))
				return dir
			},
			want: map[string]string{
				"entrez-email": "me@example.org",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := tt.setup(t)
			got, err := Load(dir, nil)
			if tt.errMsg != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errMsg)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestResolve_EnvironmentWins(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "entrez-email", "file@example.com")
	writeFile(t, dir, "gemini-api-key", "file-gemini")

	env := map[string]string{
		"ENTREZ_EMAIL":   "env@example.com",
		"ENTREZ_API_KEY": "env-entrez",
	}
	got, err := Resolve(dir, func(k string) string { return env[k] }, nil)
	require.NoError(t, err)

	assert.Equal(t, Credentials{
		EntrezEmail:  "env@example.com",
		EntrezAPIKey: "env-entrez",
		GeminiAPIKey: "file-gemini",
	}, got)
}

func TestResolve_MissingEverywhereIsBlank(t *testing.T) {
	got, err := Resolve(filepath.Join(t.TempDir(), "none"), func(string) string { return "" }, nil)
	require.NoError(t, err)
	assert.Equal(t, Credentials{}, got)
}

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}
