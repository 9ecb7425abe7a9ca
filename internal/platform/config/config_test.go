package config

import (
	"encoding/base64"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var envKeys = []string{
	"PORT", "GIN_MODE", "ALLOWED_ORIGINS", "STORE_BACKEND", "FIREBASE_PROJECT_ID",
	"FIREBASE_CREDS_BASE64", "FIREBASE_CREDS_FILE", "DATASET_SOURCE", "LOAD_ON_START",
	"SECTOR_MATCH", "MAX_UPLOAD_MB", "LOG_LEVEL", "LOG_FORMAT", "UPLOAD_HISTORY_LIMIT",
	"FIRESTORE_EMULATOR_HOST",
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range envKeys {
		t.Setenv(k, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "release", cfg.GinMode)
	assert.Equal(t, StoreMemory, cfg.StoreBackend)
	assert.Equal(t, "data/Gerencial_QOE.xlsx", cfg.DatasetSource)
	assert.True(t, cfg.LoadOnStart)
	assert.Equal(t, "exact", cfg.SectorMatch)
	assert.Equal(t, 32, cfg.MaxUploadMB)
	assert.Equal(t, int64(32<<20), cfg.MaxUploadBytes())
	assert.Equal(t, 50, cfg.UploadHistoryLimit)
	assert.Equal(t, "info", cfg.LogLevel)
}

func TestLoad_Overrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "9090")
	t.Setenv("STORE_BACKEND", "Firestore")
	t.Setenv("FIREBASE_PROJECT_ID", "qoe-prod")
	t.Setenv("FIREBASE_CREDS_FILE", "/secrets/sa.json")
	t.Setenv("LOAD_ON_START", "false")
	t.Setenv("SECTOR_MATCH", "NORMALIZED")
	t.Setenv("MAX_UPLOAD_MB", "8")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, StoreFirestore, cfg.StoreBackend)
	assert.False(t, cfg.LoadOnStart)
	assert.Equal(t, "normalized", cfg.SectorMatch)
	assert.Equal(t, 8, cfg.MaxUploadMB)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"bad bool", map[string]string{"LOAD_ON_START": "maybe"}},
		{"bad int", map[string]string{"MAX_UPLOAD_MB": "lots"}},
		{"zero upload", map[string]string{"MAX_UPLOAD_MB": "0"}},
		{"bad backend", map[string]string{"STORE_BACKEND": "redis"}},
		{"bad sector match", map[string]string{"SECTOR_MATCH": "fuzzy"}},
		{"firestore without project", map[string]string{"STORE_BACKEND": "firestore", "FIREBASE_CREDS_FILE": "x"}},
		{"firestore without creds", map[string]string{"STORE_BACKEND": "firestore", "FIREBASE_PROJECT_ID": "p"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load()
			assert.Error(t, err)
		})
	}
}

func TestFirebaseCredentialsJSON(t *testing.T) {
	payload := []byte(`{"type":"service_account"}`)

	cfg := Config{FirebaseCredsBase64: base64.StdEncoding.EncodeToString(payload)}
	got, source, err := cfg.FirebaseCredentialsJSON()
	require.NoError(t, err)
	assert.Equal(t, "base64", source)
	assert.Equal(t, payload, got)

	path := filepath.Join(t.TempDir(), "sa.json")
	require.NoError(t, os.WriteFile(path, payload, 0o600))
	cfg = Config{FirebaseCredsFile: path}
	got, source, err = cfg.FirebaseCredentialsJSON()
	require.NoError(t, err)
	assert.Equal(t, "file", source)
	assert.Equal(t, payload, got)

	_, _, err = Config{FirebaseCredsBase64: "!!"}.FirebaseCredentialsJSON()
	assert.Error(t, err)

	_, _, err = Config{}.FirebaseCredentialsJSON()
	assert.Error(t, err)
}
